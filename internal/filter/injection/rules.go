package injection

import "regexp"

// Rule defines a prompt injection detection pattern.
type Rule struct {
	Name     string
	Regex    *regexp.Regexp
	Severity float64 // 0.0 to 1.0
	Category string  // "instruction_bypass", "role_override", "encoding_trick", "output_steering"
}

// DefaultRules returns the built-in injection detection rules. The chat
// audience writes in French, so every English rule has a French sibling.
func DefaultRules() []Rule {
	return []Rule{
		{
			Name:     "ignore_previous",
			Regex:    regexp.MustCompile(`(?i)\bignore\s+(all\s+)?(the\s+)?previous\s+instructions`),
			Severity: 0.95,
			Category: "instruction_bypass",
		},
		{
			Name:     "ignore_previous_fr",
			Regex:    regexp.MustCompile(`(?i)\b(ignore|oublie|oubliez|ignorez)\s+(toutes\s+)?(les\s+|tes\s+|vos\s+)?instructions\s+(précédentes|antérieures|initiales)`),
			Severity: 0.95,
			Category: "instruction_bypass",
		},
		{
			Name:     "disregard_prior",
			Regex:    regexp.MustCompile(`(?i)\bdisregard\s+(all\s+)?prior\s+(instructions|context|rules)`),
			Severity: 0.95,
			Category: "instruction_bypass",
		},
		{
			Name:     "jailbreak",
			Regex:    regexp.MustCompile(`(?i)\b(DAN|do\s+anything\s+now|jailbreak|unrestricted\s+mode|mode\s+sans\s+restriction)\b`),
			Severity: 0.9,
			Category: "role_override",
		},
		{
			Name:     "code_block_system",
			Regex:    regexp.MustCompile("(?i)```system"),
			Severity: 0.9,
			Category: "role_override",
		},
		{
			Name:     "system_prefix",
			Regex:    regexp.MustCompile(`(?i)^\s*(system|système)\s*:\s*`),
			Severity: 0.85,
			Category: "role_override",
		},
		{
			Name:     "developer_mode",
			Regex:    regexp.MustCompile(`(?i)\b(developer|debug|admin|root|développeur)\s+mode\s+(enabled|activated|on|activé)`),
			Severity: 0.85,
			Category: "role_override",
		},
		{
			Name:     "developer_mode_fr",
			Regex:    regexp.MustCompile(`(?i)\bmode\s+(développeur|debug|admin|root)\s+(activé|enclenché)`),
			Severity: 0.85,
			Category: "role_override",
		},
		{
			Name:     "reveal_system_prompt",
			Regex:    regexp.MustCompile(`(?i)\b(reveal|print|show|affiche|révèle|montre)\s+(me\s+|moi\s+)?(your|the|ton|tes|le|les)\s+(system\s+prompt|prompt\s+système|instructions\s+système)`),
			Severity: 0.85,
			Category: "output_steering",
		},
		{
			Name:     "base64_instruction",
			Regex:    regexp.MustCompile(`(?i)\b(decode|execute|follow|décode|exécute|suis)\s+(the\s+|ce\s+|le\s+)?base64`),
			Severity: 0.85,
			Category: "encoding_trick",
		},
		{
			Name:     "new_instructions",
			Regex:    regexp.MustCompile(`(?i)\b(new|updated|revised|nouvelles?)\s+instructions?\s*:`),
			Severity: 0.8,
			Category: "instruction_bypass",
		},
		{
			Name:     "response_prefix",
			Regex:    regexp.MustCompile(`(?i)\b(respond|réponds)\s+(with|par)\s*:\s*(sure|absolutely|of course|bien sûr|absolument)`),
			Severity: 0.75,
			Category: "output_steering",
		},
		{
			Name:     "you_are_now",
			Regex:    regexp.MustCompile(`(?i)\b(you\s+are\s+now\s+(a|an|the)|tu\s+es\s+maintenant\s+(un|une|le|la))\s+`),
			Severity: 0.7,
			Category: "role_override",
		},
	}
}
