package secrets

import "regexp"

// Pattern defines a credential shape that must not reach the model.
type Pattern struct {
	Name  string
	Regex *regexp.Regexp
}

// DefaultPatterns returns the built-in credential patterns.
func DefaultPatterns() []Pattern {
	return []Pattern{
		{
			Name:  "Google API Key",
			Regex: regexp.MustCompile(`AIza[0-9A-Za-z\-_]{35}`),
		},
		{
			Name:  "GCP Service Account Key",
			Regex: regexp.MustCompile(`"private_key":\s*"-----BEGIN[^"]*"`),
		},
		{
			Name:  "Private Key",
			Regex: regexp.MustCompile(`-----BEGIN (?:RSA |EC |DSA |OPENSSH )?PRIVATE KEY-----`),
		},
		{
			Name:  "AWS Access Key",
			Regex: regexp.MustCompile(`AKIA[0-9A-Z]{16}`),
		},
		{
			Name:  "Connection String",
			Regex: regexp.MustCompile(`(?:postgres|postgresql|mysql|mongodb|redis)://[^\s]+`),
		},
		{
			Name:  "Bearer Token",
			Regex: regexp.MustCompile(`(?i)bearer\s+[A-Za-z0-9\-_\.=]{20,}`),
		},
		{
			Name:  "IBAN",
			Regex: regexp.MustCompile(`\bFR\d{2}(?:\s?[0-9A-Z]{4}){5}\s?[0-9A-Z]{3}\b`),
		},
	}
}
