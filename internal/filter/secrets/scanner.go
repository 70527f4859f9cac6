package secrets

import (
	"context"
	"fmt"
	"sort"

	"github.com/greenbot-eco/greenbot/internal/config"
	"github.com/greenbot-eco/greenbot/internal/filter"
)

// Placeholder replaces every credential found in a prompt.
const Placeholder = "[donnée masquée]"

// Detection represents a detected secret in text.
type Detection struct {
	PatternName string
	Start       int // byte offset
	End         int // byte offset
}

// Scanner masks credentials in prompts so they are never forwarded upstream.
type Scanner struct {
	patterns []Pattern
	cfg      func() config.SecretsFilterConfig
}

func NewScanner(cfg func() config.SecretsFilterConfig) *Scanner {
	return &Scanner{patterns: DefaultPatterns(), cfg: cfg}
}

func (s *Scanner) Name() string  { return "secrets" }
func (s *Scanner) Enabled() bool { return s.cfg().Enabled }

// Scan returns every match, sorted by position.
func (s *Scanner) Scan(text string) []Detection {
	var detections []Detection
	for _, p := range s.patterns {
		for _, loc := range p.Regex.FindAllStringIndex(text, -1) {
			detections = append(detections, Detection{
				PatternName: p.Name,
				Start:       loc[0],
				End:         loc[1],
			})
		}
	}
	sort.Slice(detections, func(i, j int) bool {
		return detections[i].Start < detections[j].Start
	})
	return detections
}

// Redact replaces each detection with Placeholder. Overlapping matches are
// merged into one.
func Redact(text string, detections []Detection) string {
	if len(detections) == 0 {
		return text
	}
	out := make([]byte, 0, len(text))
	pos := 0
	for _, d := range detections {
		if d.End <= pos {
			continue
		}
		if d.Start >= pos {
			out = append(out, text[pos:d.Start]...)
			out = append(out, Placeholder...)
		}
		pos = d.End
	}
	out = append(out, text[pos:]...)
	return string(out)
}

// ScanText implements filter.Filter.
func (s *Scanner) ScanText(_ context.Context, text string) filter.Result {
	detections := s.Scan(text)
	if len(detections) == 0 {
		return filter.Result{Action: filter.ActionPass, FilterName: s.Name(), Text: text}
	}
	return filter.Result{
		Action:     filter.ActionRedact,
		FilterName: s.Name(),
		Message:    fmt.Sprintf("%d credential(s) masked", len(detections)),
		Detections: len(detections),
		Score:      1,
		Text:       Redact(text, detections),
	}
}
