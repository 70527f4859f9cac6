// Package injection flags or blocks chat prompts that try to override the
// assistant's instructions.
package injection

import (
	"context"
	"fmt"

	"github.com/greenbot-eco/greenbot/internal/config"
	"github.com/greenbot-eco/greenbot/internal/filter"
)

// Detection records a matched injection pattern.
type Detection struct {
	RuleName string
	Severity float64
	Category string
	Start    int
	End      int
}

// Scanner scans text for prompt injection patterns.
type Scanner struct {
	rules []Rule
	cfg   func() config.InjectionFilterConfig
}

// NewScanner creates a prompt injection scanner.
func NewScanner(cfg func() config.InjectionFilterConfig) *Scanner {
	return &Scanner{rules: DefaultRules(), cfg: cfg}
}

func (s *Scanner) Name() string  { return "injection" }
func (s *Scanner) Enabled() bool { return s.cfg().Enabled }

// Scan checks text and returns all detections with the highest severity seen.
func (s *Scanner) Scan(text string) ([]Detection, float64) {
	var detections []Detection
	maxScore := 0.0
	for _, r := range s.rules {
		for _, loc := range r.Regex.FindAllStringIndex(text, -1) {
			detections = append(detections, Detection{
				RuleName: r.Name,
				Severity: r.Severity,
				Category: r.Category,
				Start:    loc[0],
				End:      loc[1],
			})
			if r.Severity > maxScore {
				maxScore = r.Severity
			}
		}
	}
	return detections, maxScore
}

// ScanText implements filter.Filter.
func (s *Scanner) ScanText(_ context.Context, text string) filter.Result {
	detections, score := s.Scan(text)
	cfg := s.cfg()

	if score >= cfg.BlockThreshold {
		return filter.Result{
			Action:     filter.ActionBlock,
			FilterName: s.Name(),
			Message:    fmt.Sprintf("prompt injection detected (score %.2f)", score),
			Detections: len(detections),
			Score:      score,
			Text:       text,
		}
	}
	if score >= cfg.FlagThreshold {
		return filter.Result{
			Action:     filter.ActionFlag,
			FilterName: s.Name(),
			Detections: len(detections),
			Score:      score,
			Text:       text,
		}
	}
	return filter.Result{Action: filter.ActionPass, FilterName: s.Name(), Score: score, Text: text}
}
