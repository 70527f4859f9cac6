// Package filter screens chat prompts before they are forwarded to the
// inference server.
package filter

import "context"

// Action represents the filter decision.
type Action string

const (
	ActionPass   Action = "pass"
	ActionFlag   Action = "flag"
	ActionRedact Action = "redact"
	ActionBlock  Action = "block"
)

// Result is returned by each filter. Text holds the prompt after the
// filter ran; it differs from the input only for ActionRedact.
type Result struct {
	Action     Action
	FilterName string
	Message    string
	Detections int
	Score      float64
	Text       string
}

// Filter is the interface all prompt filters implement.
type Filter interface {
	Name() string
	Enabled() bool
	ScanText(ctx context.Context, text string) Result
}

// Chain runs filters in order, stopping on the first Block.
type Chain struct {
	filters []Filter
}

// NewChain creates a filter chain from the given filters.
func NewChain(filters ...Filter) *Chain {
	return &Chain{filters: filters}
}

// Run executes all enabled filters in order, feeding each the text left by
// the previous one. It returns every result, the final text and the first
// blocking result (nil if no filter blocked).
func (c *Chain) Run(ctx context.Context, text string) ([]Result, string, *Result) {
	var results []Result
	for _, f := range c.filters {
		if !f.Enabled() {
			continue
		}
		r := f.ScanText(ctx, text)
		results = append(results, r)
		if r.Action == ActionBlock {
			return results, text, &r
		}
		if r.Action == ActionRedact {
			text = r.Text
		}
	}
	return results, text, nil
}
