package types

import (
	"math"
	"strconv"
	"strings"
)

// IntentRequest is the transport-neutral view of a Dialogflow webhook call.
type IntentRequest struct {
	Intent     string     `json:"intent"`
	Parameters Parameters `json:"parameters"`
	SessionID  string     `json:"session_id"`
}

// Parameters holds the slot values Dialogflow extracted for an intent.
// Values are decoded JSON: strings, float64 numbers, bools, nested maps or lists.
type Parameters map[string]any

// Raw returns the value stored under key, or nil.
func (p Parameters) Raw(key string) any {
	if p == nil {
		return nil
	}
	return p[key]
}

// String returns the parameter as text. Missing, null, empty, false and
// zero values count as unset and yield def. A list parameter yields its
// first element.
func (p Parameters) String(key, def string) string {
	switch v := p.Raw(key).(type) {
	case []any:
		if len(v) == 0 {
			return def
		}
		return Parameters{key: v[0]}.String(key, def)
	case nil:
		return def
	case string:
		if v == "" {
			return def
		}
		return v
	case bool:
		if !v {
			return def
		}
		return "true"
	case float64:
		if v == 0 {
			return def
		}
		return strconv.FormatFloat(v, 'f', -1, 64)
	case int:
		if v == 0 {
			return def
		}
		return strconv.Itoa(v)
	default:
		return def
	}
}

// Number returns the parameter as a float. Numeric strings are parsed and
// Dialogflow quantity objects ({"amount": n, ...}) yield their amount.
// Unset or non-numeric values yield def.
func (p Parameters) Number(key string, def float64) float64 {
	n, ok := toNumber(p.Raw(key))
	if !ok {
		return def
	}
	return n
}

func toNumber(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
			return 0, false
		}
		return f, true
	case map[string]any:
		return toNumber(n["amount"])
	default:
		return 0, false
	}
}

// SessionID extracts the trailing segment of a Dialogflow session path
// such as "projects/p/agent/sessions/abc".
func SessionID(session string) string {
	if i := strings.LastIndex(session, "/"); i >= 0 {
		return session[i+1:]
	}
	return session
}
