package template

import (
	"fmt"
	"strconv"
	"strings"
)

// ContextRecord is a flat field-name → displayable-value mapping probed by
// the placeholder resolver. Event records and attendee records share this
// shape; the resolver never cares which one it is given.
type ContextRecord map[string]any

// Merge overlays other on top of r, returning a new record. Neither input
// is modified. Callers use this to merge event fields under attendee
// fields before a batch run.
func (r ContextRecord) Merge(other ContextRecord) ContextRecord {
	out := make(ContextRecord, len(r)+len(other))
	for k, v := range r {
		out[k] = v
	}
	for k, v := range other {
		out[k] = v
	}
	return out
}

// RecipientKey returns the stable identifier artifacts are persisted
// under: user_id when present, otherwise id. A record with neither is
// rejected so artifacts never land under a junk key.
func (r ContextRecord) RecipientKey() (string, error) {
	for _, field := range []string{"user_id", "id"} {
		if v, ok := r[field]; ok {
			if key := strings.TrimSpace(display(v)); key != "" {
				return key, nil
			}
		}
	}
	return "", fmt.Errorf("context record has no non-empty user_id or id")
}

// display coerces a context value to the string substituted into text.
// Zero and false are valid values and must render, only absence of a key
// leaves a token unresolved.
func display(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case bool:
		return strconv.FormatBool(t)
	case int:
		return strconv.Itoa(t)
	case int64:
		return strconv.FormatInt(t, 10)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(t), 'f', -1, 32)
	case fmt.Stringer:
		return t.String()
	default:
		return fmt.Sprintf("%v", t)
	}
}
