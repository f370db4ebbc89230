package functions

import (
	"fmt"
	"strconv"
	"strings"
)

// Parameters are the named arguments of one invocation, as sent by the CRM
// card. Values are whatever JSON decoding produced.
type Parameters map[string]any

// String returns the parameter as a trimmed string. Numbers are formatted
// without exponent, since the CRM sends user and object IDs as numbers.
func (p Parameters) String(key string) string {
	switch v := p[key].(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(v)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case int:
		return strconv.Itoa(v)
	case int64:
		return strconv.FormatInt(v, 10)
	case fmt.Stringer:
		return strings.TrimSpace(v.String())
	default:
		return strings.TrimSpace(fmt.Sprint(v))
	}
}

// List accepts a JSON array of strings or a comma-separated string.
func (p Parameters) List(key string) []string {
	var raw []string
	switch v := p[key].(type) {
	case []string:
		raw = v
	case []any:
		for _, item := range v {
			raw = append(raw, fmt.Sprint(item))
		}
	case string:
		raw = strings.Split(v, ",")
	}

	out := make([]string, 0, len(raw))
	for _, s := range raw {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}
