package core

import (
	"maps"
	"sort"
	"strings"
)

// Params holds request parameters keyed by their wire name.
// Values are sent as given; callers apply any escaping they need.
type Params map[string]string

// Set stores value under key, replacing any previous value, and returns p for chaining.
func (p Params) Set(key, value string) Params {
	p[key] = value
	return p
}

// Clone returns a shallow copy of p. A nil receiver yields an empty, non-nil map.
func (p Params) Clone() Params {
	out := make(Params, len(p)+2)
	maps.Copy(out, p)
	return out
}

// Encode renders p as key=value pairs joined by '&' with keys in byte-wise
// ascending order. Equal maps always encode to identical strings, which is
// what makes the result usable as a signing payload.
func (p Params) Encode() string {
	if len(p) == 0 {
		return ""
	}

	keys := make([]string, 0, len(p))
	for k := range p {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	for i, k := range keys {
		if i > 0 {
			b.WriteByte('&')
		}
		b.WriteString(k)
		b.WriteByte('=')
		b.WriteString(p[k])
	}
	return b.String()
}
