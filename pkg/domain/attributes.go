package domain

import (
	"sort"

	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// Attributes is an ordered set of JSON-like values keyed by name.
// Values are limited to what encoding/json produces for `any`: string, float64,
// bool, nil, map[string]any and []any, plus nested *Attributes.
// Key order survives JSON decode and encode, which keeps exported documents stable.
type Attributes = orderedmap.OrderedMap[string, any]

// NewAttributes creates an empty attribute set.
func NewAttributes() *Attributes {
	return orderedmap.New[string, any]()
}

// AttributesFromMap builds an attribute set from a plain map.
// Keys are inserted in sorted order since Go maps carry none.
func AttributesFromMap(m map[string]any) *Attributes {
	attrs := NewAttributes()
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		attrs.Set(k, m[k])
	}
	return attrs
}

// CloneAttributes returns a copy of the top level of attrs.
// Nested values are shared. A nil input yields an empty set.
func CloneAttributes(attrs *Attributes) *Attributes {
	out := NewAttributes()
	if attrs == nil {
		return out
	}
	for pair := attrs.Oldest(); pair != nil; pair = pair.Next() {
		out.Set(pair.Key, pair.Value)
	}
	return out
}

// MergeAttributes layers over on top of base, like an object spread.
// Keys already in base keep their position; keys only in over are appended in over's order.
// Neither input is modified.
func MergeAttributes(base, over *Attributes) *Attributes {
	out := CloneAttributes(base)
	if over == nil {
		return out
	}
	for pair := over.Oldest(); pair != nil; pair = pair.Next() {
		out.Set(pair.Key, pair.Value)
	}
	return out
}

// AttrString returns the value under key when it is a string.
func AttrString(attrs *Attributes, key string) (string, bool) {
	if attrs == nil {
		return "", false
	}
	v, ok := attrs.Get(key)
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}

// AttrKeys lists the keys of attrs in order.
func AttrKeys(attrs *Attributes) []string {
	if attrs == nil {
		return nil
	}
	keys := make([]string, 0, attrs.Len())
	for pair := attrs.Oldest(); pair != nil; pair = pair.Next() {
		keys = append(keys, pair.Key)
	}
	return keys
}
