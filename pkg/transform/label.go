package transform

import "github.com/aretw0/layoutkit/pkg/domain"

// ResolveLabelText unwraps a label value down to its text.
// Layouts written by older exporters may nest the text several times
// ({"text": {"text": "Name"}}), so the unwrap repeats while the value is
// still an object holding a "text" key.
// It reports false when no non-empty string is found.
func ResolveLabelText(v any) (string, bool) {
	for {
		next, ok := textOf(v)
		if !ok {
			break
		}
		v = next
	}
	s, ok := v.(string)
	if !ok || s == "" {
		return "", false
	}
	return s, true
}

func textOf(v any) (any, bool) {
	switch obj := v.(type) {
	case map[string]any:
		t, ok := obj[domain.KeyText]
		return t, ok
	case *domain.Attributes:
		if obj == nil {
			return nil, false
		}
		return obj.Get(domain.KeyText)
	}
	return nil, false
}

func labelObject(text string) map[string]any {
	return map[string]any{domain.KeyText: text}
}
