package domain

import "strings"

// OptionalString returns nil for blank input, otherwise a pointer to the trimmed value.
func OptionalString(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}

// TrimOptional normalises an optional string: nil and blank both become nil.
func TrimOptional(p *string) *string {
	if p == nil {
		return nil
	}
	return OptionalString(*p)
}

// StringValue dereferences p, returning "" for nil.
func StringValue(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}
