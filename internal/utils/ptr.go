package utils

import "strings"

func Ptr[T any](v T) *T {
	return &v
}

func OrZero[T comparable](v *T) T {
	if v == nil {
		var zero T
		return zero
	}
	return *v
}

func OrDefault[T any](v *T, fallback T) T {
	if v == nil {
		return fallback
	}
	return *v
}

// NonBlank returns the set, non-whitespace values in order.
func NonBlank(values ...*string) []string {
	var out []string
	for _, v := range values {
		if v != nil && strings.TrimSpace(*v) != "" {
			out = append(out, *v)
		}
	}
	return out
}
