// Package normalization maps free-form config strings onto typed enums.
package normalization

import (
	"fmt"
	"slices"
	"strings"
)

// Normalizer provides type-safe string-to-enum normalization with error handling.
type Normalizer[T comparable] struct {
	name         string
	validValues  map[string]T
	defaultValue T
	validKeys    []string
}

// NewNormalizer creates a normalizer for the enum called name. Keys are matched
// case-insensitively after trimming whitespace.
func NewNormalizer[T comparable](name string, values map[string]T, defaultValue T) *Normalizer[T] {
	normalized := make(map[string]T, len(values))
	keys := make([]string, 0, len(values))
	for k, v := range values {
		nk := clean(k)
		normalized[nk] = v
		keys = append(keys, nk)
	}
	slices.Sort(keys)
	return &Normalizer[T]{name: name, validValues: normalized, defaultValue: defaultValue, validKeys: keys}
}

// Normalize returns the matching value, or the default if raw is not recognized.
func (n *Normalizer[T]) Normalize(raw string) T {
	if v, ok := n.validValues[clean(raw)]; ok {
		return v
	}
	return n.defaultValue
}

// Parse returns the matching value or an error listing the valid options.
func (n *Normalizer[T]) Parse(raw string) (T, error) {
	if v, ok := n.validValues[clean(raw)]; ok {
		return v, nil
	}
	var zero T
	return zero, fmt.Errorf("invalid %s %q, valid options: %s", n.name, raw, strings.Join(n.validKeys, ", "))
}

// Valid reports whether value is one of the enum's members.
func (n *Normalizer[T]) Valid(value T) bool {
	for _, v := range n.validValues {
		if v == value {
			return true
		}
	}
	return false
}

// ValidKeys returns all valid normalized keys, sorted.
func (n *Normalizer[T]) ValidKeys() []string {
	return slices.Clone(n.validKeys)
}

func clean(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
