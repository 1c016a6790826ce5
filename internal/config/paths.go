package config

import "strings"

// EnsureTrailingSeparator appends "/" unless p already ends with "/" or "\".
// The result ends in exactly one separator and applying it twice is a no-op.
func EnsureTrailingSeparator(p string) string {
	if strings.HasSuffix(p, "/") || strings.HasSuffix(p, `\`) {
		return p
	}
	return p + "/"
}
