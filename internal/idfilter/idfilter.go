// Package idfilter implements the identifier filter every string
// identifier (collection name, attribute name, index name) passes through
// before interpolation into SQL, per §4.1: "restricts them to
// [A-Za-z0-9_-], rejecting empty results".
package idfilter

import (
	"fmt"
	"strings"
)

// Filter strips every character outside [A-Za-z0-9_-] and returns an error
// if nothing survives. Filter is idempotent: Filter(Filter(x)) == Filter(x)
// for any x that already passed (§8 law 7).
func Filter(raw string) (string, error) {
	var b strings.Builder
	for _, r := range raw {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') || r == '_' || r == '-' {
			b.WriteRune(r)
		}
	}
	out := b.String()
	if out == "" {
		return "", fmt.Errorf("idfilter: identifier %q filters to empty string", raw)
	}
	return out, nil
}

// MustFilter panics on an invalid identifier; used only where the caller has
// already validated the identifier upstream (e.g. constants).
func MustFilter(raw string) string {
	out, err := Filter(raw)
	if err != nil {
		panic(err)
	}
	return out
}
