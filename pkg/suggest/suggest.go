// Package suggest finds the closest known identifier for a misspelled one so
// configuration errors can say "did you mean".
package suggest

import (
	"fmt"
	"sort"

	"github.com/agnivade/levenshtein"
)

// Closest returns the candidate nearest to input by edit distance, or "" when
// nothing is close enough to be a plausible typo.
func Closest(input string, candidates []string) string {
	best := ""
	bestDist := -1
	sorted := append([]string(nil), candidates...)
	sort.Strings(sorted)
	for _, cand := range sorted {
		dist := levenshtein.ComputeDistance(input, cand)
		if dist > limit(len(cand)) {
			continue
		}
		if bestDist < 0 || dist < bestDist {
			best = cand
			bestDist = dist
		}
	}
	return best
}

// Hint formats a " (did you mean %q?)" suffix, or "" when there is no match.
func Hint(input string, candidates []string) string {
	if c := Closest(input, candidates); c != "" {
		return fmt.Sprintf(" (did you mean %q?)", c)
	}
	return ""
}

func limit(length int) int {
	switch {
	case length <= 4:
		return 1
	case length <= 8:
		return 2
	default:
		return 3
	}
}
