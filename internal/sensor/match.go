package sensor

import (
	"strings"

	"github.com/agnivade/levenshtein"
)

// maxNameDistance tolerates truncated or renamed advertisements when
// re-pairing a known sensor.
const maxNameDistance = 2

// matchName reports whether an advertised name should pair against a
// wanted name. Exact (case-insensitive) match, prefix match for
// advertisements cut short by the radio, or small edit distance.
func matchName(advertised, wanted string) bool {
	a := strings.ToLower(strings.TrimSpace(advertised))
	w := strings.ToLower(strings.TrimSpace(wanted))
	if a == "" || w == "" {
		return false
	}
	if a == w {
		return true
	}
	if len(a) >= 4 && strings.HasPrefix(w, a) {
		return true
	}
	return levenshtein.ComputeDistance(a, w) <= maxNameDistance
}
