package retrieval

import (
	"strings"

	"github.com/pmezard/go-difflib/difflib"
)

// DefaultMatchCutoff is the minimum similarity ratio for a fuzzy match.
const DefaultMatchCutoff = 0.3

// Matcher resolves free-text model names to catalog names by sequence similarity.
type Matcher struct {
	cutoff float64
}

// NewMatcher creates a matcher. A cutoff outside (0, 1] falls back to DefaultMatchCutoff.
func NewMatcher(cutoff float64) *Matcher {
	if cutoff <= 0 || cutoff > 1 {
		cutoff = DefaultMatchCutoff
	}
	return &Matcher{cutoff: cutoff}
}

// Cutoff returns the configured similarity threshold.
func (m *Matcher) Cutoff() float64 { return m.cutoff }

// Match returns the candidate most similar to fragment, if its ratio reaches the cutoff.
// Equal ratios resolve to the lexicographically greatest candidate.
func (m *Matcher) Match(fragment string, candidates []string) (string, bool) {
	fragment = strings.TrimSpace(fragment)
	if fragment == "" {
		return "", false
	}

	sm := difflib.NewMatcher(nil, nil)
	sm.SetSeq2(splitRunes(fragment))

	var (
		best      string
		bestScore float64
		found     bool
	)
	for _, name := range candidates {
		sm.SetSeq1(splitRunes(name))
		if sm.RealQuickRatio() < m.cutoff || sm.QuickRatio() < m.cutoff {
			continue
		}
		score := sm.Ratio()
		if score < m.cutoff {
			continue
		}
		if !found || score > bestScore || (score == bestScore && name > best) {
			best, bestScore, found = name, score, true
		}
	}
	return best, found
}

func splitRunes(s string) []string {
	rs := []rune(s)
	out := make([]string, len(rs))
	for i, r := range rs {
		out[i] = string(r)
	}
	return out
}
