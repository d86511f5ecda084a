package utils

import (
	"strings"

	"github.com/pmezard/go-difflib/difflib"
	"golang.org/x/text/unicode/norm"
)

const (
	// MatchThreshold is the minimum score accepted as a match
	MatchThreshold = 0.6
	// ContainmentScore is the floor applied when one label contains the other
	ContainmentScore = 0.85
)

// MatchResult is the outcome of fuzzy matching a filter against candidates
type MatchResult struct {
	Value   string  `json:"value,omitempty"`
	Score   float64 `json:"score"`
	Matched bool    `json:"matched"`
}

// NormalizeLabel lower-cases and keeps only ASCII letters and digits,
// so "Health Care" and "healthcare" compare equal.
func NormalizeLabel(s string) string {
	s = strings.ToLower(norm.NFKC.String(s))

	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// Similarity is the Ratcliff-Obershelp ratio of two already-normalized labels
func Similarity(a, b string) float64 {
	m := difflib.NewMatcher(splitChars(a), splitChars(b))
	return m.Ratio()
}

// ScoreCandidate scores a normalized candidate against a normalized target
func ScoreCandidate(candidate, target string) float64 {
	score := Similarity(candidate, target)
	if strings.Contains(candidate, target) || strings.Contains(target, candidate) {
		if score < ContainmentScore {
			score = ContainmentScore
		}
	}
	return score
}

// Match finds the highest scoring candidate for target.
// Ties keep the first candidate seen.
func Match(candidates []string, target string) MatchResult {
	normTarget := NormalizeLabel(target)

	var best MatchResult
	for _, c := range candidates {
		score := ScoreCandidate(NormalizeLabel(c), normTarget)
		if score > best.Score {
			best.Score = score
			best.Value = c
		}
	}

	if best.Score >= MatchThreshold {
		best.Matched = true
		return best
	}
	return MatchResult{Score: best.Score}
}

// BestMatch returns the best candidate for target, or false when nothing scores at least 0.6
func BestMatch(candidates []string, target string) (string, bool) {
	res := Match(candidates, target)
	return res.Value, res.Matched
}

func splitChars(s string) []string {
	out := make([]string, 0, len(s))
	for _, r := range s {
		out = append(out, string(r))
	}
	return out
}
