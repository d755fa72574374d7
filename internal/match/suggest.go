package match

import (
	"cmp"
	"slices"
	"unicode"
)

// MinScore is the similarity below which a name is not worth suggesting.
const MinScore = 0.5

// Candidate is a known name scored against the name that was looked up.
type Candidate struct {
	Name  string
	Score float64
}

// CandidateList is ordered best first.
type CandidateList []Candidate

// Best returns the highest scoring candidate at or above MinScore.
func (cl CandidateList) Best() (Candidate, bool) {
	if len(cl) == 0 || cl[0].Score < MinScore {
		return Candidate{}, false
	}

	return cl[0], true
}

// Rank scores every known name against name. Ties keep the order of names.
func Rank(name string, names []string) CandidateList {
	folded := fold(name)
	cl := make(CandidateList, 0, len(names))

	for _, n := range names {
		cl = append(cl, Candidate{Name: n, Score: similarity(folded, fold(n))})
	}

	slices.SortStableFunc(cl, func(a, b Candidate) int {
		return cmp.Compare(b.Score, a.Score)
	})

	return cl
}

// Suggest returns the known name closest to name, if any is close enough.
// An exact match is not a suggestion.
func Suggest(name string, names []string) (string, bool) {
	if slices.Contains(names, name) {
		return "", false
	}

	c, ok := Rank(name, names).Best()
	if !ok {
		return "", false
	}

	return c.Name, true
}

// DidYouMean formats the suggestion for name as a message suffix, or returns
// the empty string.
func DidYouMean(name string, names []string) string {
	s, ok := Suggest(name, names)
	if !ok {
		return ""
	}

	return "; did you mean " + s + "?"
}

// fold lowercases s and drops separators, so QueryID, query_id and
// query-id all compare equal.
func fold(s string) []rune {
	out := make([]rune, 0, len(s))

	for _, r := range s {
		switch r {
		case '_', '-', ' ':
			continue
		}

		out = append(out, unicode.ToLower(r))
	}

	return out
}

// similarity is 1 for equal names and 0 for names sharing nothing.
func similarity(a, b []rune) float64 {
	longest := max(len(a), len(b))
	if longest == 0 {
		return 1
	}

	return 1 - float64(distance(a, b))/float64(longest)
}

// distance is the Levenshtein distance between a and b, kept in two rows
// sized by the shorter name.
func distance(a, b []rune) int {
	if len(a) > len(b) {
		a, b = b, a
	}

	prev := make([]int, len(a)+1)
	curr := make([]int, len(a)+1)

	for i := range prev {
		prev[i] = i
	}

	for j := 1; j <= len(b); j++ {
		curr[0] = j

		for i := 1; i <= len(a); i++ {
			cost := 1
			if a[i-1] == b[j-1] {
				cost = 0
			}

			curr[i] = min(prev[i]+1, curr[i-1]+1, prev[i-1]+cost)
		}

		prev, curr = curr, prev
	}

	return prev[len(a)]
}
