package match

import (
	"sort"
)

// Candidate is a known name scored against a query.
type Candidate struct {
	Name string

	// NameScore is the similarity (0-1) of the normalized full names.
	NameScore float64
	// SimpleScore is the similarity of the normalized simple names.
	SimpleScore float64
	// CombinedScore ranks the candidate (higher is better).
	CombinedScore float64
}

// CandidateList is a list of candidates with ranking functionality.
type CandidateList []Candidate

// RankCandidates scores every name against query and returns them sorted by
// combined score (descending).
func RankCandidates(query string, names []string) CandidateList {
	candidates := make(CandidateList, 0, len(names))

	for _, name := range names {
		nameScore := QualifiedNameScore(query, name)
		simpleScore := ClassNameScore(query, name)

		candidates = append(candidates, Candidate{
			Name:          name,
			NameScore:     nameScore,
			SimpleScore:   simpleScore,
			CombinedScore: calculateCombinedScore(nameScore, simpleScore),
		})
	}

	sort.Sort(candidates)

	return candidates
}

// Suggest returns up to n names scoring at least DefaultMinScore against query.
func Suggest(query string, names []string, n int) []string {
	var out []string
	for _, c := range RankCandidates(query, names).AboveThreshold(DefaultMinScore).Top(n) {
		out = append(out, c.Name)
	}

	return out
}

// calculateCombinedScore weighs the simple name above the full name: a typo
// in the class name matters more than a different package.
//   - Full name similarity: 40%
//   - Simple name similarity: 60%
func calculateCombinedScore(nameScore, simpleScore float64) float64 {
	const (
		nameWeight   = 0.4
		simpleWeight = 0.6
	)

	return nameScore*nameWeight + simpleScore*simpleWeight
}

// Len implements sort.Interface.
func (c CandidateList) Len() int { return len(c) }

// Swap implements sort.Interface.
func (c CandidateList) Swap(i, j int) { c[i], c[j] = c[j], c[i] }

// Less implements sort.Interface.
// Sorts by combined score descending, then by name for determinism.
func (c CandidateList) Less(i, j int) bool {
	if c[i].CombinedScore != c[j].CombinedScore {
		return c[i].CombinedScore > c[j].CombinedScore
	}

	return c[i].Name < c[j].Name
}

// Top returns the top n candidates.
func (c CandidateList) Top(n int) CandidateList {
	if n >= len(c) {
		return c
	}

	return c[:n]
}

// Best returns the best candidate, or nil if no candidates.
func (c CandidateList) Best() *Candidate {
	if len(c) == 0 {
		return nil
	}

	return &c[0]
}

// AboveThreshold returns candidates with combined score above the threshold.
func (c CandidateList) AboveThreshold(threshold float64) CandidateList {
	var result CandidateList
	for _, cand := range c {
		if cand.CombinedScore >= threshold {
			result = append(result, cand)
		}
	}

	return result
}

// Suggestion defaults.
const (
	// DefaultMinScore is the minimum combined score for a suggestion.
	DefaultMinScore = 0.7
	// DefaultSuggestions is the number of suggestions attached to a diagnostic.
	DefaultSuggestions = 3
)
