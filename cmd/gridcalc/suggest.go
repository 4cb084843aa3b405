package main

import (
	"sort"

	"github.com/lithammer/fuzzysearch/fuzzy"
)

// suggest finds the closest candidate for a mistyped word. abbreviations
// ("sv" for save) are ranked by edit distance; otherwise the longest
// candidate hidden in the input ("undoo" for undo) wins.
func suggest(input string, candidates []string) string {
	if input == "" || len(candidates) == 0 {
		return ""
	}

	ranks := fuzzy.RankFindFold(input, candidates)
	if len(ranks) > 0 {
		sort.Stable(ranks)
		return ranks[0].Target
	}

	best := ""
	for _, candidate := range candidates {
		if fuzzy.MatchFold(candidate, input) && len(candidate) > len(best) {
			best = candidate
		}
	}
	return best
}
