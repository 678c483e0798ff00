package basic

import (
	"sort"
	"strings"

	"github.com/lithammer/fuzzysearch/fuzzy"
)

// maxSuggestDistance bounds the edit distance of a fallback suggestion.
const maxSuggestDistance = 2

// Suggest returns the candidate closest to word, or "" when nothing is
// close. Candidates that contain word's letters in order win; otherwise the
// nearest candidate within a small edit distance is used.
func Suggest(word string, candidates []string) string {
	if word == "" || len(candidates) == 0 {
		return ""
	}
	ranks := fuzzy.RankFindFold(word, candidates)
	if len(ranks) > 0 {
		sort.Stable(ranks)
		return ranks[0].Target
	}

	best, bestDist := "", maxSuggestDistance+1
	upper := strings.ToUpper(word)
	for _, c := range candidates {
		d := fuzzy.LevenshteinDistance(upper, strings.ToUpper(c))
		if d < bestDist || (d == bestDist && c < best) {
			best, bestDist = c, d
		}
	}
	return best
}

func suggestStatement(word string, statements []string) string {
	if hint := Suggest(word, statements); hint != word {
		return hint
	}
	return ""
}
