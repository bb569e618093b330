package normalizer

import (
	"sort"
	"strings"
)

// TokenSortRatio scores two strings on a 0–100 scale after sorting their
// whitespace-separated tokens, so word order does not affect the score.
func TokenSortRatio(a, b string) float64 {
	return Ratio(sortTokens(a), sortTokens(b))
}

func sortTokens(s string) string {
	tokens := strings.Fields(s)
	sort.Strings(tokens)
	return strings.Join(tokens, " ")
}

// Ratio is the normalized Indel similarity of a and b on a 0–100 scale:
// 100 * (1 - indel distance / (len(a) + len(b))). Indel distance counts
// insertions and deletions only, so it equals len(a) + len(b) - 2*LCS.
// Two empty strings score 100.
func Ratio(a, b string) float64 {
	ra, rb := []rune(a), []rune(b)
	total := len(ra) + len(rb)
	if total == 0 {
		return 100
	}
	return 100 * float64(2*lcsLength(ra, rb)) / float64(total)
}

// lcsLength returns the length of the longest common subsequence using a
// single rolling row.
func lcsLength(a, b []rune) int {
	if len(a) < len(b) {
		a, b = b, a
	}
	if len(b) == 0 {
		return 0
	}
	row := make([]int, len(b)+1)
	for i := range a {
		prevDiag := 0
		for j := range b {
			up := row[j+1]
			if a[i] == b[j] {
				row[j+1] = prevDiag + 1
			} else if row[j] > up {
				row[j+1] = row[j]
			}
			prevDiag = up
		}
	}
	return row[len(b)]
}
