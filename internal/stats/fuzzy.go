package stats

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
)

// DefaultMerchantDistance is the edit-distance cutoff under which two
// normalized merchant labels are considered the same merchant.
const DefaultMerchantDistance = 2

var merchantFolder = cases.Fold()

// NormalizeMerchant canonicalizes a free-text merchant label: Unicode case
// folding, punctuation stripped, whitespace collapsed, and a trailing
// all-digit token (store or reference number) dropped.
func NormalizeMerchant(name string) string {
	folded := merchantFolder.String(strings.TrimSpace(name))
	var b strings.Builder
	for _, r := range folded {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
		case unicode.IsSpace(r):
			b.WriteRune(' ')
		}
	}
	fields := strings.Fields(b.String())
	if len(fields) > 1 && isAllDigits(fields[len(fields)-1]) {
		fields = fields[:len(fields)-1]
	}
	return strings.Join(fields, " ")
}

func isAllDigits(s string) bool {
	for _, r := range s {
		if !unicode.IsDigit(r) {
			return false
		}
	}
	return len(s) > 0
}

// LevenshteinDistance returns the case-insensitive edit distance between a
// and b, counted in runes.
func LevenshteinDistance(a, b string) int {
	ra := []rune(strings.ToLower(a))
	rb := []rune(strings.ToLower(b))
	if len(ra) == 0 {
		return len(rb)
	}
	if len(rb) == 0 {
		return len(ra)
	}
	prev := make([]int, len(rb)+1)
	curr := make([]int, len(rb)+1)
	for j := range prev {
		prev[j] = j
	}
	for i := 1; i <= len(ra); i++ {
		curr[0] = i
		for j := 1; j <= len(rb); j++ {
			cost := 1
			if ra[i-1] == rb[j-1] {
				cost = 0
			}
			curr[j] = min3(curr[j-1]+1, prev[j]+1, prev[j-1]+cost)
		}
		prev, curr = curr, prev
	}
	return prev[len(rb)]
}

func min3(a, b, c int) int {
	return min(a, min(b, c))
}

// IsSimilarMerchant reports whether two merchant labels refer to the same
// merchant: equal after normalization, one containing the other, or within
// maxDistance edits. maxDistance <= 0 means DefaultMerchantDistance. This is
// the sole merchant-identity mechanism in the engine; there are no canonical
// merchant IDs.
func IsSimilarMerchant(a, b string, maxDistance int) bool {
	if maxDistance <= 0 {
		maxDistance = DefaultMerchantDistance
	}
	na, nb := NormalizeMerchant(a), NormalizeMerchant(b)
	if na == "" || nb == "" {
		return na == nb
	}
	if na == nb {
		return true
	}
	if strings.Contains(na, nb) || strings.Contains(nb, na) {
		return true
	}
	return LevenshteinDistance(na, nb) <= maxDistance
}
