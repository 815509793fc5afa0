package matching

import (
	"strings"
	"unicode"
)

// NormalizePartNumber canonicalizes a part number for exact comparison:
// uppercase with all separator and punctuation characters removed.
func NormalizePartNumber(s string) string {
	var sb strings.Builder
	for _, r := range strings.ToUpper(s) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			sb.WriteRune(r)
		}
	}
	return sb.String()
}

// Similarity computes token-overlap similarity between two material names:
// the size of the shared token set over the size of the combined token set.
// Returns 0 when either name has no tokens.
func Similarity(a, b string) float64 {
	ta := tokens(a)
	tb := tokens(b)
	if len(ta) == 0 || len(tb) == 0 {
		return 0
	}

	union := make(map[string]struct{}, len(ta)+len(tb))
	for tok := range ta {
		union[tok] = struct{}{}
	}
	for tok := range tb {
		union[tok] = struct{}{}
	}

	shared := 0
	for tok := range ta {
		if _, ok := tb[tok]; ok {
			shared++
		}
	}

	return float64(shared) / float64(len(union))
}

func tokens(s string) map[string]struct{} {
	fields := strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})

	set := make(map[string]struct{}, len(fields))
	for _, f := range fields {
		set[f] = struct{}{}
	}
	return set
}
