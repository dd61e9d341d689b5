package vendormatch

import (
	"sort"
	"strings"

	"github.com/agnivade/levenshtein"
)

// ratio scores string similarity 0-100 from edit distance over the longer
// length. Comparison is done on normalized strings.
func ratio(a, b string) float64 {
	a, b = normalize(a), normalize(b)
	if a == b {
		return 100
	}
	longest := max(len([]rune(a)), len([]rune(b)))
	if longest == 0 {
		return 100
	}
	dist := levenshtein.ComputeDistance(a, b)
	return 100 * (1 - float64(dist)/float64(longest))
}

// tokenSortRatio is word-order insensitive: both strings are tokenized,
// sorted, and rejoined before scoring, so "Enterprises Skanda" scores 100
// against "Skanda Enterprises".
func tokenSortRatio(a, b string) float64 {
	return ratio(sortTokens(a), sortTokens(b))
}

// partialRatio scores the best alignment of the shorter string inside the
// longer one, catching truncated or garbled OCR names.
func partialRatio(a, b string) float64 {
	a, b = normalize(a), normalize(b)
	shorter, longer := []rune(a), []rune(b)
	if len(shorter) > len(longer) {
		shorter, longer = longer, shorter
	}
	if len(shorter) == 0 {
		return 0
	}
	if len(shorter) == len(longer) {
		return ratio(string(shorter), string(longer))
	}

	best := 0.0
	for i := 0; i+len(shorter) <= len(longer); i++ {
		window := string(longer[i : i+len(shorter)])
		if score := ratio(string(shorter), window); score > best {
			best = score
			if best == 100 {
				break
			}
		}
	}
	return best
}

func sortTokens(s string) string {
	tokens := strings.Fields(normalize(s))
	sort.Strings(tokens)
	return strings.Join(tokens, " ")
}

// normalize lower-cases and strips punctuation OCR commonly mangles, keeping
// letters, digits and spaces.
func normalize(s string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(s) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == ' ' || r == '\t':
			b.WriteRune(' ')
		}
	}
	return strings.TrimSpace(b.String())
}
