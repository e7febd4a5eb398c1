package core

import (
	"sort"
	"strings"
	"unicode/utf8"
)

// DefaultMinTokenLength keeps tokens of three or more runes. The same value
// must be used at index build time and at query time.
const DefaultMinTokenLength = 3

// punctuation is the fixed set stripped before splitting. Stripping (rather
// than splitting on) punctuation keeps hyphenated markers as single tokens,
// e.g. "PD-L1" normalizes to "pdl1".
const punctuation = "!\"#$%&'()*+,-./:;<=>?@[\\]^_`{|}~"

func stripPunct(r rune) rune {
	if strings.ContainsRune(punctuation, r) {
		return -1
	}
	return r
}

// NormalizeTerm lowercases a term and strips the fixed punctuation set
// without splitting it. Multi-word facet values stay single keywords.
func NormalizeTerm(text string) string {
	return strings.Join(strings.Fields(strings.Map(stripPunct, strings.ToLower(text))), " ")
}

// TokenSet normalizes text into its set of tokens: lowercased, punctuation
// stripped, whitespace split, tokens shorter than minLen runes discarded.
// Deterministic and side-effect free; empty input yields an empty set.
func TokenSet(text string, minLen int) map[string]struct{} {
	if minLen < 1 {
		minLen = DefaultMinTokenLength
	}
	tokens := make(map[string]struct{})
	cleaned := strings.Map(stripPunct, strings.ToLower(text))
	for _, word := range strings.Fields(cleaned) {
		if utf8.RuneCountInString(word) < minLen {
			continue
		}
		tokens[word] = struct{}{}
	}
	return tokens
}

// Tokenize is TokenSet flattened to a sorted slice, for callers that need
// a deterministic iteration order.
func Tokenize(text string, minLen int) []string {
	set := TokenSet(text, minLen)
	tokens := make([]string, 0, len(set))
	for token := range set {
		tokens = append(tokens, token)
	}
	sort.Strings(tokens)
	return tokens
}

// IsAlphabetic reports whether the token consists only of letters a-z.
// Tokens are already lowercased by normalization.
func IsAlphabetic(token string) bool {
	for _, r := range token {
		if r < 'a' || r > 'z' {
			return false
		}
	}
	return len(token) > 0
}
