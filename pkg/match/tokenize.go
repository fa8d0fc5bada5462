// Package match scores skills for applicability to a task description.
// The default scorer is a cheap, explainable token-overlap measure; any
// smarter scorer (learned, embedding-based) can replace it behind the
// Scorer interface without touching the rest of the registry.
package match

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
)

// TokenSet is a set of normalized word tokens.
type TokenSet map[string]struct{}

// Tokenize splits text into a set of case-folded word tokens. Tokens are
// lightly normalized so common inflections overlap ("testing" and "tests"
// both reduce to "test").
func Tokenize(text string) TokenSet {
	// Casers are stateful, so each call gets its own.
	folded := cases.Fold().String(text)
	words := strings.FieldsFunc(folded, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})

	tokens := make(TokenSet, len(words))
	for _, word := range words {
		tokens[normalize(word)] = struct{}{}
	}
	return tokens
}

// normalize strips common English suffixes. This is deliberately not a
// full stemmer: only cheap reductions that rarely conflate unrelated words.
func normalize(word string) string {
	switch {
	case len(word) > 5 && strings.HasSuffix(word, "ing"):
		word = word[:len(word)-3]
	case len(word) > 4 && strings.HasSuffix(word, "ies"):
		word = word[:len(word)-3] + "y"
	case len(word) > 4 && strings.HasSuffix(word, "es"):
		word = word[:len(word)-2]
	case len(word) > 3 && strings.HasSuffix(word, "ed"):
		word = word[:len(word)-2]
	case len(word) > 3 && strings.HasSuffix(word, "s"):
		word = word[:len(word)-1]
	}
	return word
}

// intersectionSize counts tokens present in both sets.
func intersectionSize(a, b TokenSet) int {
	if len(b) < len(a) {
		a, b = b, a
	}
	n := 0
	for token := range a {
		if _, ok := b[token]; ok {
			n++
		}
	}
	return n
}
