package worddiff

import (
	"unicode"
	"unicode/utf8"
)

// Tokenize splits text into alternating runs of whitespace and non-whitespace.
// Joining the tokens yields text unchanged. Empty input yields no tokens.
func Tokenize(text string) []string {
	if text == "" {
		return nil
	}

	var tokens []string
	start := 0
	r, _ := utf8.DecodeRuneInString(text)
	inSpace := unicode.IsSpace(r)

	for i, r := range text {
		if sp := unicode.IsSpace(r); sp != inSpace {
			tokens = append(tokens, text[start:i])
			start = i
			inSpace = sp
		}
	}
	tokens = append(tokens, text[start:])

	return tokens
}
