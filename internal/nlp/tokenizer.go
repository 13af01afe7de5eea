package nlp

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

var tokenRe = regexp.MustCompile(
	`\$\d[\d,]*(?:\.\d+)?[kKmM]?` +
		`|\d+(?:\.\d+)?%` +
		`|[\p{L}\p{N}_]+(?:[.'][\p{L}\p{N}_]+)*[+#]*` +
		`|[^\S ]+` +
		`|\S`,
)

// runeIndex maps byte offsets of text to character offsets.
type runeIndex []int

func newRuneIndex(text string) runeIndex {
	idx := make(runeIndex, len(text)+1)
	n := 0
	for i := 0; i < len(text); i++ {
		idx[i] = n
		if utf8.RuneStart(text[i]) {
			n++
		}
	}
	idx[len(text)] = n
	return idx
}

func (r runeIndex) at(byteOffset int) int {
	return r[byteOffset]
}

// tokenize splits text into raw tokens with character offsets. Single
// spaces separate tokens and are not emitted.
func tokenize(text string, idx runeIndex) []Token {
	locs := tokenRe.FindAllStringIndex(text, -1)
	tokens := make([]Token, 0, len(locs))
	for _, loc := range locs {
		raw := text[loc[0]:loc[1]]
		tok := Token{
			Text:      raw,
			Start:     idx.at(loc[0]),
			End:       idx.at(loc[1]),
			byteStart: loc[0],
			byteEnd:   loc[1],
		}
		switch {
		case strings.TrimSpace(raw) == "":
			tok.IsSpace = true
		case isPunctuation(raw):
			tok.IsPunct = true
		}
		tokens = append(tokens, tok)
	}
	return tokens
}

func isPunctuation(s string) bool {
	r, size := utf8.DecodeRuneInString(s)
	if size != len(s) {
		return false
	}
	return unicode.IsPunct(r)
}

func isSymbol(s string) bool {
	r, size := utf8.DecodeRuneInString(s)
	return size == len(s) && unicode.IsSymbol(r)
}

func isNumeric(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}

func isCapitalized(s string) bool {
	r, _ := utf8.DecodeRuneInString(s)
	return unicode.IsUpper(r)
}

func isAllCaps(s string) bool {
	letters := 0
	for _, r := range s {
		if unicode.IsLetter(r) {
			if !unicode.IsUpper(r) {
				return false
			}
			letters++
		}
	}
	return letters >= 2
}
