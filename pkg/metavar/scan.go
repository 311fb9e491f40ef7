package metavar

import (
	"unicode"
	"unicode/utf8"
)

// Token is a sigil-led word found in a query.
type Token struct {
	// Offset is the byte offset of the first sigil.
	Offset int
	Text   string
	Var    MetaVariable
}

// End returns the byte offset just past the token.
func (t Token) End() int {
	return t.Offset + len(t.Text)
}

// SigilLen returns the number of bytes taken by leading sigils.
func (t Token) SigilLen() int {
	return len(t.Text) - len(t.Var.Name)
}

// Scan finds every placeholder in text. A candidate is a maximal run of
// sigils followed by a maximal run of letters, digits and underscores that
// does not continue a preceding word. Candidates that classify as ordinary
// text are not returned. The first malformed placeholder stops the scan.
func Scan(text string, sigil rune) ([]Token, error) {
	var tokens []Token
	prev := rune(-1)

	for i := 0; i < len(text); {
		r, size := utf8.DecodeRuneInString(text[i:])
		if r != sigil || isWordRune(prev) {
			prev = r
			i += size
			continue
		}

		start := i
		for i < len(text) {
			r, size = utf8.DecodeRuneInString(text[i:])
			if r != sigil {
				break
			}
			i += size
		}
		for i < len(text) {
			r, size = utf8.DecodeRuneInString(text[i:])
			if !isWordRune(r) {
				break
			}
			i += size
		}

		word := text[start:i]
		mv, err := Extract(word, sigil)
		if err != nil {
			if se, ok := err.(*SyntaxError); ok {
				se.Offset = start
			}
			return nil, err
		}
		if mv.IsCapture() {
			tokens = append(tokens, Token{Offset: start, Text: word, Var: mv})
		}

		prev, _ = utf8.DecodeLastRuneInString(word)
	}

	return tokens, nil
}

func isWordRune(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r)
}
