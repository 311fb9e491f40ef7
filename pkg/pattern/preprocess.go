package pattern

import (
	"strings"
	"unicode"

	"github.com/specvital/structgrep/pkg/metavar"
)

// span records a sigil run rewritten into an expando run.
type span struct {
	newStart, newEnd   int
	origStart, origEnd int
}

type tokenRange struct {
	start, end int
}

// prepared is a trimmed query with placeholders rewritten for the grammar.
type prepared struct {
	query string // original, untrimmed
	lead  int    // bytes of leading whitespace trimmed from query
	text  string // body handed to the grammar
	spans []span
	// tokens are keyed by their range in text.
	tokens map[tokenRange]metavar.Token
}

func prepare(query string, sigil, expando rune) (*prepared, error) {
	body := strings.TrimLeftFunc(query, unicode.IsSpace)
	lead := len(query) - len(body)
	body = strings.TrimRightFunc(body, unicode.IsSpace)

	found, err := metavar.Scan(body, sigil)
	if err != nil {
		if se, ok := err.(*metavar.SyntaxError); ok {
			se.Offset += lead
		}
		return nil, err
	}

	p := &prepared{
		query:  query,
		lead:   lead,
		tokens: make(map[tokenRange]metavar.Token, len(found)),
	}

	var sb strings.Builder
	last := 0
	for _, tok := range found {
		sb.WriteString(body[last:tok.Offset])

		newStart := sb.Len()
		sigilLen := tok.SigilLen()
		if expando != sigil {
			count := 1
			if tok.Var.Kind == metavar.KindMulti {
				count = 3
			}
			sb.WriteString(strings.Repeat(string(expando), count))
			p.spans = append(p.spans, span{
				newStart:  newStart,
				newEnd:    sb.Len(),
				origStart: tok.Offset,
				origEnd:   tok.Offset + sigilLen,
			})
		} else {
			sb.WriteString(tok.Text[:sigilLen])
		}
		sb.WriteString(tok.Var.Name)

		orig := tok
		orig.Offset += lead
		p.tokens[tokenRange{newStart, sb.Len()}] = orig

		last = tok.End()
	}
	sb.WriteString(body[last:])
	p.text = sb.String()

	return p, nil
}

// origOffset maps an offset in p.text to an offset in p.query.
func (p *prepared) origOffset(n int) int {
	if n < 0 {
		n = 0
	}
	if n > len(p.text) {
		n = len(p.text)
	}

	delta := 0
	for _, s := range p.spans {
		if n < s.newStart {
			break
		}
		if n < s.newEnd {
			return s.origStart + p.lead
		}
		delta = s.newEnd - s.origEnd
	}
	return n - delta + p.lead
}

// origText returns the original query text behind a range of p.text.
func (p *prepared) origText(start, end int) string {
	s, e := p.origOffset(start), p.origOffset(end)
	if s > e || e > len(p.query) {
		return ""
	}
	return p.query[s:e]
}
