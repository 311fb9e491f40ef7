// Package metavar classifies query tokens as capture placeholders.
//
// A placeholder is a run of sigil characters followed by a name:
//
//	$NAME     captures exactly one node
//	$$$NAME   captures zero or more consecutive sibling nodes
//	$_        matches one node and discards it
//	$$$_      matches any run of siblings and discards it
//	$$$       same as $$$_
//
// Names are upper-case identifiers. A sigil followed by a lower-case or
// mixed-case word ($foo, $Foo) is ordinary source text, so languages where
// the sigil is legal in identifiers keep working. Any other sigil count
// ($$A, $$$$A) is a syntax error.
package metavar

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"
)

// DefaultSigil introduces a placeholder unless a language overrides it.
const DefaultSigil = '$'

// ErrInvalidMetaVariable is the sentinel behind every *SyntaxError.
var ErrInvalidMetaVariable = errors.New("metavar: invalid meta variable")

// Kind describes how many nodes a placeholder binds.
type Kind int

const (
	KindNone   Kind = iota // ordinary text
	KindSingle             // exactly one node
	KindMulti              // zero or more consecutive siblings
)

func (k Kind) String() string {
	switch k {
	case KindNone:
		return "none"
	case KindSingle:
		return "single"
	case KindMulti:
		return "multi"
	default:
		return "unknown"
	}
}

// MetaVariable is the classification of one token.
type MetaVariable struct {
	Kind Kind
	// Name is the capture name without sigils. Anonymous placeholders keep
	// their underscores so they can still be printed; a bare ellipsis has
	// none.
	Name string
	// Anonymous placeholders match but never record a binding.
	Anonymous bool
}

// IsCapture reports whether the token is a placeholder at all.
func (m MetaVariable) IsCapture() bool {
	return m.Kind != KindNone
}

// IsNamed reports whether matches bind the placeholder under Name.
func (m MetaVariable) IsNamed() bool {
	return m.Kind != KindNone && !m.Anonymous
}

// Token renders the placeholder back with sigil.
func (m MetaVariable) Token(sigil rune) string {
	switch m.Kind {
	case KindSingle:
		return string(sigil) + m.Name
	case KindMulti:
		return strings.Repeat(string(sigil), 3) + m.Name
	default:
		return m.Name
	}
}

func (m MetaVariable) String() string {
	return m.Token(DefaultSigil)
}

// SyntaxError reports a malformed placeholder.
type SyntaxError struct {
	Token  string
	Offset int
	Reason string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("%v %q at offset %d: %s", ErrInvalidMetaVariable, e.Token, e.Offset, e.Reason)
}

func (e *SyntaxError) Unwrap() error {
	return ErrInvalidMetaVariable
}

// Extract classifies token against sigil.
// Tokens that are not placeholders yield a KindNone value and a nil error.
func Extract(token string, sigil rune) (MetaVariable, error) {
	literal := MetaVariable{Kind: KindNone, Name: token}

	count, rest := countSigils(token, sigil)
	if count == 0 {
		return literal, nil
	}

	// A bare $$$ is an anonymous ellipsis.
	if count == 3 && rest == "" {
		return MetaVariable{Kind: KindMulti, Anonymous: true}, nil
	}

	// Case check first: $foo and $Foo are source text, never errors.
	if !isCaptureShaped(rest) {
		return literal, nil
	}

	var kind Kind
	switch count {
	case 1:
		kind = KindSingle
	case 3:
		kind = KindMulti
	default:
		return MetaVariable{}, &SyntaxError{
			Token:  token,
			Reason: fmt.Sprintf("%d leading %q, want 1 or 3", count, sigil),
		}
	}

	if strings.Trim(rest, "_") == "" {
		return MetaVariable{Kind: kind, Name: rest, Anonymous: true}, nil
	}

	if rest[0] >= '0' && rest[0] <= '9' {
		return MetaVariable{}, &SyntaxError{
			Token:  token,
			Reason: "name must not start with a digit",
		}
	}

	return MetaVariable{Kind: kind, Name: rest}, nil
}

func countSigils(token string, sigil rune) (int, string) {
	count := 0
	rest := token
	for rest != "" {
		r, size := utf8.DecodeRuneInString(rest)
		if r != sigil {
			break
		}
		count++
		rest = rest[size:]
	}
	return count, rest
}

// isCaptureShaped reports whether s uses only the placeholder alphabet.
func isCaptureShaped(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		if !isUpperWord(c) {
			return false
		}
	}
	return true
}

func isUpperWord(c byte) bool {
	return c == '_' || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9')
}
