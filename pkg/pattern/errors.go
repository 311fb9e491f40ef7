package pattern

import (
	"errors"
	"fmt"
	"strings"

	"github.com/specvital/structgrep/pkg/domain"
)

var (
	// ErrPatternParse is returned when no context parses the fragment.
	ErrPatternParse = errors.New("pattern: cannot parse fragment")
	// ErrAmbiguousPattern is returned when the preference table cannot
	// choose between interpretations.
	ErrAmbiguousPattern = errors.New("pattern: ambiguous fragment")
)

// ParseError reports the first syntax error of a fragment.
type ParseError struct {
	Language domain.Language
	// Offset is a byte offset into the original query.
	Offset int
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%v as %s at offset %d", ErrPatternParse, e.Language, e.Offset)
}

func (e *ParseError) Unwrap() error {
	return ErrPatternParse
}

// AmbiguousError lists the interpretations that tied.
type AmbiguousError struct {
	Language domain.Language
	// Candidates are "context: shape" descriptions.
	Candidates []string
}

func (e *AmbiguousError) Error() string {
	return fmt.Sprintf("%v as %s: %s", ErrAmbiguousPattern, e.Language, strings.Join(e.Candidates, "; "))
}

func (e *AmbiguousError) Unwrap() error {
	return ErrAmbiguousPattern
}
