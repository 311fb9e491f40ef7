package pattern

import (
	"github.com/specvital/structgrep/pkg/domain"
	"github.com/specvital/structgrep/pkg/grammar"
)

// Language is what the normalizer needs from a language profile.
type Language interface {
	Name() domain.Language
	Grammar() *grammar.Grammar
	// Sigil introduces placeholders in query text.
	Sigil() rune
	// Expando replaces the sigil before the grammar sees the query. It must
	// be legal inside identifiers of the grammar.
	Expando() rune
	TriviaFilter() grammar.KindSet
	Rules() Rules
}

// Context wraps a fragment so the grammar accepts it as a full program.
type Context struct {
	Name   string
	Prefix string
	Suffix string
	// Priority orders contexts whose results rank equally in Rules.Prefer.
	// Lower values win. Contexts may share a priority; a tie between
	// different interpretations is reported as ambiguous.
	Priority int
}

// Rules is the per-language unwrap table.
type Rules struct {
	// Contexts are tried in turn; an empty list means the raw fragment.
	Contexts []Context
	// Strip lists wrapper kinds removed from a single root when they hold
	// exactly one named child, e.g. expression_statement.
	Strip []string
	// Prefer ranks root kinds. An interpretation whose root kind appears
	// earlier wins over any context priority.
	Prefer []string
}

// ProgramContext parses the fragment as written.
var ProgramContext = Context{Name: "program"}

// EffectiveContexts returns Contexts, or the raw program context when none
// are declared.
func (r Rules) EffectiveContexts() []Context {
	if len(r.Contexts) == 0 {
		return []Context{ProgramContext}
	}
	return r.Contexts
}

func (r Rules) strips(kind string) bool {
	for _, k := range r.Strip {
		if k == kind {
			return true
		}
	}
	return false
}

func (r Rules) rank(kind string) int {
	for i, k := range r.Prefer {
		if k == kind {
			return i
		}
	}
	return len(r.Prefer)
}
