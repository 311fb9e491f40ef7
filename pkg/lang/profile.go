// Package lang adapts tree-sitter grammars to the structural search engine.
//
// A Profile bundles everything the engine needs to know about one language:
// the grammar, the trivia kinds skipped while comparing trees, the sigil
// that introduces placeholders, and the table used to unwrap query
// fragments. Profiles are immutable once built and are looked up through a
// Registry.
package lang

import (
	"fmt"
	"path/filepath"

	"github.com/bmatcuk/doublestar/v4"
	sitter "github.com/smacker/go-tree-sitter"

	"github.com/specvital/structgrep/pkg/domain"
	"github.com/specvital/structgrep/pkg/grammar"
	"github.com/specvital/structgrep/pkg/metavar"
	"github.com/specvital/structgrep/pkg/pattern"
)

// Profile is the language adaptation record of one grammar.
type Profile struct {
	name    domain.Language
	grammar *grammar.Grammar
	sigil   rune
	expando rune
	trivia  grammar.KindSet
	rules   pattern.Rules
	aliases []string
	globs   []string
}

var _ pattern.Language = (*Profile)(nil)

// NewProfile builds a profile around g.
func NewProfile(name domain.Language, g *grammar.Grammar, opts ...ProfileOption) (*Profile, error) {
	if name == "" {
		return nil, fmt.Errorf("lang: profile name is empty")
	}
	if g == nil {
		return nil, fmt.Errorf("lang: profile %s: grammar is nil", name)
	}

	options := &ProfileOptions{Sigil: metavar.DefaultSigil}
	for _, opt := range opts {
		opt(options)
	}

	if options.Sigil == 0 {
		return nil, fmt.Errorf("lang: profile %s: sigil is empty", name)
	}
	expando := options.Expando
	if expando == 0 {
		expando = options.Sigil
	}
	for _, glob := range options.Globs {
		if !doublestar.ValidatePattern(glob) {
			return nil, fmt.Errorf("lang: profile %s: invalid glob %q", name, glob)
		}
	}

	return &Profile{
		name:    name,
		grammar: g,
		sigil:   options.Sigil,
		expando: expando,
		trivia:  grammar.NewKindSet(g, options.Trivia...),
		rules:   cloneRules(options.Rules),
		aliases: cloneStrings(options.Aliases),
		globs:   cloneStrings(options.Globs),
	}, nil
}

// Name returns the language identifier.
func (p *Profile) Name() domain.Language {
	return p.name
}

// Grammar returns the bound grammar.
func (p *Profile) Grammar() *grammar.Grammar {
	return p.grammar
}

// Sigil returns the character introducing placeholders.
func (p *Profile) Sigil() rune {
	return p.sigil
}

// Expando returns the character substituted for the sigil before parsing.
func (p *Profile) Expando() rune {
	return p.expando
}

// TriviaFilter returns the node kinds skipped during matching.
func (p *Profile) TriviaFilter() grammar.KindSet {
	return p.trivia
}

// IsTrivia reports whether n should be skipped while walking trees.
func (p *Profile) IsTrivia(n *sitter.Node) bool {
	return p.trivia.HasNode(n)
}

// Rules returns a copy of the unwrap table.
func (p *Profile) Rules() pattern.Rules {
	return cloneRules(p.rules)
}

// Aliases returns alternative names accepted by Lookup.
func (p *Profile) Aliases() []string {
	return cloneStrings(p.aliases)
}

// Globs returns the file patterns owned by the language.
func (p *Profile) Globs() []string {
	return cloneStrings(p.globs)
}

// MatchPath reports whether path belongs to the language.
func (p *Profile) MatchPath(path string) bool {
	slashed := filepath.ToSlash(path)
	for _, glob := range p.globs {
		if ok, err := doublestar.Match(glob, slashed); err == nil && ok {
			return true
		}
	}
	return false
}

// ExtractMetaVar classifies a single token with the profile's sigil.
func (p *Profile) ExtractMetaVar(token string) (metavar.MetaVariable, error) {
	return metavar.Extract(token, p.sigil)
}

// Normalize builds a pattern from a query fragment.
func (p *Profile) Normalize(query string, opts ...pattern.Option) (*pattern.Pattern, error) {
	return pattern.New(p, query, opts...)
}

func (p *Profile) String() string {
	return p.name.String()
}

func cloneStrings(s []string) []string {
	if s == nil {
		return nil
	}
	out := make([]string, len(s))
	copy(out, s)
	return out
}

func cloneRules(r pattern.Rules) pattern.Rules {
	var contexts []pattern.Context
	if r.Contexts != nil {
		contexts = make([]pattern.Context, len(r.Contexts))
		copy(contexts, r.Contexts)
	}
	return pattern.Rules{
		Contexts: contexts,
		Strip:    cloneStrings(r.Strip),
		Prefer:   cloneStrings(r.Prefer),
	}
}
