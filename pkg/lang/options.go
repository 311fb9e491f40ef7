package lang

import (
	"github.com/rs/zerolog"

	"github.com/specvital/structgrep/pkg/pattern"
)

// ProfileOptions configures a Profile.
type ProfileOptions struct {
	// Sigil introduces placeholders. Default: '$'.
	Sigil rune

	// Expando is substituted for the sigil before the grammar parses a
	// query. Languages whose identifiers cannot contain the sigil use a
	// character their identifiers accept. Default: the sigil.
	Expando rune

	// Trivia lists node kinds skipped while comparing trees.
	// Default: none.
	Trivia []string

	// Rules is the unwrap table used to normalize query fragments.
	Rules pattern.Rules

	// Aliases are extra names accepted by Registry.Lookup.
	Aliases []string

	// Globs are doublestar patterns matched by Registry.ForPath.
	Globs []string
}

// ProfileOption is a functional option for NewProfile.
type ProfileOption func(*ProfileOptions)

// WithSigil sets the placeholder sigil.
func WithSigil(r rune) ProfileOption {
	return func(o *ProfileOptions) {
		o.Sigil = r
	}
}

// WithExpando sets the character the sigil is rewritten to before parsing.
func WithExpando(r rune) ProfileOption {
	return func(o *ProfileOptions) {
		o.Expando = r
	}
}

// WithTrivia adds node kinds to skip.
func WithTrivia(kinds ...string) ProfileOption {
	return func(o *ProfileOptions) {
		o.Trivia = append(o.Trivia, kinds...)
	}
}

// WithRules sets the unwrap table.
func WithRules(r pattern.Rules) ProfileOption {
	return func(o *ProfileOptions) {
		o.Rules = r
	}
}

// WithAliases adds lookup aliases.
func WithAliases(aliases ...string) ProfileOption {
	return func(o *ProfileOptions) {
		o.Aliases = append(o.Aliases, aliases...)
	}
}

// WithGlobs adds file patterns.
func WithGlobs(globs ...string) ProfileOption {
	return func(o *ProfileOptions) {
		o.Globs = append(o.Globs, globs...)
	}
}

// RegistryOptions configures a Registry.
type RegistryOptions struct {
	// Logger receives registration events. Default: no-op.
	Logger zerolog.Logger
}

// RegistryOption is a functional option for NewRegistry.
type RegistryOption func(*RegistryOptions)

// WithRegistryLogger sets the registry logger.
func WithRegistryLogger(l zerolog.Logger) RegistryOption {
	return func(o *RegistryOptions) {
		o.Logger = l
	}
}
