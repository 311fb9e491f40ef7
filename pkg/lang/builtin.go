package lang

import (
	"fmt"

	"github.com/specvital/structgrep/pkg/domain"
	"github.com/specvital/structgrep/pkg/grammar"
	"github.com/specvital/structgrep/pkg/pattern"
)

// expandoUnderscore stands in for the sigil in grammars that reject '$'.
// Every bundled grammar lexes "_NAME" as an identifier, including the ones
// restricted to ASCII identifiers such as Lua.
const expandoUnderscore = '_'

// builtinProfile is the adaptation record of one bundled grammar.
type builtinProfile struct {
	lang    domain.Language
	expando rune
	trivia  []string
	rules   pattern.Rules
	aliases []string
	globs   []string
}

var (
	// A bare "{...}" parses as a block; prefer the object literal when the
	// fragment also reads as an expression.
	ecmaRules = pattern.Rules{
		Contexts: []pattern.Context{
			pattern.ProgramContext,
			{Name: "expression", Prefix: "(", Suffix: ")", Priority: 1},
		},
		Strip:  []string{"expression_statement"},
		Prefer: []string{"object", "statement_block"},
	}

	// Grammars whose expression statements need a terminator.
	terminatedRules = pattern.Rules{
		Contexts: []pattern.Context{
			pattern.ProgramContext,
			{Name: "statement", Suffix: ";", Priority: 1},
		},
		Strip: []string{"expression_statement"},
	}

	// A C translation unit holds declarations only, so statements and bare
	// expressions are parsed inside a function body.
	cRules = pattern.Rules{
		Contexts: []pattern.Context{
			pattern.ProgramContext,
			{Name: "statement", Prefix: "void f() { ", Suffix: " }", Priority: 1},
			{Name: "expression", Prefix: "void f() { ", Suffix: "; }", Priority: 2},
		},
		Strip: []string{"expression_statement"},
	}

	goRules = pattern.Rules{
		Contexts: []pattern.Context{
			pattern.ProgramContext,
			{Name: "statement", Suffix: "\n", Priority: 1},
		},
		Strip: []string{"expression_statement"},
	}

	// C# only allows invocations and assignments as statements; any other
	// expression reads as a field initializer.
	csharpRules = pattern.Rules{
		Contexts: []pattern.Context{
			pattern.ProgramContext,
			{Name: "statement", Prefix: "class C { void M() { ", Suffix: " } }", Priority: 1},
			{Name: "expression", Prefix: "class C { object f = ", Suffix: "; }", Priority: 2},
		},
		Strip: []string{"global_statement", "expression_statement"},
	}

	// A Lua chunk holds statements only; bare expressions need "return".
	luaRules = pattern.Rules{
		Contexts: []pattern.Context{
			pattern.ProgramContext,
			{Name: "expression", Prefix: "return ", Priority: 1},
		},
		Strip: []string{"expression_list"},
	}

	pythonRules = pattern.Rules{
		Strip: []string{"expression_statement"},
	}
)

var builtinProfiles = []builtinProfile{
	{
		lang:    domain.LanguageC,
		expando: expandoUnderscore,
		trivia:  []string{"comment"},
		rules:   cRules,
		globs:   []string{"**/*.c", "**/*.h"},
	},
	{
		lang:    domain.LanguageCpp,
		expando: expandoUnderscore,
		trivia:  []string{"comment"},
		rules:   cRules,
		aliases: []string{"c++", "cc", "cxx"},
		globs:   []string{"**/*.cpp", "**/*.cc", "**/*.cxx", "**/*.hpp", "**/*.hh", "**/*.hxx"},
	},
	{
		lang:    domain.LanguageCSharp,
		expando: expandoUnderscore,
		trivia:  []string{"comment"},
		rules:   csharpRules,
		aliases: []string{"cs", "c#"},
		globs:   []string{"**/*.cs"},
	},
	{
		lang:    domain.LanguageGo,
		expando: expandoUnderscore,
		// Statement terminators are tokens in the Go grammar. Skipping them
		// keeps line breaks from deciding a match.
		trivia:  []string{"comment", "\n", ";"},
		rules:   goRules,
		aliases: []string{"golang"},
		globs:   []string{"**/*.go"},
	},
	{
		lang:    domain.LanguageHTML,
		trivia:  []string{"comment"},
		aliases: []string{"htm"},
		globs:   []string{"**/*.html", "**/*.htm"},
	},
	{
		lang:   domain.LanguageJava,
		trivia: []string{"line_comment", "block_comment", "comment"},
		rules:  terminatedRules,
		globs:  []string{"**/*.java"},
	},
	{
		lang:    domain.LanguageJavaScript,
		trivia:  []string{"comment", "html_comment"},
		rules:   ecmaRules,
		aliases: []string{"js", "jsx"},
		globs:   []string{"**/*.js", "**/*.mjs", "**/*.cjs", "**/*.jsx"},
	},
	{
		lang:    domain.LanguageKotlin,
		expando: expandoUnderscore,
		trivia:  []string{"comment", "line_comment", "multiline_comment"},
		aliases: []string{"kt"},
		globs:   []string{"**/*.kt", "**/*.kts"},
	},
	{
		lang:    domain.LanguageLua,
		expando: expandoUnderscore,
		trivia:  []string{"comment"},
		rules:   luaRules,
		globs:   []string{"**/*.lua"},
	},
	{
		lang:    domain.LanguagePython,
		expando: expandoUnderscore,
		trivia:  []string{"comment"},
		rules:   pythonRules,
		aliases: []string{"py"},
		globs:   []string{"**/*.py", "**/*.pyi"},
	},
	{
		lang:    domain.LanguageRuby,
		expando: expandoUnderscore,
		trivia:  []string{"comment"},
		aliases: []string{"rb"},
		globs:   []string{"**/*.rb"},
	},
	{
		lang:    domain.LanguageRust,
		expando: expandoUnderscore,
		trivia:  []string{"line_comment", "block_comment"},
		rules:   terminatedRules,
		aliases: []string{"rs"},
		globs:   []string{"**/*.rs"},
	},
	{
		lang:    domain.LanguageSwift,
		expando: expandoUnderscore,
		trivia:  []string{"comment", "multiline_comment"},
		globs:   []string{"**/*.swift"},
	},
	{
		lang:   domain.LanguageTSX,
		trivia: []string{"comment", "html_comment"},
		rules:  ecmaRules,
		globs:  []string{"**/*.tsx"},
	},
	{
		lang:    domain.LanguageTypeScript,
		trivia:  []string{"comment", "html_comment"},
		rules:   ecmaRules,
		aliases: []string{"ts"},
		globs:   []string{"**/*.ts", "**/*.mts", "**/*.cts"},
	},
}

func init() {
	for _, b := range builtinProfiles {
		p, err := b.profile()
		if err != nil {
			panic(err)
		}
		defaultRegistry.MustRegister(p)
	}
}

func (b builtinProfile) profile() (*Profile, error) {
	g := grammar.Builtin(b.lang)
	if g == nil {
		return nil, fmt.Errorf("lang: no bundled grammar for %s", b.lang)
	}

	opts := []ProfileOption{
		WithTrivia(b.trivia...),
		WithRules(b.rules),
		WithAliases(b.aliases...),
		WithGlobs(b.globs...),
	}
	if b.expando != 0 {
		opts = append(opts, WithExpando(b.expando))
	}
	return NewProfile(b.lang, g, opts...)
}

// NewBuiltin returns a fresh copy of a bundled profile, e.g. to register
// it in a custom Registry.
func NewBuiltin(id domain.Language) (*Profile, error) {
	key := domain.Normalize(id.String())
	for _, b := range builtinProfiles {
		if b.lang == key {
			return b.profile()
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrUnsupportedLanguage, id)
}
