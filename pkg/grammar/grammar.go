// Package grammar binds tree-sitter grammars to language identifiers.
//
// A Grammar is an opaque, read-only handle around a compiled tree-sitter
// language. Grammars are shared for the lifetime of the process and are safe
// for concurrent use.
//
// Note: parsers are not pooled. When a context is cancelled during ParseCtx,
// the parser's internal cancel flag is set but not properly reset, causing
// subsequent parses to fail with "operation limit was hit". Creating fresh
// parsers avoids this issue.
package grammar

import (
	"context"
	"fmt"
	"sync"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/c"
	"github.com/smacker/go-tree-sitter/cpp"
	"github.com/smacker/go-tree-sitter/csharp"
	"github.com/smacker/go-tree-sitter/golang"
	"github.com/smacker/go-tree-sitter/html"
	"github.com/smacker/go-tree-sitter/java"
	"github.com/smacker/go-tree-sitter/javascript"
	"github.com/smacker/go-tree-sitter/kotlin"
	"github.com/smacker/go-tree-sitter/lua"
	"github.com/smacker/go-tree-sitter/python"
	"github.com/smacker/go-tree-sitter/ruby"
	"github.com/smacker/go-tree-sitter/rust"
	"github.com/smacker/go-tree-sitter/swift"
	"github.com/smacker/go-tree-sitter/typescript/tsx"
	"github.com/smacker/go-tree-sitter/typescript/typescript"

	"github.com/specvital/structgrep/pkg/domain"
)

// MaxTreeDepth is the maximum recursion depth when walking syntax trees.
const MaxTreeDepth = 1000

// Grammar is a compiled tree-sitter language.
type Grammar struct {
	name domain.Language
	lang *sitter.Language

	symbols sync.Map // kind name -> *symbolEntry
}

var (
	builtins map[domain.Language]*Grammar
	langOnce sync.Once
)

func initLanguages() {
	langOnce.Do(func() {
		builtins = map[domain.Language]*Grammar{
			domain.LanguageC:          New(domain.LanguageC, c.GetLanguage()),
			domain.LanguageCpp:        New(domain.LanguageCpp, cpp.GetLanguage()),
			domain.LanguageCSharp:     New(domain.LanguageCSharp, csharp.GetLanguage()),
			domain.LanguageGo:         New(domain.LanguageGo, golang.GetLanguage()),
			domain.LanguageHTML:       New(domain.LanguageHTML, html.GetLanguage()),
			domain.LanguageJava:       New(domain.LanguageJava, java.GetLanguage()),
			domain.LanguageJavaScript: New(domain.LanguageJavaScript, javascript.GetLanguage()),
			domain.LanguageKotlin:     New(domain.LanguageKotlin, kotlin.GetLanguage()),
			domain.LanguageLua:        New(domain.LanguageLua, lua.GetLanguage()),
			domain.LanguagePython:     New(domain.LanguagePython, python.GetLanguage()),
			domain.LanguageRuby:       New(domain.LanguageRuby, ruby.GetLanguage()),
			domain.LanguageRust:       New(domain.LanguageRust, rust.GetLanguage()),
			domain.LanguageSwift:      New(domain.LanguageSwift, swift.GetLanguage()),
			domain.LanguageTSX:        New(domain.LanguageTSX, tsx.GetLanguage()),
			domain.LanguageTypeScript: New(domain.LanguageTypeScript, typescript.GetLanguage()),
		}
	})
}

// New wraps a tree-sitter language. Most callers want Builtin instead.
func New(name domain.Language, lang *sitter.Language) *Grammar {
	return &Grammar{name: name, lang: lang}
}

// Builtin returns the bundled grammar for lang, or nil if none is bundled.
func Builtin(lang domain.Language) *Grammar {
	initLanguages()
	return builtins[lang]
}

// Name returns the language the grammar was compiled for.
func (g *Grammar) Name() domain.Language {
	return g.name
}

// Language returns the underlying tree-sitter language.
func (g *Grammar) Language() *sitter.Language {
	return g.lang
}

// Parse parses text as a complete program using a fresh parser.
// Caller MUST call tree.Close() to free resources.
func (g *Grammar) Parse(ctx context.Context, text []byte) (*sitter.Tree, error) {
	parser := sitter.NewParser()
	defer parser.Close()
	parser.SetLanguage(g.lang)

	tree, err := parser.ParseCtx(ctx, nil, text)
	if err != nil {
		return nil, fmt.Errorf("parse %s failed: %w", g.name, err)
	}

	return tree, nil
}
