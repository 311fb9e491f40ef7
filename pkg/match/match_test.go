package match_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/specvital/structgrep/pkg/domain"
	"github.com/specvital/structgrep/pkg/grammar"
	"github.com/specvital/structgrep/pkg/lang"
	"github.com/specvital/structgrep/pkg/match"
	"github.com/specvital/structgrep/pkg/pattern"
)

func compile(t *testing.T, id domain.Language, query string) *pattern.Pattern {
	t.Helper()
	profile, err := lang.Lookup(id)
	require.NoError(t, err)
	p, err := profile.Normalize(query)
	require.NoError(t, err)
	return p
}

func findAll(t *testing.T, p *pattern.Pattern, source string) []match.Match {
	t.Helper()
	src := []byte(source)
	tree, err := p.Language().Grammar().Parse(context.Background(), src)
	require.NoError(t, err)
	t.Cleanup(tree.Close)
	return match.FindAll(p, tree.RootNode(), src)
}

func TestFindAll_SelfMatch(t *testing.T) {
	t.Parallel()

	fragments := map[domain.Language]string{
		domain.LanguageC:          "int x = 1;",
		domain.LanguageCpp:        "int x = 1;",
		domain.LanguageCSharp:     "class A {}",
		domain.LanguageGo:         "func f() {}",
		domain.LanguageHTML:       "<p>hi</p>",
		domain.LanguageJava:       "int x = 1;",
		domain.LanguageJavaScript: "foo(a, b)",
		domain.LanguageKotlin:     "val x = 1",
		domain.LanguageLua:        "local x = 1",
		domain.LanguagePython:     "print(x)",
		domain.LanguageRuby:       "puts x",
		domain.LanguageRust:       "let x = 1;",
		domain.LanguageSwift:      "let x = 1",
		domain.LanguageTSX:        "const x: number = 1;",
		domain.LanguageTypeScript: "const x: number = 1;",
	}

	for _, id := range lang.Languages() {
		fragment, ok := fragments[id]
		require.True(t, ok, "no fragment for %s", id)

		t.Run(id.String(), func(t *testing.T) {
			t.Parallel()

			p := compile(t, id, fragment)
			matches := findAll(t, p, fragment)

			require.Len(t, matches, 1, "pattern %s", p)
			assert.Equal(t, fragment, matches[0].Text())
			assert.Equal(t, uint32(0), matches[0].Start())
			assert.Equal(t, uint32(len(fragment)), matches[0].End())
			assert.Empty(t, matches[0].Names())
		})
	}
}

func TestFindAll_TerminatedFragment(t *testing.T) {
	t.Parallel()

	// A terminated fragment normalizes to its expression, so matches span
	// the expression without the terminator.
	tests := []struct {
		lang     domain.Language
		fragment string
		source   string
		want     string
	}{
		{domain.LanguageJavaScript, "foo();", "foo();", "foo()"},
		{domain.LanguageTypeScript, "foo(1);", "foo(1);", "foo(1)"},
		{domain.LanguageJava, "foo(1);", "foo(1);", "foo(1)"},
		{domain.LanguageRust, "foo(1);", "fn main() { foo(1); }", "foo(1)"},
		{domain.LanguageC, "foo(1);", "void g() { foo(1); }", "foo(1)"},
		{domain.LanguageCSharp, "Foo(1);", "class A { void M() { Foo(1); } }", "Foo(1)"},
	}

	for _, tt := range tests {
		t.Run(tt.lang.String(), func(t *testing.T) {
			t.Parallel()

			p := compile(t, tt.lang, tt.fragment)
			matches := findAll(t, p, tt.source)

			require.Len(t, matches, 1, "pattern %s", p)
			assert.Equal(t, tt.want, matches[0].Text())
			assert.Equal(t, uint32(len(tt.want)), matches[0].End()-matches[0].Start())
		})
	}

	t.Run("span starts at the fragment", func(t *testing.T) {
		t.Parallel()

		p := compile(t, domain.LanguageJavaScript, "foo();")
		matches := findAll(t, p, "foo();")

		require.Len(t, matches, 1)
		assert.Equal(t, uint32(0), matches[0].Start())
		assert.Equal(t, uint32(len("foo()")), matches[0].End())
	})
}

func TestFindAll_RepeatedCapture(t *testing.T) {
	t.Parallel()

	p := compile(t, domain.LanguageJavaScript, "$A + $A")

	t.Run("identical operands bind", func(t *testing.T) {
		matches := findAll(t, p, "x + x")
		require.Len(t, matches, 1)
		assert.Equal(t, "x", matches[0].CaptureText("A"))
		assert.Equal(t, []string{"A"}, matches[0].Names())
	})

	t.Run("different operands fail", func(t *testing.T) {
		assert.Empty(t, findAll(t, p, "x + y"))
	})

	t.Run("structural equality ignores trivia", func(t *testing.T) {
		matches := findAll(t, p, "f(a, b) + f(a, /* c */ b)")
		require.Len(t, matches, 1)
		assert.Equal(t, "f(a, b)", matches[0].CaptureText("A"))
	})

	t.Run("nested occurrences", func(t *testing.T) {
		matches := findAll(t, p, "(x + x) + (x + x)")
		require.Len(t, matches, 3)
		assert.Equal(t, "(x + x) + (x + x)", matches[0].Text())
		assert.Equal(t, "(x + x)", matches[0].CaptureText("A"))
		assert.Equal(t, "x + x", matches[1].Text())
		assert.Equal(t, "x + x", matches[2].Text())
	})
}

func TestFindAll_MultiCapture(t *testing.T) {
	t.Parallel()

	p := compile(t, domain.LanguageJavaScript, "foo($$$ARGS)")

	tests := []struct {
		name   string
		source string
		want   []string
	}{
		{"three arguments", "foo(1, 2, 3)", []string{"1", "2", "3"}},
		{"no arguments", "foo()", []string{}},
		{"one argument", "foo(bar(x))", []string{"bar(x)"}},
		{"comments between arguments", "foo(1, /* two */ 2)", []string{"1", "2"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			matches := findAll(t, p, tt.source)
			require.Len(t, matches, 1)

			m := matches[0]
			b, ok := m.Binding("ARGS")
			require.True(t, ok)
			assert.True(t, b.Multi)
			assert.Equal(t, tt.want, m.CaptureTexts("ARGS"))
			assert.Nil(t, m.Single("ARGS"))
			assert.Empty(t, m.CaptureText("ARGS"))
		})
	}
}

func TestFindAll_MultiCaptureWithNeighbours(t *testing.T) {
	t.Parallel()

	p := compile(t, domain.LanguageJavaScript, "foo($FIRST, $$$REST, $LAST)")

	matches := findAll(t, p, "foo(a, b, c, d)")
	require.Len(t, matches, 1)

	m := matches[0]
	assert.Equal(t, "a", m.CaptureText("FIRST"))
	assert.Equal(t, []string{"b", "c"}, m.CaptureTexts("REST"))
	assert.Equal(t, "d", m.CaptureText("LAST"))

	matches = findAll(t, p, "foo(a, b, d)")
	require.Len(t, matches, 1)
	assert.Equal(t, []string{"b"}, matches[0].CaptureTexts("REST"))

	assert.Empty(t, findAll(t, p, "foo(a)"))
}

func TestFindAll_AnonymousCaptures(t *testing.T) {
	t.Parallel()

	p := compile(t, domain.LanguageJavaScript, "$_ + $_")

	matches := findAll(t, p, "x + y")
	require.Len(t, matches, 1)
	assert.Empty(t, matches[0].Names())

	wild := compile(t, domain.LanguageJavaScript, "foo($$$_)")
	assert.Len(t, findAll(t, wild, "foo(); foo(1); foo(1, 2)"), 3)

	ellipsis := compile(t, domain.LanguagePython, "foo(a, $$$)")
	matches = findAll(t, ellipsis, "foo(a, b)\nfoo(a, b, c)\nfoo(b)\n")
	require.Len(t, matches, 2)
	assert.Empty(t, matches[1].Names())
	assert.Equal(t, "foo(a, b, c)", matches[1].Text())
}

func TestFindAll_LiteralText(t *testing.T) {
	t.Parallel()

	p := compile(t, domain.LanguageJavaScript, "console.log($MSG)")

	matches := findAll(t, p, "console.log('a'); console.warn('b'); logger.log('c');")
	require.Len(t, matches, 1)
	assert.Equal(t, "'a'", matches[0].CaptureText("MSG"))
}

func TestFindAll_TriviaInvariance(t *testing.T) {
	t.Parallel()

	p := compile(t, domain.LanguageJavaScript, "if ($COND) { $$$BODY }")

	sources := []string{
		"if (ok) { run(); stop(); }",
		"if (ok) {\n  run();\n  stop();\n}",
		"if (ok) { // first\n run(); /* then */ stop(); }",
		"if (/* why */ ok) {\n\n\n run();\n // done\n stop();\n}",
	}

	for _, source := range sources {
		matches := findAll(t, p, source)
		require.Len(t, matches, 1, source)
		assert.Equal(t, "ok", matches[0].CaptureText("COND"))
		assert.Equal(t, []string{"run();", "stop();"}, matches[0].CaptureTexts("BODY"))
	}
}

func TestFindAll_GoLineBreaks(t *testing.T) {
	t.Parallel()

	p := compile(t, domain.LanguageGo, "if $C { run() }")

	sources := map[string]string{
		"one line":           "package p\n\nfunc f() { if ok { run() } }\n",
		"gofmt":              "package p\n\nfunc f() {\n\tif ok {\n\t\trun()\n\t}\n}\n",
		"break before brace": "package p\n\nfunc f() { if ok { run()\n} }\n",
		"semicolon":          "package p\n\nfunc f() { if ok { run(); } }\n",
	}

	for name, source := range sources {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			matches := findAll(t, p, source)
			require.Len(t, matches, 1)
			assert.Equal(t, "ok", matches[0].CaptureText("C"))
		})
	}

	t.Run("multi-line pattern", func(t *testing.T) {
		t.Parallel()

		multi := compile(t, domain.LanguageGo, "if $C {\n\trun()\n}")
		matches := findAll(t, multi, sources["one line"])
		require.Len(t, matches, 1)
		assert.Equal(t, "ok", matches[0].CaptureText("C"))
	})

	t.Run("statement sequence", func(t *testing.T) {
		t.Parallel()

		seq := compile(t, domain.LanguageGo, "a(); b()")
		matches := findAll(t, seq, "package p\n\nfunc f() {\n\ta()\n\tb()\n}\n")
		require.Len(t, matches, 1)
		assert.Equal(t, "a()\n\tb()", matches[0].Text())
	})
}

func TestFindAll_TriviaInPattern(t *testing.T) {
	t.Parallel()

	p := compile(t, domain.LanguagePython, "print($A, # label\n $B)")

	matches := findAll(t, p, "print(1, 2)\n")
	require.Len(t, matches, 1)
	assert.Equal(t, "1", matches[0].CaptureText("A"))
	assert.Equal(t, "2", matches[0].CaptureText("B"))
}

func TestFindAll_Sequence(t *testing.T) {
	t.Parallel()

	p := compile(t, domain.LanguageJavaScript, "open($F); close($F);")
	require.True(t, p.IsSequence())

	source := "open(a); close(a);\n// gap\nopen(b);\nclose(b);\nopen(c); close(d);"
	matches := findAll(t, p, source)
	require.Len(t, matches, 2)

	assert.Equal(t, "open(a); close(a);", matches[0].Text())
	assert.Equal(t, "a", matches[0].CaptureText("F"))
	assert.Len(t, matches[0].Nodes, 2)

	assert.Equal(t, "open(b);\nclose(b);", matches[1].Text())
	assert.Equal(t, "b", matches[1].CaptureText("F"))
}

func TestFindAll_ExpandoLanguages(t *testing.T) {
	t.Parallel()

	t.Run("go", func(t *testing.T) {
		p := compile(t, domain.LanguageGo, "fmt.Println($$$ARGS)")
		matches := findAll(t, p, "package main\n\nfunc main() {\n\tfmt.Println(\"a\", b)\n\tfmt.Printf(\"c\")\n}\n")
		require.Len(t, matches, 1)
		assert.Equal(t, []string{`"a"`, "b"}, matches[0].CaptureTexts("ARGS"))
	})

	t.Run("python", func(t *testing.T) {
		p := compile(t, domain.LanguagePython, "$X == None")
		matches := findAll(t, p, "if value == None:\n    pass\n")
		require.Len(t, matches, 1)
		assert.Equal(t, "value", matches[0].CaptureText("X"))
	})
}

func TestFindAll_CustomSigil(t *testing.T) {
	t.Parallel()

	js, err := lang.Lookup(domain.LanguageJavaScript)
	require.NoError(t, err)

	hash, err := lang.NewProfile("js-hash", grammar.Builtin(domain.LanguageJavaScript),
		lang.WithSigil('#'),
		lang.WithExpando('$'),
		lang.WithTrivia(js.TriviaFilter().Names()...),
		lang.WithRules(js.Rules()),
	)
	require.NoError(t, err)

	p, err := hash.Normalize("$(#SEL).hide()")
	require.NoError(t, err)

	matches := findAll(t, p, "$('.menu').hide(); jQuery('.x').hide();")
	require.Len(t, matches, 1)
	assert.Equal(t, "'.menu'", matches[0].CaptureText("SEL"))
}

func TestFindAll_NilRoot(t *testing.T) {
	t.Parallel()

	p := compile(t, domain.LanguageJavaScript, "foo()")
	assert.Nil(t, match.FindAll(p, nil, nil))
}
