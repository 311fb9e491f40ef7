package metavar

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtract(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		token string
		want  MetaVariable
	}{
		{"named single", "$A", MetaVariable{Kind: KindSingle, Name: "A"}},
		{"named single with digits", "$VAR_2", MetaVariable{Kind: KindSingle, Name: "VAR_2"}},
		{"wildcard single", "$_", MetaVariable{Kind: KindSingle, Name: "_", Anonymous: true}},
		{"wildcard single long", "$__", MetaVariable{Kind: KindSingle, Name: "__", Anonymous: true}},
		{"named multi", "$$$ARGS", MetaVariable{Kind: KindMulti, Name: "ARGS"}},
		{"wildcard multi", "$$$_", MetaVariable{Kind: KindMulti, Name: "_", Anonymous: true}},
		{"leading underscore name", "$_A", MetaVariable{Kind: KindSingle, Name: "_A"}},
		{"plain identifier", "foo", MetaVariable{Kind: KindNone, Name: "foo"}},
		{"lower case", "$foo", MetaVariable{Kind: KindNone, Name: "$foo"}},
		{"mixed case", "$Foo", MetaVariable{Kind: KindNone, Name: "$Foo"}},
		{"lower case with two sigils", "$$foo", MetaVariable{Kind: KindNone, Name: "$$foo"}},
		{"bare sigil", "$", MetaVariable{Kind: KindNone, Name: "$"}},
		{"bare ellipsis", "$$$", MetaVariable{Kind: KindMulti, Anonymous: true}},
		{"bare double sigil", "$$", MetaVariable{Kind: KindNone, Name: "$$"}},
		{"punctuation", "$A-B", MetaVariable{Kind: KindNone, Name: "$A-B"}},
		{"sigil not leading", "A$B", MetaVariable{Kind: KindNone, Name: "A$B"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := Extract(tt.token, DefaultSigil)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestExtract_SigilCount(t *testing.T) {
	t.Parallel()

	for _, sigil := range []rune{'$', '#', 'µ'} {
		for n := 1; n <= 6; n++ {
			token := strings.Repeat(string(sigil), n) + "NAME"
			mv, err := Extract(token, sigil)

			switch n {
			case 1:
				require.NoError(t, err, token)
				assert.Equal(t, KindSingle, mv.Kind, token)
				assert.Equal(t, "NAME", mv.Name, token)
			case 3:
				require.NoError(t, err, token)
				assert.Equal(t, KindMulti, mv.Kind, token)
				assert.Equal(t, "NAME", mv.Name, token)
			default:
				require.Error(t, err, token)
				assert.True(t, errors.Is(err, ErrInvalidMetaVariable), token)

				var se *SyntaxError
				require.ErrorAs(t, err, &se)
				assert.Equal(t, token, se.Token)
			}
		}
	}
}

func TestExtract_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		token string
	}{
		{"two sigils", "$$A"},
		{"four sigils", "$$$$A"},
		{"two sigil wildcard", "$$_"},
		{"digit first", "$1A"},
		{"only digits", "$0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := Extract(tt.token, DefaultSigil)
			require.ErrorIs(t, err, ErrInvalidMetaVariable)
			assert.Contains(t, err.Error(), tt.token)
		})
	}
}

func TestExtract_CustomSigil(t *testing.T) {
	t.Parallel()

	// Given a language where '$' is ordinary syntax
	const sigil = '#'

	// When
	hash, err := Extract("#VAR", sigil)
	require.NoError(t, err)
	dollar, err := Extract("$VAR", sigil)
	require.NoError(t, err)

	// Then
	assert.Equal(t, MetaVariable{Kind: KindSingle, Name: "VAR"}, hash)
	assert.False(t, dollar.IsCapture())
}

func TestMetaVariable_Token(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "$A", MetaVariable{Kind: KindSingle, Name: "A"}.String())
	assert.Equal(t, "###ARGS", MetaVariable{Kind: KindMulti, Name: "ARGS"}.Token('#'))
	assert.Equal(t, "foo", MetaVariable{Kind: KindNone, Name: "foo"}.Token('#'))
}

func TestMetaVariable_Predicates(t *testing.T) {
	t.Parallel()

	named := MetaVariable{Kind: KindSingle, Name: "A"}
	anon := MetaVariable{Kind: KindMulti, Name: "_", Anonymous: true}
	text := MetaVariable{Kind: KindNone, Name: "a"}

	assert.True(t, named.IsCapture())
	assert.True(t, named.IsNamed())
	assert.True(t, anon.IsCapture())
	assert.False(t, anon.IsNamed())
	assert.False(t, text.IsCapture())
	assert.False(t, text.IsNamed())
}

func TestKind_String(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "none", KindNone.String())
	assert.Equal(t, "single", KindSingle.String())
	assert.Equal(t, "multi", KindMulti.String())
	assert.Equal(t, "unknown", Kind(42).String())
}
