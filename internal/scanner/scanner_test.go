package scanner

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lunalang/luna/internal/token"
)

func kinds(source string) []token.Kind {
	s := New(source)
	var out []token.Kind
	for {
		tok := s.Next()
		out = append(out, tok.Kind)
		if tok.Kind == token.EOF {
			return out
		}
	}
}

func TestScanOperators(t *testing.T) {
	got := kinds("! != = == < <= > >=")
	assert.Equal(t, []token.Kind{
		token.Bang, token.BangEqual, token.Equal, token.EqualEqual,
		token.Less, token.LessEqual, token.Greater, token.GreaterEqual, token.EOF,
	}, got)
}

func TestScanKeywordsAndIdentifiers(t *testing.T) {
	got := kinds("and or struct selfish self")
	assert.Equal(t, []token.Kind{
		token.And, token.Or, token.Struct, token.Identifier, token.Self, token.EOF,
	}, got)
}

func TestScanNumber(t *testing.T) {
	s := New("12.5")
	tok := s.Next()
	require.Equal(t, token.Number, tok.Kind)
	assert.Equal(t, "12.5", tok.Lexeme)
}

func TestScanStringWithEmbeddedNewline(t *testing.T) {
	s := New("\"a\nb\" true")
	str := s.Next()
	require.Equal(t, token.String, str.Kind)
	assert.Equal(t, "\"a\nb\"", str.Lexeme)

	next := s.Next()
	require.Equal(t, token.True, next.Kind)
	assert.Equal(t, 2, next.Line, "line counter must advance past the embedded newline")
}

func TestUnterminatedStringIsAnErrorToken(t *testing.T) {
	s := New("\"abc")
	tok := s.Next()
	require.Equal(t, token.Error, tok.Kind)
	assert.Equal(t, "Unterminated string.", tok.Lexeme)
}

func TestLineCommentSkipped(t *testing.T) {
	got := kinds("1 # a comment\n2")
	assert.Equal(t, []token.Kind{token.Number, token.Number, token.EOF}, got)
}

func TestScanningTwiceYieldsIdenticalStream(t *testing.T) {
	src := "def f(a, b) { return a + b }"
	assert.Equal(t, kinds(src), kinds(src))
}

func TestUnexpectedCharacterIsAnErrorToken(t *testing.T) {
	s := New("@")
	tok := s.Next()
	require.Equal(t, token.Error, tok.Kind)
	assert.Equal(t, "Unexpected character.", tok.Lexeme)
}
