package lexer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func kinds(toks []Token) []TokenKind {
	out := make([]TokenKind, len(toks))
	for i, tok := range toks {
		out[i] = tok.Kind
	}
	return out
}

func TestScan_PipeChain(t *testing.T) {
	t.Parallel()

	toks, err := Scan(`data.from_input() | metrics.sum(field="amount")`)
	require.NoError(t, err)

	assert.Equal(t, []TokenKind{
		IDENT, DOT, IDENT, LPAREN, RPAREN,
		PIPE,
		IDENT, DOT, IDENT, LPAREN, IDENT, EQUALS, STRING, RPAREN,
		EOF,
	}, kinds(toks))
	assert.Equal(t, "amount", toks[12].Text, "string token should carry decoded text without quotes")
}

func TestScan_PipelineHeaderAndVariables(t *testing.T) {
	t.Parallel()

	src := "@pipeline monthly:\n" +
		"  $year = 2024\n" +
		"  data.from_input()\n"
	toks, err := Scan(src)
	require.NoError(t, err)

	assert.Equal(t, []TokenKind{
		AT, IDENT, IDENT, COLON, NEWLINE,
		DOLLAR, IDENT, EQUALS, NUMBER, NEWLINE,
		IDENT, DOT, IDENT, LPAREN, RPAREN, NEWLINE,
		EOF,
	}, kinds(toks))
	assert.Equal(t, "pipeline", toks[1].Text)
	assert.Equal(t, "monthly", toks[2].Text)
	assert.Equal(t, "2024", toks[8].Text)
}

func TestScan_Literals(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		src  string
		kind TokenKind
		text string
	}{
		{"integer", "42", NUMBER, "42"},
		{"decimal", "3.14", NUMBER, "3.14"},
		{"negative", "-7", NUMBER, "-7"},
		{"true", "true", BOOL, "true"},
		{"false", "false", BOOL, "false"},
		{"null reads as ident", "null", IDENT, "null"},
		{"escaped quote", `"say \"hi\""`, STRING, `say "hi"`},
		{"escaped newline", `"a\nb"`, STRING, "a\nb"},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			toks, err := Scan(tc.src)
			require.NoError(t, err)
			require.Len(t, toks, 2)
			assert.Equal(t, tc.kind, toks[0].Kind)
			assert.Equal(t, tc.text, toks[0].Text)
		})
	}
}

func TestScan_ArrayLiteral(t *testing.T) {
	t.Parallel()

	toks, err := Scan(`[1, "two", true]`)
	require.NoError(t, err)
	assert.Equal(t, []TokenKind{
		LBRACKET, NUMBER, COMMA, STRING, COMMA, BOOL, RBRACKET, EOF,
	}, kinds(toks))
}

func TestScan_CommentsAreDiscarded(t *testing.T) {
	t.Parallel()

	toks, err := Scan("data.from_input() # seed from caller\n# full line comment\n")
	require.NoError(t, err)
	assert.Equal(t, []TokenKind{
		IDENT, DOT, IDENT, LPAREN, RPAREN, NEWLINE, NEWLINE, EOF,
	}, kinds(toks))
}

func TestScan_UnterminatedString(t *testing.T) {
	t.Parallel()

	_, err := Scan(`metrics.sum(field="amount`)
	require.Error(t, err)

	var syntaxErr *SyntaxError
	require.ErrorAs(t, err, &syntaxErr)
	assert.Equal(t, 18, syntaxErr.Off, "offset should point at the opening quote")
	assert.Contains(t, syntaxErr.Msg, "unterminated string")
}

func TestScan_UnexpectedCharacter(t *testing.T) {
	t.Parallel()

	_, err := Scan("data.from_input() ^ oops")
	var syntaxErr *SyntaxError
	require.ErrorAs(t, err, &syntaxErr)
	assert.Equal(t, 18, syntaxErr.Off)
	assert.Contains(t, syntaxErr.Msg, `'^'`)
}

func TestScan_InvalidEscape(t *testing.T) {
	t.Parallel()

	_, err := Scan(`"bad \q escape"`)
	var syntaxErr *SyntaxError
	require.ErrorAs(t, err, &syntaxErr)
	assert.Contains(t, syntaxErr.Msg, `\q`)
}

func TestScan_LineTracking(t *testing.T) {
	t.Parallel()

	toks, err := Scan("a.b()\nc.d()\n")
	require.NoError(t, err)

	require.Equal(t, IDENT, toks[6].Kind)
	assert.Equal(t, "c", toks[6].Text)
	assert.Equal(t, 2, toks[6].Line)
}
