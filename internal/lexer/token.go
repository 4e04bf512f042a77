package lexer

import "fmt"

// TokenKind identifies the lexical class of a token.
type TokenKind int

const (
	EOF TokenKind = iota
	IDENT
	DOT
	LPAREN
	RPAREN
	COMMA
	STRING
	NUMBER
	BOOL
	LBRACKET
	RBRACKET
	LBRACE
	RBRACE
	PIPE
	DOLLAR
	EQUALS
	COLON
	AT
	NEWLINE
)

var kindNames = map[TokenKind]string{
	EOF:      "EOF",
	IDENT:    "IDENT",
	DOT:      "DOT",
	LPAREN:   "LPAREN",
	RPAREN:   "RPAREN",
	COMMA:    "COMMA",
	STRING:   "STRING",
	NUMBER:   "NUMBER",
	BOOL:     "BOOL",
	LBRACKET: "LBRACKET",
	RBRACKET: "RBRACKET",
	LBRACE:   "LBRACE",
	RBRACE:   "RBRACE",
	PIPE:     "PIPE",
	DOLLAR:   "DOLLAR",
	EQUALS:   "EQUALS",
	COLON:    "COLON",
	AT:       "AT",
	NEWLINE:  "NEWLINE",
}

func (k TokenKind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("TokenKind(%d)", int(k))
}

// Token is a single lexical unit. STRING tokens carry the decoded text with
// quotes and escapes already processed; all other kinds carry source text.
type Token struct {
	Kind TokenKind
	Text string
	Off  int
	Line int
}

// SyntaxError reports input the tokenizer cannot classify, with the byte
// offset of the offending character.
type SyntaxError struct {
	Off  int
	Line int
	Msg  string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("syntax error at offset %d (line %d): %s", e.Off, e.Line, e.Msg)
}
