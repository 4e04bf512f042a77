// Package lexer turns raw pipeline DSL text into a flat token stream.
//
// Whitespace is insignificant except for newlines, which are emitted as
// tokens so the parser can delimit `@pipeline` block bodies. `#` comments
// run to end of line and are discarded.
package lexer

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

type scanner struct {
	src  string
	off  int
	line int
	toks []Token
}

// Scan tokenizes src. It returns the full token list terminated by an EOF
// token, or a SyntaxError locating the first unrecognizable character.
func Scan(src string) ([]Token, error) {
	s := &scanner{src: src, line: 1}
	for s.off < len(s.src) {
		start, line := s.off, s.line
		c := s.src[s.off]
		switch {
		case c == ' ' || c == '\t' || c == '\r':
			s.off++
		case c == '\n':
			s.off++
			s.line++
			s.emit(NEWLINE, "\n", start, line)
		case c == '#':
			for s.off < len(s.src) && s.src[s.off] != '\n' {
				s.off++
			}
		case c == '"':
			text, err := s.scanString()
			if err != nil {
				return nil, err
			}
			s.emit(STRING, text, start, line)
		case isDigit(c) || (c == '-' && s.off+1 < len(s.src) && isDigit(s.src[s.off+1])):
			s.emit(NUMBER, s.scanNumber(), start, line)
		case isIdentStart(c):
			word := s.scanIdent()
			if word == "true" || word == "false" {
				s.emit(BOOL, word, start, line)
			} else {
				s.emit(IDENT, word, start, line)
			}
		default:
			kind, ok := punctKind(c)
			if !ok {
				r, _ := utf8.DecodeRuneInString(s.src[s.off:])
				return nil, &SyntaxError{
					Off:  start,
					Line: line,
					Msg:  fmt.Sprintf("unexpected character %q", r),
				}
			}
			s.off++
			s.emit(kind, string(c), start, line)
		}
	}
	s.emit(EOF, "", s.off, s.line)
	return s.toks, nil
}

func (s *scanner) emit(kind TokenKind, text string, off, line int) {
	s.toks = append(s.toks, Token{Kind: kind, Text: text, Off: off, Line: line})
}

// scanString consumes a double-quoted string with backslash escapes.
func (s *scanner) scanString() (string, error) {
	start, line := s.off, s.line
	s.off++ // opening quote
	var b strings.Builder
	for s.off < len(s.src) {
		c := s.src[s.off]
		switch c {
		case '"':
			s.off++
			return b.String(), nil
		case '\n':
			return "", &SyntaxError{Off: start, Line: line, Msg: "unterminated string"}
		case '\\':
			if s.off+1 >= len(s.src) {
				return "", &SyntaxError{Off: start, Line: line, Msg: "unterminated string"}
			}
			s.off++
			switch esc := s.src[s.off]; esc {
			case '"':
				b.WriteByte('"')
			case '\\':
				b.WriteByte('\\')
			case 'n':
				b.WriteByte('\n')
			case 't':
				b.WriteByte('\t')
			default:
				return "", &SyntaxError{
					Off:  s.off - 1,
					Line: line,
					Msg:  fmt.Sprintf("invalid escape sequence \\%c", esc),
				}
			}
			s.off++
		default:
			b.WriteByte(c)
			s.off++
		}
	}
	return "", &SyntaxError{Off: start, Line: line, Msg: "unterminated string"}
}

// scanNumber consumes an integer or decimal, with optional leading minus.
func (s *scanner) scanNumber() string {
	start := s.off
	if s.src[s.off] == '-' {
		s.off++
	}
	for s.off < len(s.src) && isDigit(s.src[s.off]) {
		s.off++
	}
	if s.off < len(s.src) && s.src[s.off] == '.' && s.off+1 < len(s.src) && isDigit(s.src[s.off+1]) {
		s.off++
		for s.off < len(s.src) && isDigit(s.src[s.off]) {
			s.off++
		}
	}
	return s.src[start:s.off]
}

func (s *scanner) scanIdent() string {
	start := s.off
	for s.off < len(s.src) && isIdentPart(s.src[s.off]) {
		s.off++
	}
	return s.src[start:s.off]
}

func punctKind(c byte) (TokenKind, bool) {
	switch c {
	case '.':
		return DOT, true
	case '(':
		return LPAREN, true
	case ')':
		return RPAREN, true
	case ',':
		return COMMA, true
	case '[':
		return LBRACKET, true
	case ']':
		return RBRACKET, true
	case '{':
		return LBRACE, true
	case '}':
		return RBRACE, true
	case '|':
		return PIPE, true
	case '$':
		return DOLLAR, true
	case '=':
		return EQUALS, true
	case ':':
		return COLON, true
	case '@':
		return AT, true
	}
	return 0, false
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }

func isIdentStart(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isIdentPart(c byte) bool { return isIdentStart(c) || isDigit(c) }
