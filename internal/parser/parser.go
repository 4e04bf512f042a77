// Package parser builds pipeline definitions from DSL text and validates
// every atom call against the registry's declared parameter specs. All
// problems in one source text are collected into an issue list rather than
// aborting on the first.
package parser

import (
	"fmt"

	"github.com/analytica/atomflow/internal/ast"
	"github.com/analytica/atomflow/internal/atom"
	"github.com/analytica/atomflow/internal/lexer"
	"github.com/analytica/atomflow/internal/value"
)

// Parser parses DSL text against one atom registry.
type Parser struct {
	reg *atom.Registry
}

// New creates a parser bound to the given registry.
func New(reg *atom.Registry) *Parser {
	return &Parser{reg: reg}
}

// Parse parses a single pipeline: an optional `@pipeline name:` header,
// variable declarations, and one pipe chain. The returned definition is nil
// when the issues contain errors.
func (p *Parser) Parse(src string) (*ast.Pipeline, *Issues) {
	issues := &Issues{}
	toks, err := lexer.Scan(src)
	if err != nil {
		recordScanError(issues, err)
		return nil, issues
	}
	s := &state{reg: p.reg, toks: toks, issues: issues}
	def := s.parsePipeline()
	s.skipNewlines()
	if !s.at(lexer.EOF) && !issues.HasErrors() {
		tok := s.cur()
		issues.errorf(tok.Off, tok.Line, "unexpected %s after pipeline; use ParseAll for multi-pipeline sources", tok.Kind)
	}
	if issues.HasErrors() {
		return nil, issues
	}
	return def, issues
}

// ParseAll parses every pipeline in src, keyed by pipeline name (the empty
// key for an anonymous chain). A pipeline that fails leaves its issues
// behind without stopping unrelated pipelines from parsing.
func (p *Parser) ParseAll(src string) (map[string]*ast.Pipeline, *Issues) {
	issues := &Issues{}
	toks, err := lexer.Scan(src)
	if err != nil {
		recordScanError(issues, err)
		return nil, issues
	}
	s := &state{reg: p.reg, toks: toks, issues: issues}
	out := make(map[string]*ast.Pipeline)
	for {
		s.skipNewlines()
		if s.at(lexer.EOF) {
			break
		}
		before := len(issues.Errors)
		def := s.parsePipeline()
		if def == nil || len(issues.Errors) > before {
			s.recoverToNextPipeline()
			continue
		}
		if _, dup := out[def.Name]; dup {
			tok := s.cur()
			if def.Name == "" {
				issues.errorf(tok.Off, tok.Line, "more than one anonymous pipeline in source")
			} else {
				issues.errorf(tok.Off, tok.Line, "duplicate pipeline name %q", def.Name)
			}
			continue
		}
		out[def.Name] = def
	}
	return out, issues
}

// ParseLiteral parses a standalone DSL literal, e.g. a `-var` flag value.
func ParseLiteral(src string) (value.Value, error) {
	toks, err := lexer.Scan(src)
	if err != nil {
		return value.Value{}, err
	}
	issues := &Issues{}
	s := &state{toks: toks, issues: issues}
	v := s.parseValue()
	s.skipNewlines()
	if !s.at(lexer.EOF) && !issues.HasErrors() {
		issues.errorf(s.cur().Off, s.cur().Line, "unexpected %s after literal", s.cur().Kind)
	}
	if err := issues.Err(); err != nil {
		return value.Value{}, err
	}
	return v, nil
}

func recordScanError(issues *Issues, err error) {
	if se, ok := err.(*lexer.SyntaxError); ok {
		issues.errorf(se.Off, se.Line, "%s", se.Msg)
		return
	}
	issues.errorf(0, 1, "%v", err)
}

// state is one parse in progress over a token stream.
type state struct {
	reg    *atom.Registry
	toks   []lexer.Token
	pos    int
	issues *Issues
}

func (s *state) cur() lexer.Token {
	if s.pos >= len(s.toks) {
		return s.toks[len(s.toks)-1] // EOF sentinel
	}
	return s.toks[s.pos]
}

func (s *state) peek(n int) lexer.Token {
	if s.pos+n >= len(s.toks) {
		return s.toks[len(s.toks)-1]
	}
	return s.toks[s.pos+n]
}

func (s *state) at(kind lexer.TokenKind) bool {
	return s.cur().Kind == kind
}

func (s *state) advance() lexer.Token {
	tok := s.cur()
	if s.pos < len(s.toks)-1 {
		s.pos++
	}
	return tok
}

func (s *state) expect(kind lexer.TokenKind) (lexer.Token, bool) {
	if !s.at(kind) {
		tok := s.cur()
		s.issues.errorf(tok.Off, tok.Line, "expected %s, got %s", kind, tok.Kind)
		return tok, false
	}
	return s.advance(), true
}

func (s *state) skipNewlines() {
	for s.at(lexer.NEWLINE) {
		s.advance()
	}
}

// recoverToNextPipeline skips tokens up to the next `@` header so the
// remaining pipelines in a multi-pipeline source still get parsed.
func (s *state) recoverToNextPipeline() {
	for !s.at(lexer.EOF) && !s.at(lexer.AT) {
		s.advance()
	}
}

// parsePipeline parses: [@pipeline name:] {$var = literal} call {| call}.
func (s *state) parsePipeline() *ast.Pipeline {
	def := &ast.Pipeline{Variables: value.NewMap()}

	s.skipNewlines()
	if s.at(lexer.AT) {
		s.advance()
		kw, ok := s.expect(lexer.IDENT)
		if !ok || kw.Text != "pipeline" {
			s.issues.errorf(kw.Off, kw.Line, "expected 'pipeline' after '@', got %q", kw.Text)
			return nil
		}
		name, ok := s.expect(lexer.IDENT)
		if !ok {
			return nil
		}
		def.Name = name.Text
		if _, ok := s.expect(lexer.COLON); !ok {
			return nil
		}
	}

	s.skipNewlines()
	for s.at(lexer.DOLLAR) {
		name, val, ok := s.parseVariableDecl()
		if !ok {
			return nil
		}
		if def.Variables.Has(name) {
			tok := s.cur()
			s.issues.warnf(tok.Off, tok.Line, "variable $%s declared twice; the later value wins", name)
		}
		def.Variables.Set(name, val)
		s.skipNewlines()
	}

	for {
		s.skipNewlines()
		if !s.at(lexer.IDENT) {
			break
		}
		call, off, line, ok := s.parseCall()
		if !ok {
			return nil
		}
		s.validateCall(call, off, line)
		def.Steps = append(def.Steps, ast.Step{Atom: *call, OnError: ast.OnErrorStop})

		s.skipNewlines()
		if !s.at(lexer.PIPE) {
			break
		}
		s.advance()
	}

	if len(def.Steps) == 0 && def.Name == "" && def.Variables.Len() == 0 {
		tok := s.cur()
		s.issues.errorf(tok.Off, tok.Line, "expected a pipeline, got %s", tok.Kind)
		return nil
	}
	return def
}

// parseVariableDecl parses `$name = literal`.
func (s *state) parseVariableDecl() (string, value.Value, bool) {
	s.advance() // $
	name, ok := s.expect(lexer.IDENT)
	if !ok {
		return "", value.Value{}, false
	}
	if _, ok := s.expect(lexer.EQUALS); !ok {
		return "", value.Value{}, false
	}
	before := len(s.issues.Errors)
	val := s.parseValue()
	if len(s.issues.Errors) > before {
		return "", value.Value{}, false
	}
	return name.Text, val, true
}

// parseCall parses `type.action(args...)`.
func (s *state) parseCall() (*ast.AtomCall, int, int, bool) {
	typeTok, _ := s.expect(lexer.IDENT)
	if _, ok := s.expect(lexer.DOT); !ok {
		return nil, 0, 0, false
	}
	actionTok, ok := s.expect(lexer.IDENT)
	if !ok {
		return nil, 0, 0, false
	}

	call := &ast.AtomCall{Type: typeTok.Text, Action: actionTok.Text, Params: value.NewMap()}
	if s.at(lexer.LPAREN) {
		if !s.parseParams(call) {
			return nil, 0, 0, false
		}
	}
	return call, typeTok.Off, typeTok.Line, true
}

// parseParams parses the argument list. Named arguments are `key=value`;
// everything else is positional and stored under `_arg0`, `_arg1`, …
func (s *state) parseParams(call *ast.AtomCall) bool {
	s.advance() // (
	argIndex := 0
	for !s.at(lexer.RPAREN) {
		if s.at(lexer.EOF) {
			tok := s.cur()
			s.issues.errorf(tok.Off, tok.Line, "unterminated argument list for %s.%s", call.Type, call.Action)
			return false
		}
		if s.at(lexer.IDENT) && s.peek(1).Kind == lexer.EQUALS {
			name := s.advance()
			s.advance() // =
			before := len(s.issues.Errors)
			v := s.parseValue()
			if len(s.issues.Errors) > before {
				return false
			}
			if call.Params.Has(name.Text) {
				s.issues.warnf(name.Off, name.Line, "parameter %q passed twice; the later value wins", name.Text)
			}
			call.Params.Set(name.Text, v)
		} else {
			before := len(s.issues.Errors)
			v := s.parseValue()
			if len(s.issues.Errors) > before {
				return false
			}
			call.Params.Set(fmt.Sprintf("_arg%d", argIndex), v)
			argIndex++
		}
		if s.at(lexer.COMMA) {
			s.advance()
		} else if !s.at(lexer.RPAREN) {
			tok := s.cur()
			s.issues.errorf(tok.Off, tok.Line, "expected ',' or ')' in argument list, got %s", tok.Kind)
			return false
		}
	}
	s.advance() // )
	return true
}

// parseValue parses a literal, `$name` reference, array, or object.
func (s *state) parseValue() value.Value {
	tok := s.cur()
	switch tok.Kind {
	case lexer.STRING:
		s.advance()
		return value.String(tok.Text)
	case lexer.NUMBER:
		s.advance()
		v, err := value.NumberText(tok.Text)
		if err != nil {
			s.issues.errorf(tok.Off, tok.Line, "%v", err)
			return value.Null()
		}
		return v
	case lexer.BOOL:
		s.advance()
		return value.Bool(tok.Text == "true")
	case lexer.DOLLAR:
		s.advance()
		name, ok := s.expect(lexer.IDENT)
		if !ok {
			return value.Null()
		}
		return value.Ref(name.Text)
	case lexer.LBRACKET:
		return s.parseArray()
	case lexer.LBRACE:
		return s.parseObject()
	case lexer.IDENT:
		s.advance()
		if tok.Text == "null" {
			return value.Null()
		}
		// Bare identifiers read as strings, e.g. sort(by=amount).
		return value.String(tok.Text)
	default:
		s.issues.errorf(tok.Off, tok.Line, "expected a value, got %s", tok.Kind)
		s.advance()
		return value.Null()
	}
}

func (s *state) parseArray() value.Value {
	s.advance() // [
	var elems []value.Value
	for !s.at(lexer.RBRACKET) {
		if s.at(lexer.EOF) {
			tok := s.cur()
			s.issues.errorf(tok.Off, tok.Line, "unterminated array literal")
			return value.Null()
		}
		s.skipNewlines()
		before := len(s.issues.Errors)
		elems = append(elems, s.parseValue())
		if len(s.issues.Errors) > before {
			return value.Null()
		}
		s.skipNewlines()
		if s.at(lexer.COMMA) {
			s.advance()
		}
	}
	s.advance() // ]
	return value.Array(elems...)
}

func (s *state) parseObject() value.Value {
	s.advance() // {
	var fields []value.Field
	for !s.at(lexer.RBRACE) {
		if s.at(lexer.EOF) {
			tok := s.cur()
			s.issues.errorf(tok.Off, tok.Line, "unterminated object literal")
			return value.Null()
		}
		s.skipNewlines()
		var key string
		switch s.cur().Kind {
		case lexer.STRING, lexer.IDENT:
			key = s.advance().Text
		default:
			tok := s.cur()
			s.issues.errorf(tok.Off, tok.Line, "expected object key, got %s", tok.Kind)
			return value.Null()
		}
		if _, ok := s.expect(lexer.COLON); !ok {
			return value.Null()
		}
		before := len(s.issues.Errors)
		fields = append(fields, value.Field{Name: key, Value: s.parseValue()})
		if len(s.issues.Errors) > before {
			return value.Null()
		}
		s.skipNewlines()
		if s.at(lexer.COMMA) {
			s.advance()
		} else if !s.at(lexer.RBRACE) {
			tok := s.cur()
			s.issues.errorf(tok.Off, tok.Line, "expected ',' or '}' in object literal, got %s", tok.Kind)
			return value.Null()
		}
	}
	s.advance() // }
	return value.Object(fields...)
}
