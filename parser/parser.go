package parser

import (
	"errors"
	"fmt"
	"strings"

	"github.com/boltlang/boltc/tokenizer"
)

// Sentinel errors
var (
	ErrUnexpectedToken    = errors.New("unexpected token")
	ErrUnexpectedEOF      = errors.New("unexpected end of file")
	ErrInvalidPath        = errors.New("invalid path literal")
	ErrMethodParameters   = errors.New("access methods take no parameters")
	ErrInvalidDeclaration = errors.New("expected path, type, or function declaration")
)

// ParseError represents a parse failure with its source position
type ParseError struct {
	Message  string
	Position tokenizer.Position
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s at line %d, column %d", e.Message, e.Position.Line, e.Position.Column)
}

// Parse parses Bolt source text into a Ruleset. All failures are reported
// as *ParseError carrying the offending line and column.
func Parse(source string) (*Ruleset, error) {
	tokens := make([]tokenizer.Token, 0, 128)

	for token, err := range tokenizer.NewBoltTokenizer(source, tokenizer.TokenizerOptions{
		SkipWhitespace: true,
		SkipComments:   true,
	}).Tokens() {
		if err != nil {
			return nil, &ParseError{Message: stripPosition(err.Error()), Position: token.Position}
		}

		tokens = append(tokens, token)
		if token.Type == tokenizer.EOF {
			break
		}
	}

	p := &boltParser{tokens: tokens}

	return p.parseRuleset()
}

// stripPosition drops the tokenizer's trailing " at line:col" suffix; the
// ParseError position carries the same information in structured form.
func stripPosition(message string) string {
	if idx := strings.LastIndex(message, " at "); idx >= 0 {
		return message[:idx]
	}

	return message
}

// boltParser is a recursive descent parser over the token stream
type boltParser struct {
	tokens  []tokenizer.Token
	current int
}

// peek returns the current token without consuming it
func (p *boltParser) peek() tokenizer.Token {
	if p.current >= len(p.tokens) {
		return p.tokens[len(p.tokens)-1] // EOF
	}

	return p.tokens[p.current]
}

// next consumes and returns the current token
func (p *boltParser) next() tokenizer.Token {
	token := p.peek()
	if p.current < len(p.tokens) {
		p.current++
	}

	return token
}

// expect consumes a token of the given type or fails
func (p *boltParser) expect(tokenType tokenizer.TokenType) (tokenizer.Token, error) {
	token := p.peek()
	if token.Type != tokenType {
		return token, p.errorf(token, "expected %s, found %s", tokenType, describe(token))
	}

	return p.next(), nil
}

// errorf builds a ParseError at the given token
func (p *boltParser) errorf(token tokenizer.Token, format string, args ...any) error {
	return &ParseError{
		Message:  fmt.Sprintf(format, args...),
		Position: token.Position,
	}
}

// describe renders a token for error messages
func describe(token tokenizer.Token) string {
	if token.Type == tokenizer.EOF {
		return "end of file"
	}

	return fmt.Sprintf("%q", token.Value)
}

// parseRuleset parses the top level declaration list
func (p *boltParser) parseRuleset() (*Ruleset, error) {
	rs := &Ruleset{}

	for p.peek().Type != tokenizer.EOF {
		token := p.peek()

		switch token.Type {
		case tokenizer.PATH:
			path, err := p.parsePath()
			if err != nil {
				return nil, err
			}

			rs.Paths = append(rs.Paths, path)
		case tokenizer.TYPE:
			typ, err := p.parseType()
			if err != nil {
				return nil, err
			}

			rs.Types = append(rs.Types, typ)
		case tokenizer.FUNCTION:
			p.next()

			fn, err := p.parseFunction()
			if err != nil {
				return nil, err
			}

			rs.Functions = append(rs.Functions, fn)
		case tokenizer.IDENT:
			// name(args) = expr; shorthand
			fn, err := p.parseFunction()
			if err != nil {
				return nil, err
			}

			rs.Functions = append(rs.Functions, fn)
		default:
			return nil, p.errorf(token, "%s, found %s", ErrInvalidDeclaration, describe(token))
		}
	}

	return rs, nil
}

// parsePath parses path /a/{b} [is Type] { ... }
func (p *boltParser) parsePath() (*PathDecl, error) {
	keyword, err := p.expect(tokenizer.PATH)
	if err != nil {
		return nil, err
	}

	decl := &PathDecl{Position: keyword.Position}

	decl.Segments, err = p.parsePathLiteral()
	if err != nil {
		return nil, err
	}

	if p.peek().Type == tokenizer.IS {
		p.next()

		name, err := p.expect(tokenizer.IDENT)
		if err != nil {
			return nil, err
		}

		decl.Type = name.Value
	}

	if _, err := p.expect(tokenizer.LBRACE); err != nil {
		return nil, err
	}

	for p.peek().Type != tokenizer.RBRACE {
		token := p.peek()

		switch token.Type {
		case tokenizer.PATH:
			child, err := p.parsePath()
			if err != nil {
				return nil, err
			}

			decl.Children = append(decl.Children, child)
		case tokenizer.IDENT:
			method, err := p.parseMethod()
			if err != nil {
				return nil, err
			}

			decl.Methods = append(decl.Methods, method)
		case tokenizer.EOF:
			return nil, p.errorf(token, "%s: unclosed path block", ErrUnexpectedEOF)
		default:
			return nil, p.errorf(token, "%s: expected method or nested path, found %s", ErrUnexpectedToken, describe(token))
		}
	}

	p.next() // consume }

	return decl, nil
}

// parsePathLiteral parses /seg/{capture}/... including the bare root path /
func (p *boltParser) parsePathLiteral() ([]PathSegment, error) {
	if _, err := p.expect(tokenizer.SLASH); err != nil {
		return nil, p.errorf(p.peek(), "%s: paths must start with '/'", ErrInvalidPath)
	}

	segments := []PathSegment{}

	for {
		token := p.peek()

		switch token.Type {
		case tokenizer.IDENT:
			p.next()
			segments = append(segments, PathSegment{Name: token.Value})
		case tokenizer.LBRACE:
			// distinguish a {capture} segment from the path body brace
			if !(p.peekAhead(1).Type == tokenizer.IDENT && p.peekAhead(2).Type == tokenizer.RBRACE) {
				if len(segments) == 0 {
					// bare / is the root path
					return segments, nil
				}

				return nil, p.errorf(token, "%s: expected path segment after '/', found %s", ErrInvalidPath, describe(token))
			}

			p.next()
			name := p.next()
			p.next() // consume }

			segments = append(segments, PathSegment{Name: name.Value, Capture: true})
		default:
			if len(segments) == 0 {
				// bare / is the root path
				return segments, nil
			}

			return nil, p.errorf(token, "%s: expected path segment after '/', found %s", ErrInvalidPath, describe(token))
		}

		if p.peek().Type != tokenizer.SLASH {
			return segments, nil
		}

		p.next()
	}
}

// parseMethod parses name() { expr } or name() = expr;
func (p *boltParser) parseMethod() (*Method, error) {
	name, err := p.expect(tokenizer.IDENT)
	if err != nil {
		return nil, err
	}

	if _, err := p.expect(tokenizer.LPAREN); err != nil {
		return nil, err
	}

	if p.peek().Type != tokenizer.RPAREN {
		return nil, p.errorf(p.peek(), "%s: %s()", ErrMethodParameters, name.Value)
	}

	p.next() // consume )

	body, err := p.parseBody()
	if err != nil {
		return nil, err
	}

	return &Method{Position: name.Position, Name: name.Value, Body: body}, nil
}

// parseBody parses either a { expr } block or = expr ; and returns the expression
func (p *boltParser) parseBody() (Expr, error) {
	token := p.peek()

	switch token.Type {
	case tokenizer.LBRACE:
		p.next()

		body, err := p.parseExpression()
		if err != nil {
			return nil, err
		}

		if p.peek().Type == tokenizer.SEMICOLON {
			p.next()
		}

		if _, err := p.expect(tokenizer.RBRACE); err != nil {
			return nil, err
		}

		return body, nil
	case tokenizer.ASSIGN:
		p.next()

		body, err := p.parseExpression()
		if err != nil {
			return nil, err
		}

		if _, err := p.expect(tokenizer.SEMICOLON); err != nil {
			return nil, err
		}

		return body, nil
	default:
		return nil, p.errorf(token, "%s: expected '{' or '=', found %s", ErrUnexpectedToken, describe(token))
	}
}

// parseType parses type Name [extends Base] { fields and validate() }
func (p *boltParser) parseType() (*TypeDecl, error) {
	keyword, err := p.expect(tokenizer.TYPE)
	if err != nil {
		return nil, err
	}

	name, err := p.expect(tokenizer.IDENT)
	if err != nil {
		return nil, err
	}

	decl := &TypeDecl{Position: keyword.Position, Name: name.Value}

	if p.peek().Type == tokenizer.EXTENDS {
		p.next()

		base, err := p.expect(tokenizer.IDENT)
		if err != nil {
			return nil, err
		}

		decl.Extends = base.Value
	}

	if _, err := p.expect(tokenizer.LBRACE); err != nil {
		return nil, err
	}

	for p.peek().Type != tokenizer.RBRACE {
		token := p.peek()

		if token.Type == tokenizer.EOF {
			return nil, p.errorf(token, "%s: unclosed type block", ErrUnexpectedEOF)
		}

		if token.Type != tokenizer.IDENT {
			return nil, p.errorf(token, "%s: expected field or method, found %s", ErrUnexpectedToken, describe(token))
		}

		// field: IDENT ':' ...  method: IDENT '(' ...
		if p.peekAhead(1).Type == tokenizer.COLON {
			field, err := p.parseField()
			if err != nil {
				return nil, err
			}

			decl.Fields = append(decl.Fields, field)
		} else {
			method, err := p.parseMethod()
			if err != nil {
				return nil, err
			}

			decl.Methods = append(decl.Methods, method)
		}
	}

	p.next() // consume }

	return decl, nil
}

// peekAhead looks n tokens past the current one
func (p *boltParser) peekAhead(n int) tokenizer.Token {
	if p.current+n >= len(p.tokens) {
		return p.tokens[len(p.tokens)-1] // EOF
	}

	return p.tokens[p.current+n]
}

// parseField parses name: Type or name: Type | Null, with , or ; separator
func (p *boltParser) parseField() (*Field, error) {
	name, err := p.expect(tokenizer.IDENT)
	if err != nil {
		return nil, err
	}

	if _, err := p.expect(tokenizer.COLON); err != nil {
		return nil, err
	}

	field := &Field{Position: name.Position, Name: name.Value}

	for {
		token := p.peek()

		switch token.Type {
		case tokenizer.IDENT:
			p.next()
			field.TypeNames = append(field.TypeNames, token.Value)
		case tokenizer.NULL:
			p.next()
			field.TypeNames = append(field.TypeNames, "Null")
		default:
			return nil, p.errorf(token, "%s: expected type name, found %s", ErrUnexpectedToken, describe(token))
		}

		if p.peek().Type != tokenizer.PIPE {
			break
		}

		p.next()
	}

	if p.peek().Type == tokenizer.COMMA || p.peek().Type == tokenizer.SEMICOLON {
		p.next()
	}

	return field, nil
}

// parseFunction parses the remainder of a function declaration; the function
// keyword, if present, is already consumed
func (p *boltParser) parseFunction() (*FuncDecl, error) {
	name, err := p.expect(tokenizer.IDENT)
	if err != nil {
		return nil, err
	}

	if _, err := p.expect(tokenizer.LPAREN); err != nil {
		return nil, err
	}

	fn := &FuncDecl{Position: name.Position, Name: name.Value}

	for p.peek().Type != tokenizer.RPAREN {
		param, err := p.expect(tokenizer.IDENT)
		if err != nil {
			return nil, err
		}

		fn.Params = append(fn.Params, param.Value)

		if p.peek().Type == tokenizer.COMMA {
			p.next()
		}
	}

	p.next() // consume )

	fn.Body, err = p.parseBody()
	if err != nil {
		return nil, err
	}

	return fn, nil
}
