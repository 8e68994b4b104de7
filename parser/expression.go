package parser

import (
	"strings"

	"github.com/boltlang/boltc/tokenizer"
)

// Binding powers, lowest first. Ternary binds looser than any binary
// operator; postfix (call, member, index) binds tightest.
const (
	precLowest = iota
	precTernary
	precOr
	precAnd
	precEquality
	precRelational
	precAdditive
	precMultiplicative
	precUnary
	precPostfix
)

// binaryPrec maps operator tokens to their binding power
var binaryPrec = map[tokenizer.TokenType]int{
	tokenizer.OR:            precOr,
	tokenizer.AND:           precAnd,
	tokenizer.EQUAL:         precEquality,
	tokenizer.NOT_EQUAL:     precEquality,
	tokenizer.LESS_THAN:     precRelational,
	tokenizer.GREATER_THAN:  precRelational,
	tokenizer.LESS_EQUAL:    precRelational,
	tokenizer.GREATER_EQUAL: precRelational,
	tokenizer.PLUS:          precAdditive,
	tokenizer.MINUS:         precAdditive,
	tokenizer.MULTIPLY:      precMultiplicative,
	tokenizer.SLASH:         precMultiplicative,
	tokenizer.MODULO:        precMultiplicative,
}

// parseExpression parses a full expression including ternaries
func (p *boltParser) parseExpression() (Expr, error) {
	return p.parseBinary(precLowest)
}

// parseBinary parses binary operator chains at or above minPrec
func (p *boltParser) parseBinary(minPrec int) (Expr, error) {
	left, err := p.parseUnary()
	if err != nil {
		return nil, err
	}

	for {
		token := p.peek()

		if token.Type == tokenizer.QUESTION && minPrec <= precTernary {
			left, err = p.parseTernary(left, token)
			if err != nil {
				return nil, err
			}

			continue
		}

		prec, ok := binaryPrec[token.Type]
		if !ok || prec < minPrec {
			return left, nil
		}

		p.next()

		// left associative: the right operand binds one level tighter
		right, err := p.parseBinary(prec + 1)
		if err != nil {
			return nil, err
		}

		left = &Binary{Position: token.Position, Op: token.Value, Left: left, Right: right}
	}
}

// parseTernary parses cond ? then : else with the condition already parsed
func (p *boltParser) parseTernary(cond Expr, question tokenizer.Token) (Expr, error) {
	p.next() // consume ?

	then, err := p.parseBinary(precLowest)
	if err != nil {
		return nil, err
	}

	if _, err := p.expect(tokenizer.COLON); err != nil {
		return nil, err
	}

	// right associative: a ? b : c ? d : e
	els, err := p.parseBinary(precLowest)
	if err != nil {
		return nil, err
	}

	return &Ternary{Position: question.Position, Cond: cond, Then: then, Else: els}, nil
}

// parseUnary parses !x and -x
func (p *boltParser) parseUnary() (Expr, error) {
	token := p.peek()

	if token.Type == tokenizer.BANG || token.Type == tokenizer.MINUS {
		p.next()

		operand, err := p.parseUnary()
		if err != nil {
			return nil, err
		}

		return &Unary{Position: token.Position, Op: token.Value, Operand: operand}, nil
	}

	return p.parsePostfix()
}

// parsePostfix parses a primary expression followed by any chain of
// member access, indexing, and calls
func (p *boltParser) parsePostfix() (Expr, error) {
	expr, err := p.parsePrimary()
	if err != nil {
		return nil, err
	}

	for {
		token := p.peek()

		switch token.Type {
		case tokenizer.DOT:
			p.next()

			name, err := p.expect(tokenizer.IDENT)
			if err != nil {
				return nil, err
			}

			expr = &Member{Position: token.Position, Target: expr, Name: name.Value}
		case tokenizer.LBRACKET:
			p.next()

			key, err := p.parseExpression()
			if err != nil {
				return nil, err
			}

			if _, err := p.expect(tokenizer.RBRACKET); err != nil {
				return nil, err
			}

			expr = &Index{Position: token.Position, Target: expr, Key: key}
		case tokenizer.LPAREN:
			p.next()

			call := &Call{Position: token.Position, Target: expr}

			for p.peek().Type != tokenizer.RPAREN {
				arg, err := p.parseExpression()
				if err != nil {
					return nil, err
				}

				call.Args = append(call.Args, arg)

				if p.peek().Type != tokenizer.COMMA {
					break
				}

				p.next()
			}

			if _, err := p.expect(tokenizer.RPAREN); err != nil {
				return nil, err
			}

			expr = call
		default:
			return expr, nil
		}
	}
}

// parsePrimary parses literals, identifiers, arrays, and parenthesized
// expressions
func (p *boltParser) parsePrimary() (Expr, error) {
	token := p.peek()

	switch token.Type {
	case tokenizer.IDENT:
		p.next()

		return &Ident{Position: token.Position, Name: token.Value}, nil
	case tokenizer.STRING:
		p.next()

		return &StringLit{Position: token.Position, Value: unquote(token.Value)}, nil
	case tokenizer.NUMBER:
		p.next()

		return &NumberLit{Position: token.Position, Value: token.Value}, nil
	case tokenizer.TRUE:
		p.next()

		return &BoolLit{Position: token.Position, Value: true}, nil
	case tokenizer.FALSE:
		p.next()

		return &BoolLit{Position: token.Position, Value: false}, nil
	case tokenizer.NULL:
		p.next()

		return &NullLit{Position: token.Position}, nil
	case tokenizer.LBRACKET:
		p.next()

		array := &ArrayLit{Position: token.Position}

		for p.peek().Type != tokenizer.RBRACKET {
			item, err := p.parseExpression()
			if err != nil {
				return nil, err
			}

			array.Items = append(array.Items, item)

			if p.peek().Type != tokenizer.COMMA {
				break
			}

			p.next()
		}

		if _, err := p.expect(tokenizer.RBRACKET); err != nil {
			return nil, err
		}

		return array, nil
	case tokenizer.LPAREN:
		p.next()

		expr, err := p.parseExpression()
		if err != nil {
			return nil, err
		}

		if _, err := p.expect(tokenizer.RPAREN); err != nil {
			return nil, err
		}

		return expr, nil
	case tokenizer.EOF:
		return nil, p.errorf(token, "%s: expected expression", ErrUnexpectedEOF)
	default:
		return nil, p.errorf(token, "%s: expected expression, found %s", ErrUnexpectedToken, describe(token))
	}
}

// unquote strips the surrounding quotes from a string literal and resolves
// backslash escapes
func unquote(literal string) string {
	body := literal[1 : len(literal)-1]
	if !strings.ContainsRune(body, '\\') {
		return body
	}

	var builder strings.Builder

	escaped := false

	for _, r := range body {
		if !escaped {
			if r == '\\' {
				escaped = true
			} else {
				builder.WriteRune(r)
			}

			continue
		}

		escaped = false

		switch r {
		case 'n':
			builder.WriteRune('\n')
		case 't':
			builder.WriteRune('\t')
		case 'r':
			builder.WriteRune('\r')
		default:
			builder.WriteRune(r)
		}
	}

	return builder.String()
}
