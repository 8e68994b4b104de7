package tokenizer

import (
	"fmt"
	"iter"
	"strings"
	"unicode"
)

// TokenIterator uses Go 1.24 iterator pattern
type TokenIterator iter.Seq2[Token, error]

// BoltTokenizer is a tokenizer for Bolt source that returns an iterator
type BoltTokenizer struct {
	input   string
	options TokenizerOptions
}

// TokenizerOptions are options for the tokenizer
type TokenizerOptions struct {
	SkipWhitespace bool
	SkipComments   bool
}

// NewBoltTokenizer creates a new BoltTokenizer
func NewBoltTokenizer(input string, options ...TokenizerOptions) *BoltTokenizer {
	opts := TokenizerOptions{
		SkipWhitespace: false,
		SkipComments:   false,
	}
	if len(options) > 0 {
		opts = options[0]
	}

	return &BoltTokenizer{
		input:   input,
		options: opts,
	}
}

// Tokens returns an iterator of tokens
func (t *BoltTokenizer) Tokens() TokenIterator {
	return func(yield func(Token, error) bool) {
		tokenizer := &tokenizer{
			input:  t.input,
			line:   1,
			column: 1,
		}

		tokenizer.readChar()

		for {
			token, err := tokenizer.nextToken()
			if err != nil {
				yield(Token{Position: token.Position}, err)
				return
			}

			if token.Type == EOF {
				yield(token, nil)
				return
			}

			if t.options.SkipWhitespace && token.Type == WHITESPACE {
				continue
			}

			if t.options.SkipComments && (token.Type == LINE_COMMENT || token.Type == BLOCK_COMMENT) {
				continue
			}

			if !yield(token, nil) {
				return
			}
		}
	}
}

// AllTokens gets all tokens as a slice, stopping at the first error
func (t *BoltTokenizer) AllTokens() ([]Token, error) {
	tokens := make([]Token, 0, 64)

	for token, err := range t.Tokens() {
		if err != nil {
			return tokens, err
		}

		tokens = append(tokens, token)
		if token.Type == EOF {
			break
		}
	}

	return tokens, nil
}

// Internal tokenizer implementation. line and column describe the current
// character, both 1-based; a newline is reported at the end of its own line.
type tokenizer struct {
	input    string
	position int
	line     int
	column   int
	current  rune
}

// newToken creates a token at the current position
func (t *tokenizer) newToken(tokenType TokenType, value string) Token {
	return Token{
		Type:     tokenType,
		Value:    value,
		Position: t.currentPosition(),
	}
}

// single emits a one-character token and advances
func (t *tokenizer) single(tokenType TokenType) Token {
	token := t.newToken(tokenType, string(t.current))
	t.readChar()

	return token
}

// nextToken gets the next token
func (t *tokenizer) nextToken() (Token, error) {
	switch t.current {
	case 0:
		return t.newToken(EOF, ""), nil
	case ' ', '\t', '\r', '\n':
		return t.readWhitespace(), nil
	case '{':
		return t.single(LBRACE), nil
	case '}':
		return t.single(RBRACE), nil
	case '(':
		return t.single(LPAREN), nil
	case ')':
		return t.single(RPAREN), nil
	case '[':
		return t.single(LBRACKET), nil
	case ']':
		return t.single(RBRACKET), nil
	case ',':
		return t.single(COMMA), nil
	case ';':
		return t.single(SEMICOLON), nil
	case ':':
		return t.single(COLON), nil
	case '.':
		return t.single(DOT), nil
	case '?':
		return t.single(QUESTION), nil
	case '+':
		return t.single(PLUS), nil
	case '-':
		return t.single(MINUS), nil
	case '*':
		return t.single(MULTIPLY), nil
	case '%':
		return t.single(MODULO), nil
	case '\'', '"':
		return t.readString(t.current)
	case '/':
		if t.peekChar() == '/' {
			return t.readLineComment(), nil
		} else if t.peekChar() == '*' {
			return t.readBlockComment()
		}

		return t.single(SLASH), nil
	case '=':
		if t.peekChar() == '=' {
			return t.pair(EQUAL, "=="), nil
		}

		return t.single(ASSIGN), nil
	case '!':
		if t.peekChar() == '=' {
			return t.pair(NOT_EQUAL, "!="), nil
		}

		return t.single(BANG), nil
	case '<':
		if t.peekChar() == '=' {
			return t.pair(LESS_EQUAL, "<="), nil
		}

		return t.single(LESS_THAN), nil
	case '>':
		if t.peekChar() == '=' {
			return t.pair(GREATER_EQUAL, ">="), nil
		}

		return t.single(GREATER_THAN), nil
	case '&':
		if t.peekChar() == '&' {
			return t.pair(AND, "&&"), nil
		}

		return Token{Position: t.currentPosition()}, fmt.Errorf("%w: '&' at %s", ErrUnexpectedCharacter, t.currentPosition())
	case '|':
		if t.peekChar() == '|' {
			return t.pair(OR, "||"), nil
		}

		return t.single(PIPE), nil
	default:
		if unicode.IsLetter(t.current) || t.current == '_' || t.current == '$' {
			return t.readWord(), nil
		} else if unicode.IsDigit(t.current) {
			return t.readNumber()
		}

		return Token{Position: t.currentPosition()}, fmt.Errorf("%w: %q at %s", ErrUnexpectedCharacter, t.current, t.currentPosition())
	}
}

// pair emits a two-character token and advances past both characters
func (t *tokenizer) pair(tokenType TokenType, value string) Token {
	token := t.newToken(tokenType, value)
	t.readChar()
	t.readChar()

	return token
}

// currentPosition reports the position of the current character
func (t *tokenizer) currentPosition() Position {
	return Position{
		Line:   t.line,
		Column: t.column,
		Offset: t.position - 1,
	}
}

// readChar reads the next character, advancing line and column past the one
// being replaced. At end of input the position freezes on the last character.
func (t *tokenizer) readChar() {
	if t.position >= len(t.input) {
		t.current = 0
		t.position++

		return
	}

	if t.position > 0 {
		if t.current == '\n' {
			t.line++
			t.column = 1
		} else {
			t.column++
		}
	}

	t.current = rune(t.input[t.position])
	t.position++
}

// peekChar looks ahead at the next character
func (t *tokenizer) peekChar() rune {
	if t.position >= len(t.input) {
		return 0
	}

	return rune(t.input[t.position])
}

// readWhitespace reads a run of whitespace characters
func (t *tokenizer) readWhitespace() Token {
	var builder strings.Builder

	pos := t.currentPosition()

	for unicode.IsSpace(t.current) {
		builder.WriteRune(t.current)
		t.readChar()
	}

	return Token{Type: WHITESPACE, Value: builder.String(), Position: pos}
}

// readWord reads identifiers and keywords
func (t *tokenizer) readWord() Token {
	var builder strings.Builder

	pos := t.currentPosition()

	for unicode.IsLetter(t.current) || unicode.IsDigit(t.current) || t.current == '_' || t.current == '$' {
		builder.WriteRune(t.current)
		t.readChar()
	}

	word := builder.String()

	return Token{Type: lookupIdent(word), Value: word, Position: pos}
}

// readString reads a string literal, value includes the surrounding quotes
func (t *tokenizer) readString(delimiter rune) (Token, error) {
	var builder strings.Builder

	pos := t.currentPosition()

	builder.WriteRune(delimiter)
	t.readChar()

	for t.current != 0 && t.current != delimiter {
		if t.current == '\n' {
			return Token{Position: pos}, fmt.Errorf("%w: started at %s", ErrUnterminatedString, pos)
		}

		if t.current == '\\' {
			builder.WriteRune(t.current)
			t.readChar()
		}

		if t.current == 0 {
			break
		}

		builder.WriteRune(t.current)
		t.readChar()
	}

	if t.current == 0 {
		return Token{Position: pos}, fmt.Errorf("%w: started at %s", ErrUnterminatedString, pos)
	}

	builder.WriteRune(delimiter)
	t.readChar()

	return Token{Type: STRING, Value: builder.String(), Position: pos}, nil
}

// readNumber reads integer and decimal literals
func (t *tokenizer) readNumber() (Token, error) {
	var builder strings.Builder

	pos := t.currentPosition()

	for unicode.IsDigit(t.current) {
		builder.WriteRune(t.current)
		t.readChar()
	}

	if t.current == '.' && unicode.IsDigit(t.peekChar()) {
		builder.WriteRune(t.current)
		t.readChar()

		for unicode.IsDigit(t.current) {
			builder.WriteRune(t.current)
			t.readChar()
		}
	}

	// A letter immediately after a number is never valid in Bolt
	if unicode.IsLetter(t.current) || t.current == '_' {
		return Token{Position: pos}, fmt.Errorf("%w: %q at %s", ErrInvalidNumber, builder.String()+string(t.current), pos)
	}

	return Token{Type: NUMBER, Value: builder.String(), Position: pos}, nil
}

// readLineComment reads a // comment up to the end of line
func (t *tokenizer) readLineComment() Token {
	var builder strings.Builder

	pos := t.currentPosition()

	for t.current != 0 && t.current != '\n' {
		builder.WriteRune(t.current)
		t.readChar()
	}

	return Token{Type: LINE_COMMENT, Value: builder.String(), Position: pos}
}

// readBlockComment reads a /* */ comment
func (t *tokenizer) readBlockComment() (Token, error) {
	var builder strings.Builder

	pos := t.currentPosition()

	builder.WriteRune(t.current) // '/'
	t.readChar()
	builder.WriteRune(t.current) // '*'
	t.readChar()

	for {
		if t.current == 0 {
			return Token{Position: pos}, fmt.Errorf("%w: started at %s", ErrUnterminatedComment, pos)
		}

		if t.current == '*' && t.peekChar() == '/' {
			builder.WriteString("*/")
			t.readChar()
			t.readChar()

			return Token{Type: BLOCK_COMMENT, Value: builder.String(), Position: pos}, nil
		}

		builder.WriteRune(t.current)
		t.readChar()
	}
}
