package tokenizer

import (
	"errors"
	"fmt"
)

// Sentinel errors
var (
	ErrUnexpectedCharacter = errors.New("unexpected character")
	ErrUnterminatedString  = errors.New("unterminated string literal")
	ErrUnterminatedComment = errors.New("unterminated block comment")
	ErrInvalidNumber       = errors.New("invalid number format")
)

// TokenType represents the type of a token
type TokenType int

const (
	// Basic tokens
	EOF TokenType = iota
	WHITESPACE
	IDENT  // identifiers and capture names
	STRING // string literals ('text', "text"), value includes quotes
	NUMBER // numeric literals

	// Keywords
	PATH     // path keyword
	TYPE     // type keyword
	FUNCTION // function keyword
	IS       // is keyword
	EXTENDS  // extends keyword
	TRUE     // true literal
	FALSE    // false literal
	NULL     // null literal

	// Punctuation
	LBRACE    // {
	RBRACE    // }
	LPAREN    // (
	RPAREN    // )
	LBRACKET  // [
	RBRACKET  // ]
	COMMA     // ,
	SEMICOLON // ;
	COLON     // :
	SLASH     // / (path separator and division)
	DOT       // .
	QUESTION  // ?
	PIPE      // | (type union)

	// Operators
	ASSIGN        // =
	EQUAL         // ==
	NOT_EQUAL     // !=
	LESS_THAN     // <
	GREATER_THAN  // >
	LESS_EQUAL    // <=
	GREATER_EQUAL // >=
	PLUS          // +
	MINUS         // -
	MULTIPLY      // *
	MODULO        // %
	AND           // &&
	OR            // ||
	BANG          // !

	// Comments
	LINE_COMMENT  // // line comment
	BLOCK_COMMENT // /* block comment */
)

// String returns the string representation of TokenType
func (t TokenType) String() string {
	switch t {
	case EOF:
		return "EOF"
	case WHITESPACE:
		return "WHITESPACE"
	case IDENT:
		return "IDENT"
	case STRING:
		return "STRING"
	case NUMBER:
		return "NUMBER"
	case PATH:
		return "PATH"
	case TYPE:
		return "TYPE"
	case FUNCTION:
		return "FUNCTION"
	case IS:
		return "IS"
	case EXTENDS:
		return "EXTENDS"
	case TRUE:
		return "TRUE"
	case FALSE:
		return "FALSE"
	case NULL:
		return "NULL"
	case LBRACE:
		return "LBRACE"
	case RBRACE:
		return "RBRACE"
	case LPAREN:
		return "LPAREN"
	case RPAREN:
		return "RPAREN"
	case LBRACKET:
		return "LBRACKET"
	case RBRACKET:
		return "RBRACKET"
	case COMMA:
		return "COMMA"
	case SEMICOLON:
		return "SEMICOLON"
	case COLON:
		return "COLON"
	case SLASH:
		return "SLASH"
	case DOT:
		return "DOT"
	case QUESTION:
		return "QUESTION"
	case PIPE:
		return "PIPE"
	case ASSIGN:
		return "ASSIGN"
	case EQUAL:
		return "EQUAL"
	case NOT_EQUAL:
		return "NOT_EQUAL"
	case LESS_THAN:
		return "LESS_THAN"
	case GREATER_THAN:
		return "GREATER_THAN"
	case LESS_EQUAL:
		return "LESS_EQUAL"
	case GREATER_EQUAL:
		return "GREATER_EQUAL"
	case PLUS:
		return "PLUS"
	case MINUS:
		return "MINUS"
	case MULTIPLY:
		return "MULTIPLY"
	case MODULO:
		return "MODULO"
	case AND:
		return "AND"
	case OR:
		return "OR"
	case BANG:
		return "BANG"
	case LINE_COMMENT:
		return "LINE_COMMENT"
	case BLOCK_COMMENT:
		return "BLOCK_COMMENT"
	default:
		return fmt.Sprintf("TokenType(%d)", int(t))
	}
}

// Position represents a source position
type Position struct {
	Line   int // 1-based line number
	Column int // 1-based column number
	Offset int // 0-based byte offset
}

// String returns "line:column"
func (p Position) String() string {
	return fmt.Sprintf("%d:%d", p.Line, p.Column)
}

// Token represents a lexical token with its source position
type Token struct {
	Type     TokenType
	Value    string
	Position Position
}

// keywords maps reserved words to their token types
var keywords = map[string]TokenType{
	"path":     PATH,
	"type":     TYPE,
	"function": FUNCTION,
	"is":       IS,
	"extends":  EXTENDS,
	"true":     TRUE,
	"false":    FALSE,
	"null":     NULL,
}

// lookupIdent returns the keyword token type for word, or IDENT
func lookupIdent(word string) TokenType {
	if t, ok := keywords[word]; ok {
		return t
	}

	return IDENT
}
