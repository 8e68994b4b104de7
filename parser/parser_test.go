package parser

import (
	"errors"
	"testing"

	"github.com/alecthomas/assert/v2"
)

func TestParsePathDeclaration(t *testing.T) {
	rs, err := Parse(`
path /users/{uid} is User {
  read() { auth != null }
  write() { auth.uid == uid }
}
`)
	assert.NoError(t, err)
	assert.Equal(t, 1, len(rs.Paths))

	path := rs.Paths[0]
	assert.Equal(t, []PathSegment{
		{Name: "users"},
		{Name: "uid", Capture: true},
	}, path.Segments)
	assert.Equal(t, "User", path.Type)
	assert.Equal(t, 2, len(path.Methods))
	assert.Equal(t, "read", path.Methods[0].Name)
	assert.Equal(t, "write", path.Methods[1].Name)
}

func TestParseRootPath(t *testing.T) {
	rs, err := Parse(`path / { read() = true; }`)
	assert.NoError(t, err)
	assert.Equal(t, 1, len(rs.Paths))
	assert.Equal(t, 0, len(rs.Paths[0].Segments))

	body, ok := rs.Paths[0].Methods[0].Body.(*BoolLit)
	assert.True(t, ok)
	assert.True(t, body.Value)
}

func TestParseNestedPaths(t *testing.T) {
	rs, err := Parse(`
path /rooms {
  read() { true }
  path /{room}/messages {
    write() { auth != null }
  }
}
`)
	assert.NoError(t, err)

	outer := rs.Paths[0]
	assert.Equal(t, 1, len(outer.Children))

	inner := outer.Children[0]
	assert.Equal(t, []PathSegment{
		{Name: "room", Capture: true},
		{Name: "messages"},
	}, inner.Segments)
}

func TestParseTypeDeclaration(t *testing.T) {
	rs, err := Parse(`
type Message extends Base {
  text: String,
  priority: Number | Null;
  meta: Any

  validate() { this.text != '' }
}
`)
	assert.NoError(t, err)
	assert.Equal(t, 1, len(rs.Types))

	typ := rs.Types[0]
	assert.Equal(t, "Message", typ.Name)
	assert.Equal(t, "Base", typ.Extends)
	assert.Equal(t, 3, len(typ.Fields))
	assert.Equal(t, []string{"String"}, typ.Fields[0].TypeNames)
	assert.Equal(t, []string{"Number", "Null"}, typ.Fields[1].TypeNames)
	assert.Equal(t, []string{"Any"}, typ.Fields[2].TypeNames)
	assert.Equal(t, 1, len(typ.Methods))
	assert.Equal(t, "validate", typ.Methods[0].Name)
}

func TestParseFunctionForms(t *testing.T) {
	rs, err := Parse(`
function isUser(uid) { auth != null && auth.uid == uid }
isSignedIn() = auth != null;
`)
	assert.NoError(t, err)
	assert.Equal(t, 2, len(rs.Functions))

	assert.Equal(t, "isUser", rs.Functions[0].Name)
	assert.Equal(t, []string{"uid"}, rs.Functions[0].Params)
	assert.Equal(t, "isSignedIn", rs.Functions[1].Name)
	assert.Equal(t, 0, len(rs.Functions[1].Params))
}

func TestParseExpressionPrecedence(t *testing.T) {
	rs, err := Parse(`path /a { read() { a || b && c == d + e * f } }`)
	assert.NoError(t, err)

	// || is the top node
	or, ok := rs.Paths[0].Methods[0].Body.(*Binary)
	assert.True(t, ok)
	assert.Equal(t, "||", or.Op)

	and, ok := or.Right.(*Binary)
	assert.True(t, ok)
	assert.Equal(t, "&&", and.Op)

	eq, ok := and.Right.(*Binary)
	assert.True(t, ok)
	assert.Equal(t, "==", eq.Op)

	add, ok := eq.Right.(*Binary)
	assert.True(t, ok)
	assert.Equal(t, "+", add.Op)

	mul, ok := add.Right.(*Binary)
	assert.True(t, ok)
	assert.Equal(t, "*", mul.Op)
}

func TestParseTernaryRightAssociative(t *testing.T) {
	rs, err := Parse(`path /a { read() { a ? b : c ? d : e } }`)
	assert.NoError(t, err)

	outer, ok := rs.Paths[0].Methods[0].Body.(*Ternary)
	assert.True(t, ok)

	_, ok = outer.Else.(*Ternary)
	assert.True(t, ok)
}

func TestParsePostfixChain(t *testing.T) {
	rs, err := Parse(`path /a { validate() { this.parent().messages[$id].isString() } }`)
	assert.NoError(t, err)

	call, ok := rs.Paths[0].Methods[0].Body.(*Call)
	assert.True(t, ok)

	member, ok := call.Target.(*Member)
	assert.True(t, ok)
	assert.Equal(t, "isString", member.Name)

	_, ok = member.Target.(*Index)
	assert.True(t, ok)
}

func TestParseStringEscapes(t *testing.T) {
	rs, err := Parse(`path /a { validate() { this == "line\nbreak" } }`)
	assert.NoError(t, err)

	eq := rs.Paths[0].Methods[0].Body.(*Binary)

	lit, ok := eq.Right.(*StringLit)
	assert.True(t, ok)
	assert.Equal(t, "line\nbreak", lit.Value)
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name     string
		src      string
		expected string // substring of the message
		line     int
		column   int
	}{
		{
			name:     "stray token at top level",
			src:      "path /a { }\n42",
			expected: "expected path, type, or function declaration",
			line:     2,
			column:   1,
		},
		{
			name:     "method with parameters",
			src:      "path /a {\n  read(x) { true }\n}",
			expected: "access methods take no parameters",
			line:     2,
			column:   8,
		},
		{
			name:     "missing expression",
			src:      "path /a { read() { } }",
			expected: "expected expression",
			line:     1,
			column:   20,
		},
		{
			name:     "unclosed path block",
			src:      "path /a {\n  read() { true }",
			expected: "unclosed path block",
			line:     2,
			column:   17,
		},
		{
			name:     "missing segment",
			src:      "path /a/ { }",
			expected: "expected path segment",
			line:     1,
			column:   10,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(tt.src)
			assert.Error(t, err)

			var parseErr *ParseError

			assert.True(t, errors.As(err, &parseErr))
			assert.Contains(t, parseErr.Message, tt.expected)
			assert.Equal(t, tt.line, parseErr.Position.Line)
			assert.Equal(t, tt.column, parseErr.Position.Column)
		})
	}
}

func TestTokenizerErrorBecomesParseError(t *testing.T) {
	_, err := Parse("path /a { read() { 'unterminated } }")
	assert.Error(t, err)

	var parseErr *ParseError

	assert.True(t, errors.As(err, &parseErr))
	assert.Equal(t, 1, parseErr.Position.Line)
	assert.Equal(t, 20, parseErr.Position.Column)
}
