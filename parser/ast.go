package parser

import (
	"github.com/boltlang/boltc/tokenizer"
)

// Ruleset is the parsed form of one Bolt source file. It is the opaque
// intermediate representation handed to the rules generator.
type Ruleset struct {
	Paths     []*PathDecl
	Types     []*TypeDecl
	Functions []*FuncDecl
}

// PathDecl represents a path block, possibly nested inside another path
type PathDecl struct {
	Position tokenizer.Position
	Segments []PathSegment
	Type     string // type name after "is", empty when absent
	Methods  []*Method
	Children []*PathDecl
}

// PathSegment is one component of a path literal. Capture segments are
// written {name} in source and become $name wildcards in the output.
type PathSegment struct {
	Name    string
	Capture bool
}

// Method represents an access method such as read() { ... } inside a path
// or type block. Index methods carry an array literal body.
type Method struct {
	Position tokenizer.Position
	Name     string
	Body     Expr
}

// TypeDecl represents a named type with field constraints
type TypeDecl struct {
	Position tokenizer.Position
	Name     string
	Extends  string
	Fields   []*Field
	Methods  []*Method // validate() only, kept as methods for uniformity
}

// Field is a typed field inside a type declaration. TypeNames holds the
// union members in source order; a Null member marks the field optional.
type Field struct {
	Position  tokenizer.Position
	Name      string
	TypeNames []string
}

// FuncDecl represents a global function, either the function keyword form
// or the name(args) = expr; shorthand.
type FuncDecl struct {
	Position tokenizer.Position
	Name     string
	Params   []string
	Body     Expr
}

// Expr is a Bolt expression node
type Expr interface {
	Pos() tokenizer.Position
}

// Ident is a bare identifier (auth, now, this, prev, root, or a capture)
type Ident struct {
	Position tokenizer.Position
	Name     string
}

// StringLit is a string literal with escapes resolved
type StringLit struct {
	Position tokenizer.Position
	Value    string
}

// NumberLit keeps the literal text so output is byte-identical to input
type NumberLit struct {
	Position tokenizer.Position
	Value    string
}

// BoolLit is true or false
type BoolLit struct {
	Position tokenizer.Position
	Value    bool
}

// NullLit is the null literal
type NullLit struct {
	Position tokenizer.Position
}

// ArrayLit is [a, b, c]
type ArrayLit struct {
	Position tokenizer.Position
	Items    []Expr
}

// Unary is !x or -x
type Unary struct {
	Position tokenizer.Position
	Op       string
	Operand  Expr
}

// Binary is a binary operation such as a && b
type Binary struct {
	Position tokenizer.Position
	Op       string
	Left     Expr
	Right    Expr
}

// Ternary is cond ? then : else
type Ternary struct {
	Position tokenizer.Position
	Cond     Expr
	Then     Expr
	Else     Expr
}

// Member is target.name
type Member struct {
	Position tokenizer.Position
	Target   Expr
	Name     string
}

// Index is target[key]
type Index struct {
	Position tokenizer.Position
	Target   Expr
	Key      Expr
}

// Call is target(args); target is an Ident for function calls or a Member
// for method calls
type Call struct {
	Position tokenizer.Position
	Target   Expr
	Args     []Expr
}

func (e *Ident) Pos() tokenizer.Position     { return e.Position }
func (e *StringLit) Pos() tokenizer.Position { return e.Position }
func (e *NumberLit) Pos() tokenizer.Position { return e.Position }
func (e *BoolLit) Pos() tokenizer.Position   { return e.Position }
func (e *NullLit) Pos() tokenizer.Position   { return e.Position }
func (e *ArrayLit) Pos() tokenizer.Position  { return e.Position }
func (e *Unary) Pos() tokenizer.Position     { return e.Position }
func (e *Binary) Pos() tokenizer.Position    { return e.Position }
func (e *Ternary) Pos() tokenizer.Position   { return e.Position }
func (e *Member) Pos() tokenizer.Position    { return e.Position }
func (e *Index) Pos() tokenizer.Position     { return e.Position }
func (e *Call) Pos() tokenizer.Position      { return e.Position }
