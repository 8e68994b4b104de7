// Package rules turns a parsed Bolt ruleset into the JSON rules document.
// Generation failures carry a message only; unlike parse errors they are not
// tied to a source span.
package rules

import (
	"errors"
	"fmt"
	"strings"

	"github.com/boltlang/boltc/parser"
)

// Sentinel errors
var (
	ErrUndefinedFunction     = errors.New("call to undefined function")
	ErrWrongArity            = errors.New("wrong number of arguments")
	ErrRecursiveFunction     = errors.New("recursive functions cannot be inlined")
	ErrNotCallable           = errors.New("expression is not callable")
	ErrUnsupportedExpression = errors.New("unsupported expression")
	ErrUnknownMethod         = errors.New("unknown access method")
	ErrDuplicateMethod       = errors.New("duplicate access method")
	ErrConflictingMethods    = errors.New("write() cannot be combined with create(), update(), or delete()")
	ErrDuplicateFunction     = errors.New("duplicate function declaration")
	ErrDuplicateType         = errors.New("duplicate type declaration")
	ErrUnknownType           = errors.New("unknown type")
	ErrRecursiveType         = errors.New("recursive type reference")
	ErrInvalidUnion          = errors.New("user-defined types cannot appear in unions")
	ErrInvalidIndex          = errors.New("index() requires a list of string literals")
)

// Write guards for the create/update/delete shorthands. Each shorthand
// narrows .write to one phase of the data lifecycle.
const (
	guardCreate = "!data.exists()"
	guardUpdate = "data.exists() && newData.exists()"
	guardDelete = "data.exists() && !newData.exists()"
)

// Generate compiles a parsed ruleset into the rules document tree. The
// result always has a single top-level "rules" key.
func Generate(rs *parser.Ruleset) (*Node, error) {
	g := &generator{
		renderer: renderer{funcs: map[string]*parser.FuncDecl{}},
		types:    map[string]*parser.TypeDecl{},
	}

	for _, fn := range rs.Functions {
		if _, exists := g.renderer.funcs[fn.Name]; exists {
			return nil, fmt.Errorf("%w: %s()", ErrDuplicateFunction, fn.Name)
		}

		g.renderer.funcs[fn.Name] = fn
	}

	for _, typ := range rs.Types {
		if _, exists := g.types[typ.Name]; exists {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateType, typ.Name)
		}

		g.types[typ.Name] = typ
	}

	root := newLocation()

	for _, path := range rs.Paths {
		if err := g.addPath(root, path, nil, nil); err != nil {
			return nil, err
		}
	}

	doc := NewObject()
	doc.Set("rules", root.finalize())

	return doc, nil
}

type generator struct {
	renderer renderer
	types    map[string]*parser.TypeDecl
}

// location accumulates the rules attached to one node of the output tree
// before it is rendered
type location struct {
	reads     []rendered
	writes    []rendered
	validates []rendered
	index     []string
	keys      []string
	children  map[string]*location
}

func newLocation() *location {
	return &location{children: map[string]*location{}}
}

// child returns the sub-location for key, creating it on first use
func (l *location) child(key string) *location {
	if existing, ok := l.children[key]; ok {
		return existing
	}

	created := newLocation()
	l.children[key] = created
	l.keys = append(l.keys, key)

	return created
}

// addPath walks one path declaration, descending from loc, and applies its
// type, methods, and nested paths. trail holds the resolved segments for
// error messages; env binds the captures in scope to their $-prefixed
// output names.
func (g *generator) addPath(loc *location, decl *parser.PathDecl, trail []string, env map[string]binding) error {
	target := loc

	for _, segment := range decl.Segments {
		key := segment.Name
		if segment.Capture {
			key = "$" + key
			env = bindCapture(env, segment.Name, key)
		}

		target = target.child(key)
		trail = append(trail, key)
	}

	if decl.Type != "" {
		if err := g.applyType(target, decl.Type, map[string]bool{}, trail); err != nil {
			return err
		}
	}

	if err := g.applyMethods(target, decl.Methods, trail, env); err != nil {
		return err
	}

	for _, nested := range decl.Children {
		if err := g.addPath(target, nested, trail, env); err != nil {
			return err
		}
	}

	return nil
}

// bindCapture extends env with one capture, copying so sibling paths do not
// see each other's captures
func bindCapture(env map[string]binding, name, wildcard string) map[string]binding {
	extended := make(map[string]binding, len(env)+1)
	for key, value := range env {
		extended[key] = value
	}

	extended[name] = binding{expr: &parser.Ident{Name: wildcard}}

	return extended
}

// applyMethods applies one block's access methods to a location
func (g *generator) applyMethods(target *location, methods []*parser.Method, trail []string, env map[string]binding) error {
	seen := map[string]bool{}

	for _, method := range methods {
		if seen[method.Name] {
			return fmt.Errorf("%w: %s() at %s", ErrDuplicateMethod, method.Name, pathString(trail))
		}

		seen[method.Name] = true

		if method.Name == "write" && (seen["create"] || seen["update"] || seen["delete"]) ||
			method.Name != "write" && seen["write"] && isWriteShorthand(method.Name) {
			return fmt.Errorf("%w at %s", ErrConflictingMethods, pathString(trail))
		}

		if err := g.applyMethod(target, method, trail, env); err != nil {
			return err
		}
	}

	return nil
}

func isWriteShorthand(name string) bool {
	return name == "create" || name == "update" || name == "delete"
}

func (g *generator) applyMethod(target *location, method *parser.Method, trail []string, env map[string]binding) error {
	switch method.Name {
	case "read":
		rd, err := g.renderRule(method.Body, env)
		if err != nil {
			return err
		}

		target.reads = append(target.reads, rd)
	case "write":
		rd, err := g.renderRule(method.Body, env)
		if err != nil {
			return err
		}

		target.writes = append(target.writes, rd)
	case "create":
		return g.applyGuardedWrite(target, method, guardCreate, env)
	case "update":
		return g.applyGuardedWrite(target, method, guardUpdate, env)
	case "delete":
		return g.applyGuardedWrite(target, method, guardDelete, env)
	case "validate":
		rd, err := g.renderRule(method.Body, env)
		if err != nil {
			return err
		}

		target.validates = append(target.validates, rd)
	case "index":
		return applyIndex(target, method)
	default:
		return fmt.Errorf("%w: %s() at %s", ErrUnknownMethod, method.Name, pathString(trail))
	}

	return nil
}

// renderRule translates a rule body into an output fragment
func (g *generator) renderRule(body parser.Expr, env map[string]binding) (rendered, error) {
	rd, err := g.renderer.render(body, env)
	if err != nil {
		return rendered{}, err
	}

	return asValue(rd), nil
}

// applyGuardedWrite narrows a write rule with a lifecycle guard
func (g *generator) applyGuardedWrite(target *location, method *parser.Method, guard string, env map[string]binding) error {
	rd, err := g.renderer.render(method.Body, env)
	if err != nil {
		return err
	}

	condition := at(asValue(rd), precAnd+1)
	target.writes = append(target.writes, rendered{
		text: guard + " && " + condition,
		prec: precAnd,
	})

	return nil
}

// applyIndex records .indexOn entries from an index() { ["a", "b"] } body
func applyIndex(target *location, method *parser.Method) error {
	array, ok := method.Body.(*parser.ArrayLit)
	if !ok {
		return ErrInvalidIndex
	}

	for _, item := range array.Items {
		lit, ok := item.(*parser.StringLit)
		if !ok {
			return ErrInvalidIndex
		}

		if !contains(target.index, lit.Value) {
			target.index = append(target.index, lit.Value)
		}
	}

	return nil
}

func contains(values []string, value string) bool {
	for _, v := range values {
		if v == value {
			return true
		}
	}

	return false
}

// applyType attaches a type's field constraints and validation to a
// location. Base types are applied first, then fields, then validate().
func (g *generator) applyType(target *location, name string, seen map[string]bool, trail []string) error {
	typ, ok := g.types[name]
	if !ok {
		return fmt.Errorf("%w: %s at %s", ErrUnknownType, name, pathString(trail))
	}

	if seen[name] {
		return fmt.Errorf("%w: %s", ErrRecursiveType, name)
	}

	seen[name] = true
	defer delete(seen, name)

	if typ.Extends != "" {
		if err := g.applyType(target, typ.Extends, seen, trail); err != nil {
			return err
		}
	}

	required := []string{}

	for _, field := range typ.Fields {
		if fieldRequired(field) {
			required = append(required, field.Name)
		}

		if err := g.applyField(target.child(field.Name), field, seen, append(trail, field.Name)); err != nil {
			return err
		}
	}

	if len(required) > 0 {
		quoted := make([]string, 0, len(required))
		for _, name := range required {
			quoted = append(quoted, quote(name))
		}

		target.validates = append(target.validates, rendered{
			text: "newData.hasChildren([" + strings.Join(quoted, ", ") + "])",
			prec: precPostfix,
		})
	}

	for _, method := range typ.Methods {
		if method.Name != "validate" {
			return fmt.Errorf("%w: %s() in type %s", ErrUnknownMethod, method.Name, typ.Name)
		}

		rd, err := g.renderRule(method.Body, nil)
		if err != nil {
			return err
		}

		target.validates = append(target.validates, rd)
	}

	return nil
}

// fieldRequired reports whether a field must be present: any field whose
// union has no Null member and is not bare Any
func fieldRequired(field *parser.Field) bool {
	for _, name := range field.TypeNames {
		if name == "Null" || name == "Any" {
			return false
		}
	}

	return true
}

// builtin field types and their value tests
var builtinTypeTests = map[string]string{
	"String":  "newData.isString()",
	"Number":  "newData.isNumber()",
	"Boolean": "newData.isBoolean()",
	"Object":  "newData.hasChildren()",
	"Null":    "newData.val() == null",
}

// applyField attaches a field's type test to the field's location
func (g *generator) applyField(target *location, field *parser.Field, seen map[string]bool, trail []string) error {
	tests := []string{}

	for _, name := range field.TypeNames {
		switch {
		case name == "Any":
			// Any places no constraint on the value
			continue
		case builtinTypeTests[name] != "":
			tests = append(tests, builtinTypeTests[name])
		default:
			// a user-defined type expands in place of a test
			if len(field.TypeNames) > 1 {
				return fmt.Errorf("%w: %s in field %s", ErrInvalidUnion, name, field.Name)
			}

			return g.applyType(target, name, seen, trail)
		}
	}

	if len(tests) == 0 {
		return nil
	}

	target.validates = append(target.validates, rendered{
		text: strings.Join(tests, " || "),
		prec: orPrecFor(len(tests)),
	})

	return nil
}

// orPrecFor reports the precedence of a test union: a single test keeps its
// own (postfix) precedence, a joined union binds at ||
func orPrecFor(count int) int {
	if count == 1 {
		return precPostfix
	}

	return precOr
}

// pathString renders a resolved location for error messages
func pathString(trail []string) string {
	if len(trail) == 0 {
		return "/"
	}

	return "/" + strings.Join(trail, "/")
}

// finalize renders the accumulated location tree into document nodes.
// Rule keys come first in a fixed order, then children in source order.
func (l *location) finalize() *Node {
	node := NewObject()

	if len(l.reads) > 0 {
		node.Set(".read", NewString(foldOr(l.reads)))
	}

	if len(l.writes) > 0 {
		node.Set(".write", NewString(foldOr(l.writes)))
	}

	if len(l.validates) > 0 {
		node.Set(".validate", NewString(foldAnd(l.validates)))
	}

	if len(l.index) > 0 {
		array := NewArray()
		for _, name := range l.index {
			array.Append(NewString(name))
		}

		node.Set(".indexOn", array)
	}

	for _, key := range l.keys {
		node.Set(key, l.children[key].finalize())
	}

	return node
}

// foldOr joins rule fragments with ||; a lone fragment keeps its exact text
func foldOr(rules []rendered) string {
	if len(rules) == 1 {
		return rules[0].text
	}

	parts := make([]string, 0, len(rules))
	for _, rd := range rules {
		parts = append(parts, at(rd, precOr))
	}

	return strings.Join(parts, " || ")
}

// foldAnd joins validation fragments with &&
func foldAnd(rules []rendered) string {
	if len(rules) == 1 {
		return rules[0].text
	}

	parts := make([]string, 0, len(rules))
	for _, rd := range rules {
		parts = append(parts, at(rd, precAnd))
	}

	return strings.Join(parts, " && ")
}
