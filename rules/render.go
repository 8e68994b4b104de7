package rules

import (
	"fmt"
	"strings"

	"github.com/boltlang/boltc/parser"
)

// Operator binding powers in the generated rules language, lowest first.
// Mirrors the source grammar so round-tripped expressions keep their meaning
// with a minimum of parentheses.
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

var binaryPrec = map[string]int{
	"||": precOr,
	"&&": precAnd,
	"==": precEquality,
	"!=": precEquality,
	"<":  precRelational,
	">":  precRelational,
	"<=": precRelational,
	">=": precRelational,
	"+":  precAdditive,
	"-":  precAdditive,
	"*":  precMultiplicative,
	"/":  precMultiplicative,
	"%":  precMultiplicative,
}

// rendered is a translated expression fragment. Snapshot fragments denote a
// database location (newData, data, root, or a child chain off one of them)
// and pick up .val() when used where a plain value is required.
type rendered struct {
	text     string
	prec     int
	snapshot bool
}

// methods on a snapshot that return another snapshot
var snapshotReturningMethods = map[string]bool{
	"child":  true,
	"parent": true,
}

// source identifiers that denote snapshots in the output language
var snapshotIdents = map[string]string{
	"this": "newData",
	"prev": "data",
	"root": "root",
}

// binding is an inlined function argument: the argument expression together
// with the environment it was written in
type binding struct {
	expr parser.Expr
	env  map[string]binding
}

// renderer translates expression trees into rules-language strings,
// inlining user function calls as it goes
type renderer struct {
	funcs map[string]*parser.FuncDecl
	stack []string // function names currently being inlined
}

// renderValue translates expr and converts a snapshot result to its value
func (r *renderer) renderValue(expr parser.Expr, env map[string]binding) (string, error) {
	rd, err := r.render(expr, env)
	if err != nil {
		return "", err
	}

	return asValue(rd).text, nil
}

// renderValueAt is renderValue with parentheses added when the result binds
// looser than min
func (r *renderer) renderValueAt(expr parser.Expr, env map[string]binding, min int) (string, error) {
	rd, err := r.render(expr, env)
	if err != nil {
		return "", err
	}

	return at(asValue(rd), min), nil
}

// asValue converts a snapshot fragment to a value fragment
func asValue(rd rendered) rendered {
	if !rd.snapshot {
		return rd
	}

	return rendered{text: rd.text + ".val()", prec: precPostfix}
}

// at parenthesizes a fragment that binds looser than min
func at(rd rendered, min int) string {
	if rd.prec < min {
		return "(" + rd.text + ")"
	}

	return rd.text
}

func (r *renderer) render(expr parser.Expr, env map[string]binding) (rendered, error) {
	switch e := expr.(type) {
	case *parser.Ident:
		if b, ok := env[e.Name]; ok {
			return r.render(b.expr, b.env)
		}

		if snapshot, ok := snapshotIdents[e.Name]; ok {
			return rendered{text: snapshot, prec: precPostfix, snapshot: true}, nil
		}

		return rendered{text: e.Name, prec: precPostfix}, nil
	case *parser.StringLit:
		return rendered{text: quote(e.Value), prec: precPostfix}, nil
	case *parser.NumberLit:
		return rendered{text: e.Value, prec: precPostfix}, nil
	case *parser.BoolLit:
		if e.Value {
			return rendered{text: "true", prec: precPostfix}, nil
		}

		return rendered{text: "false", prec: precPostfix}, nil
	case *parser.NullLit:
		return rendered{text: "null", prec: precPostfix}, nil
	case *parser.ArrayLit:
		items := make([]string, 0, len(e.Items))

		for _, item := range e.Items {
			text, err := r.renderValue(item, env)
			if err != nil {
				return rendered{}, err
			}

			items = append(items, text)
		}

		return rendered{text: "[" + strings.Join(items, ", ") + "]", prec: precPostfix}, nil
	case *parser.Unary:
		operand, err := r.render(e.Operand, env)
		if err != nil {
			return rendered{}, err
		}

		return rendered{text: e.Op + at(asValue(operand), precUnary), prec: precUnary}, nil
	case *parser.Binary:
		prec := binaryPrec[e.Op]

		left, err := r.renderValueAt(e.Left, env, prec)
		if err != nil {
			return rendered{}, err
		}

		right, err := r.renderValueAt(e.Right, env, prec+1)
		if err != nil {
			return rendered{}, err
		}

		return rendered{text: left + " " + e.Op + " " + right, prec: prec}, nil
	case *parser.Ternary:
		cond, err := r.renderValueAt(e.Cond, env, precTernary+1)
		if err != nil {
			return rendered{}, err
		}

		then, err := r.renderValueAt(e.Then, env, precTernary)
		if err != nil {
			return rendered{}, err
		}

		els, err := r.renderValueAt(e.Else, env, precTernary)
		if err != nil {
			return rendered{}, err
		}

		return rendered{text: cond + " ? " + then + " : " + els, prec: precTernary}, nil
	case *parser.Member:
		target, err := r.render(e.Target, env)
		if err != nil {
			return rendered{}, err
		}

		if target.snapshot {
			return rendered{
				text:     target.text + ".child(" + quote(e.Name) + ")",
				prec:     precPostfix,
				snapshot: true,
			}, nil
		}

		return rendered{text: at(target, precPostfix) + "." + e.Name, prec: precPostfix}, nil
	case *parser.Index:
		target, err := r.render(e.Target, env)
		if err != nil {
			return rendered{}, err
		}

		key, err := r.renderValue(e.Key, env)
		if err != nil {
			return rendered{}, err
		}

		if target.snapshot {
			return rendered{
				text:     target.text + ".child(" + key + ")",
				prec:     precPostfix,
				snapshot: true,
			}, nil
		}

		return rendered{text: at(target, precPostfix) + "[" + key + "]", prec: precPostfix}, nil
	case *parser.Call:
		return r.renderCall(e, env)
	default:
		return rendered{}, fmt.Errorf("%w: %T", ErrUnsupportedExpression, expr)
	}
}

// renderCall translates method calls on snapshots and values, and inlines
// calls to user functions
func (r *renderer) renderCall(call *parser.Call, env map[string]binding) (rendered, error) {
	switch target := call.Target.(type) {
	case *parser.Ident:
		if _, bound := env[target.Name]; !bound {
			return r.inline(call, target.Name, env)
		}

		return rendered{}, fmt.Errorf("%w: %s", ErrNotCallable, target.Name)
	case *parser.Member:
		receiver, err := r.render(target.Target, env)
		if err != nil {
			return rendered{}, err
		}

		args := make([]string, 0, len(call.Args))

		for _, arg := range call.Args {
			text, err := r.renderValue(arg, env)
			if err != nil {
				return rendered{}, err
			}

			args = append(args, text)
		}

		if receiver.snapshot {
			return rendered{
				text:     receiver.text + "." + target.Name + "(" + strings.Join(args, ", ") + ")",
				prec:     precPostfix,
				snapshot: snapshotReturningMethods[target.Name],
			}, nil
		}

		return rendered{
			text: at(receiver, precPostfix) + "." + target.Name + "(" + strings.Join(args, ", ") + ")",
			prec: precPostfix,
		}, nil
	default:
		return rendered{}, fmt.Errorf("%w: %T", ErrNotCallable, call.Target)
	}
}

// inline expands a user function call by rendering its body with the
// arguments bound in the caller's environment
func (r *renderer) inline(call *parser.Call, name string, env map[string]binding) (rendered, error) {
	fn, ok := r.funcs[name]
	if !ok {
		return rendered{}, fmt.Errorf("%w: %s()", ErrUndefinedFunction, name)
	}

	if len(call.Args) != len(fn.Params) {
		return rendered{}, fmt.Errorf("%w: %s() takes %d argument(s), got %d",
			ErrWrongArity, name, len(fn.Params), len(call.Args))
	}

	for _, active := range r.stack {
		if active == name {
			return rendered{}, fmt.Errorf("%w: %s()", ErrRecursiveFunction, name)
		}
	}

	bound := make(map[string]binding, len(fn.Params))
	for i, param := range fn.Params {
		bound[param] = binding{expr: call.Args[i], env: env}
	}

	r.stack = append(r.stack, name)
	defer func() { r.stack = r.stack[:len(r.stack)-1] }()

	return r.render(fn.Body, bound)
}

// quote renders a string literal in the output language with single quotes
func quote(value string) string {
	var builder strings.Builder

	builder.WriteByte('\'')

	for _, r := range value {
		switch r {
		case '\'':
			builder.WriteString(`\'`)
		case '\\':
			builder.WriteString(`\\`)
		case '\n':
			builder.WriteString(`\n`)
		case '\t':
			builder.WriteString(`\t`)
		default:
			builder.WriteRune(r)
		}
	}

	builder.WriteByte('\'')

	return builder.String()
}
