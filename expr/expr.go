// Package expr provides the expression DAG that the mbp package projects
// over: a small term language (with hash-consed leaves) of integer/real arithmetic and
// Boolean connectives, played in the role the teacher's z3/z3.go plays for
// Z3_ast/Z3_context, but backed by a Go value tree instead of cgo.
package expr

import (
	"fmt"
	"math/big"
)

// SortKind enumerates the sorts this module knows about. There is no
// uninterpreted-sort support: the projection engine only ever needs to
// distinguish Int, Real and Bool.
type SortKind int

const (
	SortBool SortKind = iota
	SortInt
	SortReal
)

func (s SortKind) String() string {
	switch s {
	case SortBool:
		return "Bool"
	case SortInt:
		return "Int"
	case SortReal:
		return "Real"
	default:
		return "?"
	}
}

// Sort is a lightweight value type; unlike AST nodes sorts are not
// hash-consed since there are only three of them.
type Sort struct {
	kind SortKind
}

func (s Sort) Kind() SortKind { return s.kind }
func (s Sort) IsBool() bool   { return s.kind == SortBool }
func (s Sort) IsInt() bool    { return s.kind == SortInt }
func (s Sort) IsReal() bool   { return s.kind == SortReal }
func (s Sort) IsArith() bool  { return s.kind == SortInt || s.kind == SortReal }
func (s Sort) String() string { return s.kind.String() }

func BoolSort() Sort { return Sort{SortBool} }
func IntSort() Sort  { return Sort{SortInt} }
func RealSort() Sort { return Sort{SortReal} }

// node is the representation backing every Expr handle. Leaves are shared:
// Const returns one *node per name and numerals/true/false are interned per
// Context, so those compare equal by pointer the way Z3_ast handles do.
// Composite nodes (Add, Le, Mod, ...) are built fresh on every call, so two
// structurally identical composites are distinct nodes.
type node struct {
	op       DeclKind
	sort     Sort
	children []Expr
	name     string   // constant/uninterpreted-function name
	num      *big.Rat // numeral value, only set when op == OpNumeral
	modulus  *big.Int // set for OpMod/OpIDiv when the modulus is a numeral
}

// Expr is an opaque handle to a node, analogous to the teacher's AST type
// wrapping a Z3_ast. The zero value is not a valid expression.
type Expr struct {
	ctx *Context
	n   *node
}

// Context owns the node table (hash-consing store) and the name->const
// cache, mirroring z3/z3.go's Context (namedSorts/declSorts/funcDecls).
type Context struct {
	interned map[string]*node
	consts   map[string]Expr
}

// NewContext creates an empty expression store.
func NewContext() *Context {
	return &Context{
		interned: make(map[string]*node),
		consts:   make(map[string]Expr),
	}
}

func (c *Context) intern(key string, n *node) Expr {
	if existing, ok := c.interned[key]; ok {
		return Expr{c, existing}
	}
	c.interned[key] = n
	return Expr{c, n}
}

// Const returns (creating if needed) the uninterpreted constant of the
// given name and sort, caching the mapping the way Context.Const in the
// teacher records declSorts so ConstDecl can rediscover it later.
func (c *Context) Const(name string, s Sort) Expr {
	if e, ok := c.consts[name]; ok {
		return e
	}
	n := &node{op: OpUninterpreted, sort: s, name: name}
	e := Expr{c, n}
	c.consts[name] = e
	return e
}

// ConstByName returns a previously created constant, mirroring
// Context.ConstDecl.
func (c *Context) ConstByName(name string) (Expr, bool) {
	e, ok := c.consts[name]
	return e, ok
}

// IsValid reports whether e refers to a real node.
func (e Expr) IsValid() bool { return e.n != nil }

// Context returns the owning context.
func (e Expr) Context() *Context { return e.ctx }

// Sort returns the expression's sort.
func (e Expr) Sort() Sort { return e.n.sort }

// Decl returns the operator this node applies, mirroring AST.Decl/FuncDecl.Kind.
func (e Expr) Decl() DeclKind { return e.n.op }

// Name returns the constant's name ("" for non-constants).
func (e Expr) Name() string { return e.n.name }

// NumChildren mirrors AST.NumChildren.
func (e Expr) NumChildren() int { return len(e.n.children) }

// Child mirrors AST.Child.
func (e Expr) Child(i int) Expr {
	if i < 0 || i >= len(e.n.children) {
		return Expr{}
	}
	return e.n.children[i]
}

// Children mirrors AST.Children.
func (e Expr) Children() []Expr {
	out := make([]Expr, len(e.n.children))
	copy(out, e.n.children)
	return out
}

// Equal is identity equality on the underlying node: two expressions are
// equal exactly when they are the same node.
func (e Expr) Equal(o Expr) bool { return e.n == o.n }

// IsApp reports whether the node is an operator application (every node
// other than a bare numeral or uninterpreted constant).
func (e Expr) IsApp() bool { return e.n.op != OpUninterpreted && e.n.op != OpNumeral }

// IsInt reports whether the expression has Int sort.
func (e Expr) IsInt() bool { return e.n.sort.kind == SortInt }

// IsReal reports whether the expression has Real sort.
func (e Expr) IsReal() bool { return e.n.sort.kind == SortReal }

// IsNumeral reports whether e is a numeral literal.
func (e Expr) IsNumeral() bool { return e.n.op == OpNumeral }

// NumeralValue returns the exact rational value of a numeral node.
func (e Expr) NumeralValue() (*big.Rat, bool) {
	if e.n.op != OpNumeral {
		return nil, false
	}
	return e.n.num, true
}

// Modulus returns the numeral modulus carried by a mod/idiv node.
func (e Expr) Modulus() (*big.Int, bool) {
	if e.n.modulus == nil {
		return nil, false
	}
	return e.n.modulus, true
}

func (e Expr) String() string {
	if e.n == nil {
		return "<nil>"
	}
	switch e.n.op {
	case OpNumeral:
		return e.n.num.RatString()
	case OpUninterpreted:
		return e.n.name
	}
	parts := make([]string, 0, len(e.n.children))
	for _, c := range e.n.children {
		parts = append(parts, c.String())
	}
	switch e.n.op {
	case OpAdd:
		return join(parts, " + ")
	case OpSub:
		return join(parts, " - ")
	case OpMul:
		return join(parts, " * ")
	case OpUMinus:
		return "-" + parts[0]
	case OpAnd:
		return "(" + join(parts, " and ") + ")"
	case OpOr:
		return "(" + join(parts, " or ") + ")"
	case OpNot:
		return "not(" + parts[0] + ")"
	case OpEq:
		return parts[0] + " = " + parts[1]
	case OpDistinct:
		return "distinct(" + join(parts, ", ") + ")"
	case OpLe:
		return parts[0] + " <= " + parts[1]
	case OpLt:
		return parts[0] + " < " + parts[1]
	case OpGe:
		return parts[0] + " >= " + parts[1]
	case OpGt:
		return parts[0] + " > " + parts[1]
	case OpIte:
		return "ite(" + join(parts, ", ") + ")"
	case OpMod:
		return fmt.Sprintf("(%s mod %s)", parts[0], e.n.modulus.String())
	case OpIDiv:
		return fmt.Sprintf("(%s div %s)", parts[0], e.n.modulus.String())
	case OpDiv:
		return parts[0] + " / " + parts[1]
	case OpTrue:
		return "true"
	case OpFalse:
		return "false"
	default:
		return fmt.Sprintf("%s(%s)", e.n.op, join(parts, ", "))
	}
}

func join(parts []string, sep string) string {
	out := ""
	for i, p := range parts {
		if i > 0 {
			out += sep
		}
		out += p
	}
	return out
}
