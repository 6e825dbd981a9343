package expr

import (
	"fmt"
	"math/big"
)

// IntVal creates an integer numeral, mirroring Context.IntVal.
func (c *Context) IntVal(v int64) Expr {
	return c.NumeralRat(new(big.Rat).SetInt64(v), IntSort())
}

// RealVal creates a real numeral from a numerator/denominator pair,
// mirroring Context.RealVal (which in the teacher takes a decimal/fraction
// string; here the caller already has a big.Rat).
func (c *Context) RealVal(r *big.Rat) Expr {
	return c.NumeralRat(r, RealSort())
}

// NumeralRat builds a numeral node of the given sort carrying the exact
// rational value r.
func (c *Context) NumeralRat(r *big.Rat, s Sort) Expr {
	key := fmt.Sprintf("num:%s:%s", s, r.RatString())
	if s.IsInt() && !r.IsInt() {
		panic("expr: integer numeral must have integral value")
	}
	return c.intern(key, &node{op: OpNumeral, sort: s, num: new(big.Rat).Set(r)})
}

// BoolVal creates the true/false constant.
func (c *Context) BoolVal(b bool) Expr {
	if b {
		return c.intern("true", &node{op: OpTrue, sort: BoolSort()})
	}
	return c.intern("false", &node{op: OpFalse, sort: BoolSort()})
}

func app(s Sort, op DeclKind, args ...Expr) Expr {
	if len(args) == 0 {
		panic("expr: application requires at least one argument")
	}
	ctx := args[0].ctx
	n := &node{op: op, sort: s, children: append([]Expr{}, args...)}
	return Expr{ctx, n} // arithmetic/boolean combinators are not hash-consed; identity only matters for leaves (consts/numerals/abstracted subterms)
}

func Not(a Expr) Expr      { return app(BoolSort(), OpNot, a) }
func And(args ...Expr) Expr { return app(BoolSort(), OpAnd, args...) }
func Or(args ...Expr) Expr  { return app(BoolSort(), OpOr, args...) }
func Eq(x, y Expr) Expr     { return app(BoolSort(), OpEq, x, y) }
func Distinct(args ...Expr) Expr {
	return app(BoolSort(), OpDistinct, args...)
}

func arithSort(args ...Expr) Sort {
	for _, a := range args {
		if a.Sort().IsReal() {
			return RealSort()
		}
	}
	return IntSort()
}

func Add(args ...Expr) Expr { return app(arithSort(args...), OpAdd, args...) }
func Sub(args ...Expr) Expr { return app(arithSort(args...), OpSub, args...) }
func Mul(args ...Expr) Expr { return app(arithSort(args...), OpMul, args...) }
func Neg(a Expr) Expr       { return app(a.Sort(), OpUMinus, a) }

func Le(x, y Expr) Expr { return app(BoolSort(), OpLe, x, y) }
func Lt(x, y Expr) Expr { return app(BoolSort(), OpLt, x, y) }
func Ge(x, y Expr) Expr { return app(BoolSort(), OpGe, x, y) }
func Gt(x, y Expr) Expr { return app(BoolSort(), OpGt, x, y) }

// Ite builds a conditional term; g must be Bool-sorted.
func Ite(g, a, b Expr) Expr { return app(a.Sort(), OpIte, g, a, b) }

// Mod builds `a mod k` for a positive integer numeral modulus k.
func Mod(a Expr, k *big.Int) Expr {
	n := &node{op: OpMod, sort: IntSort(), children: []Expr{a}, modulus: new(big.Int).Set(k)}
	return Expr{a.ctx, n}
}

// IDiv builds `a div k`, analogous to Mod.
func IDiv(a Expr, k *big.Int) Expr {
	n := &node{op: OpIDiv, sort: IntSort(), children: []Expr{a}, modulus: new(big.Int).Set(k)}
	return Expr{a.ctx, n}
}

// Div builds real division a / b.
func Div(a, b Expr) Expr { return app(RealSort(), OpDiv, a, b) }

// Predicates, mirroring the is_* family wired through
// z3/ast_ops.go-style Decl().Kind() checks in the teacher.
func (e Expr) IsAdd() bool      { return e.n.op == OpAdd }
func (e Expr) IsMul() bool      { return e.n.op == OpMul }
func (e Expr) IsSub() bool      { return e.n.op == OpSub }
func (e Expr) IsUMinus() bool   { return e.n.op == OpUMinus }
func (e Expr) IsLe() bool       { return e.n.op == OpLe }
func (e Expr) IsLt() bool       { return e.n.op == OpLt }
func (e Expr) IsGe() bool       { return e.n.op == OpGe }
func (e Expr) IsGt() bool       { return e.n.op == OpGt }
func (e Expr) IsEq() bool       { return e.n.op == OpEq }
func (e Expr) IsDistinct() bool { return e.n.op == OpDistinct }
func (e Expr) IsNot() bool      { return e.n.op == OpNot }
func (e Expr) IsAnd() bool      { return e.n.op == OpAnd }
func (e Expr) IsOr() bool       { return e.n.op == OpOr }
func (e Expr) IsIte() bool      { return e.n.op == OpIte }
func (e Expr) IsMod() bool      { return e.n.op == OpMod }
func (e Expr) IsIDiv() bool     { return e.n.op == OpIDiv }
func (e Expr) IsDiv() bool      { return e.n.op == OpDiv }
func (e Expr) IsTrue() bool     { return e.n.op == OpTrue }
func (e Expr) IsFalse() bool    { return e.n.op == OpFalse }
func (e Expr) IsUninterpreted() bool { return e.n.op == OpUninterpreted }
