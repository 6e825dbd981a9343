// Package model plays the role the teacher's z3/model.go plays for
// Z3_model: it owns an assignment from uninterpreted constants to values
// and evaluates expr.Expr trees against it, with the same "model
// completion" knob as Model.Eval(a AST, modelCompletion bool).
package model

import (
	"fmt"
	"math/big"

	"github.com/go-mbp/mbp-go/expr"
)

// Value is either a rational (arithmetic) or a boolean.
type Value struct {
	IsBool bool
	Bool   bool
	Num    *big.Rat
}

func Num(r *big.Rat) Value  { return Value{Num: r} }
func Bool(b bool) Value     { return Value{IsBool: true, Bool: b} }
func IntVal(i int64) Value  { return Num(new(big.Rat).SetInt64(i)) }

func (v Value) String() string {
	if v.IsBool {
		return fmt.Sprintf("%v", v.Bool)
	}
	return v.Num.RatString()
}

// Model is a partial assignment of uninterpreted constants to values, the
// "guiding model" of model-based projection.
type Model struct {
	vals map[string]Value
}

// New creates an empty model.
func New() *Model {
	return &Model{vals: make(map[string]Value)}
}

// Set assigns a value to a named constant.
func (m *Model) Set(name string, v Value) {
	m.vals[name] = v
}

// Get returns the raw assignment for name, if present.
func (m *Model) Get(name string) (Value, bool) {
	v, ok := m.vals[name]
	return v, ok
}

// defaultFor synthesizes the completion value z3's model_eval produces for
// an unassigned constant under model_completion=true: 0 for arithmetic
// sorts, false for Bool.
func defaultFor(s expr.Sort) Value {
	if s.IsBool() {
		return Bool(false)
	}
	return Num(new(big.Rat))
}

// Eval evaluates e under the model. modelCompletion mirrors
// Model.Eval(a, modelCompletion) in the teacher: when true, an unassigned
// uninterpreted constant is given its sort's default value instead of
// causing evaluation to fail; when false, the same situation is a failure
// (ok=false), which the mbp package's linearizer treats as a fatal error.
func (m *Model) Eval(e expr.Expr, modelCompletion bool) (Value, bool) {
	if !e.IsValid() {
		return Value{}, false
	}
	switch {
	case e.IsNumeral():
		r, _ := e.NumeralValue()
		return Num(r), true
	case e.IsTrue():
		return Bool(true), true
	case e.IsFalse():
		return Bool(false), true
	case e.IsUninterpreted():
		if v, ok := m.vals[e.Name()]; ok {
			return v, true
		}
		if modelCompletion {
			return defaultFor(e.Sort()), true
		}
		return Value{}, false
	}

	children := e.Children()
	eval := func(i int) (Value, bool) { return m.Eval(children[i], modelCompletion) }

	switch e.Decl() {
	case expr.OpAdd:
		acc := new(big.Rat)
		for i := range children {
			v, ok := eval(i)
			if !ok {
				return Value{}, false
			}
			acc.Add(acc, v.Num)
		}
		return Num(acc), true
	case expr.OpSub:
		first, ok := eval(0)
		if !ok {
			return Value{}, false
		}
		acc := new(big.Rat).Set(first.Num)
		for i := 1; i < len(children); i++ {
			v, ok := eval(i)
			if !ok {
				return Value{}, false
			}
			acc.Sub(acc, v.Num)
		}
		return Num(acc), true
	case expr.OpMul:
		acc := big.NewRat(1, 1)
		for i := range children {
			v, ok := eval(i)
			if !ok {
				return Value{}, false
			}
			acc.Mul(acc, v.Num)
		}
		return Num(acc), true
	case expr.OpUMinus:
		v, ok := eval(0)
		if !ok {
			return Value{}, false
		}
		return Num(new(big.Rat).Neg(v.Num)), true
	case expr.OpDiv:
		a, ok1 := eval(0)
		b, ok2 := eval(1)
		if !ok1 || !ok2 || b.Num.Sign() == 0 {
			return Value{}, false
		}
		return Num(new(big.Rat).Quo(a.Num, b.Num)), true
	case expr.OpMod:
		a, ok := eval(0)
		if !ok {
			return Value{}, false
		}
		k, _ := e.Modulus()
		return Num(modRat(a.Num, k)), true
	case expr.OpIDiv:
		a, ok := eval(0)
		if !ok {
			return Value{}, false
		}
		k, _ := e.Modulus()
		return Num(floorDivRat(a.Num, k)), true
	case expr.OpEq:
		a, ok1 := eval(0)
		b, ok2 := eval(1)
		if !ok1 || !ok2 {
			return Value{}, false
		}
		if a.IsBool {
			return Bool(a.Bool == b.Bool), true
		}
		return Bool(a.Num.Cmp(b.Num) == 0), true
	case expr.OpDistinct:
		vals := make([]Value, len(children))
		for i := range children {
			v, ok := eval(i)
			if !ok {
				return Value{}, false
			}
			vals[i] = v
		}
		for i := 0; i < len(vals); i++ {
			for j := i + 1; j < len(vals); j++ {
				if vals[i].Num.Cmp(vals[j].Num) == 0 {
					return Bool(false), true
				}
			}
		}
		return Bool(true), true
	case expr.OpLe, expr.OpLt, expr.OpGe, expr.OpGt:
		a, ok1 := eval(0)
		b, ok2 := eval(1)
		if !ok1 || !ok2 {
			return Value{}, false
		}
		c := a.Num.Cmp(b.Num)
		switch e.Decl() {
		case expr.OpLe:
			return Bool(c <= 0), true
		case expr.OpLt:
			return Bool(c < 0), true
		case expr.OpGe:
			return Bool(c >= 0), true
		default:
			return Bool(c > 0), true
		}
	case expr.OpNot:
		v, ok := eval(0)
		if !ok {
			return Value{}, false
		}
		return Bool(!v.Bool), true
	case expr.OpAnd:
		for i := range children {
			v, ok := eval(i)
			if !ok {
				return Value{}, false
			}
			if !v.Bool {
				return Bool(false), true
			}
		}
		return Bool(true), true
	case expr.OpOr:
		for i := range children {
			v, ok := eval(i)
			if !ok {
				return Value{}, false
			}
			if v.Bool {
				return Bool(true), true
			}
		}
		return Bool(false), true
	case expr.OpIte:
		g, ok := eval(0)
		if !ok {
			return Value{}, false
		}
		if g.Bool {
			return eval(1)
		}
		return eval(2)
	}
	return Value{}, false
}

// modRat computes the Euclidean mod of a rational-valued integer a by a
// positive integer modulus k, matching SMT-LIB `mod` (result in [0,k)).
func modRat(a *big.Rat, k *big.Int) *big.Rat {
	if !a.IsInt() {
		return new(big.Rat)
	}
	ai := a.Num()
	r := new(big.Int).Mod(ai, k)
	return new(big.Rat).SetInt(r)
}

// floorDivRat computes floor(a/k) for integer-valued a and positive integer k.
func floorDivRat(a *big.Rat, k *big.Int) *big.Rat {
	if !a.IsInt() {
		return new(big.Rat)
	}
	ai := a.Num()
	q := new(big.Int)
	m := new(big.Int)
	q.DivMod(ai, k, m) // Go's DivMod is Euclidean, matching SMT-LIB div/mod
	return new(big.Rat).SetInt(q)
}
