package mbp

import (
	"math/big"
	"sort"

	"github.com/go-mbp/mbp-go/expr"
	"github.com/go-mbp/mbp-go/mbo"
)

// litTask is one unit of work for the literal-processing loop: a literal
// together with whether it is currently negated. Negation is tracked
// explicitly instead of building fresh Not() nodes so double negation
// strips for free.
type litTask struct {
	Lit expr.Expr
	Neg bool
}

// emitCompare linearizes a-b and submits it to the MBO kernel under op,
// the shared tail of every arithmetic-comparison case below.
func (c *call) emitCompare(a, b expr.Expr, op mbo.Op, queue *[]litTask) error {
	acc := newAccumulator()
	if err := linearizeTerm(c, big.NewRat(1, 1), a, acc, queue); err != nil {
		return err
	}
	if err := linearizeTerm(c, big.NewRat(-1, 1), b, acc, queue); err != nil {
		return err
	}
	coeffs, c0, err := c.extractAccumulator(acc)
	if err != nil {
		return err
	}
	c.kernel.AddConstraint(coeffs, c0, op)
	return nil
}

// processLiteral dispatches one (possibly negated) literal. It either
// emits constraints/enqueues further work and returns handled=true, or
// reports handled=false, meaning t must be kept verbatim in the residue
// (reconstructed via reconstructLit).
func (c *call) processLiteral(t litTask, queue *[]litTask) (bool, error) {
	if c.cancelled() {
		return false, ErrCancelled
	}
	lit, neg := t.Lit, t.Neg

	if lit.IsNot() {
		*queue = append(*queue, litTask{lit.Child(0), !neg})
		return true, nil
	}

	cmp := func(a, b expr.Expr, op mbo.Op) (bool, error) {
		if err := c.emitCompare(a, b, op, queue); err != nil {
			return false, err
		}
		return true, nil
	}

	switch {
	case lit.IsLe():
		a, b := lit.Child(0), lit.Child(1)
		if !neg {
			return cmp(a, b, mbo.Le)
		}
		return cmp(b, a, mbo.Lt)

	case lit.IsGe():
		a, b := lit.Child(0), lit.Child(1)
		if !neg {
			return cmp(b, a, mbo.Le)
		}
		return cmp(a, b, mbo.Lt)

	case lit.IsLt():
		a, b := lit.Child(0), lit.Child(1)
		if !neg {
			return cmp(a, b, mbo.Lt)
		}
		return cmp(b, a, mbo.Le)

	case lit.IsGt():
		a, b := lit.Child(0), lit.Child(1)
		if !neg {
			return cmp(b, a, mbo.Lt)
		}
		return cmp(a, b, mbo.Le)

	case lit.IsEq():
		a, b := lit.Child(0), lit.Child(1)
		if !a.Sort().IsArith() {
			return false, nil
		}
		if !neg {
			return cmp(a, b, mbo.Eq)
		}
		va, ok1 := c.m.Eval(a, true)
		vb, ok2 := c.m.Eval(b, true)
		if !ok1 || !ok2 {
			return false, ErrEvalFailed
		}
		if va.Num.Cmp(vb.Num) > 0 {
			a, b = b, a
		}
		return cmp(a, b, mbo.Lt)

	case lit.IsDistinct():
		children := lit.Children()
		if len(children) == 0 || !children[0].Sort().IsArith() {
			return false, nil
		}
		if !neg {
			vals := append([]expr.Expr{}, children...)
			mv := make(map[expr.Expr]*big.Rat, len(vals))
			for _, ch := range vals {
				v, ok := c.m.Eval(ch, true)
				if !ok {
					return false, ErrEvalFailed
				}
				mv[ch] = v.Num
			}
			sort.Slice(vals, func(i, j int) bool { return mv[vals[i]].Cmp(mv[vals[j]]) < 0 })
			for i := 0; i+1 < len(vals); i++ {
				if ok, err := cmp(vals[i], vals[i+1], mbo.Lt); !ok {
					return false, err
				}
			}
			return true, nil
		}
		for i := 0; i < len(children); i++ {
			vi, ok := c.m.Eval(children[i], true)
			if !ok {
				return false, ErrEvalFailed
			}
			for j := i + 1; j < len(children); j++ {
				vj, ok2 := c.m.Eval(children[j], true)
				if !ok2 {
					return false, ErrEvalFailed
				}
				if vi.Num.Cmp(vj.Num) == 0 {
					return cmp(children[i], children[j], mbo.Eq)
				}
			}
		}
		return false, ErrEvalFailed

	case lit.IsAnd():
		if !neg {
			for _, ch := range lit.Children() {
				*queue = append(*queue, litTask{ch, false})
			}
			return true, nil
		}
		for _, ch := range lit.Children() {
			v, ok := c.m.Eval(ch, true)
			if !ok {
				return false, ErrEvalFailed
			}
			if !v.Bool {
				*queue = append(*queue, litTask{ch, true})
				return true, nil
			}
		}
		return false, ErrEvalFailed

	case lit.IsOr():
		if neg {
			for _, ch := range lit.Children() {
				*queue = append(*queue, litTask{ch, true})
			}
			return true, nil
		}
		for _, ch := range lit.Children() {
			v, ok := c.m.Eval(ch, true)
			if !ok {
				return false, ErrEvalFailed
			}
			if v.Bool {
				*queue = append(*queue, litTask{ch, false})
				return true, nil
			}
		}
		return false, ErrEvalFailed

	default:
		return false, nil
	}
}

// reconstructLit rebuilds the literal t actually denotes (applying the
// negation explicitly) for literals that could not be linearized and must
// be kept verbatim in the residue.
func reconstructLit(t litTask) expr.Expr {
	if t.Neg {
		return expr.Not(t.Lit)
	}
	return t.Lit
}
