package mbp

import (
	"math/big"

	"github.com/go-mbp/mbp-go/expr"
)

// linearizeTerm walks an arithmetic term, accumulating mul*t into acc.
// queue collects the guard literals split off ite branches, pushed on as
// ordinary work so the literal-processing loop linearizes or retains them
// like anything else.
//
// Anything the dispatch doesn't recognize (nonlinear multiplication, a
// mod/div with a non-positive modulus) falls through to the final
// "otherwise" case: treat t as an opaque abstracted subterm and give it
// its own coefficient, same as a host variable. Such abstractions are
// recorded as impure (markImpure) so the purity pass can pin whatever host
// variables they mention. A `u mod k` or `u div k` with k a positive
// numeral is, by contrast, a pure abstraction: it is still linear in the
// variables u mentions, just routed through a fresh MBO pseudo-variable
// rather than expanded inline.
func linearizeTerm(c *call, mul *big.Rat, t expr.Expr, acc *accumulator, queue *[]litTask) error {
	if c.cancelled() {
		return ErrCancelled
	}
	if _, ok := c.tids[t]; ok {
		acc.insertMul(t, mul)
		return nil
	}

	switch {
	case t.IsNumeral():
		v, _ := t.NumeralValue()
		acc.addConst(new(big.Rat).Mul(mul, v))
		return nil

	case t.IsUMinus():
		return linearizeTerm(c, new(big.Rat).Neg(mul), t.Child(0), acc, queue)

	case t.IsAdd():
		for _, ch := range t.Children() {
			if err := linearizeTerm(c, mul, ch, acc, queue); err != nil {
				return err
			}
		}
		return nil

	case t.IsSub():
		chs := t.Children()
		if err := linearizeTerm(c, mul, chs[0], acc, queue); err != nil {
			return err
		}
		negMul := new(big.Rat).Neg(mul)
		for _, ch := range chs[1:] {
			if err := linearizeTerm(c, negMul, ch, acc, queue); err != nil {
				return err
			}
		}
		return nil

	case t.IsMul():
		chs := t.Children()
		if len(chs) == 2 {
			if chs[0].IsNumeral() {
				v, _ := chs[0].NumeralValue()
				return linearizeTerm(c, new(big.Rat).Mul(mul, v), chs[1], acc, queue)
			}
			if chs[1].IsNumeral() {
				v, _ := chs[1].NumeralValue()
				return linearizeTerm(c, new(big.Rat).Mul(mul, v), chs[0], acc, queue)
			}
		}
		c.markImpure(t)
		acc.insertMul(t, mul)
		return nil

	case t.IsIte():
		g := t.Child(0)
		gv, ok := c.m.Eval(g, true)
		if !ok {
			return ErrEvalFailed
		}
		if gv.Bool {
			*queue = append(*queue, litTask{g, false})
			return linearizeTerm(c, mul, t.Child(1), acc, queue)
		}
		*queue = append(*queue, litTask{g, true}) // guard is false: push its negation
		return linearizeTerm(c, mul, t.Child(2), acc, queue)

	case t.IsMod():
		m, _ := t.Modulus()
		if m.Sign() > 0 {
			if _, err := c.registerMod(t, m, queue); err != nil {
				return err
			}
		} else {
			c.markImpure(t)
		}
		acc.insertMul(t, mul)
		return nil

	case t.IsIDiv():
		m, _ := t.Modulus()
		if m.Sign() > 0 {
			if _, err := c.registerDiv(t, m, queue); err != nil {
				return err
			}
		} else {
			c.markImpure(t)
		}
		acc.insertMul(t, mul)
		return nil

	case t.IsUninterpreted():
		// A plain host variable: give it its own coefficient like any
		// other scalar. This is not an abstraction at all, so it never
		// poisons anything on its own.
		acc.insertMul(t, mul)
		return nil

	default:
		c.markImpure(t)
		acc.insertMul(t, mul)
		return nil
	}
}

// registerMod linearizes u (the operand of `u mod k`) into a side
// accumulator, submits it to the MBO kernel as a mod pseudo-row, and
// records t -> its defining variable in tids so later occurrences of the
// same mod term are deduplicated.
func (c *call) registerMod(t expr.Expr, m *big.Int, queue *[]litTask) (int, error) {
	sub := newAccumulator()
	if err := linearizeTerm(c, big.NewRat(1, 1), t.Child(0), sub, queue); err != nil {
		return 0, err
	}
	coeffs, c0, err := c.extractAccumulator(sub)
	if err != nil {
		return 0, err
	}
	id := c.kernel.AddMod(coeffs, c0, m)
	c.tids[t] = id
	c.index2expr[id] = t
	return id, nil
}

// registerDiv is registerMod's analogue for `u div k`.
func (c *call) registerDiv(t expr.Expr, m *big.Int, queue *[]litTask) (int, error) {
	sub := newAccumulator()
	if err := linearizeTerm(c, big.NewRat(1, 1), t.Child(0), sub, queue); err != nil {
		return 0, err
	}
	coeffs, c0, err := c.extractAccumulator(sub)
	if err != nil {
		return 0, err
	}
	id := c.kernel.AddDiv(coeffs, c0, m)
	c.tids[t] = id
	c.index2expr[id] = t
	return id, nil
}
