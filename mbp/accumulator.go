// Package mbp implements model-based projection for linear arithmetic:
// given a model, a formula and a set of variables, it produces a residue
// that no longer mentions the eliminated variables but is still satisfied
// by the model, plus optional definitions reconstructing the eliminated
// variables' values.
package mbp

import (
	"math/big"

	"github.com/go-mbp/mbp-go/expr"
)

// accumulator is a coefficient accumulator: a mapping from expression node
// to rational coefficient, accumulating `Σ cᵢ·tᵢ + c₀` while a term is
// walked. expr.Expr is hash-consed (leaves) or otherwise
// identity-comparable, so it is used directly as the map key, no separate
// key type needed. insertMul is commutative and associative by
// construction since it only ever adds into the map.
type accumulator struct {
	coeffs map[expr.Expr]*big.Rat
	order  []expr.Expr
	c0     *big.Rat
}

func newAccumulator() *accumulator {
	return &accumulator{
		coeffs: make(map[expr.Expr]*big.Rat),
		c0:     new(big.Rat),
	}
}

// insertMul adds c to the running coefficient of e.
func (a *accumulator) insertMul(e expr.Expr, c *big.Rat) {
	if cur, ok := a.coeffs[e]; ok {
		cur.Add(cur, c)
		return
	}
	a.coeffs[e] = new(big.Rat).Set(c)
	a.order = append(a.order, e)
}

func (a *accumulator) addConst(c *big.Rat) {
	a.c0.Add(a.c0, c)
}

type accEntry struct {
	Expr  expr.Expr
	Coeff *big.Rat
}

// entries returns (expr, coefficient) pairs with nonzero coefficient, in
// first-inserted order, for deterministic constraint emission.
func (a *accumulator) entries() []accEntry {
	out := make([]accEntry, 0, len(a.order))
	for _, e := range a.order {
		c := a.coeffs[e]
		if c.Sign() == 0 {
			continue
		}
		out = append(out, accEntry{e, c})
	}
	return out
}
