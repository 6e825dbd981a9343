package mbp

import (
	"math/big"
	"sort"

	"github.com/go-mbp/mbp-go/expr"
	"github.com/go-mbp/mbp-go/mbo"
)

// reifyAffine turns an MBO coefficient vector back into an expr.Expr.
// Variables are emitted in ascending id order for stable output; a
// mod/div pseudo-variable's id maps, through index2expr, back to the
// original `u mod k` / `u div k` expression it was registered under —
// pseudo-rows are never expanded inline, only referenced.
func (c *call) reifyAffine(coeffs map[int]*big.Rat, constRat *big.Rat) expr.Expr {
	ids := make([]int, 0, len(coeffs))
	for id := range coeffs {
		ids = append(ids, id)
	}
	sort.Ints(ids)

	var terms []expr.Expr
	for _, id := range ids {
		coeff := coeffs[id]
		e := c.index2expr[id]
		switch {
		case coeff.Cmp(big.NewRat(1, 1)) == 0:
			terms = append(terms, e)
		case coeff.Cmp(big.NewRat(-1, 1)) == 0:
			terms = append(terms, expr.Neg(e))
		default:
			terms = append(terms, expr.Mul(c.numeralFor(coeff), e))
		}
	}
	if constRat.Sign() != 0 {
		terms = append(terms, c.numeralFor(constRat))
	}

	switch len(terms) {
	case 0:
		return c.ctx.IntVal(0)
	case 1:
		return terms[0]
	default:
		return expr.Add(terms...)
	}
}

// numeralFor renders a rational as an Int numeral when it happens to be
// integral and a Real numeral otherwise. The FM elimination path works
// over rationals even for integer-sorted variables (a documented
// simplification, see DESIGN.md), so a surviving coefficient is not
// guaranteed to be an integer even when every variable it multiplies is.
func (c *call) numeralFor(r *big.Rat) expr.Expr {
	if r.IsInt() {
		return c.ctx.NumeralRat(r, expr.IntSort())
	}
	return c.ctx.NumeralRat(r, expr.RealSort())
}

func (c *call) zeroLike(s expr.Sort) expr.Expr {
	if s.IsReal() {
		return c.ctx.RealVal(new(big.Rat))
	}
	return c.ctx.IntVal(0)
}

// reifyRow turns a surviving MBO row into a formula. A Divides row (from
// integer equality elimination with a non-unit coefficient) reifies as
// `term mod modulus = 0`. A row left with exactly one variable and a
// negative coefficient is rewritten into positive-coefficient form with
// the comparator flipped, e.g. `-y+3<=0` reifies as `y>=3` rather than
// `-y+3<=0`.
func (c *call) reifyRow(r *mbo.Row) expr.Expr {
	if r.CmpOp == mbo.Divides {
		term := c.reifyAffine(r.Coeffs, r.Const)
		return expr.Eq(expr.Mod(term, r.Modulus), c.ctx.IntVal(0))
	}
	if len(r.Coeffs) == 1 {
		for id, coeff := range r.Coeffs {
			if coeff.Sign() < 0 {
				return c.reifySingleVarFlipped(id, coeff, r.Const, r.CmpOp)
			}
		}
	}
	term := c.reifyAffine(r.Coeffs, r.Const)
	zero := c.zeroLike(term.Sort())
	switch r.CmpOp {
	case mbo.Le:
		return expr.Le(term, zero)
	case mbo.Lt:
		return expr.Lt(term, zero)
	default:
		return expr.Eq(term, zero)
	}
}

// reifySingleVarFlipped renders `coeff*v + constRat <op> 0` (coeff < 0) as
// `v <op'> -constRat/coeff`, flipping the comparator to keep the variable's
// own coefficient positive.
func (c *call) reifySingleVarFlipped(id int, coeff, constRat *big.Rat, op mbo.Op) expr.Expr {
	v := c.index2expr[id]
	bound := new(big.Rat).Neg(new(big.Rat).Quo(constRat, coeff))
	boundExpr := c.numeralFor(bound)
	switch op {
	case mbo.Le:
		return expr.Ge(v, boundExpr)
	case mbo.Lt:
		return expr.Gt(v, boundExpr)
	default:
		return expr.Eq(v, boundExpr)
	}
}

func (c *call) reifyRows(rows []*mbo.Row) []expr.Expr {
	out := make([]expr.Expr, len(rows))
	for i, r := range rows {
		out[i] = c.reifyRow(r)
	}
	return out
}
