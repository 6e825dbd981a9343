package mbp

import (
	"math/big"

	"github.com/go-mbp/mbp-go/expr"
	"github.com/go-mbp/mbp-go/model"
)

// MaximizeResult is the reified optimum: Ge is the non-strict bound
// `t >= value` at the optimum. Gt is `t >= value` again when Open is
// true (the supremum is approached from below by an infinitesimal margin,
// never actually reached, so the strict form can't be asserted — the
// non-strict one is the best available), and the genuinely strict `t >
// value` when the optimum is attained (Open false).
type MaximizeResult struct {
	Infinite bool
	Value    *big.Rat
	Open     bool
	Ge       expr.Expr
	Gt       expr.Expr
}

// Maximize computes the supremum of t over lits under m. As a side
// effect it writes the optimized values for every uninterpreted constant
// the call registered back into m, the same way Project leaves m
// untouched by itself but the caller's witness reconstruction does not:
// here the kernel computes the witness point directly, via Maximize's own
// back-substitution, and Maximize writes it straight into m before
// returning.
func (p *Projector) Maximize(ctx *expr.Context, m *model.Model, lits []expr.Expr, t expr.Expr) (MaximizeResult, error) {
	c := newCall(p.Cfg, ctx, m)

	for _, f := range lits {
		if c.cancelled() {
			return MaximizeResult{}, ErrCancelled
		}
		queue := []litTask{{f, false}}
		for len(queue) > 0 {
			task := queue[0]
			queue = queue[1:]
			handled, err := c.processLiteral(task, &queue)
			if err != nil {
				return MaximizeResult{}, err
			}
			_ = handled // literals that can't be linearized simply don't constrain the objective
		}
	}

	acc := newAccumulator()
	var sideQueue []litTask
	if err := linearizeTerm(c, big.NewRat(1, 1), t, acc, &sideQueue); err != nil {
		return MaximizeResult{}, err
	}
	objCoeffs, objConst, err := c.extractAccumulator(acc)
	if err != nil {
		return MaximizeResult{}, err
	}
	c.kernel.SetObjective(objCoeffs, objConst)

	opt := c.kernel.Maximize()
	c.writeBackModel()
	if opt.Infinite {
		return MaximizeResult{Infinite: true}, nil
	}

	valueExpr := c.numeralFor(opt.Value)
	result := MaximizeResult{
		Value: opt.Value,
		Open:  opt.Open,
		Ge:    expr.Ge(t, valueExpr),
	}
	if opt.Open {
		result.Gt = expr.Ge(t, valueExpr)
	} else {
		result.Gt = expr.Gt(t, valueExpr)
	}
	return result, nil
}
