package mbp

import "github.com/go-mbp/mbp-go/expr"

// purifyFormula runs purity analysis for one top-level input formula,
// after it has been fully expanded (and/or decomposed, linearized, or
// retained) by the literal-processing loop.
//
// Two rules populate the pinned-variable set (c.impureHost):
//
//  1. Unconditional: every host variable occurring inside an impure
//     abstracted subterm is pinned, since that subterm's MBO variable is
//     never a target for elimination and can resurface in the residue
//     through reification — whatever row references it still names it
//     once reified back.
//  2. Conservative (only when CheckPurified is set, the default): if f
//     contains any impure abstraction at all, every free variable of f is
//     pinned, not just the ones inside the abstraction itself: once any
//     part of a formula couldn't be fully understood by the linear
//     theory, treat the rest of that formula's variables as suspect too
//     rather than try to prove they are independent of the abstracted
//     part.
func (c *call) purifyFormula(f expr.Expr) {
	sawImpure := false
	f.Walk(func(n expr.Expr) bool {
		if c.impureSubterms[n] {
			sawImpure = true
			for name, v := range n.FreeVars() {
				c.impureHost[name] = v
			}
			return false
		}
		return true
	})
	if c.cfg.CheckPurified && sawImpure {
		for name, v := range f.FreeVars() {
			c.impureHost[name] = v
		}
	}
}

// eliminable reports whether v (a host variable named in the caller's
// elimination set) may actually be eliminated: it must be arithmetic and
// not pinned by purifyFormula.
func (c *call) eliminable(v expr.Expr) bool {
	if !v.Sort().IsArith() {
		return false
	}
	_, pinned := c.impureHost[v.Name()]
	return !pinned
}
