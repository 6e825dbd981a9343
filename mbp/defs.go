package mbp

import (
	"math/big"

	"github.com/go-mbp/mbp-go/expr"
	"github.com/go-mbp/mbp-go/mbo"
)

// Def is a reconstructed definition for one eliminated variable: a term,
// built from surviving variables, equal under the model to the variable
// that used to be there.
type Def struct {
	Var  expr.Expr
	Term expr.Expr
}

// reifyDef turns one mbo.Def into an mbp.Def. When the underlying DefTerm
// carries a DivBy modulus (the integer equality elimination case), the
// term is wrapped in IDiv or Div depending on whether the eliminated
// variable was integer- or real-sorted.
func (c *call) reifyDef(d mbo.Def) Def {
	v := c.index2expr[d.Var]
	term := c.reifyAffine(d.Term.Coeffs, d.Term.Const)
	if d.Term.DivBy != nil {
		if v.IsInt() {
			term = expr.IDiv(term, d.Term.DivBy)
		} else {
			term = expr.Div(term, c.ctx.RealVal(new(big.Rat).SetInt(d.Term.DivBy)))
		}
	}
	return Def{Var: v, Term: term}
}

func (c *call) reifyDefs(ds []mbo.Def) []Def {
	out := make([]Def, len(ds))
	for i, d := range ds {
		out[i] = c.reifyDef(d)
	}
	return out
}
