// Command mbpdemo projects a small linear-arithmetic formula against a
// concrete model and prints the residue.
package main

import (
	"fmt"

	"github.com/go-mbp/mbp-go/expr"
	"github.com/go-mbp/mbp-go/mbp"
	"github.com/go-mbp/mbp-go/model"
)

func main() {
	ctx := expr.NewContext()

	x := ctx.Const("x", expr.IntSort())
	y := ctx.Const("y", expr.IntSort())
	three := ctx.IntVal(3)
	one := ctx.IntVal(1)

	// F = { x <= 3, x >= 1, y <= x }
	lits := []expr.Expr{
		expr.Le(x, three),
		expr.Ge(x, one),
		expr.Le(y, x),
	}

	m := model.New()
	m.Set("x", model.IntVal(2))
	m.Set("y", model.IntVal(0))

	p := mbp.NewProjector(mbp.DefaultConfig())
	residue, eliminated, defs, err := p.ProjectDefs(ctx, m, []expr.Expr{x}, lits)
	if err != nil {
		fmt.Println("project:", err)
		return
	}

	fmt.Println("eliminated x:", len(eliminated) == 0)
	fmt.Println("residue:")
	for _, f := range residue {
		fmt.Println(" ", f)
	}
	fmt.Println("definitions:")
	for _, d := range defs {
		fmt.Printf("  %s := %s\n", d.Var, d.Term)
	}

	t := expr.Add(x, y)
	four := ctx.IntVal(4)
	zero := ctx.IntVal(0)
	maxLits := []expr.Expr{
		expr.Le(x, three),
		expr.Le(y, four),
		expr.Ge(x, zero),
		expr.Ge(y, zero),
	}
	m2 := model.New()
	m2.Set("x", model.IntVal(0))
	m2.Set("y", model.IntVal(0))

	res, err := p.Maximize(ctx, m2, maxLits, t)
	if err != nil {
		fmt.Println("maximize:", err)
		return
	}
	if res.Infinite {
		fmt.Println("max x+y: unbounded")
		return
	}
	fmt.Println("max x+y:", res.Value.RatString(), "open:", res.Open)
	fmt.Println("  ", res.Ge)
}
