package mbp_test

import (
	"math/big"
	"sort"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/go-mbp/mbp-go/expr"
	"github.com/go-mbp/mbp-go/mbp"
	"github.com/go-mbp/mbp-go/model"
)

func freeVarNames(fs []expr.Expr) []string {
	seen := map[string]bool{}
	for _, f := range fs {
		for name := range f.FreeVars() {
			seen[name] = true
		}
	}
	names := make([]string, 0, len(seen))
	for n := range seen {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

func mustBeTrueUnder(t *testing.T, m *model.Model, fs []expr.Expr) {
	t.Helper()
	for _, f := range fs {
		v, ok := m.Eval(f, true)
		if !ok || !v.Bool {
			t.Fatalf("residue literal %s does not evaluate to true under the model", f)
		}
	}
}

// TestProjectBetweenTwoBounds eliminates x squeezed between two bounds:
// V={x}, F={x<=3, x>=1, y<=x}, M={x:2, y:0} -> residue should only
// mention y, and should still hold under the model.
func TestProjectBetweenTwoBounds(t *testing.T) {
	ctx := expr.NewContext()
	x := ctx.Const("x", expr.IntSort())
	y := ctx.Const("y", expr.IntSort())

	lits := []expr.Expr{
		expr.Le(x, ctx.IntVal(3)),
		expr.Ge(x, ctx.IntVal(1)),
		expr.Le(y, x),
	}
	m := model.New()
	m.Set("x", model.IntVal(2))
	m.Set("y", model.IntVal(0))

	p := mbp.NewProjector(mbp.DefaultConfig())
	residue, eliminated, err := p.Project(ctx, m, []expr.Expr{x}, lits)
	if err != nil {
		t.Fatalf("Project: %v", err)
	}
	if len(eliminated) != 0 {
		t.Fatalf("expected x to be fully eliminated, got remaining=%v", eliminated)
	}

	want := []string{"y"}
	if diff := cmp.Diff(want, freeVarNames(residue)); diff != "" {
		t.Fatalf("residue free vars mismatch (-want +got):\n%s", diff)
	}
	mustBeTrueUnder(t, m, residue)
}

// TestProjectDefsIntegerEquality exercises the "2x=y+1" worked example:
// eliminating x through a non-unit integer coefficient must reconstruct
// a definition that still agrees with the model.
func TestProjectDefsIntegerEquality(t *testing.T) {
	ctx := expr.NewContext()
	x := ctx.Const("x", expr.IntSort())
	y := ctx.Const("y", expr.IntSort())

	lits := []expr.Expr{
		expr.Eq(expr.Mul(ctx.IntVal(2), x), expr.Add(y, ctx.IntVal(1))),
	}
	m := model.New()
	m.Set("x", model.IntVal(3))
	m.Set("y", model.IntVal(5))

	p := mbp.NewProjector(mbp.DefaultConfig())
	_, eliminated, defs, err := p.ProjectDefs(ctx, m, []expr.Expr{x}, lits)
	if err != nil {
		t.Fatalf("ProjectDefs: %v", err)
	}
	if len(eliminated) != 0 {
		t.Fatalf("expected x eliminated, remaining=%v", eliminated)
	}
	if len(defs) != 1 {
		t.Fatalf("expected one definition, got %+v", defs)
	}
	got, ok := m.Eval(expr.Eq(defs[0].Var, defs[0].Term), true)
	if !ok || !got.Bool {
		t.Fatalf("definition %s := %s does not hold under the model", defs[0].Var, defs[0].Term)
	}
}

// TestProjectUnitEqualitySubstitution exercises a plain unit-coefficient
// equality: eliminating x via x=y+1 should leave a single literal over y
// with x substituted out and no divisibility side-constraint needed.
func TestProjectUnitEqualitySubstitution(t *testing.T) {
	ctx := expr.NewContext()
	x := ctx.Const("x", expr.IntSort())
	y := ctx.Const("y", expr.IntSort())

	lits := []expr.Expr{
		expr.Eq(x, expr.Add(y, ctx.IntVal(1))),
		expr.Le(x, ctx.IntVal(10)),
	}
	m := model.New()
	m.Set("x", model.IntVal(4))
	m.Set("y", model.IntVal(3))

	p := mbp.NewProjector(mbp.DefaultConfig())
	residue, eliminated, err := p.Project(ctx, m, []expr.Expr{x}, lits)
	if err != nil {
		t.Fatalf("Project: %v", err)
	}
	if len(eliminated) != 0 {
		t.Fatalf("expected x eliminated, remaining=%v", eliminated)
	}
	if len(residue) != 1 {
		t.Fatalf("expected exactly one surviving literal, got %v", residue)
	}
	if _, ok := residue[0].FreeVars()["x"]; ok {
		t.Fatalf("expected x substituted out of residue, got %s", residue[0])
	}
	mustBeTrueUnder(t, m, residue)
}

// TestPurityPinsImpureAbstraction checks that a variable referenced only
// inside a nonlinear (impure) subterm is not eliminated.
func TestPurityPinsImpureAbstraction(t *testing.T) {
	ctx := expr.NewContext()
	x := ctx.Const("x", expr.IntSort())
	y := ctx.Const("y", expr.IntSort())

	lits := []expr.Expr{
		expr.Le(expr.Mul(x, y), ctx.IntVal(10)),
	}
	m := model.New()
	m.Set("x", model.IntVal(2))
	m.Set("y", model.IntVal(3))

	p := mbp.NewProjector(mbp.DefaultConfig())
	_, eliminated, err := p.Project(ctx, m, []expr.Expr{x}, lits)
	if err != nil {
		t.Fatalf("Project: %v", err)
	}
	if len(eliminated) != 1 || !eliminated[0].Equal(x) {
		t.Fatalf("expected x to stay pinned by purity analysis, got remaining=%v", eliminated)
	}
}

// TestMaximize maximizes t=x+y over a bounded box end to end through the
// mbp package.
func TestMaximize(t *testing.T) {
	ctx := expr.NewContext()
	x := ctx.Const("x", expr.IntSort())
	y := ctx.Const("y", expr.IntSort())

	lits := []expr.Expr{
		expr.Le(x, ctx.IntVal(3)),
		expr.Le(y, ctx.IntVal(4)),
		expr.Ge(x, ctx.IntVal(0)),
		expr.Ge(y, ctx.IntVal(0)),
	}
	m := model.New()
	m.Set("x", model.IntVal(0))
	m.Set("y", model.IntVal(0))

	p := mbp.NewProjector(mbp.DefaultConfig())
	res, err := p.Maximize(ctx, m, lits, expr.Add(x, y))
	if err != nil {
		t.Fatalf("Maximize: %v", err)
	}
	if res.Infinite {
		t.Fatal("expected a finite optimum")
	}
	if res.Value.Cmp(big.NewRat(7, 1)) != 0 {
		t.Fatalf("expected value 7, got %v", res.Value)
	}
	if res.Open {
		t.Fatal("expected the optimum to be attained")
	}
	if !res.Gt.IsGt() {
		t.Fatalf("expected a strict Gt bound for an attained optimum, got %s", res.Gt)
	}

	xv, ok := m.Eval(x, false)
	if !ok {
		t.Fatal("expected x to still have a value after Maximize")
	}
	yv, ok := m.Eval(y, false)
	if !ok {
		t.Fatal("expected y to still have a value after Maximize")
	}
	sum := new(big.Rat).Add(xv.Num, yv.Num)
	if sum.Cmp(big.NewRat(7, 1)) != 0 {
		t.Fatalf("expected the written-back x, y to sum to the optimum 7, got x=%v y=%v", xv.Num, yv.Num)
	}
}

// TestMaximizeWriteBackRespectsAsymmetricBounds checks the back-substitution
// write-back against a box where the two variables have different upper
// bounds, so an eliminated variable's original-model-tight bound is no
// longer the one that is tight at the optimum (x<=3, y<=4 maximizing x+y:
// the model starts at x=y=0, where x's lower bound x>=0 is tight, but at the
// optimum x must sit at its upper bound 3, not 0).
func TestMaximizeWriteBackRespectsAsymmetricBounds(t *testing.T) {
	ctx := expr.NewContext()
	x := ctx.Const("x", expr.IntSort())
	y := ctx.Const("y", expr.IntSort())

	lits := []expr.Expr{
		expr.Le(x, ctx.IntVal(3)),
		expr.Le(y, ctx.IntVal(4)),
		expr.Ge(x, ctx.IntVal(0)),
		expr.Ge(y, ctx.IntVal(0)),
	}
	m := model.New()
	m.Set("x", model.IntVal(0))
	m.Set("y", model.IntVal(0))

	p := mbp.NewProjector(mbp.DefaultConfig())
	if _, err := p.Maximize(ctx, m, lits, expr.Add(x, y)); err != nil {
		t.Fatalf("Maximize: %v", err)
	}

	xv, _ := m.Eval(x, false)
	yv, _ := m.Eval(y, false)
	if xv.Num.Cmp(big.NewRat(3, 1)) > 0 || xv.Num.Cmp(big.NewRat(0, 1)) < 0 {
		t.Fatalf("x out of bounds after write-back: %v", xv.Num)
	}
	if yv.Num.Cmp(big.NewRat(4, 1)) > 0 || yv.Num.Cmp(big.NewRat(0, 1)) < 0 {
		t.Fatalf("y out of bounds after write-back: %v", yv.Num)
	}
	sum := new(big.Rat).Add(xv.Num, yv.Num)
	if sum.Cmp(big.NewRat(7, 1)) != 0 {
		t.Fatalf("expected x+y = 7 at the optimum, got x=%v y=%v", xv.Num, yv.Num)
	}
}

// TestMaximizeOpenSupremum checks that an open (unattained) supremum
// reifies Gt as the non-strict bound, not a strict one.
func TestMaximizeOpenSupremum(t *testing.T) {
	ctx := expr.NewContext()
	x := ctx.Const("x", expr.IntSort())

	lits := []expr.Expr{
		expr.Lt(x, ctx.IntVal(3)),
	}
	m := model.New()
	m.Set("x", model.IntVal(0))

	p := mbp.NewProjector(mbp.DefaultConfig())
	res, err := p.Maximize(ctx, m, lits, x)
	if err != nil {
		t.Fatalf("Maximize: %v", err)
	}
	if res.Infinite {
		t.Fatal("expected a finite optimum")
	}
	if !res.Open {
		t.Fatal("expected an open supremum")
	}
	if !res.Gt.IsGe() {
		t.Fatalf("expected a non-strict Gt bound for an open supremum, got %s", res.Gt)
	}
}

// TestProjectNoArithVarsShortCircuits checks that an empty (or otherwise
// all-non-arithmetic) elimination set returns lits untouched without ever
// attempting to linearize them, even when a literal would fail to
// linearize if it were attempted (here, real division by a model-zero
// denominator).
func TestProjectNoArithVarsShortCircuits(t *testing.T) {
	ctx := expr.NewContext()
	x := ctx.Const("x", expr.RealSort())
	y := ctx.Const("y", expr.RealSort())

	lits := []expr.Expr{expr.Le(expr.Div(x, y), ctx.RealVal(big.NewRat(0, 1)))}
	m := model.New()
	m.Set("x", model.Num(big.NewRat(1, 1)))
	m.Set("y", model.Num(big.NewRat(0, 1)))

	p := mbp.NewProjector(mbp.DefaultConfig())
	residue, remaining, err := p.Project(ctx, m, nil, lits)
	if err != nil {
		t.Fatalf("expected the vacuous elimination set to short-circuit, got error: %v", err)
	}
	if len(remaining) != 0 {
		t.Fatalf("expected no remaining vars, got %v", remaining)
	}
	if len(residue) != 1 || !residue[0].Equal(lits[0]) {
		t.Fatalf("expected lits to come back unchanged, got %v", residue)
	}
}

// TestApplyProjectionRoundTrip exercises the ApplyProjection verification
// path on a case where it should simply succeed.
func TestApplyProjectionRoundTrip(t *testing.T) {
	ctx := expr.NewContext()
	x := ctx.Const("x", expr.IntSort())
	y := ctx.Const("y", expr.IntSort())

	lits := []expr.Expr{
		expr.Le(x, ctx.IntVal(3)),
		expr.Ge(x, ctx.IntVal(1)),
		expr.Le(y, x),
	}
	m := model.New()
	m.Set("x", model.IntVal(2))
	m.Set("y", model.IntVal(0))

	cfg := mbp.DefaultConfig()
	cfg.ApplyProjection = true
	p := mbp.NewProjector(cfg)
	residue, _, _, err := p.ProjectDefs(ctx, m, []expr.Expr{x}, lits)
	if err != nil {
		t.Fatalf("ProjectDefs with ApplyProjection: %v", err)
	}
	mustBeTrueUnder(t, m, residue)
}
