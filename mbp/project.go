package mbp

import (
	"github.com/go-mbp/mbp-go/expr"
	"github.com/go-mbp/mbp-go/model"
)

// Projector runs model-based projection calls sharing one Config. It
// holds no per-call state itself — all of that lives in the call created
// fresh inside run.
type Projector struct {
	Cfg Config
}

func NewProjector(cfg Config) *Projector { return &Projector{Cfg: cfg} }

// Project1 eliminates a single variable v from lits under m. The returned
// bool reports whether v was actually eliminated (it always is, unless v is
// not arithmetic-sorted or purity analysis pinned it).
func (p *Projector) Project1(ctx *expr.Context, m *model.Model, v expr.Expr, lits []expr.Expr) ([]expr.Expr, bool, error) {
	residue, remaining, _, err := p.run(ctx, m, []expr.Expr{v}, lits, false)
	if err != nil {
		return nil, false, err
	}
	return residue, len(remaining) == 0, nil
}

// Project eliminates every variable in vars, returning the residue and
// the subset of vars that could not be eliminated (pinned by purity
// analysis, or not arithmetic-sorted). A variable absent from lits is
// eliminated trivially and is not in the returned subset.
func (p *Projector) Project(ctx *expr.Context, m *model.Model, vars, lits []expr.Expr) ([]expr.Expr, []expr.Expr, error) {
	residue, remaining, _, err := p.run(ctx, m, vars, lits, false)
	return residue, remaining, err
}

// ProjectDefs is Project plus reconstructed definitions for every
// variable that was eliminated.
func (p *Projector) ProjectDefs(ctx *expr.Context, m *model.Model, vars, lits []expr.Expr) ([]expr.Expr, []expr.Expr, []Def, error) {
	return p.run(ctx, m, vars, lits, true)
}

// run is the shared driver behind Project1/Project/ProjectDefs: linearize
// every input formula (purifying each one as soon as it is fully
// expanded), then hand the eliminable variables to the MBO kernel and
// reify whatever survives.
func (p *Projector) run(ctx *expr.Context, m *model.Model, vars, lits []expr.Expr, computeDefs bool) ([]expr.Expr, []expr.Expr, []Def, error) {
	hasArith := false
	for _, v := range vars {
		hasArith = hasArith || v.Sort().IsArith()
	}
	if !hasArith {
		return lits, vars, nil, nil
	}

	c := newCall(p.Cfg, ctx, m)

	var residue []expr.Expr
	for _, f := range lits {
		if c.cancelled() {
			return nil, nil, nil, ErrCancelled
		}
		queue := []litTask{{f, false}}
		for len(queue) > 0 {
			t := queue[0]
			queue = queue[1:]
			handled, err := c.processLiteral(t, &queue)
			if err != nil {
				return nil, nil, nil, err
			}
			if !handled {
				residue = append(residue, reconstructLit(t))
			}
		}
		c.purifyFormula(f)
	}

	var ids []int
	var eliminated []expr.Expr
	for _, v := range vars {
		if c.cancelled() {
			return nil, nil, nil, ErrCancelled
		}
		if !c.eliminable(v) {
			continue
		}
		// Register v even if it never occurred in lits: an unreferenced
		// variable is trivially eliminable (no row mentions it, so it
		// drops out of the elimination set with no residue), and it must
		// still count as eliminated rather than left in vars_io.
		id, err := c.mboVar(v)
		if err != nil {
			return nil, nil, nil, err
		}
		ids = append(ids, id)
		eliminated = append(eliminated, v)
	}

	mdefs, err := c.kernel.Project(ids, computeDefs)
	if err != nil {
		return nil, nil, nil, err
	}
	residue = append(residue, c.reifyRows(c.kernel.GetLiveRows())...)

	var defs []Def
	if computeDefs {
		defs = c.reifyDefs(mdefs)
	}

	remaining := remainingVars(vars, eliminated)

	if p.Cfg.ApplyProjection && computeDefs {
		if err := verifySubstitution(m, residue, defs); err != nil {
			return nil, nil, nil, err
		}
		residue = substituteDefs(residue, defs)
	}

	return residue, remaining, defs, nil
}

func remainingVars(vars, eliminated []expr.Expr) []expr.Expr {
	out := make([]expr.Expr, 0, len(vars))
	for _, v := range vars {
		found := false
		for _, e := range eliminated {
			if e.Equal(v) {
				found = true
				break
			}
		}
		if !found {
			out = append(out, v)
		}
	}
	return out
}

// verifySubstitution checks that every reconstructed definition still
// agrees with the model and that every surviving residue literal still
// evaluates true.
func verifySubstitution(m *model.Model, residue []expr.Expr, defs []Def) error {
	for _, d := range defs {
		dv, ok1 := m.Eval(d.Var, true)
		tv, ok2 := m.Eval(d.Term, true)
		if !ok1 || !ok2 || dv.Num.Cmp(tv.Num) != 0 {
			return ErrPostSubstitutionFalsified
		}
	}
	for _, f := range residue {
		v, ok := m.Eval(f, true)
		if !ok || !v.Bool {
			return ErrPostSubstitutionFalsified
		}
	}
	return nil
}

func substituteDefs(residue []expr.Expr, defs []Def) []expr.Expr {
	out := make([]expr.Expr, len(residue))
	for i, f := range residue {
		g := f
		for _, d := range defs {
			g = g.Substitute(d.Var, d.Term)
		}
		out[i] = g
	}
	return out
}
