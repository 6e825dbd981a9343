package mbp

import (
	"math/big"

	"github.com/go-mbp/mbp-go/expr"
	"github.com/go-mbp/mbp-go/mbo"
	"github.com/go-mbp/mbp-go/model"
)

// Config toggles two policies: how conservative purity analysis is, and
// whether reconstructed definitions get substituted back into the
// residue. Live is the cooperative-cancellation hook.
type Config struct {
	// CheckPurified is the conservative default (true): in addition to
	// unconditionally pinning the variables inside an impure abstracted
	// subterm, every other variable in the same top-level formula is
	// also pinned once that formula is known to contain any impure
	// abstraction. Turning it off pins only the variables strictly
	// inside the abstraction itself, allowing unrelated variables in
	// the same literal to still be eliminated. See DESIGN.md for the
	// reasoning behind this default.
	CheckPurified bool
	// ApplyProjection substitutes definitions back into the residue and
	// verifies the result still evaluates to true under the model.
	ApplyProjection bool
	// Live is polled at the top of linearization and at the start of
	// each variable's elimination; when it returns false the call
	// aborts with ErrCancelled. Nil means never cancel.
	Live func() bool
}

// DefaultConfig is the conservative default.
func DefaultConfig() Config {
	return Config{CheckPurified: true}
}

// call holds all per-call state: the MBO kernel, the tids map, the
// pinned-expressions buffer, and the expression-index array. All of it is
// created fresh on entry to projection and discarded on exit.
type call struct {
	cfg    Config
	ctx    *expr.Context
	m      *model.Model
	kernel *mbo.Kernel

	tids       map[expr.Expr]int
	index2expr map[int]expr.Expr

	impureSubterms map[expr.Expr]bool
	impureHost     map[string]expr.Expr
}

func newCall(cfg Config, ctx *expr.Context, m *model.Model) *call {
	return &call{
		cfg:            cfg,
		ctx:            ctx,
		m:              m,
		kernel:         mbo.NewKernel(),
		tids:           make(map[expr.Expr]int),
		index2expr:     make(map[int]expr.Expr),
		impureSubterms: make(map[expr.Expr]bool),
		impureHost:     make(map[string]expr.Expr),
	}
}

func (c *call) cancelled() bool { return c.cfg.Live != nil && !c.cfg.Live() }

// mboVar returns the MBO variable for e, looking it up in tids or
// allocating a fresh one (initialized to e's current model value) if e
// hasn't been seen yet.
func (c *call) mboVar(e expr.Expr) (int, error) {
	if id, ok := c.tids[e]; ok {
		return id, nil
	}
	v, ok := c.m.Eval(e, true)
	if !ok || v.IsBool {
		return 0, ErrEvalFailed
	}
	id := c.kernel.AddVar(v.Num, e.IsInt())
	c.tids[e] = id
	c.index2expr[id] = e
	return id, nil
}

func (c *call) markImpure(e expr.Expr) {
	c.impureSubterms[e] = true
}

// writeBackModel copies the kernel's current value for every
// uninterpreted constant registered in tids back into the model. Only
// Maximize calls this: Project/ProjectDefs leave m untouched, since their
// residue and definitions already describe how to reconstruct a model
// rather than handing back a ready-made one. Non-uninterpreted entries in
// tids (abstracted nonlinear subterms, mod/div pseudo-variables) are
// skipped, matching the original's is_uninterp_const guard.
func (c *call) writeBackModel() {
	for e, id := range c.tids {
		if !e.IsUninterpreted() {
			continue
		}
		c.m.Set(e.Name(), model.Num(c.kernel.GetValue(id)))
	}
}

// extractAccumulator turns an accumulator into an MBO coefficient vector,
// allocating MBO variables for any entry not yet in tids.
func (c *call) extractAccumulator(acc *accumulator) (map[int]*big.Rat, *big.Rat, error) {
	coeffs := make(map[int]*big.Rat)
	for _, e := range acc.entries() {
		id, err := c.mboVar(e.Expr)
		if err != nil {
			return nil, nil, err
		}
		coeffs[id] = e.Coeff
	}
	return coeffs, acc.c0, nil
}
