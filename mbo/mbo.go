// Package mbo implements a model-based optimization kernel: a dense
// matrix of linear rational/integer constraints supporting model-guided
// variable elimination and single-objective maximization.
//
// It plays the role the teacher's z3/solver.go plays for Z3_solver — an
// opaque handle wrapping mutable state, with Assert/Check/Model renamed to
// AddConstraint/Project/GetLiveRows — except where the teacher links
// against Z3 to do the actual work, this package does the row elimination
// itself (Fourier-Motzkin / Loos-Weispfenning style), since there is no
// cgo dependency here to hand the job to.
package mbo

import "math/big"

// Op is a row's comparator.
type Op int

const (
	Le Op = iota
	Lt
	Eq
	Divides
)

func (o Op) String() string {
	switch o {
	case Le:
		return "<="
	case Lt:
		return "<"
	case Eq:
		return "="
	default:
		return "divides"
	}
}

// Row is `Σ (coeffs[v] * v) + Const ⟨CmpOp⟩ 0`. A Divides row additionally
// carries Modulus, asserting that Modulus divides the affine term.
type Row struct {
	Coeffs  map[int]*big.Rat
	Const   *big.Rat
	CmpOp   Op
	Modulus *big.Int
}

func cloneCoeffs(m map[int]*big.Rat) map[int]*big.Rat {
	out := make(map[int]*big.Rat, len(m))
	for k, v := range m {
		out[k] = new(big.Rat).Set(v)
	}
	return out
}

// Var is an MBO variable: a dense index plus its current model value and
// integrality flag.
type Var struct {
	ID     int
	Value  *big.Rat
	IsInt  bool
}

// DefTerm is the definition MBO hands back for an eliminated variable: an
// affine combination of surviving variables, optionally divided by a
// positive integer modulus. This is a deliberate flattening of the richer
// algebraic-tree shape a definition could in principle take — this
// kernel's elimination routines (equality substitution, Fourier-Motzkin
// resolution) never produce anything deeper than affine-combination +
// optional whole-term division, so the tree never needs nesting beyond
// that shape; see DESIGN.md.
type DefTerm struct {
	Coeffs  map[int]*big.Rat
	Const   *big.Rat
	DivBy   *big.Int // nil unless the whole affine term must be divided (integer equality elimination with non-unit coefficient)
}

// Def pairs an eliminated variable with its reconstructed definition.
type Def struct {
	Var  int
	Term DefTerm
}

// Kernel is one projection call's MBO instance. All of it is per-call
// state — callers should make a fresh Kernel per mbp.Project call.
type Kernel struct {
	vars      map[int]*Var
	rows      []*Row
	nextID    int
	objCoeffs map[int]*big.Rat
	objConst  *big.Rat
	liveRows  []*Row
}

// NewKernel creates an empty kernel.
func NewKernel() *Kernel {
	return &Kernel{
		vars: make(map[int]*Var),
	}
}

// AddVar registers a fresh MBO variable initialized to value.
func (k *Kernel) AddVar(value *big.Rat, isInt bool) int {
	id := k.nextID
	k.nextID++
	k.vars[id] = &Var{ID: id, Value: new(big.Rat).Set(value), IsInt: isInt}
	return id
}

// GetValue returns a variable's current value.
func (k *Kernel) GetValue(id int) *big.Rat {
	if v, ok := k.vars[id]; ok {
		return v.Value
	}
	return new(big.Rat)
}

// SetValue overwrites a variable's current value (used internally after
// Maximize's write-back, and available to callers who want to re-seed a
// variable's model value between calls).
func (k *Kernel) SetValue(id int, v *big.Rat) {
	if vv, ok := k.vars[id]; ok {
		vv.Value = new(big.Rat).Set(v)
	}
}

func (k *Kernel) evalCoeffs(coeffs map[int]*big.Rat, c *big.Rat) *big.Rat {
	sum := new(big.Rat).Set(c)
	for id, coeff := range coeffs {
		v, ok := k.vars[id]
		if !ok {
			continue
		}
		term := new(big.Rat).Mul(coeff, v.Value)
		sum.Add(sum, term)
	}
	return sum
}

// AddConstraint submits `Σ coeffs*v + c ⟨op⟩ 0`. Coefficients of zero are
// dropped; the caller is trusted to have verified the model satisfies the
// constraint.
func (k *Kernel) AddConstraint(coeffs map[int]*big.Rat, c *big.Rat, op Op) {
	row := &Row{Coeffs: dropZero(coeffs), Const: new(big.Rat).Set(c), CmpOp: op}
	k.rows = append(k.rows, row)
}

func dropZero(coeffs map[int]*big.Rat) map[int]*big.Rat {
	out := make(map[int]*big.Rat, len(coeffs))
	for id, c := range coeffs {
		if c.Sign() != 0 {
			out[id] = new(big.Rat).Set(c)
		}
	}
	return out
}

// AddMod registers a fresh variable equal to (Σcoeffs+c) mod m and returns
// its id. The variable is treated like any other opaque abstracted term:
// elimination never revisits the mod relation, it only sees the variable's
// current value; the caller (mbp's linearizer) is the one that remembers
// which source expression the id stands for, for later reification.
func (k *Kernel) AddMod(coeffs map[int]*big.Rat, c *big.Rat, m *big.Int) int {
	val := k.evalCoeffs(coeffs, c)
	modVal := euclidMod(val, m)
	return k.AddVar(modVal, true)
}

// AddDiv registers a fresh variable equal to floor((Σcoeffs+c)/m), the
// div-flavored counterpart to AddMod.
func (k *Kernel) AddDiv(coeffs map[int]*big.Rat, c *big.Rat, m *big.Int) int {
	val := k.evalCoeffs(coeffs, c)
	divVal := euclidDiv(val, m)
	return k.AddVar(divVal, true)
}

// AddDivides asserts `m | (Σcoeffs + c)` directly. Exposed for callers that
// want to assert a divisibility constraint up front; the equality
// elimination path in Project builds its own Divides row locally so that it
// lands in the same elimination-local row snapshot rather than the
// kernel's permanent row set.
func (k *Kernel) AddDivides(coeffs map[int]*big.Rat, c *big.Rat, m *big.Int) {
	row := &Row{Coeffs: dropZero(coeffs), Const: new(big.Rat).Set(c), CmpOp: Divides, Modulus: new(big.Int).Set(m)}
	k.rows = append(k.rows, row)
}

func euclidMod(v *big.Rat, m *big.Int) *big.Rat {
	if !v.IsInt() {
		return new(big.Rat)
	}
	r := new(big.Int).Mod(v.Num(), m)
	return new(big.Rat).SetInt(r)
}

func euclidDiv(v *big.Rat, m *big.Int) *big.Rat {
	if !v.IsInt() {
		return new(big.Rat)
	}
	q := new(big.Int)
	mm := new(big.Int)
	q.DivMod(v.Num(), m, mm)
	return new(big.Rat).SetInt(q)
}

// GetLiveRows returns the surviving real constraints after Project,
// excluding pseudo-rows.
func (k *Kernel) GetLiveRows() []*Row {
	return k.liveRows
}
