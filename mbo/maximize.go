package mbo

import "math/big"

// Optimum is the result of Maximize: a finite value, +infinity, or a
// finite value approached only in the limit. Open means the tightest
// surviving upper bound on the objective was strict, so the supremum is
// not attained by any point.
type Optimum struct {
	Value    *big.Rat
	Infinite bool
	Open     bool
}

// SetObjective records the linear objective `Σcoeffs*v + c` to maximize.
func (k *Kernel) SetObjective(coeffs map[int]*big.Rat, c *big.Rat) {
	k.objCoeffs = dropZero(coeffs)
	k.objConst = new(big.Rat).Set(c)
}

// elimStep records how one variable was eliminated during Maximize's
// internal pass, enough to recover its value once everything later than
// it in elimination order is known: either the exact identity an equality
// substitution produced, or the lower/upper bound lists a Fourier-Motzkin
// step classified it into.
type elimStep struct {
	id     int
	eqTerm *DefTerm
	lowers []bound
	uppers []bound
}

// Maximize eliminates every registered variable other than the objective
// (introduced internally via an equality `t = objective`) through the
// same Fourier-Motzkin machinery Project uses, then reads the tightest
// surviving upper bound on t as the optimum. Every eliminated variable is
// then back-substituted, in reverse elimination order, against the
// objective's optimal value and written back in place with SetValue —
// callers that want the witness model for the optimum read it straight
// off GetValue, the same place they would read it after Project.
func (k *Kernel) Maximize() Optimum {
	objVar := k.AddVar(k.evalCoeffs(k.objCoeffs, k.objConst), false)
	eqCoeffs := make(map[int]*big.Rat)
	for id, c := range k.objCoeffs {
		eqCoeffs[id] = new(big.Rat).Neg(c)
	}
	eqCoeffs[objVar] = big.NewRat(1, 1)
	eqRow := &Row{Coeffs: eqCoeffs, Const: new(big.Rat).Neg(k.objConst), CmpOp: Eq}

	rows := append(append([]*Row{}, k.rows...), eqRow)

	ids := make([]int, 0, len(k.vars))
	for id := range k.vars {
		if id == objVar {
			continue
		}
		ids = append(ids, id)
	}

	tmp := &Kernel{vars: k.vars, rows: rows, nextID: k.nextID}
	steps := make([]elimStep, 0, len(ids))
	for _, id := range ids {
		var eq *Row
		var eqIdx int
		for i, r := range tmp.rows {
			if r.CmpOp == Eq {
				if _, ok := r.Coeffs[id]; ok {
					eq = r
					eqIdx = i
					break
				}
			}
		}
		if eq != nil {
			newRows, def := tmp.substituteEquality(tmp.rows, eqIdx, id)
			tmp.rows = newRows
			steps = append(steps, elimStep{id: id, eqTerm: &def})
			continue
		}
		newRows, lowers, uppers := tmp.classifyAndResolve(tmp.rows, id)
		tmp.rows = newRows
		steps = append(steps, elimStep{id: id, lowers: lowers, uppers: uppers})
	}

	var best *big.Rat
	open := false
	for _, r := range tmp.rows {
		if r.CmpOp == Divides {
			continue
		}
		c, ok := r.Coeffs[objVar]
		if !ok || len(r.Coeffs) != 1 || c.Sign() <= 0 {
			continue
		}
		// r is `c*t + k <= 0` (or <), i.e. t <= -k/c.
		bound := new(big.Rat).Quo(new(big.Rat).Neg(r.Const), c)
		if best == nil || bound.Cmp(best) < 0 {
			best = bound
			open = r.CmpOp == Lt
		} else if bound.Cmp(best) == 0 && r.CmpOp == Lt {
			open = true
		}
	}

	if best != nil {
		k.backSubstitute(objVar, best, steps)
	}

	delete(k.vars, objVar)

	if best == nil {
		return Optimum{Infinite: true}
	}
	return Optimum{Value: best, Open: open}
}

// backSubstitute walks steps from the last-eliminated variable to the
// first, the reverse of the order Maximize's elimination loop produced
// them in. Each step only references variables eliminated later than it
// (or the objective itself), so processing in reverse order always has
// every value a step needs already resolved, the same way
// back-substitution closes out Gaussian elimination. An equality step's
// term is an exact identity, valid at any point satisfying the original
// constraint, so it is simply evaluated; a Fourier-Motzkin step instead
// re-derives its value from the tightest of its own bounds evaluated at
// the values resolved so far, since the bound that happened to be tight
// at the original model need not still be tight at the new optimum.
func (k *Kernel) backSubstitute(objVar int, objValue *big.Rat, steps []elimStep) {
	values := map[int]*big.Rat{objVar: objValue}
	for i := len(steps) - 1; i >= 0; i-- {
		s := steps[i]
		var val *big.Rat
		if s.eqTerm != nil {
			val = evalWithValues(s.eqTerm.Coeffs, s.eqTerm.Const, values)
			if s.eqTerm.DivBy != nil {
				val = new(big.Rat).Quo(val, new(big.Rat).SetInt(s.eqTerm.DivBy))
			}
		} else {
			val = tightestFeasibleValue(values, s.lowers, s.uppers, k.vars[s.id].Value)
		}
		values[s.id] = val
		k.SetValue(s.id, val)
	}
}

// tightestFeasibleValue picks the min of the upper bounds (or, absent any
// upper bound, the max of the lower bounds) evaluated at values; either
// choice is guaranteed feasible by the Fourier-Motzkin correctness
// argument that produced these bound lists in the first place. A
// variable with neither bound is unconstrained; its original model value
// is as good a witness as any other.
func tightestFeasibleValue(values map[int]*big.Rat, lowers, uppers []bound, fallback *big.Rat) *big.Rat {
	var best *big.Rat
	for _, u := range uppers {
		v := evalWithValues(u.coeffs, u.c, values)
		if best == nil || v.Cmp(best) < 0 {
			best = v
		}
	}
	if best != nil {
		return best
	}
	for _, l := range lowers {
		v := evalWithValues(l.coeffs, l.c, values)
		if best == nil || v.Cmp(best) > 0 {
			best = v
		}
	}
	if best != nil {
		return best
	}
	return new(big.Rat).Set(fallback)
}

func evalWithValues(coeffs map[int]*big.Rat, c *big.Rat, values map[int]*big.Rat) *big.Rat {
	sum := new(big.Rat).Set(c)
	for id, coeff := range coeffs {
		v, ok := values[id]
		if !ok {
			continue
		}
		sum.Add(sum, new(big.Rat).Mul(coeff, v))
	}
	return sum
}
