package mbo

import "math/big"

// Project eliminates the variables named in ids from the kernel's row set
// and stores the survivors for GetLiveRows. When computeDef is true it
// also returns, for each id (in the order elimination actually happened),
// the reconstructed definition.
//
// Two elimination strategies are used per variable, in order:
//
//  1. Equality substitution (Gaussian-style): if some surviving row is an
//     equality mentioning the variable, use it to eliminate the variable
//     exactly from every other row by cancellation. When the variable is
//     integer-sorted and the equality's coefficient for it is not ±1, a
//     Divides row is emitted alongside the substitution because the
//     rational solution need not be an integer.
//  2. Fourier-Motzkin resolution: classify the remaining rows mentioning
//     the variable into lower/upper bounds and emit, for each
//     lower/upper pair, the transitive resolvent. Purely numeral
//     (variable-free) resolvents that are tautologies are dropped.
//
// The definition for a variable eliminated by Fourier-Motzkin is the
// bound term that is tight at the model (its value equals the variable's
// current model value); if no bound is tight, the model's own value is
// used as a trivially valid fallback.
func (k *Kernel) Project(ids []int, computeDef bool) ([]Def, error) {
	rows := make([]*Row, len(k.rows))
	copy(rows, k.rows)

	var defs []Def
	for _, id := range ids {
		var eq *Row
		var eqIdx int
		for i, r := range rows {
			if r.CmpOp == Eq {
				if _, ok := r.Coeffs[id]; ok {
					eq = r
					eqIdx = i
					break
				}
			}
		}

		if eq != nil {
			newRows, def := k.substituteEquality(rows, eqIdx, id)
			rows = newRows
			if computeDef {
				defs = append(defs, Def{Var: id, Term: def})
			}
			continue
		}

		newRows, def := k.resolveInequalities(rows, id)
		rows = newRows
		if computeDef {
			defs = append(defs, Def{Var: id, Term: def})
		}
	}

	k.liveRows = rows
	return defs, nil
}

// substituteEquality eliminates id using rows[eqIdx] (an equality
// mentioning id) by cancelling id out of every other row. Given
// `a*id + T = 0` the exact rational solution is `id = -T/a`; when id is
// integer-sorted and a is not ±1 that solution need not be an integer, so
// a Divides row asserting `|a| divides T` is also emitted and the
// definition is left as the undivided numerator plus a DivBy modulus for
// the mbp reifier to render as `T' div |a|`.
func (k *Kernel) substituteEquality(rows []*Row, eqIdx int, id int) ([]*Row, DefTerm) {
	eq := rows[eqIdx]
	a := eq.Coeffs[id]

	out := make([]*Row, 0, len(rows))
	for i, r := range rows {
		if i == eqIdx {
			continue
		}
		c, ok := r.Coeffs[id]
		if !ok {
			out = append(out, r)
			continue
		}
		factor := new(big.Rat).Quo(c, a)
		out = append(out, combine(r, eq, factor, id))
	}

	// T = Σ_{v != id} eq.Coeffs[v]*v + eq.Const (the "other side" of a*id + T = 0).
	tCoeffs := make(map[int]*big.Rat)
	for vid, c := range eq.Coeffs {
		if vid == id {
			continue
		}
		tCoeffs[vid] = new(big.Rat).Set(c)
	}
	tConst := new(big.Rat).Set(eq.Const)

	one := big.NewRat(1, 1)
	negOne := big.NewRat(-1, 1)
	unit := a.Cmp(one) == 0 || a.Cmp(negOne) == 0

	variable := k.vars[id]
	if unit || !variable.IsInt || !a.IsInt() {
		invNegA := new(big.Rat).Neg(new(big.Rat).Inv(a))
		return out, DefTerm{Coeffs: scaleCoeffs(tCoeffs, invNegA), Const: new(big.Rat).Mul(tConst, invNegA)}
	}

	// id = -T/a = (-sign(a)*T) / |a|.
	s := negOne
	if a.Sign() < 0 {
		s = one
	}
	m := new(big.Int).Abs(a.Num())
	out = append(out, &Row{Coeffs: dropZero(tCoeffs), Const: new(big.Rat).Set(tConst), CmpOp: Divides, Modulus: m})
	return out, DefTerm{
		Coeffs: scaleCoeffs(tCoeffs, s),
		Const:  new(big.Rat).Mul(tConst, s),
		DivBy:  m,
	}
}

func scaleCoeffs(m map[int]*big.Rat, factor *big.Rat) map[int]*big.Rat {
	out := make(map[int]*big.Rat, len(m))
	for k, v := range m {
		out[k] = new(big.Rat).Mul(v, factor)
	}
	return out
}

// combine computes row - factor*eq, which cancels id since
// factor == row.Coeffs[id]/eq.Coeffs[id].
func combine(row, eq *Row, factor *big.Rat, id int) *Row {
	coeffs := cloneCoeffs(row.Coeffs)
	for vid, c := range eq.Coeffs {
		scaled := new(big.Rat).Mul(factor, c)
		if cur, ok := coeffs[vid]; ok {
			coeffs[vid] = new(big.Rat).Sub(cur, scaled)
		} else {
			coeffs[vid] = new(big.Rat).Neg(scaled)
		}
	}
	delete(coeffs, id)
	coeffs = dropZero(coeffs)
	c := new(big.Rat).Sub(row.Const, new(big.Rat).Mul(factor, eq.Const))
	return &Row{Coeffs: coeffs, Const: c, CmpOp: row.CmpOp, Modulus: row.Modulus}
}

// bound is an isolated one-sided view of a row after removing id: the
// row asserted `id op value` (or the flipped direction for a negative
// coefficient), where value = term(otherCoeffs) + constTerm.
type bound struct {
	coeffs map[int]*big.Rat
	c      *big.Rat
	strict bool
}

func (b bound) value(k *Kernel) *big.Rat { return k.evalCoeffs(b.coeffs, b.c) }

func isolate(row *Row, id int) bound {
	coeff := row.Coeffs[id]
	negInvCoeff := new(big.Rat).Neg(new(big.Rat).Inv(coeff))
	rest := make(map[int]*big.Rat)
	for vid, c := range row.Coeffs {
		if vid == id {
			continue
		}
		rest[vid] = new(big.Rat).Mul(c, negInvCoeff)
	}
	constTerm := new(big.Rat).Mul(row.Const, negInvCoeff)
	return bound{coeffs: rest, c: constTerm, strict: row.CmpOp == Lt}
}

// resolveInequalities eliminates id by pairing every lower bound with
// every upper bound and keeping the transitive resolvent, per the
// function doc on Project.
func (k *Kernel) resolveInequalities(rows []*Row, id int) ([]*Row, DefTerm) {
	others, lowers, uppers := k.classifyAndResolve(rows, id)
	def := k.pickDefinition(id, lowers, uppers)
	return others, def
}

// classifyAndResolve does the actual Fourier-Motzkin work behind
// resolveInequalities: split rows mentioning id into lower/upper bounds,
// emit the transitive resolvent for every lower/upper pair, and hand back
// the bound lists too (Maximize's back-substitution needs the raw bounds,
// not just the single definition Project settles on).
func (k *Kernel) classifyAndResolve(rows []*Row, id int) ([]*Row, []bound, []bound) {
	var lowers, uppers []bound
	var others []*Row
	for _, r := range rows {
		c, ok := r.Coeffs[id]
		if !ok {
			others = append(others, r)
			continue
		}
		b := isolate(r, id)
		if c.Sign() > 0 {
			uppers = append(uppers, b)
		} else {
			lowers = append(lowers, b)
		}
	}

	for _, l := range lowers {
		for _, u := range uppers {
			coeffs := make(map[int]*big.Rat)
			for vid, c := range l.coeffs {
				coeffs[vid] = new(big.Rat).Set(c)
			}
			for vid, c := range u.coeffs {
				if cur, ok := coeffs[vid]; ok {
					coeffs[vid] = new(big.Rat).Sub(cur, c)
				} else {
					coeffs[vid] = new(big.Rat).Neg(c)
				}
			}
			coeffs = dropZero(coeffs)
			constTerm := new(big.Rat).Sub(l.c, u.c)
			op := Le
			if l.strict || u.strict {
				op = Lt
			}
			if len(coeffs) == 0 {
				// tautology check: l - u <= 0 (or <) with no variables left.
				sign := constTerm.Sign()
				if sign < 0 || (sign == 0 && op == Le) {
					continue // drop: trivially true, contributes nothing
				}
			}
			others = append(others, &Row{Coeffs: coeffs, Const: constTerm, CmpOp: op})
		}
	}

	return others, lowers, uppers
}

// pickDefinition chooses the tightest bound that is tight at the model
// (its value equals the variable's current model value) as the witness
// definition; absent a tight bound it falls back to the model's own
// value, which is always a sound (if unenlightening) definition.
func (k *Kernel) pickDefinition(id int, lowers, uppers []bound) DefTerm {
	v := k.vars[id]
	mv := v.Value
	for _, l := range lowers {
		if l.value(k).Cmp(mv) == 0 {
			return DefTerm{Coeffs: l.coeffs, Const: l.c}
		}
	}
	for _, u := range uppers {
		if u.value(k).Cmp(mv) == 0 {
			return DefTerm{Coeffs: u.coeffs, Const: u.c}
		}
	}
	return DefTerm{Coeffs: map[int]*big.Rat{}, Const: new(big.Rat).Set(mv)}
}
