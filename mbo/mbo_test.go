package mbo_test

import (
	"math/big"
	"testing"

	"github.com/go-mbp/mbp-go/mbo"
)

// TestProjectEliminatesBetweenTwoBounds eliminates x squeezed between two
// bounds (x<=3, x>=1, y<=x) at M={x:2, y:0}; the result should collapse to
// a single surviving row equivalent to y<=3.
func TestProjectEliminatesBetweenTwoBounds(t *testing.T) {
	k := mbo.NewKernel()
	x := k.AddVar(big.NewRat(2, 1), true)
	y := k.AddVar(big.NewRat(0, 1), true)

	k.AddConstraint(map[int]*big.Rat{x: big.NewRat(1, 1)}, big.NewRat(-3, 1), mbo.Le)  // x - 3 <= 0
	k.AddConstraint(map[int]*big.Rat{x: big.NewRat(-1, 1)}, big.NewRat(1, 1), mbo.Le)  // -x + 1 <= 0
	k.AddConstraint(map[int]*big.Rat{y: big.NewRat(1, 1), x: big.NewRat(-1, 1)}, big.NewRat(0, 1), mbo.Le) // y - x <= 0

	defs, err := k.Project([]int{x}, true)
	if err != nil {
		t.Fatalf("Project: %v", err)
	}
	if len(defs) != 1 || defs[0].Var != x {
		t.Fatalf("expected one definition for x, got %+v", defs)
	}

	rows := k.GetLiveRows()
	if len(rows) != 1 {
		t.Fatalf("expected 1 surviving row, got %d: %+v", len(rows), rows)
	}
	r := rows[0]
	if r.CmpOp != mbo.Le || len(r.Coeffs) != 1 || r.Coeffs[y].Cmp(big.NewRat(1, 1)) != 0 || r.Const.Cmp(big.NewRat(-3, 1)) != 0 {
		t.Fatalf("expected y - 3 <= 0, got coeffs=%v const=%v op=%v", r.Coeffs, r.Const, r.CmpOp)
	}
}

// TestProjectIntegerEqualityNonUnitCoefficient checks that eliminating an
// integer variable through a non-unit coefficient equality (2x=y+1) leaves
// behind a divisibility side-constraint.
func TestProjectIntegerEqualityNonUnitCoefficient(t *testing.T) {
	k := mbo.NewKernel()
	x := k.AddVar(big.NewRat(3, 1), true)
	y := k.AddVar(big.NewRat(5, 1), true) // 2*3 = 5+1

	// 2x - y - 1 = 0
	k.AddConstraint(map[int]*big.Rat{x: big.NewRat(2, 1), y: big.NewRat(-1, 1)}, big.NewRat(-1, 1), mbo.Eq)

	defs, err := k.Project([]int{x}, true)
	if err != nil {
		t.Fatalf("Project: %v", err)
	}
	if len(defs) != 1 {
		t.Fatalf("expected one definition, got %+v", defs)
	}
	if defs[0].Term.DivBy == nil || defs[0].Term.DivBy.Cmp(big.NewInt(2)) != 0 {
		t.Fatalf("expected DivBy=2, got %+v", defs[0].Term)
	}

	rows := k.GetLiveRows()
	found := false
	for _, r := range rows {
		if r.CmpOp == mbo.Divides && r.Modulus.Cmp(big.NewInt(2)) == 0 {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected a Divides row asserting 2 | (y+1), got %+v", rows)
	}
}

// TestMaximize maximizes t=x+y over F={x<=3, y<=4, x>=0, y>=0}; the
// optimum should be value=7, non-open.
func TestMaximize(t *testing.T) {
	k := mbo.NewKernel()
	x := k.AddVar(big.NewRat(0, 1), true)
	y := k.AddVar(big.NewRat(0, 1), true)

	k.AddConstraint(map[int]*big.Rat{x: big.NewRat(1, 1)}, big.NewRat(-3, 1), mbo.Le)
	k.AddConstraint(map[int]*big.Rat{y: big.NewRat(1, 1)}, big.NewRat(-4, 1), mbo.Le)
	k.AddConstraint(map[int]*big.Rat{x: big.NewRat(-1, 1)}, big.NewRat(0, 1), mbo.Le)
	k.AddConstraint(map[int]*big.Rat{y: big.NewRat(-1, 1)}, big.NewRat(0, 1), mbo.Le)

	k.SetObjective(map[int]*big.Rat{x: big.NewRat(1, 1), y: big.NewRat(1, 1)}, big.NewRat(0, 1))
	opt := k.Maximize()
	if opt.Infinite {
		t.Fatal("expected a finite optimum")
	}
	if opt.Value.Cmp(big.NewRat(7, 1)) != 0 {
		t.Fatalf("expected value 7, got %v", opt.Value)
	}
	if opt.Open {
		t.Fatal("expected the optimum to be attained (not open)")
	}
}

func TestMaximizeUnbounded(t *testing.T) {
	k := mbo.NewKernel()
	x := k.AddVar(big.NewRat(0, 1), true)
	k.SetObjective(map[int]*big.Rat{x: big.NewRat(1, 1)}, big.NewRat(0, 1))
	opt := k.Maximize()
	if !opt.Infinite {
		t.Fatalf("expected an unbounded optimum, got %+v", opt)
	}
}

// TestMaximizeOpenSupremum checks that a strict upper bound (x<3) yields an
// open (unattained) supremum.
func TestMaximizeOpenSupremum(t *testing.T) {
	k := mbo.NewKernel()
	x := k.AddVar(big.NewRat(0, 1), true)
	k.AddConstraint(map[int]*big.Rat{x: big.NewRat(1, 1)}, big.NewRat(-3, 1), mbo.Lt) // x - 3 < 0
	k.SetObjective(map[int]*big.Rat{x: big.NewRat(1, 1)}, big.NewRat(0, 1))
	opt := k.Maximize()
	if opt.Infinite {
		t.Fatal("expected a finite optimum")
	}
	if opt.Value.Cmp(big.NewRat(3, 1)) != 0 {
		t.Fatalf("expected value 3, got %v", opt.Value)
	}
	if !opt.Open {
		t.Fatal("expected the supremum to be open (not attained)")
	}
}

func TestAddModComputesEuclideanRemainder(t *testing.T) {
	k := mbo.NewKernel()
	x := k.AddVar(big.NewRat(5, 1), true)
	id := k.AddMod(map[int]*big.Rat{x: big.NewRat(1, 1)}, big.NewRat(0, 1), big.NewInt(3))
	if k.GetValue(id).Cmp(big.NewRat(2, 1)) != 0 {
		t.Fatalf("expected 5 mod 3 = 2, got %v", k.GetValue(id))
	}
}
