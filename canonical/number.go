package canonical

import (
	"math/big"
)

// Bound is one endpoint of a numeric interval. Inf makes the ordering total:
// -1 is unbounded below, +1 unbounded above, 0 a finite value that may be
// open (exclusive) or closed.
type Bound struct {
	Inf   int
	Value *big.Rat
	Open  bool
}

// NegInf returns the unbounded lower endpoint.
func NegInf() Bound { return Bound{Inf: -1} }

// PosInf returns the unbounded upper endpoint.
func PosInf() Bound { return Bound{Inf: 1} }

// Finite returns a finite endpoint.
func Finite(v *big.Rat, open bool) Bound { return Bound{Value: v, Open: open} }

// lowerWithin reports whether lower bound a admits no value that lower bound
// b rejects, i.e. a is at least as tight as b.
func lowerWithin(a, b Bound) bool {
	if b.Inf < 0 {
		return true
	}
	if a.Inf < 0 {
		return false
	}
	switch a.Value.Cmp(b.Value) {
	case 1:
		return true
	case -1:
		return false
	}
	return a.Open || !b.Open
}

// upperWithin reports whether upper bound a is at least as tight as b.
func upperWithin(a, b Bound) bool {
	if b.Inf > 0 {
		return true
	}
	if a.Inf > 0 {
		return false
	}
	switch a.Value.Cmp(b.Value) {
	case -1:
		return true
	case 1:
		return false
	}
	return a.Open || !b.Open
}

// tighterLower returns the more restrictive of two lower bounds.
func tighterLower(a, b Bound) Bound {
	if lowerWithin(a, b) {
		return a
	}
	return b
}

// looserLower returns the less restrictive of two lower bounds.
func looserLower(a, b Bound) Bound {
	if lowerWithin(a, b) {
		return b
	}
	return a
}

// tighterUpper returns the more restrictive of two upper bounds.
func tighterUpper(a, b Bound) Bound {
	if upperWithin(a, b) {
		return a
	}
	return b
}

// looserUpper returns the less restrictive of two upper bounds.
func looserUpper(a, b Bound) Bound {
	if upperWithin(a, b) {
		return b
	}
	return a
}

// emptyInterval reports whether the interval [min, max] admits no value.
// Intervals over the integers additionally collapse when no integer fits
// between two fractional or open endpoints.
func emptyInterval(min, max Bound, integer bool) bool {
	if min.Inf < 0 || max.Inf > 0 {
		return false
	}
	switch min.Value.Cmp(max.Value) {
	case 1:
		return true
	case 0:
		return min.Open || max.Open
	}
	if integer {
		lo := ceilInt(min)
		hi := floorInt(max)
		return lo.Cmp(hi) > 0
	}
	return false
}

// ceilInt returns the smallest integer admitted by a finite lower bound.
func ceilInt(b Bound) *big.Int {
	v := new(big.Int).Div(b.Value.Num(), b.Value.Denom())
	if b.Value.IsInt() {
		if b.Open {
			v.Add(v, big.NewInt(1))
		}
		return v
	}
	// Floor division rounds toward negative infinity, so the ceiling of a
	// non-integer is floor+1.
	return v.Add(v, big.NewInt(1))
}

// floorInt returns the largest integer admitted by a finite upper bound.
func floorInt(b Bound) *big.Int {
	v := new(big.Int).Div(b.Value.Num(), b.Value.Denom())
	if b.Value.IsInt() && b.Open {
		v.Sub(v, big.NewInt(1))
	}
	return v
}

// Number is the canonical numeric descriptor: an interval with independently
// open or unbounded endpoints, an integer restriction, and an optional
// divisibility step.
type Number struct {
	Min     Bound
	Max     Bound
	Integer bool
	Step    *big.Rat
}

// AnyNumber returns the unconstrained numeric descriptor.
func AnyNumber() *Number {
	return &Number{Min: NegInf(), Max: PosInf()}
}

// AnyInteger returns the descriptor admitting every integer.
func AnyInteger() *Number {
	return &Number{Min: NegInf(), Max: PosInf(), Integer: true}
}

// PointNumber returns the descriptor admitting exactly one value.
func PointNumber(v *big.Rat) *Number {
	return &Number{Min: Finite(v, false), Max: Finite(v, false), Integer: v.IsInt()}
}

// IsUnconstrained reports whether the descriptor admits every number.
func (n *Number) IsUnconstrained() bool {
	return n.Min.Inf < 0 && n.Max.Inf > 0 && !n.Integer && n.Step == nil
}

// stepWithin reports whether every multiple of a is a multiple of b.
// An absent b admits everything; an absent a admits values b may reject.
func stepWithin(a, b *big.Rat) bool {
	if b == nil {
		return true
	}
	if a == nil {
		return false
	}
	return new(big.Rat).Quo(a, b).IsInt()
}

// Subtype reports whether every value admitted by n is admitted by other.
func (n *Number) Subtype(other *Number) bool {
	if !lowerWithin(n.Min, other.Min) || !upperWithin(n.Max, other.Max) {
		return false
	}
	if other.Integer && !n.Integer && !stepWithin(n.Step, big.NewRat(1, 1)) {
		// A point interval on an integer value also satisfies the
		// restriction without an explicit flag.
		if !n.isIntegerPoint() {
			return false
		}
	}
	return stepWithin(n.effectiveStep(), other.Step)
}

func (n *Number) isIntegerPoint() bool {
	return n.Min.Inf == 0 && n.Max.Inf == 0 && !n.Min.Open && !n.Max.Open &&
		n.Min.Value.Cmp(n.Max.Value) == 0 && n.Min.Value.IsInt()
}

// effectiveStep folds the integer restriction into the step so that
// divisibility checks see "integer" as step 1. A fractional step on an
// integer descriptor combines to the LCM of the two.
func (n *Number) effectiveStep() *big.Rat {
	if n.Step != nil {
		if n.Integer {
			return lcmStep(n.Step, big.NewRat(1, 1))
		}
		return n.Step
	}
	if n.Integer {
		return big.NewRat(1, 1)
	}
	return nil
}

// Meet intersects two numeric descriptors. Returns nil when the
// intersection admits no value.
func (n *Number) Meet(other *Number) *Number {
	out := &Number{
		Min:     tighterLower(n.Min, other.Min),
		Max:     tighterUpper(n.Max, other.Max),
		Integer: n.Integer || other.Integer,
		Step:    lcmStep(n.Step, other.Step),
	}
	if emptyInterval(out.Min, out.Max, out.Integer) {
		return nil
	}
	return out
}

// Join returns the convex hull of two numeric descriptors. The hull may
// admit values neither operand admits; that widening is inherent to keeping
// the result a single interval. The step survives only when shared.
func (n *Number) Join(other *Number) *Number {
	out := &Number{
		Min:     looserLower(n.Min, other.Min),
		Max:     looserUpper(n.Max, other.Max),
		Integer: n.Integer && other.Integer,
	}
	if n.Step != nil && other.Step != nil && n.Step.Cmp(other.Step) == 0 {
		out.Step = new(big.Rat).Set(n.Step)
	}
	return out
}

// lcmStep combines two step constraints: values must be multiples of both.
func lcmStep(a, b *big.Rat) *big.Rat {
	if a == nil {
		if b == nil {
			return nil
		}
		return new(big.Rat).Set(b)
	}
	if b == nil {
		return new(big.Rat).Set(a)
	}
	// lcm(p/q, r/s) = lcm(p*s, r*q) / (q*s)
	ps := new(big.Int).Mul(a.Num(), b.Denom())
	rq := new(big.Int).Mul(b.Num(), a.Denom())
	gcd := new(big.Int).GCD(nil, nil, new(big.Int).Abs(ps), new(big.Int).Abs(rq))
	num := new(big.Int).Div(new(big.Int).Abs(new(big.Int).Mul(ps, rq)), gcd)
	den := new(big.Int).Mul(a.Denom(), b.Denom())
	return new(big.Rat).SetFrac(num, den)
}

// Equal reports whether two descriptors admit the same values up to the
// normal form used here.
func (n *Number) Equal(other *Number) bool {
	return n.Subtype(other) && other.Subtype(n)
}
