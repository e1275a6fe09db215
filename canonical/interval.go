package canonical

// unboundedLen marks an absent maximum length or item count.
const unboundedLen = -1

// lenWithin reports [aMin, aMax] ⊆ [bMin, bMax] where unboundedLen means no
// upper limit.
func lenWithin(aMin, aMax, bMin, bMax int) bool {
	if aMin < bMin {
		return false
	}
	if bMax == unboundedLen {
		return true
	}
	if aMax == unboundedLen {
		return false
	}
	return aMax <= bMax
}

// lenIntersect narrows two count intervals. ok is false when the
// intersection is empty.
func lenIntersect(aMin, aMax, bMin, bMax int) (min, max int, ok bool) {
	min = aMin
	if bMin > min {
		min = bMin
	}
	max = aMax
	switch {
	case max == unboundedLen:
		max = bMax
	case bMax != unboundedLen && bMax < max:
		max = bMax
	}
	if max != unboundedLen && min > max {
		return 0, 0, false
	}
	return min, max, true
}

// lenHull widens two count intervals to their convex hull.
func lenHull(aMin, aMax, bMin, bMax int) (min, max int) {
	min = aMin
	if bMin < min {
		min = bMin
	}
	if aMax == unboundedLen || bMax == unboundedLen {
		return min, unboundedLen
	}
	max = aMax
	if bMax > max {
		max = bMax
	}
	return min, max
}
