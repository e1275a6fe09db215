package canonical

// Array is the canonical array descriptor. A nil Tuple means the homogeneous
// form: Items constrains every element. A non-nil Tuple constrains elements
// positionally, with Additional constraining positions past the tuple. A nil
// Items or Additional admits anything at the covered positions.
type Array struct {
	MinItems int
	MaxItems int
	Unique   bool

	Items      *Schema
	Tuple      []*Schema
	Additional *Schema
}

// AnyArray returns the unconstrained array descriptor.
func AnyArray() *Array {
	return &Array{MaxItems: unboundedLen}
}

// IsUnconstrained reports whether the descriptor admits every array.
func (a *Array) IsUnconstrained() bool {
	if a.MinItems != 0 || a.MaxItems != unboundedLen || a.Unique {
		return false
	}
	if a.Tuple != nil {
		return false
	}
	return a.Items == nil || a.Items.IsTop()
}

// at returns the schema constraining position i, treating the homogeneous
// form as an infinite tuple of identical element schemas.
func (a *Array) at(i int) *Schema {
	if a.Tuple == nil {
		return orTop(a.Items)
	}
	if i < len(a.Tuple) {
		return orTop(a.Tuple[i])
	}
	return orTop(a.Additional)
}

// tail returns the schema constraining every position past both tuples.
func (a *Array) tail() *Schema {
	if a.Tuple == nil {
		return orTop(a.Items)
	}
	return orTop(a.Additional)
}

func orTop(s *Schema) *Schema {
	if s == nil {
		return Top()
	}
	return s
}

// positionExists reports whether the descriptor admits any array long enough
// to populate position i.
func (a *Array) positionExists(i int) bool {
	return a.MaxItems == unboundedLen || i < a.MaxItems
}

// Subtype reports whether every array admitted by a is admitted by other.
func (a *Array) Subtype(other *Array) bool {
	if !lenWithin(a.MinItems, a.MaxItems, other.MinItems, other.MaxItems) {
		return false
	}
	if other.Unique && !a.Unique {
		return false
	}

	n := len(a.Tuple)
	if len(other.Tuple) > n {
		n = len(other.Tuple)
	}
	for i := 0; i < n; i++ {
		if !a.positionExists(i) {
			break
		}
		if !a.at(i).Subtype(other.at(i)) {
			return false
		}
	}
	if a.MaxItems != unboundedLen && a.MaxItems <= n {
		return true
	}
	return a.tail().Subtype(other.tail())
}

// Meet intersects two array descriptors. A positional intersection that
// collapses to Bottom caps the admissible length at that position; an
// unsatisfiable length interval collapses the whole descriptor to nil.
func (a *Array) Meet(other *Array) *Array {
	min, max, ok := lenIntersect(a.MinItems, a.MaxItems, other.MinItems, other.MaxItems)
	if !ok {
		return nil
	}
	out := &Array{MinItems: min, MaxItems: max, Unique: a.Unique || other.Unique}

	if a.Tuple == nil && other.Tuple == nil {
		item := a.tail().Meet(other.tail())
		if item.IsBottom() {
			// Only the empty array survives.
			if out.MinItems > 0 {
				return nil
			}
			out.MaxItems = 0
			return out
		}
		if !item.IsTop() {
			out.Items = item
		}
		return out
	}

	n := len(a.Tuple)
	if len(other.Tuple) > n {
		n = len(other.Tuple)
	}
	tuple := make([]*Schema, 0, n)
	for i := 0; i < n; i++ {
		pos := a.at(i).Meet(other.at(i))
		if pos.IsBottom() {
			// Arrays cannot reach this position.
			if out.MaxItems == unboundedLen || i < out.MaxItems {
				out.MaxItems = i
			}
			break
		}
		tuple = append(tuple, pos)
	}
	if out.MaxItems != unboundedLen && out.MinItems > out.MaxItems {
		return nil
	}
	if out.MaxItems != unboundedLen && len(tuple) > out.MaxItems {
		tuple = tuple[:out.MaxItems]
	}
	out.Tuple = tuple
	tail := a.tail().Meet(other.tail())
	if tail.IsBottom() {
		if out.MaxItems == unboundedLen || len(tuple) < out.MaxItems {
			out.MaxItems = len(tuple)
		}
		if out.MinItems > out.MaxItems {
			return nil
		}
	} else if !tail.IsTop() {
		out.Additional = tail
	}
	return out
}

// Join widens two array descriptors: convex hull of lengths, positional
// joins, uniqueness only when both sides demand it.
func (a *Array) Join(other *Array) *Array {
	min, max := lenHull(a.MinItems, a.MaxItems, other.MinItems, other.MaxItems)
	out := &Array{MinItems: min, MaxItems: max, Unique: a.Unique && other.Unique}

	if a.Tuple == nil && other.Tuple == nil {
		item := a.tail().Join(other.tail())
		if !item.IsTop() {
			out.Items = item
		}
		return out
	}

	n := len(a.Tuple)
	if len(other.Tuple) > n {
		n = len(other.Tuple)
	}
	tuple := make([]*Schema, n)
	for i := 0; i < n; i++ {
		tuple[i] = a.at(i).Join(other.at(i))
	}
	out.Tuple = tuple
	tail := a.tail().Join(other.tail())
	if !tail.IsTop() {
		out.Additional = tail
	}
	return out
}

// Equal reports whether two descriptors admit the same arrays.
func (a *Array) Equal(other *Array) bool {
	return a.Subtype(other) && other.Subtype(a)
}
