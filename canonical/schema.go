// Package canonical implements the kind-tagged normal form of a schema and
// the per-kind decision procedures. A canonical schema holds at most one
// descriptor per JSON value kind; an absent descriptor rejects every
// instance of that kind. Subtype, Meet and Join operate kind by kind.
package canonical

// Schema is the canonical form all algebraic operations run on. Null and
// Boolean are degenerate kinds with no parameters beyond presence. Stype is
// the semantic annotation carried through untouched by the structural
// algebra.
type Schema struct {
	Null    bool
	Boolean bool
	Number  *Number
	String  *String
	Array   *Array
	Object  *Object

	Stype string
}

// Top returns the canonical schema accepting every instance.
func Top() *Schema {
	return &Schema{
		Null:    true,
		Boolean: true,
		Number:  AnyNumber(),
		String:  AnyString(),
		Array:   AnyArray(),
		Object:  AnyObject(),
	}
}

// Bottom returns the canonical schema accepting nothing.
func Bottom() *Schema {
	return &Schema{}
}

// IsBottom reports whether no kind is present.
func (s *Schema) IsBottom() bool {
	return !s.Null && !s.Boolean && s.Number == nil && s.String == nil &&
		s.Array == nil && s.Object == nil
}

// IsTop reports whether every kind is present and unconstrained.
func (s *Schema) IsTop() bool {
	return s.Null && s.Boolean &&
		s.Number != nil && s.Number.IsUnconstrained() &&
		s.String != nil && s.String.IsUnconstrained() &&
		s.Array != nil && s.Array.IsUnconstrained() &&
		s.Object != nil && s.Object.IsUnconstrained()
}

// Kinds returns the names of the kinds present, in the canonical order.
func (s *Schema) Kinds() []string {
	var kinds []string
	if s.Null {
		kinds = append(kinds, "null")
	}
	if s.Boolean {
		kinds = append(kinds, "boolean")
	}
	if s.Number != nil {
		if s.Number.Integer {
			kinds = append(kinds, "integer")
		} else {
			kinds = append(kinds, "number")
		}
	}
	if s.String != nil {
		kinds = append(kinds, "string")
	}
	if s.Array != nil {
		kinds = append(kinds, "array")
	}
	if s.Object != nil {
		kinds = append(kinds, "object")
	}
	return kinds
}

// Subtype reports whether every instance accepted by s is accepted by other.
// The semantic annotation does not participate; it is compared by the
// resolver layer above.
func (s *Schema) Subtype(other *Schema) bool {
	if s.Null && !other.Null {
		return false
	}
	if s.Boolean && !other.Boolean {
		return false
	}
	if s.Number != nil && (other.Number == nil || !s.Number.Subtype(other.Number)) {
		return false
	}
	if s.String != nil && (other.String == nil || !s.String.Subtype(other.String)) {
		return false
	}
	if s.Array != nil && (other.Array == nil || !s.Array.Subtype(other.Array)) {
		return false
	}
	if s.Object != nil && (other.Object == nil || !s.Object.Subtype(other.Object)) {
		return false
	}
	return true
}

// Equivalent reports mutual structural subtyping.
func (s *Schema) Equivalent(other *Schema) bool {
	return s.Subtype(other) && other.Subtype(s)
}

// Meet intersects two canonical schemas kind by kind. A kind present on
// only one side, or whose descriptor intersection is uninhabited, is absent
// from the result. Annotations are not combined here.
func (s *Schema) Meet(other *Schema) *Schema {
	out := &Schema{
		Null:    s.Null && other.Null,
		Boolean: s.Boolean && other.Boolean,
	}
	if s.Number != nil && other.Number != nil {
		out.Number = s.Number.Meet(other.Number)
	}
	if s.String != nil && other.String != nil {
		out.String = s.String.Meet(other.String)
	}
	if s.Array != nil && other.Array != nil {
		out.Array = s.Array.Meet(other.Array)
	}
	if s.Object != nil && other.Object != nil {
		out.Object = s.Object.Meet(other.Object)
	}
	return out
}

// Join unions two canonical schemas kind by kind. A kind present on either
// side is present in the result; shared kinds widen to their per-kind join.
func (s *Schema) Join(other *Schema) *Schema {
	out := &Schema{
		Null:    s.Null || other.Null,
		Boolean: s.Boolean || other.Boolean,
	}
	out.Number = joinOptional(s.Number, other.Number, (*Number).Join)
	out.String = joinOptional(s.String, other.String, (*String).Join)
	out.Array = joinOptional(s.Array, other.Array, (*Array).Join)
	out.Object = joinOptional(s.Object, other.Object, (*Object).Join)
	return out
}

func joinOptional[T any](a, b *T, join func(*T, *T) *T) *T {
	switch {
	case a == nil:
		return b
	case b == nil:
		return a
	}
	return join(a, b)
}

// Complement inverts kind presence: kinds absent from s become
// unconstrained, unconstrained kinds become absent. ok is false when any
// present kind carries constraints, because the complement of a constrained
// kind is not expressible in this model.
func (s *Schema) Complement() (*Schema, bool) {
	out := &Schema{Null: !s.Null, Boolean: !s.Boolean}

	switch {
	case s.Number == nil:
		out.Number = AnyNumber()
	case !s.Number.IsUnconstrained():
		return nil, false
	}
	switch {
	case s.String == nil:
		out.String = AnyString()
	case !s.String.IsUnconstrained():
		return nil, false
	}
	switch {
	case s.Array == nil:
		out.Array = AnyArray()
	case !s.Array.IsUnconstrained():
		return nil, false
	}
	switch {
	case s.Object == nil:
		out.Object = AnyObject()
	case !s.Object.IsUnconstrained():
		return nil, false
	}
	return out, true
}
