package canonical

import (
	"sort"

	"github.com/c360/semschema/pkg/regexlang"
)

// PatternSchema constrains properties whose names match a regular pattern.
// Lang is the compiled search-semantics language of Source.
type PatternSchema struct {
	Source string
	Lang   *regexlang.Language
	Schema *Schema
}

// Object is the canonical object descriptor. Additional constrains
// properties not covered by Properties or Patterns; nil admits anything
// there, a Bottom schema closes the object.
type Object struct {
	Properties map[string]*Schema
	Required   map[string]bool
	Patterns   []PatternSchema
	Additional *Schema
}

// AnyObject returns the unconstrained object descriptor.
func AnyObject() *Object {
	return &Object{}
}

// IsUnconstrained reports whether the descriptor admits every object.
func (o *Object) IsUnconstrained() bool {
	return len(o.Properties) == 0 && len(o.Required) == 0 &&
		len(o.Patterns) == 0 && (o.Additional == nil || o.Additional.IsTop())
}

// Closed reports whether unlisted properties are rejected.
func (o *Object) Closed() bool {
	return o.Additional != nil && o.Additional.IsBottom()
}

func (o *Object) additional() *Schema {
	return orTop(o.Additional)
}

// effective returns the schema constraining the named property: its declared
// schema, else the meet of every matching pattern schema, else the
// additional-properties schema.
func (o *Object) effective(name string) *Schema {
	if s, ok := o.Properties[name]; ok {
		return s
	}
	var matched *Schema
	for _, p := range o.Patterns {
		if p.Lang.Matches(name) {
			if matched == nil {
				matched = p.Schema
			} else {
				matched = matched.Meet(p.Schema)
			}
		}
	}
	if matched != nil {
		return matched
	}
	return o.additional()
}

// propertyNames returns the union of declared property names, sorted.
func propertyNames(a, b *Object) []string {
	seen := map[string]bool{}
	for name := range a.Properties {
		seen[name] = true
	}
	for name := range b.Properties {
		seen[name] = true
	}
	names := make([]string, 0, len(seen))
	for name := range seen {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Subtype reports whether every object admitted by o is admitted by other.
func (o *Object) Subtype(other *Object) bool {
	// A name other requires must be guaranteed present.
	for name := range other.Required {
		if !o.Required[name] {
			return false
		}
	}

	// Every name either side declares must be admitted by the narrower
	// side's effective schema under the wider side's.
	for _, name := range propertyNames(o, other) {
		if !o.effective(name).Subtype(other.effective(name)) {
			return false
		}
	}

	// Patterns on the wide side constrain unbounded name sets; compare a
	// same-source pattern when present, else the narrow side's fallback.
	for _, bp := range other.Patterns {
		matched := false
		for _, ap := range o.Patterns {
			if ap.Source == bp.Source {
				if !ap.Schema.Subtype(bp.Schema) {
					return false
				}
				matched = true
				break
			}
		}
		if !matched && !o.additional().Subtype(bp.Schema) {
			return false
		}
	}

	// Patterns on the narrow side admit unbounded name sets of their own.
	// Same-source pairs were compared above; each remaining pattern must fit
	// under whatever the wide side imposes on the names it matches.
	for _, ap := range o.Patterns {
		if hasPatternSource(other.Patterns, ap.Source) {
			continue
		}
		if !ap.Schema.Subtype(other.patternTarget(ap)) {
			return false
		}
	}

	// Width rule: a closed object is a subtype of an open one, never the
	// reverse.
	return o.additional().Subtype(other.additional())
}

// hasPatternSource reports whether any pattern shares the given source text.
func hasPatternSource(patterns []PatternSchema, source string) bool {
	for _, p := range patterns {
		if p.Source == source {
			return true
		}
	}
	return false
}

// patternTarget is the constraint o imposes on names matched by p: the meet
// of every overlapping pattern schema, met with the fallback when p can also
// match names outside all of them. The target may be tighter than what any
// single name actually faces, which errs toward rejecting the subtyping.
func (o *Object) patternTarget(p PatternSchema) *Schema {
	var target *Schema
	covered := regexlang.Empty()
	for _, op := range o.Patterns {
		if op.Lang.Intersect(p.Lang).IsEmpty() {
			continue
		}
		if target == nil {
			target = op.Schema
		} else {
			target = target.Meet(op.Schema)
		}
		covered = covered.Union(op.Lang)
	}
	if target == nil {
		return o.additional()
	}
	if !p.Lang.Subset(covered) {
		target = target.Meet(o.additional())
	}
	return target
}

// Meet intersects two object descriptors: per-name intersections over the
// union of declared names, union of required names, and intersected
// fallbacks. Returns nil when a required property becomes unsatisfiable.
func (o *Object) Meet(other *Object) *Object {
	out := &Object{
		Properties: map[string]*Schema{},
		Required:   map[string]bool{},
	}
	for name := range o.Required {
		out.Required[name] = true
	}
	for name := range other.Required {
		out.Required[name] = true
	}

	for _, name := range propertyNames(o, other) {
		merged := o.effective(name).Meet(other.effective(name))
		if merged.IsBottom() && out.Required[name] {
			return nil
		}
		out.Properties[name] = merged
	}

	out.Patterns = meetPatterns(o, other)

	add := o.additional().Meet(other.additional())
	if !add.IsTop() {
		out.Additional = add
	}
	if len(out.Properties) == 0 {
		out.Properties = nil
	}
	if len(out.Required) == 0 {
		out.Required = nil
	}
	return out
}

// meetPatterns unions two pattern lists. Same-source schemas intersect
// directly; a one-sided pattern intersects with whatever the other side
// imposes on the names it matches.
func meetPatterns(a, b *Object) []PatternSchema {
	var out []PatternSchema
	taken := map[string]bool{}
	for _, ap := range a.Patterns {
		merged := PatternSchema{Source: ap.Source, Lang: ap.Lang, Schema: ap.Schema.Meet(b.patternTarget(ap))}
		for _, bp := range b.Patterns {
			if bp.Source == ap.Source {
				merged.Schema = ap.Schema.Meet(bp.Schema)
				break
			}
		}
		out = append(out, merged)
		taken[ap.Source] = true
	}
	for _, bp := range b.Patterns {
		if !taken[bp.Source] {
			out = append(out, PatternSchema{Source: bp.Source, Lang: bp.Lang, Schema: bp.Schema.Meet(a.patternTarget(bp))})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Source < out[j].Source })
	return out
}

// Join widens two object descriptors: shared declared names are joined,
// one-sided names fold into the additional-properties computation, required
// names survive only when both sides require them.
func (o *Object) Join(other *Object) *Object {
	out := &Object{}

	shared := map[string]*Schema{}
	for name, as := range o.Properties {
		if bs, ok := other.Properties[name]; ok {
			shared[name] = as.Join(bs)
		}
	}
	if len(shared) > 0 {
		out.Properties = shared
	}

	required := map[string]bool{}
	for name := range o.Required {
		if other.Required[name] {
			required[name] = true
		}
	}
	if len(required) > 0 {
		out.Required = required
	}

	// Identically sourced patterns join; everything one-sided widens the
	// fallback.
	var patterns []PatternSchema
	for _, ap := range o.Patterns {
		for _, bp := range other.Patterns {
			if ap.Source == bp.Source {
				patterns = append(patterns, PatternSchema{
					Source: ap.Source,
					Lang:   ap.Lang,
					Schema: ap.Schema.Join(bp.Schema),
				})
				break
			}
		}
	}

	addA := o.additional()
	for name, as := range o.Properties {
		if _, ok := other.Properties[name]; !ok {
			addA = addA.Join(as)
		}
	}
	for _, ap := range o.Patterns {
		if !hasPatternSource(other.Patterns, ap.Source) {
			addA = addA.Join(ap.Schema)
		}
	}
	addB := other.additional()
	for name, bs := range other.Properties {
		if _, ok := o.Properties[name]; !ok {
			addB = addB.Join(bs)
		}
	}
	for _, bp := range other.Patterns {
		if !hasPatternSource(o.Patterns, bp.Source) {
			addB = addB.Join(bp.Schema)
		}
	}
	add := addA.Join(addB)
	if !add.IsTop() {
		out.Additional = add
	}
	out.Patterns = patterns
	return out
}

// Equal reports whether two descriptors admit the same objects.
func (o *Object) Equal(other *Object) bool {
	return o.Subtype(other) && other.Subtype(o)
}
