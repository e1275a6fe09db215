package canonical

import (
	"math/big"
	"sort"
)

// Render serializes a canonical schema back into the document keyword
// vocabulary. Bottom renders as {"not": {}}, Top as {}. A schema admitting
// several constrained kinds renders as an anyOf over single-kind documents.
func Render(s *Schema) map[string]any {
	if s.IsBottom() {
		return map[string]any{"not": map[string]any{}}
	}

	doc := renderKinds(s)
	if s.Stype != "" {
		doc["stype"] = s.Stype
	}
	return doc
}

func renderKinds(s *Schema) map[string]any {
	if s.IsTop() {
		return map[string]any{}
	}

	var fragments []map[string]any
	unconstrained := true
	var kindNames []any

	add := func(name string, fragment map[string]any) {
		kindNames = append(kindNames, name)
		if len(fragment) > 1 {
			unconstrained = false
		}
		fragments = append(fragments, fragment)
	}

	if s.Null {
		add("null", map[string]any{"type": "null"})
	}
	if s.Boolean {
		add("boolean", map[string]any{"type": "boolean"})
	}
	if s.Number != nil {
		add(numberTypeName(s.Number), renderNumber(s.Number))
	}
	if s.String != nil {
		add("string", renderString(s.String))
	}
	if s.Array != nil {
		add("array", renderArray(s.Array))
	}
	if s.Object != nil {
		add("object", renderObject(s.Object))
	}

	switch {
	case len(fragments) == 1:
		return fragments[0]
	case unconstrained:
		return map[string]any{"type": kindNames}
	default:
		branches := make([]any, len(fragments))
		for i, f := range fragments {
			branches[i] = f
		}
		return map[string]any{"anyOf": branches}
	}
}

func numberTypeName(n *Number) string {
	if n.Integer {
		return "integer"
	}
	return "number"
}

func renderNumber(n *Number) map[string]any {
	doc := map[string]any{"type": numberTypeName(n)}
	if n.Min.Inf == 0 {
		doc["minimum"] = ratValue(n.Min.Value)
		if n.Min.Open {
			doc["exclusiveMinimum"] = true
		}
	}
	if n.Max.Inf == 0 {
		doc["maximum"] = ratValue(n.Max.Value)
		if n.Max.Open {
			doc["exclusiveMaximum"] = true
		}
	}
	if n.Step != nil {
		doc["multipleOf"] = ratValue(n.Step)
	}
	return doc
}

// ratValue renders an exact rational as the narrowest JSON number form.
func ratValue(r *big.Rat) any {
	if r.IsInt() && r.Num().IsInt64() {
		return r.Num().Int64()
	}
	f, _ := r.Float64()
	return f
}

func renderString(s *String) map[string]any {
	doc := map[string]any{"type": "string"}
	if s.MinLen > 0 {
		doc["minLength"] = s.MinLen
	}
	if s.MaxLen != unboundedLen {
		doc["maxLength"] = s.MaxLen
	}
	if s.Lang != nil && !s.Lang.IsUniversal() {
		doc["pattern"] = s.Lang.Pattern()
	}
	return doc
}

func renderArray(a *Array) map[string]any {
	doc := map[string]any{"type": "array"}
	if a.MinItems > 0 {
		doc["minItems"] = a.MinItems
	}
	if a.MaxItems != unboundedLen {
		doc["maxItems"] = a.MaxItems
	}
	if a.Unique {
		doc["uniqueItems"] = true
	}
	if a.Tuple != nil {
		tuple := make([]any, len(a.Tuple))
		for i, sub := range a.Tuple {
			tuple[i] = Render(sub)
		}
		doc["items"] = tuple
		switch {
		case a.Additional != nil && a.Additional.IsBottom():
			doc["additionalItems"] = false
		case a.Additional != nil && !a.Additional.IsTop():
			doc["additionalItems"] = Render(a.Additional)
		}
	} else if a.Items != nil && !a.Items.IsTop() {
		doc["items"] = Render(a.Items)
	}
	return doc
}

func renderObject(o *Object) map[string]any {
	doc := map[string]any{"type": "object"}
	if len(o.Properties) > 0 {
		props := make(map[string]any, len(o.Properties))
		for name, sub := range o.Properties {
			props[name] = Render(sub)
		}
		doc["properties"] = props
	}
	if len(o.Required) > 0 {
		names := make([]string, 0, len(o.Required))
		for name := range o.Required {
			names = append(names, name)
		}
		sort.Strings(names)
		required := make([]any, len(names))
		for i, name := range names {
			required[i] = name
		}
		doc["required"] = required
	}
	if len(o.Patterns) > 0 {
		pats := make(map[string]any, len(o.Patterns))
		for _, p := range o.Patterns {
			pats[p.Source] = Render(p.Schema)
		}
		doc["patternProperties"] = pats
	}
	switch {
	case o.Additional != nil && o.Additional.IsBottom():
		doc["additionalProperties"] = false
	case o.Additional != nil && !o.Additional.IsTop():
		doc["additionalProperties"] = Render(o.Additional)
	}
	return doc
}
