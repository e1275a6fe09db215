package semantic

import (
	"github.com/c360/semschema/config"
	"github.com/c360/semschema/errors"
)

// Stype reports the stype annotation on a raw schema document, or "" when
// the annotation is absent or not a string.
func Stype(schema map[string]any) string {
	s, _ := schema["stype"].(string)
	return s
}

// Compatible reports whether a is semantically compatible with b, walking
// both raw documents in lock-step before any structural canonicalization.
// The direction is subtype-shaped: a may carry annotations b lacks, but an
// annotation required by b must be present on a and resolve as a subtype.
//
// The walk is depth-limited; exceeding the budget returns an
// UnsupportedRecursiveRef error because the input must be cyclic.
func Compatible(a, b map[string]any, r *Resolver) (bool, error) {
	return CompatibleDepth(a, b, r, config.Default().Get().DepthBudget())
}

// CompatibleDepth is Compatible with an explicit recursion budget, for
// callers carrying their own settings.
func CompatibleDepth(a, b map[string]any, r *Resolver, budget int) (bool, error) {
	c := checker{resolver: r, budget: budget}
	return c.compatible(a, b, 0)
}

type checker struct {
	resolver *Resolver
	budget   int
}

func (c checker) compatible(a, b map[string]any, depth int) (bool, error) {
	if depth > c.budget {
		return false, errors.NewRecursiveRef(errors.SideLeft, a)
	}

	if !c.annotationsCompatible(a, b) {
		return false, nil
	}

	if ok, err := c.propertiesCompatible(a, b, depth); !ok || err != nil {
		return ok, err
	}
	if ok, err := c.itemsCompatible(a, b, depth); !ok || err != nil {
		return ok, err
	}
	if ok, err := c.additionalCompatible(a, b, depth); !ok || err != nil {
		return ok, err
	}
	if ok, err := c.patternPropertiesCompatible(a, b, depth); !ok || err != nil {
		return ok, err
	}
	return c.connectivesCompatible(a, b, depth)
}

// annotationsCompatible applies the presence rules at one node: both absent
// holds, a-only holds (a is more specific), b-only fails (b demands a
// concept a does not promise), both present defers to the resolver.
func (c checker) annotationsCompatible(a, b map[string]any) bool {
	aType, bType := Stype(a), Stype(b)
	switch {
	case aType == "" && bType == "":
		return true
	case aType != "" && bType == "":
		return true
	case aType == "" && bType != "":
		return false
	default:
		return c.resolver.IsSubtypeOf(aType, bType)
	}
}

func (c checker) propertiesCompatible(a, b map[string]any, depth int) (bool, error) {
	aProps := subMap(a, "properties")
	bProps := subMap(b, "properties")
	for name, av := range aProps {
		bv, shared := bProps[name]
		if !shared {
			continue
		}
		aSchema, aOK := av.(map[string]any)
		bSchema, bOK := bv.(map[string]any)
		if !aOK || !bOK {
			continue
		}
		if ok, err := c.compatible(aSchema, bSchema, depth+1); !ok || err != nil {
			return ok, err
		}
	}
	return true, nil
}

func (c checker) itemsCompatible(a, b map[string]any, depth int) (bool, error) {
	aItems, aHas := a["items"]
	bItems, bHas := b["items"]
	if !aHas || !bHas {
		return true, nil
	}

	aSchema, aIsMap := aItems.(map[string]any)
	bSchema, bIsMap := bItems.(map[string]any)
	aList, aIsList := aItems.([]any)
	bList, bIsList := bItems.([]any)

	switch {
	case aIsMap && bIsMap:
		return c.compatible(aSchema, bSchema, depth+1)

	case aIsList && bIsList:
		n := len(aList)
		if len(bList) < n {
			n = len(bList)
		}
		for i := 0; i < n; i++ {
			as, aOK := aList[i].(map[string]any)
			bs, bOK := bList[i].(map[string]any)
			if !aOK || !bOK {
				continue
			}
			if ok, err := c.compatible(as, bs, depth+1); !ok || err != nil {
				return ok, err
			}
		}
		return true, nil

	case (aIsMap && bIsList) || (aIsList && bIsMap):
		// Mixed homogeneous/tuple forms are left to structural comparison
		// unless concepts are attached, in which case the shapes cannot be
		// aligned concept-by-concept.
		if hasStypeInItems(aItems) || hasStypeInItems(bItems) {
			return false, nil
		}
		return true, nil
	}
	return true, nil
}

func hasStypeInItems(items any) bool {
	switch v := items.(type) {
	case map[string]any:
		if _, ok := v["stype"]; ok {
			return true
		}
		for _, nested := range v {
			if m, ok := nested.(map[string]any); ok {
				if _, ok := m["stype"]; ok {
					return true
				}
			}
		}
	case []any:
		for _, item := range v {
			if m, ok := item.(map[string]any); ok {
				if _, ok := m["stype"]; ok {
					return true
				}
			}
		}
	}
	return false
}

func (c checker) additionalCompatible(a, b map[string]any, depth int) (bool, error) {
	aAdd, aOK := a["additionalProperties"].(map[string]any)
	bAdd, bOK := b["additionalProperties"].(map[string]any)
	if !aOK || !bOK {
		return true, nil
	}
	return c.compatible(aAdd, bAdd, depth+1)
}

// patternPropertiesCompatible compares pattern schemas whose pattern source
// strings match exactly. Overlapping but textually different patterns are
// left to structural comparison.
func (c checker) patternPropertiesCompatible(a, b map[string]any, depth int) (bool, error) {
	aPat := subMap(a, "patternProperties")
	bPat := subMap(b, "patternProperties")
	for pattern, av := range aPat {
		bv, shared := bPat[pattern]
		if !shared {
			continue
		}
		aSchema, aOK := av.(map[string]any)
		bSchema, bOK := bv.(map[string]any)
		if !aOK || !bOK {
			continue
		}
		if ok, err := c.compatible(aSchema, bSchema, depth+1); !ok || err != nil {
			return ok, err
		}
	}
	return true, nil
}

func (c checker) connectivesCompatible(a, b map[string]any, depth int) (bool, error) {
	aAll := subList(a, "allOf")
	bAll := subList(b, "allOf")
	if len(aAll) > 0 && len(bAll) > 0 {
		// Every branch on the narrow side must find a compatible home.
		for _, as := range aAll {
			found := false
			for _, bs := range bAll {
				ok, err := c.compatible(as, bs, depth+1)
				if err != nil {
					return false, err
				}
				if ok {
					found = true
					break
				}
			}
			if !found {
				return false, nil
			}
		}
	}

	aAny := subList(a, "anyOf")
	bAny := subList(b, "anyOf")
	if len(aAny) > 0 && len(bAny) > 0 {
		if ok, err := c.somePairCompatible(aAny, bAny, depth); !ok || err != nil {
			return ok, err
		}
	}

	aOne := subList(a, "oneOf")
	bOne := subList(b, "oneOf")
	if len(aOne) > 0 && len(bOne) > 0 {
		return c.somePairCompatible(aOne, bOne, depth)
	}

	return true, nil
}

func (c checker) somePairCompatible(as, bs []map[string]any, depth int) (bool, error) {
	for _, a := range as {
		for _, b := range bs {
			ok, err := c.compatible(a, b, depth+1)
			if err != nil {
				return false, err
			}
			if ok {
				return true, nil
			}
		}
	}
	return false, nil
}

// MeetStype selects the annotation for a meet result: the narrower of the
// two concepts, the present one when only one side is annotated, or "" when
// the concepts are incomparable.
func MeetStype(aType, bType string, r *Resolver) string {
	switch {
	case aType == bType:
		return aType
	case aType == "":
		return bType
	case bType == "":
		return aType
	case r.IsSubtypeOf(aType, bType):
		return aType
	case r.IsSubtypeOf(bType, aType):
		return bType
	}
	return ""
}

// JoinStype selects the annotation for a join result: the broader of the two
// concepts when both sides are annotated and comparable, otherwise "". A
// one-sided annotation is dropped because the join admits unannotated values.
func JoinStype(aType, bType string, r *Resolver) string {
	switch {
	case aType == bType:
		return aType
	case aType == "" || bType == "":
		return ""
	case r.IsSubtypeOf(aType, bType):
		return bType
	case r.IsSubtypeOf(bType, aType):
		return aType
	}
	return ""
}

// EquivalentStypes applies the equivalence presence rule: both unannotated,
// or both annotated with mutually reachable concepts.
func EquivalentStypes(aType, bType string, r *Resolver) bool {
	if (aType == "") != (bType == "") {
		return false
	}
	if aType == "" {
		return true
	}
	return r.IsSubtypeOf(aType, bType) && r.IsSubtypeOf(bType, aType)
}

func subMap(m map[string]any, key string) map[string]any {
	v, _ := m[key].(map[string]any)
	return v
}

func subList(m map[string]any, key string) []map[string]any {
	raw, _ := m[key].([]any)
	if len(raw) == 0 {
		return nil
	}
	out := make([]map[string]any, 0, len(raw))
	for _, item := range raw {
		if schema, ok := item.(map[string]any); ok {
			out = append(out, schema)
		}
	}
	return out
}
