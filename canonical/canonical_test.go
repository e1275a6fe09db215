package canonical

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/c360/semschema/config"
	"github.com/c360/semschema/errors"
)

func mustParse(t *testing.T, doc map[string]any) *Schema {
	t.Helper()
	s, err := Canonicalize(doc, errors.SideLeft, config.DefaultMaxCanonicalizeDepth)
	require.NoError(t, err)
	return s
}

func subtypeOf(t *testing.T, a, b map[string]any) bool {
	t.Helper()
	return mustParse(t, a).Subtype(mustParse(t, b))
}

func TestCanonicalizeReflexivity(t *testing.T) {
	docs := []map[string]any{
		{},
		{"type": "null"},
		{"type": "number", "minimum": float64(10), "maximum": float64(30)},
		{"type": "string", "pattern": "^[a-z]+$", "minLength": float64(1)},
		{"type": "array", "items": map[string]any{"type": "integer"}},
		{
			"type":                 "object",
			"properties":           map[string]any{"a": map[string]any{"type": "string"}},
			"required":             []any{"a"},
			"additionalProperties": false,
		},
		{"anyOf": []any{
			map[string]any{"type": "string"},
			map[string]any{"type": "number", "multipleOf": float64(2)},
		}},
		{"enum": []any{"red", "green", float64(3)}},
	}
	for _, doc := range docs {
		s := mustParse(t, doc)
		assert.True(t, s.Subtype(s), "must be a subtype of itself: %v", doc)
	}
}

func TestCanonicalizeNumericBounds(t *testing.T) {
	narrow := map[string]any{"type": "number", "minimum": float64(10), "maximum": float64(30)}
	wide := map[string]any{"type": "number", "minimum": float64(0), "maximum": float64(100)}

	assert.True(t, subtypeOf(t, narrow, wide))
	assert.False(t, subtypeOf(t, wide, narrow))
}

func TestCanonicalizeExclusiveBoundForms(t *testing.T) {
	// Boolean form modifies the paired bound keyword
	draft4 := map[string]any{"type": "number", "minimum": float64(5), "exclusiveMinimum": true}
	// Numeric form is a standalone bound
	draft6 := map[string]any{"type": "number", "exclusiveMinimum": float64(5)}

	a := mustParse(t, draft4)
	b := mustParse(t, draft6)
	assert.True(t, a.Equivalent(b))

	closed := map[string]any{"type": "number", "minimum": float64(5)}
	assert.True(t, subtypeOf(t, draft4, closed))
	assert.False(t, subtypeOf(t, closed, draft4))
}

func TestCanonicalizeIntegerWithinNumber(t *testing.T) {
	assert.True(t, subtypeOf(t,
		map[string]any{"type": "integer"},
		map[string]any{"type": "number"}))
	assert.False(t, subtypeOf(t,
		map[string]any{"type": "number"},
		map[string]any{"type": "integer"}))
	assert.True(t, subtypeOf(t,
		map[string]any{"type": "number", "multipleOf": float64(4)},
		map[string]any{"type": "number", "multipleOf": float64(2)}))
}

func TestCanonicalizeStringPatterns(t *testing.T) {
	assert.True(t, subtypeOf(t,
		map[string]any{"type": "string", "pattern": "^a+$"},
		map[string]any{"type": "string", "pattern": "^[a-z]+$"}))
	assert.False(t, subtypeOf(t,
		map[string]any{"type": "string", "pattern": "^[a-z]+$"},
		map[string]any{"type": "string", "pattern": "^a+$"}))

	// Length and pattern constraints compose
	assert.True(t, subtypeOf(t,
		map[string]any{"type": "string", "pattern": "^a+$", "maxLength": float64(5)},
		map[string]any{"type": "string", "maxLength": float64(10)}))
	assert.False(t, subtypeOf(t,
		map[string]any{"type": "string", "pattern": "^a+$"},
		map[string]any{"type": "string", "maxLength": float64(10)}))
}

func TestCanonicalizeFormat(t *testing.T) {
	uuid := map[string]any{"type": "string", "format": "uuid"}
	hex := map[string]any{"type": "string", "pattern": "^[0-9A-Fa-f-]+$"}

	assert.True(t, subtypeOf(t, uuid, hex))
	assert.False(t, subtypeOf(t, hex, uuid))

	// Unrecognized formats carry no constraint
	assert.True(t, subtypeOf(t,
		map[string]any{"type": "string"},
		map[string]any{"type": "string", "format": "custom-thing"}))
}

func TestCanonicalizeObjectWidth(t *testing.T) {
	closed := map[string]any{
		"type":                 "object",
		"properties":           map[string]any{"a": map[string]any{"type": "string"}},
		"additionalProperties": false,
	}
	open := map[string]any{
		"type":                 "object",
		"properties":           map[string]any{"a": map[string]any{"type": "string"}},
		"additionalProperties": true,
	}

	assert.True(t, subtypeOf(t, closed, open))
	assert.False(t, subtypeOf(t, open, closed))
}

func TestCanonicalizeObjectRequired(t *testing.T) {
	strict := map[string]any{
		"type":       "object",
		"properties": map[string]any{"a": map[string]any{"type": "string"}},
		"required":   []any{"a"},
	}
	loose := map[string]any{
		"type":       "object",
		"properties": map[string]any{"a": map[string]any{"type": "string"}},
	}

	assert.True(t, subtypeOf(t, strict, loose))
	assert.False(t, subtypeOf(t, loose, strict), "optional property cannot satisfy a required one")
}

func TestCanonicalizeObjectPropertyNarrowing(t *testing.T) {
	narrow := map[string]any{
		"type": "object",
		"properties": map[string]any{
			"n": map[string]any{"type": "integer", "minimum": float64(0)},
		},
	}
	wide := map[string]any{
		"type": "object",
		"properties": map[string]any{
			"n": map[string]any{"type": "number"},
		},
	}
	assert.True(t, subtypeOf(t, narrow, wide))
	assert.False(t, subtypeOf(t, wide, narrow))
}

func TestCanonicalizePatternProperties(t *testing.T) {
	a := map[string]any{
		"type": "object",
		"patternProperties": map[string]any{
			"^x-": map[string]any{"type": "integer"},
		},
		"additionalProperties": false,
	}
	b := map[string]any{
		"type": "object",
		"patternProperties": map[string]any{
			"^x-": map[string]any{"type": "number"},
		},
		"additionalProperties": false,
	}
	assert.True(t, subtypeOf(t, a, b))
	assert.False(t, subtypeOf(t, b, a))
}

func TestPatternPropertiesAgainstClosedObject(t *testing.T) {
	patterned := map[string]any{
		"type": "object",
		"patternProperties": map[string]any{
			"^x-": map[string]any{"type": "integer"},
		},
		"additionalProperties": false,
	}
	closed := map[string]any{
		"type":                 "object",
		"additionalProperties": false,
	}
	witness := map[string]any{
		"type":                 "object",
		"properties":           map[string]any{"x-1": map[string]any{"type": "integer"}},
		"required":             []any{"x-1"},
		"additionalProperties": false,
	}

	require.True(t, subtypeOf(t, witness, patterned))
	require.False(t, subtypeOf(t, witness, closed))
	assert.False(t, subtypeOf(t, patterned, closed),
		"pattern-matched names are rejected by the closed object")

	// A differently written but broader pattern on the wide side admits it
	wider := map[string]any{
		"type": "object",
		"patternProperties": map[string]any{
			"^x": map[string]any{"type": "number"},
		},
	}
	assert.True(t, subtypeOf(t, patterned, wider))
	assert.False(t, subtypeOf(t, wider, patterned))
}

func TestObjectLatticeLawsWithPatternProperties(t *testing.T) {
	patterned := map[string]any{
		"type": "object",
		"patternProperties": map[string]any{
			"^x-": map[string]any{"type": "integer"},
		},
		"additionalProperties": false,
	}
	closed := map[string]any{
		"type":                 "object",
		"additionalProperties": false,
	}
	open := map[string]any{
		"type": "object",
		"properties": map[string]any{
			"x-1": map[string]any{"type": "number"},
		},
	}

	for _, rawB := range []map[string]any{closed, open} {
		a, b := mustParse(t, patterned), mustParse(t, rawB)
		meet := a.Meet(b)
		join := a.Join(b)
		assert.True(t, meet.Subtype(a), "meet below a against %v", rawB)
		assert.True(t, meet.Subtype(b), "meet below b against %v", rawB)
		assert.True(t, a.Subtype(join), "a below join against %v", rawB)
		assert.True(t, b.Subtype(join), "b below join against %v", rawB)
	}

	// One-sided patterns widen the fallback of the join
	join := mustParse(t, patterned).Join(mustParse(t, closed))
	rendered := Render(join)
	add, ok := rendered["additionalProperties"].(map[string]any)
	require.True(t, ok, "join keeps pattern-matched names admissible: %v", rendered)
	assert.Equal(t, "integer", add["type"])
}

func TestCanonicalizeArrays(t *testing.T) {
	assert.True(t, subtypeOf(t,
		map[string]any{"type": "array", "items": map[string]any{"type": "integer"}, "maxItems": float64(5)},
		map[string]any{"type": "array", "items": map[string]any{"type": "number"}}))

	assert.False(t, subtypeOf(t,
		map[string]any{"type": "array", "items": map[string]any{"type": "number"}},
		map[string]any{"type": "array", "items": map[string]any{"type": "integer"}}))

	// Tuple within homogeneous
	assert.True(t, subtypeOf(t,
		map[string]any{"type": "array", "items": []any{
			map[string]any{"type": "integer"},
			map[string]any{"type": "integer", "minimum": float64(0)},
		}, "additionalItems": false},
		map[string]any{"type": "array", "items": map[string]any{"type": "number"}}))

	// Uniqueness demanded by the wide side must be guaranteed
	assert.False(t, subtypeOf(t,
		map[string]any{"type": "array"},
		map[string]any{"type": "array", "uniqueItems": true}))
}

func TestCanonicalizeEnums(t *testing.T) {
	assert.True(t, subtypeOf(t,
		map[string]any{"enum": []any{"red", "green"}},
		map[string]any{"enum": []any{"red", "green", "blue"}}))
	assert.False(t, subtypeOf(t,
		map[string]any{"enum": []any{"red", "purple"}},
		map[string]any{"enum": []any{"red", "green", "blue"}}))

	assert.True(t, subtypeOf(t,
		map[string]any{"enum": []any{float64(3), float64(5)}},
		map[string]any{"type": "integer"}))

	// Enum values restricted by the surrounding type keyword
	assert.True(t, subtypeOf(t,
		map[string]any{"type": "string", "enum": []any{"red", float64(3)}},
		map[string]any{"type": "string"}))
}

func TestCanonicalizeTypeList(t *testing.T) {
	assert.True(t, subtypeOf(t,
		map[string]any{"type": "string"},
		map[string]any{"type": []any{"string", "null"}}))
	assert.False(t, subtypeOf(t,
		map[string]any{"type": []any{"string", "null"}},
		map[string]any{"type": "string"}))

	// Untyped admits every kind
	assert.True(t, subtypeOf(t, map[string]any{"type": "boolean"}, map[string]any{}))
	assert.False(t, subtypeOf(t, map[string]any{}, map[string]any{"type": "boolean"}))
}

func TestCanonicalizeConnectives(t *testing.T) {
	allOf := map[string]any{"allOf": []any{
		map[string]any{"type": "number", "minimum": float64(0)},
		map[string]any{"type": "number", "maximum": float64(10)},
	}}
	assert.True(t, subtypeOf(t, allOf,
		map[string]any{"type": "number", "minimum": float64(-5), "maximum": float64(20)}))

	anyOf := map[string]any{"anyOf": []any{
		map[string]any{"type": "string"},
		map[string]any{"type": "null"},
	}}
	assert.True(t, subtypeOf(t, map[string]any{"type": "null"}, anyOf))
	assert.True(t, subtypeOf(t, anyOf, map[string]any{"type": []any{"string", "null", "boolean"}}))

	// oneOf relaxed to the same union
	oneOf := map[string]any{"oneOf": []any{
		map[string]any{"type": "string"},
		map[string]any{"type": "null"},
	}}
	assert.True(t, mustParse(t, anyOf).Equivalent(mustParse(t, oneOf)))
}

func TestCanonicalizeNot(t *testing.T) {
	notString := map[string]any{"not": map[string]any{"type": "string"}}
	s := mustParse(t, notString)
	assert.Nil(t, s.String)
	assert.True(t, s.Null && s.Boolean)
	require.NotNil(t, s.Number)

	bottom := mustParse(t, map[string]any{"not": map[string]any{}})
	assert.True(t, bottom.IsBottom())

	_, err := Canonicalize(map[string]any{
		"not": map[string]any{"type": "number", "minimum": float64(5)},
	}, errors.SideLeft, config.DefaultMaxCanonicalizeDepth)
	require.Error(t, err)
	assert.ErrorIs(t, err, errors.ErrUnsupportedKeyword)
}

func TestCanonicalizeRejectsUnknownKeywords(t *testing.T) {
	_, err := Canonicalize(map[string]any{"$ref": "#/definitions/x"},
		errors.SideLeft, config.DefaultMaxCanonicalizeDepth)
	require.Error(t, err)
	assert.ErrorIs(t, err, errors.ErrUnsupportedKeyword)

	_, err = Canonicalize(map[string]any{"dependencies": map[string]any{}},
		errors.SideLeft, config.DefaultMaxCanonicalizeDepth)
	assert.ErrorIs(t, err, errors.ErrUnsupportedKeyword)
}

func TestCanonicalizeCyclicDocument(t *testing.T) {
	doc := map[string]any{"type": "object"}
	props := map[string]any{}
	doc["properties"] = props
	props["self"] = doc

	_, err := Canonicalize(doc, errors.SideRight, config.DefaultMaxCanonicalizeDepth)
	require.Error(t, err)
	assert.ErrorIs(t, err, errors.ErrRecursiveRef)

	var refErr *errors.RecursiveRefError
	require.ErrorAs(t, err, &refErr)
	assert.Equal(t, errors.SideRight, refErr.Side)
}

func TestMeetJoinLatticeLaws(t *testing.T) {
	docs := []map[string]any{
		{"type": "number", "minimum": float64(0), "maximum": float64(50)},
		{"type": "number", "minimum": float64(25), "maximum": float64(100), "multipleOf": float64(5)},
		{"type": "string", "pattern": "^[a-z]+$"},
		{"type": []any{"string", "null"}},
		{
			"type":       "object",
			"properties": map[string]any{"a": map[string]any{"type": "integer"}},
			"required":   []any{"a"},
		},
	}
	for i, rawA := range docs {
		for j, rawB := range docs {
			a, b := mustParse(t, rawA), mustParse(t, rawB)
			meet := a.Meet(b)
			join := a.Join(b)
			assert.True(t, meet.Subtype(a), "meet(%d,%d) below a", i, j)
			assert.True(t, meet.Subtype(b), "meet(%d,%d) below b", i, j)
			assert.True(t, a.Subtype(join), "a below join(%d,%d)", i, j)
			assert.True(t, b.Subtype(join), "b below join(%d,%d)", i, j)
		}
	}
}

func TestTransitivity(t *testing.T) {
	a := map[string]any{"type": "integer", "minimum": float64(10), "maximum": float64(20)}
	b := map[string]any{"type": "number", "minimum": float64(0), "maximum": float64(50)}
	c := map[string]any{"type": "number"}

	require.True(t, subtypeOf(t, a, b))
	require.True(t, subtypeOf(t, b, c))
	assert.True(t, subtypeOf(t, a, c))
}

func TestRenderRoundTrip(t *testing.T) {
	docs := []map[string]any{
		{},
		{"type": "null"},
		{"type": "integer", "minimum": float64(0), "exclusiveMinimum": true, "multipleOf": float64(2)},
		{"type": "string", "pattern": "^[ab]+$", "maxLength": float64(8)},
		{"type": []any{"string", "null"}},
		{
			"type":                 "object",
			"properties":           map[string]any{"a": map[string]any{"type": "string"}},
			"required":             []any{"a"},
			"additionalProperties": false,
		},
		{"type": "array", "items": []any{map[string]any{"type": "integer"}}, "additionalItems": false},
		{"not": map[string]any{}},
	}
	for _, doc := range docs {
		first := mustParse(t, doc)
		rendered := Render(first)
		second, err := Canonicalize(rendered, errors.SideLeft, config.DefaultMaxCanonicalizeDepth)
		require.NoError(t, err, "re-parse of %v", rendered)
		assert.True(t, first.Equivalent(second), "round trip changed meaning: %v -> %v", doc, rendered)
	}
}

func TestRenderDocumentShape(t *testing.T) {
	s := mustParse(t, map[string]any{
		"type":             "integer",
		"minimum":          float64(0),
		"exclusiveMinimum": true,
		"multipleOf":       float64(2),
	})
	want := map[string]any{
		"type":             "integer",
		"minimum":          int64(0),
		"exclusiveMinimum": true,
		"multipleOf":       int64(2),
	}
	if diff := cmp.Diff(want, Render(s)); diff != "" {
		t.Errorf("rendered document mismatch (-want +got):\n%s", diff)
	}

	closed := mustParse(t, map[string]any{
		"type":                 "object",
		"properties":           map[string]any{"a": map[string]any{"type": "string"}},
		"required":             []any{"a"},
		"additionalProperties": false,
	})
	wantObj := map[string]any{
		"type":                 "object",
		"properties":           map[string]any{"a": map[string]any{"type": "string"}},
		"required":             []any{"a"},
		"additionalProperties": false,
	}
	if diff := cmp.Diff(wantObj, Render(closed)); diff != "" {
		t.Errorf("rendered object mismatch (-want +got):\n%s", diff)
	}
}

func TestRenderTopBottomForms(t *testing.T) {
	assert.Equal(t, map[string]any{}, Render(Top()))
	assert.Equal(t, map[string]any{"not": map[string]any{}}, Render(Bottom()))

	annotated := Top()
	annotated.Stype = "ex:Employee"
	assert.Equal(t, map[string]any{"stype": "ex:Employee"}, Render(annotated))
}

func TestCanonicalizeKeepsStype(t *testing.T) {
	doc := map[string]any{"type": "object", "stype": "ex:Employee"}
	s := mustParse(t, doc)
	assert.Equal(t, "ex:Employee", s.Stype)
	assert.Equal(t, "ex:Employee", Render(s)["stype"])
}
