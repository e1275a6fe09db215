package semschema

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/c360/semschema/config"
	"github.com/c360/semschema/errors"
	"github.com/c360/semschema/graph"
	"github.com/c360/semschema/semantic"
	"github.com/c360/semschema/vocabulary"
)

// newEmployeeChecker wires a checker against a small ontology where
// ex:Employee is narrower than foaf:Person.
func newEmployeeChecker(t *testing.T) *Checker {
	t.Helper()
	g := graph.New()
	g.Add(graph.Triple{
		Subject:   "http://example.org/Employee",
		Predicate: vocabulary.SkosBroader,
		Object:    "http://xmlns.com/foaf/0.1/Person",
	})
	resolver, err := semantic.NewResolver(semantic.WithGraph(g))
	require.NoError(t, err)

	checker, err := New(
		WithResolver(resolver),
		WithSettings(config.NewSafeSettings(config.NewSettings())),
	)
	require.NoError(t, err)
	return checker
}

func newStructuralChecker(t *testing.T) *Checker {
	t.Helper()
	settings := config.NewSettings()
	settings.SemanticReasoning = false
	checker, err := New(WithSettings(config.NewSafeSettings(settings)))
	require.NoError(t, err)
	return checker
}

func TestIsSubschemaStructural(t *testing.T) {
	c := newEmployeeChecker(t)

	narrow := map[string]any{"type": "number", "minimum": float64(10), "maximum": float64(30)}
	wide := map[string]any{"type": "number", "minimum": float64(0), "maximum": float64(100)}

	ok, err := c.IsSubschema(narrow, wide)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = c.IsSubschema(wide, narrow)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestIsSubschemaSemanticSpecificity(t *testing.T) {
	c := newEmployeeChecker(t)

	employee := map[string]any{"type": "object", "stype": "ex:Employee"}
	person := map[string]any{"type": "object", "stype": "foaf:Person"}

	ok, err := c.IsSubschema(employee, person)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = c.IsSubschema(person, employee)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestIsSubschemaSemanticDisabled(t *testing.T) {
	c := newStructuralChecker(t)

	employee := map[string]any{"type": "object", "stype": "ex:Employee"}
	person := map[string]any{"type": "object", "stype": "foaf:Person"}

	// Structurally identical, so both directions hold once stype is ignored
	for _, pair := range [][2]map[string]any{{employee, person}, {person, employee}} {
		ok, err := c.IsSubschema(pair[0], pair[1])
		require.NoError(t, err)
		assert.True(t, ok)
	}
}

func TestIsSubschemaUnrelatedConcepts(t *testing.T) {
	c := newEmployeeChecker(t)

	temp := map[string]any{"type": "number", "stype": "quantitykind:Temperature"}
	pressure := map[string]any{"type": "number", "stype": "quantitykind:Pressure"}

	for _, pair := range [][2]map[string]any{{temp, pressure}, {pressure, temp}} {
		ok, err := c.IsSubschema(pair[0], pair[1])
		require.NoError(t, err)
		assert.False(t, ok, "undeclared concepts relate only to themselves")
	}

	ok, err := c.IsSubschema(temp, temp)
	require.NoError(t, err)
	assert.True(t, ok, "self-reflexivity holds for unknown concepts")
}

func TestIsSubschemaAnnotationPresence(t *testing.T) {
	c := newEmployeeChecker(t)

	plain := map[string]any{"type": "object"}
	annotated := map[string]any{"type": "object", "stype": "foaf:Person"}

	ok, err := c.IsSubschema(annotated, plain)
	require.NoError(t, err)
	assert.True(t, ok, "annotated side is more specific")

	ok, err = c.IsSubschema(plain, annotated)
	require.NoError(t, err)
	assert.False(t, ok, "unannotated side cannot promise a required concept")
}

func TestIsEquivalent(t *testing.T) {
	c := newEmployeeChecker(t)

	a := map[string]any{"type": "number", "minimum": float64(5), "exclusiveMinimum": true}
	b := map[string]any{"type": "number", "exclusiveMinimum": float64(5)}
	ok, err := c.IsEquivalent(a, b)
	require.NoError(t, err)
	assert.True(t, ok)

	// Equivalence demands annotation presence parity
	annotated := map[string]any{"type": "object", "stype": "ex:Employee"}
	plain := map[string]any{"type": "object"}
	ok, err = c.IsEquivalent(annotated, plain)
	require.NoError(t, err)
	assert.False(t, ok)

	// Same concept through compact and expanded notation
	expanded := map[string]any{"type": "object", "stype": "http://example.org/Employee"}
	compact := map[string]any{"type": "object", "stype": "ex:Employee"}
	ok, err = c.IsEquivalent(expanded, compact)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestMeetStructural(t *testing.T) {
	c := newEmployeeChecker(t)

	a := map[string]any{"type": "number", "minimum": float64(0), "maximum": float64(50)}
	b := map[string]any{"type": "number", "minimum": float64(25), "maximum": float64(100)}

	result, err := c.Meet(a, b)
	require.NoError(t, err)
	assert.Equal(t, int64(25), result["minimum"])
	assert.Equal(t, int64(50), result["maximum"])

	// The meet sits below both operands
	for _, operand := range []map[string]any{a, b} {
		ok, err := c.IsSubschema(result, operand)
		require.NoError(t, err)
		assert.True(t, ok)
	}
}

func TestMeetSemanticIncompatibilityIsBottom(t *testing.T) {
	c := newEmployeeChecker(t)

	temp := map[string]any{"type": "number", "stype": "quantitykind:Temperature"}
	pressure := map[string]any{"type": "number", "stype": "quantitykind:Pressure"}

	result, err := c.Meet(temp, pressure)
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"not": map[string]any{}}, result)
}

func TestMeetPicksNarrowerAnnotation(t *testing.T) {
	c := newEmployeeChecker(t)

	employee := map[string]any{"type": "object", "stype": "ex:Employee"}
	person := map[string]any{"type": "object", "stype": "foaf:Person"}

	result, err := c.Meet(employee, person)
	require.NoError(t, err)
	assert.Equal(t, "ex:Employee", result["stype"])
}

func TestJoin(t *testing.T) {
	c := newEmployeeChecker(t)

	a := map[string]any{"type": "number", "minimum": float64(0), "maximum": float64(10)}
	b := map[string]any{"type": "string"}

	result, err := c.Join(a, b)
	require.NoError(t, err)

	for _, operand := range []map[string]any{a, b} {
		ok, err := c.IsSubschema(operand, result)
		require.NoError(t, err)
		assert.True(t, ok, "operand below join")
	}
}

func TestJoinAnnotations(t *testing.T) {
	c := newEmployeeChecker(t)

	employee := map[string]any{"type": "object", "stype": "ex:Employee"}
	person := map[string]any{"type": "object", "stype": "foaf:Person"}
	plain := map[string]any{"type": "object"}

	result, err := c.Join(employee, person)
	require.NoError(t, err)
	assert.Equal(t, "foaf:Person", result["stype"], "broader concept wins")

	result, err = c.Join(employee, plain)
	require.NoError(t, err)
	_, present := result["stype"]
	assert.False(t, present, "one-sided annotation must not survive a join")
}

func TestOperationsRejectCyclicDocuments(t *testing.T) {
	c := newStructuralChecker(t)

	cyclic := map[string]any{"type": "object"}
	cyclic["properties"] = map[string]any{"self": cyclic}
	plain := map[string]any{"type": "object"}

	_, err := c.IsSubschema(cyclic, plain)
	require.Error(t, err)
	assert.ErrorIs(t, err, errors.ErrRecursiveRef)
	assert.True(t, errors.IsInvalid(err))
}

func TestOperationsRejectMalformedDocuments(t *testing.T) {
	c := newStructuralChecker(t)

	bad := map[string]any{"type": "number", "minimum": "ten"}
	_, err := c.IsSubschema(bad, map[string]any{})
	require.Error(t, err)
	assert.ErrorIs(t, err, errors.ErrInvalidSchema)
}

func TestPackageLevelOperations(t *testing.T) {
	ok, err := IsSubschema(
		map[string]any{"type": "integer"},
		map[string]any{"type": "number"},
	)
	require.NoError(t, err)
	assert.True(t, ok)

	result, err := Join(map[string]any{"type": "null"}, map[string]any{"type": "boolean"})
	require.NoError(t, err)
	assert.Equal(t, []any{"null", "boolean"}, result["type"])
}

func TestNewLoadsGraphSourcesFromSettings(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "company.ttl")
	onto := "@prefix skos: <http://www.w3.org/2004/02/skos/core#> .\n" +
		"@prefix ex: <http://example.org/> .\n" +
		"@prefix foaf: <http://xmlns.com/foaf/0.1/> .\n" +
		"ex:Employee skos:broader foaf:Person .\n"
	require.NoError(t, os.WriteFile(path, []byte(onto), 0o644))

	settings := config.NewSettings()
	settings.GraphSources = []string{path}
	c, err := New(WithSettings(config.NewSafeSettings(settings)))
	require.NoError(t, err)

	ok, err := c.IsSubschema(
		map[string]any{"type": "object", "stype": "ex:Employee"},
		map[string]any{"type": "object", "stype": "foaf:Person"},
	)
	require.NoError(t, err)
	assert.True(t, ok, "resolver built from settings graph sources")
}

func TestNestedSemanticProperties(t *testing.T) {
	c := newEmployeeChecker(t)

	a := map[string]any{
		"type": "object",
		"properties": map[string]any{
			"owner": map[string]any{"type": "string", "stype": "ex:Employee"},
		},
	}
	b := map[string]any{
		"type": "object",
		"properties": map[string]any{
			"owner": map[string]any{"type": "string", "stype": "foaf:Person"},
		},
	}

	ok, err := c.IsSubschema(a, b)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = c.IsSubschema(b, a)
	require.NoError(t, err)
	assert.False(t, ok)
}
