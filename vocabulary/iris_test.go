package vocabulary

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeIRI(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"empty", "", ""},
		{"full http IRI unchanged", "http://qudt.org/vocab/quantitykind/Temperature", "http://qudt.org/vocab/quantitykind/Temperature"},
		{"full https IRI unchanged", "https://schema.org/Person", "https://schema.org/Person"},
		{"quantitykind prefix", "quantitykind:Temperature", "http://qudt.org/vocab/quantitykind/Temperature"},
		{"qudt prefix", "qudt:Quantity", "http://qudt.org/schema/qudt/Quantity"},
		{"skos prefix", "skos:Concept", "http://www.w3.org/2004/02/skos/core#Concept"},
		{"foaf prefix", "foaf:Person", "http://xmlns.com/foaf/0.1/Person"},
		{"ex prefix", "ex:Employee", "http://example.org/Employee"},
		{"unknown prefix unchanged", "custom:Thing", "custom:Thing"},
		{"bare identifier unchanged", "Temperature", "Temperature"},
		{"empty local part unchanged", "foaf:", "foaf:"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeIRI(tt.input))
		})
	}
}

func TestRegisterPrefix(t *testing.T) {
	RegisterPrefix("unit", "http://qudt.org/vocab/unit/")
	assert.Equal(t, "http://qudt.org/vocab/unit/Kelvin", NormalizeIRI("unit:Kelvin"))

	// Empty prefix or base is ignored
	RegisterPrefix("", "http://nowhere.example/")
	RegisterPrefix("nowhere", "")
	assert.Equal(t, "nowhere:X", NormalizeIRI("nowhere:X"))
}

func TestKnownPrefixesIsACopy(t *testing.T) {
	got := KnownPrefixes()
	got["skos"] = "mutated"
	assert.Equal(t, SkosBase, KnownPrefixes()["skos"])
}

func TestNamespace(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"http://qudt.org/vocab/quantitykind/Temperature", "http://qudt.org/vocab/quantitykind/"},
		{"http://www.w3.org/2004/02/skos/core#Concept", "http://www.w3.org/2004/02/skos/core#"},
		{"http://xmlns.com/foaf/0.1/Person", "http://xmlns.com/foaf/0.1/"},
		{"custom:Thing", ""},
		{"Temperature", ""},
		{"http://", ""},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, Namespace(tt.input), "input %q", tt.input)
	}
}

func TestHierarchyPredicates(t *testing.T) {
	preds := HierarchyPredicates()
	assert.Equal(t, []string{SkosBroader, RdfsSubClassOf}, preds)
}
