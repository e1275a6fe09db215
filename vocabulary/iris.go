// Package vocabulary provides semantic vocabulary definitions and IRI
// handling for the stype annotation: expansion of compact prefix:local
// notation against the known-prefix table, namespace extraction for lazy
// ontology loading, and the standard predicate IRIs used for hierarchy
// traversal.
package vocabulary

import (
	"strings"
	"sync"
)

// Well-known namespace base IRIs.
const (
	QuantityKindBase = "http://qudt.org/vocab/quantitykind/"
	QudtBase         = "http://qudt.org/schema/qudt/"
	SkosBase         = "http://www.w3.org/2004/02/skos/core#"
	FoafBase         = "http://xmlns.com/foaf/0.1/"
	ExampleBase      = "http://example.org/"
)

// Hierarchy predicates. Both are transitive by convention: a concept is a
// subtype of everything reachable through either relation.
const (
	// SkosBroader relates a concept to a more general concept.
	SkosBroader = SkosBase + "broader"

	// RdfsSubClassOf relates a class to its superclass.
	RdfsSubClassOf = "http://www.w3.org/2000/01/rdf-schema#subClassOf"
)

// HierarchyPredicates returns the predicate IRIs composed for subtype
// reachability, in preference order.
func HierarchyPredicates() []string {
	return []string{SkosBroader, RdfsSubClassOf}
}

var (
	prefixMu sync.RWMutex
	prefixes = map[string]string{
		"quantitykind": QuantityKindBase,
		"qudt":         QudtBase,
		"skos":         SkosBase,
		"foaf":         FoafBase,
		"ex":           ExampleBase,
	}
)

// RegisterPrefix adds or overrides a compact-notation prefix. Intended for
// application setup; the built-in table covers the standard vocabularies.
func RegisterPrefix(prefix, base string) {
	if prefix == "" || base == "" {
		return
	}
	prefixMu.Lock()
	defer prefixMu.Unlock()
	prefixes[prefix] = base
}

// KnownPrefixes returns a copy of the current prefix table.
func KnownPrefixes() map[string]string {
	prefixMu.RLock()
	defer prefixMu.RUnlock()
	out := make(map[string]string, len(prefixes))
	for k, v := range prefixes {
		out[k] = v
	}
	return out
}

// NormalizeIRI expands a semantic type value to a full IRI.
//
// Full http/https IRIs pass through unchanged. Compact notation
// ("quantitykind:Temperature") is expanded against the known-prefix table.
// Unknown prefixes and bare identifiers are returned unchanged so that they
// still participate in self-reflexive comparison.
func NormalizeIRI(stype string) string {
	if stype == "" {
		return stype
	}
	if strings.HasPrefix(stype, "http://") || strings.HasPrefix(stype, "https://") {
		return stype
	}

	prefix, local, found := strings.Cut(stype, ":")
	if !found || local == "" {
		return stype
	}

	prefixMu.RLock()
	base, ok := prefixes[prefix]
	prefixMu.RUnlock()
	if !ok {
		return stype
	}
	return base + local
}

// Namespace extracts the namespace portion of a full IRI: everything up to
// and including the last '#' or '/'. Returns empty string for values that
// are not full IRIs, which excludes them from lazy namespace fetching.
func Namespace(iri string) string {
	if !strings.HasPrefix(iri, "http://") && !strings.HasPrefix(iri, "https://") {
		return ""
	}
	if idx := strings.LastIndex(iri, "#"); idx >= 0 {
		return iri[:idx+1]
	}
	if idx := strings.LastIndex(iri, "/"); idx > len("https:/") {
		return iri[:idx+1]
	}
	return ""
}
