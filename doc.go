// Package semschema decides structural and semantic subtyping between JSON
// Schema documents: whether every instance accepted by one schema is
// accepted by another, and the meet (most restrictive common) and join
// (most permissive common) of two schemas.
//
// # Two layers
//
// Structural comparison converts each document into a canonical per-kind
// normal form (package canonical) and runs per-kind decision procedures:
// interval arithmetic for numbers, automaton-based regular-language algebra
// for strings, positional and structural comparison for arrays and objects.
//
// Semantic comparison (package semantic) interprets the non-standard stype
// keyword, a concept IRI attached to a schema node, against an externally
// loaded ontology graph (package graph). A schema annotated with a narrower
// concept is a semantic subtype of one annotated with a broader concept.
// Both layers combine in the Checker: semantic incompatibility
// short-circuits to "not a subschema" (or the Bottom schema for Meet)
// before any structural work.
//
// # Usage
//
//	g := graph.New()
//	loader := graph.NewLoader()
//	loader.LoadAll(ctx, g, []string{"ontology.ttl"})
//
//	resolver, _ := semantic.NewResolver(semantic.WithGraph(g))
//	checker, _ := semschema.New(semschema.WithResolver(resolver))
//
//	ok, err := checker.IsSubschema(lhs, rhs)
//
// The package-level IsSubschema, IsEquivalent, Meet and Join operate on a
// shared default Checker configured through package config.
package semschema
