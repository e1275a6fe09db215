// Package graph provides the concept-hierarchy store backing semantic type
// resolution: an in-memory triple store, a bounded transitive path query,
// and a loader for fetching ontology sources over HTTP or from disk.
package graph

import (
	"sort"
	"sync"
)

// Triple is one RDF-style statement.
type Triple struct {
	Subject   string
	Predicate string
	Object    string
}

// Store is the minimal read/write surface the resolver needs. Objects must
// return the direct objects of (subject, predicate) statements; Generation
// must change whenever the store gains triples so dependent caches can
// invalidate.
type Store interface {
	Add(t Triple)
	Objects(subject, predicate string) []string
	Len() int
	Generation() uint64
}

// TransitivePather is an optional Store capability: answering reachability
// over a set of predicates in a single query. Stores without it fall back to
// caller-side traversal.
type TransitivePather interface {
	PathExists(start, goal string, predicates []string) (bool, error)
}

// maxTraversalNodes bounds a single path query. The visited set already
// guarantees termination on cyclic data; the node budget keeps adversarial
// graphs from consuming unbounded memory.
const maxTraversalNodes = 100_000

// Graph is a thread-safe in-memory triple store indexed by subject and
// predicate.
type Graph struct {
	mu         sync.RWMutex
	triples    map[string]map[string][]string // subject → predicate → objects
	count      int
	generation uint64
}

// New creates an empty graph.
func New() *Graph {
	return &Graph{triples: make(map[string]map[string][]string)}
}

// Add inserts a triple. Duplicate triples are ignored.
func (g *Graph) Add(t Triple) {
	if t.Subject == "" || t.Predicate == "" || t.Object == "" {
		return
	}
	g.mu.Lock()
	defer g.mu.Unlock()

	preds, ok := g.triples[t.Subject]
	if !ok {
		preds = make(map[string][]string)
		g.triples[t.Subject] = preds
	}
	for _, o := range preds[t.Predicate] {
		if o == t.Object {
			return
		}
	}
	preds[t.Predicate] = append(preds[t.Predicate], t.Object)
	g.count++
	g.generation++
}

// AddAll inserts a batch of triples.
func (g *Graph) AddAll(triples []Triple) {
	for _, t := range triples {
		g.Add(t)
	}
}

// Objects returns the direct objects of (subject, predicate) statements.
func (g *Graph) Objects(subject, predicate string) []string {
	g.mu.RLock()
	defer g.mu.RUnlock()

	preds, ok := g.triples[subject]
	if !ok {
		return nil
	}
	objs := preds[predicate]
	if len(objs) == 0 {
		return nil
	}
	out := make([]string, len(objs))
	copy(out, objs)
	return out
}

// Subjects returns all subjects present in the graph, sorted.
func (g *Graph) Subjects() []string {
	g.mu.RLock()
	defer g.mu.RUnlock()

	out := make([]string, 0, len(g.triples))
	for s := range g.triples {
		out = append(out, s)
	}
	sort.Strings(out)
	return out
}

// Len returns the number of stored triples.
func (g *Graph) Len() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.count
}

// Generation returns a counter that changes whenever the graph gains triples.
func (g *Graph) Generation() uint64 {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.generation
}

// PathExists reports whether goal is reachable from start by following any
// of the given predicates, in any number of hops. Breadth-first with a
// visited set, so cyclic relation data terminates and cannot fabricate
// reachability beyond genuinely connected pairs.
func (g *Graph) PathExists(start, goal string, predicates []string) (bool, error) {
	if start == goal {
		return true, nil
	}

	visited := map[string]bool{}
	queue := []string{start}
	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]
		if visited[current] {
			continue
		}
		visited[current] = true
		if len(visited) > maxTraversalNodes {
			return false, nil
		}

		for _, pred := range predicates {
			for _, obj := range g.Objects(current, pred) {
				if obj == goal {
					return true, nil
				}
				if !visited[obj] {
					queue = append(queue, obj)
				}
			}
		}
	}
	return false, nil
}
