// Package semantic implements concept-level compatibility for stype
// annotations: a cached hierarchy resolver over an ontology graph and a
// compatibility checker that walks raw schema documents before structural
// comparison.
package semantic

import (
	"context"
	"log/slog"
	"sync"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/c360/semschema/errors"
	"github.com/c360/semschema/graph"
	"github.com/c360/semschema/pkg/cache"
	"github.com/c360/semschema/vocabulary"
)

// resolverState tracks how far the resolver has progressed through its
// lifecycle. The transitive-support probe runs once per graph generation.
type resolverState int

const (
	// stateUninitialized means no graph is attached. Every query degrades
	// to identity comparison.
	stateUninitialized resolverState = iota

	// stateReady means a graph is attached but the store's transitive
	// query capability has not been probed yet.
	stateReady

	// stateTested means the capability probe ran; supportsTransitive is
	// valid until the graph generation changes.
	stateTested
)

// Resolver answers "is concept A a subtype of concept B" against an ontology
// graph. Results are memoized per normalized pair; the cache and the probed
// transitive capability are invalidated whenever the graph gains triples.
//
// The zero value is not usable; construct with NewResolver.
type Resolver struct {
	mu sync.Mutex

	store   graph.Store
	results cache.Cache[bool]
	logger  *slog.Logger

	state              resolverState
	supportsTransitive bool
	generation         uint64

	// Lazy loading: namespaces are fetched at most once per process, and a
	// failed fetch still marks the namespace so it is never retried.
	lazy    bool
	loader  *graph.Loader
	fetched map[string]bool

	metricsReg prometheus.Registerer
}

// ResolverOption configures a Resolver.
type ResolverOption func(*Resolver)

// WithGraph attaches the ontology store the resolver queries.
func WithGraph(store graph.Store) ResolverOption {
	return func(r *Resolver) {
		r.store = store
	}
}

// WithLazyLoad enables on-demand fetching of concept namespaces through the
// given loader. The store must be a *graph.Graph or otherwise accept
// AddAll-style growth through its Add method.
func WithLazyLoad(loader *graph.Loader) ResolverOption {
	return func(r *Resolver) {
		r.lazy = loader != nil
		r.loader = loader
	}
}

// WithResolverLogger sets the resolver's logger.
func WithResolverLogger(logger *slog.Logger) ResolverOption {
	return func(r *Resolver) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// WithMetricsRegistry exposes the result cache's statistics as Prometheus
// metrics on the given registry.
func WithMetricsRegistry(reg prometheus.Registerer) ResolverOption {
	return func(r *Resolver) {
		r.metricsReg = reg
	}
}

func (r *Resolver) applyMetrics() []cache.Option[bool] {
	if r.metricsReg == nil {
		return nil
	}
	return []cache.Option[bool]{cache.WithMetrics[bool](r.metricsReg, "resolver")}
}

// NewResolver creates a resolver. Without WithGraph the resolver stays
// uninitialized and answers only identity queries.
func NewResolver(opts ...ResolverOption) (*Resolver, error) {
	r := &Resolver{
		logger:  slog.Default(),
		fetched: make(map[string]bool),
	}
	for _, opt := range opts {
		opt(r)
	}

	results, err := cache.NewSimple[bool](r.applyMetrics()...)
	if err != nil {
		return nil, errors.Wrap(err, "semantic", "NewResolver", "result cache setup")
	}
	r.results = results

	if r.store != nil {
		r.state = stateReady
		r.generation = r.store.Generation()
	}
	return r, nil
}

// Initialized reports whether an ontology graph is attached.
func (r *Resolver) Initialized() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state != stateUninitialized
}

// Stats returns the result cache statistics.
func (r *Resolver) Stats() *cache.Statistics {
	return r.results.Stats()
}

// AddRelationship records narrower skos:broader broader in the attached
// graph. Intended for tests and programmatic ontology setup. The result
// cache is cleared because previously negative answers may now be positive.
func (r *Resolver) AddRelationship(narrower, broader string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.store == nil {
		return
	}
	r.store.Add(graph.Triple{
		Subject:   vocabulary.NormalizeIRI(narrower),
		Predicate: vocabulary.SkosBroader,
		Object:    vocabulary.NormalizeIRI(broader),
	})
	r.invalidateLocked()
}

// invalidateLocked drops memoized results and forces a capability re-probe.
// Caller holds r.mu.
func (r *Resolver) invalidateLocked() {
	_ = r.results.Clear()
	if r.state == stateTested {
		r.state = stateReady
	}
	if r.store != nil {
		r.generation = r.store.Generation()
	}
}

// IsSubtypeOf reports whether narrower is the same concept as broader or
// reachable from it through the hierarchy predicates. Identity always holds,
// even for concepts absent from the graph. Without an attached graph only
// identity holds.
func (r *Resolver) IsSubtypeOf(narrower, broader string) bool {
	n := vocabulary.NormalizeIRI(narrower)
	b := vocabulary.NormalizeIRI(broader)
	if n == b {
		return true
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.state == stateUninitialized {
		return false
	}

	if gen := r.store.Generation(); gen != r.generation {
		r.invalidateLocked()
	}

	r.maybeFetchLocked(n)
	r.maybeFetchLocked(b)

	key := n + "\x00" + b
	if result, ok := r.results.Get(key); ok {
		return result
	}

	result := r.queryLocked(n, b)
	if _, err := r.results.Set(key, result); err != nil {
		r.logger.Warn("resolver cache set failed", "error", err)
	}
	return result
}

// queryLocked runs one reachability query, probing the store's transitive
// capability on first use. Caller holds r.mu.
func (r *Resolver) queryLocked(narrower, broader string) bool {
	predicates := vocabulary.HierarchyPredicates()

	if r.state == stateReady {
		_, r.supportsTransitive = r.store.(graph.TransitivePather)
		r.state = stateTested
		r.logger.Debug("transitive query capability probed",
			"supported", r.supportsTransitive)
	}

	if r.supportsTransitive {
		pather := r.store.(graph.TransitivePather)
		ok, err := pather.PathExists(narrower, broader, predicates)
		if err == nil {
			return ok
		}
		// Failed transitive queries fall back to direct traversal for the
		// remainder of this generation.
		r.logger.Warn("transitive query failed, falling back to traversal", "error", err)
		r.supportsTransitive = false
	}

	return r.traverseLocked(narrower, broader, predicates)
}

// traverseLocked is the breadth-first fallback over direct Objects lookups.
// Caller holds r.mu.
func (r *Resolver) traverseLocked(start, goal string, predicates []string) bool {
	visited := map[string]bool{}
	queue := []string{start}
	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]
		if visited[current] {
			continue
		}
		visited[current] = true

		for _, pred := range predicates {
			for _, obj := range r.store.Objects(current, pred) {
				if obj == goal {
					return true
				}
				if !visited[obj] {
					queue = append(queue, obj)
				}
			}
		}
	}
	return false
}

// maybeFetchLocked fetches the namespace of iri once if lazy loading is on.
// The namespace is marked fetched whether or not the fetch succeeds, and the
// result cache is invalidated after a successful merge. Caller holds r.mu.
func (r *Resolver) maybeFetchLocked(iri string) {
	if !r.lazy || r.loader == nil {
		return
	}
	ns := vocabulary.Namespace(iri)
	if ns == "" || r.fetched[ns] {
		return
	}
	r.fetched[ns] = true

	g, ok := r.store.(*graph.Graph)
	if !ok {
		return
	}
	added := r.loader.LoadAll(context.Background(), g, []string{ns})
	if added > 0 {
		r.invalidateLocked()
	}
	r.logger.Info("lazy namespace fetch", "namespace", ns, "triples", added)
}
