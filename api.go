package semschema

import (
	"context"
	"log/slog"
	"sync"

	"github.com/c360/semschema/canonical"
	"github.com/c360/semschema/config"
	"github.com/c360/semschema/errors"
	"github.com/c360/semschema/graph"
	"github.com/c360/semschema/semantic"
)

// Checker runs the subtyping operations with one settings view and one
// semantic resolver. Construct with New; the zero value is not usable.
// Checkers are safe for concurrent use: the structural algebra is pure and
// the resolver serializes its own state.
type Checker struct {
	settings *config.SafeSettings
	resolver *semantic.Resolver
	logger   *slog.Logger
}

// Option configures a Checker.
type Option func(*Checker)

// WithSettings uses the given settings instead of the process-wide default.
func WithSettings(settings *config.SafeSettings) Option {
	return func(c *Checker) {
		if settings != nil {
			c.settings = settings
		}
	}
}

// WithResolver attaches the semantic resolver consulted for stype
// annotations. Without one, annotations compare by identity only.
func WithResolver(resolver *semantic.Resolver) Option {
	return func(c *Checker) {
		if resolver != nil {
			c.resolver = resolver
		}
	}
}

// WithLogger sets the checker's logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Checker) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// New creates a Checker.
func New(opts ...Option) (*Checker, error) {
	c := &Checker{
		settings: config.Default(),
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.resolver == nil {
		opts := []semantic.ResolverOption{semantic.WithResolverLogger(c.logger)}
		if settings := c.settings.Get(); len(settings.GraphSources) > 0 {
			g := graph.New()
			loader := graph.NewLoader(
				graph.WithLogger(c.logger),
				graph.WithCacheDir(settings.CacheDir),
			)
			added := loader.LoadAll(context.Background(), g, settings.GraphSources)
			c.logger.Info("ontology graph loaded from settings",
				"sources", len(settings.GraphSources), "triples", added)
			opts = append(opts, semantic.WithGraph(g))
		}
		resolver, err := semantic.NewResolver(opts...)
		if err != nil {
			return nil, errors.Wrap(err, "semschema", "New", "resolver setup")
		}
		c.resolver = resolver
	}
	return c, nil
}

// IsSubschema reports whether every instance accepted by a is accepted by b.
// With semantic reasoning enabled, a semantic incompatibility returns false
// without structural comparison.
func (c *Checker) IsSubschema(a, b map[string]any) (bool, error) {
	settings := c.settings.Get()

	if settings.SemanticReasoning {
		ok, err := semantic.CompatibleDepth(a, b, c.resolver, settings.DepthBudget())
		if err != nil {
			return false, err
		}
		if !ok {
			c.debugf(settings, "semantically incompatible")
			return false, nil
		}
	}

	ca, cb, err := c.canonicalizePair(a, b, settings)
	if err != nil {
		return false, err
	}
	return ca.Subtype(cb), nil
}

// IsEquivalent reports mutual subtyping. With semantic reasoning enabled,
// both documents must agree on annotation presence and their root concepts
// must be mutually reachable.
func (c *Checker) IsEquivalent(a, b map[string]any) (bool, error) {
	settings := c.settings.Get()

	if settings.SemanticReasoning {
		forward, err := semantic.CompatibleDepth(a, b, c.resolver, settings.DepthBudget())
		if err != nil {
			return false, err
		}
		backward, err := semantic.CompatibleDepth(b, a, c.resolver, settings.DepthBudget())
		if err != nil {
			return false, err
		}
		if !forward || !backward {
			return false, nil
		}
		if !semantic.EquivalentStypes(semantic.Stype(a), semantic.Stype(b), c.resolver) {
			return false, nil
		}
	}

	ca, cb, err := c.canonicalizePair(a, b, settings)
	if err != nil {
		return false, err
	}
	return ca.Equivalent(cb), nil
}

// Meet returns the most restrictive schema admitting only instances both a
// and b admit. Semantic incompatibility collapses the result to the Bottom
// schema. The result carries the narrower of the two annotations when the
// resolver can order them.
func (c *Checker) Meet(a, b map[string]any) (map[string]any, error) {
	settings := c.settings.Get()

	var resultStype string
	if settings.SemanticReasoning {
		ok, err := semantic.CompatibleDepth(a, b, c.resolver, settings.DepthBudget())
		if err != nil {
			return nil, err
		}
		if !ok {
			c.debugf(settings, "semantically incompatible, meet is bottom")
			return canonical.Render(canonical.Bottom()), nil
		}
		resultStype = semantic.MeetStype(semantic.Stype(a), semantic.Stype(b), c.resolver)
		if resultStype == "" && (semantic.Stype(a) != "" || semantic.Stype(b) != "") {
			c.logger.Debug("meet annotations incomparable, omitting",
				"lhs", semantic.Stype(a), "rhs", semantic.Stype(b))
		}
	}

	ca, cb, err := c.canonicalizePair(a, b, settings)
	if err != nil {
		return nil, err
	}
	result := ca.Meet(cb)
	if result.IsBottom() && settings.WarnUninhabited {
		c.logger.Warn("meet produced an uninhabited schema")
	}
	result.Stype = resultStype
	return canonical.Render(result), nil
}

// Join returns the most permissive schema admitting every instance either a
// or b admits. The result carries the broader annotation only when both
// sides are annotated and the resolver can order them.
func (c *Checker) Join(a, b map[string]any) (map[string]any, error) {
	settings := c.settings.Get()

	var resultStype string
	if settings.SemanticReasoning {
		resultStype = semantic.JoinStype(semantic.Stype(a), semantic.Stype(b), c.resolver)
	}

	ca, cb, err := c.canonicalizePair(a, b, settings)
	if err != nil {
		return nil, err
	}
	result := ca.Join(cb)
	result.Stype = resultStype
	return canonical.Render(result), nil
}

func (c *Checker) canonicalizePair(a, b map[string]any, settings config.Settings) (*canonical.Schema, *canonical.Schema, error) {
	budget := settings.DepthBudget()
	ca, err := canonical.Canonicalize(a, errors.SideLeft, budget)
	if err != nil {
		return nil, nil, err
	}
	cb, err := canonical.Canonicalize(b, errors.SideRight, budget)
	if err != nil {
		return nil, nil, err
	}
	return ca, cb, nil
}

func (c *Checker) debugf(settings config.Settings, msg string, args ...any) {
	if settings.Debug {
		c.logger.Debug(msg, args...)
	}
}

var (
	defaultChecker     *Checker
	defaultCheckerErr  error
	defaultCheckerOnce sync.Once
)

func getDefault() (*Checker, error) {
	defaultCheckerOnce.Do(func() {
		defaultChecker, defaultCheckerErr = New()
	})
	return defaultChecker, defaultCheckerErr
}

// IsSubschema runs Checker.IsSubschema on the shared default checker.
func IsSubschema(a, b map[string]any) (bool, error) {
	c, err := getDefault()
	if err != nil {
		return false, err
	}
	return c.IsSubschema(a, b)
}

// IsEquivalent runs Checker.IsEquivalent on the shared default checker.
func IsEquivalent(a, b map[string]any) (bool, error) {
	c, err := getDefault()
	if err != nil {
		return false, err
	}
	return c.IsEquivalent(a, b)
}

// Meet runs Checker.Meet on the shared default checker.
func Meet(a, b map[string]any) (map[string]any, error) {
	c, err := getDefault()
	if err != nil {
		return nil, err
	}
	return c.Meet(a, b)
}

// Join runs Checker.Join on the shared default checker.
func Join(a, b map[string]any) (map[string]any, error) {
	c, err := getDefault()
	if err != nil {
		return nil, err
	}
	return c.Join(a, b)
}
