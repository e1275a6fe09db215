// Package config holds the process-wide settings surface for the subtyping
// engine. Settings are plain values; SafeSettings adds thread-safe access.
// The package-level Default() instance backs the convenience API at the
// module root, while library users can construct a Checker with an explicit
// Settings value instead.
package config

import (
	"fmt"
	"sync"
)

// DefaultMaxCanonicalizeDepth bounds schema tree recursion during
// canonicalization. Exceeding it is reported as an unsupported recursive
// reference rather than a stack overflow.
const DefaultMaxCanonicalizeDepth = 512

// Settings represents the complete engine configuration.
type Settings struct {
	// SemanticReasoning toggles the stype/ontology layer. When false all
	// operations are purely structural and stype annotations are ignored.
	SemanticReasoning bool `json:"semantic_reasoning"`

	// Debug enables debug-level diagnostics on the engine logger.
	Debug bool `json:"debug"`

	// WarnUninhabited logs a warning whenever a meet collapses a type kind
	// to the uninhabited (Bottom) form.
	WarnUninhabited bool `json:"warn_uninhabited"`

	// CacheDir is an optional directory for cached ontology downloads.
	CacheDir string `json:"cache_dir,omitempty"`

	// GraphSources lists additional ontology source URLs or file paths to
	// load into the resolver graph.
	GraphSources []string `json:"graph_sources,omitempty"`

	// MaxCanonicalizeDepth overrides the canonicalization recursion budget.
	// Zero means DefaultMaxCanonicalizeDepth.
	MaxCanonicalizeDepth int `json:"max_canonicalize_depth,omitempty"`
}

// NewSettings returns the default engine settings: semantic reasoning on,
// diagnostics off.
func NewSettings() Settings {
	return Settings{
		SemanticReasoning: true,
	}
}

// DepthBudget returns the effective canonicalization recursion budget.
func (s Settings) DepthBudget() int {
	if s.MaxCanonicalizeDepth > 0 {
		return s.MaxCanonicalizeDepth
	}
	return DefaultMaxCanonicalizeDepth
}

// Validate checks the settings for internal consistency.
func (s Settings) Validate() error {
	if s.MaxCanonicalizeDepth < 0 {
		return fmt.Errorf("max_canonicalize_depth must not be negative, got %d", s.MaxCanonicalizeDepth)
	}
	for i, src := range s.GraphSources {
		if src == "" {
			return fmt.Errorf("graph_sources[%d] is empty", i)
		}
	}
	return nil
}

// Clone creates a deep copy of the settings.
func (s Settings) Clone() Settings {
	out := s
	if s.GraphSources != nil {
		out.GraphSources = make([]string, len(s.GraphSources))
		copy(out.GraphSources, s.GraphSources)
	}
	return out
}

// SafeSettings provides thread-safe access to settings.
type SafeSettings struct {
	mu       sync.RWMutex
	settings Settings
}

// NewSafeSettings creates a new thread-safe settings wrapper.
func NewSafeSettings(s Settings) *SafeSettings {
	return &SafeSettings{settings: s.Clone()}
}

// Get returns a copy of the current settings.
func (ss *SafeSettings) Get() Settings {
	ss.mu.RLock()
	defer ss.mu.RUnlock()
	return ss.settings.Clone()
}

// Update atomically replaces the settings after validation.
func (ss *SafeSettings) Update(s Settings) error {
	if err := s.Validate(); err != nil {
		return fmt.Errorf("settings validation failed: %w", err)
	}
	ss.mu.Lock()
	defer ss.mu.Unlock()
	ss.settings = s.Clone()
	return nil
}

// SetSemanticReasoning toggles semantic reasoning.
func (ss *SafeSettings) SetSemanticReasoning(enabled bool) {
	ss.mu.Lock()
	defer ss.mu.Unlock()
	ss.settings.SemanticReasoning = enabled
}

// SetDebug toggles debug diagnostics.
func (ss *SafeSettings) SetDebug(enabled bool) {
	ss.mu.Lock()
	defer ss.mu.Unlock()
	ss.settings.Debug = enabled
}

// SetWarnUninhabited toggles the uninhabited-kind warning.
func (ss *SafeSettings) SetWarnUninhabited(enabled bool) {
	ss.mu.Lock()
	defer ss.mu.Unlock()
	ss.settings.WarnUninhabited = enabled
}

// SetCacheDir sets the ontology cache directory.
func (ss *SafeSettings) SetCacheDir(dir string) {
	ss.mu.Lock()
	defer ss.mu.Unlock()
	ss.settings.CacheDir = dir
}

// AddGraphSource appends an ontology source if not already present.
func (ss *SafeSettings) AddGraphSource(src string) {
	if src == "" {
		return
	}
	ss.mu.Lock()
	defer ss.mu.Unlock()
	for _, existing := range ss.settings.GraphSources {
		if existing == src {
			return
		}
	}
	ss.settings.GraphSources = append(ss.settings.GraphSources, src)
}

var defaultSettings = NewSafeSettings(NewSettings())

// Default returns the process-wide settings instance consulted by the
// package-level API when no explicit settings are supplied.
func Default() *SafeSettings {
	return defaultSettings
}
