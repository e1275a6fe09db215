package config

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSettingsDefaults(t *testing.T) {
	s := NewSettings()
	assert.True(t, s.SemanticReasoning)
	assert.False(t, s.Debug)
	assert.False(t, s.WarnUninhabited)
	assert.Empty(t, s.GraphSources)
	assert.Equal(t, DefaultMaxCanonicalizeDepth, s.DepthBudget())
}

func TestSettingsValidate(t *testing.T) {
	s := NewSettings()
	require.NoError(t, s.Validate())

	s.MaxCanonicalizeDepth = -1
	assert.Error(t, s.Validate())

	s = NewSettings()
	s.GraphSources = []string{"https://example.org/onto.ttl", ""}
	assert.Error(t, s.Validate())
}

func TestSettingsCloneIsIndependent(t *testing.T) {
	s := NewSettings()
	s.GraphSources = []string{"https://example.org/a.ttl"}

	clone := s.Clone()
	clone.GraphSources[0] = "mutated"

	assert.Equal(t, "https://example.org/a.ttl", s.GraphSources[0])
}

func TestSafeSettingsUpdateValidates(t *testing.T) {
	ss := NewSafeSettings(NewSettings())

	bad := NewSettings()
	bad.MaxCanonicalizeDepth = -5
	assert.Error(t, ss.Update(bad))

	good := NewSettings()
	good.Debug = true
	require.NoError(t, ss.Update(good))
	assert.True(t, ss.Get().Debug)
}

func TestSafeSettingsSetters(t *testing.T) {
	ss := NewSafeSettings(NewSettings())

	ss.SetSemanticReasoning(false)
	ss.SetDebug(true)
	ss.SetWarnUninhabited(true)
	ss.SetCacheDir("/tmp/semschema-cache")
	ss.AddGraphSource("https://example.org/onto.ttl")
	ss.AddGraphSource("https://example.org/onto.ttl") // duplicate ignored
	ss.AddGraphSource("")                             // empty ignored

	got := ss.Get()
	assert.False(t, got.SemanticReasoning)
	assert.True(t, got.Debug)
	assert.True(t, got.WarnUninhabited)
	assert.Equal(t, "/tmp/semschema-cache", got.CacheDir)
	assert.Equal(t, []string{"https://example.org/onto.ttl"}, got.GraphSources)
}

func TestSafeSettingsConcurrentAccess(t *testing.T) {
	ss := NewSafeSettings(NewSettings())

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			ss.SetDebug(true)
			ss.AddGraphSource("https://example.org/onto.ttl")
		}()
		go func() {
			defer wg.Done()
			_ = ss.Get()
		}()
	}
	wg.Wait()

	assert.Equal(t, []string{"https://example.org/onto.ttl"}, ss.Get().GraphSources)
}

func TestDefaultIsShared(t *testing.T) {
	assert.Same(t, Default(), Default())
}
