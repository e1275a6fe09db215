package graph

import (
	"testing"

	"github.com/c360/semschema/vocabulary"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGraphAddAndObjects(t *testing.T) {
	g := New()
	assert.Equal(t, 0, g.Len())

	g.Add(Triple{"ex:a", vocabulary.SkosBroader, "ex:b"})
	g.Add(Triple{"ex:a", vocabulary.SkosBroader, "ex:c"})
	g.Add(Triple{"ex:a", vocabulary.SkosBroader, "ex:b"}) // duplicate ignored

	assert.Equal(t, 2, g.Len())
	assert.ElementsMatch(t, []string{"ex:b", "ex:c"}, g.Objects("ex:a", vocabulary.SkosBroader))
	assert.Nil(t, g.Objects("ex:b", vocabulary.SkosBroader))
	assert.Nil(t, g.Objects("ex:a", vocabulary.RdfsSubClassOf))
}

func TestGraphRejectsEmptyTerms(t *testing.T) {
	g := New()
	g.Add(Triple{"", "p", "o"})
	g.Add(Triple{"s", "", "o"})
	g.Add(Triple{"s", "p", ""})
	assert.Equal(t, 0, g.Len())
}

func TestGraphGenerationAdvancesOnAdd(t *testing.T) {
	g := New()
	gen0 := g.Generation()

	g.Add(Triple{"ex:a", vocabulary.SkosBroader, "ex:b"})
	gen1 := g.Generation()
	assert.NotEqual(t, gen0, gen1)

	// Duplicate insert does not advance the generation
	g.Add(Triple{"ex:a", vocabulary.SkosBroader, "ex:b"})
	assert.Equal(t, gen1, g.Generation())
}

func TestPathExistsTransitive(t *testing.T) {
	g := New()
	g.AddAll([]Triple{
		{"ex:employee", vocabulary.SkosBroader, "ex:person"},
		{"ex:person", vocabulary.SkosBroader, "ex:agent"},
		{"ex:manager", vocabulary.RdfsSubClassOf, "ex:employee"},
	})

	ok, err := g.PathExists("ex:employee", "ex:agent", vocabulary.HierarchyPredicates())
	require.NoError(t, err)
	assert.True(t, ok, "two-hop broader chain")

	// Mixed predicates compose
	ok, err = g.PathExists("ex:manager", "ex:agent", vocabulary.HierarchyPredicates())
	require.NoError(t, err)
	assert.True(t, ok)

	// Reachability is directional
	ok, err = g.PathExists("ex:agent", "ex:employee", vocabulary.HierarchyPredicates())
	require.NoError(t, err)
	assert.False(t, ok)

	// Identity is reachable
	ok, err = g.PathExists("ex:person", "ex:person", vocabulary.HierarchyPredicates())
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestPathExistsCyclicDataTerminates(t *testing.T) {
	g := New()
	g.AddAll([]Triple{
		{"ex:a", vocabulary.SkosBroader, "ex:b"},
		{"ex:b", vocabulary.SkosBroader, "ex:c"},
		{"ex:c", vocabulary.SkosBroader, "ex:a"}, // cycle
	})

	ok, err := g.PathExists("ex:a", "ex:c", vocabulary.HierarchyPredicates())
	require.NoError(t, err)
	assert.True(t, ok)

	// Unconnected goal must come back false, not hang or fabricate a path
	ok, err = g.PathExists("ex:a", "ex:zzz", vocabulary.HierarchyPredicates())
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestSubjects(t *testing.T) {
	g := New()
	g.Add(Triple{"ex:b", "p", "o"})
	g.Add(Triple{"ex:a", "p", "o"})
	assert.Equal(t, []string{"ex:a", "ex:b"}, g.Subjects())
}
