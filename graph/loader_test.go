package graph

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/c360/semschema/errors"
	"github.com/c360/semschema/vocabulary"
)

const sampleTurtle = `@prefix skos: <http://www.w3.org/2004/02/skos/core#> .
@prefix ex: <http://example.org/> .

# employees are people
ex:Employee skos:broader ex:Person .
ex:Manager a ex:Role .
ex:Person skos:prefLabel "Person" .
`

const sampleNTriples = `<http://example.org/Employee> <http://www.w3.org/2004/02/skos/core#broader> <http://example.org/Person> .
<http://example.org/Person> <http://www.w3.org/2004/02/skos/core#broader> <http://example.org/Agent> .
`

func TestParseTurtle(t *testing.T) {
	triples, err := ParseTurtle(strings.NewReader(sampleTurtle))
	require.NoError(t, err)
	require.Len(t, triples, 3)

	assert.Equal(t, Triple{
		Subject:   "http://example.org/Employee",
		Predicate: vocabulary.SkosBroader,
		Object:    "http://example.org/Person",
	}, triples[0])

	// "a" expands to rdf:type
	assert.Equal(t, rdfType, triples[1].Predicate)

	// literal object kept without quotes
	assert.Equal(t, "Person", triples[2].Object)
}

func TestParseTurtleUndeclaredPrefix(t *testing.T) {
	_, err := ParseTurtle(strings.NewReader("ex:A ex:p ex:B .\n"))
	require.Error(t, err)
	assert.ErrorIs(t, err, errors.ErrGraphParse)
}

func TestParseNTriples(t *testing.T) {
	triples, err := ParseNTriples(strings.NewReader(sampleNTriples))
	require.NoError(t, err)
	require.Len(t, triples, 2)
	assert.Equal(t, "http://example.org/Agent", triples[1].Object)
}

func TestParseNTriplesMalformed(t *testing.T) {
	_, err := ParseNTriples(strings.NewReader("<a> <b>\n"))
	assert.Error(t, err)
}

func TestParseJSON(t *testing.T) {
	doc := `[
  {"subject": "ex:Employee", "predicate": "` + vocabulary.SkosBroader + `", "object": "ex:Person"}
]`
	triples, err := ParseJSON(strings.NewReader(doc))
	require.NoError(t, err)
	require.Len(t, triples, 1)
	assert.Equal(t, "ex:Employee", triples[0].Subject)

	_, err = ParseJSON(strings.NewReader(`[{"subject": "", "predicate": "p", "object": "o"}]`))
	assert.Error(t, err)
}

func TestLoaderFetchFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "onto.ttl")
	require.NoError(t, os.WriteFile(path, []byte(sampleTurtle), 0o644))

	loader := NewLoader()
	triples, err := loader.Fetch(context.Background(), path)
	require.NoError(t, err)
	assert.Len(t, triples, 3)
}

func TestLoaderFetchFromHTTP(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(sampleNTriples))
	}))
	defer server.Close()

	loader := NewLoader(WithHTTPClient(server.Client()))
	triples, err := loader.Fetch(context.Background(), server.URL+"/onto.nt")
	require.NoError(t, err)
	assert.Len(t, triples, 2)
}

func TestLoaderFetchHTTPFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	loader := NewLoader(WithHTTPClient(server.Client()))
	_, err := loader.Fetch(context.Background(), server.URL+"/missing.nt")
	require.Error(t, err)
	assert.ErrorIs(t, err, errors.ErrGraphLoad)
}

func TestLoadAllRecoversFailedSources(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasSuffix(r.URL.Path, "good.nt") {
			_, _ = w.Write([]byte(sampleNTriples))
			return
		}
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	g := New()
	loader := NewLoader(WithHTTPClient(server.Client()))
	added := loader.LoadAll(context.Background(), g, []string{
		server.URL + "/good.nt",
		server.URL + "/bad.nt", // recovered: zero triples, no error
	})

	assert.Equal(t, 2, added)
	assert.Equal(t, 2, g.Len())
}

func TestLoaderCachesRemoteSources(t *testing.T) {
	var hits int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		hits++
		_, _ = w.Write([]byte(sampleNTriples))
	}))
	defer server.Close()

	loader := NewLoader(WithHTTPClient(server.Client()), WithCacheDir(t.TempDir()))
	location := server.URL + "/onto.nt"

	first, err := loader.Fetch(context.Background(), location)
	require.NoError(t, err)
	second, err := loader.Fetch(context.Background(), location)
	require.NoError(t, err)

	assert.Equal(t, 1, hits, "second fetch served from disk cache")
	assert.Equal(t, first, second)
}

func TestResolveWellKnown(t *testing.T) {
	url, err := ResolveWellKnown("QUDT")
	require.NoError(t, err)
	assert.Contains(t, url, "qudt.org")

	_, err = ResolveWellKnown("unknown")
	assert.ErrorIs(t, err, errors.ErrUnknownOntology)

	assert.Equal(t, []string{"foaf", "qudt", "skos"}, WellKnownNames())
}

func TestLoadSourceList(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "sources.yaml")
	doc := `sources:
  - name: foaf
  - name: team
    location: https://example.org/team.ttl
`
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o644))

	locations, err := LoadSourceList(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"http://xmlns.com/foaf/0.1/", "https://example.org/team.ttl"}, locations)
}

func TestLoadSourceListErrors(t *testing.T) {
	dir := t.TempDir()

	_, err := LoadSourceList(filepath.Join(dir, "missing.yaml"))
	assert.Error(t, err)

	empty := filepath.Join(dir, "empty.yaml")
	require.NoError(t, os.WriteFile(empty, []byte("sources: []\n"), 0o644))
	_, err = LoadSourceList(empty)
	assert.Error(t, err)

	bad := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("sources:\n  - location: \"\"\n"), 0o644))
	_, err = LoadSourceList(bad)
	assert.Error(t, err)
}
