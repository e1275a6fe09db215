package graph

import (
	"bufio"
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/c360/semschema/errors"
)

// Well-known ontology names accepted by ResolveWellKnown.
var wellKnownSources = map[string]string{
	"qudt": "https://qudt.org/vocab/quantitykind/",
	"foaf": "http://xmlns.com/foaf/0.1/",
	"skos": "http://www.w3.org/2004/02/skos/core#",
}

// ResolveWellKnown maps an ontology name to its source location.
func ResolveWellKnown(name string) (string, error) {
	url, ok := wellKnownSources[strings.ToLower(name)]
	if !ok {
		return "", fmt.Errorf("%w: %q (supported: qudt, foaf, skos)", errors.ErrUnknownOntology, name)
	}
	return url, nil
}

// WellKnownNames lists the supported ontology names.
func WellKnownNames() []string {
	return []string{"foaf", "qudt", "skos"}
}

// Loader fetches and parses ontology sources. Network fetches share one
// rate limiter so that lazy per-namespace loading cannot hammer remote
// vocabularies.
type Loader struct {
	client   *http.Client
	limiter  *rate.Limiter
	logger   *slog.Logger
	cacheDir string
}

// LoaderOption configures a Loader.
type LoaderOption func(*Loader)

// WithHTTPClient overrides the HTTP client used for remote sources.
func WithHTTPClient(client *http.Client) LoaderOption {
	return func(l *Loader) {
		if client != nil {
			l.client = client
		}
	}
}

// WithRateLimit overrides the outbound fetch rate limit.
func WithRateLimit(limiter *rate.Limiter) LoaderOption {
	return func(l *Loader) {
		if limiter != nil {
			l.limiter = limiter
		}
	}
}

// WithCacheDir caches remote source bodies under dir, so repeated loads of
// the same location within and across processes skip the network. An empty
// dir disables caching.
func WithCacheDir(dir string) LoaderOption {
	return func(l *Loader) {
		l.cacheDir = dir
	}
}

// WithLogger sets the loader's logger.
func WithLogger(logger *slog.Logger) LoaderOption {
	return func(l *Loader) {
		if logger != nil {
			l.logger = logger
		}
	}
}

// NewLoader creates a loader with a 30s HTTP timeout and a 2 req/s fetch
// rate limit.
func NewLoader(opts ...LoaderOption) *Loader {
	l := &Loader{
		client:  &http.Client{Timeout: 30 * time.Second},
		limiter: rate.NewLimiter(rate.Limit(2), 2),
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Fetch retrieves and parses one source, which may be a local file path or
// an http(s) URL. The serialization is chosen from the location suffix:
// ".nt" N-Triples, ".json" JSON triples, anything else the line-oriented
// Turtle subset (which also covers N-Triples).
func (l *Loader) Fetch(ctx context.Context, location string) ([]Triple, error) {
	reader, err := l.open(ctx, location)
	if err != nil {
		return nil, errors.WrapTransient(err, "graph", "Fetch", "source open")
	}
	defer reader.Close()

	triples, err := parseByLocation(location, reader)
	if err != nil {
		return nil, errors.WrapInvalid(err, "graph", "Fetch", "source parse")
	}
	return triples, nil
}

func (l *Loader) open(ctx context.Context, location string) (io.ReadCloser, error) {
	if strings.HasPrefix(location, "http://") || strings.HasPrefix(location, "https://") {
		if cached, ok := l.readCache(location); ok {
			return cached, nil
		}
		if err := l.limiter.Wait(ctx); err != nil {
			return nil, err
		}
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, location, nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set("Accept", "text/turtle, application/n-triples, application/json")
		resp, err := l.client.Do(req)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %v", errors.ErrGraphLoad, location, err)
		}
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			return nil, fmt.Errorf("%w: %s: status %d", errors.ErrGraphLoad, location, resp.StatusCode)
		}
		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %v", errors.ErrGraphLoad, location, err)
		}
		l.writeCache(location, body)
		return io.NopCloser(bytes.NewReader(body)), nil
	}
	f, err := os.Open(location)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", errors.ErrGraphLoad, location, err)
	}
	return f, nil
}

// cachePath keys cache files by location hash, keeping the original suffix
// so serialization detection still works for cached bodies.
func (l *Loader) cachePath(location string) string {
	name := fmt.Sprintf("%x", sha256.Sum256([]byte(location)))
	if ext := filepath.Ext(location); ext == ".nt" || ext == ".json" || ext == ".ttl" {
		name += ext
	}
	return filepath.Join(l.cacheDir, name)
}

func (l *Loader) readCache(location string) (io.ReadCloser, bool) {
	if l.cacheDir == "" {
		return nil, false
	}
	f, err := os.Open(l.cachePath(location))
	if err != nil {
		return nil, false
	}
	l.logger.Debug("ontology source served from cache", "source", location)
	return f, true
}

// writeCache is best effort: a failed write only costs a refetch next time.
func (l *Loader) writeCache(location string, body []byte) {
	if l.cacheDir == "" {
		return
	}
	if err := os.MkdirAll(l.cacheDir, 0o755); err != nil {
		l.logger.Warn("ontology cache dir unavailable", "dir", l.cacheDir, "error", err)
		return
	}
	if err := os.WriteFile(l.cachePath(location), body, 0o644); err != nil {
		l.logger.Warn("ontology cache write failed", "source", location, "error", err)
	}
}

// LoadAll fetches every source concurrently and merges the results into g.
// A failed source is recovered locally: it contributes zero triples, is
// logged, and never fails the overall load. Returns the number of triples
// added.
func (l *Loader) LoadAll(ctx context.Context, g *Graph, sources []string) int {
	before := g.Len()

	eg, ctx := errgroup.WithContext(ctx)
	for _, src := range sources {
		src := src
		eg.Go(func() error {
			triples, err := l.Fetch(ctx, src)
			if err != nil {
				l.logger.Warn("ontology source skipped", "source", src, "error", err)
				return nil
			}
			g.AddAll(triples)
			l.logger.Info("ontology source loaded", "source", src, "triples", len(triples))
			return nil
		})
	}
	_ = eg.Wait() // goroutines never return errors; failures are recovered above

	return g.Len() - before
}

func parseByLocation(location string, r io.Reader) ([]Triple, error) {
	switch {
	case strings.HasSuffix(location, ".json"):
		return ParseJSON(r)
	case strings.HasSuffix(location, ".nt"):
		return ParseNTriples(r)
	default:
		return ParseTurtle(r)
	}
}

// ParseJSON reads a JSON array of {"subject","predicate","object"} records.
func ParseJSON(r io.Reader) ([]Triple, error) {
	var raw []struct {
		Subject   string `json:"subject"`
		Predicate string `json:"predicate"`
		Object    string `json:"object"`
	}
	if err := json.NewDecoder(r).Decode(&raw); err != nil {
		return nil, fmt.Errorf("%w: %v", errors.ErrGraphParse, err)
	}
	triples := make([]Triple, 0, len(raw))
	for i, t := range raw {
		if t.Subject == "" || t.Predicate == "" || t.Object == "" {
			return nil, fmt.Errorf("%w: record %d has empty term", errors.ErrGraphParse, i)
		}
		triples = append(triples, Triple{Subject: t.Subject, Predicate: t.Predicate, Object: t.Object})
	}
	return triples, nil
}

// ParseNTriples reads N-Triples: one "<s> <p> <o> ." statement per line.
func ParseNTriples(r io.Reader) ([]Triple, error) {
	return parseLines(r, false)
}

// ParseTurtle reads a line-oriented Turtle subset: @prefix directives,
// one statement per line, terms as <IRI>, prefix:local, the "a" keyword,
// or a quoted literal in object position. Statements using multi-line
// syntax (";" and "," continuations) are skipped.
func ParseTurtle(r io.Reader) ([]Triple, error) {
	return parseLines(r, true)
}

const rdfType = "http://www.w3.org/1999/02/22-rdf-syntax-ns#type"

func parseLines(r io.Reader, turtle bool) ([]Triple, error) {
	var triples []Triple
	prefixes := map[string]string{}
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)

	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		if turtle && (strings.HasPrefix(line, "@prefix") || strings.HasPrefix(line, "PREFIX")) {
			prefix, base, ok := parsePrefixDirective(line)
			if !ok {
				return nil, fmt.Errorf("%w: line %d: malformed prefix directive", errors.ErrGraphParse, lineNo)
			}
			prefixes[prefix] = base
			continue
		}

		if !strings.HasSuffix(line, ".") {
			// Multi-line statement syntax outside the supported subset.
			if turtle {
				continue
			}
			return nil, fmt.Errorf("%w: line %d: statement does not end with '.'", errors.ErrGraphParse, lineNo)
		}
		line = strings.TrimSpace(strings.TrimSuffix(line, "."))

		terms, ok := splitTerms(line)
		if !ok || len(terms) != 3 {
			if turtle {
				continue
			}
			return nil, fmt.Errorf("%w: line %d: expected three terms", errors.ErrGraphParse, lineNo)
		}

		subject, err := expandTerm(terms[0], prefixes, false)
		if err != nil {
			return nil, fmt.Errorf("%w: line %d: %v", errors.ErrGraphParse, lineNo, err)
		}
		predicate, err := expandTerm(terms[1], prefixes, false)
		if err != nil {
			return nil, fmt.Errorf("%w: line %d: %v", errors.ErrGraphParse, lineNo, err)
		}
		object, err := expandTerm(terms[2], prefixes, true)
		if err != nil {
			return nil, fmt.Errorf("%w: line %d: %v", errors.ErrGraphParse, lineNo, err)
		}

		triples = append(triples, Triple{Subject: subject, Predicate: predicate, Object: object})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", errors.ErrGraphParse, err)
	}
	return triples, nil
}

func parsePrefixDirective(line string) (prefix, base string, ok bool) {
	line = strings.TrimPrefix(line, "@prefix")
	line = strings.TrimPrefix(line, "PREFIX")
	line = strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(line), "."))

	colon := strings.Index(line, ":")
	if colon < 0 {
		return "", "", false
	}
	prefix = strings.TrimSpace(line[:colon])
	rest := strings.TrimSpace(line[colon+1:])
	if !strings.HasPrefix(rest, "<") || !strings.HasSuffix(rest, ">") {
		return "", "", false
	}
	return prefix, rest[1 : len(rest)-1], true
}

// splitTerms splits a statement into whitespace-separated terms, keeping
// <...> IRIs and "..." literals intact.
func splitTerms(line string) ([]string, bool) {
	var terms []string
	i := 0
	for i < len(line) {
		for i < len(line) && (line[i] == ' ' || line[i] == '\t') {
			i++
		}
		if i >= len(line) {
			break
		}
		switch line[i] {
		case '<':
			end := strings.IndexByte(line[i:], '>')
			if end < 0 {
				return nil, false
			}
			terms = append(terms, line[i:i+end+1])
			i += end + 1
		case '"':
			end := i + 1
			for end < len(line) {
				if line[end] == '\\' {
					end += 2
					continue
				}
				if line[end] == '"' {
					break
				}
				end++
			}
			if end >= len(line) {
				return nil, false
			}
			// Include any datatype/language tag up to next whitespace
			tail := end + 1
			for tail < len(line) && line[tail] != ' ' && line[tail] != '\t' {
				tail++
			}
			terms = append(terms, line[i:tail])
			i = tail
		default:
			end := i
			for end < len(line) && line[end] != ' ' && line[end] != '\t' {
				end++
			}
			terms = append(terms, line[i:end])
			i = end
		}
	}
	return terms, true
}

func expandTerm(term string, prefixes map[string]string, objectPosition bool) (string, error) {
	switch {
	case strings.HasPrefix(term, "<") && strings.HasSuffix(term, ">"):
		return term[1 : len(term)-1], nil
	case strings.HasPrefix(term, `"`):
		if !objectPosition {
			return "", fmt.Errorf("literal %q outside object position", term)
		}
		end := strings.LastIndexByte(term[1:], '"')
		if end < 0 {
			return "", fmt.Errorf("unterminated literal %q", term)
		}
		return term[1 : end+1], nil
	case term == "a":
		return rdfType, nil
	default:
		prefix, local, found := strings.Cut(term, ":")
		if !found {
			return "", fmt.Errorf("unrecognized term %q", term)
		}
		base, ok := prefixes[prefix]
		if !ok {
			return "", fmt.Errorf("undeclared prefix %q", prefix)
		}
		return base + local, nil
	}
}
