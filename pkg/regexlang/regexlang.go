// Package regexlang implements a regular-language algebra for schema
// pattern reasoning: containment, intersection, union, emptiness and
// rendering back to a pattern string.
//
// Patterns follow JSON Schema search semantics: an unanchored pattern
// matches any string containing a match, so "a" denotes the language of all
// strings with an "a" in them. Explicit ^ and $ at the pattern ends anchor
// it. Languages are backed by deterministic automata, so all decisions are
// exact rather than sampled. Constructs without regular-language semantics
// (inner anchors, backreferences, lookaround) are rejected at compile time.
package regexlang

import (
	"unicode"
)

// Language is an immutable regular language value.
type Language struct {
	d *dfa
	// pattern preserves the source pattern for languages compiled directly
	// from one; synthesized languages render on demand.
	pattern   string
	hasSource bool
}

// Compile builds the language of the given schema pattern.
func Compile(pattern string) (*Language, error) {
	n, err := compilePattern(anchorPattern(pattern))
	if err != nil {
		return nil, err
	}
	return &Language{d: determinize(n), pattern: pattern, hasSource: true}, nil
}

// Literal returns the language containing exactly the given string.
func Literal(s string) *Language {
	return &Language{d: determinize(literalNFA(s))}
}

// Universal returns the language of all strings.
func Universal() *Language {
	b := &builder{}
	start := b.add()
	b.edge(start, 0, unicode.MaxRune, start)
	n := &nfa{states: b.states, start: start, accept: start}
	return &Language{d: determinize(n)}
}

// Empty returns the language containing no strings.
func Empty() *Language {
	b := &builder{}
	start := b.add()
	accept := b.add()
	n := &nfa{states: b.states, start: start, accept: accept}
	return &Language{d: determinize(n)}
}

// IsEmpty reports whether the language contains no strings.
func (l *Language) IsEmpty() bool {
	return l.d.isEmpty()
}

// Contains reports whether l is a superset of other.
func (l *Language) Contains(other *Language) bool {
	return contains(other.d, l.d)
}

// Subset reports whether l is a subset of other.
func (l *Language) Subset(other *Language) bool {
	return contains(l.d, other.d)
}

// Equal reports whether both languages contain exactly the same strings.
func (l *Language) Equal(other *Language) bool {
	return contains(l.d, other.d) && contains(other.d, l.d)
}

// Matches reports whether the single string s is in the language.
func (l *Language) Matches(s string) bool {
	return l.d.matches(s)
}

// Intersect returns the language of strings in both l and other.
func (l *Language) Intersect(other *Language) *Language {
	return &Language{d: product(l.d, other.d, func(a, b bool) bool { return a && b })}
}

// Union returns the language of strings in either l or other.
func (l *Language) Union(other *Language) *Language {
	return &Language{d: product(l.d, other.d, func(a, b bool) bool { return a || b })}
}

// Pattern returns a pattern denoting the language. Languages compiled from a
// single source pattern return that pattern verbatim; synthesized languages
// are rendered from the automaton as an anchored pattern. The empty language
// returns "".
func (l *Language) Pattern() string {
	if l.hasSource {
		return l.pattern
	}
	return l.d.render()
}

// IsUniversal reports whether the language accepts every string.
func (l *Language) IsUniversal() bool {
	return Universal().Subset(l)
}

// matches runs the DFA over a concrete string.
func (d *dfa) matches(s string) bool {
	state := d.start
	for _, r := range s {
		sym := d.symbolFor(r)
		if sym < 0 {
			return false
		}
		state = d.trans[state][sym]
	}
	return d.accept[state]
}

// symbolFor finds the partition interval containing r by binary search.
func (d *dfa) symbolFor(r rune) int {
	lo, hi := 0, len(d.symbols)-1
	for lo <= hi {
		mid := (lo + hi) / 2
		switch {
		case r < d.symbols[mid].lo:
			hi = mid - 1
		case r > d.symbols[mid].hi:
			lo = mid + 1
		default:
			return mid
		}
	}
	return -1
}
