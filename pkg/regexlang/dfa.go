package regexlang

import (
	"sort"
	"strconv"
	"strings"
	"unicode"
)

// symRange is one interval of the rune-space partition a DFA operates over.
// Every rune inside one interval is indistinguishable to the automaton.
type symRange struct {
	lo, hi rune
}

// dfa is a complete deterministic automaton: every state has a transition
// for every symbol interval, with the empty subset acting as dead state.
type dfa struct {
	symbols []symRange
	trans   [][]int // state × symbol → state
	accept  []bool
	start   int
}

// partition builds a partition of the full rune space from edge boundaries.
func partition(boundaries []rune) []symRange {
	set := map[rune]bool{0: true, unicode.MaxRune + 1: true}
	for _, b := range boundaries {
		set[b] = true
	}
	points := make([]rune, 0, len(set))
	for b := range set {
		points = append(points, b)
	}
	sort.Slice(points, func(i, j int) bool { return points[i] < points[j] })

	syms := make([]symRange, 0, len(points)-1)
	for i := 0; i+1 < len(points); i++ {
		syms = append(syms, symRange{lo: points[i], hi: points[i+1] - 1})
	}
	return syms
}

func mergedPartition(a, b []symRange) []symRange {
	boundaries := make([]rune, 0, 2*(len(a)+len(b)))
	for _, s := range a {
		boundaries = append(boundaries, s.lo, s.hi+1)
	}
	for _, s := range b {
		boundaries = append(boundaries, s.lo, s.hi+1)
	}
	return partition(boundaries)
}

// determinize runs subset construction over the NFA, yielding a complete DFA.
func determinize(n *nfa) *dfa {
	boundaries := make([]rune, 0, 32)
	for _, st := range n.states {
		for _, e := range st.edges {
			boundaries = append(boundaries, e.lo, e.hi+1)
		}
	}
	symbols := partition(boundaries)

	closure := func(set []int) []int {
		seen := make(map[int]bool, len(set))
		stack := append([]int(nil), set...)
		for len(stack) > 0 {
			s := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			if seen[s] {
				continue
			}
			seen[s] = true
			stack = append(stack, n.states[s].eps...)
		}
		out := make([]int, 0, len(seen))
		for s := range seen {
			out = append(out, s)
		}
		sort.Ints(out)
		return out
	}

	key := func(set []int) string {
		var sb strings.Builder
		for i, s := range set {
			if i > 0 {
				sb.WriteByte(',')
			}
			sb.WriteString(strconv.Itoa(s))
		}
		return sb.String()
	}

	d := &dfa{symbols: symbols}
	ids := map[string]int{}

	var intern func(set []int) int
	intern = func(set []int) int {
		k := key(set)
		if id, ok := ids[k]; ok {
			return id
		}
		id := len(d.trans)
		ids[k] = id
		d.trans = append(d.trans, make([]int, len(symbols)))
		acc := false
		for _, s := range set {
			if s == n.accept {
				acc = true
				break
			}
		}
		d.accept = append(d.accept, acc)

		for si, sym := range symbols {
			var moved []int
			for _, s := range set {
				for _, e := range n.states[s].edges {
					if e.lo <= sym.lo && sym.hi <= e.hi {
						moved = append(moved, e.to)
					}
				}
			}
			d.trans[id][si] = intern(closure(moved))
		}
		return id
	}

	d.start = intern(closure([]int{n.start}))
	return minimize(d)
}

// refine rebuilds the DFA's transition table over a finer symbol partition.
// The new partition must be a refinement of the current one.
func (d *dfa) refine(symbols []symRange) *dfa {
	if len(symbols) == len(d.symbols) {
		return d
	}
	symFor := make([]int, len(symbols))
	j := 0
	for i, sym := range symbols {
		for d.symbols[j].hi < sym.lo {
			j++
		}
		symFor[i] = j
	}
	out := &dfa{
		symbols: symbols,
		trans:   make([][]int, len(d.trans)),
		accept:  d.accept,
		start:   d.start,
	}
	for s := range d.trans {
		row := make([]int, len(symbols))
		for i := range symbols {
			row[i] = d.trans[s][symFor[i]]
		}
		out.trans[s] = row
	}
	return out
}

// minimize merges indistinguishable states (Moore partition refinement).
func minimize(d *dfa) *dfa {
	n := len(d.trans)
	class := make([]int, n)
	for s := 0; s < n; s++ {
		if d.accept[s] {
			class[s] = 1
		}
	}
	numClasses := 2

	for {
		sig := make([]string, n)
		for s := 0; s < n; s++ {
			var sb strings.Builder
			sb.WriteString(strconv.Itoa(class[s]))
			for _, t := range d.trans[s] {
				sb.WriteByte(':')
				sb.WriteString(strconv.Itoa(class[t]))
			}
			sig[s] = sb.String()
		}
		ids := map[string]int{}
		next := make([]int, n)
		for s := 0; s < n; s++ {
			id, ok := ids[sig[s]]
			if !ok {
				id = len(ids)
				ids[sig[s]] = id
			}
			next[s] = id
		}
		if len(ids) == numClasses {
			break
		}
		numClasses = len(ids)
		class = next
	}

	out := &dfa{
		symbols: d.symbols,
		trans:   make([][]int, numClasses),
		accept:  make([]bool, numClasses),
		start:   class[d.start],
	}
	for s := 0; s < n; s++ {
		c := class[s]
		if out.trans[c] != nil {
			continue
		}
		row := make([]int, len(d.symbols))
		for i, t := range d.trans[s] {
			row[i] = class[t]
		}
		out.trans[c] = row
		out.accept[c] = d.accept[s]
	}
	return out
}

// product combines two DFAs over a merged alphabet; accept decides the
// accepting condition of each product state.
func product(a, b *dfa, acceptFn func(accA, accB bool) bool) *dfa {
	symbols := mergedPartition(a.symbols, b.symbols)
	ra := a.refine(symbols)
	rb := b.refine(symbols)

	type pair struct{ pa, pb int }
	ids := map[pair]int{}
	out := &dfa{symbols: symbols}

	var intern func(p pair) int
	intern = func(p pair) int {
		if id, ok := ids[p]; ok {
			return id
		}
		id := len(out.trans)
		ids[p] = id
		out.trans = append(out.trans, make([]int, len(symbols)))
		out.accept = append(out.accept, acceptFn(ra.accept[p.pa], rb.accept[p.pb]))
		for i := range symbols {
			out.trans[id][i] = intern(pair{ra.trans[p.pa][i], rb.trans[p.pb][i]})
		}
		return id
	}

	out.start = intern(pair{ra.start, rb.start})
	return minimize(out)
}

// isEmpty reports whether no accepting state is reachable.
func (d *dfa) isEmpty() bool {
	seen := make([]bool, len(d.trans))
	stack := []int{d.start}
	for len(stack) > 0 {
		s := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if seen[s] {
			continue
		}
		seen[s] = true
		if d.accept[s] {
			return false
		}
		stack = append(stack, d.trans[s]...)
	}
	return true
}

// contains reports whether every string accepted by a is accepted by b:
// no reachable product state may accept in a while rejecting in b.
func contains(a, b *dfa) bool {
	symbols := mergedPartition(a.symbols, b.symbols)
	ra := a.refine(symbols)
	rb := b.refine(symbols)

	type pair struct{ pa, pb int }
	seen := map[pair]bool{}
	stack := []pair{{ra.start, rb.start}}
	for len(stack) > 0 {
		p := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if seen[p] {
			continue
		}
		seen[p] = true
		if ra.accept[p.pa] && !rb.accept[p.pb] {
			return false
		}
		for i := range symbols {
			stack = append(stack, pair{ra.trans[p.pa][i], rb.trans[p.pb][i]})
		}
	}
	return true
}
