package regexlang

import (
	"fmt"
	"strings"
	"unicode"
)

// Rendering a DFA back to a pattern uses state elimination over a
// generalized automaton whose edges carry pattern fragments. The result is
// anchored (^...$) so it survives a round trip through Compile.

// rxEdge is a pattern fragment on a GNFA edge. present=false means no edge;
// an empty pattern with present=true is an epsilon edge.
type rxEdge struct {
	present bool
	pattern string
}

func rxUnion(a, b rxEdge) rxEdge {
	if !a.present {
		return b
	}
	if !b.present {
		return a
	}
	if a.pattern == b.pattern {
		return a
	}
	if a.pattern == "" {
		return rxEdge{present: true, pattern: rxQuest(b.pattern)}
	}
	if b.pattern == "" {
		return rxEdge{present: true, pattern: rxQuest(a.pattern)}
	}
	return rxEdge{present: true, pattern: a.pattern + "|" + b.pattern}
}

func rxConcat(a, b rxEdge) rxEdge {
	if !a.present || !b.present {
		return rxEdge{}
	}
	return rxEdge{present: true, pattern: rxGroupForConcat(a.pattern) + rxGroupForConcat(b.pattern)}
}

func rxStar(a rxEdge) rxEdge {
	if !a.present || a.pattern == "" {
		return rxEdge{present: true, pattern: ""}
	}
	return rxEdge{present: true, pattern: rxGroupForRepeat(a.pattern) + "*"}
}

func rxQuest(p string) string {
	if p == "" {
		return ""
	}
	return rxGroupForRepeat(p) + "?"
}

// rxGroupForConcat wraps a fragment in a non-capturing group when it
// contains a top-level alternation.
func rxGroupForConcat(p string) string {
	if hasTopLevelAlt(p) {
		return "(?:" + p + ")"
	}
	return p
}

// rxGroupForRepeat wraps a fragment in a group unless it is a single
// atom (one literal rune, one char class, or one group).
func rxGroupForRepeat(p string) string {
	if isSingleAtom(p) {
		return p
	}
	return "(?:" + p + ")"
}

func hasTopLevelAlt(p string) bool {
	depth := 0
	inClass := false
	for i := 0; i < len(p); i++ {
		switch p[i] {
		case '\\':
			i++
		case '[':
			if !inClass {
				inClass = true
			}
		case ']':
			inClass = false
		case '(':
			if !inClass {
				depth++
			}
		case ')':
			if !inClass {
				depth--
			}
		case '|':
			if !inClass && depth == 0 {
				return true
			}
		}
	}
	return false
}

func isSingleAtom(p string) bool {
	if p == "" {
		return false
	}
	runes := []rune(p)
	if len(runes) == 1 {
		return true
	}
	if len(runes) == 2 && runes[0] == '\\' {
		return true
	}
	// One complete char class or group spanning the whole fragment
	switch runes[0] {
	case '[':
		return classEnd(p) == len(p)
	case '(':
		return groupEnd(p) == len(p)
	}
	return false
}

func classEnd(p string) int {
	for i := 1; i < len(p); i++ {
		switch p[i] {
		case '\\':
			i++
		case ']':
			return i + 1
		}
	}
	return -1
}

func groupEnd(p string) int {
	depth := 0
	inClass := false
	for i := 0; i < len(p); i++ {
		switch p[i] {
		case '\\':
			i++
		case '[':
			inClass = true
		case ']':
			inClass = false
		case '(':
			if !inClass {
				depth++
			}
		case ')':
			if !inClass {
				depth--
				if depth == 0 {
					return i + 1
				}
			}
		}
	}
	return -1
}

// escapeClassRune escapes a rune for use inside a character class.
func escapeClassRune(r rune) string {
	switch r {
	case '\\', ']', '^', '-', '[':
		return `\` + string(r)
	case '\n':
		return `\n`
	case '\r':
		return `\r`
	case '\t':
		return `\t`
	}
	if !unicode.IsPrint(r) {
		return fmt.Sprintf(`\x{%x}`, r)
	}
	return string(r)
}

// escapeLiteralRune escapes a rune for use outside a character class.
func escapeLiteralRune(r rune) string {
	switch r {
	case '\\', '.', '+', '*', '?', '(', ')', '|', '[', ']', '{', '}', '^', '$':
		return `\` + string(r)
	case '\n':
		return `\n`
	case '\r':
		return `\r`
	case '\t':
		return `\t`
	}
	if !unicode.IsPrint(r) {
		return fmt.Sprintf(`\x{%x}`, r)
	}
	return string(r)
}

// classPattern renders a set of symbol ranges as a pattern fragment.
func classPattern(ranges []symRange) string {
	if len(ranges) == 1 && ranges[0].lo == ranges[0].hi {
		return escapeLiteralRune(ranges[0].lo)
	}
	if len(ranges) == 1 && ranges[0].lo == 0 && ranges[0].hi == unicode.MaxRune {
		return `(?s:.)`
	}
	var sb strings.Builder
	sb.WriteByte('[')
	for _, r := range ranges {
		sb.WriteString(escapeClassRune(r.lo))
		if r.hi > r.lo {
			if r.hi > r.lo+1 {
				sb.WriteByte('-')
			}
			sb.WriteString(escapeClassRune(r.hi))
		}
	}
	sb.WriteByte(']')
	return sb.String()
}

// render converts the DFA into an anchored pattern via state elimination.
// Returns empty string for the empty language.
func (d *dfa) render() string {
	if d.isEmpty() {
		return ""
	}

	n := len(d.trans)

	// Trim: keep only states that are reachable and can reach an accept.
	live := d.liveStates()

	// Merge parallel symbol transitions into per-pair char classes.
	// Matrix indices: 0..n-1 DFA states, n = super start, n+1 = super accept.
	size := n + 2
	edges := make([][]rxEdge, size)
	for i := range edges {
		edges[i] = make([]rxEdge, size)
	}
	for s := 0; s < n; s++ {
		if !live[s] {
			continue
		}
		byTarget := map[int][]symRange{}
		for i, t := range d.trans[s] {
			if live[t] {
				byTarget[t] = append(byTarget[t], d.symbols[i])
			}
		}
		for t, ranges := range byTarget {
			merged := mergeAdjacent(ranges)
			edges[s][t] = rxUnion(edges[s][t], rxEdge{present: true, pattern: classPattern(merged)})
		}
		if d.accept[s] {
			edges[s][n+1] = rxEdge{present: true}
		}
	}
	edges[n][d.start] = rxEdge{present: true}

	for q := 0; q < n; q++ {
		if !live[q] {
			continue
		}
		loop := rxStar(edges[q][q])
		for i := 0; i < size; i++ {
			if i == q || !edges[i][q].present {
				continue
			}
			for j := 0; j < size; j++ {
				if j == q || !edges[q][j].present {
					continue
				}
				through := rxConcat(rxConcat(edges[i][q], loop), edges[q][j])
				edges[i][j] = rxUnion(edges[i][j], through)
			}
		}
		for i := 0; i < size; i++ {
			edges[i][q] = rxEdge{}
			edges[q][i] = rxEdge{}
		}
	}

	final := edges[n][n+1]
	if !final.present {
		return ""
	}
	return "^(?:" + final.pattern + ")$"
}

// liveStates marks states both reachable from start and co-reachable to an
// accepting state.
func (d *dfa) liveStates() []bool {
	n := len(d.trans)
	fwd := make([]bool, n)
	stack := []int{d.start}
	for len(stack) > 0 {
		s := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if fwd[s] {
			continue
		}
		fwd[s] = true
		stack = append(stack, d.trans[s]...)
	}

	// Reverse reachability from accepting states
	rev := make([][]int, n)
	for s := 0; s < n; s++ {
		for _, t := range d.trans[s] {
			rev[t] = append(rev[t], s)
		}
	}
	bwd := make([]bool, n)
	for s := 0; s < n; s++ {
		if d.accept[s] {
			stack = append(stack, s)
		}
	}
	for len(stack) > 0 {
		s := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if bwd[s] {
			continue
		}
		bwd[s] = true
		stack = append(stack, rev[s]...)
	}

	live := make([]bool, n)
	for s := 0; s < n; s++ {
		live[s] = fwd[s] && bwd[s]
	}
	return live
}

// mergeAdjacent coalesces sorted symbol ranges that touch.
func mergeAdjacent(ranges []symRange) []symRange {
	if len(ranges) == 0 {
		return ranges
	}
	out := []symRange{ranges[0]}
	for _, r := range ranges[1:] {
		last := &out[len(out)-1]
		if r.lo == last.hi+1 {
			last.hi = r.hi
		} else {
			out = append(out, r)
		}
	}
	return out
}
