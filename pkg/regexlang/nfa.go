package regexlang

import (
	"fmt"
	"regexp/syntax"
	"strings"
	"unicode"

	"github.com/c360/semschema/errors"
)

// maxRepeatExpansion bounds {m,n} counted-repeat expansion during NFA
// construction. Larger counts would explode the state space.
const maxRepeatExpansion = 64

// nfaEdge is a transition consuming any rune in [lo, hi].
type nfaEdge struct {
	lo, hi rune
	to     int
}

// nfaState holds epsilon moves and consuming transitions.
type nfaState struct {
	eps   []int
	edges []nfaEdge
}

// nfa is a Thompson automaton with a single start and single accept state.
type nfa struct {
	states []nfaState
	start  int
	accept int
}

type frag struct {
	start, end int
}

type builder struct {
	states []nfaState
}

func (b *builder) add() int {
	b.states = append(b.states, nfaState{})
	return len(b.states) - 1
}

func (b *builder) eps(from, to int) {
	b.states[from].eps = append(b.states[from].eps, to)
}

func (b *builder) edge(from int, lo, hi rune, to int) {
	if lo > hi {
		return
	}
	b.states[from].edges = append(b.states[from].edges, nfaEdge{lo: lo, hi: hi, to: to})
}

// anchorPattern converts JSON Schema search semantics to a fully anchored
// pattern: explicit ^/$ at the ends are honored, otherwise the pattern is
// wrapped in (?s:.*) on the unanchored side.
func anchorPattern(pattern string) string {
	var sb strings.Builder
	body := pattern

	anchoredStart := strings.HasPrefix(body, "^")
	if anchoredStart {
		body = body[1:]
	}
	// A trailing $ is an anchor only when preceded by an even number of
	// backslashes; an odd count makes it an escaped literal.
	anchoredEnd := false
	if strings.HasSuffix(body, "$") {
		backslashes := 0
		for i := len(body) - 2; i >= 0 && body[i] == '\\'; i-- {
			backslashes++
		}
		if backslashes%2 == 0 {
			anchoredEnd = true
			body = body[:len(body)-1]
		}
	}

	if !anchoredStart {
		sb.WriteString(`(?s:.*)`)
	}
	sb.WriteString("(?:")
	sb.WriteString(body)
	sb.WriteString(")")
	if !anchoredEnd {
		sb.WriteString(`(?s:.*)`)
	}
	return sb.String()
}

// compilePattern parses an (already anchored) pattern into an NFA.
func compilePattern(pattern string) (*nfa, error) {
	re, err := syntax.Parse(pattern, syntax.Perl)
	if err != nil {
		return nil, errors.WrapInvalid(err, "regexlang", "compilePattern", "pattern parse")
	}
	// Counted repeats must be checked before Simplify rewrites them into
	// nested concatenations.
	if err := checkRepeatBounds(re); err != nil {
		return nil, err
	}
	re = re.Simplify()

	b := &builder{}
	f, err := b.fragment(re)
	if err != nil {
		return nil, err
	}
	return &nfa{states: b.states, start: f.start, accept: f.end}, nil
}

// checkRepeatBounds rejects counted repeats whose expansion would blow up
// the automaton state space.
func checkRepeatBounds(re *syntax.Regexp) error {
	if re.Op == syntax.OpRepeat {
		max := re.Max
		if max == -1 {
			max = re.Min
		}
		if max > maxRepeatExpansion {
			return errors.WrapInvalid(errors.ErrUnsupportedKeyword, "regexlang", "compilePattern",
				fmt.Sprintf("repeat count %d exceeds limit %d", max, maxRepeatExpansion))
		}
	}
	for _, sub := range re.Sub {
		if err := checkRepeatBounds(sub); err != nil {
			return err
		}
	}
	return nil
}

// literalNFA builds the automaton accepting exactly s.
func literalNFA(s string) *nfa {
	b := &builder{}
	start := b.add()
	cur := start
	for _, r := range s {
		next := b.add()
		b.edge(cur, r, r, next)
		cur = next
	}
	return &nfa{states: b.states, start: start, accept: cur}
}

func (b *builder) fragment(re *syntax.Regexp) (frag, error) {
	switch re.Op {
	case syntax.OpNoMatch:
		// Two disconnected states: nothing is accepted.
		start := b.add()
		end := b.add()
		return frag{start, end}, nil

	case syntax.OpEmptyMatch:
		s := b.add()
		return frag{s, s}, nil

	case syntax.OpLiteral:
		start := b.add()
		cur := start
		for _, r := range re.Rune {
			next := b.add()
			if re.Flags&syntax.FoldCase != 0 {
				for _, fr := range foldOrbit(r) {
					b.edge(cur, fr, fr, next)
				}
			} else {
				b.edge(cur, r, r, next)
			}
			cur = next
		}
		return frag{start, cur}, nil

	case syntax.OpCharClass:
		start := b.add()
		end := b.add()
		for i := 0; i+1 < len(re.Rune); i += 2 {
			b.edge(start, re.Rune[i], re.Rune[i+1], end)
		}
		return frag{start, end}, nil

	case syntax.OpAnyChar:
		start := b.add()
		end := b.add()
		b.edge(start, 0, unicode.MaxRune, end)
		return frag{start, end}, nil

	case syntax.OpAnyCharNotNL:
		start := b.add()
		end := b.add()
		b.edge(start, 0, '\n'-1, end)
		b.edge(start, '\n'+1, unicode.MaxRune, end)
		return frag{start, end}, nil

	case syntax.OpCapture:
		return b.fragment(re.Sub[0])

	case syntax.OpConcat:
		start := b.add()
		cur := start
		for _, sub := range re.Sub {
			f, err := b.fragment(sub)
			if err != nil {
				return frag{}, err
			}
			b.eps(cur, f.start)
			cur = f.end
		}
		return frag{start, cur}, nil

	case syntax.OpAlternate:
		start := b.add()
		end := b.add()
		for _, sub := range re.Sub {
			f, err := b.fragment(sub)
			if err != nil {
				return frag{}, err
			}
			b.eps(start, f.start)
			b.eps(f.end, end)
		}
		return frag{start, end}, nil

	case syntax.OpStar:
		f, err := b.fragment(re.Sub[0])
		if err != nil {
			return frag{}, err
		}
		start := b.add()
		end := b.add()
		b.eps(start, f.start)
		b.eps(start, end)
		b.eps(f.end, f.start)
		b.eps(f.end, end)
		return frag{start, end}, nil

	case syntax.OpPlus:
		f, err := b.fragment(re.Sub[0])
		if err != nil {
			return frag{}, err
		}
		start := b.add()
		end := b.add()
		b.eps(start, f.start)
		b.eps(f.end, f.start)
		b.eps(f.end, end)
		return frag{start, end}, nil

	case syntax.OpQuest:
		f, err := b.fragment(re.Sub[0])
		if err != nil {
			return frag{}, err
		}
		start := b.add()
		end := b.add()
		b.eps(start, f.start)
		b.eps(start, end)
		b.eps(f.end, end)
		return frag{start, end}, nil

	case syntax.OpRepeat:
		min, max := re.Min, re.Max
		if max == -1 {
			max = min
		}
		if max > maxRepeatExpansion {
			return frag{}, errors.WrapInvalid(errors.ErrUnsupportedKeyword, "regexlang", "fragment",
				fmt.Sprintf("repeat count %d exceeds limit %d", max, maxRepeatExpansion))
		}
		start := b.add()
		cur := start
		for i := 0; i < min; i++ {
			f, err := b.fragment(re.Sub[0])
			if err != nil {
				return frag{}, err
			}
			b.eps(cur, f.start)
			cur = f.end
		}
		if re.Max == -1 {
			// Trailing unbounded tail: sub*
			f, err := b.fragment(re.Sub[0])
			if err != nil {
				return frag{}, err
			}
			end := b.add()
			b.eps(cur, f.start)
			b.eps(cur, end)
			b.eps(f.end, f.start)
			b.eps(f.end, end)
			return frag{start, end}, nil
		}
		end := b.add()
		b.eps(cur, end)
		for i := min; i < re.Max; i++ {
			f, err := b.fragment(re.Sub[0])
			if err != nil {
				return frag{}, err
			}
			b.eps(cur, f.start)
			b.eps(f.end, end)
			cur = f.end
		}
		return frag{start, end}, nil

	case syntax.OpBeginLine, syntax.OpEndLine, syntax.OpBeginText, syntax.OpEndText,
		syntax.OpWordBoundary, syntax.OpNoWordBoundary:
		return frag{}, errors.WrapInvalid(errors.ErrUnsupportedKeyword, "regexlang", "fragment",
			"inner anchors are not supported in schema patterns")

	default:
		return frag{}, errors.WrapInvalid(errors.ErrUnsupportedKeyword, "regexlang", "fragment",
			fmt.Sprintf("unsupported regex construct %v", re.Op))
	}
}

// foldOrbit returns all runes equal to r under simple case folding.
func foldOrbit(r rune) []rune {
	orbit := []rune{r}
	for f := unicode.SimpleFold(r); f != r; f = unicode.SimpleFold(f) {
		orbit = append(orbit, f)
	}
	return orbit
}
