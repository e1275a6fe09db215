package canonical

import (
	"github.com/c360/semschema/pkg/regexlang"
)

// String is the canonical string descriptor: a length interval and a
// regular language. A nil language admits every string.
type String struct {
	MinLen int
	MaxLen int
	Lang   *regexlang.Language
}

// AnyString returns the unconstrained string descriptor.
func AnyString() *String {
	return &String{MaxLen: unboundedLen}
}

// LiteralString returns the descriptor admitting exactly one string.
func LiteralString(s string) *String {
	n := len([]rune(s))
	return &String{MinLen: n, MaxLen: n, Lang: regexlang.Literal(s)}
}

// IsUnconstrained reports whether the descriptor admits every string.
func (s *String) IsUnconstrained() bool {
	return s.MinLen == 0 && s.MaxLen == unboundedLen &&
		(s.Lang == nil || s.Lang.IsUniversal())
}

func (s *String) language() *regexlang.Language {
	if s.Lang == nil {
		return regexlang.Universal()
	}
	return s.Lang
}

// Subtype reports whether every string admitted by s is admitted by other.
func (s *String) Subtype(other *String) bool {
	if !lenWithin(s.MinLen, s.MaxLen, other.MinLen, other.MaxLen) {
		return false
	}
	if other.Lang == nil {
		return true
	}
	return s.language().Subset(other.Lang)
}

// Meet intersects two string descriptors. Returns nil when no string
// satisfies both.
func (s *String) Meet(other *String) *String {
	min, max, ok := lenIntersect(s.MinLen, s.MaxLen, other.MinLen, other.MaxLen)
	if !ok {
		return nil
	}
	out := &String{MinLen: min, MaxLen: max}
	switch {
	case s.Lang == nil:
		out.Lang = other.Lang
	case other.Lang == nil:
		out.Lang = s.Lang
	default:
		out.Lang = s.Lang.Intersect(other.Lang)
		if out.Lang.IsEmpty() {
			return nil
		}
	}
	return out
}

// Join unions the languages and takes the convex hull of the length
// intervals.
func (s *String) Join(other *String) *String {
	min, max := lenHull(s.MinLen, s.MaxLen, other.MinLen, other.MaxLen)
	out := &String{MinLen: min, MaxLen: max}
	if s.Lang != nil && other.Lang != nil {
		out.Lang = s.Lang.Union(other.Lang)
	}
	return out
}

// Equal reports whether two descriptors admit the same strings.
func (s *String) Equal(other *String) bool {
	return s.Subtype(other) && other.Subtype(s)
}

// formatPatterns maps the supported format names onto regular patterns over
// the same language algebra that pattern uses. Unrecognized formats are
// treated as annotations and ignored, matching common validator behavior.
var formatPatterns = map[string]string{
	"date-time": `^\d{4}-\d{2}-\d{2}[Tt]\d{2}:\d{2}:\d{2}(\.\d+)?([Zz]|[+-]\d{2}:\d{2})$`,
	"date":      `^\d{4}-\d{2}-\d{2}$`,
	"time":      `^\d{2}:\d{2}:\d{2}(\.\d+)?([Zz]|[+-]\d{2}:\d{2})?$`,
	"email":     `^[^@\s]+@[^@\s]+\.[^@\s]+$`,
	"hostname":  `^[A-Za-z0-9]([A-Za-z0-9-]{0,61}[A-Za-z0-9])?(\.[A-Za-z0-9]([A-Za-z0-9-]{0,61}[A-Za-z0-9])?)*$`,
	"ipv4":      `^(\d{1,3}\.){3}\d{1,3}$`,
	"ipv6":      `^[0-9A-Fa-f:.]+$`,
	"uri":       `^[A-Za-z][A-Za-z0-9+.-]*:\S*$`,
	"uuid":      `^[0-9A-Fa-f]{8}-[0-9A-Fa-f]{4}-[0-9A-Fa-f]{4}-[0-9A-Fa-f]{4}-[0-9A-Fa-f]{12}$`,
}

// formatLanguage compiles the language of a format name, or nil when the
// format carries no checkable constraint.
func formatLanguage(name string) (*regexlang.Language, error) {
	pattern, ok := formatPatterns[name]
	if !ok {
		return nil, nil
	}
	return regexlang.Compile(pattern)
}
