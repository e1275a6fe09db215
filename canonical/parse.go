package canonical

import (
	"encoding/json"
	"fmt"
	"math/big"
	"sort"
	"strconv"
	"strings"

	"github.com/xeipuuv/gojsonschema"

	"github.com/c360/semschema/errors"
	"github.com/c360/semschema/pkg/regexlang"
)

// Keywords that carry no constraint and pass through the canonicalizer.
var annotationKeywords = map[string]bool{
	"$schema":     true,
	"$id":         true,
	"id":          true,
	"$comment":    true,
	"title":       true,
	"description": true,
	"default":     true,
	"examples":    true,
	"definitions": true,
	"readOnly":    true,
	"writeOnly":   true,
}

// Keywords the canonicalizer understands. Anything outside this set and the
// annotation set is rejected at the boundary rather than silently ignored.
var supportedKeywords = map[string]bool{
	"type": true, "enum": true, "stype": true,
	"minimum": true, "maximum": true,
	"exclusiveMinimum": true, "exclusiveMaximum": true, "multipleOf": true,
	"minLength": true, "maxLength": true, "pattern": true, "format": true,
	"items": true, "additionalItems": true,
	"minItems": true, "maxItems": true, "uniqueItems": true,
	"properties": true, "patternProperties": true,
	"additionalProperties": true, "required": true,
	"allOf": true, "anyOf": true, "oneOf": true, "not": true,
}

// Canonicalize converts a raw schema document into its canonical form.
// side labels which operand the document is, for error attribution. budget
// bounds recursion depth; exceeding it means the document graph is cyclic
// and yields an UnsupportedRecursiveRef error.
func Canonicalize(doc map[string]any, side errors.Side, budget int) (*Schema, error) {
	p := &parser{side: side, budget: budget}
	result, err := p.parse(doc, 0)
	if err != nil {
		return nil, err
	}
	if err := validateDocument(doc, side); err != nil {
		return nil, err
	}
	return result, nil
}

// validateDocument backstops the parser with the general-purpose schema
// compiler, so keyword misuse the recursive parse does not model is still
// rejected at the boundary.
func validateDocument(doc map[string]any, side errors.Side) error {
	data, err := json.Marshal(doc)
	if err != nil {
		if strings.Contains(err.Error(), "cycle") {
			return errors.NewRecursiveRef(side, doc)
		}
		return errors.WrapInvalid(
			fmt.Errorf("%w: %s: %v", errors.ErrInvalidSchema, side, err),
			"canonical", "Canonicalize", "document encode")
	}
	if _, err := gojsonschema.NewSchema(gojsonschema.NewBytesLoader(data)); err != nil {
		return errors.WrapInvalid(
			fmt.Errorf("%w: %s: %v", errors.ErrInvalidSchema, side, err),
			"canonical", "Canonicalize", "schema well-formedness")
	}
	return nil
}

type parser struct {
	side   errors.Side
	budget int
}

func (p *parser) invalid(format string, args ...any) error {
	return errors.WrapInvalid(
		fmt.Errorf("%w: %s: %s", errors.ErrInvalidSchema, p.side, fmt.Sprintf(format, args...)),
		"canonical", "Canonicalize", "keyword parse")
}

func (p *parser) unsupported(keyword string) error {
	return errors.WrapInvalid(
		fmt.Errorf("%w: %s: %q", errors.ErrUnsupportedKeyword, p.side, keyword),
		"canonical", "Canonicalize", "keyword parse")
}

func (p *parser) parse(doc map[string]any, depth int) (*Schema, error) {
	if depth > p.budget {
		return nil, errors.NewRecursiveRef(p.side, doc)
	}

	for keyword := range doc {
		if !supportedKeywords[keyword] && !annotationKeywords[keyword] {
			return nil, p.unsupported(keyword)
		}
	}

	result, err := p.parseAtom(doc, depth)
	if err != nil {
		return nil, err
	}

	if branches, ok, err := p.connective(doc, "allOf", depth); err != nil {
		return nil, err
	} else if ok {
		for _, branch := range branches {
			result = result.Meet(branch)
		}
	}
	for _, keyword := range []string{"anyOf", "oneOf"} {
		// oneOf relaxed to anyOf: exclusivity between branches is not
		// proved, so the union over-approximates.
		if branches, ok, err := p.connective(doc, keyword, depth); err != nil {
			return nil, err
		} else if ok {
			union := Bottom()
			for _, branch := range branches {
				union = union.Join(branch)
			}
			result = result.Meet(union)
		}
	}
	if raw, ok := doc["not"]; ok {
		sub, ok := raw.(map[string]any)
		if !ok {
			return nil, p.invalid("not must hold a schema")
		}
		operand, err := p.parse(sub, depth+1)
		if err != nil {
			return nil, err
		}
		complement, exact := operand.Complement()
		if !exact {
			return nil, p.unsupported("not over a constrained type")
		}
		result = result.Meet(complement)
	}

	result.Stype, _ = doc["stype"].(string)
	return result, nil
}

// connective extracts and parses one boolean connective list.
func (p *parser) connective(doc map[string]any, keyword string, depth int) ([]*Schema, bool, error) {
	raw, ok := doc[keyword]
	if !ok {
		return nil, false, nil
	}
	list, ok := raw.([]any)
	if !ok || len(list) == 0 {
		return nil, false, p.invalid("%s must hold a non-empty array of schemas", keyword)
	}
	branches := make([]*Schema, 0, len(list))
	for i, item := range list {
		sub, ok := item.(map[string]any)
		if !ok {
			return nil, false, p.invalid("%s[%d] is not a schema", keyword, i)
		}
		branch, err := p.parse(sub, depth+1)
		if err != nil {
			return nil, false, err
		}
		branches = append(branches, branch)
	}
	return branches, true, nil
}

// parseAtom converts the non-connective keywords of one schema node into a
// canonical schema: admitted kinds from the type keyword, per-kind
// descriptors from the kind-specific keywords, then the enum restriction.
func (p *parser) parseAtom(doc map[string]any, depth int) (*Schema, error) {
	kinds, err := p.typeSet(doc)
	if err != nil {
		return nil, err
	}

	out := &Schema{
		Null:    kinds["null"],
		Boolean: kinds["boolean"],
	}
	if kinds["number"] || kinds["integer"] {
		num, err := p.parseNumber(doc, kinds["integer"] && !kinds["number"])
		if err != nil {
			return nil, err
		}
		out.Number = num
	}
	if kinds["string"] {
		str, err := p.parseString(doc)
		if err != nil {
			return nil, err
		}
		out.String = str
	}
	if kinds["array"] {
		arr, err := p.parseArray(doc, depth)
		if err != nil {
			return nil, err
		}
		out.Array = arr
	}
	if kinds["object"] {
		obj, err := p.parseObject(doc, depth)
		if err != nil {
			return nil, err
		}
		out.Object = obj
	}

	if raw, ok := doc["enum"]; ok {
		enum, err := p.parseEnum(raw)
		if err != nil {
			return nil, err
		}
		out = out.Meet(enum)
	}
	return out, nil
}

var allKinds = []string{"null", "boolean", "number", "integer", "string", "array", "object"}

func (p *parser) typeSet(doc map[string]any) (map[string]bool, error) {
	kinds := map[string]bool{}
	raw, ok := doc["type"]
	if !ok {
		for _, k := range allKinds {
			kinds[k] = true
		}
		return kinds, nil
	}
	var names []string
	switch v := raw.(type) {
	case string:
		names = []string{v}
	case []any:
		for _, item := range v {
			name, ok := item.(string)
			if !ok {
				return nil, p.invalid("type list holds a non-string entry")
			}
			names = append(names, name)
		}
	default:
		return nil, p.invalid("type must be a string or list of strings")
	}
	for _, name := range names {
		valid := false
		for _, k := range allKinds {
			if name == k {
				valid = true
				break
			}
		}
		if !valid {
			return nil, p.invalid("unknown type %q", name)
		}
		kinds[name] = true
	}
	return kinds, nil
}

// parseEnum decomposes an enum into a union of singletons. String and
// numeric values become exact singletons; the remaining kinds widen to
// whole-kind presence, a documented approximation for composite literals.
func (p *parser) parseEnum(raw any) (*Schema, error) {
	list, ok := raw.([]any)
	if !ok || len(list) == 0 {
		return nil, p.invalid("enum must hold a non-empty array")
	}
	union := Bottom()
	for _, value := range list {
		switch v := value.(type) {
		case nil:
			union.Null = true
		case bool:
			union.Boolean = true
		case string:
			union = union.Join(&Schema{String: LiteralString(v)})
		case []any:
			union = union.Join(&Schema{Array: AnyArray()})
		case map[string]any:
			union = union.Join(&Schema{Object: AnyObject()})
		default:
			rat, ok := toRat(value)
			if !ok {
				return nil, p.invalid("enum value of unsupported type %T", value)
			}
			union = union.Join(&Schema{Number: PointNumber(rat)})
		}
	}
	return union, nil
}

func (p *parser) parseNumber(doc map[string]any, integer bool) (*Number, error) {
	num := AnyNumber()
	num.Integer = integer

	if raw, ok := doc["minimum"]; ok {
		v, ok := toRat(raw)
		if !ok {
			return nil, p.invalid("minimum is not numeric")
		}
		open, err := p.exclusiveFlag(doc, "exclusiveMinimum")
		if err != nil {
			return nil, err
		}
		num.Min = Finite(v, open)
	}
	if raw, ok := doc["maximum"]; ok {
		v, ok := toRat(raw)
		if !ok {
			return nil, p.invalid("maximum is not numeric")
		}
		open, err := p.exclusiveFlag(doc, "exclusiveMaximum")
		if err != nil {
			return nil, err
		}
		num.Max = Finite(v, open)
	}
	// Numeric exclusive bounds (draft 6 style) stand on their own.
	if v, ok := p.numericExclusive(doc, "exclusiveMinimum"); ok {
		num.Min = tighterLower(num.Min, Finite(v, true))
	}
	if v, ok := p.numericExclusive(doc, "exclusiveMaximum"); ok {
		num.Max = tighterUpper(num.Max, Finite(v, true))
	}

	if raw, ok := doc["multipleOf"]; ok {
		v, ok := toRat(raw)
		if !ok || v.Sign() <= 0 {
			return nil, p.invalid("multipleOf must be a positive number")
		}
		num.Step = v
	}
	if emptyInterval(num.Min, num.Max, num.Integer) {
		return nil, nil
	}
	return num, nil
}

func (p *parser) exclusiveFlag(doc map[string]any, keyword string) (bool, error) {
	raw, ok := doc[keyword]
	if !ok {
		return false, nil
	}
	if flag, ok := raw.(bool); ok {
		return flag, nil
	}
	if _, ok := toRat(raw); ok {
		return false, nil
	}
	return false, p.invalid("%s must be a boolean or number", keyword)
}

func (p *parser) numericExclusive(doc map[string]any, keyword string) (*big.Rat, bool) {
	raw, ok := doc[keyword]
	if !ok {
		return nil, false
	}
	v, ok := toRat(raw)
	return v, ok
}

func (p *parser) parseString(doc map[string]any) (*String, error) {
	str := AnyString()

	if raw, ok := doc["minLength"]; ok {
		n, ok := toInt(raw)
		if !ok || n < 0 {
			return nil, p.invalid("minLength must be a non-negative integer")
		}
		str.MinLen = n
	}
	if raw, ok := doc["maxLength"]; ok {
		n, ok := toInt(raw)
		if !ok || n < 0 {
			return nil, p.invalid("maxLength must be a non-negative integer")
		}
		str.MaxLen = n
	}
	if str.MaxLen != unboundedLen && str.MinLen > str.MaxLen {
		return nil, nil
	}

	if raw, ok := doc["pattern"]; ok {
		source, ok := raw.(string)
		if !ok {
			return nil, p.invalid("pattern must be a string")
		}
		lang, err := regexlang.Compile(source)
		if err != nil {
			return nil, errors.WrapInvalid(
				fmt.Errorf("%w: %s: pattern %q: %v", errors.ErrInvalidSchema, p.side, source, err),
				"canonical", "Canonicalize", "pattern compile")
		}
		str.Lang = lang
	}
	if raw, ok := doc["format"]; ok {
		name, ok := raw.(string)
		if !ok {
			return nil, p.invalid("format must be a string")
		}
		lang, err := formatLanguage(name)
		if err != nil {
			return nil, errors.Wrap(err, "canonical", "Canonicalize", "format compile")
		}
		if lang != nil {
			if str.Lang == nil {
				str.Lang = lang
			} else {
				str.Lang = str.Lang.Intersect(lang)
			}
		}
	}
	if str.Lang != nil && str.Lang.IsEmpty() {
		return nil, nil
	}
	return str, nil
}

func (p *parser) parseArray(doc map[string]any, depth int) (*Array, error) {
	arr := AnyArray()

	if raw, ok := doc["minItems"]; ok {
		n, ok := toInt(raw)
		if !ok || n < 0 {
			return nil, p.invalid("minItems must be a non-negative integer")
		}
		arr.MinItems = n
	}
	if raw, ok := doc["maxItems"]; ok {
		n, ok := toInt(raw)
		if !ok || n < 0 {
			return nil, p.invalid("maxItems must be a non-negative integer")
		}
		arr.MaxItems = n
	}
	if arr.MaxItems != unboundedLen && arr.MinItems > arr.MaxItems {
		return nil, nil
	}
	if raw, ok := doc["uniqueItems"]; ok {
		flag, ok := raw.(bool)
		if !ok {
			return nil, p.invalid("uniqueItems must be a boolean")
		}
		arr.Unique = flag
	}

	switch items := doc["items"].(type) {
	case nil:
	case map[string]any:
		sub, err := p.parse(items, depth+1)
		if err != nil {
			return nil, err
		}
		if !sub.IsTop() {
			arr.Items = sub
		}
	case []any:
		tuple := make([]*Schema, 0, len(items))
		for i, item := range items {
			m, ok := item.(map[string]any)
			if !ok {
				return nil, p.invalid("items[%d] is not a schema", i)
			}
			sub, err := p.parse(m, depth+1)
			if err != nil {
				return nil, err
			}
			tuple = append(tuple, sub)
		}
		arr.Tuple = tuple
	default:
		return nil, p.invalid("items must be a schema or list of schemas")
	}

	if raw, ok := doc["additionalItems"]; ok {
		if arr.Tuple == nil {
			// additionalItems is meaningful only alongside tuple items.
			return arr, nil
		}
		switch v := raw.(type) {
		case bool:
			if !v {
				arr.Additional = Bottom()
				if arr.MaxItems == unboundedLen || len(arr.Tuple) < arr.MaxItems {
					arr.MaxItems = len(arr.Tuple)
				}
				if arr.MinItems > arr.MaxItems {
					return nil, nil
				}
			}
		case map[string]any:
			sub, err := p.parse(v, depth+1)
			if err != nil {
				return nil, err
			}
			if !sub.IsTop() {
				arr.Additional = sub
			}
		default:
			return nil, p.invalid("additionalItems must be a boolean or schema")
		}
	}
	return arr, nil
}

func (p *parser) parseObject(doc map[string]any, depth int) (*Object, error) {
	obj := AnyObject()

	if raw, ok := doc["properties"]; ok {
		props, ok := raw.(map[string]any)
		if !ok {
			return nil, p.invalid("properties must be an object")
		}
		obj.Properties = make(map[string]*Schema, len(props))
		for name, sub := range props {
			m, ok := sub.(map[string]any)
			if !ok {
				return nil, p.invalid("properties.%s is not a schema", name)
			}
			parsed, err := p.parse(m, depth+1)
			if err != nil {
				return nil, err
			}
			obj.Properties[name] = parsed
		}
	}

	if raw, ok := doc["required"]; ok {
		list, ok := raw.([]any)
		if !ok {
			return nil, p.invalid("required must be an array of names")
		}
		obj.Required = make(map[string]bool, len(list))
		for _, item := range list {
			name, ok := item.(string)
			if !ok {
				return nil, p.invalid("required holds a non-string entry")
			}
			obj.Required[name] = true
		}
	}

	if raw, ok := doc["patternProperties"]; ok {
		pats, ok := raw.(map[string]any)
		if !ok {
			return nil, p.invalid("patternProperties must be an object")
		}
		for source, sub := range pats {
			m, ok := sub.(map[string]any)
			if !ok {
				return nil, p.invalid("patternProperties.%s is not a schema", source)
			}
			lang, err := regexlang.Compile(source)
			if err != nil {
				return nil, errors.WrapInvalid(
					fmt.Errorf("%w: %s: patternProperties %q: %v", errors.ErrInvalidSchema, p.side, source, err),
					"canonical", "Canonicalize", "pattern compile")
			}
			parsed, err := p.parse(m, depth+1)
			if err != nil {
				return nil, err
			}
			obj.Patterns = append(obj.Patterns, PatternSchema{Source: source, Lang: lang, Schema: parsed})
		}
		sortPatterns(obj.Patterns)
	}

	if raw, ok := doc["additionalProperties"]; ok {
		switch v := raw.(type) {
		case bool:
			if !v {
				obj.Additional = Bottom()
			}
		case map[string]any:
			sub, err := p.parse(v, depth+1)
			if err != nil {
				return nil, err
			}
			if !sub.IsTop() {
				obj.Additional = sub
			}
		default:
			return nil, p.invalid("additionalProperties must be a boolean or schema")
		}
	}
	return obj, nil
}

func sortPatterns(patterns []PatternSchema) {
	sort.Slice(patterns, func(i, j int) bool { return patterns[i].Source < patterns[j].Source })
}

func toRat(v any) (*big.Rat, bool) {
	switch n := v.(type) {
	case float64:
		// The shortest decimal rendering keeps 0.1 as 1/10 rather than its
		// binary approximation.
		r, ok := new(big.Rat).SetString(strconv.FormatFloat(n, 'g', -1, 64))
		if !ok {
			return nil, false
		}
		return r, true
	case int:
		return new(big.Rat).SetInt64(int64(n)), true
	case int64:
		return new(big.Rat).SetInt64(n), true
	case json.Number:
		r, ok := new(big.Rat).SetString(n.String())
		if !ok {
			return nil, false
		}
		return r, true
	}
	return nil, false
}

func toInt(v any) (int, bool) {
	switch n := v.(type) {
	case float64:
		i := int(n)
		if float64(i) != n {
			return 0, false
		}
		return i, true
	case int:
		return n, true
	case int64:
		return int(n), true
	case json.Number:
		i, err := n.Int64()
		if err != nil {
			return 0, false
		}
		return int(i), true
	}
	return 0, false
}
