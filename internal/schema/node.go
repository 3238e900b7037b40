package schema

import (
	"encoding/json"
	"fmt"
	"math"
	"slices"
	"strings"

	"github.com/thoreinstein/settler/internal/validator"
)

// Node validates one JSON value and returns its normalized form. Objects
// without a catch-all drop unknown keys, so the returned value may differ
// from the input.
type Node interface {
	parse(path string, v any, res *validator.Result) any
	describe() string
}

func join(path, key string) string {
	if path == "" {
		return key
	}
	return path + "." + key
}

func index(path string, i int) string {
	return fmt.Sprintf("%s[%d]", path, i)
}

func typeMismatch(path string, n Node, v any, res *validator.Result) {
	res.AddError(path, "expected "+n.describe()+", got "+kindOf(v), v)
}

func kindOf(v any) string {
	switch v.(type) {
	case nil:
		return "null"
	case string:
		return "string"
	case bool:
		return "boolean"
	case []any:
		return "array"
	case map[string]any:
		return "object"
	}
	if _, ok := toFloat(v); ok {
		return "number"
	}
	return fmt.Sprintf("%T", v)
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int8:
		return float64(n), true
	case int16:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint8:
		return float64(n), true
	case uint16:
		return float64(n), true
	case uint32:
		return float64(n), true
	case uint64:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	}
	return 0, false
}

type stringNode struct{}

// String matches a JSON string.
func String() Node { return stringNode{} }

func (stringNode) describe() string { return "string" }

func (n stringNode) parse(path string, v any, res *validator.Result) any {
	if _, ok := v.(string); !ok {
		typeMismatch(path, n, v, res)
	}
	return v
}

// intLimit is 2^63. Integers must decode into an int64 without wrapping.
const intLimit = 1 << 63

// NumberNode matches a JSON number, optionally bounded or integral.
type NumberNode struct {
	integer  bool
	min, max *float64
}

// Number matches any finite JSON number.
func Number() *NumberNode { return &NumberNode{} }

// Integer matches a JSON number with no fractional part.
func Integer() *NumberNode { return &NumberNode{integer: true} }

// Min returns a copy of n with an inclusive lower bound.
func (n *NumberNode) Min(v float64) *NumberNode {
	c := *n
	c.min = &v
	return &c
}

// Max returns a copy of n with an inclusive upper bound.
func (n *NumberNode) Max(v float64) *NumberNode {
	c := *n
	c.max = &v
	return &c
}

func (n *NumberNode) describe() string {
	if n.integer {
		return "integer"
	}
	return "number"
}

func (n *NumberNode) parse(path string, v any, res *validator.Result) any {
	f, ok := toFloat(v)
	if !ok || math.IsNaN(f) || math.IsInf(f, 0) {
		typeMismatch(path, n, v, res)
		return v
	}
	switch {
	case n.integer && f != math.Trunc(f):
		res.AddError(path, "expected integer", v)
	case n.integer && (f >= intLimit || f < -intLimit):
		res.AddError(path, "integer out of range", v)
	}
	if n.min != nil && f < *n.min {
		res.AddError(path, fmt.Sprintf("must be >= %v", *n.min), v)
	}
	if n.max != nil && f > *n.max {
		res.AddError(path, fmt.Sprintf("must be <= %v", *n.max), v)
	}
	return f
}

type boolNode struct{}

// Bool matches a JSON boolean.
func Bool() Node { return boolNode{} }

func (boolNode) describe() string { return "boolean" }

func (n boolNode) parse(path string, v any, res *validator.Result) any {
	if _, ok := v.(bool); !ok {
		typeMismatch(path, n, v, res)
	}
	return v
}

type nullNode struct{}

// Null matches JSON null.
func Null() Node { return nullNode{} }

func (nullNode) describe() string { return "null" }

func (n nullNode) parse(path string, v any, res *validator.Result) any {
	if v != nil {
		typeMismatch(path, n, v, res)
	}
	return nil
}

type jsonNode struct{}

// JSON matches any JSON value: literals, arrays and objects of JSON values.
func JSON() Node { return jsonNode{} }

func (jsonNode) describe() string { return "JSON value" }

func (n jsonNode) parse(path string, v any, res *validator.Result) any {
	switch t := v.(type) {
	case nil, string, bool:
		return v
	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = n.parse(index(path, i), e, res)
		}
		return out
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, e := range t {
			out[k] = n.parse(join(path, k), e, res)
		}
		return out
	}
	if f, ok := toFloat(v); ok && !math.IsNaN(f) && !math.IsInf(f, 0) {
		return f
	}
	typeMismatch(path, n, v, res)
	return v
}

type arrayNode struct{ elem Node }

// Array matches a JSON array whose elements all match elem.
func Array(elem Node) Node { return arrayNode{elem: elem} }

func (n arrayNode) describe() string { return "array of " + n.elem.describe() }

func (n arrayNode) parse(path string, v any, res *validator.Result) any {
	arr, ok := v.([]any)
	if !ok {
		typeMismatch(path, n, v, res)
		return v
	}
	out := make([]any, len(arr))
	for i, e := range arr {
		out[i] = n.elem.parse(index(path, i), e, res)
	}
	return out
}

type recordNode struct{ elem Node }

// Record matches a JSON object with arbitrary keys whose values match elem.
func Record(elem Node) Node { return recordNode{elem: elem} }

func (n recordNode) describe() string { return "record of " + n.elem.describe() }

func (n recordNode) parse(path string, v any, res *validator.Result) any {
	obj, ok := v.(map[string]any)
	if !ok {
		typeMismatch(path, n, v, res)
		return v
	}
	out := make(map[string]any, len(obj))
	for k, e := range obj {
		out[k] = n.elem.parse(join(path, k), e, res)
	}
	return out
}

type unionNode struct{ options []Node }

// Union matches the first option that validates cleanly.
func Union(options ...Node) Node { return unionNode{options: options} }

func (n unionNode) describe() string {
	names := make([]string, len(n.options))
	for i, o := range n.options {
		names[i] = o.describe()
	}
	return strings.Join(names, " | ")
}

func (n unionNode) parse(path string, v any, res *validator.Result) any {
	for _, o := range n.options {
		trial := &validator.Result{}
		out := o.parse(path, v, trial)
		if !trial.HasErrors() {
			res.Merge(trial)
			return out
		}
	}
	typeMismatch(path, n, v, res)
	return v
}

// Field is one named property of an object schema.
type Field struct {
	Name     string
	Node     Node
	Optional bool
}

// F declares a required field.
func F(name string, n Node) Field { return Field{Name: name, Node: n} }

// Opt declares a field that may be absent. A present null still has to
// match n.
func Opt(name string, n Node) Field { return Field{Name: name, Node: n, Optional: true} }

// ObjectNode matches a JSON object with declared fields.
type ObjectNode struct {
	fields   []Field
	catchall Node
}

// Object matches a JSON object with the given fields. Keys that are not
// declared are dropped from the parsed value and reported as warnings.
func Object(fields ...Field) *ObjectNode {
	return &ObjectNode{fields: slices.Clone(fields)}
}

// Catchall returns a copy of n that keeps undeclared keys, validating each
// against rest.
func (n *ObjectNode) Catchall(rest Node) *ObjectNode {
	c := *n
	c.catchall = rest
	return &c
}

// Extend returns a copy of n with additional fields. A field with an
// existing name replaces the earlier declaration.
func (n *ObjectNode) Extend(fields ...Field) *ObjectNode {
	c := *n
	c.fields = slices.Clone(n.fields)
	for _, f := range fields {
		if i := slices.IndexFunc(c.fields, func(e Field) bool { return e.Name == f.Name }); i >= 0 {
			c.fields[i] = f
			continue
		}
		c.fields = append(c.fields, f)
	}
	return &c
}

func (n *ObjectNode) describe() string { return "object" }

func (n *ObjectNode) parse(path string, v any, res *validator.Result) any {
	obj, ok := v.(map[string]any)
	if !ok {
		typeMismatch(path, n, v, res)
		return v
	}

	out := make(map[string]any, len(obj))
	declared := make(map[string]struct{}, len(n.fields))
	for _, f := range n.fields {
		declared[f.Name] = struct{}{}
		val, present := obj[f.Name]
		if !present {
			if !f.Optional {
				res.AddError(join(path, f.Name), "required", nil)
			}
			continue
		}
		out[f.Name] = f.Node.parse(join(path, f.Name), val, res)
	}

	for k, val := range obj {
		if _, ok := declared[k]; ok {
			continue
		}
		if n.catchall != nil {
			out[k] = n.catchall.parse(join(path, k), val, res)
			continue
		}
		res.AddWarning(join(path, k), "unknown key will be dropped", nil)
	}
	return out
}
