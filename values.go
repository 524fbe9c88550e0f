package agpconf

import (
	"encoding/json"
	"strconv"
	"strings"

	"github.com/zclconf/go-cty/cty"
)

// ValueKind represents the kind of a declaration value.
type ValueKind int

const (
	// ValueNull indicates a call without arguments or the literal null.
	ValueNull ValueKind = iota
	// ValueString indicates a string literal.
	ValueString
	// ValueInt indicates an integer literal.
	ValueInt
	// ValueBool indicates true or false.
	ValueBool
	// ValueRef indicates an identifier reference or an unparsed expression. Never evaluated.
	ValueRef
	// ValueList indicates an ordered list of values.
	ValueList
	// ValueExternal indicates an opaque call such as file("x"). Never evaluated.
	ValueExternal
)

// String returns a readable name of the value kind.
func (k ValueKind) String() string {
	switch k {
	case ValueString:
		return "string"
	case ValueInt:
		return "int"
	case ValueBool:
		return "bool"
	case ValueRef:
		return "ref"
	case ValueList:
		return "list"
	case ValueExternal:
		return "external"
	default:
		return "null"
	}
}

// Value is a normalized declaration value.
type Value struct {
	Str  string    // String value, reference text or external call name
	List []Value   // List elements or external call arguments
	Kind ValueKind // Value kind
	Int  int64     // Integer value
	Bool bool      // Boolean value
}

// StringValue creates a string value.
func StringValue(s string) Value { return Value{Kind: ValueString, Str: s} }

// IntValue creates an integer value.
func IntValue(n int64) Value { return Value{Kind: ValueInt, Int: n} }

// BoolValue creates a boolean value.
func BoolValue(b bool) Value { return Value{Kind: ValueBool, Bool: b} }

// RefValue creates an identifier reference.
func RefValue(name string) Value { return Value{Kind: ValueRef, Str: name} }

// ListValue creates a list value.
func ListValue(items ...Value) Value { return Value{Kind: ValueList, List: items} }

// ExternalValue creates an opaque external call value.
func ExternalValue(name string, args ...Value) Value {
	return Value{Kind: ValueExternal, Str: name, List: args}
}

// IsNull reports whether the value is null.
func (v Value) IsNull() bool { return v.Kind == ValueNull }

// Items returns list elements, or the value itself as a one-element slice.
// Null yields no items.
func (v Value) Items() []Value {
	switch v.Kind {
	case ValueList:
		return v.List
	case ValueNull:
		return nil
	default:
		return []Value{v}
	}
}

// Equal reports whether two values are structurally equal.
func (v Value) Equal(o Value) bool {
	if v.Kind != o.Kind {
		return false
	}

	switch v.Kind {
	case ValueString, ValueRef:
		return v.Str == o.Str
	case ValueInt:
		return v.Int == o.Int
	case ValueBool:
		return v.Bool == o.Bool
	case ValueList, ValueExternal:
		if v.Str != o.Str || len(v.List) != len(o.List) {
			return false
		}
		for i := range v.List {
			if !v.List[i].Equal(o.List[i]) {
				return false
			}
		}
		return true
	default:
		return true
	}
}

// String renders the value in Kotlin DSL syntax.
func (v Value) String() string {
	switch v.Kind {
	case ValueString:
		return quoteString(v.Str)
	case ValueInt:
		return strconv.FormatInt(v.Int, 10)
	case ValueBool:
		return strconv.FormatBool(v.Bool)
	case ValueRef:
		return v.Str
	case ValueList:
		return "listOf(" + joinValues(v.List) + ")"
	case ValueExternal:
		return v.Str + "(" + joinValues(v.List) + ")"
	default:
		return "null"
	}
}

// Cty converts the value to a cty value.
// References and external calls are unknown values: they are never evaluated.
func (v Value) Cty() cty.Value {
	switch v.Kind {
	case ValueString:
		return cty.StringVal(v.Str)
	case ValueInt:
		return cty.NumberIntVal(v.Int)
	case ValueBool:
		return cty.BoolVal(v.Bool)
	case ValueList:
		if len(v.List) == 0 {
			return cty.EmptyTupleVal
		}
		elems := make([]cty.Value, 0, len(v.List))
		for _, item := range v.List {
			elems = append(elems, item.Cty())
		}
		return cty.TupleVal(elems)
	case ValueRef, ValueExternal:
		return cty.DynamicVal
	default:
		return cty.NullVal(cty.DynamicPseudoType)
	}
}

// MarshalJSON encodes literals as JSON scalars, lists as arrays,
// references as {"ref": ...} and external calls as {"call": ..., "args": [...]}.
func (v Value) MarshalJSON() ([]byte, error) {
	switch v.Kind {
	case ValueString:
		return json.Marshal(v.Str)
	case ValueInt:
		return json.Marshal(v.Int)
	case ValueBool:
		return json.Marshal(v.Bool)
	case ValueRef:
		return json.Marshal(struct {
			Ref string `json:"ref"`
		}{v.Str})
	case ValueList:
		if v.List == nil {
			return []byte("[]"), nil
		}
		return json.Marshal(v.List)
	case ValueExternal:
		return json.Marshal(struct {
			Call string  `json:"call"`
			Args []Value `json:"args"`
		}{v.Str, v.List})
	default:
		return []byte("null"), nil
	}
}

// MarshalYAML encodes the value the same way as MarshalJSON.
func (v Value) MarshalYAML() (any, error) {
	switch v.Kind {
	case ValueString:
		return v.Str, nil
	case ValueInt:
		return v.Int, nil
	case ValueBool:
		return v.Bool, nil
	case ValueRef:
		return map[string]string{"ref": v.Str}, nil
	case ValueList:
		if v.List == nil {
			return []Value{}, nil
		}
		return v.List, nil
	case ValueExternal:
		return map[string]any{"call": v.Str, "args": v.List}, nil
	default:
		return nil, nil
	}
}

// joinValues renders values separated by commas.
func joinValues(vals []Value) string {
	parts := make([]string, 0, len(vals))
	for _, v := range vals {
		parts = append(parts, v.String())
	}

	return strings.Join(parts, ", ")
}

// quoteString renders a Kotlin string literal. Dollar signs are escaped to avoid templates.
func quoteString(s string) string {
	var b strings.Builder
	b.Grow(len(s) + 2)
	b.WriteByte('"')
	for _, r := range s {
		switch r {
		case '"', '\\', '$':
			b.WriteByte('\\')
			b.WriteRune(r)
		case '\n':
			b.WriteString(`\n`)
		case '\t':
			b.WriteString(`\t`)
		case '\r':
			b.WriteString(`\r`)
		default:
			b.WriteRune(r)
		}
	}
	b.WriteByte('"')

	return b.String()
}
