package basic

import "fmt"

// Value is the tagged runtime value: a number, text, an array
// reference, or a user-TYPE instance. Numbers are stored as float64
// throughout; integer-suffixed variables truncate on store.
type Value struct {
	Num       float64
	Str       string
	IsNumeric bool
	ArrayRef  *Array
	TypeRef   *TypeInstance
}

func NumberValue(n float64) Value { return Value{Num: n, IsNumeric: true} }
func TextValue(s string) Value    { return Value{Str: s, IsNumeric: false} }

func (v Value) IsArray() bool      { return v.ArrayRef != nil }
func (v Value) IsTypeInstance() bool { return v.TypeRef != nil }

// Array is a flat, row-major element store. Element count per axis is
// upper+1 (0-based inclusive): DIM A(10) creates 11 cells.
type Array struct {
	Dims        []int // upper bound per axis
	Elements    []Value
	ElementKind string // "" default numeric/string by name sigil, or a user type name
}

func NewArray(dims []int, kind string) *Array {
	count := 1
	for _, d := range dims {
		count *= d + 1
	}
	return &Array{Dims: dims, Elements: make([]Value, count), ElementKind: kind}
}

func (a *Array) FlatIndex(indices []int) (int, error) {
	if len(indices) != len(a.Dims) {
		return 0, fmt.Errorf("subscript out of range")
	}
	idx := 0
	for i, ix := range indices {
		if ix < 0 || ix > a.Dims[i] {
			return 0, fmt.Errorf("subscript out of range")
		}
		idx = idx*(a.Dims[i]+1) + ix
	}
	return idx, nil
}

// TypeInstance is one allocated value of a user-defined TYPE.
type TypeInstance struct {
	TypeName string
	Fields   map[string]Value
}

// UserType describes a TYPE...END TYPE declaration: an ordered list of
// (field_name, type_name, optional_string_width).
type UserType struct {
	Name   string
	Fields []UserTypeField
}
type UserTypeField struct {
	Name  string
	Type  string
	Width int // string field width; 0 if not fixed-width string
}

func NewTypeInstance(ut *UserType) *TypeInstance {
	ti := &TypeInstance{TypeName: ut.Name, Fields: make(map[string]Value, len(ut.Fields))}
	for _, f := range ut.Fields {
		if isStringTypeName(f.Type) {
			ti.Fields[f.Name] = TextValue("")
		} else {
			ti.Fields[f.Name] = NumberValue(0)
		}
	}
	return ti
}

func isStringTypeName(t string) bool {
	switch t {
	case "STRING", "STRING$":
		return true
	}
	return false
}
