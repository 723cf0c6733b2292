// Package value implements the host-side dynamic value model the WASM
// guest references by integer handle: the Value sum type, its typed object
// wrappers, HTML node references, and the handle-addressed Store that owns
// them.
package value

import "time"

// Kind discriminates the Value sum type (§3 Data Model).
type Kind int

const (
	KindNull Kind = iota
	KindInt
	KindFloat
	KindString
	KindBool
	KindArray
	KindDate
	KindHTML
	KindObject
)

func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	case KindString:
		return "string"
	case KindBool:
		return "bool"
	case KindArray:
		return "array"
	case KindDate:
		return "date"
	case KindHTML:
		return "html"
	case KindObject:
		return "object"
	default:
		return "unknown"
	}
}

// TypeTag is the integer tag std.typeof returns (§4.3): 0=Null, 1=Int,
// 2=Float, 3=String, 4=Bool, 5=Array, 6=Object, 7=Date, 8=Node, 9=Unknown.
// HTML node references (KindHTML) report 8.
func (k Kind) TypeTag() int32 {
	switch k {
	case KindNull:
		return 0
	case KindInt:
		return 1
	case KindFloat:
		return 2
	case KindString:
		return 3
	case KindBool:
		return 4
	case KindArray:
		return 5
	case KindObject:
		return 6
	case KindDate:
		return 7
	case KindHTML:
		return 8
	default:
		return 9
	}
}

// Value is the host-side dynamic value a handle ultimately resolves to.
type Value struct {
	Kind Kind

	Int    int64
	Float  float64
	Str    string
	Bool   bool
	Array  []Value
	Date   time.Time
	HTML   []HtmlRef
	Object ObjectValue
}

func Null() Value                  { return Value{Kind: KindNull} }
func Int(v int64) Value            { return Value{Kind: KindInt, Int: v} }
func Float(v float64) Value        { return Value{Kind: KindFloat, Float: v} }
func String(v string) Value        { return Value{Kind: KindString, Str: v} }
func Bool(v bool) Value            { return Value{Kind: KindBool, Bool: v} }
func Array(v []Value) Value        { return Value{Kind: KindArray, Array: v} }
func Date(v time.Time) Value       { return Value{Kind: KindDate, Date: v} }
func HTML(v []HtmlRef) Value       { return Value{Kind: KindHTML, HTML: v} }
func Object(v ObjectValue) Value   { return Value{Kind: KindObject, Object: v} }

// Clone deep-copies a Value, matching std.copy's "deep-clone" contract.
func (v Value) Clone() Value {
	clone := v
	if v.Array != nil {
		clone.Array = make([]Value, len(v.Array))
		for i, e := range v.Array {
			clone.Array[i] = e.Clone()
		}
	}
	if v.HTML != nil {
		clone.HTML = append([]HtmlRef(nil), v.HTML...)
	}
	clone.Object = v.Object.Clone()
	return clone
}
