package scene

import (
	"fmt"
	"math"
)

// Kind tags the variant held by a Value.
type Kind int

const (
	KindOther Kind = iota
	KindInt
	KindFloat
	KindText
	KindBool
	KindVector
)

func (k Kind) String() string {
	switch k {
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	case KindText:
		return "text"
	case KindBool:
		return "bool"
	case KindVector:
		return "vector"
	}
	return "other"
}

// Value is a dynamic property value: numeric, text, or vector. Anything the
// host exposes that fits none of those is carried as KindOther.
type Value struct {
	Kind  Kind
	Int   int64
	Float float64
	Text  string
	Bool  bool
	Vec   []float64
	Other any
}

func Int(v int64) Value { return Value{Kind: KindInt, Int: v} }
func Float(v float64) Value { return Value{Kind: KindFloat, Float: v} }
func Text(v string) Value { return Value{Kind: KindText, Text: v} }
func Bool(v bool) Value { return Value{Kind: KindBool, Bool: v} }
func Vector(v ...float64) Value { return Value{Kind: KindVector, Vec: v} }

// ValueOf converts a decoded Go value into a Value.
func ValueOf(v any) Value {
	switch x := v.(type) {
	case Value:
		return x
	case int:
		return Int(int64(x))
	case int32:
		return Int(int64(x))
	case int64:
		return Int(x)
	case uint64:
		// YAML decodes integers beyond int64 as uint64.
		if x > math.MaxInt64 {
			return Float(float64(x))
		}
		return Int(int64(x))
	case float32:
		return Float(float64(x))
	case float64:
		return Float(x)
	case string:
		return Text(x)
	case bool:
		return Bool(x)
	case Vec3:
		return Vector(x[0], x[1], x[2])
	case []float64:
		return Vector(x...)
	case []any:
		vec := make([]float64, 0, len(x))
		for _, e := range x {
			switch n := e.(type) {
			case int:
				vec = append(vec, float64(n))
			case int64:
				vec = append(vec, float64(n))
			case float64:
				vec = append(vec, n)
			default:
				return Value{Kind: KindOther, Other: v}
			}
		}
		return Vector(vec...)
	}
	return Value{Kind: KindOther, Other: v}
}

// Interface returns the Go value held by v.
func (v Value) Interface() any {
	switch v.Kind {
	case KindInt:
		return v.Int
	case KindFloat:
		return v.Float
	case KindText:
		return v.Text
	case KindBool:
		return v.Bool
	case KindVector:
		return v.Vec
	}
	return v.Other
}

func (v Value) String() string {
	return fmt.Sprint(v.Interface())
}
