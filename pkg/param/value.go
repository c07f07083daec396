package param

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/tuannm99/novavolt/pkg/wire"
)

// Value is one actual argument: null, a scalar, or a homogeneous array of
// scalars. The zero Value is null.
type Value struct {
	typ   wire.Type // element type for arrays
	array bool

	i     int64 // integers and timestamp micros
	f     float64
	s     string
	b     []byte
	d     decimal.Decimal
	elems []Value
}

// ---- constructors ----

func Null() Value                     { return Value{typ: wire.Null} }
func TinyInt(v int8) Value            { return Value{typ: wire.TinyInt, i: int64(v)} }
func SmallInt(v int16) Value          { return Value{typ: wire.SmallInt, i: int64(v)} }
func Integer(v int32) Value           { return Value{typ: wire.Integer, i: int64(v)} }
func BigInt(v int64) Value            { return Value{typ: wire.BigInt, i: v} }
func Float(v float64) Value           { return Value{typ: wire.Float, f: v} }
func String(v string) Value           { return Value{typ: wire.String, s: v} }
func Decimal(v decimal.Decimal) Value { return Value{typ: wire.Decimal, d: v} }

// Varbinary copies v. A nil slice is an empty value, not null; use Null.
func Varbinary(v []byte) Value {
	cp := make([]byte, len(v))
	copy(cp, v)
	return Value{typ: wire.Varbinary, b: cp}
}

// Timestamp keeps microsecond precision, the resolution of the wire format.
func Timestamp(v time.Time) Value {
	return Value{typ: wire.Timestamp, i: wire.TimestampMicros(v)}
}

func TimestampMicros(us int64) Value { return Value{typ: wire.Timestamp, i: us} }

// Array builds an array of elem-typed values. Elements must be non-null
// scalars of exactly elem; widening happens when the array is added to a
// ParameterSet.
func Array(elem wire.Type, elems ...Value) (Value, error) {
	if !elem.IsScalar() {
		return Value{}, fmt.Errorf("%w: array element type %s", wire.ErrTypeMismatch, elem)
	}
	out := make([]Value, len(elems))
	for i, e := range elems {
		if e.array || e.typ != elem {
			return Value{}, fmt.Errorf("%w: array element %d is %s, want %s",
				wire.ErrTypeMismatch, i, e.kind(), elem)
		}
		out[i] = e
	}
	return Value{typ: elem, array: true, elems: out}, nil
}

func IntegerArray(v []int32) Value {
	elems := make([]Value, len(v))
	for i, x := range v {
		elems[i] = Integer(x)
	}
	return Value{typ: wire.Integer, array: true, elems: elems}
}

func BigIntArray(v []int64) Value {
	elems := make([]Value, len(v))
	for i, x := range v {
		elems[i] = BigInt(x)
	}
	return Value{typ: wire.BigInt, array: true, elems: elems}
}

func FloatArray(v []float64) Value {
	elems := make([]Value, len(v))
	for i, x := range v {
		elems[i] = Float(x)
	}
	return Value{typ: wire.Float, array: true, elems: elems}
}

func StringArray(v []string) Value {
	elems := make([]Value, len(v))
	for i, x := range v {
		elems[i] = String(x)
	}
	return Value{typ: wire.String, array: true, elems: elems}
}

// ---- accessors ----

// Type is the scalar type, the element type for arrays, or wire.Null.
func (v Value) Type() wire.Type { return v.typ }
func (v Value) IsArray() bool   { return v.array }
func (v Value) IsNull() bool    { return !v.array && (v.typ == wire.Null || v.typ == wire.Invalid) }

func (v Value) Int() int64               { return v.i }
func (v Value) Float() float64           { return v.f }
func (v Value) Str() string              { return v.s }
func (v Value) Bytes() []byte            { return v.b }
func (v Value) Decimal() decimal.Decimal { return v.d }
func (v Value) Time() time.Time          { return wire.TimeFromMicros(v.i) }

// Elems returns the array elements. The slice must not be modified.
func (v Value) Elems() []Value { return v.elems }

// Interface returns the natural Go value: nil, int8..int64, float64, string,
// []byte, time.Time, decimal.Decimal or []any for arrays.
func (v Value) Interface() any {
	if v.array {
		out := make([]any, len(v.elems))
		for i, e := range v.elems {
			out[i] = e.Interface()
		}
		return out
	}
	switch v.typ {
	case wire.TinyInt:
		return int8(v.i)
	case wire.SmallInt:
		return int16(v.i)
	case wire.Integer:
		return int32(v.i)
	case wire.BigInt:
		return v.i
	case wire.Float:
		return v.f
	case wire.String:
		return v.s
	case wire.Varbinary:
		return v.b
	case wire.Timestamp:
		return v.Time()
	case wire.Decimal:
		return v.d
	}
	return nil
}

// Equal compares type, array-ness and content.
func (v Value) Equal(o Value) bool {
	if v.IsNull() || o.IsNull() {
		return v.IsNull() == o.IsNull()
	}
	if v.typ != o.typ || v.array != o.array {
		return false
	}
	if v.array {
		if len(v.elems) != len(o.elems) {
			return false
		}
		for i := range v.elems {
			if !v.elems[i].Equal(o.elems[i]) {
				return false
			}
		}
		return true
	}
	switch v.typ {
	case wire.Float:
		return v.f == o.f
	case wire.String:
		return v.s == o.s
	case wire.Varbinary:
		return bytes.Equal(v.b, o.b)
	case wire.Decimal:
		return v.d.Equal(o.d)
	default:
		return v.i == o.i
	}
}

func (v Value) String() string {
	if v.IsNull() {
		return "NULL"
	}
	if v.array {
		parts := make([]string, len(v.elems))
		for i, e := range v.elems {
			parts[i] = e.String()
		}
		return "[" + strings.Join(parts, ", ") + "]"
	}
	switch v.typ {
	case wire.String:
		return fmt.Sprintf("%q", v.s)
	case wire.Varbinary:
		return fmt.Sprintf("x'%X'", v.b)
	case wire.Timestamp:
		return v.Time().Format(time.RFC3339Nano)
	}
	return fmt.Sprintf("%v", v.Interface())
}

func (v Value) kind() string {
	if v.IsNull() {
		return "NULL"
	}
	if v.array {
		return v.typ.String() + "[]"
	}
	return v.typ.String()
}
