package wire

import (
	"fmt"
	"math"
)

// Type is the one-byte tag that identifies how a value is encoded.
type Type int8

const (
	Invalid   Type = 0
	Null      Type = 1
	TinyInt   Type = 3
	SmallInt  Type = 4
	Integer   Type = 5
	BigInt    Type = 6
	Float     Type = 8
	String    Type = 9
	Timestamp Type = 11
	Decimal   Type = 22
	Varbinary Type = 25
	Array     Type = -99
)

// Variable is the width reported for length-prefixed types.
const Variable = -1

type typeInfo struct {
	name  string
	width int
}

var registry = map[Type]typeInfo{
	Null:      {"NULL", 0},
	TinyInt:   {"TINYINT", 1},
	SmallInt:  {"SMALLINT", 2},
	Integer:   {"INTEGER", 4},
	BigInt:    {"BIGINT", 8},
	Float:     {"FLOAT", 8},
	String:    {"STRING", Variable},
	Timestamp: {"TIMESTAMP", 8},
	Decimal:   {"DECIMAL", 16},
	Varbinary: {"VARBINARY", Variable},
	Array:     {"ARRAY", Variable},
}

// Lookup validates a raw tag read from the wire.
func Lookup(tag int8) (Type, error) {
	t := Type(tag)
	if _, ok := registry[t]; !ok {
		return Invalid, fmt.Errorf("%w: tag %d", ErrInvalidWireType, tag)
	}
	return t, nil
}

// Width returns the encoded width for tag, or Variable when a length prefix
// has to be read first. Unknown tags never get a default width.
func Width(tag int8) (int, error) {
	t, err := Lookup(tag)
	if err != nil {
		return 0, err
	}
	return registry[t].width, nil
}

// Width is the method form of the package-level Width.
func (t Type) Width() (int, error) { return Width(int8(t)) }

// Valid reports whether t is a registered tag.
func (t Type) Valid() bool {
	_, ok := registry[t]
	return ok
}

// IsFixed reports whether values of t have a fixed encoded width.
func (t Type) IsFixed() bool {
	info, ok := registry[t]
	return ok && info.width != Variable
}

// IsScalar reports whether t can describe a parameter, an array element or a
// table column. NULL and ARRAY are structural tags only.
func (t Type) IsScalar() bool {
	return t.Valid() && t != Null && t != Array
}

// IsInteger reports whether t is one of the integer types.
func (t Type) IsInteger() bool {
	switch t {
	case TinyInt, SmallInt, Integer, BigInt:
		return true
	}
	return false
}

func (t Type) String() string {
	if info, ok := registry[t]; ok {
		return info.name
	}
	return fmt.Sprintf("INVALID(%d)", int8(t))
}

// IntRange returns the representable range of an integer type.
func IntRange(t Type) (lo, hi int64, ok bool) {
	switch t {
	case TinyInt:
		return math.MinInt8, math.MaxInt8, true
	case SmallInt:
		return math.MinInt16, math.MaxInt16, true
	case Integer:
		return math.MinInt32, math.MaxInt32, true
	case BigInt:
		return math.MinInt64, math.MaxInt64, true
	}
	return 0, 0, false
}

// Null sentinels used for table cells, which carry no tag byte.
const (
	NullTinyInt   int8    = math.MinInt8
	NullSmallInt  int16   = math.MinInt16
	NullInteger   int32   = math.MinInt32
	NullBigInt    int64   = math.MinInt64
	NullTimestamp int64   = math.MinInt64
	NullFloat     float64 = -1.7976931348623157e308
)

// NullDecimal is the minimum 128-bit two's complement value.
var NullDecimal = [16]byte{0x80}
