package wire

import (
	"math"

	"github.com/tuannm99/novavolt/internal/alias/bx"
)

// Format gathers every convention of the wire format that a peer must agree
// on in one place.
type Format struct {
	Name string

	// ByteOrder applies to every multi-byte value, including the frame length
	// prefix and the 16-byte DECIMAL.
	ByteOrder bx.Order

	// NullLength is the length prefix that marks a null STRING or VARBINARY.
	NullLength int32

	// MaxFrameSize bounds a single frame body on read and write.
	MaxFrameSize int

	// MaxCount bounds int16 counters: parameters, array elements, columns,
	// result tables.
	MaxCount int

	// DecimalScale and DecimalPrecision describe the fixed-point DECIMAL
	// encoding: a 16-byte two's complement unscaled integer.
	DecimalScale     int32
	DecimalPrecision int
}

// DefaultFormat is the format spoken by the server.
var DefaultFormat = Format{
	Name:             "v1",
	ByteOrder:        bx.BE,
	NullLength:       -1,
	MaxFrameSize:     50 << 20,
	MaxCount:         math.MaxInt16,
	DecimalScale:     12,
	DecimalPrecision: 38,
}
