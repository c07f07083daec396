// stand for bytes helper
package bx

import (
	"encoding/binary"
	"math"
)

// Order is a byte order that can also append.
type Order interface {
	binary.ByteOrder
	binary.AppendByteOrder
}

// BE is the default wire byte order.
var BE Order = binary.BigEndian

// IsBig reports whether o puts the most significant byte first.
func IsBig(o Order) bool { return o.Uint16([]byte{0, 1}) == 1 }

// --- read ---
func I8(b []byte) int8              { return int8(b[0]) }
func I16(o Order, b []byte) int16   { return int16(o.Uint16(b)) }
func I32(o Order, b []byte) int32   { return int32(o.Uint32(b)) }
func I64(o Order, b []byte) int64   { return int64(o.Uint64(b)) }
func F64(o Order, b []byte) float64 { return math.Float64frombits(o.Uint64(b)) }

// --- At (offset) ---
func I8At(b []byte, off int) int8              { return I8(b[off:]) }
func I16At(o Order, b []byte, off int) int16   { return I16(o, b[off:]) }
func I32At(o Order, b []byte, off int) int32   { return I32(o, b[off:]) }
func I64At(o Order, b []byte, off int) int64   { return I64(o, b[off:]) }
func F64At(o Order, b []byte, off int) float64 { return F64(o, b[off:]) }
func PutI32At(o Order, b []byte, off int, v int32) {
	o.PutUint32(b[off:], uint32(v))
}

// --- append ---
func AppendI16(o Order, b []byte, v int16) []byte   { return o.AppendUint16(b, uint16(v)) }
func AppendI32(o Order, b []byte, v int32) []byte   { return o.AppendUint32(b, uint32(v)) }
func AppendI64(o Order, b []byte, v int64) []byte   { return o.AppendUint64(b, uint64(v)) }
func AppendF64(o Order, b []byte, v float64) []byte { return o.AppendUint64(b, math.Float64bits(v)) }
