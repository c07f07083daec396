package wire

import (
	"fmt"
	"math"
	"time"

	"github.com/shopspring/decimal"

	"github.com/tuannm99/novavolt/internal/alias/bx"
)

// Writer appends encoded values to a growing buffer in its format's byte order.
type Writer struct {
	f   *Format
	buf []byte
}

// NewWriter returns a Writer using DefaultFormat.
func NewWriter(capacity int) *Writer {
	return DefaultFormat.NewWriter(capacity)
}

func (f *Format) NewWriter(capacity int) *Writer {
	return &Writer{f: f, buf: make([]byte, 0, capacity)}
}

func (w *Writer) Format() *Format { return w.f }
func (w *Writer) Bytes() []byte   { return w.buf }
func (w *Writer) Len() int        { return len(w.buf) }

// Truncate drops everything written after offset n. Encoders use it to roll
// back a partially written value.
func (w *Writer) Truncate(n int) { w.buf = w.buf[:n] }

func (w *Writer) WriteRaw(b []byte)           { w.buf = append(w.buf, b...) }
func (w *Writer) WriteInt8(v int8)            { w.buf = append(w.buf, byte(v)) }
func (w *Writer) WriteType(t Type)            { w.buf = append(w.buf, byte(t)) }
func (w *Writer) WriteInt16(v int16)          { w.buf = bx.AppendI16(w.f.ByteOrder, w.buf, v) }
func (w *Writer) WriteInt32(v int32)          { w.buf = bx.AppendI32(w.f.ByteOrder, w.buf, v) }
func (w *Writer) WriteInt64(v int64)          { w.buf = bx.AppendI64(w.f.ByteOrder, w.buf, v) }
func (w *Writer) WriteFloat(v float64)        { w.buf = bx.AppendF64(w.f.ByteOrder, w.buf, v) }
func (w *Writer) WriteNullLength()            { w.WriteInt32(w.f.NullLength) }
func (w *Writer) WriteTimestamp(micros int64) { w.WriteInt64(micros) }

// ReserveInt32 writes a placeholder and returns its offset for PatchInt32.
func (w *Writer) ReserveInt32() int {
	off := len(w.buf)
	w.WriteInt32(0)
	return off
}

func (w *Writer) PatchInt32(off int, v int32) { bx.PutI32At(w.f.ByteOrder, w.buf, off, v) }

// WriteCount writes an int16 counter after checking it against MaxCount.
func (w *Writer) WriteCount(n int) error {
	if n < 0 || n > w.f.MaxCount {
		return fmt.Errorf("%w: count %d exceeds %d", ErrValueOutOfRange, n, w.f.MaxCount)
	}
	w.WriteInt16(int16(n))
	return nil
}

// WriteString writes [int32 len][utf-8 bytes].
func (w *Writer) WriteString(s string) error {
	if len(s) > math.MaxInt32 {
		return fmt.Errorf("%w: string of %d bytes", ErrValueOutOfRange, len(s))
	}
	w.WriteInt32(int32(len(s)))
	w.buf = append(w.buf, s...)
	return nil
}

// WriteBytes writes [int32 len][bytes]; a nil slice is written as null.
func (w *Writer) WriteBytes(b []byte) error {
	if b == nil {
		w.WriteNullLength()
		return nil
	}
	if len(b) > math.MaxInt32 {
		return fmt.Errorf("%w: varbinary of %d bytes", ErrValueOutOfRange, len(b))
	}
	w.WriteInt32(int32(len(b)))
	w.buf = append(w.buf, b...)
	return nil
}

// WriteDecimal writes d as a 16-byte unscaled integer.
func (w *Writer) WriteDecimal(d decimal.Decimal) error {
	raw, err := w.f.EncodeDecimal(d)
	if err != nil {
		return err
	}
	w.buf = append(w.buf, raw[:]...)
	return nil
}

// WriteNullDecimal writes the DECIMAL null sentinel.
func (w *Writer) WriteNullDecimal() {
	raw := w.f.nullDecimal()
	w.buf = append(w.buf, raw[:]...)
}

// TimestampMicros converts t to the wire representation.
func TimestampMicros(t time.Time) int64 { return t.UnixMicro() }

// TimeFromMicros converts the wire representation back to a UTC time.
func TimeFromMicros(us int64) time.Time { return time.UnixMicro(us).UTC() }
