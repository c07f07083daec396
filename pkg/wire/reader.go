package wire

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/tuannm99/novavolt/internal/alias/bx"
)

// Reader is a bounds-checked cursor over a byte slice. Any read past the end
// fails with ErrUnexpectedEOF and leaves the cursor where it was.
type Reader struct {
	f   *Format
	buf []byte
	off int
}

// NewReader returns a Reader using DefaultFormat.
func NewReader(b []byte) *Reader {
	return DefaultFormat.NewReader(b)
}

func (f *Format) NewReader(b []byte) *Reader {
	return &Reader{f: f, buf: b}
}

func (r *Reader) Format() *Format { return r.f }
func (r *Reader) Offset() int     { return r.off }
func (r *Reader) Remaining() int  { return len(r.buf) - r.off }

// Rest returns a view of the unread bytes without advancing.
func (r *Reader) Rest() []byte { return r.buf[r.off:] }

// Next returns a view of the next n bytes without copying.
func (r *Reader) Next(n int) ([]byte, error) {
	if n < 0 {
		return nil, fmt.Errorf("%w: %d at offset %d", ErrInvalidLength, n, r.off)
	}
	if n > r.Remaining() {
		return nil, fmt.Errorf("%w: need %d bytes at offset %d, have %d",
			ErrUnexpectedEOF, n, r.off, r.Remaining())
	}
	b := r.buf[r.off : r.off+n]
	r.off += n
	return b, nil
}

// ExpectEnd fails with ErrTrailingBytes unless the whole buffer was consumed.
func (r *Reader) ExpectEnd() error {
	if r.Remaining() != 0 {
		return fmt.Errorf("%w: %d bytes after offset %d", ErrTrailingBytes, r.Remaining(), r.off)
	}
	return nil
}

func (r *Reader) ReadInt8() (int8, error) {
	b, err := r.Next(1)
	if err != nil {
		return 0, err
	}
	return int8(b[0]), nil
}

// ReadType reads one tag byte and validates it against the registry.
func (r *Reader) ReadType() (Type, error) {
	tag, err := r.ReadInt8()
	if err != nil {
		return Invalid, err
	}
	t, err := Lookup(tag)
	if err != nil {
		r.off--
		return Invalid, fmt.Errorf("%w at offset %d", err, r.off)
	}
	return t, nil
}

func (r *Reader) ReadInt16() (int16, error) {
	b, err := r.Next(2)
	if err != nil {
		return 0, err
	}
	return bx.I16(r.f.ByteOrder, b), nil
}

func (r *Reader) ReadInt32() (int32, error) {
	b, err := r.Next(4)
	if err != nil {
		return 0, err
	}
	return bx.I32(r.f.ByteOrder, b), nil
}

func (r *Reader) ReadInt64() (int64, error) {
	b, err := r.Next(8)
	if err != nil {
		return 0, err
	}
	return bx.I64(r.f.ByteOrder, b), nil
}

func (r *Reader) ReadFloat() (float64, error) {
	b, err := r.Next(8)
	if err != nil {
		return 0, err
	}
	return bx.F64(r.f.ByteOrder, b), nil
}

// ReadCount reads a non-negative int16 counter.
func (r *Reader) ReadCount() (int, error) {
	n, err := r.ReadInt16()
	if err != nil {
		return 0, err
	}
	if n < 0 {
		return 0, fmt.Errorf("%w: negative count %d at offset %d", ErrInvalidLength, n, r.off-2)
	}
	return int(n), nil
}

// ReadLength reads an int32 length prefix. null is true for NullLength.
func (r *Reader) ReadLength() (n int, null bool, err error) {
	l, err := r.ReadInt32()
	if err != nil {
		return 0, false, err
	}
	if l == r.f.NullLength {
		return 0, true, nil
	}
	if l < 0 {
		r.off -= 4
		return 0, false, fmt.Errorf("%w: %d at offset %d", ErrInvalidLength, l, r.off)
	}
	return int(l), false, nil
}

// ReadBytesView reads a length-prefixed value and returns a view into the
// underlying buffer. A null value yields (nil, true, nil).
func (r *Reader) ReadBytesView() ([]byte, bool, error) {
	start := r.off
	n, null, err := r.ReadLength()
	if err != nil || null {
		return nil, null, err
	}
	b, err := r.Next(n)
	if err != nil {
		r.off = start
		return nil, false, err
	}
	return b, false, nil
}

// ReadBytes is ReadBytesView with a private copy of the value.
func (r *Reader) ReadBytes() ([]byte, bool, error) {
	b, null, err := r.ReadBytesView()
	if err != nil || null {
		return nil, null, err
	}
	cp := make([]byte, len(b))
	copy(cp, b)
	return cp, false, nil
}

func (r *Reader) ReadString() (string, bool, error) {
	b, null, err := r.ReadBytesView()
	if err != nil || null {
		return "", null, err
	}
	return string(b), false, nil
}

// ReadDecimal reads a 16-byte DECIMAL; the null sentinel yields null=true.
func (r *Reader) ReadDecimal() (decimal.Decimal, bool, error) {
	b, err := r.Next(16)
	if err != nil {
		return decimal.Decimal{}, false, err
	}
	d, ok := r.f.DecodeDecimal(b)
	return d, !ok, nil
}
