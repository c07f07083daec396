package table

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/tuannm99/novavolt/pkg/wire"
)

// Builder encodes rows for a fixed schema. Servers use it to produce result
// sets; tests use it to craft them.
type Builder struct {
	t *Table
	w *wire.Writer
}

func NewBuilder(columns ...Column) (*Builder, error) {
	if len(columns) == 0 {
		return nil, fmt.Errorf("%w: table without columns", wire.ErrInvalidLength)
	}
	t, err := newTable(&wire.DefaultFormat, columns, 0)
	if err != nil {
		return nil, err
	}
	return &Builder{t: t, w: wire.NewWriter(64)}, nil
}

// AddRow appends one row. Values are matched to columns by position; nil is
// null. Either the whole row is written or nothing is.
func (b *Builder) AddRow(values ...any) error {
	if len(values) != len(b.t.columns) {
		return fmt.Errorf("%w: %d values for %d columns", ErrColumnIndexOutOfBounds, len(values), len(b.t.columns))
	}
	start := b.w.Len()
	for i, v := range values {
		if err := b.writeCell(b.t.columns[i].Type, v); err != nil {
			b.w.Truncate(start)
			return fmt.Errorf("column %d (%s): %w", i, b.t.columns[i].Name, err)
		}
	}
	b.t.rowCount++
	return nil
}

// Build returns the table. The builder must not be used afterwards.
func (b *Builder) Build() *Table {
	b.t.rowData = b.w.Bytes()
	return b.t
}

func (b *Builder) writeCell(typ wire.Type, v any) error {
	w := b.w
	if v == nil {
		writeNull(w, typ)
		return nil
	}
	switch typ {
	case wire.TinyInt, wire.SmallInt, wire.Integer, wire.BigInt:
		x, ok := asInt64(v)
		lo, hi, _ := wire.IntRange(typ)
		if !ok {
			return fmt.Errorf("%w: %T into %s", ErrColumnTypeMismatch, v, typ)
		}
		// the minimum is the null sentinel
		if x <= lo || x > hi {
			return fmt.Errorf("%w: %d for %s", wire.ErrValueOutOfRange, x, typ)
		}
		switch typ {
		case wire.TinyInt:
			w.WriteInt8(int8(x))
		case wire.SmallInt:
			w.WriteInt16(int16(x))
		case wire.Integer:
			w.WriteInt32(int32(x))
		default:
			w.WriteInt64(x)
		}
	case wire.Float:
		x, ok := asFloat64(v)
		if !ok {
			return fmt.Errorf("%w: %T into %s", ErrColumnTypeMismatch, v, typ)
		}
		if x == wire.NullFloat {
			return fmt.Errorf("%w: %v is the null sentinel", wire.ErrValueOutOfRange, x)
		}
		w.WriteFloat(x)
	case wire.String:
		s, ok := v.(string)
		if !ok {
			return fmt.Errorf("%w: %T into %s", ErrColumnTypeMismatch, v, typ)
		}
		return w.WriteString(s)
	case wire.Varbinary:
		bs, ok := v.([]byte)
		if !ok {
			return fmt.Errorf("%w: %T into %s", ErrColumnTypeMismatch, v, typ)
		}
		if bs == nil {
			bs = []byte{}
		}
		return w.WriteBytes(bs)
	case wire.Timestamp:
		ts, ok := v.(time.Time)
		if !ok {
			return fmt.Errorf("%w: %T into %s", ErrColumnTypeMismatch, v, typ)
		}
		w.WriteTimestamp(wire.TimestampMicros(ts))
	case wire.Decimal:
		d, ok := v.(decimal.Decimal)
		if !ok {
			return fmt.Errorf("%w: %T into %s", ErrColumnTypeMismatch, v, typ)
		}
		return w.WriteDecimal(d)
	default:
		return fmt.Errorf("%w: %s", wire.ErrInvalidWireType, typ)
	}
	return nil
}

func writeNull(w *wire.Writer, typ wire.Type) {
	switch typ {
	case wire.TinyInt:
		w.WriteInt8(wire.NullTinyInt)
	case wire.SmallInt:
		w.WriteInt16(wire.NullSmallInt)
	case wire.Integer:
		w.WriteInt32(wire.NullInteger)
	case wire.BigInt:
		w.WriteInt64(wire.NullBigInt)
	case wire.Timestamp:
		w.WriteInt64(wire.NullTimestamp)
	case wire.Float:
		w.WriteFloat(wire.NullFloat)
	case wire.Decimal:
		w.WriteNullDecimal()
	case wire.String, wire.Varbinary:
		w.WriteNullLength()
	}
}

// ---- small helpers to accept multiple numeric types on encode ----
func asInt64(v any) (int64, bool) {
	switch x := v.(type) {
	case int8:
		return int64(x), true
	case int16:
		return int64(x), true
	case int32:
		return int64(x), true
	case int64:
		return x, true
	case int:
		return int64(x), true
	case uint8:
		return int64(x), true
	case uint16:
		return int64(x), true
	case uint32:
		return int64(x), true
	}
	return 0, false
}

func asFloat64(v any) (float64, bool) {
	switch x := v.(type) {
	case float64:
		return x, true
	case float32:
		return float64(x), true
	}
	return 0, false
}
