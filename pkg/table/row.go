package table

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/tuannm99/novavolt/internal/alias/bx"
	"github.com/tuannm99/novavolt/pkg/wire"
)

// Row is a view of one row of a Table. Getters decode a single cell and
// copy it out. A null cell reads as the zero value; use IsNull to tell the
// difference. A Row is only valid while its Table is.
type Row struct {
	t     *Table
	index int
	end   int
	cells []int
}

// Index is the row's position in its table.
func (r Row) Index() int { return r.index }

func (r Row) cell(col int) (wire.Type, int, error) {
	if r.t == nil || col < 0 || col >= len(r.cells) {
		return wire.Invalid, 0, fmt.Errorf("%w: %d of %d", ErrColumnIndexOutOfBounds, col, len(r.cells))
	}
	return r.t.columns[col].Type, r.cells[col], nil
}

func (r Row) resolve(name string) (int, error) {
	if r.t == nil {
		return -1, fmt.Errorf("%w: %q", ErrColumnNotFound, name)
	}
	return r.t.ColumnIndex(name)
}

func mismatch(col int, have wire.Type, want string) error {
	return fmt.Errorf("%w: column %d is %s, read as %s", ErrColumnTypeMismatch, col, have, want)
}

// IsNull reports whether the cell holds the null value of its type.
func (r Row) IsNull(col int) (bool, error) {
	typ, off, err := r.cell(col)
	if err != nil {
		return false, err
	}
	return r.isNull(typ, off), nil
}

func (r Row) isNull(typ wire.Type, off int) bool {
	b := r.t.rowData
	switch typ {
	case wire.TinyInt:
		return bx.I8At(b, off) == wire.NullTinyInt
	case wire.SmallInt:
		return bx.I16At(r.t.f.ByteOrder, b, off) == wire.NullSmallInt
	case wire.Integer:
		return bx.I32At(r.t.f.ByteOrder, b, off) == wire.NullInteger
	case wire.BigInt, wire.Timestamp:
		return bx.I64At(r.t.f.ByteOrder, b, off) == wire.NullBigInt
	case wire.Float:
		return bx.F64At(r.t.f.ByteOrder, b, off) == wire.NullFloat
	case wire.Decimal:
		_, ok := r.t.f.DecodeDecimal(b[off : off+16])
		return !ok
	case wire.String, wire.Varbinary:
		return bx.I32At(r.t.f.ByteOrder, b, off) == r.t.f.NullLength
	}
	return false
}

// readInt decodes an integer cell, widening it to int64.
func (r Row) readInt(col int, widest wire.Type, name string) (int64, error) {
	typ, off, err := r.cell(col)
	if err != nil {
		return 0, err
	}
	if !typ.IsInteger() || typ > widest {
		return 0, mismatch(col, typ, name)
	}
	if r.isNull(typ, off) {
		return 0, nil
	}
	b := r.t.rowData
	switch typ {
	case wire.TinyInt:
		return int64(bx.I8At(b, off)), nil
	case wire.SmallInt:
		return int64(bx.I16At(r.t.f.ByteOrder, b, off)), nil
	case wire.Integer:
		return int64(bx.I32At(r.t.f.ByteOrder, b, off)), nil
	default:
		return bx.I64At(r.t.f.ByteOrder, b, off), nil
	}
}

func (r Row) GetTinyInt(col int) (int8, error) {
	v, err := r.readInt(col, wire.TinyInt, "TINYINT")
	return int8(v), err
}

func (r Row) GetSmallInt(col int) (int16, error) {
	v, err := r.readInt(col, wire.SmallInt, "SMALLINT")
	return int16(v), err
}

// GetInteger reads INTEGER columns and the narrower integer columns.
func (r Row) GetInteger(col int) (int32, error) {
	v, err := r.readInt(col, wire.Integer, "INTEGER")
	return int32(v), err
}

// GetBigInt reads any integer column.
func (r Row) GetBigInt(col int) (int64, error) {
	return r.readInt(col, wire.BigInt, "BIGINT")
}

func (r Row) GetFloat(col int) (float64, error) {
	typ, off, err := r.cell(col)
	if err != nil {
		return 0, err
	}
	if typ != wire.Float {
		return 0, mismatch(col, typ, "FLOAT")
	}
	if r.isNull(typ, off) {
		return 0, nil
	}
	return bx.F64At(r.t.f.ByteOrder, r.t.rowData, off), nil
}

// view returns the bytes of a STRING or VARBINARY cell, nil for null.
func (r Row) view(col int, want wire.Type) ([]byte, error) {
	typ, off, err := r.cell(col)
	if err != nil {
		return nil, err
	}
	if typ != want {
		return nil, mismatch(col, typ, want.String())
	}
	b := r.t.rowData
	l := bx.I32At(r.t.f.ByteOrder, b, off)
	if l == r.t.f.NullLength {
		return nil, nil
	}
	return b[off+4 : off+4+int(l)], nil
}

func (r Row) GetString(col int) (string, error) {
	b, err := r.view(col, wire.String)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// GetVarbinary returns a copy of the cell; nil for null.
func (r Row) GetVarbinary(col int) ([]byte, error) {
	b, err := r.view(col, wire.Varbinary)
	if err != nil || b == nil {
		return nil, err
	}
	cp := make([]byte, len(b))
	copy(cp, b)
	return cp, nil
}

func (r Row) GetTimestamp(col int) (time.Time, error) {
	typ, off, err := r.cell(col)
	if err != nil {
		return time.Time{}, err
	}
	if typ != wire.Timestamp {
		return time.Time{}, mismatch(col, typ, "TIMESTAMP")
	}
	if r.isNull(typ, off) {
		return time.Time{}, nil
	}
	return wire.TimeFromMicros(bx.I64At(r.t.f.ByteOrder, r.t.rowData, off)), nil
}

func (r Row) GetDecimal(col int) (decimal.Decimal, error) {
	typ, off, err := r.cell(col)
	if err != nil {
		return decimal.Decimal{}, err
	}
	if typ != wire.Decimal {
		return decimal.Decimal{}, mismatch(col, typ, "DECIMAL")
	}
	d, _ := r.t.f.DecodeDecimal(r.t.rowData[off : off+16])
	return d, nil
}

// Get decodes a cell into its natural Go type: nil for null, int8..int64,
// float64, string, []byte, time.Time or decimal.Decimal.
func (r Row) Get(col int) (any, error) {
	typ, off, err := r.cell(col)
	if err != nil {
		return nil, err
	}
	if r.isNull(typ, off) {
		return nil, nil
	}
	switch typ {
	case wire.TinyInt:
		return r.GetTinyInt(col)
	case wire.SmallInt:
		return r.GetSmallInt(col)
	case wire.Integer:
		return r.GetInteger(col)
	case wire.BigInt:
		return r.GetBigInt(col)
	case wire.Float:
		return r.GetFloat(col)
	case wire.String:
		return r.GetString(col)
	case wire.Varbinary:
		return r.GetVarbinary(col)
	case wire.Timestamp:
		return r.GetTimestamp(col)
	case wire.Decimal:
		return r.GetDecimal(col)
	}
	return nil, mismatch(col, typ, "value")
}

// ---- by name ----

func (r Row) IsNullByName(name string) (bool, error) {
	col, err := r.resolve(name)
	if err != nil {
		return false, err
	}
	return r.IsNull(col)
}

func (r Row) GetTinyIntByName(name string) (int8, error) {
	col, err := r.resolve(name)
	if err != nil {
		return 0, err
	}
	return r.GetTinyInt(col)
}

func (r Row) GetSmallIntByName(name string) (int16, error) {
	col, err := r.resolve(name)
	if err != nil {
		return 0, err
	}
	return r.GetSmallInt(col)
}

func (r Row) GetIntegerByName(name string) (int32, error) {
	col, err := r.resolve(name)
	if err != nil {
		return 0, err
	}
	return r.GetInteger(col)
}

func (r Row) GetBigIntByName(name string) (int64, error) {
	col, err := r.resolve(name)
	if err != nil {
		return 0, err
	}
	return r.GetBigInt(col)
}

func (r Row) GetFloatByName(name string) (float64, error) {
	col, err := r.resolve(name)
	if err != nil {
		return 0, err
	}
	return r.GetFloat(col)
}

func (r Row) GetStringByName(name string) (string, error) {
	col, err := r.resolve(name)
	if err != nil {
		return "", err
	}
	return r.GetString(col)
}

func (r Row) GetVarbinaryByName(name string) ([]byte, error) {
	col, err := r.resolve(name)
	if err != nil {
		return nil, err
	}
	return r.GetVarbinary(col)
}

func (r Row) GetTimestampByName(name string) (time.Time, error) {
	col, err := r.resolve(name)
	if err != nil {
		return time.Time{}, err
	}
	return r.GetTimestamp(col)
}

func (r Row) GetDecimalByName(name string) (decimal.Decimal, error) {
	col, err := r.resolve(name)
	if err != nil {
		return decimal.Decimal{}, err
	}
	return r.GetDecimal(col)
}

func (r Row) GetByName(name string) (any, error) {
	col, err := r.resolve(name)
	if err != nil {
		return nil, err
	}
	return r.Get(col)
}
