// Package table exposes server-returned result sets without materializing
// them. A Table keeps the raw row bytes it was decoded from; Rows and
// RowIterators are views into that buffer and decode a cell only when it is
// asked for.
package table

import (
	"fmt"
	"iter"
	"sync"

	"github.com/tuannm99/novavolt/internal/alias/bx"
	"github.com/tuannm99/novavolt/pkg/wire"
)

type Column struct {
	Name string
	Type wire.Type
}

// Table is one result set. Wire layout:
//
//	[int16 columnCount][tag]*columnCount[int32 len + name]*columnCount
//	[int32 rowCount][row]*rowCount
//
// A row is its cells in column order: fixed-width values in the format's byte
// order, STRING and VARBINARY as [int32 len][bytes] with len -1 for null.
type Table struct {
	f        *wire.Format
	columns  []Column
	byName   map[string]int
	rowCount int
	rowData  []byte

	// row start offsets, built on the first random access
	offsetsOnce sync.Once
	offsets     []int
	offsetsErr  error
}

// New validates rowData against the schema: it must hold exactly rowCount
// rows. The table keeps rowData without copying it.
func New(columns []Column, rowCount int, rowData []byte) (*Table, error) {
	t, err := newTable(&wire.DefaultFormat, columns, rowCount)
	if err != nil {
		return nil, err
	}
	if err := t.fits(len(rowData)); err != nil {
		return nil, err
	}
	n, err := t.extent(rowData)
	if err != nil {
		return nil, err
	}
	if n != len(rowData) {
		return nil, fmt.Errorf("%w: %d bytes after %d rows", wire.ErrTrailingBytes, len(rowData)-n, rowCount)
	}
	t.rowData = rowData
	return t, nil
}

func newTable(f *wire.Format, columns []Column, rowCount int) (*Table, error) {
	if rowCount < 0 {
		return nil, fmt.Errorf("%w: row count %d", wire.ErrInvalidLength, rowCount)
	}
	if len(columns) == 0 && rowCount > 0 {
		return nil, fmt.Errorf("%w: %d rows without columns", wire.ErrInvalidLength, rowCount)
	}
	cols := make([]Column, len(columns))
	byName := make(map[string]int, len(columns))
	for i, c := range columns {
		if !c.Type.IsScalar() {
			return nil, fmt.Errorf("%w: column %d (%s) has type %s", wire.ErrInvalidWireType, i, c.Name, c.Type)
		}
		cols[i] = c
		if _, dup := byName[c.Name]; !dup {
			byName[c.Name] = i
		}
	}
	return &Table{f: f, columns: cols, byName: byName, rowCount: rowCount}, nil
}

// Decode reads one table from r. The returned Table references r's buffer.
// On error nothing is returned and r's position is unspecified.
func Decode(r *wire.Reader) (*Table, error) {
	n, err := r.ReadCount()
	if err != nil {
		return nil, err
	}
	columns := make([]Column, n)
	for i := range columns {
		t, err := r.ReadType()
		if err != nil {
			return nil, fmt.Errorf("column %d: %w", i, err)
		}
		columns[i].Type = t
	}
	for i := range columns {
		name, _, err := r.ReadString()
		if err != nil {
			return nil, fmt.Errorf("column %d name: %w", i, err)
		}
		columns[i].Name = name
	}
	rowCount, err := r.ReadInt32()
	if err != nil {
		return nil, err
	}
	t, err := newTable(r.Format(), columns, int(rowCount))
	if err != nil {
		return nil, err
	}
	if err := t.fits(r.Remaining()); err != nil {
		return nil, err
	}
	size, err := t.extent(r.Rest())
	if err != nil {
		return nil, err
	}
	if t.rowData, err = r.Next(size); err != nil {
		return nil, err
	}
	return t, nil
}

// fits rejects a row count that cannot be backed by n bytes, before any row
// is walked.
func (t *Table) fits(n int) error {
	width := 0
	for _, c := range t.columns {
		w, _ := c.Type.Width()
		if w == wire.Variable {
			w = 4
		}
		width += w
	}
	if int64(t.rowCount)*int64(width) > int64(n) {
		return fmt.Errorf("%w: %d rows need at least %d bytes, have %d",
			wire.ErrUnexpectedEOF, t.rowCount, int64(t.rowCount)*int64(width), n)
	}
	return nil
}

// extent returns how many bytes of data the table's rows occupy.
func (t *Table) extent(data []byte) (int, error) {
	off := 0
	for i := 0; i < t.rowCount; i++ {
		end, err := t.scanRow(data, off, nil)
		if err != nil {
			return 0, fmt.Errorf("row %d: %w", i, err)
		}
		off = end
	}
	return off, nil
}

// scanRow walks one row starting at off and returns where the next row
// starts. When cells is non-nil the start of every cell is recorded in it.
func (t *Table) scanRow(data []byte, off int, cells []int) (int, error) {
	for i, c := range t.columns {
		if cells != nil {
			cells[i] = off
		}
		w, _ := c.Type.Width()
		if w == wire.Variable {
			if off+4 > len(data) {
				return 0, fmt.Errorf("%w: column %d length at offset %d", wire.ErrUnexpectedEOF, i, off)
			}
			l := bx.I32At(t.f.ByteOrder, data, off)
			off += 4
			if l == t.f.NullLength {
				continue
			}
			if l < 0 {
				return 0, fmt.Errorf("%w: column %d length %d", wire.ErrInvalidLength, i, l)
			}
			w = int(l)
		}
		if off+w > len(data) {
			return 0, fmt.Errorf("%w: column %d needs %d bytes at offset %d", wire.ErrUnexpectedEOF, i, w, off)
		}
		off += w
	}
	return off, nil
}

func (t *Table) ColumnCount() int { return len(t.columns) }
func (t *Table) RowCount() int    { return t.rowCount }

// RowData returns the raw row bytes. They must not be modified.
func (t *Table) RowData() []byte { return t.rowData }

func (t *Table) Columns() []Column {
	cp := make([]Column, len(t.columns))
	copy(cp, t.columns)
	return cp
}

func (t *Table) Column(i int) (Column, error) {
	if i < 0 || i >= len(t.columns) {
		return Column{}, fmt.Errorf("%w: %d of %d", ErrColumnIndexOutOfBounds, i, len(t.columns))
	}
	return t.columns[i], nil
}

// ColumnIndex resolves a column name. Matching is exact and case-sensitive;
// with duplicate names the first column wins.
func (t *Table) ColumnIndex(name string) (int, error) {
	i, ok := t.byName[name]
	if !ok {
		return -1, fmt.Errorf("%w: %q", ErrColumnNotFound, name)
	}
	return i, nil
}

// Iterator returns a fresh forward-only cursor positioned before the first row.
func (t *Table) Iterator() *RowIterator {
	return &RowIterator{t: t}
}

// Row returns row i.
func (t *Table) Row(i int) (Row, error) {
	if i < 0 || i >= t.rowCount {
		return Row{}, fmt.Errorf("%w: %d of %d", ErrRowIndexOutOfBounds, i, t.rowCount)
	}
	t.offsetsOnce.Do(t.buildOffsets)
	if t.offsetsErr != nil {
		return Row{}, t.offsetsErr
	}
	return t.rowAt(i, t.offsets[i])
}

func (t *Table) buildOffsets() {
	offsets := make([]int, t.rowCount)
	off := 0
	for r := range offsets {
		offsets[r] = off
		var err error
		if off, err = t.scanRow(t.rowData, off, nil); err != nil {
			t.offsetsErr = fmt.Errorf("row %d: %w", r, err)
			return
		}
	}
	t.offsets = offsets
}

func (t *Table) rowAt(index, off int) (Row, error) {
	cells := make([]int, len(t.columns))
	end, err := t.scanRow(t.rowData, off, cells)
	if err != nil {
		return Row{}, err
	}
	return Row{t: t, index: index, end: end, cells: cells}, nil
}

// All iterates over every row in order.
func (t *Table) All() iter.Seq2[int, Row] {
	return func(yield func(int, Row) bool) {
		it := t.Iterator()
		for {
			row, ok := it.Next()
			if !ok || !yield(row.Index(), row) {
				return
			}
		}
	}
}

// AppendTo writes the table in wire layout.
func (t *Table) AppendTo(w *wire.Writer) error {
	start := w.Len()
	if err := w.WriteCount(len(t.columns)); err != nil {
		return err
	}
	for _, c := range t.columns {
		w.WriteType(c.Type)
	}
	for _, c := range t.columns {
		if err := w.WriteString(c.Name); err != nil {
			w.Truncate(start)
			return err
		}
	}
	w.WriteInt32(int32(t.rowCount))
	w.WriteRaw(t.rowData)
	return nil
}
