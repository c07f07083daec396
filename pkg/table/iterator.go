package table

// RowIterator produces the rows of a Table in order. Calling Next after the
// last row keeps returning false.
type RowIterator struct {
	t    *Table
	next int
	off  int
	err  error
}

// Next advances to the following row.
func (it *RowIterator) Next() (Row, bool) {
	if it.err != nil || it.next >= it.t.rowCount {
		return Row{}, false
	}
	row, err := it.t.rowAt(it.next, it.off)
	if err != nil {
		it.err = err
		return Row{}, false
	}
	it.next++
	it.off = row.end
	return row, true
}

// Err reports a decode failure that stopped the iteration. Tables built by
// New or Decode are validated up front, so this stays nil for them.
func (it *RowIterator) Err() error { return it.err }

// Reset rewinds to the first row.
func (it *RowIterator) Reset() {
	it.next, it.off, it.err = 0, 0, nil
}
