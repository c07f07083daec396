package table

import (
	"encoding/binary"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tuannm99/novavolt/pkg/wire"
)

func makeTestColumns() []Column {
	return []Column{
		{Name: "id", Type: wire.BigInt},
		{Name: "small", Type: wire.SmallInt},
		{Name: "name", Type: wire.String},
		{Name: "score", Type: wire.Float},
		{Name: "blob", Type: wire.Varbinary},
		{Name: "at", Type: wire.Timestamp},
		{Name: "price", Type: wire.Decimal},
		{Name: "tiny", Type: wire.TinyInt},
	}
}

func buildTestTable(t *testing.T, n int) *Table {
	t.Helper()
	b, err := NewBuilder(makeTestColumns()...)
	require.NoError(t, err)
	for i := 0; i < n; i++ {
		require.NoError(t, b.AddRow(
			int64(i), int16(-i), "row", 0.5*float64(i), []byte{byte(i)},
			time.Unix(int64(i), 0).UTC(), decimal.NewFromInt(int64(i)), int8(i),
		))
	}
	return b.Build()
}

func encode(t *testing.T, tbl *Table) []byte {
	t.Helper()
	w := wire.NewWriter(0)
	require.NoError(t, tbl.AppendTo(w))
	return w.Bytes()
}

func TestMessageTable(t *testing.T) {
	b, err := NewBuilder(Column{Name: "MSG", Type: wire.String})
	require.NoError(t, err)
	require.NoError(t, b.AddRow("Bonjour"))

	tbl, err := Decode(wire.NewReader(encode(t, b.Build())))
	require.NoError(t, err)

	it := tbl.Iterator()
	row, ok := it.Next()
	require.True(t, ok)

	s, err := row.GetString(0)
	require.NoError(t, err)
	require.Equal(t, "Bonjour", s)

	s, err = row.GetStringByName("MSG")
	require.NoError(t, err)
	require.Equal(t, "Bonjour", s)

	_, err = row.GetInteger(0)
	require.ErrorIs(t, err, ErrColumnTypeMismatch)

	_, ok = it.Next()
	require.False(t, ok)
}

func TestSchemaLayout(t *testing.T) {
	b, err := NewBuilder(Column{Name: "MSG", Type: wire.String})
	require.NoError(t, err)
	require.NoError(t, b.AddRow("Hi"))

	want := []byte{
		0, 1, // column count
		byte(wire.String),
		0, 0, 0, 3, 'M', 'S', 'G',
		0, 0, 0, 1, // row count
		0, 0, 0, 2, 'H', 'i',
	}
	require.Equal(t, want, encode(t, b.Build()))
}

func TestIterator_Deterministic(t *testing.T) {
	src := buildTestTable(t, 5)
	tbl, err := Decode(wire.NewReader(encode(t, src)))
	require.NoError(t, err)
	require.Equal(t, 5, tbl.RowCount())

	collect := func(it *RowIterator) []int64 {
		var ids []int64
		for row, ok := it.Next(); ok; row, ok = it.Next() {
			id, err := row.GetBigInt(0)
			require.NoError(t, err)
			ids = append(ids, id)
		}
		require.NoError(t, it.Err())
		return ids
	}

	first := collect(tbl.Iterator())
	require.Equal(t, []int64{0, 1, 2, 3, 4}, first)
	require.Equal(t, first, collect(tbl.Iterator()))

	it := tbl.Iterator()
	collect(it)
	// past exhaustion is a no-op
	_, ok := it.Next()
	require.False(t, ok)
	_, ok = it.Next()
	require.False(t, ok)
	require.NoError(t, it.Err())

	it.Reset()
	require.Equal(t, first, collect(it))

	var seen []int
	for i := range tbl.All() {
		seen = append(seen, i)
	}
	require.Equal(t, []int{0, 1, 2, 3, 4}, seen)
}

func TestRow_Getters(t *testing.T) {
	tbl := buildTestTable(t, 3)
	row, err := tbl.Row(2)
	require.NoError(t, err)
	require.Equal(t, 2, row.Index())

	id, err := row.GetBigInt(0)
	require.NoError(t, err)
	require.Equal(t, int64(2), id)

	small, err := row.GetSmallIntByName("small")
	require.NoError(t, err)
	require.Equal(t, int16(-2), small)

	score, err := row.GetFloatByName("score")
	require.NoError(t, err)
	require.Equal(t, 1.0, score)

	blob, err := row.GetVarbinary(4)
	require.NoError(t, err)
	require.Equal(t, []byte{2}, blob)
	blob[0] = 99
	again, _ := row.GetVarbinary(4)
	require.Equal(t, []byte{2}, again, "getters copy out")

	at, err := row.GetTimestampByName("at")
	require.NoError(t, err)
	require.Equal(t, time.Unix(2, 0).UTC(), at)

	price, err := row.GetDecimalByName("price")
	require.NoError(t, err)
	require.True(t, decimal.NewFromInt(2).Equal(price))

	// integer reads widen
	tiny, err := row.GetBigIntByName("tiny")
	require.NoError(t, err)
	require.Equal(t, int64(2), tiny)
	i32, err := row.GetInteger(1)
	require.NoError(t, err)
	require.Equal(t, int32(-2), i32)

	// no narrowing
	_, err = row.GetInteger(0)
	require.ErrorIs(t, err, ErrColumnTypeMismatch)
	_, err = row.GetString(4)
	require.ErrorIs(t, err, ErrColumnTypeMismatch)

	v, err := row.GetByName("name")
	require.NoError(t, err)
	require.Equal(t, "row", v)
}

func TestRow_Lookups(t *testing.T) {
	tbl := buildTestTable(t, 1)
	row, err := tbl.Row(0)
	require.NoError(t, err)

	_, err = row.GetString(-1)
	require.ErrorIs(t, err, ErrColumnIndexOutOfBounds)
	_, err = row.GetString(8)
	require.ErrorIs(t, err, ErrColumnIndexOutOfBounds)

	_, err = row.GetStringByName("NAME")
	require.ErrorIs(t, err, ErrColumnNotFound, "names are case-sensitive")

	_, err = tbl.Row(1)
	require.ErrorIs(t, err, ErrRowIndexOutOfBounds)

	var zero Row
	_, err = zero.GetString(0)
	require.ErrorIs(t, err, ErrColumnIndexOutOfBounds)
}

func TestRow_Nulls(t *testing.T) {
	b, err := NewBuilder(makeTestColumns()...)
	require.NoError(t, err)
	require.NoError(t, b.AddRow(nil, nil, nil, nil, nil, nil, nil, nil))
	tbl, err := Decode(wire.NewReader(encode(t, b.Build())))
	require.NoError(t, err)

	row, err := tbl.Row(0)
	require.NoError(t, err)
	for i := 0; i < tbl.ColumnCount(); i++ {
		null, err := row.IsNull(i)
		require.NoError(t, err)
		require.True(t, null, "column %d", i)

		v, err := row.Get(i)
		require.NoError(t, err)
		require.Nil(t, v)
	}

	s, err := row.GetString(2)
	require.NoError(t, err)
	require.Equal(t, "", s)
	blob, err := row.GetVarbinary(4)
	require.NoError(t, err)
	require.Nil(t, blob)
}

func TestBuilder_Rejects(t *testing.T) {
	b, err := NewBuilder(Column{Name: "n", Type: wire.Integer}, Column{Name: "s", Type: wire.String})
	require.NoError(t, err)

	require.ErrorIs(t, b.AddRow(1), ErrColumnIndexOutOfBounds)
	require.ErrorIs(t, b.AddRow(1, 2), ErrColumnTypeMismatch)
	require.ErrorIs(t, b.AddRow(int64(1)<<40, "x"), wire.ErrValueOutOfRange)
	require.ErrorIs(t, b.AddRow(int32(wire.NullInteger), "x"), wire.ErrValueOutOfRange)
	require.NoError(t, b.AddRow(1, "x"))

	tbl := b.Build()
	require.Equal(t, 1, tbl.RowCount())
	require.Len(t, tbl.RowData(), 4+4+1)

	_, err = NewBuilder(Column{Name: "bad", Type: wire.Array})
	require.ErrorIs(t, err, wire.ErrInvalidWireType)
}

func TestNew_ValidatesExtent(t *testing.T) {
	cols := []Column{{Name: "n", Type: wire.Integer}, {Name: "s", Type: wire.String}}
	row := []byte{0, 0, 0, 1, 0, 0, 0, 1, 'a'}

	tbl, err := New(cols, 1, row)
	require.NoError(t, err)
	require.Equal(t, 1, tbl.RowCount())

	_, err = New(cols, 2, row)
	require.ErrorIs(t, err, wire.ErrUnexpectedEOF)

	_, err = New(cols, 1, append(append([]byte{}, row...), 0))
	require.ErrorIs(t, err, wire.ErrTrailingBytes)

	_, err = New(cols, 1, []byte{0, 0, 0, 1, 0xff, 0xff, 0xff, 0xf0})
	require.ErrorIs(t, err, wire.ErrInvalidLength)

	_, err = New(cols, -1, nil)
	require.ErrorIs(t, err, wire.ErrInvalidLength)
}

func TestDecode_Truncated(t *testing.T) {
	buf := encode(t, buildTestTable(t, 2))
	for n := 0; n < len(buf); n++ {
		_, err := Decode(wire.NewReader(buf[:n]))
		require.ErrorIs(t, err, wire.ErrUnexpectedEOF, "cut at %d", n)
	}
}

func TestDecode_InvalidColumnType(t *testing.T) {
	_, err := Decode(wire.NewReader([]byte{0, 1, 0x07}))
	require.ErrorIs(t, err, wire.ErrInvalidWireType)

	_, err = Decode(wire.NewReader([]byte{0, 1, byte(wire.Null), 0, 0, 0, 0, 0, 0, 0, 0}))
	require.ErrorIs(t, err, wire.ErrInvalidWireType)
}

func TestDecode_RowsWithoutColumns(t *testing.T) {
	// zero columns, 0x7fffffff rows, nothing else
	_, err := Decode(wire.NewReader([]byte{0, 0, 0x7f, 0xff, 0xff, 0xff}))
	require.ErrorIs(t, err, wire.ErrInvalidLength)

	_, err = New(nil, 5, nil)
	require.ErrorIs(t, err, wire.ErrInvalidLength)

	_, err = NewBuilder()
	require.ErrorIs(t, err, wire.ErrInvalidLength)

	tbl, err := Decode(wire.NewReader([]byte{0, 0, 0, 0, 0, 0}))
	require.NoError(t, err)
	require.Equal(t, 0, tbl.ColumnCount())
	require.Equal(t, 0, tbl.RowCount())
}

func TestDecode_RowCountBeyondData(t *testing.T) {
	// one INTEGER column "n", 0x7fffffff rows, a single 4-byte row present
	buf := []byte{0, 1, byte(wire.Integer), 0, 0, 0, 1, 'n', 0x7f, 0xff, 0xff, 0xff, 0, 0, 0, 1}
	_, err := Decode(wire.NewReader(buf))
	require.ErrorIs(t, err, wire.ErrUnexpectedEOF)

	// a STRING column needs at least its length prefix per row
	_, err = New([]Column{{Name: "s", Type: wire.String}}, 1<<30, make([]byte, 8))
	require.ErrorIs(t, err, wire.ErrUnexpectedEOF)
}

func TestRow_ConcurrentRandomAccess(t *testing.T) {
	tbl, err := Decode(wire.NewReader(encode(t, buildTestTable(t, 50))))
	require.NoError(t, err)

	var wg sync.WaitGroup
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func(g int) {
			defer wg.Done()
			for i := tbl.RowCount() - 1; i >= 0; i-- {
				row, err := tbl.Row((i + g) % tbl.RowCount())
				if !assert.NoError(t, err) {
					return
				}
				id, err := row.GetBigInt(0)
				assert.NoError(t, err)
				assert.Equal(t, int64((i+g)%tbl.RowCount()), id)
			}
		}(g)
	}
	wg.Wait()
}

func TestDecode_LittleEndianFormat(t *testing.T) {
	le := wire.DefaultFormat
	le.ByteOrder = binary.LittleEndian

	// one INTEGER column "n", one row holding 258, one null row
	buf := []byte{1, 0, byte(wire.Integer), 1, 0, 0, 0, 'n', 2, 0, 0, 0, 2, 1, 0, 0, 0, 0, 0, 0x80}
	tbl, err := Decode(le.NewReader(buf))
	require.NoError(t, err)
	require.Equal(t, 2, tbl.RowCount())

	row, err := tbl.Row(0)
	require.NoError(t, err)
	n, err := row.GetInteger(0)
	require.NoError(t, err)
	require.Equal(t, int32(258), n)

	row, err = tbl.Row(1)
	require.NoError(t, err)
	null, err := row.IsNull(0)
	require.NoError(t, err)
	require.True(t, null)

	w := le.NewWriter(0)
	require.NoError(t, tbl.AppendTo(w))
	require.Equal(t, buf, w.Bytes())
}

func TestDecode_LeavesFollowingBytes(t *testing.T) {
	buf := append(encode(t, buildTestTable(t, 2)), 0xAB)
	r := wire.NewReader(buf)
	tbl, err := Decode(r)
	require.NoError(t, err)
	require.Equal(t, 2, tbl.RowCount())
	require.Equal(t, 1, r.Remaining())
}

func TestRender(t *testing.T) {
	b, err := NewBuilder(Column{Name: "HELLO", Type: wire.String}, Column{Name: "N", Type: wire.Integer})
	require.NoError(t, err)
	require.NoError(t, b.AddRow("Bonjour", 1))
	require.NoError(t, b.AddRow("Hi", nil))

	want := "" +
		"HELLO   | N   \n" +
		"--------+-----\n" +
		"Bonjour | 1   \n" +
		"Hi      | NULL\n" +
		"(2 rows)\n"
	require.Equal(t, want, b.Build().String())
}
