package param

import (
	"math"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/tuannm99/novavolt/pkg/wire"
)

// wire.Array is -99; as an unsigned byte that is 0x9d.
const arrayTag = 0x9d

func fullSet(t *testing.T) *ParameterSet {
	t.Helper()
	ps := mustSet(t,
		New(wire.TinyInt),
		New(wire.SmallInt),
		New(wire.Integer),
		New(wire.BigInt),
		New(wire.Float),
		New(wire.String),
		New(wire.Varbinary),
		New(wire.Timestamp),
		New(wire.Decimal),
		New(wire.String),
		NewArray(wire.Integer),
		NewArray(wire.String),
		NewArray(wire.Float),
	)
	require.NoError(t, ps.AddTinyInt(math.MaxInt8))
	require.NoError(t, ps.AddSmallInt(-2))
	require.NoError(t, ps.AddInteger(math.MinInt32))
	require.NoError(t, ps.AddBigInt(math.MaxInt64))
	require.NoError(t, ps.AddFloat(-0.5))
	require.NoError(t, ps.AddString("héllo"))
	require.NoError(t, ps.AddVarbinary([]byte{0xde, 0xad}))
	require.NoError(t, ps.AddTimestamp(time.Date(2011, 1, 2, 3, 4, 5, 6000, time.UTC)))
	require.NoError(t, ps.AddDecimal(decimal.RequireFromString("-12.000000000345")))
	require.NoError(t, ps.AddNull())
	require.NoError(t, ps.AddIntegerArray([]int32{1, 2, 3}))
	require.NoError(t, ps.AddStringArray([]string{}))
	require.NoError(t, ps.AddFloatArray([]float64{1.5}))
	return ps
}

func TestSerialize_RoundTrip(t *testing.T) {
	ps := fullSet(t)

	buf, err := ps.Serialize()
	require.NoError(t, err)

	got, err := DecodeBytes(buf)
	require.NoError(t, err)

	want := ps.Values()
	require.Len(t, got, len(want))
	for i := range want {
		require.True(t, want[i].Equal(got[i]), "slot %d: want %s got %s", i, want[i], got[i])
		require.Equal(t, want[i].IsArray(), got[i].IsArray())
		require.Equal(t, len(want[i].Elems()), len(got[i].Elems()))
	}
}

func TestSerialize_Idempotent(t *testing.T) {
	ps := fullSet(t)

	a, err := ps.Serialize()
	require.NoError(t, err)
	b, err := ps.Serialize()
	require.NoError(t, err)
	require.Equal(t, a, b)
}

func TestSerialize_IncompleteProducesNothing(t *testing.T) {
	ps := mustSet(t, New(wire.String), New(wire.String))
	require.NoError(t, ps.AddString("only one"))

	buf, err := ps.Serialize()
	require.ErrorIs(t, err, wire.ErrIncompleteParameterSet)
	require.Empty(t, buf)

	w := wire.NewWriter(0)
	w.WriteInt8(7)
	require.ErrorIs(t, ps.AppendTo(w), wire.ErrIncompleteParameterSet)
	require.Equal(t, []byte{7}, w.Bytes())
}

func TestSerialize_RollsBackOnEncodeError(t *testing.T) {
	ps := mustSet(t, New(wire.String), New(wire.Decimal))
	require.NoError(t, ps.AddString("ok"))
	// accepted by type, rejected by the fixed-point encoding
	require.NoError(t, ps.AddDecimal(decimal.RequireFromString("0.0000000000001")))

	w := wire.NewWriter(0)
	w.WriteInt8(1)
	err := ps.AppendTo(w)
	require.ErrorIs(t, err, wire.ErrValueOutOfRange)
	require.Equal(t, 1, w.Len())
}

func TestSerialize_StringLayout(t *testing.T) {
	ps := mustSet(t, New(wire.String), New(wire.String), New(wire.String))
	require.NoError(t, ps.AddString("Hello"))
	require.NoError(t, ps.AddString("World"))
	require.NoError(t, ps.AddString("English"))

	buf, err := ps.Serialize()
	require.NoError(t, err)

	want := []byte{0, 3}
	want = append(want, byte(wire.String), 0, 0, 0, 5)
	want = append(want, "Hello"...)
	want = append(want, byte(wire.String), 0, 0, 0, 5)
	want = append(want, "World"...)
	want = append(want, byte(wire.String), 0, 0, 0, 7)
	want = append(want, "English"...)
	require.Equal(t, want, buf)
}

func TestSerialize_ArrayLayout(t *testing.T) {
	ps := mustSet(t, NewArray(wire.SmallInt), New(wire.Integer))
	require.NoError(t, ps.AddArray(SmallInt(1), SmallInt(-1)))
	require.NoError(t, ps.AddNull())

	buf, err := ps.Serialize()
	require.NoError(t, err)
	require.Equal(t, []byte{
		0, 2,
		arrayTag, byte(wire.SmallInt), 0, 2, 0, 1, 0xff, 0xff,
		byte(wire.Null),
	}, buf)
}

// Parameters are positional: the wire carries no names, so a client that
// declares (name, dialect) against a server expecting (dialect, name) gets no
// error, just swapped data. Only the type tags differ when the types differ.
func TestSerialize_OrderIsTheWholeContract(t *testing.T) {
	a := mustSet(t, New(wire.String), New(wire.String))
	require.NoError(t, a.AddString("Hello"))
	require.NoError(t, a.AddString("French"))

	b := mustSet(t, New(wire.String), New(wire.String))
	require.NoError(t, b.AddString("French"))
	require.NoError(t, b.AddString("Hello"))

	ba, err := a.Serialize()
	require.NoError(t, err)
	bb, err := b.Serialize()
	require.NoError(t, err)

	require.NotEqual(t, ba, bb)
	require.Len(t, bb, len(ba))

	// decoding by position yields the values in the order they were sent,
	// whatever the receiver thinks they mean
	got, err := DecodeBytes(bb)
	require.NoError(t, err)
	require.Equal(t, "French", got[0].Str())

	// with differing types, the tags at least expose the swap
	c := mustSet(t, New(wire.String), New(wire.Integer))
	require.NoError(t, c.AddString("x"))
	require.ErrorIs(t, c.AddString("1"), wire.ErrTypeMismatch)
}

func TestDecode_Errors(t *testing.T) {
	t.Run("invalid tag", func(t *testing.T) {
		_, err := DecodeBytes([]byte{0, 1, 0x07})
		require.ErrorIs(t, err, wire.ErrInvalidWireType)
	})

	t.Run("truncated payload", func(t *testing.T) {
		_, err := DecodeBytes([]byte{0, 1, byte(wire.BigInt), 0, 0})
		require.ErrorIs(t, err, wire.ErrUnexpectedEOF)
	})

	t.Run("array of arrays", func(t *testing.T) {
		_, err := DecodeBytes([]byte{0, 1, arrayTag, arrayTag, 0, 0})
		require.ErrorIs(t, err, wire.ErrInvalidWireType)
	})

	t.Run("trailing bytes", func(t *testing.T) {
		_, err := DecodeBytes([]byte{0, 0, 1})
		require.ErrorIs(t, err, wire.ErrTrailingBytes)
	})

	t.Run("null string length", func(t *testing.T) {
		got, err := DecodeBytes([]byte{0, 1, byte(wire.String), 0xff, 0xff, 0xff, 0xff})
		require.NoError(t, err)
		require.True(t, got[0].IsNull())
	})
}
