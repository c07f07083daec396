package wire

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestWidth(t *testing.T) {
	cases := []struct {
		tag   Type
		width int
	}{
		{Null, 0},
		{TinyInt, 1},
		{SmallInt, 2},
		{Integer, 4},
		{BigInt, 8},
		{Float, 8},
		{Timestamp, 8},
		{Decimal, 16},
		{String, Variable},
		{Varbinary, Variable},
		{Array, Variable},
	}
	for _, tc := range cases {
		t.Run(tc.tag.String(), func(t *testing.T) {
			w, err := Width(int8(tc.tag))
			require.NoError(t, err)
			require.Equal(t, tc.width, w)
			require.Equal(t, tc.width != Variable, tc.tag.IsFixed())
		})
	}
}

func TestLookup_UnknownTagNeverGetsAWidth(t *testing.T) {
	for _, tag := range []int8{0, 2, 7, 10, 23, 127, -1, -98} {
		_, err := Width(tag)
		require.ErrorIs(t, err, ErrInvalidWireType)
		require.ErrorIs(t, err, ErrProtocol)

		_, err = Lookup(tag)
		require.ErrorIs(t, err, ErrInvalidWireType)
	}
	require.Equal(t, "INVALID(7)", Type(7).String())
}

func TestScalarAndIntegerSets(t *testing.T) {
	require.False(t, Null.IsScalar())
	require.False(t, Array.IsScalar())
	require.False(t, Invalid.IsScalar())
	require.True(t, Varbinary.IsScalar())

	require.True(t, TinyInt.IsInteger())
	require.True(t, BigInt.IsInteger())
	require.False(t, Float.IsInteger())
	require.False(t, Timestamp.IsInteger())
}

func TestErrorClasses(t *testing.T) {
	require.ErrorIs(t, ErrTypeMismatch, ErrValidation)
	require.ErrorIs(t, ErrIncompleteParameterSet, ErrValidation)
	require.ErrorIs(t, ErrTooManyParameters, ErrValidation)
	require.NotErrorIs(t, ErrTypeMismatch, ErrProtocol)

	require.ErrorIs(t, ErrUnexpectedEOF, ErrProtocol)
	require.ErrorIs(t, ErrUnknownStatus, ErrProtocol)
	require.NotErrorIs(t, ErrUnexpectedEOF, ErrValidation)
}
