package wire

import (
	"bytes"
	"fmt"
	"math/big"

	"github.com/shopspring/decimal"

	"github.com/tuannm99/novavolt/internal/alias/bx"
)

var (
	twoTo128 = new(big.Int).Lsh(big.NewInt(1), 128)
	ten      = big.NewInt(10)
)

// EncodeDecimal converts d to its fixed-point form. Values needing more than
// DecimalScale fractional digits or DecimalPrecision total digits are rejected
// rather than rounded.
func (f *Format) EncodeDecimal(d decimal.Decimal) ([16]byte, error) {
	var out [16]byte
	scaled := d.Shift(f.DecimalScale)
	if !scaled.Equal(scaled.Truncate(0)) {
		return out, fmt.Errorf("%w: decimal %s has more than %d fractional digits",
			ErrValueOutOfRange, d.String(), f.DecimalScale)
	}
	unscaled := scaled.BigInt()
	limit := new(big.Int).Exp(ten, big.NewInt(int64(f.DecimalPrecision)), nil)
	if new(big.Int).Abs(unscaled).Cmp(limit) >= 0 {
		return out, fmt.Errorf("%w: decimal %s exceeds precision %d",
			ErrValueOutOfRange, d.String(), f.DecimalPrecision)
	}
	if unscaled.Sign() < 0 {
		unscaled.Add(unscaled, twoTo128)
	}
	unscaled.FillBytes(out[:])
	f.orderDecimal(out[:])
	return out, nil
}

// DecodeDecimal converts 16 wire bytes back to a decimal. ok is false for the
// null sentinel.
func (f *Format) DecodeDecimal(b []byte) (d decimal.Decimal, ok bool) {
	if !bx.IsBig(f.ByteOrder) {
		b = bytes.Clone(b)
		f.orderDecimal(b)
	}
	if bytes.Equal(b, NullDecimal[:]) {
		return decimal.Decimal{}, false
	}
	v := new(big.Int).SetBytes(b)
	if b[0]&0x80 != 0 {
		v.Sub(v, twoTo128)
	}
	return decimal.NewFromBigInt(v, -f.DecimalScale), true
}

// nullDecimal returns NullDecimal in f's byte order.
func (f *Format) nullDecimal() [16]byte {
	out := NullDecimal
	f.orderDecimal(out[:])
	return out
}

// orderDecimal converts b between big-endian and f's byte order in place.
func (f *Format) orderDecimal(b []byte) {
	if bx.IsBig(f.ByteOrder) {
		return
	}
	for i, j := 0, len(b)-1; i < j; i, j = i+1, j-1 {
		b[i], b[j] = b[j], b[i]
	}
}
