package param

import (
	"fmt"
	"math"
	"time"

	"github.com/shopspring/decimal"

	"github.com/tuannm99/novavolt/pkg/wire"
)

// Bind adds native Go values to the next slots. Either every argument is
// stored or the set is left as it was.
func (ps *ParameterSet) Bind(args ...any) error {
	mark := len(ps.values)
	for _, arg := range args {
		slot := len(ps.values)
		if slot >= len(ps.params) {
			ps.rollback(mark)
			return fmt.Errorf("%w: procedure declares %d", wire.ErrTooManyParameters, len(ps.params))
		}
		v, err := FromGo(arg, ps.params[slot].typ)
		if err == nil {
			err = ps.Add(v)
		} else {
			err = fmt.Errorf("slot %d: %w", slot, err)
		}
		if err != nil {
			ps.rollback(mark)
			return err
		}
	}
	return nil
}

func (ps *ParameterSet) rollback(n int) {
	clear(ps.values[n:])
	ps.values = ps.values[:n]
}

// FromGo converts a native Go value. Untyped-width integers (int, uint...)
// take the integer type of hint when they fit, otherwise BIGINT.
func FromGo(arg any, hint wire.Type) (Value, error) {
	switch x := arg.(type) {
	case nil:
		return Null(), nil
	case Value:
		return x, nil
	case int8:
		return TinyInt(x), nil
	case int16:
		return SmallInt(x), nil
	case int32:
		return Integer(x), nil
	case int64:
		return BigInt(x), nil
	case int:
		return fitInt(int64(x), hint), nil
	case uint8:
		return fitInt(int64(x), hint), nil
	case uint16:
		return fitInt(int64(x), hint), nil
	case uint32:
		return fitInt(int64(x), hint), nil
	case uint:
		if uint64(x) > math.MaxInt64 {
			return Value{}, fmt.Errorf("%w: %d overflows BIGINT", wire.ErrValueOutOfRange, x)
		}
		return fitInt(int64(x), hint), nil
	case uint64:
		if x > math.MaxInt64 {
			return Value{}, fmt.Errorf("%w: %d overflows BIGINT", wire.ErrValueOutOfRange, x)
		}
		return fitInt(int64(x), hint), nil
	case float32:
		return Float(float64(x)), nil
	case float64:
		return Float(x), nil
	case string:
		return String(x), nil
	case []byte:
		return Varbinary(x), nil
	case time.Time:
		return Timestamp(x), nil
	case decimal.Decimal:
		return Decimal(x), nil
	case []int32:
		return IntegerArray(x), nil
	case []int64:
		return BigIntArray(x), nil
	case []float64:
		return FloatArray(x), nil
	case []string:
		return StringArray(x), nil
	}
	return Value{}, fmt.Errorf("%w: unsupported Go type %T", wire.ErrTypeMismatch, arg)
}

func fitInt(v int64, hint wire.Type) Value {
	if lo, hi, ok := wire.IntRange(hint); ok && v >= lo && v <= hi {
		return Value{typ: hint, i: v}
	}
	if hint == wire.Float && v >= math.MinInt32 && v <= math.MaxInt32 {
		return Integer(int32(v))
	}
	return BigInt(v)
}
