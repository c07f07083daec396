package param

import (
	"github.com/shopspring/decimal"

	"github.com/tuannm99/novavolt/pkg/wire"
)

// convert returns v re-typed as to, following upward widening only:
//
//	TINYINT  -> SMALLINT, INTEGER, BIGINT, FLOAT, DECIMAL
//	SMALLINT -> INTEGER, BIGINT, FLOAT, DECIMAL
//	INTEGER  -> BIGINT, FLOAT, DECIMAL
//	BIGINT   -> DECIMAL
//
// STRING, VARBINARY and TIMESTAMP only match themselves.
func convert(v Value, to wire.Type) (Value, bool) {
	if v.typ == to {
		return v, true
	}
	if !v.typ.IsInteger() {
		return Value{}, false
	}
	switch {
	case to.IsInteger() && to > v.typ:
		return Value{typ: to, i: v.i}, true
	case to == wire.Float && v.typ != wire.BigInt:
		return Value{typ: wire.Float, f: float64(v.i)}, true
	case to == wire.Decimal:
		return Value{typ: wire.Decimal, d: decimal.NewFromInt(v.i)}, true
	}
	return Value{}, false
}

// Assignable reports whether a value of type from may be stored in a slot
// declared as to.
func Assignable(from, to wire.Type) bool {
	_, ok := convert(Value{typ: from}, to)
	return ok
}
