package param

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/tuannm99/novavolt/pkg/wire"
)

// ParameterSet is the ordered list of actual arguments for one invocation.
// It is filled slot by slot, serialized, and then reset for reuse. It is not
// safe for concurrent use.
type ParameterSet struct {
	params []Parameter
	values []Value
}

// NewParameterSet returns an empty set for the declared parameters.
func NewParameterSet(params []Parameter) (*ParameterSet, error) {
	if len(params) > wire.DefaultFormat.MaxCount {
		return nil, fmt.Errorf("%w: %d parameters", wire.ErrInvalidParameter, len(params))
	}
	for i, p := range params {
		if err := p.Validate(); err != nil {
			return nil, fmt.Errorf("parameter %d: %w", i, err)
		}
	}
	cp := make([]Parameter, len(params))
	copy(cp, params)
	return &ParameterSet{
		params: cp,
		values: make([]Value, 0, len(params)),
	}, nil
}

// Len is the declared slot count.
func (ps *ParameterSet) Len() int { return len(ps.params) }

// Filled is the number of slots filled so far.
func (ps *ParameterSet) Filled() int { return len(ps.values) }

func (ps *ParameterSet) Complete() bool { return len(ps.values) == len(ps.params) }

func (ps *ParameterSet) Parameters() []Parameter {
	cp := make([]Parameter, len(ps.params))
	copy(cp, ps.params)
	return cp
}

// Values returns the filled slots in order.
func (ps *ParameterSet) Values() []Value {
	cp := make([]Value, len(ps.values))
	copy(cp, ps.values)
	return cp
}

// Reset empties every slot, keeping the declaration.
func (ps *ParameterSet) Reset() {
	clear(ps.values)
	ps.values = ps.values[:0]
}

// Add stores v in the next unfilled slot. On error the set is unchanged.
func (ps *ParameterSet) Add(v Value) error {
	slot := len(ps.values)
	if slot >= len(ps.params) {
		return fmt.Errorf("%w: procedure declares %d", wire.ErrTooManyParameters, len(ps.params))
	}
	stored, err := assign(ps.params[slot], v)
	if err != nil {
		return fmt.Errorf("slot %d: %w", slot, err)
	}
	ps.values = append(ps.values, stored)
	return nil
}

func assign(p Parameter, v Value) (Value, error) {
	if v.IsNull() {
		return Null(), nil
	}
	if v.array != p.array {
		return Value{}, fmt.Errorf("%w: declared %s, got %s", wire.ErrTypeMismatch, p, v.kind())
	}
	if !v.array {
		out, ok := convert(v, p.typ)
		if !ok {
			return Value{}, fmt.Errorf("%w: declared %s, got %s", wire.ErrTypeMismatch, p, v.kind())
		}
		return out, nil
	}
	if len(v.elems) > wire.DefaultFormat.MaxCount {
		return Value{}, fmt.Errorf("%w: array of %d elements", wire.ErrValueOutOfRange, len(v.elems))
	}
	elems := make([]Value, len(v.elems))
	for i, e := range v.elems {
		if e.IsNull() || e.array {
			return Value{}, fmt.Errorf("%w: array element %d is %s", wire.ErrTypeMismatch, i, e.kind())
		}
		out, ok := convert(e, p.typ)
		if !ok {
			return Value{}, fmt.Errorf("%w: declared %s, element %d is %s",
				wire.ErrTypeMismatch, p, i, e.kind())
		}
		elems[i] = out
	}
	return Value{typ: p.typ, array: true, elems: elems}, nil
}

// ---- typed wrappers ----

func (ps *ParameterSet) AddNull() error                     { return ps.Add(Null()) }
func (ps *ParameterSet) AddTinyInt(v int8) error            { return ps.Add(TinyInt(v)) }
func (ps *ParameterSet) AddSmallInt(v int16) error          { return ps.Add(SmallInt(v)) }
func (ps *ParameterSet) AddInteger(v int32) error           { return ps.Add(Integer(v)) }
func (ps *ParameterSet) AddBigInt(v int64) error            { return ps.Add(BigInt(v)) }
func (ps *ParameterSet) AddFloat(v float64) error           { return ps.Add(Float(v)) }
func (ps *ParameterSet) AddString(v string) error           { return ps.Add(String(v)) }
func (ps *ParameterSet) AddVarbinary(v []byte) error        { return ps.Add(Varbinary(v)) }
func (ps *ParameterSet) AddTimestamp(v time.Time) error     { return ps.Add(Timestamp(v)) }
func (ps *ParameterSet) AddDecimal(v decimal.Decimal) error { return ps.Add(Decimal(v)) }

// AddArray stores a homogeneous array. The element type is taken from the
// declaration of the slot being filled, so an empty array is always valid
// for an array slot.
func (ps *ParameterSet) AddArray(elems ...Value) error {
	slot := len(ps.values)
	if slot >= len(ps.params) {
		return fmt.Errorf("%w: procedure declares %d", wire.ErrTooManyParameters, len(ps.params))
	}
	return ps.Add(Value{typ: ps.params[slot].typ, array: true, elems: elems})
}

func (ps *ParameterSet) AddIntegerArray(v []int32) error { return ps.Add(IntegerArray(v)) }
func (ps *ParameterSet) AddBigIntArray(v []int64) error  { return ps.Add(BigIntArray(v)) }
func (ps *ParameterSet) AddFloatArray(v []float64) error { return ps.Add(FloatArray(v)) }
func (ps *ParameterSet) AddStringArray(v []string) error { return ps.Add(StringArray(v)) }
