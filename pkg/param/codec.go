package param

import (
	"fmt"

	"github.com/tuannm99/novavolt/pkg/wire"
)

// Serialize encodes the set as
//
//	[int16 count] then per slot:
//	  null   -> [NULL]
//	  scalar -> [tag][payload]
//	  array  -> [ARRAY][elem tag][int16 n][payload]*n
//
// Every slot must be filled; otherwise nothing is produced.
func (ps *ParameterSet) Serialize() ([]byte, error) {
	w := wire.NewWriter(ps.sizeHint())
	if err := ps.AppendTo(w); err != nil {
		return nil, err
	}
	return w.Bytes(), nil
}

// AppendTo writes the set to w. On error w is rolled back to its length
// before the call.
func (ps *ParameterSet) AppendTo(w *wire.Writer) error {
	if !ps.Complete() {
		return fmt.Errorf("%w: %d of %d slots filled",
			wire.ErrIncompleteParameterSet, len(ps.values), len(ps.params))
	}
	start := w.Len()
	if err := appendValues(w, ps.values); err != nil {
		w.Truncate(start)
		return err
	}
	return nil
}

func appendValues(w *wire.Writer, values []Value) error {
	if err := w.WriteCount(len(values)); err != nil {
		return err
	}
	for i, v := range values {
		if err := appendValue(w, v); err != nil {
			return fmt.Errorf("slot %d: %w", i, err)
		}
	}
	return nil
}

func appendValue(w *wire.Writer, v Value) error {
	switch {
	case v.IsNull():
		w.WriteType(wire.Null)
		return nil
	case v.array:
		w.WriteType(wire.Array)
		w.WriteType(v.typ)
		if err := w.WriteCount(len(v.elems)); err != nil {
			return err
		}
		for _, e := range v.elems {
			if err := appendPayload(w, e); err != nil {
				return err
			}
		}
		return nil
	default:
		w.WriteType(v.typ)
		return appendPayload(w, v)
	}
}

func appendPayload(w *wire.Writer, v Value) error {
	switch v.typ {
	case wire.TinyInt:
		w.WriteInt8(int8(v.i))
	case wire.SmallInt:
		w.WriteInt16(int16(v.i))
	case wire.Integer:
		w.WriteInt32(int32(v.i))
	case wire.BigInt:
		w.WriteInt64(v.i)
	case wire.Timestamp:
		w.WriteTimestamp(v.i)
	case wire.Float:
		w.WriteFloat(v.f)
	case wire.String:
		return w.WriteString(v.s)
	case wire.Varbinary:
		b := v.b
		if b == nil {
			b = []byte{}
		}
		return w.WriteBytes(b)
	case wire.Decimal:
		return w.WriteDecimal(v.d)
	default:
		return fmt.Errorf("%w: cannot encode %s", wire.ErrTypeMismatch, v.typ)
	}
	return nil
}

func (ps *ParameterSet) sizeHint() int {
	n := 2
	for _, v := range ps.values {
		n += 1 + 8
		if v.array {
			n += 3 + len(v.elems)*9
		}
		n += len(v.s) + len(v.b)
	}
	return n
}

// ---- decode ----

// Decode reads a serialized parameter set. Values come back with the types
// that were written, which are the declared types of the encoding side.
func Decode(r *wire.Reader) ([]Value, error) {
	n, err := r.ReadCount()
	if err != nil {
		return nil, err
	}
	values := make([]Value, n)
	for i := range values {
		v, err := readValue(r)
		if err != nil {
			return nil, fmt.Errorf("slot %d: %w", i, err)
		}
		values[i] = v
	}
	return values, nil
}

// DecodeBytes decodes b, which must hold exactly one parameter set.
func DecodeBytes(b []byte) ([]Value, error) {
	r := wire.NewReader(b)
	values, err := Decode(r)
	if err != nil {
		return nil, err
	}
	if err := r.ExpectEnd(); err != nil {
		return nil, err
	}
	return values, nil
}

func readValue(r *wire.Reader) (Value, error) {
	tag, err := r.ReadType()
	if err != nil {
		return Value{}, err
	}
	switch tag {
	case wire.Null:
		return Null(), nil
	case wire.Array:
		elem, err := r.ReadType()
		if err != nil {
			return Value{}, err
		}
		if !elem.IsScalar() {
			return Value{}, fmt.Errorf("%w: array of %s", wire.ErrInvalidWireType, elem)
		}
		n, err := r.ReadCount()
		if err != nil {
			return Value{}, err
		}
		elems := make([]Value, n)
		for i := range elems {
			if elems[i], err = readPayload(r, elem); err != nil {
				return Value{}, fmt.Errorf("element %d: %w", i, err)
			}
		}
		return Value{typ: elem, array: true, elems: elems}, nil
	default:
		return readPayload(r, tag)
	}
}

func readPayload(r *wire.Reader, t wire.Type) (Value, error) {
	switch t {
	case wire.TinyInt:
		v, err := r.ReadInt8()
		return TinyInt(v), err
	case wire.SmallInt:
		v, err := r.ReadInt16()
		return SmallInt(v), err
	case wire.Integer:
		v, err := r.ReadInt32()
		return Integer(v), err
	case wire.BigInt:
		v, err := r.ReadInt64()
		return BigInt(v), err
	case wire.Timestamp:
		v, err := r.ReadInt64()
		return TimestampMicros(v), err
	case wire.Float:
		v, err := r.ReadFloat()
		return Float(v), err
	case wire.String:
		s, null, err := r.ReadString()
		if err != nil || null {
			return Null(), err
		}
		return String(s), nil
	case wire.Varbinary:
		b, null, err := r.ReadBytes()
		if err != nil || null {
			return Null(), err
		}
		return Value{typ: wire.Varbinary, b: b}, nil
	case wire.Decimal:
		d, null, err := r.ReadDecimal()
		if err != nil || null {
			return Null(), err
		}
		return Decimal(d), nil
	}
	return Value{}, fmt.Errorf("%w: %s has no payload", wire.ErrInvalidWireType, t)
}
