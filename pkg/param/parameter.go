// Package param describes and encodes the positional arguments of a stored
// procedure invocation.
//
// Parameters carry no names on the wire. The server binds them purely by
// position, so a client whose declared parameter order differs from the
// procedure signature silently sends wrong data. The only checks available
// locally are the declared types and the declared count, and ParameterSet
// enforces both before a single byte is produced.
package param

import (
	"fmt"

	"github.com/tuannm99/novavolt/pkg/wire"
)

// Parameter describes, but does not hold, one formal argument.
type Parameter struct {
	typ   wire.Type
	array bool
}

// New declares a scalar parameter of type t.
func New(t wire.Type) Parameter { return Parameter{typ: t} }

// NewArray declares an array parameter whose elements are of type t.
func NewArray(t wire.Type) Parameter { return Parameter{typ: t, array: true} }

func (p Parameter) Type() wire.Type { return p.typ }
func (p Parameter) IsArray() bool   { return p.array }

// Validate rejects structural or unknown types.
func (p Parameter) Validate() error {
	if !p.typ.IsScalar() {
		return fmt.Errorf("%w: type %s", wire.ErrInvalidParameter, p.typ)
	}
	return nil
}

func (p Parameter) String() string {
	if p.array {
		return p.typ.String() + "[]"
	}
	return p.typ.String()
}
