package invocation

import (
	"fmt"

	"github.com/tuannm99/novavolt/pkg/param"
	"github.com/tuannm99/novavolt/pkg/wire"
)

// Procedure describes one stored procedure and owns the ParameterSet used to
// build its invocations. Declare it once and reuse it: fill Params, invoke,
// fill again.
type Procedure struct {
	name   string
	params []param.Parameter
	set    *param.ParameterSet
}

// NewProcedure declares a procedure. The parameters must be listed in the
// exact order of the server-side signature; see package param.
func NewProcedure(name string, params ...param.Parameter) (*Procedure, error) {
	if name == "" {
		return nil, fmt.Errorf("%w: empty name", wire.ErrInvalidProcedure)
	}
	set, err := param.NewParameterSet(params)
	if err != nil {
		return nil, fmt.Errorf("procedure %s: %w", name, err)
	}
	return &Procedure{name: name, params: set.Parameters(), set: set}, nil
}

func (p *Procedure) Name() string { return p.name }

func (p *Procedure) Parameters() []param.Parameter {
	cp := make([]param.Parameter, len(p.params))
	copy(cp, p.params)
	return cp
}

// Params is the bound set to fill before invoking.
func (p *Procedure) Params() *param.ParameterSet { return p.set }

// Reset empties the bound set for the next invocation.
func (p *Procedure) Reset() { p.set.Reset() }

func (p *Procedure) String() string {
	return fmt.Sprintf("%s%v", p.name, p.params)
}
