package voltwire

import (
	"context"
	"fmt"

	"github.com/tuannm99/novavolt/pkg/invocation"
	"github.com/tuannm99/novavolt/pkg/param"
	"github.com/tuannm99/novavolt/pkg/table"
)

// HandlerFunc runs one procedure. A returned *invocation.ApplicationFailure
// is sent back with its own status; any other error becomes
// UNEXPECTED_FAILURE. A nil response means success with no tables.
type HandlerFunc func(ctx context.Context, req *invocation.Request) (*invocation.Response, error)

type procedure struct {
	name      string
	signature []param.Parameter
	handler   HandlerFunc
}

// bind checks the request against the declared signature and converts the
// values to the declared types. A nil signature accepts anything.
func (p *procedure) bind(req *invocation.Request) error {
	if p.signature == nil {
		return nil
	}
	ps, err := param.NewParameterSet(p.signature)
	if err != nil {
		return err
	}
	if len(req.Params) != ps.Len() {
		return fmt.Errorf("procedure %s expects %d parameters, got %d", p.name, ps.Len(), len(req.Params))
	}
	for _, v := range req.Params {
		if err := ps.Add(v); err != nil {
			return fmt.Errorf("procedure %s: %w", p.name, err)
		}
	}
	req.Params = ps.Values()
	return nil
}

// Results is a successful response carrying tables.
func Results(tables ...*table.Table) *invocation.Response {
	return &invocation.Response{Status: invocation.StatusSuccess, Results: tables}
}

// Abort makes a handler fail with USER_ABORT and msg.
func Abort(msg string) error {
	return &invocation.ApplicationFailure{Status: invocation.StatusUserAbort, Message: msg}
}

// Graceful makes a handler fail with GRACEFUL_FAILURE and msg.
func Graceful(format string, args ...any) error {
	return &invocation.ApplicationFailure{
		Status:  invocation.StatusGracefulFailure,
		Message: fmt.Sprintf(format, args...),
	}
}
