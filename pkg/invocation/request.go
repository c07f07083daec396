package invocation

import (
	"github.com/tuannm99/novavolt/pkg/param"
)

// Request is the server-side view of a decoded invocation.
type Request struct {
	InvocationID int64
	Procedure    string
	Params       []param.Value
}
