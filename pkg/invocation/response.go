package invocation

import (
	"fmt"
	"strings"

	"github.com/tuannm99/novavolt/pkg/table"
)

// Response is a decoded invocation response. It is immutable once parsed.
type Response struct {
	InvocationID     int64
	Status           Status
	StatusString     string
	AppStatus        int8
	AppStatusString  string
	ClusterRoundTrip int32 // milliseconds
	Results          []*table.Table
}

// Failure reports whether the procedure did not succeed. A failed response
// carries no result tables.
func (r *Response) Failure() bool { return r.Status != StatusSuccess }

// Err returns the failure as an *ApplicationFailure, or nil on success.
func (r *Response) Err() error {
	if !r.Failure() {
		return nil
	}
	return &ApplicationFailure{
		Status:          r.Status,
		Message:         r.StatusString,
		AppStatus:       r.AppStatus,
		AppStatusString: r.AppStatusString,
	}
}

func (r *Response) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Status: %d, %s", int8(r.Status), r.StatusString)
	if r.StatusString == "" {
		sb.WriteString(r.Status.String())
	}
	fmt.Fprintf(&sb, "\nApplication status: %d, %s\n", r.AppStatus, r.AppStatusString)
	for i, t := range r.Results {
		fmt.Fprintf(&sb, "Result %d\n", i)
		sb.WriteString(t.String())
	}
	return sb.String()
}

// ApplicationFailure is an expected, non-exceptional outcome: the server ran
// (or refused to run) the procedure and reported why.
type ApplicationFailure struct {
	Status          Status
	Message         string
	AppStatus       int8
	AppStatusString string
}

func (e *ApplicationFailure) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("invocation: %s", e.Status)
	}
	return fmt.Sprintf("invocation: %s: %s", e.Status, e.Message)
}
