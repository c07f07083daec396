package invocation

import (
	"fmt"

	"github.com/tuannm99/novavolt/pkg/wire"
)

// Status is the outcome code of an invocation.
type Status int8

const (
	StatusSuccess            Status = 1
	StatusUserAbort          Status = -1
	StatusGracefulFailure    Status = -2
	StatusUnexpectedFailure  Status = -3
	StatusConnectionLost     Status = -4
	StatusServerUnavailable  Status = -5
	StatusConnectionTimeout  Status = -6
	StatusResponseUnknown    Status = -7
	StatusTxnRestart         Status = -8
	StatusOperationalFailure Status = -9
)

var statusNames = map[Status]string{
	StatusSuccess:            "SUCCESS",
	StatusUserAbort:          "USER_ABORT",
	StatusGracefulFailure:    "GRACEFUL_FAILURE",
	StatusUnexpectedFailure:  "UNEXPECTED_FAILURE",
	StatusConnectionLost:     "CONNECTION_LOST",
	StatusServerUnavailable:  "SERVER_UNAVAILABLE",
	StatusConnectionTimeout:  "CONNECTION_TIMEOUT",
	StatusResponseUnknown:    "RESPONSE_UNKNOWN",
	StatusTxnRestart:         "TXN_RESTART",
	StatusOperationalFailure: "OPERATIONAL_FAILURE",
}

// ParseStatus validates a status byte. Unknown codes are a protocol error;
// no recovery is guessed.
func ParseStatus(b int8) (Status, error) {
	s := Status(b)
	if _, ok := statusNames[s]; !ok {
		return 0, fmt.Errorf("%w: %d", wire.ErrUnknownStatus, b)
	}
	return s, nil
}

func (s Status) String() string {
	if name, ok := statusNames[s]; ok {
		return name
	}
	return fmt.Sprintf("UNKNOWN(%d)", int8(s))
}
