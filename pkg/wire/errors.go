package wire

import (
	"errors"
	"fmt"
)

// Error classes. Every sentinel below wraps exactly one of them, so callers can
// branch on errors.Is(err, ErrValidation) or errors.Is(err, ErrProtocol).
var (
	// ErrValidation is raised before any byte is sent; the caller can fix the
	// input and retry.
	ErrValidation = errors.New("validation error")

	// ErrProtocol is raised while decoding; the stream is corrupted or the
	// peer speaks another protocol version.
	ErrProtocol = errors.New("protocol error")
)

// Validation errors.
var (
	ErrTypeMismatch           = fmt.Errorf("%w: type mismatch", ErrValidation)
	ErrTooManyParameters      = fmt.Errorf("%w: too many parameters", ErrValidation)
	ErrIncompleteParameterSet = fmt.Errorf("%w: incomplete parameter set", ErrValidation)
	ErrInvalidParameter       = fmt.Errorf("%w: invalid parameter", ErrValidation)
	ErrInvalidProcedure       = fmt.Errorf("%w: invalid procedure", ErrValidation)
	ErrValueOutOfRange        = fmt.Errorf("%w: value out of range", ErrValidation)
)

// Protocol errors.
var (
	ErrInvalidWireType     = fmt.Errorf("%w: invalid wire type", ErrProtocol)
	ErrUnexpectedEOF       = fmt.Errorf("%w: unexpected eof", ErrProtocol)
	ErrInvalidLength       = fmt.Errorf("%w: invalid length", ErrProtocol)
	ErrTrailingBytes       = fmt.Errorf("%w: trailing bytes", ErrProtocol)
	ErrFrameTooLarge       = fmt.Errorf("%w: frame too large", ErrProtocol)
	ErrUnknownStatus       = fmt.Errorf("%w: unknown status", ErrProtocol)
	ErrCorrelationMismatch = fmt.Errorf("%w: invocation id mismatch", ErrProtocol)
)
