package table

import "errors"

var (
	ErrColumnTypeMismatch     = errors.New("table: column type mismatch")
	ErrColumnIndexOutOfBounds = errors.New("table: column index out of bounds")
	ErrColumnNotFound         = errors.New("table: column not found")
	ErrRowIndexOutOfBounds    = errors.New("table: row index out of bounds")
)
