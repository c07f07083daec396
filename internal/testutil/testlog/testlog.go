// Package testlog routes zerolog output through testing.T.
package testlog

import (
	"testing"

	"github.com/rs/zerolog"
)

func New(t testing.TB) zerolog.Logger {
	return zerolog.New(zerolog.NewTestWriter(t)).Level(zerolog.DebugLevel).With().Timestamp().Logger()
}
