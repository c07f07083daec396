package logging

import (
	"bytes"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	cases := []struct {
		raw  string
		want zerolog.Level
		ok   bool
	}{
		{"", zerolog.InfoLevel, false},
		{"DEBUG", zerolog.DebugLevel, true},
		{" warning ", zerolog.WarnLevel, true},
		{"off", zerolog.Disabled, true},
		{"loud", zerolog.InfoLevel, false},
	}
	for _, tc := range cases {
		t.Run(tc.raw, func(t *testing.T) {
			got, ok := ParseLevel(tc.raw)
			require.Equal(t, tc.ok, ok)
			require.Equal(t, tc.want, got)
		})
	}
}

func TestNewWithWriter_LevelAndFields(t *testing.T) {
	t.Setenv(EnvLogLevel, "")

	var buf bytes.Buffer
	logger := NewWithWriter(&buf, "volt", "warn", false)
	logger.Info().Msg("hidden")
	require.Zero(t, buf.Len())

	logger.Warn().Str("proc", "Insert").Msg("shown")
	require.Contains(t, buf.String(), `"app":"volt"`)
	require.Contains(t, buf.String(), `"proc":"Insert"`)
}

func TestNewWithWriter_EnvWins(t *testing.T) {
	t.Setenv(EnvLogLevel, "debug")

	var buf bytes.Buffer
	logger := NewWithWriter(&buf, "volt", "error", false)
	logger.Debug().Msg("visible")
	require.Contains(t, buf.String(), "visible")
}

func TestNop(t *testing.T) {
	logger := Nop()
	require.Equal(t, zerolog.Disabled, logger.GetLevel())
}
