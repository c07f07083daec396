package voltclient

import (
	"time"

	"github.com/rs/zerolog"

	"github.com/tuannm99/novavolt/internal"
	"github.com/tuannm99/novavolt/internal/logging"
	"github.com/tuannm99/novavolt/pkg/wire"
)

type Config struct {
	Addr        string
	DialTimeout time.Duration

	// RWTimeout bounds one invocation when the context has no deadline
	// (0 = no timeout).
	RWTimeout time.Duration

	// MaxFrameSize caps a response frame (0 = wire.DefaultFormat.MaxFrameSize).
	MaxFrameSize int

	// Logger defaults to a no-op logger.
	Logger *zerolog.Logger
}

// ConfigFrom maps the client section of the loaded configuration.
func ConfigFrom(cfg *internal.NovaVoltConfig, logger *zerolog.Logger) Config {
	return Config{
		Addr:         cfg.Client.Addr,
		DialTimeout:  cfg.Client.DialTimeout,
		RWTimeout:    cfg.Client.RWTimeout,
		MaxFrameSize: cfg.Client.MaxFrameSize,
		Logger:       logger,
	}
}

func (c Config) maxFrame() int {
	if c.MaxFrameSize > 0 {
		return c.MaxFrameSize
	}
	return wire.DefaultFormat.MaxFrameSize
}

func (c Config) logger() zerolog.Logger {
	if c.Logger == nil {
		return logging.Nop()
	}
	return *c.Logger
}
