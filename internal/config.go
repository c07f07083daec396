package internal

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const EnvPrefix = "NOVAVOLT"

type NovaVoltConfig struct {
	AppName string `mapstructure:"app_name"`

	Client struct {
		Addr         string        `mapstructure:"addr"`
		DialTimeout  time.Duration `mapstructure:"dial_timeout"`
		RWTimeout    time.Duration `mapstructure:"rw_timeout"`
		MaxFrameSize int           `mapstructure:"max_frame_size"`
	} `mapstructure:"client"`

	Server struct {
		Addr        string `mapstructure:"addr"`
		MetricsAddr string `mapstructure:"metrics_addr"`
	} `mapstructure:"server"`

	Log struct {
		Level   string `mapstructure:"level"`
		Console bool   `mapstructure:"console"`
	} `mapstructure:"log"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app_name", "novavolt")

	v.SetDefault("client.addr", "127.0.0.1:21212")
	v.SetDefault("client.dial_timeout", 3*time.Second)
	v.SetDefault("client.rw_timeout", 0)
	v.SetDefault("client.max_frame_size", 50<<20)

	v.SetDefault("server.addr", "127.0.0.1:21212")
	v.SetDefault("server.metrics_addr", "")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.console", true)
}

// LoadConfig reads path (yaml, toml or json by extension) over the defaults.
// An empty path loads defaults only. NOVAVOLT_* environment variables win
// over both, e.g. NOVAVOLT_CLIENT_ADDR.
func LoadConfig(path string) (*NovaVoltConfig, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg NovaVoltConfig
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if cfg.Client.MaxFrameSize <= 0 {
		return nil, fmt.Errorf("config: client.max_frame_size must be positive, got %d", cfg.Client.MaxFrameSize)
	}

	return &cfg, nil
}
