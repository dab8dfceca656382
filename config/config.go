// Package config loads interceptor settings from the environment and an
// optional YAML file.
//
// Settings are read in the following order (highest precedence first):
//  1. Environment variables (MICROHOOK_* prefix)
//  2. The config file passed to LoadFile
//  3. Built-in defaults
package config

import (
	stderrors "errors"
	"fmt"
	"io"
	"strings"

	"github.com/go-viper/mapstructure/v2"
	"github.com/rs/zerolog"
	"github.com/spf13/viper"

	"github.com/wnxd/microhook/hook"
)

// ErrInvalidLogLevel indicates that log_level is not a zerolog level name.
var ErrInvalidLogLevel = stderrors.New("invalid log level")

type Config struct {
	// OnDuplicate is the policy for watching the same callback twice.
	OnDuplicate hook.DuplicatePolicy `yaml:"on_duplicate" mapstructure:"on_duplicate"`

	// RetainWatches keeps subscriptions alive across unload/reload.
	RetainWatches bool `yaml:"retain_watches" mapstructure:"retain_watches"`

	LogLevel string `yaml:"log_level" mapstructure:"log_level"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("on_duplicate", hook.DuplicatePolicy_Fail.String())
	v.SetDefault("retain_watches", true)
	v.SetDefault("log_level", zerolog.InfoLevel.String())
}

func newViperInstance() *viper.Viper {
	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix("MICROHOOK")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

func viperDecoderOption() viper.DecoderConfigOption {
	return viper.DecodeHook(
		mapstructure.ComposeDecodeHookFunc(
			mapstructure.TextUnmarshallerHookFunc(),
		),
	)
}

func unmarshalAndValidate(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg, viperDecoderOption()); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

// Load reads settings from the environment on top of the defaults.
func Load() (*Config, error) {
	return unmarshalAndValidate(newViperInstance())
}

// LoadFile reads settings from path, then applies environment overrides.
func LoadFile(path string) (*Config, error) {
	v := newViperInstance()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config %s: %w", path, err)
	}
	return unmarshalAndValidate(v)
}

func (c *Config) Validate() error {
	if _, err := zerolog.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("%w: %q", ErrInvalidLogLevel, c.LogLevel)
	}
	if c.OnDuplicate != hook.DuplicatePolicy_Fail && c.OnDuplicate != hook.DuplicatePolicy_Ignore {
		return fmt.Errorf("%w: duplicate policy %d", hook.ErrArgumentInvalid, c.OnDuplicate)
	}
	return nil
}

// Logger builds a leveled logger writing to w.
func (c *Config) Logger(w io.Writer) (zerolog.Logger, error) {
	level, err := zerolog.ParseLevel(c.LogLevel)
	if err != nil {
		return zerolog.Nop(), fmt.Errorf("%w: %q", ErrInvalidLogLevel, c.LogLevel)
	}
	return zerolog.New(w).Level(level).With().Timestamp().Logger(), nil
}

// Options converts the settings into interceptor options, logging to w.
func (c *Config) Options(w io.Writer) ([]hook.Option, error) {
	logger, err := c.Logger(w)
	if err != nil {
		return nil, err
	}
	return []hook.Option{
		hook.WithLogger(logger),
		hook.WithDuplicateWatch(c.OnDuplicate),
		hook.WithRetainWatches(c.RetainWatches),
	}, nil
}
