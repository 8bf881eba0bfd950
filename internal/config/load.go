package config

import (
	"context"
	"fmt"
	"strings"

	"github.com/go-viper/mapstructure/v2"
	"github.com/rs/zerolog"
	"github.com/spf13/viper"
)

// EnvPrefix is the prefix for environment overrides, e.g. NANO_CRYPTO_MODE.
const EnvPrefix = "NANO"

// newViperInstance creates a Viper instance with the NANO_ env prefix and defaults.
func newViperInstance() *viper.Viper {
	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// setDefaults registers every key so AutomaticEnv can override it.
func setDefaults(v *viper.Viper) {
	v.SetDefault("crypto.mode", "classical")
	v.SetDefault("crypto.minimum_mode", "classical")
	v.SetDefault("crypto.allow_auto_upgrade", true)
	v.SetDefault("crypto.adaptive_mode", false)

	v.SetDefault("inbox.replay_window", 64)
	v.SetDefault("inbox.envelope_ttl", "0s")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")
}

// viperDecoderOption decodes mode names through mode.Mode's UnmarshalText
// and durations from strings like "24h".
func viperDecoderOption() viper.DecoderConfigOption {
	return viper.DecodeHook(
		mapstructure.ComposeDecodeHookFunc(
			mapstructure.TextUnmarshallerHookFunc(),
			mapstructure.StringToTimeDurationHookFunc(),
		),
	)
}

// Load reads configuration with the following precedence (highest first):
//  1. Environment variables (NANO_* prefix)
//  2. The YAML file at path, if path is non-empty
//  3. Built-in defaults
//
// The result is validated. The core never reads files or the environment
// itself; this loader is the only place that does.
func Load(ctx context.Context, path string) (*Config, error) {
	v := newViperInstance()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg, viperDecoderOption()); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	logger := zerolog.Ctx(ctx).With().Str("component", "config").Logger()
	logger.Debug().
		Stringer("crypto.mode", cfg.Crypto.Mode).
		Stringer("crypto.minimum_mode", cfg.Crypto.MinimumMode).
		Int("inbox.replay_window", cfg.Inbox.ReplayWindow).
		Str("file", v.ConfigFileUsed()).
		Msg("configuration loaded")

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}
