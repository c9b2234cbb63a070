package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

const (
	// DefaultSymbolFile is tried when no path was given or persisted.
	DefaultSymbolFile = "symbols.yaml"
	// userConfName is the per-user config file at the home directory.
	userConfName = ".star.json"

	// ChunkSize is the maximum number of symbols per quote request.
	ChunkSize = 25
	// DefaultLimit is the page size used when printing results.
	DefaultLimit = 25
)

// Config holds the ambient configuration for the CLI.
type Config struct {
	Logger Logger `mapstructure:"logger"`
	Quote  Quote  `mapstructure:"quote"`
}

// Logger holds the configuration for the logger.
type Logger struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// Quote holds defaults for the quote data source.
type Quote struct {
	Provider       string  `mapstructure:"provider"`
	RateLimit      float64 `mapstructure:"rate_limit"`
	RateLimitBurst int     `mapstructure:"rate_limit_burst"`
}

// Load builds the configuration from defaults and STAR_* environment
// variables. There is no required config file; the tool must run from a
// bare checkout.
func Load() (Config, error) {
	v := viper.New()

	v.SetDefault("logger.level", "warn")
	v.SetDefault("logger.format", "console")
	v.SetDefault("quote.provider", "tencent")
	v.SetDefault("quote.rate_limit", 5) // requests per second
	v.SetDefault("quote.rate_limit_burst", 2)

	v.SetEnvPrefix("star")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	var cfg Config
	err := v.Unmarshal(&cfg)
	return cfg, err
}

// ResolveSymbolFile resolves the symbol store path. A path given on the
// command line wins and is persisted to ~/.star.json so later runs can
// omit it; otherwise the persisted path is used, then the default name.
func ResolveSymbolFile(flagPath string) (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		if flagPath != "" {
			return flagPath, nil
		}
		return DefaultSymbolFile, nil
	}
	confPath := filepath.Join(home, userConfName)

	v := viper.New()
	v.SetConfigFile(confPath)
	v.SetConfigType("json")

	if flagPath != "" {
		// Keep whatever else a prior run stored in the file.
		_ = v.ReadInConfig()
		v.Set("symbolFile", flagPath)
		if err := v.WriteConfigAs(confPath); err != nil {
			return "", fmt.Errorf("failed to persist symbol file path: %w", err)
		}
		return flagPath, nil
	}

	if err := v.ReadInConfig(); err == nil {
		if f := v.GetString("symbolFile"); f != "" {
			return f, nil
		}
	}
	return DefaultSymbolFile, nil
}
