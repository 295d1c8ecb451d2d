package config

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"
)

// ConfigFileName is the config file looked up in the working directory
const ConfigFileName = "rapid.yaml"

// EnvPrefix prefixes every environment override, e.g. RAPID_DATABASE_HOST
const EnvPrefix = "RAPID_"

// Load builds the configuration.
// Precedence (highest to lowest): flags > env vars > config file > defaults.
// A .env file in the working directory is loaded into the environment first;
// it never overrides variables that are already set.
func Load(cfgFile string, flags *pflag.FlagSet) (*Config, error) {
	if _, err := os.Stat(".env"); err == nil {
		if err := godotenv.Load(".env"); err != nil {
			slog.Warn("failed to load .env", "error", err)
		}
	}

	k := koanf.New(".")

	// 1. Defaults
	if err := k.Load(confmap.Provider(map[string]interface{}{
		"database.engine":            DefaultEngine,
		"database.name":              DefaultDatabase,
		"database.max_open_conns":    DefaultMaxOpenConns,
		"database.conn_max_lifetime": DefaultConnMaxLifetime.String(),
		"log.level":                  DefaultLogLevel,
		"log.format":                 DefaultLogFormat,
		"server.addr":                DefaultServerAddr,
	}, "."), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	// 2. Config file
	if cfgFile == "" {
		if _, err := os.Stat(ConfigFileName); err == nil {
			cfgFile = ConfigFileName
		}
	}
	if cfgFile != "" {
		if err := k.Load(file.Provider(cfgFile), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("error reading config file %s: %w", cfgFile, err)
		}
	}

	// 3. Environment: RAPID_DATABASE_TABLE_PREFIX -> database.table_prefix
	if err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil); err != nil {
		return nil, fmt.Errorf("failed to load env vars: %w", err)
	}

	// 4. Flags, only the ones explicitly set: --database-host -> database.host
	if flags != nil {
		if err := k.Load(posflag.ProviderWithFlag(flags, ".", k, func(f *pflag.Flag) (string, interface{}) {
			if !f.Changed {
				return "", nil
			}
			return flagKey(f.Name), posflag.FlagVal(flags, f)
		}), nil); err != nil {
			return nil, fmt.Errorf("failed to load flags: %w", err)
		}
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	cfg.Database.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// envKey maps RAPID_SECTION_SOME_KEY to section.some_key
func envKey(s string) string {
	return strings.Replace(strings.ToLower(strings.TrimPrefix(s, EnvPrefix)), "_", ".", 1)
}

// flagKey maps section-some-key to section.some_key
func flagKey(name string) string {
	section, rest, found := strings.Cut(name, "-")
	if !found {
		return name
	}
	return section + "." + strings.ReplaceAll(rest, "-", "_")
}
