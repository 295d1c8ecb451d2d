// Package config loads the process configuration: the database connection
// tuple, logging and the HTTP listener.
package config

import (
	"fmt"
	"strings"
	"time"
)

// Default values
const (
	DefaultEngine          = "mysql"
	DefaultHost            = "127.0.0.1"
	DefaultMySQLPort       = 3306
	DefaultPostgresPort    = 5432
	DefaultDatabase        = "rapid"
	DefaultMaxOpenConns    = 10
	DefaultConnMaxLifetime = 5 * time.Minute
	DefaultLogLevel        = "info"
	DefaultLogFormat       = "text"
	DefaultServerAddr      = ":3001"
)

// DatabaseConfig is the connection tuple handed to the data layer
type DatabaseConfig struct {
	Engine      string `koanf:"engine"`
	Host        string `koanf:"host"`
	Port        int    `koanf:"port"`
	Name        string `koanf:"name"` // database name, or file path for sqlite
	Username    string `koanf:"username"`
	Password    string `koanf:"password"`
	TablePrefix string `koanf:"table_prefix"`

	MaxOpenConns    int           `koanf:"max_open_conns"`
	ConnMaxLifetime time.Duration `koanf:"conn_max_lifetime"`
}

// LogConfig selects the slog handler
type LogConfig struct {
	Level  string `koanf:"level"`  // debug, info, warn, error
	Format string `koanf:"format"` // text or json
}

// ServerConfig holds the HTTP listener settings
type ServerConfig struct {
	Addr string `koanf:"addr"`
}

// Config is the full process configuration
type Config struct {
	Database DatabaseConfig `koanf:"database"`
	Log      LogConfig      `koanf:"log"`
	Server   ServerConfig   `koanf:"server"`
}

// ApplyDefaults fills in anything left empty
func (c *DatabaseConfig) ApplyDefaults() {
	if c.Engine == "" {
		c.Engine = DefaultEngine
	}
	c.Engine = strings.ToLower(c.Engine)
	if c.Port == 0 {
		switch c.Engine {
		case "postgres", "postgresql", "pgsql":
			c.Port = DefaultPostgresPort
		case "mysql", "mariadb", "tidb":
			c.Port = DefaultMySQLPort
		}
	}
	if c.Host == "" && !c.IsSQLite() {
		c.Host = DefaultHost
	}
	if c.Name == "" {
		c.Name = DefaultDatabase
	}
	if c.MaxOpenConns == 0 {
		c.MaxOpenConns = DefaultMaxOpenConns
	}
	if c.ConnMaxLifetime == 0 {
		c.ConnMaxLifetime = DefaultConnMaxLifetime
	}
}

// IsSQLite reports whether the engine is file based
func (c *DatabaseConfig) IsSQLite() bool {
	return c.Engine == "sqlite" || c.Engine == "sqlite3"
}

// Validate checks the tuple is usable
func (c *DatabaseConfig) Validate() error {
	switch c.Engine {
	case "mysql", "mariadb", "tidb", "postgres", "postgresql", "pgsql":
		if c.Host == "" {
			return fmt.Errorf("database.host is required for engine %s", c.Engine)
		}
		if c.Username == "" {
			return fmt.Errorf("database.username is required for engine %s", c.Engine)
		}
	case "sqlite", "sqlite3":
	default:
		return fmt.Errorf("unsupported database engine %q", c.Engine)
	}

	if c.Name == "" {
		return fmt.Errorf("database.name is required")
	}
	if c.MaxOpenConns < 0 {
		return fmt.Errorf("database.max_open_conns must not be negative")
	}
	return nil
}

// Validate checks the whole configuration
func (c *Config) Validate() error {
	if err := c.Database.Validate(); err != nil {
		return err
	}
	switch strings.ToLower(c.Log.Format) {
	case "", "text", "json":
	default:
		return fmt.Errorf("log.format must be text or json, got %q", c.Log.Format)
	}
	return nil
}
