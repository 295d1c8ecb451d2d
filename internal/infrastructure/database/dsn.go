package database

import (
	"fmt"
	"net"
	"net/url"
	"strconv"

	"github.com/go-sql-driver/mysql"

	"github.com/SkylarKelty/Rapid/internal/config"
	"github.com/SkylarKelty/Rapid/pkg/query"
)

// DSN renders the driver data source name for cfg
func DSN(cfg config.DatabaseConfig, dialect query.Dialect) (string, error) {
	switch dialect.Name {
	case query.MySQL.Name:
		mc := mysql.NewConfig()
		mc.User = cfg.Username
		mc.Passwd = cfg.Password
		mc.Net = "tcp"
		mc.Addr = net.JoinHostPort(cfg.Host, strconv.Itoa(cfg.Port))
		mc.DBName = cfg.Name
		// DATETIME columns come back as "YYYY-MM-DD HH:MM:SS" strings,
		// which is what Timestamp fields store.
		mc.ParseTime = false
		// Report matched rather than changed rows, so an UPDATE that writes
		// identical values still counts the row it found.
		mc.ClientFoundRows = true
		mc.Params = map[string]string{"charset": "utf8mb4"}
		return mc.FormatDSN(), nil

	case query.SQLite.Name:
		return cfg.Name, nil

	case query.Postgres.Name:
		u := url.URL{
			Scheme: "postgres",
			User:   url.UserPassword(cfg.Username, cfg.Password),
			Host:   net.JoinHostPort(cfg.Host, strconv.Itoa(cfg.Port)),
			Path:   "/" + cfg.Name,
		}
		return u.String(), nil

	default:
		return "", fmt.Errorf("no DSN format for dialect %q", dialect.Name)
	}
}
