// Package cli provides the rapid command-line interface.
package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/SkylarKelty/Rapid/internal/config"
	"github.com/SkylarKelty/Rapid/internal/infrastructure/database"
	"github.com/SkylarKelty/Rapid/internal/infrastructure/persistence"
	"github.com/SkylarKelty/Rapid/internal/logging"
)

// Version is set at build time
var Version = "0.1.0"

type appKey struct{}

// app is the per-invocation state built before any subcommand runs
type app struct {
	cfg    *config.Config
	logger *slog.Logger
}

func fromContext(ctx context.Context) *app {
	a, _ := ctx.Value(appKey{}).(*app)
	return a
}

// openStore connects with the loaded configuration. The returned close
// function releases the connection.
func (a *app) openStore(ctx context.Context) (*persistence.Store, func(), error) {
	conn, err := database.Open(ctx, a.cfg.Database, database.WithLogger(a.logger))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	return persistence.NewStore(conn), func() {
		if err := conn.Close(); err != nil {
			a.logger.Warn("error closing database connection", "error", err)
		}
	}, nil
}

// NewRootCmd creates and returns the root command
func NewRootCmd() *cobra.Command {
	var cfgFile string

	rootCmd := &cobra.Command{
		Use:     "rapid",
		Short:   "Rapid - table-level data access over MySQL, PostgreSQL and SQLite",
		Version: Version,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if cmd.Name() == "help" || cmd.Name() == "version" {
				return nil
			}

			cfg, err := config.Load(cfgFile, cmd.Root().PersistentFlags())
			if err != nil {
				return err
			}

			a := &app{cfg: cfg, logger: logging.New(cfg.Log, cmd.ErrOrStderr())}
			cmd.SetContext(context.WithValue(cmd.Context(), appKey{}, a))
			return nil
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&cfgFile, "config", "", "config file (default: ./"+config.ConfigFileName+")")
	flags.String("database-engine", "", "Database engine (mysql|postgres|sqlite)")
	flags.String("database-host", "", "Database host")
	flags.Int("database-port", 0, "Database port")
	flags.String("database-name", "", "Database name, or file path for sqlite")
	flags.String("database-username", "", "Database user")
	flags.String("database-password", "", "Database password")
	flags.String("database-table-prefix", "", "Prefix prepended to every table name")
	flags.String("log-level", "", "Log level (debug|info|warn|error)")
	flags.String("log-format", "", "Log format (text|json)")

	_ = rootCmd.RegisterFlagCompletionFunc("database-engine", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return []string{"mysql", "postgres", "sqlite"}, cobra.ShellCompDirectiveNoFileComp
	})

	rootCmd.AddCommand(newServeCommand())
	rootCmd.AddCommand(newCountCommand())
	rootCmd.AddCommand(newWipeCommand())

	return rootCmd
}

// Execute runs the root command
func Execute() error {
	rootCmd := NewRootCmd()
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return err
	}
	return nil
}
