package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newWipeCommand() *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "wipe <table>...",
		Short: "Remove every row from one or more tables",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !yes {
				return fmt.Errorf("refusing to wipe %d table(s) without --yes", len(args))
			}

			a := fromContext(cmd.Context())
			store, closeStore, err := a.openStore(cmd.Context())
			if err != nil {
				return err
			}
			defer closeStore()

			for _, table := range args {
				if err := store.Truncate(cmd.Context(), table); err != nil {
					return fmt.Errorf("failed to wipe %s: %w", table, err)
				}
				resolved := store.Connection().Tables().Name(table)
				a.logger.Info("table wiped", "table", table, "resolved", resolved)
				fmt.Fprintf(cmd.OutOrStdout(), "wiped %s (%s)\n", table, resolved)
			}
			return nil
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "confirm the wipe")
	return cmd
}
