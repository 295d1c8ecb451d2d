package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/SkylarKelty/Rapid/pkg/query"
)

func newCountCommand() *cobra.Command {
	var where []string

	cmd := &cobra.Command{
		Use:   "count <table>",
		Short: "Count the rows of a table",
		Long: `Count the rows of a table, optionally filtered by column equality.

Example:
  rapid count users --where active=1 --where role=admin`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			params, err := parseWhere(where)
			if err != nil {
				return err
			}

			a := fromContext(cmd.Context())
			store, closeStore, err := a.openStore(cmd.Context())
			if err != nil {
				return err
			}
			defer closeStore()

			n, err := store.CountRecords(cmd.Context(), args[0], params)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), n)
			return nil
		},
	}
	cmd.Flags().StringArrayVar(&where, "where", nil, "column=value filter (repeatable)")
	return cmd
}

func parseWhere(pairs []string) (query.Params, error) {
	params := query.Params{}
	for _, pair := range pairs {
		col, val, ok := strings.Cut(pair, "=")
		if !ok || col == "" {
			return nil, fmt.Errorf("invalid --where %q: expected column=value", pair)
		}
		params[col] = val
	}
	return params, nil
}
