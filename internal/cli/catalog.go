package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/joacominatel/askdb/internal/app"
	"github.com/joacominatel/askdb/internal/render"
)

func newDatabasesCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "databases",
		Aliases: []string{"dbs"},
		Short:   "List the databases of the server",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			rt := fromContext(ctx)

			svc, _, err := rt.openSession(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = svc.Disconnect() }()

			names, err := svc.ListDatabases(ctx)
			if err != nil {
				return fmt.Errorf("list databases: %w", err)
			}
			return render.List(cmd.OutOrStdout(), names)
		},
	}
}

func newSchemaCommand() *cobra.Command {
	var text bool

	cmd := &cobra.Command{
		Use:   "schema <database>",
		Short: "Show the tables and columns of a database",
		Long: `Show the tables and columns of a database.

With --text the description is printed exactly as it is sent to the
language model.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			rt := fromContext(ctx)

			svc, _, err := rt.openSession(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = svc.Disconnect() }()

			desc, err := svc.SelectDatabase(ctx, args[0])
			if err != nil && !errors.Is(err, app.ErrEmptySchema) {
				return err
			}
			if text && desc != nil {
				_, err := fmt.Fprintln(cmd.OutOrStdout(), desc.String())
				return err
			}
			return render.Schema(cmd.OutOrStdout(), desc)
		},
	}
	cmd.Flags().BoolVar(&text, "text", false, "print the schema text given to the model")
	return cmd
}
