package cli

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/joacominatel/askdb/internal/render"
	"github.com/joacominatel/askdb/internal/voice"
)

func newExecCommand() *cobra.Command {
	var db string

	cmd := &cobra.Command{
		Use:   "exec <sql>",
		Short: "Run a SQL statement",
		Long: `Run a SQL statement on the selected database and print the result.

Execution errors are printed in place of the result.`,
		Example: `  askdb exec --db shop "SELECT count(*) FROM orders"
  askdb exec -o json "SELECT 1"`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			rt := fromContext(ctx)

			svc, conn, err := rt.openSession(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = svc.Disconnect() }()

			if _, err := selectDatabase(ctx, svc, conn, db); err != nil {
				return err
			}

			res := svc.Execute(ctx, strings.Join(args, " "))
			return render.Result(cmd.OutOrStdout(), res, rt.output)
		},
	}
	cmd.Flags().StringVar(&db, "db", "", "database to select first")
	return cmd
}

type askOptions struct {
	db     string
	dryRun bool
	listen bool
}

func newAskCommand() *cobra.Command {
	opts := &askOptions{}

	cmd := &cobra.Command{
		Use:   "ask <request...>",
		Short: "Generate SQL for a request and run it",
		Long: `Generate SQL for a natural-language request from the schema of the
selected database, then run it and print the result.

The generated SQL is printed before the result. With json or csv output it
goes to stderr so stdout stays machine-readable.`,
		Example: `  askdb ask --db shop how many orders were placed last week
  askdb ask --db shop --dry-run top 5 customers by revenue
  askdb ask --db shop --listen`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAsk(cmd, args, opts)
		},
	}
	cmd.Flags().StringVar(&opts.db, "db", "", "database to ask (default: the connection's database)")
	cmd.Flags().BoolVar(&opts.dryRun, "dry-run", false, "print the generated SQL without running it")
	cmd.Flags().BoolVar(&opts.listen, "listen", false, "record the request from the microphone")
	return cmd
}

func runAsk(cmd *cobra.Command, args []string, opts *askOptions) error {
	ctx := cmd.Context()
	rt := fromContext(ctx)

	request := strings.TrimSpace(strings.Join(args, " "))
	if opts.listen {
		cfg := rt.cfg.Voice
		cfg.Enabled = true
		listener, _ := voice.FromConfig(cfg, rt.cfg.SpeechKey(), rt.log)
		if listener == nil {
			return fmt.Errorf("%w: no OpenAI API key", voice.ErrDisabled)
		}
		_, _ = fmt.Fprintln(cmd.ErrOrStderr(), "Listening...")
		heard, err := listener.Listen(ctx)
		if err != nil {
			return err
		}
		_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "Heard: %s\n", heard)
		request = heard
	}
	if request == "" {
		return errors.New("empty request")
	}

	svc, conn, err := rt.openSession(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = svc.Disconnect() }()

	name, err := selectDatabase(ctx, svc, conn, opts.db)
	if err != nil {
		return err
	}
	if name == "" {
		if name = svc.DatabaseName(); name == "" {
			return errors.New("no database selected; pass --db")
		}
		if _, err := svc.SelectDatabase(ctx, name); err != nil {
			return err
		}
	}

	sqlOut := cmd.OutOrStdout()
	if rt.output == "json" || rt.output == "csv" {
		sqlOut = cmd.ErrOrStderr()
	}

	if opts.dryRun {
		sql, err := svc.Synthesize(ctx, request)
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(cmd.OutOrStdout(), sql)
		return err
	}

	turn, err := svc.Ask(ctx, request)
	if err != nil {
		return err
	}
	printSQL(sqlOut, turn.SQL)
	return render.Result(cmd.OutOrStdout(), turn.Result, rt.output)
}

func printSQL(w io.Writer, sql string) {
	_, _ = fmt.Fprintf(w, "%s\n\n", sql)
}
