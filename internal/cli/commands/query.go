package commands

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/provanalytics/provsync/internal/mssql"
	"github.com/spf13/cobra"
)

// QueryOptions holds options for the query command.
type QueryOptions struct {
	Format string
	Input  string
}

// NewQueryCommand creates the query command.
func NewQueryCommand() *cobra.Command {
	opts := &QueryOptions{}

	cmd := &cobra.Command{
		Use:   "query [SQL]",
		Short: "Run SQL against the configured database",
		Long: `Execute SQL against the configured SQL Server database.

SELECT statements render their result set; other statements report the
number of affected rows. Supports multiple output formats for scripting
and integration.

When invoked without arguments, enters interactive REPL mode.`,
		Example: `  # Execute SQL directly
  provsync query "SELECT TOP 10 * FROM dbo.provider_supervisor"

  # Output as JSON
  provsync query "SELECT * FROM dbo.oon_monthly" --format json

  # Read SQL from a file
  provsync query -i monthly_checks.sql

  # Interactive mode
  provsync query`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runQuery(cmd, args, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.Format, "format", "f", "", "Output format: table, json, csv, md")
	cmd.Flags().StringVarP(&opts.Input, "input", "i", "", "Read SQL from file")

	return cmd
}

func runQuery(cmd *cobra.Command, args []string, opts *QueryOptions) error {
	client, err := connectSQL(cmd)
	if err != nil {
		return err
	}
	defer func() { _ = client.Close() }()

	// Determine SQL source
	var sqlQuery string

	switch {
	case len(args) > 0:
		sqlQuery = strings.Join(args, " ")
	case opts.Input != "":
		content, err := os.ReadFile(opts.Input)
		if err != nil {
			return fmt.Errorf("failed to read file: %w", err)
		}
		sqlQuery = string(content)
	case !isTerminal(os.Stdin):
		// Read from stdin (piped input)
		content, err := io.ReadAll(os.Stdin)
		if err != nil {
			return fmt.Errorf("failed to read stdin: %w", err)
		}
		sqlQuery = string(content)
	default:
		// No input, TTY detected - enter REPL mode
		return runQueryREPL(cmd, client, opts)
	}

	return executeAndRender(cmd, client, sqlQuery, resolveFormat(cmd, opts.Format))
}

// executeAndRender runs one statement, rendering a result set for reads
// and an affected-row count for writes.
func executeAndRender(cmd *cobra.Command, client *mssql.Client, sqlQuery, format string) error {
	if isReadStatement(sqlQuery) {
		tbl, err := client.Query(cmd.Context(), sqlQuery)
		if err != nil {
			return err
		}
		return renderResults(cmd.OutOrStdout(), tbl, format)
	}

	n, err := client.Exec(cmd.Context(), sqlQuery, nil)
	if err != nil {
		return err
	}
	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "(%d rows affected)\n", n)
	return nil
}

// isReadStatement reports whether the statement produces a result set.
func isReadStatement(sqlQuery string) bool {
	first := strings.ToUpper(firstWord(sqlQuery))
	return first == "SELECT" || first == "WITH" || first == "EXEC" || first == "EXECUTE"
}

func firstWord(s string) string {
	fields := strings.Fields(s)
	if len(fields) == 0 {
		return ""
	}
	return fields[0]
}

func isTerminal(f *os.File) bool {
	fi, err := f.Stat()
	if err != nil {
		return false
	}
	return (fi.Mode() & os.ModeCharDevice) != 0
}
