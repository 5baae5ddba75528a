// Package commands implements the provsync subcommands.
package commands

import (
	"log/slog"
	"os"

	"github.com/provanalytics/provsync/internal/config"
	"github.com/provanalytics/provsync/internal/mssql"
	"github.com/provanalytics/provsync/internal/sharepoint"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

// fromCommand pulls the loaded config and logger out of the command context.
func fromCommand(cmd *cobra.Command) (*config.Config, *slog.Logger) {
	return config.FromContext(cmd.Context()), config.GetLogger(cmd.Context())
}

// connectSQL resolves a database connection using the configured
// fallback order and returns a ready client.
func connectSQL(cmd *cobra.Command) (*mssql.Client, error) {
	cfg, logger := fromCommand(cmd)
	return mssql.Connect(cmd.Context(), cfg.Database, logger)
}

// connectSharePoint authenticates against the configured site.
func connectSharePoint(cmd *cobra.Command) (*sharepoint.Client, error) {
	cfg, logger := fromCommand(cmd)
	return sharepoint.Connect(cmd.Context(), cfg.SharePoint, logger)
}

// resolveFormat picks the concrete render format. Flag beats config, and
// auto renders a table on a terminal and CSV when piped.
func resolveFormat(cmd *cobra.Command, flagFormat string) string {
	format := flagFormat
	if format == "" {
		cfg, _ := fromCommand(cmd)
		format = cfg.Output
	}
	if format == "" || format == "auto" {
		if term.IsTerminal(int(os.Stdout.Fd())) {
			return "table"
		}
		return "csv"
	}
	return format
}
