package commands

import (
	"github.com/provanalytics/provsync/internal/etl"
	"github.com/spf13/cobra"
)

// NewSyncCommand creates the sync command.
func NewSyncCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Mirror a SharePoint CSV into a SQL Server table",
		Long: `Download the configured CSV from SharePoint and mirror it into the
target table: existing rows are updated by key, new rows inserted, and
rows missing from the CSV deleted. When a backup table is configured it
is refreshed from the target first.

Configuration comes from the [sync] section of the config file.`,
		Example: `  provsync sync
  provsync sync --table dbo.provider_supervisor --key-column "US Domain ID"`,
		RunE: runSync,
	}

	cmd.Flags().String("file-path", "", "Server-relative path of the source CSV")
	cmd.Flags().String("table", "", "Target table")
	cmd.Flags().String("backup-table", "", "Backup table refreshed before the sync")
	cmd.Flags().String("key-column", "", "Column identifying each row")
	cmd.Flags().String("columns", "", "Comma-separated columns to sync")

	return cmd
}

func runSync(cmd *cobra.Command, _ []string) error {
	cfg, logger := fromCommand(cmd)

	jobCfg := cfg.Sync
	if v, _ := cmd.Flags().GetString("file-path"); v != "" {
		jobCfg.FilePath = v
	}
	if v, _ := cmd.Flags().GetString("table"); v != "" {
		jobCfg.Table = v
	}
	if v, _ := cmd.Flags().GetString("backup-table"); v != "" {
		jobCfg.BackupTable = v
	}
	if v, _ := cmd.Flags().GetString("key-column"); v != "" {
		jobCfg.KeyColumn = v
	}
	if v, _ := cmd.Flags().GetString("columns"); v != "" {
		jobCfg.Columns = v
	}
	if err := jobCfg.Validate(); err != nil {
		return err
	}

	sql, err := connectSQL(cmd)
	if err != nil {
		return err
	}
	defer func() { _ = sql.Close() }()

	files, err := connectSharePoint(cmd)
	if err != nil {
		return err
	}

	return etl.NewSyncJob(jobCfg, sql, files, logger).Run(cmd.Context())
}
