package commands

import (
	"github.com/provanalytics/provsync/internal/etl"
	"github.com/spf13/cobra"
)

// NewImportCommand creates the import command.
func NewImportCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import",
		Short: "Bulk-load the newest CSV from a drop folder",
		Long: `Find the newest file matching the configured pattern in the local
drop folder and bulk-load it into the target table in batches.

Configuration comes from the [import] section of the config file.`,
		Example: `  provsync import
  provsync import --folder /data/drops --pattern "oon_*.csv"`,
		RunE: runImport,
	}

	cmd.Flags().String("folder", "", "Local drop folder")
	cmd.Flags().String("pattern", "", "Glob pattern for drop files")
	cmd.Flags().String("table", "", "Target table")
	cmd.Flags().Int("batch-size", 0, "Rows per insert transaction")
	cmd.Flags().String("encoding", "", "Source file encoding (utf-8 or windows-1252)")

	return cmd
}

func runImport(cmd *cobra.Command, _ []string) error {
	cfg, logger := fromCommand(cmd)

	jobCfg := cfg.Import
	if v, _ := cmd.Flags().GetString("folder"); v != "" {
		jobCfg.Folder = v
	}
	if v, _ := cmd.Flags().GetString("pattern"); v != "" {
		jobCfg.Pattern = v
	}
	if v, _ := cmd.Flags().GetString("table"); v != "" {
		jobCfg.Table = v
	}
	if v, _ := cmd.Flags().GetInt("batch-size"); v > 0 {
		jobCfg.BatchSize = v
	}
	if v, _ := cmd.Flags().GetString("encoding"); v != "" {
		jobCfg.Encoding = v
	}
	if err := jobCfg.Validate(); err != nil {
		return err
	}

	sql, err := connectSQL(cmd)
	if err != nil {
		return err
	}
	defer func() { _ = sql.Close() }()

	return etl.NewImportJob(jobCfg, sql, logger).Run(cmd.Context())
}
