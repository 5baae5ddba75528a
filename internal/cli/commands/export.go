package commands

import (
	"github.com/provanalytics/provsync/internal/etl"
	"github.com/spf13/cobra"
)

// NewExportCommand creates the export command.
func NewExportCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export provider rows matching a TIN list as an XLSX report",
		Long: `Read the TIN list from SharePoint, pull the matching rows from the
source table, and upload the result to the report folder as a dated
XLSX file.

Configuration comes from the [export] section of the config file.`,
		Example: `  provsync export
  provsync export --source-table dbo.provider_info`,
		RunE: runExport,
	}

	cmd.Flags().String("tins-path", "", "Server-relative path of the TIN list CSV")
	cmd.Flags().String("report-folder", "", "Server-relative folder for the report")
	cmd.Flags().String("source-table", "", "Table the report rows come from")
	cmd.Flags().String("tin-column", "", "TIN column name")

	return cmd
}

func runExport(cmd *cobra.Command, _ []string) error {
	cfg, logger := fromCommand(cmd)

	jobCfg := cfg.Export
	if v, _ := cmd.Flags().GetString("tins-path"); v != "" {
		jobCfg.TinsPath = v
	}
	if v, _ := cmd.Flags().GetString("report-folder"); v != "" {
		jobCfg.ReportFolder = v
	}
	if v, _ := cmd.Flags().GetString("source-table"); v != "" {
		jobCfg.SourceTable = v
	}
	if v, _ := cmd.Flags().GetString("tin-column"); v != "" {
		jobCfg.TinColumn = v
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

	return etl.NewExportJob(jobCfg, sql, files, logger).Run(cmd.Context())
}
