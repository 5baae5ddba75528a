package commands

import (
	"fmt"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/provanalytics/provsync/internal/mssql"
	"github.com/provanalytics/provsync/internal/sharepoint"
	"github.com/spf13/cobra"
)

// DoctorOptions holds options for the doctor command.
type DoctorOptions struct {
	CheckSharePoint bool
}

// NewDoctorCommand creates the doctor command.
func NewDoctorCommand() *cobra.Command {
	opts := &DoctorOptions{}
	cmd := &cobra.Command{
		Use:   "doctor",
		Short: "Check connectivity to SQL Server and SharePoint",
		Long: `Probe every configured database authentication strategy in fallback
order and report which ones connect. With --sharepoint, also attempt a
SharePoint login.`,
		Example: `  # Check database connectivity
  provsync doctor

  # Also verify SharePoint credentials
  provsync doctor --sharepoint`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runDoctor(cmd, opts)
		},
	}

	cmd.Flags().BoolVar(&opts.CheckSharePoint, "sharepoint", false, "Also check SharePoint authentication")

	return cmd
}

func runDoctor(cmd *cobra.Command, opts *DoctorOptions) error {
	cfg, logger := fromCommand(cmd)

	t := table.NewWriter()
	t.SetOutputMirror(cmd.OutOrStdout())
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"Check", "Status", "Detail"})

	connector := mssql.NewConnector(cfg.Database, logger)
	healthy := 0
	for _, s := range connector.Strategies() {
		if err := connector.Probe(cmd.Context(), s); err != nil {
			t.AppendRow(table.Row{"database/" + string(s), "FAIL", err.Error()})
			continue
		}
		t.AppendRow(table.Row{"database/" + string(s), "OK", ""})
		healthy++
	}

	spOK := true
	if opts.CheckSharePoint {
		if _, err := sharepoint.Connect(cmd.Context(), cfg.SharePoint, logger); err != nil {
			t.AppendRow(table.Row{"sharepoint", "FAIL", err.Error()})
			spOK = false
		} else {
			t.AppendRow(table.Row{"sharepoint", "OK", cfg.SharePoint.SiteURL})
		}
	}

	t.Render()

	if healthy == 0 {
		return fmt.Errorf("no database strategy connected")
	}
	if !spOK {
		return fmt.Errorf("sharepoint authentication failed")
	}
	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%d of %d database strategies healthy\n",
		healthy, len(connector.Strategies()))
	return nil
}
