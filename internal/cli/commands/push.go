package commands

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
)

// PushOptions holds options for the push command.
type PushOptions struct {
	Name string
}

// NewPushCommand creates the push command.
func NewPushCommand() *cobra.Command {
	opts := &PushOptions{}
	cmd := &cobra.Command{
		Use:   "push <local-file> <folder>",
		Short: "Upload a file to a SharePoint folder",
		Long: `Upload a local file into a document library folder on the configured
SharePoint site, overwriting any existing file of the same name.`,
		Example: `  provsync push report.xlsx "/sites/analytics/Reports"
  provsync push data.csv "/sites/analytics/Drops" --name renamed.csv`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPush(cmd, args[0], args[1], opts)
		},
	}

	cmd.Flags().StringVar(&opts.Name, "name", "", "Name to upload as (default: local file name)")

	return cmd
}

func runPush(cmd *cobra.Command, localPath, folder string, opts *PushOptions) error {
	data, err := os.ReadFile(localPath)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", localPath, err)
	}

	name := opts.Name
	if name == "" {
		name = filepath.Base(localPath)
	}

	client, err := connectSharePoint(cmd)
	if err != nil {
		return err
	}
	if err := client.Upload(cmd.Context(), folder, name, data); err != nil {
		return err
	}

	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Pushed %s to %s (%d bytes)\n", name, folder, len(data))
	return nil
}
