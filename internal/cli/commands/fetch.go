package commands

import (
	"fmt"
	"os"
	"path"

	"github.com/spf13/cobra"
)

// FetchOptions holds options for the fetch command.
type FetchOptions struct {
	Output string
}

// NewFetchCommand creates the fetch command.
func NewFetchCommand() *cobra.Command {
	opts := &FetchOptions{}
	cmd := &cobra.Command{
		Use:   "fetch <server-relative-path>",
		Short: "Download a file from SharePoint",
		Long: `Download a file from the configured SharePoint site by its
server-relative path.`,
		Example: `  provsync fetch "/sites/analytics/Shared Documents/roster.csv"
  provsync fetch "/sites/analytics/Shared Documents/roster.csv" -O /tmp/roster.csv`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runFetch(cmd, args[0], opts)
		},
	}

	cmd.Flags().StringVarP(&opts.Output, "output-file", "O", "", "Local destination (default: file name in current directory)")

	return cmd
}

func runFetch(cmd *cobra.Command, serverRelPath string, opts *FetchOptions) error {
	client, err := connectSharePoint(cmd)
	if err != nil {
		return err
	}

	data, err := client.Download(cmd.Context(), serverRelPath)
	if err != nil {
		return err
	}

	dest := opts.Output
	if dest == "" {
		dest = path.Base(serverRelPath)
	}
	if err := os.WriteFile(dest, data, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", dest, err)
	}

	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Fetched %s (%d bytes)\n", dest, len(data))
	return nil
}
