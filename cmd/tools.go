package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/teemow/calendar-mcp/internal/provider"
)

func newToolsCmd() *cobra.Command {
	var providerName string

	cmd := &cobra.Command{
		Use:   "tools",
		Short: "Print a provider's descriptor as JSON",
		Long: `Print the static descriptor of a tool provider: server name, version,
instructions and the advertised tools with their input schemas. This is the
same information a host receives from initialize and tools/list.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := provider.Describe(providerName, version)
			if err != nil {
				return err
			}

			data, err := json.MarshalIndent(d, "", "  ")
			if err != nil {
				return fmt.Errorf("failed to encode descriptor: %w", err)
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), string(data))
			return err
		},
	}

	cmd.Flags().StringVar(&providerName, "provider", provider.Calendar, "Provider to describe")

	return cmd
}
