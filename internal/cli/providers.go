package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mugenyume/make-it-heavy/pkg/agent"
)

var providersCmd = &cobra.Command{
	Use:   "providers",
	Short: "List the supported model providers",
	Run: func(cmd *cobra.Command, args []string) {
		for _, name := range agent.AvailableProviders() {
			fmt.Fprintf(cmd.OutOrStdout(), "%-12s %s\n", name, agent.ProviderDisplayName(name))
		}
	},
}

func init() {
	rootCmd.AddCommand(providersCmd)
}
