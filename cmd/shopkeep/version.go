package main

import (
	"fmt"

	"github.com/aretw0/shopkeep"
	shophttp "github.com/aretw0/shopkeep/pkg/adapters/http"
	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of shopkeep",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "shopkeep version %s (api %s)\n", shopkeep.Version, shophttp.APIVersion())
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
