package main

import (
	"encoding/json"
	"fmt"

	"github.com/aretw0/shopkeep/internal/presentation/tui"
	"github.com/aretw0/shopkeep/pkg/render"
	"github.com/spf13/cobra"
)

var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "Print the configured catalog",
	Long:  `Loads the catalog from --catalog, --catalog-dir or the built-in table and prints it.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		asJSON, _ := cmd.Flags().GetBool("json")

		app, err := newApp(cmd)
		if err != nil {
			return err
		}
		defer app.Close()

		p := render.ProjectCatalog(app.Catalog)
		out := cmd.OutOrStdout()

		if asJSON {
			enc := json.NewEncoder(out)
			enc.SetIndent("", "  ")
			return enc.Encode(p.Inventory)
		}

		md := render.Markdown(p, app.Theme())
		if style, err := tui.NewRenderer(0); err == nil {
			if styled, err := style(md); err == nil {
				md = styled
			}
		}
		fmt.Fprint(out, md)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(catalogCmd)
	catalogCmd.Flags().Bool("json", false, "Print the catalog as JSON")
}
