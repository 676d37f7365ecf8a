package main

import (
	"os"

	"github.com/aretw0/shopkeep"
	"github.com/aretw0/shopkeep/internal/presentation/tui"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

// replCmd represents the repl command
var replCmd = &cobra.Command{
	Use:   "repl",
	Short: "Chat with shopkeep in the terminal",
	Long: `Starts an interactive session. Each line is one turn; "/cart" shows the
cart and "exit" or "quit" leaves. Without --intent-command the built-in
command grammar is used (try "add 2 banana").`,
	RunE: func(cmd *cobra.Command, args []string) error {
		sessionID, _ := cmd.Flags().GetString("session")
		headless, _ := cmd.Flags().GetBool("headless")
		plain, _ := cmd.Flags().GetBool("plain")

		app, err := newApp(cmd)
		if err != nil {
			return err
		}
		defer app.Close()

		interactive := term.IsTerminal(int(os.Stdin.Fd())) && term.IsTerminal(int(os.Stdout.Fd()))
		if !interactive {
			headless = true
		}

		r := shopkeep.NewREPL(sessionID)
		r.Input = cmd.InOrStdin()
		r.Output = cmd.OutOrStdout()
		r.Headless = headless
		r.Theme = app.Theme()

		if !headless {
			tui.PrintBanner(r.Output, shopkeep.Version)
		}
		if !plain && interactive {
			width, _, err := term.GetSize(int(os.Stdout.Fd()))
			if err != nil {
				width = 0
			}
			if render, err := tui.NewRenderer(width); err == nil {
				r.Renderer = render
			} else {
				app.Logger.Warn("Markdown renderer unavailable", "err", err)
			}
		}

		return r.Run(cmd.Context(), app.Turns)
	},
}

func init() {
	rootCmd.AddCommand(replCmd)

	replCmd.Flags().StringP("session", "s", "default", "Session ID")
	replCmd.Flags().Bool("headless", false, "Run in headless mode (no banner or prompt)")
	replCmd.Flags().Bool("plain", false, "Print raw markdown instead of styled output")

	// 'repl' is the default when no command is provided.
	rootCmd.RunE = replCmd.RunE
	rootCmd.Flags().AddFlagSet(replCmd.Flags())
}
