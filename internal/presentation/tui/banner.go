package tui

import (
	"fmt"
	"io"

	"github.com/muesli/termenv"
)

var bannerLines = []string{
	`  ____  _                 _                   `,
	` / ___|| |__   ___  _ __ | | _____  ___ _ __  `,
	` \___ \| '_ \ / _ \| '_ \| |/ / _ \/ _ \ '_ \ `,
	`  ___) | | | | (_) | |_) |   <  __/  __/ |_) |`,
	` |____/|_| |_|\___/| .__/|_|\_\___|\___| .__/ `,
	`                   |_|                 |_|    `,
}

// Amber to green, one stop per line.
var bannerColors = []string{"#fbbf24", "#facc15", "#a3e635", "#4ade80", "#34d399", "#2dd4bf"}

// PrintBanner writes the shopkeep banner and version to w.
func PrintBanner(w io.Writer, version string) {
	out := termenv.NewOutput(w)
	p := out.ColorProfile()

	fmt.Fprintln(w)
	for i, line := range bannerLines {
		fmt.Fprintln(w, out.String(line).Foreground(p.Color(bannerColors[i])))
	}
	if version != "" {
		fmt.Fprintln(w, out.String("  v"+version).Faint())
	}
	fmt.Fprintln(w)
}
