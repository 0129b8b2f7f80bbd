package tui

import (
	"fmt"
	"io"

	"github.com/muesli/termenv"
)

// PrintBanner writes the LayoutKit ASCII banner and version to w.
func PrintBanner(w io.Writer, version string) {
	p := termenv.ColorProfile()
	// Teal to blue, one colour per line
	lines := []struct {
		text  string
		color string
	}{
		{"  _                         _   _  ___ _   ", "#2dd4bf"},
		{" | |   __ _ _  _ ___ _  _| |_| |/ (_) |_ ", "#22d3ee"},
		{" | |__/ _` | || / _ \\ || |  _| ' <| |  _|", "#38bdf8"},
		{" |____\\__,_|\\_, \\___/\\_,_|\\__|_|\\_\\_|\\__|", "#60a5fa"},
		{"            |__/                           ", "#818cf8"},
	}

	fmt.Fprintln(w)
	for _, l := range lines {
		fmt.Fprintln(w, termenv.String(l.text).Foreground(p.Color(l.color)))
	}
	if version != "" {
		fmt.Fprintln(w, termenv.String("  v"+version).Faint())
	}
	fmt.Fprintln(w)
}
