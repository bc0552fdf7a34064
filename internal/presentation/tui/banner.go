package tui

import (
	"fmt"
	"io"

	"github.com/muesli/termenv"
)

// PrintBanner writes the rulebook ASCII banner and version to w.
func PrintBanner(w io.Writer, version string) {
	p := termenv.ColorProfile()
	lines := []struct {
		text, color string
	}{
		{"  ____        _      _                 _    ", "#34d399"},
		{" |  _ \\ _   _| | ___| |__   ___   ___ | | __", "#2dd4bf"},
		{" | |_) | | | | |/ _ \\ '_ \\ / _ \\ / _ \\| |/ /", "#22d3ee"},
		{" |  _ <| |_| | |  __/ |_) | (_) | (_) |   < ", "#38bdf8"},
		{" |_| \\_\\\\__,_|_|\\___|_.__/ \\___/ \\___/|_|\\_\\", "#60a5fa"},
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
