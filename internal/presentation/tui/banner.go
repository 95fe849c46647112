package tui

import (
	"fmt"
	"io"

	"github.com/muesli/termenv"
)

// PrintBanner writes the textfill banner to w.
func PrintBanner(w io.Writer) {
	out := termenv.NewOutput(w)
	lines := []struct {
		text  string
		color string
	}{
		{" _            _    __ _ _ _ ", "#38bdf8"},
		{"| |_ _____  _| |_ / _(_) | |", "#60a5fa"},
		{"| __/ _ \\ \\/ / __| |_| | | |", "#818cf8"},
		{"| ||  __/>  <| |_|  _| | | |", "#a78bfa"},
		{" \\__\\___/_/\\_\\\\__|_| |_|_|_|", "#c084fc"},
	}

	fmt.Fprintln(w)
	for _, l := range lines {
		fmt.Fprintln(w, out.String(l.text).Foreground(out.Color(l.color)))
	}
	fmt.Fprintln(w)
}
