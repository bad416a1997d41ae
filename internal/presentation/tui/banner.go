package tui

import (
	"fmt"
	"io"

	"github.com/muesli/termenv"
)

var bannerLines = []struct {
	text  string
	color string
}{
	{"  _   _                 ____             ", "#818cf8"},
	{" | \\ | | _____   ____ _|  _ \\ __ _ _   _ ", "#a78bfa"},
	{" |  \\| |/ _ \\ \\ / / _` | |_) / _` | | | |", "#c084fc"},
	{" | |\\  | (_) \\ V / (_| |  __/ (_| | |_| |", "#e879f9"},
	{" |_| \\_|\\___/ \\_/ \\__,_|_|   \\__,_|\\__, |", "#f472b6"},
	{"                                   |___/ ", "#fb7185"},
}

// PrintBanner writes the NovaPay banner in an indigo to rose gradient.
func PrintBanner(w io.Writer) {
	p := termenv.ColorProfile()
	fmt.Fprintln(w)
	for _, line := range bannerLines {
		fmt.Fprintln(w, termenv.String(line.text).Foreground(p.Color(line.color)))
	}
	fmt.Fprintln(w)
}
