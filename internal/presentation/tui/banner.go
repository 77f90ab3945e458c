package tui

import (
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/muesli/termenv"
)

// PrintBanner writes title between two rules, coloured when w is a terminal.
func PrintBanner(w io.Writer, title string) {
	if strings.TrimSpace(title) == "" {
		title = "No description provided for the command!"
	}
	out := termenv.NewOutput(w)
	rule := strings.Repeat("=", utf8.RuneCountInString(title)+4)

	// Indigo to rose, same palette as the prompt UI.
	top := out.String(rule).Foreground(out.Color("#818cf8"))
	text := out.String("  " + title).Bold().Foreground(out.Color("#c084fc"))
	bottom := out.String(rule).Foreground(out.Color("#fb7185"))

	fmt.Fprintln(w)
	fmt.Fprintln(w, top)
	fmt.Fprintln(w, text)
	fmt.Fprintln(w, bottom)
	fmt.Fprintln(w)
}
