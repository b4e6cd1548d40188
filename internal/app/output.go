package app

import (
	"fmt"
	"io"
	"os"
	"strings"
	"unicode/utf8"

	"golang.org/x/term"
)

// WriteSplashScreen writes the startup banner to w, centered to the terminal
// width. When colored is true, uses ANSI color codes; otherwise plain text.
func WriteSplashScreen(w io.Writer, colored bool) {
	if w == nil {
		return
	}

	lines := []string{
		`                _            _    __      `,
		`  ___ ___  _ __| |_ _____  _| |_ / _|___  `,
		` / __/ _ \| '_ \ __/ _ \ \/ / __| |_/ __| `,
		`| (_| (_) | | | | ||  __/>  <| |_|  _\__ \`,
		` \___\___/|_| |_|\__\___/_/\_\\__|_| |___/`,
		``,
		`a filesystem view over your conversation`,
	}

	maxWidth := 0
	for _, l := range lines {
		if n := runeLen(l); n > maxWidth {
			maxWidth = n
		}
	}

	// Determine terminal width (fallback to 80)
	termWidth := 80
	if width, _, err := term.GetSize(int(os.Stdout.Fd())); err == nil && width > 0 {
		termWidth = width
	}

	indent := 0
	if termWidth > maxWidth {
		indent = (termWidth - maxWidth) / 2
	}

	prefix, suffix := "", ""
	if colored {
		prefix = "\x1b[90m"
		suffix = "\x1b[0m"
	}

	for _, l := range lines {
		fmt.Fprintf(w, "%s%s%s%s\n", strings.Repeat(" ", indent), prefix, l, suffix)
	}
	fmt.Fprintln(w)
}

// WriteResponseHeader writes a standardized response header to w.
// When colored is true, prints in bright cyan; otherwise plain text.
func WriteResponseHeader(w io.Writer, model string, colored bool) {
	if w == nil {
		return
	}
	if colored {
		fmt.Fprintf(w, "\x1b[36m%s (%s)\x1b[0m\n", "contextfs", model)
	} else {
		fmt.Fprintf(w, "%s (%s)\n", "contextfs", model)
	}
}

// runeLen returns the number of runes in s.
func runeLen(s string) int { return utf8.RuneCountInString(s) }
