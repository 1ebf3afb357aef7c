package ui

import (
	"os"
	"sync"

	"github.com/charmbracelet/x/term"
)

var (
	colorOnce    sync.Once
	colorEnabled bool
	colorForced  *bool
)

// ColorEnabled reports whether styled output should be produced. Colour is
// off when stdout is not a terminal or NO_COLOR is set.
func ColorEnabled() bool {
	if colorForced != nil {
		return *colorForced
	}
	colorOnce.Do(func() {
		_, noColor := os.LookupEnv("NO_COLOR")
		colorEnabled = !noColor && term.IsTerminal(os.Stdout.Fd())
	})
	return colorEnabled
}

// SetColor overrides terminal detection.
func SetColor(enabled bool) {
	colorForced = &enabled
}

// Width returns the terminal width, or 120 when it cannot be determined.
func Width() int {
	for _, f := range []*os.File{os.Stdout, os.Stderr} {
		if w, _, err := term.GetSize(f.Fd()); err == nil && w > 0 {
			return w
		}
	}
	return 120
}

// Truncate shortens s to fit max display columns.
func Truncate(s string, max int) string {
	r := []rune(s)
	if max <= 0 || len(r) <= max {
		return s
	}
	if max <= 3 {
		return string(r[:max])
	}
	return string(r[:max-3]) + "..."
}
