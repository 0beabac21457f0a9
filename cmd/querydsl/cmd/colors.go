package cmd

import (
	"os"
	"sync"
)

// ANSI color codes
const (
	Reset = "\033[0m"
	Gray  = "\033[90m"
	Cyan  = "\033[36m"
	Red   = "\033[31m"
	Green = "\033[32m"
)

var (
	colorOnce    sync.Once
	colorEnabled bool
)

// supportsColor honors NO_COLOR and TERM=dumb and otherwise requires stdout
// to be a terminal
func supportsColor() bool {
	colorOnce.Do(func() {
		if os.Getenv("NO_COLOR") != "" || os.Getenv("TERM") == "dumb" {
			return
		}
		info, err := os.Stdout.Stat()
		if err != nil {
			return
		}
		colorEnabled = info.Mode()&os.ModeCharDevice != 0
	})
	return colorEnabled
}

func colorize(color, text string) string {
	if !supportsColor() {
		return text
	}
	return color + text + Reset
}

// Info returns text colored in gray for informational messages
func Info(text string) string { return colorize(Gray, text) }

// Title returns text colored in cyan for section and migration names
func Title(text string) string { return colorize(Cyan, text) }

// Warning returns text colored in red for warnings and errors
func Warning(text string) string { return colorize(Red, text) }

// Success returns text colored in green for success messages
func Success(text string) string { return colorize(Green, text) }
