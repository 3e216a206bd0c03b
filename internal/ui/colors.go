// Package ui styles terminal output for the shiptrack commands.
package ui

// ANSI color and style constants for CLI output
const (
	ColorReset = "\033[0m"
	ColorBold  = "\033[1m"
	ColorDim   = "\033[2m"

	ColorCyan   = "\033[36m"
	ColorGreen  = "\033[32m"
	ColorYellow = "\033[33m"
	ColorWhite  = "\033[97m"
	ColorRed    = "\033[31m"
)

func style(codes, s string) string {
	return codes + s + ColorReset
}

func Bold(s string) string { return style(ColorBold, s) }

func Dim(s string) string { return style(ColorDim, s) }

// Success marks a ship that reached done, and saved files
func Success(s string) string { return style(ColorGreen, s) }

// Info is for counts and hints below a listing
func Info(s string) string { return style(ColorDim+ColorYellow, s) }

// Warn marks non-fatal ship warnings
func Warn(s string) string { return style(ColorYellow, s) }

// Error marks failed ships and fatal errors
func Error(s string) string { return style(ColorRed, s) }
