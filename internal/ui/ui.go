// Package ui writes user-facing status lines to stderr. Machine-readable
// output (reports, ignore files) goes to stdout from the commands themselves.
package ui

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mattn/go-isatty"
)

var (
	writer io.Writer = os.Stderr
	color            = detectColor(os.Stderr)
)

// SetWriter overrides the output writer. nil restores os.Stderr.
func SetWriter(w io.Writer) {
	if w == nil {
		w = os.Stderr
	}
	writer = w
}

func detectColor(f *os.File) bool {
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// SetColorEnabled overrides terminal detection.
func SetColorEnabled(enabled bool) {
	color = enabled
}

const (
	green  = "32"
	red    = "31"
	yellow = "33"
	cyan   = "36"
	dim    = "2"
)

func paint(code, s string) string {
	if !color {
		return s
	}
	return "\033[" + code + "m" + s + "\033[0m"
}

// Status tags.
const (
	OKTag   = "✓"
	FailTag = "✗"
	WarnTag = "⚠"
	InfoTag = "ℹ"
)

var tagColors = map[string]string{
	OKTag:   green,
	FailTag: red,
	WarnTag: yellow,
	InfoTag: cyan,
}

// Notice prints a line that may already start with a status tag, coloring
// the tag.
func Notice(line string) {
	for tag, code := range tagColors {
		if rest, ok := strings.CutPrefix(line, tag); ok {
			fmt.Fprintf(writer, "%s%s\n", paint(code, tag), rest)
			return
		}
	}
	fmt.Fprintln(writer, line)
}

// Success prints a ✓ line.
func Success(msg string) {
	fmt.Fprintf(writer, "%s %s\n", paint(green, OKTag), msg)
}

// Successf prints a formatted ✓ line.
func Successf(format string, args ...any) {
	Success(fmt.Sprintf(format, args...))
}

// Warn prints a user-facing warning.
func Warn(msg string) {
	fmt.Fprintf(writer, "%s %s\n", paint(yellow, WarnTag+" Warning:"), msg)
}

// Warnf prints a formatted user-facing warning.
func Warnf(format string, args ...any) {
	Warn(fmt.Sprintf(format, args...))
}

// Error prints a user-facing error.
func Error(msg string) {
	fmt.Fprintf(writer, "%s %s\n", paint(red, FailTag+" Error:"), msg)
}

// Errorf prints a formatted user-facing error.
func Errorf(format string, args ...any) {
	Error(fmt.Sprintf(format, args...))
}

// Info prints a message with no prefix.
func Info(msg string) {
	fmt.Fprintln(writer, msg)
}

// Infof prints a formatted message with no prefix.
func Infof(format string, args ...any) {
	fmt.Fprintf(writer, format+"\n", args...)
}

// Detail prints an indented, dimmed secondary line.
func Detail(msg string) {
	fmt.Fprintf(writer, "  %s\n", paint(dim, msg))
}
