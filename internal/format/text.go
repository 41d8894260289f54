// Package format provides shared text formatting utilities for terminal output.
package format

import (
	"fmt"
	"regexp"

	"github.com/mattn/go-runewidth"
)

// ansiRegex matches ANSI color sequences
var ansiRegex = regexp.MustCompile(`\x1b\[[0-9;]*m`)

const ellipsis = "..."

// StripAnsi removes ANSI color sequences from a string.
func StripAnsi(s string) string {
	return ansiRegex.ReplaceAllString(s, "")
}

// DisplayWidth returns the visible width of s in terminal columns.
func DisplayWidth(s string) int {
	return runewidth.StringWidth(StripAnsi(s))
}

// Truncate shortens plain text to fit within maxWidth columns, ending it
// with "..." when anything was cut.
func Truncate(s string, maxWidth int) string {
	return runewidth.Truncate(s, maxWidth, ellipsis)
}

// PadRight pads s with spaces to targetWidth visible columns. Color
// sequences in s do not count toward its width.
func PadRight(s string, targetWidth int) string {
	w := DisplayWidth(s)
	if w >= targetWidth {
		return s
	}
	return s + runewidth.FillRight("", targetWidth-w)
}

// Hyperlink wraps text in an OSC 8 terminal hyperlink.
func Hyperlink(text, url string) string {
	if url == "" {
		return text
	}
	return fmt.Sprintf("\033]8;;%s\033\\%s\033]8;;\033\\", url, text)
}
