// Package output renders the worklist.
package output

import (
	"fmt"
	"io"
	"time"

	"github.com/spiffcs/eipboard/internal/worklist"
)

// Format represents the output format
type Format string

const (
	FormatHTML     Format = "html"
	FormatMarkdown Format = "markdown"
	FormatJSON     Format = "json"
	FormatTable    Format = "table"
)

// Formats lists the supported formats.
var Formats = []Format{FormatHTML, FormatMarkdown, FormatJSON, FormatTable}

// Formatter writes worklist entries, already ordered oldest wait first.
type Formatter interface {
	Format(entries []worklist.Entry, w io.Writer) error
}

// ParseFormat validates a format name. An empty name selects html.
func ParseFormat(name string) (Format, error) {
	if name == "" {
		return FormatHTML, nil
	}
	for _, f := range Formats {
		if string(f) == name {
			return f, nil
		}
	}
	return "", fmt.Errorf("unknown output format %q (want one of %v)", name, Formats)
}

// NewFormatter creates a formatter for the specified format
func NewFormatter(format Format) Formatter {
	switch format {
	case FormatMarkdown:
		return &MarkdownFormatter{}
	case FormatJSON:
		return &JSONFormatter{Pretty: true}
	case FormatTable:
		return &TableFormatter{Now: time.Now}
	default:
		return &HTMLFormatter{}
	}
}

// page is the data handed to the page templates.
type page struct {
	Entries []worklist.Entry
}

func rfc3339(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}
