package output

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/spiffcs/eipboard/internal/format"
	"github.com/spiffcs/eipboard/internal/worklist"
	"golang.org/x/term"
)

// Column widths
const (
	colSince = 10
	colAge   = 5
	colPR    = 7
	colTitle = 60
)

// TableFormatter formats output as a terminal table
type TableFormatter struct {
	// Now returns the reference time for the age column.
	Now func() time.Time
	// Links forces OSC 8 hyperlinks on or off. Nil detects a terminal on stdout.
	Links *bool
}

func (f *TableFormatter) hyperlinks() bool {
	if f.Links != nil {
		return *f.Links
	}
	return term.IsTerminal(int(os.Stdout.Fd()))
}

// Format outputs the entries as a table
func (f *TableFormatter) Format(entries []worklist.Entry, w io.Writer) error {
	if len(entries) == 0 {
		_, err := fmt.Fprintln(w, "No pull requests are waiting on an editor.")
		return err
	}

	now := time.Now
	if f.Now != nil {
		now = f.Now
	}
	links := f.hyperlinks()
	bold := color.New(color.Bold)

	header := fmt.Sprintf("%-*s  %-*s  %-*s  %s", colSince, "Waiting", colAge, "Age", colPR, "PR", "Title")
	if _, err := fmt.Fprintln(w, bold.Sprint(header)); err != nil {
		return err
	}
	if _, err := fmt.Fprintln(w, strings.Repeat("-", colSince+colAge+colPR+colTitle+6)); err != nil {
		return err
	}

	for _, e := range entries {
		since := e.Since.UTC().Format(time.DateOnly)
		age := ageColor(e.Since, now()).Sprint(format.Waiting(e.Since, now()))

		pr := fmt.Sprintf("#%d", e.Number)
		if e.Number == 0 {
			pr = "-"
		}
		// pad before linking; OSC 8 sequences have no width
		pad := strings.Repeat(" ", max(0, colPR-format.DisplayWidth(pr)))
		if links {
			pr = format.Hyperlink(pr, e.Link)
		}

		title := e.Title
		if title == "" {
			title = e.Link
		}
		title = format.Truncate(title, colTitle)

		_, err := fmt.Fprintf(w, "%-*s  %s  %s  %s\n",
			colSince, since,
			format.PadRight(age, colAge),
			pr+pad,
			title,
		)
		if err != nil {
			return err
		}
	}

	_, err := fmt.Fprintf(w, "\n%d pull request(s) awaiting an editor\n", len(entries))
	return err
}

// ageColor highlights requests that have waited a long time.
func ageColor(since, now time.Time) *color.Color {
	switch d := now.Sub(since); {
	case d >= 30*24*time.Hour:
		return color.New(color.FgRed)
	case d >= 7*24*time.Hour:
		return color.New(color.FgYellow)
	default:
		return color.New(color.FgGreen)
	}
}
