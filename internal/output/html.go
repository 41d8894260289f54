package output

import (
	"embed"
	"html/template"
	"io"
	texttemplate "text/template"

	"github.com/spiffcs/eipboard/internal/worklist"
)

//go:embed templates
var templates embed.FS

var (
	htmlPage = template.Must(template.New("index.html").
			Funcs(template.FuncMap{"rfc3339": rfc3339}).
			ParseFS(templates, "templates/index.html"))

	markdownPage = texttemplate.Must(texttemplate.New("index.md").
			ParseFS(templates, "templates/index.md"))
)

// HTMLFormatter renders a standalone HTML page
type HTMLFormatter struct{}

// Format writes the HTML page
func (f *HTMLFormatter) Format(entries []worklist.Entry, w io.Writer) error {
	return htmlPage.Execute(w, page{Entries: entries})
}

// MarkdownFormatter renders a markdown list of links
type MarkdownFormatter struct{}

// Format writes the markdown list
func (f *MarkdownFormatter) Format(entries []worklist.Entry, w io.Writer) error {
	return markdownPage.Execute(w, page{Entries: entries})
}
