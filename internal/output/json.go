package output

import (
	"encoding/json"
	"io"

	"github.com/spiffcs/eipboard/internal/worklist"
)

// JSONFormatter formats output as JSON
type JSONFormatter struct {
	Pretty bool
}

// Format outputs the entries as a JSON array
func (f *JSONFormatter) Format(entries []worklist.Entry, w io.Writer) error {
	if entries == nil {
		entries = []worklist.Entry{}
	}
	encoder := json.NewEncoder(w)
	if f.Pretty {
		encoder.SetIndent("", "  ")
	}
	return encoder.Encode(entries)
}
