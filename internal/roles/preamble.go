package roles

import (
	"errors"
	"fmt"
	"strings"
)

// ErrMetadata marks a document whose preamble cannot be split or parsed.
var ErrMetadata = errors.New("invalid preamble")

const preambleDelimiter = "---"

// Field is a single "name: value" line of a preamble.
type Field struct {
	Name  string
	Value string
	Line  int
}

// Preamble is the parsed metadata block at the top of a proposal document.
type Preamble struct {
	fields []Field
}

// SplitPreamble separates the leading "---" delimited block from the body.
// The returned preamble excludes both delimiter lines.
func SplitPreamble(content string) (preamble, body string, err error) {
	content = strings.ReplaceAll(content, "\r\n", "\n")

	first, rest, ok := strings.Cut(content, "\n")
	if !ok || strings.TrimRight(first, " \t") != preambleDelimiter {
		return "", "", fmt.Errorf("%w: missing opening %q", ErrMetadata, preambleDelimiter)
	}

	if strings.HasPrefix(rest, preambleDelimiter+"\n") || rest == preambleDelimiter {
		return "", "", fmt.Errorf("%w: preamble is empty", ErrMetadata)
	}

	idx := strings.Index(rest, "\n"+preambleDelimiter)
	if idx < 0 {
		return "", "", fmt.Errorf("%w: missing closing %q", ErrMetadata, preambleDelimiter)
	}

	after := rest[idx+1+len(preambleDelimiter):]
	switch {
	case after == "":
	case strings.HasPrefix(after, "\n"):
		after = after[1:]
	default:
		return "", "", fmt.Errorf("%w: closing %q must be on its own line", ErrMetadata, preambleDelimiter)
	}

	return rest[:idx], after, nil
}

// ParsePreamble parses the lines of a preamble returned by SplitPreamble.
func ParsePreamble(text string) (*Preamble, error) {
	p := &Preamble{}
	seen := make(map[string]int)

	for i, line := range strings.Split(text, "\n") {
		lineNo := i + 2 // line 1 is the opening delimiter
		name, value, ok := strings.Cut(line, ":")
		if !ok {
			return nil, fmt.Errorf("%w: line %d: missing colon", ErrMetadata, lineNo)
		}
		name = strings.TrimSpace(name)
		if name == "" {
			return nil, fmt.Errorf("%w: line %d: missing field name", ErrMetadata, lineNo)
		}
		if strings.ContainsAny(name, " \t") {
			return nil, fmt.Errorf("%w: line %d: field name %q contains whitespace", ErrMetadata, lineNo, name)
		}
		if prev, dup := seen[name]; dup {
			return nil, fmt.Errorf("%w: line %d: field %q already defined on line %d", ErrMetadata, lineNo, name, prev)
		}
		seen[name] = lineNo
		p.fields = append(p.fields, Field{Name: name, Value: strings.TrimSpace(value), Line: lineNo})
	}

	return p, nil
}

// Get returns the value of the named field.
func (p *Preamble) Get(name string) (string, bool) {
	for _, f := range p.fields {
		if f.Name == name {
			return f.Value, true
		}
	}
	return "", false
}

// Fields returns the parsed fields in document order.
func (p *Preamble) Fields() []Field {
	return p.fields
}
