// Package worklist collects the pull requests awaiting an editor and the
// pull requests that could not be evaluated.
package worklist

import (
	"errors"
	"fmt"
	"slices"
	"time"
)

// ErrUnresolved is returned by Err when at least one pull request failed.
var ErrUnresolved = errors.New("one or more pull requests failed to resolve")

// ErrMissingLink marks a pull request that needs an editor but has no link
// to render.
var ErrMissingLink = errors.New("pull request has no link")

// Entry is a pull request awaiting an editor.
type Entry struct {
	Since  time.Time `json:"since"`
	Link   string    `json:"link"`
	Number int       `json:"number,omitempty"`
	Title  string    `json:"title,omitempty"`
}

// Failure records a pull request that could not be evaluated.
type Failure struct {
	Identifier string
	Cause      error
}

// Error implements error
func (f Failure) Error() string {
	return fmt.Sprintf("%s: %v", f.Identifier, f.Cause)
}

// Unwrap returns the underlying cause
func (f Failure) Unwrap() error {
	return f.Cause
}

// Worklist accumulates entries and failures for one run. It is not safe for
// concurrent use.
type Worklist struct {
	entries  []Entry
	failures []Failure
}

// New creates an empty Worklist.
func New() *Worklist {
	return &Worklist{}
}

// Add records an entry. An entry without a link is recorded as a failure.
func (w *Worklist) Add(e Entry) {
	if e.Link == "" {
		id := fmt.Sprintf("#%d", e.Number)
		w.Fail(id, ErrMissingLink)
		return
	}
	w.entries = append(w.entries, e)
}

// Fail records a pull request that could not be evaluated.
func (w *Worklist) Fail(identifier string, cause error) {
	w.failures = append(w.failures, Failure{Identifier: identifier, Cause: cause})
}

// Entries returns the entries ordered by how long they have waited, oldest
// first. Entries with equal times keep the order they were added in.
func (w *Worklist) Entries() []Entry {
	out := slices.Clone(w.entries)
	slices.SortStableFunc(out, func(a, b Entry) int {
		return a.Since.Compare(b.Since)
	})
	return out
}

// Failures returns the recorded failures in the order they occurred.
func (w *Worklist) Failures() []Failure {
	return slices.Clone(w.failures)
}

// Len returns the number of entries.
func (w *Worklist) Len() int {
	return len(w.entries)
}

// Err returns nil when every pull request was evaluated. Otherwise it
// returns an error wrapping ErrUnresolved and every failure.
func (w *Worklist) Err() error {
	if len(w.failures) == 0 {
		return nil
	}
	errs := make([]error, 0, len(w.failures)+1)
	errs = append(errs, fmt.Errorf("%w (%d)", ErrUnresolved, len(w.failures)))
	for _, f := range w.failures {
		errs = append(errs, f)
	}
	return errors.Join(errs...)
}
