package ball

import (
	"time"

	"github.com/spiffcs/eipboard/internal/model"
)

// State is the outcome of evaluating a Timeline. The zero value means no
// editor action is needed.
type State struct {
	AwaitingEditor bool
	Since          time.Time
}

// NoActionNeeded is the state of a pull request currently waiting on its authors.
var NoActionNeeded = State{}

// AwaitingEditorSince returns the state of a pull request waiting on an
// editor since the given time.
func AwaitingEditorSince(since time.Time) State {
	return State{AwaitingEditor: true, Since: since}
}

// String returns a short description of the state
func (s State) String() string {
	if !s.AwaitingEditor {
		return "no action needed"
	}
	return "awaiting editor since " + s.Since.UTC().Format(time.RFC3339)
}

// Determine decides who holds the ball.
//
// Without any editor activity the pull request has waited on an editor since
// its first event. Otherwise the ball returns to the editors at the first
// author event after the last editor event; if there is none, the authors
// hold the ball.
func Determine(t Timeline) State {
	lastEditor, ok := t.LastBy(model.ActorEditor)
	if !ok {
		first, ok := t.First()
		if !ok {
			return NoActionNeeded
		}
		return AwaitingEditorSince(first.When)
	}

	if reply, ok := t.FirstByAfter(model.ActorAuthor, lastEditor.When); ok {
		return AwaitingEditorSince(reply.When)
	}
	return NoActionNeeded
}
