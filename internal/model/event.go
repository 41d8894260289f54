package model

import "time"

// Actor is the role an activity is attributed to on a pull request timeline.
type Actor int

const (
	ActorAuthor Actor = iota
	ActorEditor
)

// String returns a human-readable actor name
func (a Actor) String() string {
	switch a {
	case ActorAuthor:
		return "author"
	case ActorEditor:
		return "editor"
	default:
		return "unknown"
	}
}

// Event is a single classified activity on a pull request timeline.
type Event struct {
	Actor Actor
	When  time.Time
}
