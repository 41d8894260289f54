package ball

import (
	"slices"
	"time"

	"github.com/spiffcs/eipboard/internal/model"
)

// Timeline is the chronologically ordered activity of one pull request.
type Timeline []model.Event

// Build merges classified events into a Timeline.
//
// The timeline is seeded with an Author event at created. Events earlier than
// created are dropped (commits are often dated before the pull request was
// opened). The result is stable-sorted by time, so events with equal times
// keep the order in which they were supplied.
func Build(created time.Time, review *model.Event, comments, reviewComments, commits []model.Event) Timeline {
	size := 1 + len(comments) + len(reviewComments) + len(commits)
	if review != nil {
		size++
	}

	t := make(Timeline, 0, size)
	t = append(t, model.Event{Actor: model.ActorAuthor, When: created})
	if review != nil {
		t = append(t, *review)
	}
	t = append(t, comments...)
	t = append(t, reviewComments...)
	t = append(t, commits...)

	t = slices.DeleteFunc(t, func(e model.Event) bool {
		return e.When.Before(created)
	})

	slices.SortStableFunc(t, func(a, b model.Event) int {
		return a.When.Compare(b.When)
	})

	return t
}

// First returns the earliest event.
func (t Timeline) First() (model.Event, bool) {
	if len(t) == 0 {
		return model.Event{}, false
	}
	return t[0], true
}

// LastBy returns the last event attributed to actor.
func (t Timeline) LastBy(actor model.Actor) (model.Event, bool) {
	for i := len(t) - 1; i >= 0; i-- {
		if t[i].Actor == actor {
			return t[i], true
		}
	}
	return model.Event{}, false
}

// FirstByAfter returns the first event attributed to actor that happened
// strictly after when.
func (t Timeline) FirstByAfter(actor model.Actor, when time.Time) (model.Event, bool) {
	for _, e := range t {
		if e.Actor == actor && e.When.After(when) {
			return e, true
		}
	}
	return model.Event{}, false
}
