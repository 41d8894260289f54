// Package ball decides who holds the review ball on a pull request: its
// editors or its authors.
//
// Raw activity is classified into Events, merged into a Timeline, and the
// Timeline is reduced to a State.
package ball

import (
	"github.com/spiffcs/eipboard/internal/model"
	"github.com/spiffcs/eipboard/internal/roles"
)

// actionableReview reports whether a review state asks something of the author.
// Approvals are not actionable.
func actionableReview(state model.ReviewState) bool {
	return state == model.ReviewChangesRequested || state == model.ReviewCommented
}

// LatestEditorReview returns an Editor event for the most recent actionable
// review submitted by an editor. Only the latest qualifying review counts.
// Reviews without a submission time are ignored.
func LatestEditorReview(reviews []model.Review, editors roles.Set) (model.Event, bool) {
	var latest model.Event
	found := false

	for _, r := range reviews {
		if !actionableReview(r.State) || !editors.Contains(r.Author) || r.SubmittedAt == nil {
			continue
		}
		// later reviews win ties, matching a stable sort followed by taking the last
		if !found || !r.SubmittedAt.Before(latest.When) {
			latest = model.Event{Actor: model.ActorEditor, When: *r.SubmittedAt}
			found = true
		}
	}

	return latest, found
}

// ClassifyComment attributes a comment to the editor or author role. Editors
// take precedence when a login is in both sets. Comments by anyone else, or
// with no author, are dropped.
func ClassifyComment(c model.Comment, editors, authors roles.Set) (model.Event, bool) {
	switch {
	case c.Author == "":
		return model.Event{}, false
	case editors.Contains(c.Author):
		return model.Event{Actor: model.ActorEditor, When: c.CreatedAt}, true
	case authors.Contains(c.Author):
		return model.Event{Actor: model.ActorAuthor, When: c.CreatedAt}, true
	default:
		return model.Event{}, false
	}
}

// ClassifyComments classifies each comment, keeping source order.
func ClassifyComments(comments []model.Comment, editors, authors roles.Set) []model.Event {
	events := make([]model.Event, 0, len(comments))
	for _, c := range comments {
		if e, ok := ClassifyComment(c, editors, authors); ok {
			events = append(events, e)
		}
	}
	return events
}

// ClassifyCommit turns a commit into an Author event dated by its committer
// date, or its author date when the committer date is missing. Commits are
// always attributed to the author, whoever pushed them.
func ClassifyCommit(c model.Commit) (model.Event, bool) {
	switch {
	case c.CommitterDate != nil:
		return model.Event{Actor: model.ActorAuthor, When: *c.CommitterDate}, true
	case c.AuthorDate != nil:
		return model.Event{Actor: model.ActorAuthor, When: *c.AuthorDate}, true
	default:
		return model.Event{}, false
	}
}

// ClassifyCommits classifies each commit, keeping source order.
func ClassifyCommits(commits []model.Commit) []model.Event {
	events := make([]model.Event, 0, len(commits))
	for _, c := range commits {
		if e, ok := ClassifyCommit(c); ok {
			events = append(events, e)
		}
	}
	return events
}
