// Package model defines the records exchanged between the GitHub retrieval
// layer and the review-ball engine.
package model

import (
	"slices"
	"time"
)

// ReviewState is the state GitHub reports for a pull request review.
type ReviewState string

const (
	ReviewApproved         ReviewState = "APPROVED"
	ReviewChangesRequested ReviewState = "CHANGES_REQUESTED"
	ReviewCommented        ReviewState = "COMMENTED"
	ReviewDismissed        ReviewState = "DISMISSED"
	ReviewPending          ReviewState = "PENDING"
)

// Branch identifies the head of a pull request.
type Branch struct {
	Owner string `json:"owner"`
	Repo  string `json:"repo"`
	Ref   string `json:"ref"`
}

// PullRequest is an open change request in the document repository.
type PullRequest struct {
	Number    int        `json:"number"`
	Title     string     `json:"title"`
	HTMLURL   string     `json:"htmlUrl"`
	APIURL    string     `json:"apiUrl"`
	CreatedAt *time.Time `json:"createdAt,omitempty"`
	Draft     bool       `json:"draft"`
	Labels    []string   `json:"labels"`
	Head      Branch     `json:"head"`
}

// Identifier returns the best available name for the pull request in
// diagnostics: the HTML URL, or the API URL when that is missing.
func (p PullRequest) Identifier() string {
	if p.HTMLURL != "" {
		return p.HTMLURL
	}
	return p.APIURL
}

// HasLabel reports whether the pull request carries the named label.
func (p PullRequest) HasLabel(name string) bool {
	return slices.Contains(p.Labels, name)
}

// Review is a submitted pull request review.
type Review struct {
	Author      string
	State       ReviewState
	SubmittedAt *time.Time
}

// Comment is an issue-level or review-level comment. Author is empty when
// GitHub did not report a user (for example, a deleted account).
type Comment struct {
	Author    string
	CreatedAt time.Time
}

// Commit carries the dates of a commit on the pull request.
type Commit struct {
	CommitterDate *time.Time
	AuthorDate    *time.Time
}

// ChangedFile is a file touched by a pull request.
type ChangedFile struct {
	Path string
}
