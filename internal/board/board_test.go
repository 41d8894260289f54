package board

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/spiffcs/eipboard/internal/ghclient"
	"github.com/spiffcs/eipboard/internal/model"
	"github.com/spiffcs/eipboard/internal/roles"
	"github.com/spiffcs/eipboard/internal/worklist"
)

const roster = `eip:
  - eddie
  - Erin
`

const document = `---
eip: 1
title: Test
author: Alice (@alice), Bob <bob@example.com>
status: Draft
---

Body
`

func day(d int) time.Time {
	return time.Date(2024, time.January, d, 12, 0, 0, 0, time.UTC)
}

func ptr(t time.Time) *time.Time {
	return &t
}

// fakeSource serves canned feeds keyed by pull request number.
type fakeSource struct {
	mu sync.Mutex

	rosterErr error
	listErr   error
	prs       []model.PullRequest

	reviews        map[int][]model.Review
	issueComments  map[int][]model.Comment
	reviewComments map[int][]model.Comment
	commits        map[int][]model.Commit
	files          map[int][]model.ChangedFile
	docs           map[string]string

	feedErrs map[string]map[int]error
	calls    []string
}

func newFakeSource() *fakeSource {
	return &fakeSource{
		reviews:        map[int][]model.Review{},
		issueComments:  map[int][]model.Comment{},
		reviewComments: map[int][]model.Comment{},
		commits:        map[int][]model.Commit{},
		files:          map[int][]model.ChangedFile{},
		docs:           map[string]string{},
		feedErrs:       map[string]map[int]error{},
	}
}

func (f *fakeSource) record(feed string, number int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, fmt.Sprintf("%s#%d", feed, number))
	return f.feedErrs[feed][number]
}

func (f *fakeSource) failFeed(feed string, number int, err error) {
	if f.feedErrs[feed] == nil {
		f.feedErrs[feed] = map[int]error{}
	}
	f.feedErrs[feed][number] = err
}

func (f *fakeSource) RepoFile(_ context.Context, path, ref string) ([]byte, error) {
	if f.rosterErr != nil {
		return nil, f.rosterErr
	}
	if path != "config/eip-editors.yml" || ref != "master" {
		return nil, fmt.Errorf("%w: %s@%s", ghclient.ErrNotFound, path, ref)
	}
	return []byte(roster), nil
}

func (f *fakeSource) FileContent(_ context.Context, owner, repo, path, ref string) ([]byte, error) {
	doc, ok := f.docs[path]
	if !ok {
		return nil, fmt.Errorf("%w: %s/%s/%s@%s", ghclient.ErrNotFound, owner, repo, path, ref)
	}
	return []byte(doc), nil
}

func (f *fakeSource) OpenPullRequests(context.Context) ([]model.PullRequest, error) {
	return f.prs, f.listErr
}

func (f *fakeSource) Reviews(_ context.Context, n int) ([]model.Review, error) {
	if err := f.record(FeedReviews, n); err != nil {
		return nil, err
	}
	return f.reviews[n], nil
}

func (f *fakeSource) IssueComments(_ context.Context, n int) ([]model.Comment, error) {
	if err := f.record(FeedIssueComments, n); err != nil {
		return nil, err
	}
	return f.issueComments[n], nil
}

func (f *fakeSource) ReviewComments(_ context.Context, n int) ([]model.Comment, error) {
	if err := f.record(FeedReviewComments, n); err != nil {
		return nil, err
	}
	return f.reviewComments[n], nil
}

func (f *fakeSource) Commits(_ context.Context, n int) ([]model.Commit, error) {
	if err := f.record(FeedCommits, n); err != nil {
		return nil, err
	}
	return f.commits[n], nil
}

func (f *fakeSource) ChangedFiles(_ context.Context, n int) ([]model.ChangedFile, error) {
	if err := f.record(FeedFiles, n); err != nil {
		return nil, err
	}
	return f.files[n], nil
}

func pr(number int, created time.Time, labels ...string) model.PullRequest {
	return model.PullRequest{
		Number:    number,
		Title:     fmt.Sprintf("PR %d", number),
		HTMLURL:   fmt.Sprintf("https://github.com/ethereum/EIPs/pull/%d", number),
		APIURL:    fmt.Sprintf("https://api.github.com/repos/ethereum/EIPs/pulls/%d", number),
		CreatedAt: ptr(created),
		Labels:    labels,
		Head:      model.Branch{Owner: "alice", Repo: "EIPs", Ref: "feature"},
	}
}

// scenarioSource returns a source with three requests:
// #1 untouched since 2024-01-01, #2 editor spoke last on 2024-01-05,
// #3 editor spoke on 2024-01-05 and the author pushed on 2024-01-10.
func scenarioSource() *fakeSource {
	src := newFakeSource()
	src.prs = []model.PullRequest{pr(3, day(1)), pr(2, day(1)), pr(1, day(1))}
	src.docs["EIPS/eip-1.md"] = document
	for n := 1; n <= 3; n++ {
		src.files[n] = []model.ChangedFile{{Path: "EIPS/eip-1.md"}, {Path: "assets/eip-1/diagram.png"}}
	}
	src.issueComments[2] = []model.Comment{{Author: "eddie", CreatedAt: day(5)}}
	src.reviews[3] = []model.Review{
		{Author: "erin", State: model.ReviewChangesRequested, SubmittedAt: ptr(day(5))},
	}
	src.commits[3] = []model.Commit{{CommitterDate: ptr(day(10))}}
	return src
}

func TestRunScenarios(t *testing.T) {
	for _, workers := range []int{1, 4} {
		t.Run(fmt.Sprintf("workers=%d", workers), func(t *testing.T) {
			src := scenarioSource()
			b, err := New(src, WithWorkers(workers))
			if err != nil {
				t.Fatalf("New() error: %v", err)
			}

			wl, err := b.Run(context.Background())
			if err != nil {
				t.Fatalf("Run() error: %v", err)
			}
			if err := wl.Err(); err != nil {
				t.Fatalf("unexpected failures: %v", err)
			}

			entries := wl.Entries()
			if len(entries) != 2 {
				t.Fatalf("expected 2 entries, got %d: %+v", len(entries), entries)
			}
			if entries[0].Number != 1 || !entries[0].Since.Equal(day(1)) {
				t.Errorf("entries[0] = %+v, want #1 since %v", entries[0], day(1))
			}
			if entries[1].Number != 3 || !entries[1].Since.Equal(day(10)) {
				t.Errorf("entries[1] = %+v, want #3 since %v", entries[1], day(10))
			}
			if entries[0].Link != "https://github.com/ethereum/EIPs/pull/1" {
				t.Errorf("unexpected link %q", entries[0].Link)
			}
		})
	}
}

func TestRunRosterFailureIsFatal(t *testing.T) {
	src := scenarioSource()
	src.rosterErr = errors.New("boom")

	b, err := New(src)
	if err != nil {
		t.Fatal(err)
	}
	_, err = b.Run(context.Background())
	if !errors.Is(err, roles.ErrRoster) {
		t.Fatalf("expected ErrRoster, got %v", err)
	}
	if len(src.calls) != 0 {
		t.Errorf("no pull request should be evaluated, got calls %v", src.calls)
	}
}

func TestRunListFailureIsFatal(t *testing.T) {
	src := scenarioSource()
	src.listErr = errors.New("502 Bad Gateway")

	b, err := New(src)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := b.Run(context.Background()); err == nil {
		t.Fatal("expected an error")
	}
}

func TestRunFeedFailureContinues(t *testing.T) {
	src := scenarioSource()
	cause := errors.New("502 Bad Gateway")
	src.failFeed(FeedReviewComments, 2, cause)

	b, err := New(src)
	if err != nil {
		t.Fatal(err)
	}
	wl, err := b.Run(context.Background())
	if err != nil {
		t.Fatalf("Run() error: %v", err)
	}

	if !errors.Is(wl.Err(), worklist.ErrUnresolved) {
		t.Errorf("expected ErrUnresolved, got %v", wl.Err())
	}
	failures := wl.Failures()
	if len(failures) != 1 {
		t.Fatalf("expected 1 failure, got %d", len(failures))
	}
	if failures[0].Identifier != "https://github.com/ethereum/EIPs/pull/2" {
		t.Errorf("unexpected identifier %q", failures[0].Identifier)
	}
	var re *RetrievalError
	if !errors.As(failures[0].Cause, &re) || re.Feed != FeedReviewComments {
		t.Errorf("expected a review comments RetrievalError, got %v", failures[0].Cause)
	}
	if !errors.Is(failures[0].Cause, cause) {
		t.Errorf("expected cause to be wrapped, got %v", failures[0].Cause)
	}

	// the requests around the failure are still evaluated
	if wl.Len() != 2 {
		t.Errorf("expected 2 entries, got %d", wl.Len())
	}
}

func TestRunDocumentFetchFailure(t *testing.T) {
	src := scenarioSource()
	src.files[1] = []model.ChangedFile{{Path: "EIPS/eip-1.md"}, {Path: "EIPS/eip-2.md"}}

	b, err := New(src)
	if err != nil {
		t.Fatal(err)
	}
	wl, err := b.Run(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	// eip-2.md is not found at head and is skipped
	if wl.Err() != nil {
		t.Errorf("missing documents should be skipped, got %v", wl.Err())
	}
}

func TestRunMissingCreated(t *testing.T) {
	src := scenarioSource()
	src.prs[0].CreatedAt = nil

	b, err := New(src)
	if err != nil {
		t.Fatal(err)
	}
	wl, err := b.Run(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if !errors.Is(wl.Err(), ErrMissingCreated) {
		t.Errorf("expected ErrMissingCreated, got %v", wl.Err())
	}
}

func TestRunFallsBackToAPIURL(t *testing.T) {
	src := scenarioSource()
	src.prs[0].HTMLURL = ""
	src.prs[0].CreatedAt = nil

	b, err := New(src)
	if err != nil {
		t.Fatal(err)
	}
	wl, _ := b.Run(context.Background())
	failures := wl.Failures()
	if len(failures) != 1 || failures[0].Identifier != "https://api.github.com/repos/ethereum/EIPs/pulls/3" {
		t.Errorf("expected failure identified by API URL, got %+v", failures)
	}
}

func TestSkipLabels(t *testing.T) {
	tests := []struct {
		name     string
		labels   []string
		skip     string
		override string
		want     bool
	}{
		{"no labels", nil, "a-review", "e-review", false},
		{"skip label", []string{"a-review"}, "a-review", "e-review", true},
		{"override keeps request", []string{"a-review", "e-review"}, "a-review", "e-review", false},
		{"skipping disabled", []string{"a-review"}, "", "e-review", false},
		{"no override label", []string{"a-review", "e-review"}, "a-review", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b, err := New(newFakeSource(), WithLabels(tt.skip, tt.override))
			if err != nil {
				t.Fatal(err)
			}
			if got := b.skip(pr(1, day(1), tt.labels...)); got != tt.want {
				t.Errorf("skip() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestRunSkippedRequestNotFetched(t *testing.T) {
	src := scenarioSource()
	src.prs = []model.PullRequest{pr(1, day(1), "a-review")}

	b, err := New(src)
	if err != nil {
		t.Fatal(err)
	}
	wl, err := b.Run(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if wl.Len() != 0 {
		t.Errorf("expected skipped request to be absent, got %d entries", wl.Len())
	}
	if len(src.calls) != 0 {
		t.Errorf("skipped request should not be fetched, got %v", src.calls)
	}
}

func TestEvaluateFeedOrder(t *testing.T) {
	src := scenarioSource()
	b, err := New(src)
	if err != nil {
		t.Fatal(err)
	}
	editors := roles.NewSet("eddie")
	if _, err := b.Evaluate(context.Background(), pr(1, day(1)), editors); err != nil {
		t.Fatal(err)
	}

	want := []string{"reviews#1", "changed files#1", "issue comments#1", "review comments#1", "commits#1"}
	if fmt.Sprint(src.calls) != fmt.Sprint(want) {
		t.Errorf("calls = %v, want %v", src.calls, want)
	}
}

func TestEvaluateAuthorCommentAfterEditor(t *testing.T) {
	src := scenarioSource()
	src.issueComments[1] = []model.Comment{
		{Author: "eddie", CreatedAt: day(5)},
		{Author: "bystander", CreatedAt: day(6)},
		{Author: "Alice", CreatedAt: day(7)},
	}
	b, err := New(src)
	if err != nil {
		t.Fatal(err)
	}

	state, err := b.Evaluate(context.Background(), pr(1, day(1)), roles.NewSet("eddie"))
	if err != nil {
		t.Fatal(err)
	}
	if !state.AwaitingEditor || !state.Since.Equal(day(7)) {
		t.Errorf("Evaluate() = %v, want awaiting editor since %v", state, day(7))
	}
}

// recordingReporter captures reporter calls.
type recordingReporter struct {
	mu      sync.Mutex
	editors int
	listed  int
	calls   int
	last    int
	total   int
}

func (r *recordingReporter) EditorsResolved(n int)    { r.editors = n }
func (r *recordingReporter) PullRequestsListed(n int) { r.listed = n }

func (r *recordingReporter) Evaluated(completed, total int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls++
	r.last = max(r.last, completed)
	r.total = total
}

func TestReporter(t *testing.T) {
	src := scenarioSource()
	rep := &recordingReporter{}

	b, err := New(src, WithWorkers(2), WithReporter(rep))
	if err != nil {
		t.Fatal(err)
	}
	if _, err := b.Run(context.Background()); err != nil {
		t.Fatal(err)
	}
	if rep.editors != 2 || rep.listed != 3 {
		t.Errorf("editors=%d listed=%d, want 2/3", rep.editors, rep.listed)
	}
	if rep.calls != 3 || rep.last != 3 || rep.total != 3 {
		t.Errorf("progress calls=%d last=%d total=%d, want 3/3/3", rep.calls, rep.last, rep.total)
	}
}

func TestNewInvalidPattern(t *testing.T) {
	if _, err := New(newFakeSource(), WithDocumentPattern("(")); err == nil {
		t.Error("expected an error for an invalid document pattern")
	}
}
