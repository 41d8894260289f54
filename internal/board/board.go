// Package board evaluates every open pull request in a document repository
// and assembles the worklist of requests awaiting an editor.
package board

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"

	"github.com/spiffcs/eipboard/internal/ball"
	"github.com/spiffcs/eipboard/internal/constants"
	"github.com/spiffcs/eipboard/internal/log"
	"github.com/spiffcs/eipboard/internal/model"
	"github.com/spiffcs/eipboard/internal/roles"
	"github.com/spiffcs/eipboard/internal/worklist"
	"golang.org/x/sync/errgroup"
)

// ErrMissingCreated is recorded for a pull request without a creation time.
var ErrMissingCreated = errors.New("pull request has no creation time")

// RetrievalError wraps a failure to read one of a pull request's feeds.
type RetrievalError struct {
	Feed string
	Err  error
}

func (e *RetrievalError) Error() string {
	return fmt.Sprintf("failed to retrieve %s: %v", e.Feed, e.Err)
}

func (e *RetrievalError) Unwrap() error {
	return e.Err
}

// Feed names used in RetrievalError.
const (
	FeedReviews        = "reviews"
	FeedAuthors        = "authors"
	FeedIssueComments  = "issue comments"
	FeedReviewComments = "review comments"
	FeedCommits        = "commits"
	FeedFiles          = "changed files"
)

// Source supplies the repository data a Board evaluates.
type Source interface {
	roles.ContentFetcher

	// RepoFile reads a file from the board's own repository.
	RepoFile(ctx context.Context, path, ref string) ([]byte, error)

	OpenPullRequests(ctx context.Context) ([]model.PullRequest, error)
	Reviews(ctx context.Context, number int) ([]model.Review, error)
	IssueComments(ctx context.Context, number int) ([]model.Comment, error)
	ReviewComments(ctx context.Context, number int) ([]model.Comment, error)
	Commits(ctx context.Context, number int) ([]model.Commit, error)
	ChangedFiles(ctx context.Context, number int) ([]model.ChangedFile, error)
}

// Reporter observes the stages of a run. Evaluated may be called from
// several goroutines when more than one worker is configured.
type Reporter interface {
	EditorsResolved(count int)
	PullRequestsListed(count int)
	Evaluated(completed, total int)
}

type nopReporter struct{}

func (nopReporter) EditorsResolved(int)    {}
func (nopReporter) PullRequestsListed(int) {}
func (nopReporter) Evaluated(int, int)     {}

// Board evaluates pull requests from a Source.
type Board struct {
	src     Source
	authors *roles.AuthorResolver
	opts    Options
}

// Options configures a Board.
type Options struct {
	RosterPath      string
	RosterRef       string
	DocumentPattern string
	SkipLabel       string
	OverrideLabel   string
	Workers         int
	Reporter        Reporter
}

// Option mutates Options.
type Option func(*Options)

// WithRoster sets the roster location.
func WithRoster(path, ref string) Option {
	return func(o *Options) {
		if path != "" {
			o.RosterPath = path
		}
		if ref != "" {
			o.RosterRef = ref
		}
	}
}

// WithDocumentPattern sets the pattern selecting proposal documents.
func WithDocumentPattern(pattern string) Option {
	return func(o *Options) {
		o.DocumentPattern = pattern
	}
}

// WithLabels sets the skip and override labels. An empty skip label disables
// label skipping.
func WithLabels(skip, override string) Option {
	return func(o *Options) {
		o.SkipLabel = skip
		o.OverrideLabel = override
	}
}

// WithWorkers sets how many pull requests are evaluated at once.
func WithWorkers(n int) Option {
	return func(o *Options) {
		o.Workers = n
	}
}

// WithReporter sets the observer notified as the run progresses.
func WithReporter(r Reporter) Option {
	return func(o *Options) {
		o.Reporter = r
	}
}

// New creates a Board reading from src.
func New(src Source, opts ...Option) (*Board, error) {
	o := Options{
		RosterPath:    constants.DefaultRosterPath,
		RosterRef:     constants.DefaultRosterRef,
		SkipLabel:     constants.DefaultSkipLabel,
		OverrideLabel: constants.DefaultOverrideLabel,
		Workers:       constants.DefaultWorkers,
	}
	for _, opt := range opts {
		opt(&o)
	}
	if o.Workers < 1 {
		o.Workers = 1
	}
	if o.Reporter == nil {
		o.Reporter = nopReporter{}
	}

	authors, err := roles.NewAuthorResolver(src, o.DocumentPattern)
	if err != nil {
		return nil, err
	}

	return &Board{src: src, authors: authors, opts: o}, nil
}

// outcome is the evaluation result of one pull request.
type outcome struct {
	pr      model.PullRequest
	state   ball.State
	skipped bool
	err     error
}

// Run resolves the editor roster, evaluates every open pull request, and
// returns the worklist. The error is non-nil only when the run could not
// start; failures of individual pull requests are recorded in the worklist.
func (b *Board) Run(ctx context.Context) (*worklist.Worklist, error) {
	editors, err := b.Editors(ctx)
	if err != nil {
		return nil, err
	}
	log.Info("resolved editors", "count", editors.Len())
	b.opts.Reporter.EditorsResolved(editors.Len())

	prs, err := b.src.OpenPullRequests(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list pull requests: %w", err)
	}
	log.Info("evaluating pull requests", "count", len(prs))
	b.opts.Reporter.PullRequestsListed(len(prs))

	outcomes := b.evaluateAll(ctx, prs, editors)

	wl := worklist.New()
	for _, o := range outcomes {
		switch {
		case o.err != nil:
			log.Error("failed to evaluate pull request", "pr", o.pr.Identifier(), "error", o.err)
			wl.Fail(o.pr.Identifier(), o.err)
		case o.skipped:
			log.Debug("skipped pull request", "pr", o.pr.Identifier(), "label", b.opts.SkipLabel)
		case o.state.AwaitingEditor:
			wl.Add(worklist.Entry{
				Since:  o.state.Since,
				Link:   o.pr.HTMLURL,
				Number: o.pr.Number,
				Title:  o.pr.Title,
			})
		}
	}

	return wl, nil
}

// Editors fetches the roster and resolves the editor set.
func (b *Board) Editors(ctx context.Context) (roles.Set, error) {
	content, err := b.src.RepoFile(ctx, b.opts.RosterPath, b.opts.RosterRef)
	if err != nil {
		return roles.Set{}, fmt.Errorf("%w: %s@%s: %w", roles.ErrRoster, b.opts.RosterPath, b.opts.RosterRef, err)
	}
	return roles.ResolveEditors(string(content)), nil
}

func (b *Board) evaluateAll(ctx context.Context, prs []model.PullRequest, editors roles.Set) []outcome {
	outcomes := make([]outcome, len(prs))
	total := len(prs)
	var completed int32

	done := func() {
		n := int(atomic.AddInt32(&completed, 1))
		b.opts.Reporter.Evaluated(n, total)
	}

	if b.opts.Workers <= 1 {
		for i, pr := range prs {
			outcomes[i] = b.evaluate(ctx, pr, editors)
			done()
		}
		return outcomes
	}

	// each goroutine owns one slot, so listing order survives
	var g errgroup.Group
	g.SetLimit(b.opts.Workers)
	for i, pr := range prs {
		g.Go(func() error {
			outcomes[i] = b.evaluate(ctx, pr, editors)
			done()
			return nil
		})
	}
	_ = g.Wait()

	return outcomes
}

func (b *Board) evaluate(ctx context.Context, pr model.PullRequest, editors roles.Set) outcome {
	if b.skip(pr) {
		return outcome{pr: pr, skipped: true}
	}
	state, err := b.Evaluate(ctx, pr, editors)
	return outcome{pr: pr, state: state, err: err}
}

func (b *Board) skip(pr model.PullRequest) bool {
	if b.opts.SkipLabel == "" || !pr.HasLabel(b.opts.SkipLabel) {
		return false
	}
	return b.opts.OverrideLabel == "" || !pr.HasLabel(b.opts.OverrideLabel)
}

// Evaluate decides who holds the ball on a single pull request.
func (b *Board) Evaluate(ctx context.Context, pr model.PullRequest, editors roles.Set) (ball.State, error) {
	if pr.CreatedAt == nil {
		return ball.NoActionNeeded, ErrMissingCreated
	}
	created := *pr.CreatedAt

	reviews, err := b.src.Reviews(ctx, pr.Number)
	if err != nil {
		return ball.NoActionNeeded, &RetrievalError{Feed: FeedReviews, Err: err}
	}
	var review *model.Event
	if e, ok := ball.LatestEditorReview(reviews, editors); ok {
		review = &e
	}

	files, err := b.src.ChangedFiles(ctx, pr.Number)
	if err != nil {
		return ball.NoActionNeeded, &RetrievalError{Feed: FeedFiles, Err: err}
	}
	authors, err := b.authors.Resolve(ctx, pr, files)
	if err != nil {
		return ball.NoActionNeeded, &RetrievalError{Feed: FeedAuthors, Err: err}
	}
	log.Trace("resolved authors", "pr", pr.Identifier(), "authors", authors.Logins())

	issueComments, err := b.src.IssueComments(ctx, pr.Number)
	if err != nil {
		return ball.NoActionNeeded, &RetrievalError{Feed: FeedIssueComments, Err: err}
	}

	reviewComments, err := b.src.ReviewComments(ctx, pr.Number)
	if err != nil {
		return ball.NoActionNeeded, &RetrievalError{Feed: FeedReviewComments, Err: err}
	}

	commits, err := b.src.Commits(ctx, pr.Number)
	if err != nil {
		return ball.NoActionNeeded, &RetrievalError{Feed: FeedCommits, Err: err}
	}

	timeline := ball.Build(
		created,
		review,
		ball.ClassifyComments(issueComments, editors, authors),
		ball.ClassifyComments(reviewComments, editors, authors),
		ball.ClassifyCommits(commits),
	)
	state := ball.Determine(timeline)
	log.Debug("evaluated pull request", "pr", pr.Identifier(), "events", len(timeline), "state", state)

	return state, nil
}
