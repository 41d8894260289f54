package ghclient

import (
	"context"
	"fmt"
	"time"

	gh "github.com/google/go-github/v57/github"
	"github.com/spiffcs/eipboard/internal/constants"
	"github.com/spiffcs/eipboard/internal/log"
	"github.com/spiffcs/eipboard/internal/model"
)

// Repository reads pull request feeds from a single repository.
// Every list method follows pagination to the last page.
type Repository struct {
	client *gh.Client
	Owner  string
	Name   string
}

// FullName returns "owner/name".
func (r *Repository) FullName() string {
	return r.Owner + "/" + r.Name
}

// OpenPullRequests lists open pull requests, drafts removed.
func (r *Repository) OpenPullRequests(ctx context.Context) ([]model.PullRequest, error) {
	opts := &gh.PullRequestListOptions{
		State: constants.StateOpen,
		ListOptions: gh.ListOptions{
			PerPage: constants.PerPage,
		},
	}

	var prs []model.PullRequest
	drafts := 0

	for {
		page, resp, err := r.client.PullRequests.List(ctx, r.Owner, r.Name, opts)
		if err != nil {
			return nil, fmt.Errorf("failed to list pull requests for %s: %w", r.FullName(), err)
		}

		for _, pr := range page {
			if pr.GetDraft() {
				drafts++
				continue
			}
			prs = append(prs, r.convertPullRequest(pr))
		}

		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}

	log.Debug("listed pull requests", "repo", r.FullName(), "open", len(prs), "drafts", drafts)
	return prs, nil
}

// Reviews lists the reviews submitted on a pull request.
func (r *Repository) Reviews(ctx context.Context, number int) ([]model.Review, error) {
	opts := &gh.ListOptions{PerPage: constants.PerPage}

	var reviews []model.Review
	for {
		page, resp, err := r.client.PullRequests.ListReviews(ctx, r.Owner, r.Name, number, opts)
		if err != nil {
			return nil, fmt.Errorf("failed to list reviews for #%d: %w", number, err)
		}

		for _, rv := range page {
			reviews = append(reviews, convertReview(rv))
		}

		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}
	return reviews, nil
}

// IssueComments lists the conversation comments on a pull request.
func (r *Repository) IssueComments(ctx context.Context, number int) ([]model.Comment, error) {
	opts := &gh.IssueListCommentsOptions{
		ListOptions: gh.ListOptions{PerPage: constants.PerPage},
	}

	var comments []model.Comment
	for {
		page, resp, err := r.client.Issues.ListComments(ctx, r.Owner, r.Name, number, opts)
		if err != nil {
			return nil, fmt.Errorf("failed to list issue comments for #%d: %w", number, err)
		}

		for _, c := range page {
			comments = append(comments, model.Comment{
				Author:    c.GetUser().GetLogin(),
				CreatedAt: timeOf(c.CreatedAt),
			})
		}

		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}
	return comments, nil
}

// ReviewComments lists the inline review comments on a pull request.
func (r *Repository) ReviewComments(ctx context.Context, number int) ([]model.Comment, error) {
	opts := &gh.PullRequestListCommentsOptions{
		ListOptions: gh.ListOptions{PerPage: constants.PerPage},
	}

	var comments []model.Comment
	for {
		page, resp, err := r.client.PullRequests.ListComments(ctx, r.Owner, r.Name, number, opts)
		if err != nil {
			return nil, fmt.Errorf("failed to list review comments for #%d: %w", number, err)
		}

		for _, c := range page {
			comments = append(comments, model.Comment{
				Author:    c.GetUser().GetLogin(),
				CreatedAt: timeOf(c.CreatedAt),
			})
		}

		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}
	return comments, nil
}

// Commits lists the commits on a pull request. GitHub returns at most
// constants.MaxPRCommits commits from this endpoint.
func (r *Repository) Commits(ctx context.Context, number int) ([]model.Commit, error) {
	opts := &gh.ListOptions{PerPage: constants.PerPage}

	var commits []model.Commit
	for {
		page, resp, err := r.client.PullRequests.ListCommits(ctx, r.Owner, r.Name, number, opts)
		if err != nil {
			return nil, fmt.Errorf("failed to list commits for #%d: %w", number, err)
		}

		for _, c := range page {
			commits = append(commits, convertCommit(c))
		}

		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}

	if len(commits) >= constants.MaxPRCommits {
		log.Warn("commit list truncated by GitHub", "pr", number, "commits", len(commits))
	}
	return commits, nil
}

// ChangedFiles lists the files touched by a pull request.
func (r *Repository) ChangedFiles(ctx context.Context, number int) ([]model.ChangedFile, error) {
	opts := &gh.ListOptions{PerPage: constants.PerPage}

	var files []model.ChangedFile
	for {
		page, resp, err := r.client.PullRequests.ListFiles(ctx, r.Owner, r.Name, number, opts)
		if err != nil {
			return nil, fmt.Errorf("failed to list files for #%d: %w", number, err)
		}

		for _, f := range page {
			files = append(files, model.ChangedFile{Path: f.GetFilename()})
		}

		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}
	return files, nil
}

// RepoFile reads a file from this repository at ref.
func (r *Repository) RepoFile(ctx context.Context, path, ref string) ([]byte, error) {
	return r.FileContent(ctx, r.Owner, r.Name, path, ref)
}

// FileContent reads a file from any repository at ref.
func (r *Repository) FileContent(ctx context.Context, owner, repo, path, ref string) ([]byte, error) {
	return fileContent(ctx, r.client, owner, repo, path, ref)
}

// convertPullRequest maps a GitHub pull request onto the model. A head
// without a repository (a deleted fork) falls back to this repository.
func (r *Repository) convertPullRequest(pr *gh.PullRequest) model.PullRequest {
	labels := make([]string, 0, len(pr.Labels))
	for _, l := range pr.Labels {
		labels = append(labels, l.GetName())
	}

	head := model.Branch{
		Owner: r.Owner,
		Repo:  r.Name,
		Ref:   pr.GetHead().GetRef(),
	}
	if repo := pr.GetHead().GetRepo(); repo != nil {
		head.Owner = repo.GetOwner().GetLogin()
		head.Repo = repo.GetName()
	}

	var created *time.Time
	if pr.CreatedAt != nil {
		t := pr.CreatedAt.Time
		created = &t
	}

	return model.PullRequest{
		Number:    pr.GetNumber(),
		Title:     pr.GetTitle(),
		HTMLURL:   pr.GetHTMLURL(),
		APIURL:    pr.GetURL(),
		CreatedAt: created,
		Draft:     pr.GetDraft(),
		Labels:    labels,
		Head:      head,
	}
}

func convertReview(rv *gh.PullRequestReview) model.Review {
	review := model.Review{
		Author: rv.GetUser().GetLogin(),
		State:  model.ReviewState(rv.GetState()),
	}
	if rv.SubmittedAt != nil {
		t := rv.SubmittedAt.Time
		review.SubmittedAt = &t
	}
	return review
}

func convertCommit(c *gh.RepositoryCommit) model.Commit {
	var commit model.Commit
	if d := c.GetCommit().GetCommitter().GetDate(); !d.IsZero() {
		t := d.Time
		commit.CommitterDate = &t
	}
	if d := c.GetCommit().GetAuthor().GetDate(); !d.IsZero() {
		t := d.Time
		commit.AuthorDate = &t
	}
	return commit
}

func timeOf(ts *gh.Timestamp) time.Time {
	if ts == nil {
		return time.Time{}
	}
	return ts.Time
}
