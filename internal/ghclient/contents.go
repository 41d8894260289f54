package ghclient

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	gh "github.com/google/go-github/v57/github"
)

// ErrNotFound is returned when a file does not exist at the requested ref.
var ErrNotFound = errors.New("not found")

func fileContent(ctx context.Context, client *gh.Client, owner, repo, path, ref string) ([]byte, error) {
	opts := &gh.RepositoryContentGetOptions{Ref: ref}

	file, dir, _, err := client.Repositories.GetContents(ctx, owner, repo, path, opts)
	if err != nil {
		if isNotFound(err) {
			return nil, fmt.Errorf("%w: %s/%s/%s@%s", ErrNotFound, owner, repo, path, ref)
		}
		return nil, fmt.Errorf("failed to get %s/%s/%s@%s: %w", owner, repo, path, ref, err)
	}
	if file == nil {
		return nil, fmt.Errorf("%s/%s/%s@%s is a directory with %d entries", owner, repo, path, ref, len(dir))
	}

	content, err := file.GetContent()
	if err != nil {
		return nil, fmt.Errorf("failed to decode %s/%s/%s@%s: %w", owner, repo, path, ref, err)
	}
	return []byte(content), nil
}

func isNotFound(err error) bool {
	var ghErr *gh.ErrorResponse
	if errors.As(err, &ghErr) && ghErr.Response != nil {
		return ghErr.Response.StatusCode == http.StatusNotFound
	}
	return false
}
