package roles

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/spiffcs/eipboard/internal/constants"
	"github.com/spiffcs/eipboard/internal/ghclient"
	"github.com/spiffcs/eipboard/internal/log"
	"github.com/spiffcs/eipboard/internal/model"
)

// authorEntry matches one entry of the preamble author field:
// "Display Name (@login)" optionally followed by " <email>".
var authorEntry = regexp.MustCompile(`^[^()<>,@]+ \(@([a-zA-Z\d-]+)\)(?: <[^@][^>]*@[^>]+\.[^>]+>)?$`)

// ContentFetcher retrieves the raw bytes of a file at a given ref.
// Implementations return an error wrapping ghclient.ErrNotFound when the
// file does not exist at that ref.
type ContentFetcher interface {
	FileContent(ctx context.Context, owner, repo, path, ref string) ([]byte, error)
}

// DocumentStatus is the outcome of resolving authors from one document.
type DocumentStatus int

const (
	DocumentResolved DocumentStatus = iota
	DocumentSkipped
	DocumentFailed
)

// DocumentResult records what happened to a single changed document.
type DocumentResult struct {
	Path   string
	Status DocumentStatus
	Logins []string
	Err    error
}

// AuthorResolver extracts author logins from the proposal documents a pull
// request touches.
type AuthorResolver struct {
	fetcher ContentFetcher
	pattern *regexp.Regexp
}

// NewAuthorResolver creates a resolver matching documents against pattern.
// An empty pattern selects the default EIP/ERC document pattern.
func NewAuthorResolver(fetcher ContentFetcher, pattern string) (*AuthorResolver, error) {
	if pattern == "" {
		pattern = constants.DefaultDocumentPattern
	}
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, fmt.Errorf("invalid document pattern %q: %w", pattern, err)
	}
	return &AuthorResolver{fetcher: fetcher, pattern: re}, nil
}

// IsDocument reports whether path is a proposal document.
func (r *AuthorResolver) IsDocument(path string) bool {
	return r.pattern.MatchString(path)
}

// Resolve returns the union of author logins across every proposal document
// changed by pr. Missing or unparseable documents are skipped; any other
// fetch failure aborts resolution.
func (r *AuthorResolver) Resolve(ctx context.Context, pr model.PullRequest, files []model.ChangedFile) (Set, error) {
	var logins []string
	for _, f := range files {
		if !r.IsDocument(f.Path) {
			continue
		}

		res := r.resolveDocument(ctx, pr, f.Path)
		switch res.Status {
		case DocumentResolved:
			logins = append(logins, res.Logins...)
		case DocumentSkipped:
			if errors.Is(res.Err, ErrMetadata) {
				log.Warn("skipping document", "pr", pr.Identifier(), "path", res.Path, "error", res.Err)
			} else {
				log.Debug("document not found at head", "pr", pr.Identifier(), "path", res.Path)
			}
		case DocumentFailed:
			return Set{}, fmt.Errorf("failed to fetch %s: %w", res.Path, res.Err)
		}
	}
	return NewSet(logins...), nil
}

func (r *AuthorResolver) resolveDocument(ctx context.Context, pr model.PullRequest, path string) DocumentResult {
	res := DocumentResult{Path: path}

	content, err := r.fetcher.FileContent(ctx, pr.Head.Owner, pr.Head.Repo, path, pr.Head.Ref)
	if err != nil {
		res.Err = err
		if errors.Is(err, ghclient.ErrNotFound) {
			res.Status = DocumentSkipped
		} else {
			res.Status = DocumentFailed
		}
		return res
	}

	logins, err := AuthorsFromDocument(string(content))
	if err != nil {
		res.Status = DocumentSkipped
		res.Err = err
		return res
	}

	res.Status = DocumentResolved
	res.Logins = logins
	return res
}

// AuthorsFromDocument reads the author field of a document's preamble.
func AuthorsFromDocument(content string) ([]string, error) {
	preamble, _, err := SplitPreamble(content)
	if err != nil {
		return nil, err
	}
	p, err := ParsePreamble(preamble)
	if err != nil {
		return nil, err
	}
	field, ok := p.Get("author")
	if !ok {
		return nil, fmt.Errorf("%w: missing author field", ErrMetadata)
	}
	return ParseAuthorField(field), nil
}

// ParseAuthorField returns the lower-cased GitHub logins named in an author
// field. Entries without a "(@login)" handle contribute nothing.
func ParseAuthorField(value string) []string {
	var logins []string
	for _, entry := range strings.Split(strings.TrimSpace(value), ",") {
		m := authorEntry.FindStringSubmatch(strings.TrimSpace(entry))
		if m == nil {
			continue
		}
		logins = append(logins, strings.ToLower(m[1]))
	}
	return logins
}
