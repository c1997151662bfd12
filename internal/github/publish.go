package github

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"
)

// DefaultBranch is the branch published sites are committed to when the
// caller does not ask for another one.
const DefaultBranch = "main"

const (
	pagesRetries     = 3
	pagesRetryDelay  = 2 * time.Second
	defaultPagesPath = "/"
)

// Publisher drives the end-to-end site publishing workflow against the git
// data API: ensure the repository exists, write every file as a blob, build a
// tree and commit, move the branch ref, then switch on GitHub Pages.
type Publisher struct {
	client *Client
	log    *slog.Logger

	// retryDelay separates Pages enable attempts; tests shrink it.
	retryDelay time.Duration
}

// NewPublisher wraps a client. The logger may not be nil.
func NewPublisher(client *Client, log *slog.Logger) *Publisher {
	return &Publisher{client: client, log: log, retryDelay: pagesRetryDelay}
}

// PublishRequest describes one site deployment.
type PublishRequest struct {
	// Owner is the GitHub login the site is published under.
	Owner string
	// Repo is the repository name (without owner).
	Repo string
	// Branch to commit to; DefaultBranch when empty.
	Branch string
	// Files maps repository paths to file contents.
	Files map[string]string
	// Message is the commit message.
	Message string
	// Description is used when the repository has to be created.
	Description string
}

// PublishResult reports what the workflow did.
type PublishResult struct {
	URL            string `json:"url"`
	Repo           string `json:"repo"`
	Branch         string `json:"branch"`
	CommitSHA      string `json:"commitSha"`
	RepoCreated    bool   `json:"repoCreated"`
	PagesConfirmed bool   `json:"pagesConfirmed"`
}

// Publish runs the whole workflow. It fails on any git data error, but a
// Pages configuration that cannot be confirmed is a soft failure: the commit
// already landed, so the result is returned with PagesConfirmed=false and the
// site URL it will have once Pages catches up. There is no rollback — a repo
// created by an attempt that later fails stays.
func (p *Publisher) Publish(ctx context.Context, req PublishRequest) (*PublishResult, error) {
	if len(req.Files) == 0 {
		return nil, fmt.Errorf("github: publish called with no files")
	}
	branch := req.Branch
	if branch == "" {
		branch = DefaultBranch
	}
	message := req.Message
	if message == "" {
		message = "Deploy site"
	}

	repo, created, err := p.EnsureRepo(ctx, req.Owner, req.Repo, req.Description)
	if err != nil {
		return nil, err
	}

	commitSHA, err := p.PushFiles(ctx, req.Owner, repo.Name, branch, message, req.Files)
	if err != nil {
		return nil, err
	}

	confirmed, pagesPath, err := p.EnsurePages(ctx, req.Owner, repo.Name, branch)
	if err != nil {
		p.log.Warn("pages configuration unconfirmed, continuing",
			"repo", repo.FullName, "error", err)
		confirmed = false
		pagesPath = defaultPagesPath
	}

	return &PublishResult{
		URL:            PagesURL(req.Owner, repo.Name, pagesPath),
		Repo:           repo.FullName,
		Branch:         branch,
		CommitSHA:      commitSHA,
		RepoCreated:    created,
		PagesConfirmed: confirmed,
	}, nil
}

// EnsureRepo resolves the repository and creates it when absent. A 422 from
// the create (the name was taken between the lookup and the create) falls
// back to resolving once more. The second return is true when this call
// created it.
func (p *Publisher) EnsureRepo(ctx context.Context, owner, name, description string) (*Repository, bool, error) {
	existing, err := p.client.GetRepo(ctx, owner, name)
	if err == nil {
		return existing, false, nil
	}
	if !isStatus(err, http.StatusNotFound) {
		return nil, false, err
	}

	repo, err := p.client.CreateRepo(ctx, CreateRepoRequest{
		Name:        name,
		Description: description,
		Private:     false,
	})
	if err == nil {
		return repo, true, nil
	}

	if isStatus(err, http.StatusUnprocessableEntity) {
		existing, getErr := p.client.GetRepo(ctx, owner, name)
		if getErr != nil {
			return nil, false, getErr
		}
		return existing, false, nil
	}
	return nil, false, err
}

// PushFiles commits files to branch and returns the new commit SHA. When the
// branch already exists the commit extends its history (base tree + parent);
// when it does not, the commit starts an orphan history and the ref is
// created fresh.
func (p *Publisher) PushFiles(ctx context.Context, owner, repo, branch, message string, files map[string]string) (string, error) {
	var baseTree string
	var parents []string
	branchExists := false

	head, err := p.client.GetRef(ctx, owner, repo, "heads/"+branch)
	switch {
	case err == nil:
		branchExists = true
		parents = []string{head.Object.SHA}
		parent, err := p.client.GetCommit(ctx, owner, repo, head.Object.SHA)
		if err != nil {
			return "", err
		}
		baseTree = parent.Tree.SHA
	case isStatus(err, http.StatusNotFound):
		// No branch yet; the commit below starts from scratch.
	default:
		return "", err
	}

	entries := make([]TreeEntry, 0, len(files))
	for path, content := range files {
		sha, err := p.client.CreateBlob(ctx, owner, repo, content, "utf-8")
		if err != nil {
			return "", err
		}
		entries = append(entries, TreeEntry{
			Path: path,
			Mode: "100644",
			Type: "blob",
			SHA:  sha,
		})
	}

	treeSHA, err := p.client.CreateTree(ctx, owner, repo, baseTree, entries)
	if err != nil {
		return "", err
	}

	commitSHA, err := p.client.CreateCommit(ctx, owner, repo, message, treeSHA, parents)
	if err != nil {
		return "", err
	}

	if branchExists {
		if err := p.client.UpdateRef(ctx, owner, repo, "heads/"+branch, commitSHA, true); err != nil {
			return "", err
		}
	} else {
		if _, err := p.client.CreateRef(ctx, owner, repo, "heads/"+branch, commitSHA); err != nil {
			return "", err
		}
	}

	return commitSHA, nil
}

// EnsurePages enables GitHub Pages on the branch. A 409 means Pages is
// already configured and counts as confirmed. A 404 means the Pages backend
// has not seen the branch yet; the attempt is retried a few times before
// giving up. The returned path is the configured source path.
func (p *Publisher) EnsurePages(ctx context.Context, owner, repo, branch string) (bool, string, error) {
	var lastErr error
	for attempt := 0; attempt < pagesRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return false, defaultPagesPath, ctx.Err()
			case <-time.After(p.retryDelay):
			}
		}

		err := p.client.EnablePages(ctx, owner, repo, branch, defaultPagesPath)
		if err == nil {
			return true, defaultPagesPath, nil
		}
		if isStatus(err, http.StatusConflict) {
			// Already enabled from a previous deploy.
			return true, defaultPagesPath, nil
		}
		if isStatus(err, http.StatusNotFound) {
			lastErr = err
			continue
		}
		return false, defaultPagesPath, err
	}
	return false, defaultPagesPath, lastErr
}

// PagesURL is the deterministic public URL of a published site. sourcePath
// "/" means the site is served from the repository root.
func PagesURL(owner, repo, sourcePath string) string {
	base := fmt.Sprintf("https://%s.github.io/%s/", strings.ToLower(owner), repo)
	if sourcePath == "" || sourcePath == "/" {
		return base
	}
	return base + strings.TrimPrefix(sourcePath, "/")
}

func isStatus(err error, code int) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == code
}
