// Package github is a thin client for the GitHub REST API, covering the
// endpoints the publishing workflow needs: account lookup, repository
// management, the low-level git data API (blobs, trees, commits, refs) and
// the Pages configuration endpoints.
//
// The publishing workflow branches on exact upstream status codes (422 on a
// taken repository name, 409 when Pages is already enabled, 404 before the
// branch is visible to the Pages backend), so every non-2xx response surfaces
// as an *APIError carrying the raw status code and GitHub's own message.
package github

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/Gopi-techy/SkillSlate/internal/apperror"
)

const defaultBaseURL = "https://api.github.com"

// requestTimeout bounds every API call; GitHub's git data endpoints can be
// slow on large blobs but anything past this is treated as failed.
const requestTimeout = 15 * time.Second

// APIError is a non-2xx response from the GitHub API. It unwraps to
// apperror.ErrUpstream so the HTTP boundary maps it uniformly, while callers
// in the publish flow can still inspect StatusCode.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("github: API responded with status %d", e.StatusCode)
	}
	return fmt.Sprintf("github: %s (status %d)", e.Message, e.StatusCode)
}

func (e *APIError) Unwrap() error { return apperror.ErrUpstream }

// Client calls the GitHub REST API on behalf of a single user token.
type Client struct {
	token   string
	baseURL string
	http    *http.Client
}

// NewClient returns a client authenticated with the given OAuth access token.
func NewClient(token string) *Client {
	return NewClientWithBaseURL(token, defaultBaseURL)
}

// NewClientWithBaseURL is NewClient with the API root overridden; tests point
// it at an httptest server.
func NewClientWithBaseURL(token, baseURL string) *Client {
	return &Client{
		token:   token,
		baseURL: baseURL,
		http:    &http.Client{Timeout: requestTimeout},
	}
}

// Account is the authenticated user as GitHub reports it.
type Account struct {
	Login     string `json:"login"`
	ID        int64  `json:"id"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	AvatarURL string `json:"avatar_url"`
	HTMLURL   string `json:"html_url"`
}

// Email is one address from the authenticated user's email list.
type Email struct {
	Email    string `json:"email"`
	Primary  bool   `json:"primary"`
	Verified bool   `json:"verified"`
}

// Repository is the subset of GitHub's repository object the workflow reads.
type Repository struct {
	Name          string `json:"name"`
	FullName      string `json:"full_name"`
	Private       bool   `json:"private"`
	HTMLURL       string `json:"html_url"`
	DefaultBranch string `json:"default_branch"`
	Description   string `json:"description"`
}

// Reference is a git ref with the object it points at.
type Reference struct {
	Ref    string `json:"ref"`
	Object struct {
		SHA  string `json:"sha"`
		Type string `json:"type"`
	} `json:"object"`
}

// Commit is a git commit object; only the tree link matters here.
type Commit struct {
	SHA  string `json:"sha"`
	Tree struct {
		SHA string `json:"sha"`
	} `json:"tree"`
}

// TreeEntry is one path in a git tree being created.
type TreeEntry struct {
	Path string `json:"path"`
	Mode string `json:"mode"`
	Type string `json:"type"`
	SHA  string `json:"sha"`
}

// PagesInfo describes the Pages configuration of a repository.
type PagesInfo struct {
	URL     string `json:"url"`
	HTMLURL string `json:"html_url"`
	Status  string `json:"status"`
	CNAME   string `json:"cname,omitempty"`
}

// GetAuthenticatedUser fetches the account behind the client's token.
func (c *Client) GetAuthenticatedUser(ctx context.Context) (*Account, error) {
	var acct Account
	if err := c.do(ctx, http.MethodGet, "/user", nil, &acct); err != nil {
		return nil, err
	}
	return &acct, nil
}

// ListEmails fetches the authenticated user's email addresses. Requires the
// user:email scope; GitHub hides the public email on /user for users who
// keep it private, so this is the reliable way to get one.
func (c *Client) ListEmails(ctx context.Context) ([]Email, error) {
	var emails []Email
	if err := c.do(ctx, http.MethodGet, "/user/emails", nil, &emails); err != nil {
		return nil, err
	}
	return emails, nil
}

// ListRepos fetches the authenticated user's repositories, most recently
// updated first.
func (c *Client) ListRepos(ctx context.Context) ([]Repository, error) {
	var repos []Repository
	if err := c.do(ctx, http.MethodGet, "/user/repos?sort=updated&per_page=100", nil, &repos); err != nil {
		return nil, err
	}
	return repos, nil
}

// GetRepo fetches a single repository.
func (c *Client) GetRepo(ctx context.Context, owner, repo string) (*Repository, error) {
	var r Repository
	if err := c.do(ctx, http.MethodGet, "/repos/"+owner+"/"+repo, nil, &r); err != nil {
		return nil, err
	}
	return &r, nil
}

// CreateRepoRequest is the body for CreateRepo.
type CreateRepoRequest struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Homepage    string `json:"homepage,omitempty"`
	Private     bool   `json:"private"`
	AutoInit    bool   `json:"auto_init"`
	HasIssues   *bool  `json:"has_issues,omitempty"`
	HasWiki     *bool  `json:"has_wiki,omitempty"`
}

// CreateRepo creates a repository for the authenticated user. GitHub answers
// 422 when the name is already taken.
func (c *Client) CreateRepo(ctx context.Context, req CreateRepoRequest) (*Repository, error) {
	var r Repository
	if err := c.do(ctx, http.MethodPost, "/user/repos", req, &r); err != nil {
		return nil, err
	}
	return &r, nil
}

// GetRef fetches a git reference. ref is the short form, e.g. "heads/main".
func (c *Client) GetRef(ctx context.Context, owner, repo, ref string) (*Reference, error) {
	var r Reference
	if err := c.do(ctx, http.MethodGet, "/repos/"+owner+"/"+repo+"/git/ref/"+ref, nil, &r); err != nil {
		return nil, err
	}
	return &r, nil
}

// CreateRef creates a git reference pointing at sha. ref is the short form;
// the API wants the fully qualified name.
func (c *Client) CreateRef(ctx context.Context, owner, repo, ref, sha string) (*Reference, error) {
	body := map[string]string{"ref": "refs/" + ref, "sha": sha}
	var r Reference
	if err := c.do(ctx, http.MethodPost, "/repos/"+owner+"/"+repo+"/git/refs", body, &r); err != nil {
		return nil, err
	}
	return &r, nil
}

// UpdateRef moves an existing reference to sha. force allows a non
// fast-forward move, which the publish flow always wants since each deploy
// rewrites the site wholesale.
func (c *Client) UpdateRef(ctx context.Context, owner, repo, ref, sha string, force bool) error {
	body := map[string]any{"sha": sha, "force": force}
	return c.do(ctx, http.MethodPatch, "/repos/"+owner+"/"+repo+"/git/refs/"+ref, body, nil)
}

// GetCommit fetches a git commit object.
func (c *Client) GetCommit(ctx context.Context, owner, repo, sha string) (*Commit, error) {
	var cm Commit
	if err := c.do(ctx, http.MethodGet, "/repos/"+owner+"/"+repo+"/git/commits/"+sha, nil, &cm); err != nil {
		return nil, err
	}
	return &cm, nil
}

// CreateBlob uploads file content and returns its blob SHA. encoding is
// "utf-8" or "base64".
func (c *Client) CreateBlob(ctx context.Context, owner, repo, content, encoding string) (string, error) {
	body := map[string]string{"content": content, "encoding": encoding}
	var out struct {
		SHA string `json:"sha"`
	}
	if err := c.do(ctx, http.MethodPost, "/repos/"+owner+"/"+repo+"/git/blobs", body, &out); err != nil {
		return "", err
	}
	return out.SHA, nil
}

// CreateTree creates a tree from entries. baseTree may be empty for a tree
// with no parent.
func (c *Client) CreateTree(ctx context.Context, owner, repo, baseTree string, entries []TreeEntry) (string, error) {
	body := map[string]any{"tree": entries}
	if baseTree != "" {
		body["base_tree"] = baseTree
	}
	var out struct {
		SHA string `json:"sha"`
	}
	if err := c.do(ctx, http.MethodPost, "/repos/"+owner+"/"+repo+"/git/trees", body, &out); err != nil {
		return "", err
	}
	return out.SHA, nil
}

// CreateCommit creates a commit object. parents may be empty for the first
// commit on an orphan branch.
func (c *Client) CreateCommit(ctx context.Context, owner, repo, message, treeSHA string, parents []string) (string, error) {
	body := map[string]any{"message": message, "tree": treeSHA}
	if len(parents) > 0 {
		body["parents"] = parents
	}
	var out struct {
		SHA string `json:"sha"`
	}
	if err := c.do(ctx, http.MethodPost, "/repos/"+owner+"/"+repo+"/git/commits", body, &out); err != nil {
		return "", err
	}
	return out.SHA, nil
}

// EnablePages turns on GitHub Pages for the repository, serving path from
// branch. GitHub answers 409 when Pages is already configured and 404 when
// the branch is not yet visible to the Pages backend.
func (c *Client) EnablePages(ctx context.Context, owner, repo, branch, path string) error {
	body := map[string]any{
		"source": map[string]string{"branch": branch, "path": path},
	}
	return c.do(ctx, http.MethodPost, "/repos/"+owner+"/"+repo+"/pages", body, nil)
}

// GetPages fetches the repository's Pages configuration.
func (c *Client) GetPages(ctx context.Context, owner, repo string) (*PagesInfo, error) {
	var info PagesInfo
	if err := c.do(ctx, http.MethodGet, "/repos/"+owner+"/"+repo+"/pages", nil, &info); err != nil {
		return nil, err
	}
	return &info, nil
}

// do runs one API call: marshals body (if any), sets auth headers, decodes a
// 2xx response into out (if non-nil), and turns any other status into an
// *APIError with GitHub's message.
func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("github: encoding request body: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("github: building request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Accept", "application/vnd.github+json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("github: calling %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &APIError{
			StatusCode: resp.StatusCode,
			Message:    apiMessage(resp.Body),
		}
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("github: decoding response: %w", err)
	}
	return nil
}

// apiMessage extracts GitHub's error message from a failed response body.
// The body is passed through verbatim so callers see what GitHub said.
func apiMessage(r io.Reader) string {
	raw, err := io.ReadAll(io.LimitReader(r, 64<<10))
	if err != nil {
		return ""
	}
	var payload struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(raw, &payload); err == nil && payload.Message != "" {
		return payload.Message
	}
	return string(bytes.TrimSpace(raw))
}
