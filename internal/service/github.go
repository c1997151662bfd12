package service

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/Gopi-techy/SkillSlate/internal/apperror"
	"github.com/Gopi-techy/SkillSlate/internal/auth"
	"github.com/Gopi-techy/SkillSlate/internal/github"
	"github.com/Gopi-techy/SkillSlate/internal/model"
	"github.com/Gopi-techy/SkillSlate/internal/repository"
)

// GitHubService covers the GitHub integration surface: the OAuth linking
// flow, account introspection, repository management and site publishing.
type GitHubService struct {
	tokens      repository.TokenRepository
	users       repository.UserRepository
	deployments repository.DeploymentRepository
	oauth       *auth.GitHubProvider
	githubAPI   GitHubClientFactory
	log         *slog.Logger
}

func NewGitHubService(
	tokens repository.TokenRepository,
	users repository.UserRepository,
	deployments repository.DeploymentRepository,
	oauth *auth.GitHubProvider,
	githubAPI GitHubClientFactory,
	log *slog.Logger,
) *GitHubService {
	if githubAPI == nil {
		githubAPI = github.NewClient
	}
	return &GitHubService{
		tokens:      tokens,
		users:       users,
		deployments: deployments,
		oauth:       oauth,
		githubAPI:   githubAPI,
		log:         log,
	}
}

// AuthorizeURL is the GitHub consent page URL for the given CSRF state.
func (s *GitHubService) AuthorizeURL(state string) string {
	return s.oauth.AuthorizeURL(state)
}

// ExchangeCode trades an OAuth callback code for an access token.
func (s *GitHubService) ExchangeCode(ctx context.Context, code string) (accessToken, tokenType string, err error) {
	if code == "" {
		return "", "", apperror.ValidationFailed("code", "Missing code")
	}
	tok, err := s.oauth.ExchangeCode(ctx, code)
	if err != nil {
		return "", "", apperror.Upstream("Failed to exchange code for token")
	}
	tokenType = tok.TokenType
	if tokenType == "" {
		tokenType = "bearer"
	}
	return tok.AccessToken, tokenType, nil
}

// Link stores the user's GitHub access token and marks the account as
// connected. The GitHub login is fetched for convenience but a failure there
// does not block linking.
func (s *GitHubService) Link(ctx context.Context, userID, accessToken, tokenType string) error {
	if accessToken == "" {
		return apperror.ValidationFailed("access_token", "Missing access_token")
	}
	if tokenType == "" {
		tokenType = "bearer"
	}

	var login string
	if account, err := s.githubAPI(accessToken).GetAuthenticatedUser(ctx); err == nil {
		login = account.Login
	} else {
		s.log.Warn("could not resolve GitHub login during link", "user_id", userID, "error", err)
	}

	if err := s.tokens.UpsertToken(ctx, &model.GitHubToken{
		UserID:      userID,
		AccessToken: accessToken,
		TokenType:   tokenType,
		Login:       login,
	}); err != nil {
		return err
	}
	if err := s.users.SetGitHubConnected(ctx, userID, true); err != nil {
		return err
	}

	s.log.Info("GitHub account linked", "user_id", userID, "login", login)
	return nil
}

// Unlink drops the stored token and clears the connected flag.
func (s *GitHubService) Unlink(ctx context.Context, userID string) error {
	if err := s.tokens.DeleteTokenByUser(ctx, userID); err != nil {
		return err
	}
	if err := s.users.SetGitHubConnected(ctx, userID, false); err != nil {
		return err
	}
	s.log.Info("GitHub account unlinked", "user_id", userID)
	return nil
}

// Me fetches the linked GitHub account. A 401 from GitHub means the stored
// token was revoked; the link is dropped so the client can prompt for a
// fresh connection instead of failing forever.
func (s *GitHubService) Me(ctx context.Context, userID string) (*github.Account, error) {
	client, _, err := s.clientFor(ctx, userID)
	if err != nil {
		return nil, err
	}

	account, err := client.GetAuthenticatedUser(ctx)
	if err != nil {
		var apiErr *github.APIError
		if errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusUnauthorized {
			if unlinkErr := s.Unlink(ctx, userID); unlinkErr != nil {
				s.log.Error("failed to unlink revoked GitHub token", "user_id", userID, "error", unlinkErr)
			}
			return nil, apperror.Conflict(apperror.CodeGitHubNotConnected,
				"GitHub token is no longer valid. Please reconnect your GitHub account.")
		}
		return nil, err
	}
	return account, nil
}

// Repos lists the user's GitHub repositories.
func (s *GitHubService) Repos(ctx context.Context, userID string) ([]github.Repository, error) {
	client, _, err := s.clientFor(ctx, userID)
	if err != nil {
		return nil, err
	}
	return client.ListRepos(ctx)
}

// CreateRepo creates a repository on the user's account.
func (s *GitHubService) CreateRepo(ctx context.Context, userID string, req github.CreateRepoRequest) (*github.Repository, error) {
	if req.Name == "" {
		req.Name = "skillslate-portfolio"
	}
	if req.Description == "" {
		req.Description = "SkillSlate portfolio repository"
	}
	// Portfolio repos are plain hosting targets, not collaboration spaces.
	if req.HasIssues == nil {
		off := false
		req.HasIssues = &off
	}
	if req.HasWiki == nil {
		off := false
		req.HasWiki = &off
	}

	client, _, err := s.clientFor(ctx, userID)
	if err != nil {
		return nil, err
	}
	return client.CreateRepo(ctx, req)
}

// EnablePages switches on GitHub Pages for one of the user's repositories,
// with the publisher's retry behavior for a branch the Pages backend has not
// seen yet.
func (s *GitHubService) EnablePages(ctx context.Context, userID, owner, repo, branch string) (bool, error) {
	if owner == "" || repo == "" {
		return false, apperror.ValidationFailed("", "Missing owner/repo")
	}
	if branch == "" {
		branch = github.DefaultBranch
	}

	client, _, err := s.clientFor(ctx, userID)
	if err != nil {
		return false, err
	}
	confirmed, _, err := github.NewPublisher(client, s.log).EnsurePages(ctx, owner, repo, branch)
	if err != nil {
		return false, err
	}
	return confirmed, nil
}

// PushRequest carries a direct file push to one of the user's repositories.
type PushRequest struct {
	Owner   string            `json:"owner"`
	Repo    string            `json:"repo"`
	Branch  string            `json:"branch"`
	Message string            `json:"message"`
	Files   map[string]string `json:"files"`
}

// Push commits files to a repository branch and records the commit.
func (s *GitHubService) Push(ctx context.Context, userID string, req PushRequest) (string, error) {
	client, token, err := s.clientFor(ctx, userID)
	if err != nil {
		return "", err
	}

	owner := req.Owner
	if owner == "" {
		owner = token.Login
	}
	if owner == "" || req.Repo == "" || len(req.Files) == 0 {
		return "", apperror.ValidationFailed("", "Missing owner/repo/files")
	}
	branch := req.Branch
	if branch == "" {
		branch = github.DefaultBranch
	}
	message := req.Message
	if message == "" {
		message = "Deploy portfolio"
	}

	commitSHA, err := github.NewPublisher(client, s.log).PushFiles(ctx, owner, req.Repo, branch, message, req.Files)
	if err != nil {
		return "", err
	}

	if err := s.deployments.UpsertDeployment(ctx, &model.Deployment{
		UserID:     userID,
		Repo:       req.Repo,
		Branch:     branch,
		LastCommit: commitSHA,
	}); err != nil {
		s.log.Warn("failed to record push", "user_id", userID, "repo", req.Repo, "error", err)
	}
	return commitSHA, nil
}

// DeployRequest carries a one-shot deploy: repo creation if needed, file
// push, and Pages enablement.
type DeployRequest struct {
	Repo    string            `json:"repo"`
	Branch  string            `json:"branch"`
	Message string            `json:"message"`
	Files   map[string]string `json:"files"`
}

// Deploy runs the whole publish workflow under the user's GitHub identity
// and records the resulting deployment.
func (s *GitHubService) Deploy(ctx context.Context, userID string, req DeployRequest) (*github.PublishResult, error) {
	if len(req.Files) == 0 {
		return nil, apperror.ValidationFailed("files", "Missing files")
	}

	client, token, err := s.clientFor(ctx, userID)
	if err != nil {
		return nil, err
	}
	if token.Login == "" {
		return nil, apperror.Conflict(apperror.CodeGitHubNotConnected,
			"GitHub login unknown. Please reconnect your GitHub account.")
	}

	repo := req.Repo
	if repo == "" {
		repo = "skillslate-portfolio"
	}

	result, err := github.NewPublisher(client, s.log).Publish(ctx, github.PublishRequest{
		Owner:   token.Login,
		Repo:    repo,
		Branch:  req.Branch,
		Files:   req.Files,
		Message: req.Message,
	})
	if err != nil {
		return nil, err
	}

	if err := s.deployments.UpsertDeployment(ctx, &model.Deployment{
		UserID:     userID,
		Repo:       repo,
		Branch:     result.Branch,
		URL:        result.URL,
		LastCommit: result.CommitSHA,
	}); err != nil {
		s.log.Warn("failed to record deployment", "user_id", userID, "repo", repo, "error", err)
	}
	return result, nil
}

// PagesStatus reports the live Pages state of a repository merged with the
// locally recorded deployment.
type PagesStatus struct {
	Enabled    bool   `json:"enabled"`
	Status     string `json:"status,omitempty"`
	CNAME      string `json:"cname,omitempty"`
	HTMLURL    string `json:"html_url,omitempty"`
	LastCommit string `json:"last_commit,omitempty"`
	URL        string `json:"url,omitempty"`
}

// Status reports whether Pages is enabled for the repo and what was last
// deployed there.
func (s *GitHubService) Status(ctx context.Context, userID, repo string) (*PagesStatus, error) {
	if repo == "" {
		return nil, apperror.ValidationFailed("repo", "Missing repo")
	}

	client, token, err := s.clientFor(ctx, userID)
	if err != nil {
		return nil, err
	}

	info, err := client.GetPages(ctx, token.Login, repo)
	if err != nil {
		var apiErr *github.APIError
		if errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusNotFound {
			return &PagesStatus{Enabled: false}, nil
		}
		return nil, err
	}

	status := &PagesStatus{
		Enabled: true,
		Status:  info.Status,
		CNAME:   info.CNAME,
		HTMLURL: info.HTMLURL,
	}
	if saved, err := s.deployments.GetDeployment(ctx, userID, repo); err == nil {
		status.LastCommit = saved.LastCommit
		status.URL = saved.URL
	}
	return status, nil
}

// clientFor resolves the user's stored GitHub token into an API client. A
// missing token means the account is not linked.
func (s *GitHubService) clientFor(ctx context.Context, userID string) (*github.Client, *model.GitHubToken, error) {
	token, err := s.tokens.GetTokenByUser(ctx, userID)
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			return nil, nil, apperror.Conflict(apperror.CodeGitHubNotConnected, "GitHub not linked")
		}
		return nil, nil, err
	}
	return s.githubAPI(token.AccessToken), token, nil
}
