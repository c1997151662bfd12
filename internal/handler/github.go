package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/Gopi-techy/SkillSlate/internal/auth"
	"github.com/Gopi-techy/SkillSlate/internal/github"
	"github.com/Gopi-techy/SkillSlate/internal/service"
)

// GitHubHandler serves the GitHub integration under /api/github: OAuth
// linking, account introspection, repository management and publishing.
type GitHubHandler struct {
	github *service.GitHubService
	logger *slog.Logger
}

func NewGitHubHandler(githubSvc *service.GitHubService, logger *slog.Logger) *GitHubHandler {
	return &GitHubHandler{github: githubSvc, logger: logger}
}

// HandleAuthorize returns the GitHub consent page URL.
//
// GET /api/github/authorize?state=...
func (h *GitHubHandler) HandleAuthorize(w http.ResponseWriter, r *http.Request) {
	state := r.URL.Query().Get("state")
	writeJSON(w, http.StatusOK, map[string]any{
		"url": h.github.AuthorizeURL(state),
	})
}

// HandleCallback exchanges the OAuth code for an access token and echoes the
// state so the client can bind it to its session.
//
// GET /api/github/callback?code=...&state=...
func (h *GitHubHandler) HandleCallback(w http.ResponseWriter, r *http.Request) {
	code := r.URL.Query().Get("code")
	state := r.URL.Query().Get("state")

	accessToken, tokenType, err := h.github.ExchangeCode(r.Context(), code)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"message":      "GitHub token issued",
		"token_type":   tokenType,
		"access_token": accessToken,
		"state":        state,
	})
}

// HandleLink stores a GitHub access token for the authenticated user.
//
// POST /api/github/link {"access_token", "token_type"}
func (h *GitHubHandler) HandleLink(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())

	var req struct {
		AccessToken string `json:"access_token"`
		TokenType   string `json:"token_type"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"message": "Invalid JSON body"})
		return
	}

	if err := h.github.Link(r.Context(), userID, req.AccessToken, req.TokenType); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"message": "GitHub linked"})
}

// HandleUnlink removes the stored GitHub connection.
//
// DELETE /api/github/link
func (h *GitHubHandler) HandleUnlink(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())

	if err := h.github.Unlink(r.Context(), userID); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"message": "GitHub unlinked"})
}

// HandleMe returns the linked GitHub account.
//
// GET /api/github/me
func (h *GitHubHandler) HandleMe(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())

	account, err := h.github.Me(r.Context(), userID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, account)
}

// HandleListRepos lists the user's repositories.
//
// GET /api/github/repos
func (h *GitHubHandler) HandleListRepos(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())

	repos, err := h.github.Repos(r.Context(), userID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, repos)
}

// HandleCreateRepo creates a repository on the user's account.
//
// POST /api/github/repos {"name", "description", "private"}
func (h *GitHubHandler) HandleCreateRepo(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())

	var req github.CreateRepoRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"message": "Invalid JSON body"})
		return
	}

	repo, err := h.github.CreateRepo(r.Context(), userID, req)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, repo)
}

// HandleEnablePages switches on GitHub Pages for a repository.
//
// POST /api/github/deploy/pages {"owner", "repo", "branch"}
func (h *GitHubHandler) HandleEnablePages(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())

	var req struct {
		Owner  string `json:"owner"`
		Repo   string `json:"repo"`
		Branch string `json:"branch"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"message": "Invalid JSON body"})
		return
	}

	confirmed, err := h.github.EnablePages(r.Context(), userID, req.Owner, req.Repo, req.Branch)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"message":   "Pages enabled",
		"confirmed": confirmed,
	})
}

// HandlePush commits files to a repository branch.
//
// POST /api/github/push {"owner", "repo", "branch", "message", "files"}
func (h *GitHubHandler) HandlePush(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())

	var req service.PushRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"message": "Invalid JSON body"})
		return
	}

	commit, err := h.github.Push(r.Context(), userID, req)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"message": "Pushed",
		"commit":  commit,
	})
}

// HandleDeploy runs the one-shot deploy: repo creation if needed, push, and
// Pages enablement.
//
// POST /api/github/deploy {"repo", "branch", "message", "files"}
func (h *GitHubHandler) HandleDeploy(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())

	var req service.DeployRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"message": "Invalid JSON body"})
		return
	}

	result, err := h.github.Deploy(r.Context(), userID, req)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"message": "Deployed",
		"url":     result.URL,
		"result":  result,
	})
}

// HandleStatus reports the Pages state of a repository.
//
// GET /api/github/status?repo=...
func (h *GitHubHandler) HandleStatus(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())

	status, err := h.github.Status(r.Context(), userID, r.URL.Query().Get("repo"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, status)
}
