package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Gopi-techy/SkillSlate/internal/auth"
	"github.com/Gopi-techy/SkillSlate/internal/github"
	"github.com/Gopi-techy/SkillSlate/internal/handler"
	"github.com/Gopi-techy/SkillSlate/internal/model"
	sqliteRepo "github.com/Gopi-techy/SkillSlate/internal/repository/sqlite"
	"github.com/Gopi-techy/SkillSlate/internal/service"
)

// newGitHubAPI mounts the GitHub routes over a stub api.github.com and
// returns the router plus a bearer token for a user with a linked account.
func newGitHubAPI(t *testing.T, mux map[string]http.HandlerFunc) (*chi.Mux, string) {
	t.Helper()

	db, err := sqliteRepo.New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	tokens, err := auth.NewTokenService("test-secret-key-at-least-16", time.Hour)
	require.NoError(t, err)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fn, ok := mux[r.Method+" "+r.URL.Path]
		if !ok {
			t.Errorf("unexpected GitHub request: %s %s", r.Method, r.URL.Path)
			w.WriteHeader(http.StatusTeapot)
			return
		}
		fn(w, r)
	}))
	t.Cleanup(srv.Close)
	factory := func(token string) *github.Client {
		return github.NewClientWithBaseURL(token, srv.URL)
	}

	githubSvc := service.NewGitHubService(db, db, db, nil, factory, logger)
	githubHandler := handler.NewGitHubHandler(githubSvc, logger)

	ctx := context.Background()
	user := &model.User{Name: "Alice", Email: "alice@example.com", PasswordHash: "x", GitHubConnected: true}
	require.NoError(t, db.CreateUser(ctx, user))
	require.NoError(t, db.UpsertToken(ctx, &model.GitHubToken{
		UserID: user.ID, AccessToken: "gho_x", TokenType: "bearer", Login: "alicehub",
	}))
	jwt, err := tokens.Generate(user.ID)
	require.NoError(t, err)

	r := chi.NewRouter()
	r.Route("/api/github", func(r chi.Router) {
		r.Use(auth.RequireAuth(tokens))
		r.Post("/deploy", githubHandler.HandleDeploy)
		r.Get("/status", githubHandler.HandleStatus)
	})
	return r, jwt
}

func TestGitHubDeploy_UpstreamErrorKeepsMessage(t *testing.T) {
	respond := func(status int, v any) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(status)
			json.NewEncoder(w).Encode(v)
		}
	}
	router, jwt := newGitHubAPI(t, map[string]http.HandlerFunc{
		"GET /repos/alicehub/site": respond(http.StatusOK,
			github.Repository{Name: "site", FullName: "alicehub/site", DefaultBranch: "main"}),
		"GET /repos/alicehub/site/git/ref/heads/main": respond(http.StatusNotFound,
			map[string]string{"message": "Not Found"}),
		"POST /repos/alicehub/site/git/blobs": respond(http.StatusForbidden,
			map[string]string{"message": "secondary rate limit exceeded"}),
	})

	body, _ := json.Marshal(map[string]any{
		"repo":  "site",
		"files": map[string]string{"index.html": "<html></html>"},
	})
	req := httptest.NewRequest(http.MethodPost, "/api/github/deploy", bytes.NewReader(body))
	req.Header.Set("Authorization", "Bearer "+jwt)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusBadGateway, rr.Code)
	assert.Equal(t, "secondary rate limit exceeded", decodeBody(t, rr)["message"])
}

func TestGitHubStatus_IncludesCNAME(t *testing.T) {
	router, jwt := newGitHubAPI(t, map[string]http.HandlerFunc{
		"GET /repos/alicehub/site/pages": func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"status": "built", "cname": "www.example.com", "html_url": "https://alicehub.github.io/site/"}`))
		},
	})

	req := httptest.NewRequest(http.MethodGet, "/api/github/status?repo=site", nil)
	req.Header.Set("Authorization", "Bearer "+jwt)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	body := decodeBody(t, rr)
	assert.Equal(t, true, body["enabled"])
	assert.Equal(t, "www.example.com", body["cname"])
	assert.Equal(t, "built", body["status"])
}
