package handler_test

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/Gopi-techy/SkillSlate/internal/auth"
	"github.com/Gopi-techy/SkillSlate/internal/handler"
	sqliteRepo "github.com/Gopi-techy/SkillSlate/internal/repository/sqlite"
	"github.com/Gopi-techy/SkillSlate/internal/service"
)

// testAPI is a router with the auth and portfolio routes mounted the same
// way the server mounts them, backed by an in-memory database.
type testAPI struct {
	router *chi.Mux
}

func newTestAPI(t *testing.T) *testAPI {
	t.Helper()

	db, err := sqliteRepo.New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	tokens, err := auth.NewTokenService("test-secret-key-at-least-16", time.Hour)
	require.NoError(t, err)
	passwords := auth.NewPasswordServiceWithCost(bcrypt.MinCost)

	authSvc := service.NewAuthService(db, tokens, passwords, nil, logger)
	portfolioSvc := service.NewPortfolioService(db, db, db, db, nil, logger)

	authHandler := handler.NewAuthHandler(authSvc, logger)
	portfolioHandler := handler.NewPortfolioHandler(portfolioSvc, logger)

	requireAuth := auth.RequireAuth(tokens)

	r := chi.NewRouter()
	r.Route("/api", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.Post("/register", authHandler.HandleRegister)
			r.Post("/login", authHandler.HandleLogin)
			r.Group(func(r chi.Router) {
				r.Use(requireAuth)
				r.Get("/profile", authHandler.HandleProfile)
				r.Get("/verify", authHandler.HandleVerify)
			})
		})
		r.Route("/portfolio", func(r chi.Router) {
			r.Use(requireAuth)
			r.Get("/", portfolioHandler.HandleList)
			r.Post("/", portfolioHandler.HandleCreate)
			r.Get("/stats", portfolioHandler.HandleStats)
			r.Get("/{id}", portfolioHandler.HandleGet)
			r.Delete("/{id}", portfolioHandler.HandleDelete)
		})
	})

	return &testAPI{router: r}
}

func (a *testAPI) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rr := httptest.NewRecorder()
	a.router.ServeHTTP(rr, req)
	return rr
}

func decodeBody(t *testing.T, rr *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&out))
	return out
}

// register creates an account and returns its JWT.
func (a *testAPI) register(t *testing.T, name, email, password string) string {
	t.Helper()
	rr := a.do(t, http.MethodPost, "/api/auth/register", "", map[string]string{
		"name": name, "email": email, "password": password,
	})
	require.Equal(t, http.StatusCreated, rr.Code)

	body := decodeBody(t, rr)
	user, ok := body["user"].(map[string]any)
	require.True(t, ok)
	token, ok := user["token"].(string)
	require.True(t, ok)
	require.NotEmpty(t, token)
	return token
}

func TestRegisterAndLogin(t *testing.T) {
	api := newTestAPI(t)

	t.Run("register returns user and token", func(t *testing.T) {
		rr := api.do(t, http.MethodPost, "/api/auth/register", "", map[string]string{
			"name": "Alice", "email": "alice@example.com", "password": "secret1",
		})
		assert.Equal(t, http.StatusCreated, rr.Code)

		body := decodeBody(t, rr)
		assert.Equal(t, "User registered successfully", body["message"])
		user := body["user"].(map[string]any)
		assert.Equal(t, "Alice", user["name"])
		assert.Equal(t, "alice@example.com", user["email"])
		assert.NotEmpty(t, user["token"])
		assert.NotContains(t, user, "password")
	})

	t.Run("duplicate email rejected", func(t *testing.T) {
		rr := api.do(t, http.MethodPost, "/api/auth/register", "", map[string]string{
			"name": "Alice Again", "email": "alice@example.com", "password": "secret1",
		})
		assert.Equal(t, http.StatusBadRequest, rr.Code)

		body := decodeBody(t, rr)
		assert.Equal(t, "EMAIL_TAKEN", body["code"])
	})

	t.Run("validation errors listed per field", func(t *testing.T) {
		rr := api.do(t, http.MethodPost, "/api/auth/register", "", map[string]string{
			"name": "A", "email": "not-an-email", "password": "123",
		})
		assert.Equal(t, http.StatusBadRequest, rr.Code)

		body := decodeBody(t, rr)
		errs, ok := body["errors"].(map[string]any)
		require.True(t, ok)
		assert.Contains(t, errs, "name")
		assert.Contains(t, errs, "email")
		assert.Contains(t, errs, "password")
	})

	t.Run("password over the bcrypt bound is a 400, not a 500", func(t *testing.T) {
		rr := api.do(t, http.MethodPost, "/api/auth/register", "", map[string]string{
			"name": "Bob", "email": "bob-long@example.com", "password": strings.Repeat("p", 100),
		})
		assert.Equal(t, http.StatusBadRequest, rr.Code)

		body := decodeBody(t, rr)
		errs, ok := body["errors"].(map[string]any)
		require.True(t, ok)
		assert.Contains(t, errs, "password")
	})

	t.Run("login succeeds with registered credentials", func(t *testing.T) {
		rr := api.do(t, http.MethodPost, "/api/auth/login", "", map[string]string{
			"email": "alice@example.com", "password": "secret1",
		})
		assert.Equal(t, http.StatusOK, rr.Code)

		body := decodeBody(t, rr)
		assert.Equal(t, "Login successful", body["message"])
		user := body["user"].(map[string]any)
		assert.NotEmpty(t, user["token"])
	})

	t.Run("wrong password and unknown email get the same answer", func(t *testing.T) {
		wrongPass := api.do(t, http.MethodPost, "/api/auth/login", "", map[string]string{
			"email": "alice@example.com", "password": "nope123",
		})
		unknown := api.do(t, http.MethodPost, "/api/auth/login", "", map[string]string{
			"email": "ghost@example.com", "password": "nope123",
		})
		assert.Equal(t, http.StatusUnauthorized, wrongPass.Code)
		assert.Equal(t, http.StatusUnauthorized, unknown.Code)
		assert.Equal(t, decodeBody(t, wrongPass)["message"], decodeBody(t, unknown)["message"])
	})

	t.Run("invalid JSON body", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/api/auth/register", bytes.NewBufferString(`{"name":`))
		rr := httptest.NewRecorder()
		api.router.ServeHTTP(rr, req)
		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})
}

func TestProtectedRoutes(t *testing.T) {
	api := newTestAPI(t)
	token := api.register(t, "Bob", "bob@example.com", "secret1")

	t.Run("profile with token", func(t *testing.T) {
		rr := api.do(t, http.MethodGet, "/api/auth/profile", token, nil)
		assert.Equal(t, http.StatusOK, rr.Code)

		user := decodeBody(t, rr)["user"].(map[string]any)
		assert.Equal(t, "bob@example.com", user["email"])
	})

	t.Run("verify with token", func(t *testing.T) {
		rr := api.do(t, http.MethodGet, "/api/auth/verify", token, nil)
		assert.Equal(t, http.StatusOK, rr.Code)
		assert.Equal(t, "Token is valid", decodeBody(t, rr)["message"])
	})

	t.Run("missing token rejected", func(t *testing.T) {
		rr := api.do(t, http.MethodGet, "/api/auth/profile", "", nil)
		assert.Equal(t, http.StatusUnauthorized, rr.Code)
	})

	t.Run("garbage token rejected", func(t *testing.T) {
		rr := api.do(t, http.MethodGet, "/api/auth/profile", "not.a.jwt", nil)
		assert.Equal(t, http.StatusUnauthorized, rr.Code)
	})
}
