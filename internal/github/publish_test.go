package github

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

// fakeAPI is a minimal stand-in for the GitHub REST API. Handlers are keyed
// by "METHOD path"; unmatched requests fail the test.
type fakeAPI struct {
	t        *testing.T
	mux      map[string]http.HandlerFunc
	requests []string
}

func newFakeAPI(t *testing.T) *fakeAPI {
	return &fakeAPI{t: t, mux: map[string]http.HandlerFunc{}}
}

func (f *fakeAPI) handle(key string, fn http.HandlerFunc) {
	f.mux[key] = fn
}

func (f *fakeAPI) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	key := r.Method + " " + r.URL.Path
	f.requests = append(f.requests, key)
	fn, ok := f.mux[key]
	if !ok {
		f.t.Errorf("unexpected request: %s", key)
		w.WriteHeader(http.StatusTeapot)
		return
	}
	fn(w, r)
}

func respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func newTestPublisher(t *testing.T, api *fakeAPI) *Publisher {
	t.Helper()
	srv := httptest.NewServer(api)
	t.Cleanup(srv.Close)
	client := NewClientWithBaseURL("gho_test", srv.URL)
	p := NewPublisher(client, slog.New(slog.NewTextHandler(io.Discard, nil)))
	p.retryDelay = time.Millisecond
	return p
}

func TestPublish_FreshRepo(t *testing.T) {
	api := newFakeAPI(t)

	var sawParents bool
	api.handle("GET /repos/alice/my-site", func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, http.StatusNotFound, map[string]string{"message": "Not Found"})
	})
	api.handle("POST /user/repos", func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, http.StatusCreated, Repository{
			Name: "my-site", FullName: "alice/my-site", DefaultBranch: "main",
		})
	})
	api.handle("GET /repos/alice/my-site/git/ref/heads/main", func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, http.StatusNotFound, map[string]string{"message": "Not Found"})
	})
	api.handle("POST /repos/alice/my-site/git/blobs", func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, http.StatusCreated, map[string]string{"sha": "blob1"})
	})
	api.handle("POST /repos/alice/my-site/git/trees", func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		json.NewDecoder(r.Body).Decode(&body)
		if _, ok := body["base_tree"]; ok {
			t.Error("tree for a fresh branch must not carry base_tree")
		}
		respondJSON(w, http.StatusCreated, map[string]string{"sha": "tree1"})
	})
	api.handle("POST /repos/alice/my-site/git/commits", func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		json.NewDecoder(r.Body).Decode(&body)
		if _, ok := body["parents"]; ok {
			sawParents = true
		}
		respondJSON(w, http.StatusCreated, map[string]string{"sha": "commit1"})
	})
	api.handle("POST /repos/alice/my-site/git/refs", func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, http.StatusCreated, Reference{Ref: "refs/heads/main"})
	})
	api.handle("POST /repos/alice/my-site/pages", func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, http.StatusCreated, map[string]string{"status": "building"})
	})

	p := newTestPublisher(t, api)
	res, err := p.Publish(context.Background(), PublishRequest{
		Owner: "alice",
		Repo:  "my-site",
		Files: map[string]string{"index.html": "<html></html>"},
	})
	if err != nil {
		t.Fatalf("Publish() error = %v", err)
	}

	if !res.RepoCreated {
		t.Error("RepoCreated should be true for a fresh repository")
	}
	if !res.PagesConfirmed {
		t.Error("PagesConfirmed should be true")
	}
	if res.CommitSHA != "commit1" {
		t.Errorf("CommitSHA = %q, want %q", res.CommitSHA, "commit1")
	}
	if res.URL != "https://alice.github.io/my-site/" {
		t.Errorf("URL = %q", res.URL)
	}
	if sawParents {
		t.Error("first commit on a fresh branch must have no parents")
	}
}

func TestPublish_ExistingRepoAndBranch(t *testing.T) {
	api := newFakeAPI(t)

	var gotBaseTree, gotParent, gotForce bool
	api.handle("GET /repos/alice/my-site", func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, http.StatusOK, Repository{
			Name: "my-site", FullName: "alice/my-site", DefaultBranch: "main",
		})
	})
	api.handle("GET /repos/alice/my-site/git/ref/heads/main", func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, http.StatusOK, map[string]any{
			"ref":    "refs/heads/main",
			"object": map[string]string{"sha": "head1", "type": "commit"},
		})
	})
	api.handle("GET /repos/alice/my-site/git/commits/head1", func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, http.StatusOK, map[string]any{
			"sha":  "head1",
			"tree": map[string]string{"sha": "basetree1"},
		})
	})
	api.handle("POST /repos/alice/my-site/git/blobs", func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, http.StatusCreated, map[string]string{"sha": "blob1"})
	})
	api.handle("POST /repos/alice/my-site/git/trees", func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		json.NewDecoder(r.Body).Decode(&body)
		gotBaseTree = body["base_tree"] == "basetree1"
		respondJSON(w, http.StatusCreated, map[string]string{"sha": "tree1"})
	})
	api.handle("POST /repos/alice/my-site/git/commits", func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Parents []string `json:"parents"`
		}
		json.NewDecoder(r.Body).Decode(&body)
		gotParent = len(body.Parents) == 1 && body.Parents[0] == "head1"
		respondJSON(w, http.StatusCreated, map[string]string{"sha": "commit2"})
	})
	api.handle("PATCH /repos/alice/my-site/git/refs/heads/main", func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Force bool `json:"force"`
		}
		json.NewDecoder(r.Body).Decode(&body)
		gotForce = body.Force
		respondJSON(w, http.StatusOK, Reference{Ref: "refs/heads/main"})
	})
	api.handle("POST /repos/alice/my-site/pages", func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, http.StatusConflict,
			map[string]string{"message": "GitHub Pages is already enabled"})
	})

	p := newTestPublisher(t, api)
	res, err := p.Publish(context.Background(), PublishRequest{
		Owner: "alice",
		Repo:  "my-site",
		Files: map[string]string{"index.html": "<html></html>"},
	})
	if err != nil {
		t.Fatalf("Publish() error = %v", err)
	}

	if res.RepoCreated {
		t.Error("RepoCreated should be false when the repo already exists")
	}
	for _, req := range api.requests {
		if req == "POST /user/repos" {
			t.Error("an existing repo must not trigger a create attempt")
		}
	}
	if !res.PagesConfirmed {
		t.Error("a 409 from the Pages endpoint means already enabled, which is success")
	}
	if !gotBaseTree {
		t.Error("tree on an existing branch must carry the head commit's tree as base_tree")
	}
	if !gotParent {
		t.Error("commit on an existing branch must have the previous head as parent")
	}
	if !gotForce {
		t.Error("ref update must be forced")
	}
}

func TestEnsureRepo_CreateLosesNameRace(t *testing.T) {
	api := newFakeAPI(t)

	getCalls := 0
	api.handle("GET /repos/alice/my-site", func(w http.ResponseWriter, r *http.Request) {
		getCalls++
		if getCalls == 1 {
			respondJSON(w, http.StatusNotFound, map[string]string{"message": "Not Found"})
			return
		}
		respondJSON(w, http.StatusOK, Repository{
			Name: "my-site", FullName: "alice/my-site", DefaultBranch: "main",
		})
	})
	api.handle("POST /user/repos", func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, http.StatusUnprocessableEntity,
			map[string]string{"message": "name already exists on this account"})
	})

	p := newTestPublisher(t, api)
	repo, created, err := p.EnsureRepo(context.Background(), "alice", "my-site", "")
	if err != nil {
		t.Fatalf("EnsureRepo() error = %v", err)
	}
	if created {
		t.Error("created should be false when the 422 fallback resolved the repo")
	}
	if repo.FullName != "alice/my-site" {
		t.Errorf("FullName = %q, want %q", repo.FullName, "alice/my-site")
	}
	if getCalls != 2 {
		t.Errorf("repo resolved %d times, want 2", getCalls)
	}
}

func TestPublish_PagesRetriesAfterNotFound(t *testing.T) {
	api := newFakeAPI(t)

	pagesCalls := 0
	api.handle("GET /repos/alice/my-site", func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, http.StatusNotFound, map[string]string{"message": "Not Found"})
	})
	api.handle("POST /user/repos", func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, http.StatusCreated, Repository{Name: "my-site", FullName: "alice/my-site"})
	})
	api.handle("GET /repos/alice/my-site/git/ref/heads/main", func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, http.StatusNotFound, map[string]string{"message": "Not Found"})
	})
	api.handle("POST /repos/alice/my-site/git/blobs", func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, http.StatusCreated, map[string]string{"sha": "blob1"})
	})
	api.handle("POST /repos/alice/my-site/git/trees", func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, http.StatusCreated, map[string]string{"sha": "tree1"})
	})
	api.handle("POST /repos/alice/my-site/git/commits", func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, http.StatusCreated, map[string]string{"sha": "commit1"})
	})
	api.handle("POST /repos/alice/my-site/git/refs", func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, http.StatusCreated, Reference{})
	})
	api.handle("POST /repos/alice/my-site/pages", func(w http.ResponseWriter, r *http.Request) {
		pagesCalls++
		if pagesCalls == 1 {
			respondJSON(w, http.StatusNotFound, map[string]string{"message": "Not Found"})
			return
		}
		respondJSON(w, http.StatusCreated, map[string]string{"status": "building"})
	})

	p := newTestPublisher(t, api)
	res, err := p.Publish(context.Background(), PublishRequest{
		Owner: "alice",
		Repo:  "my-site",
		Files: map[string]string{"index.html": "<html></html>"},
	})
	if err != nil {
		t.Fatalf("Publish() error = %v", err)
	}

	if pagesCalls != 2 {
		t.Errorf("pages endpoint called %d times, want 2", pagesCalls)
	}
	if !res.PagesConfirmed {
		t.Error("PagesConfirmed should be true after a successful retry")
	}
}

func TestPublish_PagesSoftFailure(t *testing.T) {
	api := newFakeAPI(t)

	pagesCalls := 0
	api.handle("GET /repos/alice/my-site", func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, http.StatusNotFound, map[string]string{"message": "Not Found"})
	})
	api.handle("POST /user/repos", func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, http.StatusCreated, Repository{Name: "my-site", FullName: "alice/my-site"})
	})
	api.handle("GET /repos/alice/my-site/git/ref/heads/main", func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, http.StatusNotFound, map[string]string{"message": "Not Found"})
	})
	api.handle("POST /repos/alice/my-site/git/blobs", func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, http.StatusCreated, map[string]string{"sha": "blob1"})
	})
	api.handle("POST /repos/alice/my-site/git/trees", func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, http.StatusCreated, map[string]string{"sha": "tree1"})
	})
	api.handle("POST /repos/alice/my-site/git/commits", func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, http.StatusCreated, map[string]string{"sha": "commit1"})
	})
	api.handle("POST /repos/alice/my-site/git/refs", func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, http.StatusCreated, Reference{})
	})
	api.handle("POST /repos/alice/my-site/pages", func(w http.ResponseWriter, r *http.Request) {
		pagesCalls++
		respondJSON(w, http.StatusNotFound, map[string]string{"message": "Not Found"})
	})

	p := newTestPublisher(t, api)
	res, err := p.Publish(context.Background(), PublishRequest{
		Owner: "alice",
		Repo:  "my-site",
		Files: map[string]string{"index.html": "<html></html>"},
	})
	if err != nil {
		t.Fatalf("Publish() should not fail when only Pages is unconfirmed, got %v", err)
	}

	if pagesCalls != pagesRetries {
		t.Errorf("pages endpoint called %d times, want %d", pagesCalls, pagesRetries)
	}
	if res.PagesConfirmed {
		t.Error("PagesConfirmed should be false after retries run out")
	}
	if res.URL != "https://alice.github.io/my-site/" {
		t.Errorf("URL = %q, should still be the deterministic Pages URL", res.URL)
	}
}

func TestPublish_NoFiles(t *testing.T) {
	p := newTestPublisher(t, newFakeAPI(t))
	if _, err := p.Publish(context.Background(), PublishRequest{Owner: "alice", Repo: "x"}); err == nil {
		t.Fatal("Publish() with no files should fail")
	}
}

func TestPagesURL(t *testing.T) {
	tests := []struct {
		owner, repo, path string
		want              string
	}{
		{"alice", "site", "/", "https://alice.github.io/site/"},
		{"alice", "site", "", "https://alice.github.io/site/"},
		{"Alice", "site", "/", "https://alice.github.io/site/"},
		{"alice", "site", "/docs", "https://alice.github.io/site/docs"},
	}
	for _, tt := range tests {
		if got := PagesURL(tt.owner, tt.repo, tt.path); got != tt.want {
			t.Errorf("PagesURL(%q, %q, %q) = %q, want %q", tt.owner, tt.repo, tt.path, got, tt.want)
		}
	}
}
