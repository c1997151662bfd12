package sqlite

import (
	"context"
	"errors"
	"testing"

	"github.com/Gopi-techy/SkillSlate/internal/apperror"
	"github.com/Gopi-techy/SkillSlate/internal/model"
)

func TestTokenUpsert(t *testing.T) {
	db := newTestDB(t)
	user := createTestUser(t, db, "Alice", "alice@example.com")

	first := &model.GitHubToken{
		UserID:      user.ID,
		AccessToken: "gho_first",
		TokenType:   "bearer",
		Scope:       "repo",
		Login:       "alice",
	}
	if err := db.UpsertToken(context.Background(), first); err != nil {
		t.Fatalf("Upsert() error = %v", err)
	}

	second := &model.GitHubToken{
		UserID:      user.ID,
		AccessToken: "gho_second",
		TokenType:   "bearer",
		Scope:       "repo,workflow",
		Login:       "alice",
	}
	if err := db.UpsertToken(context.Background(), second); err != nil {
		t.Fatalf("Upsert() second error = %v", err)
	}

	got, err := db.GetTokenByUser(context.Background(), user.ID)
	if err != nil {
		t.Fatalf("GetByUser() error = %v", err)
	}
	if got.AccessToken != "gho_second" {
		t.Errorf("AccessToken = %q, want the replacement token", got.AccessToken)
	}
	if got.Scope != "repo,workflow" {
		t.Errorf("Scope = %q, want %q", got.Scope, "repo,workflow")
	}
}

func TestTokenGetByUser_NotFound(t *testing.T) {
	db := newTestDB(t)
	user := createTestUser(t, db, "Alice", "alice@example.com")

	_, err := db.GetTokenByUser(context.Background(), user.ID)
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Fatalf("GetByUser() error = %v, want ErrNotFound", err)
	}
}

func TestTokenDeleteByUser(t *testing.T) {
	db := newTestDB(t)
	user := createTestUser(t, db, "Alice", "alice@example.com")

	tok := &model.GitHubToken{UserID: user.ID, AccessToken: "gho_x", TokenType: "bearer"}
	if err := db.UpsertToken(context.Background(), tok); err != nil {
		t.Fatalf("Upsert() error = %v", err)
	}

	if err := db.DeleteTokenByUser(context.Background(), user.ID); err != nil {
		t.Fatalf("DeleteByUser() error = %v", err)
	}

	if _, err := db.GetTokenByUser(context.Background(), user.ID); !errors.Is(err, apperror.ErrNotFound) {
		t.Fatalf("GetByUser() after delete error = %v, want ErrNotFound", err)
	}

	// Deleting when nothing is stored is not an error.
	if err := db.DeleteTokenByUser(context.Background(), user.ID); err != nil {
		t.Fatalf("DeleteByUser() on empty error = %v", err)
	}
}
