package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/Gopi-techy/SkillSlate/internal/apperror"
	"github.com/Gopi-techy/SkillSlate/internal/model"
	"github.com/Gopi-techy/SkillSlate/internal/repository"
)

var _ repository.TokenRepository = (*DB)(nil)

// UpsertToken creates or replaces the user's GitHub token in one atomic statement.
// created_at survives relinking; everything else takes the new values.
func (db *DB) UpsertToken(ctx context.Context, token *model.GitHubToken) error {
	now := time.Now().UTC()
	token.UpdatedAt = now

	_, err := db.conn.ExecContext(ctx,
		`INSERT INTO github_tokens (user_id, access_token, token_type, scope, login, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(user_id) DO UPDATE SET
			access_token = excluded.access_token,
			token_type   = excluded.token_type,
			scope        = excluded.scope,
			login        = excluded.login,
			updated_at   = excluded.updated_at`,
		token.UserID,
		token.AccessToken,
		token.TokenType,
		token.Scope,
		token.Login,
		now,
		now,
	)
	if err != nil {
		return fmt.Errorf("sqlite: upserting github token for user %s: %w", token.UserID, err)
	}

	return nil
}

func (db *DB) GetTokenByUser(ctx context.Context, userID string) (*model.GitHubToken, error) {
	var t model.GitHubToken

	err := db.conn.QueryRowContext(ctx,
		`SELECT user_id, access_token, token_type, scope, login, created_at, updated_at
		 FROM github_tokens WHERE user_id = ?`,
		userID,
	).Scan(
		&t.UserID,
		&t.AccessToken,
		&t.TokenType,
		&t.Scope,
		&t.Login,
		&t.CreatedAt,
		&t.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("GitHub token")
		}
		return nil, fmt.Errorf("sqlite: getting github token for user %s: %w", userID, err)
	}

	return &t, nil
}

func (db *DB) DeleteTokenByUser(ctx context.Context, userID string) error {
	_, err := db.conn.ExecContext(ctx,
		`DELETE FROM github_tokens WHERE user_id = ?`, userID,
	)
	if err != nil {
		return fmt.Errorf("sqlite: deleting github token for user %s: %w", userID, err)
	}
	return nil
}
