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

var _ repository.DeploymentRepository = (*DB)(nil)

// UpsertDeployment writes the deployment record for the (user, repo) pair. The push
// step records the commit before the URL is known, and the pages step records
// the URL without a commit — empty values therefore keep whatever is stored.
func (db *DB) UpsertDeployment(ctx context.Context, d *model.Deployment) error {
	now := time.Now().UTC()
	d.UpdatedAt = now
	if d.Branch == "" {
		d.Branch = "main"
	}

	_, err := db.conn.ExecContext(ctx,
		`INSERT INTO deployments (user_id, repo, branch, url, last_commit, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(user_id, repo) DO UPDATE SET
			branch      = excluded.branch,
			url         = CASE WHEN excluded.url = '' THEN deployments.url ELSE excluded.url END,
			last_commit = CASE WHEN excluded.last_commit = '' THEN deployments.last_commit ELSE excluded.last_commit END,
			updated_at  = excluded.updated_at`,
		d.UserID,
		d.Repo,
		d.Branch,
		d.URL,
		d.LastCommit,
		now,
		now,
	)
	if err != nil {
		return fmt.Errorf("sqlite: upserting deployment %s/%s: %w", d.UserID, d.Repo, err)
	}

	return nil
}

func (db *DB) GetDeployment(ctx context.Context, userID, repo string) (*model.Deployment, error) {
	var d model.Deployment

	err := db.conn.QueryRowContext(ctx,
		`SELECT user_id, repo, branch, url, last_commit, created_at, updated_at
		 FROM deployments WHERE user_id = ? AND repo = ?`,
		userID, repo,
	).Scan(
		&d.UserID,
		&d.Repo,
		&d.Branch,
		&d.URL,
		&d.LastCommit,
		&d.CreatedAt,
		&d.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("Deployment")
		}
		return nil, fmt.Errorf("sqlite: getting deployment %s/%s: %w", userID, repo, err)
	}

	return &d, nil
}
