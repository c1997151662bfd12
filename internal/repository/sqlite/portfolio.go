package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rs/xid"

	"github.com/Gopi-techy/SkillSlate/internal/apperror"
	"github.com/Gopi-techy/SkillSlate/internal/model"
	"github.com/Gopi-techy/SkillSlate/internal/repository"
)

var _ repository.PortfolioRepository = (*DB)(nil)

// The structured data and settings documents are stored as JSON text columns;
// marshalling happens only at this boundary.

func (db *DB) CreatePortfolio(ctx context.Context, p *model.Portfolio) error {
	now := time.Now().UTC()
	p.ID = xid.New().String()
	p.CreatedAt = now
	p.UpdatedAt = now
	if p.Status == "" {
		p.Status = model.StatusDraft
	}

	data, err := marshalJSONColumn(p.Data)
	if err != nil {
		return fmt.Errorf("sqlite: encoding portfolio data: %w", err)
	}
	settings, err := marshalJSONColumn(p.Settings)
	if err != nil {
		return fmt.Errorf("sqlite: encoding portfolio settings: %w", err)
	}

	_, err = db.conn.ExecContext(ctx,
		`INSERT INTO portfolios (id, user_id, name, template, status, url, github_repo, data, html, settings, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		p.ID,
		p.UserID,
		p.Name,
		p.Template,
		p.Status,
		p.URL,
		p.GitHubRepo,
		data,
		p.HTML,
		settings,
		p.CreatedAt,
		p.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("sqlite: inserting portfolio: %w", err)
	}

	return nil
}

// GetOwned filters on both id and owner in the WHERE clause, so a portfolio
// belonging to another user is indistinguishable from one that doesn't exist.
func (db *DB) GetOwned(ctx context.Context, id, userID string) (*model.Portfolio, error) {
	row := db.conn.QueryRowContext(ctx,
		portfolioSelect+` WHERE id = ? AND user_id = ?`,
		id, userID,
	)

	p, err := scanPortfolio(row.Scan)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("Portfolio")
		}
		return nil, fmt.Errorf("sqlite: getting portfolio %s: %w", id, err)
	}

	return p, nil
}

func (db *DB) ListByUser(ctx context.Context, userID string) ([]model.Portfolio, error) {
	rows, err := db.conn.QueryContext(ctx,
		portfolioSelect+` WHERE user_id = ? ORDER BY created_at DESC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing portfolios for user %s: %w", userID, err)
	}
	defer rows.Close()

	portfolios := []model.Portfolio{}
	for rows.Next() {
		p, err := scanPortfolio(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("sqlite: scanning portfolio row: %w", err)
		}
		portfolios = append(portfolios, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating portfolio rows: %w", err)
	}

	return portfolios, nil
}

func (db *DB) CountByUser(ctx context.Context, userID string) (int, error) {
	var count int
	err := db.conn.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM portfolios WHERE user_id = ?`, userID,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("sqlite: counting portfolios for user %s: %w", userID, err)
	}
	return count, nil
}

func (db *DB) UpdatePortfolio(ctx context.Context, p *model.Portfolio) error {
	p.UpdatedAt = time.Now().UTC()

	data, err := marshalJSONColumn(p.Data)
	if err != nil {
		return fmt.Errorf("sqlite: encoding portfolio data: %w", err)
	}
	settings, err := marshalJSONColumn(p.Settings)
	if err != nil {
		return fmt.Errorf("sqlite: encoding portfolio settings: %w", err)
	}

	_, err = db.conn.ExecContext(ctx,
		`UPDATE portfolios
		 SET name = ?, template = ?, status = ?, url = ?, github_repo = ?,
		     data = ?, html = ?, settings = ?, updated_at = ?
		 WHERE id = ?`,
		p.Name,
		p.Template,
		p.Status,
		p.URL,
		p.GitHubRepo,
		data,
		p.HTML,
		settings,
		p.UpdatedAt,
		p.ID,
	)
	if err != nil {
		return fmt.Errorf("sqlite: updating portfolio %s: %w", p.ID, err)
	}

	return nil
}

// UpdateStatus sets the lifecycle status. URL and repo are written only when
// non-empty; reaching deployed also stamps last_deployed.
func (db *DB) UpdateStatus(ctx context.Context, id, status, url, repo string) error {
	now := time.Now().UTC()

	query := `UPDATE portfolios SET status = ?, updated_at = ?`
	args := []any{status, now}

	if url != "" {
		query += `, url = ?`
		args = append(args, url)
	}
	if repo != "" {
		query += `, github_repo = ?`
		args = append(args, repo)
	}
	if status == model.StatusDeployed {
		query += `, last_deployed = ?`
		args = append(args, now)
	}

	query += ` WHERE id = ?`
	args = append(args, id)

	if _, err := db.conn.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("sqlite: updating status of portfolio %s: %w", id, err)
	}
	return nil
}

func (db *DB) UpdateContent(ctx context.Context, id string, data *model.PortfolioData, html string, settings map[string]any) error {
	encoded, err := marshalJSONColumn(data)
	if err != nil {
		return fmt.Errorf("sqlite: encoding portfolio data: %w", err)
	}

	query := `UPDATE portfolios SET data = ?, html = ?, updated_at = ?`
	args := []any{encoded, html, time.Now().UTC()}

	if settings != nil {
		encodedSettings, err := marshalJSONColumn(settings)
		if err != nil {
			return fmt.Errorf("sqlite: encoding portfolio settings: %w", err)
		}
		query += `, settings = ?`
		args = append(args, encodedSettings)
	}

	query += ` WHERE id = ?`
	args = append(args, id)

	if _, err := db.conn.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("sqlite: updating content of portfolio %s: %w", id, err)
	}
	return nil
}

func (db *DB) DeletePortfolio(ctx context.Context, id, userID string) (bool, error) {
	res, err := db.conn.ExecContext(ctx,
		`DELETE FROM portfolios WHERE id = ? AND user_id = ?`,
		id, userID,
	)
	if err != nil {
		return false, fmt.Errorf("sqlite: deleting portfolio %s: %w", id, err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("sqlite: deleting portfolio %s: %w", id, err)
	}
	return affected > 0, nil
}

const portfolioSelect = `
	SELECT id, user_id, name, template, status, url, github_repo, data, html, settings, created_at, updated_at, last_deployed
	FROM portfolios`

// scanPortfolio works for both *sql.Row and *sql.Rows via their shared Scan
// signature.
func scanPortfolio(scan func(dest ...any) error) (*model.Portfolio, error) {
	var (
		p            model.Portfolio
		data         string
		settings     string
		lastDeployed sql.NullTime
	)

	err := scan(
		&p.ID,
		&p.UserID,
		&p.Name,
		&p.Template,
		&p.Status,
		&p.URL,
		&p.GitHubRepo,
		&data,
		&p.HTML,
		&settings,
		&p.CreatedAt,
		&p.UpdatedAt,
		&lastDeployed,
	)
	if err != nil {
		return nil, err
	}

	if data != "" {
		p.Data = &model.PortfolioData{}
		if err := json.Unmarshal([]byte(data), p.Data); err != nil {
			return nil, fmt.Errorf("decoding portfolio data: %w", err)
		}
	}
	if settings != "" {
		if err := json.Unmarshal([]byte(settings), &p.Settings); err != nil {
			return nil, fmt.Errorf("decoding portfolio settings: %w", err)
		}
	}
	if lastDeployed.Valid {
		t := lastDeployed.Time
		p.LastDeployed = &t
	}

	return &p, nil
}

// marshalJSONColumn encodes a value for a JSON text column, mapping nil to
// the empty string so absent documents stay absent.
func marshalJSONColumn(v any) (string, error) {
	switch val := v.(type) {
	case *model.PortfolioData:
		if val == nil {
			return "", nil
		}
	case map[string]any:
		if val == nil {
			return "", nil
		}
	}

	b, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	return string(b), nil
}
