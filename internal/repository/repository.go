// Package repository declares the storage interfaces consumed by the service
// layer. The sqlite subpackage implements them; tests substitute in-memory
// fakes.
package repository

import (
	"context"

	"github.com/Gopi-techy/SkillSlate/internal/model"
)

type UserRepository interface {
	// CreateUser inserts a new user. Fails with apperror.ErrConflict
	// (EMAIL_TAKEN) when the email is already registered — the unique index
	// on email is what makes this safe under concurrent registration.
	CreateUser(ctx context.Context, user *model.User) error
	GetUserByID(ctx context.Context, id string) (*model.User, error)
	GetUserByEmail(ctx context.Context, email string) (*model.User, error)
	UpdateLastLogin(ctx context.Context, id string) error
	SetGitHubConnected(ctx context.Context, id string, connected bool) error
}

type TokenRepository interface {
	// UpsertToken creates or replaces the user's GitHub token — at most one
	// per user, keyed by UserID.
	UpsertToken(ctx context.Context, token *model.GitHubToken) error
	GetTokenByUser(ctx context.Context, userID string) (*model.GitHubToken, error)
	DeleteTokenByUser(ctx context.Context, userID string) error
}

type PortfolioRepository interface {
	CreatePortfolio(ctx context.Context, p *model.Portfolio) error
	// GetOwned scopes by both id and owner; a portfolio owned by someone
	// else yields apperror.ErrNotFound, never a permission error.
	GetOwned(ctx context.Context, id, userID string) (*model.Portfolio, error)
	ListByUser(ctx context.Context, userID string) ([]model.Portfolio, error)
	CountByUser(ctx context.Context, userID string) (int, error)
	UpdatePortfolio(ctx context.Context, p *model.Portfolio) error
	UpdateStatus(ctx context.Context, id, status, url, repo string) error
	UpdateContent(ctx context.Context, id string, data *model.PortfolioData, html string, settings map[string]any) error
	// DeletePortfolio returns false (not an error) when nothing matched
	// id+owner.
	DeletePortfolio(ctx context.Context, id, userID string) (bool, error)
}

type DeploymentRepository interface {
	// UpsertDeployment creates or updates the record for the (user, repo)
	// pair. Empty URL or commit values leave the stored ones untouched, so
	// the push and pages steps can each persist the half they know.
	UpsertDeployment(ctx context.Context, d *model.Deployment) error
	GetDeployment(ctx context.Context, userID, repo string) (*model.Deployment, error)
}
