package service

import (
	"context"
	"log/slog"
	"regexp"
	"strings"

	"github.com/Gopi-techy/SkillSlate/internal/apperror"
	"github.com/Gopi-techy/SkillSlate/internal/github"
	"github.com/Gopi-techy/SkillSlate/internal/model"
	"github.com/Gopi-techy/SkillSlate/internal/repository"
)

// PortfolioService manages the portfolio lifecycle: CRUD within the per-user
// cap, dashboard stats, and deployment to GitHub Pages.
type PortfolioService struct {
	portfolios  repository.PortfolioRepository
	users       repository.UserRepository
	ghTokens    repository.TokenRepository
	deployments repository.DeploymentRepository
	githubAPI   GitHubClientFactory
	log         *slog.Logger
}

func NewPortfolioService(
	portfolios repository.PortfolioRepository,
	users repository.UserRepository,
	ghTokens repository.TokenRepository,
	deployments repository.DeploymentRepository,
	githubAPI GitHubClientFactory,
	log *slog.Logger,
) *PortfolioService {
	if githubAPI == nil {
		githubAPI = github.NewClient
	}
	return &PortfolioService{
		portfolios:  portfolios,
		users:       users,
		ghTokens:    ghTokens,
		deployments: deployments,
		githubAPI:   githubAPI,
		log:         log,
	}
}

// CreateRequest carries the fields a client may set when creating a
// portfolio.
type CreateRequest struct {
	Name       string `json:"name"`
	Template   string `json:"template"`
	Status     string `json:"status"`
	URL        string `json:"url"`
	GitHubRepo string `json:"githubRepo"`
}

// Create adds a portfolio for the user, subject to the per-user cap.
func (s *PortfolioService) Create(ctx context.Context, userID string, req CreateRequest) (*model.Portfolio, error) {
	if req.Name == "" {
		return nil, apperror.ValidationFailed("name", "Portfolio name is required")
	}
	if req.Template == "" {
		return nil, apperror.ValidationFailed("template", "Template is required")
	}

	count, err := s.portfolios.CountByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if count >= model.MaxPortfoliosPerUser {
		return nil, apperror.Conflict(apperror.CodePortfolioLimit,
			"Portfolio limit reached. Maximum 2 portfolios allowed with GitHub Pages.")
	}

	p := &model.Portfolio{
		UserID:     userID,
		Name:       req.Name,
		Template:   req.Template,
		Status:     req.Status,
		URL:        req.URL,
		GitHubRepo: req.GitHubRepo,
	}
	if err := s.portfolios.CreatePortfolio(ctx, p); err != nil {
		return nil, err
	}

	s.log.Info("portfolio created", "portfolio_id", p.ID, "user_id", userID)
	return p, nil
}

// List returns the user's portfolios, newest first.
func (s *PortfolioService) List(ctx context.Context, userID string) ([]model.Portfolio, error) {
	return s.portfolios.ListByUser(ctx, userID)
}

// Get returns one portfolio owned by the user.
func (s *PortfolioService) Get(ctx context.Context, userID, id string) (*model.Portfolio, error) {
	return s.portfolios.GetOwned(ctx, id, userID)
}

// UpdateRequest carries optional updates; nil fields are left unchanged.
type UpdateRequest struct {
	Name       *string `json:"name"`
	Template   *string `json:"template"`
	Status     *string `json:"status"`
	URL        *string `json:"url"`
	GitHubRepo *string `json:"githubRepo"`
}

// Update applies a partial update to a portfolio the user owns.
func (s *PortfolioService) Update(ctx context.Context, userID, id string, req UpdateRequest) (*model.Portfolio, error) {
	p, err := s.portfolios.GetOwned(ctx, id, userID)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		p.Name = *req.Name
	}
	if req.Template != nil {
		p.Template = *req.Template
	}
	if req.Status != nil {
		p.Status = *req.Status
	}
	if req.URL != nil {
		p.URL = *req.URL
	}
	if req.GitHubRepo != nil {
		p.GitHubRepo = *req.GitHubRepo
	}

	if err := s.portfolios.UpdatePortfolio(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

// Delete removes a portfolio the user owns.
func (s *PortfolioService) Delete(ctx context.Context, userID, id string) error {
	deleted, err := s.portfolios.DeletePortfolio(ctx, id, userID)
	if err != nil {
		return err
	}
	if !deleted {
		return apperror.NotFound("Portfolio")
	}
	s.log.Info("portfolio deleted", "portfolio_id", id, "user_id", userID)
	return nil
}

// Stats summarizes the user's portfolios for the dashboard.
func (s *PortfolioService) Stats(ctx context.Context, userID string) (*model.PortfolioStats, error) {
	list, err := s.portfolios.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	stats := &model.PortfolioStats{
		Total:      len(list),
		MaxAllowed: model.MaxPortfoliosPerUser,
	}
	for _, p := range list {
		switch p.Status {
		case model.StatusDeployed:
			stats.Deployed++
		case model.StatusDraft:
			stats.Draft++
		case model.StatusBuilding:
			stats.Building++
		}
	}
	if remaining := model.MaxPortfoliosPerUser - stats.Total; remaining > 0 {
		stats.Remaining = remaining
	}
	return stats, nil
}

// DeployResult reports the outcome of a portfolio deployment.
type DeployResult struct {
	URL            string `json:"url"`
	Repo           string `json:"repo"`
	CommitSHA      string `json:"commitSha"`
	PagesConfirmed bool   `json:"pagesConfirmed"`
}

// Deploy publishes the portfolio's generated HTML to a GitHub Pages
// repository named after the portfolio. The portfolio moves draft/deployed ->
// building -> deployed, or to failed when the publish does not land.
func (s *PortfolioService) Deploy(ctx context.Context, userID, id string) (*DeployResult, error) {
	p, err := s.portfolios.GetOwned(ctx, id, userID)
	if err != nil {
		return nil, err
	}
	if p.HTML == "" {
		return nil, apperror.ValidationFailed("", "Portfolio HTML not generated yet")
	}

	user, err := s.users.GetUserByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !user.GitHubConnected {
		return nil, apperror.Conflict(apperror.CodeGitHubNotConnected,
			"GitHub account not connected. Please connect your GitHub account first.")
	}
	ghToken, err := s.ghTokens.GetTokenByUser(ctx, userID)
	if err != nil {
		return nil, apperror.Conflict(apperror.CodeGitHubNotConnected,
			"GitHub account not connected. Please connect your GitHub account first.")
	}

	if err := s.portfolios.UpdateStatus(ctx, p.ID, model.StatusBuilding, "", ""); err != nil {
		return nil, err
	}

	client := s.githubAPI(ghToken.AccessToken)
	publisher := github.NewPublisher(client, s.log)

	repoName := p.GitHubRepo
	if idx := strings.IndexByte(repoName, '/'); idx >= 0 {
		repoName = repoName[idx+1:]
	}
	if repoName == "" {
		repoName = slugify(p.Name)
	}

	result, err := publisher.Publish(ctx, github.PublishRequest{
		Owner:       ghToken.Login,
		Repo:        repoName,
		Files:       map[string]string{"index.html": p.HTML},
		Message:     "Deploy " + p.Name,
		Description: p.Name + " — portfolio site",
	})
	if err != nil {
		if stErr := s.portfolios.UpdateStatus(ctx, p.ID, model.StatusFailed, "", ""); stErr != nil {
			s.log.Error("failed to mark portfolio failed", "portfolio_id", p.ID, "error", stErr)
		}
		return nil, err
	}

	if err := s.portfolios.UpdateStatus(ctx, p.ID, model.StatusDeployed, result.URL, result.Repo); err != nil {
		return nil, err
	}
	if err := s.deployments.UpsertDeployment(ctx, &model.Deployment{
		UserID:     userID,
		Repo:       repoName,
		Branch:     result.Branch,
		URL:        result.URL,
		LastCommit: result.CommitSHA,
	}); err != nil {
		s.log.Warn("failed to record deployment", "portfolio_id", p.ID, "error", err)
	}

	s.log.Info("portfolio deployed", "portfolio_id", p.ID, "url", result.URL,
		"pages_confirmed", result.PagesConfirmed)
	return &DeployResult{
		URL:            result.URL,
		Repo:           result.Repo,
		CommitSHA:      result.CommitSHA,
		PagesConfirmed: result.PagesConfirmed,
	}, nil
}

var slugStrip = regexp.MustCompile(`[^a-z0-9-]+`)

// slugify turns a portfolio name into a usable repository name.
func slugify(name string) string {
	slug := strings.ToLower(strings.TrimSpace(name))
	slug = strings.ReplaceAll(slug, " ", "-")
	slug = slugStrip.ReplaceAllString(slug, "")
	for strings.Contains(slug, "--") {
		slug = strings.ReplaceAll(slug, "--", "-")
	}
	slug = strings.Trim(slug, "-")
	if slug == "" {
		slug = "portfolio"
	}
	return slug
}
