package service

import (
	"context"
	"strconv"
	"time"

	"github.com/Gopi-techy/SkillSlate/internal/apperror"
	"github.com/Gopi-techy/SkillSlate/internal/model"
)

// In-memory repository fakes. They implement just enough of the repository
// contracts for the service tests, including the error semantics the
// services rely on (conflict on duplicate email, not-found scoping).

type fakeUserRepo struct {
	users  map[string]*model.User
	nextID int
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: map[string]*model.User{}}
}

func (r *fakeUserRepo) CreateUser(_ context.Context, user *model.User) error {
	for _, u := range r.users {
		if u.Email == user.Email {
			return apperror.Conflict(apperror.CodeEmailTaken, "User with this email already exists")
		}
	}
	r.nextID++
	user.ID = "user-" + strconv.Itoa(r.nextID)
	user.CreatedAt = time.Now().UTC()
	user.UpdatedAt = user.CreatedAt
	cp := *user
	r.users[user.ID] = &cp
	return nil
}

func (r *fakeUserRepo) GetUserByID(_ context.Context, id string) (*model.User, error) {
	u, ok := r.users[id]
	if !ok {
		return nil, apperror.NotFound("user")
	}
	cp := *u
	return &cp, nil
}

func (r *fakeUserRepo) GetUserByEmail(_ context.Context, email string) (*model.User, error) {
	for _, u := range r.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, apperror.NotFound("user")
}

func (r *fakeUserRepo) UpdateLastLogin(_ context.Context, id string) error {
	if u, ok := r.users[id]; ok {
		now := time.Now().UTC()
		u.LastLogin = &now
	}
	return nil
}

func (r *fakeUserRepo) SetGitHubConnected(_ context.Context, id string, connected bool) error {
	if u, ok := r.users[id]; ok {
		u.GitHubConnected = connected
	}
	return nil
}

type fakeTokenRepo struct {
	tokens map[string]*model.GitHubToken
}

func newFakeTokenRepo() *fakeTokenRepo {
	return &fakeTokenRepo{tokens: map[string]*model.GitHubToken{}}
}

func (r *fakeTokenRepo) UpsertToken(_ context.Context, token *model.GitHubToken) error {
	cp := *token
	r.tokens[token.UserID] = &cp
	return nil
}

func (r *fakeTokenRepo) GetTokenByUser(_ context.Context, userID string) (*model.GitHubToken, error) {
	t, ok := r.tokens[userID]
	if !ok {
		return nil, apperror.NotFound("GitHub token")
	}
	cp := *t
	return &cp, nil
}

func (r *fakeTokenRepo) DeleteTokenByUser(_ context.Context, userID string) error {
	delete(r.tokens, userID)
	return nil
}

type fakePortfolioRepo struct {
	portfolios map[string]*model.Portfolio
	nextID     int
}

func newFakePortfolioRepo() *fakePortfolioRepo {
	return &fakePortfolioRepo{portfolios: map[string]*model.Portfolio{}}
}

func (r *fakePortfolioRepo) CreatePortfolio(_ context.Context, p *model.Portfolio) error {
	r.nextID++
	p.ID = "pf-" + strconv.Itoa(r.nextID)
	if p.Status == "" {
		p.Status = model.StatusDraft
	}
	p.CreatedAt = time.Now().UTC()
	p.UpdatedAt = p.CreatedAt
	cp := *p
	r.portfolios[p.ID] = &cp
	return nil
}

func (r *fakePortfolioRepo) GetOwned(_ context.Context, id, userID string) (*model.Portfolio, error) {
	p, ok := r.portfolios[id]
	if !ok || p.UserID != userID {
		return nil, apperror.NotFound("Portfolio")
	}
	cp := *p
	return &cp, nil
}

func (r *fakePortfolioRepo) ListByUser(_ context.Context, userID string) ([]model.Portfolio, error) {
	out := []model.Portfolio{}
	for _, p := range r.portfolios {
		if p.UserID == userID {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (r *fakePortfolioRepo) CountByUser(_ context.Context, userID string) (int, error) {
	n := 0
	for _, p := range r.portfolios {
		if p.UserID == userID {
			n++
		}
	}
	return n, nil
}

func (r *fakePortfolioRepo) UpdatePortfolio(_ context.Context, p *model.Portfolio) error {
	if _, ok := r.portfolios[p.ID]; !ok {
		return apperror.NotFound("Portfolio")
	}
	cp := *p
	cp.UpdatedAt = time.Now().UTC()
	r.portfolios[p.ID] = &cp
	return nil
}

func (r *fakePortfolioRepo) UpdateStatus(_ context.Context, id, status, url, repo string) error {
	p, ok := r.portfolios[id]
	if !ok {
		return apperror.NotFound("Portfolio")
	}
	p.Status = status
	if url != "" {
		p.URL = url
	}
	if repo != "" {
		p.GitHubRepo = repo
	}
	if status == model.StatusDeployed {
		now := time.Now().UTC()
		p.LastDeployed = &now
	}
	return nil
}

func (r *fakePortfolioRepo) UpdateContent(_ context.Context, id string, data *model.PortfolioData, html string, settings map[string]any) error {
	p, ok := r.portfolios[id]
	if !ok {
		return apperror.NotFound("Portfolio")
	}
	p.Data = data
	p.HTML = html
	if settings != nil {
		p.Settings = settings
	}
	return nil
}

func (r *fakePortfolioRepo) DeletePortfolio(_ context.Context, id, userID string) (bool, error) {
	p, ok := r.portfolios[id]
	if !ok || p.UserID != userID {
		return false, nil
	}
	delete(r.portfolios, id)
	return true, nil
}

type fakeDeploymentRepo struct {
	deployments map[string]*model.Deployment
}

func newFakeDeploymentRepo() *fakeDeploymentRepo {
	return &fakeDeploymentRepo{deployments: map[string]*model.Deployment{}}
}

func (r *fakeDeploymentRepo) UpsertDeployment(_ context.Context, d *model.Deployment) error {
	key := d.UserID + "/" + d.Repo
	if existing, ok := r.deployments[key]; ok {
		existing.Branch = d.Branch
		if d.URL != "" {
			existing.URL = d.URL
		}
		if d.LastCommit != "" {
			existing.LastCommit = d.LastCommit
		}
		return nil
	}
	cp := *d
	r.deployments[key] = &cp
	return nil
}

func (r *fakeDeploymentRepo) GetDeployment(_ context.Context, userID, repo string) (*model.Deployment, error) {
	d, ok := r.deployments[userID+"/"+repo]
	if !ok {
		return nil, apperror.NotFound("deployment")
	}
	cp := *d
	return &cp, nil
}

// fakeGenerator returns canned content and records what it was asked.
type fakeGenerator struct {
	data       *model.PortfolioData
	html       string
	err        error
	lastPrompt string
	lastResume string
}

func newFakeGenerator() *fakeGenerator {
	return &fakeGenerator{
		data: &model.PortfolioData{
			PersonalInfo: model.PersonalInfo{Name: "Alice", Title: "Engineer"},
			Bio:          "Builds things.",
			Skills:       []string{"Go"},
			Projects:     []model.Project{{Title: "SkillSlate"}},
		},
		html: "<!DOCTYPE html><html><body>Alice</body></html>",
	}
}

func (g *fakeGenerator) FromPrompt(_ context.Context, prompt, _ string) (*model.PortfolioData, error) {
	g.lastPrompt = prompt
	if g.err != nil {
		return nil, g.err
	}
	return g.data, nil
}

func (g *fakeGenerator) FromResume(_ context.Context, resumeText, _ string) (*model.PortfolioData, error) {
	g.lastResume = resumeText
	if g.err != nil {
		return nil, g.err
	}
	return g.data, nil
}

func (g *fakeGenerator) Refine(_ context.Context, _ *model.PortfolioData, _ string, _ []model.ChatMessage) (*model.PortfolioData, error) {
	if g.err != nil {
		return nil, g.err
	}
	return g.data, nil
}

func (g *fakeGenerator) ToHTML(_ context.Context, _ *model.PortfolioData, _ string) (string, error) {
	if g.err != nil {
		return "", g.err
	}
	return g.html, nil
}
