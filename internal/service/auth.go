// Package service holds the business logic between the HTTP handlers and the
// storage layer: account management, portfolio lifecycle, AI generation and
// the GitHub integration.
package service

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"

	"github.com/Gopi-techy/SkillSlate/internal/apperror"
	"github.com/Gopi-techy/SkillSlate/internal/auth"
	"github.com/Gopi-techy/SkillSlate/internal/github"
	"github.com/Gopi-techy/SkillSlate/internal/model"
	"github.com/Gopi-techy/SkillSlate/internal/repository"
)

// GitHubClientFactory mints an API client bound to one access token. The
// default is github.NewClient; tests swap in a factory pointed at a local
// server.
type GitHubClientFactory func(token string) *github.Client

// AuthService implements registration, login and GitHub-backed sign-in.
type AuthService struct {
	users     repository.UserRepository
	tokens    *auth.TokenService
	passwords *auth.PasswordService
	githubAPI GitHubClientFactory
	log       *slog.Logger
}

func NewAuthService(users repository.UserRepository, tokens *auth.TokenService, passwords *auth.PasswordService, githubAPI GitHubClientFactory, log *slog.Logger) *AuthService {
	if githubAPI == nil {
		githubAPI = github.NewClient
	}
	return &AuthService{
		users:     users,
		tokens:    tokens,
		passwords: passwords,
		githubAPI: githubAPI,
		log:       log,
	}
}

// Register creates an account and returns the user with a session token.
func (s *AuthService) Register(ctx context.Context, name, email, password string) (*model.User, string, error) {
	if err := validateRegistration(name, email, password); err != nil {
		return nil, "", err
	}

	hash, err := s.passwords.Hash(password)
	if err != nil {
		return nil, "", fmt.Errorf("hashing password: %w", err)
	}

	user := &model.User{
		Name:         name,
		Email:        email,
		PasswordHash: hash,
	}
	if err := s.users.CreateUser(ctx, user); err != nil {
		return nil, "", err
	}

	token, err := s.tokens.Generate(user.ID)
	if err != nil {
		return nil, "", fmt.Errorf("issuing token: %w", err)
	}

	s.log.Info("user registered", "user_id", user.ID)
	return user, token, nil
}

// Login authenticates with email and password. A wrong email and a wrong
// password both produce the same error, so the endpoint does not leak which
// accounts exist.
func (s *AuthService) Login(ctx context.Context, email, password string) (*model.User, string, error) {
	if email == "" || password == "" {
		return nil, "", apperror.ValidationFailed("", "Email and password are required")
	}

	user, err := s.users.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			return nil, "", apperror.Unauthorized("Invalid email or password")
		}
		return nil, "", err
	}

	if err := s.passwords.Verify(user.PasswordHash, password); err != nil {
		return nil, "", apperror.Unauthorized("Invalid email or password")
	}

	token, err := s.tokens.Generate(user.ID)
	if err != nil {
		return nil, "", fmt.Errorf("issuing token: %w", err)
	}

	if err := s.users.UpdateLastLogin(ctx, user.ID); err != nil {
		s.log.Warn("failed to record last login", "user_id", user.ID, "error", err)
	}

	return user, token, nil
}

// GitHubLogin signs in (or registers) with a GitHub access token. An account
// already registered under the primary GitHub email is merged: it keeps its
// password and gains the GitHub connection. A brand-new account gets a random
// password so it can only be entered through GitHub until a reset.
func (s *AuthService) GitHubLogin(ctx context.Context, accessToken string) (*model.User, string, error) {
	if accessToken == "" {
		return nil, "", apperror.ValidationFailed("access_token", "GitHub access token is required")
	}

	client := s.githubAPI(accessToken)
	account, err := client.GetAuthenticatedUser(ctx)
	if err != nil {
		return nil, "", apperror.Upstream("Failed to get GitHub user info")
	}
	emails, err := client.ListEmails(ctx)
	if err != nil {
		return nil, "", apperror.Upstream("Failed to get GitHub user emails")
	}

	var primary string
	for _, e := range emails {
		if e.Primary {
			primary = e.Email
			break
		}
	}
	if primary == "" {
		return nil, "", apperror.ValidationFailed("email", "No primary email found in GitHub account")
	}

	user, err := s.users.GetUserByEmail(ctx, primary)
	switch {
	case err == nil:
		if err := s.users.SetGitHubConnected(ctx, user.ID, true); err != nil {
			return nil, "", err
		}
		user.GitHubConnected = true
		s.log.Info("linked GitHub account to existing user", "user_id", user.ID)
	case errors.Is(err, apperror.ErrNotFound):
		name := account.Name
		if name == "" {
			name = account.Login
		}
		hash, err := s.passwords.Hash(randomPassword())
		if err != nil {
			return nil, "", fmt.Errorf("hashing password: %w", err)
		}
		user = &model.User{
			Name:            name,
			Email:           primary,
			PasswordHash:    hash,
			GitHubConnected: true,
		}
		if err := s.users.CreateUser(ctx, user); err != nil {
			return nil, "", err
		}
		s.log.Info("created user from GitHub account", "user_id", user.ID)
	default:
		return nil, "", err
	}

	token, err := s.tokens.Generate(user.ID)
	if err != nil {
		return nil, "", fmt.Errorf("issuing token: %w", err)
	}
	if err := s.users.UpdateLastLogin(ctx, user.ID); err != nil {
		s.log.Warn("failed to record last login", "user_id", user.ID, "error", err)
	}

	return user, token, nil
}

// Profile returns the account for a validated session.
func (s *AuthService) Profile(ctx context.Context, userID string) (*model.User, error) {
	return s.users.GetUserByID(ctx, userID)
}

// randomPassword is an unguessable placeholder for GitHub-only accounts.
func randomPassword() string {
	buf := make([]byte, 32)
	rand.Read(buf)
	return hex.EncodeToString(buf)
}
