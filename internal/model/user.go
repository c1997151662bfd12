// Package model defines the data structures persisted and exchanged by the API.
package model

import "time"

// User is a registered account. Accounts are created either by email/password
// registration or on first GitHub login; in the latter case PasswordHash holds
// a random throwaway hash so the column is never empty-but-loginable.
//
// Email is unique across all users — the store enforces it with a unique
// index, which is also what makes concurrent registration safe.
type User struct {
	ID              string     `json:"id"`
	Name            string     `json:"name"`
	Email           string     `json:"email"`
	PasswordHash    string     `json:"-"` // never serialized
	GitHubConnected bool       `json:"githubConnected"`
	CreatedAt       time.Time  `json:"createdAt"`
	UpdatedAt       time.Time  `json:"updatedAt"`
	LastLogin       *time.Time `json:"lastLogin,omitempty"`
}

// GitHubToken is the stored OAuth token linking a user to their GitHub
// account. At most one exists per user — writes are upserts keyed by UserID.
// The record is deleted as soon as GitHub reports the token invalid.
type GitHubToken struct {
	UserID      string    `json:"userId"`
	AccessToken string    `json:"-"`
	TokenType   string    `json:"tokenType"`
	Scope       string    `json:"scope,omitempty"`
	Login       string    `json:"login,omitempty"` // GitHub username, fetched best-effort on link
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}
