package model

import "time"

// Deployment records where a user's site was last published. One record per
// (user, repo) pair — writes are upserts on that composite key.
type Deployment struct {
	UserID     string    `json:"userId"`
	Repo       string    `json:"repo"`
	Branch     string    `json:"branch"`
	URL        string    `json:"url,omitempty"`
	LastCommit string    `json:"lastCommit,omitempty"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}
