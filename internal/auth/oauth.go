package auth

import (
	"context"
	"fmt"
	"strings"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/github"
)

// GitHubProvider wraps golang.org/x/oauth2 for the GitHub Authorization Code
// flow used to link a GitHub account.
//
// Unlike a classic server-side login flow, the exchanged access token is
// handed back to the client, which then posts it to /api/github/link (or
// /api/auth/github/login) bound to its own session. The server therefore
// only needs two pieces: the authorize URL and the code→token exchange.
type GitHubProvider struct {
	config *oauth2.Config
}

// NewGitHubProvider creates a provider from the registered OAuth app
// credentials. scopes is the comma-separated list from configuration
// (e.g. "repo,workflow,pages:write") — repo scope is what the publish
// workflow needs to create repositories and push commits.
func NewGitHubProvider(clientID, clientSecret, redirectURI, scopes string) *GitHubProvider {
	var scopeList []string
	for _, s := range strings.Split(scopes, ",") {
		if s = strings.TrimSpace(s); s != "" {
			scopeList = append(scopeList, s)
		}
	}

	return &GitHubProvider{
		config: &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			RedirectURL:  redirectURI,
			Scopes:       scopeList,
			Endpoint:     github.Endpoint,
		},
	}
}

// AuthorizeURL returns the GitHub authorization URL the client should send
// the user to. state is echoed back on callback for client-side binding.
func (p *GitHubProvider) AuthorizeURL(state string) string {
	return p.config.AuthCodeURL(state, oauth2.AccessTypeOnline)
}

// ExchangeCode trades the short-lived authorization code for an access token.
// The exchange is server-to-server using the client secret; the token is
// returned to the caller for linking.
func (p *GitHubProvider) ExchangeCode(ctx context.Context, code string) (*oauth2.Token, error) {
	token, err := p.config.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("auth: exchanging OAuth code: %w", err)
	}
	if token.AccessToken == "" {
		return nil, fmt.Errorf("auth: GitHub returned an empty access token")
	}
	return token, nil
}
