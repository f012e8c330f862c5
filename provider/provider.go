// Package provider holds the identity-provider capability consumed by the
// session lifecycle, and its Keycloak implementation.
package provider

import (
	"context"

	"github.com/jrsteele09/go-session-keeper/oauth2"
)

// IdentityProvider is the black-box provider the session lifecycle talks to.
// Every method may block on the network; callers bound them with ctx.
type IdentityProvider interface {
	// ExchangeCredentials performs the Resource-Owner-Password-Credentials grant
	ExchangeCredentials(ctx context.Context, username, password string) (*oauth2.TokenResponse, error)

	// RefreshToken obtains a new token bundle with a refresh token
	RefreshToken(ctx context.Context, refreshToken string) (*oauth2.TokenResponse, error)

	// Revoke ends the provider session that owns refreshToken
	Revoke(ctx context.Context, refreshToken string) error
}
