package oauth2

// DefaultTokenType is assumed when the provider omits token_type.
const DefaultTokenType = "Bearer"

// TokenResponse is the token endpoint response consumed from the identity provider.
// Keycloak adds refresh_expires_in and session_state to the RFC 6749 fields.
type TokenResponse struct {
	// AccessToken is the short-lived JWT presented to protected resources.
	AccessToken string `json:"access_token"`

	// RefreshToken obtains a new access token without the user's password.
	RefreshToken string `json:"refresh_token,omitempty"`

	// ExpiresIn is the access token lifetime in seconds.
	ExpiresIn int `json:"expires_in,omitempty"`

	// RefreshExpiresIn is the refresh token lifetime in seconds.
	// Keycloak reports 0 for offline tokens.
	RefreshExpiresIn int `json:"refresh_expires_in,omitempty"`

	// TokenType is normally "Bearer".
	TokenType string `json:"token_type,omitempty"`

	// Scope is the space separated list of granted scopes.
	Scope string `json:"scope,omitempty"`

	// SessionState is the provider's opaque session identifier.
	SessionState string `json:"session_state,omitempty"`

	// IDToken is present when the openid scope was granted.
	IDToken string `json:"id_token,omitempty"`
}

// GetTokenType returns the token type, defaulting to Bearer.
func (t *TokenResponse) GetTokenType() string {
	if t == nil || t.TokenType == "" {
		return DefaultTokenType
	}
	return t.TokenType
}
