package provider

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/coreos/go-oidc/v3/oidc"
	"github.com/jrsteele09/go-session-keeper/internal/config"
	"github.com/jrsteele09/go-session-keeper/internal/errors"
	"github.com/jrsteele09/go-session-keeper/internal/utils"
	"github.com/jrsteele09/go-session-keeper/oauth2"
	"github.com/rs/zerolog/log"
	xoauth2 "golang.org/x/oauth2"
)

// Settings addresses a Keycloak realm client.
type Settings struct {
	ClientID      string
	ClientSecret  string
	Scopes        []string
	TokenURL      string
	LogoutURL     string // end_session_endpoint, preferred for revocation
	RevocationURL string // RFC 7009 endpoint, used when no logout endpoint is known
}

// Keycloak talks to a Keycloak realm using the OAuth2 password and refresh grants.
type Keycloak struct {
	oauthConfig   *xoauth2.Config
	logoutURL     string
	revocationURL string
	httpClient    *http.Client
}

var _ IdentityProvider = (*Keycloak)(nil)

// NewKeycloak creates a client from explicit endpoints.
func NewKeycloak(settings Settings, httpClient *http.Client) *Keycloak {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Keycloak{
		oauthConfig: &xoauth2.Config{
			ClientID:     settings.ClientID,
			ClientSecret: settings.ClientSecret,
			Scopes:       settings.Scopes,
			Endpoint: xoauth2.Endpoint{
				TokenURL:  settings.TokenURL,
				AuthStyle: xoauth2.AuthStyleInParams,
			},
		},
		logoutURL:     settings.LogoutURL,
		revocationURL: settings.RevocationURL,
		httpClient:    httpClient,
	}
}

// DiscoverKeycloak resolves the realm's endpoints through OIDC discovery.
func DiscoverKeycloak(ctx context.Context, cfg config.ProviderConfig, httpClient *http.Client) (*Keycloak, error) {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.GetProviderTimeout()}
	}

	discoveryCtx, cancel := context.WithTimeout(oidc.ClientContext(ctx, httpClient), cfg.GetProviderTimeout())
	defer cancel()

	oidcProvider, err := oidc.NewProvider(discoveryCtx, cfg.GetIssuerURL())
	if err != nil {
		return nil, fmt.Errorf("[provider DiscoverKeycloak] failed to create OIDC provider: %w", err)
	}

	var endpoints struct {
		EndSessionEndpoint string `json:"end_session_endpoint"`
		RevocationEndpoint string `json:"revocation_endpoint"`
	}
	if err := oidcProvider.Claims(&endpoints); err != nil {
		return nil, fmt.Errorf("[provider DiscoverKeycloak] failed to read discovery document: %w", err)
	}

	return NewKeycloak(Settings{
		ClientID:      cfg.GetClientID(),
		ClientSecret:  cfg.GetClientSecret(),
		Scopes:        cfg.GetScopes(),
		TokenURL:      oidcProvider.Endpoint().TokenURL,
		LogoutURL:     endpoints.EndSessionEndpoint,
		RevocationURL: endpoints.RevocationEndpoint,
	}, httpClient), nil
}

func (k *Keycloak) clientContext(ctx context.Context) context.Context {
	return context.WithValue(ctx, xoauth2.HTTPClient, k.httpClient)
}

// ExchangeCredentials implements IdentityProvider.
func (k *Keycloak) ExchangeCredentials(ctx context.Context, username, password string) (*oauth2.TokenResponse, error) {
	tok, err := k.oauthConfig.PasswordCredentialsToken(k.clientContext(ctx), username, password)
	if err != nil {
		return nil, tokenError(oauth2.PasswordGrant, err)
	}
	return fromToken(tok)
}

// RefreshToken implements IdentityProvider.
func (k *Keycloak) RefreshToken(ctx context.Context, refreshToken string) (*oauth2.TokenResponse, error) {
	if refreshToken == "" {
		return nil, errors.Wrapf(errors.ErrAuthentication, "no refresh token")
	}
	// An empty access token forces the source to refresh
	src := k.oauthConfig.TokenSource(k.clientContext(ctx), &xoauth2.Token{RefreshToken: refreshToken})
	tok, err := src.Token()
	if err != nil {
		return nil, tokenError(oauth2.RefreshTokenGrant, err)
	}
	return fromToken(tok)
}

// Revoke implements IdentityProvider. Keycloak's end-session endpoint accepts the
// refresh token directly and terminates the whole provider session.
func (k *Keycloak) Revoke(ctx context.Context, refreshToken string) error {
	form := url.Values{}
	form.Set("client_id", k.oauthConfig.ClientID)
	if k.oauthConfig.ClientSecret != "" {
		form.Set("client_secret", k.oauthConfig.ClientSecret)
	}

	target := k.logoutURL
	switch {
	case target != "":
		form.Set("refresh_token", refreshToken)
	case k.revocationURL != "":
		target = k.revocationURL
		form.Set("token", refreshToken)
		form.Set("token_type_hint", string(oauth2.RefreshTokenHint))
	default:
		return errors.Wrapf(errors.ErrRevocation, "no logout or revocation endpoint configured")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, target, strings.NewReader(form.Encode()))
	if err != nil {
		return errors.Join(errors.ErrRevocation, err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := k.httpClient.Do(req)
	if err != nil {
		return errors.Join(errors.ErrRevocation, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return errors.Wrapf(errors.ErrRevocation, "provider returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	return nil
}

func tokenError(grant oauth2.GrantType, err error) error {
	event := log.Debug().Err(err).Str("grant_type", string(grant))
	var retrieveErr *xoauth2.RetrieveError
	if errors.As(err, &retrieveErr) {
		event = event.Str("error_code", retrieveErr.ErrorCode).Int("status", statusCode(retrieveErr))
	}
	event.Msg("Token request rejected")
	return errors.Join(errors.ErrAuthentication, err)
}

func statusCode(err *xoauth2.RetrieveError) int {
	if err.Response == nil {
		return 0
	}
	return err.Response.StatusCode
}

// fromToken maps the oauth2 token and Keycloak's extra fields onto the wire shape.
func fromToken(tok *xoauth2.Token) (*oauth2.TokenResponse, error) {
	if tok == nil || tok.AccessToken == "" {
		return nil, errors.Wrapf(errors.ErrAuthentication, "malformed token response")
	}

	resp := &oauth2.TokenResponse{
		AccessToken:      tok.AccessToken,
		RefreshToken:     tok.RefreshToken,
		TokenType:        tok.TokenType,
		ExpiresIn:        utils.ToInt(tok.Extra("expires_in")),
		RefreshExpiresIn: utils.ToInt(tok.Extra("refresh_expires_in")),
		Scope:            utils.ToString(tok.Extra("scope")),
		SessionState:     utils.ToString(tok.Extra("session_state")),
		IDToken:          utils.ToString(tok.Extra("id_token")),
	}
	if resp.ExpiresIn == 0 && !tok.Expiry.IsZero() {
		resp.ExpiresIn = int(time.Until(tok.Expiry).Seconds())
	}
	if resp.TokenType == "" {
		resp.TokenType = oauth2.DefaultTokenType
	}
	return resp, nil
}
