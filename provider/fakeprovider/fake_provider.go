package fakeprovider

import (
	"context"
	"errors"
	"sync"

	"github.com/golang-jwt/jwt/v5"
	"github.com/jrsteele09/go-session-keeper/oauth2"
	"github.com/jrsteele09/go-session-keeper/provider"
)

var _ provider.IdentityProvider = (*FakeProvider)(nil)

// ErrRejected is returned by the default behaviour of every method.
var ErrRejected = errors.New("fake provider: rejected")

// FakeProvider is a scripted IdentityProvider that counts its calls.
type FakeProvider struct {
	lock sync.Mutex

	ExchangeFunc func(ctx context.Context, username, password string) (*oauth2.TokenResponse, error)
	RefreshFunc  func(ctx context.Context, refreshToken string) (*oauth2.TokenResponse, error)
	RevokeFunc   func(ctx context.Context, refreshToken string) error

	exchangeCalls int
	refreshCalls  []string
	revokeCalls   []string
}

// NewFakeProvider returns a provider that rejects everything until scripted.
func NewFakeProvider() *FakeProvider {
	return &FakeProvider{}
}

// AcceptPassword scripts ExchangeCredentials to succeed only for username/password.
func (p *FakeProvider) AcceptPassword(username, password string, resp *oauth2.TokenResponse) *FakeProvider {
	p.ExchangeFunc = func(_ context.Context, u, pw string) (*oauth2.TokenResponse, error) {
		if u != username || pw != password {
			return nil, ErrRejected
		}
		copied := *resp
		return &copied, nil
	}
	return p
}

// RefreshWith scripts RefreshToken to always succeed with resp.
func (p *FakeProvider) RefreshWith(resp *oauth2.TokenResponse) *FakeProvider {
	p.RefreshFunc = func(context.Context, string) (*oauth2.TokenResponse, error) {
		copied := *resp
		return &copied, nil
	}
	return p
}

func (p *FakeProvider) ExchangeCredentials(ctx context.Context, username, password string) (*oauth2.TokenResponse, error) {
	p.lock.Lock()
	p.exchangeCalls++
	fn := p.ExchangeFunc
	p.lock.Unlock()

	if fn == nil {
		return nil, ErrRejected
	}
	return fn(ctx, username, password)
}

func (p *FakeProvider) RefreshToken(ctx context.Context, refreshToken string) (*oauth2.TokenResponse, error) {
	p.lock.Lock()
	p.refreshCalls = append(p.refreshCalls, refreshToken)
	fn := p.RefreshFunc
	p.lock.Unlock()

	if fn == nil {
		return nil, ErrRejected
	}
	return fn(ctx, refreshToken)
}

func (p *FakeProvider) Revoke(ctx context.Context, refreshToken string) error {
	p.lock.Lock()
	p.revokeCalls = append(p.revokeCalls, refreshToken)
	fn := p.RevokeFunc
	p.lock.Unlock()

	if fn == nil {
		return nil
	}
	return fn(ctx, refreshToken)
}

func (p *FakeProvider) ExchangeCalls() int {
	p.lock.Lock()
	defer p.lock.Unlock()
	return p.exchangeCalls
}

// RefreshCalls returns the refresh tokens presented, in order.
func (p *FakeProvider) RefreshCalls() []string {
	p.lock.Lock()
	defer p.lock.Unlock()
	return append([]string(nil), p.refreshCalls...)
}

// RevokeCalls returns the refresh tokens revoked, in order.
func (p *FakeProvider) RevokeCalls() []string {
	p.lock.Lock()
	defer p.lock.Unlock()
	return append([]string(nil), p.revokeCalls...)
}

// TokenResponse builds a provider response whose access token carries claims.
func TokenResponse(claims map[string]any, refreshToken string, expiresIn, refreshExpiresIn int) *oauth2.TokenResponse {
	raw, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims(claims)).SignedString([]byte("fake-provider"))
	if err != nil {
		panic(err)
	}
	return &oauth2.TokenResponse{
		AccessToken:      raw,
		RefreshToken:     refreshToken,
		ExpiresIn:        expiresIn,
		RefreshExpiresIn: refreshExpiresIn,
		TokenType:        oauth2.DefaultTokenType,
		Scope:            "openid profile email",
		SessionState:     "fake-session-state",
	}
}
