package server_test

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/jrsteele09/go-session-keeper/auth"
	"github.com/jrsteele09/go-session-keeper/internal/config"
	"github.com/jrsteele09/go-session-keeper/provider/fakeprovider"
	"github.com/jrsteele09/go-session-keeper/server"
	"github.com/jrsteele09/go-session-keeper/sessions"
	"github.com/stretchr/testify/require"
)

const cookieName = "keeper_session_id"

type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// testFixture holds all test dependencies
type testFixture struct {
	clock    *testClock
	store    *sessions.TokenStore
	provider *fakeprovider.FakeProvider
	server   *server.Server
}

func setupTestFixture(t *testing.T, env map[string]string) *testFixture {
	t.Helper()

	t.Setenv("ENV", "TEST")
	t.Setenv("APP_NAME", "Session Keeper")
	t.Setenv("SESSION_COOKIE_NAME", cookieName)
	t.Setenv("RATELIMIT_LOGIN_REQUESTS", "3")
	t.Setenv("RATELIMIT_LOGIN_BURST", "3")
	for k, v := range env {
		t.Setenv(k, v)
	}

	c, err := config.New()
	require.NoError(t, err)

	clock := &testClock{now: time.Date(2026, 10, 19, 9, 0, 0, 0, time.UTC)}
	store := sessions.NewTokenStore(sessions.NewInMemoryRepo(), sessions.WithNowFunc(clock.Now))
	fp := fakeprovider.NewFakeProvider().AcceptPassword("alice", "correct", fakeprovider.TokenResponse(map[string]any{
		"sub":                "user-alice",
		"preferred_username": "alice",
		"name":               "alice araújo",
		"realm_access":       map[string]any{"roles": []any{"analyst"}},
	}, "refresh-1", 300, 1800))

	service := auth.NewSessionService(store, fp, auth.ServiceConfig{
		HomePath:  server.PrefixedPath(c.GetRootPathPrefix(), server.RouteHome),
		LoginPath: server.PrefixedPath(c.GetRootPathPrefix(), server.RouteLogin),
	})

	srv, err := server.New(c, service)
	require.NoError(t, err)

	return &testFixture{clock: clock, store: store, provider: fp, server: srv}
}

func (f *testFixture) do(req *http.Request, cookie *http.Cookie) *httptest.ResponseRecorder {
	if cookie != nil {
		req.AddCookie(cookie)
	}
	rec := httptest.NewRecorder()
	f.server.ServeHTTP(rec, req)
	return rec
}

func loginForm(path, username, password string) *http.Request {
	form := url.Values{}
	form.Set("username", username)
	form.Set("password", password)
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.RemoteAddr = "192.0.2.10:5555"
	return req
}

func loginJSON(path, body string) *http.Request {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.RemoteAddr = "192.0.2.10:5555"
	return req
}

func findSessionCookie(rec *httptest.ResponseRecorder) *http.Cookie {
	for _, c := range rec.Result().Cookies() {
		if c.Name == cookieName {
			return c
		}
	}
	return nil
}

func sessionCookie(t *testing.T, rec *httptest.ResponseRecorder) *http.Cookie {
	t.Helper()
	c := findSessionCookie(rec)
	if c == nil {
		t.Fatalf("no %s cookie in response", cookieName)
	}
	return c
}

func (f *testFixture) login(t *testing.T) *http.Cookie {
	t.Helper()
	rec := f.do(loginForm(server.RouteAuthLogin, "alice", "correct"), nil)
	require.Equal(t, http.StatusSeeOther, rec.Code)
	return sessionCookie(t, rec)
}

func TestLoginPage(t *testing.T) {
	f := setupTestFixture(t, nil)

	t.Run("no error shown by default", func(t *testing.T) {
		rec := f.do(httptest.NewRequest(http.MethodGet, server.RouteLogin, nil), nil)
		require.Equal(t, http.StatusOK, rec.Code)
		require.Contains(t, rec.Body.String(), `action="/auth/login"`)
		require.NotContains(t, rec.Body.String(), `class="error"`)
		require.Equal(t, "SAMEORIGIN", rec.Header().Get("X-Frame-Options"))
	})

	t.Run("error text is shown when present", func(t *testing.T) {
		rec := f.do(httptest.NewRequest(http.MethodGet, server.RouteLogin+"?error="+url.QueryEscape(auth.MsgInvalidCredentials), nil), nil)
		require.Equal(t, http.StatusOK, rec.Code)
		require.Contains(t, rec.Body.String(), "Usuário e/ou senha incorretos.")
	})

	t.Run("logged in users go home", func(t *testing.T) {
		cookie := f.login(t)
		rec := f.do(httptest.NewRequest(http.MethodGet, server.RouteLogin, nil), cookie)
		require.Equal(t, http.StatusSeeOther, rec.Code)
		require.Equal(t, "/", rec.Header().Get("Location"))
	})
}

func TestLoginSubmission_Form(t *testing.T) {
	t.Run("success sets the cookie and redirects home", func(t *testing.T) {
		f := setupTestFixture(t, nil)

		rec := f.do(loginForm(server.RouteAuthLogin, "alice", "correct"), nil)
		require.Equal(t, http.StatusSeeOther, rec.Code)
		require.Equal(t, "/", rec.Header().Get("Location"))

		cookie := sessionCookie(t, rec)
		require.True(t, cookie.HttpOnly)
		require.Equal(t, http.SameSiteLaxMode, cookie.SameSite)

		record, ok := f.store.Current(cookie.Value)
		require.True(t, ok)
		require.Equal(t, "alice", record.Username)
	})

	t.Run("wrong password redirects back with the message", func(t *testing.T) {
		f := setupTestFixture(t, nil)

		rec := f.do(loginForm(server.RouteAuthLogin, "alice", "wrong"), nil)
		require.Equal(t, http.StatusSeeOther, rec.Code)

		location, err := url.Parse(rec.Header().Get("Location"))
		require.NoError(t, err)
		require.Equal(t, server.RouteLogin, location.Path)
		require.Equal(t, auth.MsgInvalidCredentials, location.Query().Get("error"))
		require.Equal(t, "alice", location.Query().Get("username"))
		require.Nil(t, findSessionCookie(rec))
	})

	t.Run("a cookie set before login is replaced", func(t *testing.T) {
		f := setupTestFixture(t, nil)
		planted := &http.Cookie{Name: cookieName, Value: "5d1e8a3f-2c47-4b9e-a6f0-7e3b9c1d2a44"}

		rec := f.do(loginForm(server.RouteAuthLogin, "alice", "correct"), planted)
		require.Equal(t, http.StatusSeeOther, rec.Code)

		issued := sessionCookie(t, rec)
		require.NotEqual(t, planted.Value, issued.Value)
		_, ok := f.store.Current(issued.Value)
		require.True(t, ok)

		rec = f.do(httptest.NewRequest(http.MethodGet, server.RouteAuthStatus, nil), planted)
		require.JSONEq(t, `{"logged_in":false}`, rec.Body.String())
	})

	t.Run("htmx gets an HX-Redirect", func(t *testing.T) {
		f := setupTestFixture(t, nil)

		req := loginForm(server.RouteAuthLogin, "alice", "correct")
		req.Header.Set("HX-Request", "true")
		rec := f.do(req, nil)
		require.Equal(t, http.StatusNoContent, rec.Code)
		require.Equal(t, "/", rec.Header().Get("HX-Redirect"))
	})
}

func TestLoginSubmission_JSON(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		wantStatus int
		wantBody   string
	}{
		{"success", `{"username":"alice","password":"correct"}`, http.StatusOK, `{"logged_in":true,"redirect":"/"}`},
		{"wrong password", `{"username":"alice","password":"wrong"}`, http.StatusUnauthorized, `{"logged_in":false,"error":"Usuário e/ou senha incorretos."}`},
		{"missing password", `{"username":"alice"}`, http.StatusBadRequest, `{"logged_in":false,"error":"Preencha usuário e senha."}`},
		{"malformed body", `{"username":`, http.StatusBadRequest, `{"logged_in":false,"error":"Preencha usuário e senha."}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := setupTestFixture(t, nil)

			rec := f.do(loginJSON(server.RouteAuthLogin, tt.body), nil)
			require.Equal(t, tt.wantStatus, rec.Code)
			require.JSONEq(t, tt.wantBody, rec.Body.String())
		})
	}

	t.Run("missing credentials never reach the provider", func(t *testing.T) {
		f := setupTestFixture(t, nil)
		f.do(loginJSON(server.RouteAuthLogin, `{"username":"","password":""}`), nil)
		require.Zero(t, f.provider.ExchangeCalls())
	})
}

func TestLoginSubmission_RateLimited(t *testing.T) {
	f := setupTestFixture(t, nil)

	for range 3 {
		rec := f.do(loginJSON(server.RouteAuthLogin, `{"username":"alice","password":"wrong"}`), nil)
		require.Equal(t, http.StatusUnauthorized, rec.Code)
	}

	rec := f.do(loginJSON(server.RouteAuthLogin, `{"username":"alice","password":"correct"}`), nil)
	require.Equal(t, http.StatusTooManyRequests, rec.Code)
	require.NotEmpty(t, rec.Header().Get("Retry-After"))
	require.JSONEq(t, `{"logged_in":false,"error":"`+auth.MsgTooManyAttempts+`"}`, rec.Body.String())
	require.Equal(t, 3, f.provider.ExchangeCalls())

	// Another username from the same address has its own budget
	rec = f.do(loginJSON(server.RouteAuthLogin, `{"username":"bob","password":"wrong"}`), nil)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestLoginSubmission_RateLimitedForwardedFor(t *testing.T) {
	attempt := func(f *testFixture, forwardedFor string) *httptest.ResponseRecorder {
		req := loginJSON(server.RouteAuthLogin, `{"username":"alice","password":"wrong"}`)
		req.Header.Set("X-Forwarded-For", forwardedFor)
		return f.do(req, nil)
	}

	t.Run("ignored from an untrusted peer", func(t *testing.T) {
		f := setupTestFixture(t, nil)

		for i := range 3 {
			rec := attempt(f, fmt.Sprintf("203.0.113.%d", i+1))
			require.Equal(t, http.StatusUnauthorized, rec.Code)
		}
		rec := attempt(f, "203.0.113.99")
		require.Equal(t, http.StatusTooManyRequests, rec.Code)
		require.Equal(t, 3, f.provider.ExchangeCalls())
	})

	t.Run("honoured from a trusted proxy", func(t *testing.T) {
		f := setupTestFixture(t, map[string]string{"TRUSTED_PROXIES": "192.0.2.0/24"})

		for range 3 {
			require.Equal(t, http.StatusUnauthorized, attempt(f, "203.0.113.1").Code)
		}
		require.Equal(t, http.StatusTooManyRequests, attempt(f, "203.0.113.1").Code)
		require.Equal(t, http.StatusUnauthorized, attempt(f, "203.0.113.2").Code)
	})
}

func TestLoginSubmission_RateLimitingDisabled(t *testing.T) {
	f := setupTestFixture(t, map[string]string{"RATELIMIT_ENABLED": "false"})

	for range 5 {
		rec := f.do(loginJSON(server.RouteAuthLogin, `{"username":"alice","password":"wrong"}`), nil)
		require.Equal(t, http.StatusUnauthorized, rec.Code)
	}
}

func TestHome(t *testing.T) {
	f := setupTestFixture(t, nil)

	t.Run("anonymous users are sent to login", func(t *testing.T) {
		rec := f.do(httptest.NewRequest(http.MethodGet, "/", nil), nil)
		require.Equal(t, http.StatusSeeOther, rec.Code)
		require.Equal(t, server.RouteLogin, rec.Header().Get("Location"))
	})

	t.Run("greets by display name", func(t *testing.T) {
		cookie := f.login(t)

		rec := f.do(httptest.NewRequest(http.MethodGet, "/", nil), cookie)
		require.Equal(t, http.StatusOK, rec.Code)
		require.Contains(t, rec.Body.String(), "Welcome Alice Araújo")
		require.Contains(t, rec.Body.String(), "analyst")
		require.Contains(t, rec.Body.String(), `data-refresh-interval="30000"`)
		require.Equal(t, "no-store", rec.Header().Get("Cache-Control"))
	})

	t.Run("unknown paths are not the home page", func(t *testing.T) {
		rec := f.do(httptest.NewRequest(http.MethodGet, "/nope", nil), nil)
		require.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestRefresh(t *testing.T) {
	tick := func(loggedIn string) *http.Request {
		req := httptest.NewRequest(http.MethodPost, server.RouteAuthRefresh, strings.NewReader(`{"logged_in":`+loggedIn+`}`))
		req.Header.Set("Content-Type", "application/json")
		return req
	}

	t.Run("logged out client is a no-op", func(t *testing.T) {
		f := setupTestFixture(t, nil)
		rec := f.do(tick("false"), nil)
		require.Equal(t, http.StatusNoContent, rec.Code)
	})

	t.Run("empty body is a logged out client", func(t *testing.T) {
		f := setupTestFixture(t, nil)
		rec := f.do(httptest.NewRequest(http.MethodPost, server.RouteAuthRefresh, nil), nil)
		require.Equal(t, http.StatusNoContent, rec.Code)
	})

	t.Run("malformed body", func(t *testing.T) {
		f := setupTestFixture(t, nil)
		rec := f.do(httptest.NewRequest(http.MethodPost, server.RouteAuthRefresh, strings.NewReader("{")), nil)
		require.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("no server session logs the client out", func(t *testing.T) {
		f := setupTestFixture(t, nil)
		rec := f.do(tick("true"), nil)
		require.Equal(t, http.StatusOK, rec.Code)
		require.JSONEq(t, `{"logged_in":false}`, rec.Body.String())
	})

	t.Run("fresh session is a no-op", func(t *testing.T) {
		f := setupTestFixture(t, nil)
		cookie := f.login(t)

		rec := f.do(tick("true"), cookie)
		require.Equal(t, http.StatusNoContent, rec.Code)
		require.Empty(t, f.provider.RefreshCalls())
	})

	t.Run("expired access token is refreshed silently", func(t *testing.T) {
		f := setupTestFixture(t, nil)
		cookie := f.login(t)
		f.provider.RefreshWith(fakeprovider.TokenResponse(map[string]any{"preferred_username": "alice"}, "refresh-2", 300, 1800))
		f.clock.Advance(5 * time.Minute)

		rec := f.do(tick("true"), cookie)
		require.Equal(t, http.StatusNoContent, rec.Code)
		require.Equal(t, []string{"refresh-1"}, f.provider.RefreshCalls())
	})

	t.Run("expired refresh token ends the session", func(t *testing.T) {
		f := setupTestFixture(t, nil)
		cookie := f.login(t)
		f.clock.Advance(time.Hour)

		rec := f.do(tick("true"), cookie)
		require.Equal(t, http.StatusOK, rec.Code)
		require.JSONEq(t, `{"logged_in":false}`, rec.Body.String())
		require.Empty(t, f.provider.RefreshCalls())

		_, ok := f.store.Current(cookie.Value)
		require.False(t, ok)
	})
}

func TestLogout(t *testing.T) {
	f := setupTestFixture(t, nil)
	cookie := f.login(t)

	rec := f.do(httptest.NewRequest(http.MethodPost, server.RouteAuthLogout, nil), cookie)
	require.Equal(t, http.StatusSeeOther, rec.Code)
	require.Equal(t, server.RouteLogin, rec.Header().Get("Location"))
	require.Negative(t, sessionCookie(t, rec).MaxAge)
	require.Equal(t, []string{"refresh-1"}, f.provider.RevokeCalls())

	// A second logout with the stale cookie is harmless
	req := httptest.NewRequest(http.MethodPost, server.RouteAuthLogout, nil)
	req.Header.Set("Accept", "application/json")
	rec = f.do(req, cookie)
	require.Equal(t, http.StatusOK, rec.Code)
	require.JSONEq(t, `{"logged_in":false}`, rec.Body.String())
	require.Len(t, f.provider.RevokeCalls(), 1)

	t.Run("GET cannot log a user out", func(t *testing.T) {
		cookie := f.login(t)

		rec := f.do(httptest.NewRequest(http.MethodGet, server.RouteAuthLogout, nil), cookie)
		require.Equal(t, http.StatusMethodNotAllowed, rec.Code)

		_, ok := f.store.Current(cookie.Value)
		require.True(t, ok)
	})
}

func TestStatus(t *testing.T) {
	f := setupTestFixture(t, nil)

	rec := f.do(httptest.NewRequest(http.MethodGet, server.RouteAuthStatus, nil), nil)
	require.JSONEq(t, `{"logged_in":false}`, rec.Body.String())

	cookie := f.login(t)
	rec = f.do(httptest.NewRequest(http.MethodGet, server.RouteAuthStatus, nil), cookie)
	require.JSONEq(t, `{"logged_in":true}`, rec.Body.String())

	// Forged session IDs are ignored
	rec = f.do(httptest.NewRequest(http.MethodGet, server.RouteAuthStatus, nil), &http.Cookie{Name: cookieName, Value: "not-a-uuid"})
	require.JSONEq(t, `{"logged_in":false}`, rec.Body.String())
}

func TestCors(t *testing.T) {
	f := setupTestFixture(t, map[string]string{"ALLOWED_ORIGINS": "https://dash.example.com"})

	req := httptest.NewRequest(http.MethodOptions, server.RouteAuthRefresh, nil)
	req.Header.Set("Origin", "https://dash.example.com")
	rec := f.do(req, nil)
	require.Equal(t, http.StatusNoContent, rec.Code)
	require.Equal(t, "https://dash.example.com", rec.Header().Get("Access-Control-Allow-Origin"))
	require.Equal(t, "true", rec.Header().Get("Access-Control-Allow-Credentials"))

	req = httptest.NewRequest(http.MethodGet, server.RouteAuthStatus, nil)
	req.Header.Set("Origin", "https://evil.example.com")
	rec = f.do(req, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestRootPathPrefix(t *testing.T) {
	f := setupTestFixture(t, map[string]string{"ROOT_PATH_PREFIX": "/keeper/"})

	rec := f.do(httptest.NewRequest(http.MethodGet, "/keeper/login", nil), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), `action="/keeper/auth/login"`)

	rec = f.do(loginForm("/keeper/auth/login", "alice", "correct"), nil)
	require.Equal(t, http.StatusSeeOther, rec.Code)
	require.Equal(t, "/keeper/", rec.Header().Get("Location"))
	require.Equal(t, "/keeper", sessionCookie(t, rec).Path)

	rec = f.do(httptest.NewRequest(http.MethodGet, "/login", nil), nil)
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestStaticAndHealth(t *testing.T) {
	f := setupTestFixture(t, nil)

	rec := f.do(httptest.NewRequest(http.MethodGet, "/js/session.js", nil), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "text/javascript; charset=utf-8", rec.Header().Get("Content-Type"))
	require.Contains(t, rec.Body.String(), "logged_in")

	rec = f.do(httptest.NewRequest(http.MethodGet, "/css/app.css", nil), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "text/css; charset=utf-8", rec.Header().Get("Content-Type"))

	rec = f.do(httptest.NewRequest(http.MethodGet, "/css/missing.css", nil), nil)
	require.Equal(t, http.StatusNotFound, rec.Code)

	rec = f.do(httptest.NewRequest(http.MethodGet, server.RouteHealthz, nil), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestGreeting(t *testing.T) {
	require.Equal(t, "Welcome", server.Greeting(""))
	require.Equal(t, "Welcome Maria Da Silva", server.Greeting("maria da silva"))
}
