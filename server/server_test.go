package server

import (
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/jrsteele09/go-flickr-colours/flickr/fakeflickr"
	"github.com/jrsteele09/go-flickr-colours/internal/config"
	"github.com/jrsteele09/go-flickr-colours/server/session"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

const testCookieKey = "000102030405060708090a0b0c0d0e0f101112131415161718191a1b1c1d1e1f"

func TestMain(m *testing.M) {
	zerolog.SetGlobalLevel(zerolog.Disabled)
	os.Exit(m.Run())
}

type testFixture struct {
	server *Server
	flickr *fakeflickr.FakeService
	store  *session.Store
}

func setupTestFixture(t *testing.T, env map[string]string) *testFixture {
	t.Helper()

	t.Setenv("COOKIE_KEY", testCookieKey)
	t.Setenv("FLICKR_CONSUMER_KEY", "consumer-key")
	t.Setenv("FLICKR_CONSUMER_SECRET", "consumer-secret")
	t.Setenv("PROJECT_DOMAIN", "colour-demo")
	t.Setenv("ENV", "test")
	t.Setenv("APP_NAME", "Flickr Colours")
	for k, v := range env {
		t.Setenv(k, v)
	}

	cfg, err := config.New()
	require.NoError(t, err)

	fake := fakeflickr.NewFakeService()
	srv, err := New(cfg, fake)
	require.NoError(t, err)

	store, err := session.NewStore(cfg.GetCookieKey(), cfg.GetMaxSessionAge())
	require.NoError(t, err)

	return &testFixture{server: srv, flickr: fake, store: store}
}

// browser replays the session cookie between requests the way a real one would.
type browser struct {
	t          *testing.T
	handler    http.Handler
	cookieName string
	cookie     *http.Cookie
}

func (f *testFixture) browser(t *testing.T) *browser {
	return &browser{t: t, handler: f.server, cookieName: f.server.config.GetSessionCookieName()}
}

func (b *browser) do(r *http.Request) *http.Response {
	b.t.Helper()
	r.RemoteAddr = "192.0.2.1:1234"
	if b.cookie != nil {
		r.AddCookie(b.cookie)
	}
	w := httptest.NewRecorder()
	b.handler.ServeHTTP(w, r)
	resp := w.Result()
	for _, c := range resp.Cookies() {
		if c.Name != b.cookieName {
			continue
		}
		if c.MaxAge < 0 || c.Value == "" {
			b.cookie = nil
		} else {
			b.cookie = c
		}
	}
	return resp
}

func (b *browser) get(target string) *http.Response {
	return b.do(httptest.NewRequest(http.MethodGet, target, nil))
}

func (b *browser) postColour(form url.Values) *http.Response {
	r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(form.Encode()))
	r.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return b.do(r)
}

func body(t *testing.T, resp *http.Response) string {
	t.Helper()
	defer resp.Body.Close()
	b, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return string(b)
}

func (f *testFixture) sessionState(t *testing.T, b *browser) session.State {
	t.Helper()
	if b.cookie == nil {
		return session.Anonymous{}
	}
	state, err := f.store.Decode(b.cookie.Value)
	require.NoError(t, err)
	return state
}

func TestHome_Anonymous(t *testing.T) {
	f := setupTestFixture(t, nil)
	b := f.browser(t)

	resp := b.get("/")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, contentTypeHTML, resp.Header.Get("Content-Type"))
	require.NotEmpty(t, resp.Header.Get(requestIDHeader))

	html := body(t, resp)
	require.Contains(t, html, "Log in with Flickr")
	require.NotContains(t, html, "Log out")
	require.Contains(t, html, "https://colour-demo.glitch.me")
	require.Empty(t, f.flickr.PhotosetCalls)
}

func TestLoginFlow(t *testing.T) {
	f := setupTestFixture(t, nil)
	b := f.browser(t)

	// GET /login -> Flickr authorize page carrying the issued request token
	resp := b.get(RouteLogin)
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)
	location, err := url.Parse(resp.Header.Get("Location"))
	require.NoError(t, err)
	require.Equal(t, "www.flickr.com", location.Host)
	require.Equal(t, "/services/oauth/authorize", location.Path)
	require.Equal(t, "request-token-1", location.Query().Get("oauth_token"))

	pending, ok := f.sessionState(t, b).(session.Pending)
	require.True(t, ok)
	require.Equal(t, "request-token-1", pending.Request.Token)

	// provider redirects back
	resp = b.get(RouteOAuth + "?oauth_token=request-token-1&oauth_verifier=abc123")
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)
	require.Equal(t, RouteHome, resp.Header.Get("Location"))

	state := f.sessionState(t, b)
	require.True(t, session.LoggedIn(state))
	auth := state.(session.Authenticated)
	require.Equal(t, f.flickr.Access, auth.Access)
	require.Equal(t, "abc123", auth.Verifier)
	require.Equal(t, f.flickr.Identity, auth.Identity)

	// home page now greets the user and exercises the API with the session's token
	resp = b.get("/")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	html := body(t, resp)
	require.Contains(t, html, "Hello, Ada Lovelace")
	require.Contains(t, html, "Log out")
	require.Len(t, f.flickr.PhotosetCalls, 1)
	require.Equal(t, f.flickr.Access, f.flickr.PhotosetCalls[0])

	// logout clears everything
	resp = b.get(RouteLogout)
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)
	require.Equal(t, RouteHome, resp.Header.Get("Location"))
	require.Nil(t, b.cookie)
	require.Contains(t, body(t, b.get("/")), "Log in with Flickr")
}

func TestOAuthCallback_WithoutLogin(t *testing.T) {
	f := setupTestFixture(t, nil)
	b := f.browser(t)

	resp := b.get(RouteOAuth + "?oauth_verifier=abc123")
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)
	require.Equal(t, RouteError, resp.Header.Get("Location"))
	require.Nil(t, b.cookie)
}

func TestOAuthCallback_VerifyFails(t *testing.T) {
	f := setupTestFixture(t, nil)
	b := f.browser(t)

	require.Equal(t, http.StatusSeeOther, b.get(RouteLogin).StatusCode)
	require.NotNil(t, b.cookie)

	f.flickr.VerifyErr = fakeflickrErr("verifier expired")
	resp := b.get(RouteOAuth + "?oauth_verifier=abc123")
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)
	require.Equal(t, RouteError, resp.Header.Get("Location"))

	// the stale request token does not survive the failure
	require.Nil(t, b.cookie)
	require.Equal(t, session.Anonymous{}, f.sessionState(t, b))
}

func TestOAuthCallback_TokenMismatch(t *testing.T) {
	f := setupTestFixture(t, nil)
	b := f.browser(t)

	b.get(RouteLogin)
	resp := b.get(RouteOAuth + "?oauth_token=someone-else&oauth_verifier=abc123")
	require.Equal(t, RouteError, resp.Header.Get("Location"))
	require.Nil(t, b.cookie)
}

func TestOAuthCallback_TamperedCookie(t *testing.T) {
	f := setupTestFixture(t, nil)
	b := f.browser(t)
	b.cookie = &http.Cookie{Name: b.cookieName, Value: "forged"}

	resp := b.get(RouteOAuth + "?oauth_verifier=abc123")
	require.Equal(t, RouteError, resp.Header.Get("Location"))
	require.Len(t, resp.Header.Values("Set-Cookie"), 1)
	require.Nil(t, b.cookie)
}

func TestSessionCookieName(t *testing.T) {
	f := setupTestFixture(t, map[string]string{"SESSION_COOKIE_NAME": "colours_session"})
	b := f.browser(t)

	resp := b.get(RouteLogin)
	cookies := resp.Cookies()
	require.Len(t, cookies, 1)
	require.Equal(t, "colours_session", cookies[0].Name)

	b.get(RouteOAuth + "?oauth_verifier=abc123")
	require.Contains(t, body(t, b.get("/")), "Hello, Ada Lovelace")
}

func TestLogin_ProviderUnavailable(t *testing.T) {
	f := setupTestFixture(t, nil)
	f.flickr.RequestErr = fakeflickrErr("connection refused")
	b := f.browser(t)

	resp := b.get(RouteLogin)
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)
	require.Equal(t, RouteError, resp.Header.Get("Location"))
	require.Nil(t, b.cookie)
}

func TestLogin_RateLimited(t *testing.T) {
	f := setupTestFixture(t, map[string]string{
		"LOGIN_RATE_LIMIT": "0.001",
		"LOGIN_RATE_BURST": "2",
	})
	b := f.browser(t)

	require.Equal(t, http.StatusSeeOther, b.get(RouteLogin).StatusCode)
	require.Equal(t, http.StatusSeeOther, b.get(RouteLogin).StatusCode)
	require.Equal(t, http.StatusTooManyRequests, b.get(RouteLogin).StatusCode)
}

func TestHome_PhotosetsFailureStillRenders(t *testing.T) {
	f := setupTestFixture(t, nil)
	b := f.browser(t)
	b.get(RouteLogin)
	b.get(RouteOAuth + "?oauth_verifier=abc123")

	f.flickr.PhotosetsErr = fakeflickrErr("flickr down")
	resp := b.get("/")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Contains(t, body(t, resp), "Hello, Ada Lovelace")
	require.Len(t, f.flickr.PhotosetCalls, 1)
}

func TestHome_ExpiredSessionIsLoggedOut(t *testing.T) {
	f := setupTestFixture(t, nil)
	b := f.browser(t)

	past := time.Now().Add(-48 * time.Hour)
	old, err := session.NewStore(f.server.config.GetCookieKey(), time.Hour, session.WithClock(func() time.Time { return past }))
	require.NoError(t, err)
	value, err := old.Encode(session.Authenticated{
		Access:   f.flickr.Access,
		Identity: f.flickr.Identity,
	})
	require.NoError(t, err)
	b.cookie = &http.Cookie{Name: b.cookieName, Value: value}

	resp := b.get("/")
	require.Contains(t, body(t, resp), "Log in with Flickr")
	require.Nil(t, b.cookie)
	require.Empty(t, f.flickr.PhotosetCalls)
}

func TestLogout_Anonymous(t *testing.T) {
	f := setupTestFixture(t, nil)
	b := f.browser(t)

	resp := b.get(RouteLogout)
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)
	require.Equal(t, RouteHome, resp.Header.Get("Location"))

	cookies := resp.Cookies()
	require.Len(t, cookies, 1)
	require.Equal(t, -1, cookies[0].MaxAge)
}

func TestErrorPage(t *testing.T) {
	f := setupTestFixture(t, nil)
	resp := f.browser(t).get(RouteError)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Contains(t, body(t, resp), "Something went wrong")
}

func TestStaticFiles(t *testing.T) {
	f := setupTestFixture(t, nil)
	b := f.browser(t)

	resp := b.get("/style.css")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, "text/css; charset=utf-8", resp.Header.Get("Content-Type"))
	require.NotEmpty(t, resp.Header.Get("Cache-Control"))

	resp = b.get("/robots.txt")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, "text/plain; charset=utf-8", resp.Header.Get("Content-Type"))

	require.Equal(t, http.StatusNotFound, b.get("/missing.txt").StatusCode)
	require.Equal(t, http.StatusNotFound, b.get("/style.css/").StatusCode)
	require.Equal(t, http.StatusOK, b.get(RouteHealth).StatusCode)
}

type fakeflickrErr string

func (e fakeflickrErr) Error() string { return string(e) }
