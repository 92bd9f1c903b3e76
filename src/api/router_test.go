package api

import (
	"context"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"regexp"
	"strings"
	"testing"
	"time"

	"girlmath-server/src/db"
	"girlmath-server/src/db/sqlite"
	"girlmath-server/src/middleware"
	"girlmath-server/src/util"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T, readOnly bool) *httptest.Server {
	t.Helper()
	store, err := sqlite.NewDB(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	require.NoError(t, store.Migrate(context.Background()))

	cache, err := db.NewTransactionCache(time.Minute)
	require.NoError(t, err)
	t.Cleanup(cache.Close)

	router, err := NewRouter(store, Options{
		Sessions: util.NewSessions("router-test-secret-key", time.Hour, false),
		Cache:    cache,
		ReadOnly: readOnly,
	})
	require.NoError(t, err)

	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)
	return srv
}

// browser is a cookie-keeping client that follows redirects like a real one.
type browser struct {
	t      *testing.T
	srv    *httptest.Server
	client *http.Client
}

func newBrowser(t *testing.T, srv *httptest.Server) *browser {
	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	return &browser{t: t, srv: srv, client: &http.Client{Jar: jar}}
}

func (b *browser) do(req *http.Request) (int, string) {
	b.t.Helper()
	resp, err := b.client.Do(req)
	require.NoError(b.t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(b.t, err)
	return resp.StatusCode, string(body)
}

func (b *browser) get(path string) (int, string) {
	b.t.Helper()
	req, err := http.NewRequest(http.MethodGet, b.srv.URL+path, nil)
	require.NoError(b.t, err)
	return b.do(req)
}

func (b *browser) csrfToken() string {
	u, _ := url.Parse(b.srv.URL)
	for _, c := range b.client.Jar.Cookies(u) {
		if c.Name == middleware.CSRFCookieName {
			return c.Value
		}
	}
	b.get("/login")
	for _, c := range b.client.Jar.Cookies(u) {
		if c.Name == middleware.CSRFCookieName {
			return c.Value
		}
	}
	b.t.Fatal("no csrf cookie issued")
	return ""
}

func (b *browser) post(path string, form url.Values) (int, string) {
	b.t.Helper()
	form.Set("csrf_token", b.csrfToken())
	return b.postRaw(path, form)
}

func (b *browser) postRaw(path string, form url.Values) (int, string) {
	b.t.Helper()
	req, err := http.NewRequest(http.MethodPost, b.srv.URL+path, strings.NewReader(form.Encode()))
	require.NoError(b.t, err)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return b.do(req)
}

func (b *browser) signUp(username, password string) {
	b.t.Helper()
	_, body := b.post("/register", url.Values{"username": {username}, "password": {password}})
	require.Contains(b.t, body, "Registration successful! You can now log in.")
	_, body = b.post("/login", url.Values{"username": {username}, "password": {password}})
	require.Contains(b.t, body, "Welcome back, "+username)
}

var (
	deleteLink = regexp.MustCompile(`/delete/(\d+)`)
	goalLink   = regexp.MustCompile(`/update_goal/(\d+)`)
)

func TestRouter_RequiresLogin(t *testing.T) {
	srv := newTestServer(t, false)
	b := newBrowser(t, srv)

	for _, path := range []string{"/", "/analytics", "/goals", "/delete/1", "/logout"} {
		status, body := b.get(path)
		assert.Equal(t, http.StatusOK, status, path)
		assert.Contains(t, body, "Please log in to access this page.", path)
		assert.Contains(t, body, `action="/login"`, path)
	}
}

func TestRouter_LedgerFlow(t *testing.T) {
	srv := newTestServer(t, false)
	amy := newBrowser(t, srv)
	amy.signUp("amy", "pw123")

	_, body := amy.post("/add", url.Values{"description": {"Coffee"}, "amount": {"4.50"}})
	assert.Contains(t, body, "Transaction added and balance updated!")
	assert.Contains(t, body, "Coffee")
	assert.Contains(t, body, "-$4.50")

	_, body = amy.post("/set_balance", url.Values{"balance": {"100"}})
	assert.Contains(t, body, "Balance set to $100.00")

	_, body = amy.post("/add", url.Values{"description": {"Rent"}, "amount": {"50"}})
	assert.Contains(t, body, "$50.00")

	_, body = amy.post("/add", url.Values{"description": {"Oops"}, "amount": {"lots"}})
	assert.Contains(t, body, "Amount must be a valid number.")

	_, body = amy.get("/analytics")
	assert.Contains(t, body, "Analytics")
	assert.Contains(t, body, "Rent")

	_, body = amy.get("/")
	match := deleteLink.FindStringSubmatch(body)
	require.NotNil(t, match)

	// Another user cannot delete amy's transaction.
	bea := newBrowser(t, srv)
	bea.signUp("bea", "secret")
	_, body = bea.get("/delete/" + match[1])
	assert.Contains(t, body, "Unauthorized action.")

	_, body = amy.get("/delete/" + match[1])
	assert.Contains(t, body, "Transaction deleted and balance restored.")

	status, body := amy.get("/delete/abc")
	assert.Equal(t, http.StatusNotFound, status)
	assert.Contains(t, body, "Page not found")
}

func TestRouter_GoalFlow(t *testing.T) {
	srv := newTestServer(t, false)
	amy := newBrowser(t, srv)
	amy.signUp("amy", "pw123")

	_, body := amy.post("/goals", url.Values{"goal_name": {"Trip"}, "target_amount": {"1000"}})
	assert.Contains(t, body, "Trip")
	assert.Contains(t, body, "0.00%")

	match := goalLink.FindStringSubmatch(body)
	require.NotNil(t, match)

	_, body = amy.post("/update_goal/"+match[1], url.Values{"saved_amount": {"250"}})
	assert.Contains(t, body, "Goal progress updated!")
	assert.Contains(t, body, "25.00%")

	_, body = amy.post("/goals", url.Values{"goal_name": {""}, "target_amount": {"5"}})
	assert.Contains(t, body, "Please fill in all fields.")

	_, body = amy.get("/delete_goal/" + match[1])
	assert.Contains(t, body, "Goal deleted successfully.")
	assert.NotContains(t, body, "/update_goal/")
}

func TestRouter_RegisterAndLoginErrors(t *testing.T) {
	srv := newTestServer(t, false)
	b := newBrowser(t, srv)
	b.signUp("amy", "pw123")

	other := newBrowser(t, srv)
	_, body := other.post("/register", url.Values{"username": {"amy"}, "password": {"x"}})
	assert.Contains(t, body, "Username already taken.")

	_, body = other.post("/register", url.Values{"username": {""}, "password": {""}})
	assert.Contains(t, body, "Please fill out all fields.")

	_, body = other.post("/login", url.Values{"username": {"amy"}, "password": {"wrong"}})
	assert.Contains(t, body, "Invalid username/email or password.")

	_, body = b.get("/logout")
	assert.Contains(t, body, "logged out")
	_, body = b.get("/")
	assert.Contains(t, body, "Please log in to access this page.")
}

func TestRouter_CSRF(t *testing.T) {
	srv := newTestServer(t, false)
	b := newBrowser(t, srv)
	b.signUp("amy", "pw123")

	status, body := b.postRaw("/add", url.Values{"description": {"Coffee"}, "amount": {"1"}, "csrf_token": {"forged"}})
	assert.Equal(t, http.StatusForbidden, status)
	assert.Contains(t, body, "Not allowed")

	_, body = b.get("/")
	assert.NotContains(t, body, "Coffee")
}

func TestRouter_NotFoundAndHealth(t *testing.T) {
	srv := newTestServer(t, false)
	b := newBrowser(t, srv)

	status, body := b.get("/nope")
	assert.Equal(t, http.StatusNotFound, status)
	assert.Contains(t, body, "Page not found")

	status, body = b.get("/health")
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "ok", body)
}

func TestRouter_ReadOnly(t *testing.T) {
	srv := newTestServer(t, true)
	b := newBrowser(t, srv)
	b.signUp("amy", "pw123")

	status, body := b.post("/add", url.Values{"description": {"Coffee"}, "amount": {"1"}})
	assert.Equal(t, http.StatusForbidden, status)
	assert.Contains(t, body, "Demo mode: changes are disabled.")

	status, _ = b.get("/delete/1")
	assert.Equal(t, http.StatusForbidden, status)

	status, body = b.get("/")
	assert.Equal(t, http.StatusOK, status)
	assert.NotContains(t, body, "Coffee")
}
