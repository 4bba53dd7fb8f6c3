package main

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/sirupsen/logrus"

	"github.com/Simplici0/nebula-roi/internal/db"
	"github.com/Simplici0/nebula-roi/internal/lead"
	"github.com/Simplici0/nebula-roi/internal/migrations"
	"github.com/Simplici0/nebula-roi/internal/roi"
	"github.com/Simplici0/nebula-roi/internal/session"
)

type recordingSink struct {
	leads []lead.Lead
}

func (r *recordingSink) Submit(_ context.Context, l lead.Lead) error {
	r.leads = append(r.leads, l)
	return nil
}

type testServer struct {
	srv      *server
	handler  http.Handler
	sessions *session.MemoryStore
	sink     *recordingSink
	db       *sqlx.DB
	cookies  []*http.Cookie
}

func newTestDB(t *testing.T) *sqlx.DB {
	t.Helper()

	database, err := db.Open(filepath.Join(t.TempDir(), "server-test.db"))
	if err != nil {
		t.Fatalf("open sqlite database: %v", err)
	}
	t.Cleanup(func() { _ = database.Close() })

	if err := migrations.Up(database.DB); err != nil {
		t.Fatalf("run migrations: %v", err)
	}
	return database
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	logger := logrus.New()
	logger.SetOutput(io.Discard)

	database := newTestDB(t)
	sessions := session.NewMemoryStore(time.Hour)
	sink := &recordingSink{}

	srv := &server{
		auth:        newAuthService(database, "test-secret"),
		sessions:    sessions,
		leads:       sink,
		leadList:    lead.NewRepository(database),
		logger:      logger,
		templateDir: "../../web/templates",
		now:         func() time.Time { return time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC) },
	}

	return &testServer{
		srv:      srv,
		handler:  srv.routes(newIPRateLimiter(100), newIPRateLimiter(100), "../../web/static"),
		sessions: sessions,
		sink:     sink,
		db:       database,
	}
}

// do sends a request carrying the cookies collected so far and keeps any new ones.
func (ts *testServer) do(t *testing.T, method, target string, form url.Values) *httptest.ResponseRecorder {
	t.Helper()

	var body io.Reader
	if form != nil {
		body = strings.NewReader(form.Encode())
	}
	req := httptest.NewRequest(method, target, body)
	if form != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}
	for _, c := range ts.cookies {
		req.AddCookie(c)
	}

	rr := httptest.NewRecorder()
	ts.handler.ServeHTTP(rr, req)

	for _, c := range rr.Result().Cookies() {
		ts.setCookie(c)
	}
	return rr
}

func (ts *testServer) setCookie(c *http.Cookie) {
	for i, existing := range ts.cookies {
		if existing.Name == c.Name {
			ts.cookies[i] = c
			return
		}
	}
	ts.cookies = append(ts.cookies, c)
}

func (ts *testServer) state(t *testing.T) roi.InputState {
	t.Helper()

	for _, c := range ts.cookies {
		if c.Name == calcCookieName {
			state, err := ts.sessions.Get(context.Background(), c.Value)
			if err != nil {
				t.Fatalf("load session state: %v", err)
			}
			return state
		}
	}
	t.Fatalf("no calculator session cookie")
	return roi.InputState{}
}

func expectRedirect(t *testing.T, rr *httptest.ResponseRecorder, prefix string) {
	t.Helper()

	if rr.Code != http.StatusSeeOther {
		t.Fatalf("expected status 303, got %d: %s", rr.Code, rr.Body.String())
	}
	if loc := rr.Header().Get("Location"); !strings.HasPrefix(loc, prefix) {
		t.Fatalf("expected redirect to %q, got %q", prefix, loc)
	}
}
