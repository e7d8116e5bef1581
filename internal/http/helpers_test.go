package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"

	"ektagames/internal/config"
	"ektagames/internal/domain"
	"ektagames/internal/http/handlers"
	applog "ektagames/internal/log"
	"ektagames/internal/repos"
)

type stubCatalog struct {
	products []domain.Product
}

func (s *stubCatalog) FetchCatalog(context.Context) []domain.Product {
	return s.products
}

func (s *stubCatalog) FetchProduct(_ context.Context, id int) (domain.Product, bool) {
	for _, p := range s.products {
		if p.ID == id {
			return p, true
		}
	}
	return domain.Product{}, false
}

func storeProducts() *stubCatalog {
	return &stubCatalog{products: []domain.Product{
		{ID: 1, Title: "Space Odyssey", Price: decimal.RequireFromString("10.00"), Category: "games", Stock: 9, Source: "dummyjson"},
		{ID: 2, Title: "Retro Racer", Price: decimal.RequireFromString("25.50"), Category: "games", Stock: 2, Source: "dummyjson"},
		{ID: 201, Title: "Denim Jacket", Price: decimal.RequireFromString("40.00"), Category: "clothing", Stock: 0, Source: "fakestore"},
		{ID: 202, Title: "Gold & Silver Bangle", Price: decimal.RequireFromString("15.00"), Category: "clothing", Stock: 7, Source: "fakestore"},
	}}
}

func testConfig() config.Config {
	return config.Config{
		DBDSN:   ":memory:",
		Catalog: config.CatalogConfig{PageInitial: 12, PageStep: 8},
	}
}

func roomyLimits() handlers.Limits {
	return handlers.Limits{Login: 100, Availability: 100, Recommend: 100, Window: time.Minute}
}

type testApp struct {
	app  *fiber.App
	db   *sqlx.DB
	deps *handlers.Deps
}

// newTestApp wires the real handlers over an in-memory database, mirroring
// the middleware order of cmd/ektagames minus CSRF.
func newTestApp(t *testing.T, lim handlers.Limits, b handlers.Backends) testApp {
	t.Helper()
	db, err := repos.OpenDB(":memory:")
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if b.Products == nil {
		b.Products = storeProducts()
	}
	deps := handlers.NewDeps(db, testConfig(), b)
	t.Cleanup(func() {
		deps.Close()
		_ = db.Close()
	})

	app := fiber.New(fiber.Config{ErrorHandler: handlers.ErrorHandler})
	app.Server().MaxRequestBodySize = 1 << 20 // 1 MiB
	app.Use(requestid.New())
	app.Use(handlers.AttachUser(deps.Auth))
	deps.Mount(app, lim)
	return testApp{app: app, db: db, deps: deps}
}

func (ta testApp) call(t *testing.T, method, path string, body any, sid string) *http.Response {
	t.Helper()
	var r io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatal(err)
		}
		r = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, r)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if sid != "" {
		req.AddCookie(&http.Cookie{Name: "sid", Value: sid})
	}
	resp, err := ta.app.Test(req, 5000)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	return resp
}

// login signs a seeded user in and returns the session cookie.
func (ta testApp) login(t *testing.T, email string) string {
	t.Helper()
	resp := ta.call(t, "POST", "/api/v1/auth/login", map[string]string{"email": email, "password": "Passw0rd!"}, "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("login %s: status %d", email, resp.StatusCode)
	}
	sid := cookie(resp, "sid")
	if sid == "" {
		t.Fatal("sid cookie missing")
	}
	return sid
}

func cookie(resp *http.Response, name string) string {
	for _, c := range resp.Cookies() {
		if c.Name == name {
			return c.Value
		}
	}
	return ""
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	defer resp.Body.Close()
	var v T
	if err := json.NewDecoder(resp.Body).Decode(&v); err != nil {
		t.Fatalf("decode: %v", err)
	}
	return v
}

type logEntry struct {
	Level  string         `json:"level"`
	Kind   string         `json:"kind"`
	Action string         `json:"action"`
	Err    string         `json:"err"`
	ReqID  string         `json:"req_id"`
	UserID string         `json:"user_id"`
	Fields map[string]any `json:"fields"`
}

type lockedWriter struct {
	w  *bytes.Buffer
	mu *sync.Mutex
}

func (lw *lockedWriter) Write(p []byte) (int, error) {
	lw.mu.Lock()
	defer lw.mu.Unlock()
	return lw.w.Write(p)
}

// captureLogs redirects the application log while fn runs and returns the
// parsed entries.
func captureLogs(t *testing.T, fn func()) []logEntry {
	t.Helper()
	var buf bytes.Buffer
	var mu sync.Mutex
	applog.SetOutput(&lockedWriter{w: &buf, mu: &mu})
	defer applog.SetOutput(os.Stdout)

	fn()

	mu.Lock()
	raw := buf.String()
	mu.Unlock()
	var entries []logEntry
	for _, line := range strings.Split(strings.TrimSpace(raw), "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		var e logEntry
		if err := json.Unmarshal([]byte(line), &e); err == nil {
			entries = append(entries, e)
		}
	}
	return entries
}

func findLog(entries []logEntry, action string) (logEntry, bool) {
	for _, e := range entries {
		if e.Action == action {
			return e, true
		}
	}
	return logEntry{}, false
}
