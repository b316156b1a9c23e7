package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/jmoiron/sqlx"
	"golang.org/x/crypto/bcrypt"

	"leder/internal/config"
	"leder/internal/domain"
	"leder/internal/http/handlers"
	"leder/internal/repos"
	"leder/internal/services"
	"leder/internal/shipping"
)

const (
	adminEmail = "admin@leder.test"
	adminPass  = "Adm1nPass!"
)

var noLimits = handlers.Limits{Global: 10000, Login: 10000, Shipping: 10000}

type stubGateway struct{ event services.PaymentEvent }

func (g *stubGateway) CreateCheckout(_ context.Context, req services.CheckoutRequest) (string, error) {
	return "https://pay.example/c/" + req.OrderNumber, nil
}

func (g *stubGateway) ParseWebhook(_ []byte, signature string) (services.PaymentEvent, error) {
	if signature != "valid" {
		return services.PaymentEvent{}, errors.New("signature mismatch")
	}
	return g.event, nil
}

type stubDirectory struct{ calls int }

func (d *stubDirectory) Cities(_ context.Context, q string) []shipping.City {
	d.calls++
	return []shipping.City{{Ref: "city-kyiv", Description: "Київ"}}
}

func (d *stubDirectory) Warehouses(_ context.Context, ref string) []shipping.Warehouse {
	d.calls++
	return []shipping.Warehouse{{Ref: "wh-1", Description: "Відділення №1", Number: "1"}}
}

type testEnv struct {
	app *fiber.App
	db  *sqlx.DB
	gw  *stubGateway
	dir *stubDirectory
}

// newEnv builds the real app over a seeded in-memory database with one admin.
func newEnv(t *testing.T, lim handlers.Limits) *testEnv {
	t.Helper()
	db, err := repos.OpenDB(":memory:")
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	if _, err := repos.SeedCatalog(db); err != nil {
		t.Fatalf("seed: %v", err)
	}

	cfg := config.Config{PublicURL: "https://leder.test/", OrderPrefix: "LD", SessionTTL: time.Hour}
	env := &testEnv{db: db, gw: &stubGateway{}, dir: &stubDirectory{}}
	deps := handlers.NewDeps(db, cfg, env.gw, env.dir, nil)
	deps.Auth.Cost = bcrypt.MinCost
	if _, err := deps.Auth.ProvisionAdmin(adminEmail, adminPass); err != nil {
		t.Fatalf("provision admin: %v", err)
	}
	env.app = handlers.NewApp(deps, lim)
	return env
}

func (e *testEnv) do(t *testing.T, method, path string, body any, sid string) *http.Response {
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
	resp, err := e.app.Test(req, -1)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	return resp
}

// login returns the session cookie value.
func (e *testEnv) login(t *testing.T, email, pass string) string {
	t.Helper()
	resp := e.do(t, "POST", "/api/auth/login", map[string]string{"email": email, "password": pass}, "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("login %s: status %d", email, resp.StatusCode)
	}
	sid := cookieValue(resp, "sid")
	if sid == "" {
		t.Fatal("session cookie missing")
	}
	return sid
}

func (e *testEnv) registerAndLogin(t *testing.T, email string) string {
	t.Helper()
	resp := e.do(t, "POST", "/api/auth/register", map[string]string{
		"email": email, "password": "secret12", "firstName": "Олена", "lastName": "Коваль",
	}, "")
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("register %s: status %d", email, resp.StatusCode)
	}
	return e.login(t, email, "secret12")
}

func (e *testEnv) product(t *testing.T, slug string) *domain.Product {
	t.Helper()
	p, err := repos.NewProductRepo(e.db).FindActive(slug)
	if err != nil {
		t.Fatalf("product %s: %v", slug, err)
	}
	return p
}

func (e *testEnv) stock(t *testing.T, p *domain.Product, variant int) int {
	t.Helper()
	n, err := repos.NewInventoryRepo(e.db).Stock(p.ID, p.Variants[variant].ID)
	if err != nil {
		t.Fatal(err)
	}
	return n
}

func orderBody(email string, items ...map[string]any) map[string]any {
	return map[string]any{
		"customer":     map[string]string{"firstName": "Олена", "lastName": "Коваль", "email": email, "phone": "+380501234567"},
		"shipping":     map[string]string{"city": "Київ", "cityRef": "city-kyiv", "warehouse": "Відділення №1", "warehouseRef": "wh-1"},
		"items":        items,
		"shippingCost": 70,
	}
}

func item(p *domain.Product, variant, qty int) map[string]any {
	return map[string]any{"productId": p.ID, "variantId": p.Variants[variant].ID, "quantity": qty}
}

func decode(t *testing.T, resp *http.Response, v any) {
	t.Helper()
	defer resp.Body.Close()
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		t.Fatalf("decode: %v", err)
	}
}

func errorOf(t *testing.T, resp *http.Response) string {
	t.Helper()
	var body struct {
		Error string `json:"error"`
	}
	decode(t, resp, &body)
	return body.Error
}

func cookieValue(resp *http.Response, name string) string {
	for _, c := range resp.Cookies() {
		if c.Name == name {
			return c.Value
		}
	}
	return ""
}

type logEntry struct {
	Level  string                 `json:"level"`
	Action string                 `json:"action"`
	UserID string                 `json:"user_id"`
	Fields map[string]interface{} `json:"fields"`
}

// capture logs by temporarily replacing the standard logger output
func captureLogs(t *testing.T, fn func()) []logEntry {
	t.Helper()
	var buf bytes.Buffer
	var mu sync.Mutex
	oldW := log.Writer()
	oldFlags := log.Flags()
	log.SetOutput(&lockedWriter{w: &buf, mu: &mu})
	log.SetFlags(0)
	defer func() {
		log.SetOutput(oldW)
		log.SetFlags(oldFlags)
	}()

	fn()

	var entries []logEntry
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
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

func findLog(entries []logEntry, action string) *logEntry {
	for i := range entries {
		if entries[i].Action == action {
			return &entries[i]
		}
	}
	return nil
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
