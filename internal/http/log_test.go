package handlers_test

import (
	"net/http"
	"testing"

	"leder/internal/http/handlers"
)

func TestAuthLogging(t *testing.T) {
	env := newEnv(t, noLimits)

	failLogs := captureLogs(t, func() {
		env.do(t, "POST", "/api/auth/login", map[string]string{"email": adminEmail, "password": "badpass!"}, "")
	})
	fail := findLog(failLogs, "auth.login.fail")
	if fail == nil {
		t.Fatal("auth.login.fail log not found")
	}
	if fail.Fields["email"] != adminEmail {
		t.Fatalf("auth.login.fail missing email field: %+v", fail.Fields)
	}
	for _, e := range failLogs {
		for _, v := range e.Fields {
			if v == "badpass!" {
				t.Fatalf("password leaked into %s", e.Action)
			}
		}
	}

	okLogs := captureLogs(t, func() { env.login(t, adminEmail, adminPass) })
	ok := findLog(okLogs, "auth.login")
	if ok == nil || ok.Level != "audit" || ok.UserID == "" {
		t.Fatalf("auth.login audit entry missing or without user: %+v", ok)
	}
}

func TestOrderAuditRecordsTotals(t *testing.T) {
	env := newEnv(t, noLimits)
	wallet := env.product(t, "wallet-slim")

	body := orderBody("olena@example.com", item(wallet, 0, 1))
	body["totalPrice"] = 999
	logs := captureLogs(t, func() {
		if resp := env.do(t, "POST", "/api/orders", body, ""); resp.StatusCode != http.StatusCreated {
			t.Fatalf("place order: %d", resp.StatusCode)
		}
	})
	e := findLog(logs, "order.place")
	if e == nil {
		t.Fatal("order.place audit not found")
	}
	if e.Fields["server_total"] != "1870" || e.Fields["client_total"] != "999" {
		t.Fatalf("unexpected totals %+v", e.Fields)
	}
	if e.Fields["mismatch"] != true {
		t.Fatalf("client total mismatch not flagged: %+v", e.Fields)
	}
	if e.Fields["order_number"] == "" {
		t.Fatal("order number missing from audit")
	}
}

func TestAccessDeniedLogging(t *testing.T) {
	env := newEnv(t, noLimits)
	sid := env.registerAndLogin(t, "olena@example.com")

	logs := captureLogs(t, func() {
		env.do(t, "GET", "/api/admin/stats", nil, sid)
		env.do(t, "GET", "/api/admin/stats", nil, "")
	})
	if findLog(logs, "access.denied.admin") == nil {
		t.Fatal("access.denied.admin not logged")
	}
	if findLog(logs, "access.denied.anonymous") == nil {
		t.Fatal("access.denied.anonymous not logged")
	}
}

func TestRateLimitLogging(t *testing.T) {
	env := newEnv(t, handlers.Limits{Global: 1000, Login: 1, Shipping: 1000})

	logs := captureLogs(t, func() {
		env.do(t, "POST", "/api/auth/login", map[string]string{"email": "x@example.com", "password": "nope123"}, "")
		if resp := env.do(t, "POST", "/api/auth/login", map[string]string{"email": "x@example.com", "password": "nope123"}, ""); resp.StatusCode != http.StatusTooManyRequests {
			t.Fatalf("expected 429, got %d", resp.StatusCode)
		}
	})
	e := findLog(logs, "rate.login.hit")
	if e == nil || e.Level != "warn" {
		t.Fatalf("rate.login.hit not logged as warn: %+v", e)
	}
}
