package handlers_test

import (
	"net/http"
	"testing"
)

func TestAdminRoutesRequireAdmin(t *testing.T) {
	env := newEnv(t, noLimits)
	customerSID := env.registerAndLogin(t, "olena@example.com")
	adminSID := env.login(t, adminEmail, adminPass)

	routes := []struct{ method, path string }{
		{"GET", "/api/admin/stats"},
		{"GET", "/api/admin/products"},
		{"GET", "/api/admin/users"},
		{"GET", "/api/admin/reviews"},
		{"GET", "/api/admin/support"},
		{"DELETE", "/api/admin/products/whatever"},
	}
	for _, r := range routes {
		if resp := env.do(t, r.method, r.path, nil, ""); resp.StatusCode != http.StatusUnauthorized {
			t.Fatalf("%s %s anonymous: expected 401, got %d", r.method, r.path, resp.StatusCode)
		}
		if resp := env.do(t, r.method, r.path, nil, customerSID); resp.StatusCode != http.StatusForbidden {
			t.Fatalf("%s %s customer: expected 403, got %d", r.method, r.path, resp.StatusCode)
		}
	}

	if resp := env.do(t, "GET", "/api/admin/stats", nil, adminSID); resp.StatusCode != http.StatusOK {
		t.Fatalf("admin stats: expected 200, got %d", resp.StatusCode)
	}
}

func TestAdminProductLifecycle(t *testing.T) {
	env := newEnv(t, noLimits)
	adminSID := env.login(t, adminEmail, adminPass)

	resp := env.do(t, "POST", "/api/admin/products", map[string]any{
		"title":    "Тревел-кейс",
		"price":    2400,
		"category": "accessories",
		"status":   "active",
		"variants": []map[string]any{{"color": "Чорний", "colorHex": "#1A1A1A", "stock": 3}},
	}, adminSID)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create: expected 201, got %d (%s)", resp.StatusCode, errorOf(t, resp))
	}
	var p struct {
		ID       string `json:"id"`
		Slug     string `json:"slug"`
		Variants []struct {
			ID string `json:"id"`
		} `json:"variants"`
	}
	decode(t, resp, &p)
	if p.Slug == "" || len(p.Variants) != 1 {
		t.Fatalf("unexpected product %+v", p)
	}

	if resp := env.do(t, "GET", "/api/products/"+p.Slug, nil, ""); resp.StatusCode != http.StatusOK {
		t.Fatalf("public detail: expected 200, got %d", resp.StatusCode)
	}

	resp = env.do(t, "PUT", "/api/admin/products/"+p.ID+"/variants/"+p.Variants[0].ID+"/stock", map[string]int{"stock": 0}, adminSID)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("set stock: expected 200, got %d", resp.StatusCode)
	}
	var avail struct {
		Status string `json:"status"`
		Qty    int    `json:"qty"`
	}
	decode(t, resp, &avail)
	if avail.Status != "OUT_OF_STOCK" || avail.Qty != 0 {
		t.Fatalf("unexpected availability %+v", avail)
	}

	resp = env.do(t, "PUT", "/api/admin/products/"+p.ID+"/variants/"+p.Variants[0].ID+"/stock", map[string]int{"stock": -1}, adminSID)
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("negative stock: expected 400, got %d", resp.StatusCode)
	}

	if resp := env.do(t, "DELETE", "/api/admin/products/"+p.ID, nil, adminSID); resp.StatusCode != http.StatusOK {
		t.Fatalf("delete: expected 200, got %d", resp.StatusCode)
	}
	if resp := env.do(t, "GET", "/api/products/"+p.Slug, nil, ""); resp.StatusCode != http.StatusNotFound {
		t.Fatalf("deleted product: expected 404, got %d", resp.StatusCode)
	}
}

func TestSupportTicketFlow(t *testing.T) {
	env := newEnv(t, noLimits)
	adminSID := env.login(t, adminEmail, adminPass)

	resp := env.do(t, "POST", "/api/support", map[string]string{
		"name": "Ірина", "email": "iryna@example.com", "subject": "Доставка", "message": "Коли відправка?",
	}, "")
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("open ticket: expected 201, got %d", resp.StatusCode)
	}
	var ticket struct {
		ID     string `json:"id"`
		Status string `json:"status"`
	}
	decode(t, resp, &ticket)

	resp = env.do(t, "POST", "/api/support", map[string]string{"name": "Ірина", "email": "bad", "subject": "x", "message": "y"}, "")
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("bad ticket: expected 400, got %d", resp.StatusCode)
	}

	resp = env.do(t, "POST", "/api/admin/support/"+ticket.ID+"/reply", map[string]string{"reply": "Завтра."}, adminSID)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("reply: expected 200, got %d", resp.StatusCode)
	}
	var res struct {
		EmailSent bool `json:"emailSent"`
		Ticket    struct {
			Status string `json:"status"`
		} `json:"ticket"`
	}
	decode(t, resp, &res)
	if res.EmailSent {
		t.Fatal("no mailer is configured, nothing can be sent")
	}

	if resp := env.do(t, "PUT", "/api/admin/support/"+ticket.ID, map[string]string{"status": "bogus"}, adminSID); resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("bad status: expected 400, got %d", resp.StatusCode)
	}
	if resp := env.do(t, "DELETE", "/api/admin/support/"+ticket.ID, nil, adminSID); resp.StatusCode != http.StatusOK {
		t.Fatalf("delete: expected 200, got %d", resp.StatusCode)
	}
	if resp := env.do(t, "DELETE", "/api/admin/support/"+ticket.ID, nil, adminSID); resp.StatusCode != http.StatusNotFound {
		t.Fatalf("second delete: expected 404, got %d", resp.StatusCode)
	}
}
