package handlers_test

import (
	"net/http"
	"testing"
)

type reviewResp struct {
	ID       string  `json:"id"`
	Rating   int     `json:"rating"`
	ParentID *string `json:"parentId"`
}

func TestReviewFlow(t *testing.T) {
	env := newEnv(t, noLimits)
	wallet := env.product(t, "wallet-slim")
	authorSID := env.registerAndLogin(t, "author@example.com")
	otherSID := env.registerAndLogin(t, "other@example.com")
	adminSID := env.login(t, adminEmail, adminPass)

	review := map[string]any{"productId": wallet.ID, "rating": 5, "comment": "Чудовий гаманець"}
	if resp := env.do(t, "POST", "/api/reviews", review, ""); resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("anonymous review: expected 401, got %d", resp.StatusCode)
	}
	resp := env.do(t, "POST", "/api/reviews", review, authorSID)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create: expected 201, got %d", resp.StatusCode)
	}
	var r reviewResp
	decode(t, resp, &r)

	if resp := env.do(t, "POST", "/api/reviews", review, authorSID); resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("second review: expected 400, got %d", resp.StatusCode)
	}

	if resp := env.do(t, "PUT", "/api/reviews/"+r.ID, map[string]any{"rating": 1}, otherSID); resp.StatusCode != http.StatusForbidden {
		t.Fatalf("foreign edit: expected 403, got %d", resp.StatusCode)
	}

	resp = env.do(t, "POST", "/api/reviews/"+r.ID+"/reply", map[string]string{"comment": "Дякуємо!"}, adminSID)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("reply: expected 201, got %d", resp.StatusCode)
	}
	var reply reviewResp
	decode(t, resp, &reply)
	if reply.ParentID == nil || *reply.ParentID != r.ID {
		t.Fatalf("reply not attached: %+v", reply)
	}

	var like struct {
		Liked      bool `json:"liked"`
		LikesCount int  `json:"likesCount"`
	}
	decode(t, env.do(t, "POST", "/api/reviews/"+r.ID+"/like", nil, otherSID), &like)
	if !like.Liked || like.LikesCount != 1 {
		t.Fatalf("unexpected like result %+v", like)
	}

	var list struct {
		Reviews       []reviewResp `json:"reviews"`
		AverageRating float64      `json:"averageRating"`
		TotalReviews  int          `json:"totalReviews"`
	}
	decode(t, env.do(t, "GET", "/api/reviews?productId="+wallet.ID, nil, ""), &list)
	if list.TotalReviews != 1 || list.AverageRating != 5 {
		t.Fatalf("unexpected summary %+v", list)
	}
	if resp := env.do(t, "GET", "/api/reviews", nil, ""); resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("missing productId: expected 400, got %d", resp.StatusCode)
	}

	if resp := env.do(t, "DELETE", "/api/reviews/"+r.ID, nil, otherSID); resp.StatusCode != http.StatusForbidden {
		t.Fatalf("foreign delete: expected 403, got %d", resp.StatusCode)
	}
	if resp := env.do(t, "DELETE", "/api/reviews/"+r.ID, nil, authorSID); resp.StatusCode != http.StatusOK {
		t.Fatalf("delete: expected 200, got %d", resp.StatusCode)
	}
	if resp := env.do(t, "GET", "/api/reviews/"+r.ID, nil, ""); resp.StatusCode != http.StatusNotFound {
		t.Fatalf("deleted review: expected 404, got %d", resp.StatusCode)
	}
}
