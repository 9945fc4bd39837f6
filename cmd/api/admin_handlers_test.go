package main

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/google/uuid"

	"github.com/MOUAYEDSB/terfer-commerce-sub001/internal/admin"
)

func TestAdminStats(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)

	w := doJSON(t, env, http.MethodGet, "/api/admin/stats", bearer(t, uuid.NewString(), "admin"), nil)
	if w.Code != http.StatusOK {
		t.Fatalf("stats: %d %s", w.Code, w.Body.String())
	}
	var st admin.Stats
	if err := json.Unmarshal(w.Body.Bytes(), &st); err != nil {
		t.Fatalf("invalid json: %v", err)
	}

	w = doJSON(t, env, http.MethodGet, "/api/admin/stats/top-products", bearer(t, uuid.NewString(), "admin"), nil)
	if w.Code != http.StatusOK {
		t.Fatalf("top products: %d %s", w.Code, w.Body.String())
	}
	var resp struct {
		Items []admin.TopProduct `json:"items"`
	}
	_ = json.Unmarshal(w.Body.Bytes(), &resp)
	if len(resp.Items) != 1 || resp.Items[0].Name != "Mouse" {
		t.Fatalf("top products: %+v", resp.Items)
	}
}

func TestAdminStats_RoleGate(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)

	for _, role := range []string{"customer", "seller"} {
		w := doJSON(t, env, http.MethodGet, "/api/admin/stats", bearer(t, uuid.NewString(), role), nil)
		if w.Code != http.StatusForbidden {
			t.Fatalf("%s on admin stats: %d (expected 403)", role, w.Code)
		}
	}
	w := doJSON(t, env, http.MethodGet, "/api/admin/stats", "", nil)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("anonymous: %d (expected 401)", w.Code)
	}
}
