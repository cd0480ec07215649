package main

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
)

func loadTestFixture(t *testing.T) *storeFixture {
	t.Helper()
	fixture, err := loadFixture(filepath.Join("testdata", "store.json"))
	if err != nil {
		t.Fatalf("loading fixture: %v", err)
	}
	return fixture
}

func testServer(t *testing.T) *echo.Echo {
	t.Helper()
	return newServer(testLogger(), loadTestFixture(t))
}

func doRequest(t *testing.T, e *echo.Echo, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, target, http.NoBody)
	}
	w := httptest.NewRecorder()
	e.ServeHTTP(w, req)
	return w
}

func TestLoadFixture(t *testing.T) {
	fixture := loadTestFixture(t)
	if len(fixture.Resources) == 0 {
		t.Fatal("expected resources in fixture")
	}
	for _, res := range fixture.Resources {
		if res.Endpoint == "" {
			t.Error("expected non-empty endpoint")
		}
		if res.Identifier == "" {
			t.Errorf("resource %s: expected identifier", res.Endpoint)
		}
	}
}

func TestTokenHandler(t *testing.T) {
	e := testServer(t)

	t.Run("valid credentials", func(t *testing.T) {
		w := doRequest(t, e, http.MethodPost, "/rest/V1/integration/admin/token",
			`{"username":"admin","password":"secret"}`)

		if w.Code != http.StatusOK {
			t.Fatalf("status=%d, want %d", w.Code, http.StatusOK)
		}

		var token string
		if err := json.NewDecoder(w.Body).Decode(&token); err != nil {
			t.Fatalf("decoding token: %v", err)
		}
		if !strings.HasPrefix(token, "mock-admin-") {
			t.Errorf("token=%q, want mock-admin- prefix", token)
		}
	})

	t.Run("missing credentials", func(t *testing.T) {
		w := doRequest(t, e, http.MethodPost, "/rest/V1/integration/admin/token", `{}`)

		if w.Code != http.StatusUnauthorized {
			t.Fatalf("status=%d, want %d", w.Code, http.StatusUnauthorized)
		}
	})
}

func TestSearchHandler_AllItems(t *testing.T) {
	e := testServer(t)

	w := doRequest(t, e, http.MethodGet, "/rest/V1/orders", "")

	if w.Code != http.StatusOK {
		t.Fatalf("status=%d, want %d", w.Code, http.StatusOK)
	}

	var resp struct {
		Items      []map[string]any `json:"items"`
		TotalCount int              `json:"total_count"`
	}
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if resp.TotalCount != 5 {
		t.Errorf("total_count=%d, want 5", resp.TotalCount)
	}
	if len(resp.Items) != 5 {
		t.Errorf("items=%d, want 5", len(resp.Items))
	}
}

func TestSearchHandler_EqFilter(t *testing.T) {
	e := testServer(t)

	target := "/rest/V1/orders" +
		"?searchCriteria[filter_groups][0][filters][0][field]=status" +
		"&searchCriteria[filter_groups][0][filters][0][value]=processing" +
		"&searchCriteria[filter_groups][0][filters][0][condition_type]=eq"
	w := doRequest(t, e, http.MethodGet, target, "")

	var resp struct {
		Items      []map[string]any `json:"items"`
		TotalCount int              `json:"total_count"`
	}
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if resp.TotalCount != 2 {
		t.Errorf("total_count=%d, want 2", resp.TotalCount)
	}
	for _, item := range resp.Items {
		if item["status"] != "processing" {
			t.Errorf("status=%v, want processing", item["status"])
		}
	}
}

func TestSearchHandler_Pagination(t *testing.T) {
	e := testServer(t)

	target := "/rest/V1/orders?searchCriteria[pageSize]=2&searchCriteria[currentPage]=2"
	w := doRequest(t, e, http.MethodGet, target, "")

	var resp struct {
		Items      []map[string]any `json:"items"`
		TotalCount int              `json:"total_count"`
	}
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if resp.TotalCount != 5 {
		t.Errorf("total_count=%d, want 5", resp.TotalCount)
	}
	if len(resp.Items) != 2 {
		t.Errorf("items=%d, want 2", len(resp.Items))
	}
	// Page 2 of size 2 starts at the third record.
	if got := resp.Items[0]["increment_id"]; got != "000000003" {
		t.Errorf("first item=%v, want 000000003", got)
	}
}

func TestSearchHandler_PageBeyondEnd(t *testing.T) {
	e := testServer(t)

	target := "/rest/V1/orders?searchCriteria[pageSize]=100&searchCriteria[currentPage]=3"
	w := doRequest(t, e, http.MethodGet, target, "")

	var resp struct {
		Items      []map[string]any `json:"items"`
		TotalCount int              `json:"total_count"`
	}
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if len(resp.Items) != 0 {
		t.Errorf("items=%d, want 0", len(resp.Items))
	}
	if resp.Items == nil {
		t.Error("expected empty array, got null")
	}
}

func TestItemHandler(t *testing.T) {
	e := testServer(t)

	t.Run("found", func(t *testing.T) {
		w := doRequest(t, e, http.MethodGet, "/rest/V1/products/WS-1002", "")

		if w.Code != http.StatusOK {
			t.Fatalf("status=%d, want %d", w.Code, http.StatusOK)
		}

		var item map[string]any
		if err := json.NewDecoder(w.Body).Decode(&item); err != nil {
			t.Fatalf("decoding response: %v", err)
		}
		if item["name"] != "Red Widget" {
			t.Errorf("name=%v, want Red Widget", item["name"])
		}
	})

	t.Run("missing", func(t *testing.T) {
		w := doRequest(t, e, http.MethodGet, "/rest/V1/products/NOPE", "")

		if w.Code != http.StatusNotFound {
			t.Fatalf("status=%d, want %d", w.Code, http.StatusNotFound)
		}

		var resp map[string]any
		if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
			t.Fatalf("decoding response: %v", err)
		}
		if resp["message"] == "" {
			t.Error("expected Magento-style error message")
		}
	})
}

func TestItemHandler_NumericIdentifier(t *testing.T) {
	e := testServer(t)

	w := doRequest(t, e, http.MethodGet, "/rest/V1/customers/12", "")

	if w.Code != http.StatusOK {
		t.Fatalf("status=%d, want %d", w.Code, http.StatusOK)
	}

	var item map[string]any
	if err := json.NewDecoder(w.Body).Decode(&item); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if item["email"] != "bob@example.com" {
		t.Errorf("email=%v, want bob@example.com", item["email"])
	}
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}
