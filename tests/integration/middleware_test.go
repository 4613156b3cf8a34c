//go:build integration

package integration

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"testing"
)

func TestRequestID(t *testing.T) {
	t.Run("generated on api errors", func(t *testing.T) {
		resp := doGet(t, "/api/orders")
		defer resp.Body.Close()
		expectStatus(t, resp, http.StatusUnauthorized)

		if resp.Header.Get("X-Request-ID") == "" {
			t.Error("401 response carries no X-Request-ID")
		}
	})

	t.Run("echoed on downloads", func(t *testing.T) {
		o := createOrder(t, userKey, "Request id")

		req, err := http.NewRequestWithContext(context.Background(), http.MethodGet,
			baseURL+"/api/invoices/"+o.InvoiceID+"/download", nil)
		if err != nil {
			t.Fatalf("create request: %v", err)
		}
		req.Header.Set("api_key", userKey)
		req.Header.Set("X-Request-ID", "sales-download-0001")

		resp, err := httpClient.Do(req)
		if err != nil {
			t.Fatalf("do request: %v", err)
		}
		defer resp.Body.Close()

		if got := resp.Header.Get("X-Request-ID"); got != "sales-download-0001" {
			t.Errorf("X-Request-ID: got %q, want sales-download-0001", got)
		}
	})
}

func TestCORS_PreflightAllowsAPIKey(t *testing.T) {
	req, err := http.NewRequestWithContext(context.Background(), http.MethodOptions, baseURL+"/api/discounts/x", nil)
	if err != nil {
		t.Fatalf("create request: %v", err)
	}
	req.Header.Set("Origin", "http://backoffice.example.com")
	req.Header.Set("Access-Control-Request-Method", http.MethodPatch)
	req.Header.Set("Access-Control-Request-Headers", "api_key, content-type")

	resp, err := httpClient.Do(req)
	if err != nil {
		t.Fatalf("do request: %v", err)
	}
	defer resp.Body.Close()
	expectStatus(t, resp, http.StatusNoContent)

	if methods := resp.Header.Get("Access-Control-Allow-Methods"); !strings.Contains(methods, http.MethodPatch) {
		t.Errorf("Access-Control-Allow-Methods %q lacks PATCH", methods)
	}
	if headers := strings.ToLower(resp.Header.Get("Access-Control-Allow-Headers")); !strings.Contains(headers, "api_key") {
		t.Errorf("Access-Control-Allow-Headers %q lacks api_key", headers)
	}
}

func TestCORS_ExposesDownloadHeaders(t *testing.T) {
	req, err := http.NewRequestWithContext(context.Background(), http.MethodGet, baseURL+"/api/invoices", nil)
	if err != nil {
		t.Fatalf("create request: %v", err)
	}
	req.Header.Set("Origin", "http://backoffice.example.com")
	req.Header.Set("api_key", userKey)

	resp, err := httpClient.Do(req)
	if err != nil {
		t.Fatalf("do request: %v", err)
	}
	defer resp.Body.Close()
	expectStatus(t, resp, http.StatusOK)

	if resp.Header.Get("Access-Control-Allow-Origin") == "" {
		t.Error("Access-Control-Allow-Origin header not present")
	}
	exposed := resp.Header.Get("Access-Control-Expose-Headers")
	for _, h := range []string{"Content-Disposition", "X-Request-ID"} {
		if !strings.Contains(exposed, h) {
			t.Errorf("Access-Control-Expose-Headers %q lacks %s", exposed, h)
		}
	}
}

func TestRateLimit_PerAPIKey(t *testing.T) {
	remaining := func(key string) int {
		t.Helper()

		resp := do(t, http.MethodGet, "/api/invoices", key, nil)
		defer resp.Body.Close()
		expectStatus(t, resp, http.StatusOK)

		n, err := strconv.Atoi(resp.Header.Get("X-RateLimit-Remaining"))
		if err != nil {
			t.Fatalf("X-RateLimit-Remaining: %v", err)
		}
		return n
	}

	before := remaining(adminKey)
	for range 3 {
		remaining(userKey)
	}
	after := remaining(adminKey)

	// Requests from the same address under another key leave this budget alone.
	if after != before-1 {
		t.Errorf("admin budget: got %d after %d, want %d", after, before, before-1)
	}
}
