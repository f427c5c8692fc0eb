package main

import (
	"encoding/json"
	"html"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"returns-dashboard/internal/config"
	"returns-dashboard/internal/models"
	"returns-dashboard/internal/server"
	"returns-dashboard/internal/services"
)

// Test helper to create analytics with test data
func newTestAnalytics() *services.Analytics {
	day := func(m time.Month, d int) time.Time {
		return time.Date(2016, m, d, 0, 0, 0, 0, time.UTC)
	}

	a := services.NewAnalytics()
	a.SetData([]models.TransactionRecord{
		{OrderDate: day(time.August, 5), Status: models.StatusComplete, Quantity: decimal.NewFromInt(10)},
		{OrderDate: day(time.August, 20), Status: models.StatusComplete, Quantity: decimal.NewFromInt(5)},
		{OrderDate: day(time.August, 1), ReturnDate: day(time.August, 22), Status: models.StatusReturned, Quantity: decimal.NewFromInt(3)},
		{OrderDate: day(time.September, 2), Status: models.StatusComplete, Quantity: decimal.NewFromInt(8)},
		{OrderDate: day(time.September, 3), ReturnDate: day(time.October, 4), Status: models.StatusReturned, Quantity: decimal.NewFromInt(2)},
	})
	return a
}

func newTestServer() *server.Server {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
	analytics := newTestAnalytics()
	templateHandlers := &server.TemplateHandlers{Dashboard: dashboardHandler(analytics)}
	return server.NewServer(analytics, logger, templateHandlers)
}

// Integration tests for HTTP routes
func TestServer_Routes(t *testing.T) {
	srv := newTestServer()

	tests := []struct {
		path           string
		expectedStatus int
		contentType    string
	}{
		{"/", http.StatusOK, "text/html"},
		{"/api/monthly-summary", http.StatusOK, "application/json"},
		{"/api/months", http.StatusOK, "application/json"},
		{"/api/month-series?month=2016-09", http.StatusOK, "application/json"},
		{"/api/month-series?month=2016", http.StatusBadRequest, "application/json"},
		{"/api/month-series?month=2015-01", http.StatusNotFound, "application/json"},
		{"/health", http.StatusOK, "application/json"},
		{"/admin/stats", http.StatusOK, "application/json"},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			w := httptest.NewRecorder()
			r := httptest.NewRequest("GET", tt.path, nil)

			srv.ServeHTTP(w, r)

			if w.Code != tt.expectedStatus {
				t.Errorf("status = %d, want %d", w.Code, tt.expectedStatus)
			}

			ct := w.Header().Get("Content-Type")
			if !strings.Contains(ct, tt.contentType) {
				t.Errorf("content-type = %q, want %q", ct, tt.contentType)
			}

			// Validate JSON responses
			if tt.contentType == "application/json" {
				var result any
				if err := json.NewDecoder(w.Body).Decode(&result); err != nil {
					t.Errorf("invalid json: %v", err)
				}
			}
		})
	}
}

// Test JSON API responses
func TestServer_JSONResponse(t *testing.T) {
	srv := newTestServer()

	w := httptest.NewRecorder()
	r := httptest.NewRequest("GET", "/api/monthly-summary", nil)
	srv.ServeHTTP(w, r)

	var response map[string]interface{}
	if err := json.NewDecoder(w.Body).Decode(&response); err != nil {
		t.Fatalf("failed to decode JSON: %v", err)
	}

	if success, ok := response["success"].(bool); !ok || !success {
		t.Error("expected success=true in response")
	}

	data, ok := response["data"].([]interface{})
	if !ok {
		t.Fatalf("expected data array in response")
	}

	// August, September and October (returns only)
	if len(data) != 3 {
		t.Fatalf("expected 3 months, got %d", len(data))
	}

	last, ok := data[2].(map[string]interface{})
	if !ok {
		t.Fatal("invalid summary row structure")
	}
	if last["period"] != "2016-10" {
		t.Errorf("period = %v, want 2016-10", last["period"])
	}
	if last["return_rate"] != nil {
		t.Errorf("return_rate = %v, want null for a month without orders", last["return_rate"])
	}
}

// Test Server-Sent Events routes
func TestServer_SSERoutes(t *testing.T) {
	srv := newTestServer()

	sseRoutes := []string{
		"/sse/summary-table",
		"/sse/month-series",
		"/sse/refresh-all",
	}

	for _, route := range sseRoutes {
		t.Run(route, func(t *testing.T) {
			w := httptest.NewRecorder()
			r := httptest.NewRequest("GET", route, nil)

			srv.ServeHTTP(w, r)

			if w.Code != http.StatusOK {
				t.Errorf("status = %d, want %d", w.Code, http.StatusOK)
			}

			// Check for SSE headers
			if ct := w.Header().Get("Content-Type"); !strings.Contains(ct, "text/event-stream") {
				t.Errorf("content-type = %q, should contain 'text/event-stream'", ct)
			}

			if cc := w.Header().Get("Cache-Control"); cc != "no-cache" {
				t.Errorf("cache-control = %q, want 'no-cache'", cc)
			}
		})
	}
}

// Test health endpoint
func TestServer_HandleHealth(t *testing.T) {
	srv := newTestServer()

	w := httptest.NewRecorder()
	r := httptest.NewRequest("GET", "/health", nil)

	srv.ServeHTTP(w, r)

	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want %d", w.Code, http.StatusOK)
	}

	var response map[string]interface{}
	if err := json.NewDecoder(w.Body).Decode(&response); err != nil {
		t.Fatalf("failed to decode health JSON: %v", err)
	}

	healthData, ok := response["data"].(map[string]interface{})
	if !ok {
		t.Fatalf("expected health data in response")
	}

	if status, ok := healthData["status"].(string); !ok || status != "healthy" {
		t.Errorf("health status = %v, want 'healthy'", healthData["status"])
	}

	if _, ok := healthData["timestamp"]; !ok {
		t.Error("health response should include timestamp")
	}
}

// Test error handling for invalid methods
func TestServer_ErrorHandling(t *testing.T) {
	srv := newTestServer()

	tests := []struct {
		method string
		path   string
		status int
	}{
		{"POST", "/api/monthly-summary", http.StatusMethodNotAllowed},
		{"PUT", "/", http.StatusMethodNotAllowed},
		{"DELETE", "/health", http.StatusMethodNotAllowed},
		{"PATCH", "/sse/month-series", http.StatusMethodNotAllowed},
		{"GET", "/api/country-revenue", http.StatusNotFound},
		{"GET", "/favicon.ico", http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			w := httptest.NewRecorder()
			r := httptest.NewRequest(tt.method, tt.path, nil)

			srv.ServeHTTP(w, r)

			if w.Code != tt.status {
				t.Errorf("status = %d, want %d", w.Code, tt.status)
			}
		})
	}
}

// Test dashboard template rendering
func TestDashboardTemplate(t *testing.T) {
	w := httptest.NewRecorder()
	r := httptest.NewRequest("GET", "/", nil)

	dashboardHandler(newTestAnalytics())(w, r)

	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want %d", w.Code, http.StatusOK)
	}

	body := w.Body.String()
	if !strings.Contains(body, html.EscapeString(dashboardTitle)) {
		t.Error("dashboard should contain title")
	}

	expectedComponents := []string{
		`id="month-slider"`,
		`max="2"`,
		"August 2016",
		"October 2016",
		`id="series-chart"`,
		"Monthly Totals",
		`id="summary-table"`,
	}

	for _, component := range expectedComponents {
		if !strings.Contains(body, component) {
			t.Errorf("dashboard should contain '%s'", component)
		}
	}
}

func TestDashboardTemplate_EmptyData(t *testing.T) {
	w := httptest.NewRecorder()
	r := httptest.NewRequest("GET", "/", nil)

	dashboardHandler(services.NewAnalytics())(w, r)

	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want %d", w.Code, http.StatusOK)
	}
	if !strings.Contains(w.Body.String(), "disabled") {
		t.Error("slider should be disabled without data")
	}
}

func TestReadOptions(t *testing.T) {
	opts := readOptions(config.DataConfig{
		SheetName:        "Sheet1",
		OrderDateColumn:  "dateordered",
		ReturnDateColumn: "datereturned",
		StatusColumn:     "orderstatus",
		QuantityColumn:   "orders",
	})

	if opts.Sheet != "Sheet1" {
		t.Errorf("sheet = %q, want Sheet1", opts.Sheet)
	}
	if opts.Columns.OrderDate != "dateordered" || opts.Columns.Quantity != "orders" {
		t.Errorf("unexpected columns: %+v", opts.Columns)
	}
}
