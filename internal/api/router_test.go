package api

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/guttosm/spimexpulse/internal/domain/models"
)

func TestNewRouter_WiringAndMiddlewares(t *testing.T) {
	gin.SetMode(gin.TestMode)

	svc := &mockTradingService{results: []models.TradingResult{sampleResult()}}
	r := NewRouter(NewHandler(svc, &mockSubmitter{}), RouterOptions{RequestTimeout: time.Second})

	req := httptest.NewRequest(http.MethodGet, "/get_trading_results/?limit=1", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if w.Header().Get("X-Request-ID") == "" {
		t.Fatalf("expected X-Request-ID header to be set")
	}
}

func TestNewRouter_Routes(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := NewRouter(NewHandler(&mockTradingService{}, &mockSubmitter{}), RouterOptions{})

	want := map[string]bool{
		"POST /fetch_data/":            false,
		"GET /get_last_trading_dates/": false,
		"GET /get_dynamics/":           false,
		"GET /get_trading_results/":    false,
		"GET /metrics":                 false,
		"GET /swagger/*any":            false,
	}
	for _, ri := range r.Routes() {
		key := ri.Method + " " + ri.Path
		if _, ok := want[key]; ok {
			want[key] = true
		}
	}
	for k, seen := range want {
		if !seen {
			t.Fatalf("route %s not registered", k)
		}
	}
}

func TestNewRouter_TrailingSlashRedirect(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := NewRouter(NewHandler(&mockTradingService{}, nil), RouterOptions{})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/get_trading_results", nil))
	if w.Code != http.StatusMovedPermanently {
		t.Fatalf("expected redirect, got %d", w.Code)
	}
	if loc := w.Header().Get("Location"); !strings.HasSuffix(loc, "/get_trading_results/") {
		t.Fatalf("location %q", loc)
	}
}

func TestNewRouter_Metrics(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := NewRouter(NewHandler(&mockTradingService{}, nil), RouterOptions{})

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/get_trading_results/", nil))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("metrics status %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "spimex_http_request_duration_seconds") {
		t.Fatalf("http duration histogram not exported")
	}
}

func TestNewRouter_RateLimited(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := NewRouter(NewHandler(&mockTradingService{}, nil), RouterOptions{RateLimitRPS: 1, RateLimitBurst: 1})

	codes := make([]int, 0, 2)
	for i := 0; i < 2; i++ {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/get_trading_results/", nil))
		codes = append(codes, w.Code)
	}
	if codes[0] != http.StatusOK || codes[1] != http.StatusTooManyRequests {
		t.Fatalf("codes %v", codes)
	}
}
