package api_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/ndewijer/portfolio-dashboard/internal/api"
	"github.com/ndewijer/portfolio-dashboard/internal/config"
	"github.com/ndewijer/portfolio-dashboard/internal/testutil"
)

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()
	db := testutil.SetupTestDB(t)
	market := testutil.NewMockMarketClient()
	generator := testutil.NewMockTextGenerator("ok")

	return api.NewRouter(api.Services{
		System:      testutil.NewTestSystemService(t, db),
		Position:    testutil.NewTestPositionService(t, db, market),
		Transaction: testutil.NewTestTransactionService(t, db),
		Portfolio:   testutil.NewTestPortfolioService(t, db, market),
		Market:      testutil.NewTestMarketService(t, db, market),
		AutoInvest:  testutil.NewTestAutoInvestService(t, db, market),
		Report:      testutil.NewTestReportService(t, db, market),
		Advisor:     testutil.NewTestAdvisorService(t, db, market, generator, ""),
		Watchlist:   testutil.NewTestWatchlistService(t, db, market),
		Settings:    testutil.NewTestSettingsService(t, db),
	}, config.NewDefaultConfig())
}

func TestNewRouter(t *testing.T) {
	router := newTestRouter(t)

	tests := []struct {
		method string
		path   string
		want   int
	}{
		{http.MethodGet, "/api/system/health", http.StatusOK},
		{http.MethodGet, "/api/position", http.StatusOK},
		{http.MethodGet, "/api/position/not-a-uuid", http.StatusBadRequest},
		{http.MethodGet, "/api/position/550e8400-e29b-41d4-a716-446655440000", http.StatusNotFound},
		{http.MethodGet, "/api/transaction/abc", http.StatusBadRequest},
		{http.MethodGet, "/api/portfolio/summary", http.StatusOK},
		{http.MethodGet, "/api/portfolio/backtest", http.StatusBadRequest},
		{http.MethodGet, "/api/exchange-rate?from=USD&to=KRW", http.StatusOK},
		{http.MethodGet, "/api/market/quote", http.StatusBadRequest},
		{http.MethodGet, "/api/auto-invest", http.StatusOK},
		{http.MethodPost, "/api/auto-invest/run", http.StatusOK},
		{http.MethodDelete, "/api/auto-invest/xyz", http.StatusBadRequest},
		{http.MethodGet, "/api/report/latest", http.StatusNotFound},
		{http.MethodPost, "/api/advisor/insight", http.StatusServiceUnavailable},
		{http.MethodGet, "/api/watchlist", http.StatusOK},
		{http.MethodGet, "/api/settings", http.StatusOK},
		{http.MethodGet, "/api/unknown", http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			w := httptest.NewRecorder()
			router.ServeHTTP(w, httptest.NewRequest(tt.method, tt.path, nil))

			if w.Code != tt.want {
				t.Errorf("Expected %d, got %d: %s", tt.want, w.Code, w.Body.String())
			}
		})
	}
}

func TestNewRouter_Envelope(t *testing.T) {
	router := newTestRouter(t)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/position/bad", nil))

	var body struct {
		Success bool   `json:"success"`
		Error   string `json:"error"`
	}
	if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
		t.Fatalf("Failed to decode: %v", err)
	}
	if body.Success || body.Error == "" {
		t.Errorf("Expected an error envelope, got %+v", body)
	}
	if w.Header().Get("Content-Type") != "application/json" {
		t.Errorf("Expected a JSON response, got %q", w.Header().Get("Content-Type"))
	}
}

func TestNewRouter_CORS(t *testing.T) {
	router := newTestRouter(t)

	req := httptest.NewRequest(http.MethodOptions, "/api/position", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", http.MethodGet)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "http://localhost:3000" {
		t.Errorf("Expected the origin to be allowed, got %q", got)
	}
}
