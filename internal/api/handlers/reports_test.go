package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/ndewijer/portfolio-dashboard/internal/model"
	"github.com/ndewijer/portfolio-dashboard/internal/testutil"
)

func TestReportHandler(t *testing.T) {
	db := testutil.SetupTestDB(t)
	p := testutil.NewPosition().WithSymbol("VOO").Build(t, db)
	testutil.NewTransaction(p.ID).WithDate(testutil.Date(2024, 6, 4)).WithShares(2).WithPrice(250).Build(t, db)
	market := testutil.NewMockMarketClient().WithQuote("VOO", 260, "USD")
	handler := NewReportHandler(testutil.NewTestReportService(t, db, market))

	t.Run("returns 404 before any report exists", func(t *testing.T) {
		w := httptest.NewRecorder()
		handler.LatestReport(w, httptest.NewRequest(http.MethodGet, "/api/report/latest", nil))
		assertStatus(t, w, http.StatusNotFound)
	})

	var generated model.WeeklyReport
	t.Run("generates the report of the week containing week_start", func(t *testing.T) {
		req := testutil.NewRequestWithQueryParams(http.MethodPost, "/api/report/generate", map[string]string{"week_start": "2024-06-05"})
		w := httptest.NewRecorder()
		handler.Generate(w, req)

		assertStatus(t, w, http.StatusCreated)
		generated = decode[model.WeeklyReport](t, w).Data
		if generated.WeekStart.Format(dateLayout) != "2024-06-03" || generated.TransactionCount != 1 {
			t.Errorf("Unexpected report %+v", generated)
		}
	})

	t.Run("returns 400 for a malformed week_start", func(t *testing.T) {
		req := testutil.NewRequestWithQueryParams(http.MethodPost, "/api/report/generate", map[string]string{"week_start": "june"})
		w := httptest.NewRecorder()
		handler.Generate(w, req)
		assertStatus(t, w, http.StatusBadRequest)
	})

	t.Run("lists and fetches reports", func(t *testing.T) {
		w := httptest.NewRecorder()
		handler.Reports(w, httptest.NewRequest(http.MethodGet, "/api/report", nil))
		assertStatus(t, w, http.StatusOK)
		if env := decode[[]model.WeeklyReport](t, w); len(env.Data) != 1 {
			t.Errorf("Expected 1 report, got %d", len(env.Data))
		}

		w = httptest.NewRecorder()
		handler.GetReport(w, testutil.NewRequestWithURLParams(http.MethodGet, "/", map[string]string{"uuid": generated.ID}))
		assertStatus(t, w, http.StatusOK)

		w = httptest.NewRecorder()
		handler.GetReport(w, testutil.NewRequestWithURLParams(http.MethodGet, "/", map[string]string{"uuid": testutil.MakeID()}))
		assertStatus(t, w, http.StatusNotFound)
	})
}
