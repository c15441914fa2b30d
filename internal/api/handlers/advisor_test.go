package handlers

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/ndewijer/portfolio-dashboard/internal/model"
	"github.com/ndewijer/portfolio-dashboard/internal/testutil"
)

func setupAdvisorHandler(t *testing.T, envAPIKey string) (*AdvisorHandler, *testutil.MockTextGenerator) {
	t.Helper()
	db := testutil.SetupTestDB(t)
	testutil.NewPosition().WithSymbol("AAPL").WithHolding(10, 100).Build(t, db)
	market := testutil.NewMockMarketClient().WithQuote("AAPL", 150, "USD")
	generator := testutil.NewMockTextGenerator("Your portfolio is **concentrated**.")
	return NewAdvisorHandler(testutil.NewTestAdvisorService(t, db, market, generator, envAPIKey)), generator
}

func TestAdvisorHandler_GenerateInsight(t *testing.T) {
	t.Run("returns 503 without an API key", func(t *testing.T) {
		handler, _ := setupAdvisorHandler(t, "")

		w := httptest.NewRecorder()
		handler.GenerateInsight(w, httptest.NewRequest(http.MethodPost, "/api/advisor/insight", nil))

		assertStatus(t, w, http.StatusServiceUnavailable)
	})

	t.Run("generates and stores an insight", func(t *testing.T) {
		handler, _ := setupAdvisorHandler(t, "env-key")

		w := httptest.NewRecorder()
		handler.GenerateInsight(w, httptest.NewRequest(http.MethodPost, "/api/advisor/insight", nil))

		assertStatus(t, w, http.StatusCreated)
		created := decode[model.AIInsight](t, w).Data
		if created.Kind != model.InsightKindPortfolio || created.HTML == "" {
			t.Errorf("Unexpected insight %+v", created)
		}

		w = httptest.NewRecorder()
		handler.LatestInsight(w, httptest.NewRequest(http.MethodGet, "/api/advisor/insight/latest", nil))
		assertStatus(t, w, http.StatusOK)
		if latest := decode[model.AIInsight](t, w).Data; latest.ID != created.ID {
			t.Errorf("Expected latest insight %s, got %s", created.ID, latest.ID)
		}
	})

	t.Run("returns 500 when generation fails", func(t *testing.T) {
		handler, generator := setupAdvisorHandler(t, "env-key")
		generator.Err = errors.New("quota exceeded")

		w := httptest.NewRecorder()
		handler.GenerateInsight(w, httptest.NewRequest(http.MethodPost, "/api/advisor/insight", nil))

		assertStatus(t, w, http.StatusInternalServerError)
	})
}

func TestAdvisorHandler_Ask(t *testing.T) {
	handler, generator := setupAdvisorHandler(t, "env-key")

	t.Run("answers a question", func(t *testing.T) {
		w := httptest.NewRecorder()
		handler.Ask(w, testutil.NewJSONRequest(http.MethodPost, "/api/advisor/ask", `{"question":"  Should I buy more?  "}`, nil))

		assertStatus(t, w, http.StatusCreated)
		if insight := decode[model.AIInsight](t, w).Data; insight.Question != "Should I buy more?" {
			t.Errorf("Expected the trimmed question, got %q", insight.Question)
		}
		if len(generator.Prompts) != 1 {
			t.Errorf("Expected one prompt, got %d", len(generator.Prompts))
		}
	})

	t.Run("returns 400 for an empty question", func(t *testing.T) {
		w := httptest.NewRecorder()
		handler.Ask(w, testutil.NewJSONRequest(http.MethodPost, "/api/advisor/ask", `{"question":"   "}`, nil))

		assertStatus(t, w, http.StatusBadRequest)
	})

	t.Run("lists insights by kind", func(t *testing.T) {
		req := testutil.NewRequestWithQueryParams(http.MethodGet, "/api/advisor/insight", map[string]string{"kind": "question"})
		w := httptest.NewRecorder()
		handler.Insights(w, req)

		assertStatus(t, w, http.StatusOK)
		if env := decode[[]model.AIInsight](t, w); len(env.Data) != 1 {
			t.Errorf("Expected 1 question insight, got %d", len(env.Data))
		}
	})
}
