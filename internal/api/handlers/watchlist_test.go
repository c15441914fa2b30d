package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/ndewijer/portfolio-dashboard/internal/model"
	"github.com/ndewijer/portfolio-dashboard/internal/testutil"
)

func TestWatchlistHandler(t *testing.T) {
	db := testutil.SetupTestDB(t)
	market := testutil.NewMockMarketClient().WithQuote("TSLA", 200, "USD")
	handler := NewWatchlistHandler(testutil.NewTestWatchlistService(t, db, market))

	var item model.WatchlistItem
	t.Run("adds an item", func(t *testing.T) {
		body := `{"symbol":"tsla","name":"Tesla","market":"us","targetPrice":180}`
		w := httptest.NewRecorder()
		handler.AddItem(w, testutil.NewJSONRequest(http.MethodPost, "/api/watchlist", body, nil))

		assertStatus(t, w, http.StatusCreated)
		item = decode[model.WatchlistItem](t, w).Data
		if item.Symbol != "TSLA" {
			t.Errorf("Expected symbol TSLA, got %s", item.Symbol)
		}
	})

	t.Run("returns 409 for a duplicate", func(t *testing.T) {
		w := httptest.NewRecorder()
		handler.AddItem(w, testutil.NewJSONRequest(http.MethodPost, "/api/watchlist", `{"symbol":"TSLA","market":"US"}`, nil))
		assertStatus(t, w, http.StatusConflict)
	})

	t.Run("returns 400 for a negative target", func(t *testing.T) {
		w := httptest.NewRecorder()
		handler.AddItem(w, testutil.NewJSONRequest(http.MethodPost, "/api/watchlist", `{"symbol":"NVDA","targetPrice":-1}`, nil))
		assertStatus(t, w, http.StatusBadRequest)
	})

	t.Run("lists items with the distance to target", func(t *testing.T) {
		w := httptest.NewRecorder()
		handler.Watchlist(w, httptest.NewRequest(http.MethodGet, "/api/watchlist", nil))

		assertStatus(t, w, http.StatusOK)
		items := decode[[]model.WatchlistItemResponse](t, w).Data
		if len(items) != 1 || items[0].DistanceToTarget == nil || *items[0].DistanceToTarget != -10 {
			t.Errorf("Expected a -10%% distance, got %+v", items)
		}
	})

	t.Run("deletes an item", func(t *testing.T) {
		params := map[string]string{"uuid": item.ID}
		w := httptest.NewRecorder()
		handler.DeleteItem(w, testutil.NewRequestWithURLParams(http.MethodDelete, "/", params))
		assertStatus(t, w, http.StatusNoContent)

		w = httptest.NewRecorder()
		handler.DeleteItem(w, testutil.NewRequestWithURLParams(http.MethodDelete, "/", params))
		assertStatus(t, w, http.StatusNotFound)
	})
}
