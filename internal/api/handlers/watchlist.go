package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ndewijer/portfolio-dashboard/internal/api/request"
	"github.com/ndewijer/portfolio-dashboard/internal/api/response"
	"github.com/ndewijer/portfolio-dashboard/internal/apperrors"
	"github.com/ndewijer/portfolio-dashboard/internal/service"
	"github.com/ndewijer/portfolio-dashboard/internal/validation"
)

// WatchlistHandler handles HTTP requests for followed symbols.
type WatchlistHandler struct {
	watchlistService *service.WatchlistService
}

// NewWatchlistHandler creates a new WatchlistHandler.
func NewWatchlistHandler(watchlistService *service.WatchlistService) *WatchlistHandler {
	return &WatchlistHandler{
		watchlistService: watchlistService,
	}
}

// Watchlist handles GET requests to list followed symbols with their quotes.
//
// Endpoint: GET /api/watchlist
// Response: 200 OK with array of WatchlistItemResponse
// Error: 500 Internal Server Error if retrieval fails
func (h *WatchlistHandler) Watchlist(w http.ResponseWriter, r *http.Request) {
	items, err := h.watchlistService.GetWatchlist(r.Context())
	if err != nil {
		respondServiceError(w, err, apperrors.ErrFailedToRetrieveWatchlist)
		return
	}

	response.RespondJSON(w, http.StatusOK, items)
}

// AddItem handles POST requests to follow a symbol.
//
// Endpoint: POST /api/watchlist
// Request Body: CreateWatchlistItemRequest (symbol, name, market, targetPrice, note)
// Response: 201 Created with WatchlistItem
// Error: 400 Bad Request if validation fails or request body is invalid
// Error: 409 Conflict if the symbol is already followed
// Error: 500 Internal Server Error if creation fails
func (h *WatchlistHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	req, err := parseJSON[request.CreateWatchlistItemRequest](r)
	if err != nil {
		response.RespondError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	if err := validation.ValidateCreateWatchlistItem(req); err != nil {
		respondValidationError(w, err)
		return
	}

	item, err := h.watchlistService.AddItem(r.Context(), req)
	if err != nil {
		respondServiceError(w, err, apperrors.ErrFailedToUpdateWatchlist)
		return
	}

	response.RespondJSON(w, http.StatusCreated, item)
}

// DeleteItem handles DELETE requests to stop following a symbol.
//
// Endpoint: DELETE /api/watchlist/{uuid}
// Response: 204 No Content
// Error: 404 Not Found if the item does not exist
// Error: 500 Internal Server Error if deletion fails
func (h *WatchlistHandler) DeleteItem(w http.ResponseWriter, r *http.Request) {
	if err := h.watchlistService.DeleteItem(r.Context(), chi.URLParam(r, "uuid")); err != nil {
		respondServiceError(w, err, apperrors.ErrFailedToUpdateWatchlist)
		return
	}

	response.RespondJSON(w, http.StatusNoContent, nil)
}
