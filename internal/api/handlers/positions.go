package handlers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/ndewijer/portfolio-dashboard/internal/api/request"
	"github.com/ndewijer/portfolio-dashboard/internal/api/response"
	"github.com/ndewijer/portfolio-dashboard/internal/apperrors"
	"github.com/ndewijer/portfolio-dashboard/internal/service"
	"github.com/ndewijer/portfolio-dashboard/internal/validation"
)

// PositionHandler handles HTTP requests for position endpoints.
type PositionHandler struct {
	positionService *service.PositionService
}

// NewPositionHandler creates a new PositionHandler.
func NewPositionHandler(positionService *service.PositionService) *PositionHandler {
	return &PositionHandler{
		positionService: positionService,
	}
}

// displayCurrency reads the optional currency query parameter.
func displayCurrency(r *http.Request) (string, bool) {
	c := strings.ToUpper(strings.TrimSpace(r.URL.Query().Get("currency")))
	if c == "" {
		return "", true
	}
	return c, validation.ValidCurrency(c)
}

// Positions handles GET requests to list all positions with their latest quote.
// With ?currency= the values are also converted into that currency.
//
// Endpoint: GET /api/position
// Response: 200 OK with array of PositionResponse
// Error: 400 Bad Request if the currency is malformed or unsupported
// Error: 500 Internal Server Error if retrieval fails
func (h *PositionHandler) Positions(w http.ResponseWriter, r *http.Request) {
	currency, ok := displayCurrency(r)
	if !ok {
		response.RespondError(w, http.StatusBadRequest, apperrors.ErrInvalidCurrency.Error(), "currency must be a three-letter code")
		return
	}

	positions, err := h.positionService.GetPositions(r.Context(), currency)
	if err != nil {
		respondServiceError(w, err, apperrors.ErrFailedToRetrievePositions)
		return
	}

	response.RespondJSON(w, http.StatusOK, positions)
}

// GetPosition handles GET requests to retrieve one position with its latest quote.
//
// Endpoint: GET /api/position/{uuid}
// Response: 200 OK with PositionResponse
// Error: 400 Bad Request if position ID is invalid (validated by middleware)
// Error: 404 Not Found if position not found
// Error: 500 Internal Server Error if retrieval fails
func (h *PositionHandler) GetPosition(w http.ResponseWriter, r *http.Request) {
	currency, ok := displayCurrency(r)
	if !ok {
		response.RespondError(w, http.StatusBadRequest, apperrors.ErrInvalidCurrency.Error(), "currency must be a three-letter code")
		return
	}

	position, err := h.positionService.GetPosition(r.Context(), chi.URLParam(r, "uuid"), currency)
	if err != nil {
		respondServiceError(w, err, apperrors.ErrFailedToRetrievePosition)
		return
	}

	response.RespondJSON(w, http.StatusOK, position)
}

// CreatePosition handles POST requests to register a new, empty position.
//
// Endpoint: POST /api/position
// Request Body: CreatePositionRequest (symbol, name, market, currency)
// Response: 201 Created with Position
// Error: 400 Bad Request if validation fails or request body is invalid
// Error: 409 Conflict if the symbol is already tracked on that market
// Error: 500 Internal Server Error if creation fails
func (h *PositionHandler) CreatePosition(w http.ResponseWriter, r *http.Request) {
	req, err := parseJSON[request.CreatePositionRequest](r)
	if err != nil {
		response.RespondError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	if err := validation.ValidateCreatePosition(req); err != nil {
		respondValidationError(w, err)
		return
	}

	position, err := h.positionService.CreatePosition(r.Context(), req)
	if err != nil {
		respondServiceError(w, err, apperrors.ErrFailedToCreatePosition)
		return
	}

	response.RespondJSON(w, http.StatusCreated, position)
}

// DeletePosition handles DELETE requests. The ledger and auto-invest
// schedules of the position are removed with it.
//
// Endpoint: DELETE /api/position/{uuid}
// Response: 204 No Content
// Error: 404 Not Found if position not found
// Error: 500 Internal Server Error if deletion fails
func (h *PositionHandler) DeletePosition(w http.ResponseWriter, r *http.Request) {
	if err := h.positionService.DeletePosition(r.Context(), chi.URLParam(r, "uuid")); err != nil {
		respondServiceError(w, err, apperrors.ErrFailedToDeletePosition)
		return
	}

	response.RespondJSON(w, http.StatusNoContent, nil)
}

// RecalculatePosition replays the ledger of a position from zero.
//
// Endpoint: POST /api/position/{uuid}/recalculate
// Response: 200 OK with Position
// Error: 404 Not Found if position not found
// Error: 500 Internal Server Error if the ledger cannot be replayed
func (h *PositionHandler) RecalculatePosition(w http.ResponseWriter, r *http.Request) {
	position, err := h.positionService.RecalculatePosition(r.Context(), chi.URLParam(r, "uuid"))
	if err != nil {
		respondServiceError(w, err, apperrors.ErrFailedToRetrievePosition)
		return
	}

	response.RespondJSON(w, http.StatusOK, position)
}
