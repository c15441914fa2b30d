package handlers

import (
	"net/http"
	"strings"

	"github.com/ndewijer/portfolio-dashboard/internal/api/request"
	"github.com/ndewijer/portfolio-dashboard/internal/api/response"
	"github.com/ndewijer/portfolio-dashboard/internal/apperrors"
	"github.com/ndewijer/portfolio-dashboard/internal/service"
	"github.com/ndewijer/portfolio-dashboard/internal/validation"
)

// AdvisorHandler handles HTTP requests for AI generated insights.
type AdvisorHandler struct {
	advisorService *service.AdvisorService
}

// NewAdvisorHandler creates a new AdvisorHandler.
func NewAdvisorHandler(advisorService *service.AdvisorService) *AdvisorHandler {
	return &AdvisorHandler{
		advisorService: advisorService,
	}
}

// Insights handles GET requests to list stored insights, newest first.
//
// Endpoint: GET /api/advisor/insight
// Query: kind (optional: portfolio, weekly or question), limit (optional)
// Response: 200 OK with array of AIInsight
// Error: 500 Internal Server Error if retrieval fails
func (h *AdvisorHandler) Insights(w http.ResponseWriter, r *http.Request) {
	limit, err := parseIntQuery(r, "limit", 0)
	if err != nil {
		response.RespondError(w, http.StatusBadRequest, "invalid limit parameter", err.Error())
		return
	}
	kind := strings.ToLower(strings.TrimSpace(r.URL.Query().Get("kind")))

	insights, err := h.advisorService.GetInsights(r.Context(), kind, limit)
	if err != nil {
		respondServiceError(w, err, apperrors.ErrFailedToRetrieveInsights)
		return
	}

	response.RespondJSON(w, http.StatusOK, insights)
}

// LatestInsight handles GET requests for the most recent insight.
//
// Endpoint: GET /api/advisor/insight/latest
// Response: 200 OK with AIInsight
// Error: 404 Not Found if no insight exists yet
func (h *AdvisorHandler) LatestInsight(w http.ResponseWriter, r *http.Request) {
	insight, err := h.advisorService.GetLatestInsight(r.Context())
	if err != nil {
		respondServiceError(w, err, apperrors.ErrFailedToRetrieveInsights)
		return
	}

	response.RespondJSON(w, http.StatusOK, insight)
}

// GenerateInsight handles POST requests to review the whole portfolio.
//
// Endpoint: POST /api/advisor/insight
// Response: 201 Created with AIInsight
// Error: 503 Service Unavailable if no AI API key is configured
// Error: 500 Internal Server Error if generation fails
func (h *AdvisorHandler) GenerateInsight(w http.ResponseWriter, r *http.Request) {
	insight, err := h.advisorService.GenerateInsight(r.Context())
	if err != nil {
		respondServiceError(w, err, apperrors.ErrFailedToGenerateInsight)
		return
	}

	response.RespondJSON(w, http.StatusCreated, insight)
}

// Ask handles POST requests with a free-form household question.
//
// Endpoint: POST /api/advisor/ask
// Request Body: AskRequest (question)
// Response: 201 Created with AIInsight
// Error: 400 Bad Request if the question is empty or too long
// Error: 503 Service Unavailable if no AI API key is configured
// Error: 500 Internal Server Error if generation fails
func (h *AdvisorHandler) Ask(w http.ResponseWriter, r *http.Request) {
	req, err := parseJSON[request.AskRequest](r)
	if err != nil {
		response.RespondError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	if err := validation.ValidateAsk(req); err != nil {
		respondValidationError(w, err)
		return
	}

	insight, err := h.advisorService.Ask(r.Context(), req.Question)
	if err != nil {
		respondServiceError(w, err, apperrors.ErrFailedToGenerateInsight)
		return
	}

	response.RespondJSON(w, http.StatusCreated, insight)
}
