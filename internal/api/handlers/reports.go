package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ndewijer/portfolio-dashboard/internal/api/response"
	"github.com/ndewijer/portfolio-dashboard/internal/apperrors"
	"github.com/ndewijer/portfolio-dashboard/internal/service"
)

// ReportHandler handles HTTP requests for weekly reports.
type ReportHandler struct {
	reportService *service.ReportService
}

// NewReportHandler creates a new ReportHandler.
func NewReportHandler(reportService *service.ReportService) *ReportHandler {
	return &ReportHandler{
		reportService: reportService,
	}
}

// Reports handles GET requests to list reports, newest week first.
//
// Endpoint: GET /api/report
// Query: limit (optional)
// Response: 200 OK with array of WeeklyReport
// Error: 500 Internal Server Error if retrieval fails
func (h *ReportHandler) Reports(w http.ResponseWriter, r *http.Request) {
	limit, err := parseIntQuery(r, "limit", 0)
	if err != nil {
		response.RespondError(w, http.StatusBadRequest, "invalid limit parameter", err.Error())
		return
	}

	reports, err := h.reportService.GetReports(r.Context(), limit)
	if err != nil {
		respondServiceError(w, err, apperrors.ErrFailedToRetrieveReports)
		return
	}

	response.RespondJSON(w, http.StatusOK, reports)
}

// LatestReport handles GET requests for the report of the most recent week.
//
// Endpoint: GET /api/report/latest
// Response: 200 OK with WeeklyReport
// Error: 404 Not Found if no report exists yet
func (h *ReportHandler) LatestReport(w http.ResponseWriter, r *http.Request) {
	report, err := h.reportService.GetLatestReport(r.Context())
	if err != nil {
		respondServiceError(w, err, apperrors.ErrFailedToRetrieveReports)
		return
	}

	response.RespondJSON(w, http.StatusOK, report)
}

// GetReport handles GET requests for one report.
//
// Endpoint: GET /api/report/{uuid}
// Response: 200 OK with WeeklyReport
// Error: 404 Not Found if report not found
func (h *ReportHandler) GetReport(w http.ResponseWriter, r *http.Request) {
	report, err := h.reportService.GetReport(r.Context(), chi.URLParam(r, "uuid"))
	if err != nil {
		respondServiceError(w, err, apperrors.ErrFailedToRetrieveReports)
		return
	}

	response.RespondJSON(w, http.StatusOK, report)
}

// Generate handles POST requests to build the report of a week. Any date is
// snapped to the Monday of its week; without week_start the previous week
// is reported.
//
// Endpoint: POST /api/report/generate
// Query: week_start (optional, YYYY-MM-DD)
// Response: 201 Created with WeeklyReport
// Error: 400 Bad Request if week_start is malformed
// Error: 500 Internal Server Error if generation fails
func (h *ReportHandler) Generate(w http.ResponseWriter, r *http.Request) {
	weekStart, err := parseDateQuery(r, "week_start")
	if err != nil {
		response.RespondError(w, http.StatusBadRequest, apperrors.ErrInvalidDate.Error(), err.Error())
		return
	}

	report, err := h.reportService.Generate(r.Context(), weekStart)
	if err != nil {
		respondServiceError(w, err, apperrors.ErrFailedToGenerateReport)
		return
	}

	response.RespondJSON(w, http.StatusCreated, report)
}
