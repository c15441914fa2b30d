package handlers

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/ndewijer/portfolio-dashboard/internal/api/request"
	"github.com/ndewijer/portfolio-dashboard/internal/api/response"
	"github.com/ndewijer/portfolio-dashboard/internal/apperrors"
	"github.com/ndewijer/portfolio-dashboard/internal/service"
	"github.com/ndewijer/portfolio-dashboard/internal/validation"
)

// AutoInvestHandler handles HTTP requests for recurring purchase schedules.
type AutoInvestHandler struct {
	autoInvestService *service.AutoInvestService
	now               func() time.Time
}

// NewAutoInvestHandler creates a new AutoInvestHandler.
func NewAutoInvestHandler(autoInvestService *service.AutoInvestService) *AutoInvestHandler {
	return &AutoInvestHandler{
		autoInvestService: autoInvestService,
		now:               time.Now,
	}
}

// Schedules handles GET requests to list every schedule.
//
// Endpoint: GET /api/auto-invest
// Response: 200 OK with array of AutoInvestSchedule
// Error: 500 Internal Server Error if retrieval fails
func (h *AutoInvestHandler) Schedules(w http.ResponseWriter, r *http.Request) {
	schedules, err := h.autoInvestService.GetSchedules(r.Context())
	if err != nil {
		respondServiceError(w, err, apperrors.ErrFailedToRetrieveSchedules)
		return
	}

	response.RespondJSON(w, http.StatusOK, schedules)
}

// GetSchedule handles GET requests to retrieve one schedule.
//
// Endpoint: GET /api/auto-invest/{uuid}
// Response: 200 OK with AutoInvestSchedule
// Error: 404 Not Found if schedule not found
// Error: 500 Internal Server Error if retrieval fails
func (h *AutoInvestHandler) GetSchedule(w http.ResponseWriter, r *http.Request) {
	schedule, err := h.autoInvestService.GetSchedule(r.Context(), chi.URLParam(r, "uuid"))
	if err != nil {
		respondServiceError(w, err, apperrors.ErrFailedToRetrieveSchedules)
		return
	}

	response.RespondJSON(w, http.StatusOK, schedule)
}

// CreateSchedule handles POST requests to add a schedule to a position.
//
// Endpoint: POST /api/auto-invest
// Request Body: CreateScheduleRequest (positionId, frequency, amount, nextDueDate, enabled)
// Response: 201 Created with AutoInvestSchedule
// Error: 400 Bad Request if validation fails or request body is invalid
// Error: 404 Not Found if the position does not exist
// Error: 500 Internal Server Error if creation fails
func (h *AutoInvestHandler) CreateSchedule(w http.ResponseWriter, r *http.Request) {
	req, err := parseJSON[request.CreateScheduleRequest](r)
	if err != nil {
		response.RespondError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	if err := validation.ValidateCreateSchedule(req); err != nil {
		respondValidationError(w, err)
		return
	}

	schedule, err := h.autoInvestService.CreateSchedule(r.Context(), req)
	if err != nil {
		respondServiceError(w, err, apperrors.ErrFailedToSaveSchedule)
		return
	}

	response.RespondJSON(w, http.StatusCreated, schedule)
}

// UpdateSchedule handles PUT requests to change a schedule.
//
// Endpoint: PUT /api/auto-invest/{uuid}
// Request Body: UpdateScheduleRequest (all fields optional)
// Response: 200 OK with AutoInvestSchedule
// Error: 400 Bad Request if validation fails or request body is invalid
// Error: 404 Not Found if schedule not found
// Error: 500 Internal Server Error if update fails
func (h *AutoInvestHandler) UpdateSchedule(w http.ResponseWriter, r *http.Request) {
	req, err := parseJSON[request.UpdateScheduleRequest](r)
	if err != nil {
		response.RespondError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	if err := validation.ValidateUpdateSchedule(req); err != nil {
		respondValidationError(w, err)
		return
	}

	schedule, err := h.autoInvestService.UpdateSchedule(r.Context(), chi.URLParam(r, "uuid"), req)
	if err != nil {
		respondServiceError(w, err, apperrors.ErrFailedToSaveSchedule)
		return
	}

	response.RespondJSON(w, http.StatusOK, schedule)
}

// DeleteSchedule handles DELETE requests for a schedule.
//
// Endpoint: DELETE /api/auto-invest/{uuid}
// Response: 204 No Content
// Error: 404 Not Found if schedule not found
// Error: 500 Internal Server Error if deletion fails
func (h *AutoInvestHandler) DeleteSchedule(w http.ResponseWriter, r *http.Request) {
	if err := h.autoInvestService.DeleteSchedule(r.Context(), chi.URLParam(r, "uuid")); err != nil {
		respondServiceError(w, err, apperrors.ErrFailedToSaveSchedule)
		return
	}

	response.RespondJSON(w, http.StatusNoContent, nil)
}

// Execute handles POST requests to buy for one schedule now and advance it.
//
// Endpoint: POST /api/auto-invest/{uuid}/execute
// Response: 200 OK with AutoInvestExecution
// Error: 400 Bad Request if the schedule is disabled
// Error: 404 Not Found if schedule not found or no quote is available
// Error: 500 Internal Server Error if execution fails
func (h *AutoInvestHandler) Execute(w http.ResponseWriter, r *http.Request) {
	execution, err := h.autoInvestService.Execute(r.Context(), chi.URLParam(r, "uuid"), h.now())
	if err != nil {
		respondServiceError(w, err, apperrors.ErrFailedToExecuteSchedule)
		return
	}

	response.RespondJSON(w, http.StatusOK, execution)
}

// RunDue handles POST requests to execute every enabled schedule that is due.
// Failures of single schedules are reported in the result, not as an error.
//
// Endpoint: POST /api/auto-invest/run
// Response: 200 OK with AutoInvestRunResult
// Error: 500 Internal Server Error if the schedules cannot be loaded
func (h *AutoInvestHandler) RunDue(w http.ResponseWriter, r *http.Request) {
	result, err := h.autoInvestService.RunDue(r.Context(), h.now())
	if err != nil {
		respondServiceError(w, err, apperrors.ErrFailedToExecuteSchedule)
		return
	}

	response.RespondJSON(w, http.StatusOK, result)
}
