// Package handlers adapts HTTP requests to the service layer.
package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/ndewijer/portfolio-dashboard/internal/analytics"
	"github.com/ndewijer/portfolio-dashboard/internal/api/response"
	"github.com/ndewijer/portfolio-dashboard/internal/apperrors"
	"github.com/ndewijer/portfolio-dashboard/internal/validation"
)

const dateLayout = "2006-01-02"

// maxBodyBytes caps request bodies.
const maxBodyBytes = 1 << 20

// parseJSON decodes the request body into T. Unknown fields are rejected and
// an empty body returns io.EOF.
func parseJSON[T any](r *http.Request) (T, error) {
	var req T
	if r.Body == nil {
		return req, io.EOF
	}
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		return req, err
	}
	return req, nil
}

// requiredQuery returns the trimmed query parameter or an error naming it.
func requiredQuery(r *http.Request, name string) (string, error) {
	v := strings.TrimSpace(r.URL.Query().Get(name))
	if v == "" {
		return "", fmt.Errorf("%s parameter is required", name)
	}
	return v, nil
}

// parseDateQuery parses an optional YYYY-MM-DD query parameter. A missing
// parameter returns the zero time.
func parseDateQuery(r *http.Request, name string) (time.Time, error) {
	v := strings.TrimSpace(r.URL.Query().Get(name))
	if v == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse(dateLayout, v)
	if err != nil {
		return time.Time{}, fmt.Errorf("%s must be in YYYY-MM-DD format", name)
	}
	return t, nil
}

// parseIntQuery parses an optional positive integer query parameter.
func parseIntQuery(r *http.Request, name string, def int) (int, error) {
	v := strings.TrimSpace(r.URL.Query().Get(name))
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("%s must be a positive integer", name)
	}
	return n, nil
}

// respondValidationError writes a 400 with the field messages as details.
func respondValidationError(w http.ResponseWriter, err error) {
	var verr *validation.Error
	if errors.As(err, &verr) {
		response.RespondError(w, http.StatusBadRequest, "validation failed", verr.Fields)
		return
	}
	response.RespondError(w, http.StatusBadRequest, "validation failed", err.Error())
}

// respondServiceError maps a service error to its status code. Errors
// without a known sentinel are reported as fallback with a 500.
func respondServiceError(w http.ResponseWriter, err error, fallback error) {
	status, message := classify(err)
	if status == http.StatusInternalServerError {
		message = fallback.Error()
	}
	response.RespondError(w, status, message, err.Error())
}

var notFoundErrors = []error{
	apperrors.ErrPositionNotFound,
	apperrors.ErrTransactionNotFound,
	apperrors.ErrScheduleNotFound,
	apperrors.ErrReportNotFound,
	apperrors.ErrInsightNotFound,
	apperrors.ErrWatchlistItemNotFound,
	apperrors.ErrSymbolNotFound,
	apperrors.ErrNoPriceData,
}

var badRequestErrors = []error{
	apperrors.ErrInsufficientShares,
	apperrors.ErrInvalidDateRange,
	apperrors.ErrInvalidUUID,
	apperrors.ErrUnsupportedCurrency,
	apperrors.ErrUnknownTransactionType,
	apperrors.ErrScheduleDisabled,
	apperrors.ErrInvalidSymbol,
	apperrors.ErrInvalidCurrency,
	apperrors.ErrInvalidDate,
	apperrors.ErrInvalidAmount,
	analytics.ErrInvalidTargets,
	analytics.ErrInvalidGrouping,
	analytics.ErrInvalidFrequency,
}

// classify returns the status and message of the first sentinel err wraps.
func classify(err error) (int, string) {
	var verr *validation.Error
	if errors.As(err, &verr) {
		return http.StatusBadRequest, "validation failed"
	}
	// Checked first: it wraps the ledger error that caused it.
	if errors.Is(err, apperrors.ErrDataInconsistency) {
		return http.StatusConflict, apperrors.ErrDataInconsistency.Error()
	}
	for _, target := range notFoundErrors {
		if errors.Is(err, target) {
			return http.StatusNotFound, target.Error()
		}
	}
	for _, target := range badRequestErrors {
		if errors.Is(err, target) {
			return http.StatusBadRequest, target.Error()
		}
	}
	switch {
	case errors.Is(err, apperrors.ErrDuplicateEntry):
		return http.StatusConflict, apperrors.ErrDuplicateEntry.Error()
	case errors.Is(err, apperrors.ErrAdvisorUnavailable):
		return http.StatusServiceUnavailable, apperrors.ErrAdvisorUnavailable.Error()
	}
	return http.StatusInternalServerError, ""
}
