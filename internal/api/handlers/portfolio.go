package handlers

import (
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/ndewijer/portfolio-dashboard/internal/analytics"
	"github.com/ndewijer/portfolio-dashboard/internal/api/request"
	"github.com/ndewijer/portfolio-dashboard/internal/api/response"
	"github.com/ndewijer/portfolio-dashboard/internal/apperrors"
	"github.com/ndewijer/portfolio-dashboard/internal/service"
	"github.com/ndewijer/portfolio-dashboard/internal/validation"
)

// PortfolioHandler handles the household-wide analysis endpoints.
type PortfolioHandler struct {
	portfolioService *service.PortfolioService
}

// NewPortfolioHandler creates a new PortfolioHandler
func NewPortfolioHandler(portfolioService *service.PortfolioService) *PortfolioHandler {
	return &PortfolioHandler{
		portfolioService: portfolioService,
	}
}

// Summary handles GET requests for the portfolio totals in the base currency.
//
// Endpoint: GET /api/portfolio/summary
// Response: 200 OK with PortfolioSummary
// Error: 500 Internal Server Error if valuation fails
func (h *PortfolioHandler) Summary(w http.ResponseWriter, r *http.Request) {
	summary, err := h.portfolioService.GetSummary(r.Context())
	if err != nil {
		respondServiceError(w, err, apperrors.ErrFailedToGetPortfolioSummary)
		return
	}

	response.RespondJSON(w, http.StatusOK, summary)
}

// Allocation handles GET requests for the value breakdown of open holdings.
//
// Endpoint: GET /api/portfolio/allocation
// Query: by (symbol, market or currency; default symbol)
// Response: 200 OK with Allocation
// Error: 400 Bad Request if the grouping is unknown
// Error: 500 Internal Server Error if valuation fails
func (h *PortfolioHandler) Allocation(w http.ResponseWriter, r *http.Request) {
	by := strings.ToLower(strings.TrimSpace(r.URL.Query().Get("by")))
	switch by {
	case "":
		by = analytics.BySymbol
	case analytics.BySymbol, analytics.ByMarket, analytics.ByCurrency:
	default:
		response.RespondError(w, http.StatusBadRequest, analytics.ErrInvalidGrouping.Error(), "by must be symbol, market or currency")
		return
	}

	allocation, err := h.portfolioService.GetAllocation(r.Context(), by)
	if err != nil {
		respondServiceError(w, err, apperrors.ErrFailedToAnalyzePortfolio)
		return
	}

	response.RespondJSON(w, http.StatusOK, allocation)
}

// Risk handles GET requests for volatility, drawdown and Sharpe ratio.
//
// Endpoint: GET /api/portfolio/risk
// Query: days (optional, default 180)
// Response: 200 OK with RiskReport
// Error: 400 Bad Request if days is not a positive integer
// Error: 500 Internal Server Error if analysis fails
func (h *PortfolioHandler) Risk(w http.ResponseWriter, r *http.Request) {
	days, err := parseIntQuery(r, "days", service.DefaultAnalysisDays)
	if err != nil {
		response.RespondError(w, http.StatusBadRequest, "invalid days parameter", err.Error())
		return
	}

	report, err := h.portfolioService.GetRisk(r.Context(), days)
	if err != nil {
		respondServiceError(w, err, apperrors.ErrFailedToAnalyzePortfolio)
		return
	}

	response.RespondJSON(w, http.StatusOK, report)
}

// Correlation handles GET requests for the return correlation matrix.
//
// Endpoint: GET /api/portfolio/correlation
// Query: days (optional, default 180)
// Response: 200 OK with CorrelationMatrix
// Error: 400 Bad Request if days is not a positive integer
// Error: 500 Internal Server Error if analysis fails
func (h *PortfolioHandler) Correlation(w http.ResponseWriter, r *http.Request) {
	days, err := parseIntQuery(r, "days", service.DefaultAnalysisDays)
	if err != nil {
		response.RespondError(w, http.StatusBadRequest, "invalid days parameter", err.Error())
		return
	}

	matrix, err := h.portfolioService.GetCorrelation(r.Context(), days)
	if err != nil {
		respondServiceError(w, err, apperrors.ErrFailedToAnalyzePortfolio)
		return
	}

	response.RespondJSON(w, http.StatusOK, matrix)
}

// Rebalance handles POST requests for trades towards a target allocation.
// An empty body uses the target allocation stored in the settings.
//
// Endpoint: POST /api/portfolio/rebalance
// Request Body: RebalanceRequest (targets, tolerance; optional)
// Response: 200 OK with RebalancePlan
// Error: 400 Bad Request if the targets are invalid or missing
// Error: 500 Internal Server Error if analysis fails
func (h *PortfolioHandler) Rebalance(w http.ResponseWriter, r *http.Request) {
	req, err := parseJSON[request.RebalanceRequest](r)
	if err != nil && !errors.Is(err, io.EOF) {
		response.RespondError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	if err := validation.ValidateRebalance(req); err != nil {
		respondValidationError(w, err)
		return
	}

	plan, err := h.portfolioService.Rebalance(r.Context(), req)
	if err != nil {
		respondServiceError(w, err, apperrors.ErrFailedToAnalyzePortfolio)
		return
	}

	response.RespondJSON(w, http.StatusOK, plan)
}

// Scenario handles POST requests to apply percentage price shifts.
//
// Endpoint: POST /api/portfolio/scenario
// Request Body: ScenarioRequest (shifts keyed by symbol, market or "*")
// Response: 200 OK with ScenarioResult
// Error: 400 Bad Request if no shifts are given
// Error: 500 Internal Server Error if analysis fails
func (h *PortfolioHandler) Scenario(w http.ResponseWriter, r *http.Request) {
	req, err := parseJSON[request.ScenarioRequest](r)
	if err != nil {
		response.RespondError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	if err := validation.ValidateScenario(req); err != nil {
		respondValidationError(w, err)
		return
	}

	result, err := h.portfolioService.Scenario(r.Context(), req)
	if err != nil {
		respondServiceError(w, err, apperrors.ErrFailedToAnalyzePortfolio)
		return
	}

	response.RespondJSON(w, http.StatusOK, result)
}

// Backtest handles GET requests to simulate dollar-cost averaging into a symbol.
//
// Endpoint: GET /api/portfolio/backtest
// Query: symbol, start_date, amount (required); end_date, frequency, market (optional)
// Response: 200 OK with BacktestResult
// Error: 400 Bad Request if a parameter is missing or malformed
// Error: 404 Not Found if the symbol has no price history
// Error: 500 Internal Server Error if the simulation fails
func (h *PortfolioHandler) Backtest(w http.ResponseWriter, r *http.Request) {
	symbol, err := requiredQuery(r, "symbol")
	if err != nil {
		response.RespondError(w, http.StatusBadRequest, apperrors.ErrInvalidSymbol.Error(), err.Error())
		return
	}
	if _, err := requiredQuery(r, "start_date"); err != nil {
		response.RespondError(w, http.StatusBadRequest, apperrors.ErrInvalidDate.Error(), err.Error())
		return
	}
	amountStr, err := requiredQuery(r, "amount")
	if err != nil {
		response.RespondError(w, http.StatusBadRequest, apperrors.ErrInvalidAmount.Error(), err.Error())
		return
	}
	amount, err := strconv.ParseFloat(amountStr, 64)
	if err != nil || amount <= 0 {
		response.RespondError(w, http.StatusBadRequest, apperrors.ErrInvalidAmount.Error(), "amount must be a positive number")
		return
	}

	params := analytics.BacktestParams{
		Symbol:    strings.ToUpper(symbol),
		Amount:    amount,
		Frequency: strings.ToLower(strings.TrimSpace(r.URL.Query().Get("frequency"))),
	}
	if params.Start, err = parseDateQuery(r, "start_date"); err != nil {
		response.RespondError(w, http.StatusBadRequest, apperrors.ErrInvalidDate.Error(), err.Error())
		return
	}
	if params.End, err = parseDateQuery(r, "end_date"); err != nil {
		response.RespondError(w, http.StatusBadRequest, apperrors.ErrInvalidDate.Error(), err.Error())
		return
	}

	market := strings.ToUpper(strings.TrimSpace(r.URL.Query().Get("market")))
	result, err := h.portfolioService.Backtest(r.Context(), params, market)
	if err != nil {
		respondServiceError(w, err, apperrors.ErrFailedToRunBacktest)
		return
	}

	response.RespondJSON(w, http.StatusOK, result)
}
