package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/ndewijer/portfolio-dashboard/internal/api/response"
	"github.com/ndewijer/portfolio-dashboard/internal/apperrors"
	"github.com/ndewijer/portfolio-dashboard/internal/service"
	"github.com/ndewijer/portfolio-dashboard/internal/validation"
)

// defaultHistoryDays is the history window when no days parameter is given.
const defaultHistoryDays = 30

// MarketHandler handles quote, history and exchange rate lookups.
type MarketHandler struct {
	marketService *service.MarketService
}

// NewMarketHandler creates a new MarketHandler.
func NewMarketHandler(marketService *service.MarketService) *MarketHandler {
	return &MarketHandler{
		marketService: marketService,
	}
}

// currencyPair reads the required from and to query parameters.
func currencyPair(w http.ResponseWriter, r *http.Request) (string, string, bool) {
	from, err := requiredQuery(r, "from")
	if err != nil {
		response.RespondError(w, http.StatusBadRequest, apperrors.ErrInvalidCurrency.Error(), err.Error())
		return "", "", false
	}
	to, err := requiredQuery(r, "to")
	if err != nil {
		response.RespondError(w, http.StatusBadRequest, apperrors.ErrInvalidCurrency.Error(), err.Error())
		return "", "", false
	}
	from, to = strings.ToUpper(from), strings.ToUpper(to)
	if !validation.ValidCurrency(from) || !validation.ValidCurrency(to) {
		response.RespondError(w, http.StatusBadRequest, apperrors.ErrInvalidCurrency.Error(), "currencies must be three-letter codes")
		return "", "", false
	}
	return from, to, true
}

// ExchangeRate handles GET requests for the rate of one currency in another.
//
// Endpoint: GET /api/exchange-rate
// Query: from, to (required)
// Response: 200 OK with ExchangeRate
// Error: 400 Bad Request if a currency is missing or unsupported
// Error: 500 Internal Server Error if the rate cannot be determined
func (h *MarketHandler) ExchangeRate(w http.ResponseWriter, r *http.Request) {
	from, to, ok := currencyPair(w, r)
	if !ok {
		return
	}

	rate, err := h.marketService.GetExchangeRate(r.Context(), from, to)
	if err != nil {
		respondServiceError(w, err, apperrors.ErrFailedToRetrieveExchangeRate)
		return
	}

	response.RespondJSON(w, http.StatusOK, rate)
}

// Convert handles GET requests to convert an amount between currencies.
//
// Endpoint: GET /api/exchange-rate/convert
// Query: amount, from, to (required)
// Response: 200 OK with Conversion
// Error: 400 Bad Request if a parameter is missing or malformed
// Error: 500 Internal Server Error if the rate cannot be determined
func (h *MarketHandler) Convert(w http.ResponseWriter, r *http.Request) {
	amountStr, err := requiredQuery(r, "amount")
	if err != nil {
		response.RespondError(w, http.StatusBadRequest, apperrors.ErrInvalidAmount.Error(), err.Error())
		return
	}
	amount, err := strconv.ParseFloat(amountStr, 64)
	if err != nil {
		response.RespondError(w, http.StatusBadRequest, apperrors.ErrInvalidAmount.Error(), "amount must be a number")
		return
	}
	from, to, ok := currencyPair(w, r)
	if !ok {
		return
	}

	conversion, err := h.marketService.Convert(r.Context(), amount, from, to)
	if err != nil {
		respondServiceError(w, err, apperrors.ErrFailedToRetrieveExchangeRate)
		return
	}

	response.RespondJSON(w, http.StatusOK, conversion)
}

// Quote handles GET requests for the latest quote of a symbol.
//
// Endpoint: GET /api/market/quote
// Query: symbol (required), market (optional, e.g. KR)
// Response: 200 OK with Quote
// Error: 400 Bad Request if symbol is missing
// Error: 404 Not Found if the symbol is unknown
// Error: 500 Internal Server Error if the lookup fails
func (h *MarketHandler) Quote(w http.ResponseWriter, r *http.Request) {
	symbol, err := requiredQuery(r, "symbol")
	if err != nil {
		response.RespondError(w, http.StatusBadRequest, apperrors.ErrInvalidSymbol.Error(), err.Error())
		return
	}
	market := strings.ToUpper(strings.TrimSpace(r.URL.Query().Get("market")))

	quote, err := h.marketService.GetQuote(r.Context(), strings.ToUpper(symbol), market)
	if err != nil {
		respondServiceError(w, err, apperrors.ErrFailedToRetrieveQuote)
		return
	}

	response.RespondJSON(w, http.StatusOK, quote)
}

// History handles GET requests for the daily closes of a symbol.
//
// Endpoint: GET /api/market/history
// Query: symbol (required), market (optional), days (optional, default 30)
// Response: 200 OK with array of PricePoint
// Error: 400 Bad Request if symbol is missing or days is malformed
// Error: 404 Not Found if the symbol is unknown
// Error: 500 Internal Server Error if the lookup fails
func (h *MarketHandler) History(w http.ResponseWriter, r *http.Request) {
	symbol, err := requiredQuery(r, "symbol")
	if err != nil {
		response.RespondError(w, http.StatusBadRequest, apperrors.ErrInvalidSymbol.Error(), err.Error())
		return
	}
	days, err := parseIntQuery(r, "days", defaultHistoryDays)
	if err != nil {
		response.RespondError(w, http.StatusBadRequest, "invalid days parameter", err.Error())
		return
	}
	market := strings.ToUpper(strings.TrimSpace(r.URL.Query().Get("market")))

	history, err := h.marketService.GetHistory(r.Context(), strings.ToUpper(symbol), market, days)
	if err != nil {
		respondServiceError(w, err, apperrors.ErrFailedToRetrieveQuote)
		return
	}

	response.RespondJSON(w, http.StatusOK, history)
}
