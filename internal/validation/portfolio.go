package validation

import (
	"strings"

	"github.com/ndewijer/portfolio-dashboard/internal/api/request"
)

func ValidateCreatePosition(req request.CreatePositionRequest) error {
	errors := make(map[string]string)

	if strings.TrimSpace(req.Symbol) == "" {
		errors["symbol"] = "symbol is required"
	} else if !ValidSymbol(req.Symbol) {
		errors["symbol"] = "symbol structure is not correct"
	}

	if len(req.Name) > 100 {
		errors["name"] = "name must be 100 characters or less"
	}

	if strings.TrimSpace(req.Market) == "" {
		errors["market"] = "market is required"
	} else if len(req.Market) > 10 {
		errors["market"] = "market must be 10 characters or less"
	}

	if strings.TrimSpace(req.Currency) == "" {
		errors["currency"] = "currency is required"
	} else if !ValidCurrency(strings.ToUpper(req.Currency)) {
		errors["currency"] = "currency must be a 3 letter code (USD, KRW)"
	}

	if len(errors) > 0 {
		return &Error{Fields: errors}
	}
	return nil
}

// ValidateRebalance checks optional targets and tolerance.
func ValidateRebalance(req request.RebalanceRequest) error {
	errors := make(map[string]string)

	for symbol, weight := range req.Targets {
		if weight < 0 {
			errors["targets"] = "weight for " + symbol + " must not be negative"
		}
	}
	if req.Tolerance != nil && (*req.Tolerance < 0 || *req.Tolerance > 100) {
		errors["tolerance"] = "tolerance must be between 0 and 100"
	}

	if len(errors) > 0 {
		return &Error{Fields: errors}
	}
	return nil
}

func ValidateScenario(req request.ScenarioRequest) error {
	errors := make(map[string]string)

	if len(req.Shifts) == 0 {
		errors["shifts"] = "at least one shift is required"
	}
	for key, shift := range req.Shifts {
		if shift < -100 {
			errors["shifts"] = "shift for " + key + " cannot be below -100"
		}
	}

	if len(errors) > 0 {
		return &Error{Fields: errors}
	}
	return nil
}

func ValidateAsk(req request.AskRequest) error {
	q := strings.TrimSpace(req.Question)
	switch {
	case q == "":
		return &Error{Fields: map[string]string{"question": "question is required"}}
	case len(q) > 2000:
		return &Error{Fields: map[string]string{"question": "question must be 2000 characters or less"}}
	}
	return nil
}
