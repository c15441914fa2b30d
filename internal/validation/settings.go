package validation

import (
	"strings"

	"github.com/ndewijer/portfolio-dashboard/internal/api/request"
	"github.com/ndewijer/portfolio-dashboard/internal/model"
)

var ValidRiskTolerance = map[string]bool{
	model.RiskConservative: true,
	model.RiskModerate:     true,
	model.RiskAggressive:   true,
}

func ValidateUpdateSettings(req request.UpdateSettingsRequest) error {
	errors := make(map[string]string)

	if req.BaseCurrency != nil && !ValidCurrency(strings.ToUpper(*req.BaseCurrency)) {
		errors["baseCurrency"] = "baseCurrency must be a 3 letter code (USD, KRW)"
	}
	if req.RiskTolerance != nil && !ValidRiskTolerance[*req.RiskTolerance] {
		errors["riskTolerance"] = "riskTolerance must be conservative, moderate or aggressive"
	}
	if req.InvestmentGoal != nil && len(*req.InvestmentGoal) > 500 {
		errors["investmentGoal"] = "investmentGoal must be 500 characters or less"
	}
	if req.AdvisorLanguage != nil && len(*req.AdvisorLanguage) > 10 {
		errors["advisorLanguage"] = "advisorLanguage must be a language code"
	}
	for symbol, weight := range req.TargetAllocation {
		if weight < 0 {
			errors["targetAllocation"] = "weight for " + symbol + " must not be negative"
		}
	}
	if req.RiskFreeRate != nil && (*req.RiskFreeRate < 0 || *req.RiskFreeRate > 100) {
		errors["riskFreeRate"] = "riskFreeRate must be a percentage between 0 and 100"
	}

	if len(errors) > 0 {
		return &Error{Fields: errors}
	}
	return nil
}
