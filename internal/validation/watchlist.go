package validation

import (
	"strings"

	"github.com/ndewijer/portfolio-dashboard/internal/api/request"
)

func ValidateCreateWatchlistItem(req request.CreateWatchlistItemRequest) error {
	errors := make(map[string]string)

	if strings.TrimSpace(req.Symbol) == "" {
		errors["symbol"] = "symbol is required"
	} else if !ValidSymbol(req.Symbol) {
		errors["symbol"] = "symbol structure is not correct"
	}
	if len(req.Name) > 100 {
		errors["name"] = "name must be 100 characters or less"
	}
	if req.TargetPrice != nil && *req.TargetPrice <= 0 {
		errors["targetPrice"] = "targetPrice must be positive"
	}
	if len(req.Note) > 500 {
		errors["note"] = "note must be 500 characters or less"
	}

	if len(errors) > 0 {
		return &Error{Fields: errors}
	}
	return nil
}
