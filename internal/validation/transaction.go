package validation

import (
	"fmt"
	"strings"

	"github.com/ndewijer/portfolio-dashboard/internal/api/request"
	"github.com/ndewijer/portfolio-dashboard/internal/model"
)

// ValidTransactionType contains the allowed transaction type values.
var ValidTransactionType = map[string]bool{
	model.TransactionTypeBuy:      true,
	model.TransactionTypeSell:     true,
	model.TransactionTypeDividend: true,
}

// ValidateCreateTransaction validates a transaction creation request.
//
// Required fields:
//   - positionId: Must be a valid UUID
//   - date: Must be in YYYY-MM-DD format
//   - type: Must be one of: buy, sell, dividend
//   - shares, price: Must be positive
//
// Optional fields: fee (not negative), currency (3 letters), exchangeRate (positive).
func ValidateCreateTransaction(req request.CreateTransactionRequest) error {
	errors := make(map[string]string)

	if err := ValidateUUID(req.PositionID); err != nil {
		return err
	}

	checkDate(errors, "date", req.Date)

	if strings.TrimSpace(req.Type) == "" {
		errors["type"] = "type is required"
	} else if !ValidTransactionType[req.Type] {
		errors["type"] = fmt.Sprintf("invalid type: %s", req.Type)
	}

	if req.Shares <= 0.0 {
		errors["shares"] = "shares must be positive"
	}
	if req.Price <= 0.0 {
		errors["price"] = "price must be positive"
	}
	if req.Fee < 0.0 {
		errors["fee"] = "fee cannot be negative"
	}
	if req.Currency != "" && !ValidCurrency(strings.ToUpper(req.Currency)) {
		errors["currency"] = "currency must be a 3 letter code (USD, KRW)"
	}
	if req.ExchangeRate != nil && *req.ExchangeRate <= 0 {
		errors["exchangeRate"] = "exchangeRate must be positive"
	}

	if len(errors) > 0 {
		return &Error{Fields: errors}
	}
	return nil
}
