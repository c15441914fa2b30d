// Package validation checks request payloads before they reach the services.
package validation

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
)

// ErrInvalidUUID is returned by ValidateUUID.
var ErrInvalidUUID = fmt.Errorf("invalid UUID format")

var (
	currencyPattern = regexp.MustCompile(`^[A-Z]{3}$`)
	symbolPattern   = regexp.MustCompile(`^[A-Z0-9][A-Z0-9.\-^=]{0,19}$`)
)

// ValidateUUID checks if a string is a valid UUID
func ValidateUUID(id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return fmt.Errorf("%w: %s", ErrInvalidUUID, id)
	}
	return nil
}

// ValidCurrency reports whether c is a three-letter upper-case currency code.
func ValidCurrency(c string) bool {
	return currencyPattern.MatchString(c)
}

// ValidSymbol reports whether s looks like a ticker after upper-casing.
func ValidSymbol(s string) bool {
	return symbolPattern.MatchString(strings.ToUpper(strings.TrimSpace(s)))
}

func checkDate(errors map[string]string, field, value string) {
	if strings.TrimSpace(value) == "" {
		errors[field] = field + " is required"
		return
	}
	if _, err := time.Parse("2006-01-02", value); err != nil {
		errors[field] = field + " must be in YYYY-MM-DD format"
	}
}
