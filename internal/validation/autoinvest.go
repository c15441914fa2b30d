package validation

import (
	"fmt"

	"github.com/ndewijer/portfolio-dashboard/internal/analytics"
	"github.com/ndewijer/portfolio-dashboard/internal/api/request"
)

func ValidateCreateSchedule(req request.CreateScheduleRequest) error {
	errors := make(map[string]string)

	if err := ValidateUUID(req.PositionID); err != nil {
		return err
	}

	if !analytics.ValidFrequency(req.Frequency) {
		errors["frequency"] = fmt.Sprintf("invalid frequency: %s", req.Frequency)
	}
	if req.Amount <= 0 {
		errors["amount"] = "amount must be positive"
	}
	checkDate(errors, "nextDueDate", req.NextDueDate)

	if len(errors) > 0 {
		return &Error{Fields: errors}
	}
	return nil
}

func ValidateUpdateSchedule(req request.UpdateScheduleRequest) error {
	errors := make(map[string]string)

	if req.Frequency != nil && !analytics.ValidFrequency(*req.Frequency) {
		errors["frequency"] = fmt.Sprintf("invalid frequency: %s", *req.Frequency)
	}
	if req.Amount != nil && *req.Amount <= 0 {
		errors["amount"] = "amount must be positive"
	}
	if req.NextDueDate != nil {
		checkDate(errors, "nextDueDate", *req.NextDueDate)
	}

	if len(errors) > 0 {
		return &Error{Fields: errors}
	}
	return nil
}
