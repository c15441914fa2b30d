package request

type CreateScheduleRequest struct {
	PositionID  string  `json:"positionId"`
	Frequency   string  `json:"frequency"`
	Amount      float64 `json:"amount"`
	NextDueDate string  `json:"nextDueDate"`
	Enabled     *bool   `json:"enabled,omitempty"`
}

type UpdateScheduleRequest struct {
	Frequency   *string  `json:"frequency,omitempty"`
	Amount      *float64 `json:"amount,omitempty"`
	NextDueDate *string  `json:"nextDueDate,omitempty"`
	Enabled     *bool    `json:"enabled,omitempty"`
}
