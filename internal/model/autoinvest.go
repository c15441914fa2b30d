package model

import "time"

// Auto-invest frequencies.
const (
	FrequencyDaily    = "daily"
	FrequencyWeekly   = "weekly"
	FrequencyBiweekly = "biweekly"
	FrequencyMonthly  = "monthly"
)

// AutoInvestSchedule drives recurring purchases of one position.
// Amount is expressed in the position currency. AnchorDay is the day of month
// monthly schedules return to after a short month.
type AutoInvestSchedule struct {
	ID             string     `json:"id"`
	PositionID     string     `json:"positionId"`
	Frequency      string     `json:"frequency"`
	Amount         float64    `json:"amount"`
	NextDueDate    time.Time  `json:"nextDueDate"`
	AnchorDay      int        `json:"anchorDay"`
	Enabled        bool       `json:"enabled"`
	LastExecutedAt *time.Time `json:"lastExecutedAt,omitempty"`
	CreatedAt      time.Time  `json:"createdAt"`
}

// AutoInvestExecution reports the outcome of executing one schedule.
type AutoInvestExecution struct {
	ScheduleID    string       `json:"scheduleId"`
	PositionID    string       `json:"positionId"`
	Symbol        string       `json:"symbol"`
	Transaction   *Transaction `json:"transaction,omitempty"`
	NextDueDate   time.Time    `json:"nextDueDate"`
	Error         string       `json:"error,omitempty"`
	ExecutedPrice float64      `json:"executedPrice,omitempty"`
}

// AutoInvestRunResult summarizes a run over all due schedules.
type AutoInvestRunResult struct {
	AsOf       time.Time             `json:"asOf"`
	Executed   int                   `json:"executed"`
	Failed     int                   `json:"failed"`
	Executions []AutoInvestExecution `json:"executions"`
}
