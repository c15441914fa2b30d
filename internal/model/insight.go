package model

import "time"

// Insight kinds.
const (
	InsightKindPortfolio = "portfolio"
	InsightKindWeekly    = "weekly"
	InsightKindQuestion  = "question"
)

// AIInsight is a generated narrative about the portfolio.
type AIInsight struct {
	ID        string    `json:"id"`
	Kind      string    `json:"kind"`
	Question  string    `json:"question,omitempty"`
	Content   string    `json:"content"`
	HTML      string    `json:"html"`
	Model     string    `json:"model"`
	CreatedAt time.Time `json:"createdAt"`
}
