package model

import "time"

// Risk tolerance levels.
const (
	RiskConservative = "conservative"
	RiskModerate     = "moderate"
	RiskAggressive   = "aggressive"
)

// PersonalizationSettings is the singleton preference record of the household.
// EncryptedAPIKey holds a Fernet token and never leaves the service layer.
type PersonalizationSettings struct {
	BaseCurrency     string             `json:"baseCurrency"`
	RiskTolerance    string             `json:"riskTolerance"`
	InvestmentGoal   string             `json:"investmentGoal"`
	AdvisorLanguage  string             `json:"advisorLanguage"`
	TargetAllocation map[string]float64 `json:"targetAllocation"`
	RiskFreeRate     float64            `json:"riskFreeRate"`
	EncryptedAPIKey  string             `json:"-"`
	HasAIAPIKey      bool               `json:"hasAiApiKey"`
	UpdatedAt        *time.Time         `json:"updatedAt,omitempty"`
}
