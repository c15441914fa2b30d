package request

// UpdateSettingsRequest is a partial update; nil fields are left unchanged.
// An empty AIAPIKey removes the stored key.
type UpdateSettingsRequest struct {
	BaseCurrency     *string            `json:"baseCurrency,omitempty"`
	RiskTolerance    *string            `json:"riskTolerance,omitempty"`
	InvestmentGoal   *string            `json:"investmentGoal,omitempty"`
	AdvisorLanguage  *string            `json:"advisorLanguage,omitempty"`
	TargetAllocation map[string]float64 `json:"targetAllocation,omitempty"`
	RiskFreeRate     *float64           `json:"riskFreeRate,omitempty"`
	AIAPIKey         *string            `json:"aiApiKey,omitempty"`
}
