package request

// RebalanceRequest carries optional target weights in percent by symbol.
// Without targets the stored target allocation is used.
type RebalanceRequest struct {
	Targets   map[string]float64 `json:"targets,omitempty"`
	Tolerance *float64           `json:"tolerance,omitempty"`
}

// ScenarioRequest maps a symbol, a market or "*" to a percent price shift.
type ScenarioRequest struct {
	Shifts map[string]float64 `json:"shifts"`
}

type AskRequest struct {
	Question string `json:"question"`
}
