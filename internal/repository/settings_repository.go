package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/ndewijer/portfolio-dashboard/internal/model"
)

// SettingsRepository provides data access methods for the singleton personalization_settings row.
type SettingsRepository struct {
	db *sql.DB
}

// NewSettingsRepository creates a new SettingsRepository with the provided database connection.
func NewSettingsRepository(db *sql.DB) *SettingsRepository {
	return &SettingsRepository{db: db}
}

// GetSettings returns the stored settings and whether a row exists.
// When nothing has been saved yet it returns (zero value, false, nil).
func (r *SettingsRepository) GetSettings(ctx context.Context) (model.PersonalizationSettings, bool, error) {
	var s model.PersonalizationSettings
	var allocation, updatedAt string

	err := r.db.QueryRowContext(ctx, `
		SELECT base_currency, risk_tolerance, investment_goal, advisor_language,
		       target_allocation, risk_free_rate, ai_api_key, updated_at
		FROM personalization_settings
		WHERE id = 1
	`).Scan(
		&s.BaseCurrency,
		&s.RiskTolerance,
		&s.InvestmentGoal,
		&s.AdvisorLanguage,
		&allocation,
		&s.RiskFreeRate,
		&s.EncryptedAPIKey,
		&updatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return model.PersonalizationSettings{}, false, nil
	}
	if err != nil {
		return model.PersonalizationSettings{}, false, fmt.Errorf("failed to query personalization_settings: %w", err)
	}

	if err := json.Unmarshal([]byte(allocation), &s.TargetAllocation); err != nil {
		return model.PersonalizationSettings{}, false, fmt.Errorf("failed to decode target allocation: %w", err)
	}
	t, err := ParseTime(updatedAt)
	if err != nil {
		return model.PersonalizationSettings{}, false, err
	}
	s.UpdatedAt = &t
	s.HasAIAPIKey = s.EncryptedAPIKey != ""
	return s, true, nil
}

// SaveSettings writes the singleton settings row.
func (r *SettingsRepository) SaveSettings(ctx context.Context, s model.PersonalizationSettings) error {
	allocation := s.TargetAllocation
	if allocation == nil {
		allocation = map[string]float64{}
	}
	data, err := json.Marshal(allocation)
	if err != nil {
		return fmt.Errorf("failed to encode target allocation: %w", err)
	}

	var updatedAt string
	if s.UpdatedAt != nil {
		updatedAt = formatTimestamp(*s.UpdatedAt)
	}

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO personalization_settings (
			id, base_currency, risk_tolerance, investment_goal, advisor_language,
			target_allocation, risk_free_rate, ai_api_key, updated_at
		)
		VALUES (1, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			base_currency = excluded.base_currency,
			risk_tolerance = excluded.risk_tolerance,
			investment_goal = excluded.investment_goal,
			advisor_language = excluded.advisor_language,
			target_allocation = excluded.target_allocation,
			risk_free_rate = excluded.risk_free_rate,
			ai_api_key = excluded.ai_api_key,
			updated_at = excluded.updated_at
	`,
		s.BaseCurrency,
		s.RiskTolerance,
		s.InvestmentGoal,
		s.AdvisorLanguage,
		string(data),
		s.RiskFreeRate,
		s.EncryptedAPIKey,
		updatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save personalization_settings: %w", err)
	}
	return nil
}
