package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/ndewijer/portfolio-dashboard/internal/api/request"
	"github.com/ndewijer/portfolio-dashboard/internal/model"
	"github.com/ndewijer/portfolio-dashboard/internal/repository"
	"github.com/ndewijer/portfolio-dashboard/internal/secret"
)

// SettingsService owns the household's personalization settings.
type SettingsService struct {
	settingsRepo *repository.SettingsRepository
	box          *secret.Box
	defaults     model.PersonalizationSettings
}

// NewSettingsService creates a SettingsService. baseCurrency is used until
// the household stores its own.
func NewSettingsService(settingsRepo *repository.SettingsRepository, box *secret.Box, baseCurrency string) *SettingsService {
	return &SettingsService{
		settingsRepo: settingsRepo,
		box:          box,
		defaults: model.PersonalizationSettings{
			BaseCurrency:     baseCurrency,
			RiskTolerance:    model.RiskModerate,
			AdvisorLanguage:  "en",
			TargetAllocation: map[string]float64{},
			RiskFreeRate:     3.0,
		},
	}
}

// GetSettings returns the stored settings, or the defaults when none exist.
func (s *SettingsService) GetSettings(ctx context.Context) (model.PersonalizationSettings, error) {
	settings, ok, err := s.settingsRepo.GetSettings(ctx)
	if err != nil {
		return model.PersonalizationSettings{}, err
	}
	if !ok {
		d := s.defaults
		d.TargetAllocation = map[string]float64{}
		return d, nil
	}
	if settings.TargetAllocation == nil {
		settings.TargetAllocation = map[string]float64{}
	}
	return settings, nil
}

// UpdateSettings applies the non-nil fields of req and saves the result.
func (s *SettingsService) UpdateSettings(ctx context.Context, req request.UpdateSettingsRequest) (model.PersonalizationSettings, error) {
	settings, err := s.GetSettings(ctx)
	if err != nil {
		return model.PersonalizationSettings{}, err
	}

	if req.BaseCurrency != nil {
		settings.BaseCurrency = strings.ToUpper(*req.BaseCurrency)
	}
	if req.RiskTolerance != nil {
		settings.RiskTolerance = *req.RiskTolerance
	}
	if req.InvestmentGoal != nil {
		settings.InvestmentGoal = strings.TrimSpace(*req.InvestmentGoal)
	}
	if req.AdvisorLanguage != nil {
		settings.AdvisorLanguage = strings.ToLower(*req.AdvisorLanguage)
	}
	if req.TargetAllocation != nil {
		targets := make(map[string]float64, len(req.TargetAllocation))
		for symbol, weight := range req.TargetAllocation {
			targets[strings.ToUpper(strings.TrimSpace(symbol))] = weight
		}
		settings.TargetAllocation = targets
	}
	if req.RiskFreeRate != nil {
		settings.RiskFreeRate = *req.RiskFreeRate
	}
	if req.AIAPIKey != nil {
		key := strings.TrimSpace(*req.AIAPIKey)
		if key == "" {
			settings.EncryptedAPIKey = ""
		} else {
			token, err := s.box.Seal(key)
			if err != nil {
				return model.PersonalizationSettings{}, fmt.Errorf("failed to encrypt api key: %w", err)
			}
			settings.EncryptedAPIKey = token
		}
	}

	now := time.Now().UTC()
	settings.UpdatedAt = &now
	settings.HasAIAPIKey = settings.EncryptedAPIKey != ""

	if err := s.settingsRepo.SaveSettings(ctx, settings); err != nil {
		return model.PersonalizationSettings{}, err
	}
	return settings, nil
}

// APIKey returns the decrypted AI API key, or "" when none is stored.
func (s *SettingsService) APIKey(ctx context.Context) (string, error) {
	settings, _, err := s.settingsRepo.GetSettings(ctx)
	if err != nil {
		return "", err
	}
	if settings.EncryptedAPIKey == "" {
		return "", nil
	}
	return s.box.Open(settings.EncryptedAPIKey)
}
