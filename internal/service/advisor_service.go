package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/phuslu/log"

	"github.com/ndewijer/portfolio-dashboard/internal/advisor"
	"github.com/ndewijer/portfolio-dashboard/internal/analytics"
	"github.com/ndewijer/portfolio-dashboard/internal/apperrors"
	"github.com/ndewijer/portfolio-dashboard/internal/model"
	"github.com/ndewijer/portfolio-dashboard/internal/repository"
	"github.com/ndewijer/portfolio-dashboard/internal/secret"
)

// AdvisorService generates narrative insights from the portfolio figures.
type AdvisorService struct {
	insightRepo      *repository.InsightRepository
	reportRepo       *repository.ReportRepository
	portfolioService *PortfolioService
	settingsService  *SettingsService
	factory          advisor.Factory
	envAPIKey        string
}

// NewAdvisorService creates a new AdvisorService. envAPIKey is used when no
// key is stored in the settings.
func NewAdvisorService(
	insightRepo *repository.InsightRepository,
	reportRepo *repository.ReportRepository,
	portfolioService *PortfolioService,
	settingsService *SettingsService,
	factory advisor.Factory,
	envAPIKey string,
) *AdvisorService {
	return &AdvisorService{
		insightRepo:      insightRepo,
		reportRepo:       reportRepo,
		portfolioService: portfolioService,
		settingsService:  settingsService,
		factory:          factory,
		envAPIKey:        envAPIKey,
	}
}

// GetInsights returns the newest insights first, optionally filtered by kind.
func (s *AdvisorService) GetInsights(ctx context.Context, kind string, limit int) ([]model.AIInsight, error) {
	return s.insightRepo.GetInsights(ctx, kind, limit)
}

// GetLatestInsight returns the newest insight of any kind.
// Returns ErrInsightNotFound when none exists.
func (s *AdvisorService) GetLatestInsight(ctx context.Context) (model.AIInsight, error) {
	return s.insightRepo.GetLatestInsight(ctx)
}

// Available reports whether an API key is configured.
func (s *AdvisorService) Available(ctx context.Context) bool {
	key, err := s.apiKey(ctx)
	return err == nil && key != ""
}

// GenerateInsight reviews the whole portfolio.
func (s *AdvisorService) GenerateInsight(ctx context.Context) (model.AIInsight, error) {
	return s.generate(ctx, model.InsightKindPortfolio, "", advisor.InsightPrompt)
}

// GenerateWeeklyInsight reviews the portfolio with the latest weekly report in focus.
func (s *AdvisorService) GenerateWeeklyInsight(ctx context.Context) (model.AIInsight, error) {
	return s.generate(ctx, model.InsightKindWeekly, "", advisor.WeeklyPrompt)
}

// Ask answers a household question against the same context.
func (s *AdvisorService) Ask(ctx context.Context, question string) (model.AIInsight, error) {
	question = strings.TrimSpace(question)
	return s.generate(ctx, model.InsightKindQuestion, question, func(c advisor.Context) string {
		return advisor.QuestionPrompt(c, question)
	})
}

func (s *AdvisorService) generate(ctx context.Context, kind, question string, prompt func(advisor.Context) string) (model.AIInsight, error) {
	key, err := s.apiKey(ctx)
	if err != nil {
		return model.AIInsight{}, err
	}
	if key == "" {
		return model.AIInsight{}, apperrors.ErrAdvisorUnavailable
	}

	generator, err := s.factory(ctx, key)
	if err != nil {
		return model.AIInsight{}, fmt.Errorf("%w: %w", apperrors.ErrAdvisorUnavailable, err)
	}

	c, err := s.buildContext(ctx)
	if err != nil {
		return model.AIInsight{}, err
	}

	content, err := generator.Generate(ctx, advisor.SystemPrompt(c.Settings), prompt(c))
	if err != nil {
		return model.AIInsight{}, fmt.Errorf("%w: %w", apperrors.ErrFailedToGenerateInsight, err)
	}
	html, err := advisor.RenderHTML(content)
	if err != nil {
		return model.AIInsight{}, err
	}

	insight := model.AIInsight{
		ID:        uuid.New().String(),
		Kind:      kind,
		Question:  question,
		Content:   content,
		HTML:      html,
		Model:     generator.Model(),
		CreatedAt: time.Now().UTC(),
	}
	if err := s.insightRepo.InsertInsight(ctx, insight); err != nil {
		return model.AIInsight{}, err
	}

	log.Info().Str("kind", kind).Str("model", insight.Model).Msg("insight generated")
	return insight, nil
}

// buildContext collects the figures the advisor is told about. Risk and the
// weekly report are optional and omitted when unavailable.
func (s *AdvisorService) buildContext(ctx context.Context) (advisor.Context, error) {
	snap, err := s.portfolioService.load(ctx)
	if err != nil {
		return advisor.Context{}, err
	}

	allocation, err := analytics.Allocate(snap.holdings, analytics.BySymbol)
	if err != nil {
		return advisor.Context{}, err
	}

	c := advisor.Context{
		Settings:   snap.settings,
		Summary:    summarize(snap),
		Positions:  snap.positions,
		Allocation: allocation,
	}

	if len(snap.holdings) > 0 {
		histories := s.portfolioService.histories(ctx, snap.holdings, DefaultAnalysisDays)
		risk := analytics.Risk(analytics.Weights(snap.holdings), histories, snap.settings.RiskFreeRate)
		c.Risk = &risk
	}

	report, err := s.reportRepo.GetLatestReport(ctx)
	switch {
	case err == nil:
		c.Report = &report
	case !errors.Is(err, apperrors.ErrReportNotFound):
		return advisor.Context{}, err
	}
	return c, nil
}

// apiKey prefers the key stored in the settings over the environment. A
// stored key sealed under another secret is ignored.
func (s *AdvisorService) apiKey(ctx context.Context) (string, error) {
	key, err := s.settingsService.APIKey(ctx)
	if errors.Is(err, secret.ErrInvalidToken) {
		log.Warn().Err(err).Msg("stored AI API key cannot be decrypted, using the configured key")
		return s.envAPIKey, nil
	}
	if err != nil {
		return "", err
	}
	if key != "" {
		return key, nil
	}
	return s.envAPIKey, nil
}
