package main

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/phuslu/log"

	"github.com/ndewijer/portfolio-dashboard/internal/advisor"
	"github.com/ndewijer/portfolio-dashboard/internal/api"
	"github.com/ndewijer/portfolio-dashboard/internal/config"
	"github.com/ndewijer/portfolio-dashboard/internal/database"
	"github.com/ndewijer/portfolio-dashboard/internal/fx"
	"github.com/ndewijer/portfolio-dashboard/internal/logging"
	"github.com/ndewijer/portfolio-dashboard/internal/marketdata"
	"github.com/ndewijer/portfolio-dashboard/internal/repository"
	"github.com/ndewijer/portfolio-dashboard/internal/secret"
	"github.com/ndewijer/portfolio-dashboard/internal/service"
)

// app holds the configuration, the database and every wired service.
type app struct {
	cfg      *config.Config
	db       *sql.DB
	services api.Services
}

// newApp loads the configuration, opens and migrates the database and
// wires the services. Callers must call close.
func newApp(ctx context.Context) (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	logging.Setup(cfg.Logging.Level, cfg.Logging.Format)

	db, err := database.Open(cfg.Database.Path)
	if err != nil {
		return nil, err
	}
	log.Info().Str("path", cfg.Database.Path).Msg("connected to database")

	applied, err := database.Migrate(ctx, db)
	if err != nil {
		db.Close()
		return nil, err
	}
	if len(applied) > 0 {
		log.Info().Int("count", len(applied)).Int64("version", applied[len(applied)-1]).Msg("applied migrations")
	}

	box, err := secret.NewBox(cfg.Security.SecretKey)
	if err != nil {
		db.Close()
		return nil, err
	}

	return &app{
		cfg:      cfg,
		db:       db,
		services: wire(cfg, db, box),
	}, nil
}

func (a *app) close() {
	if err := a.db.Close(); err != nil {
		log.Error().Err(err).Msg("failed to close database")
	}
}

// wire builds the service graph.
func wire(cfg *config.Config, db *sql.DB, box *secret.Box) api.Services {
	// Create repositories
	positionRepo := repository.NewPositionRepository(db)
	transactionRepo := repository.NewTransactionRepository(db)
	scheduleRepo := repository.NewAutoInvestRepository(db)
	reportRepo := repository.NewReportRepository(db)
	insightRepo := repository.NewInsightRepository(db)
	watchlistRepo := repository.NewWatchlistRepository(db)
	settingsRepo := repository.NewSettingsRepository(db)
	rateRepo := repository.NewExchangeRateRepository(db)

	// External clients
	market := marketdata.NewYahooClient(cfg.Market.BaseURL, cfg.Market.Timeout.Duration)
	converter := fx.NewConverter(
		fx.NewHTTPProvider(cfg.FX.URL, cfg.FX.RatesKey, cfg.FX.Timeout.Duration),
		rateRepo,
		cfg.FX.TTL.Duration,
	)

	// Create services
	settingsService := service.NewSettingsService(settingsRepo, box, cfg.Portfolio.BaseCurrency)
	positionService := service.NewPositionService(db, positionRepo, transactionRepo, market, converter)
	portfolioService := service.NewPortfolioService(positionService, settingsService, market, converter)

	return api.Services{
		System:      service.NewSystemService(db),
		Position:    positionService,
		Transaction: service.NewTransactionService(db, transactionRepo, positionRepo, converter),
		Portfolio:   portfolioService,
		Market:      service.NewMarketService(market, converter),
		AutoInvest:  service.NewAutoInvestService(db, scheduleRepo, positionRepo, transactionRepo, market, converter),
		Report:      service.NewReportService(reportRepo, transactionRepo, portfolioService),
		Advisor: service.NewAdvisorService(
			insightRepo,
			reportRepo,
			portfolioService,
			settingsService,
			advisor.NewGeminiFactory(cfg.Advisor.Model),
			cfg.Advisor.APIKey,
		),
		Watchlist: service.NewWatchlistService(watchlistRepo, market),
		Settings:  settingsService,
	}
}
