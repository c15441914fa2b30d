package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/ndewijer/portfolio-dashboard/internal/api/handlers"
	custommiddleware "github.com/ndewijer/portfolio-dashboard/internal/api/middleware"
	"github.com/ndewijer/portfolio-dashboard/internal/config"
	"github.com/ndewijer/portfolio-dashboard/internal/service"
)

// Services groups the services the HTTP layer delegates to.
type Services struct {
	System      *service.SystemService
	Position    *service.PositionService
	Transaction *service.TransactionService
	Portfolio   *service.PortfolioService
	Market      *service.MarketService
	AutoInvest  *service.AutoInvestService
	Report      *service.ReportService
	Advisor     *service.AdvisorService
	Watchlist   *service.WatchlistService
	Settings    *service.SettingsService
}

// NewRouter creates and configures the HTTP router
func NewRouter(s Services, cfg *config.Config) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(custommiddleware.Logger)
	r.Use(middleware.Recoverer)

	// CORS middleware
	corsMiddleware := custommiddleware.NewCORS(cfg.CORS.AllowedOrigins)
	r.Use(corsMiddleware.Handler)

	// API routes
	r.Route("/api", func(r chi.Router) {
		// System namespace
		r.Route("/system", func(r chi.Router) {
			systemHandler := handlers.NewSystemHandler(s.System)
			r.Get("/health", systemHandler.Health)
			r.Get("/version", systemHandler.Version)
		})

		r.Route("/position", func(r chi.Router) {
			positionHandler := handlers.NewPositionHandler(s.Position)
			r.Get("/", positionHandler.Positions)
			r.Post("/", positionHandler.CreatePosition)

			r.Route("/{uuid}", func(r chi.Router) {
				r.Use(custommiddleware.ValidateUUIDMiddleware)
				r.Get("/", positionHandler.GetPosition)
				r.Delete("/", positionHandler.DeletePosition)
				r.Post("/recalculate", positionHandler.RecalculatePosition)
			})
		})

		r.Route("/transaction", func(r chi.Router) {
			transactionHandler := handlers.NewTransactionHandler(s.Transaction)
			r.Get("/", transactionHandler.Transactions)
			r.Post("/", transactionHandler.CreateTransaction)
			r.With(custommiddleware.ValidateUUIDMiddleware).Get("/{uuid}", transactionHandler.GetTransaction)
		})

		r.Route("/portfolio", func(r chi.Router) {
			portfolioHandler := handlers.NewPortfolioHandler(s.Portfolio)
			r.Get("/summary", portfolioHandler.Summary)
			r.Get("/allocation", portfolioHandler.Allocation)
			r.Get("/risk", portfolioHandler.Risk)
			r.Get("/correlation", portfolioHandler.Correlation)
			r.Post("/rebalance", portfolioHandler.Rebalance)
			r.Post("/scenario", portfolioHandler.Scenario)
			r.Get("/backtest", portfolioHandler.Backtest)
		})

		marketHandler := handlers.NewMarketHandler(s.Market)
		r.Route("/exchange-rate", func(r chi.Router) {
			r.Get("/", marketHandler.ExchangeRate)
			r.Get("/convert", marketHandler.Convert)
		})
		r.Route("/market", func(r chi.Router) {
			r.Get("/quote", marketHandler.Quote)
			r.Get("/history", marketHandler.History)
		})

		r.Route("/auto-invest", func(r chi.Router) {
			autoInvestHandler := handlers.NewAutoInvestHandler(s.AutoInvest)
			r.Get("/", autoInvestHandler.Schedules)
			r.Post("/", autoInvestHandler.CreateSchedule)
			r.Post("/run", autoInvestHandler.RunDue)

			r.Route("/{uuid}", func(r chi.Router) {
				r.Use(custommiddleware.ValidateUUIDMiddleware)
				r.Get("/", autoInvestHandler.GetSchedule)
				r.Put("/", autoInvestHandler.UpdateSchedule)
				r.Delete("/", autoInvestHandler.DeleteSchedule)
				r.Post("/execute", autoInvestHandler.Execute)
			})
		})

		r.Route("/report", func(r chi.Router) {
			reportHandler := handlers.NewReportHandler(s.Report)
			r.Get("/", reportHandler.Reports)
			r.Get("/latest", reportHandler.LatestReport)
			r.Post("/generate", reportHandler.Generate)
			r.With(custommiddleware.ValidateUUIDMiddleware).Get("/{uuid}", reportHandler.GetReport)
		})

		r.Route("/advisor", func(r chi.Router) {
			advisorHandler := handlers.NewAdvisorHandler(s.Advisor)
			r.Get("/insight", advisorHandler.Insights)
			r.Post("/insight", advisorHandler.GenerateInsight)
			r.Get("/insight/latest", advisorHandler.LatestInsight)
			r.Post("/ask", advisorHandler.Ask)
		})

		r.Route("/watchlist", func(r chi.Router) {
			watchlistHandler := handlers.NewWatchlistHandler(s.Watchlist)
			r.Get("/", watchlistHandler.Watchlist)
			r.Post("/", watchlistHandler.AddItem)
			r.With(custommiddleware.ValidateUUIDMiddleware).Delete("/{uuid}", watchlistHandler.DeleteItem)
		})

		r.Route("/settings", func(r chi.Router) {
			settingsHandler := handlers.NewSettingsHandler(s.Settings)
			r.Get("/", settingsHandler.GetSettings)
			r.Put("/", settingsHandler.UpdateSettings)
		})
	})

	return r
}
