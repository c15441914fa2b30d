package testutil

import (
	"database/sql"
	"math/rand"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/ndewijer/portfolio-dashboard/internal/fx"
	"github.com/ndewijer/portfolio-dashboard/internal/repository"
	"github.com/ndewijer/portfolio-dashboard/internal/secret"
	"github.com/ndewijer/portfolio-dashboard/internal/service"
)

// TestSecretKey is the passphrase used to encrypt settings in tests.
const TestSecretKey = "test-secret-key"

// NewTestConverter returns a converter over NewMockRateProvider that
// persists rates into db.
func NewTestConverter(t *testing.T, db *sql.DB) *fx.Converter {
	t.Helper()

	return fx.NewConverter(NewMockRateProvider(), repository.NewExchangeRateRepository(db), time.Hour)
}

func NewTestSystemService(t *testing.T, db *sql.DB) *service.SystemService {
	t.Helper()
	return service.NewSystemService(db)
}

func NewTestSettingsService(t *testing.T, db *sql.DB) *service.SettingsService {
	t.Helper()

	box, err := secret.NewBox(TestSecretKey)
	if err != nil {
		t.Fatalf("Failed to create secret box: %v", err)
	}
	return service.NewSettingsService(repository.NewSettingsRepository(db), box, "KRW")
}

func NewTestPositionService(t *testing.T, db *sql.DB, market *MockMarketClient) *service.PositionService {
	t.Helper()

	return service.NewPositionService(
		db,
		repository.NewPositionRepository(db),
		repository.NewTransactionRepository(db),
		market,
		NewTestConverter(t, db),
	)
}

func NewTestTransactionService(t *testing.T, db *sql.DB) *service.TransactionService {
	t.Helper()

	return service.NewTransactionService(
		db,
		repository.NewTransactionRepository(db),
		repository.NewPositionRepository(db),
		NewTestConverter(t, db),
	)
}

func NewTestMarketService(t *testing.T, db *sql.DB, market *MockMarketClient) *service.MarketService {
	t.Helper()
	return service.NewMarketService(market, NewTestConverter(t, db))
}

func NewTestPortfolioService(t *testing.T, db *sql.DB, market *MockMarketClient) *service.PortfolioService {
	t.Helper()

	return service.NewPortfolioService(
		NewTestPositionService(t, db, market),
		NewTestSettingsService(t, db),
		market,
		NewTestConverter(t, db),
	)
}

func NewTestAutoInvestService(t *testing.T, db *sql.DB, market *MockMarketClient) *service.AutoInvestService {
	t.Helper()

	return service.NewAutoInvestService(
		db,
		repository.NewAutoInvestRepository(db),
		repository.NewPositionRepository(db),
		repository.NewTransactionRepository(db),
		market,
		NewTestConverter(t, db),
	)
}

func NewTestReportService(t *testing.T, db *sql.DB, market *MockMarketClient) *service.ReportService {
	t.Helper()

	return service.NewReportService(
		repository.NewReportRepository(db),
		repository.NewTransactionRepository(db),
		NewTestPortfolioService(t, db, market),
	)
}

func NewTestAdvisorService(t *testing.T, db *sql.DB, market *MockMarketClient, generator *MockTextGenerator, envAPIKey string) *service.AdvisorService {
	t.Helper()

	return service.NewAdvisorService(
		repository.NewInsightRepository(db),
		repository.NewReportRepository(db),
		NewTestPortfolioService(t, db, market),
		NewTestSettingsService(t, db),
		generator.Factory(),
		envAPIKey,
	)
}

func NewTestWatchlistService(t *testing.T, db *sql.DB, market *MockMarketClient) *service.WatchlistService {
	t.Helper()
	return service.NewWatchlistService(repository.NewWatchlistRepository(db), market)
}

// MakeID generates a UUID string for use in tests.
//
// Example usage:
//
//	id := testutil.MakeID()
//	// Returns: "550e8400-e29b-41d4-a716-446655440000"
func MakeID() string {
	return uuid.New().String()
}

// MakeSymbol generates a stock ticker symbol for testing.
//
// Example usage:
//
//	symbol := testutil.MakeSymbol("AAPL")
//	// Returns: "AAPL1A2B"
func MakeSymbol(base string) string {
	if base == "" {
		base = "TEST"
	}
	return base + randomAlphanumeric(4)
}

// MakeName generates a unique display name for testing.
func MakeName(base string) string {
	if base == "" {
		base = "Name"
	}
	return base + " " + randomAlphanumeric(6)
}

// randomAlphanumeric generates a random alphanumeric string of specified length.
func randomAlphanumeric(length int) string {
	const charset = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	result := make([]byte, length)
	for i := range result {
		//nolint:gosec // G404: Using math/rand for test data generation is acceptable
		result[i] = charset[rand.Intn(len(charset))]
	}
	return string(result)
}
