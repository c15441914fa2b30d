package apperrors

import "errors"

// Domain entity errors represent missing or invalid entities in the system.
// These errors indicate that a requested resource does not exist.
var (
	// ErrPositionNotFound indicates that a position with the given ID does not exist.
	ErrPositionNotFound = errors.New("position not found")

	// ErrTransactionNotFound indicates that a transaction with the given ID does not exist.
	ErrTransactionNotFound = errors.New("transaction not found")

	// ErrScheduleNotFound indicates that an auto-invest schedule with the given ID does not exist.
	ErrScheduleNotFound = errors.New("auto-invest schedule not found")

	// ErrReportNotFound indicates that no weekly report matches the request.
	ErrReportNotFound = errors.New("weekly report not found")

	// ErrInsightNotFound indicates that no AI insight matches the request.
	ErrInsightNotFound = errors.New("insight not found")

	// ErrWatchlistItemNotFound indicates that a watchlist entry with the given ID does not exist.
	ErrWatchlistItemNotFound = errors.New("watchlist item not found")

	// ErrSymbolNotFound indicates that a symbol lookup returned no results
	ErrSymbolNotFound = errors.New("symbol not found")

	// ErrExchangeRateNotFound indicates no rate is known for a currency pair.
	ErrExchangeRateNotFound = errors.New("exchange rate not found")
)

// Business logic errors represent validation failures or constraint violations.
// These errors indicate that an operation cannot be completed due to business rules.
var (
	// ErrInsufficientShares indicates that a sell transaction cannot be completed
	// because the position does not hold enough shares.
	ErrInsufficientShares = errors.New("insufficient shares for sale")

	// ErrInvalidDateRange indicates that the provided date range is invalid
	// (e.g., start date is after end date).
	ErrInvalidDateRange = errors.New("invalid date range")

	// ErrInvalidUUID indicates that a provided ID is not a valid UUID format.
	ErrInvalidUUID = errors.New("invalid UUID format")

	// ErrDuplicateEntry indicates that an entity with the same unique constraint already exists.
	ErrDuplicateEntry = errors.New("duplicate entry")

	// ErrUnsupportedCurrency indicates a currency with no known exchange rate.
	ErrUnsupportedCurrency = errors.New("unsupported currency")

	// ErrUnknownTransactionType indicates a ledger entry with a type the ledger cannot apply.
	ErrUnknownTransactionType = errors.New("unknown transaction type")

	// ErrScheduleDisabled indicates an execution request for a disabled schedule.
	ErrScheduleDisabled = errors.New("auto-invest schedule is disabled")

	// ErrNoPriceData indicates that no usable price history was returned for a symbol.
	ErrNoPriceData = errors.New("no price data available")

	// ErrAdvisorUnavailable indicates that no AI API key is configured.
	ErrAdvisorUnavailable = errors.New("ai advisor is not configured")

	// Validation errors for required parameters
	ErrInvalidSymbol   = errors.New("symbol parameter is required")
	ErrInvalidCurrency = errors.New("currency parameter is required")
	ErrInvalidDate     = errors.New("date parameter is required")
	ErrInvalidAmount   = errors.New("amount parameter is required")
)

// Operation failure errors represent system-level failures when retrieving or processing data.
// These errors indicate that an operation failed, but not due to missing entities or validation issues.
var (
	ErrFailedToRetrievePositions    = errors.New("failed to retrieve positions")
	ErrFailedToRetrievePosition     = errors.New("failed to retrieve position")
	ErrFailedToCreatePosition       = errors.New("failed to create position")
	ErrFailedToDeletePosition       = errors.New("failed to delete position")
	ErrFailedToRetrieveTransactions = errors.New("failed to retrieve transactions")
	ErrFailedToRetrieveTransaction  = errors.New("failed to retrieve transaction")
	ErrFailedToCreateTransaction    = errors.New("failed to create transaction")
	ErrFailedToGetPortfolioSummary  = errors.New("failed to get portfolio summary")
	ErrFailedToAnalyzePortfolio     = errors.New("failed to analyze portfolio")
	ErrFailedToRunBacktest          = errors.New("failed to run backtest")
	ErrFailedToRetrieveExchangeRate = errors.New("failed to retrieve exchange rate")
	ErrFailedToRetrieveQuote        = errors.New("failed to retrieve quote")
	ErrFailedToRetrieveSchedules    = errors.New("failed to retrieve auto-invest schedules")
	ErrFailedToSaveSchedule         = errors.New("failed to save auto-invest schedule")
	ErrFailedToExecuteSchedule      = errors.New("failed to execute auto-invest schedule")
	ErrFailedToRetrieveReports      = errors.New("failed to retrieve weekly reports")
	ErrFailedToGenerateReport       = errors.New("failed to generate weekly report")
	ErrFailedToRetrieveInsights     = errors.New("failed to retrieve insights")
	ErrFailedToGenerateInsight      = errors.New("failed to generate insight")
	ErrFailedToRetrieveWatchlist    = errors.New("failed to retrieve watchlist")
	ErrFailedToUpdateWatchlist      = errors.New("failed to update watchlist")
	ErrFailedToRetrieveSettings     = errors.New("failed to retrieve settings")
	ErrFailedToUpdateSettings       = errors.New("failed to update settings")
	ErrFailedToGetVersionInfo       = errors.New("failed to get version information")
)

// Data integrity errors represent inconsistencies or corruption in the data.
var (
	// ErrDataInconsistency indicates that the data is in an inconsistent state
	// (e.g., a transaction references a position that no longer exists).
	ErrDataInconsistency = errors.New("data inconsistency detected")
)
