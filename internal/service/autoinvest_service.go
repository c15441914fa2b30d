package service

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/phuslu/log"
	"github.com/shopspring/decimal"

	"github.com/ndewijer/portfolio-dashboard/internal/analytics"
	"github.com/ndewijer/portfolio-dashboard/internal/api/request"
	"github.com/ndewijer/portfolio-dashboard/internal/apperrors"
	"github.com/ndewijer/portfolio-dashboard/internal/fx"
	"github.com/ndewijer/portfolio-dashboard/internal/marketdata"
	"github.com/ndewijer/portfolio-dashboard/internal/model"
	"github.com/ndewijer/portfolio-dashboard/internal/repository"
)

// autoInvestSharePlaces is the precision of shares bought by a schedule.
const autoInvestSharePlaces = 6

// AutoInvestService manages recurring purchases and executes them.
type AutoInvestService struct {
	db           *sql.DB
	scheduleRepo *repository.AutoInvestRepository
	positionRepo *repository.PositionRepository
	writer       *ledgerWriter
	market       marketdata.Client
	converter    *fx.Converter
}

// NewAutoInvestService creates a new AutoInvestService.
func NewAutoInvestService(
	db *sql.DB,
	scheduleRepo *repository.AutoInvestRepository,
	positionRepo *repository.PositionRepository,
	transactionRepo *repository.TransactionRepository,
	market marketdata.Client,
	converter *fx.Converter,
) *AutoInvestService {
	return &AutoInvestService{
		db:           db,
		scheduleRepo: scheduleRepo,
		positionRepo: positionRepo,
		writer: &ledgerWriter{
			db:              db,
			positionRepo:    positionRepo,
			transactionRepo: transactionRepo,
		},
		market:    market,
		converter: converter,
	}
}

// GetSchedules returns all schedules ordered by next due date.
func (s *AutoInvestService) GetSchedules(ctx context.Context) ([]model.AutoInvestSchedule, error) {
	return s.scheduleRepo.GetSchedules(ctx)
}

// GetSchedule retrieves one schedule by ID.
func (s *AutoInvestService) GetSchedule(ctx context.Context, id string) (model.AutoInvestSchedule, error) {
	return s.scheduleRepo.GetSchedule(ctx, id)
}

// CreateSchedule adds a schedule for an existing position. Schedules are
// enabled unless the request says otherwise.
func (s *AutoInvestService) CreateSchedule(ctx context.Context, req request.CreateScheduleRequest) (*model.AutoInvestSchedule, error) {
	nextDue, err := time.Parse("2006-01-02", req.NextDueDate)
	if err != nil {
		return nil, err
	}
	if _, err := s.positionRepo.GetPosition(ctx, req.PositionID); err != nil {
		return nil, err
	}

	schedule := &model.AutoInvestSchedule{
		ID:          uuid.New().String(),
		PositionID:  req.PositionID,
		Frequency:   req.Frequency,
		Amount:      req.Amount,
		NextDueDate: nextDue,
		AnchorDay:   nextDue.Day(),
		Enabled:     req.Enabled == nil || *req.Enabled,
		CreatedAt:   time.Now().UTC(),
	}
	if err := s.scheduleRepo.InsertSchedule(ctx, *schedule); err != nil {
		return nil, fmt.Errorf("failed to create schedule: %w", err)
	}
	return schedule, nil
}

// UpdateSchedule applies the non-nil fields of req.
func (s *AutoInvestService) UpdateSchedule(ctx context.Context, id string, req request.UpdateScheduleRequest) (*model.AutoInvestSchedule, error) {
	schedule, err := s.scheduleRepo.GetSchedule(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Frequency != nil {
		schedule.Frequency = *req.Frequency
	}
	if req.Amount != nil {
		schedule.Amount = *req.Amount
	}
	if req.NextDueDate != nil {
		nextDue, err := time.Parse("2006-01-02", *req.NextDueDate)
		if err != nil {
			return nil, err
		}
		schedule.NextDueDate = nextDue
		schedule.AnchorDay = nextDue.Day()
	}
	if req.Enabled != nil {
		schedule.Enabled = *req.Enabled
	}

	if err := s.scheduleRepo.UpdateSchedule(ctx, schedule); err != nil {
		return nil, err
	}
	return &schedule, nil
}

// DeleteSchedule removes a schedule. Transactions it created are kept.
func (s *AutoInvestService) DeleteSchedule(ctx context.Context, id string) error {
	return s.scheduleRepo.DeleteSchedule(ctx, id)
}

// Execute runs one schedule immediately, whether or not it is due.
// Returns ErrScheduleDisabled for a disabled schedule.
func (s *AutoInvestService) Execute(ctx context.Context, id string, asOf time.Time) (model.AutoInvestExecution, error) {
	schedule, err := s.scheduleRepo.GetSchedule(ctx, id)
	if err != nil {
		return model.AutoInvestExecution{}, err
	}
	if !schedule.Enabled {
		return model.AutoInvestExecution{}, apperrors.ErrScheduleDisabled
	}
	return s.execute(ctx, schedule, asOf)
}

// RunDue executes every enabled schedule due on or before asOf. A failing
// schedule is logged and reported and does not stop the others; it stays
// due and is retried on the next run.
func (s *AutoInvestService) RunDue(ctx context.Context, asOf time.Time) (model.AutoInvestRunResult, error) {
	due, err := s.scheduleRepo.GetDueSchedules(ctx, analytics.Truncate(asOf))
	if err != nil {
		return model.AutoInvestRunResult{}, err
	}

	result := model.AutoInvestRunResult{
		AsOf:       asOf,
		Executions: []model.AutoInvestExecution{},
	}
	for _, schedule := range due {
		exec, err := s.execute(ctx, schedule, asOf)
		if err != nil {
			log.Error().Err(err).Str("schedule_id", schedule.ID).Str("position_id", schedule.PositionID).Msg("auto-invest execution failed")
			exec = model.AutoInvestExecution{
				ScheduleID:  schedule.ID,
				PositionID:  schedule.PositionID,
				NextDueDate: schedule.NextDueDate,
				Error:       err.Error(),
			}
			result.Failed++
		} else {
			result.Executed++
		}
		result.Executions = append(result.Executions, exec)
	}

	log.Info().Int("executed", result.Executed).Int("failed", result.Failed).Msg("auto-invest run finished")
	return result, nil
}

// execute buys schedule.Amount worth of the position at the latest quote,
// rebuilds the position and advances the schedule in one transaction.
func (s *AutoInvestService) execute(ctx context.Context, schedule model.AutoInvestSchedule, asOf time.Time) (model.AutoInvestExecution, error) {
	position, err := s.positionRepo.GetPosition(ctx, schedule.PositionID)
	if err != nil {
		return model.AutoInvestExecution{}, err
	}

	quote, err := s.market.Quote(ctx, marketdata.Ticker(position.Symbol, position.Market))
	if err != nil {
		return model.AutoInvestExecution{}, fmt.Errorf("%w: %w", apperrors.ErrFailedToRetrieveQuote, err)
	}
	if quote.Price <= 0 {
		return model.AutoInvestExecution{}, fmt.Errorf("%w: %s", apperrors.ErrNoPriceData, position.Symbol)
	}

	currency := strings.ToUpper(quote.Currency)
	if currency == "" {
		currency = position.Currency
	}
	rate := 1.0
	if currency != position.Currency {
		r, err := s.converter.Rate(ctx, currency, position.Currency)
		if err != nil {
			return model.AutoInvestExecution{}, err
		}
		rate = r.Rate
	}

	shares, err := sharesFor(schedule.Amount, quote.Price*rate)
	if err != nil {
		return model.AutoInvestExecution{}, err
	}

	next, err := advance(schedule.NextDueDate, schedule.Frequency, schedule.AnchorDay, asOf)
	if err != nil {
		return model.AutoInvestExecution{}, err
	}

	now := time.Now().UTC()
	transaction := model.Transaction{
		ID:             uuid.New().String(),
		PositionID:     position.ID,
		Type:           model.TransactionTypeBuy,
		Date:           analytics.Truncate(asOf),
		Shares:         shares,
		Price:          quote.Price,
		Currency:       currency,
		ExchangeRate:   rate,
		PurchaseMethod: model.PurchaseMethodAuto,
		AutoInvestID:   schedule.ID,
		CreatedAt:      now,
	}

	schedule.LastExecutedAt = &now
	schedule.NextDueDate = next

	err = inTx(ctx, s.db, func(tx *sql.Tx) error {
		if _, err := s.writer.rebuild(ctx, tx, position.ID, transaction); err != nil {
			return err
		}
		return s.scheduleRepo.WithTx(tx).UpdateSchedule(ctx, schedule)
	})
	if err != nil {
		return model.AutoInvestExecution{}, err
	}

	log.Info().Str("schedule_id", schedule.ID).Str("symbol", position.Symbol).Float64("shares", shares).Msg("auto-invest executed")

	return model.AutoInvestExecution{
		ScheduleID:    schedule.ID,
		PositionID:    position.ID,
		Symbol:        position.Symbol,
		Transaction:   &transaction,
		NextDueDate:   next,
		ExecutedPrice: quote.Price,
	}, nil
}

// sharesFor returns amount / unitPrice rounded down to six decimal places.
func sharesFor(amount, unitPrice float64) (float64, error) {
	shares := decimal.NewFromFloat(amount).Div(decimal.NewFromFloat(unitPrice)).RoundDown(autoInvestSharePlaces)
	if !shares.IsPositive() {
		return 0, fmt.Errorf("%w: %.2f buys no shares at %.4f", apperrors.ErrInvalidAmount, amount, unitPrice)
	}
	return shares.InexactFloat64(), nil
}

// advance steps due by at least one period and then until it lies after the
// calendar day of asOf. Missed periods are skipped, not back-filled. Monthly
// steps land on anchor, or on the day of due when anchor is unset.
func advance(due time.Time, frequency string, anchor int, asOf time.Time) (time.Time, error) {
	if anchor <= 0 {
		anchor = due.Day()
	}
	today := analytics.Truncate(asOf)

	next, err := analytics.NextDate(due, frequency, anchor)
	if err != nil {
		return time.Time{}, err
	}
	for !next.After(today) {
		if next, err = analytics.NextDate(next, frequency, anchor); err != nil {
			return time.Time{}, err
		}
	}
	return next, nil
}
