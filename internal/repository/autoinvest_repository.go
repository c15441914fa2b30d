package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/ndewijer/portfolio-dashboard/internal/apperrors"
	"github.com/ndewijer/portfolio-dashboard/internal/model"
)

// AutoInvestRepository provides data access methods for the auto_invest_schedule table.
type AutoInvestRepository struct {
	db *sql.DB
	tx *sql.Tx
}

// NewAutoInvestRepository creates a new AutoInvestRepository with the provided database connection.
func NewAutoInvestRepository(db *sql.DB) *AutoInvestRepository {
	return &AutoInvestRepository{db: db}
}

// WithTx returns a new AutoInvestRepository scoped to the provided transaction.
func (r *AutoInvestRepository) WithTx(tx *sql.Tx) *AutoInvestRepository {
	return &AutoInvestRepository{
		db: r.db,
		tx: tx,
	}
}

func (r *AutoInvestRepository) getQuerier() querier {
	if r.tx != nil {
		return r.tx
	}
	return r.db
}

const scheduleColumns = `id, position_id, frequency, amount, next_due_date, anchor_day, enabled, last_executed_at, created_at`

func scanSchedule(row rowScanner) (model.AutoInvestSchedule, error) {
	var s model.AutoInvestSchedule
	var nextDue, createdAt string
	var lastExecuted sql.NullString

	err := row.Scan(
		&s.ID,
		&s.PositionID,
		&s.Frequency,
		&s.Amount,
		&nextDue,
		&s.AnchorDay,
		&s.Enabled,
		&lastExecuted,
		&createdAt,
	)
	if err != nil {
		return model.AutoInvestSchedule{}, err
	}

	if s.NextDueDate, err = ParseTime(nextDue); err != nil {
		return model.AutoInvestSchedule{}, err
	}
	if s.LastExecutedAt, err = parseNullTime(lastExecuted); err != nil {
		return model.AutoInvestSchedule{}, err
	}
	if s.CreatedAt, err = ParseTime(createdAt); err != nil {
		return model.AutoInvestSchedule{}, err
	}
	return s, nil
}

func (r *AutoInvestRepository) querySchedules(ctx context.Context, query string, args ...any) ([]model.AutoInvestSchedule, error) {
	rows, err := r.getQuerier().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query auto_invest_schedule table: %w", err)
	}
	defer rows.Close()

	schedules := []model.AutoInvestSchedule{}
	for rows.Next() {
		s, err := scanSchedule(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan auto_invest_schedule table results: %w", err)
		}
		schedules = append(schedules, s)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating auto_invest_schedule table: %w", err)
	}
	return schedules, nil
}

// GetSchedules retrieves all schedules ordered by next due date.
func (r *AutoInvestRepository) GetSchedules(ctx context.Context) ([]model.AutoInvestSchedule, error) {
	return r.querySchedules(ctx, `SELECT `+scheduleColumns+` FROM auto_invest_schedule ORDER BY next_due_date ASC, id ASC`)
}

// GetDueSchedules retrieves enabled schedules whose next due date is on or before asOf.
func (r *AutoInvestRepository) GetDueSchedules(ctx context.Context, asOf time.Time) ([]model.AutoInvestSchedule, error) {
	return r.querySchedules(ctx, `
		SELECT `+scheduleColumns+`
		FROM auto_invest_schedule
		WHERE enabled = 1 AND next_due_date <= ?
		ORDER BY next_due_date ASC, id ASC
	`, formatDate(asOf))
}

// GetSchedule retrieves a single schedule by ID.
// Returns ErrScheduleNotFound if no record with the given ID exists.
func (r *AutoInvestRepository) GetSchedule(ctx context.Context, id string) (model.AutoInvestSchedule, error) {
	s, err := scanSchedule(r.getQuerier().QueryRowContext(ctx,
		`SELECT `+scheduleColumns+` FROM auto_invest_schedule WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return model.AutoInvestSchedule{}, apperrors.ErrScheduleNotFound
	}
	if err != nil {
		return model.AutoInvestSchedule{}, fmt.Errorf("failed to query auto_invest_schedule: %w", err)
	}
	return s, nil
}

// InsertSchedule stores a new schedule.
func (r *AutoInvestRepository) InsertSchedule(ctx context.Context, s model.AutoInvestSchedule) error {
	var lastExecuted any
	if s.LastExecutedAt != nil {
		lastExecuted = formatTimestamp(*s.LastExecutedAt)
	}

	_, err := r.getQuerier().ExecContext(ctx, `
		INSERT INTO auto_invest_schedule (`+scheduleColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		s.ID,
		s.PositionID,
		s.Frequency,
		s.Amount,
		formatDate(s.NextDueDate),
		s.AnchorDay,
		s.Enabled,
		lastExecuted,
		formatTimestamp(s.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("failed to insert auto_invest_schedule: %w", err)
	}
	return nil
}

// UpdateSchedule overwrites the mutable fields of a schedule.
// Returns ErrScheduleNotFound if no record with the given ID exists.
func (r *AutoInvestRepository) UpdateSchedule(ctx context.Context, s model.AutoInvestSchedule) error {
	var lastExecuted any
	if s.LastExecutedAt != nil {
		lastExecuted = formatTimestamp(*s.LastExecutedAt)
	}

	result, err := r.getQuerier().ExecContext(ctx, `
		UPDATE auto_invest_schedule
		SET frequency = ?, amount = ?, next_due_date = ?, anchor_day = ?, enabled = ?, last_executed_at = ?
		WHERE id = ?
	`,
		s.Frequency,
		s.Amount,
		formatDate(s.NextDueDate),
		s.AnchorDay,
		s.Enabled,
		lastExecuted,
		s.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update auto_invest_schedule: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return apperrors.ErrScheduleNotFound
	}
	return nil
}

// DeleteSchedule removes a schedule. Transactions it produced keep their data.
// Returns ErrScheduleNotFound if no record with the given ID exists.
func (r *AutoInvestRepository) DeleteSchedule(ctx context.Context, id string) error {
	result, err := r.getQuerier().ExecContext(ctx, `DELETE FROM auto_invest_schedule WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete auto_invest_schedule: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return apperrors.ErrScheduleNotFound
	}
	return nil
}
