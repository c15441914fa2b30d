package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/ndewijer/portfolio-dashboard/internal/apperrors"
	"github.com/ndewijer/portfolio-dashboard/internal/model"
)

// ReportRepository provides data access methods for the weekly_report table.
// The numeric body of a report is stored as a JSON document in the data column.
type ReportRepository struct {
	db *sql.DB
}

// NewReportRepository creates a new ReportRepository with the provided database connection.
func NewReportRepository(db *sql.DB) *ReportRepository {
	return &ReportRepository{db: db}
}

const reportColumns = `id, week_start, week_end, base_currency, data, summary, created_at`

func scanReport(row rowScanner) (model.WeeklyReport, error) {
	var id, weekStart, weekEnd, baseCurrency, data, summary, createdAt string

	err := row.Scan(&id, &weekStart, &weekEnd, &baseCurrency, &data, &summary, &createdAt)
	if err != nil {
		return model.WeeklyReport{}, err
	}

	var report model.WeeklyReport
	if err := json.Unmarshal([]byte(data), &report); err != nil {
		return model.WeeklyReport{}, fmt.Errorf("failed to decode report data: %w", err)
	}

	report.ID = id
	report.BaseCurrency = baseCurrency
	report.Summary = summary
	if report.WeekStart, err = ParseTime(weekStart); err != nil {
		return model.WeeklyReport{}, err
	}
	if report.WeekEnd, err = ParseTime(weekEnd); err != nil {
		return model.WeeklyReport{}, err
	}
	if report.CreatedAt, err = ParseTime(createdAt); err != nil {
		return model.WeeklyReport{}, err
	}
	return report, nil
}

// GetReports retrieves weekly reports, newest week first.
// A limit of zero or less returns every report.
func (r *ReportRepository) GetReports(ctx context.Context, limit int) ([]model.WeeklyReport, error) {
	query := `SELECT ` + reportColumns + ` FROM weekly_report ORDER BY week_start DESC`
	var args []any
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query weekly_report table: %w", err)
	}
	defer rows.Close()

	reports := []model.WeeklyReport{}
	for rows.Next() {
		report, err := scanReport(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan weekly_report table results: %w", err)
		}
		reports = append(reports, report)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating weekly_report table: %w", err)
	}
	return reports, nil
}

// GetReport retrieves a single report by ID.
// Returns ErrReportNotFound if no record with the given ID exists.
func (r *ReportRepository) GetReport(ctx context.Context, id string) (model.WeeklyReport, error) {
	report, err := scanReport(r.db.QueryRowContext(ctx,
		`SELECT `+reportColumns+` FROM weekly_report WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return model.WeeklyReport{}, apperrors.ErrReportNotFound
	}
	if err != nil {
		return model.WeeklyReport{}, fmt.Errorf("failed to query weekly_report: %w", err)
	}
	return report, nil
}

// GetLatestReport retrieves the report of the most recent week.
// Returns ErrReportNotFound when no report has been generated yet.
func (r *ReportRepository) GetLatestReport(ctx context.Context) (model.WeeklyReport, error) {
	report, err := scanReport(r.db.QueryRowContext(ctx,
		`SELECT `+reportColumns+` FROM weekly_report ORDER BY week_start DESC LIMIT 1`))
	if errors.Is(err, sql.ErrNoRows) {
		return model.WeeklyReport{}, apperrors.ErrReportNotFound
	}
	if err != nil {
		return model.WeeklyReport{}, fmt.Errorf("failed to query weekly_report: %w", err)
	}
	return report, nil
}

// UpsertReport stores a report, replacing any earlier report for the same week.
func (r *ReportRepository) UpsertReport(ctx context.Context, report model.WeeklyReport) error {
	data, err := json.Marshal(report)
	if err != nil {
		return fmt.Errorf("failed to encode report data: %w", err)
	}

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO weekly_report (`+reportColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(week_start) DO UPDATE SET
			id = excluded.id,
			week_end = excluded.week_end,
			base_currency = excluded.base_currency,
			data = excluded.data,
			summary = excluded.summary,
			created_at = excluded.created_at
	`,
		report.ID,
		formatDate(report.WeekStart),
		formatDate(report.WeekEnd),
		report.BaseCurrency,
		string(data),
		report.Summary,
		formatTimestamp(report.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("failed to upsert weekly_report: %w", err)
	}
	return nil
}
