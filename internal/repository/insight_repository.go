package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/ndewijer/portfolio-dashboard/internal/apperrors"
	"github.com/ndewijer/portfolio-dashboard/internal/model"
)

// InsightRepository provides data access methods for the ai_insight table.
type InsightRepository struct {
	db *sql.DB
}

// NewInsightRepository creates a new InsightRepository with the provided database connection.
func NewInsightRepository(db *sql.DB) *InsightRepository {
	return &InsightRepository{db: db}
}

const insightColumns = `id, kind, question, content, html, model, created_at`

func scanInsight(row rowScanner) (model.AIInsight, error) {
	var i model.AIInsight
	var createdAt string

	err := row.Scan(&i.ID, &i.Kind, &i.Question, &i.Content, &i.HTML, &i.Model, &createdAt)
	if err != nil {
		return model.AIInsight{}, err
	}
	if i.CreatedAt, err = ParseTime(createdAt); err != nil {
		return model.AIInsight{}, err
	}
	return i, nil
}

// GetInsights retrieves insights newest first, optionally filtered by kind.
func (r *InsightRepository) GetInsights(ctx context.Context, kind string, limit int) ([]model.AIInsight, error) {
	query := `SELECT ` + insightColumns + ` FROM ai_insight WHERE 1=1`
	var args []any
	if kind != "" {
		query += " AND kind = ?"
		args = append(args, kind)
	}
	query += " ORDER BY created_at DESC"
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query ai_insight table: %w", err)
	}
	defer rows.Close()

	insights := []model.AIInsight{}
	for rows.Next() {
		i, err := scanInsight(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan ai_insight table results: %w", err)
		}
		insights = append(insights, i)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating ai_insight table: %w", err)
	}
	return insights, nil
}

// GetLatestInsight retrieves the most recent insight.
// Returns ErrInsightNotFound when none has been generated yet.
func (r *InsightRepository) GetLatestInsight(ctx context.Context) (model.AIInsight, error) {
	i, err := scanInsight(r.db.QueryRowContext(ctx,
		`SELECT `+insightColumns+` FROM ai_insight ORDER BY created_at DESC LIMIT 1`))
	if errors.Is(err, sql.ErrNoRows) {
		return model.AIInsight{}, apperrors.ErrInsightNotFound
	}
	if err != nil {
		return model.AIInsight{}, fmt.Errorf("failed to query ai_insight: %w", err)
	}
	return i, nil
}

// InsertInsight stores a generated insight.
func (r *InsightRepository) InsertInsight(ctx context.Context, i model.AIInsight) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO ai_insight (`+insightColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`,
		i.ID,
		i.Kind,
		i.Question,
		i.Content,
		i.HTML,
		i.Model,
		formatTimestamp(i.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("failed to insert ai_insight: %w", err)
	}
	return nil
}
