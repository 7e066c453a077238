package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"
	"go.uber.org/zap"

	"github.com/vonm84/qah-app/internal/domain"
)

// PostgresDatesRepository 排练日期 Repository（rehearsal_dates 表）
type PostgresDatesRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

func NewPostgresDatesRepository(db *sql.DB, logger *zap.Logger) *PostgresDatesRepository {
	return &PostgresDatesRepository{db: db, logger: logger}
}

var _ DatesRepository = (*PostgresDatesRepository)(nil)

func (r *PostgresDatesRepository) ListDates(ctx context.Context) ([]domain.RehearsalDate, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT date, enabled FROM rehearsal_dates ORDER BY date`)
	if err != nil {
		return nil, fmt.Errorf("failed to query rehearsal dates: %w", err)
	}
	defer rows.Close()

	var out []domain.RehearsalDate
	for rows.Next() {
		var d domain.RehearsalDate
		if err := rows.Scan(&d.Date, &d.Enabled); err != nil {
			return nil, fmt.Errorf("failed to scan rehearsal date: %w", err)
		}
		out = append(out, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate rehearsal dates: %w", err)
	}
	return out, nil
}

func (r *PostgresDatesRepository) GetDate(ctx context.Context, date domain.Date) (*domain.RehearsalDate, error) {
	var d domain.RehearsalDate
	err := r.db.QueryRowContext(ctx,
		`SELECT date, enabled FROM rehearsal_dates WHERE date = $1::date`, date,
	).Scan(&d.Date, &d.Enabled)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("rehearsal date %s: %w", date, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get rehearsal date: %w", err)
	}
	return &d, nil
}

// InsertDatesIfAbsent 批量插入，已存在的日期保持原样（ON CONFLICT DO NOTHING）
func (r *PostgresDatesRepository) InsertDatesIfAbsent(ctx context.Context, dates []domain.Date) error {
	if len(dates) == 0 {
		return nil
	}
	values := make([]string, len(dates))
	for i, d := range dates {
		values[i] = d.String()
	}

	res, err := r.db.ExecContext(ctx, `
		INSERT INTO rehearsal_dates (date, enabled)
		SELECT d::date, TRUE FROM unnest($1::text[]) AS d
		ON CONFLICT (date) DO NOTHING
	`, pq.Array(values))
	if err != nil {
		return fmt.Errorf("failed to insert rehearsal dates: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n > 0 {
		r.logger.Info("Created rehearsal dates", zap.Int64("date_count", n))
	}
	return nil
}

func (r *PostgresDatesRepository) SetDateEnabled(ctx context.Context, date domain.Date, enabled bool) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE rehearsal_dates SET enabled = $2 WHERE date = $1::date`, date, enabled)
	if err != nil {
		return fmt.Errorf("failed to update rehearsal date: %w", err)
	}
	return requireOneRow(res, "rehearsal date "+date.String())
}
