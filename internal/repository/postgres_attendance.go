package repository

import (
	"context"
	"database/sql"
	"fmt"

	"go.uber.org/zap"

	"github.com/vonm84/qah-app/internal/domain"
)

// PostgresAttendanceRepository 出勤 Repository
type PostgresAttendanceRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

func NewPostgresAttendanceRepository(db *sql.DB, logger *zap.Logger) *PostgresAttendanceRepository {
	return &PostgresAttendanceRepository{db: db, logger: logger}
}

var _ AttendanceRepository = (*PostgresAttendanceRepository)(nil)

func (r *PostgresAttendanceRepository) UpsertAttendance(ctx context.Context, a *domain.Attendance) error {
	err := r.db.QueryRowContext(ctx, `
		INSERT INTO attendance (member_name, date, status, comment, updated_at)
		VALUES ($1, $2::date, $3, $4, now())
		ON CONFLICT (member_name, date) DO UPDATE
		SET status = EXCLUDED.status,
		    comment = EXCLUDED.comment,
		    updated_at = EXCLUDED.updated_at
		RETURNING updated_at
	`, a.MemberName, a.Date, string(a.Status), stringArg(a.Comment)).Scan(&a.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to upsert attendance: %w", err)
	}
	return nil
}

func (r *PostgresAttendanceRepository) ListAttendance(ctx context.Context, filter AttendanceFilter) ([]domain.Attendance, error) {
	var where whereBuilder
	if filter.MemberName != "" {
		where.add("member_name = $%d", filter.MemberName)
	}
	if !filter.From.IsZero() {
		where.add("date >= $%d::date", filter.From)
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT member_name, date, status, comment, updated_at
		FROM attendance `+where.String()+`
		ORDER BY date, member_name`, where.args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query attendance: %w", err)
	}
	defer rows.Close()

	var out []domain.Attendance
	for rows.Next() {
		var (
			a       domain.Attendance
			status  string
			comment sql.NullString
		)
		if err := rows.Scan(&a.MemberName, &a.Date, &status, &comment, &a.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan attendance: %w", err)
		}
		a.Status = domain.AttendanceStatus(status)
		a.Comment = nullStringPtr(comment)
		out = append(out, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate attendance: %w", err)
	}
	return out, nil
}
