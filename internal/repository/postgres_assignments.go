package repository

import (
	"context"
	"database/sql"
	"fmt"

	"go.uber.org/zap"

	"github.com/vonm84/qah-app/internal/domain"
)

// PostgresAssignmentsRepository 声部分配 Repository
type PostgresAssignmentsRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

func NewPostgresAssignmentsRepository(db *sql.DB, logger *zap.Logger) *PostgresAssignmentsRepository {
	return &PostgresAssignmentsRepository{db: db, logger: logger}
}

var _ AssignmentsRepository = (*PostgresAssignmentsRepository)(nil)

func (r *PostgresAssignmentsRepository) UpsertAssignment(ctx context.Context, a *domain.PartAssignment) error {
	var level *int
	if a.ReadinessLevel != nil {
		v := int(*a.ReadinessLevel)
		level = &v
	}
	err := r.db.QueryRowContext(ctx, `
		INSERT INTO part_assignments (member_name, song_id, part, readiness_level, comments, updated_at)
		VALUES ($1, $2::uuid, $3, $4, $5, now())
		ON CONFLICT (member_name, song_id) DO UPDATE
		SET part = EXCLUDED.part,
		    readiness_level = EXCLUDED.readiness_level,
		    comments = EXCLUDED.comments,
		    updated_at = EXCLUDED.updated_at
		RETURNING updated_at
	`, a.MemberName, a.SongID, stringArg(a.Part), intArg(level), stringArg(a.Comment)).Scan(&a.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to upsert part assignment: %w", err)
	}
	return nil
}

func (r *PostgresAssignmentsRepository) ListAssignments(ctx context.Context, filter AssignmentFilter) ([]domain.PartAssignment, error) {
	var where whereBuilder
	if filter.MemberName != "" {
		where.add("member_name = $%d", filter.MemberName)
	}
	if filter.SongID != "" {
		where.add("song_id = $%d::uuid", filter.SongID)
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT member_name, song_id::text, part, readiness_level, comments, updated_at
		FROM part_assignments `+where.String()+`
		ORDER BY song_id, member_name`, where.args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query part assignments: %w", err)
	}
	defer rows.Close()

	var out []domain.PartAssignment
	for rows.Next() {
		var (
			a             domain.PartAssignment
			part, comment sql.NullString
			level         sql.NullInt32
		)
		if err := rows.Scan(&a.MemberName, &a.SongID, &part, &level, &comment, &a.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan part assignment: %w", err)
		}
		a.Part = nullStringPtr(part)
		a.Comment = nullStringPtr(comment)
		if level.Valid {
			l := domain.ReadinessLevel(level.Int32)
			a.ReadinessLevel = &l
		}
		out = append(out, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate part assignments: %w", err)
	}
	return out, nil
}
