package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/vonm84/qah-app/internal/domain"
)

// PostgresMembersRepository 成员 Repository
type PostgresMembersRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

func NewPostgresMembersRepository(db *sql.DB, logger *zap.Logger) *PostgresMembersRepository {
	return &PostgresMembersRepository{db: db, logger: logger}
}

var _ MembersRepository = (*PostgresMembersRepository)(nil)

const memberColumns = `name, language, pronouns_en, pronouns_pt, birthday_day, birthday_month`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanMember(row rowScanner) (domain.Member, error) {
	var (
		m          domain.Member
		lang       string
		day, month sql.NullInt32
	)
	if err := row.Scan(&m.Name, &lang, &m.PronounsEn, &m.PronounsPt, &day, &month); err != nil {
		return domain.Member{}, err
	}
	m.Language = domain.Language(lang)
	m.BirthdayDay = nullIntPtr(day)
	m.BirthdayMonth = nullIntPtr(month)
	return m, nil
}

func (r *PostgresMembersRepository) GetMember(ctx context.Context, name string) (*domain.Member, error) {
	m, err := scanMember(r.db.QueryRowContext(ctx,
		`SELECT `+memberColumns+` FROM members WHERE name = $1`, name))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("member %q: %w", name, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get member: %w", err)
	}
	return &m, nil
}

func (r *PostgresMembersRepository) ListMembers(ctx context.Context) ([]domain.Member, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+memberColumns+` FROM members ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("failed to query members: %w", err)
	}
	defer rows.Close()

	var out []domain.Member
	for rows.Next() {
		m, err := scanMember(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan member: %w", err)
		}
		out = append(out, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate members: %w", err)
	}
	return out, nil
}

func (r *PostgresMembersRepository) CreateMember(ctx context.Context, m *domain.Member) (bool, error) {
	res, err := r.db.ExecContext(ctx, `
		INSERT INTO members (`+memberColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (name) DO NOTHING
	`, m.Name, string(m.Language), m.PronounsEn, m.PronounsPt, intArg(m.BirthdayDay), intArg(m.BirthdayMonth))
	if err != nil {
		return false, fmt.Errorf("failed to create member: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read affected rows: %w", err)
	}
	return n == 1, nil
}

func (r *PostgresMembersRepository) UpdateMember(ctx context.Context, m *domain.Member) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE members
		SET language = $2, pronouns_en = $3, pronouns_pt = $4, birthday_day = $5, birthday_month = $6
		WHERE name = $1
	`, m.Name, string(m.Language), m.PronounsEn, m.PronounsPt, intArg(m.BirthdayDay), intArg(m.BirthdayMonth))
	if err != nil {
		return fmt.Errorf("failed to update member: %w", err)
	}
	return requireOneRow(res, fmt.Sprintf("member %q", m.Name))
}

// DeleteMember 删除成员；attendance / part_assignments 由外键 ON DELETE CASCADE 级联删除
func (r *PostgresMembersRepository) DeleteMember(ctx context.Context, name string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM members WHERE name = $1`, name)
	if err != nil {
		return fmt.Errorf("failed to delete member: %w", err)
	}
	return requireOneRow(res, fmt.Sprintf("member %q", name))
}
