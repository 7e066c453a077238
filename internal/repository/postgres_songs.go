package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"sort"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"go.uber.org/zap"

	"github.com/vonm84/qah-app/internal/domain"
)

// PostgresSongsRepository 曲目 Repository（parts 以 JSONB 存储，保持顺序）
type PostgresSongsRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

func NewPostgresSongsRepository(db *sql.DB, logger *zap.Logger) *PostgresSongsRepository {
	return &PostgresSongsRepository{db: db, logger: logger}
}

var _ SongsRepository = (*PostgresSongsRepository)(nil)

func scanSong(row rowScanner) (domain.Song, error) {
	var (
		s     domain.Song
		parts []byte
	)
	if err := row.Scan(&s.ID, &s.Name, &parts); err != nil {
		return domain.Song{}, err
	}
	s.Parts = []domain.Part{}
	if len(parts) > 0 {
		if err := json.Unmarshal(parts, &s.Parts); err != nil {
			return domain.Song{}, fmt.Errorf("failed to decode parts of song %s: %w", s.ID, err)
		}
	}
	return s, nil
}

func (r *PostgresSongsRepository) GetSong(ctx context.Context, id string) (*domain.Song, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, fmt.Errorf("song %q: %w", id, domain.ErrNotFound)
	}
	s, err := scanSong(r.db.QueryRowContext(ctx,
		`SELECT id::text, name, parts FROM songs WHERE id = $1::uuid`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("song %q: %w", id, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get song: %w", err)
	}
	return &s, nil
}

func (r *PostgresSongsRepository) ListSongs(ctx context.Context) ([]domain.Song, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id::text, name, parts FROM songs ORDER BY name, id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query songs: %w", err)
	}
	defer rows.Close()

	var out []domain.Song
	for rows.Next() {
		s, err := scanSong(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan song: %w", err)
		}
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate songs: %w", err)
	}
	return out, nil
}

// SyncSongs 按曲名同步：同名保留 id（及其声部分配），新名插入，缺失的删除（级联）
func (r *PostgresSongsRepository) SyncSongs(ctx context.Context, songs []domain.Song) ([]domain.Song, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	rows, err := tx.QueryContext(ctx, `SELECT id::text, name FROM songs FOR UPDATE`)
	if err != nil {
		return nil, fmt.Errorf("failed to lock songs: %w", err)
	}
	existing := map[string]string{} // name -> id
	for rows.Next() {
		var id, name string
		if err := rows.Scan(&id, &name); err != nil {
			rows.Close()
			return nil, fmt.Errorf("failed to scan song: %w", err)
		}
		existing[name] = id
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate songs: %w", err)
	}

	result := make([]domain.Song, 0, len(songs))
	var inserted, updated int
	for _, s := range songs {
		parts, err := json.Marshal(partsOrEmpty(s.Parts))
		if err != nil {
			return nil, fmt.Errorf("failed to encode parts: %w", err)
		}
		if id, ok := existing[s.Name]; ok {
			if _, err := tx.ExecContext(ctx,
				`UPDATE songs SET parts = $2::jsonb WHERE id = $1::uuid`, id, string(parts)); err != nil {
				return nil, fmt.Errorf("failed to update song %q: %w", s.Name, err)
			}
			delete(existing, s.Name)
			s.ID = id
			updated++
		} else {
			s.ID = uuid.NewString()
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO songs (id, name, parts) VALUES ($1::uuid, $2, $3::jsonb)`, s.ID, s.Name, string(parts)); err != nil {
				return nil, fmt.Errorf("failed to insert song %q: %w", s.Name, err)
			}
			inserted++
		}
		s.Parts = partsOrEmpty(s.Parts)
		result = append(result, s)
	}

	if len(existing) > 0 {
		stale := make([]string, 0, len(existing))
		for _, id := range existing {
			stale = append(stale, id)
		}
		sort.Strings(stale)
		if _, err := tx.ExecContext(ctx, `DELETE FROM songs WHERE id = ANY($1::uuid[])`, pq.Array(stale)); err != nil {
			return nil, fmt.Errorf("failed to delete removed songs: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit song sync: %w", err)
	}

	r.logger.Info("Synchronised songs",
		zap.Int("inserted", inserted),
		zap.Int("updated", updated),
		zap.Int("deleted", len(existing)),
	)
	sortSongs(result)
	return result, nil
}

func (r *PostgresSongsRepository) DeleteSong(ctx context.Context, id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return fmt.Errorf("song %q: %w", id, domain.ErrNotFound)
	}
	res, err := r.db.ExecContext(ctx, `DELETE FROM songs WHERE id = $1::uuid`, id)
	if err != nil {
		return fmt.Errorf("failed to delete song: %w", err)
	}
	return requireOneRow(res, fmt.Sprintf("song %q", id))
}

func partsOrEmpty(p []domain.Part) []domain.Part {
	if p == nil {
		return []domain.Part{}
	}
	return p
}

func sortSongs(songs []domain.Song) {
	sort.SliceStable(songs, func(i, j int) bool {
		if songs[i].Name != songs[j].Name {
			return songs[i].Name < songs[j].Name
		}
		return songs[i].ID < songs[j].ID
	})
}
