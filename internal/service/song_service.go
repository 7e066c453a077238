package service

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/vonm84/qah-app/internal/domain"
	"github.com/vonm84/qah-app/internal/events"
	"github.com/vonm84/qah-app/internal/repository"
	"github.com/vonm84/qah-app/internal/songcsv"
)

// SongService 曲目服务接口
type SongService interface {
	List(ctx context.Context) ([]domain.Song, error)
	Get(ctx context.Context, id string) (*domain.Song, error)
	// Export renders every song in the CSV interchange format.
	Export(ctx context.Context) (string, error)
	// Import replaces the song list with the CSV content, matching by name.
	Import(ctx context.Context, csv string) ([]domain.Song, error)
	Delete(ctx context.Context, id string) error
}

type songService struct {
	repo      repository.SongsRepository
	publisher events.Publisher
	logger    *zap.Logger
}

func NewSongService(repo repository.SongsRepository, publisher events.Publisher, logger *zap.Logger) SongService {
	return &songService{repo: repo, publisher: publisher, logger: logger}
}

func (s *songService) List(ctx context.Context) ([]domain.Song, error) {
	songs, err := s.repo.ListSongs(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list songs: %w", err)
	}
	return songs, nil
}

func (s *songService) Get(ctx context.Context, id string) (*domain.Song, error) {
	song, err := s.repo.GetSong(ctx, id)
	if err != nil {
		return nil, lookupErr("song", err)
	}
	return song, nil
}

func (s *songService) Export(ctx context.Context) (string, error) {
	songs, err := s.List(ctx)
	if err != nil {
		return "", err
	}
	return songcsv.Serialize(songs), nil
}

func (s *songService) Import(ctx context.Context, csv string) ([]domain.Song, error) {
	parsed, err := songcsv.Parse(csv)
	if err != nil {
		return nil, err
	}
	seen := make(map[string]struct{}, len(parsed))
	for _, song := range parsed {
		if _, dup := seen[song.Name]; dup {
			return nil, domain.Invalid("name", fmt.Sprintf("song %q appears more than once", song.Name))
		}
		seen[song.Name] = struct{}{}
	}

	synced, err := s.repo.SyncSongs(ctx, parsed)
	if err != nil {
		return nil, fmt.Errorf("failed to sync songs: %w", err)
	}

	s.logger.Info("Songs imported", zap.Int("song_count", len(synced)))
	s.publisher.Publish(ctx, events.ChangeEvent{EventType: events.SongsImported})
	return synced, nil
}

func (s *songService) Delete(ctx context.Context, id string) error {
	if err := s.repo.DeleteSong(ctx, id); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return err
		}
		return fmt.Errorf("failed to delete song: %w", err)
	}
	s.logger.Info("Song deleted", zap.String("song_id", id))
	s.publisher.Publish(ctx, events.ChangeEvent{EventType: events.SongDeleted, SongID: id})
	return nil
}
