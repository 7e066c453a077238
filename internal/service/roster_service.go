package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/vonm84/qah-app/internal/aggregator"
	"github.com/vonm84/qah-app/internal/domain"
	"github.com/vonm84/qah-app/internal/export"
	"github.com/vonm84/qah-app/internal/repository"
	"github.com/vonm84/qah-app/internal/schedule"
)

// RosterService 排练名单服务接口
type RosterService interface {
	// Upcoming always recomputes the roster from storage.
	Upcoming(ctx context.Context, today domain.Date) ([]aggregator.DateRoster, error)
	Breakdowns(ctx context.Context) ([]aggregator.Breakdown, error)
	Breakdown(ctx context.Context, songID string) (*aggregator.Breakdown, error)

	// Refresh rebuilds the roster and commits it as the shared snapshot unless
	// a newer build already did. committed reports whether it was stored.
	// Without a snapshot cache nothing is committed and Generation is 0.
	Refresh(ctx context.Context, today domain.Date) (snap *aggregator.RosterSnapshot, committed bool, err error)
	// Snapshot returns the last committed snapshot, or domain.ErrNotFound.
	Snapshot(ctx context.Context) (*aggregator.RosterSnapshot, error)

	// Workbook renders the leader's .xlsx export.
	Workbook(ctx context.Context, today domain.Date) ([]byte, error)
}

type rosterService struct {
	stores      *repository.Stores
	generator   *schedule.Generator
	attendance  AttendanceService
	assignments AssignmentService
	cache       *aggregator.SnapshotCache // nil when Redis is disabled
	logger      *zap.Logger
	now         func() time.Time
}

func NewRosterService(
	stores *repository.Stores,
	generator *schedule.Generator,
	attendance AttendanceService,
	assignments AssignmentService,
	cache *aggregator.SnapshotCache,
	logger *zap.Logger,
) RosterService {
	return &rosterService{
		stores:      stores,
		generator:   generator,
		attendance:  attendance,
		assignments: assignments,
		cache:       cache,
		logger:      logger,
		now:         time.Now,
	}
}

type rosterInputs struct {
	dates       []domain.RehearsalDate
	songs       []domain.Song
	attendance  []domain.Attendance
	assignments []domain.PartAssignment
}

// fetch reads everything BuildRoster needs; the three independent reads run concurrently.
func (s *rosterService) fetch(ctx context.Context, today domain.Date) (*rosterInputs, error) {
	dates, err := s.generator.EnsureAndFetch(ctx, today)
	if err != nil {
		return nil, err
	}
	in := &rosterInputs{dates: dates}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		songs, err := s.stores.Songs.ListSongs(gctx)
		if err != nil {
			return fmt.Errorf("failed to list songs: %w", err)
		}
		in.songs = songs
		return nil
	})
	g.Go(func() error {
		list, err := s.stores.Attendance.ListAttendance(gctx, repository.AttendanceFilter{From: today})
		if err != nil {
			return fmt.Errorf("failed to list attendance: %w", err)
		}
		in.attendance = list
		return nil
	})
	g.Go(func() error {
		list, err := s.stores.Assignments.ListAssignments(gctx, repository.AssignmentFilter{})
		if err != nil {
			return fmt.Errorf("failed to list part assignments: %w", err)
		}
		in.assignments = list
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return in, nil
}

func (s *rosterService) Upcoming(ctx context.Context, today domain.Date) ([]aggregator.DateRoster, error) {
	in, err := s.fetch(ctx, today)
	if err != nil {
		return nil, err
	}
	return aggregator.BuildRoster(in.dates, in.songs, in.attendance, in.assignments), nil
}

func (s *rosterService) Breakdowns(ctx context.Context) ([]aggregator.Breakdown, error) {
	songs, err := s.stores.Songs.ListSongs(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list songs: %w", err)
	}
	assignments, err := s.stores.Assignments.ListAssignments(ctx, repository.AssignmentFilter{})
	if err != nil {
		return nil, fmt.Errorf("failed to list part assignments: %w", err)
	}
	return aggregator.ComputeBreakdowns(songs, assignments), nil
}

func (s *rosterService) Breakdown(ctx context.Context, songID string) (*aggregator.Breakdown, error) {
	song, err := s.stores.Songs.GetSong(ctx, songID)
	if err != nil {
		return nil, lookupErr("song", err)
	}
	assignments, err := s.stores.Assignments.ListAssignments(ctx, repository.AssignmentFilter{SongID: songID})
	if err != nil {
		return nil, fmt.Errorf("failed to list part assignments: %w", err)
	}
	b := aggregator.ComputeBreakdown(*song, assignments)
	return &b, nil
}

func (s *rosterService) Refresh(ctx context.Context, today domain.Date) (*aggregator.RosterSnapshot, bool, error) {
	var gen int64
	if s.cache != nil {
		// token is taken before reading so a slower, older read loses the race
		g, err := s.cache.NextGeneration(ctx)
		if err != nil {
			return nil, false, err
		}
		gen = g
	}

	in, err := s.fetch(ctx, today)
	if err != nil {
		return nil, false, err
	}
	snap := &aggregator.RosterSnapshot{
		Generation: gen,
		Today:      today,
		BuiltAt:    s.now().UTC(),
		Dates:      aggregator.BuildRoster(in.dates, in.songs, in.attendance, in.assignments),
	}
	if s.cache == nil {
		return snap, false, nil
	}

	committed, err := s.cache.Commit(ctx, snap)
	if err != nil {
		return nil, false, err
	}
	return snap, committed, nil
}

func (s *rosterService) Snapshot(ctx context.Context) (*aggregator.RosterSnapshot, error) {
	if s.cache == nil {
		return nil, fmt.Errorf("roster snapshot cache disabled: %w", domain.ErrNotFound)
	}
	snap, err := s.cache.Latest(ctx)
	if err != nil {
		if errors.Is(err, aggregator.ErrCacheMiss) {
			return nil, fmt.Errorf("no roster snapshot yet: %w", domain.ErrNotFound)
		}
		return nil, err
	}
	return snap, nil
}

func (s *rosterService) Workbook(ctx context.Context, today domain.Date) ([]byte, error) {
	roster, err := s.Upcoming(ctx, today)
	if err != nil {
		return nil, err
	}
	breakdowns, err := s.Breakdowns(ctx)
	if err != nil {
		return nil, err
	}
	grid, err := s.assignments.PartsGrid(ctx)
	if err != nil {
		return nil, err
	}
	chart, err := s.attendance.Chart(ctx, today)
	if err != nil {
		return nil, err
	}

	data, err := export.Generate(export.Workbook{
		Roster:     roster,
		Breakdowns: breakdowns,
		PartsGrid:  *grid,
		Attendance: *chart,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to generate workbook: %w", err)
	}
	s.logger.Info("Workbook exported", zap.Int("bytes", len(data)))
	return data, nil
}
