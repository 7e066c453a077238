package service

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/vonm84/qah-app/internal/aggregator"
	"github.com/vonm84/qah-app/internal/domain"
	"github.com/vonm84/qah-app/internal/events"
	"github.com/vonm84/qah-app/internal/repository"
)

// AssignmentService 声部分配服务接口
type AssignmentService interface {
	Upsert(ctx context.Context, req UpsertAssignmentRequest) (*domain.PartAssignment, error)
	ForMember(ctx context.Context, memberName string) ([]domain.PartAssignment, error)
	PartsGrid(ctx context.Context) (*aggregator.PartsGrid, error)
}

// UpsertAssignmentRequest 提交声部/熟练度请求（空字符串视为未设置）
type UpsertAssignmentRequest struct {
	MemberName     string                 `json:"member_name"`
	SongID         string                 `json:"song_id"`
	Part           *string                `json:"part,omitempty"`
	ReadinessLevel *domain.ReadinessLevel `json:"readiness_level,omitempty"`
	Comment        *string                `json:"comments,omitempty"`
}

type assignmentService struct {
	stores    *repository.Stores
	members   MemberService
	publisher events.Publisher
	logger    *zap.Logger
}

func NewAssignmentService(stores *repository.Stores, members MemberService, publisher events.Publisher, logger *zap.Logger) AssignmentService {
	return &assignmentService{stores: stores, members: members, publisher: publisher, logger: logger}
}

func (s *assignmentService) Upsert(ctx context.Context, req UpsertAssignmentRequest) (*domain.PartAssignment, error) {
	rec := domain.PartAssignment{
		MemberName:     req.MemberName,
		SongID:         req.SongID,
		Part:           req.Part,
		ReadinessLevel: req.ReadinessLevel,
		Comment:        req.Comment,
	}
	if err := rec.Normalize(); err != nil {
		return nil, err
	}

	if _, err := s.stores.Members.GetMember(ctx, rec.MemberName); err != nil {
		return nil, lookupErr("member", err)
	}
	song, err := s.stores.Songs.GetSong(ctx, rec.SongID)
	if err != nil {
		return nil, lookupErr("song", err)
	}
	// the part must exist now; later song edits may orphan it
	if rec.Part != nil && !song.HasPart(*rec.Part) {
		return nil, domain.Invalid("part", fmt.Sprintf("%q is not a part of %q", *rec.Part, song.Name))
	}

	if err := s.stores.Assignments.UpsertAssignment(ctx, &rec); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to upsert part assignment: %w", err)
	}

	s.logger.Debug("Part assignment saved",
		zap.String("member_name", rec.MemberName),
		zap.String("song_id", rec.SongID),
	)
	s.publisher.Publish(ctx, events.ChangeEvent{
		EventType:  events.AssignmentUpserted,
		MemberName: rec.MemberName,
		SongID:     rec.SongID,
	})
	return &rec, nil
}

func (s *assignmentService) ForMember(ctx context.Context, memberName string) ([]domain.PartAssignment, error) {
	if _, err := s.stores.Members.GetMember(ctx, memberName); err != nil {
		return nil, lookupErr("member", err)
	}
	list, err := s.stores.Assignments.ListAssignments(ctx, repository.AssignmentFilter{MemberName: memberName})
	if err != nil {
		return nil, fmt.Errorf("failed to list part assignments: %w", err)
	}
	return list, nil
}

func (s *assignmentService) PartsGrid(ctx context.Context) (*aggregator.PartsGrid, error) {
	songs, err := s.stores.Songs.ListSongs(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list songs: %w", err)
	}
	members, err := s.members.List(ctx, false)
	if err != nil {
		return nil, err
	}
	assignments, err := s.stores.Assignments.ListAssignments(ctx, repository.AssignmentFilter{})
	if err != nil {
		return nil, fmt.Errorf("failed to list part assignments: %w", err)
	}
	grid := aggregator.BuildPartsGrid(songs, members, assignments)
	return &grid, nil
}
