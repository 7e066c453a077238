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
	"github.com/vonm84/qah-app/internal/schedule"
)

// AttendanceService 出勤服务接口
type AttendanceService interface {
	Upsert(ctx context.Context, req UpsertAttendanceRequest) (*domain.Attendance, error)
	// ForMember returns the member's answers for dates on or after from.
	ForMember(ctx context.Context, memberName string, from domain.Date) ([]domain.Attendance, error)
	// Chart is the members x upcoming enabled dates matrix.
	Chart(ctx context.Context, today domain.Date) (*aggregator.AttendanceChart, error)
}

// UpsertAttendanceRequest 提交出勤请求
type UpsertAttendanceRequest struct {
	MemberName string                  `json:"member_name"`
	Date       domain.Date             `json:"date"`
	Status     domain.AttendanceStatus `json:"status"`
	Comment    *string                 `json:"comment,omitempty"`
}

type attendanceService struct {
	stores    *repository.Stores
	members   MemberService
	generator *schedule.Generator
	publisher events.Publisher
	logger    *zap.Logger
}

func NewAttendanceService(stores *repository.Stores, members MemberService, generator *schedule.Generator, publisher events.Publisher, logger *zap.Logger) AttendanceService {
	return &attendanceService{
		stores:    stores,
		members:   members,
		generator: generator,
		publisher: publisher,
		logger:    logger,
	}
}

func (s *attendanceService) Upsert(ctx context.Context, req UpsertAttendanceRequest) (*domain.Attendance, error) {
	rec := domain.Attendance{
		MemberName: req.MemberName,
		Date:       req.Date,
		Status:     req.Status,
		Comment:    req.Comment,
	}
	// 校验失败时不写入
	if err := rec.Normalize(); err != nil {
		return nil, err
	}

	if _, err := s.stores.Members.GetMember(ctx, rec.MemberName); err != nil {
		return nil, lookupErr("member", err)
	}
	if _, err := s.stores.Dates.GetDate(ctx, rec.Date); err != nil {
		return nil, lookupErr("rehearsal date", err)
	}

	if err := s.stores.Attendance.UpsertAttendance(ctx, &rec); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to upsert attendance: %w", err)
	}

	s.logger.Debug("Attendance saved",
		zap.String("member_name", rec.MemberName),
		zap.String("date", rec.Date.String()),
		zap.String("status", string(rec.Status)),
	)
	s.publisher.Publish(ctx, events.ChangeEvent{
		EventType:  events.AttendanceUpserted,
		MemberName: rec.MemberName,
		Date:       rec.Date.String(),
	})
	return &rec, nil
}

func (s *attendanceService) ForMember(ctx context.Context, memberName string, from domain.Date) ([]domain.Attendance, error) {
	if _, err := s.stores.Members.GetMember(ctx, memberName); err != nil {
		return nil, lookupErr("member", err)
	}
	list, err := s.stores.Attendance.ListAttendance(ctx, repository.AttendanceFilter{MemberName: memberName, From: from})
	if err != nil {
		return nil, fmt.Errorf("failed to list attendance: %w", err)
	}
	return list, nil
}

func (s *attendanceService) Chart(ctx context.Context, today domain.Date) (*aggregator.AttendanceChart, error) {
	dates, err := s.generator.EnsureAndFetch(ctx, today)
	if err != nil {
		return nil, err
	}
	members, err := s.members.List(ctx, false)
	if err != nil {
		return nil, err
	}
	attendance, err := s.stores.Attendance.ListAttendance(ctx, repository.AttendanceFilter{From: today})
	if err != nil {
		return nil, fmt.Errorf("failed to list attendance: %w", err)
	}
	chart := aggregator.BuildAttendanceChart(dates, members, attendance)
	return &chart, nil
}

// lookupErr keeps ErrNotFound matchable and wraps everything else as a storage failure.
func lookupErr(what string, err error) error {
	if errors.Is(err, domain.ErrNotFound) {
		return err
	}
	return fmt.Errorf("failed to get %s: %w", what, err)
}
