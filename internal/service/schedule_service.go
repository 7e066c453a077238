package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/vonm84/qah-app/internal/domain"
	"github.com/vonm84/qah-app/internal/events"
	"github.com/vonm84/qah-app/internal/schedule"
)

// ScheduleService 排练日期服务接口
type ScheduleService interface {
	// Upcoming generates missing dates and returns enabled dates from today on.
	Upcoming(ctx context.Context, today domain.Date) ([]domain.RehearsalDate, error)
	// Window lists this and next month's dates with their enabled flag (leader view).
	Window(ctx context.Context, today domain.Date) ([]domain.RehearsalDate, error)
	SetEnabled(ctx context.Context, date domain.Date, enabled bool) error
}

type scheduleService struct {
	generator *schedule.Generator
	publisher events.Publisher
	logger    *zap.Logger
}

func NewScheduleService(generator *schedule.Generator, publisher events.Publisher, logger *zap.Logger) ScheduleService {
	return &scheduleService{generator: generator, publisher: publisher, logger: logger}
}

func (s *scheduleService) Upcoming(ctx context.Context, today domain.Date) ([]domain.RehearsalDate, error) {
	return s.generator.EnsureAndFetch(ctx, today)
}

func (s *scheduleService) Window(ctx context.Context, today domain.Date) ([]domain.RehearsalDate, error) {
	return s.generator.Window(ctx, today)
}

func (s *scheduleService) SetEnabled(ctx context.Context, date domain.Date, enabled bool) error {
	if err := s.generator.SetEnabled(ctx, date, enabled); err != nil {
		return lookupErr("rehearsal date", err)
	}
	s.publisher.Publish(ctx, events.ChangeEvent{EventType: events.DateToggled, Date: date.String()})
	return nil
}
