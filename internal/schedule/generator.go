package schedule

import (
	"context"
	"fmt"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/vonm84/qah-app/internal/domain"
	"github.com/vonm84/qah-app/internal/repository"
)

// Generator keeps the stored rehearsal dates in step with the weekly schedule.
// It only ever adds dates; enabled flags belong to the leader.
type Generator struct {
	repo    repository.DatesRepository
	weekday time.Weekday
	logger  *zap.Logger
}

func NewGenerator(repo repository.DatesRepository, weekday time.Weekday, logger *zap.Logger) *Generator {
	return &Generator{repo: repo, weekday: weekday, logger: logger}
}

// Weekday is the configured rehearsal day.
func (g *Generator) Weekday() time.Weekday { return g.weekday }

// ensure inserts the missing candidates and returns the persisted set plus
// whatever was just created.
func (g *Generator) ensure(ctx context.Context, today domain.Date) ([]domain.Date, map[domain.Date]bool, error) {
	candidates := Candidates(today, g.weekday)

	persisted, err := g.repo.ListDates(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to list rehearsal dates: %w", err)
	}
	known := make(map[domain.Date]bool, len(persisted)+len(candidates))
	for _, d := range persisted {
		known[d.Date] = d.Enabled
	}

	var missing []domain.Date
	for _, c := range candidates {
		if _, ok := known[c]; !ok {
			missing = append(missing, c)
		}
	}
	if len(missing) > 0 {
		if err := g.repo.InsertDatesIfAbsent(ctx, missing); err != nil {
			return nil, nil, fmt.Errorf("failed to create rehearsal dates: %w", err)
		}
		for _, d := range missing {
			known[d] = true
		}
		g.logger.Debug("Generated rehearsal dates",
			zap.String("today", today.String()),
			zap.Int("date_count", len(missing)),
		)
	}
	return candidates, known, nil
}

// EnsureAndFetch creates any missing dates of the current and next month and
// returns all enabled dates on or after today, ascending.
func (g *Generator) EnsureAndFetch(ctx context.Context, today domain.Date) ([]domain.RehearsalDate, error) {
	_, known, err := g.ensure(ctx, today)
	if err != nil {
		return nil, err
	}

	out := make([]domain.RehearsalDate, 0, len(known))
	for d, enabled := range known {
		if enabled && !d.Before(today) {
			out = append(out, domain.RehearsalDate{Date: d, Enabled: true})
		}
	}
	sortDates(out)
	return out, nil
}

// Window returns the candidate dates with their stored enabled flag, disabled
// ones included, so a leader can switch them back on.
func (g *Generator) Window(ctx context.Context, today domain.Date) ([]domain.RehearsalDate, error) {
	candidates, known, err := g.ensure(ctx, today)
	if err != nil {
		return nil, err
	}
	out := make([]domain.RehearsalDate, 0, len(candidates))
	for _, c := range candidates {
		out = append(out, domain.RehearsalDate{Date: c, Enabled: known[c]})
	}
	return out, nil
}

// SetEnabled toggles a generated date. Returns domain.ErrNotFound for unknown dates.
func (g *Generator) SetEnabled(ctx context.Context, date domain.Date, enabled bool) error {
	if err := g.repo.SetDateEnabled(ctx, date, enabled); err != nil {
		return err
	}
	g.logger.Info("Rehearsal date toggled",
		zap.String("date", date.String()),
		zap.Bool("enabled", enabled),
	)
	return nil
}

func sortDates(dates []domain.RehearsalDate) {
	sort.Slice(dates, func(i, j int) bool { return dates[i].Date.Before(dates[j].Date) })
}
