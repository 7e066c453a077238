package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vonm84/qah-app/internal/domain"
	"github.com/vonm84/qah-app/internal/events"
)

func TestScheduleService_ToggleHidesDateFromUpcoming(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, nil)

	upcoming, err := f.schedule.Upcoming(ctx, today)
	require.NoError(t, err)
	require.Len(t, upcoming, 9)

	mar12 := domain.MustParseDate("2024-03-12")
	require.NoError(t, f.schedule.SetEnabled(ctx, mar12, false))
	assert.Contains(t, f.pub.types(), events.DateToggled)

	upcoming, err = f.schedule.Upcoming(ctx, today)
	require.NoError(t, err)
	assert.Len(t, upcoming, 8)
	for _, d := range upcoming {
		assert.NotEqual(t, mar12, d.Date)
	}

	// 窗口仍然列出被禁用的日期
	window, err := f.schedule.Window(ctx, today)
	require.NoError(t, err)
	require.Len(t, window, 9)
	assert.Equal(t, today, window[0].Date)
	assert.Equal(t, mar12, window[1].Date)
	assert.False(t, window[1].Enabled)
}

func TestScheduleService_UnknownDate(t *testing.T) {
	f := newFixture(t, nil)
	err := f.schedule.SetEnabled(context.Background(), domain.MustParseDate("2024-03-06"), true)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.Empty(t, f.pub.types())
}
