package schedule

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/vonm84/qah-app/internal/domain"
	"github.com/vonm84/qah-app/internal/repository"
)

func dateStrings(dates []domain.Date) []string {
	out := make([]string, len(dates))
	for i, d := range dates {
		out[i] = d.String()
	}
	return out
}

func rehearsalStrings(dates []domain.RehearsalDate) []string {
	out := make([]string, len(dates))
	for i, d := range dates {
		out[i] = d.Date.String()
	}
	return out
}

func TestCandidates_MarchAndApril2024(t *testing.T) {
	got := Candidates(domain.MustParseDate("2024-03-05"), time.Tuesday)
	assert.Equal(t, []string{
		"2024-03-05", "2024-03-12", "2024-03-19", "2024-03-26",
		"2024-04-02", "2024-04-09", "2024-04-16", "2024-04-23", "2024-04-30",
	}, dateStrings(got))
}

func TestCandidates_ExcludesPast(t *testing.T) {
	got := Candidates(domain.MustParseDate("2024-03-20"), time.Tuesday)
	require.NotEmpty(t, got)
	assert.Equal(t, "2024-03-26", got[0].String())
	for _, d := range got {
		assert.False(t, d.Before(domain.MustParseDate("2024-03-20")))
	}
}

func TestCandidates_YearRollOver(t *testing.T) {
	got := Candidates(domain.MustParseDate("2024-12-30"), time.Tuesday)
	assert.Equal(t, []string{
		"2024-12-31",
		"2025-01-07", "2025-01-14", "2025-01-21", "2025-01-28",
	}, dateStrings(got))
}

func TestCandidates_OtherWeekday(t *testing.T) {
	got := Candidates(domain.MustParseDate("2024-02-01"), time.Thursday)
	assert.Equal(t, []string{
		"2024-02-01", "2024-02-08", "2024-02-15", "2024-02-22", "2024-02-29",
		"2024-03-07", "2024-03-14", "2024-03-21", "2024-03-28",
	}, dateStrings(got))
}

func TestEnsureAndFetch_Idempotent(t *testing.T) {
	ctx := context.Background()
	store := repository.NewMemoryStore()
	gen := NewGenerator(store, time.Tuesday, zap.NewNop())
	today := domain.MustParseDate("2024-03-05")

	first, err := gen.EnsureAndFetch(ctx, today)
	require.NoError(t, err)
	assert.Len(t, first, 9)

	second, err := gen.EnsureAndFetch(ctx, today)
	require.NoError(t, err)
	assert.Equal(t, first, second)

	all, err := store.ListDates(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 9)
}

func TestEnsureAndFetch_RespectsLeaderOverrides(t *testing.T) {
	ctx := context.Background()
	store := repository.NewMemoryStore()
	gen := NewGenerator(store, time.Tuesday, zap.NewNop())
	today := domain.MustParseDate("2024-03-05")

	_, err := gen.EnsureAndFetch(ctx, today)
	require.NoError(t, err)
	require.NoError(t, gen.SetEnabled(ctx, domain.MustParseDate("2024-03-12"), false))

	got, err := gen.EnsureAndFetch(ctx, today)
	require.NoError(t, err)
	assert.NotContains(t, rehearsalStrings(got), "2024-03-12")
	assert.Len(t, got, 8)

	window, err := gen.Window(ctx, today)
	require.NoError(t, err)
	require.Len(t, window, 9)
	assert.Equal(t, "2024-03-12", window[1].Date.String())
	assert.False(t, window[1].Enabled)
}

func TestEnsureAndFetch_KeepsLeaderAddedDates(t *testing.T) {
	ctx := context.Background()
	store := repository.NewMemoryStore()
	extra := domain.MustParseDate("2024-05-20")
	past := domain.MustParseDate("2024-02-27")
	require.NoError(t, store.InsertDatesIfAbsent(ctx, []domain.Date{extra, past}))

	gen := NewGenerator(store, time.Tuesday, zap.NewNop())
	got, err := gen.EnsureAndFetch(ctx, domain.MustParseDate("2024-03-05"))
	require.NoError(t, err)

	names := rehearsalStrings(got)
	assert.Contains(t, names, "2024-05-20")
	assert.NotContains(t, names, "2024-02-27")
	assert.Equal(t, "2024-05-20", names[len(names)-1])
}

func TestSetEnabled_UnknownDate(t *testing.T) {
	gen := NewGenerator(repository.NewMemoryStore(), time.Tuesday, zap.NewNop())
	err := gen.SetEnabled(context.Background(), domain.MustParseDate("2024-03-13"), true)
	assert.True(t, errors.Is(err, domain.ErrNotFound))
}
