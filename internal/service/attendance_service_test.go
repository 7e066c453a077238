package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vonm84/qah-app/internal/domain"
	"github.com/vonm84/qah-app/internal/events"
)

func TestAttendanceService_MaybeRequiresComment(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, nil)
	f.register(t, "Alice")
	_, err := f.schedule.Upcoming(ctx, today)
	require.NoError(t, err)

	for _, c := range []*string{nil, strPtr(""), strPtr("   ")} {
		_, err := f.attendance.Upsert(ctx, UpsertAttendanceRequest{MemberName: "Alice", Date: today, Status: domain.AttendanceMaybe, Comment: c})
		assert.ErrorIs(t, err, domain.ErrInvalid)
	}

	list, err := f.attendance.ForMember(ctx, "Alice", today)
	require.NoError(t, err)
	assert.Empty(t, list)
	assert.NotContains(t, f.pub.types(), events.AttendanceUpserted)

	rec, err := f.attendance.Upsert(ctx, UpsertAttendanceRequest{MemberName: "Alice", Date: today, Status: domain.AttendanceMaybe, Comment: strPtr("  late shift ")})
	require.NoError(t, err)
	require.NotNil(t, rec.Comment)
	assert.Equal(t, "late shift", *rec.Comment)
}

func TestAttendanceService_YesDropsCommentAndLastWriteWins(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, nil)
	f.register(t, "Alice")
	_, err := f.schedule.Upcoming(ctx, today)
	require.NoError(t, err)

	_, err = f.attendance.Upsert(ctx, UpsertAttendanceRequest{MemberName: "Alice", Date: today, Status: domain.AttendanceMaybe, Comment: strPtr("maybe")})
	require.NoError(t, err)
	_, err = f.attendance.Upsert(ctx, UpsertAttendanceRequest{MemberName: "Alice", Date: today, Status: domain.AttendanceYes, Comment: strPtr("ignored")})
	require.NoError(t, err)

	list, err := f.attendance.ForMember(ctx, "Alice", today)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, domain.AttendanceYes, list[0].Status)
	assert.Nil(t, list[0].Comment)
}

func TestAttendanceService_UnknownMemberOrDate(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, nil)
	f.register(t, "Alice")
	_, err := f.schedule.Upcoming(ctx, today)
	require.NoError(t, err)

	_, err = f.attendance.Upsert(ctx, UpsertAttendanceRequest{MemberName: "Nobody", Date: today, Status: domain.AttendanceYes})
	assert.ErrorIs(t, err, domain.ErrNotFound)

	// a Wednesday is never generated
	_, err = f.attendance.Upsert(ctx, UpsertAttendanceRequest{MemberName: "Alice", Date: today.AddDays(1), Status: domain.AttendanceYes})
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = f.attendance.Upsert(ctx, UpsertAttendanceRequest{MemberName: "Alice", Date: today, Status: "sometimes"})
	assert.ErrorIs(t, err, domain.ErrInvalid)

	_, err = f.attendance.ForMember(ctx, "Nobody", today)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestAttendanceService_Chart(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, nil)
	f.register(t, "Bob", "Alice", testAdmin)
	dates, err := f.schedule.Upcoming(ctx, today)
	require.NoError(t, err)
	require.NotEmpty(t, dates)

	_, err = f.attendance.Upsert(ctx, UpsertAttendanceRequest{MemberName: "Alice", Date: today, Status: domain.AttendanceYes})
	require.NoError(t, err)
	_, err = f.attendance.Upsert(ctx, UpsertAttendanceRequest{MemberName: "Bob", Date: today, Status: domain.AttendanceNo})
	require.NoError(t, err)

	chart, err := f.attendance.Chart(ctx, today)
	require.NoError(t, err)
	assert.Len(t, chart.Dates, len(dates))
	require.Len(t, chart.Rows, 2)
	assert.Equal(t, "Alice", chart.Rows[0].Member)
	assert.Equal(t, "Bob", chart.Rows[1].Member)
	assert.Equal(t, 1, chart.Totals[0].Yes)
	assert.Equal(t, 1, chart.Totals[0].No)
	assert.Equal(t, 2, chart.Totals[1].NoAnswer)
}
