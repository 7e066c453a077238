package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vonm84/qah-app/internal/birthday"
	"github.com/vonm84/qah-app/internal/domain"
	"github.com/vonm84/qah-app/internal/events"
)

func intPtr(i int) *int { return &i }

func TestMemberService_RegisterIsCreateIfAbsent(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, nil)

	m, created, err := f.members.Register(ctx, domain.Member{Name: "  Alice ", PronounsEn: "she/her"})
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, "Alice", m.Name)
	assert.Equal(t, domain.LanguageEN, m.Language)

	again, created, err := f.members.Register(ctx, domain.Member{Name: "Alice", PronounsEn: "they/them"})
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, "she/her", again.PronounsEn)

	assert.Equal(t, []string{events.MemberRegistered}, f.pub.types())
}

func TestMemberService_RegisterValidatesBirthday(t *testing.T) {
	f := newFixture(t, nil)

	_, _, err := f.members.Register(context.Background(), domain.Member{Name: "Alice", BirthdayDay: intPtr(3)})
	assert.ErrorIs(t, err, domain.ErrInvalid)

	_, _, err = f.members.Register(context.Background(), domain.Member{Name: "Alice", BirthdayDay: intPtr(31), BirthdayMonth: intPtr(4)})
	assert.ErrorIs(t, err, domain.ErrInvalid)
}

func TestMemberService_ListHidesAdmin(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, nil)
	f.register(t, "Carol", testAdmin, "Alice")

	list, err := f.members.List(ctx, false)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "Alice", list[0].Name)
	assert.Equal(t, "Carol", list[1].Name)

	all, err := f.members.List(ctx, true)
	require.NoError(t, err)
	require.Len(t, all, 3)
	admin, err := f.members.Get(ctx, testAdmin)
	require.NoError(t, err)
	assert.True(t, admin.IsAdmin)
	assert.True(t, f.members.IsAdmin(testAdmin))
	assert.False(t, f.members.IsAdmin("Alice"))
	assert.False(t, f.members.IsAdmin(""))
}

func TestMemberService_UpdateProfile(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, nil)
	f.register(t, "Alice")

	m, err := f.members.UpdateProfile(ctx, domain.Member{Name: "Alice", Language: domain.LanguagePT, PronounsPt: "ela/dela"})
	require.NoError(t, err)
	assert.Equal(t, "ela/dela", m.Pronouns(domain.LanguagePT))

	_, err = f.members.UpdateProfile(ctx, domain.Member{Name: "Nobody"})
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = f.members.UpdateProfile(ctx, domain.Member{Name: "Alice", Language: "de"})
	assert.ErrorIs(t, err, domain.ErrInvalid)
}

func TestMemberService_DeleteCascades(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, nil)
	f.register(t, "Alice", testAdmin)
	_, err := f.schedule.Upcoming(ctx, today)
	require.NoError(t, err)
	_, err = f.attendance.Upsert(ctx, UpsertAttendanceRequest{MemberName: "Alice", Date: today, Status: domain.AttendanceYes})
	require.NoError(t, err)

	assert.ErrorIs(t, f.members.Delete(ctx, testAdmin), domain.ErrForbidden)
	assert.ErrorIs(t, f.members.Delete(ctx, "Nobody"), domain.ErrNotFound)

	require.NoError(t, f.members.Delete(ctx, "Alice"))
	_, err = f.members.Get(ctx, "Alice")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	chart, err := f.attendance.Chart(ctx, today)
	require.NoError(t, err)
	assert.Empty(t, chart.Rows)
	assert.Contains(t, f.pub.types(), events.MemberDeleted)
}

func TestMemberService_Birthdays(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, nil)
	for _, m := range []domain.Member{
		{Name: "Alice", BirthdayDay: intPtr(6), BirthdayMonth: intPtr(3)},
		{Name: "Bob", BirthdayDay: intPtr(5), BirthdayMonth: intPtr(3)},
		{Name: "Carol"},
		{Name: testAdmin, BirthdayDay: intPtr(5), BirthdayMonth: intPtr(3)},
	} {
		_, _, err := f.members.Register(ctx, m)
		require.NoError(t, err)
	}

	entries, err := f.members.Birthdays(ctx, today)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "Bob", entries[0].Member.Name)
	assert.Equal(t, birthday.LabelToday, entries[0].Label.Kind)
	assert.Equal(t, "Alice", entries[1].Member.Name)
	assert.Equal(t, birthday.LabelTomorrow, entries[1].Label.Kind)
}
