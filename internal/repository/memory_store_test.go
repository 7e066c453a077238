package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vonm84/qah-app/internal/domain"
)

func TestMemoryStore_InsertDatesIfAbsentKeepsEnabled(t *testing.T) {
	ctx := context.Background()
	m := NewMemoryStore()
	d := domain.MustParseDate("2024-03-12")

	require.NoError(t, m.InsertDatesIfAbsent(ctx, []domain.Date{d}))
	require.NoError(t, m.SetDateEnabled(ctx, d, false))
	require.NoError(t, m.InsertDatesIfAbsent(ctx, []domain.Date{d, domain.MustParseDate("2024-03-05")}))

	dates, err := m.ListDates(ctx)
	require.NoError(t, err)
	require.Len(t, dates, 2)
	assert.Equal(t, "2024-03-05", dates[0].Date.String())
	assert.True(t, dates[0].Enabled)
	assert.False(t, dates[1].Enabled)

	assert.ErrorIs(t, m.SetDateEnabled(ctx, domain.MustParseDate("2030-01-01"), true), domain.ErrNotFound)
}

func TestMemoryStore_MemberDeleteCascades(t *testing.T) {
	ctx := context.Background()
	m := NewMemoryStore()
	d := domain.MustParseDate("2024-03-05")
	require.NoError(t, m.InsertDatesIfAbsent(ctx, []domain.Date{d}))
	created, err := m.CreateMember(ctx, &domain.Member{Name: "Alice", Language: domain.LanguageEN})
	require.NoError(t, err)
	assert.True(t, created)
	songs, err := m.SyncSongs(ctx, []domain.Song{{Name: "Hymn", Parts: []domain.Part{{Long: "Soprano", Short: "S"}}}})
	require.NoError(t, err)

	require.NoError(t, m.UpsertAttendance(ctx, &domain.Attendance{MemberName: "Alice", Date: d, Status: domain.AttendanceYes}))
	require.NoError(t, m.UpsertAssignment(ctx, &domain.PartAssignment{MemberName: "Alice", SongID: songs[0].ID}))

	require.NoError(t, m.DeleteMember(ctx, "Alice"))

	att, _ := m.ListAttendance(ctx, AttendanceFilter{})
	asg, _ := m.ListAssignments(ctx, AssignmentFilter{})
	assert.Empty(t, att)
	assert.Empty(t, asg)
}

func TestMemoryStore_SyncSongsKeepsIDsAndCascadesRemoved(t *testing.T) {
	ctx := context.Background()
	m := NewMemoryStore()
	_, _ = m.CreateMember(ctx, &domain.Member{Name: "Bob"})

	first, err := m.SyncSongs(ctx, []domain.Song{{Name: "Hymn"}, {Name: "Old"}})
	require.NoError(t, err)
	ids := map[string]string{}
	for _, s := range first {
		ids[s.Name] = s.ID
		require.NoError(t, m.UpsertAssignment(ctx, &domain.PartAssignment{MemberName: "Bob", SongID: s.ID}))
	}

	second, err := m.SyncSongs(ctx, []domain.Song{{Name: "Hymn", Parts: []domain.Part{{Long: "Alto", Short: "A"}}}, {Name: "New"}})
	require.NoError(t, err)
	require.Len(t, second, 2)
	assert.Equal(t, "Hymn", second[0].Name)
	assert.Equal(t, ids["Hymn"], second[0].ID)

	asg, _ := m.ListAssignments(ctx, AssignmentFilter{})
	require.Len(t, asg, 1)
	assert.Equal(t, ids["Hymn"], asg[0].SongID)

	_, err = m.GetSong(ctx, ids["Old"])
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestMemoryStore_UpsertAttendanceRequiresDate(t *testing.T) {
	ctx := context.Background()
	m := NewMemoryStore()
	_, _ = m.CreateMember(ctx, &domain.Member{Name: "Alice"})

	err := m.UpsertAttendance(ctx, &domain.Attendance{MemberName: "Alice", Date: domain.MustParseDate("2024-03-05"), Status: domain.AttendanceYes})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestMemoryStore_RecordsDoNotShareOptionalFields(t *testing.T) {
	ctx := context.Background()
	m := NewMemoryStore()
	d := domain.MustParseDate("2024-03-05")
	require.NoError(t, m.InsertDatesIfAbsent(ctx, []domain.Date{d}))

	day, month := 12, 7
	mem := &domain.Member{Name: "Alice", BirthdayDay: &day, BirthdayMonth: &month}
	_, err := m.CreateMember(ctx, mem)
	require.NoError(t, err)
	songs, err := m.SyncSongs(ctx, []domain.Song{{Name: "Hymn", Parts: []domain.Part{{Long: "Soprano", Short: "S"}, {Long: "Bass", Short: "B"}}}})
	require.NoError(t, err)

	part, level, note := "Soprano", domain.ReadinessLearning, "verse 2"
	a := &domain.PartAssignment{MemberName: "Alice", SongID: songs[0].ID, Part: &part, ReadinessLevel: &level, Comment: &note}
	require.NoError(t, m.UpsertAssignment(ctx, a))
	maybe := "late"
	require.NoError(t, m.UpsertAttendance(ctx, &domain.Attendance{MemberName: "Alice", Date: d, Status: domain.AttendanceMaybe, Comment: &maybe}))

	// 写入后修改调用方的值
	day, part, level, note, maybe = 1, "Bass", domain.ReadinessNotStarted, "changed", "changed"

	// 修改读取结果
	listed, err := m.ListAssignments(ctx, AssignmentFilter{MemberName: "Alice"})
	require.NoError(t, err)
	require.Len(t, listed, 1)
	*listed[0].Part = "Alto"
	*listed[0].Comment = "mutated"
	att, err := m.ListAttendance(ctx, AttendanceFilter{MemberName: "Alice"})
	require.NoError(t, err)
	require.Len(t, att, 1)
	*att[0].Comment = "mutated"
	got, err := m.GetMember(ctx, "Alice")
	require.NoError(t, err)
	*got.BirthdayDay = 30

	listed, err = m.ListAssignments(ctx, AssignmentFilter{MemberName: "Alice"})
	require.NoError(t, err)
	require.Len(t, listed, 1)
	assert.Equal(t, "Soprano", *listed[0].Part)
	assert.Equal(t, domain.ReadinessLearning, *listed[0].ReadinessLevel)
	assert.Equal(t, "verse 2", *listed[0].Comment)

	att, err = m.ListAttendance(ctx, AttendanceFilter{MemberName: "Alice"})
	require.NoError(t, err)
	assert.Equal(t, "late", *att[0].Comment)

	members, err := m.ListMembers(ctx)
	require.NoError(t, err)
	require.Len(t, members, 1)
	assert.Equal(t, 12, *members[0].BirthdayDay)
	assert.Equal(t, 7, *members[0].BirthdayMonth)
}
