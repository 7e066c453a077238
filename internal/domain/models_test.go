package domain

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func intPtr(v int) *int { return &v }

func strPtr(s string) *string { return &s }

func TestAttendance_Normalize(t *testing.T) {
	date := MustParseDate("2024-03-05")

	t.Run("maybe requires comment", func(t *testing.T) {
		a := Attendance{MemberName: "Alice", Date: date, Status: AttendanceMaybe, Comment: strPtr("   ")}
		err := a.Normalize()
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrInvalid))

		var ve *ValidationError
		require.True(t, errors.As(err, &ve))
		assert.Equal(t, "comment", ve.Field)
	})

	t.Run("maybe keeps trimmed comment", func(t *testing.T) {
		a := Attendance{MemberName: "Alice", Date: date, Status: AttendanceMaybe, Comment: strPtr("  late  ")}
		require.NoError(t, a.Normalize())
		require.NotNil(t, a.Comment)
		assert.Equal(t, "late", *a.Comment)
	})

	t.Run("yes discards comment", func(t *testing.T) {
		a := Attendance{MemberName: "Alice", Date: date, Status: AttendanceYes, Comment: strPtr("ignored")}
		require.NoError(t, a.Normalize())
		assert.Nil(t, a.Comment)
	})

	t.Run("unknown status", func(t *testing.T) {
		a := Attendance{MemberName: "Alice", Date: date, Status: "perhaps"}
		assert.ErrorIs(t, a.Normalize(), ErrInvalid)
	})
}

func TestAttendanceStatus_Attending(t *testing.T) {
	assert.True(t, AttendanceYes.Attending())
	assert.True(t, AttendanceMaybe.Attending())
	assert.False(t, AttendanceNo.Attending())
}

func TestPartAssignment_Normalize(t *testing.T) {
	lvl := ReadinessLevel(6)
	a := PartAssignment{MemberName: "Bob", SongID: "s1", ReadinessLevel: &lvl}
	assert.ErrorIs(t, a.Normalize(), ErrInvalid)

	ok := ReadinessLearning
	a = PartAssignment{MemberName: "Bob", SongID: "s1", Part: strPtr(" "), Comment: strPtr(""), ReadinessLevel: &ok}
	require.NoError(t, a.Normalize())
	assert.Nil(t, a.Part)
	assert.Nil(t, a.Comment)
}

func TestMember_Normalize(t *testing.T) {
	m := Member{Name: " Carol "}
	require.NoError(t, m.Normalize())
	assert.Equal(t, "Carol", m.Name)
	assert.Equal(t, LanguageEN, m.Language)

	m = Member{Name: "Dan", BirthdayDay: intPtr(12)}
	assert.ErrorIs(t, m.Normalize(), ErrInvalid)

	m = Member{Name: "Dan", BirthdayDay: intPtr(31), BirthdayMonth: intPtr(4)}
	assert.ErrorIs(t, m.Normalize(), ErrInvalid)

	m = Member{Name: "Dan", BirthdayDay: intPtr(29), BirthdayMonth: intPtr(2)}
	assert.NoError(t, m.Normalize())

	m = Member{Name: "Eve", Language: "fr"}
	assert.ErrorIs(t, m.Normalize(), ErrInvalid)
}

func TestSong_HasPart(t *testing.T) {
	s := Song{ID: "s1", Name: "Hymn", Parts: []Part{{Long: "Soprano", Short: "S"}, {Long: "Alto", Short: "A"}}}
	assert.True(t, s.HasPart("Alto"))
	assert.False(t, s.HasPart("Tenor"))
	p, ok := s.PartByLong("Soprano")
	require.True(t, ok)
	assert.Equal(t, "S", p.Short)
}

func TestReadinessCatalog(t *testing.T) {
	levels := ReadinessLevels()
	require.Len(t, levels, 5)
	for i, l := range levels {
		assert.Equal(t, ReadinessLevel(i+1), l.ID)
		assert.NotEmpty(t, l.Color)
	}

	info, ok := LookupReadiness(ReadinessLearningNeedsHelp)
	require.True(t, ok)
	assert.Equal(t, "I am learning and need help", info.Label(LanguageEN))
	assert.Equal(t, "Estou aprendendo e preciso ajuda", info.Label(LanguagePT))

	_, ok = LookupReadiness(0)
	assert.False(t, ok)

	assert.Equal(t, NoReadinessColor, ReadinessColor(nil))
	lvl := ReadinessKnowsWell
	assert.Equal(t, "#4A90E2", ReadinessColor(&lvl))
}
