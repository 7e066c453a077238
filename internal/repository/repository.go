package repository

import (
	"context"

	"github.com/vonm84/qah-app/internal/domain"
)

// DatesRepository 排练日期（rehearsal_dates 表）
type DatesRepository interface {
	// ListDates returns every persisted date in ascending order.
	ListDates(ctx context.Context) ([]domain.RehearsalDate, error)

	// GetDate returns domain.ErrNotFound when the date was never created.
	GetDate(ctx context.Context, date domain.Date) (*domain.RehearsalDate, error)

	// InsertDatesIfAbsent creates the given dates with enabled=true.
	// Dates that already exist are left untouched, including their enabled flag.
	InsertDatesIfAbsent(ctx context.Context, dates []domain.Date) error

	// SetDateEnabled 领导切换日期启用状态
	SetDateEnabled(ctx context.Context, date domain.Date, enabled bool) error
}

// MembersRepository 成员
type MembersRepository interface {
	GetMember(ctx context.Context, name string) (*domain.Member, error)
	ListMembers(ctx context.Context) ([]domain.Member, error)

	// CreateMember inserts the member unless the name is taken; created reports which happened.
	CreateMember(ctx context.Context, m *domain.Member) (created bool, err error)
	UpdateMember(ctx context.Context, m *domain.Member) error

	// DeleteMember removes the member with its attendance and part assignments.
	DeleteMember(ctx context.Context, name string) error
}

// SongsRepository 曲目
type SongsRepository interface {
	GetSong(ctx context.Context, id string) (*domain.Song, error)

	// ListSongs returns songs ordered by name.
	ListSongs(ctx context.Context) ([]domain.Song, error)

	// SyncSongs makes the stored song list equal to songs, matching by name in one transaction.
	// Matched songs keep their id and assignments; unmatched stored songs are deleted.
	SyncSongs(ctx context.Context, songs []domain.Song) ([]domain.Song, error)

	// DeleteSong removes the song and cascades its part assignments.
	DeleteSong(ctx context.Context, id string) error
}

// AttendanceFilter 出勤查询条件（零值表示不过滤）
type AttendanceFilter struct {
	MemberName string
	From       domain.Date
}

// AttendanceRepository 出勤
type AttendanceRepository interface {
	// UpsertAttendance writes the record keyed on (member_name, date); last write wins.
	UpsertAttendance(ctx context.Context, a *domain.Attendance) error
	ListAttendance(ctx context.Context, filter AttendanceFilter) ([]domain.Attendance, error)
}

// AssignmentFilter 声部分配查询条件
type AssignmentFilter struct {
	MemberName string
	SongID     string
}

// AssignmentsRepository 声部分配
type AssignmentsRepository interface {
	// UpsertAssignment writes the record keyed on (member_name, song_id); last write wins.
	UpsertAssignment(ctx context.Context, a *domain.PartAssignment) error
	ListAssignments(ctx context.Context, filter AssignmentFilter) ([]domain.PartAssignment, error)
}

// Stores bundles the repositories a service process needs.
type Stores struct {
	Dates       DatesRepository
	Members     MembersRepository
	Songs       SongsRepository
	Attendance  AttendanceRepository
	Assignments AssignmentsRepository
}
