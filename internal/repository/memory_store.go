package repository

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/vonm84/qah-app/internal/domain"
)

type attendanceKey struct {
	member string
	date   domain.Date
}

type assignmentKey struct {
	member string
	songID string
}

// MemoryStore supports the full API when DB is disabled.
// Cascades that Postgres gets from foreign keys are done by hand here.
type MemoryStore struct {
	mu          sync.RWMutex
	dates       map[domain.Date]bool // date -> enabled
	members     map[string]domain.Member
	songs       map[string]domain.Song
	attendance  map[attendanceKey]domain.Attendance
	assignments map[assignmentKey]domain.PartAssignment
	now         func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		dates:       map[domain.Date]bool{},
		members:     map[string]domain.Member{},
		songs:       map[string]domain.Song{},
		attendance:  map[attendanceKey]domain.Attendance{},
		assignments: map[assignmentKey]domain.PartAssignment{},
		now:         time.Now,
	}
}

var (
	_ DatesRepository       = (*MemoryStore)(nil)
	_ MembersRepository     = (*MemoryStore)(nil)
	_ SongsRepository       = (*MemoryStore)(nil)
	_ AttendanceRepository  = (*MemoryStore)(nil)
	_ AssignmentsRepository = (*MemoryStore)(nil)
)

// ========== dates ==========

func (m *MemoryStore) ListDates(_ context.Context) ([]domain.RehearsalDate, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]domain.RehearsalDate, 0, len(m.dates))
	for d, enabled := range m.dates {
		out = append(out, domain.RehearsalDate{Date: d, Enabled: enabled})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out, nil
}

func (m *MemoryStore) GetDate(_ context.Context, date domain.Date) (*domain.RehearsalDate, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	enabled, ok := m.dates[date]
	if !ok {
		return nil, fmt.Errorf("rehearsal date %s: %w", date, domain.ErrNotFound)
	}
	return &domain.RehearsalDate{Date: date, Enabled: enabled}, nil
}

func (m *MemoryStore) InsertDatesIfAbsent(_ context.Context, dates []domain.Date) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, d := range dates {
		if _, ok := m.dates[d]; !ok {
			m.dates[d] = true
		}
	}
	return nil
}

func (m *MemoryStore) SetDateEnabled(_ context.Context, date domain.Date, enabled bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.dates[date]; !ok {
		return fmt.Errorf("rehearsal date %s: %w", date, domain.ErrNotFound)
	}
	m.dates[date] = enabled
	return nil
}

// ========== members ==========

func (m *MemoryStore) GetMember(_ context.Context, name string) (*domain.Member, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	mem, ok := m.members[name]
	if !ok {
		return nil, fmt.Errorf("member %q: %w", name, domain.ErrNotFound)
	}
	mem = copyMember(mem)
	return &mem, nil
}

func (m *MemoryStore) ListMembers(_ context.Context) ([]domain.Member, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]domain.Member, 0, len(m.members))
	for _, mem := range m.members {
		out = append(out, copyMember(mem))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (m *MemoryStore) CreateMember(_ context.Context, mem *domain.Member) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.members[mem.Name]; ok {
		return false, nil
	}
	m.members[mem.Name] = copyMember(*mem)
	return true, nil
}

func (m *MemoryStore) UpdateMember(_ context.Context, mem *domain.Member) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.members[mem.Name]; !ok {
		return fmt.Errorf("member %q: %w", mem.Name, domain.ErrNotFound)
	}
	m.members[mem.Name] = copyMember(*mem)
	return nil
}

func (m *MemoryStore) DeleteMember(_ context.Context, name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.members[name]; !ok {
		return fmt.Errorf("member %q: %w", name, domain.ErrNotFound)
	}
	delete(m.members, name)
	for k := range m.attendance {
		if k.member == name {
			delete(m.attendance, k)
		}
	}
	for k := range m.assignments {
		if k.member == name {
			delete(m.assignments, k)
		}
	}
	return nil
}

// ========== songs ==========

func (m *MemoryStore) GetSong(_ context.Context, id string) (*domain.Song, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	s, ok := m.songs[id]
	if !ok {
		return nil, fmt.Errorf("song %q: %w", id, domain.ErrNotFound)
	}
	s.Parts = copyParts(s.Parts)
	return &s, nil
}

func (m *MemoryStore) ListSongs(_ context.Context) ([]domain.Song, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]domain.Song, 0, len(m.songs))
	for _, s := range m.songs {
		s.Parts = copyParts(s.Parts)
		out = append(out, s)
	}
	sortSongs(out)
	return out, nil
}

func (m *MemoryStore) SyncSongs(_ context.Context, songs []domain.Song) ([]domain.Song, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	byName := make(map[string]string, len(m.songs))
	for id, s := range m.songs {
		byName[s.Name] = id
	}

	next := make(map[string]domain.Song, len(songs))
	result := make([]domain.Song, 0, len(songs))
	for _, s := range songs {
		if id, ok := byName[s.Name]; ok {
			s.ID = id
		} else {
			s.ID = uuid.NewString()
		}
		s.Parts = copyParts(partsOrEmpty(s.Parts))
		next[s.ID] = s
		result = append(result, s)
	}

	for id := range m.songs {
		if _, keep := next[id]; !keep {
			m.cascadeSongLocked(id)
		}
	}
	m.songs = next
	sortSongs(result)
	return result, nil
}

func (m *MemoryStore) DeleteSong(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.songs[id]; !ok {
		return fmt.Errorf("song %q: %w", id, domain.ErrNotFound)
	}
	delete(m.songs, id)
	m.cascadeSongLocked(id)
	return nil
}

func (m *MemoryStore) cascadeSongLocked(id string) {
	for k := range m.assignments {
		if k.songID == id {
			delete(m.assignments, k)
		}
	}
}

func copyParts(p []domain.Part) []domain.Part {
	out := make([]domain.Part, len(p))
	copy(out, p)
	return out
}

// 存储的记录与调用方不共享指针，读写两侧都复制可选字段

func clonePtr[T any](p *T) *T {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

func copyMember(mem domain.Member) domain.Member {
	mem.BirthdayDay = clonePtr(mem.BirthdayDay)
	mem.BirthdayMonth = clonePtr(mem.BirthdayMonth)
	return mem
}

func copyAttendance(a domain.Attendance) domain.Attendance {
	a.Comment = clonePtr(a.Comment)
	return a
}

func copyAssignment(a domain.PartAssignment) domain.PartAssignment {
	a.Part = clonePtr(a.Part)
	a.ReadinessLevel = clonePtr(a.ReadinessLevel)
	a.Comment = clonePtr(a.Comment)
	return a
}

// ========== attendance ==========

func (m *MemoryStore) UpsertAttendance(_ context.Context, a *domain.Attendance) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.members[a.MemberName]; !ok {
		return fmt.Errorf("member %q: %w", a.MemberName, domain.ErrNotFound)
	}
	if _, ok := m.dates[a.Date]; !ok {
		return fmt.Errorf("rehearsal date %s: %w", a.Date, domain.ErrNotFound)
	}
	a.UpdatedAt = m.now().UTC()
	m.attendance[attendanceKey{member: a.MemberName, date: a.Date}] = copyAttendance(*a)
	return nil
}

func (m *MemoryStore) ListAttendance(_ context.Context, filter AttendanceFilter) ([]domain.Attendance, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]domain.Attendance, 0)
	for _, a := range m.attendance {
		if filter.MemberName != "" && a.MemberName != filter.MemberName {
			continue
		}
		if !filter.From.IsZero() && a.Date.Before(filter.From) {
			continue
		}
		out = append(out, copyAttendance(a))
	}
	sort.Slice(out, func(i, j int) bool {
		if c := out[i].Date.Compare(out[j].Date); c != 0 {
			return c < 0
		}
		return out[i].MemberName < out[j].MemberName
	})
	return out, nil
}

// ========== part assignments ==========

func (m *MemoryStore) UpsertAssignment(_ context.Context, a *domain.PartAssignment) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.members[a.MemberName]; !ok {
		return fmt.Errorf("member %q: %w", a.MemberName, domain.ErrNotFound)
	}
	if _, ok := m.songs[a.SongID]; !ok {
		return fmt.Errorf("song %q: %w", a.SongID, domain.ErrNotFound)
	}
	a.UpdatedAt = m.now().UTC()
	m.assignments[assignmentKey{member: a.MemberName, songID: a.SongID}] = copyAssignment(*a)
	return nil
}

func (m *MemoryStore) ListAssignments(_ context.Context, filter AssignmentFilter) ([]domain.PartAssignment, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]domain.PartAssignment, 0)
	for _, a := range m.assignments {
		if filter.MemberName != "" && a.MemberName != filter.MemberName {
			continue
		}
		if filter.SongID != "" && a.SongID != filter.SongID {
			continue
		}
		out = append(out, copyAssignment(a))
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].SongID != out[j].SongID {
			return out[i].SongID < out[j].SongID
		}
		return out[i].MemberName < out[j].MemberName
	})
	return out, nil
}
