package service

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/vonm84/qah-app/internal/aggregator"
	"github.com/vonm84/qah-app/internal/domain"
	"github.com/vonm84/qah-app/internal/events"
	"github.com/vonm84/qah-app/internal/repository"
	"github.com/vonm84/qah-app/internal/schedule"
)

const testAdmin = "Admin"

var today = domain.MustParseDate("2024-03-05") // a Tuesday

// recordingPublisher 记录发布的事件
type recordingPublisher struct {
	mu     sync.Mutex
	events []events.ChangeEvent
}

func (p *recordingPublisher) Publish(_ context.Context, ev events.ChangeEvent) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, ev)
}

func (p *recordingPublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, 0, len(p.events))
	for _, ev := range p.events {
		out = append(out, ev.EventType)
	}
	return out
}

type fixture struct {
	stores      *repository.Stores
	pub         *recordingPublisher
	members     MemberService
	schedule    ScheduleService
	attendance  AttendanceService
	assignments AssignmentService
	songs       SongService
	roster      RosterService
}

func newFixture(t *testing.T, cache *aggregator.SnapshotCache) *fixture {
	t.Helper()
	logger := zap.NewNop()
	stores := repository.NewMemoryStores()
	pub := &recordingPublisher{}
	gen := schedule.NewGenerator(stores.Dates, today.Weekday(), logger)

	f := &fixture{stores: stores, pub: pub}
	f.members = NewMemberService(stores.Members, pub, testAdmin, logger)
	f.schedule = NewScheduleService(gen, pub, logger)
	f.attendance = NewAttendanceService(stores, f.members, gen, pub, logger)
	f.assignments = NewAssignmentService(stores, f.members, pub, logger)
	f.songs = NewSongService(stores.Songs, pub, logger)
	f.roster = NewRosterService(stores, gen, f.attendance, f.assignments, cache, logger)
	return f
}

func (f *fixture) register(t *testing.T, names ...string) {
	t.Helper()
	for _, n := range names {
		_, _, err := f.members.Register(context.Background(), domain.Member{Name: n})
		require.NoError(t, err)
	}
}

// importHymn 导入一首四声部曲目并返回其 id
func (f *fixture) importHymn(t *testing.T) string {
	t.Helper()
	songs, err := f.songs.Import(context.Background(),
		"Song Name,Part1_Long,Part1_Short,Part2_Long,Part2_Short\nHymn,Soprano,S,Alto,A")
	require.NoError(t, err)
	require.Len(t, songs, 1)
	return songs[0].ID
}

func strPtr(s string) *string { return &s }

func levelPtr(l domain.ReadinessLevel) *domain.ReadinessLevel { return &l }
