package aggregator_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	agg "github.com/vonm84/qah-app/internal/aggregator"
	"github.com/vonm84/qah-app/internal/domain"
)

func TestComputeBreakdown_Hymn(t *testing.T) {
	assignments := []domain.PartAssignment{
		{MemberName: "Alice", SongID: hymn.ID, Part: strPtr("Soprano"), ReadinessLevel: levelPtr(3)},
		{MemberName: "Bob", SongID: hymn.ID, Part: strPtr("Alto")},
		{MemberName: "Carol", SongID: hymn.ID, Part: strPtr("Soprano"), ReadinessLevel: levelPtr(1)},
	}

	b := agg.ComputeBreakdown(hymn, assignments)
	assert.Equal(t, 2, b.PartCount("Soprano"))
	assert.Equal(t, 1, b.PartCount("Alto"))
	assert.Equal(t, 1, b.Readiness.Count(1))
	assert.Equal(t, 1, b.Readiness.Count(3))
	assert.Equal(t, 1, b.Readiness.Unset)
	assert.Equal(t, 3, b.Total)
	assert.Equal(t, b.Total, b.Readiness.Sum())

	raw, err := json.Marshal(b.Readiness)
	require.NoError(t, err)
	assert.JSONEq(t, `{"1":1,"2":0,"3":1,"4":0,"5":0,"unset":1}`, string(raw))

	var back agg.ReadinessCounts
	require.NoError(t, json.Unmarshal(raw, &back))
	assert.Equal(t, b.Readiness, back)
}

func TestComputeBreakdown_PreSeededAndConserved(t *testing.T) {
	b := agg.ComputeBreakdown(hymn, nil)
	require.Len(t, b.PartCounts, 2)
	assert.Equal(t, "Soprano", b.PartCounts[0].Part)
	assert.Equal(t, 0, b.PartCounts[0].Count)
	assert.Equal(t, 0, b.Readiness.Sum())

	assignments := []domain.PartAssignment{
		{MemberName: "A", SongID: hymn.ID, Part: strPtr("Tenor"), ReadinessLevel: levelPtr(2)},
		{MemberName: "B", SongID: hymn.ID, ReadinessLevel: levelPtr(7)},
		{MemberName: "C", SongID: "other-song", Part: strPtr("Soprano"), ReadinessLevel: levelPtr(1)},
		{MemberName: "D", SongID: hymn.ID, Part: strPtr("Alto"), ReadinessLevel: levelPtr(5)},
	}
	b = agg.ComputeBreakdown(hymn, assignments)
	assert.Equal(t, 3, b.Total)
	assert.Equal(t, 1, b.Orphaned)
	assert.Equal(t, 1, b.Unassigned)
	assert.Equal(t, 0, b.PartCount("Soprano"))
	assert.Equal(t, 0, b.PartCount("Tenor"))
	assert.Equal(t, 1, b.PartCount("Alto"))
	assert.Equal(t, 1, b.Readiness.Unset)
	assert.Equal(t, b.Total, b.Readiness.Sum())
}

func TestComputeBreakdowns(t *testing.T) {
	anthem := domain.Song{ID: "song-anthem", Name: "Anthem", Parts: []domain.Part{{Long: "Bass", Short: "B"}}}
	assignments := []domain.PartAssignment{
		{MemberName: "A", SongID: anthem.ID, Part: strPtr("Bass")},
		{MemberName: "A", SongID: hymn.ID, Part: strPtr("Alto")},
	}
	out := agg.ComputeBreakdowns([]domain.Song{hymn, anthem}, assignments)
	require.Len(t, out, 2)
	assert.Equal(t, "Hymn", out[0].SongName)
	assert.Equal(t, 1, out[0].PartCount("Alto"))
	assert.Equal(t, 1, out[1].PartCount("Bass"))
}
