package aggregator

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/vonm84/qah-app/internal/domain"
)

// PartCount is the number of members assigned to one defined part.
type PartCount struct {
	Part  string `json:"part"`
	Short string `json:"short"`
	Count int    `json:"count"`
}

// ReadinessCounts tallies readiness levels 1..5 plus assignments with no (or an unknown) level.
// JSON shape: {"1":n,"2":n,"3":n,"4":n,"5":n,"unset":n}.
type ReadinessCounts struct {
	ByLevel map[domain.ReadinessLevel]int
	Unset   int
}

func newReadinessCounts() ReadinessCounts {
	rc := ReadinessCounts{ByLevel: make(map[domain.ReadinessLevel]int, 5)}
	for l := domain.ReadinessKnowsWell; l <= domain.ReadinessNotStarted; l++ {
		rc.ByLevel[l] = 0
	}
	return rc
}

// Count returns the tally for level l.
func (rc ReadinessCounts) Count(l domain.ReadinessLevel) int { return rc.ByLevel[l] }

// Sum is the total over every level plus unset.
func (rc ReadinessCounts) Sum() int {
	n := rc.Unset
	for _, c := range rc.ByLevel {
		n += c
	}
	return n
}

func (rc ReadinessCounts) MarshalJSON() ([]byte, error) {
	m := make(map[string]int, 6)
	for l := domain.ReadinessKnowsWell; l <= domain.ReadinessNotStarted; l++ {
		m[strconv.Itoa(int(l))] = rc.ByLevel[l]
	}
	m["unset"] = rc.Unset
	return json.Marshal(m)
}

func (rc *ReadinessCounts) UnmarshalJSON(b []byte) error {
	var m map[string]int
	if err := json.Unmarshal(b, &m); err != nil {
		return err
	}
	*rc = newReadinessCounts()
	for k, v := range m {
		if k == "unset" {
			rc.Unset = v
			continue
		}
		n, err := strconv.Atoi(k)
		if err != nil || !domain.ReadinessLevel(n).Valid() {
			return fmt.Errorf("unknown readiness key %q", k)
		}
		rc.ByLevel[domain.ReadinessLevel(n)] = v
	}
	return nil
}

// Breakdown is the per-song summary: members per defined part and the readiness spread.
type Breakdown struct {
	SongID     string          `json:"song_id"`
	SongName   string          `json:"song_name"`
	PartCounts []PartCount     `json:"part_counts"`
	Readiness  ReadinessCounts `json:"readiness_counts"`

	Total      int `json:"total"`
	Unassigned int `json:"unassigned"`
	Orphaned   int `json:"orphaned"`
}

// PartCount returns the count for a defined part, 0 when the part is unknown.
func (b Breakdown) PartCount(part string) int {
	for _, pc := range b.PartCounts {
		if pc.Part == part {
			return pc.Count
		}
	}
	return 0
}

// ComputeBreakdown summarises the assignments of one song. Assignments for
// other songs are ignored. Every counted assignment lands in exactly one
// readiness bucket, so Readiness.Sum() == Total.
func ComputeBreakdown(song domain.Song, assignments []domain.PartAssignment) Breakdown {
	b := Breakdown{
		SongID:     song.ID,
		SongName:   song.Name,
		PartCounts: make([]PartCount, 0, len(song.Parts)),
		Readiness:  newReadinessCounts(),
	}
	index := make(map[string]int, len(song.Parts))
	for _, p := range song.Parts {
		if _, dup := index[p.Long]; dup {
			continue
		}
		index[p.Long] = len(b.PartCounts)
		b.PartCounts = append(b.PartCounts, PartCount{Part: p.Long, Short: p.Short})
	}

	for _, a := range assignments {
		if a.SongID != song.ID {
			continue
		}
		b.Total++

		switch {
		case a.Part == nil:
			b.Unassigned++
		default:
			if i, ok := index[*a.Part]; ok {
				b.PartCounts[i].Count++
			} else {
				b.Orphaned++
			}
		}

		if a.ReadinessLevel != nil && a.ReadinessLevel.Valid() {
			b.Readiness.ByLevel[*a.ReadinessLevel]++
		} else {
			b.Readiness.Unset++
		}
	}
	return b
}

// ComputeBreakdowns returns one breakdown per song, in the order given.
func ComputeBreakdowns(songs []domain.Song, assignments []domain.PartAssignment) []Breakdown {
	bySong := make(map[string][]domain.PartAssignment)
	for _, a := range assignments {
		bySong[a.SongID] = append(bySong[a.SongID], a)
	}
	out := make([]Breakdown, 0, len(songs))
	for _, s := range songs {
		out = append(out, ComputeBreakdown(s, bySong[s.ID]))
	}
	return out
}
