package aggregator

import (
	"sort"

	"github.com/vonm84/qah-app/internal/domain"
)

// RosterEntry is one attending member inside a part bucket.
type RosterEntry struct {
	Name              string                  `json:"name"`
	ReadinessLevel    *domain.ReadinessLevel  `json:"readiness_level,omitempty"`
	AttendanceStatus  domain.AttendanceStatus `json:"attendance_status"`
	AttendanceComment *string                 `json:"attendance_comment,omitempty"`
	AssignmentComment *string                 `json:"assignment_comment,omitempty"`
}

// PartGroup is the bucket of members singing one part of a song on one date.
// Orphaned buckets hold assignments whose part is no longer defined on the song.
type PartGroup struct {
	Part     string        `json:"part"`
	Short    string        `json:"short"`
	Orphaned bool          `json:"orphaned,omitempty"`
	Members  []RosterEntry `json:"members"`
}

// SongRoster is one song's part buckets on a date: defined parts in song
// order, then orphaned parts in first-seen order.
type SongRoster struct {
	SongID     string      `json:"song_id"`
	SongName   string      `json:"song_name"`
	PartGroups []PartGroup `json:"part_groups"`
}

// Group finds the bucket for a part long name.
func (s SongRoster) Group(part string) (PartGroup, bool) {
	for _, g := range s.PartGroups {
		if g.Part == part {
			return g, true
		}
	}
	return PartGroup{}, false
}

// DateRoster is the roster of one rehearsal date.
type DateRoster struct {
	Date  domain.Date  `json:"date"`
	Songs []SongRoster `json:"songs"`
}

// Song finds the roster of a song by id.
func (d DateRoster) Song(id string) (SongRoster, bool) {
	for _, s := range d.Songs {
		if s.SongID == id {
			return s, true
		}
	}
	return SongRoster{}, false
}

// AttendeeCount is the number of distinct members listed anywhere on the date.
func (d DateRoster) AttendeeCount() int {
	seen := map[string]struct{}{}
	for _, s := range d.Songs {
		for _, g := range s.PartGroups {
			for _, m := range g.Members {
				seen[m.Name] = struct{}{}
			}
		}
	}
	return len(seen)
}

type memberDate struct {
	member string
	date   domain.Date
}

// BuildRoster joins dates, songs, attendance and part assignments into the
// per-date, per-song, per-part roster. A member appears under a date only with
// an assigned part and a yes or maybe answer for that date.
// Inputs are not modified.
func BuildRoster(
	dates []domain.RehearsalDate,
	songs []domain.Song,
	attendance []domain.Attendance,
	assignments []domain.PartAssignment,
) []DateRoster {
	answers := make(map[memberDate]domain.Attendance, len(attendance))
	for _, a := range attendance {
		answers[memberDate{member: a.MemberName, date: a.Date}] = a
	}

	bySong := make(map[string][]domain.PartAssignment)
	for _, a := range assignments {
		if a.Part == nil {
			continue
		}
		bySong[a.SongID] = append(bySong[a.SongID], a)
	}
	for id := range bySong {
		list := bySong[id]
		sort.SliceStable(list, func(i, j int) bool { return list[i].MemberName < list[j].MemberName })
	}

	ordered := make([]domain.Song, len(songs))
	copy(ordered, songs)
	sort.SliceStable(ordered, func(i, j int) bool {
		if ordered[i].Name != ordered[j].Name {
			return ordered[i].Name < ordered[j].Name
		}
		return ordered[i].ID < ordered[j].ID
	})

	out := make([]DateRoster, 0, len(dates))
	for _, d := range dates {
		dr := DateRoster{Date: d.Date, Songs: make([]SongRoster, 0, len(ordered))}
		for _, song := range ordered {
			dr.Songs = append(dr.Songs, buildSongRoster(song, d.Date, bySong[song.ID], answers))
		}
		out = append(out, dr)
	}
	return out
}

func buildSongRoster(
	song domain.Song,
	date domain.Date,
	assignments []domain.PartAssignment,
	answers map[memberDate]domain.Attendance,
) SongRoster {
	sr := SongRoster{
		SongID:     song.ID,
		SongName:   song.Name,
		PartGroups: make([]PartGroup, 0, len(song.Parts)),
	}
	index := make(map[string]int, len(song.Parts))
	for _, p := range song.Parts {
		if _, dup := index[p.Long]; dup {
			continue
		}
		index[p.Long] = len(sr.PartGroups)
		sr.PartGroups = append(sr.PartGroups, PartGroup{Part: p.Long, Short: p.Short, Members: []RosterEntry{}})
	}

	for _, a := range assignments {
		answer, ok := answers[memberDate{member: a.MemberName, date: date}]
		if !ok || !answer.Status.Attending() {
			continue
		}
		part := *a.Part
		i, ok := index[part]
		if !ok {
			i = len(sr.PartGroups)
			index[part] = i
			sr.PartGroups = append(sr.PartGroups, PartGroup{Part: part, Short: part, Orphaned: true, Members: []RosterEntry{}})
		}
		sr.PartGroups[i].Members = append(sr.PartGroups[i].Members, RosterEntry{
			Name:              a.MemberName,
			ReadinessLevel:    a.ReadinessLevel,
			AttendanceStatus:  answer.Status,
			AttendanceComment: answer.Comment,
			AssignmentComment: a.Comment,
		})
	}
	return sr
}
