package aggregator

import (
	"github.com/vonm84/qah-app/internal/domain"
)

// PartsGridCell is one member's standing on one song.
type PartsGridCell struct {
	Part           *string                `json:"part,omitempty"` // short name, long name when orphaned
	PartLong       *string                `json:"part_long,omitempty"`
	Orphaned       bool                   `json:"orphaned,omitempty"`
	ReadinessLevel *domain.ReadinessLevel `json:"readiness_level,omitempty"`
	Color          string                 `json:"color"`
	HasComment     bool                   `json:"has_comment"`
	Comment        *string                `json:"comment,omitempty"`
}

// PartsGridRow is one song; Cells line up with PartsGrid.Members.
type PartsGridRow struct {
	SongID   string          `json:"song_id"`
	SongName string          `json:"song_name"`
	Cells    []PartsGridCell `json:"cells"`
}

// PartsGrid is the songs x members overview of parts and readiness.
type PartsGrid struct {
	Members []string       `json:"members"`
	Rows    []PartsGridRow `json:"rows"`
}

// BuildPartsGrid lays songs (rows) against members (columns). Songs and
// members are used in the order given.
func BuildPartsGrid(songs []domain.Song, members []domain.Member, assignments []domain.PartAssignment) PartsGrid {
	type key struct{ member, song string }
	byKey := make(map[key]domain.PartAssignment, len(assignments))
	for _, a := range assignments {
		byKey[key{a.MemberName, a.SongID}] = a
	}

	grid := PartsGrid{
		Members: make([]string, len(members)),
		Rows:    make([]PartsGridRow, 0, len(songs)),
	}
	for i, m := range members {
		grid.Members[i] = m.Name
	}

	for _, s := range songs {
		row := PartsGridRow{SongID: s.ID, SongName: s.Name, Cells: make([]PartsGridCell, len(members))}
		for i, m := range members {
			a, ok := byKey[key{m.Name, s.ID}]
			if !ok {
				row.Cells[i] = PartsGridCell{Color: domain.NoReadinessColor}
				continue
			}
			cell := PartsGridCell{
				PartLong:       a.Part,
				ReadinessLevel: a.ReadinessLevel,
				Color:          domain.ReadinessColor(a.ReadinessLevel),
				HasComment:     a.Comment != nil,
				Comment:        a.Comment,
			}
			if a.Part != nil {
				if p, defined := s.PartByLong(*a.Part); defined {
					short := p.Short
					cell.Part = &short
				} else {
					long := *a.Part
					cell.Part = &long
					cell.Orphaned = true
				}
			}
			row.Cells[i] = cell
		}
		grid.Rows = append(grid.Rows, row)
	}
	return grid
}

// AttendanceCell is one member's answer for one date; Status is empty when unanswered.
type AttendanceCell struct {
	Status  domain.AttendanceStatus `json:"status,omitempty"`
	Comment *string                 `json:"comment,omitempty"`
}

// AttendanceTotals counts the answers for one date.
type AttendanceTotals struct {
	Yes      int `json:"yes"`
	Maybe    int `json:"maybe"`
	No       int `json:"no"`
	NoAnswer int `json:"no_answer"`
}

type AttendanceChartRow struct {
	Member string           `json:"member"`
	Cells  []AttendanceCell `json:"cells"`
}

// AttendanceChart is the members x dates answer matrix.
type AttendanceChart struct {
	Dates  []domain.Date        `json:"dates"`
	Rows   []AttendanceChartRow `json:"rows"`
	Totals []AttendanceTotals   `json:"totals"`
}

// BuildAttendanceChart lays members (rows) against dates (columns).
func BuildAttendanceChart(dates []domain.RehearsalDate, members []domain.Member, attendance []domain.Attendance) AttendanceChart {
	answers := make(map[memberDate]domain.Attendance, len(attendance))
	for _, a := range attendance {
		answers[memberDate{member: a.MemberName, date: a.Date}] = a
	}

	chart := AttendanceChart{
		Dates:  make([]domain.Date, len(dates)),
		Rows:   make([]AttendanceChartRow, 0, len(members)),
		Totals: make([]AttendanceTotals, len(dates)),
	}
	for i, d := range dates {
		chart.Dates[i] = d.Date
	}

	for _, m := range members {
		row := AttendanceChartRow{Member: m.Name, Cells: make([]AttendanceCell, len(dates))}
		for i, d := range dates {
			a, ok := answers[memberDate{member: m.Name, date: d.Date}]
			if !ok {
				chart.Totals[i].NoAnswer++
				continue
			}
			row.Cells[i] = AttendanceCell{Status: a.Status, Comment: a.Comment}
			switch a.Status {
			case domain.AttendanceYes:
				chart.Totals[i].Yes++
			case domain.AttendanceMaybe:
				chart.Totals[i].Maybe++
			case domain.AttendanceNo:
				chart.Totals[i].No++
			}
		}
		chart.Rows = append(chart.Rows, row)
	}
	return chart
}
