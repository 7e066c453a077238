// Package export builds the leader's rehearsal planning workbook.
package export

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/vonm84/qah-app/internal/aggregator"
	"github.com/vonm84/qah-app/internal/domain"
)

const (
	SheetRoster     = "Roster"
	SheetBreakdown  = "Breakdown"
	SheetPartsGrid  = "Parts Grid"
	SheetAttendance = "Attendance"
)

// Workbook is everything the export needs, already aggregated.
type Workbook struct {
	Roster     []aggregator.DateRoster
	Breakdowns []aggregator.Breakdown
	PartsGrid  aggregator.PartsGrid
	Attendance aggregator.AttendanceChart
}

type sheetWriter struct {
	f           *excelize.File
	headerStyle int
	fillStyles  map[string]int // colour -> style id
}

// Generate renders the workbook as .xlsx bytes.
func Generate(w Workbook) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	sw := &sheetWriter{f: f, fillStyles: map[string]int{}}
	var err error
	sw.headerStyle, err = f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#E6F3FF"}, Pattern: 1},
		Border: []excelize.Border{
			{Type: "left", Color: "000000", Style: 1},
			{Type: "top", Color: "000000", Style: 1},
			{Type: "bottom", Color: "000000", Style: 1},
			{Type: "right", Color: "000000", Style: 1},
		},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create header style: %w", err)
	}

	steps := []struct {
		sheet string
		fill  func(string) error
	}{
		{SheetRoster, func(s string) error { return sw.writeRoster(s, w.Roster) }},
		{SheetBreakdown, func(s string) error { return sw.writeBreakdown(s, w.Breakdowns) }},
		{SheetPartsGrid, func(s string) error { return sw.writePartsGrid(s, w.PartsGrid) }},
		{SheetAttendance, func(s string) error { return sw.writeAttendance(s, w.Attendance) }},
	}
	for _, step := range steps {
		if _, err := f.NewSheet(step.sheet); err != nil {
			return nil, fmt.Errorf("failed to create sheet %s: %w", step.sheet, err)
		}
		if err := step.fill(step.sheet); err != nil {
			return nil, fmt.Errorf("failed to write sheet %s: %w", step.sheet, err)
		}
	}
	// 删除默认的 Sheet1
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return nil, fmt.Errorf("failed to delete default sheet: %w", err)
	}
	if index, err := f.GetSheetIndex(SheetRoster); err == nil {
		f.SetActiveSheet(index)
	}

	var buf bytes.Buffer
	if _, err := f.WriteTo(&buf); err != nil {
		return nil, fmt.Errorf("failed to write to buffer: %w", err)
	}
	return buf.Bytes(), nil
}

// set writes value into (col, row); empty strings leave the cell blank.
func (sw *sheetWriter) set(sheet string, col, row int, value any) error {
	if s, ok := value.(string); ok && s == "" {
		return nil
	}
	cell, err := excelize.CoordinatesToCellName(col, row)
	if err != nil {
		return err
	}
	return sw.f.SetCellValue(sheet, cell, value)
}

func (sw *sheetWriter) header(sheet string, headers []string, widths ...float64) error {
	for i, h := range headers {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return err
		}
		if err := sw.f.SetCellValue(sheet, cell, h); err != nil {
			return err
		}
		if err := sw.f.SetCellStyle(sheet, cell, cell, sw.headerStyle); err != nil {
			return err
		}
		if i < len(widths) {
			col, _ := excelize.ColumnNumberToName(i + 1)
			if err := sw.f.SetColWidth(sheet, col, col, widths[i]); err != nil {
				return err
			}
		}
	}
	// 冻结表头
	return sw.f.SetPanes(sheet, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	})
}

func (sw *sheetWriter) fill(sheet string, col, row int, color string) error {
	style, ok := sw.fillStyles[color]
	if !ok {
		var err error
		style, err = sw.f.NewStyle(&excelize.Style{
			Fill:      excelize.Fill{Type: "pattern", Color: []string{color}, Pattern: 1},
			Alignment: &excelize.Alignment{Horizontal: "center"},
		})
		if err != nil {
			return err
		}
		sw.fillStyles[color] = style
	}
	cell, err := excelize.CoordinatesToCellName(col, row)
	if err != nil {
		return err
	}
	return sw.f.SetCellStyle(sheet, cell, cell, style)
}

// Roster: one row per date/song/part with the attending members.
func (sw *sheetWriter) writeRoster(sheet string, roster []aggregator.DateRoster) error {
	if err := sw.header(sheet, []string{"Date", "Song", "Part", "Count", "Members"}, 12, 30, 18, 8, 60); err != nil {
		return err
	}
	row := 2
	for _, d := range roster {
		for _, s := range d.Songs {
			for _, g := range s.PartGroups {
				names := make([]string, len(g.Members))
				for i, m := range g.Members {
					names[i] = m.Name
					if m.AttendanceStatus == domain.AttendanceMaybe {
						names[i] += " (?)"
					}
				}
				part := g.Part
				if g.Orphaned {
					part += " *"
				}
				values := []any{d.Date.String(), s.SongName, part, len(g.Members), strings.Join(names, ", ")}
				for col, v := range values {
					if err := sw.set(sheet, col+1, row, v); err != nil {
						return err
					}
				}
				row++
			}
		}
	}
	return nil
}

func (sw *sheetWriter) writeBreakdown(sheet string, breakdowns []aggregator.Breakdown) error {
	headers := []string{"Song", "Parts"}
	levels := domain.ReadinessLevels()
	for _, l := range levels {
		headers = append(headers, fmt.Sprintf("Readiness %d", l.ID))
	}
	headers = append(headers, "Unset", "Total", "Unassigned", "Orphaned")
	if err := sw.header(sheet, headers, 30, 40); err != nil {
		return err
	}
	for _, l := range levels {
		if err := sw.fill(sheet, 2+int(l.ID), 1, l.Color); err != nil {
			return err
		}
	}

	for i, b := range breakdowns {
		row := i + 2
		parts := make([]string, len(b.PartCounts))
		for j, pc := range b.PartCounts {
			parts[j] = fmt.Sprintf("%s: %d", pc.Part, pc.Count)
		}
		values := []any{b.SongName, strings.Join(parts, ", ")}
		for _, l := range levels {
			values = append(values, b.Readiness.Count(l.ID))
		}
		values = append(values, b.Readiness.Unset, b.Total, b.Unassigned, b.Orphaned)
		for col, v := range values {
			if err := sw.set(sheet, col+1, row, v); err != nil {
				return err
			}
		}
	}
	return nil
}

func (sw *sheetWriter) writePartsGrid(sheet string, grid aggregator.PartsGrid) error {
	if err := sw.header(sheet, append([]string{"Song"}, grid.Members...), 30); err != nil {
		return err
	}
	for i, r := range grid.Rows {
		row := i + 2
		if err := sw.set(sheet, 1, row, r.SongName); err != nil {
			return err
		}
		for j, c := range r.Cells {
			col := j + 2
			if c.Part != nil {
				text := *c.Part
				if c.HasComment {
					text += " •"
				}
				if err := sw.set(sheet, col, row, text); err != nil {
					return err
				}
			}
			if c.ReadinessLevel != nil {
				if err := sw.fill(sheet, col, row, c.Color); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

func (sw *sheetWriter) writeAttendance(sheet string, chart aggregator.AttendanceChart) error {
	headers := []string{"Member"}
	for _, d := range chart.Dates {
		headers = append(headers, d.String())
	}
	if err := sw.header(sheet, headers, 20); err != nil {
		return err
	}
	for i, r := range chart.Rows {
		row := i + 2
		if err := sw.set(sheet, 1, row, r.Member); err != nil {
			return err
		}
		for j, c := range r.Cells {
			if c.Status == "" {
				continue
			}
			text := string(c.Status)
			if c.Comment != nil {
				text += ": " + *c.Comment
			}
			if err := sw.set(sheet, j+2, row, text); err != nil {
				return err
			}
		}
	}

	totalsRow := len(chart.Rows) + 2
	if err := sw.set(sheet, 1, totalsRow, "Attending (yes + maybe)"); err != nil {
		return err
	}
	for j, t := range chart.Totals {
		if err := sw.set(sheet, j+2, totalsRow, t.Yes+t.Maybe); err != nil {
			return err
		}
	}
	return nil
}
