// Package songcsv converts the song list to and from the leader's plain CSV
// sheet: one song per line, name followed by long/short part pairs.
// Cells are never quoted, so names and parts cannot contain commas.
package songcsv

import (
	"fmt"
	"strings"

	"github.com/vonm84/qah-app/internal/domain"
)

// Header is the first line of every exported sheet.
const Header = "Song Name,Part1_Long,Part1_Short,Part2_Long,Part2_Short,Part3_Long,Part3_Short,Part4_Long,Part4_Short"

// Serialize renders songs in the given order. Lines are joined with "\n" and
// there is no trailing newline; an empty list yields the header alone.
func Serialize(songs []domain.Song) string {
	var b strings.Builder
	b.WriteString(Header)
	for _, s := range songs {
		b.WriteByte('\n')
		b.WriteString(s.Name)
		for _, p := range s.Parts {
			b.WriteByte(',')
			b.WriteString(p.Long)
			b.WriteByte(',')
			b.WriteString(p.Short)
		}
	}
	return b.String()
}

// Parse reads a sheet produced by Serialize or typed by hand. The first line
// is the header and is skipped; blank lines are ignored. A part is kept only
// when both its long and short cells are non-empty, so a trailing unpaired
// cell is dropped. Songs come back without ids.
func Parse(text string) ([]domain.Song, error) {
	text = strings.TrimSpace(strings.ReplaceAll(text, "\r", ""))
	lines := strings.Split(text, "\n")
	if len(lines) < 2 {
		return []domain.Song{}, nil
	}

	songs := make([]domain.Song, 0, len(lines)-1)
	for i, line := range lines[1:] {
		if strings.TrimSpace(line) == "" {
			continue
		}
		cells := strings.Split(line, ",")
		for j := range cells {
			cells[j] = strings.TrimSpace(cells[j])
		}
		if cells[0] == "" {
			return nil, domain.Invalid("csv", fmt.Sprintf("line %d: song name is empty", i+2))
		}

		song := domain.Song{Name: cells[0], Parts: []domain.Part{}}
		for k := 1; k+1 < len(cells); k += 2 {
			if cells[k] != "" && cells[k+1] != "" {
				song.Parts = append(song.Parts, domain.Part{Long: cells[k], Short: cells[k+1]})
			}
		}
		songs = append(songs, song)
	}
	return songs, nil
}
