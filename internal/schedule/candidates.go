package schedule

import (
	"time"

	"github.com/vonm84/qah-app/internal/domain"
)

// Candidates returns every date on weekday in today's month and the month
// after it, keeping only those on or after today. Ascending, no duplicates.
func Candidates(today domain.Date, weekday time.Weekday) []domain.Date {
	var out []domain.Date
	for offset := 0; offset < 2; offset++ {
		first := domain.NewDate(today.Year, today.Month+time.Month(offset), 1)
		shift := (int(weekday) - int(first.Weekday()) + 7) % 7
		for d := first.AddDays(shift); d.Month == first.Month; d = d.AddDays(7) {
			if !d.Before(today) {
				out = append(out, d)
			}
		}
	}
	return out
}
