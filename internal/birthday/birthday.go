// Package birthday ranks members by how soon their next birthday is.
package birthday

import (
	"fmt"
	"sort"
	"time"

	"github.com/vonm84/qah-app/internal/domain"
)

// Entry is a member with the days left until their next birthday.
type Entry struct {
	Member    domain.Member `json:"member"`
	Next      domain.Date   `json:"next"`
	DaysUntil int           `json:"days_until"`
	Label     Label         `json:"label"`
}

// NextOccurrence is the first (month, day) on or after today. Days that do not
// exist in the year roll forward (29 February becomes 1 March).
func NextOccurrence(today domain.Date, month time.Month, day int) domain.Date {
	next := domain.NewDate(today.Year, month, day)
	if next.Before(today) {
		next = domain.NewDate(today.Year+1, month, day)
	}
	return next
}

// Rank keeps members with both birthday day and month and orders them by days
// until the next birthday. Ties keep the input order.
func Rank(members []domain.Member, today domain.Date) []Entry {
	out := make([]Entry, 0, len(members))
	for _, m := range members {
		if !m.HasBirthday() {
			continue
		}
		next := NextOccurrence(today, time.Month(*m.BirthdayMonth), *m.BirthdayDay)
		days := today.DaysUntil(next)
		out = append(out, Entry{Member: m, Next: next, DaysUntil: days, Label: RelativeLabel(days)})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].DaysUntil < out[j].DaysUntil })
	return out
}

// LabelKind classifies how close a birthday is.
type LabelKind string

const (
	LabelNone     LabelKind = ""
	LabelToday    LabelKind = "today"
	LabelTomorrow LabelKind = "tomorrow"
	LabelInDays   LabelKind = "in_days"
)

// Label is the relative "today / tomorrow / in N days" tag.
type Label struct {
	Kind LabelKind `json:"kind,omitempty"`
	Days int       `json:"days,omitempty"`
}

// RelativeLabel maps 0 to today, 1 to tomorrow, up to 7 to "in N days" and
// anything further to no label.
func RelativeLabel(days int) Label {
	switch {
	case days == 0:
		return Label{Kind: LabelToday}
	case days == 1:
		return Label{Kind: LabelTomorrow, Days: 1}
	case days > 1 && days <= 7:
		return Label{Kind: LabelInDays, Days: days}
	default:
		return Label{}
	}
}

// Text renders the label; "" for LabelNone.
func (l Label) Text(lang domain.Language) string {
	pt := lang == domain.LanguagePT
	switch l.Kind {
	case LabelToday:
		if pt {
			return "Hoje!"
		}
		return "Today!"
	case LabelTomorrow:
		if pt {
			return "Amanhã"
		}
		return "Tomorrow"
	case LabelInDays:
		if pt {
			return fmt.Sprintf("em %d dias", l.Days)
		}
		return fmt.Sprintf("in %d days", l.Days)
	}
	return ""
}
