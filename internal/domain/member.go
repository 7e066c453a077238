package domain

import (
	"strings"
	"time"
)

// Language is a member's UI language preference.
type Language string

const (
	LanguageEN Language = "en"
	LanguagePT Language = "pt"
)

// Valid reports whether l is a supported language.
func (l Language) Valid() bool {
	return l == LanguageEN || l == LanguagePT
}

// Member 成员（对应 members 表）。Name is the primary key; there is no surrogate id.
type Member struct {
	Name          string   `json:"name" db:"name"`
	Language      Language `json:"language" db:"language"`
	PronounsEn    string   `json:"pronouns_en" db:"pronouns_en"`
	PronounsPt    string   `json:"pronouns_pt" db:"pronouns_pt"`
	BirthdayDay   *int     `json:"birthday_day,omitempty" db:"birthday_day"`
	BirthdayMonth *int     `json:"birthday_month,omitempty" db:"birthday_month"`

	// IsAdmin is derived from the reserved admin name, never stored.
	IsAdmin bool `json:"is_admin"`
}

// HasBirthday reports whether both birthday day and month are set.
func (m Member) HasBirthday() bool {
	return m.BirthdayDay != nil && m.BirthdayMonth != nil
}

// Pronouns returns the pronouns for the requested language.
func (m Member) Pronouns(lang Language) string {
	if lang == LanguagePT {
		return m.PronounsPt
	}
	return m.PronounsEn
}

// Normalize trims text fields, defaults the language and validates the birthday.
func (m *Member) Normalize() error {
	m.Name = strings.TrimSpace(m.Name)
	m.PronounsEn = strings.TrimSpace(m.PronounsEn)
	m.PronounsPt = strings.TrimSpace(m.PronounsPt)
	if m.Name == "" {
		return Invalid("name", "is required")
	}
	if m.Language == "" {
		m.Language = LanguageEN
	}
	if !m.Language.Valid() {
		return Invalid("language", "must be en or pt")
	}
	if (m.BirthdayDay == nil) != (m.BirthdayMonth == nil) {
		return Invalid("birthday", "day and month must be set together")
	}
	if m.HasBirthday() {
		day, month := *m.BirthdayDay, *m.BirthdayMonth
		if month < 1 || month > 12 {
			return Invalid("birthday_month", "must be between 1 and 12")
		}
		// 2000 is a leap year, so 29 February is accepted
		if day < 1 || day > daysIn(time.Month(month), 2000) {
			return Invalid("birthday_day", "is not a day of that month")
		}
	}
	return nil
}

func daysIn(month time.Month, year int) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}
