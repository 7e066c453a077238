package domain

// RehearsalDate is one generated weekly rehearsal. Enabled is leader-controlled
// and authoritative once the row exists.
type RehearsalDate struct {
	Date    Date `json:"date" db:"date"`
	Enabled bool `json:"enabled" db:"enabled"`
}
