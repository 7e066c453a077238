package domain

import "time"

// PartAssignment 声部分配，unique on (member_name, song_id).
// Part holds the long name of one of the song's parts; it may go stale when
// the song's parts are edited, and readers must tolerate that.
type PartAssignment struct {
	MemberName     string          `json:"member_name" db:"member_name"`
	SongID         string          `json:"song_id" db:"song_id"`
	Part           *string         `json:"part,omitempty" db:"part"`
	ReadinessLevel *ReadinessLevel `json:"readiness_level,omitempty" db:"readiness_level"`
	Comment        *string         `json:"comments,omitempty" db:"comments"`
	UpdatedAt      time.Time       `json:"updated_at" db:"updated_at"`
}

// Normalize trims optional text and validates the readiness range.
func (a *PartAssignment) Normalize() error {
	if a.MemberName == "" {
		return Invalid("member_name", "is required")
	}
	if a.SongID == "" {
		return Invalid("song_id", "is required")
	}
	a.Part = TrimOptional(a.Part)
	a.Comment = TrimOptional(a.Comment)
	if a.ReadinessLevel != nil && !a.ReadinessLevel.Valid() {
		return Invalid("readiness_level", "must be between 1 and 5")
	}
	return nil
}
