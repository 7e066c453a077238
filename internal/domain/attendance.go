package domain

import "time"

// AttendanceStatus is a member's answer for one rehearsal date.
type AttendanceStatus string

const (
	AttendanceYes   AttendanceStatus = "yes"
	AttendanceNo    AttendanceStatus = "no"
	AttendanceMaybe AttendanceStatus = "maybe"
)

func (s AttendanceStatus) Valid() bool {
	switch s {
	case AttendanceYes, AttendanceNo, AttendanceMaybe:
		return true
	}
	return false
}

// Attending reports whether the member is expected at the rehearsal.
func (s AttendanceStatus) Attending() bool {
	return s == AttendanceYes || s == AttendanceMaybe
}

// Attendance 出勤记录，unique on (member_name, date).
type Attendance struct {
	MemberName string           `json:"member_name" db:"member_name"`
	Date       Date             `json:"date" db:"date"`
	Status     AttendanceStatus `json:"status" db:"status"`
	Comment    *string          `json:"comment,omitempty" db:"comment"`
	UpdatedAt  time.Time        `json:"updated_at" db:"updated_at"`
}

// Normalize validates the record and drops the comment unless status is maybe.
// A maybe answer must carry a non-blank comment.
func (a *Attendance) Normalize() error {
	if a.MemberName == "" {
		return Invalid("member_name", "is required")
	}
	if a.Date.IsZero() {
		return Invalid("date", "is required")
	}
	if !a.Status.Valid() {
		return Invalid("status", "must be yes, no or maybe")
	}
	if a.Status != AttendanceMaybe {
		a.Comment = nil
		return nil
	}
	a.Comment = TrimOptional(a.Comment)
	if a.Comment == nil {
		return Invalid("comment", "explain why you might not come")
	}
	return nil
}
