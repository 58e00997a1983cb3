package models

import "time"

// CheckInMethod is the channel used to register a check-in.
type CheckInMethod string

const (
	CheckInMethodQR     CheckInMethod = "QR"
	CheckInMethodManual CheckInMethod = "manual"
	CheckInMethodNFC    CheckInMethod = "NFC"
)

// CheckIn records a user arriving at an event.
type CheckIn struct {
	ID          int64         `db:"id" json:"id"`
	EventID     string        `db:"event_id" json:"event_id"`
	UserID      string        `db:"user_id" json:"user_id"`
	CheckedInAt time.Time     `db:"checked_in_at" json:"checked_in_at"`
	Method      CheckInMethod `db:"method" json:"method"`
	Valid       bool          `db:"valid" json:"valid"`
	CreatedAt   time.Time     `db:"created_at" json:"created_at"`
	Origin      string        `db:"origin" json:"origin"`
}
