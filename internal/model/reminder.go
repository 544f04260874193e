package model

import "time"

// ReminderRecord marks that a reminder email was dispatched to one registrant
// for one session.  The (SessionName, RegistrationID, Kind) tuple is unique;
// that constraint is the sole mechanism preventing duplicate sends.  Records
// are written after a successful send and never updated or deleted.
type ReminderRecord struct {
	ID             int64
	SessionName    string
	RegistrationID int64
	Kind           string
	Email          string
	CreatedAt      time.Time
}
