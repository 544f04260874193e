package repository

import (
	"context"
	"database/sql"
)

// ReminderRepo owns the reminder_emails_sent ledger.  Rows are written once
// per (session, registration, kind) tuple and never updated or deleted; the
// unique key on that tuple is what makes the dispatch loop idempotent.
type ReminderRepo struct {
	db *sql.DB
}

// NewReminderRepo constructs a ReminderRepo bound to the given database.
func NewReminderRepo(db *sql.DB) *ReminderRepo { return &ReminderRepo{db: db} }

// HasBeenSent reports whether a reminder was already dispatched for the
// identity tuple.
func (r *ReminderRepo) HasBeenSent(ctx context.Context, sessionName string, registrationID int64, kind string) (bool, error) {
	const q = `SELECT COUNT(*) FROM reminder_emails_sent
	           WHERE session_name = ? AND registration_id = ? AND registration_type = ?`
	var n int
	if err := r.db.QueryRowContext(ctx, q, sessionName, registrationID, kind).Scan(&n); err != nil {
		return false, err
	}
	return n > 0, nil
}

// RecordSent inserts a ledger row for the identity tuple.  A duplicate-key
// violation means another invocation recorded the same send between our check
// and this write; that outcome is absorbed silently, so RecordSent is
// effectively exactly-once no matter how many times it is called.
func (r *ReminderRepo) RecordSent(ctx context.Context, sessionName string, registrationID int64, kind, email string) error {
	const q = `INSERT INTO reminder_emails_sent (session_name, registration_id, registration_type, email)
	           VALUES (?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, q, sessionName, registrationID, kind, email)
	if err != nil && isDuplicateKey(err) {
		return nil
	}
	return err
}
