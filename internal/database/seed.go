package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// defaultSession describes one seeded row.  Seeding only runs against an
// empty sessions table so admin edits are never clobbered on restart.
type defaultSession struct {
	name     string
	audience string
	limit    int
	order    int
	date     time.Time
}

// SeedSessions inserts the default session catalog when no sessions exist.
// Dates land on the next occurrences of the configured weekday slots so a
// fresh install has something registrable immediately.
func SeedSessions(ctx context.Context, db *sql.DB) error {
	var n int
	if err := db.QueryRowContext(ctx, `SELECT COUNT(*) FROM sessions`).Scan(&n); err != nil {
		return fmt.Errorf("seed: count sessions: %w", err)
	}
	if n > 0 {
		return nil
	}

	defaults := []defaultSession{
		{name: "Thursday Evening 6:00-8:30p", audience: "both", limit: 450, order: 1, date: nextWeekday(time.Thursday, 18)},
		{name: "Friday Evening 6:00-8:30p", audience: "both", limit: 450, order: 2, date: nextWeekday(time.Friday, 18)},
		{name: "Saturday Morning 9:00-11:30a", audience: "member", limit: 300, order: 3, date: nextWeekday(time.Saturday, 9)},
	}
	const q = `INSERT INTO sessions (name, session_type, child_limit, is_active, display_order, session_date)
	           VALUES (?, ?, ?, 1, ?, ?)`
	for _, s := range defaults {
		if _, err := db.ExecContext(ctx, q, s.name, s.audience, s.limit, s.order, s.date.UTC()); err != nil {
			return fmt.Errorf("seed: insert %q: %w", s.name, err)
		}
	}
	return nil
}

// nextWeekday returns the next occurrence of the given weekday at the given
// local hour, at least one day in the future.
func nextWeekday(day time.Weekday, hour int) time.Time {
	now := time.Now()
	t := time.Date(now.Year(), now.Month(), now.Day(), hour, 0, 0, 0, time.Local)
	for t.Before(now.Add(24*time.Hour)) || t.Weekday() != day {
		t = t.Add(24 * time.Hour)
	}
	return t
}
