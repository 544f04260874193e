// Package scheduler runs the daily reminder sweep.  It replaces an external
// cron entry: the loop sleeps until the configured local hour, fires the
// dispatcher once, and sleeps again.
package scheduler

import (
	"context"
	"log"
	"time"

	"github.com/openhall/session-registration/internal/service"
)

// ReminderScheduler fires the reminder dispatcher once per day at a fixed
// local hour.  Missing a run is acceptable: the ledger makes the next run
// pick up exactly the registrants that were never reminded.
type ReminderScheduler struct {
	dispatcher *service.ReminderDispatcher
	hour       int // local hour of day, 0-23
	now        func() time.Time
}

// New constructs a ReminderScheduler firing at the given local hour.
func New(dispatcher *service.ReminderDispatcher, hour int) *ReminderScheduler {
	if hour < 0 || hour > 23 {
		hour = 9
	}
	return &ReminderScheduler{dispatcher: dispatcher, hour: hour, now: time.Now}
}

// Run blocks until ctx is cancelled, firing the dispatcher at the scheduled
// hour each day.  A failed sweep is logged and the loop keeps going.
func (s *ReminderScheduler) Run(ctx context.Context) {
	for {
		next := s.nextFire()
		log.Printf("scheduler: next reminder sweep at %s", next.Format(time.RFC3339))

		timer := time.NewTimer(time.Until(next))
		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case <-timer.C:
		}

		if _, err := s.dispatcher.Run(ctx); err != nil {
			log.Printf("scheduler: reminder sweep failed: %v", err)
		}
	}
}

// nextFire returns the next occurrence of the scheduled hour, strictly in the
// future.
func (s *ReminderScheduler) nextFire() time.Time {
	now := s.now().In(time.Local)
	fire := time.Date(now.Year(), now.Month(), now.Day(), s.hour, 0, 0, 0, time.Local)
	if !fire.After(now) {
		fire = fire.AddDate(0, 0, 1)
	}
	return fire
}
