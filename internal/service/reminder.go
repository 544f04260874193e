package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/openhall/session-registration/internal/mail"
	"github.com/openhall/session-registration/internal/model"
	"github.com/openhall/session-registration/internal/repository"
)

// Summary tallies one session's reminder dispatch.
type Summary struct {
	Session string `json:"session"`
	Sent    int    `json:"sent"`
	Skipped int    `json:"skipped"`
	Errors  int    `json:"errors"`
}

// ReminderDispatcher drives reminder emails through the reminder ledger.
// Each registrant of a session is processed independently: a transport
// failure for one never aborts the rest, and nothing is recorded for a
// failed send, so the registrant stays eligible on the next run.  Re-running
// the loop is the retry mechanism; the ledger's unique identity tuple makes
// any overlap or repeat harmless.
type ReminderDispatcher struct {
	sessions SessionStore
	regs     RegistrationStore
	ledger   ReminderStore
	mailer   mail.Mailer
	pace     time.Duration
	now      func() time.Time
}

// NewReminderDispatcher constructs a dispatcher.  pace is the courtesy delay
// between consecutive sends; it is not a correctness mechanism.
func NewReminderDispatcher(sessions SessionStore, regs RegistrationStore, ledger ReminderStore, mailer mail.Mailer, pace time.Duration) *ReminderDispatcher {
	return &ReminderDispatcher{
		sessions: sessions,
		regs:     regs,
		ledger:   ledger,
		mailer:   mailer,
		pace:     pace,
		now:      time.Now,
	}
}

// WithClock substitutes the time source.  Tests use this to pin the target
// day.
func (d *ReminderDispatcher) WithClock(now func() time.Time) *ReminderDispatcher {
	d.now = now
	return d
}

// Run processes every active session whose date falls exactly two days ahead
// (by local calendar day) and returns one summary per session.  It is safe
// to invoke on a schedule, manually, and concurrently with registrations.
func (d *ReminderDispatcher) Run(ctx context.Context) ([]Summary, error) {
	if d.mailer == nil {
		return nil, errors.New("reminder: no mail transport configured")
	}
	target := d.targetDay()
	log.Printf("reminder: looking for sessions on %s", target.Format("2006-01-02"))

	sessions, err := d.sessions.ListOnDate(ctx, target)
	if err != nil {
		return nil, fmt.Errorf("reminder: list sessions: %w", err)
	}
	if len(sessions) == 0 {
		log.Printf("reminder: no sessions found in 2 days")
		return nil, nil
	}

	summaries := make([]Summary, 0, len(sessions))
	for i := range sessions {
		sum, err := d.dispatchSession(ctx, &sessions[i], false)
		if err != nil {
			return summaries, err
		}
		summaries = append(summaries, sum)
	}
	return summaries, nil
}

// RunForSession dispatches reminders for one named session regardless of its
// date.  With dryRun set it only tallies what would happen; nothing is sent
// or recorded.
func (d *ReminderDispatcher) RunForSession(ctx context.Context, name string, dryRun bool) (Summary, error) {
	if d.mailer == nil && !dryRun {
		return Summary{}, errors.New("reminder: no mail transport configured")
	}
	session, err := d.sessions.GetByName(ctx, name)
	if err != nil {
		if errors.Is(err, repository.ErrSessionNotFound) {
			return Summary{}, ErrSessionNotFound
		}
		return Summary{}, err
	}
	return d.dispatchSession(ctx, session, dryRun)
}

// dispatchSession walks every registrant of one session through the ledger.
func (d *ReminderDispatcher) dispatchSession(ctx context.Context, session *model.Session, dryRun bool) (Summary, error) {
	sum := Summary{Session: session.Name}

	regs, err := d.regs.ListBySession(ctx, session.Name)
	if err != nil {
		return sum, fmt.Errorf("reminder: list registrants for %q: %w", session.Name, err)
	}
	log.Printf("reminder: session %q has %d registrations", session.Name, len(regs))

	for i := range regs {
		reg := &regs[i]

		sent, err := d.ledger.HasBeenSent(ctx, session.Name, reg.ID, reg.Kind)
		if err != nil {
			// Ledger read failure: count as an error and keep going; the
			// registrant stays eligible next run.
			log.Printf("reminder: ledger check for %s failed: %v", reg.Email, err)
			sum.Errors++
			continue
		}
		if sent {
			sum.Skipped++
			continue
		}
		if dryRun {
			sum.Sent++
			continue
		}

		subject, body := mail.RenderReminder(reg, session)
		if err := d.mailer.Send(ctx, reg.Email, subject, body); err != nil {
			// Leave no ledger row: the next run retries this registrant.
			log.Printf("reminder: send to %s failed: %v", reg.Email, err)
			sum.Errors++
			continue
		}
		if err := d.ledger.RecordSent(ctx, session.Name, reg.ID, reg.Kind, reg.Email); err != nil {
			log.Printf("reminder: record for %s failed: %v", reg.Email, err)
			sum.Errors++
			continue
		}
		sum.Sent++

		if d.pace > 0 {
			select {
			case <-time.After(d.pace):
			case <-ctx.Done():
				return sum, ctx.Err()
			}
		}
	}

	log.Printf("reminder: session %q summary: %d sent, %d skipped, %d errors",
		session.Name, sum.Sent, sum.Skipped, sum.Errors)
	return sum, nil
}

// targetDay returns local midnight of the calendar day exactly two days
// ahead of the dispatcher's clock.
func (d *ReminderDispatcher) targetDay() time.Time {
	t := d.now().In(time.Local).AddDate(0, 0, 2)
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.Local)
}
