package service

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/openhall/session-registration/internal/model"
)

// fixedClock pins the dispatcher two days before the session date used in
// these tests.
func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func reminderFixture(t *testing.T, registrants int) (*ReminderDispatcher, *fakeRegistrationStore, *fakeReminderStore, *fakeMailer) {
	t.Helper()

	now := time.Date(2026, time.June, 1, 14, 30, 0, 0, time.Local)
	sessionDate := time.Date(2026, time.June, 3, 18, 0, 0, 0, time.Local)

	s := testSession("Upcoming Evening", 100)
	s.Date = sessionDate
	sessions := newFakeSessionStore(s)

	regs := newFakeRegistrationStore()
	for i := 0; i < registrants; i++ {
		r := testRegistration("Upcoming Evening", 1)
		r.Email = fmt.Sprintf("family%d@example.com", i)
		if err := regs.Insert(context.Background(), r); err != nil {
			t.Fatalf("insert registration: %v", err)
		}
	}

	ledger := newFakeReminderStore()
	mailer := newFakeMailer()
	d := NewReminderDispatcher(sessions, regs, ledger, mailer, 0).WithClock(fixedClock(now))
	return d, regs, ledger, mailer
}

func TestRunSendsToEveryUnremindedRegistrant(t *testing.T) {
	d, _, _, mailer := reminderFixture(t, 3)

	summaries, err := d.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(summaries) != 1 {
		t.Fatalf("got %d summaries, want 1", len(summaries))
	}
	sum := summaries[0]
	if sum.Sent != 3 || sum.Skipped != 0 || sum.Errors != 0 {
		t.Errorf("summary = %+v, want 3 sent, 0 skipped, 0 errors", sum)
	}
	if len(mailer.sent) != 3 {
		t.Errorf("mailer delivered %d messages, want 3", len(mailer.sent))
	}
}

func TestRunSkipsAlreadyRemindedRegistrants(t *testing.T) {
	d, _, ledger, _ := reminderFixture(t, 3)
	ctx := context.Background()

	// Registrant 1 was reminded on an earlier run.
	if err := ledger.RecordSent(ctx, "Upcoming Evening", 1, model.KindGeneral, "family0@example.com"); err != nil {
		t.Fatalf("seed ledger: %v", err)
	}

	summaries, err := d.Run(ctx)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	sum := summaries[0]
	if sum.Sent != 2 || sum.Skipped != 1 || sum.Errors != 0 {
		t.Errorf("summary = %+v, want 2 sent, 1 skipped, 0 errors", sum)
	}
}

func TestRunIsIdempotentAcrossRepeats(t *testing.T) {
	d, _, _, mailer := reminderFixture(t, 3)
	ctx := context.Background()

	if _, err := d.Run(ctx); err != nil {
		t.Fatalf("first run: %v", err)
	}
	summaries, err := d.Run(ctx)
	if err != nil {
		t.Fatalf("second run: %v", err)
	}
	sum := summaries[0]
	if sum.Sent != 0 || sum.Skipped != 3 {
		t.Errorf("second run summary = %+v, want 0 sent and 3 skipped", sum)
	}
	if len(mailer.sent) != 3 {
		t.Errorf("mailer delivered %d messages across both runs, want 3", len(mailer.sent))
	}
}

func TestRunIsolatesTransportFailures(t *testing.T) {
	d, _, _, mailer := reminderFixture(t, 3)
	mailer.failTo["family1@example.com"] = true
	ctx := context.Background()

	summaries, err := d.Run(ctx)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	sum := summaries[0]
	if sum.Sent != 2 || sum.Errors != 1 {
		t.Errorf("summary = %+v, want 2 sent and 1 error", sum)
	}

	// The failed registrant has no ledger row, so a retry run reaches only
	// them.
	mailer.failTo = map[string]bool{}
	summaries, err = d.Run(ctx)
	if err != nil {
		t.Fatalf("retry run: %v", err)
	}
	sum = summaries[0]
	if sum.Sent != 1 || sum.Skipped != 2 || sum.Errors != 0 {
		t.Errorf("retry summary = %+v, want 1 sent and 2 skipped", sum)
	}
}

func TestRunSkipsWhenNoSessionTwoDaysOut(t *testing.T) {
	d, _, _, mailer := reminderFixture(t, 2)
	// Move the clock so the session is three days out instead of two.
	d.WithClock(fixedClock(time.Date(2026, time.May, 31, 14, 30, 0, 0, time.Local)))

	summaries, err := d.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(summaries) != 0 {
		t.Errorf("got %d summaries, want none", len(summaries))
	}
	if len(mailer.sent) != 0 {
		t.Errorf("mailer delivered %d messages, want none", len(mailer.sent))
	}
}

func TestRunForSessionIgnoresDate(t *testing.T) {
	d, _, _, _ := reminderFixture(t, 2)
	// A clock far from the session date must not matter for a named run.
	d.WithClock(fixedClock(time.Date(2026, time.January, 1, 9, 0, 0, 0, time.Local)))

	sum, err := d.RunForSession(context.Background(), "Upcoming Evening", false)
	if err != nil {
		t.Fatalf("RunForSession: %v", err)
	}
	if sum.Sent != 2 {
		t.Errorf("sent = %d, want 2", sum.Sent)
	}

	if _, err := d.RunForSession(context.Background(), "No Such Session", false); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("unknown session: got %v, want ErrSessionNotFound", err)
	}
}

func TestRunForSessionDryRun(t *testing.T) {
	d, _, ledger, mailer := reminderFixture(t, 2)

	sum, err := d.RunForSession(context.Background(), "Upcoming Evening", true)
	if err != nil {
		t.Fatalf("dry run: %v", err)
	}
	if sum.Sent != 2 {
		t.Errorf("dry run tally = %+v, want 2 sent", sum)
	}
	if len(mailer.sent) != 0 {
		t.Errorf("dry run delivered %d messages, want none", len(mailer.sent))
	}
	if len(ledger.sent) != 0 {
		t.Errorf("dry run recorded %d ledger rows, want none", len(ledger.sent))
	}
}

func TestDistinctKindsAreRemindedIndependently(t *testing.T) {
	d, regs, _, mailer := reminderFixture(t, 0)
	ctx := context.Background()

	// General ID 1 and member ID 1 are different registrants; the ledger must
	// not conflate them.
	general := testRegistration("Upcoming Evening", 1)
	general.Email = "general@example.com"
	member := testRegistration("Upcoming Evening", 1)
	member.Kind = model.KindMember
	member.MemberFirstName = "Sam"
	member.MemberLastName = "Lee"
	member.Email = "member@example.com"
	if err := regs.Insert(ctx, general); err != nil {
		t.Fatal(err)
	}
	if err := regs.Insert(ctx, member); err != nil {
		t.Fatal(err)
	}
	if general.ID != member.ID {
		t.Fatalf("fixture expects matching per-kind IDs, got %d and %d", general.ID, member.ID)
	}

	sum, err := d.RunForSession(ctx, "Upcoming Evening", false)
	if err != nil {
		t.Fatalf("RunForSession: %v", err)
	}
	if sum.Sent != 2 || sum.Skipped != 0 {
		t.Errorf("summary = %+v, want both registrants reminded", sum)
	}
	if len(mailer.sent) != 2 {
		t.Errorf("mailer delivered %d messages, want 2", len(mailer.sent))
	}
}
