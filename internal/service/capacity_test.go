package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/openhall/session-registration/internal/model"
)

func testSession(name string, limit int) model.Session {
	return model.Session{
		Name:       name,
		Audience:   model.AudienceBoth,
		ChildLimit: limit,
		Active:     true,
		Date:       time.Now().AddDate(0, 0, 7),
	}
}

func testRegistration(session string, children int) *model.Registration {
	return &model.Registration{
		Kind:        model.KindGeneral,
		FirstName:   "Pat",
		LastName:    "Jones",
		Email:       "pat@example.com",
		NumAdults:   1,
		NumChildren: children,
		Session:     session,
	}
}

func TestTryReserveAdmitsAndRecords(t *testing.T) {
	sessions := newFakeSessionStore(testSession("Thursday Evening", 10))
	regs := newFakeRegistrationStore()
	ledger := NewCapacityLedger(sessions, regs)

	reg := testRegistration("Thursday Evening", 3)
	session, err := ledger.TryReserve(context.Background(), reg)
	if err != nil {
		t.Fatalf("TryReserve: %v", err)
	}
	if session.Name != "Thursday Evening" {
		t.Errorf("resolved session = %q, want %q", session.Name, "Thursday Evening")
	}
	if reg.ID == 0 {
		t.Error("registration ID was not populated on admission")
	}

	occ, remaining, err := ledger.Occupancy(context.Background(), session)
	if err != nil {
		t.Fatalf("Occupancy: %v", err)
	}
	if occ != 3 || remaining != 7 {
		t.Errorf("occupancy = %d remaining = %d, want 3 and 7", occ, remaining)
	}
}

func TestTryReserveRejectionsAreTyped(t *testing.T) {
	inactive := testSession("Closed Session", 10)
	inactive.Active = false
	memberOnly := testSession("Member Morning", 10)
	memberOnly.Audience = model.AudienceMember

	sessions := newFakeSessionStore(testSession("Open Session", 10), inactive, memberOnly)
	ledger := NewCapacityLedger(sessions, newFakeRegistrationStore())
	ctx := context.Background()

	if _, err := ledger.TryReserve(ctx, testRegistration("No Such Session", 1)); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("unknown session: got %v, want ErrSessionNotFound", err)
	}
	if _, err := ledger.TryReserve(ctx, testRegistration("Closed Session", 1)); !errors.Is(err, ErrSessionInactive) {
		t.Errorf("inactive session: got %v, want ErrSessionInactive", err)
	}
	if _, err := ledger.TryReserve(ctx, testRegistration("Member Morning", 1)); !errors.Is(err, ErrAudienceMismatch) {
		t.Errorf("general kind on member session: got %v, want ErrAudienceMismatch", err)
	}

	var valErr *ValidationError
	bad := testRegistration("Open Session", 2)
	bad.Email = ""
	if _, err := ledger.TryReserve(ctx, bad); !errors.As(err, &valErr) {
		t.Errorf("missing email: got %v, want *ValidationError", err)
	}
}

func TestTryReserveNearCapacity(t *testing.T) {
	sessions := newFakeSessionStore(testSession("Friday Evening", 5))
	regs := newFakeRegistrationStore()
	ledger := NewCapacityLedger(sessions, regs)
	ctx := context.Background()

	// Fill to 4 of 5.
	if _, err := ledger.TryReserve(ctx, testRegistration("Friday Evening", 4)); err != nil {
		t.Fatalf("seed admission: %v", err)
	}

	// Two children do not fit the single remaining spot.
	_, err := ledger.TryReserve(ctx, testRegistration("Friday Evening", 2))
	var capErr *CapacityError
	if !errors.As(err, &capErr) {
		t.Fatalf("over-limit attempt: got %v, want *CapacityError", err)
	}
	if capErr.SpotsRemaining != 1 {
		t.Errorf("SpotsRemaining = %d, want 1", capErr.SpotsRemaining)
	}
	if capErr.Error() != "only 1 spot remaining for this session" {
		t.Errorf("message = %q", capErr.Error())
	}

	// One child does, exactly filling the session.
	if _, err := ledger.TryReserve(ctx, testRegistration("Friday Evening", 1)); err != nil {
		t.Fatalf("exact-fit admission: %v", err)
	}

	// Now the session is full.
	_, err = ledger.TryReserve(ctx, testRegistration("Friday Evening", 1))
	if !errors.As(err, &capErr) {
		t.Fatalf("full session attempt: got %v, want *CapacityError", err)
	}
	if capErr.SpotsRemaining != 0 {
		t.Errorf("SpotsRemaining = %d, want 0", capErr.SpotsRemaining)
	}
}

func TestTryReserveRemainingFloorsAtZero(t *testing.T) {
	sessions := newFakeSessionStore(testSession("Shrunk Session", 10))
	regs := newFakeRegistrationStore()
	ledger := NewCapacityLedger(sessions, regs)
	ctx := context.Background()

	if _, err := ledger.TryReserve(ctx, testRegistration("Shrunk Session", 8)); err != nil {
		t.Fatalf("seed admission: %v", err)
	}

	// An admin lowers the limit below current occupancy.
	s, _ := sessions.GetByName(ctx, "Shrunk Session")
	s.ChildLimit = 5
	if err := sessions.Update(ctx, s); err != nil {
		t.Fatalf("shrink limit: %v", err)
	}

	_, err := ledger.TryReserve(ctx, testRegistration("Shrunk Session", 1))
	var capErr *CapacityError
	if !errors.As(err, &capErr) {
		t.Fatalf("got %v, want *CapacityError", err)
	}
	if capErr.SpotsRemaining != 0 {
		t.Errorf("SpotsRemaining = %d, want 0 (never negative)", capErr.SpotsRemaining)
	}
}

func TestTryReserveConcurrentNeverOversells(t *testing.T) {
	const limit = 25
	const attempts = 100

	sessions := newFakeSessionStore(testSession("Hot Session", limit))
	regs := newFakeRegistrationStore()
	ledger := NewCapacityLedger(sessions, regs)

	var wg sync.WaitGroup
	var mu sync.Mutex
	admitted := 0
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			reg := testRegistration("Hot Session", 1)
			reg.Email = fmt.Sprintf("racer%d@example.com", i)
			if _, err := ledger.TryReserve(context.Background(), reg); err == nil {
				mu.Lock()
				admitted++
				mu.Unlock()
			}
		}(i)
	}
	wg.Wait()

	if admitted != limit {
		t.Errorf("admitted %d of %d one-child attempts, want exactly %d", admitted, attempts, limit)
	}
	occ, _ := regs.SumChildren(context.Background(), "Hot Session")
	if occ != limit {
		t.Errorf("stored occupancy = %d, want %d", occ, limit)
	}
}
