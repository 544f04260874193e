package service

import (
	"context"
	"errors"
	"sync"

	"github.com/openhall/session-registration/internal/model"
	"github.com/openhall/session-registration/internal/repository"
)

// CapacityLedger decides whether a session has room for a registration's
// children and, when it does, makes the admission durable in the same
// critical section.  Occupancy is always derived from the registration rows;
// there is no counter to drift.
//
// Admission attempts against one session are serialised by a mutex keyed on
// the session name: the read-occupancy, compare, insert sequence never
// interleaves with another attempt for the same session, so two requests
// racing for the last spot cannot both be admitted.  Attempts against
// different sessions do not contend.  This process is the single writer of
// registration rows, which is what makes the in-process lock sufficient.
type CapacityLedger struct {
	sessions SessionStore
	regs     RegistrationStore

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewCapacityLedger constructs a CapacityLedger over the given stores.
func NewCapacityLedger(sessions SessionStore, regs RegistrationStore) *CapacityLedger {
	return &CapacityLedger{
		sessions: sessions,
		regs:     regs,
		locks:    make(map[string]*sync.Mutex),
	}
}

// sessionLock returns the mutex guarding admissions for one session name,
// creating it on first use.  Locks are never removed; the catalog is small.
func (l *CapacityLedger) sessionLock(name string) *sync.Mutex {
	l.mu.Lock()
	defer l.mu.Unlock()
	m, ok := l.locks[name]
	if !ok {
		m = &sync.Mutex{}
		l.locks[name] = m
	}
	return m
}

// TryReserve admits or rejects a registration.  On admission the
// registration row has been durably written (and its ID populated) before
// TryReserve returns, and the resolved session is returned for the caller's
// follow-up work (confirmation mail, events).  Rejections are typed:
// ErrSessionNotFound, ErrSessionInactive, ErrAudienceMismatch, or
// *CapacityError carrying the exact number of spots still open.
func (l *CapacityLedger) TryReserve(ctx context.Context, reg *model.Registration) (*model.Session, error) {
	if err := reg.Validate(); err != nil {
		return nil, &ValidationError{Msg: err.Error()}
	}

	lock := l.sessionLock(reg.Session)
	lock.Lock()
	defer lock.Unlock()

	session, err := l.sessions.GetByName(ctx, reg.Session)
	if err != nil {
		if errors.Is(err, repository.ErrSessionNotFound) {
			return nil, ErrSessionNotFound
		}
		return nil, err
	}
	if !session.Active {
		return nil, ErrSessionInactive
	}
	if !session.OfferedTo(reg.Kind) {
		return nil, ErrAudienceMismatch
	}

	occupied, err := l.regs.SumChildren(ctx, session.Name)
	if err != nil {
		return nil, err
	}
	if occupied+reg.NumChildren > session.ChildLimit {
		remaining := session.ChildLimit - occupied
		if remaining < 0 {
			// An admin lowered the limit below existing occupancy; the
			// stored registrations stand, but no spots are open.
			remaining = 0
		}
		return nil, &CapacityError{SpotsRemaining: remaining}
	}

	if err := l.regs.Insert(ctx, reg); err != nil {
		return nil, err
	}
	return session, nil
}

// Occupancy returns the current child occupancy and remaining spots for a
// session.  Remaining floors at zero when the limit was lowered below
// occupancy.
func (l *CapacityLedger) Occupancy(ctx context.Context, session *model.Session) (occupied, remaining int, err error) {
	occupied, err = l.regs.SumChildren(ctx, session.Name)
	if err != nil {
		return 0, 0, err
	}
	remaining = session.ChildLimit - occupied
	if remaining < 0 {
		remaining = 0
	}
	return occupied, remaining, nil
}
