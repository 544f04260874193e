package service

import (
	"context"
	"errors"
	"strconv"
	"sync"
	"time"

	"github.com/openhall/session-registration/internal/model"
	"github.com/openhall/session-registration/internal/repository"
)

// fakeSessionStore is an in-memory SessionStore keyed by name and ID.
type fakeSessionStore struct {
	mu       sync.Mutex
	nextID   int64
	sessions map[string]*model.Session
}

func newFakeSessionStore(sessions ...model.Session) *fakeSessionStore {
	f := &fakeSessionStore{sessions: make(map[string]*model.Session)}
	for i := range sessions {
		s := sessions[i]
		f.nextID++
		if s.ID == 0 {
			s.ID = f.nextID
		}
		f.sessions[s.Name] = &s
	}
	return f
}

func (f *fakeSessionStore) Insert(_ context.Context, s *model.Session) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.sessions[s.Name]; ok {
		return repository.ErrDuplicateSessionName
	}
	f.nextID++
	s.ID = f.nextID
	s.CreatedAt = time.Now()
	cp := *s
	f.sessions[s.Name] = &cp
	return nil
}

func (f *fakeSessionStore) GetByID(_ context.Context, id int64) (*model.Session, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, s := range f.sessions {
		if s.ID == id {
			cp := *s
			return &cp, nil
		}
	}
	return nil, repository.ErrSessionNotFound
}

func (f *fakeSessionStore) GetByName(_ context.Context, name string) (*model.Session, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.sessions[name]
	if !ok {
		return nil, repository.ErrSessionNotFound
	}
	cp := *s
	return &cp, nil
}

func (f *fakeSessionStore) Update(_ context.Context, s *model.Session) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for name, old := range f.sessions {
		if old.ID == s.ID {
			if name != s.Name {
				if _, taken := f.sessions[s.Name]; taken {
					return repository.ErrDuplicateSessionName
				}
				delete(f.sessions, name)
			}
			cp := *s
			f.sessions[s.Name] = &cp
			return nil
		}
	}
	return repository.ErrSessionNotFound
}

func (f *fakeSessionStore) Deactivate(_ context.Context, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, s := range f.sessions {
		if s.ID == id {
			s.Active = false
			return nil
		}
	}
	return repository.ErrSessionNotFound
}

func (f *fakeSessionStore) DeleteByID(_ context.Context, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for name, s := range f.sessions {
		if s.ID == id {
			delete(f.sessions, name)
			return nil
		}
	}
	return repository.ErrSessionNotFound
}

func (f *fakeSessionStore) ListForAudience(_ context.Context, kind string) ([]model.Session, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []model.Session
	for _, s := range f.sessions {
		if s.Active && s.OfferedTo(kind) {
			out = append(out, *s)
		}
	}
	return out, nil
}

func (f *fakeSessionStore) ListAll(_ context.Context) ([]model.Session, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []model.Session
	for _, s := range f.sessions {
		out = append(out, *s)
	}
	return out, nil
}

func (f *fakeSessionStore) ListOnDate(_ context.Context, dayStart time.Time) ([]model.Session, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	dayEnd := dayStart.AddDate(0, 0, 1)
	var out []model.Session
	for _, s := range f.sessions {
		if s.Active && !s.Date.Before(dayStart) && s.Date.Before(dayEnd) {
			out = append(out, *s)
		}
	}
	return out, nil
}

// fakeRegistrationStore is an in-memory RegistrationStore with a per-kind ID
// sequence, matching the two-table layout.
type fakeRegistrationStore struct {
	mu     sync.Mutex
	nextID map[string]int64
	rows   []model.Registration
}

func newFakeRegistrationStore() *fakeRegistrationStore {
	return &fakeRegistrationStore{nextID: map[string]int64{}}
}

func (f *fakeRegistrationStore) Insert(_ context.Context, reg *model.Registration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID[reg.Kind]++
	reg.ID = f.nextID[reg.Kind]
	reg.CreatedAt = time.Now()
	f.rows = append(f.rows, *reg)
	return nil
}

func (f *fakeRegistrationStore) SumChildren(_ context.Context, sessionName string) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	total := 0
	for _, r := range f.rows {
		if r.Session == sessionName {
			total += r.NumChildren
		}
	}
	return total, nil
}

func (f *fakeRegistrationStore) CountBySession(_ context.Context, sessionName string) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, r := range f.rows {
		if r.Session == sessionName {
			n++
		}
	}
	return n, nil
}

func (f *fakeRegistrationStore) ListBySession(_ context.Context, sessionName string) ([]model.Registration, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []model.Registration
	for _, r := range f.rows {
		if r.Session == sessionName {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *fakeRegistrationStore) SessionNames(_ context.Context) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	seen := map[string]bool{}
	var out []string
	for _, r := range f.rows {
		if !seen[r.Session] {
			seen[r.Session] = true
			out = append(out, r.Session)
		}
	}
	return out, nil
}

// fakeReminderStore is an in-memory reminder ledger.  A duplicate RecordSent
// succeeds silently, like the unique-key swallow in the real repository.
type fakeReminderStore struct {
	mu        sync.Mutex
	sent      map[[3]string]bool
	checkErr  error
	recordErr error
}

func newFakeReminderStore() *fakeReminderStore {
	return &fakeReminderStore{sent: make(map[[3]string]bool)}
}

func reminderKey(sessionName string, registrationID int64, kind string) [3]string {
	return [3]string{sessionName, strconv.FormatInt(registrationID, 10), kind}
}

func (f *fakeReminderStore) HasBeenSent(_ context.Context, sessionName string, registrationID int64, kind string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.checkErr != nil {
		return false, f.checkErr
	}
	return f.sent[reminderKey(sessionName, registrationID, kind)], nil
}

func (f *fakeReminderStore) RecordSent(_ context.Context, sessionName string, registrationID int64, kind, _ string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.recordErr != nil {
		return f.recordErr
	}
	f.sent[reminderKey(sessionName, registrationID, kind)] = true
	return nil
}

// fakeMailer records sends and can fail for selected recipients.
type fakeMailer struct {
	mu     sync.Mutex
	sent   []string
	failTo map[string]bool
}

func newFakeMailer() *fakeMailer {
	return &fakeMailer{failTo: make(map[string]bool)}
}

func (f *fakeMailer) Send(_ context.Context, to, _, _ string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failTo[to] {
		return errors.New("smtp transport down")
	}
	f.sent = append(f.sent, to)
	return nil
}
