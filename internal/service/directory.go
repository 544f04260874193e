package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/openhall/session-registration/internal/model"
	"github.com/openhall/session-registration/internal/repository"
)

// RemoveOutcome reports which branch a session removal took.
type RemoveOutcome int

const (
	// Deleted means the session had no registrations and was hard-deleted.
	Deleted RemoveOutcome = iota
	// Deactivated means registrations exist, so the session was soft-deleted
	// to preserve them; it stops appearing in audience listings.
	Deactivated
)

// SessionAvailability is a session annotated with its live occupancy, as
// served to registration forms and the admin catalog.
type SessionAvailability struct {
	model.Session
	Occupancy int `json:"occupancy"`
	Remaining int `json:"remaining"`
}

// SessionDirectory manages the session catalog with referential safety toward
// the registrations bound to it: a session that anyone has registered for is
// never hard-deleted.
type SessionDirectory struct {
	sessions SessionStore
	regs     RegistrationStore
}

// NewSessionDirectory constructs a SessionDirectory over the given stores.
func NewSessionDirectory(sessions SessionStore, regs RegistrationStore) *SessionDirectory {
	return &SessionDirectory{sessions: sessions, regs: regs}
}

// Create adds a session to the catalog.  Names collide across active and
// inactive sessions alike.
func (d *SessionDirectory) Create(ctx context.Context, s *model.Session) error {
	if err := validateSession(s); err != nil {
		return &ValidationError{Msg: err.Error()}
	}
	if err := d.sessions.Insert(ctx, s); err != nil {
		if errors.Is(err, repository.ErrDuplicateSessionName) {
			return ErrDuplicateSessionName
		}
		return err
	}
	return nil
}

// Update rewrites a session's attributes.  Lowering the child limit below
// current occupancy is allowed: it freezes further admissions without
// revoking anyone already registered, and existing rows are never
// re-validated.
func (d *SessionDirectory) Update(ctx context.Context, s *model.Session) error {
	if err := validateSession(s); err != nil {
		return &ValidationError{Msg: err.Error()}
	}
	if _, err := d.get(ctx, s.ID); err != nil {
		return err
	}
	// The unique key would also catch a rename collision, but checking first
	// gives the caller the typed error without a failed write.
	if existing, err := d.sessions.GetByName(ctx, s.Name); err == nil && existing.ID != s.ID {
		return ErrDuplicateSessionName
	} else if err != nil && !errors.Is(err, repository.ErrSessionNotFound) {
		return err
	}
	if err := d.sessions.Update(ctx, s); err != nil {
		if errors.Is(err, repository.ErrDuplicateSessionName) {
			return ErrDuplicateSessionName
		}
		return err
	}
	return nil
}

// Remove deletes a session.  When registrations reference it the session is
// deactivated instead, preserving the record of who signed up while removing
// it from every listing.
func (d *SessionDirectory) Remove(ctx context.Context, id int64) (RemoveOutcome, error) {
	s, err := d.get(ctx, id)
	if err != nil {
		return 0, err
	}
	bound, err := d.regs.CountBySession(ctx, s.Name)
	if err != nil {
		return 0, err
	}
	if bound > 0 {
		if err := d.sessions.Deactivate(ctx, id); err != nil {
			return 0, err
		}
		return Deactivated, nil
	}
	if err := d.sessions.DeleteByID(ctx, id); err != nil {
		return 0, err
	}
	return Deleted, nil
}

// ListFor returns the active sessions visible to an audience kind (general
// or member), in display order, each annotated with occupancy and remaining
// spots.
func (d *SessionDirectory) ListFor(ctx context.Context, kind string) ([]SessionAvailability, error) {
	if kind != model.KindGeneral && kind != model.KindMember {
		return nil, fmt.Errorf("unknown audience %q", kind)
	}
	sessions, err := d.sessions.ListForAudience(ctx, kind)
	if err != nil {
		return nil, err
	}
	return d.annotate(ctx, sessions)
}

// ListAll returns the entire catalog, inactive sessions included, annotated
// with occupancy.  Admin-only.
func (d *SessionDirectory) ListAll(ctx context.Context) ([]SessionAvailability, error) {
	sessions, err := d.sessions.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	return d.annotate(ctx, sessions)
}

func (d *SessionDirectory) annotate(ctx context.Context, sessions []model.Session) ([]SessionAvailability, error) {
	out := make([]SessionAvailability, 0, len(sessions))
	for _, s := range sessions {
		occ, err := d.regs.SumChildren(ctx, s.Name)
		if err != nil {
			return nil, err
		}
		remaining := s.ChildLimit - occ
		if remaining < 0 {
			remaining = 0
		}
		out = append(out, SessionAvailability{Session: s, Occupancy: occ, Remaining: remaining})
	}
	return out, nil
}

func (d *SessionDirectory) get(ctx context.Context, id int64) (*model.Session, error) {
	s, err := d.sessions.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrSessionNotFound) {
			return nil, ErrSessionNotFound
		}
		return nil, err
	}
	return s, nil
}

func validateSession(s *model.Session) error {
	s.Name = strings.TrimSpace(s.Name)
	if s.Name == "" {
		return fmt.Errorf("session name is required")
	}
	if s.ChildLimit <= 0 {
		return fmt.Errorf("child limit must be a positive integer")
	}
	if s.Audience == "" {
		s.Audience = model.AudienceBoth
	}
	if !model.ValidAudience(s.Audience) {
		return fmt.Errorf("unknown audience %q", s.Audience)
	}
	if s.Date.IsZero() {
		return fmt.Errorf("session date is required")
	}
	return nil
}
