package service

import (
	"context"
	"time"

	"github.com/openhall/session-registration/internal/model"
)

// SessionStore is the slice of session persistence the services need.
// *repository.SessionRepo satisfies it.
type SessionStore interface {
	Insert(ctx context.Context, s *model.Session) error
	GetByID(ctx context.Context, id int64) (*model.Session, error)
	GetByName(ctx context.Context, name string) (*model.Session, error)
	Update(ctx context.Context, s *model.Session) error
	Deactivate(ctx context.Context, id int64) error
	DeleteByID(ctx context.Context, id int64) error
	ListForAudience(ctx context.Context, kind string) ([]model.Session, error)
	ListAll(ctx context.Context) ([]model.Session, error)
	ListOnDate(ctx context.Context, dayStart time.Time) ([]model.Session, error)
}

// RegistrationStore is the slice of registration persistence the services
// need.  *repository.RegistrationRepo satisfies it.
type RegistrationStore interface {
	Insert(ctx context.Context, reg *model.Registration) error
	SumChildren(ctx context.Context, sessionName string) (int, error)
	CountBySession(ctx context.Context, sessionName string) (int, error)
	ListBySession(ctx context.Context, sessionName string) ([]model.Registration, error)
	SessionNames(ctx context.Context) ([]string, error)
}

// ReminderStore is the reminder ledger.  *repository.ReminderRepo satisfies
// it.
type ReminderStore interface {
	HasBeenSent(ctx context.Context, sessionName string, registrationID int64, kind string) (bool, error)
	RecordSent(ctx context.Context, sessionName string, registrationID int64, kind, email string) error
}
