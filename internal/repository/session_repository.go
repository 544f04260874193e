package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/openhall/session-registration/internal/model"
)

// SessionRepo manages persistence for the session catalog.
type SessionRepo struct {
	db *sql.DB
}

// NewSessionRepo constructs a SessionRepo bound to the given database.
func NewSessionRepo(db *sql.DB) *SessionRepo { return &SessionRepo{db: db} }

const sessionColumns = `id, name, session_type, child_limit, is_active, display_order, session_date, created_at`

func scanSession(row interface{ Scan(...any) error }) (*model.Session, error) {
	var s model.Session
	var active int
	if err := row.Scan(&s.ID, &s.Name, &s.Audience, &s.ChildLimit, &active, &s.DisplayOrder, &s.Date, &s.CreatedAt); err != nil {
		return nil, err
	}
	s.Active = active != 0
	return &s, nil
}

// Insert creates a new session row and populates the generated ID.  A name
// collision with any existing session, active or not, yields
// ErrDuplicateSessionName.
func (r *SessionRepo) Insert(ctx context.Context, s *model.Session) error {
	const q = `INSERT INTO sessions (name, session_type, child_limit, is_active, display_order, session_date)
	           VALUES (?, ?, ?, ?, ?, ?)`
	res, err := r.db.ExecContext(ctx, q, s.Name, s.Audience, s.ChildLimit, boolToInt(s.Active), s.DisplayOrder, s.Date.UTC())
	if err != nil {
		if isDuplicateKey(err) {
			return ErrDuplicateSessionName
		}
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	s.ID = id
	// Re-select to pick up the DB-assigned creation timestamp.
	row := r.db.QueryRowContext(ctx, `SELECT `+sessionColumns+` FROM sessions WHERE id = ?`, s.ID)
	got, err := scanSession(row)
	if err != nil {
		return err
	}
	*s = *got
	return nil
}

// GetByID returns a session by primary key or ErrSessionNotFound.
func (r *SessionRepo) GetByID(ctx context.Context, id int64) (*model.Session, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+sessionColumns+` FROM sessions WHERE id = ?`, id)
	s, err := scanSession(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrSessionNotFound
		}
		return nil, err
	}
	return s, nil
}

// GetByName returns a session by its unique name or ErrSessionNotFound.
func (r *SessionRepo) GetByName(ctx context.Context, name string) (*model.Session, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+sessionColumns+` FROM sessions WHERE name = ?`, name)
	s, err := scanSession(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrSessionNotFound
		}
		return nil, err
	}
	return s, nil
}

// Update rewrites the mutable attributes of a session.  The unique key on
// name still applies; renaming onto an existing name returns
// ErrDuplicateSessionName.  ErrSessionNotFound is returned when the row does
// not exist.
func (r *SessionRepo) Update(ctx context.Context, s *model.Session) error {
	const q = `UPDATE sessions
	           SET name = ?, session_type = ?, child_limit = ?, is_active = ?, display_order = ?, session_date = ?
	           WHERE id = ?`
	res, err := r.db.ExecContext(ctx, q, s.Name, s.Audience, s.ChildLimit, boolToInt(s.Active), s.DisplayOrder, s.Date.UTC(), s.ID)
	if err != nil {
		if isDuplicateKey(err) {
			return ErrDuplicateSessionName
		}
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		// Either the row is gone or the update was a no-op; distinguish.
		if _, err := r.GetByID(ctx, s.ID); err != nil {
			return err
		}
	}
	return nil
}

// Deactivate soft-deletes a session, leaving its registrations intact.
func (r *SessionRepo) Deactivate(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `UPDATE sessions SET is_active = 0 WHERE id = ?`, id)
	if err != nil {
		return err
	}
	return requireRow(res, ctx, r, id)
}

// DeleteByID hard-deletes a session row.  Callers must have verified that no
// registrations reference the session.
func (r *SessionRepo) DeleteByID(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM sessions WHERE id = ?`, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrSessionNotFound
	}
	return nil
}

// ListForAudience returns active sessions visible to the given audience kind
// (general or member), ordered for display.  Sessions typed "both" appear in
// either listing.
func (r *SessionRepo) ListForAudience(ctx context.Context, kind string) ([]model.Session, error) {
	const q = `SELECT ` + sessionColumns + ` FROM sessions
	           WHERE is_active = 1 AND (session_type = ? OR session_type = 'both')
	           ORDER BY display_order, name`
	rows, err := r.db.QueryContext(ctx, q, kind)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []model.Session
	for rows.Next() {
		s, err := scanSession(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *s)
	}
	return out, rows.Err()
}

// ListAll returns every session regardless of active flag, ordered for
// display.  Used by the admin catalog view.
func (r *SessionRepo) ListAll(ctx context.Context) ([]model.Session, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+sessionColumns+` FROM sessions ORDER BY display_order, name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []model.Session
	for rows.Next() {
		s, err := scanSession(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *s)
	}
	return out, rows.Err()
}

// ListOnDate returns active sessions whose date falls inside the calendar day
// beginning at dayStart (local midnight).  The half-open range keeps the
// query index-friendly.
func (r *SessionRepo) ListOnDate(ctx context.Context, dayStart time.Time) ([]model.Session, error) {
	const q = `SELECT ` + sessionColumns + ` FROM sessions
	           WHERE is_active = 1 AND session_date >= ? AND session_date < ?
	           ORDER BY session_date`
	rows, err := r.db.QueryContext(ctx, q, dayStart.UTC(), dayStart.AddDate(0, 0, 1).UTC())
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []model.Session
	for rows.Next() {
		s, err := scanSession(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *s)
	}
	return out, rows.Err()
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

// requireRow translates a zero-rows-affected UPDATE into ErrSessionNotFound
// when the target row truly does not exist.
func requireRow(res sql.Result, ctx context.Context, r *SessionRepo, id int64) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		if _, err := r.GetByID(ctx, id); err != nil {
			return err
		}
	}
	return nil
}
