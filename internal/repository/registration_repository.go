package repository

import (
	"context"
	"database/sql"
	"fmt"
	"sort"

	"github.com/openhall/session-registration/internal/model"
)

// RegistrationRepo manages persistence for both registration kinds.  The two
// kinds live in separate tables with independent ID sequences; methods that
// answer session-level questions aggregate across both.
type RegistrationRepo struct {
	db *sql.DB
}

// NewRegistrationRepo constructs a RegistrationRepo bound to the given
// database.
func NewRegistrationRepo(db *sql.DB) *RegistrationRepo { return &RegistrationRepo{db: db} }

// Insert appends a registration to the table matching its kind and populates
// the generated ID and creation timestamp.  Registrations are append-only;
// there is no update path.
func (r *RegistrationRepo) Insert(ctx context.Context, reg *model.Registration) error {
	kids, err := reg.ChildrenJSON()
	if err != nil {
		return fmt.Errorf("encode children: %w", err)
	}
	var res sql.Result
	switch reg.Kind {
	case model.KindGeneral:
		const q = `INSERT INTO general_registrations
		           (first_name, last_name, email, phone, street_address, city, state, zip,
		            num_adults, num_children, children_details, comments, request_info, session)
		           VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
		res, err = r.db.ExecContext(ctx, q,
			reg.FirstName, reg.LastName, reg.Email, reg.Phone, reg.StreetAddress, reg.City, reg.State, reg.Zip,
			reg.NumAdults, reg.NumChildren, kids, reg.Comments, boolToInt(reg.RequestInfo), reg.Session)
	case model.KindMember:
		const q = `INSERT INTO member_registrations
		           (member_first_name, member_last_name, first_name, last_name, email, phone,
		            street_address, city, state, zip, num_adults, num_children, children_details,
		            comments, request_info, session)
		           VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
		res, err = r.db.ExecContext(ctx, q,
			reg.MemberFirstName, reg.MemberLastName, reg.FirstName, reg.LastName, reg.Email, reg.Phone,
			reg.StreetAddress, reg.City, reg.State, reg.Zip, reg.NumAdults, reg.NumChildren, kids,
			reg.Comments, boolToInt(reg.RequestInfo), reg.Session)
	default:
		return fmt.Errorf("unknown registration kind %q", reg.Kind)
	}
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	reg.ID = id
	// Populate the DB-assigned timestamp.
	table := tableFor(reg.Kind)
	return r.db.QueryRowContext(ctx, `SELECT created_at FROM `+table+` WHERE id = ?`, reg.ID).Scan(&reg.CreatedAt)
}

// SumChildren returns the total number of children registered against a
// session across both kinds.  This derived aggregate is the session's
// occupancy; it is recomputed on every admission decision rather than kept
// as a counter.
func (r *RegistrationRepo) SumChildren(ctx context.Context, sessionName string) (int, error) {
	const q = `SELECT COALESCE((SELECT SUM(num_children) FROM general_registrations WHERE session = ?), 0)
	                + COALESCE((SELECT SUM(num_children) FROM member_registrations WHERE session = ?), 0)`
	var total int
	if err := r.db.QueryRowContext(ctx, q, sessionName, sessionName).Scan(&total); err != nil {
		return 0, err
	}
	return total, nil
}

// CountBySession returns the number of registration rows bound to a session
// across both kinds.  The session directory uses this to pick between soft
// and hard delete.
func (r *RegistrationRepo) CountBySession(ctx context.Context, sessionName string) (int, error) {
	const q = `SELECT (SELECT COUNT(*) FROM general_registrations WHERE session = ?)
	                + (SELECT COUNT(*) FROM member_registrations WHERE session = ?)`
	var n int
	if err := r.db.QueryRowContext(ctx, q, sessionName, sessionName).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}

// ListBySession returns every registration bound to a session, both kinds
// merged, ordered by creation time.
func (r *RegistrationRepo) ListBySession(ctx context.Context, sessionName string) ([]model.Registration, error) {
	general, err := r.listKind(ctx, model.KindGeneral, sessionName)
	if err != nil {
		return nil, err
	}
	member, err := r.listKind(ctx, model.KindMember, sessionName)
	if err != nil {
		return nil, err
	}
	out := append(general, member...)
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

// SessionNames returns the distinct session names that appear in either
// registration table, sorted.  Used by the manual reminder CLI.
func (r *RegistrationRepo) SessionNames(ctx context.Context) ([]string, error) {
	const q = `SELECT DISTINCT session FROM general_registrations
	           UNION SELECT DISTINCT session FROM member_registrations
	           ORDER BY session`
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var names []string
	for rows.Next() {
		var n string
		if err := rows.Scan(&n); err != nil {
			return nil, err
		}
		names = append(names, n)
	}
	return names, rows.Err()
}

func (r *RegistrationRepo) listKind(ctx context.Context, kind, sessionName string) ([]model.Registration, error) {
	var q string
	if kind == model.KindMember {
		q = `SELECT id, member_first_name, member_last_name, first_name, last_name, email, phone,
		            street_address, city, state, zip, num_adults, num_children, children_details,
		            comments, request_info, session, created_at
		     FROM member_registrations WHERE session = ? ORDER BY created_at`
	} else {
		q = `SELECT id, first_name, last_name, email, phone,
		            street_address, city, state, zip, num_adults, num_children, children_details,
		            comments, request_info, session, created_at
		     FROM general_registrations WHERE session = ? ORDER BY created_at`
	}
	rows, err := r.db.QueryContext(ctx, q, sessionName)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []model.Registration
	for rows.Next() {
		var reg model.Registration
		var kids, comments sql.NullString
		var reqInfo int
		reg.Kind = kind
		var scanErr error
		if kind == model.KindMember {
			scanErr = rows.Scan(&reg.ID, &reg.MemberFirstName, &reg.MemberLastName, &reg.FirstName, &reg.LastName,
				&reg.Email, &reg.Phone, &reg.StreetAddress, &reg.City, &reg.State, &reg.Zip,
				&reg.NumAdults, &reg.NumChildren, &kids, &comments, &reqInfo, &reg.Session, &reg.CreatedAt)
		} else {
			scanErr = rows.Scan(&reg.ID, &reg.FirstName, &reg.LastName,
				&reg.Email, &reg.Phone, &reg.StreetAddress, &reg.City, &reg.State, &reg.Zip,
				&reg.NumAdults, &reg.NumChildren, &kids, &comments, &reqInfo, &reg.Session, &reg.CreatedAt)
		}
		if scanErr != nil {
			return nil, scanErr
		}
		reg.Comments = comments.String
		reg.RequestInfo = reqInfo != 0
		if kids.Valid {
			roster, err := model.ParseChildren(kids.String)
			if err != nil {
				return nil, fmt.Errorf("registration %s/%d: decode children: %w", kind, reg.ID, err)
			}
			reg.Children = roster
		}
		out = append(out, reg)
	}
	return out, rows.Err()
}

func tableFor(kind string) string {
	if kind == model.KindMember {
		return "member_registrations"
	}
	return "general_registrations"
}
