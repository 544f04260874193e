package model

import (
	"encoding/json"
	"fmt"
	"time"
)

// Registration kinds.  General registrations come from the public form;
// member registrations carry the sponsoring member's name in addition to the
// guest contact.  Each kind has its own table and ID sequence, so a
// registration is identified by (Kind, ID).
const (
	KindGeneral = "general"
	KindMember  = "member"
)

// Child is one entry in a registration's children roster.
type Child struct {
	Name string `json:"name"`
	Age  int    `json:"age"`
}

// Registration is a single signup for a session.  Registrations are written
// once at submission time and never mutated; occupancy is always recomputed
// from them rather than kept in a counter.
type Registration struct {
	ID              int64     `json:"id"`
	Kind            string    `json:"kind"`
	MemberFirstName string    `json:"member_first_name,omitempty"`
	MemberLastName  string    `json:"member_last_name,omitempty"`
	FirstName       string    `json:"first_name"`
	LastName        string    `json:"last_name"`
	Email           string    `json:"email"`
	Phone           string    `json:"phone"`
	StreetAddress   string    `json:"street_address"`
	City            string    `json:"city"`
	State           string    `json:"state"`
	Zip             string    `json:"zip"`
	NumAdults       int       `json:"num_adults"`
	NumChildren     int       `json:"num_children"`
	Children        []Child   `json:"children,omitempty"`
	Comments        string    `json:"comments,omitempty"`
	RequestInfo     bool      `json:"request_info"`
	Session         string    `json:"session"`
	CreatedAt       time.Time `json:"created_at"`
}

// Validate checks the structural invariants of a registration before it is
// offered to the capacity ledger.  The children roster, when present, must
// match the declared child count.
func (r *Registration) Validate() error {
	if r.Kind != KindGeneral && r.Kind != KindMember {
		return fmt.Errorf("unknown registration kind %q", r.Kind)
	}
	if r.Session == "" {
		return fmt.Errorf("session is required")
	}
	if r.FirstName == "" || r.LastName == "" {
		return fmt.Errorf("first and last name are required")
	}
	if r.Email == "" {
		return fmt.Errorf("email is required")
	}
	if r.Kind == KindMember && (r.MemberFirstName == "" || r.MemberLastName == "") {
		return fmt.Errorf("member name is required for member registrations")
	}
	if r.NumAdults < 0 {
		return fmt.Errorf("num_adults must not be negative")
	}
	if r.NumChildren < 0 {
		return fmt.Errorf("num_children must not be negative")
	}
	if len(r.Children) > 0 && len(r.Children) != r.NumChildren {
		return fmt.Errorf("children roster has %d entries but num_children is %d", len(r.Children), r.NumChildren)
	}
	return nil
}

// ChildrenJSON serialises the roster for storage.  An empty roster is stored
// as an empty string, matching how blank submissions were recorded
// historically.
func (r *Registration) ChildrenJSON() (string, error) {
	if len(r.Children) == 0 {
		return "", nil
	}
	b, err := json.Marshal(r.Children)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// ParseChildren restores the roster from its stored JSON form.
func ParseChildren(raw string) ([]Child, error) {
	if raw == "" {
		return nil, nil
	}
	var kids []Child
	if err := json.Unmarshal([]byte(raw), &kids); err != nil {
		return nil, err
	}
	return kids, nil
}
