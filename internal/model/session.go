// Package model defines the core domain types for the session registration
// system: sessions, registrations and reminder records.
package model

import "time"

// Audience values describe who a session is offered to.  A session marked
// AudienceBoth appears in both the general and the member listings.
const (
	AudienceGeneral = "general"
	AudienceMember  = "member"
	AudienceBoth    = "both"
)

// Session is a scheduled time slot that attendees register against.  Capacity
// is expressed in children (ChildLimit); adults are recorded on registrations
// but do not count toward the limit.  Names are unique across all sessions,
// active or not.
type Session struct {
	ID           int64     `json:"id"`
	Name         string    `json:"name"`
	Audience     string    `json:"audience"`
	ChildLimit   int       `json:"child_limit"`
	Active       bool      `json:"active"`
	DisplayOrder int       `json:"display_order"`
	Date         time.Time `json:"date"`
	CreatedAt    time.Time `json:"created_at"`
}

// OfferedTo reports whether a registration of the given kind may target this
// session.  General registrations are accepted by general and both sessions;
// member registrations by member and both sessions.
func (s *Session) OfferedTo(kind string) bool {
	switch s.Audience {
	case AudienceBoth:
		return true
	case AudienceGeneral:
		return kind == KindGeneral
	case AudienceMember:
		return kind == KindMember
	}
	return false
}

// ValidAudience reports whether a is one of the three recognised audience
// values.
func ValidAudience(a string) bool {
	return a == AudienceGeneral || a == AudienceMember || a == AudienceBoth
}
