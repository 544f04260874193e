// Package repository implements MySQL persistence for sessions,
// registrations and reminder records.  Sentinel errors defined here let the
// service and handler layers distinguish failure scenarios without inspecting
// driver errors.
package repository

import (
	"errors"

	"github.com/go-sql-driver/mysql"
)

// ErrSessionNotFound is returned when no session row matches the lookup.
var ErrSessionNotFound = errors.New("session not found")

// ErrDuplicateSessionName is returned when an insert or update would reuse a
// session name that already exists, active or not.
var ErrDuplicateSessionName = errors.New("session name already exists")

// isDuplicateKey reports whether err is the MySQL duplicate-entry error
// (1062) raised by a violated unique key.
func isDuplicateKey(err error) bool {
	var me *mysql.MySQLError
	return errors.As(err, &me) && me.Number == 1062
}
