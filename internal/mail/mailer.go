// Package mail provides the outbound email transport and the HTML bodies for
// confirmation and reminder messages.
package mail

import "context"

// Mailer is the outbound transport.  Implementations report failure with a
// human-readable error; no delivery guarantee exists beyond a nil return.
// The dispatch loop and the registration handlers depend on this interface so
// tests can substitute a fake.
type Mailer interface {
	Send(ctx context.Context, to, subject, htmlBody string) error
}
