// Package mailer sends transactional email over SMTP.
package mailer

import "context"

// Mailer delivers the two transactional emails the service sends. The sign-in
// link email is on the critical path of login; the welcome email is
// fire-and-forget (see internal/notify).
type Mailer interface {
	SendSignInLink(ctx context.Context, email, signInURL string) error
	SendWelcome(ctx context.Context, email string) error
}
