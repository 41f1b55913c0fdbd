package model

import "time"

// Session is the verified identity attached to a request after the session
// cookie has been validated. Protected handlers treat a missing session as
// 401, never as a crash.
type Session struct {
	UserID    string
	Email     string
	ExpiresAt time.Time
}
