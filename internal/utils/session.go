package utils

import (
	"time"
)

// SessionData is the narrow view of a session the middleware needs.
// The full session lifecycle (login, refresh, logout) lives outside this service.
type SessionData struct {
	UserID    string
	ExpiresAt time.Time
}
