package models

import (
	"time"

	"github.com/google/uuid"
)

// RefreshSession is a long-lived refresh credential persisted alongside
// the owning user. Uniqueness of the token value is enforced per schema;
// sessions created by company switching always live in the public schema.
type RefreshSession struct {
	ID        uuid.UUID `json:"id" db:"id"`
	UserID    uuid.UUID `json:"user_id" db:"user_id"`
	Token     string    `json:"token" db:"token"`
	ExpiresAt time.Time `json:"expires_at" db:"expires_at"`
	Revoked   bool      `json:"revoked" db:"revoked"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// TableName returns the table name for the RefreshSession model
func (RefreshSession) TableName() string {
	return "user_sessions"
}

// NewRefreshSession creates a refresh session for the user expiring after ttl.
func NewRefreshSession(userID uuid.UUID, token string, ttl time.Duration) *RefreshSession {
	now := time.Now()
	return &RefreshSession{
		ID:        uuid.New(),
		UserID:    userID,
		Token:     token,
		ExpiresAt: now.Add(ttl),
		CreatedAt: now,
	}
}

// ValidAt reports whether the session is usable at the given instant:
// not revoked and expiring strictly in the future.
func (s *RefreshSession) ValidAt(t time.Time) bool {
	return !s.Revoked && s.ExpiresAt.After(t)
}
