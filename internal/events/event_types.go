package events

import (
	"time"

	"github.com/spec-kit/gym-access/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventSessionIssued  EventType = "session_issued"
	EventSessionRevoked EventType = "session_revoked"
	EventAccessVerified EventType = "access_verified"
	EventAccessDenied   EventType = "access_denied"
)

// Actor identifies who a credential event concerns.
type Actor struct {
	Kind      domain.SubjectKind `json:"kind"`
	SubjectID int64              `json:"subject_id,omitempty"`
	IP        string             `json:"ip,omitempty"`
}

// Event represents an auth event emitted by services.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	TenantID  int64       `json:"tenant_id,omitempty"`
	Actor     Actor       `json:"actor"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload,omitempty"`
}

// SessionPayload accompanies issued credentials.
type SessionPayload struct {
	Cookie    string    `json:"cookie"`
	ExpiresAt time.Time `json:"expires_at"`
}

// DeniedPayload explains a refused attempt.
type DeniedPayload struct {
	Reason string `json:"reason"`
}
