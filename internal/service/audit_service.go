package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/spec-kit/gym-access/internal/events"
)

// AuditService writes credential events to the structured log.
type AuditService struct {
	dispatcher events.Dispatcher
	logger     *zap.Logger
}

// NewAuditService creates the service.
func NewAuditService(dispatcher events.Dispatcher, logger *zap.Logger) *AuditService {
	return &AuditService{dispatcher: dispatcher, logger: logger}
}

// RegisterHandlers subscribes to events.
func (a *AuditService) RegisterHandlers() {
	if a.dispatcher == nil {
		return
	}
	a.dispatcher.Subscribe(events.EventSessionIssued, a.handleSessionIssued)
	a.dispatcher.Subscribe(events.EventSessionRevoked, a.handleSessionRevoked)
	a.dispatcher.Subscribe(events.EventAccessVerified, a.handleAccessVerified)
	a.dispatcher.Subscribe(events.EventAccessDenied, a.handleAccessDenied)
}

func (a *AuditService) handleSessionIssued(_ context.Context, event events.Event) error {
	a.logger.Info("SessionIssued", a.fields(event)...)
	return nil
}

func (a *AuditService) handleSessionRevoked(_ context.Context, event events.Event) error {
	a.logger.Info("SessionRevoked", a.fields(event)...)
	return nil
}

func (a *AuditService) handleAccessVerified(_ context.Context, event events.Event) error {
	a.logger.Info("AccessVerified", a.fields(event)...)
	return nil
}

func (a *AuditService) handleAccessDenied(_ context.Context, event events.Event) error {
	a.logger.Warn("AccessDenied", a.fields(event)...)
	return nil
}

func (a *AuditService) fields(event events.Event) []zap.Field {
	fields := []zap.Field{
		zap.String("event_id", event.ID),
		zap.String("kind", string(event.Actor.Kind)),
		zap.Int64("tenant_id", event.TenantID),
		zap.String("ip", event.Actor.IP),
	}
	switch p := event.Payload.(type) {
	case events.SessionPayload:
		fields = append(fields, zap.String("cookie", p.Cookie), zap.Time("expires_at", p.ExpiresAt))
	case events.DeniedPayload:
		fields = append(fields, zap.String("reason", p.Reason))
	}
	return fields
}
