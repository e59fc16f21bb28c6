package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/spec-kit/embed-login/internal/events"
)

// AuditService writes one structured audit line per auth event.
type AuditService struct {
	dispatcher events.Dispatcher
	logger     *zap.Logger
}

// NewAuditService creates the service.
func NewAuditService(dispatcher events.Dispatcher, logger *zap.Logger) *AuditService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuditService{dispatcher: dispatcher, logger: logger.Named("audit")}
}

// RegisterHandlers subscribes to events.
func (a *AuditService) RegisterHandlers() {
	if a.dispatcher == nil {
		return
	}
	a.dispatcher.Subscribe(events.EventLoginSucceeded, a.handleLoginSucceeded)
	a.dispatcher.Subscribe(events.EventLoginFailed, a.handleLoginFailed)
	a.dispatcher.Subscribe(events.EventLogout, a.handleInfo)
	a.dispatcher.Subscribe(events.EventTokenRefreshed, a.handleInfo)
	a.dispatcher.Subscribe(events.EventVendorTokenTraded, a.handleVendorTokenTraded)
	a.dispatcher.Subscribe(events.EventVendorTradeFailed, a.handleVendorTradeFailed)
}

func (a *AuditService) handleLoginSucceeded(_ context.Context, event events.Event) error {
	a.logger.Info("LoginSucceeded", baseFields(event)...)
	return nil
}

func (a *AuditService) handleLoginFailed(_ context.Context, event events.Event) error {
	fields := baseFields(event)
	if p, ok := event.Payload.(events.LoginFailedPayload); ok {
		fields = append(fields, zap.String("username", p.Username), zap.String("reason", p.Reason))
	}
	a.logger.Warn("LoginFailed", fields...)
	return nil
}

func (a *AuditService) handleVendorTokenTraded(_ context.Context, event events.Event) error {
	fields := baseFields(event)
	if p, ok := event.Payload.(events.VendorTokenTradedPayload); ok && p.Mock {
		a.logger.Warn("VendorTokenTraded", append(fields, zap.Bool("mock", true))...)
		return nil
	}
	a.logger.Info("VendorTokenTraded", fields...)
	return nil
}

func (a *AuditService) handleVendorTradeFailed(_ context.Context, event events.Event) error {
	a.logger.Error("VendorTradeFailed", append(baseFields(event), zap.Any("payload", event.Payload))...)
	return nil
}

func (a *AuditService) handleInfo(_ context.Context, event events.Event) error {
	a.logger.Info(string(event.Type), append(baseFields(event), zap.Any("payload", event.Payload))...)
	return nil
}

func baseFields(event events.Event) []zap.Field {
	fields := []zap.Field{
		zap.String("event_id", event.ID),
		zap.String("event_type", string(event.Type)),
		zap.String("subject_id", event.SubjectID),
	}
	if event.Variant != "" {
		fields = append(fields, zap.String("variant", string(event.Variant)))
	}
	if event.ClientIP != "" {
		fields = append(fields, zap.String("client_ip", event.ClientIP))
	}
	return fields
}
