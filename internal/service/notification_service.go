package service

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/spec-kit/helpdesk-service/internal/config"
	"github.com/spec-kit/helpdesk-service/internal/events"
)

// NotificationService is the ops-side fanout for conversation events. The
// customer email itself is sent synchronously by the orchestrator; this
// service only observes.
type NotificationService struct {
	dispatcher events.Dispatcher
	logger     *zap.Logger
	cfg        config.OpsConfig
}

// NewNotificationService creates the service.
func NewNotificationService(dispatcher events.Dispatcher, logger *zap.Logger, cfg config.OpsConfig) *NotificationService {
	return &NotificationService{
		dispatcher: dispatcher,
		logger:     logger,
		cfg:        cfg,
	}
}

// RegisterHandlers subscribes to events.
func (n *NotificationService) RegisterHandlers() {
	if n.dispatcher == nil {
		return
	}
	n.dispatcher.Subscribe(events.EventTicketReceived, n.handleEvent("TicketReceived"))
	n.dispatcher.Subscribe(events.EventAgentReplied, n.handleEvent("AgentReplied"))
	n.dispatcher.Subscribe(events.EventCustomerReplied, n.handleEvent("CustomerReplied"))
	n.dispatcher.Subscribe(events.EventTicketClosed, n.handleEvent("TicketClosed"))
	n.dispatcher.Subscribe(events.EventNotificationFailed, n.handleNotificationFailed)
}

func (n *NotificationService) handleEvent(name string) events.EventHandler {
	return func(ctx context.Context, event events.Event) error {
		n.logger.Info(name, zap.String("ticket_id", event.TicketID), zap.Any("payload", event.Payload))
		n.sendWebhookNotificationStub(ctx, event)
		return nil
	}
}

func (n *NotificationService) handleNotificationFailed(ctx context.Context, event events.Event) error {
	n.logger.Warn("NotificationFailed", zap.String("ticket_id", event.TicketID), zap.Any("payload", event.Payload))
	n.sendWebhookNotificationStub(ctx, event)
	return nil
}

func (n *NotificationService) sendWebhookNotificationStub(ctx context.Context, event events.Event) {
	if strings.TrimSpace(n.cfg.WebhookURL) == "" {
		return
	}
	n.logger.Debug("sendWebhookNotificationStub",
		zap.String("url", n.cfg.WebhookURL),
		zap.String("ticket_id", event.TicketID),
		zap.String("event_type", string(event.Type)))
}
