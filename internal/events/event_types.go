package events

import (
	"time"

	"github.com/spec-kit/helpdesk-service/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventTicketReceived        EventType = "ticket_received"
	EventAgentReplied          EventType = "agent_replied"
	EventCustomerReplied       EventType = "customer_replied"
	EventTicketClosed          EventType = "ticket_closed"
	EventNotificationFailed    EventType = "notification_failed"
	EventNotificationDelivered EventType = "notification_delivered"
)

// Event represents a domain event emitted by the conversation engine.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	TicketID  string      `json:"ticket_id"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// AgentRepliedPayload payload.
type AgentRepliedPayload struct {
	OldStatus   domain.TicketStatus `json:"old_status"`
	NewStatus   domain.TicketStatus `json:"new_status"`
	Enriched    bool                `json:"enriched"`
	BodyPreview string              `json:"body_preview"`
}

// CustomerRepliedPayload payload.
type CustomerRepliedPayload struct {
	BodyPreview string `json:"body_preview"`
}

// TicketClosedPayload payload.
type TicketClosedPayload struct {
	OldStatus domain.TicketStatus `json:"old_status,omitempty"`
}

// NotificationPayload payload for delivery outcomes.
type NotificationPayload struct {
	Recipient string `json:"recipient,omitempty"`
	Reason    string `json:"reason,omitempty"`
}
