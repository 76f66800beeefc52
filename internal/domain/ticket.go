package domain

import "time"

// TicketStatus enumerates lifecycle states for tickets. The values mirror the
// stored enum strings and are not translated.
type TicketStatus string

const (
	TicketStatusNew        TicketStatus = "NEU"
	TicketStatusInProgress TicketStatus = "IN_BEARBEITUNG"
	TicketStatusClosed     TicketStatus = "ABGESCHLOSSEN"
)

// MessageSender indicates who authored a conversation message.
type MessageSender string

const (
	SenderCustomer MessageSender = "customer"
	SenderSupport  MessageSender = "support"
)

// Message is one entry in a ticket's conversation. The JSON field names match
// the stored document format.
type Message struct {
	Body      string        `json:"message"`
	Sender    MessageSender `json:"sender"`
	CreatedAt time.Time     `json:"createdAt"`
}

// TicketState is the slice of a ticket the lifecycle rules operate on.
type TicketState struct {
	Status          TicketStatus
	UnreadBySupport bool
}

// Ticket is the aggregate for support requests. Messages hold the full
// conversation, persisted as a single JSON document on the ticket row.
type Ticket struct {
	ID              string
	Title           string
	CustomerName    string
	CustomerEmail   string
	Status          TicketStatus
	UnreadBySupport bool
	Messages        []Message
	Version         int64
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// State returns the lifecycle-relevant fields.
func (t *Ticket) State() TicketState {
	return TicketState{Status: t.Status, UnreadBySupport: t.UnreadBySupport}
}

// HasRecipient reports whether a customer email address is on file.
func (t *Ticket) HasRecipient() bool {
	return t.CustomerEmail != ""
}
