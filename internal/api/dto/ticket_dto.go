package dto

import (
	"time"

	"github.com/spec-kit/helpdesk-service/internal/domain"
)

// CreateTicketRequest is the intake form payload.
type CreateTicketRequest struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Title   string `json:"title"`
	Message string `json:"message"`
}

// MessageRequest carries a reply body, from either side of the conversation.
type MessageRequest struct {
	Message string `json:"message"`
}

// MessageResponse represents one conversation entry.
type MessageResponse struct {
	Body      string               `json:"message"`
	Sender    domain.MessageSender `json:"sender"`
	CreatedAt time.Time            `json:"created_at"`
}

// TicketSummary is the support inbox row.
type TicketSummary struct {
	ID              string              `json:"id"`
	Title           string              `json:"title"`
	CustomerName    string              `json:"name"`
	CustomerEmail   string              `json:"email"`
	Status          domain.TicketStatus `json:"status"`
	UnreadBySupport bool                `json:"unread_by_support"`
	MessageCount    int                 `json:"message_count"`
	CreatedAt       time.Time           `json:"created_at"`
	UpdatedAt       time.Time           `json:"updated_at"`
}

// TicketDetailResponse provides the full conversation view.
type TicketDetailResponse struct {
	ID              string              `json:"id"`
	Title           string              `json:"title"`
	CustomerName    string              `json:"name"`
	CustomerEmail   string              `json:"email,omitempty"`
	Status          domain.TicketStatus `json:"status"`
	UnreadBySupport bool                `json:"unread_by_support"`
	Messages        []MessageResponse   `json:"messages"`
	CreatedAt       time.Time           `json:"created_at"`
	UpdatedAt       time.Time           `json:"updated_at"`
}
