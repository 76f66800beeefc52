package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/helpdesk-service/internal/cache"
	"github.com/spec-kit/helpdesk-service/internal/conversation"
	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/internal/events"
	"github.com/spec-kit/helpdesk-service/internal/repository"
	apperrors "github.com/spec-kit/helpdesk-service/pkg/util"
)

// TicketService covers intake and read paths: creating tickets from the
// contact form and serving the customer page and the support inbox.
type TicketService struct {
	tickets    repository.TicketRepository
	inbox      *cache.InboxCache
	dispatcher events.Dispatcher
	now        func() time.Time
}

// TicketDependencies bundles collaborators for the ticket service.
type TicketDependencies struct {
	TicketRepo repository.TicketRepository
	Inbox      *cache.InboxCache
	Dispatcher events.Dispatcher
	Now        func() time.Time
}

// TicketIntakeInput describes a new support request.
type TicketIntakeInput struct {
	Name    string
	Email   string
	Title   string
	Message string
}

// InboxFilter describes support listing filters.
type InboxFilter struct {
	Status     *domain.TicketStatus
	UnreadOnly bool
	SearchTerm *string
	Limit      int
	Offset     int
}

// NewTicketService constructs the service.
func NewTicketService(deps TicketDependencies) *TicketService {
	now := deps.Now
	if now == nil {
		now = time.Now
	}
	return &TicketService{
		tickets:    deps.TicketRepo,
		inbox:      deps.Inbox,
		dispatcher: deps.Dispatcher,
		now:        now,
	}
}

// CreateTicket creates a NEU ticket from the intake form. An initial
// customer message, when present, seeds the conversation and marks the
// ticket unread.
func (s *TicketService) CreateTicket(ctx context.Context, input TicketIntakeInput) (*domain.Ticket, error) {
	title := strings.TrimSpace(input.Title)
	if title == "" {
		return nil, apperrors.NewValidationError("title required", nil)
	}

	ticket := &domain.Ticket{
		Title:         title,
		CustomerName:  strings.TrimSpace(input.Name),
		CustomerEmail: strings.TrimSpace(input.Email),
		Status:        domain.TicketStatusNew,
		Messages:      []domain.Message{},
	}
	if body := strings.TrimSpace(input.Message); body != "" {
		ticket.Messages = conversation.Append(ticket.Messages, domain.Message{
			Body:      body,
			Sender:    domain.SenderCustomer,
			CreatedAt: s.now(),
		})
		ticket.UnreadBySupport = true
	}

	if err := s.tickets.Create(ctx, ticket); err != nil {
		return nil, apperrors.NewPersistenceError(err)
	}

	if s.inbox != nil {
		_ = s.inbox.Invalidate(ctx)
	}
	if s.dispatcher != nil {
		_ = s.dispatcher.Publish(ctx, events.Event{
			ID:        uuid.NewString(),
			Type:      events.EventTicketReceived,
			TicketID:  ticket.ID,
			Timestamp: s.now(),
		})
	}
	return ticket, nil
}

// GetTicket fetches a ticket with its conversation ordered for display.
func (s *TicketService) GetTicket(ctx context.Context, ticketID string) (*domain.Ticket, error) {
	ticket, err := s.tickets.GetByID(ctx, ticketID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("ticket", map[string]any{"ticket_id": ticketID})
		}
		return nil, apperrors.MapError(err)
	}
	ticket.Messages = conversation.SortByCreatedAt(ticket.Messages)
	return ticket, nil
}

// ListInbox returns tickets for the support view, newest first. The
// unfiltered first page is served from the Redis cache when fresh.
func (s *TicketService) ListInbox(ctx context.Context, filter InboxFilter) ([]domain.Ticket, error) {
	cacheable := filter.Status == nil && !filter.UnreadOnly && filter.SearchTerm == nil && filter.Offset == 0

	if cacheable && s.inbox != nil {
		if tickets, err := s.inbox.Get(ctx); err == nil {
			return tickets, nil
		}
	}

	tickets, err := s.tickets.ListWithFilter(ctx, repository.TicketFilter{
		Status:     filter.Status,
		UnreadOnly: filter.UnreadOnly,
		SearchTerm: filter.SearchTerm,
		Limit:      filter.Limit,
		Offset:     filter.Offset,
	})
	if err != nil {
		return nil, apperrors.MapError(err)
	}

	if cacheable && s.inbox != nil {
		_ = s.inbox.Set(ctx, tickets)
	}
	return tickets, nil
}
