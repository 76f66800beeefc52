package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/helpdesk-service/internal/cache"
	"github.com/spec-kit/helpdesk-service/internal/config"
	"github.com/spec-kit/helpdesk-service/internal/conversation"
	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/internal/enrichment"
	"github.com/spec-kit/helpdesk-service/internal/events"
	"github.com/spec-kit/helpdesk-service/internal/notifier"
	"github.com/spec-kit/helpdesk-service/internal/repository"
	apperrors "github.com/spec-kit/helpdesk-service/pkg/util"
)

// ConversationService is the sole writer of a ticket's status, unread flag
// and message log. It sequences the submit and close flows across storage,
// the enrichment gateway and the email notifier, one attempt per
// collaborator, no internal retries.
type ConversationService struct {
	tickets    repository.TicketRepository
	rewriter   enrichment.Rewriter
	emails     notifier.Sender
	inbox      *cache.InboxCache
	dispatcher events.Dispatcher
	app        config.AppConfig
	now        func() time.Time
}

// ConversationDependencies bundles collaborators for the service.
type ConversationDependencies struct {
	TicketRepo repository.TicketRepository
	Rewriter   enrichment.Rewriter
	Emails     notifier.Sender
	Inbox      *cache.InboxCache
	Dispatcher events.Dispatcher
	App        config.AppConfig
	Now        func() time.Time
}

// NewConversationService constructs the service.
func NewConversationService(deps ConversationDependencies) *ConversationService {
	now := deps.Now
	if now == nil {
		now = time.Now
	}
	return &ConversationService{
		tickets:    deps.TicketRepo,
		rewriter:   deps.Rewriter,
		emails:     deps.Emails,
		inbox:      deps.Inbox,
		dispatcher: deps.Dispatcher,
		app:        deps.App,
		now:        now,
	}
}

// SubmitAgentReply runs the full agent flow: load, enrich, append, advance
// status, persist, email the customer. An enrichment failure aborts before
// anything is written. Notification problems are reported after the reply is
// already committed; the returned ticket is non-nil in that case so callers
// can tell the reply survived.
func (s *ConversationService) SubmitAgentReply(ctx context.Context, ticketID, draft string) (*domain.Ticket, error) {
	draft = strings.TrimSpace(draft)
	if draft == "" {
		return nil, apperrors.NewValidationError("message body required", nil)
	}

	ticket, err := s.tickets.GetByID(ctx, ticketID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("ticket", map[string]any{"ticket_id": ticketID})
		}
		return nil, apperrors.MapError(err)
	}

	finalText, err := s.rewriter.Rewrite(ctx, draft)
	if err != nil {
		return nil, apperrors.NewEnrichmentFailure(err)
	}

	oldStatus := ticket.Status
	msg := domain.Message{
		Body:      finalText,
		Sender:    domain.SenderSupport,
		CreatedAt: s.now(),
	}
	updated := conversation.Append(ticket.Messages, msg)
	state := conversation.OnAgentReply(ticket.State())

	if err := s.tickets.UpdateReply(ctx, ticket.ID, ticket.Version, updated, state); err != nil {
		return nil, apperrors.NewPersistenceError(err)
	}

	ticket.Messages = updated
	ticket.Status = state.Status
	ticket.UnreadBySupport = state.UnreadBySupport
	ticket.Version++

	s.invalidateInbox(ctx)
	s.publishEvent(ctx, events.Event{
		Type:     events.EventAgentReplied,
		TicketID: ticket.ID,
		Payload: events.AgentRepliedPayload{
			OldStatus:   oldStatus,
			NewStatus:   ticket.Status,
			Enriched:    finalText != draft,
			BodyPreview: stringPreview(finalText, 120),
		},
	})

	if err := s.notifyCustomer(ctx, ticket, finalText); err != nil {
		return ticket, err
	}
	return ticket, nil
}

// SubmitCustomerReply appends a customer message and raises the unread flag.
// Status is never touched and no email goes out.
func (s *ConversationService) SubmitCustomerReply(ctx context.Context, ticketID, text string) error {
	text = strings.TrimSpace(text)
	if text == "" {
		return apperrors.NewValidationError("message body required", nil)
	}

	conv, err := s.tickets.GetConversation(ctx, ticketID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewNotFound("ticket", map[string]any{"ticket_id": ticketID})
		}
		return apperrors.MapError(err)
	}

	msg := domain.Message{
		Body:      text,
		Sender:    domain.SenderCustomer,
		CreatedAt: s.now(),
	}
	updated := conversation.Append(conv.Messages, msg)
	state := conversation.OnCustomerReply(domain.TicketState{})

	if err := s.tickets.UpdateConversation(ctx, ticketID, conv.Version, updated, state.UnreadBySupport); err != nil {
		return apperrors.NewPersistenceError(err)
	}

	s.invalidateInbox(ctx)
	s.publishEvent(ctx, events.Event{
		Type:     events.EventCustomerReplied,
		TicketID: ticketID,
		Payload: events.CustomerRepliedPayload{
			BodyPreview: stringPreview(text, 120),
		},
	})
	return nil
}

// CloseTicket persists the terminal state directly. Closing a ticket that is
// already closed succeeds with no observable change.
func (s *ConversationService) CloseTicket(ctx context.Context, ticketID string) error {
	if err := s.tickets.Close(ctx, ticketID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewNotFound("ticket", map[string]any{"ticket_id": ticketID})
		}
		return apperrors.NewPersistenceError(err)
	}

	s.invalidateInbox(ctx)
	s.publishEvent(ctx, events.Event{
		Type:     events.EventTicketClosed,
		TicketID: ticketID,
		Payload:  events.TicketClosedPayload{},
	})
	return nil
}

func (s *ConversationService) notifyCustomer(ctx context.Context, ticket *domain.Ticket, response string) error {
	if !ticket.HasRecipient() {
		s.publishEvent(ctx, events.Event{
			Type:     events.EventNotificationFailed,
			TicketID: ticket.ID,
			Payload:  events.NotificationPayload{Reason: "missing recipient"},
		})
		return apperrors.NewMissingRecipient(ticket.ID)
	}

	html, err := notifier.RenderResponseEmail(notifier.ResponseEmailData{
		TicketID:     ticket.ID,
		PersonName:   ticket.CustomerName,
		Response:     response,
		TicketTitle:  ticket.Title,
		TicketStatus: string(ticket.Status),
		TicketURL:    s.app.TicketURL(ticket.ID),
	})
	if err != nil {
		return apperrors.NewNotificationFailure(err)
	}

	subject := notifier.ResponseSubject(ticket.Title, ticket.ID)
	if err := s.emails.Send(ctx, ticket.CustomerEmail, subject, html); err != nil {
		s.publishEvent(ctx, events.Event{
			Type:     events.EventNotificationFailed,
			TicketID: ticket.ID,
			Payload:  events.NotificationPayload{Recipient: ticket.CustomerEmail, Reason: err.Error()},
		})
		return apperrors.NewNotificationFailure(err)
	}

	s.publishEvent(ctx, events.Event{
		Type:     events.EventNotificationDelivered,
		TicketID: ticket.ID,
		Payload:  events.NotificationPayload{Recipient: ticket.CustomerEmail},
	})
	return nil
}

func (s *ConversationService) invalidateInbox(ctx context.Context) {
	if s.inbox == nil {
		return
	}
	_ = s.inbox.Invalidate(ctx)
}

func (s *ConversationService) publishEvent(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = s.now()
	}
	_ = s.dispatcher.Publish(ctx, event)
}

func stringPreview(body string, max int) string {
	body = strings.TrimSpace(body)
	if len(body) <= max {
		return body
	}
	if max <= 3 {
		return body[:max]
	}
	return body[:max-3] + "..."
}
