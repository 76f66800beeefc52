package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/helpdesk-service/internal/conversation"
	"github.com/spec-kit/helpdesk-service/internal/domain"
)

// ErrVersionConflict is returned when a partial update carries a stale
// version token, meaning the ticket changed since it was read.
var ErrVersionConflict = errors.New("ticket version conflict")

// TicketFilter captures support inbox query parameters.
type TicketFilter struct {
	Status     *domain.TicketStatus
	UnreadOnly bool
	SearchTerm *string
	Limit      int
	Offset     int
}

// Conversation is the message-log slice of a ticket, for operations that do
// not need the full record.
type Conversation struct {
	TicketID string
	Messages []domain.Message
	Version  int64
}

// TicketRepository encapsulates ticket persistence. All updates are partial
// field updates; the reply paths carry the version read earlier and fail
// with ErrVersionConflict if the row moved on.
type TicketRepository interface {
	Create(ctx context.Context, ticket *domain.Ticket) error
	GetByID(ctx context.Context, id string) (*domain.Ticket, error)
	GetConversation(ctx context.Context, id string) (*Conversation, error)
	ListWithFilter(ctx context.Context, filter TicketFilter) ([]domain.Ticket, error)
	UpdateReply(ctx context.Context, id string, version int64, messages []domain.Message, state domain.TicketState) error
	UpdateConversation(ctx context.Context, id string, version int64, messages []domain.Message, unreadBySupport bool) error
	Close(ctx context.Context, id string) error
}

type ticketRepository struct {
	pool *pgxpool.Pool
}

// NewTicketRepository instantiates repository.
func NewTicketRepository(pool *pgxpool.Pool) TicketRepository {
	return &ticketRepository{pool: pool}
}

func (r *ticketRepository) Create(ctx context.Context, ticket *domain.Ticket) error {
	encoded, err := conversation.EncodeMessages(ticket.Messages)
	if err != nil {
		return err
	}
	const query = `
        INSERT INTO tickets (title, name, email, status, nachrichten, neue_nachricht)
        VALUES ($1,$2,$3,$4,$5,$6)
        RETURNING id, version, created_at, updated_at`
	return r.pool.QueryRow(ctx, query,
		ticket.Title,
		ticket.CustomerName,
		ticket.CustomerEmail,
		ticket.Status,
		encoded,
		ticket.UnreadBySupport,
	).Scan(&ticket.ID, &ticket.Version, &ticket.CreatedAt, &ticket.UpdatedAt)
}

func (r *ticketRepository) GetByID(ctx context.Context, id string) (*domain.Ticket, error) {
	const query = `
        SELECT id, title, name, email, status, nachrichten, neue_nachricht, version, created_at, updated_at
        FROM tickets WHERE id=$1`

	var (
		ticket domain.Ticket
		raw    []byte
	)
	if err := r.pool.QueryRow(ctx, query, id).Scan(
		&ticket.ID,
		&ticket.Title,
		&ticket.CustomerName,
		&ticket.CustomerEmail,
		&ticket.Status,
		&raw,
		&ticket.UnreadBySupport,
		&ticket.Version,
		&ticket.CreatedAt,
		&ticket.UpdatedAt,
	); err != nil {
		return nil, err
	}
	ticket.Messages = conversation.ParseMessages(raw)
	return &ticket, nil
}

func (r *ticketRepository) GetConversation(ctx context.Context, id string) (*Conversation, error) {
	const query = `SELECT id, nachrichten, version FROM tickets WHERE id=$1`

	var (
		conv Conversation
		raw  []byte
	)
	if err := r.pool.QueryRow(ctx, query, id).Scan(&conv.TicketID, &raw, &conv.Version); err != nil {
		return nil, err
	}
	conv.Messages = conversation.ParseMessages(raw)
	return &conv, nil
}

func (r *ticketRepository) ListWithFilter(ctx context.Context, filter TicketFilter) ([]domain.Ticket, error) {
	base := `SELECT id, title, name, email, status, nachrichten, neue_nachricht, version, created_at, updated_at
             FROM tickets`
	clauses := []string{"1=1"}
	args := []any{}

	if filter.Status != nil {
		args = append(args, *filter.Status)
		clauses = append(clauses, fmt.Sprintf("status=$%d", len(args)))
	}
	if filter.UnreadOnly {
		clauses = append(clauses, "neue_nachricht=TRUE")
	}
	if filter.SearchTerm != nil && strings.TrimSpace(*filter.SearchTerm) != "" {
		search := "%" + strings.ToLower(strings.TrimSpace(*filter.SearchTerm)) + "%"
		args = append(args, search)
		placeholder := fmt.Sprintf("$%d", len(args))
		clauses = append(clauses, fmt.Sprintf("(LOWER(title) LIKE %s OR LOWER(name) LIKE %s OR LOWER(email) LIKE %s)", placeholder, placeholder, placeholder))
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 50
	}
	offset := filter.Offset
	if offset < 0 {
		offset = 0
	}

	query := fmt.Sprintf(`%s WHERE %s ORDER BY created_at DESC LIMIT %d OFFSET %d`,
		base, strings.Join(clauses, " AND "), limit, offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanTickets(rows)
}

// UpdateReply persists the agent-reply outcome: messages, status and unread
// flag in a single statement.
func (r *ticketRepository) UpdateReply(ctx context.Context, id string, version int64, messages []domain.Message, state domain.TicketState) error {
	encoded, err := conversation.EncodeMessages(messages)
	if err != nil {
		return err
	}
	const query = `
        UPDATE tickets SET nachrichten=$1, status=$2, neue_nachricht=$3, version=version+1, updated_at=NOW()
        WHERE id=$4 AND version=$5`
	cmd, err := r.pool.Exec(ctx, query, encoded, state.Status, state.UnreadBySupport, id, version)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrVersionConflict
	}
	return nil
}

// UpdateConversation persists a customer reply: messages and unread flag,
// status untouched.
func (r *ticketRepository) UpdateConversation(ctx context.Context, id string, version int64, messages []domain.Message, unreadBySupport bool) error {
	encoded, err := conversation.EncodeMessages(messages)
	if err != nil {
		return err
	}
	const query = `
        UPDATE tickets SET nachrichten=$1, neue_nachricht=$2, version=version+1, updated_at=NOW()
        WHERE id=$3 AND version=$4`
	cmd, err := r.pool.Exec(ctx, query, encoded, unreadBySupport, id, version)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrVersionConflict
	}
	return nil
}

// Close sets the terminal status and clears the unread flag. The write is
// blind and idempotent: no version precondition, closing twice succeeds.
func (r *ticketRepository) Close(ctx context.Context, id string) error {
	const query = `
        UPDATE tickets SET status=$1, neue_nachricht=FALSE, version=version+1, updated_at=NOW()
        WHERE id=$2`
	cmd, err := r.pool.Exec(ctx, query, domain.TicketStatusClosed, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func scanTickets(rows pgx.Rows) ([]domain.Ticket, error) {
	var result []domain.Ticket
	for rows.Next() {
		var (
			ticket domain.Ticket
			raw    []byte
		)
		if err := rows.Scan(
			&ticket.ID,
			&ticket.Title,
			&ticket.CustomerName,
			&ticket.CustomerEmail,
			&ticket.Status,
			&raw,
			&ticket.UnreadBySupport,
			&ticket.Version,
			&ticket.CreatedAt,
			&ticket.UpdatedAt,
		); err != nil {
			return nil, err
		}
		ticket.Messages = conversation.ParseMessages(raw)
		result = append(result, ticket)
	}
	return result, rows.Err()
}
