package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/internal/repository"
	apperrors "github.com/spec-kit/helpdesk-service/pkg/util"
)

type fakeTicketRepo struct {
	tickets map[string]*domain.Ticket

	replyUpdates []replyUpdate
	convUpdates  []convUpdate
	closedIDs    []string
	updateErr    error
}

type replyUpdate struct {
	id       string
	version  int64
	messages []domain.Message
	state    domain.TicketState
}

type convUpdate struct {
	id       string
	version  int64
	messages []domain.Message
	unread   bool
}

func newFakeTicketRepo(tickets ...*domain.Ticket) *fakeTicketRepo {
	repo := &fakeTicketRepo{tickets: map[string]*domain.Ticket{}}
	for _, t := range tickets {
		repo.tickets[t.ID] = t
	}
	return repo
}

func (f *fakeTicketRepo) Create(ctx context.Context, ticket *domain.Ticket) error {
	ticket.ID = "generated"
	f.tickets[ticket.ID] = ticket
	return nil
}

func (f *fakeTicketRepo) GetByID(ctx context.Context, id string) (*domain.Ticket, error) {
	t, ok := f.tickets[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	clone := *t
	return &clone, nil
}

func (f *fakeTicketRepo) GetConversation(ctx context.Context, id string) (*repository.Conversation, error) {
	t, ok := f.tickets[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return &repository.Conversation{TicketID: t.ID, Messages: t.Messages, Version: t.Version}, nil
}

func (f *fakeTicketRepo) ListWithFilter(ctx context.Context, filter repository.TicketFilter) ([]domain.Ticket, error) {
	var result []domain.Ticket
	for _, t := range f.tickets {
		result = append(result, *t)
	}
	return result, nil
}

func (f *fakeTicketRepo) UpdateReply(ctx context.Context, id string, version int64, messages []domain.Message, state domain.TicketState) error {
	if f.updateErr != nil {
		return f.updateErr
	}
	f.replyUpdates = append(f.replyUpdates, replyUpdate{id, version, messages, state})
	t := f.tickets[id]
	t.Messages = messages
	t.Status = state.Status
	t.UnreadBySupport = state.UnreadBySupport
	t.Version++
	return nil
}

func (f *fakeTicketRepo) UpdateConversation(ctx context.Context, id string, version int64, messages []domain.Message, unread bool) error {
	if f.updateErr != nil {
		return f.updateErr
	}
	f.convUpdates = append(f.convUpdates, convUpdate{id, version, messages, unread})
	t := f.tickets[id]
	t.Messages = messages
	t.UnreadBySupport = unread
	t.Version++
	return nil
}

func (f *fakeTicketRepo) Close(ctx context.Context, id string) error {
	if _, ok := f.tickets[id]; !ok {
		return pgx.ErrNoRows
	}
	f.closedIDs = append(f.closedIDs, id)
	t := f.tickets[id]
	t.Status = domain.TicketStatusClosed
	t.UnreadBySupport = false
	return nil
}

type fakeRewriter struct {
	output string
	err    error
	calls  int
}

func (f *fakeRewriter) Rewrite(ctx context.Context, draft string) (string, error) {
	f.calls++
	if f.err != nil {
		return "", f.err
	}
	if f.output == "" {
		return draft, nil
	}
	return f.output, nil
}

type sentEmail struct {
	to      string
	subject string
	body    string
}

type fakeSender struct {
	sent []sentEmail
	err  error
}

func (f *fakeSender) Send(ctx context.Context, to, subject, htmlBody string) error {
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, sentEmail{to, subject, htmlBody})
	return nil
}

func newTestService(repo *fakeTicketRepo, rewriter *fakeRewriter, sender *fakeSender) *ConversationService {
	return NewConversationService(ConversationDependencies{
		TicketRepo: repo,
		Rewriter:   rewriter,
		Emails:     sender,
		Now:        func() time.Time { return time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC) },
	})
}

func domainCode(t *testing.T, err error) string {
	t.Helper()
	var de *apperrors.DomainError
	if !errors.As(err, &de) {
		t.Fatalf("expected DomainError, got %T: %v", err, err)
	}
	return de.Code
}

func TestSubmitAgentReply_FullFlow(t *testing.T) {
	repo := newFakeTicketRepo(&domain.Ticket{
		ID:            "t1",
		Title:         "Login defekt",
		CustomerName:  "Anna",
		CustomerEmail: "anna@example.com",
		Status:        domain.TicketStatusNew,
		Version:       3,
	})
	rewriter := &fakeRewriter{output: "Hi there"}
	sender := &fakeSender{}
	svc := newTestService(repo, rewriter, sender)

	ticket, err := svc.SubmitAgentReply(context.Background(), "t1", "Hello")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if rewriter.calls != 1 {
		t.Errorf("expected exactly one enrichment attempt, got %d", rewriter.calls)
	}
	if len(repo.replyUpdates) != 1 {
		t.Fatalf("expected one persisted update, got %d", len(repo.replyUpdates))
	}
	update := repo.replyUpdates[0]
	if update.version != 3 {
		t.Errorf("update must carry the version read earlier, got %d", update.version)
	}
	if len(update.messages) != 1 || update.messages[0].Body != "Hi there" || update.messages[0].Sender != domain.SenderSupport {
		t.Errorf("unexpected persisted messages: %+v", update.messages)
	}
	if update.state.Status != domain.TicketStatusInProgress || update.state.UnreadBySupport {
		t.Errorf("unexpected persisted state: %+v", update.state)
	}
	if ticket.Status != domain.TicketStatusInProgress {
		t.Errorf("returned ticket status %s", ticket.Status)
	}
	if len(sender.sent) != 1 {
		t.Fatalf("expected one email, got %d", len(sender.sent))
	}
	mail := sender.sent[0]
	if mail.to != "anna@example.com" {
		t.Errorf("unexpected recipient %q", mail.to)
	}
	if mail.subject != "Re: Login defekt - t1" {
		t.Errorf("unexpected subject %q", mail.subject)
	}
}

func TestSubmitAgentReply_EnrichmentFailureAbortsEverything(t *testing.T) {
	repo := newFakeTicketRepo(&domain.Ticket{
		ID:            "t1",
		CustomerEmail: "anna@example.com",
		Status:        domain.TicketStatusNew,
		Version:       1,
	})
	rewriter := &fakeRewriter{err: errors.New("connection refused")}
	sender := &fakeSender{}
	svc := newTestService(repo, rewriter, sender)

	_, err := svc.SubmitAgentReply(context.Background(), "t1", "Hello")
	if code := domainCode(t, err); code != "ENRICHMENT_FAILED" {
		t.Errorf("expected ENRICHMENT_FAILED, got %s", code)
	}
	if len(repo.replyUpdates) != 0 {
		t.Error("nothing must be persisted when enrichment fails")
	}
	if len(sender.sent) != 0 {
		t.Error("no email must be sent when enrichment fails")
	}
	if repo.tickets["t1"].Status != domain.TicketStatusNew {
		t.Error("status must be unchanged")
	}
}

func TestSubmitAgentReply_MissingRecipientAfterCommit(t *testing.T) {
	repo := newFakeTicketRepo(&domain.Ticket{
		ID:      "t1",
		Status:  domain.TicketStatusInProgress,
		Version: 1,
	})
	rewriter := &fakeRewriter{}
	sender := &fakeSender{}
	svc := newTestService(repo, rewriter, sender)

	ticket, err := svc.SubmitAgentReply(context.Background(), "t1", "Hello")
	if code := domainCode(t, err); code != "MISSING_RECIPIENT" {
		t.Errorf("expected MISSING_RECIPIENT, got %s", code)
	}
	if ticket == nil {
		t.Fatal("ticket must be returned, the reply is committed")
	}
	if len(repo.replyUpdates) != 1 {
		t.Error("the reply must be persisted before the recipient check")
	}
	if len(sender.sent) != 0 {
		t.Error("no email can be sent without a recipient")
	}
}

func TestSubmitAgentReply_SendFailureDoesNotRollBack(t *testing.T) {
	repo := newFakeTicketRepo(&domain.Ticket{
		ID:            "t1",
		CustomerEmail: "anna@example.com",
		Status:        domain.TicketStatusInProgress,
		Version:       1,
	})
	rewriter := &fakeRewriter{}
	sender := &fakeSender{err: errors.New("smtp down")}
	svc := newTestService(repo, rewriter, sender)

	ticket, err := svc.SubmitAgentReply(context.Background(), "t1", "Hello")
	if code := domainCode(t, err); code != "NOTIFICATION_FAILED" {
		t.Errorf("expected NOTIFICATION_FAILED, got %s", code)
	}
	if ticket == nil || len(repo.replyUpdates) != 1 {
		t.Error("reply must stay committed when notification fails")
	}
}

func TestSubmitAgentReply_PersistenceErrorSurfaces(t *testing.T) {
	repo := newFakeTicketRepo(&domain.Ticket{
		ID:            "t1",
		CustomerEmail: "anna@example.com",
		Status:        domain.TicketStatusNew,
		Version:       1,
	})
	repo.updateErr = repository.ErrVersionConflict
	sender := &fakeSender{}
	svc := newTestService(repo, &fakeRewriter{}, sender)

	_, err := svc.SubmitAgentReply(context.Background(), "t1", "Hello")
	if code := domainCode(t, err); code != "PERSISTENCE_FAILED" {
		t.Errorf("expected PERSISTENCE_FAILED, got %s", code)
	}
	if len(sender.sent) != 0 {
		t.Error("no email after a rejected write")
	}
}

func TestSubmitAgentReply_UnknownTicket(t *testing.T) {
	svc := newTestService(newFakeTicketRepo(), &fakeRewriter{}, &fakeSender{})

	_, err := svc.SubmitAgentReply(context.Background(), "missing", "Hello")
	if code := domainCode(t, err); code != "NOT_FOUND" {
		t.Errorf("expected NOT_FOUND, got %s", code)
	}
}

func TestSubmitAgentReply_ClosedTicketStaysClosed(t *testing.T) {
	repo := newFakeTicketRepo(&domain.Ticket{
		ID:            "t1",
		CustomerEmail: "anna@example.com",
		Status:        domain.TicketStatusClosed,
		Version:       1,
	})
	svc := newTestService(repo, &fakeRewriter{}, &fakeSender{})

	ticket, err := svc.SubmitAgentReply(context.Background(), "t1", "Nachtrag")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ticket.Status != domain.TicketStatusClosed {
		t.Errorf("reply must not re-open a closed ticket, got %s", ticket.Status)
	}
	if len(ticket.Messages) != 1 {
		t.Error("reply on a closed ticket must still be appended")
	}
}

func TestSubmitCustomerReply(t *testing.T) {
	repo := newFakeTicketRepo(&domain.Ticket{
		ID:     "t1",
		Status: domain.TicketStatusInProgress,
		Messages: []domain.Message{
			{Body: "Hi there", Sender: domain.SenderSupport},
		},
		Version: 2,
	})
	sender := &fakeSender{}
	svc := newTestService(repo, &fakeRewriter{}, sender)

	if err := svc.SubmitCustomerReply(context.Background(), "t1", "Still broken"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(repo.convUpdates) != 1 {
		t.Fatalf("expected one conversation update, got %d", len(repo.convUpdates))
	}
	update := repo.convUpdates[0]
	if update.version != 2 {
		t.Errorf("update must carry the version read earlier, got %d", update.version)
	}
	if !update.unread {
		t.Error("customer reply must set the unread flag")
	}
	if len(update.messages) != 2 || update.messages[1].Body != "Still broken" || update.messages[1].Sender != domain.SenderCustomer {
		t.Errorf("unexpected messages: %+v", update.messages)
	}
	if repo.tickets["t1"].Status != domain.TicketStatusInProgress {
		t.Error("customer reply must not change status")
	}
	if len(sender.sent) != 0 {
		t.Error("customer replies never trigger email")
	}
}

func TestSubmitCustomerReply_UnknownTicket(t *testing.T) {
	svc := newTestService(newFakeTicketRepo(), &fakeRewriter{}, &fakeSender{})

	err := svc.SubmitCustomerReply(context.Background(), "missing", "hello?")
	if code := domainCode(t, err); code != "NOT_FOUND" {
		t.Errorf("expected NOT_FOUND, got %s", code)
	}
}

func TestCloseTicket(t *testing.T) {
	repo := newFakeTicketRepo(&domain.Ticket{
		ID:              "t1",
		Status:          domain.TicketStatusInProgress,
		UnreadBySupport: true,
		Version:         1,
	})
	svc := newTestService(repo, &fakeRewriter{}, &fakeSender{})

	if err := svc.CloseTicket(context.Background(), "t1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	t1 := repo.tickets["t1"]
	if t1.Status != domain.TicketStatusClosed || t1.UnreadBySupport {
		t.Errorf("unexpected state after close: %+v", t1)
	}

	// Closing again is a no-op that still succeeds.
	if err := svc.CloseTicket(context.Background(), "t1"); err != nil {
		t.Fatalf("second close failed: %v", err)
	}
}

func TestSubmitAgentReply_EmptyDraftRejected(t *testing.T) {
	repo := newFakeTicketRepo(&domain.Ticket{ID: "t1", Status: domain.TicketStatusNew, Version: 1})
	rewriter := &fakeRewriter{}
	svc := newTestService(repo, rewriter, &fakeSender{})

	_, err := svc.SubmitAgentReply(context.Background(), "t1", "   ")
	if code := domainCode(t, err); code != "VALIDATION_FAILED" {
		t.Errorf("expected VALIDATION_FAILED, got %s", code)
	}
	if rewriter.calls != 0 {
		t.Error("enrichment must not run for an empty draft")
	}
}
