package conversation

import (
	"testing"

	"github.com/spec-kit/helpdesk-service/internal/domain"
)

func TestOnAgentReply(t *testing.T) {
	tests := []struct {
		name       string
		current    domain.TicketState
		wantStatus domain.TicketStatus
	}{
		{"new advances", domain.TicketState{Status: domain.TicketStatusNew, UnreadBySupport: true}, domain.TicketStatusInProgress},
		{"in progress stays", domain.TicketState{Status: domain.TicketStatusInProgress, UnreadBySupport: true}, domain.TicketStatusInProgress},
		{"closed stays closed", domain.TicketState{Status: domain.TicketStatusClosed, UnreadBySupport: true}, domain.TicketStatusClosed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := OnAgentReply(tt.current)
			if got.Status != tt.wantStatus {
				t.Errorf("status: expected %s, got %s", tt.wantStatus, got.Status)
			}
			if got.UnreadBySupport {
				t.Error("agent reply must clear the unread flag")
			}
		})
	}
}

func TestOnCustomerReply(t *testing.T) {
	for _, status := range []domain.TicketStatus{
		domain.TicketStatusNew,
		domain.TicketStatusInProgress,
		domain.TicketStatusClosed,
	} {
		got := OnCustomerReply(domain.TicketState{Status: status, UnreadBySupport: false})
		if got.Status != status {
			t.Errorf("customer reply changed status %s to %s", status, got.Status)
		}
		if !got.UnreadBySupport {
			t.Errorf("customer reply must set the unread flag (status %s)", status)
		}
	}
}

func TestOnClose_Idempotent(t *testing.T) {
	once := OnClose(domain.TicketState{Status: domain.TicketStatusInProgress, UnreadBySupport: true})
	twice := OnClose(once)

	want := domain.TicketState{Status: domain.TicketStatusClosed, UnreadBySupport: false}
	if once != want {
		t.Errorf("first close: got %+v", once)
	}
	if twice != want {
		t.Errorf("second close: got %+v", twice)
	}
}
