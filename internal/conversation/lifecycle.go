package conversation

import "github.com/spec-kit/helpdesk-service/internal/domain"

// OnAgentReply advances a new ticket into IN_BEARBEITUNG and clears the
// unread flag. Any other status is left as it stands; replying to a closed
// ticket neither re-opens nor blocks it.
func OnAgentReply(current domain.TicketState) domain.TicketState {
	next := current
	if next.Status == domain.TicketStatusNew {
		next.Status = domain.TicketStatusInProgress
	}
	next.UnreadBySupport = false
	return next
}

// OnCustomerReply marks the ticket as needing agent attention. Status is
// never touched by customer activity.
func OnCustomerReply(current domain.TicketState) domain.TicketState {
	next := current
	next.UnreadBySupport = true
	return next
}

// OnClose sets ABGESCHLOSSEN and clears the unread flag regardless of the
// prior state, so closing an already-closed ticket is a no-op.
func OnClose(current domain.TicketState) domain.TicketState {
	return domain.TicketState{
		Status:          domain.TicketStatusClosed,
		UnreadBySupport: false,
	}
}
