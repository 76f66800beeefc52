package handlers

import (
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/helpdesk-service/internal/api/dto"
	"github.com/spec-kit/helpdesk-service/internal/auth"
	"github.com/spec-kit/helpdesk-service/internal/conversation"
	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/internal/service"
	apperrors "github.com/spec-kit/helpdesk-service/pkg/util"
)

// SupportHandler serves the agent-facing endpoints behind the auth
// middleware.
type SupportHandler struct {
	tickets       *service.TicketService
	conversations *service.ConversationService
}

// NewSupportHandler constructs handler.
func NewSupportHandler(tickets *service.TicketService, conversations *service.ConversationService) *SupportHandler {
	return &SupportHandler{tickets: tickets, conversations: conversations}
}

// ListTickets GET /support/tickets.
func (h *SupportHandler) ListTickets(c *fiber.Ctx) error {
	if _, ok := auth.AgentFromContext(c); !ok {
		return apperrors.NewUnauthorized("agent required")
	}

	tickets, err := h.tickets.ListInbox(c.UserContext(), parseInboxQuery(c))
	if err != nil {
		return err
	}
	items := make([]dto.TicketSummary, 0, len(tickets))
	for i := range tickets {
		items = append(items, ticketSummary(&tickets[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// GetTicket GET /support/tickets/:id.
func (h *SupportHandler) GetTicket(c *fiber.Ctx) error {
	if _, ok := auth.AgentFromContext(c); !ok {
		return apperrors.NewUnauthorized("agent required")
	}

	ticket, err := h.tickets.GetTicket(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": ticketDetail(ticket)})
}

// Reply POST /support/tickets/:id/reply.
func (h *SupportHandler) Reply(c *fiber.Ctx) error {
	if _, ok := auth.AgentFromContext(c); !ok {
		return apperrors.NewUnauthorized("agent required")
	}

	var req dto.MessageRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	ticket, err := h.conversations.SubmitAgentReply(c.UserContext(), c.Params("id"), req.Message)
	if err != nil {
		return err
	}
	ticket.Messages = conversation.SortByCreatedAt(ticket.Messages)
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"data": ticketDetail(ticket)})
}

// CloseTicket POST /support/tickets/:id/close.
func (h *SupportHandler) CloseTicket(c *fiber.Ctx) error {
	if _, ok := auth.AgentFromContext(c); !ok {
		return apperrors.NewUnauthorized("agent required")
	}

	if err := h.conversations.CloseTicket(c.UserContext(), c.Params("id")); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": fiber.Map{"success": true}})
}

func parseInboxQuery(c *fiber.Ctx) service.InboxFilter {
	filter := service.InboxFilter{}
	if statusStr := strings.TrimSpace(c.Query("status")); statusStr != "" {
		status := domain.TicketStatus(statusStr)
		filter.Status = &status
	}
	if c.Query("unread") == "true" {
		filter.UnreadOnly = true
	}
	if search := strings.TrimSpace(c.Query("search")); search != "" {
		filter.SearchTerm = &search
	}
	page := parsePositiveInt(c.Query("page"), 1)
	pageSize := parsePositiveInt(c.Query("page_size"), 50)
	filter.Offset = (page - 1) * pageSize
	filter.Limit = pageSize
	return filter
}

func parsePositiveInt(val string, def int) int {
	if val == "" {
		return def
	}
	parsed, err := strconv.Atoi(val)
	if err != nil || parsed <= 0 {
		return def
	}
	return parsed
}
