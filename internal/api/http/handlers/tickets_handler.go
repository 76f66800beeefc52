package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/helpdesk-service/internal/api/dto"
	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/internal/service"
	apperrors "github.com/spec-kit/helpdesk-service/pkg/util"
)

// TicketsHandler serves the public customer endpoints. The ticket id acts as
// the access capability; customers reach their ticket through the emailed
// link, not through a login.
type TicketsHandler struct {
	tickets       *service.TicketService
	conversations *service.ConversationService
}

// NewTicketsHandler constructs handler.
func NewTicketsHandler(tickets *service.TicketService, conversations *service.ConversationService) *TicketsHandler {
	return &TicketsHandler{tickets: tickets, conversations: conversations}
}

// CreateTicket POST /tickets.
func (h *TicketsHandler) CreateTicket(c *fiber.Ctx) error {
	var req dto.CreateTicketRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	ticket, err := h.tickets.CreateTicket(c.UserContext(), service.TicketIntakeInput{
		Name:    req.Name,
		Email:   req.Email,
		Title:   req.Title,
		Message: req.Message,
	})
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"data": ticketDetail(ticket)})
}

// GetTicket GET /tickets/:id.
func (h *TicketsHandler) GetTicket(c *fiber.Ctx) error {
	ticket, err := h.tickets.GetTicket(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	detail := ticketDetail(ticket)
	// The customer view never exposes the stored email address.
	detail.CustomerEmail = ""
	return c.JSON(fiber.Map{"data": detail})
}

// AddCustomerMessage POST /tickets/:id/messages.
func (h *TicketsHandler) AddCustomerMessage(c *fiber.Ctx) error {
	var req dto.MessageRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if err := h.conversations.SubmitCustomerReply(c.UserContext(), c.Params("id"), req.Message); err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"data": fiber.Map{"success": true}})
}

func ticketSummary(ticket *domain.Ticket) dto.TicketSummary {
	return dto.TicketSummary{
		ID:              ticket.ID,
		Title:           ticket.Title,
		CustomerName:    ticket.CustomerName,
		CustomerEmail:   ticket.CustomerEmail,
		Status:          ticket.Status,
		UnreadBySupport: ticket.UnreadBySupport,
		MessageCount:    len(ticket.Messages),
		CreatedAt:       ticket.CreatedAt,
		UpdatedAt:       ticket.UpdatedAt,
	}
}

func ticketDetail(ticket *domain.Ticket) dto.TicketDetailResponse {
	msgs := make([]dto.MessageResponse, 0, len(ticket.Messages))
	for _, msg := range ticket.Messages {
		msgs = append(msgs, dto.MessageResponse{
			Body:      msg.Body,
			Sender:    msg.Sender,
			CreatedAt: msg.CreatedAt,
		})
	}
	return dto.TicketDetailResponse{
		ID:              ticket.ID,
		Title:           ticket.Title,
		CustomerName:    ticket.CustomerName,
		CustomerEmail:   ticket.CustomerEmail,
		Status:          ticket.Status,
		UnreadBySupport: ticket.UnreadBySupport,
		Messages:        msgs,
		CreatedAt:       ticket.CreatedAt,
		UpdatedAt:       ticket.UpdatedAt,
	}
}
