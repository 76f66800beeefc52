package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/helpdesk-service/internal/api/dto"
	"github.com/spec-kit/helpdesk-service/internal/auth"
	"github.com/spec-kit/helpdesk-service/internal/service"
	apperrors "github.com/spec-kit/helpdesk-service/pkg/util"
)

// AgentsHandler manages agent authentication endpoints.
type AgentsHandler struct {
	authService *service.AuthService
}

// NewAgentsHandler constructs handler.
func NewAgentsHandler(authService *service.AuthService) *AgentsHandler {
	return &AgentsHandler{authService: authService}
}

// Login POST /auth/support/login.
func (h *AgentsHandler) Login(c *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	result, err := h.authService.Login(c.UserContext(), req.Email, req.Password)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.LoginResponse{
		Token:     result.Token,
		ExpiresAt: result.ExpiresAt,
		Agent: dto.AgentResponse{
			ID:    result.Agent.ID,
			Name:  result.Agent.Name,
			Email: result.Agent.Email,
		},
	}})
}

// CreateAgent POST /support/agents. Only reachable by authenticated agents.
func (h *AgentsHandler) CreateAgent(c *fiber.Ctx) error {
	if _, ok := auth.AgentFromContext(c); !ok {
		return apperrors.NewUnauthorized("agent required")
	}

	var req dto.CreateAgentRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	agent, err := h.authService.CreateAgent(c.UserContext(), req.Name, req.Email, req.Password)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"data": dto.AgentResponse{
		ID:    agent.ID,
		Name:  agent.Name,
		Email: agent.Email,
	}})
}
