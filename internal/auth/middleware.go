package auth

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/internal/repository"
	apperrors "github.com/spec-kit/helpdesk-service/pkg/util"
)

const agentKey = "auth_agent"

// AgentMiddleware validates bearer tokens and loads the agent principal for
// support routes.
type AgentMiddleware struct {
	tokens *TokenManager
	agents repository.AgentRepository
}

// NewAgentMiddleware constructs middleware.
func NewAgentMiddleware(tokens *TokenManager, agents repository.AgentRepository) *AgentMiddleware {
	return &AgentMiddleware{tokens: tokens, agents: agents}
}

// Handle enforces authentication for support routes.
func (m *AgentMiddleware) Handle(c *fiber.Ctx) error {
	authHeader := c.Get("Authorization")
	if authHeader == "" {
		return apperrors.NewUnauthorized("missing authorization header")
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return apperrors.NewUnauthorized("invalid authorization header")
	}

	claims, err := m.tokens.ParseToken(parts[1])
	if err != nil {
		return apperrors.NewUnauthorized("invalid token")
	}

	agent, err := m.agents.GetByID(c.Context(), claims.AgentID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewUnauthorized("agent not found")
		}
		return apperrors.MapError(err)
	}

	c.Locals(agentKey, agent)
	return c.Next()
}

// AgentFromContext retrieves the authenticated agent.
func AgentFromContext(c *fiber.Ctx) (*domain.Agent, bool) {
	val := c.Locals(agentKey)
	if val == nil {
		return nil, false
	}
	agent, ok := val.(*domain.Agent)
	return agent, ok
}
