// In file: cmd/gateway/handler.go
package main

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/dileep-u-k/jet-concierge/internal/agent"
	"github.com/dileep-u-k/jet-concierge/internal/api"
	"github.com/dileep-u-k/jet-concierge/internal/identity"
	"github.com/dileep-u-k/jet-concierge/internal/llm"
	"github.com/dileep-u-k/jet-concierge/internal/tools"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// Authenticator exchanges credentials with the backend. *tools.Backend satisfies it.
type Authenticator interface {
	Login(ctx context.Context, email, password string) (tools.Session, error)
	Register(ctx context.Context, email, password, name string) (map[string]any, error)
}

// HealthReporter reports the state of the configured model. *llm.Profiler satisfies it.
type HealthReporter interface {
	Health(ctx context.Context, modelID string) *api.ModelHealth
}

// GatewayHandler binds HTTP routes to the agents and the direct tool dispatcher.
type GatewayHandler struct {
	agents   map[string]*agent.Agent
	direct   *agent.Direct
	auth     Authenticator
	registry *tools.Registry
	health   HealthReporter
	model    string
}

func NewGatewayHandler(agents map[string]*agent.Agent, registry *tools.Registry, auth Authenticator, health HealthReporter, model string) *GatewayHandler {
	return &GatewayHandler{
		agents:   agents,
		direct:   agent.NewDirect(registry),
		auth:     auth,
		registry: registry,
		health:   health,
		model:    model,
	}
}

// HandleAgent serves one natural-language agent route.
func (h *GatewayHandler) HandleAgent(role string) gin.HandlerFunc {
	return func(c *gin.Context) {
		a, ok := h.agents[role]
		if !ok {
			respond(c, api.Fail(api.CodeInternalError, nil))
			return
		}

		var req api.AgentRequest
		bindErr := c.ShouldBindJSON(&req)
		id, ok := requestIdentity(c, req.Token)
		if !ok {
			respond(c, api.Fail(api.CodeUnauthorized, nil))
			return
		}
		if bindErr != nil {
			respond(c, api.Fail(api.CodeBadRequest, bindErr.Error()))
			return
		}
		if strings.TrimSpace(req.Message) == "" {
			respond(c, api.Fail(api.CodeBadRequest, "message is required"))
			return
		}

		respond(c, a.HandleRequest(c.Request.Context(), req.Message, id))
	}
}

// HandleTool invokes a named tool with explicit params, without the model.
func (h *GatewayHandler) HandleTool(c *gin.Context) {
	var req api.ToolRequest
	bindErr := c.ShouldBindJSON(&req)
	id, ok := requestIdentity(c, req.Token)
	if !ok {
		respond(c, api.Fail(api.CodeUnauthorized, nil))
		return
	}
	if bindErr != nil {
		respond(c, api.Fail(api.CodeBadRequest, bindErr.Error()))
		return
	}
	if strings.TrimSpace(req.Tool) == "" {
		respond(c, api.Fail(api.CodeBadRequest, "tool is required"))
		return
	}
	respond(c, h.direct.Invoke(c.Request.Context(), req.Tool, req.Params, id))
}

// HandleListTools describes every tool /mcp accepts, with its parameter schema.
func (h *GatewayHandler) HandleListTools(c *gin.Context) {
	respond(c, api.OK(h.registry.Definitions(), "Available tools."))
}

// HandleLogin returns a backend token for the given credentials. The token is
// handed back to the caller only; the gateway keeps no copy.
func (h *GatewayHandler) HandleLogin(c *gin.Context) {
	var req api.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond(c, api.Fail(api.CodeBadRequest, err.Error()))
		return
	}
	session, err := h.auth.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		respond(c, authFailure(c.Request.Context(), err))
		return
	}
	respond(c, api.OK(session, "Login successful."))
}

// HandleRegister creates a backend account.
func (h *GatewayHandler) HandleRegister(c *gin.Context) {
	var req api.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond(c, api.Fail(api.CodeBadRequest, err.Error()))
		return
	}
	user, err := h.auth.Register(c.Request.Context(), req.Email, req.Password, req.Name)
	if err != nil {
		respond(c, authFailure(c.Request.Context(), err))
		return
	}
	respond(c, api.OK(user, "Your account has been created."))
}

func (h *GatewayHandler) HandleHealth(c *gin.Context) {
	resp := api.HealthResponse{
		Status:  "ok",
		Version: GetBuildInfo().Version,
		Tools:   h.registry.ToolCount(),
	}
	if h.health != nil {
		resp.LLM = h.health.Health(c.Request.Context(), h.model)
	}
	c.JSON(http.StatusOK, resp)
}

// requestIdentity applies the single token precedence used by every route. It runs
// before body validation so a caller without a credential always gets 401.
func requestIdentity(c *gin.Context, bodyToken string) (identity.Identity, bool) {
	return identity.Extract(c.Request, c.GetString(identity.ContextKey), bodyToken)
}

func authFailure(ctx context.Context, err error) api.Envelope {
	var execErr *tools.ExecError
	if !errors.As(err, &execErr) {
		zerolog.Ctx(ctx).Error().Err(err).Msg("auth call failed")
		return api.Fail(api.CodeInternalError, nil)
	}
	zerolog.Ctx(ctx).Warn().Str("code", execErr.Code).Msg("auth call rejected")
	if execErr.Code == tools.ExecBackendUnauthorized {
		return api.FailWithMessage(api.CodeUnauthorized, execErr.Message, nil)
	}
	return api.FailWithMessage(api.CodeToolExecutionError, execErr.Message, agent.ExecDetails{
		Code:   execErr.Code,
		Detail: execErr.Detail,
		Tool:   "auth",
	})
}

// respond writes env with the status its code maps to: 400 for an unreadable
// body, 401 for a missing credential, 200 otherwise.
func respond(c *gin.Context, env api.Envelope) {
	c.JSON(statusFor(env), env)
}

func statusFor(env api.Envelope) int {
	switch env.Error {
	case api.CodeBadRequest:
		return http.StatusBadRequest
	case api.CodeUnauthorized:
		return http.StatusUnauthorized
	default:
		return http.StatusOK
	}
}

var _ HealthReporter = (*llm.Profiler)(nil)
var _ Authenticator = (*tools.Backend)(nil)
