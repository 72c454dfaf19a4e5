// In file: internal/api/requests.go
package api

// AgentRequest is the body accepted by the natural-language agent routes.
type AgentRequest struct {
	Message string `json:"message"`
	// Token is an optional body-level credential; headers are also accepted.
	Token string `json:"token,omitempty"`
}

// ToolRequest is the body accepted by the direct tool route. It skips generation
// but still goes through registry lookup and parameter validation.
type ToolRequest struct {
	Tool   string         `json:"tool"`
	Params map[string]any `json:"params"`
	Token  string         `json:"token,omitempty"`
}

// LoginRequest exchanges backend credentials for a token.
type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// RegisterRequest creates a backend user account.
type RegisterRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
	Name     string `json:"name" binding:"required"`
}

// HealthResponse is returned by the liveness route.
type HealthResponse struct {
	Status  string       `json:"status"`
	Version string       `json:"version"`
	Tools   int          `json:"tools"`
	LLM     *ModelHealth `json:"llm,omitempty"`
}

// ModelHealth summarizes the last known state of the configured model.
type ModelHealth struct {
	Model        string  `json:"model"`
	Status       string  `json:"status"`
	AvgLatencyMS int64   `json:"avg_latency_ms"`
	ErrorRate    float64 `json:"error_rate"`
	LastCheck    string  `json:"last_check,omitempty"`
}
