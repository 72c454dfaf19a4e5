package main

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/dileep-u-k/jet-concierge/internal/agent"
	"github.com/dileep-u-k/jet-concierge/internal/api"
	"github.com/dileep-u-k/jet-concierge/internal/identity"
	"github.com/dileep-u-k/jet-concierge/internal/tools"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type stubGenerator string

func (s stubGenerator) Generate(context.Context, string) (string, error) { return string(s), nil }

type stubAuth struct {
	session tools.Session
	err     error
}

func (s stubAuth) Login(context.Context, string, string) (tools.Session, error) {
	return s.session, s.err
}

func (s stubAuth) Register(_ context.Context, email, _, name string) (map[string]any, error) {
	if s.err != nil {
		return nil, s.err
	}
	return map[string]any{"email": email, "name": name}, nil
}

type stubHealth struct{}

func (stubHealth) Health(_ context.Context, model string) *api.ModelHealth {
	return &api.ModelHealth{Model: model, Status: "online"}
}

// testGateway wires the real router over a fake backend that records auth headers.
type testGateway struct {
	engine *gin.Engine
	mu     sync.Mutex
	auths  []string
}

func newTestGateway(t *testing.T, modelOutput string, auth Authenticator) *testGateway {
	t.Helper()
	g := &testGateway{}
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		g.mu.Lock()
		g.auths = append(g.auths, r.Header.Get("Authorization"))
		g.mu.Unlock()
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/users/me":
			_, _ = w.Write([]byte(`{"id":"u1"}`))
		case "/bookings":
			_, _ = w.Write([]byte(`[]`))
		default:
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`{"detail":"Not Found"}`))
		}
	}))
	t.Cleanup(backend.Close)

	b, err := tools.NewBackend(tools.BackendConfig{BaseURL: backend.URL, Timeout: 2 * time.Second})
	require.NoError(t, err)
	registry, err := tools.NewCatalog(b)
	require.NoError(t, err)
	agents, err := initializeAgents(registry, stubGenerator(modelOutput))
	require.NoError(t, err)
	if auth == nil {
		auth = stubAuth{}
	}

	h := NewGatewayHandler(agents, registry, auth, stubHealth{}, "stub/phi")
	g.engine = newRouter(h, DefaultFileConfig())
	return g
}

func (g *testGateway) do(t *testing.T, method, path string, body any, headers map[string]string) (*httptest.ResponseRecorder, api.Envelope) {
	t.Helper()
	var buf bytes.Buffer
	switch b := body.(type) {
	case nil:
	case string:
		buf.WriteString(b)
	default:
		require.NoError(t, json.NewEncoder(&buf).Encode(b))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	g.engine.ServeHTTP(w, req)

	var env api.Envelope
	if w.Body.Len() > 0 {
		_ = json.Unmarshal(w.Body.Bytes(), &env)
	}
	return w, env
}

func TestAgentRouteWithoutTokenIs401(t *testing.T) {
	g := newTestGateway(t, `{"tool":"listUserBookings","params":{}}`, nil)

	w, env := g.do(t, http.MethodPost, "/ai/concierge", map[string]any{"message": "Show my bookings"}, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, api.CodeUnauthorized, env.Error)
	assert.Equal(t, "Please log in to access this feature.", env.Message)
	assert.Empty(t, g.auths)
}

func TestMissingTokenIs401WhateverTheBody(t *testing.T) {
	g := newTestGateway(t, `{"tool":"listUserBookings","params":{}}`, nil)

	for _, tc := range []struct {
		path string
		body any
	}{
		{"/ai/concierge", map[string]any{"message": ""}},
		{"/ai/concierge", map[string]any{}},
		{"/ai/reports", `{"message":`},
		{"/ai/admin", nil},
		{"/mcp", map[string]any{"params": map[string]any{}}},
		{"/mcp", map[string]any{"tool": "  "}},
	} {
		w, env := g.do(t, http.MethodPost, tc.path, tc.body, nil)
		assert.Equal(t, http.StatusUnauthorized, w.Code, "%s %v", tc.path, tc.body)
		assert.Equal(t, api.CodeUnauthorized, env.Error, "%s %v", tc.path, tc.body)
	}
	assert.Empty(t, g.auths)
}

func TestAgentRouteRejectsBadBody(t *testing.T) {
	g := newTestGateway(t, `{}`, nil)

	w, env := g.do(t, http.MethodPost, "/ai/admin", `{"message":`, map[string]string{"Authorization": "Bearer T1"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, api.CodeBadRequest, env.Error)

	w, env = g.do(t, http.MethodPost, "/ai/admin", map[string]any{"token": "T1"}, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code, "message is required")
	assert.Equal(t, api.CodeBadRequest, env.Error)

	w, env = g.do(t, http.MethodPost, "/ai/admin", map[string]any{"token": "T1", "message": "   "}, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "message is required", env.Details)
}

func TestConciergeRouteEndToEnd(t *testing.T) {
	g := newTestGateway(t, `{"tool":"listUserBookings","params":{}}`, nil)

	w, env := g.do(t, http.MethodPost, "/ai/concierge", map[string]any{"message": "Show my bookings"},
		map[string]string{"Authorization": "Bearer T-bearer"})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.True(t, env.Success)
	assert.Equal(t, "You have no bookings yet.", env.Message)
	assert.Equal(t, []string{"Bearer T-bearer", "Bearer T-bearer"}, g.auths)
	assert.NotEmpty(t, w.Header().Get(headerRequestID))
}

func TestBodyTokenWinsOverHeaders(t *testing.T) {
	g := newTestGateway(t, `{"tool":"listUserBookings","params":{}}`, nil)

	_, env := g.do(t, http.MethodPost, "/ai/concierge",
		map[string]any{"message": "Show my bookings", "token": "T-body"},
		map[string]string{"Authorization": "Bearer T-bearer", identity.HeaderAuthToken: "T-header"})
	require.True(t, env.Success)
	assert.Equal(t, []string{"Bearer T-body", "Bearer T-body"}, g.auths)
}

func TestAuthTokenHeaderIsLastResort(t *testing.T) {
	g := newTestGateway(t, `{"tool":"listUserBookings","params":{}}`, nil)

	_, env := g.do(t, http.MethodPost, "/ai/concierge", map[string]any{"message": "Show my bookings"},
		map[string]string{identity.HeaderAuthToken: "T-header"})
	require.True(t, env.Success)
	assert.Equal(t, "Bearer T-header", g.auths[0])
}

func TestAttachedIdentityWins(t *testing.T) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/ai/concierge", nil)
	c.Request.Header.Set("Authorization", "Bearer T-bearer")
	c.Set(identity.ContextKey, "T-attached")

	id, ok := requestIdentity(c, "T-body")
	require.True(t, ok)
	assert.Equal(t, "T-attached", id.Token)
	assert.Equal(t, identity.SourceAttached, id.Source)
}

func TestAdminToolViaConciergeRoute(t *testing.T) {
	g := newTestGateway(t, `{"tool":"updateFleetJet","params":{"jet_id":"J-42","status":"maintenance"}}`, nil)

	w, env := g.do(t, http.MethodPost, "/ai/concierge", map[string]any{"message": "Put jet J-42 into maintenance"},
		map[string]string{"Authorization": "Bearer T1"})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, api.CodeToolNotFound, env.Error)
	assert.Empty(t, g.auths)
}

func TestToolRoute(t *testing.T) {
	g := newTestGateway(t, `{}`, nil)
	headers := map[string]string{"Authorization": "Bearer T1"}

	_, env := g.do(t, http.MethodPost, "/mcp", map[string]any{"tool": "listUserBookings", "params": map[string]any{}}, headers)
	assert.True(t, env.Success)

	_, env = g.do(t, http.MethodPost, "/mcp", map[string]any{"tool": "bookHelicopter"}, headers)
	assert.Equal(t, api.CodeToolNotFound, env.Error)

	w, env := g.do(t, http.MethodPost, "/mcp", map[string]any{"params": map[string]any{}}, headers)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, api.CodeBadRequest, env.Error)

	w, _ = g.do(t, http.MethodPost, "/mcp", map[string]any{"tool": "listUserBookings"}, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestLoginRoute(t *testing.T) {
	g := newTestGateway(t, `{}`, stubAuth{session: tools.Session{Token: "jwt", TokenType: "bearer"}})

	w, env := g.do(t, http.MethodPost, "/auth/login", map[string]any{"email": "a@example.com", "password": "pw"}, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	require.True(t, env.Success)
	assert.Equal(t, map[string]any{"token": "jwt", "token_type": "bearer"}, env.Data)

	g = newTestGateway(t, `{}`, stubAuth{err: &tools.ExecError{
		Code: tools.ExecBackendUnauthorized, Message: "The email or password is incorrect.",
	}})
	w, env = g.do(t, http.MethodPost, "/auth/login", map[string]any{"email": "a@example.com", "password": "bad"}, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "The email or password is incorrect.", env.Message)
}

func TestRegisterConflict(t *testing.T) {
	g := newTestGateway(t, `{}`, stubAuth{err: &tools.ExecError{
		Code: tools.ExecConflict, Message: "An account with that email already exists.", Detail: "Email already registered",
	}})

	w, env := g.do(t, http.MethodPost, "/auth/register",
		map[string]any{"email": "a@example.com", "password": "pw", "name": "A"}, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, api.CodeToolExecutionError, env.Error)
	assert.Equal(t, "An account with that email already exists.", env.Message)
}

func TestHealthRoute(t *testing.T) {
	g := newTestGateway(t, `{}`, nil)

	w, _ := g.do(t, http.MethodGet, "/health", nil, nil)
	require.Equal(t, http.StatusOK, w.Code)

	var resp api.HealthResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, 8, resp.Tools)
	require.NotNil(t, resp.LLM)
	assert.Equal(t, "stub/phi", resp.LLM.Model)
}

func TestCORSPreflight(t *testing.T) {
	g := newTestGateway(t, `{}`, nil)

	req := httptest.NewRequest(http.MethodOptions, "/ai/concierge", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	req.Header.Set("Access-Control-Request-Headers", "X-Auth-Token")
	w := httptest.NewRecorder()
	g.engine.ServeHTTP(w, req)

	assert.Equal(t, "http://localhost:5173", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "true", w.Header().Get("Access-Control-Allow-Credentials"))
}

func TestStatusFor(t *testing.T) {
	assert.Equal(t, http.StatusOK, statusFor(api.OK(nil, "ok")))
	assert.Equal(t, http.StatusOK, statusFor(api.Fail(api.CodeLLMError, nil)))
	assert.Equal(t, http.StatusUnauthorized, statusFor(api.Fail(api.CodeUnauthorized, nil)))
	assert.Equal(t, http.StatusBadRequest, statusFor(api.Fail(api.CodeBadRequest, nil)))
}

var _ agent.Generator = stubGenerator("")

func TestListToolsRoute(t *testing.T) {
	g := newTestGateway(t, `{}`, nil)

	w := httptest.NewRecorder()
	g.engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/mcp/tools", nil))
	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Success bool         `json:"success"`
		Data    []tools.Tool `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.True(t, body.Success)
	require.Len(t, body.Data, 8)
	assert.Equal(t, tools.SearchJets, body.Data[0].Function.Name)
	assert.Equal(t, tools.SendNotification, body.Data[7].Function.Name)
	assert.Empty(t, g.auths)
}
