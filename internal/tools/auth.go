// In file: internal/tools/auth.go
package tools

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strings"
)

// Session is the result of a successful login. It is returned to the caller and
// never retained by the gateway.
type Session struct {
	Token     string `json:"token"`
	TokenType string `json:"token_type,omitempty"`
}

// Login exchanges credentials for a backend access token.
func (b *Backend) Login(ctx context.Context, email, password string) (Session, error) {
	form := url.Values{}
	form.Set("username", email)
	form.Set("password", password)

	var out struct {
		AccessToken string `json:"access_token"`
		TokenType   string `json:"token_type"`
	}
	err := b.do(ctx, request{
		method:      http.MethodPost,
		path:        "/auth/login",
		body:        []byte(form.Encode()),
		contentType: "application/x-www-form-urlencoded",
	}, &out)
	if err != nil {
		var execErr *ExecError
		if errors.As(err, &execErr) && execErr.Code == ExecBackendUnauthorized {
			execErr.Message = "The email or password is incorrect."
		}
		return Session{}, err
	}
	if strings.TrimSpace(out.AccessToken) == "" {
		return Session{}, &ExecError{
			Code:    ExecBadBackendResponse,
			Message: "Login did not return an access token.",
			Detail:  "missing access_token",
		}
	}
	return Session{Token: out.AccessToken, TokenType: out.TokenType}, nil
}

// Register creates a new user account. No token is required.
func (b *Backend) Register(ctx context.Context, email, password, name string) (map[string]any, error) {
	payload, err := encodeBody(map[string]string{"email": email, "password": password, "name": name})
	if err != nil {
		return nil, err
	}
	var out map[string]any
	err = b.do(ctx, request{
		method:      http.MethodPost,
		path:        "/auth/register",
		body:        payload,
		contentType: "application/json",
	}, &out)
	if err != nil {
		var execErr *ExecError
		if errors.As(err, &execErr) && execErr.Code == ExecConflict {
			execErr.Message = "An account with that email already exists."
		}
		return nil, err
	}
	return out, nil
}
