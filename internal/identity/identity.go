// In file: internal/identity/identity.go

// Package identity extracts the caller's credential from an inbound request.
//
// An Identity lives for exactly one request. It is passed by value to the code that
// needs it and is never stored in package-level or otherwise shared state.
package identity

import (
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
)

// ContextKey is the gin context key an upstream middleware may use to pre-attach a token.
const ContextKey = "identity.token"

// HeaderAuthToken is the custom header accepted as the last-resort token source.
const HeaderAuthToken = "X-Auth-Token"

// Source records where a token was found.
type Source string

const (
	SourceNone     Source = ""
	SourceAttached Source = "attached"
	SourceBody     Source = "body"
	SourceBearer   Source = "bearer"
	SourceHeader   Source = "header"
)

// Identity is the per-request credential handed to tool executors.
type Identity struct {
	Token  string
	Source Source
}

// Valid reports whether the identity carries a token.
func (id Identity) Valid() bool {
	return id.Token != ""
}

// Subject returns the unverified "sub" claim when the token is a JWT.
// Only used to correlate log lines; the backend remains the authority on the token.
func (id Identity) Subject() string {
	if id.Token == "" {
		return ""
	}
	tok, _, err := jwt.NewParser().ParseUnverified(id.Token, jwt.MapClaims{})
	if err != nil {
		return ""
	}
	sub, err := tok.Claims.GetSubject()
	if err != nil {
		return ""
	}
	return sub
}

// Extract resolves the caller's token with a fixed precedence:
// pre-attached token, body token, Authorization bearer, then X-Auth-Token.
func Extract(r *http.Request, attached, bodyToken string) (Identity, bool) {
	if t := strings.TrimSpace(attached); t != "" {
		return Identity{Token: t, Source: SourceAttached}, true
	}
	if t := strings.TrimSpace(bodyToken); t != "" {
		return Identity{Token: t, Source: SourceBody}, true
	}
	if r != nil {
		if t := bearerToken(r.Header.Get("Authorization")); t != "" {
			return Identity{Token: t, Source: SourceBearer}, true
		}
		if t := strings.TrimSpace(r.Header.Get(HeaderAuthToken)); t != "" {
			return Identity{Token: t, Source: SourceHeader}, true
		}
	}
	return Identity{}, false
}

func bearerToken(header string) string {
	scheme, token, ok := strings.Cut(strings.TrimSpace(header), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}
