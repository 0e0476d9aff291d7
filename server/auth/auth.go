package auth

import (
	"errors"
	"strings"
)

var ErrInvalidCredentials = errors.New("invalid credentials")

const (
	RoleAdmin = "admin"
	RoleUser  = "user"
)

// Session is what a successful login hands back to the client.
type Session struct {
	Email string `json:"email"`
	Role  string `json:"role"`
	Token string `json:"token"`
	Name  string `json:"name"`
}

// Authenticator checks a credential pair. The catalog workflows never see
// credentials; they only consume the Authorizer verdict.
type Authenticator interface {
	Login(email, password string) (*Session, error)
}

// Authorizer answers whether a bearer token may perform catalog writes.
type Authorizer interface {
	Authorize(token string) bool
}

// MockAuthenticator reproduces the development credential pairs: one fixed
// admin login, and any other non-empty pair logs in as a regular user.
type MockAuthenticator struct{}

func (MockAuthenticator) Login(email, password string) (*Session, error) {
	if email == "admin@test.com" && password == "admin" {
		return &Session{Email: email, Role: RoleAdmin, Token: "mock-admin-token", Name: "Admin User"}, nil
	}

	if email != "" && password != "" {
		return &Session{Email: email, Role: RoleUser, Token: "mock-user-token", Name: "Demo User"}, nil
	}

	return nil, ErrInvalidCredentials
}

// TokenAuthorizer authorizes requests carrying the configured admin token.
type TokenAuthorizer struct {
	AdminToken string
}

func (a TokenAuthorizer) Authorize(token string) bool {
	return a.AdminToken != "" && token == a.AdminToken
}

// BearerToken extracts the token from an Authorization header value.
func BearerToken(header string) string {
	const prefix = "Bearer "
	if strings.HasPrefix(header, prefix) {
		return strings.TrimSpace(strings.TrimPrefix(header, prefix))
	}

	return ""
}
