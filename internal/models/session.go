package models

import "github.com/golang-jwt/jwt/v5"

// SessionClaims are the bearer token claims the client cares about. The
// token is verified server-side; the client only extracts identity from it.
type SessionClaims struct {
	EntityAccountID string `json:"entity_account_id"`
	EntityType      string `json:"entity_type"`
	jwt.RegisteredClaims
}

// Session is the resolved auth context handed to the conversation core.
// Both fields are read-only inputs; the core never mutates them.
type Session struct {
	UserID     string
	EntityType string
	Token      string
}

func (session *Session) Resolved() bool {
	return session.UserID != "" && session.Token != ""
}
