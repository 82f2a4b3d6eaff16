package utils

import (
	"fmt"

	"nightchat/internal/errs"
	"nightchat/internal/models"

	"github.com/golang-jwt/jwt/v5"
)

// ParseSessionToken extracts identity claims from the bearer token without
// verifying the signature. Verification is the server's job; the client only
// needs the entity account id to scope its requests.
func ParseSessionToken(tokenString string) (*models.SessionClaims, error) {
	claims := &models.SessionClaims{}
	parser := jwt.NewParser()
	if _, _, err := parser.ParseUnverified(tokenString, claims); err != nil {
		return nil, fmt.Errorf("error parsing token: %w", err)
	}

	if claims.EntityAccountID == "" {
		return nil, errs.ErrInvalidToken
	}

	return claims, nil
}

// SessionFromToken builds the session descriptor handed to the conversation
// core.
func SessionFromToken(tokenString string) (*models.Session, error) {
	claims, err := ParseSessionToken(tokenString)
	if err != nil {
		return nil, err
	}
	return &models.Session{
		UserID:     claims.EntityAccountID,
		EntityType: claims.EntityType,
		Token:      tokenString,
	}, nil
}
