// Package auth issues and verifies instructor tokens. Instructor
// accounts live in a separate identity service; this service only
// trusts its HS256-signed claims.
package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"metislap/internal/domain"
)

const approvalApproved = "approved"

// Claims carries the instructor identity and approval status. Pending
// instructors can authenticate but may not create rooms.
type Claims struct {
	InstructorID   string `json:"instructorId"`
	ApprovalStatus string `json:"approvalStatus"`
	jwt.RegisteredClaims
}

type TokenManager struct {
	secret []byte
	ttl    time.Duration
}

func NewTokenManager(secret string, ttl time.Duration) *TokenManager {
	return &TokenManager{secret: []byte(secret), ttl: ttl}
}

// Mint signs a token for an instructor. Used by the token subcommand
// and by tests; production tokens come from the identity service with
// the shared secret.
func (m *TokenManager) Mint(instructorID string, approved bool) (string, error) {
	status := "pending"
	if approved {
		status = approvalApproved
	}
	now := time.Now()
	claims := &Claims{
		InstructorID:   instructorID,
		ApprovalStatus: status,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(m.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Verify parses and validates a token, returning the actor it names.
func (m *TokenManager) Verify(tokenString string) (domain.Actor, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return m.secret, nil
	})
	if err != nil {
		return domain.Actor{}, domain.ErrUnauthorized
	}
	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid || claims.InstructorID == "" {
		return domain.Actor{}, domain.ErrUnauthorized
	}
	return domain.Actor{
		InstructorID: claims.InstructorID,
		Approved:     claims.ApprovalStatus == approvalApproved,
	}, nil
}
