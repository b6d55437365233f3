// Package auth provides the credential primitives for the API: JWT access
// tokens, bcrypt password hashing, the bearer-token middleware, and the
// Firebase ID-token verifier used for federated login.
//
// AUTHENTICATION FLOW OVERVIEW:
//  1. A client registers (email/password) or signs in with Firebase.
//  2. The server issues a 7-day JWT access token carrying the user's
//     internal ID in the "sub" claim.
//  3. The client sends "Authorization: Bearer <token>" on protected routes.
//  4. RequireAuth validates the token, confirms the subject still exists,
//     and puts the userID in the request context.
//
// The token is stateless: signature plus expiry is everything the server
// needs, so no session storage is involved.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// tokenIssuer is the "iss" claim stamped into every token. Validation
// rejects tokens minted by anything else.
const tokenIssuer = "nexus-connect"

// TokenService handles JWT creation and validation.
//
// It holds the HMAC secret key used to sign and verify tokens. The same
// secret must be used for both operations.
type TokenService struct {
	secret []byte
}

// NewTokenService creates a TokenService with the given secret.
// The secret should be at least 32 bytes of random data in production.
// Example: JWT_SECRET=$(openssl rand -hex 32)
func NewTokenService(secret string) (*TokenService, error) {
	if len(secret) < 16 {
		return nil, errors.New("auth: JWT secret must be at least 16 characters")
	}
	return &TokenService{secret: []byte(secret)}, nil
}

// claims is the JWT payload. The "sub" (Subject) registered claim carries
// the internal user ID.
type claims struct {
	jwt.RegisteredClaims
}

// Generate creates and signs a new JWT access token for the given userID
// with the default 15-minute lifetime.
//
// The login/register paths all issue 7-day tokens via GenerateWithDuration;
// the short default exists so that nothing accidentally mints a long-lived
// token without saying so.
func (s *TokenService) Generate(userID string) (string, error) {
	return s.GenerateWithDuration(userID, 15*time.Minute)
}

// GenerateWithDuration creates a token with a custom expiry duration.
//
// Signing algorithm: HS256 (HMAC-SHA256), symmetric:, same key signs and
// verifies.
func (s *TokenService) GenerateWithDuration(userID string, d time.Duration) (string, error) {
	now := time.Now()

	c := claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(d)),
			Issuer:    tokenIssuer,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, c)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("auth: signing token: %w", err)
	}

	return signed, nil
}

// Validate parses and verifies a JWT string. Returns the userID (the "sub"
// claim) if the token is valid.
//
// Checks performed by the jwt library: signature, expiry, issuer, and the
// signing algorithm. Restricting the algorithm with jwt.WithValidMethods
// closes the classic algorithm-confusion hole where an attacker submits a
// token signed with "none".
func (s *TokenService) Validate(tokenStr string) (string, error) {
	token, err := jwt.ParseWithClaims(
		tokenStr,
		&claims{},
		func(token *jwt.Token) (any, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("auth: unexpected signing method: %v", token.Header["alg"])
			}
			return s.secret, nil
		},
		jwt.WithValidMethods([]string{"HS256"}),
		jwt.WithIssuer(tokenIssuer),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", fmt.Errorf("auth: token expired")
		}
		return "", fmt.Errorf("auth: invalid token: %w", err)
	}

	c, ok := token.Claims.(*claims)
	if !ok || !token.Valid {
		return "", fmt.Errorf("auth: invalid token claims")
	}

	userID := c.Subject
	if userID == "" {
		return "", fmt.Errorf("auth: token has no subject")
	}

	return userID, nil
}
