package tokengenerator

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const AccessTokenName = "access_token"

const DefaultAccessTokenExpiry = 15 * time.Minute

// Claims carries the identity claims embedded in a session token
type Claims struct {
	Email string `json:"email,omitempty"`
	Name  string `json:"name,omitempty"`
	jwt.RegisteredClaims
}

// JwtService generates HS256 session tokens for authenticated identities
type JwtService struct {
	secret            []byte
	Issuer            string
	AccessTokenExpiry time.Duration
}

// JwtServiceOption is a function that configures a JwtService
type JwtServiceOption func(*JwtService)

// WithIssuer sets the token issuer claim
func WithIssuer(issuer string) JwtServiceOption {
	return func(js *JwtService) {
		js.Issuer = issuer
	}
}

// WithAccessTokenExpiry sets the access token expiry duration
func WithAccessTokenExpiry(expiry time.Duration) JwtServiceOption {
	return func(js *JwtService) {
		js.AccessTokenExpiry = expiry
	}
}

// NewJwtService creates a JwtService with the given signing secret
func NewJwtService(secret string, opts ...JwtServiceOption) *JwtService {
	js := &JwtService{
		secret:            []byte(secret),
		Issuer:            "shop-auth",
		AccessTokenExpiry: DefaultAccessTokenExpiry,
	}
	for _, opt := range opts {
		opt(js)
	}
	return js
}

// GenerateAccessToken creates a signed access token for the given identity.
// Returns the token string and its expiry time.
func (js *JwtService) GenerateAccessToken(userID uuid.UUID, email, name string) (string, time.Time, error) {
	now := time.Now().UTC()
	expireAt := now.Add(js.AccessTokenExpiry)

	claims := Claims{
		Email: email,
		Name:  name,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(expireAt),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now.Add(-5 * time.Minute)),
			Issuer:    js.Issuer,
			Subject:   userID.String(),
			ID:        uuid.New().String(),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(js.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to sign token: %w", err)
	}

	return signed, expireAt, nil
}

// ParseToken parses and validates a token string
func (js *JwtService) ParseToken(tokenStr string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return js.secret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to parse token: %w", err)
	}
	if !token.Valid {
		return nil, fmt.Errorf("invalid token")
	}
	return claims, nil
}
