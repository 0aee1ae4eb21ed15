package auth

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/lrcollege/tipledger/internal/domain"
)

const issuer = "tipledger"

// Claims represents the JWT claims. The subject carries the account id as
// a decimal string as well, for tooling that only understands "sub".
type Claims struct {
	AccountID int64  `json:"account_id"`
	Email     string `json:"email,omitempty"`
	jwt.RegisteredClaims
}

// Caller returns the identity the token was issued to.
func (c *Claims) Caller() domain.Caller {
	return domain.Caller{AccountID: c.AccountID, Email: c.Email}
}

// JWTManager manages JWT token creation and validation
type JWTManager struct {
	secretKey     []byte
	tokenDuration time.Duration
}

// NewJWTManager creates a new JWT manager
func NewJWTManager(secretKey string, tokenDuration time.Duration) *JWTManager {
	return &JWTManager{
		secretKey:     []byte(secretKey),
		tokenDuration: tokenDuration,
	}
}

// Generate generates a new JWT token for the caller's account.
func (m *JWTManager) Generate(caller domain.Caller) (string, error) {
	if caller.AccountID <= 0 {
		return "", fmt.Errorf("%w: account id must be positive", domain.ErrInvalidToken)
	}

	now := time.Now()
	claims := Claims{
		AccountID: caller.AccountID,
		Email:     caller.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   strconv.FormatInt(caller.AccountID, 10),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.tokenDuration)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(m.secretKey)
}

// Verify verifies a JWT token and returns the claims
func (m *JWTManager) Verify(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(
		tokenString,
		&Claims{},
		func(token *jwt.Token) (any, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
			}
			return m.secretKey, nil
		},
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, domain.ErrExpiredToken
		}
		return nil, domain.ErrInvalidToken
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid || claims.AccountID <= 0 {
		return nil, domain.ErrInvalidToken
	}

	return claims, nil
}
