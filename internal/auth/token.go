// Package auth 负责签发与校验访问令牌，并提供 gin 鉴权中间件。
package auth

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ariane/internal/entity"
)

// Claims 以 sub 携带用户 ID。
type Claims struct {
	jwt.RegisteredClaims
}

// Issuer signs and verifies HS256 tokens.
type Issuer struct {
	secret []byte
	ttl    time.Duration
	log    *zap.Logger
	now    func() time.Time
}

// NewIssuer 创建令牌签发器，secret 不能为空。
func NewIssuer(secret string, ttl time.Duration, log *zap.Logger) (*Issuer, error) {
	if strings.TrimSpace(secret) == "" {
		return nil, errors.New("jwt secret cannot be empty")
	}
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Issuer{secret: []byte(secret), ttl: ttl, log: log.Named("auth"), now: time.Now}, nil
}

// Generate returns a signed token for userID valid for the configured TTL.
func (i *Issuer) Generate(userID string) (string, error) {
	now := i.now()
	claims := &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(i.ttl)),
			ID:        uuid.NewString(),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(i.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Verify checks signature and expiry and returns the user id carried by the token.
func (i *Issuer) Verify(tokenString string) (string, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return i.secret, nil
	}, jwt.WithTimeFunc(i.now))
	if err != nil {
		i.log.Debug("token rejected", zap.Error(err))
		switch {
		case errors.Is(err, jwt.ErrTokenExpired):
			return "", fmt.Errorf("%w: token expired", entity.ErrUnauthorized)
		case errors.Is(err, jwt.ErrTokenMalformed):
			return "", fmt.Errorf("%w: token malformed", entity.ErrUnauthorized)
		default:
			return "", fmt.Errorf("%w: token invalid", entity.ErrUnauthorized)
		}
	}
	if !token.Valid || strings.TrimSpace(claims.Subject) == "" {
		return "", fmt.Errorf("%w: token invalid", entity.ErrUnauthorized)
	}
	return claims.Subject, nil
}
