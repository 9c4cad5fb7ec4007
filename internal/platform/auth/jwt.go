package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"gitroute/internal/platform/config"
)

// Claims identify an authenticated tenant member. CanManage gates every
// registry command; the transport that mints tokens decides who holds
// management rights.
type Claims struct {
	UserID    string `json:"uid"`
	TenantID  string `json:"tid"`
	CanManage bool   `json:"mgr"`
	jwt.RegisteredClaims
}

type TokenService struct {
	config config.JWTConfig
}

func NewTokenService(cfg config.JWTConfig) *TokenService {
	return &TokenService{config: cfg}
}

func (s *TokenService) GenerateToken(userID, tenantID string, canManage bool) (string, error) {
	claims := Claims{
		UserID:    userID,
		TenantID:  tenantID,
		CanManage: canManage,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(s.config.AccessTokenTTL)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			Issuer:    "gitroute",
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.config.Secret))
}

func (s *TokenService) ValidateToken(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return []byte(s.config.Secret), nil
	})

	if err != nil {
		return nil, err
	}

	if claims, ok := token.Claims.(*Claims); ok && token.Valid {
		return claims, nil
	}

	return nil, errors.New("invalid token")
}
