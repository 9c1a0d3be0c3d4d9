package services

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/visitgate/visitgate/internal/models"
)

// TokenService mints stateless HS256 session tokens. Claims snapshot the
// user's role at issuance; later promotions do not touch live tokens.
type TokenService struct {
	secret []byte
	expiry time.Duration
}

func NewTokenService(secret string, expiry time.Duration) *TokenService {
	return &TokenService{secret: []byte(secret), expiry: expiry}
}

func (s *TokenService) Issue(user *models.User) (string, error) {
	username := ""
	if user.Username != nil {
		username = *user.Username
	}

	now := time.Now()
	claims := jwt.MapClaims{
		"sub":      user.ID,
		"username": username,
		"email":    user.Email,
		"role":     string(user.Role),
		"iat":      now.Unix(),
		"exp":      now.Add(s.expiry).Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}
