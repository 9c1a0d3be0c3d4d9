package services

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/visitgate/visitgate/internal/models"
)

func TestTokenServiceClaims(t *testing.T) {
	svc := NewTokenService("secret", time.Hour)
	username := "alice"
	user := &models.User{
		FullName: "Alice",
		Email:    "alice@u.edu",
		Username: &username,
		Role:     models.RoleStaff,
	}
	user.ID = 42

	raw, err := svc.Issue(user)
	require.NoError(t, err)

	claims := decodeClaims(t, "secret", raw)
	assert.Equal(t, "alice", claims["username"])
	assert.Equal(t, "alice@u.edu", claims["email"])
	assert.Equal(t, string(models.RoleStaff), claims["role"])

	exp, err := claims.GetExpirationTime()
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Hour), exp.Time, time.Minute)
}

func TestTokenServiceRejectsWrongSecret(t *testing.T) {
	svc := NewTokenService("secret-a", time.Hour)
	user := &models.User{Email: "a@u.edu", Role: models.RoleStudent}

	raw, err := svc.Issue(user)
	require.NoError(t, err)

	_, err = jwt.Parse(raw, func(_ *jwt.Token) (interface{}, error) {
		return []byte("secret-b"), nil
	})
	assert.Error(t, err)
}
