package auth

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateAndValidateToken(t *testing.T) {
	svc := NewJWTService("secret", "dental-api", time.Hour)
	userID := uuid.New()

	token, claims, err := svc.GenerateAccessToken(userID, "doc@clinic.mx", "doctor")
	require.NoError(t, err)
	assert.NotEmpty(t, claims.ID)

	parsed, err := svc.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, userID.String(), parsed.UserID)
	assert.Equal(t, "doc@clinic.mx", parsed.Email)
	assert.Equal(t, "doctor", parsed.Role)
	assert.Equal(t, claims.ID, parsed.ID)
}

func TestValidateTokenRejectsOtherSecret(t *testing.T) {
	token, _, err := NewJWTService("one", "dental-api", time.Hour).GenerateAccessToken(uuid.New(), "a@b.c", "staff")
	require.NoError(t, err)

	_, err = NewJWTService("two", "dental-api", time.Hour).ValidateToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestValidateTokenRejectsExpired(t *testing.T) {
	svc := NewJWTService("secret", "dental-api", time.Minute).(*hmacService)
	svc.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	token, _, err := svc.GenerateAccessToken(uuid.New(), "a@b.c", "staff")
	require.NoError(t, err)

	svc.now = time.Now
	_, err = svc.ValidateToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}
