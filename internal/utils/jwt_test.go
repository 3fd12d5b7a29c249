package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"referral-app-server/internal/config"
	"referral-app-server/internal/models"
)

func TestGenerateAndValidateTokens(t *testing.T) {
	cfg := &config.Config{
		JWTSecret:                 "test-secret",
		JWTRefreshSecret:          "test-refresh-secret",
		JWTExpirationMinutes:      15,
		JWTRefreshExpirationHours: 24,
	}
	user := &models.User{
		BaseModel: models.BaseModel{ID: "user-1"},
		Email:     "dr.jones@example.com",
		Role:      models.RoleDoctor,
	}

	accessToken, refreshToken, err := GenerateTokens(user, "doc-1", cfg)
	require.NoError(t, err)

	t.Run("access token carries identity and doctor claims", func(t *testing.T) {
		claims, err := ValidateToken(accessToken, cfg.JWTSecret)
		require.NoError(t, err)
		assert.Equal(t, "user-1", claims.UserID)
		assert.Equal(t, models.RoleDoctor, claims.Role)
		assert.Equal(t, "doc-1", claims.DoctorID)
	})

	t.Run("refresh token validates against the refresh secret only", func(t *testing.T) {
		_, err := ValidateToken(refreshToken, cfg.JWTRefreshSecret)
		require.NoError(t, err)

		_, err = ValidateToken(refreshToken, cfg.JWTSecret)
		assert.Error(t, err)
	})

	t.Run("tampered token is rejected", func(t *testing.T) {
		_, err := ValidateToken(accessToken+"x", cfg.JWTSecret)
		assert.Error(t, err)
	})
}
