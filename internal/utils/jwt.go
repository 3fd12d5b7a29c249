package utils

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"referral-app-server/internal/config"
	"referral-app-server/internal/models"
)

// Claims represents the JWT claims. DoctorID is populated only for users
// with the doctor role and identifies their Doctor record.
type Claims struct {
	UserID   string      `json:"user_id"`
	Role     models.Role `json:"role"`
	DoctorID string      `json:"doctor_id,omitempty"`
	jwt.RegisteredClaims
}

// GenerateTokens generates both access and refresh tokens for a user.
func GenerateTokens(user *models.User, doctorID string, cfg *config.Config) (accessToken string, refreshToken string, err error) {
	accessToken, err = generateToken(user, doctorID, cfg.JWTSecret,
		time.Duration(cfg.JWTExpirationMinutes)*time.Minute)
	if err != nil {
		return "", "", err
	}

	refreshToken, err = generateToken(user, doctorID, cfg.JWTRefreshSecret,
		time.Duration(cfg.JWTRefreshExpirationHours)*time.Hour)
	if err != nil {
		return "", "", err
	}

	return accessToken, refreshToken, nil
}

func generateToken(user *models.User, doctorID, secret string, lifetime time.Duration) (string, error) {
	expirationTime := time.Now().Add(lifetime)
	claims := &Claims{
		UserID:   user.ID,
		Role:     user.Role,
		DoctorID: doctorID,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(expirationTime),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			Subject:   user.ID,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString([]byte(secret))
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return tokenString, nil
}

// ValidateToken validates a JWT token.
func ValidateToken(tokenString string, secretKey string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(secretKey), nil
	})

	if err != nil {
		return nil, fmt.Errorf("failed to parse token: %w", err)
	}

	if !token.Valid {
		return nil, fmt.Errorf("invalid token")
	}

	return claims, nil
}
