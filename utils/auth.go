package utils

import (
	"time"

	"github.com/dgrijalva/jwt-go"
)

// JWT Secret Key
var JwtKey = []byte("your_secret_key") // This will be loaded from .env

// Token lifetimes
const (
	LoginTokenTTL = 7 * 24 * time.Hour
	ResetTokenTTL = time.Hour
)

// ResetPurpose marks a token issued only for password recovery.
const ResetPurpose = "reset"

// Claims represents the JWT claims
type Claims struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	UserType string `json:"userType"`
	Purpose  string `json:"purpose,omitempty"`
	jwt.StandardClaims
}

// GenerateJWT generates a login token for a user
func GenerateJWT(id, username, userType string) (string, error) {
	claims := &Claims{
		ID:       id,
		Username: username,
		UserType: userType,
		StandardClaims: jwt.StandardClaims{
			ExpiresAt: time.Now().Add(LoginTokenTTL).Unix(),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(JwtKey)
}

// GenerateResetJWT generates a short-lived token accepted only by the
// password reset endpoint.
func GenerateResetJWT(id, username string) (string, error) {
	claims := &Claims{
		ID:       id,
		Username: username,
		Purpose:  ResetPurpose,
		StandardClaims: jwt.StandardClaims{
			ExpiresAt: time.Now().Add(ResetTokenTTL).Unix(),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(JwtKey)
}

// ParseJWT parses and validates a token string.
func ParseJWT(tokenStr string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(token *jwt.Token) (interface{}, error) {
		return JwtKey, nil
	})
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, jwt.NewValidationError("invalid token", jwt.ValidationErrorSignatureInvalid)
	}
	return claims, nil
}
