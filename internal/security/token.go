package security

import (
	"errors"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"tenantadmin-backend/internal/domain"
)

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrExpiredToken = errors.New("token has expired")
)

// UserClaims defines the standard claims for our application
type UserClaims struct {
	UserID    string  `json:"user_id"`
	Email     string  `json:"email,omitempty"`
	Role      string  `json:"role"`
	CompanyID *string `json:"company_id,omitempty"`
	jwt.RegisteredClaims
}

// Actor rebuilds the authenticated actor from the token claims.
func (c *UserClaims) Actor() domain.Actor {
	return domain.Actor{ID: c.UserID, Role: domain.Role(c.Role), CompanyID: c.CompanyID}
}

type TokenManager interface {
	GenerateAccessToken(userID, email string, role domain.Role, companyID *string) (string, error)
	ValidateToken(tokenString string) (*UserClaims, error)
}

type tokenManager struct {
	secret []byte
	expiry time.Duration
}

func NewTokenManager(secret string, expiryMinutes int) TokenManager {
	return &tokenManager{
		secret: []byte(secret),
		expiry: time.Duration(expiryMinutes) * time.Minute,
	}
}

func (m *tokenManager) GenerateAccessToken(userID, email string, role domain.Role, companyID *string) (string, error) {
	claims := UserClaims{
		UserID:    userID,
		Email:     email,
		Role:      string(role),
		CompanyID: companyID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(m.expiry)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			Issuer:    "tenantadmin-backend",
			Audience:  jwt.ClaimStrings{"api-access"},
			ID:        generateJTI(),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(m.secret)
}

func (m *tokenManager) ValidateToken(tokenString string) (*UserClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &UserClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return m.secret, nil
	})

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		return nil, ErrInvalidToken
	}

	if claims, ok := token.Claims.(*UserClaims); ok && token.Valid {
		if claims.UserID == "" && claims.Subject != "" {
			claims.UserID = claims.Subject
		}
		if !domain.Role(claims.Role).Assignable() {
			return nil, ErrInvalidToken
		}
		return claims, nil
	}

	return nil, ErrInvalidToken
}

// Simple unique ID generator
func generateJTI() string {
	return strconv.FormatInt(time.Now().UnixNano(), 16)
}
