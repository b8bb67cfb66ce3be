package security

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"tenantadmin-backend/internal/domain"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func TestTokenManager_RoundTrip(t *testing.T) {
	tm := NewTokenManager(testSecret, 15)
	userID := uuid.NewString()
	companyID := uuid.NewString()

	token, err := tm.GenerateAccessToken(userID, "jdoe@acme.test", domain.RoleUser, &companyID)
	assert.NoError(t, err)
	assert.NotEmpty(t, token)

	claims, err := tm.ValidateToken(token)
	assert.NoError(t, err)
	assert.Equal(t, userID, claims.UserID)
	assert.Equal(t, "jdoe@acme.test", claims.Email)
	assert.Equal(t, string(domain.RoleUser), claims.Role)
	if assert.NotNil(t, claims.CompanyID) {
		assert.Equal(t, companyID, *claims.CompanyID)
	}

	actor := claims.Actor()
	assert.Equal(t, userID, actor.ID)
	assert.Equal(t, domain.RoleUser, actor.Role)
}

func TestTokenManager_AdminHasNoCompany(t *testing.T) {
	tm := NewTokenManager(testSecret, 15)

	token, err := tm.GenerateAccessToken(uuid.NewString(), "boss@acme.test", domain.RoleAdmin, nil)
	assert.NoError(t, err)

	claims, err := tm.ValidateToken(token)
	assert.NoError(t, err)
	assert.Nil(t, claims.CompanyID)
}

func TestTokenManager_ExpiredToken(t *testing.T) {
	tm := NewTokenManager(testSecret, -1)

	token, err := tm.GenerateAccessToken(uuid.NewString(), "jdoe@acme.test", domain.RoleUser, nil)
	assert.NoError(t, err)

	_, err = tm.ValidateToken(token)
	assert.ErrorIs(t, err, ErrExpiredToken)
}

func TestTokenManager_WrongSecret(t *testing.T) {
	token, err := NewTokenManager(testSecret, 15).
		GenerateAccessToken(uuid.NewString(), "jdoe@acme.test", domain.RoleUser, nil)
	assert.NoError(t, err)

	_, err = NewTokenManager("another-secret-another-secret-xx", 15).ValidateToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestTokenManager_GarbageToken(t *testing.T) {
	_, err := NewTokenManager(testSecret, 15).ValidateToken("not.a.jwt")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestTokenManager_UnknownRoleRejected(t *testing.T) {
	tm := NewTokenManager(testSecret, 15)

	token, err := tm.GenerateAccessToken(uuid.NewString(), "jdoe@acme.test", domain.Role("root"), nil)
	assert.NoError(t, err)

	_, err = tm.ValidateToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}
