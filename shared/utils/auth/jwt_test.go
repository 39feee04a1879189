package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateAndValidateJWT(t *testing.T) {
	userID, orgID := uuid.New(), uuid.New()

	token, err := GenerateJWT(userID, "owner@acme.test", orgID, "OWNER")
	require.NoError(t, err)

	claims, err := ValidateJWT(token)
	require.NoError(t, err)
	assert.Equal(t, userID.String(), claims.UserID)
	assert.Equal(t, orgID.String(), claims.OrganizationID)
	assert.Equal(t, "OWNER", claims.Role)

	id, err := claims.UserUUID()
	require.NoError(t, err)
	assert.Equal(t, userID, id)
}

func TestValidateJWTRejectsTampering(t *testing.T) {
	token, err := GenerateJWT(uuid.New(), "a@b.test", uuid.Nil, "ADMIN")
	require.NoError(t, err)

	_, err = ValidateJWT(token + "x")
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = ValidateJWT("not-a-token")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestValidateJWTRejectsExpiredAndForeignTokens(t *testing.T) {
	past := time.Now().Add(-2 * time.Hour)
	expired := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		UserID: uuid.NewString(),
		Role:   "OWNER",
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			ExpiresAt: jwt.NewNumericDate(past),
			IssuedAt:  jwt.NewNumericDate(past.Add(-time.Hour)),
		},
	})
	signed, err := expired.SignedString(jwtSecret())
	require.NoError(t, err)
	_, err = ValidateJWT(signed)
	assert.ErrorIs(t, err, ErrInvalidToken)

	foreign := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		UserID: uuid.NewString(),
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    "someone-else",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	})
	signed, err = foreign.SignedString(jwtSecret())
	require.NoError(t, err)
	_, err = ValidateJWT(signed)
	assert.ErrorIs(t, err, ErrInvalidToken)

	badSubject := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		UserID: "not-a-uuid",
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	})
	signed, err = badSubject.SignedString(jwtSecret())
	require.NoError(t, err)
	_, err = ValidateJWT(signed)
	assert.ErrorIs(t, err, ErrInvalidToken)
}
