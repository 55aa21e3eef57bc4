package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret-key-for-testing-purposes"

func signToken(t *testing.T, secret string, claims Claims) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	require.NoError(t, err)
	return signed
}

func baseClaims(expiry time.Duration) Claims {
	return Claims{
		UserID: "user-123",
		Email:  "ada@example.com",
		Name:   "Ada Lovelace",
		Role:   "customer",
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "user-123",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(expiry)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}
}

func TestValidator_Validate_Success(t *testing.T) {
	v := NewValidator(testSecret)
	token := signToken(t, testSecret, baseClaims(15*time.Minute))

	claims, err := v.Validate(token)

	require.NoError(t, err)
	assert.Equal(t, "user-123", claims.UserID)
	assert.Equal(t, "ada@example.com", claims.Email)
	assert.Equal(t, "customer", claims.Role)
}

func TestValidator_Validate_Expired(t *testing.T) {
	v := NewValidator(testSecret)
	token := signToken(t, testSecret, baseClaims(-1*time.Minute))

	_, err := v.Validate(token)

	assert.ErrorIs(t, err, ErrExpiredToken)
}

func TestValidator_Validate_WrongSecret(t *testing.T) {
	v := NewValidator(testSecret)
	token := signToken(t, "some-other-secret-key-entirely-xxxx", baseClaims(15*time.Minute))

	_, err := v.Validate(token)

	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestValidator_Validate_Garbage(t *testing.T) {
	v := NewValidator(testSecret)

	_, err := v.Validate("not-a-token")

	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestValidator_Validate_WrongAlgorithm(t *testing.T) {
	v := NewValidator(testSecret)
	// alg=none tokens must never validate.
	token := jwt.NewWithClaims(jwt.SigningMethodNone, baseClaims(15*time.Minute))
	signed, err := token.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = v.Validate(signed)

	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestValidator_Validate_SubjectFallback(t *testing.T) {
	v := NewValidator(testSecret)
	claims := baseClaims(15 * time.Minute)
	claims.UserID = ""
	token := signToken(t, testSecret, claims)

	got, err := v.Validate(token)

	require.NoError(t, err)
	assert.Equal(t, "user-123", got.UserID)
}
