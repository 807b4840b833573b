package session

import (
	"context"
	"testing"
	"time"

	"console-service/internal/model"
	"console-service/pkg/config"

	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func initTestSessions(t *testing.T) {
	t.Helper()
	Initialize(&config.SessionConfig{
		SigningKey:      "test-signing-key",
		ExpirationHours: 1,
	})
}

func TestTokenRoundtrip(t *testing.T) {
	initTestSessions(t)

	user := &model.User{
		ID:    "u1",
		Email: "member@acme.test",
		Role:  model.RoleMember,
	}

	token, err := GenerateToken(user)
	require.NoError(t, err)

	claims, err := ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "u1", claims.UserID)
	assert.Equal(t, "member@acme.test", claims.Email)
	assert.Equal(t, model.RoleMember, claims.Role)
}

func TestValidateRejectsExpiredToken(t *testing.T) {
	initTestSessions(t)

	claims := Claims{
		UserID: "u1",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Minute)),
			IssuedAt:  jwt.NewNumericDate(time.Now().Add(-time.Hour)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-signing-key"))
	require.NoError(t, err)

	_, err = ValidateToken(token)
	assert.Error(t, err)
}

func TestValidateRejectsForeignSignature(t *testing.T) {
	initTestSessions(t)

	claims := Claims{
		UserID: "u1",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("some-other-key"))
	require.NoError(t, err)

	_, err = ValidateToken(token)
	assert.Error(t, err)
}

func TestValidateRejectsGarbage(t *testing.T) {
	initTestSessions(t)

	_, err := ValidateToken("not.a.token")
	assert.Error(t, err)
}

func TestClaimsContextRoundtrip(t *testing.T) {
	claims := &Claims{UserID: "u1"}

	ctx := WithClaims(context.Background(), claims)
	assert.Equal(t, claims, ClaimsFrom(ctx))

	assert.Nil(t, ClaimsFrom(context.Background()))
}
