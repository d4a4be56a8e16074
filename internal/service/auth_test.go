package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/pageza/foodgram/backend/internal/service"
	"github.com/pageza/foodgram/backend/internal/testhelpers"
	"github.com/pageza/foodgram/backend/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

func TestLogin(t *testing.T) {
	db := testhelpers.SetupSQLite(t)
	ctx := context.Background()
	auth := service.NewAuthService(db, testSecret, time.Hour, nil)
	user := testhelpers.CreateTestUser(t, db, "cook")

	token, err := auth.Login(ctx, "  COOK@example.com", testhelpers.TestPassword)
	require.NoError(t, err)

	claims, err := auth.ValidateToken(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, user.ID, claims.UserID)
	assert.Equal(t, "cook", claims.Username)
	assert.NotEmpty(t, claims.ID)
	assert.WithinDuration(t, time.Now().Add(time.Hour), claims.ExpiresAt.Time, time.Minute)

	_, err = auth.Login(ctx, user.Email, "wrong-password")
	assert.ErrorIs(t, err, service.ErrInvalidCredentials)
	_, err = auth.Login(ctx, "ghost@example.com", testhelpers.TestPassword)
	assert.ErrorIs(t, err, service.ErrInvalidCredentials)
}

func TestValidateTokenRejects(t *testing.T) {
	db := testhelpers.SetupSQLite(t)
	ctx := context.Background()
	auth := service.NewAuthService(db, testSecret, time.Hour, nil)
	userID := uuid.New()

	foreign, err := service.NewAuthService(db, "another-secret", time.Hour, nil).
		GenerateToken(&types.TokenClaims{UserID: userID, Username: "x"})
	require.NoError(t, err)

	expired, err := service.NewAuthService(db, testSecret, -time.Minute, nil).
		GenerateToken(&types.TokenClaims{UserID: userID, Username: "x"})
	require.NoError(t, err)

	anonymous, err := auth.GenerateToken(&types.TokenClaims{Username: "x"})
	require.NoError(t, err)

	none := jwt.NewWithClaims(jwt.SigningMethodNone, &types.TokenClaims{UserID: userID})
	unsigned, err := none.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	tests := []struct {
		name  string
		token string
	}{
		{"garbage", "not-a-token"},
		{"wrong secret", foreign},
		{"expired", expired},
		{"no user id", anonymous},
		{"unsigned", unsigned},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := auth.ValidateToken(ctx, tt.token)
			assert.Error(t, err)
		})
	}
}

func TestLogoutRevokesOnlyThatToken(t *testing.T) {
	db := testhelpers.SetupSQLite(t)
	ctx := context.Background()
	auth := service.NewAuthService(db, testSecret, time.Hour, service.NewMemoryTokenDenylist())
	user := testhelpers.CreateTestUser(t, db, "cook")

	first, err := auth.Login(ctx, user.Email, testhelpers.TestPassword)
	require.NoError(t, err)
	second, err := auth.Login(ctx, user.Email, testhelpers.TestPassword)
	require.NoError(t, err)

	claims, err := auth.ValidateToken(ctx, first)
	require.NoError(t, err)
	require.NoError(t, auth.Logout(ctx, claims))

	_, err = auth.ValidateToken(ctx, first)
	assert.ErrorIs(t, err, service.ErrRevokedToken)
	_, err = auth.ValidateToken(ctx, second)
	assert.NoError(t, err)

	assert.Error(t, auth.Logout(ctx, &types.TokenClaims{}))
}
