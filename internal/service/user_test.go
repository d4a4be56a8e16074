package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/pageza/foodgram/backend/internal/models"
	"github.com/pageza/foodgram/backend/internal/service"
	"github.com/pageza/foodgram/backend/internal/testhelpers"
	"github.com/pageza/foodgram/backend/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func registration(username, email string) *types.RegisterRequest {
	return &types.RegisterRequest{
		Email:     email,
		Username:  username,
		FirstName: "Test",
		LastName:  "User",
		Password:  "s3cret-password",
	}
}

func TestRegister(t *testing.T) {
	db := testhelpers.SetupSQLite(t)
	ctx := context.Background()
	svc := service.NewUserService(db)

	user, err := svc.Register(ctx, registration("cook", "  Cook@Example.com "))
	require.NoError(t, err)
	assert.Equal(t, "cook@example.com", user.Email)
	assert.Equal(t, "cook", user.Username)
	assert.False(t, user.IsSubscribed)

	var stored models.User
	require.NoError(t, db.First(&stored, "id = ?", user.ID).Error)
	assert.NotEqual(t, "s3cret-password", stored.PasswordHash)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(stored.PasswordHash), []byte("s3cret-password")))

	_, err = svc.Register(ctx, registration("other", "cook@example.com"))
	assert.Contains(t, fieldErrors(t, err), "email")

	_, err = svc.Register(ctx, registration("cook", "new@example.com"))
	fields := fieldErrors(t, err)
	assert.Contains(t, fields, "username")
	assert.NotContains(t, fields, "email")

	_, err = svc.Register(ctx, registration("cook", "cook@example.com"))
	fields = fieldErrors(t, err)
	assert.Contains(t, fields, "username")
	assert.Contains(t, fields, "email")

	assert.Equal(t, int64(1), testhelpers.CountRows(t, db, &models.User{}, ""))
}

func TestGetAndListUsers(t *testing.T) {
	db := testhelpers.SetupSQLite(t)
	ctx := context.Background()
	svc := service.NewUserService(db)
	follows := service.NewFollowService(db, testhelpers.NewImageStore(t))

	zed := testhelpers.CreateTestUser(t, db, "zed")
	amy := testhelpers.CreateTestUser(t, db, "amy")
	kim := testhelpers.CreateTestUser(t, db, "kim")
	_, err := follows.Subscribe(ctx, amy.ID, zed.ID, 0)
	require.NoError(t, err)

	viewer := amy.ID
	card, err := svc.GetUser(ctx, &viewer, zed.ID)
	require.NoError(t, err)
	assert.True(t, card.IsSubscribed)

	card, err = svc.GetUser(ctx, nil, zed.ID)
	require.NoError(t, err)
	assert.False(t, card.IsSubscribed)

	_, err = svc.GetUser(ctx, nil, uuid.New())
	assert.ErrorIs(t, err, service.ErrNotFound)

	users, total, err := svc.ListUsers(ctx, &viewer, types.Pagination{Page: 1, Limit: 2})
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	require.Len(t, users, 2)
	assert.Equal(t, amy.ID, users[0].ID)
	assert.Equal(t, kim.ID, users[1].ID)

	users, _, err = svc.ListUsers(ctx, &viewer, types.Pagination{Page: 2, Limit: 2})
	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.Equal(t, zed.ID, users[0].ID)
	assert.True(t, users[0].IsSubscribed)
}

func TestSetPassword(t *testing.T) {
	db := testhelpers.SetupSQLite(t)
	ctx := context.Background()
	users := service.NewUserService(db)
	auth := service.NewAuthService(db, "test-secret", time.Hour, nil)

	user := testhelpers.CreateTestUser(t, db, "cook")

	err := users.SetPassword(ctx, user.ID, "wrong-password", "brand-new-password")
	assert.Contains(t, fieldErrors(t, err), "current_password")

	require.NoError(t, users.SetPassword(ctx, user.ID, testhelpers.TestPassword, "brand-new-password"))

	_, err = auth.Login(ctx, user.Email, testhelpers.TestPassword)
	assert.ErrorIs(t, err, service.ErrInvalidCredentials)
	_, err = auth.Login(ctx, user.Email, "brand-new-password")
	assert.NoError(t, err)
}

func TestDeleteUser(t *testing.T) {
	db := testhelpers.SetupSQLite(t)
	ctx := context.Background()
	svc := service.NewUserService(db)
	images := testhelpers.NewImageStore(t)
	follows := service.NewFollowService(db, images)
	favorites := service.NewFavoriteService(db, images)

	author := testhelpers.CreateTestUser(t, db, "author")
	reader := testhelpers.CreateTestUser(t, db, "reader")
	recipe := testhelpers.CreateTestRecipe(t, db, author, "soup", nil)

	_, err := follows.Subscribe(ctx, reader.ID, author.ID, 0)
	require.NoError(t, err)
	_, err = follows.Subscribe(ctx, author.ID, reader.ID, 0)
	require.NoError(t, err)
	_, err = favorites.AddFavorite(ctx, reader.ID, recipe.ID)
	require.NoError(t, err)

	err = svc.DeleteUser(ctx, author.ID)
	assert.ErrorIs(t, err, service.ErrProtectedReference)
	assert.Equal(t, int64(2), testhelpers.CountRows(t, db, &models.User{}, ""))

	require.NoError(t, svc.DeleteUser(ctx, reader.ID))
	assert.Zero(t, testhelpers.CountRows(t, db, &models.User{}, "id = ?", reader.ID))
	assert.Zero(t, testhelpers.CountRows(t, db, &models.Follow{}, ""))
	assert.Zero(t, testhelpers.CountRows(t, db, &models.Favorite{}, ""))
	assert.Equal(t, int64(1), testhelpers.CountRows(t, db, &models.Recipe{}, ""))

	assert.ErrorIs(t, svc.DeleteUser(ctx, reader.ID), service.ErrNotFound)
}
