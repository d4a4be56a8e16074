package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/pageza/foodgram/backend/internal/models"
	"github.com/pageza/foodgram/backend/internal/types"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// UserService handles registration and account operations
type UserService struct {
	db *gorm.DB
}

func NewUserService(db *gorm.DB) *UserService {
	return &UserService{db: db}
}

// Register creates a user; email and username must be unused
func (s *UserService) Register(ctx context.Context, req *types.RegisterRequest) (*types.UserResponse, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))

	v := &ValidationError{}
	var count int64
	if err := s.db.WithContext(ctx).Model(&models.User{}).Where("email = ?", email).Count(&count).Error; err != nil {
		return nil, fmt.Errorf("failed to check email: %w", err)
	}
	if count > 0 {
		v.Add("email", "a user with this email already exists")
	}
	if err := s.db.WithContext(ctx).Model(&models.User{}).Where("username = ?", req.Username).Count(&count).Error; err != nil {
		return nil, fmt.Errorf("failed to check username: %w", err)
	}
	if count > 0 {
		v.Add("username", "a user with this username already exists")
	}
	if err := v.OrNil(); err != nil {
		return nil, err
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := models.User{
		Email:        email,
		Username:     req.Username,
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		PasswordHash: string(hashedPassword),
	}
	if err := s.db.WithContext(ctx).Create(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, NewValidationError("email", "a user with this email or username already exists")
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	view := userView(user, false)
	return &view, nil
}

// GetUser returns the user card for id as seen by viewer
func (s *UserService) GetUser(ctx context.Context, viewer *uuid.UUID, id uuid.UUID) (*types.UserResponse, error) {
	var user models.User
	if err := s.db.WithContext(ctx).First(&user, "id = ?", id).Error; err != nil {
		return nil, notFound(err, "user")
	}
	subscribed, err := subscribedTo(ctx, s.db, viewer, []uuid.UUID{user.ID})
	if err != nil {
		return nil, err
	}
	view := userView(user, subscribed[user.ID])
	return &view, nil
}

// ListUsers returns one page of users ordered by username
func (s *UserService) ListUsers(ctx context.Context, viewer *uuid.UUID, page types.Pagination) ([]types.UserResponse, int64, error) {
	var total int64
	if err := s.db.WithContext(ctx).Model(&models.User{}).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count users: %w", err)
	}

	var users []models.User
	if err := s.db.WithContext(ctx).Order("username").Offset(page.Offset()).Limit(page.Limit).Find(&users).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list users: %w", err)
	}

	ids := make([]uuid.UUID, 0, len(users))
	for _, u := range users {
		ids = append(ids, u.ID)
	}
	subscribed, err := subscribedTo(ctx, s.db, viewer, ids)
	if err != nil {
		return nil, 0, err
	}

	views := make([]types.UserResponse, 0, len(users))
	for _, u := range users {
		views = append(views, userView(u, subscribed[u.ID]))
	}
	return views, total, nil
}

// SetPassword replaces the password after checking the current one
func (s *UserService) SetPassword(ctx context.Context, userID uuid.UUID, current, next string) error {
	var user models.User
	if err := s.db.WithContext(ctx).First(&user, "id = ?", userID).Error; err != nil {
		return notFound(err, "user")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(current)); err != nil {
		return NewValidationError("current_password", "wrong password")
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(next), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	if err := s.db.WithContext(ctx).Model(&user).Update("password_hash", string(hashed)).Error; err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}
	return nil
}

// DeleteUser removes the account; authors of recipes are protected
func (s *UserService) DeleteUser(ctx context.Context, userID uuid.UUID) error {
	var user models.User
	if err := s.db.WithContext(ctx).First(&user, "id = ?", userID).Error; err != nil {
		return notFound(err, "user")
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var recipes int64
		if err := tx.Model(&models.Recipe{}).Where("author_id = ?", userID).Count(&recipes).Error; err != nil {
			return fmt.Errorf("failed to count recipes: %w", err)
		}
		if recipes > 0 {
			return fmt.Errorf("user authors %d recipes: %w", recipes, ErrProtectedReference)
		}

		if err := tx.Where("user_id = ? OR author_id = ?", userID, userID).Delete(&models.Follow{}).Error; err != nil {
			return fmt.Errorf("failed to delete subscriptions: %w", err)
		}
		for _, dependent := range []interface{}{&models.Favorite{}, &models.ShoppingListEntry{}} {
			if err := tx.Where("user_id = ?", userID).Delete(dependent).Error; err != nil {
				return fmt.Errorf("failed to delete recipe marks: %w", err)
			}
		}
		if err := tx.Delete(&user).Error; err != nil {
			return fmt.Errorf("failed to delete user: %w", err)
		}
		return nil
	})
}
