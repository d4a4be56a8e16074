package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/pageza/foodgram/backend/internal/service"
	"github.com/pageza/foodgram/backend/internal/types"
	"github.com/stretchr/testify/mock"
)

// MockUserService is a mock implementation of the user service
type MockUserService struct {
	mock.Mock
}

func (m *MockUserService) Register(ctx context.Context, req *types.RegisterRequest) (*types.UserResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.UserResponse), args.Error(1)
}

func (m *MockUserService) GetUser(ctx context.Context, viewer *uuid.UUID, id uuid.UUID) (*types.UserResponse, error) {
	args := m.Called(ctx, viewer, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.UserResponse), args.Error(1)
}

func (m *MockUserService) ListUsers(ctx context.Context, viewer *uuid.UUID, page types.Pagination) ([]types.UserResponse, int64, error) {
	args := m.Called(ctx, viewer, page)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]types.UserResponse), args.Get(1).(int64), args.Error(2)
}

func (m *MockUserService) SetPassword(ctx context.Context, userID uuid.UUID, current, next string) error {
	args := m.Called(ctx, userID, current, next)
	return args.Error(0)
}

func (m *MockUserService) DeleteUser(ctx context.Context, userID uuid.UUID) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

// MockFollowService is a mock implementation of the subscription service
type MockFollowService struct {
	mock.Mock
}

func (m *MockFollowService) Subscribe(ctx context.Context, userID, authorID uuid.UUID, recipesLimit int) (*types.SubscriptionResponse, error) {
	args := m.Called(ctx, userID, authorID, recipesLimit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.SubscriptionResponse), args.Error(1)
}

func (m *MockFollowService) Unsubscribe(ctx context.Context, userID, authorID uuid.UUID) error {
	args := m.Called(ctx, userID, authorID)
	return args.Error(0)
}

func (m *MockFollowService) ListSubscriptions(ctx context.Context, userID uuid.UUID, page types.Pagination, recipesLimit int) ([]types.SubscriptionResponse, int64, error) {
	args := m.Called(ctx, userID, page, recipesLimit)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]types.SubscriptionResponse), args.Get(1).(int64), args.Error(2)
}

var (
	_ service.IUserService   = (*MockUserService)(nil)
	_ service.IFollowService = (*MockFollowService)(nil)
)
