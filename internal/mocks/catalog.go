package mocks

import (
	"context"

	"github.com/pageza/foodgram/backend/internal/service"
	"github.com/pageza/foodgram/backend/internal/types"
	"github.com/stretchr/testify/mock"
)

// MockTagService is a mock implementation of the tag service
type MockTagService struct {
	mock.Mock
}

func (m *MockTagService) ListTags(ctx context.Context) ([]types.TagResponse, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]types.TagResponse), args.Error(1)
}

func (m *MockTagService) GetTag(ctx context.Context, id uint) (*types.TagResponse, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.TagResponse), args.Error(1)
}

// MockIngredientService is a mock implementation of the ingredient service
type MockIngredientService struct {
	mock.Mock
}

func (m *MockIngredientService) SearchIngredients(ctx context.Context, query string) ([]types.IngredientResponse, error) {
	args := m.Called(ctx, query)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]types.IngredientResponse), args.Error(1)
}

func (m *MockIngredientService) GetIngredient(ctx context.Context, id uint) (*types.IngredientResponse, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.IngredientResponse), args.Error(1)
}

var (
	_ service.ITagService        = (*MockTagService)(nil)
	_ service.IIngredientService = (*MockIngredientService)(nil)
)
