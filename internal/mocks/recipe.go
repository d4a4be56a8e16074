package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/pageza/foodgram/backend/internal/service"
	"github.com/pageza/foodgram/backend/internal/types"
	"github.com/stretchr/testify/mock"
)

// MockRecipeService is a mock implementation of the recipe service
type MockRecipeService struct {
	mock.Mock
}

func (m *MockRecipeService) CreateRecipe(ctx context.Context, authorID uuid.UUID, req *types.RecipeRequest) (*types.RecipeResponse, error) {
	args := m.Called(ctx, authorID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.RecipeResponse), args.Error(1)
}

func (m *MockRecipeService) UpdateRecipe(ctx context.Context, actorID, recipeID uuid.UUID, req *types.RecipeRequest) (*types.RecipeResponse, error) {
	args := m.Called(ctx, actorID, recipeID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.RecipeResponse), args.Error(1)
}

func (m *MockRecipeService) DeleteRecipe(ctx context.Context, actorID, recipeID uuid.UUID) error {
	args := m.Called(ctx, actorID, recipeID)
	return args.Error(0)
}

func (m *MockRecipeService) GetRecipe(ctx context.Context, viewer *uuid.UUID, id uuid.UUID) (*types.RecipeResponse, error) {
	args := m.Called(ctx, viewer, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.RecipeResponse), args.Error(1)
}

func (m *MockRecipeService) ListRecipes(ctx context.Context, viewer *uuid.UUID, filter service.RecipeFilter, page types.Pagination) ([]types.RecipeResponse, int64, error) {
	args := m.Called(ctx, viewer, filter, page)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]types.RecipeResponse), args.Get(1).(int64), args.Error(2)
}

// MockFavoriteService is a mock implementation of the favorite service
type MockFavoriteService struct {
	mock.Mock
}

func (m *MockFavoriteService) AddFavorite(ctx context.Context, userID, recipeID uuid.UUID) (*types.RecipeShortResponse, error) {
	args := m.Called(ctx, userID, recipeID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.RecipeShortResponse), args.Error(1)
}

func (m *MockFavoriteService) RemoveFavorite(ctx context.Context, userID, recipeID uuid.UUID) error {
	args := m.Called(ctx, userID, recipeID)
	return args.Error(0)
}

// MockShoppingCartService is a mock implementation of the shopping cart service
type MockShoppingCartService struct {
	mock.Mock
}

func (m *MockShoppingCartService) AddToCart(ctx context.Context, userID, recipeID uuid.UUID) (*types.RecipeShortResponse, error) {
	args := m.Called(ctx, userID, recipeID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.RecipeShortResponse), args.Error(1)
}

func (m *MockShoppingCartService) RemoveFromCart(ctx context.Context, userID, recipeID uuid.UUID) error {
	args := m.Called(ctx, userID, recipeID)
	return args.Error(0)
}

func (m *MockShoppingCartService) DownloadShoppingList(ctx context.Context, userID uuid.UUID) (string, error) {
	args := m.Called(ctx, userID)
	return args.String(0), args.Error(1)
}

var (
	_ service.IAuthService         = (*MockAuthService)(nil)
	_ service.IRecipeService       = (*MockRecipeService)(nil)
	_ service.IFavoriteService     = (*MockFavoriteService)(nil)
	_ service.IShoppingCartService = (*MockShoppingCartService)(nil)
)
