package service

import (
	"context"

	"github.com/google/uuid"
	"github.com/pageza/foodgram/backend/internal/types"
)

// IAuthService defines the interface for authentication operations
type IAuthService interface {
	Login(ctx context.Context, email, password string) (string, error)
	ValidateToken(ctx context.Context, token string) (*types.TokenClaims, error)
	Logout(ctx context.Context, claims *types.TokenClaims) error
}

// IRecipeService defines the interface for recipe operations
type IRecipeService interface {
	CreateRecipe(ctx context.Context, authorID uuid.UUID, req *types.RecipeRequest) (*types.RecipeResponse, error)
	UpdateRecipe(ctx context.Context, actorID, recipeID uuid.UUID, req *types.RecipeRequest) (*types.RecipeResponse, error)
	DeleteRecipe(ctx context.Context, actorID, recipeID uuid.UUID) error
	GetRecipe(ctx context.Context, viewer *uuid.UUID, id uuid.UUID) (*types.RecipeResponse, error)
	ListRecipes(ctx context.Context, viewer *uuid.UUID, filter RecipeFilter, page types.Pagination) ([]types.RecipeResponse, int64, error)
}

// IFavoriteService defines the interface for favorite operations
type IFavoriteService interface {
	AddFavorite(ctx context.Context, userID, recipeID uuid.UUID) (*types.RecipeShortResponse, error)
	RemoveFavorite(ctx context.Context, userID, recipeID uuid.UUID) error
}

// IShoppingCartService defines the interface for shopping cart operations
type IShoppingCartService interface {
	AddToCart(ctx context.Context, userID, recipeID uuid.UUID) (*types.RecipeShortResponse, error)
	RemoveFromCart(ctx context.Context, userID, recipeID uuid.UUID) error
	DownloadShoppingList(ctx context.Context, userID uuid.UUID) (string, error)
}

// IFollowService defines the interface for subscription operations
type IFollowService interface {
	Subscribe(ctx context.Context, userID, authorID uuid.UUID, recipesLimit int) (*types.SubscriptionResponse, error)
	Unsubscribe(ctx context.Context, userID, authorID uuid.UUID) error
	ListSubscriptions(ctx context.Context, userID uuid.UUID, page types.Pagination, recipesLimit int) ([]types.SubscriptionResponse, int64, error)
}

// IUserService defines the interface for account operations
type IUserService interface {
	Register(ctx context.Context, req *types.RegisterRequest) (*types.UserResponse, error)
	GetUser(ctx context.Context, viewer *uuid.UUID, id uuid.UUID) (*types.UserResponse, error)
	ListUsers(ctx context.Context, viewer *uuid.UUID, page types.Pagination) ([]types.UserResponse, int64, error)
	SetPassword(ctx context.Context, userID uuid.UUID, current, next string) error
	DeleteUser(ctx context.Context, userID uuid.UUID) error
}

// ITagService defines the interface for tag lookups
type ITagService interface {
	ListTags(ctx context.Context) ([]types.TagResponse, error)
	GetTag(ctx context.Context, id uint) (*types.TagResponse, error)
}

// IIngredientService defines the interface for ingredient lookups
type IIngredientService interface {
	SearchIngredients(ctx context.Context, query string) ([]types.IngredientResponse, error)
	GetIngredient(ctx context.Context, id uint) (*types.IngredientResponse, error)
}

var (
	_ IAuthService         = (*AuthService)(nil)
	_ IRecipeService       = (*RecipeService)(nil)
	_ IFavoriteService     = (*FavoriteService)(nil)
	_ IShoppingCartService = (*ShoppingCartService)(nil)
	_ IFollowService       = (*FollowService)(nil)
	_ IUserService         = (*UserService)(nil)
	_ ITagService          = (*TagService)(nil)
	_ IIngredientService   = (*IngredientService)(nil)
)
