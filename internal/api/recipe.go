package api

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/pageza/foodgram/backend/internal/middleware"
	"github.com/pageza/foodgram/backend/internal/service"
	"github.com/pageza/foodgram/backend/internal/types"
)

type RecipeHandler struct {
	recipes     service.IRecipeService
	favorites   service.IFavoriteService
	cart        service.IShoppingCartService
	auth        middleware.TokenValidator
	paginator   Paginator
	createLimit *middleware.RateLimiter
}

// NewRecipeHandler wires recipe routes; createLimit may be nil to disable throttling
func NewRecipeHandler(
	recipes service.IRecipeService,
	favorites service.IFavoriteService,
	cart service.IShoppingCartService,
	auth middleware.TokenValidator,
	paginator Paginator,
	createLimit *middleware.RateLimiter,
) *RecipeHandler {
	return &RecipeHandler{
		recipes:     recipes,
		favorites:   favorites,
		cart:        cart,
		auth:        auth,
		paginator:   paginator,
		createLimit: createLimit,
	}
}

func (h *RecipeHandler) RegisterRoutes(router *gin.RouterGroup) {
	required := middleware.AuthMiddleware(h.auth)
	create := []gin.HandlerFunc{required}
	if h.createLimit != nil {
		create = append(create, h.createLimit.RateLimitMiddleware())
	}
	create = append(create, h.CreateRecipe)

	recipes := router.Group("/recipes")
	{
		recipes.GET("", middleware.OptionalAuth(h.auth), h.ListRecipes)
		recipes.POST("", create...)
		recipes.GET("/download_shopping_cart", required, h.DownloadShoppingCart)
		recipes.GET("/:id", middleware.OptionalAuth(h.auth), h.GetRecipe)
		recipes.PATCH("/:id", required, h.UpdateRecipe)
		recipes.DELETE("/:id", required, h.DeleteRecipe)
		recipes.POST("/:id/favorite", required, h.AddFavorite)
		recipes.DELETE("/:id/favorite", required, h.RemoveFavorite)
		recipes.POST("/:id/shopping_cart", required, h.AddToCart)
		recipes.DELETE("/:id/shopping_cart", required, h.RemoveFromCart)
	}
}

func (h *RecipeHandler) ListRecipes(c *gin.Context) {
	filter := service.RecipeFilter{
		Tags:             c.QueryArray("tags"),
		Author:           c.Query("author"),
		IsFavorited:      flagQuery(c, "is_favorited"),
		IsInShoppingCart: flagQuery(c, "is_in_shopping_cart"),
	}
	page := h.paginator.Parse(c)

	recipes, count, err := h.recipes.ListRecipes(c.Request.Context(), viewer(c), filter, page)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, NewPage(c, page, count, recipes))
}

func (h *RecipeHandler) GetRecipe(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}

	recipe, err := h.recipes.GetRecipe(c.Request.Context(), viewer(c), id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, recipe)
}

func (h *RecipeHandler) CreateRecipe(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	var req types.RecipeRequest
	if !bindJSON(c, &req) {
		return
	}

	recipe, err := h.recipes.CreateRecipe(c.Request.Context(), userID, &req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, recipe)
}

func (h *RecipeHandler) UpdateRecipe(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}

	var req types.RecipeRequest
	if !bindJSON(c, &req) {
		return
	}

	recipe, err := h.recipes.UpdateRecipe(c.Request.Context(), userID, id, &req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, recipe)
}

func (h *RecipeHandler) DeleteRecipe(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}

	if err := h.recipes.DeleteRecipe(c.Request.Context(), userID, id); err != nil {
		respondError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

func (h *RecipeHandler) AddFavorite(c *gin.Context) {
	h.mark(c, h.favorites.AddFavorite)
}

func (h *RecipeHandler) RemoveFavorite(c *gin.Context) {
	h.unmark(c, h.favorites.RemoveFavorite)
}

func (h *RecipeHandler) AddToCart(c *gin.Context) {
	h.mark(c, h.cart.AddToCart)
}

func (h *RecipeHandler) RemoveFromCart(c *gin.Context) {
	h.unmark(c, h.cart.RemoveFromCart)
}

type markFunc func(ctx context.Context, userID, recipeID uuid.UUID) (*types.RecipeShortResponse, error)

type unmarkFunc func(ctx context.Context, userID, recipeID uuid.UUID) error

func (h *RecipeHandler) mark(c *gin.Context, add markFunc) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}

	recipe, err := add(c.Request.Context(), userID, id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, recipe)
}

func (h *RecipeHandler) unmark(c *gin.Context, remove unmarkFunc) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}

	if err := remove(c.Request.Context(), userID, id); err != nil {
		respondError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// DownloadShoppingCart serves the aggregated ingredient list as a text attachment
func (h *RecipeHandler) DownloadShoppingCart(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	text, err := h.cart.DownloadShoppingList(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.Header("Content-Disposition", `attachment; filename="wishlist.txt"`)
	c.Data(http.StatusOK, "text/plain; charset=utf-8", []byte(text))
}
