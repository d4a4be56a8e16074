package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/pageza/foodgram/backend/internal/middleware"
	"github.com/pageza/foodgram/backend/internal/service"
	"github.com/pageza/foodgram/backend/internal/types"
)

type UserHandler struct {
	users                 service.IUserService
	follows               service.IFollowService
	auth                  middleware.TokenValidator
	paginator             Paginator
	subscriptionPaginator Paginator
	recipesPreviewLimit   int
}

func NewUserHandler(
	users service.IUserService,
	follows service.IFollowService,
	auth middleware.TokenValidator,
	paginator Paginator,
	subscriptionPaginator Paginator,
	recipesPreviewLimit int,
) *UserHandler {
	return &UserHandler{
		users:                 users,
		follows:               follows,
		auth:                  auth,
		paginator:             paginator,
		subscriptionPaginator: subscriptionPaginator,
		recipesPreviewLimit:   recipesPreviewLimit,
	}
}

func (h *UserHandler) RegisterRoutes(router *gin.RouterGroup) {
	required := middleware.AuthMiddleware(h.auth)
	optional := middleware.OptionalAuth(h.auth)

	users := router.Group("/users")
	{
		users.POST("", h.Register)
		users.GET("", optional, h.ListUsers)
		users.GET("/me", required, h.Me)
		users.DELETE("/me", required, h.DeleteMe)
		users.POST("/set_password", required, h.SetPassword)
		users.GET("/subscriptions", required, h.ListSubscriptions)
		users.GET("/:id", optional, h.GetUser)
		users.POST("/:id/subscribe", required, h.Subscribe)
		users.DELETE("/:id/subscribe", required, h.Unsubscribe)
	}
}

func (h *UserHandler) Register(c *gin.Context) {
	var req types.RegisterRequest
	if !bindJSON(c, &req) {
		return
	}

	user, err := h.users.Register(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, user)
}

func (h *UserHandler) ListUsers(c *gin.Context) {
	page := h.paginator.Parse(c)

	users, count, err := h.users.ListUsers(c.Request.Context(), viewer(c), page)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, NewPage(c, page, count, users))
}

func (h *UserHandler) GetUser(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}

	user, err := h.users.GetUser(c.Request.Context(), viewer(c), id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, user)
}

func (h *UserHandler) Me(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	user, err := h.users.GetUser(c.Request.Context(), &userID, userID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, user)
}

func (h *UserHandler) DeleteMe(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	if err := h.users.DeleteUser(c.Request.Context(), userID); err != nil {
		respondError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

func (h *UserHandler) SetPassword(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	var req types.SetPasswordRequest
	if !bindJSON(c, &req) {
		return
	}

	if err := h.users.SetPassword(c.Request.Context(), userID, req.CurrentPassword, req.NewPassword); err != nil {
		respondError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

func (h *UserHandler) ListSubscriptions(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	page := h.subscriptionPaginator.Parse(c)

	subs, count, err := h.follows.ListSubscriptions(c.Request.Context(), userID, page, h.recipesLimit(c))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, NewPage(c, page, count, subs))
}

func (h *UserHandler) Subscribe(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	authorID, ok := uuidParam(c, "id")
	if !ok {
		return
	}

	sub, err := h.follows.Subscribe(c.Request.Context(), userID, authorID, h.recipesLimit(c))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, sub)
}

func (h *UserHandler) Unsubscribe(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	authorID, ok := uuidParam(c, "id")
	if !ok {
		return
	}

	if err := h.follows.Unsubscribe(c.Request.Context(), userID, authorID); err != nil {
		respondError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// recipesLimit reads recipes_limit, the size of each author's recipe preview
func (h *UserHandler) recipesLimit(c *gin.Context) int {
	return intQuery(c, "recipes_limit", h.recipesPreviewLimit)
}
