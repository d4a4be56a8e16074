package server

import (
	"context"
	"errors"
	"net"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/pageza/foodgram/backend/config"
	"github.com/pageza/foodgram/backend/internal/api"
	"github.com/pageza/foodgram/backend/internal/database"
	"github.com/pageza/foodgram/backend/internal/logging"
	"github.com/pageza/foodgram/backend/internal/middleware"
	"github.com/pageza/foodgram/backend/internal/service"
	"github.com/pageza/foodgram/backend/internal/storage"
)

// Server represents the HTTP server
type Server struct {
	cfg    *config.Config
	router *gin.Engine
	http   *http.Server
	db     *gorm.DB
	redis  *redis.Client
}

// New builds the services and routes. redisClient may be nil, in which case
// the token denylist and rate limiter keep their state in process.
func New(cfg *config.Config, db *gorm.DB, redisClient *redis.Client, images storage.ImageStore) *Server {
	router := gin.New()
	router.Use(
		middleware.RequestLogger(),
		middleware.Recovery(),
		middleware.Metrics(),
		middleware.CORS(cfg.CORSOrigins),
	)

	var denylist service.TokenDenylist
	if redisClient != nil {
		denylist = service.NewRedisTokenDenylist(redisClient)
	}

	authService := service.NewAuthService(db, cfg.JWTSecret, cfg.TokenTTL, denylist)
	recipeService := service.NewRecipeService(db, images, service.RecipeRules{
		MinCookingTime:      cfg.MinCookingTime,
		MinIngredientAmount: cfg.MinIngredientAmount,
	})
	favoriteService := service.NewFavoriteService(db, images)
	cartService := service.NewShoppingCartService(db, images, cfg.ReportFooter)
	followService := service.NewFollowService(db, images)
	userService := service.NewUserService(db)
	tagService := service.NewTagService(db)
	ingredientService := service.NewIngredientService(db)

	var createLimit *middleware.RateLimiter
	if cfg.RecipeCreateLimit > 0 {
		createLimit = middleware.NewRecipeCreationRateLimiter(redisClient, cfg.RecipeCreateLimit, cfg.RecipeCreateWindow)
	}

	paginator := api.Paginator{DefaultLimit: cfg.PageSize, MaxLimit: cfg.MaxPageSize}
	subscriptionPaginator := api.Paginator{DefaultLimit: cfg.SubscriptionsPageSize, MaxLimit: cfg.MaxPageSize}

	s := &Server{
		cfg:    cfg,
		router: router,
		db:     db,
		redis:  redisClient,
	}

	router.GET("/health", s.health)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	if local, ok := images.(*storage.LocalStore); ok && local.BaseURL != "" {
		router.Static(local.BaseURL, local.Dir)
	}

	v1 := router.Group("/api/v1")
	api.NewAuthHandler(authService).RegisterRoutes(v1)
	api.NewRecipeHandler(recipeService, favoriteService, cartService, authService, paginator, createLimit).RegisterRoutes(v1)
	api.NewUserHandler(userService, followService, authService, paginator, subscriptionPaginator, cfg.RecipesPreviewLimit).RegisterRoutes(v1)
	api.NewCatalogHandler(tagService, ingredientService).RegisterRoutes(v1)

	return s
}

// Router exposes the gin engine, mainly for tests
func (s *Server) Router() *gin.Engine {
	return s.router
}

func (s *Server) health(c *gin.Context) {
	ctx := c.Request.Context()
	status := gin.H{"status": "healthy", "database": "ok"}
	code := http.StatusOK

	if err := database.HealthCheck(ctx, s.db); err != nil {
		logging.Ctx(ctx).Warn().Err(err).Msg("database health check failed")
		status["status"] = "unhealthy"
		status["database"] = "unavailable"
		code = http.StatusServiceUnavailable
	}
	if s.redis != nil {
		status["redis"] = "ok"
		if err := s.redis.Ping(ctx).Err(); err != nil {
			logging.Ctx(ctx).Warn().Err(err).Msg("redis health check failed")
			status["status"] = "unhealthy"
			status["redis"] = "unavailable"
			code = http.StatusServiceUnavailable
		}
	}

	c.JSON(code, status)
}

// Start listens until Shutdown is called
func (s *Server) Start() error {
	s.http = &http.Server{
		Addr:    net.JoinHostPort(s.cfg.ServerHost, s.cfg.ServerPort),
		Handler: s.router,
	}

	log := logging.Component("server")
	log.Info().Str("addr", s.http.Addr).Msg("starting HTTP server")
	if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown gracefully stops the HTTP server
func (s *Server) Shutdown(ctx context.Context) error {
	if s.http == nil {
		return nil
	}
	return s.http.Shutdown(ctx)
}
