package router

import (
	"log"

	"github.com/labstack/echo/v4"
	eMiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"

	"github.com/goer-app/goer/backend/internal/handlers"
	"github.com/goer-app/goer/backend/internal/middleware"
	"github.com/goer-app/goer/backend/internal/services"
)

// Services are the dependencies the handlers are built from.
type Services struct {
	Accounts  *services.AccountService
	Follows   *services.FollowService
	Content   *services.ContentService
	Reviews   *services.ReviewService
	Reactions *services.ReactionService
	Threads   *services.ThreadService
	Events    *services.EventService
	Catalog   *services.CatalogService
	Notifier  *services.Notifier
}

// SetupMiddleware configures global Echo middleware
func SetupMiddleware(e *echo.Echo, base zerolog.Logger) {
	e.HTTPErrorHandler = middleware.ErrorHandler
	e.Use(middleware.RequestID(base))
	e.Use(middleware.AccessLog())
	e.Use(eMiddleware.Recover())
	e.Use(eMiddleware.CORSWithConfig(eMiddleware.CORSConfig{
		AllowHeaders: []string{
			echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept,
			echo.HeaderAuthorization, middleware.AccessTokenKey,
		},
	}))
	e.Use(eMiddleware.BodyLimit("50M"))
	log.Println("Global middleware configured.")
}

// SetupRoutes configures all application routes and injects dependencies
func SetupRoutes(e *echo.Echo, svc Services, checks map[string]handlers.Check) {
	// Health check - always accessible
	e.GET("/health", handlers.HealthCheck(checks))

	authHandler := handlers.NewAuthHandler(svc.Accounts)
	userHandler := handlers.NewUserHandler(svc.Accounts)
	catalogHandler := handlers.NewCatalogHandler(svc.Catalog)

	// --- Unauthenticated routes ---
	public := e.Group("/api", middleware.OptionalAuth(svc.Accounts))
	authHandler.RegisterAuthRoutes(public)
	catalogHandler.RegisterPublicRoutes(public)
	log.Println("Public routes configured.")

	// --- Routes requiring a live session ---
	api := e.Group("/api", middleware.RequireAuth(svc.Accounts))
	authHandler.RegisterSessionRoutes(api)
	userHandler.RegisterProfileRoutes(api)
	catalogHandler.RegisterCatalogRoutes(api)
	handlers.NewFollowHandler(svc.Follows).RegisterFollowRoutes(api)
	handlers.NewPostHandler(svc.Content).RegisterPostRoutes(api)
	handlers.NewFeedHandler(svc.Content).RegisterFeedRoutes(api)
	handlers.NewCommentHandler(svc.Content).RegisterCommentRoutes(api)
	handlers.NewReactionHandler(svc.Reactions).RegisterReactionRoutes(api)
	handlers.NewReviewHandler(svc.Reviews).RegisterReviewRoutes(api)
	handlers.NewSaveHandler(svc.Catalog).RegisterSaveRoutes(api)
	handlers.NewThreadHandler(svc.Threads, svc.Events).RegisterThreadRoutes(api)
	handlers.NewNotificationHandler(svc.Notifier).RegisterNotificationRoutes(api)
	log.Println("Authenticated routes configured.")

	// --- Admin panel; roles are enforced by the services ---
	admin := api.Group("/admin")
	userHandler.RegisterAdminRoutes(admin)
	catalogHandler.RegisterAdminRoutes(admin)
	log.Println("Admin routes configured.")

	log.Println("All routes configured.")
}
