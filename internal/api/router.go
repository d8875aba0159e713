package api

import (
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	echoswagger "github.com/swaggo/echo-swagger"
	"go.mongodb.org/mongo-driver/mongo"

	_ "github.com/wandertrails/tours-api/docs"
	"github.com/wandertrails/tours-api/internal/api/handler"
	"github.com/wandertrails/tours-api/internal/api/middleware"
	"github.com/wandertrails/tours-api/internal/core/domain"
	"github.com/wandertrails/tours-api/internal/core/ports"
	"github.com/wandertrails/tours-api/internal/core/service"
	"github.com/wandertrails/tours-api/internal/infrastructure/config"
	mongodb "github.com/wandertrails/tours-api/internal/infrastructure/db/mongo"
	redisdb "github.com/wandertrails/tours-api/internal/infrastructure/db/redis"
)

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(db *mongo.Database, rdb *redis.Client, mailer ports.Mailer, cfg *config.Config, log zerolog.Logger) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(log)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(echomiddleware.Logger())
	e.Use(echoprometheus.NewMiddleware("tours"))

	// --- Dependencies ---
	userRepo := mongodb.NewUserRepository(db)
	tourRepo := mongodb.NewTourRepository(db)
	reviewRepo := mongodb.NewReviewRepository(db)

	tokens := service.NewTokenService(cfg.JWTSecret, cfg.JWTTTL)
	authService := service.NewAuthService(userRepo, tokens, mailer, log)
	userService := service.NewUserService(userRepo, log)
	tourService := service.NewTourService(tourRepo, log)
	reviewService := service.NewReviewService(reviewRepo, tourRepo, log)

	authHandler := handler.NewAuthHandler(authService)
	userHandler := handler.NewUserHandler(userService)
	tourHandler := handler.NewTourHandler(tourService)
	reviewHandler := handler.NewReviewHandler(reviewService)

	protect := middleware.Protect(authService)
	limiter := redisdb.NewRateLimiter(rdb, cfg.RateLimit.Max, cfg.RateLimit.Window)

	// --- Operational endpoints (no auth, no rate limit) ---
	healthHandler := handler.NewHealthHandler()
	readinessHandler := handler.NewReadinessHandler(db, rdb)
	e.GET("/health", healthHandler.Liveness)
	e.GET("/health/ready", readinessHandler.Readiness)
	e.GET("/metrics", echoprometheus.NewHandler())
	e.GET("/swagger/*", echoswagger.WrapHandler)

	api := e.Group("/api", middleware.RateLimit(limiter, log))

	// --- Users & auth ---
	users := api.Group("/v1/users")
	users.POST("/signup", authHandler.Signup)
	users.POST("/login", authHandler.Login)
	users.POST("/forgotPassword", authHandler.ForgotPassword)
	users.PATCH("/resetPassword/:token", authHandler.ResetPassword)

	users.PATCH("/updateMyPassword", authHandler.UpdatePassword, protect)
	users.GET("/me", userHandler.GetMe, protect)
	users.PATCH("/updateMe", userHandler.UpdateMe, protect)
	users.DELETE("/deleteMe", userHandler.DeleteMe, protect)

	adminOnly := middleware.RestrictTo(domain.RoleAdmin)
	users.GET("", userHandler.List, protect, adminOnly)
	users.POST("", userHandler.Create, protect, adminOnly)
	users.GET("/:id", userHandler.Get, protect, adminOnly)
	users.PATCH("/:id", userHandler.Update, protect, adminOnly)
	users.DELETE("/:id", userHandler.Delete, protect, adminOnly)

	// --- Tours ---
	tours := api.Group("/v1/tours")
	manageTours := middleware.RestrictTo(domain.RoleAdmin, domain.RoleLeadGuide)

	tours.GET("", tourHandler.List)
	tours.GET("/top-5-cheap", tourHandler.TopCheap)
	tours.GET("/tour-stats", tourHandler.Stats)
	tours.GET("/monthly-plan/:year", tourHandler.MonthlyPlan,
		protect, middleware.RestrictTo(domain.RoleAdmin, domain.RoleLeadGuide, domain.RoleGuide))
	tours.GET("/tours-within/:distance/center/:latlng/unit/:unit", tourHandler.Within)
	tours.GET("/distances/:latlng/unit/:unit", tourHandler.Distances)
	tours.GET("/:id", tourHandler.Get)
	tours.POST("", tourHandler.Create, protect, manageTours)
	tours.PATCH("/:id", tourHandler.Update, protect, manageTours)
	tours.DELETE("/:id", tourHandler.Delete, protect, manageTours)

	// Nested reviews: /tours/:tour_id/reviews
	tours.GET("/:tour_id/reviews", reviewHandler.List, protect)
	tours.POST("/:tour_id/reviews", reviewHandler.Create, protect, middleware.RestrictTo(domain.RoleUser))

	// --- Reviews ---
	reviews := api.Group("/v1/reviews", protect)
	writeReviews := middleware.RestrictTo(domain.RoleUser, domain.RoleAdmin)

	reviews.GET("", reviewHandler.List)
	reviews.GET("/:id", reviewHandler.Get)
	reviews.POST("", reviewHandler.Create, middleware.RestrictTo(domain.RoleUser))
	reviews.PATCH("/:id", reviewHandler.Update, writeReviews)
	reviews.DELETE("/:id", reviewHandler.Delete, writeReviews)

	return e
}
