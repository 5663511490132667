package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/banmai/schoolgate/internal/auth"
	"github.com/banmai/schoolgate/internal/cache"
	"github.com/banmai/schoolgate/internal/config"
	"github.com/banmai/schoolgate/internal/database"
	"github.com/banmai/schoolgate/internal/middleware"
	"github.com/banmai/schoolgate/internal/oauth"
	"github.com/banmai/schoolgate/internal/otp"
	"github.com/banmai/schoolgate/internal/ratelimit"
	"github.com/banmai/schoolgate/internal/session"
	"github.com/banmai/schoolgate/internal/sms"
	"github.com/banmai/schoolgate/internal/token"
	"github.com/banmai/schoolgate/internal/user"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

func main() {
	// Load .env if present; real environments set variables directly
	_ = godotenv.Load()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize logger
	var logger *zap.Logger
	if cfg.IsDevelopment() {
		logger, _ = zap.NewDevelopment()
	} else {
		logger, _ = zap.NewProduction()
	}
	defer logger.Sync()

	logger.Info("Starting Schoolgate Auth Backend", zap.String("env", cfg.Env))

	// Connect to PostgreSQL
	db, err := database.NewPostgresDB(cfg.Database)
	if err != nil {
		logger.Fatal("Failed to connect to PostgreSQL", zap.Error(err))
	}
	defer db.Close()
	logger.Info("Connected to PostgreSQL")

	// Connect to Redis
	redisClient, err := database.NewRedisClient(cfg.RedisURL)
	if err != nil {
		logger.Fatal("Failed to connect to Redis", zap.Error(err))
	}
	defer redisClient.Close()
	logger.Info("Connected to Redis")

	// Initialize services
	userRepo := user.NewRepository(db.DB)
	tokenService := token.NewService(cfg.Token)
	sessionStore := cache.NewRedisStore(redisClient.Client)

	loginLimiter := ratelimit.NewLimiter(
		redisClient.Client,
		"login",
		cfg.RateLimit.Window,
		cfg.RateLimit.MaxAttempts,
		cfg.RateLimit.LockoutDuration,
	)
	otpLimiter := ratelimit.NewLimiter(
		redisClient.Client,
		"otp",
		cfg.RateLimit.Window,
		cfg.RateLimit.MaxAttempts,
		cfg.RateLimit.LockoutDuration,
	)

	smsClient := sms.NewGatewayClient(cfg.SMS)
	otpService := otp.NewService(sessionStore, smsClient, otpLimiter, cfg.OTP)

	sessionService := session.NewService(tokenService, sessionStore, userRepo)
	sessionHandler := session.NewHandler(sessionService)

	authService := auth.NewService(userRepo, tokenService, otpService, loginLimiter, cfg.SMS.CountryCode, logger)

	// Initialize OAuth services
	oauthStateManager := oauth.NewStateManager(redisClient.Client)
	googleService := oauth.NewGoogleService(cfg.Google, oauthStateManager)
	oauthAuthService := oauth.NewAuthService(userRepo, googleService, logger)

	// Initialize handlers
	authHandler := auth.NewHandler(authService, sessionHandler)
	oauthHandler := oauth.NewHandler(oauthAuthService, googleService, sessionHandler, cfg.ClientURL, logger)

	// Set up Gin router
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	// Global middleware
	allowedOrigins := middleware.ParseAllowedOrigins(cfg.CORS.AllowedOrigins)
	router.Use(middleware.CORS(allowedOrigins))
	router.Use(middleware.SecurityHeaders())
	router.Use(middleware.Recovery(logger))
	router.Use(middleware.Logger(logger))
	router.Use(middleware.Metrics())

	// Public routes
	router.GET("/health", func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		status := http.StatusOK
		checks := gin.H{"database": "ok", "redis": "ok"}
		if err := db.Health(ctx); err != nil {
			status = http.StatusServiceUnavailable
			checks["database"] = "unreachable"
		}
		if err := redisClient.Health(ctx); err != nil {
			status = http.StatusServiceUnavailable
			checks["redis"] = "unreachable"
		}
		c.JSON(status, checks)
	})
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Auth routes
	authGroup := router.Group("/auth")
	{
		authGroup.POST("/signin", authHandler.SignIn)
		authGroup.POST("/otp", authHandler.SendOTP)
		authGroup.POST("/otp/:userId/verify", authHandler.VerifyPhone)
		authGroup.POST("/reset-password", authHandler.ResetPassword)
		authGroup.GET("/refresh-token", sessionHandler.Refresh)
		authGroup.GET("/verify", sessionHandler.VerifyAccount)

		// OAuth routes
		authGroup.GET("/google", oauthHandler.GoogleLogin)
		authGroup.GET("/google/callback", oauthHandler.GoogleCallback)

		// Protected routes (require authentication)
		authGroup.Use(middleware.Auth(tokenService))
		{
			authGroup.POST("/signout", sessionHandler.SignOut)
			authGroup.GET("/me", authHandler.Me)
		}
	}

	// Create HTTP server
	server := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		logger.Info("Starting server", zap.String("port", cfg.Port))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Wait for interrupt signal to gracefully shut down the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	// Graceful shutdown with 5 second timeout
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Fatal("Server forced to shutdown", zap.Error(err))
	}

	logger.Info("Server stopped")
}
