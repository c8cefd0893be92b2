package main

import (
	"log"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"linkly-be/internal/cache"
	"linkly-be/internal/config"
	"linkly-be/internal/controllers"
	"linkly-be/internal/database"
	"linkly-be/internal/jwt"
	"linkly-be/internal/middleware"
	"linkly-be/internal/repository"
	"linkly-be/internal/service"
)

func main() {
	cfg := config.Load()

	db, err := database.NewConnection(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	if err := database.RunMigrations(db); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	// Redis is optional - the resolve path falls back to the database
	var cacheClient cache.Cache
	if cfg.RedisURL != "" {
		cacheClient, err = cache.NewRedisCache(cfg.RedisURL)
		if err != nil {
			log.Printf("Warning: Failed to connect to Redis (%v). Continuing without cache.", err)
			cacheClient = nil
		} else {
			log.Println("Connected to Redis cache")
		}
	}

	linkRepo := repository.NewLinkRepository(db)
	userRepo := repository.NewUserRepository(db)

	jwtService := jwt.NewJWTService(
		cfg.JWTSecret,
		time.Duration(cfg.JWTTTL)*time.Hour,
	)

	linkService := service.NewLinkService(linkRepo, cacheClient, cfg.BaseURL)
	authService := service.NewAuthService(userRepo, jwtService)

	shortenerController := controllers.NewShortenerController(linkService)
	authController := controllers.NewAuthController(authService)
	qrcodeController := controllers.NewQRCodeController(cfg.BaseURL)

	generalLimiter := middleware.NewRateLimiter(rate.Limit(cfg.RateLimitRPS), cfg.RateLimitBurst)
	shortenLimiter := middleware.NewRateLimiter(rate.Limit(cfg.RateLimitShortenRPS), cfg.RateLimitShortenBurst)
	redirectLimiter := middleware.NewRateLimiter(rate.Limit(cfg.RateLimitRedirectRPS), cfg.RateLimitRedirectBurst)

	router := gin.Default()

	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	// Redirect endpoint with lenient rate limiting
	router.GET("/:shortCode", redirectLimiter.Limit(), shortenerController.Redirect)

	api := router.Group("/api")
	api.Use(generalLimiter.Limit())
	{
		// Shorten is public; a valid token attaches ownership
		api.POST("/shorten", shortenLimiter.Limit(), middleware.OptionalAuth(jwtService), shortenerController.Shorten)

		api.GET("/stats/:shortCode", shortenerController.Stats)
		api.GET("/stats/:shortCode/timeline", shortenerController.Timeline)
		api.GET("/qrcode/:shortCode", qrcodeController.Generate)

		auth := api.Group("/auth")
		{
			auth.POST("/register", authController.Register)
			auth.POST("/login", authController.Login)
		}

		protected := api.Group("")
		protected.Use(middleware.RequireAuth(jwtService))
		{
			protected.GET("/urls", shortenerController.UserLinks)
		}
	}

	addr := ":" + cfg.Port
	log.Printf("Server starting on http://localhost%s", addr)
	if err := router.Run(addr); err != nil {
		log.Fatalf("Server error: %v", err)
	}
}
