package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"goingmarry-api/internal/cache"
	"goingmarry-api/internal/config"
	"goingmarry-api/internal/handler"
	"goingmarry-api/internal/middleware"
	"goingmarry-api/internal/repository"
	"goingmarry-api/internal/router"
	"goingmarry-api/internal/service"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	log.Println("Starting GoingMarry API...")

	// Load configuration
	cfg := config.MustLoad()
	log.Printf("Environment: %s", cfg.App.Environment)

	// Open the marketplace database and apply schema + migrations
	db, err := repository.Open(&cfg.Database)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer db.Close()
	log.Printf("Database initialized (%s)", cfg.Database.Type)

	listingRepo := repository.NewSQLListingRepository(db)
	sellerRepo := repository.NewSQLSellerRepository(db)

	// Initialize the product-list cache
	var listingCache cache.Cache
	switch cfg.Cache.Type {
	case "redis":
		redisCache, err := cache.NewRedisCache(cache.RedisConfig{
			Addr:      cfg.Cache.RedisAddress(),
			Password:  cfg.Cache.RedisPassword,
			DB:        cfg.Cache.RedisDB,
			KeyPrefix: "goingmarry:",
		})
		if err != nil {
			log.Printf("Warning: Redis connection failed, falling back to memory cache: %v", err)
			listingCache = cache.NewMemoryCache()
		} else {
			listingCache = redisCache
			log.Println("Redis cache initialized")
		}
	default:
		listingCache = cache.NewMemoryCache()
		log.Println("Memory cache initialized")
	}
	defer listingCache.Close()

	// Image host (optional; uploads are rejected when unconfigured)
	var imageService service.ImageService
	if cfg.Cloudinary.CloudName != "" {
		cloudinaryService, err := service.NewCloudinaryService(&cfg.Cloudinary)
		if err != nil {
			log.Fatalf("Failed to initialize Cloudinary: %v", err)
		}
		imageService = cloudinaryService
		log.Println("Cloudinary image service initialized")
	} else {
		imageService = service.PassthroughImageService{}
		log.Println("Warning: no image host configured, embedded uploads disabled")
	}

	// Initialize services
	tokenService := service.NewTokenService(cfg.App.JWTSecret)
	listingService := service.NewListingService(listingRepo, sellerRepo, imageService, listingCache, cfg.Cache.TTL)
	sellerService := service.NewSellerService(sellerRepo, listingRepo, tokenService, listingCache, cfg.App.MembershipCode)

	// AI analysis is optional; the handler reports when it is disabled
	var analyzeService *service.AnalyzeService
	if analyzeService, err = service.NewAnalyzeService(context.Background(), &cfg.AI); err != nil {
		log.Printf("Warning: AI analysis disabled: %v", err)
		analyzeService = nil
	} else {
		log.Println("AI analysis service initialized")
	}

	// Initialize handlers
	healthHandler := handler.NewHealthHandler(db)
	productHandler := handler.NewProductHandler(listingService)
	authHandler := handler.NewAuthHandler(sellerService)
	adminHandler := handler.NewAdminHandler(sellerService)
	aiHandler := handler.NewAIHandler(analyzeService)

	authMiddleware := middleware.NewAuthMiddleware(tokenService)

	// Create router
	r := router.New(router.Config{
		HealthHandler:  healthHandler,
		ProductHandler: productHandler,
		AuthHandler:    authHandler,
		AdminHandler:   adminHandler,
		AIHandler:      aiHandler,
		AuthMiddleware: authMiddleware,
		MaxBodyBytes:   cfg.Server.MaxBodyBytes,
	})

	// Create HTTP server
	srv := &http.Server{
		Addr:         cfg.Server.Address(),
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	// Start server in goroutine
	go func() {
		log.Printf("Server listening on %s", cfg.Server.Address())
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("Server shutdown error: %v", err)
	}

	log.Println("Server stopped")
}
