package main

import (
	"bytes"
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/prooflab/backend/internal/config"
	"github.com/prooflab/backend/internal/handlers"
	"github.com/prooflab/backend/internal/middleware"
	"github.com/prooflab/backend/internal/models"
	"github.com/prooflab/backend/internal/services"
)

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	// Initialize configuration
	cfg := config.New()

	// Initialize database
	db, err := models.InitDB(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}

	// Run migrations
	if err := models.Migrate(db); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	// Initialize Redis
	redisClient := models.InitRedis(cfg)
	defer redisClient.Close()

	// Initialize services
	s3Service, err := services.NewS3Service(cfg)
	if err != nil {
		log.Fatalf("Failed to init S3 service: %v", err)
	}
	storageService := services.NewStorageService(cfg)
	thumbnailService := services.NewThumbnailService(cfg)

	accessService := services.NewAccessService(db)
	authService := services.NewAuthService(db, redisClient, cfg, accessService)
	userService := services.NewUserService(db, cfg)
	clientService := services.NewClientService(db)
	galleryService := services.NewGalleryService(db, cfg, s3Service, storageService)
	imageService := services.NewImageService(db, cfg, s3Service, storageService, thumbnailService)
	proofingService := services.NewProofingService(redisClient, cfg)
	productService := services.NewProductService(db)
	stripeProvider := services.NewStripeProvider(cfg, db)
	orderService := services.NewOrderService(db, cfg, stripeProvider)
	subscriptionService := services.NewSubscriptionService(db)
	invoiceService := services.NewInvoiceService(cfg)
	qrService := services.NewQRService(cfg)
	emailService := services.NewEmailService(cfg)

	// Optional: sync missing images into the local cache on start
	if cfg.MediaSyncOnStart {
		go func() {
			log.Println("MediaSyncOnStart enabled: syncing missing images...")
			keys, err := s3Service.ListMediaKeys(context.Background(), cfg.MediaImagesBucket, "galleries/", 1000)
			if err != nil {
				log.Printf("Image sync list error: %v", err)
				return
			}
			for _, k := range keys {
				abs := filepath.Join(cfg.LocalAssetsPath, filepath.FromSlash(k))
				if _, err := os.Stat(abs); err == nil {
					continue
				}
				buf, derr := s3Service.DownloadMedia(context.Background(), cfg.MediaImagesBucket, k)
				if derr != nil {
					continue
				}
				if _, _, _, err := storageService.SaveStream(context.Background(), k, bytes.NewReader(buf.Bytes())); err != nil {
					continue
				}
			}
			log.Println("MediaSyncOnStart: image sync complete")
		}()
	}

	// Background variant backfill for images uploaded before variant
	// generation existed (or whose generation failed)
	if cfg.VariantBackfillEnabled {
		go func() {
			// Initial delay to let the server start first
			time.Sleep(30 * time.Second)
			for {
				pending, err := imageService.GetPendingVariantBackfills(50)
				if err != nil {
					log.Printf("Variant backfill scan error: %v", err)
				} else if len(pending) > 0 {
					log.Printf("Variant backfill: found %d images", len(pending))
					done := 0
					for i := range pending {
						if err := imageService.BackfillVariants(context.Background(), &pending[i]); err != nil {
							log.Printf("Variant backfill error for %s: %v", pending[i].ID, err)
						} else {
							done++
						}
						time.Sleep(100 * time.Millisecond)
					}
					log.Printf("Variant backfill batch complete: %d/%d", done, len(pending))
				}
				time.Sleep(5 * time.Minute)
			}
		}()
	}

	// Periodic cleanup for stale pending orders
	if cfg.PendingOrderCleanupEnabled {
		go func() {
			for {
				cancelled, err := orderService.CleanupStalePendingOrders()
				if err != nil {
					log.Printf("Pending order cleanup error: %v", err)
				} else if cancelled > 0 {
					log.Printf("Pending order cleanup: cancelled %d stale orders", cancelled)
				}
				time.Sleep(5 * time.Minute)
			}
		}()
	}

	// Poll pending payments as fallback if webhooks fail
	go func() {
		for {
			confirmed, err := orderService.CheckPendingPayments()
			if err != nil {
				log.Printf("Pending payment check error: %v", err)
			} else if confirmed > 0 {
				log.Printf("Pending payment check: confirmed %d payments", confirmed)
			}
			time.Sleep(30 * time.Second)
		}
	}()

	// Hourly refresh token cleanup
	go func() {
		for {
			deleted, err := authService.CleanupExpiredRefreshTokens()
			if err != nil {
				log.Printf("Refresh token cleanup error: %v", err)
			} else if deleted > 0 {
				log.Printf("Refresh token cleanup: removed %d expired tokens", deleted)
			}
			time.Sleep(1 * time.Hour)
		}
	}()

	// Create studio account if not exists
	if err := userService.CreateDefaultStudioAccount(); err != nil {
		log.Printf("Failed to create default studio account: %v", err)
	}

	// Setup Gin router
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Logger())
	router.Use(gin.Recovery())
	router.Use(middleware.CORS(cfg))
	router.Use(middleware.RateLimiter(redisClient, cfg))

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(authService, userService)
	clientHandler := handlers.NewClientHandler(clientService, galleryService)
	galleryHandler := handlers.NewGalleryHandler(galleryService, imageService, accessService, clientService, qrService, emailService)
	imageHandler := handlers.NewImageHandler(imageService, cfg)
	proofingHandler := handlers.NewProofingHandler(proofingService, imageService, galleryService)
	productHandler := handlers.NewProductHandler(productService)
	orderHandler := handlers.NewOrderHandler(orderService, invoiceService)
	stripeHandler := handlers.NewStripeHandler(orderService, subscriptionService, emailService, cfg)

	// Health check outside API group (no /api/v1 prefix)
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "healthy"})
	})

	// Setup routes
	api := router.Group("/api/v1")
	{
		api.GET("/health", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{"status": "healthy"})
		})

		// Catch-all OPTIONS handler for CORS preflight requests
		api.OPTIONS("/*path", func(c *gin.Context) {
			c.Status(http.StatusNoContent)
		})

		// Public routes
		public := api.Group("/public")
		{
			public.POST("/access/redeem", authHandler.RedeemCode)
		}

		// Studio auth routes
		auth := api.Group("/auth")
		{
			auth.POST("/login", authHandler.Login)
			auth.POST("/refresh", authHandler.RefreshToken)
			auth.POST("/logout", middleware.Auth(authService), authHandler.Logout)
			auth.GET("/me", middleware.Auth(authService), authHandler.Me)
			auth.PUT("/password", middleware.Auth(authService), authHandler.ChangePassword)
		}

		// Client routes (gallery token)
		client := api.Group("/client")
		client.Use(middleware.GalleryAuth(authService))
		{
			client.GET("/gallery", proofingHandler.GetGallery)
			client.GET("/images/:id/file", imageHandler.ServeImage)

			// Ratings
			client.PUT("/images/:id/rating", proofingHandler.SetRating)
			client.POST("/images/:id/rating/toggle", proofingHandler.ToggleRating)
			client.POST("/images/rating/bulk", proofingHandler.BulkRating)

			// Workspace session
			client.GET("/session", proofingHandler.GetSession)
			client.POST("/session/select", proofingHandler.Select)
			client.POST("/session/clear", proofingHandler.ClearSelection)
			client.PUT("/session/filter", proofingHandler.SetFilter)
			client.PUT("/session/mode", proofingHandler.SetMode)
			client.POST("/session/navigate", proofingHandler.Navigate)

			// Ordering
			client.GET("/products", productHandler.GetActiveProducts)
			client.POST("/orders", orderHandler.CreateOrder)
			client.GET("/orders", orderHandler.GetMyOrders)
			client.DELETE("/orders/:id", orderHandler.CancelOrder)
			client.GET("/orders/:id/invoice.pdf", orderHandler.GetInvoice)
		}

		// Studio routes
		studio := api.Group("/studio")
		studio.Use(middleware.Auth(authService))
		{
			// Client management
			studio.GET("/clients", clientHandler.GetClients)
			studio.POST("/clients", clientHandler.CreateClient)
			studio.GET("/clients/:id", clientHandler.GetClient)
			studio.PUT("/clients/:id", clientHandler.UpdateClient)
			studio.DELETE("/clients/:id", clientHandler.DeleteClient)

			// Gallery management
			studio.GET("/galleries", galleryHandler.GetGalleries)
			studio.POST("/galleries", galleryHandler.CreateGallery)
			studio.GET("/galleries/:id", galleryHandler.GetGallery)
			studio.PUT("/galleries/:id", galleryHandler.UpdateGallery)
			studio.DELETE("/galleries/:id", galleryHandler.DeleteGallery)

			// Access codes
			studio.POST("/galleries/:id/codes", galleryHandler.CreateAccessCode)
			studio.DELETE("/galleries/:id/codes/:codeId", galleryHandler.DeactivateAccessCode)
			studio.GET("/galleries/:id/codes/:codeId/qr.pdf", galleryHandler.GetAccessCodeQR)
			studio.POST("/galleries/:id/codes/:codeId/notify", galleryHandler.NotifyClient)

			// Image management
			studio.GET("/images/:id/file", imageHandler.ServeImage)
			studio.GET("/images/:id/download-url", imageHandler.GetDownloadURL)
			studio.DELETE("/images/:id", imageHandler.DeleteImage)
			studio.PUT("/images/:id/position", imageHandler.UpdatePosition)
			studio.PUT("/images/:id/effect", imageHandler.SetEffect)

			// Uploads with daily rate limiting
			uploadGroup := studio.Group("")
			uploadGroup.Use(middleware.UploadRateLimit(redisClient, cfg))
			{
				uploadGroup.POST("/galleries/:id/images", imageHandler.Upload)
				uploadGroup.POST("/galleries/:id/images/batch", imageHandler.UploadBatch)
			}

			// Product catalog
			studio.GET("/products", productHandler.GetProducts)
			studio.POST("/products", productHandler.CreateProduct)
			studio.PUT("/products/:id", productHandler.UpdateProduct)
			studio.DELETE("/products/:id", productHandler.DeactivateProduct)

			// Orders
			studio.GET("/orders", orderHandler.GetOrders)
			studio.GET("/orders/:id", orderHandler.GetOrder)
			studio.POST("/orders/:id/refund", orderHandler.RefundOrder)
			studio.GET("/orders/:id/invoice.pdf", orderHandler.GetInvoice)
		}

		// Payment webhooks
		api.POST("/stripe/webhook", stripeHandler.HandleWebhook)
	}

	// Start server
	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  120 * time.Second, // 2 min for batch uploads
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown
	go func() {
		log.Printf("Starting server on port %s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Println("Server exited")
}
