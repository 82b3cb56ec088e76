// @title           CreditSync Backend API
// @version         1.0.0
// @description     Backend API for collecting customer identification materials. Staff manage collection orders and upload materials against a configurable catalog; customers contribute through expiring collaboration links.

// @host      localhost:8080
// @BasePath  /api/v1

// @securityDefinitions.apikey Bearer
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

package main

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"creditsync-backend/internal/config"
	"creditsync-backend/internal/database"
	"creditsync-backend/internal/handlers"
	"creditsync-backend/internal/logger"
	"creditsync-backend/internal/middleware"
	"creditsync-backend/internal/services"
	"creditsync-backend/internal/storage"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load configuration: " + err.Error())
	}

	if err := logger.Init(cfg.Environment); err != nil {
		panic("failed to initialize logger: " + err.Error())
	}
	defer logger.Sync()

	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := database.NewClient(cfg.DatabaseURL)
	if err != nil {
		logger.L.Fatal("failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	if err := db.Migrate(); err != nil {
		logger.L.Fatal("failed to run migrations", zap.Error(err))
	}

	blobs, err := storage.NewSupabaseStore(cfg.SupabaseURL, cfg.SupabaseServiceKey, cfg.SupabaseStorageBucket)
	if err != nil {
		logger.L.Fatal("failed to initialize blob storage", zap.Error(err))
	}

	authService := services.NewAuthService(db, cfg.JWTSecret, cfg.JWTExpiryHours)
	orderService := services.NewOrderService(db, db, db, blobs)
	uploadService := services.NewUploadService(db, db, db, blobs)
	materialService := services.NewMaterialService(db)
	collabService := services.NewCollaborationService(db, db, db, db, uploadService, cfg.FrontendURL)

	authHandler := handlers.NewAuthHandler(authService)
	ordersHandler := handlers.NewOrdersHandler(orderService)
	uploadsHandler := handlers.NewUploadsHandler(uploadService, cfg.MaxFileSize, cfg.MaxBatchFiles)
	materialsHandler := handlers.NewMaterialsHandler(materialService)
	collabHandler := handlers.NewCollaborationHandler(collabService, cfg.MaxFileSize)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogger())
	router.MaxMultipartMemory = cfg.MaxFileSize

	router.GET("/health", handlers.HealthHandler)

	api := router.Group("/api/v1")

	api.POST("/auth/login", authHandler.Login)

	// Public collaboration surface; access is gated by the token itself.
	api.GET("/share/:token", collabHandler.Redeem)
	api.POST("/share/:token/items/:item_id/upload", collabHandler.UploadViaLink)

	authed := api.Group("")
	authed.Use(middleware.Auth(cfg.JWTSecret))

	authed.POST("/auth/logout", authHandler.Logout)
	authed.GET("/auth/profile", authHandler.Profile)
	authed.POST("/auth/refresh", authHandler.Refresh)

	authed.POST("/orders", ordersHandler.CreateOrder)
	authed.GET("/orders", ordersHandler.ListOrders)
	authed.GET("/orders/:id", ordersHandler.GetOrder)
	authed.PUT("/orders/:id", ordersHandler.UpdateOrder)
	authed.DELETE("/orders/:id", ordersHandler.DeleteOrder)

	authed.POST("/orders/:id/items/:item_id/upload", uploadsHandler.Upload)
	authed.POST("/orders/:id/items/:item_id/upload/batch", uploadsHandler.UploadBatch)
	authed.GET("/files/:id", uploadsHandler.GetFile)
	authed.DELETE("/files/:id", uploadsHandler.DeleteFile)

	authed.POST("/collaboration/links", collabHandler.CreateLink)
	authed.GET("/orders/:id/links", collabHandler.ListLinks)
	authed.DELETE("/collaboration/links/:id", collabHandler.DeactivateLink)

	authed.GET("/materials", materialsHandler.Catalog)

	admin := authed.Group("")
	admin.Use(middleware.RequireAdmin())

	admin.POST("/collaboration/cleanup", collabHandler.Cleanup)
	admin.POST("/materials/categories", materialsHandler.CreateCategory)
	admin.PUT("/materials/categories/:id", materialsHandler.UpdateCategory)
	admin.DELETE("/materials/categories/:id", materialsHandler.DeleteCategory)
	admin.POST("/materials/items", materialsHandler.CreateItem)
	admin.PUT("/materials/items/:id", materialsHandler.UpdateItem)
	admin.DELETE("/materials/items/:id", materialsHandler.DeleteItem)

	logger.L.Info("server starting", zap.String("port", cfg.Port))
	if err := http.ListenAndServe(":"+cfg.Port, router); err != nil {
		logger.L.Fatal("server stopped", zap.Error(err))
	}
}
