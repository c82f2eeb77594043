package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"catalogapi/internal/assets"
	"catalogapi/internal/config"
	"catalogapi/internal/handlers"
	"catalogapi/internal/metrics"
	"catalogapi/internal/middleware"
	"catalogapi/internal/repository"
	"catalogapi/internal/service"
	"catalogapi/internal/storage"
	"catalogapi/pkg/logger"
)

func main() {
	// Load configuration from environment
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize structured logger
	log := logger.New(cfg.LogLevel)
	slog.SetDefault(log)

	log.Info("starting catalog api server",
		"port", cfg.Server.Port,
		"host", cfg.Server.Host,
		"log_level", cfg.LogLevel,
	)

	// Connect to MongoDB
	client, err := storage.Connect(context.Background(), cfg.Mongo)
	if err != nil {
		log.Error("failed to connect to mongodb", "error", err)
		os.Exit(1)
	}
	db := client.Database(cfg.Mongo.Database)
	log.Info("connected to mongodb", "database", cfg.Mongo.Database)

	// Initialize image asset store
	imageStore, err := assets.NewStore(cfg.Uploads.Dir, cfg.Uploads.PublicPath, log)
	if err != nil {
		log.Error("failed to initialize image store", "error", err)
		os.Exit(1)
	}

	// Initialize repositories
	categoryRepo := repository.NewMongoCategoryRepository(db)
	productRepo := repository.NewMongoProductRepository(db)

	// Initialize services
	categoryService := service.NewCategoryService(categoryRepo, imageStore)
	productService := service.NewProductService(productRepo, categoryRepo)

	// Initialize handlers
	healthHandler := handlers.NewHealthHandler(log)
	categoryHandler := handlers.NewCategoryHandler(categoryService, log)
	productHandler := handlers.NewProductHandler(productService, log)

	// Create router
	r := chi.NewRouter()

	// Apply middleware
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.Logger(log))
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.Timeout(60 * time.Second))

	// CORS configuration
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	// Register health check and metrics endpoints
	r.Get("/health", healthHandler.ServeHTTP)
	r.Handle("/metrics", metrics.Handler())

	// Serve uploaded images statically
	fileServer := http.StripPrefix(cfg.Uploads.PublicPath, http.FileServer(http.Dir(imageStore.Dir())))
	r.Get(cfg.Uploads.PublicPath+"/*", fileServer.ServeHTTP)

	// API routes
	r.Route("/api", func(r chi.Router) {
		// Category endpoints
		r.Route("/categories", func(r chi.Router) {
			r.Get("/", categoryHandler.ListCategories)
			r.Post("/", categoryHandler.CreateCategory)
			r.Get("/{categoryId}", categoryHandler.GetCategory)
			r.Put("/{categoryId}", categoryHandler.UpdateCategory)
			r.Delete("/{categoryId}", categoryHandler.DeleteCategory)
		})

		// Product endpoints
		r.Route("/products", func(r chi.Router) {
			r.Get("/", productHandler.ListProducts)
			r.Post("/", productHandler.CreateProduct)
			r.Get("/{productId}", productHandler.GetProduct)
			r.Put("/{productId}", productHandler.UpdateProduct)
			r.Delete("/{productId}", productHandler.DeleteProduct)
		})
	})

	// Create HTTP server
	addr := fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	// Start server in a goroutine
	go func() {
		log.Info("server listening", "address", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server...")

	// Create shutdown context with timeout
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.Server.ShutdownTimeout)*time.Second)
	defer cancel()

	// Attempt graceful shutdown
	if err := srv.Shutdown(ctx); err != nil {
		log.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	if err := client.Disconnect(ctx); err != nil {
		log.Error("failed to disconnect from mongodb", "error", err)
	}

	log.Info("server stopped gracefully")
}
