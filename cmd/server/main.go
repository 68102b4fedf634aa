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

	"github.com/JaceG/dealbreaker-backend/internal/auth"
	"github.com/JaceG/dealbreaker-backend/internal/config"
	"github.com/JaceG/dealbreaker-backend/internal/db"
	"github.com/JaceG/dealbreaker-backend/internal/export"
	"github.com/JaceG/dealbreaker-backend/internal/history"
	"github.com/JaceG/dealbreaker-backend/internal/middleware"
	"github.com/JaceG/dealbreaker-backend/internal/repository"

	"github.com/rs/cors"
)

func main() {
	// Create context
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Load configuration (config.yaml + env overrides)
	dbConfig, serverConfig, err := config.Load(".")
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Run migrations before opening the pool
	if err := db.RunMigrations(dbConfig, serverConfig.MigrationsPath); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	// Setup database connection
	conn, err := db.NewConnection(ctx, dbConfig)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer conn.Close()

	// Create repositories
	historyRepo := repository.NewHistoryRepository(conn.Pool)
	userRepo := repository.NewUserRepository(conn.Pool)

	// Create services and handlers
	historyService := history.NewService(historyRepo, userRepo)
	historyHandler := history.NewHandler(historyService)
	exportService := export.NewService(historyRepo)

	mux := http.NewServeMux()
	historyHandler.Register(mux)
	mux.Handle("GET /history/export", export.NewHTTPHandler(exportService))

	// Setup CORS
	corsHandler := cors.New(cors.Options{
		AllowedOrigins:   serverConfig.AllowedOrigins,
		AllowCredentials: true,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"*"},
	})

	handler := corsHandler.Handler(
		middleware.LoggingMiddleware(
			auth.Middleware(
				middleware.UserLoaderMiddleware(userRepo)(mux),
			),
		),
	)

	// Create HTTP server
	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", serverConfig.Port),
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		log.Printf("Starting flag history server on :%d", serverConfig.Port)

		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	// Graceful shutdown with timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Println("Server exited")
}
