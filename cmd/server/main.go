package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/cors"

	"github.com/datalens/catalogd/internal/api"
	"github.com/datalens/catalogd/internal/config"
	"github.com/datalens/catalogd/internal/db"
	"github.com/datalens/catalogd/internal/export"
	"github.com/datalens/catalogd/internal/favorites"
	"github.com/datalens/catalogd/internal/ingestion"
	"github.com/datalens/catalogd/internal/middleware"
	"github.com/datalens/catalogd/internal/repository"
	"github.com/datalens/catalogd/internal/view"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cfg, err := config.Load(".")
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Setup database connection
	conn, err := db.NewConnection(ctx, cfg.Database)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer conn.Close()

	// Run migrations
	if err := db.RunMigrations(cfg.Database, cfg.Server.MigrationsPath); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	// Create repositories
	assetRepo := repository.NewAssetRepository(conn.Pool)
	schemaRepo := repository.NewAssetSchemaRepository(conn.Pool)
	annotationRepo := repository.NewAnnotationRepository(conn.Pool)
	scanRepo := repository.NewScanRepository(conn.Pool)
	lineageRepo := repository.NewLineageRepository(conn.Pool)
	favoriteRepo := repository.NewFavoriteRepository(conn.Pool)

	// Create services
	favoriteService := favorites.NewService(favoriteRepo)
	ingestService := ingestion.NewService(schemaRepo, assetRepo)
	viewManager := view.NewManager()

	catalogAPI := api.New(api.Config{
		Assets:      assetRepo,
		Schemas:     schemaRepo,
		Annotations: annotationRepo,
		Scans:       scanRepo,
		Lineage:     lineageRepo,
		Favorites:   favoriteService,
		Views:       viewManager,
		Exporter:    export.NewService(),
		Ingest:      ingestion.NewHTTPHandler(ingestService),
	})

	// Setup CORS
	corsHandler := cors.New(cors.Options{
		AllowedOrigins:   cfg.Server.AllowedOrigins,
		AllowCredentials: true,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"*"},
	})

	handler := corsHandler.Handler(
		middleware.LoggingMiddleware(
			middleware.DataLoaderMiddleware(assetRepo)(catalogAPI.Router()),
		),
	)

	server := &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Drop view sessions nobody touched for a while.
	pruneTicker := time.NewTicker(time.Minute)
	defer pruneTicker.Stop()
	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case <-pruneTicker.C:
				if pruned := viewManager.PruneIdle(cfg.Server.ViewIdleTTL); pruned > 0 {
					log.Printf("[VIEW] pruned %d idle session(s)", pruned)
				}
			}
		}
	}()

	// Start server in a goroutine
	go func() {
		log.Printf("Starting catalog server on %s", cfg.Server.Addr)

		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Println("Server exited")
}
