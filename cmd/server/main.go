package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/localloop/classifieds-service/internal/adapter/ai"
	httpadapter "github.com/localloop/classifieds-service/internal/adapter/http"
	"github.com/localloop/classifieds-service/internal/adapter/identity"
	"github.com/localloop/classifieds-service/internal/adapter/messaging/nats"
	"github.com/localloop/classifieds-service/internal/adapter/repository/mongodb"
	"github.com/localloop/classifieds-service/internal/adapter/storage/s3"
	"github.com/localloop/classifieds-service/internal/classified/domain"
	"github.com/localloop/classifieds-service/internal/classified/usecase"
	"github.com/localloop/classifieds-service/internal/config"
	"github.com/localloop/classifieds-service/internal/platform/logger"
	"github.com/localloop/classifieds-service/internal/platform/tracer"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	appLogger := logger.NewLogger()
	defer appLogger.Sync()

	tp := tracer.InitTracer()
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = tp.Shutdown(ctx)
	}()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	mongoClient, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.MongoURI))
	if err != nil {
		appLogger.Error("Failed to connect to MongoDB", "error", err.Error())
		return
	}
	defer mongoClient.Disconnect(context.Background())
	if err := mongoClient.Ping(ctx, nil); err != nil {
		appLogger.Error("MongoDB is unreachable", "uri", cfg.MongoURI, "error", err.Error())
		return
	}
	db := mongoClient.Database(cfg.MongoDatabase)

	listingRepo := mongodb.NewListingRepository(db, appLogger)
	profileRepo := mongodb.NewProfileRepository(db)

	storage, err := s3.NewStorage(cfg.MinIOEndpoint, cfg.MinIOAccessKey, cfg.MinIOSecretKey, cfg.MinIOBucket, cfg.MinIOUseSSL, appLogger)
	if err != nil {
		appLogger.Error("Failed to initialize blob storage", "error", err.Error())
		return
	}

	verifier, err := identity.NewVerifier(cfg.JWTSecret)
	if err != nil {
		appLogger.Error("Failed to initialize identity verifier", "error", err.Error())
		return
	}

	// Lifecycle events are best-effort; a missing broker degrades to no events.
	var events domain.EventPublisher
	if publisher, err := nats.NewPublisher(cfg.NATSURL); err != nil {
		appLogger.Warn("NATS unavailable, lifecycle events disabled", "url", cfg.NATSURL, "error", err.Error())
	} else {
		events = publisher
		defer publisher.Close()
	}

	// The AI adapter is optional the same way: without it, creates proceed
	// with whatever tags the caller supplied.
	var suggester domain.TagSuggester
	var generator domain.ImageGenerator
	if cfg.GCPProjectID != "" {
		gemini, err := ai.NewGemini(ctx, cfg.GCPProjectID, cfg.GCPLocation, cfg.GeminiModel, appLogger)
		if err != nil {
			appLogger.Warn("Gemini unavailable, tag suggestion and image generation disabled", "error", err.Error())
		} else {
			suggester = gemini
			generator = gemini
			defer gemini.Close()
		}
	} else {
		appLogger.Warn("GCP_PROJECT_ID not set, tag suggestion and image generation disabled")
	}

	lifecycleUC, err := usecase.NewLifecycleUsecase(verifier, listingRepo, storage, suggester, events, appLogger)
	if err != nil {
		appLogger.Error("Failed to construct lifecycle usecase", "error", err.Error())
		return
	}
	queryUC, err := usecase.NewQueryUsecase(verifier, listingRepo, appLogger)
	if err != nil {
		appLogger.Error("Failed to construct query usecase", "error", err.Error())
		return
	}
	profileUC, err := usecase.NewProfileUsecase(verifier, profileRepo, appLogger)
	if err != nil {
		appLogger.Error("Failed to construct profile usecase", "error", err.Error())
		return
	}

	handler := httpadapter.NewHandler(lifecycleUC, queryUC, profileUC, suggester, generator, appLogger)
	server := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           httpadapter.NewRouter(handler, appLogger),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		appLogger.Info("Starting HTTP server", "port", cfg.HTTPPort)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			appLogger.Error("HTTP server failed", "error", err.Error())
			stop()
		}
	}()

	<-ctx.Done()
	appLogger.Info("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		appLogger.Error("Graceful shutdown failed", "error", err.Error())
	}
}
