package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"curriculum/api/internal/app"
	"curriculum/api/internal/artifacts"
	"curriculum/api/internal/catalog"
	"curriculum/api/internal/config"
	"curriculum/api/internal/draft"
	"curriculum/api/internal/generator"
	"curriculum/api/internal/gitrepo"
	"curriculum/api/internal/logger"
	"curriculum/api/internal/search"
	"curriculum/api/internal/store"
)

func main() {
	cfg := config.Load()
	ctx := context.Background()

	log, err := logger.New(cfg.LogMode, cfg.LogLevel)
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	db, err := store.Open(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatal("database connection failed", "error", err)
	}
	defer db.Close()

	if err := store.ApplyMigrations(ctx, db, cfg.MigrationsDir); err != nil {
		log.Fatal("migrations failed", "error", err)
	}

	if err := os.MkdirAll(cfg.ReposDir, 0o755); err != nil {
		log.Fatal("failed to create repos dir", "dir", cfg.ReposDir, "error", err)
	}

	cat, err := catalog.Load(cfg.CatalogPath)
	if err != nil {
		log.Fatal("catalog load failed", "path", cfg.CatalogPath, "error", err)
	}

	deps := app.Deps{
		Store:   store.NewPostgresStore(db),
		Git:     gitrepo.New(cfg.ReposDir),
		Catalog: cat,
		Log:     log,
	}

	var meiliClient *search.Meili
	if strings.TrimSpace(cfg.MeiliURL) != "" {
		meiliClient = search.NewMeili(cfg.MeiliURL, cfg.MeiliMasterKey, log)
		defer meiliClient.Close()
	}
	deps.Search = search.NewService(meiliClient, log)

	if strings.TrimSpace(cfg.RedisURL) != "" {
		drafts, err := draft.NewRedisStore(cfg.RedisURL, cfg.DraftTTL)
		if err != nil {
			log.Fatal("redis connection failed", "error", err)
		}
		defer drafts.Close()
		deps.Drafts = drafts
		log.Info("draft autosave enabled", "ttl", cfg.DraftTTL)
	} else {
		log.Info("draft autosave disabled, REDIS_URL not set")
	}

	minioStore, err := artifacts.NewMinioStore(ctx, artifacts.Config{
		Endpoint:  cfg.MinioEndpoint,
		AccessKey: cfg.MinioAccessKey,
		SecretKey: cfg.MinioSecretKey,
		Bucket:    cfg.MinioBucket,
		UseSSL:    cfg.MinioUseSSL,
		LinkTTL:   cfg.ArtifactTTL,
	})
	switch {
	case errors.Is(err, artifacts.ErrDisabled):
		log.Info("export uploads disabled, MINIO_ENDPOINT not set")
	case err != nil:
		log.Fatal("artifact storage init failed", "error", err)
	default:
		deps.Artifacts = minioStore
	}

	openaiClient, err := generator.NewOpenAIClient(generator.Config{
		APIKey:  cfg.OpenAIAPIKey,
		Model:   cfg.OpenAIModel,
		BaseURL: cfg.OpenAIBaseURL,
	}, log)
	switch {
	case errors.Is(err, generator.ErrDisabled):
		log.Info("structure generation disabled, OPENAI_API_KEY not set")
	case err != nil:
		log.Fatal("generator init failed", "error", err)
	default:
		deps.Generator = openaiClient
	}

	service := app.New(cfg, deps)
	httpServer := app.NewHTTPServer(service, cfg.CORSOrigin)
	server := &http.Server{
		Addr:              cfg.Addr,
		Handler:           httpServer.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       15 * time.Second,
		// Generation and PDF rendering can run long.
		WriteTimeout: cfg.GenerateTimeout + 30*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info("curriculum API listening", "addr", cfg.Addr, "org_id", cfg.OrgID)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("server failed", "error", err)
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("shutdown error", "error", err)
	}
}
