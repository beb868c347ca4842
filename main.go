package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"staygrow/auth"
	"staygrow/authz"
	"staygrow/config"
	"staygrow/database"
	"staygrow/handlers"
	"staygrow/logging"
	"staygrow/middleware"
	"staygrow/storage"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("invalid configuration")
	}
	logging.Setup(cfg.Env, cfg.LogLevel)
	if cfg.IsProd() {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err = run(ctx, cfg)
	stop()
	if err != nil {
		log.Fatal().Err(err).Msg("server exited")
	}
}

// run serves until ctx is cancelled. Every resource it opens is released
// before it returns.
func run(ctx context.Context, cfg *config.Config) error {
	// Create context with timeout for initial connection
	connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	db, err := database.Connect(connectCtx, cfg.Database.URL)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()

	verifier, err := auth.NewVerifier(cfg.Auth.JWTSecret)
	if err != nil {
		return fmt.Errorf("failed to create token verifier: %w", err)
	}

	enforcer, err := authz.NewEnforcer()
	if err != nil {
		return fmt.Errorf("failed to load authorization policy: %w", err)
	}

	store, err := storage.NewClient(storage.Config{
		Endpoint:        cfg.Storage.Endpoint,
		AccessKeyID:     cfg.Storage.AccessKeyID,
		SecretAccessKey: cfg.Storage.SecretAccessKey,
		Bucket:          cfg.Storage.Bucket,
		UseSSL:          cfg.Storage.UseSSL,
		PublicURL:       cfg.Storage.PublicURL,
	})
	if err != nil {
		return fmt.Errorf("failed to create storage client: %w", err)
	}
	if store.Enabled() {
		if err := store.EnsureBucket(connectCtx); err != nil {
			log.Warn().Err(err).Str("bucket", cfg.Storage.Bucket).Msg("image bucket unavailable, uploads will fail")
		}
	} else {
		log.Warn().Msg("STAYGROW_MINIO_ENDPOINT not set, image uploads disabled")
	}

	limit, limiter := middleware.RateLimitPerMinute(cfg.Security.RateLimitRPM, cfg.Security.RateLimitBurst)
	go func() {
		ticker := time.NewTicker(time.Minute)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				limiter.Sweep()
			}
		}
	}()

	r := handlers.NewRouter(handlers.Deps{
		Store:           db,
		Viewers:         verifier,
		Permissions:     enforcer,
		Uploader:        store,
		TokenCookie:     cfg.Auth.TokenCookie,
		EngagementLimit: limit,
	})

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           http.TimeoutHandler(r, cfg.Security.RequestTimeout, `{"error":"request timed out"}`),
		ReadHeaderTimeout: 5 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		log.Info().Str("addr", cfg.HTTPAddr).Str("env", cfg.Env).Msg("server starting")
		serveErr <- srv.ListenAndServe()
	}()

	select {
	case err := <-serveErr:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down")
	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancelShutdown()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}
	return nil
}
