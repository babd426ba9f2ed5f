package main

import (
	"context"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"

	auditlog "corebank/backend/internal/audit"
	auditrepo "corebank/backend/internal/audit/repository"
	"corebank/backend/internal/auth/handler"
	"corebank/backend/internal/auth/service"
	"corebank/backend/internal/config"
	"corebank/backend/internal/db"
	"corebank/backend/internal/metrics"
	"corebank/backend/internal/revocation"
	"corebank/backend/internal/security"
	"corebank/backend/internal/server"
	"corebank/backend/internal/token"
	userrepo "corebank/backend/internal/user/repository"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	if cfg.DatabaseURL == "" {
		log.Fatal("config: DATABASE_URL must be set")
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	database, err := db.Open(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer database.Close()

	codec, alg, err := buildCodec(cfg)
	if err != nil {
		log.Fatalf("signing keys: %v", err)
	}
	logger.Info("token signing configured", "alg", alg)

	var (
		ledger      revocation.Ledger
		redisClient *redis.Client
	)
	if cfg.RedisAddr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
		})
		defer redisClient.Close()
		ledger = revocation.NewRedisLedger(redisClient)
		logger.Info("revocation ledger: redis", "addr", cfg.RedisAddr)
	} else {
		pg := revocation.NewPostgresLedger(database)
		ledger = pg
		go pruneLoop(pg, logger)
		logger.Info("revocation ledger: postgres")
	}

	issuer := token.NewIssuer(codec, cfg.JWTIssuer, cfg.JWTAudience, cfg.AccessTTL(), cfg.RefreshTTL())
	verifier := token.NewVerifier(codec, ledger, cfg.JWTIssuer, cfg.JWTAudience)
	hasher := security.NewHasher(cfg.BcryptCost)

	registry := prometheus.NewRegistry()
	collector := metrics.NewCollector(registry)
	auditor := auditlog.NewLogger(auditrepo.NewPostgres(database), server.ClientIP)

	svc := service.NewAuthService(
		userrepo.NewPostgres(database),
		ledger,
		issuer,
		verifier,
		hasher,
		auditor,
		collector,
	)

	router := server.NewRouter(server.Deps{
		Auth:     handler.NewAuthHandler(svc, logger),
		Logger:   logger,
		Registry: registry,
		DB:       database,
		Redis:    redisClient,
	})

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		logger.Info("http server listening", "addr", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("serve: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down http server")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("shutdown", "error", err)
	}
	logger.Info("http server stopped")
}

// buildCodec selects RS256/ES256 when a PEM key pair is configured and falls
// back to HS256 with the shared secret otherwise. The second return is the
// algorithm name for the startup log.
func buildCodec(cfg *config.Config) (*token.Codec, string, error) {
	if cfg.JWTPrivateKey != "" {
		priv, err := security.ParsePrivateKey(cfg.JWTPrivateKey)
		if err != nil {
			return nil, "", err
		}
		pub, err := security.ParsePublicKey(cfg.JWTPublicKey)
		if err != nil {
			return nil, "", err
		}
		alg := security.KeyAlg(pub)
		if alg == "" {
			return nil, "", security.ErrInvalidKey
		}
		codec, err := token.NewKeyPairCodec(priv, pub)
		return codec, alg, err
	}
	codec, err := token.NewHMACCodec([]byte(cfg.JWTSecret))
	return codec, "HS256", err
}

// pruneLoop deletes expired revocation rows hourly when the Postgres ledger
// is in use. Redis handles this via key expiry.
func pruneLoop(pg *revocation.PostgresLedger, logger *slog.Logger) {
	ticker := time.NewTicker(time.Hour)
	defer ticker.Stop()
	for range ticker.C {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		n, err := pg.PruneExpired(ctx)
		cancel()
		if err != nil {
			logger.Error("revocation prune", "error", err)
			continue
		}
		if n > 0 {
			logger.Info("revocation prune", "deleted", n)
		}
	}
}
