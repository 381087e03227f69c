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

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"quizbuddy/internal/account"
	"quizbuddy/internal/config"
	"quizbuddy/internal/handler"
	"quizbuddy/internal/httpmiddleware"
	"quizbuddy/internal/kv"
	"quizbuddy/internal/llm"
	"quizbuddy/internal/logger"
	"quizbuddy/internal/marks"
	"quizbuddy/internal/metrics"
	"quizbuddy/internal/quiz"
	"quizbuddy/internal/session"
	"quizbuddy/internal/store"
	"quizbuddy/internal/tracing"
	"quizbuddy/internal/translate"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(cfg)
	defer func() { _ = log.Sync() }()

	// Set Gin mode based on environment
	if cfg.Production() {
		gin.SetMode(gin.ReleaseMode)
	}

	if err := runHTTP(cfg, log); err != nil {
		log.Fatal("http server failed", zap.Error(err))
	}
}

func runHTTP(cfg config.App, log *zap.Logger) error {
	ctx := context.Background()

	if cfg.TracingEndpoint != "" {
		shutdown, err := tracing.Init("quizbuddy", cfg.TracingEndpoint)
		if err != nil {
			log.Warn("tracing disabled", zap.Error(err))
		} else {
			defer func() { _ = shutdown(context.Background()) }()
		}
	}
	metrics.Register()

	db, err := store.NewDB(ctx, cfg.DatabaseDriver, cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer func() { _ = db.Close() }()

	var (
		cache       kv.Store
		redisClient *store.Redis
	)
	if cfg.KVBackend == "redis" {
		redisClient = store.NewRedis(cfg.RedisAddr)
		defer func() { _ = redisClient.Close() }()
		if !redisClient.Healthy(ctx) {
			log.Warn("redis not reachable at startup", zap.String("addr", cfg.RedisAddr))
		}
		cache = kv.NewRedis(redisClient.Client, "")
	} else {
		cache = kv.NewInMemory()
	}

	admin, err := account.NewAdmin(cfg.AdminEmail, cfg.AdminPassword, cfg.AdminPasswordHash, cfg.BcryptCost)
	if err != nil {
		return err
	}

	accounts := account.NewService(account.NewRepository(db.Client), admin, cache, account.Options{
		BcryptCost:  cfg.BcryptCost,
		SnapshotTTL: cfg.SnapshotTTL,
	}, log.Named("account"))
	markSvc := marks.NewService(marks.NewRepository(db.Client), cache, cfg.SnapshotTTL, log.Named("marks"))

	llmClient := llm.New(cfg.LLMBaseURL, cfg.LLMAPIKey, cfg.LLMModel, cfg.LLMTemperature, cfg.LLMMaxTokens, cfg.LLMTimeout)
	translator := translate.New(translate.NewGoogleClient(cfg.TranslateBaseURL, cfg.TranslateAPIKey, cfg.TranslateTimeout), log.Named("translate"))
	quizzes := quiz.NewService(
		quiz.NewRepository(db.Client),
		quiz.NewGenerator(llmClient, log.Named("generator")),
		translator,
		markSvc,
		log.Named("quiz"),
	)

	api := handler.New(handler.Deps{
		Accounts:      accounts,
		Marks:         markSvc,
		Quizzes:       quizzes,
		Sessions:      session.NewStore(cache, cfg.SessionTTL),
		JWTIssuer:     cfg.JWTIssuer,
		JWTSigningKey: cfg.JWTSigningKey,
		Log:           log.Named("http"),
	})

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(httpmiddleware.RequestLogger(log.Named("access"), "/healthz", "/metrics"))
	r.Use(tracing.GinMiddleware())
	r.Use(metrics.Middleware())
	r.Use(httpmiddleware.CORS(cfg.CORSOrigins))
	r.Use(httpmiddleware.SecurityHeaders())
	r.Use(httpmiddleware.NewIPRateLimiter(cfg.RateLimitPerMin).GinMiddleware())

	r.GET("/metrics", metrics.Handler())
	r.GET("/healthz", func(c *gin.Context) {
		dbHealthy := db.Healthy(c.Request.Context())
		body := gin.H{"db": dbHealthy}
		healthy := dbHealthy
		if redisClient != nil {
			redisHealthy := redisClient.Healthy(c.Request.Context())
			body["redis"] = redisHealthy
			healthy = healthy && redisHealthy
		}
		status := http.StatusOK
		body["status"] = "ok"
		if !healthy {
			status = http.StatusServiceUnavailable
			body["status"] = "degraded"
		}
		c.JSON(status, body)
	})

	api.Routes(r)

	// Graceful shutdown
	srv := &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: cfg.LLMTimeout + 30*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("starting server", zap.String("addr", srv.Addr), zap.String("db", cfg.DatabaseDriver), zap.String("kv", cfg.KVBackend))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case err := <-errCh:
		return err
	case <-quit:
	}
	log.Info("shutting down server")

	// Give outstanding requests 10 seconds to complete
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Warn("server forced shutdown", zap.Error(err))
	}

	log.Info("server exited")
	return nil
}
