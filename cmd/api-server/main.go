package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"

	"github.com/atul23g/multiDiseasePred/pkg/alias"
	"github.com/atul23g/multiDiseasePred/pkg/api/auth"
	"github.com/atul23g/multiDiseasePred/pkg/api/middleware"
	"github.com/atul23g/multiDiseasePred/pkg/common/config"
	"github.com/atul23g/multiDiseasePred/pkg/common/database"
	"github.com/atul23g/multiDiseasePred/pkg/common/httpclient"
	"github.com/atul23g/multiDiseasePred/pkg/common/kafka"
	"github.com/atul23g/multiDiseasePred/pkg/common/logger"
	"github.com/atul23g/multiDiseasePred/pkg/model"
	"github.com/atul23g/multiDiseasePred/pkg/observability/metrics"
	"github.com/atul23g/multiDiseasePred/pkg/predict"
	"github.com/atul23g/multiDiseasePred/pkg/reconcile"
	"github.com/atul23g/multiDiseasePred/pkg/report"
	"github.com/atul23g/multiDiseasePred/pkg/schema"
	"github.com/atul23g/multiDiseasePred/pkg/scoring"
	"github.com/atul23g/multiDiseasePred/pkg/triage"
)

func main() {
	logger.Init("api-server")
	cfg := config.Load()

	registry, err := schema.Load(cfg.SchemaPath)
	if err != nil {
		logger.Log.WithError(err).Fatal("Failed to load feature schema")
	}
	aliases, err := alias.Load(cfg.AliasPath)
	if err != nil {
		logger.Log.WithError(err).Fatal("Failed to load alias table")
	}

	db, err := database.GetPostgres()
	if err != nil {
		logger.Log.WithError(err).Fatal("Failed to connect to database")
	}
	redisClient := database.GetRedis()

	reportRepo := report.NewRepository(db)
	predictRepo := predict.NewRepository(db)
	triageRepo := triage.NewRepository(db)
	for _, migrate := range []func() error{reportRepo.AutoMigrate, predictRepo.AutoMigrate, triageRepo.AutoMigrate} {
		if err := migrate(); err != nil {
			logger.Log.WithError(err).Fatal("Failed to migrate tables")
		}
	}

	reportProducer := kafka.NewProducer(cfg.ReportTopic)
	predictionProducer := kafka.NewProducer(cfg.PredictionTopic)
	defer reportProducer.Close()
	defer predictionProducer.Close()

	mapper := reconcile.NewMapper(registry, aliases, reconcile.DefaultUnits())
	annotator := reconcile.NewAnnotator(registry)
	resolver := reconcile.NewResolver(registry)
	synthesizer := scoring.NewSynthesizer(registry, scoring.DefaultConfig())
	predictor := model.NewPredictor(cfg.ModelArtifactDir, registry)

	cache := report.NewCache(redisClient, cfg.ExtractedCacheTTL)
	reportService := report.NewService(registry, mapper, annotator, reportRepo, cache, reportProducer)
	predictService := predict.NewService(registry, resolver, predictor, synthesizer, reportService, predictRepo, predictionProducer, cfg.PreferUserValues)

	llmClient := httpclient.New(cfg.LLMTimeout)
	triageService := triage.NewService(llmClient, cfg.LLMAPIKey, cfg.LLMBaseURL, cfg.LLMModelName, predictService, triageRepo)

	validator := buildValidator(cfg)

	router := mux.NewRouter()
	router.HandleFunc("/health", healthCheck).Methods(http.MethodGet)
	router.HandleFunc("/metrics", metrics.Handler()).Methods(http.MethodGet)

	api := router.PathPrefix("/api/v1").Subrouter()
	api.Use(
		middleware.Recovery,
		middleware.Logging,
		middleware.CORS,
		middleware.BodyLimit(cfg.MaxRequestBody),
		middleware.RateLimit(cfg.RateLimitRPS, cfg.RateLimitBurst),
		middleware.Authenticate(validator, cfg.AuthDisabled, cfg.DevUserID),
	)
	report.NewHTTPHandler(reportService).Register(api)
	predict.NewHTTPHandler(registry, predictService).Register(api)
	triage.NewHTTPHandler(triageService).Register(api)

	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%s", cfg.ServerHost, cfg.ServerPort),
		Handler:      router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	go func() {
		logger.Log.WithFields(map[string]interface{}{
			"host": cfg.ServerHost,
			"port": cfg.ServerPort,
		}).Info("API server started")

		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Log.WithError(err).Fatal("Failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Log.Info("Shutting down API server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Log.WithError(err).Error("Server forced to shutdown")
	}

	database.ClosePostgres()
	database.CloseRedis()

	logger.Log.Info("API server stopped")
}

// buildValidator picks the token validator: OIDC when an issuer is configured,
// a local HMAC JWT manager when only a secret is set, nil otherwise. When auth
// is disabled the validator is unused and requests run as the dev user.
func buildValidator(cfg *config.Config) middleware.TokenValidator {
	if cfg.OIDCIssuer != "" {
		validator, err := auth.NewOIDCAuthenticator(cfg.OIDCIssuer, cfg.OIDCClientID, cfg.OIDCClientSecret)
		if err != nil {
			logger.Log.WithError(err).Fatal("Failed to configure OIDC authentication")
		}
		return validator
	}
	if cfg.JWTSecret != "" {
		validator, err := auth.NewJWTManager(cfg.JWTSecret, "multi-disease-pred", "api", 24*time.Hour)
		if err != nil {
			logger.Log.WithError(err).Fatal("Failed to configure JWT authentication")
		}
		return validator
	}
	if !cfg.AuthDisabled {
		logger.Log.Fatal("No authentication backend configured; set OIDC_ISSUER, JWT_SECRET or DISABLE_AUTH=true")
	}
	return nil
}

func healthCheck(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"healthy"}`))
}
