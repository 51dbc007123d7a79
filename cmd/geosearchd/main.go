package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/sokohub/geosearch/internal/cache"
	"github.com/sokohub/geosearch/internal/config"
	dbRedis "github.com/sokohub/geosearch/internal/db/redis"
	"github.com/sokohub/geosearch/internal/geocode"
	"github.com/sokohub/geosearch/internal/geocode/locationiq"
	"github.com/sokohub/geosearch/internal/geocode/nominatim"
	logpkg "github.com/sokohub/geosearch/internal/logger"
	"github.com/sokohub/geosearch/internal/metrics"
	businessrepo "github.com/sokohub/geosearch/internal/repository/business"
	productrepo "github.com/sokohub/geosearch/internal/repository/product"
	chiTransport "github.com/sokohub/geosearch/internal/transport/chi"
	kafkaTransport "github.com/sokohub/geosearch/internal/transport/kafka"
	geouc "github.com/sokohub/geosearch/internal/usecase/geo"
	healthuc "github.com/sokohub/geosearch/internal/usecase/health"
	invalidationuc "github.com/sokohub/geosearch/internal/usecase/invalidation"
	searchuc "github.com/sokohub/geosearch/internal/usecase/search"
	"github.com/sokohub/geosearch/internal/version"
)

func main() {
	// Load configuration based on ENV
	env := config.GetEnv()

	cfg, err := config.Load(env)
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	logger, err := logpkg.New(env, cfg.Logging.Level)
	if err != nil {
		panic("failed to create logger: " + err.Error())
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Starting geosearch API server",
		zap.String("version", version.Version),
		zap.String("commit", version.Commit),
		zap.String("env", env),
		zap.Int("http_port", cfg.HTTP.Port),
		zap.Strings("db_addrs", cfg.Database.Addrs),
	)

	store, err := dbRedis.NewStore(dbRedis.Config{
		Addrs:    cfg.Database.Addrs,
		Username: cfg.Database.Username,
		Password: cfg.Database.Password,
	})
	if err != nil {
		logger.Fatal("Failed to create database store", zap.Error(err))
	}
	defer store.Close()

	ctx := context.Background()
	if err := store.WaitForReady(ctx, time.Duration(cfg.Database.ReadinessTimeout)*time.Second); err != nil {
		logger.Fatal("Database not ready", zap.Error(err))
	}
	logger.Info("Connected to database")

	metrics.RegisterCoreMetrics()

	// Repositories over the FT indexes
	businessRepo := businessrepo.New(store)
	productRepo := productrepo.New(store)
	if err := businessRepo.EnsureIndex(ctx); err != nil {
		logger.Fatal("Failed to create business index", zap.Error(err))
	}
	if err := productRepo.EnsureIndex(ctx); err != nil {
		logger.Fatal("Failed to create product index", zap.Error(err))
	}

	queryCache := cache.NewRedis(store)

	// Geocoder chain: free OSM first, paid fallback second, cached outermost
	providers := []geocode.Provider{
		nominatim.New(nominatim.Config{
			BaseURL:   cfg.Geocode.Nominatim.BaseURL,
			UserAgent: cfg.Geocode.Nominatim.UserAgent,
		}),
	}
	if cfg.Geocode.LocationIQ.APIKey != "" {
		providers = append(providers, locationiq.New(locationiq.Config{
			BaseURL: cfg.Geocode.LocationIQ.BaseURL,
			APIKey:  cfg.Geocode.LocationIQ.APIKey,
		}))
	}
	chain := geocode.NewChain(providers, time.Duration(cfg.Geocode.TimeoutSec)*time.Second, logger)
	geocoder := geocode.NewCached(chain, queryCache, logger).WithTTL(cfg.Cache.GeocodeTTL())
	logger.Info("Geocoder ready", zap.Int("providers", len(providers)))

	// Use case services
	geoSvc := geouc.New(businessRepo, queryCache).WithTTL(cfg.Cache.GeolocationTTL())
	searchSvc := searchuc.New(productRepo, businessRepo, queryCache).WithTTL(cfg.Cache.SearchTTL())
	invalidationSvc := invalidationuc.New(queryCache)
	healthSvc := healthuc.New(store)

	// Write-notification consumer keeps the read model and caches current
	var consumer *kafkaTransport.Consumer
	var stopConsumer context.CancelFunc
	if len(cfg.Events.Brokers) > 0 {
		consumer = kafkaTransport.NewConsumer(kafkaTransport.Config{
			Brokers: cfg.Events.Brokers,
			Topic:   cfg.Events.Topic,
			GroupID: cfg.Events.GroupID,
		}, businessRepo, productRepo, invalidationSvc, logger)
		var consumerCtx context.Context
		consumerCtx, stopConsumer = context.WithCancel(ctx)
		go func() {
			if err := consumer.Run(consumerCtx); err != nil {
				logger.Error("Write-event consumer stopped", zap.Error(err))
			}
		}()
		logger.Info("Consuming write events",
			zap.Strings("brokers", cfg.Events.Brokers),
			zap.String("topic", cfg.Events.Topic),
		)
	}

	server := chiTransport.NewServer(searchSvc, geoSvc, geocoder, healthSvc, logger)

	r := chi.NewRouter()
	r.Use(jsonRecoverer(logger))
	r.Use(chiMiddleware.RequestID)
	r.Use(wideEventMiddleware(logger))
	r.Use(chiTransport.BearerAuthMiddleware(cfg.Auth.APIKeys))
	r.Use(metrics.Middleware())
	server.Routes(r)

	addr := fmt.Sprintf(":%d", cfg.HTTP.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  time.Duration(cfg.HTTP.ReadTimeoutSec) * time.Second,
		WriteTimeout: time.Duration(cfg.HTTP.WriteTimeoutSec) * time.Second,
	}

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	go func() {
		logger.Info("Starting HTTP server", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("HTTP server error", zap.Error(err))
		}
	}()

	<-quit
	logger.Info("Received shutdown signal")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.HTTP.ShutdownSec)*time.Second)
	defer cancel()

	if consumer != nil {
		// Cancel first so Run returns nil instead of a fetch error.
		stopConsumer()
		if err := consumer.Close(); err != nil {
			logger.Error("Error closing consumer", zap.Error(err))
		}
	}
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Error during shutdown", zap.Error(err))
	}

	logger.Info("Server stopped gracefully")
}

// jsonRecoverer is a recovery middleware that returns JSON instead of a plain text stacktrace.
func jsonRecoverer(logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rvr := recover(); rvr != nil {
					logger.Error("panic recovered",
						zap.Any("panic", rvr),
						zap.Stack("stacktrace"),
					)
					w.Header().Set("Content-Type", "application/json")
					w.WriteHeader(http.StatusInternalServerError)
					_ = json.NewEncoder(w).Encode(map[string]string{
						"code":    "internal_error",
						"message": "internal error",
					})
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}

// wideEventMiddleware emits a canonical log line per request and propagates X-Request-ID.
func wideEventMiddleware(logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			requestID := chiMiddleware.GetReqID(r.Context())
			if requestID != "" {
				w.Header().Set("X-Request-ID", requestID)
			}

			// Per-request logger with request_id
			reqLogger := logger.With(zap.String("request_id", requestID))
			ctx := logpkg.ContextWithLogger(r.Context(), reqLogger)

			ww := chiMiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r.WithContext(ctx))

			// One canonical log line per request
			reqLogger.Info("http_request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Duration("latency", time.Since(start)),
				zap.String("ip", r.RemoteAddr),
				zap.Int64("content_length", r.ContentLength),
				zap.String("user_agent", r.UserAgent()),
				zap.Int("response_bytes", ww.BytesWritten()),
			)
		})
	}
}
