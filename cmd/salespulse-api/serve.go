package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"salespulse-api/internal/auth"
	"salespulse-api/internal/cache"
	"salespulse-api/internal/config"
	"salespulse-api/internal/crm"
	"salespulse-api/internal/http/client"
	"salespulse-api/internal/http/handler"
	"salespulse-api/internal/insight"
	"salespulse-api/internal/observability/logger"
	"salespulse-api/internal/ratelimit"
	"salespulse-api/internal/service"
	"salespulse-api/internal/telemetry"

	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.uber.org/zap"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the API server",
	Long:  `Start the SalesPulse API HTTP server with all middlewares and observability`,
	RunE:  runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// Initialize logger
	log, err := logger.New(cfg.OTELServiceName, cfg.LogLevel)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}

	log.Info(ctx, "starting salespulse api",
		zap.String("version", "1.0.0"),
		zap.String("service", cfg.OTELServiceName),
	)

	// Initialize telemetry strictly as opt-in
	var tracerProvider *sdktrace.TracerProvider
	var meterProvider *sdkmetric.MeterProvider
	var metrics *telemetry.Metrics

	if cfg.TelemetryEnabled() {
		log.Info(ctx, "initializing telemetry", zap.String("endpoint", cfg.OTELExporterEndpoint))

		tp, err := telemetry.InitTracer(ctx, cfg.OTELServiceName, cfg.OTELExporterEndpoint, cfg.OTELSamplingRatio)
		if err != nil {
			log.Warn(ctx, "failed to initialize tracer, continuing without tracing", zap.Error(err))
		} else {
			tracerProvider = tp
			defer func() {
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				if err := tracerProvider.Shutdown(shutdownCtx); err != nil {
					log.Error(shutdownCtx, "failed to shutdown tracer provider", zap.Error(err))
				}
			}()
		}

		mp, m, err := telemetry.InitMetrics(ctx, cfg.OTELServiceName, cfg.OTELExporterEndpoint)
		if err != nil {
			log.Warn(ctx, "failed to initialize metrics, continuing without metrics", zap.Error(err))
		} else {
			meterProvider = mp
			metrics = m
			defer func() {
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				if err := meterProvider.Shutdown(shutdownCtx); err != nil {
					log.Error(shutdownCtx, "failed to shutdown meter provider", zap.Error(err))
				}
			}()
		}

		log.Info(ctx, "telemetry initialized", zap.Bool("tracing", tracerProvider != nil), zap.Bool("metrics", metrics != nil))
	} else {
		log.Info(ctx, "telemetry disabled (opt-in only or missing endpoint)")
	}

	// Connect to Redis when configured. Without it the query cache is a
	// no-op and rate limiting is disabled.
	var queryCache cache.QueryCache
	var rateLimiter *ratelimit.RedisRateLimiter

	if cfg.RedisURL != "" {
		log.Info(ctx, "connecting to redis")
		redisOpts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			return fmt.Errorf("failed to parse Redis URL: %w", err)
		}
		redisClient := redis.NewClient(redisOpts)
		defer redisClient.Close()

		if err := redisClient.Ping(ctx).Err(); err != nil {
			return fmt.Errorf("failed to connect to Redis: %w", err)
		}
		log.Info(ctx, "redis connected")

		queryCache = cache.NewRedisCache(redisClient)

		var rateLimitCounter metric.Int64Counter
		if metrics != nil {
			rateLimitCounter = metrics.RateLimitRejections
		}
		rateLimiter = ratelimit.NewRedisRateLimiter(redisClient, rateLimitCounter)
	} else {
		log.Info(ctx, "redis not configured, query cache and rate limiting disabled")
	}

	// Initialize JWT validation
	if len(cfg.JWTHS256Secret) < 32 {
		return fmt.Errorf("JWT_HS256_SECRET must be at least 32 bytes, got %d", len(cfg.JWTHS256Secret))
	}
	validator := auth.NewHS256Validator([]byte(cfg.JWTHS256Secret), cfg.JWTIssuer, cfg.JWTAudience, cfg.ClockSkew())
	log.Info(ctx, "JWT authentication initialized",
		zap.String("issuer", cfg.JWTIssuer),
		zap.String("audience", cfg.JWTAudience),
		zap.Int("clock_skew_seconds", cfg.JWTClockSkewSeconds),
	)

	// Application metrics on a dedicated Prometheus registry
	appMetrics := telemetry.NewAppMetrics()

	// CRM gateway. A nil gateway keeps the dashboard on sample data.
	var gateway crm.Gateway
	if cfg.SalesforceConfigured() {
		gateway = crm.NewClient(crm.Config{
			TokenURL:      cfg.SalesforceTokenURL,
			ClientID:      cfg.SalesforceClientID,
			ClientSecret:  cfg.SalesforceClientSecret,
			Username:      cfg.SalesforceUsername,
			Password:      cfg.SalesforcePassword,
			SecurityToken: cfg.SalesforceSecurityToken,
			HTTPClient:    client.NewExternalHTTPClient(),
		}, log)
		log.Info(ctx, "salesforce gateway configured", zap.String("token_url", cfg.SalesforceTokenURL))
	} else {
		log.Info(ctx, "salesforce credentials missing, serving sample data")
	}
	sample := crm.NewSampleSource()

	// Initialize services
	rules := insight.DefaultRuleConfig()
	rules.QuarterlyQuota = cfg.InsightQuarterlyQuota

	dashboardService := service.NewDashboardService(gateway, sample, queryCache, appMetrics, log, service.DashboardConfig{
		QuarterlyQuota:      cfg.QuarterlyQuota,
		ClosedWonWindowDays: cfg.ClosedWonWindowDays,
		CacheTTL:            cfg.CacheTTL(),
		Rules:               rules,
		Stats:               insight.DefaultStatConfig(),
	})
	syncService := service.NewSyncService(gateway, sample, dashboardService, appMetrics, log)

	// Initialize handlers
	dashboardHandler := handler.NewDashboardHandler(dashboardService)
	dealHandler := handler.NewDealHandler(dashboardService)
	teamHandler := handler.NewTeamHandler(dashboardService)
	syncHandler := handler.NewSyncHandler(syncService)
	connectionHandler := handler.NewConnectionHandler(client.NewExternalHTTPClient(), log)

	// Build router
	r := buildRouter(RouterDeps{
		Cfg:               cfg,
		Log:               log,
		Validator:         validator,
		RateLimiter:       rateLimiter,
		Metrics:           metrics,
		AppMetrics:        appMetrics,
		Dashboard:         dashboardService,
		DashboardHandler:  dashboardHandler,
		DealHandler:       dealHandler,
		TeamHandler:       teamHandler,
		SyncHandler:       syncHandler,
		ConnectionHandler: connectionHandler,
	})

	// Create HTTP server
	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		log.Info(ctx, "starting http server", zap.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error(ctx, "failed to start server", zap.Error(err))
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal for graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	log.Info(ctx, "shutdown signal received, starting graceful shutdown")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 25*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error(shutdownCtx, "server shutdown error", zap.Error(err))
	}

	log.Info(shutdownCtx, "shutdown complete")
	return nil
}
