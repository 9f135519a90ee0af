package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	ossignal "os/signal"
	"syscall"
	"time"

	"stock-pulse/internal/advisor"
	"stock-pulse/internal/analysis"
	"stock-pulse/internal/anomaly"
	"stock-pulse/internal/bot"
	"stock-pulse/internal/cache"
	"stock-pulse/internal/config"
	"stock-pulse/internal/db"
	"stock-pulse/internal/handler"
	"stock-pulse/internal/job"
	"stock-pulse/internal/provider"
	"stock-pulse/internal/repository"
	"stock-pulse/internal/service"
	"stock-pulse/pkg/tracing"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.opentelemetry.io/otel/trace"

	_ "stock-pulse/docs"
)

var (
	loadEnvFunc          = godotenv.Load
	loadConfigFunc       = config.Load
	initPostgresFunc     = db.InitPostgres
	initRedisFunc        = cache.InitRedis
	initTracerFunc       = tracing.InitTracer
	newPriceRepoFunc     = repository.NewPriceRepository
	newAnalysisRepoFunc  = repository.NewAnalysisRepository
	newYahooProviderFunc = func(tracer trace.Tracer) job.MarketDataProvider {
		return provider.NewYahooProvider(tracer)
	}
	newAnalysisServiceFunc = service.NewAnalysisService
	newPricePollerFunc     = job.NewPricePoller
	newAnalysisPollerFunc  = job.NewAnalysisPoller
	startPricePollerFunc   = func(p *job.PricePoller, ctx context.Context) { go p.Start(ctx) }
	startAnalysisPollerFn  = func(p *job.AnalysisPoller, ctx context.Context) { go p.Start(ctx) }
	startTelegramBotFunc   = bot.StartTelegramBot
	newAdvisorServiceFunc  = func(tracer trace.Tracer, cfg *config.Config) bot.AnalysisExplainer {
		return advisor.NewAdvisor(tracer, cfg.OpenAIAPIKey, cfg.OpenAIModel)
	}
	newHandlerFunc         = handler.New
	newRouterFunc          = gin.Default
	setupSignalNotify      = ossignal.Notify
	waitForSignalFunc      = func(quit <-chan os.Signal) { <-quit }
	startHTTPServerFunc    = func(srv *http.Server) error { return srv.ListenAndServe() }
	shutdownHTTPServerFunc = func(srv *http.Server, ctx context.Context) error { return srv.Shutdown(ctx) }
)

// @title           Stock Pulse API
// @version         1.0
// @description     A deterministic stock analysis service with OpenTelemetry tracing.

// @host      localhost:8080
// @BasePath  /
func main() {
	loadEnvFunc()

	cfg := loadConfigFunc()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Init Postgres and Redis
	os.Setenv("DATABASE_URL", cfg.DatabaseURL)
	os.Setenv("REDIS_URL", cfg.RedisURL)
	initPostgresFunc(ctx)
	initRedisFunc(ctx)

	// Init tracing
	tp, tracer, err := initTracerFunc(ctx)
	if err != nil {
		log.Fatalf("failed to initialize tracer: %v", err)
	}
	defer func() {
		if err := tp.Shutdown(ctx); err != nil {
			log.Printf("error shutting down tracer provider: %v", err)
		}
	}()

	// Create repositories and run migrations
	priceRepo := newPriceRepoFunc(db.Pool, tracer)
	analysisRepo := newAnalysisRepoFunc(db.Pool, tracer)
	if db.Pool != nil {
		if err := priceRepo.RunMigrations(ctx); err != nil {
			log.Fatalf("failed to run price migrations: %v", err)
		}
		if err := analysisRepo.RunMigrations(ctx); err != nil {
			log.Fatalf("failed to run analysis migrations: %v", err)
		}
	}

	// Assemble the pipeline
	analysisService := newAnalysisServiceFunc(
		tracer,
		priceRepo,
		analysisRepo,
		analysis.NewCalculator(),
		analysis.NewGenerator(),
		analysis.NewRiskEngine(),
	)
	if cache.Client != nil {
		snapshotCache := cache.NewAnalysisCache(cache.Client, time.Duration(cfg.CacheTTLSecs)*time.Second)
		analysisService.WithCache(snapshotCache)
	}
	if cfg.AnomalyEnabled {
		detector := anomaly.NewDetector(cfg.AnomalyTrees, cfg.AnomalySampleSize, cfg.AnomalyThreshold)
		analysisService.WithAnomalyScorer(detector)
	}

	// Start background pollers (stopped by ctx cancel)
	yahoo := newYahooProviderFunc(tracer)
	pricePoller := newPricePollerFunc(tracer, yahoo, priceRepo, cfg.Watchlist, time.Duration(cfg.PricePollSecs)*time.Second)
	startPricePollerFunc(pricePoller, ctx)
	analysisPoller := newAnalysisPollerFunc(tracer, analysisService, cfg.Watchlist, cfg.DefaultTolerance, time.Duration(cfg.AnalysisPollSecs)*time.Second)
	startAnalysisPollerFn(analysisPoller, ctx)

	// Start Telegram bot; actionable analyses fan out to subscribers
	adv := newAdvisorServiceFunc(tracer, cfg)
	alerts := startTelegramBotFunc(cfg.TelegramBotToken, analysisService, adv, cfg.DefaultTolerance)
	if alerts != nil {
		analysisService.WithNotifier(alerts)
	}

	// WebSocket stream for actionable analyses
	stream := handler.NewStreamHub()
	analysisService.WithNotifier(stream)

	// Create handlers and routes
	h := newHandlerFunc(tracer, analysisService, stream, cfg.DefaultTolerance)

	r := newRouterFunc()
	r.Use(cors.Default())
	r.Use(otelgin.Middleware("stock-pulse"))

	h.RegisterRoutes(r)
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler: r,
	}

	go func() {
		if err := startHTTPServerFunc(srv); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %s\n", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	setupSignalNotify(quit, syscall.SIGINT, syscall.SIGTERM)
	waitForSignalFunc(quit)
	log.Println("Shutting down server...")

	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := shutdownHTTPServerFunc(srv, shutdownCtx); err != nil {
		log.Fatal("Server forced to shutdown:", err)
	}

	log.Println("Server exiting")
}
