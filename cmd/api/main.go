package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/pageza/nutrition-engine/backend/config"
	"github.com/pageza/nutrition-engine/backend/internal/analytics"
	"github.com/pageza/nutrition-engine/backend/internal/api"
	"github.com/pageza/nutrition-engine/backend/internal/database"
	"github.com/pageza/nutrition-engine/backend/internal/logger"
	"github.com/pageza/nutrition-engine/backend/internal/middleware"
	"github.com/pageza/nutrition-engine/backend/internal/observability"
	"github.com/pageza/nutrition-engine/backend/internal/planner"
	"github.com/pageza/nutrition-engine/backend/internal/server"
	"github.com/pageza/nutrition-engine/backend/internal/service"
)

const reportCacheTTL = 15 * time.Minute

func main() {
	// A missing .env is normal outside local development.
	_ = godotenv.Load()

	cfg, err := config.LoadConfig()
	if err != nil {
		panic(err)
	}

	log, err := logger.New(cfg.LogMode)
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracing := observability.InitOTel(ctx, log, observability.OtelConfig{
		ServiceName: "nutrition-engine",
		Environment: string(config.GetEnvironment()),
		Version:     os.Getenv("APP_VERSION"),
	})
	defer func() {
		sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTracing(sctx); err != nil {
			log.Warn("tracer shutdown failed", "error", err)
		}
	}()

	engineCfg, err := config.LoadEngineConfig(cfg.EngineConfigPath)
	if err != nil {
		log.Fatal("failed to load engine config", "error", err)
	}

	db, err := database.Open(cfg, log)
	if err != nil {
		log.Fatal("failed to connect to database", "error", err)
	}
	if err := database.RunMigrations(db, getMigrationsDir(), log); err != nil {
		log.Fatal("failed to run migrations", "error", err)
	}

	var cache service.ReportCache = service.NewMemoryReportCache(reportCacheTTL)
	var limiter *middleware.RateLimiter
	if cfg.RedisEnabled() {
		rdb, err := database.NewRedisClient(cfg, log)
		if err != nil {
			log.Fatal("failed to connect to redis", "error", err)
		}
		defer rdb.Close()
		cache = service.NewRedisReportCache(rdb)
		limiter = middleware.NewPlanRateLimiter(rdb, cfg.PlanRateLimit, cfg.PlanRateWindow)
	} else {
		log.Warn("redis not configured; using in-process report cache and rate limiter")
		limiter = middleware.NewPlanRateLimiter(nil, cfg.PlanRateLimit, cfg.PlanRateWindow)
	}

	var recommender planner.Recommender
	if cfg.DeepSeekAPIKey != "" {
		llm, err := service.NewLLMRecommender(cfg.DeepSeekAPIKey, cfg.DeepSeekURL, cfg.DeepSeekModel, log)
		if err != nil {
			log.Fatal("failed to create meal recommender", "error", err)
		}
		recommender = llm
	} else {
		log.Info("no recommender API key; meal plans use catalog-order selection")
	}

	var exporter service.PlanExporter
	if cfg.S3Bucket != "" {
		s3cfg, err := config.NewS3Config(ctx, cfg.S3Bucket, cfg.AWSRegion)
		if err != nil {
			log.Fatal("failed to configure plan export", "error", err)
		}
		exporter = service.NewS3PlanExporter(s3cfg)
	}

	catalog := service.NewCatalogService(db)
	records := service.NewRecordService(db).WithReportCache(cache, log)
	nutritionSvc := service.NewNutritionService(service.NutritionServiceDeps{
		Catalog:   catalog,
		Records:   records,
		Composer:  analytics.NewComposer(analytics.NewEngine(engineCfg.Analytics)),
		Optimizer: planner.NewOptimizer(engineCfg.Planner, recommender, log),
		Cache:     cache,
		Exporter:  exporter,
		Log:       log,
	})

	srv := server.New(cfg, db, api.Deps{
		Nutrition:   nutritionSvc,
		Catalog:     catalog,
		Records:     records,
		Tokens:      service.NewTokenService(cfg.JWTSecret),
		PlanLimiter: limiter,
	}, log)

	if err := srv.Start(ctx); err != nil {
		log.Fatal("server error", "error", err)
	}
	log.Info("server stopped")
}

// getMigrationsDir returns the migrations directory, overridable with MIGRATIONS_DIR.
func getMigrationsDir() string {
	if dir := os.Getenv("MIGRATIONS_DIR"); dir != "" {
		return dir
	}
	return "migrations"
}
