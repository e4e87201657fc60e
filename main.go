package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"tournament-registration/config"
	"tournament-registration/handlers"
	"tournament-registration/metrics"
	"tournament-registration/middleware"
	"tournament-registration/repository"
	"tournament-registration/services"
	"tournament-registration/utils"
	"tournament-registration/workers"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func main() {
	cfgPath := os.Getenv("CONFIG_FILE")
	if cfgPath == "" {
		cfgPath = "config.yaml"
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatalf("❌ failed to load config: %v", err)
	}

	logger, err := utils.NewLogger(cfg.Log, cfg.IsDevelopment())
	if err != nil {
		log.Fatalf("❌ failed to build logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	if err := cfg.Validate(); err != nil {
		logger.Fatal("❌ invalid configuration", zap.Error(err))
	}
	if cfg.Riot.APIKey == "" {
		logger.Warn("⚠️  RIOT_API_KEY is not set, every player verification will fail")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Database
	gormLevel := gormlogger.Warn
	if cfg.Database.LogQueries {
		gormLevel = gormlogger.Info
	}
	db, err := gorm.Open(postgres.Open(cfg.Database.URL), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormLevel),
	})
	if err != nil {
		logger.Fatal("❌ failed to connect to database", zap.Error(err))
	}
	sqlDB, err := db.DB()
	if err != nil {
		logger.Fatal("❌ failed to get database handle", zap.Error(err))
	}
	sqlDB.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	defer sqlDB.Close()

	if err := repository.Migrate(db); err != nil {
		logger.Fatal("❌ failed to migrate database", zap.Error(err))
	}
	seeded, err := repository.SeedIfEmpty(ctx, db, time.Now())
	if err != nil {
		logger.Fatal("❌ failed to seed database", zap.Error(err))
	}
	if seeded {
		logger.Info("🌱 example tournament created")
	}

	// Metrics
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg)

	// Riot API
	regions := services.NewRegionTable(cfg.RegionHosts())
	var verifier services.PlayerVerifier = services.NewRiotClient(regions, services.RiotClientOptions{
		APIKey:          cfg.Riot.APIKey,
		AccountRegion:   cfg.Riot.AccountRegion,
		DefaultRegion:   cfg.Riot.DefaultRegion,
		FallbackRegions: cfg.Riot.FallbackRegions,
		HTTPClient:      utils.NewHTTPClient(cfg.Riot.Timeout),
		Logger:          logger,
		Metrics:         m,
	})

	var rdb *redis.Client
	if cfg.Cache.Enabled() {
		rdb = redis.NewClient(&redis.Options{
			Addr:     cfg.Cache.RedisAddr,
			Password: cfg.Cache.RedisPassword,
			DB:       cfg.Cache.RedisDB,
		})
		pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
		err := rdb.Ping(pingCtx).Err()
		cancel()
		if err != nil {
			logger.Warn("⚠️  redis unreachable, profile cache disabled", zap.String("addr", cfg.Cache.RedisAddr), zap.Error(err))
			_ = rdb.Close()
			rdb = nil
		} else {
			verifier = services.NewCachedVerifier(verifier, services.NewRedisProfileCache(rdb), cfg.Cache.ProfileTTL, logger)
			logger.Info("✅ profile cache enabled", zap.String("addr", cfg.Cache.RedisAddr), zap.Duration("ttl", cfg.Cache.ProfileTTL))
		}
	}

	// Services
	repo := repository.NewTournamentRepository(db)
	tournamentService := services.NewTournamentService(repo, logger)
	registrationService := services.NewRegistrationService(repo, verifier, cfg.Riot.DefaultRegion, logger, m)
	lifecycleService := services.NewLifecycleService(repo, logger, m)

	var sched *services.Scheduler
	if cfg.Scheduler.Enabled {
		var archiver services.RosterArchiver
		if cfg.Archive.Enabled() {
			store, err := utils.NewR2Store(ctx, cfg.Archive)
			if err != nil {
				logger.Fatal("❌ failed to initialize R2 client", zap.Error(err))
			}
			archiver = workers.NewRosterArchiveWorker(repo, store, logger, m)
		}
		sched, err = services.StartScheduler(cfg.Scheduler, lifecycleService, archiver, logger)
		if err != nil {
			logger.Fatal("❌ failed to start scheduler", zap.Error(err))
		}
	}

	// HTTP
	app := fiber.New(fiber.Config{
		AppName:      "tournament-registration",
		ErrorHandler: handlers.ErrorHandler(logger),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: cfg.Riot.Timeout + 15*time.Second,
	})
	app.Use(recover.New())
	app.Use(middleware.RequestID())
	app.Use(middleware.AccessLog(logger, m))
	app.Use(cors.New(cors.Config{
		AllowOrigins:     strings.Join(cfg.App.AllowedOrigins, ","),
		AllowMethods:     "GET,POST,OPTIONS",
		AllowHeaders:     "Origin, Content-Type, Accept, X-Requested-With, X-Request-ID",
		ExposeHeaders:    "Content-Length, Content-Type, X-Request-ID",
		AllowCredentials: true,
		MaxAge:           86400,
	}))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})
	app.Get("/metrics", adaptor.HTTPHandler(m.Handler()))
	handlers.SetupTournamentRoutes(app, handlers.NewTournamentHandler(tournamentService, registrationService, logger))

	go func() {
		if err := app.Listen(cfg.ListenAddr()); err != nil {
			logger.Error("server error", zap.Error(err))
			stop()
		}
	}()

	logger.Info("✅ server running",
		zap.String("addr", cfg.ListenAddr()),
		zap.String("riot_region", cfg.Riot.DefaultRegion),
		zap.Strings("cors_origins", cfg.App.AllowedOrigins))

	<-ctx.Done()
	logger.Info("shutting down server...")

	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		logger.Error("❌ server shutdown", zap.Error(err))
	}
	if sched != nil {
		if err := sched.Shutdown(); err != nil {
			logger.Error("❌ scheduler shutdown", zap.Error(err))
		}
	}
	if rdb != nil {
		_ = rdb.Close()
	}
}
