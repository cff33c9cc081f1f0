// Точка входа share-module — публичные ссылки доступа к проектам.
// Загружает конфигурацию, применяет миграции, подключается к PostgreSQL,
// собирает сервисы ссылок, разрешения доступа, комментариев и отчётов,
// запускает topologymetrics и HTTP-сервер с JWT middleware и graceful shutdown.
package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/jackc/pgx/v5/stdlib"
	"github.com/redis/go-redis/v9"

	"github.com/Mathew1304/Expense-Tracker-sub000/internal/api/handlers"
	"github.com/Mathew1304/Expense-Tracker-sub000/internal/api/middleware"
	"github.com/Mathew1304/Expense-Tracker-sub000/internal/api/openapi"
	"github.com/Mathew1304/Expense-Tracker-sub000/internal/config"
	"github.com/Mathew1304/Expense-Tracker-sub000/internal/database"
	"github.com/Mathew1304/Expense-Tracker-sub000/internal/imageclient"
	"github.com/Mathew1304/Expense-Tracker-sub000/internal/objectstore"
	"github.com/Mathew1304/Expense-Tracker-sub000/internal/ratelimit"
	"github.com/Mathew1304/Expense-Tracker-sub000/internal/report"
	"github.com/Mathew1304/Expense-Tracker-sub000/internal/repository"
	"github.com/Mathew1304/Expense-Tracker-sub000/internal/server"
	"github.com/Mathew1304/Expense-Tracker-sub000/internal/service"
)

func main() {
	// 1. Загрузка конфигурации из переменных окружения
	cfg, err := config.Load()
	if err != nil {
		slog.Error("Ошибка загрузки конфигурации", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// 2. Настройка логирования
	logger := config.SetupLogger(cfg)
	logger.Info("share-module запускается",
		slog.String("version", config.Version),
		slog.Int("port", cfg.Port),
	)

	if os.Getenv("SM_DEPHEALTH_GROUP") == "" {
		logger.Warn("SM_DEPHEALTH_GROUP не задана, используется значение по умолчанию",
			slog.String("default", cfg.DephealthGroup),
		)
	}

	// 3. Применение миграций БД
	logger.Info("Применение миграций БД...")
	if err := database.Migrate(cfg, logger); err != nil {
		logger.Error("Ошибка миграций БД", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// 4. Подключение к PostgreSQL (pgxpool)
	ctx := context.Background()
	pool, err := database.Connect(ctx, cfg, logger)
	if err != nil {
		logger.Error("Ошибка подключения к PostgreSQL", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer pool.Close()

	// 4.1 Адаптер pgxpool → *sql.DB для topologymetrics
	pgDB := stdlib.OpenDBFromPool(pool)
	defer pgDB.Close()

	// 5. Repositories
	linkRepo := repository.NewShareLinkRepository(pool)
	projectRepo := repository.NewProjectRepository(pool)

	// 6. Лимитер попыток ввода пароля
	checkers := []handlers.NamedChecker{
		{Name: "postgresql", Checker: database.NewReadinessChecker(pool)},
	}

	var limiter ratelimit.Limiter
	switch {
	case cfg.PasswordAttemptsPerMinute <= 0:
		logger.Info("Лимит попыток ввода пароля отключён")
	case cfg.RedisAddr != "":
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		defer rdb.Close()
		redisLimiter := ratelimit.NewRedisLimiter(rdb, cfg.PasswordAttemptsPerMinute)
		limiter = redisLimiter
		checkers = append(checkers, handlers.NamedChecker{Name: "redis", Checker: redisLimiter})
		logger.Info("Лимитер попыток: Redis",
			slog.String("addr", cfg.RedisAddr),
			slog.Int("per_minute", cfg.PasswordAttemptsPerMinute),
		)
	default:
		limiter = ratelimit.NewMemoryLimiter(cfg.PasswordAttemptsPerMinute)
		logger.Info("Лимитер попыток: in-memory",
			slog.Int("per_minute", cfg.PasswordAttemptsPerMinute),
		)
	}

	// 7. Загрузка изображений для отчётов (HTTP-клиент + LRU-кэш)
	imgClient, err := imageclient.New(cfg.ImageCACertPath, cfg.ImageFetchTimeout, cfg.ImageMaxBytes, logger)
	if err != nil {
		logger.Error("Ошибка создания клиента изображений", slog.String("error", err.Error()))
		os.Exit(1)
	}
	imgCache := service.NewImageCache(imgClient, cfg.ImageCacheSize, cfg.ImageCacheTTL)
	compiler := report.NewCompiler(imgCache, cfg.ReportImageConcurrency, logger)
	compiler.SetMaxImagePixels(int64(cfg.ReportImageMaxPixels))

	// 8. Архив отчётов в S3 (опционально)
	var archive service.Archiver
	if cfg.S3Enabled() {
		store, storeErr := objectstore.New(objectstore.Config{
			Endpoint:  cfg.S3Endpoint,
			Region:    cfg.S3Region,
			Bucket:    cfg.S3Bucket,
			AccessKey: cfg.S3AccessKey,
			SecretKey: cfg.S3SecretKey,
			UseSSL:    cfg.S3UseSSL,
			PathStyle: cfg.S3PathStyle,
		}, logger)
		if storeErr != nil {
			logger.Error("Ошибка создания S3-клиента", slog.String("error", storeErr.Error()))
			os.Exit(1)
		}
		archive = store
		checkers = append(checkers, handlers.NamedChecker{Name: "s3", Checker: store})
		logger.Info("Архив отчётов в S3 включён",
			slog.String("endpoint", cfg.S3Endpoint),
			slog.String("bucket", cfg.S3Bucket),
		)
	}

	// 9. Services
	hasher := service.NewPasswordHasher(cfg.PasswordHashCost)
	loader := service.NewProjectDataLoader(projectRepo, logger)
	linksSvc := service.NewShareLinkService(
		linkRepo, projectRepo, hasher,
		cfg.PublicBaseURL, cfg.DefaultLinkExpiry,
		logger,
	)
	resolverSvc := service.NewResolverService(
		linkRepo, projectRepo, loader, hasher, limiter,
		logger,
	)
	commentsSvc := service.NewCommentService(resolverSvc, linkRepo, logger)
	reportSvc := service.NewReportService(
		projectRepo, loader, compiler, archive, objectstore.ReportKey,
		logger,
	)

	// 10. JWT middleware (владельцы проектов)
	jwtAuth, err := middleware.NewJWTAuth(
		cfg.JWTJWKSURL,
		cfg.JWKSCACertPath,
		cfg.JWTIssuer,
		cfg.JWKSClientTimeout,
		cfg.JWKSRefreshInterval,
		cfg.JWTLeeway,
		logger,
	)
	if err != nil {
		logger.Error("Ошибка создания JWT middleware", slog.String("error", err.Error()))
		os.Exit(1)
	}
	logger.Info("JWT middleware инициализирован",
		slog.String("jwks_url", cfg.JWTJWKSURL),
		slog.String("issuer", cfg.JWTIssuer),
	)

	jwksChecker, err := middleware.NewJWKSReadinessChecker(cfg.JWTJWKSURL, cfg.JWKSCACertPath, cfg.JWKSClientTimeout)
	if err != nil {
		logger.Error("Ошибка создания JWKS readiness checker", slog.String("error", err.Error()))
		os.Exit(1)
	}
	checkers = append(checkers, handlers.NamedChecker{Name: "jwks", Checker: jwksChecker})

	// 11. topologymetrics — мониторинг зависимостей (PostgreSQL + JWKS)
	dephealthSvc, dephealthErr := service.NewDephealthService(service.DephealthParams{
		ServiceID:     "share-module",
		Group:         cfg.DephealthGroup,
		DB:            pgDB,
		PGConnURL:     cfg.DatabaseURL(),
		JWKSURL:       cfg.JWTJWKSURL,
		CheckInterval: cfg.DephealthCheckInterval,
		IsEntry:       cfg.DephealthIsEntry,
	}, logger)
	if dephealthErr != nil {
		logger.Warn("topologymetrics недоступен, запуск без мониторинга зависимостей",
			slog.String("error", dephealthErr.Error()),
		)
		dephealthSvc = nil
	} else if startErr := dephealthSvc.Start(ctx); startErr != nil {
		logger.Warn("Ошибка запуска topologymetrics",
			slog.String("error", startErr.Error()),
		)
	} else {
		logger.Info("topologymetrics запущен",
			slog.String("group", cfg.DephealthGroup),
			slog.String("check_interval", cfg.DephealthCheckInterval.String()),
		)
	}

	// 12. Handlers
	healthHandler := handlers.NewHealthHandler(checkers...)
	apiHandler := handlers.NewAPIHandler(
		healthHandler,
		linksSvc,
		resolverSvc,
		commentsSvc,
		reportSvc,
		logger,
	)

	// 13. Валидация запросов по OpenAPI (опционально)
	var validator *middleware.OpenAPIValidator
	if cfg.OpenAPIValidation {
		doc, docErr := openapi.Load()
		if docErr != nil {
			logger.Error("Ошибка загрузки OpenAPI-спецификации", slog.String("error", docErr.Error()))
			os.Exit(1)
		}
		validator, err = middleware.NewOpenAPIValidator(doc, logger)
		if err != nil {
			logger.Error("Ошибка создания OpenAPI-валидатора", slog.String("error", err.Error()))
			os.Exit(1)
		}
	}

	// 14. Создание и запуск HTTP-сервера
	srv := server.New(cfg, logger, apiHandler, jwtAuth, validator)
	if err := srv.Run(); err != nil {
		logger.Error("Ошибка сервера", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// 15. Остановка фоновых задач
	if dephealthSvc != nil {
		dephealthSvc.Stop()
	}

	logger.Info("share-module остановлен")
}
