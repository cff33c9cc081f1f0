// Пакет config — загрузка и валидация конфигурации share-module
// из переменных окружения (префикс SM_).
package config

import (
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Версия приложения, задаётся при сборке через -ldflags.
var Version = "dev"

// validSSLModes — допустимые значения SM_DB_SSL_MODE.
var validSSLModes = map[string]bool{
	"disable":     true,
	"allow":       true,
	"prefer":      true,
	"require":     true,
	"verify-ca":   true,
	"verify-full": true,
}

// Config содержит все параметры конфигурации share-module.
type Config struct {
	// --- Сервер ---

	// Порт HTTP-сервера (по умолчанию 8040)
	Port int
	// Уровень логирования (debug, info, warn, error)
	LogLevel slog.Level
	// Формат логов (json, text)
	LogFormat string
	// Файл логов (пусто — только stdout), ротация через lumberjack
	LogFile string
	// Максимальный размер файла логов в МБ до ротации
	LogFileMaxSizeMB int
	// Количество хранимых архивов логов
	LogFileMaxBackups int
	// Срок хранения архивов логов в днях
	LogFileMaxAgeDays int

	// --- HTTP Server Timeouts ---

	HTTPReadTimeout  time.Duration
	HTTPWriteTimeout time.Duration
	HTTPIdleTimeout  time.Duration

	// --- PostgreSQL ---

	DBHost     string
	DBPort     int
	DBName     string
	DBUser     string
	DBPassword string
	DBSSLMode  string

	// --- JWT (владельцы проектов) ---

	// URL JWKS endpoint Identity Provider
	JWTJWKSURL string
	// Ожидаемый issuer (пусто — не проверяется)
	JWTIssuer string
	// CA-сертификат для JWKS (опционально)
	JWKSCACertPath string
	// Таймаут HTTP-клиента JWKS
	JWKSClientTimeout time.Duration
	// Интервал обновления ключей JWKS
	JWKSRefreshInterval time.Duration
	// Допустимое отклонение часов при проверке JWT
	JWTLeeway time.Duration

	// --- Ссылки доступа ---

	// Origin фронтенда для URL вида {origin}/shared/{id}
	PublicBaseURL string
	// Срок действия ссылки по умолчанию
	DefaultLinkExpiry time.Duration
	// Стоимость bcrypt для паролей ссылок
	PasswordHashCost int
	// Лимит попыток ввода пароля в минуту на ссылку (0 — без лимита)
	PasswordAttemptsPerMinute int

	// --- Redis (опционально, общий лимитер попыток) ---

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	// --- Отчёты ---

	// Таймаут загрузки одного изображения
	ImageFetchTimeout time.Duration
	// CA-сертификат для загрузки изображений (опционально)
	ImageCACertPath string
	// Максимальный размер изображения в байтах
	ImageMaxBytes int64
	// Размер LRU-кэша изображений (записей)
	ImageCacheSize int
	// TTL записи кэша изображений
	ImageCacheTTL time.Duration
	// Параллельность загрузки изображений (1 — последовательно)
	ReportImageConcurrency int
	// Максимум пикселей изображения (ширина × высота) до декодирования
	ReportImageMaxPixels int

	// --- S3 (опционально, архив отчётов) ---

	S3Endpoint  string
	S3Region    string
	S3Bucket    string
	S3AccessKey string
	S3SecretKey string
	S3UseSSL    bool
	S3PathStyle bool

	// --- Валидация запросов ---

	// Проверять запросы по встроенной OpenAPI-спецификации
	OpenAPIValidation bool

	// --- topologymetrics ---

	DephealthGroup         string
	DephealthCheckInterval time.Duration
	DephealthIsEntry       bool

	// --- Graceful shutdown ---

	ShutdownTimeout time.Duration
}

// Load загружает конфигурацию из переменных окружения.
// Если задана SM_ENV_FILE, сначала подгружается dotenv-файл
// (уже заданные переменные не перезаписываются).
//
//nolint:gocyclo,cyclop // линейная загрузка параметров
func Load() (*Config, error) {
	if envFile := os.Getenv("SM_ENV_FILE"); envFile != "" {
		if err := godotenv.Load(envFile); err != nil {
			return nil, fmt.Errorf("SM_ENV_FILE: %w", err)
		}
	}

	cfg := &Config{}
	var err error

	// --- Сервер ---

	cfg.Port, err = getEnvInt("SM_PORT", 8040)
	if err != nil {
		return nil, fmt.Errorf("SM_PORT: %w", err)
	}
	if cfg.Port < 1 || cfg.Port > 65535 {
		return nil, fmt.Errorf("SM_PORT: порт %d вне диапазона 1-65535", cfg.Port)
	}

	cfg.LogLevel, err = parseLogLevel(getEnvDefault("SM_LOG_LEVEL", "info"))
	if err != nil {
		return nil, fmt.Errorf("SM_LOG_LEVEL: %w", err)
	}

	cfg.LogFormat = getEnvDefault("SM_LOG_FORMAT", "json")
	if cfg.LogFormat != "json" && cfg.LogFormat != "text" {
		return nil, fmt.Errorf("SM_LOG_FORMAT: недопустимый формат %q, допустимые: json, text", cfg.LogFormat)
	}

	cfg.LogFile = os.Getenv("SM_LOG_FILE")
	if cfg.LogFileMaxSizeMB, err = getEnvInt("SM_LOG_FILE_MAX_SIZE_MB", 100); err != nil {
		return nil, fmt.Errorf("SM_LOG_FILE_MAX_SIZE_MB: %w", err)
	}
	if cfg.LogFileMaxBackups, err = getEnvInt("SM_LOG_FILE_MAX_BACKUPS", 5); err != nil {
		return nil, fmt.Errorf("SM_LOG_FILE_MAX_BACKUPS: %w", err)
	}
	if cfg.LogFileMaxAgeDays, err = getEnvInt("SM_LOG_FILE_MAX_AGE_DAYS", 30); err != nil {
		return nil, fmt.Errorf("SM_LOG_FILE_MAX_AGE_DAYS: %w", err)
	}

	// --- HTTP Server Timeouts ---

	if cfg.HTTPReadTimeout, err = getEnvDuration("SM_HTTP_READ_TIMEOUT", 30*time.Second); err != nil {
		return nil, fmt.Errorf("SM_HTTP_READ_TIMEOUT: %w", err)
	}
	// Генерация отчёта с фотографиями может быть долгой
	if cfg.HTTPWriteTimeout, err = getEnvDuration("SM_HTTP_WRITE_TIMEOUT", 5*time.Minute); err != nil {
		return nil, fmt.Errorf("SM_HTTP_WRITE_TIMEOUT: %w", err)
	}
	if cfg.HTTPIdleTimeout, err = getEnvDuration("SM_HTTP_IDLE_TIMEOUT", 120*time.Second); err != nil {
		return nil, fmt.Errorf("SM_HTTP_IDLE_TIMEOUT: %w", err)
	}

	// --- PostgreSQL ---

	if cfg.DBHost, err = getEnvRequired("SM_DB_HOST"); err != nil {
		return nil, err
	}
	if cfg.DBPort, err = getEnvInt("SM_DB_PORT", 5432); err != nil {
		return nil, fmt.Errorf("SM_DB_PORT: %w", err)
	}
	if cfg.DBName, err = getEnvRequired("SM_DB_NAME"); err != nil {
		return nil, err
	}
	if cfg.DBUser, err = getEnvRequired("SM_DB_USER"); err != nil {
		return nil, err
	}
	if cfg.DBPassword, err = getEnvRequired("SM_DB_PASSWORD"); err != nil {
		return nil, err
	}
	cfg.DBSSLMode = getEnvDefault("SM_DB_SSL_MODE", "disable")
	if !validSSLModes[cfg.DBSSLMode] {
		return nil, fmt.Errorf("SM_DB_SSL_MODE: недопустимое значение %q", cfg.DBSSLMode)
	}

	// --- JWT ---

	if cfg.JWTJWKSURL, err = getEnvRequired("SM_JWT_JWKS_URL"); err != nil {
		return nil, err
	}
	cfg.JWTIssuer = os.Getenv("SM_JWT_ISSUER")
	cfg.JWKSCACertPath = os.Getenv("SM_JWKS_CA_CERT_PATH")
	if cfg.JWKSClientTimeout, err = getEnvDuration("SM_JWKS_CLIENT_TIMEOUT", 10*time.Second); err != nil {
		return nil, fmt.Errorf("SM_JWKS_CLIENT_TIMEOUT: %w", err)
	}
	if cfg.JWKSRefreshInterval, err = getEnvDuration("SM_JWKS_REFRESH_INTERVAL", 15*time.Minute); err != nil {
		return nil, fmt.Errorf("SM_JWKS_REFRESH_INTERVAL: %w", err)
	}
	if cfg.JWTLeeway, err = getEnvDuration("SM_JWT_LEEWAY", 5*time.Second); err != nil {
		return nil, fmt.Errorf("SM_JWT_LEEWAY: %w", err)
	}

	// --- Ссылки доступа ---

	publicBaseURL, err := getEnvRequired("SM_PUBLIC_BASE_URL")
	if err != nil {
		return nil, err
	}
	parsed, err := url.Parse(publicBaseURL)
	if err != nil || (parsed.Scheme != "http" && parsed.Scheme != "https") || parsed.Host == "" {
		return nil, fmt.Errorf("SM_PUBLIC_BASE_URL: ожидается абсолютный http(s) URL, получено %q", publicBaseURL)
	}
	cfg.PublicBaseURL = strings.TrimRight(publicBaseURL, "/")

	if cfg.DefaultLinkExpiry, err = getEnvDurationFallback("SM_DEFAULT_LINK_EXPIRY", 24*time.Hour); err != nil {
		return nil, fmt.Errorf("SM_DEFAULT_LINK_EXPIRY: %w", err)
	}
	if cfg.PasswordHashCost, err = getEnvInt("SM_PASSWORD_HASH_COST", 10); err != nil {
		return nil, fmt.Errorf("SM_PASSWORD_HASH_COST: %w", err)
	}
	if cfg.PasswordHashCost < 4 || cfg.PasswordHashCost > 31 {
		return nil, fmt.Errorf("SM_PASSWORD_HASH_COST: значение %d вне диапазона 4-31", cfg.PasswordHashCost)
	}
	if cfg.PasswordAttemptsPerMinute, err = getEnvInt("SM_PASSWORD_ATTEMPTS_PER_MINUTE", 0); err != nil {
		return nil, fmt.Errorf("SM_PASSWORD_ATTEMPTS_PER_MINUTE: %w", err)
	}
	if cfg.PasswordAttemptsPerMinute < 0 {
		return nil, fmt.Errorf("SM_PASSWORD_ATTEMPTS_PER_MINUTE: значение должно быть >= 0")
	}

	// --- Redis ---

	cfg.RedisAddr = os.Getenv("SM_REDIS_ADDR")
	cfg.RedisPassword = os.Getenv("SM_REDIS_PASSWORD")
	if cfg.RedisDB, err = getEnvInt("SM_REDIS_DB", 0); err != nil {
		return nil, fmt.Errorf("SM_REDIS_DB: %w", err)
	}

	// --- Отчёты ---

	if cfg.ImageFetchTimeout, err = getEnvDuration("SM_IMAGE_FETCH_TIMEOUT", 15*time.Second); err != nil {
		return nil, fmt.Errorf("SM_IMAGE_FETCH_TIMEOUT: %w", err)
	}
	cfg.ImageCACertPath = os.Getenv("SM_IMAGE_CA_CERT_PATH")
	maxMB, err := getEnvInt("SM_IMAGE_MAX_SIZE_MB", 10)
	if err != nil {
		return nil, fmt.Errorf("SM_IMAGE_MAX_SIZE_MB: %w", err)
	}
	if maxMB < 1 {
		return nil, fmt.Errorf("SM_IMAGE_MAX_SIZE_MB: значение должно быть >= 1")
	}
	cfg.ImageMaxBytes = int64(maxMB) << 20
	if cfg.ImageCacheSize, err = getEnvInt("SM_IMAGE_CACHE_SIZE", 256); err != nil {
		return nil, fmt.Errorf("SM_IMAGE_CACHE_SIZE: %w", err)
	}
	if cfg.ImageCacheTTL, err = getEnvDuration("SM_IMAGE_CACHE_TTL", 10*time.Minute); err != nil {
		return nil, fmt.Errorf("SM_IMAGE_CACHE_TTL: %w", err)
	}
	if cfg.ReportImageConcurrency, err = getEnvInt("SM_REPORT_IMAGE_CONCURRENCY", 1); err != nil {
		return nil, fmt.Errorf("SM_REPORT_IMAGE_CONCURRENCY: %w", err)
	}
	if cfg.ReportImageConcurrency < 1 {
		return nil, fmt.Errorf("SM_REPORT_IMAGE_CONCURRENCY: значение должно быть >= 1")
	}
	if cfg.ReportImageMaxPixels, err = getEnvInt("SM_REPORT_IMAGE_MAX_PIXELS", 40_000_000); err != nil {
		return nil, fmt.Errorf("SM_REPORT_IMAGE_MAX_PIXELS: %w", err)
	}
	if cfg.ReportImageMaxPixels < 1 {
		return nil, fmt.Errorf("SM_REPORT_IMAGE_MAX_PIXELS: значение должно быть >= 1")
	}

	// --- S3 ---

	cfg.S3Endpoint = os.Getenv("SM_S3_ENDPOINT")
	cfg.S3Region = getEnvDefault("SM_S3_REGION", "us-east-1")
	cfg.S3Bucket = os.Getenv("SM_S3_BUCKET")
	cfg.S3AccessKey = os.Getenv("SM_S3_ACCESS_KEY")
	cfg.S3SecretKey = os.Getenv("SM_S3_SECRET_KEY")
	if cfg.S3UseSSL, err = getEnvBool("SM_S3_USE_SSL", true); err != nil {
		return nil, fmt.Errorf("SM_S3_USE_SSL: %w", err)
	}
	if cfg.S3PathStyle, err = getEnvBool("SM_S3_PATH_STYLE", true); err != nil {
		return nil, fmt.Errorf("SM_S3_PATH_STYLE: %w", err)
	}
	if cfg.S3Endpoint != "" && cfg.S3Bucket == "" {
		return nil, fmt.Errorf("SM_S3_BUCKET: обязателен, если задан SM_S3_ENDPOINT")
	}

	// --- Валидация запросов ---

	if cfg.OpenAPIValidation, err = getEnvBool("SM_OPENAPI_VALIDATION", true); err != nil {
		return nil, fmt.Errorf("SM_OPENAPI_VALIDATION: %w", err)
	}

	// --- topologymetrics ---

	cfg.DephealthGroup = getEnvDefault("SM_DEPHEALTH_GROUP", "sitebook")
	if cfg.DephealthCheckInterval, err = getEnvDurationFallback("SM_DEPHEALTH_CHECK_INTERVAL", 15*time.Second); err != nil {
		return nil, fmt.Errorf("SM_DEPHEALTH_CHECK_INTERVAL: %w", err)
	}
	if cfg.DephealthIsEntry, err = getEnvBool("DEPHEALTH_ISENTRY", false); err != nil {
		return nil, fmt.Errorf("DEPHEALTH_ISENTRY: %w", err)
	}

	// --- Graceful shutdown ---

	if cfg.ShutdownTimeout, err = getEnvDuration("SM_SHUTDOWN_TIMEOUT", 5*time.Second); err != nil {
		return nil, fmt.Errorf("SM_SHUTDOWN_TIMEOUT: %w", err)
	}

	return cfg, nil
}

// DatabaseDSN возвращает строку подключения к PostgreSQL.
func (c *Config) DatabaseDSN() string {
	return fmt.Sprintf(
		"host=%s port=%d dbname=%s user=%s password=%s sslmode=%s",
		c.DBHost, c.DBPort, c.DBName, c.DBUser, c.DBPassword, c.DBSSLMode,
	)
}

// DatabaseURL возвращает URL PostgreSQL (для лейблов topologymetrics и golang-migrate).
func (c *Config) DatabaseURL() string {
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(c.DBUser, c.DBPassword),
		Host:     fmt.Sprintf("%s:%d", c.DBHost, c.DBPort),
		Path:     "/" + c.DBName,
		RawQuery: "sslmode=" + c.DBSSLMode,
	}
	return u.String()
}

// S3Enabled сообщает, настроен ли архив отчётов в S3.
func (c *Config) S3Enabled() bool {
	return c.S3Endpoint != ""
}

// SetupLogger настраивает глобальный slog-логгер на основе конфигурации.
// При заданном LogFile логи пишутся и в stdout, и в файл с ротацией.
func SetupLogger(cfg *Config) *slog.Logger {
	opts := &slog.HandlerOptions{
		Level: cfg.LogLevel,
	}

	var out io.Writer = os.Stdout
	if cfg.LogFile != "" {
		out = io.MultiWriter(os.Stdout, &lumberjack.Logger{
			Filename:   cfg.LogFile,
			MaxSize:    cfg.LogFileMaxSizeMB,
			MaxBackups: cfg.LogFileMaxBackups,
			MaxAge:     cfg.LogFileMaxAgeDays,
			Compress:   true,
		})
	}

	var handler slog.Handler
	if cfg.LogFormat == "json" {
		handler = slog.NewJSONHandler(out, opts)
	} else {
		handler = slog.NewTextHandler(out, opts)
	}

	logger := slog.New(handler)
	slog.SetDefault(logger)
	return logger
}

// --- Вспомогательные функции ---

// getEnvRequired возвращает значение переменной окружения или ошибку, если она не задана.
func getEnvRequired(key string) (string, error) {
	val := os.Getenv(key)
	if val == "" {
		return "", fmt.Errorf("%s: обязательная переменная окружения не задана", key)
	}
	return val, nil
}

// getEnvDefault возвращает значение переменной окружения или значение по умолчанию.
func getEnvDefault(key, defaultVal string) string {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	return val
}

// getEnvInt возвращает целочисленное значение переменной окружения или значение по умолчанию.
func getEnvInt(key string, defaultVal int) (int, error) {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal, nil
	}
	n, err := strconv.Atoi(val)
	if err != nil {
		return 0, fmt.Errorf("некорректное целое число: %q", val)
	}
	return n, nil
}

// getEnvDuration возвращает time.Duration из переменной окружения или значение по умолчанию.
func getEnvDuration(key string, defaultVal time.Duration) (time.Duration, error) {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal, nil
	}
	d, err := time.ParseDuration(val)
	if err != nil {
		return 0, fmt.Errorf("некорректная длительность: %q (используйте формат Go: 30s, 1h, 15m)", val)
	}
	return d, nil
}

// getEnvDurationFallback как getEnvDuration, но дополнительно требует значение > 0.
func getEnvDurationFallback(key string, fallbackVal time.Duration) (time.Duration, error) {
	d, err := getEnvDuration(key, fallbackVal)
	if err != nil {
		return 0, err
	}
	if d <= 0 {
		return 0, fmt.Errorf("значение должно быть > 0")
	}
	return d, nil
}

// getEnvBool возвращает булево значение переменной окружения или значение по умолчанию.
func getEnvBool(key string, defaultVal bool) (bool, error) {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal, nil
	}
	b, err := strconv.ParseBool(val)
	if err != nil {
		return false, fmt.Errorf("некорректное булево значение: %q (допустимые: true, false, 1, 0)", val)
	}
	return b, nil
}

// parseLogLevel преобразует строку уровня логирования в slog.Level.
func parseLogLevel(level string) (slog.Level, error) {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("недопустимый уровень %q, допустимые: debug, info, warn, error", level)
	}
}
