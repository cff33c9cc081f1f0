package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

// setEnvs устанавливает переменные окружения на время теста.
func setEnvs(t *testing.T, envs map[string]string) {
	t.Helper()
	for k, v := range envs {
		t.Setenv(k, v)
	}
}

// minimalEnvs возвращает минимальный набор обязательных переменных.
func minimalEnvs() map[string]string {
	return map[string]string{
		"SM_DB_HOST":         "localhost",
		"SM_DB_NAME":         "sitebook",
		"SM_DB_USER":         "sitebook",
		"SM_DB_PASSWORD":     "secret",
		"SM_JWT_JWKS_URL":    "https://idp.example.com/realms/sitebook/protocol/openid-connect/certs",
		"SM_PUBLIC_BASE_URL": "https://app.example.com/",
	}
}

func TestLoad_MinimalConfig(t *testing.T) {
	setEnvs(t, minimalEnvs())

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() вернул ошибку: %v", err)
	}

	if cfg.Port != 8040 {
		t.Errorf("Port = %d, ожидается 8040", cfg.Port)
	}
	if cfg.LogLevel != slog.LevelInfo {
		t.Errorf("LogLevel = %v, ожидается Info", cfg.LogLevel)
	}
	if cfg.LogFormat != "json" {
		t.Errorf("LogFormat = %q, ожидается json", cfg.LogFormat)
	}
	if cfg.DBPort != 5432 {
		t.Errorf("DBPort = %d, ожидается 5432", cfg.DBPort)
	}
	if cfg.DBSSLMode != "disable" {
		t.Errorf("DBSSLMode = %q, ожидается disable", cfg.DBSSLMode)
	}
	if cfg.PublicBaseURL != "https://app.example.com" {
		t.Errorf("PublicBaseURL = %q, ожидается без завершающего /", cfg.PublicBaseURL)
	}
	if cfg.DefaultLinkExpiry != 24*time.Hour {
		t.Errorf("DefaultLinkExpiry = %v, ожидается 24h", cfg.DefaultLinkExpiry)
	}
	if cfg.PasswordAttemptsPerMinute != 0 {
		t.Errorf("PasswordAttemptsPerMinute = %d, ожидается 0", cfg.PasswordAttemptsPerMinute)
	}
	if cfg.ReportImageConcurrency != 1 {
		t.Errorf("ReportImageConcurrency = %d, ожидается 1", cfg.ReportImageConcurrency)
	}
	if cfg.ReportImageMaxPixels != 40_000_000 {
		t.Errorf("ReportImageMaxPixels = %d, ожидается 40000000", cfg.ReportImageMaxPixels)
	}
	if cfg.ImageMaxBytes != 10<<20 {
		t.Errorf("ImageMaxBytes = %d, ожидается 10 МБ", cfg.ImageMaxBytes)
	}
	if !cfg.OpenAPIValidation {
		t.Error("OpenAPIValidation должен быть включён по умолчанию")
	}
	if cfg.S3Enabled() {
		t.Error("S3 не должен быть включён без SM_S3_ENDPOINT")
	}
	if cfg.ShutdownTimeout != 5*time.Second {
		t.Errorf("ShutdownTimeout = %v, ожидается 5s", cfg.ShutdownTimeout)
	}
}

func TestLoad_MissingRequired(t *testing.T) {
	for key := range minimalEnvs() {
		t.Run(key, func(t *testing.T) {
			envs := minimalEnvs()
			envs[key] = ""
			setEnvs(t, envs)

			_, err := Load()
			if err == nil {
				t.Fatalf("ожидалась ошибка при отсутствии %s", key)
			}
			if !strings.Contains(err.Error(), key) {
				t.Errorf("ошибка %q не упоминает %s", err, key)
			}
		})
	}
}

func TestLoad_InvalidPublicBaseURL(t *testing.T) {
	envs := minimalEnvs()
	envs["SM_PUBLIC_BASE_URL"] = "app.example.com"
	setEnvs(t, envs)

	if _, err := Load(); err == nil {
		t.Fatal("ожидалась ошибка для URL без схемы")
	}
}

func TestLoad_InvalidLogFormat(t *testing.T) {
	envs := minimalEnvs()
	envs["SM_LOG_FORMAT"] = "xml"
	setEnvs(t, envs)

	if _, err := Load(); err == nil {
		t.Fatal("ожидалась ошибка для SM_LOG_FORMAT=xml")
	}
}

func TestLoad_InvalidSSLMode(t *testing.T) {
	envs := minimalEnvs()
	envs["SM_DB_SSL_MODE"] = "sometimes"
	setEnvs(t, envs)

	if _, err := Load(); err == nil {
		t.Fatal("ожидалась ошибка для SM_DB_SSL_MODE=sometimes")
	}
}

func TestLoad_NegativeAttemptLimit(t *testing.T) {
	envs := minimalEnvs()
	envs["SM_PASSWORD_ATTEMPTS_PER_MINUTE"] = "-1"
	setEnvs(t, envs)

	if _, err := Load(); err == nil {
		t.Fatal("ожидалась ошибка для отрицательного лимита попыток")
	}
}

func TestLoad_S3RequiresBucket(t *testing.T) {
	envs := minimalEnvs()
	envs["SM_S3_ENDPOINT"] = "minio:9000"
	setEnvs(t, envs)

	if _, err := Load(); err == nil {
		t.Fatal("ожидалась ошибка: SM_S3_BUCKET обязателен при SM_S3_ENDPOINT")
	}
}

func TestLoad_CustomValues(t *testing.T) {
	envs := minimalEnvs()
	envs["SM_PORT"] = "9090"
	envs["SM_LOG_LEVEL"] = "debug"
	envs["SM_DEFAULT_LINK_EXPIRY"] = "2h"
	envs["SM_REPORT_IMAGE_CONCURRENCY"] = "4"
	envs["SM_REPORT_IMAGE_MAX_PIXELS"] = "1000000"
	envs["SM_S3_ENDPOINT"] = "minio:9000"
	envs["SM_S3_BUCKET"] = "reports"
	envs["SM_S3_USE_SSL"] = "false"
	setEnvs(t, envs)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() вернул ошибку: %v", err)
	}
	if cfg.Port != 9090 {
		t.Errorf("Port = %d, ожидается 9090", cfg.Port)
	}
	if cfg.LogLevel != slog.LevelDebug {
		t.Errorf("LogLevel = %v, ожидается Debug", cfg.LogLevel)
	}
	if cfg.DefaultLinkExpiry != 2*time.Hour {
		t.Errorf("DefaultLinkExpiry = %v, ожидается 2h", cfg.DefaultLinkExpiry)
	}
	if cfg.ReportImageConcurrency != 4 {
		t.Errorf("ReportImageConcurrency = %d, ожидается 4", cfg.ReportImageConcurrency)
	}
	if cfg.ReportImageMaxPixels != 1_000_000 {
		t.Errorf("ReportImageMaxPixels = %d, ожидается 1000000", cfg.ReportImageMaxPixels)
	}
	if !cfg.S3Enabled() || cfg.S3UseSSL {
		t.Errorf("S3: enabled=%v useSSL=%v, ожидается enabled и без SSL", cfg.S3Enabled(), cfg.S3UseSSL)
	}
}

func TestLoad_EnvFile(t *testing.T) {
	envs := minimalEnvs()
	envs["SM_DB_PASSWORD"] = ""
	setEnvs(t, envs)

	path := filepath.Join(t.TempDir(), "share.env")
	content := "SM_DB_PASSWORD=from-file\nSM_PORT=8123\n"
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("запись env-файла: %v", err)
	}
	t.Setenv("SM_ENV_FILE", path)
	// godotenv выставляет переменные через os.Setenv — регистрируем очистку
	t.Setenv("SM_PORT", "")
	os.Unsetenv("SM_DB_PASSWORD")
	os.Unsetenv("SM_PORT")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() вернул ошибку: %v", err)
	}
	if cfg.DBPassword != "from-file" {
		t.Errorf("DBPassword = %q, ожидается from-file", cfg.DBPassword)
	}
	if cfg.Port != 8123 {
		t.Errorf("Port = %d, ожидается 8123", cfg.Port)
	}
}

func TestDatabaseURL(t *testing.T) {
	cfg := &Config{
		DBHost: "db", DBPort: 5433, DBName: "sitebook",
		DBUser: "user", DBPassword: "p@ss", DBSSLMode: "require",
	}

	got := cfg.DatabaseURL()
	want := "postgres://user:p%40ss@db:5433/sitebook?sslmode=require"
	if got != want {
		t.Errorf("DatabaseURL() = %q, ожидается %q", got, want)
	}
}

func TestParseLogLevel(t *testing.T) {
	tests := []struct {
		input   string
		want    slog.Level
		wantErr bool
	}{
		{"debug", slog.LevelDebug, false},
		{"INFO", slog.LevelInfo, false},
		{"warning", slog.LevelWarn, false},
		{"error", slog.LevelError, false},
		{"trace", slog.LevelInfo, true},
	}
	for _, tt := range tests {
		got, err := parseLogLevel(tt.input)
		if (err != nil) != tt.wantErr {
			t.Errorf("parseLogLevel(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("parseLogLevel(%q) = %v, ожидается %v", tt.input, got, tt.want)
		}
	}
}
