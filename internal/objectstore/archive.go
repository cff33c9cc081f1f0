// Пакет objectstore — архив сгенерированных PDF-отчётов в S3-совместимом
// хранилище (minio-go). Включается при заданном SM_S3_ENDPOINT.
package objectstore

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"path"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// Config — параметры подключения к S3.
type Config struct {
	Endpoint  string
	Region    string
	Bucket    string
	AccessKey string
	SecretKey string
	UseSSL    bool
	PathStyle bool
}

// Archive сохраняет отчёты в бакет.
type Archive struct {
	cl     *minio.Client
	bucket string
	logger *slog.Logger
}

// New создаёт клиент архива. Подключение не проверяется до первого запроса.
func New(cfg Config, logger *slog.Logger) (*Archive, error) {
	opts := &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
		Region: cfg.Region,
	}
	if cfg.PathStyle {
		opts.BucketLookup = minio.BucketLookupPath
	}
	cl, err := minio.New(cfg.Endpoint, opts)
	if err != nil {
		return nil, fmt.Errorf("создание S3-клиента: %w", err)
	}
	return &Archive{
		cl:     cl,
		bucket: cfg.Bucket,
		logger: logger.With(slog.String("component", "report_archive")),
	}, nil
}

// ReportKey возвращает ключ объекта отчёта: reports/{projectID}/{filename}.
func ReportKey(projectID, filename string) string {
	return path.Join("reports", projectID, filename)
}

// Put загружает объект целиком.
func (a *Archive) Put(ctx context.Context, key string, data []byte, contentType string) error {
	info, err := a.cl.PutObject(ctx, a.bucket, key, bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return fmt.Errorf("загрузка %s в S3: %w", key, err)
	}
	a.logger.Info("Отчёт сохранён в архив",
		slog.String("key", key),
		slog.Int64("size", info.Size),
	)
	return nil
}

// CheckReady проверяет существование бакета для health endpoint.
func (a *Archive) CheckReady() (status, message string) {
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	ok, err := a.cl.BucketExists(ctx, a.bucket)
	if err != nil {
		return "fail", fmt.Sprintf("S3 недоступен: %v", err)
	}
	if !ok {
		return "fail", fmt.Sprintf("бакет %s не найден", a.bucket)
	}
	return "ok", "бакет доступен"
}
