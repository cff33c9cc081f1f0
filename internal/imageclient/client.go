// Пакет imageclient — HTTP-клиент загрузки фотографий этапов по публичным URL
// для встраивания в PDF-отчёт. Поддерживает TLS с кастомным CA
// (SM_IMAGE_CA_CERT_PATH), таймаут и ограничение размера ответа.
package imageclient

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"time"
)

// ErrTooLarge — изображение превышает допустимый размер.
var ErrTooLarge = errors.New("изображение превышает допустимый размер")

// StatusError — сервер изображения вернул не-2xx статус.
type StatusError struct {
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("неожиданный HTTP-статус %d", e.StatusCode)
}

// Client — HTTP-клиент загрузки изображений.
type Client struct {
	httpClient *http.Client
	maxBytes   int64
	logger     *slog.Logger
}

// New создаёт клиент загрузки изображений.
// caCertPath — путь к CA-сертификату (пустая строка — стандартный пул).
// timeout — таймаут одного запроса. maxBytes — предельный размер тела ответа.
func New(caCertPath string, timeout time.Duration, maxBytes int64, logger *slog.Logger) (*Client, error) {
	transport := &http.Transport{
		MaxIdleConnsPerHost: 4,
	}

	if caCertPath != "" {
		tlsConfig, err := buildTLSConfig(caCertPath)
		if err != nil {
			return nil, fmt.Errorf("загрузка CA-сертификата: %w", err)
		}
		transport.TLSClientConfig = tlsConfig
		logger.Info("CA-сертификат для изображений добавлен в пул доверия",
			slog.String("ca_cert", caCertPath),
		)
	}

	return &Client{
		httpClient: &http.Client{
			Timeout:   timeout,
			Transport: transport,
		},
		maxBytes: maxBytes,
		logger:   logger.With(slog.String("component", "image_client")),
	}, nil
}

// Fetch скачивает изображение целиком.
// Ошибка при не-2xx статусе, сетевом сбое или превышении maxBytes.
func (c *Client) Fetch(ctx context.Context, rawURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("создание запроса изображения: %w", err)
	}
	req.Header.Set("Accept", "image/*")

	resp, err := c.httpClient.Do(req) //nolint:gosec // G107: URL фотографии из данных проекта
	if err != nil {
		return nil, fmt.Errorf("запрос изображения: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return nil, &StatusError{StatusCode: resp.StatusCode}
	}
	if resp.ContentLength > c.maxBytes {
		return nil, ErrTooLarge
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, c.maxBytes+1))
	if err != nil {
		return nil, fmt.Errorf("чтение изображения: %w", err)
	}
	if int64(len(data)) > c.maxBytes {
		return nil, ErrTooLarge
	}

	c.logger.Debug("Изображение загружено",
		slog.String("url", rawURL),
		slog.Int("bytes", len(data)),
	)
	return data, nil
}

// buildTLSConfig создаёт TLS-конфигурацию с кастомным CA-сертификатом.
func buildTLSConfig(caCertPath string) (*tls.Config, error) {
	caCert, err := os.ReadFile(caCertPath)
	if err != nil {
		return nil, fmt.Errorf("чтение CA-сертификата: %w", err)
	}

	pool, err := x509.SystemCertPool()
	if err != nil {
		pool = x509.NewCertPool()
	}
	if !pool.AppendCertsFromPEM(caCert) {
		return nil, fmt.Errorf("файл %s не содержит PEM-сертификатов", caCertPath)
	}

	return &tls.Config{
		RootCAs:    pool,
		MinVersion: tls.VersionTLS12,
	}, nil
}
