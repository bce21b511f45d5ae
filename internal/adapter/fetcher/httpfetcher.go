package fetcher

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"
)

// HTTPFetcher загружает RSS/Atom-ленты по HTTP.
// Запросы отправляются с браузерными заголовками и ограничены таймаутом,
// чтобы одна недоступная лента не задерживала весь цикл обновления.
type HTTPFetcher struct {
	client    *http.Client
	userAgent string
	timeout   time.Duration
	maxBytes  int64
	log       *slog.Logger
}

// NewHTTPFetcher создает загрузчик с указанным User-Agent и таймаутом на запрос.
// Нулевой таймаут означает отсутствие ограничения со стороны загрузчика.
// Тело ответа длиннее maxBytes считается ошибкой.
func NewHTTPFetcher(log *slog.Logger, userAgent string, timeout time.Duration, maxBytes int64) *HTTPFetcher {
	return &HTTPFetcher{
		client:    &http.Client{},
		userAgent: userAgent,
		timeout:   timeout,
		maxBytes:  maxBytes,
		log:       log,
	}
}

// Fetch выполняет GET-запрос и возвращает тело ответа целиком.
// Ответы со статусом вне диапазона 2xx считаются ошибкой.
func (f *HTTPFetcher) Fetch(ctx context.Context, url string) ([]byte, error) {
	log := f.log.With(slog.String("component", "fetcher"), slog.String("url", url))
	if f.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, f.timeout)
		defer cancel()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request for url %s: %w", url, err)
	}
	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept", "application/rss+xml, application/atom+xml, application/xml;q=0.9, text/xml;q=0.9, */*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.5")

	start := time.Now()
	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch url %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("unexpected status code: %d for url %s", resp.StatusCode, url)
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, f.maxBytes+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read body of %s: %w", url, err)
	}
	if int64(len(body)) > f.maxBytes {
		return nil, fmt.Errorf("feed %s exceeds %d bytes", url, f.maxBytes)
	}
	log.Debug("Fetched feed",
		slog.Int("status_code", resp.StatusCode),
		slog.Int("bytes", len(body)),
		slog.Duration("duration", time.Since(start)),
	)
	return body, nil
}
