package http

import (
	"log/slog"
	"net/http"

	"faithnews/internal/config"
)

// NewServer создает и настраивает HTTP-роутер с middleware.
// Ручное обновление кэша ограничено по частоте для каждого IP.
func NewServer(log *slog.Logger, h *Handler, cfg config.ServerConfig) http.Handler {
	limited := rateLimitMiddleware(log, newIPRateLimiter(cfg.RefreshRateLimit, cfg.RefreshRateBurst), cfg.TrustForwardedFor)

	mux := http.NewServeMux()
	mux.HandleFunc("/api/news", h.getNews)
	mux.HandleFunc("/api/articles", h.getNews)
	mux.Handle("/api/refresh-cache", limited(http.HandlerFunc(h.refreshCache)))
	mux.HandleFunc("/api/cache-status", h.cacheStatus)
	mux.HandleFunc("/api/sources", h.listSources)
	mux.HandleFunc("/api/categories", h.listCategories)
	mux.HandleFunc("/api/archive", h.getArchive)
	mux.HandleFunc("/api/health", h.healthCheck)
	mux.HandleFunc("/health", h.healthCheck)

	var handler http.Handler = mux
	handler = loggingMiddleware(log)(handler)
	handler = requestIDMiddleware()(handler)
	handler = corsMiddleware(cfg.CORSOrigin)(handler)
	return handler
}
