package http

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"faithnews/internal/domain"
	"faithnews/internal/usecase"
)

type newsService interface {
	Page(ctx context.Context, q usecase.PageQuery) (usecase.Page, error)
	CacheStatus() usecase.CacheStatus
	Sources() []domain.FeedSource
	Archived(ctx context.Context, n int) ([]domain.Article, error)
}

type cacheRefresher interface {
	Refresh(ctx context.Context) (usecase.RefreshResult, error)
}

// PageLimits задает размер страницы по умолчанию и верхнюю границу параметра limit.
type PageLimits struct {
	Default int
	Max     int
}

// Handler обслуживает HTTP API ленты: страницы статей, обновление кэша,
// состояние кэша, источники, категории, архив и health-check.
type Handler struct {
	log       *slog.Logger
	news      newsService
	refresher cacheRefresher
	limits    PageLimits
	startedAt time.Time
	now       func() time.Time
}

// NewHandler создает обработчик API.
// limits задает размер страницы по умолчанию и максимальный limit.
func NewHandler(log *slog.Logger, news newsService, refresher cacheRefresher, limits PageLimits) *Handler {
	return &Handler{
		log:       log,
		news:      news,
		refresher: refresher,
		limits:    limits,
		startedAt: time.Now(),
		now:       time.Now,
	}
}

// getNews - хендлер для эндпоинта GET /api/news
func (h *Handler) getNews(w http.ResponseWriter, r *http.Request) {
	const op = "transport.http/getNews"
	log := h.requestLog(r, op)
	if !allowMethod(w, r, log, http.MethodGet) {
		return
	}
	query := r.URL.Query()
	page, ok := positiveParam(query.Get("page"), 1)
	if !ok {
		log.Warn("invalid page parameter", slog.String("page", query.Get("page")))
		respondWithError(w, http.StatusBadRequest, "Invalid 'page' parameter")
		return
	}
	limit, ok := positiveParam(query.Get("limit"), h.limits.Default)
	if !ok {
		log.Warn("invalid limit parameter", slog.String("limit", query.Get("limit")))
		respondWithError(w, http.StatusBadRequest, "Invalid 'limit' parameter")
		return
	}
	limit = min(limit, h.limits.Max)
	filter := usecase.Filter{
		Category: query.Get("category"),
		Group:    query.Get("group"),
		Source:   query.Get("source"),
	}
	if filter.Group != "" && !domain.HasGroup(filter.Group) {
		log.Warn("unknown category group", slog.String("group", filter.Group))
		respondWithError(w, http.StatusBadRequest, "Unknown 'group' parameter")
		return
	}

	result, err := h.news.Page(r.Context(), usecase.PageQuery{Page: page, Limit: limit, Filter: filter})
	if err != nil {
		log.Error("Failed to get news", slog.Any("error", err))
		respondWithError(w, http.StatusInternalServerError, "Internal Server Error")
		return
	}
	respondWithJSON(w, http.StatusOK, result)
}

type refreshResponse struct {
	Success       bool   `json:"success"`
	Message       string `json:"message"`
	ArticlesCount int    `json:"articlesCount"`
	SourcesCount  int    `json:"sourcesCount"`
}

// refreshCache - хендлер для POST /api/refresh-cache, запускает внеплановое обновление.
func (h *Handler) refreshCache(w http.ResponseWriter, r *http.Request) {
	const op = "transport.http/refreshCache"
	log := h.requestLog(r, op)
	if !allowMethod(w, r, log, http.MethodPost) {
		return
	}
	log.Info("Manual cache refresh requested")
	res, err := h.refresher.Refresh(r.Context())
	if err != nil {
		log.Error("Cache refresh failed", slog.Any("error", err))
		respondWithJSON(w, http.StatusInternalServerError, refreshResponse{Message: "Failed to refresh cache"})
		return
	}
	respondWithJSON(w, http.StatusOK, refreshResponse{
		Success:       true,
		Message:       "Cache refreshed successfully",
		ArticlesCount: len(res.Snapshot.Articles),
		SourcesCount:  len(domain.UniqueSources(res.Snapshot.Articles)),
	})
}

func (h *Handler) cacheStatus(w http.ResponseWriter, r *http.Request) {
	if !allowMethod(w, r, h.requestLog(r, "transport.http/cacheStatus"), http.MethodGet) {
		return
	}
	respondWithJSON(w, http.StatusOK, h.news.CacheStatus())
}

func (h *Handler) listSources(w http.ResponseWriter, r *http.Request) {
	if !allowMethod(w, r, h.requestLog(r, "transport.http/listSources"), http.MethodGet) {
		return
	}
	sources := h.news.Sources()
	respondWithJSON(w, http.StatusOK, map[string]any{"sources": sources, "total": len(sources)})
}

func (h *Handler) listCategories(w http.ResponseWriter, r *http.Request) {
	if !allowMethod(w, r, h.requestLog(r, "transport.http/listCategories"), http.MethodGet) {
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]any{"groups": domain.CategoryGroups()})
}

// getArchive - хендлер для GET /api/archive, отдает последние статьи из Postgres.
func (h *Handler) getArchive(w http.ResponseWriter, r *http.Request) {
	const op = "transport.http/getArchive"
	log := h.requestLog(r, op)
	if !allowMethod(w, r, log, http.MethodGet) {
		return
	}
	limit, ok := positiveParam(r.URL.Query().Get("limit"), h.limits.Default)
	if !ok {
		respondWithError(w, http.StatusBadRequest, "Invalid 'limit' parameter")
		return
	}
	articles, err := h.news.Archived(r.Context(), min(limit, h.limits.Max))
	if errors.Is(err, usecase.ErrArchiveDisabled) {
		respondWithError(w, http.StatusServiceUnavailable, "Archive is disabled")
		return
	}
	if err != nil {
		log.Error("Failed to read archive", slog.Any("error", err))
		respondWithError(w, http.StatusInternalServerError, "Internal Server Error")
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]any{"articles": articles, "total": len(articles)})
}

// healthCheck - хендлер для проверки состояния сервиса
func (h *Handler) healthCheck(w http.ResponseWriter, r *http.Request) {
	now := h.now()
	respondWithJSON(w, http.StatusOK, map[string]any{
		"status":    "healthy",
		"timestamp": now.UTC(),
		"uptime":    now.Sub(h.startedAt).Seconds(),
	})
}

func (h *Handler) requestLog(r *http.Request, op string) *slog.Logger {
	return h.log.With(
		slog.String("op", op),
		slog.String("request_id", getRequestID(r.Context())),
	)
}

func allowMethod(w http.ResponseWriter, r *http.Request, log *slog.Logger, method string) bool {
	if r.Method == method {
		return true
	}
	log.Warn("method not allowed", slog.String("method", r.Method))
	w.Header().Set("Allow", method)
	respondWithError(w, http.StatusMethodNotAllowed, "Method Not Allowed")
	return false
}

// positiveParam разбирает положительное целое; пустая строка дает значение по умолчанию.
func positiveParam(raw string, def int) (int, bool) {
	if raw == "" {
		return def, true
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v <= 0 {
		return 0, false
	}
	return v, true
}

// Вспомогательные функции для ответов
func respondWithError(w http.ResponseWriter, code int, message string) {
	respondWithJSON(w, code, map[string]string{"error": message})
}

func respondWithJSON(w http.ResponseWriter, code int, payload any) {
	response, err := json.Marshal(payload)
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"error": "Failed to marshal JSON response"}`))
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	w.Write(response)
}
