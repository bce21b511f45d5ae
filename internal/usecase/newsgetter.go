package usecase

import (
	"context"
	"errors"
	"strings"
	"time"

	"faithnews/internal/cache"
	"faithnews/internal/domain"
)

// ErrArchiveDisabled возвращается, когда архив статей не настроен.
var ErrArchiveDisabled = errors.New("article archive is disabled")

// CacheRefresher запускает обновление кэша по требованию.
type CacheRefresher interface {
	Refresh(ctx context.Context) (RefreshResult, error)
}

// Filter сужает выдачу; пустые поля не применяются.
type Filter struct {
	Category string
	Group    string
	Source   string
}

func (f Filter) empty() bool {
	return f.Category == "" && f.Group == "" && f.Source == ""
}

func (f Filter) match(a domain.Article) bool {
	if f.Category != "" && !strings.EqualFold(a.Category, f.Category) {
		return false
	}
	if f.Source != "" && !strings.EqualFold(a.Source, f.Source) {
		return false
	}
	if f.Group != "" && domain.GroupForCategory(a.Category).ID != f.Group {
		return false
	}
	return true
}

// PageQuery - параметры запроса страницы. Page и Limit должны быть положительными.
type PageQuery struct {
	Page   int
	Limit  int
	Filter Filter
}

// Page - страница распределенной ленты.
type Page struct {
	Articles   []domain.Article `json:"articles"`
	Total      int              `json:"total"`
	Page       int              `json:"page"`
	Limit      int              `json:"limit"`
	TotalPages int              `json:"totalPages"`
	Cached     bool             `json:"cached"`
	Timestamp  time.Time        `json:"timestamp"`
}

// CacheStatus описывает состояние кэша для мониторинга.
type CacheStatus struct {
	LastUpdated        time.Time `json:"lastUpdated"`
	TotalArticles      int       `json:"totalArticles"`
	SourcesCount       int       `json:"sourcesCount"`
	UniqueSourcesCount int       `json:"uniqueSourcesCount"`
	Sources            []string  `json:"sources"`
	NextUpdate         time.Time `json:"nextUpdate"`
}

// NewsGetterUseCase реализует чтение ленты для API: страницы из кэша,
// состояние кэша, список источников и архив.
type NewsGetterUseCase struct {
	store     *cache.Store
	refresher CacheRefresher
	sources   []domain.FeedSource
	archive   ArticleArchive
}

// NewNewsGetterUseCase создает сценарий чтения. archive может быть nil.
func NewNewsGetterUseCase(store *cache.Store, refresher CacheRefresher, sources []domain.FeedSource, archive ArticleArchive) *NewsGetterUseCase {
	return &NewsGetterUseCase{
		store:     store,
		refresher: refresher,
		sources:   sources,
		archive:   archive,
	}
}

// Page возвращает страницу ленты. Если кэш пуст, сначала синхронно выполняется
// обновление, и ответ помечается как некэшированный.
func (us *NewsGetterUseCase) Page(ctx context.Context, q PageQuery) (Page, error) {
	snap := us.store.Load()
	cached := true
	if snap.Empty() {
		cached = false
		res, err := us.refresher.Refresh(ctx)
		if err != nil {
			return Page{}, err
		}
		snap = res.Snapshot
	}

	articles := snap.Articles
	if !q.Filter.empty() {
		filtered := make([]domain.Article, 0, len(articles))
		for _, a := range articles {
			if q.Filter.match(a) {
				filtered = append(filtered, a)
			}
		}
		articles = filtered
	}

	total := len(articles)
	start := total
	if q.Page-1 <= total/q.Limit {
		start = min((q.Page-1)*q.Limit, total)
	}
	end := min(start+q.Limit, total)
	return Page{
		Articles:   articles[start:end:end],
		Total:      total,
		Page:       q.Page,
		Limit:      q.Limit,
		TotalPages: (total + q.Limit - 1) / q.Limit,
		Cached:     cached,
		Timestamp:  snap.LastUpdated,
	}, nil
}

// CacheStatus возвращает сводку по текущему снимку кэша.
func (us *NewsGetterUseCase) CacheStatus() CacheStatus {
	snap := us.store.Load()
	unique := domain.UniqueSources(snap.Articles)
	return CacheStatus{
		LastUpdated:        snap.LastUpdated,
		TotalArticles:      len(snap.Articles),
		SourcesCount:       len(us.sources),
		UniqueSourcesCount: len(unique),
		Sources:            unique,
		NextUpdate:         snap.NextUpdate,
	}
}

// Sources возвращает копию списка настроенных лент.
func (us *NewsGetterUseCase) Sources() []domain.FeedSource {
	out := make([]domain.FeedSource, len(us.sources))
	copy(out, us.sources)
	return out
}

// Archived возвращает последние n статей из архива.
func (us *NewsGetterUseCase) Archived(ctx context.Context, n int) ([]domain.Article, error) {
	if us.archive == nil {
		return nil, ErrArchiveDisabled
	}
	return us.archive.RecentArticles(ctx, n)
}
