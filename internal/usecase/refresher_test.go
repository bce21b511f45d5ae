package usecase

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"faithnews/internal/cache"
	"faithnews/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var t0 = time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)

type everySchedule time.Duration

func (e everySchedule) Next(t time.Time) time.Time { return t.Add(time.Duration(e)) }

type stubCollector struct {
	mu      sync.Mutex
	batches [][]domain.Article
	calls   atomic.Int32
	gate    chan struct{}
}

func (s *stubCollector) FetchAll(ctx context.Context, sources []domain.FeedSource) []domain.Article {
	s.calls.Add(1)
	if s.gate != nil {
		<-s.gate
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.batches) == 0 {
		return nil
	}
	next := s.batches[0]
	s.batches = s.batches[1:]
	return next
}

type memArchive struct {
	mu    sync.Mutex
	saved []domain.Article
	err   error
}

func (m *memArchive) SaveArticles(ctx context.Context, articles []domain.Article) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return 0, m.err
	}
	m.saved = append(m.saved, articles...)
	return len(articles), nil
}

func (m *memArchive) RecentArticles(ctx context.Context, n int) ([]domain.Article, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.saved[:min(n, len(m.saved))], nil
}

func art(id, source string, age time.Duration) domain.Article {
	return domain.Article{ID: id, Title: id, Link: "https://x/" + id, Source: source, Category: "church", PubDate: t0.Add(-age)}
}

func newTestRefresher(c ArticleCollector, archive ArticleArchive) (*RefreshUseCase, *cache.Store) {
	store := cache.New()
	r := NewRefreshUseCase(c, []domain.FeedSource{{Name: "A"}, {Name: "B"}}, store, everySchedule(5*time.Minute), archive, discardLogger())
	r.now = func() time.Time { return t0 }
	return r, store
}

func TestRefresh_SortsAndDistributes(t *testing.T) {
	collector := &stubCollector{batches: [][]domain.Article{{
		art("a-old", "A", 3*time.Hour),
		art("b-new", "B", time.Minute),
		art("a-new", "A", 2*time.Minute),
		art("a-mid", "A", time.Hour),
	}}}
	r, store := newTestRefresher(collector, nil)

	res, err := r.Refresh(context.Background())

	require.NoError(t, err)
	assert.True(t, res.Replaced)
	assert.Equal(t, 4, res.Fetched)
	got := make([]string, 0, 4)
	for _, a := range store.Load().Articles {
		got = append(got, a.ID)
	}
	// b-new новее всех, поэтому B первым попадает в порядок источников
	assert.Equal(t, []string{"b-new", "a-new", "a-mid", "a-old"}, got)
	assert.Equal(t, t0, store.Load().LastUpdated)
	assert.Equal(t, t0.Add(5*time.Minute), store.Load().NextUpdate)
}

func TestRefresh_EmptyCycleKeepsPreviousArticles(t *testing.T) {
	collector := &stubCollector{batches: [][]domain.Article{
		{art("a1", "A", time.Minute)},
		nil,
	}}
	archive := &memArchive{}
	r, store := newTestRefresher(collector, archive)

	_, err := r.Refresh(context.Background())
	require.NoError(t, err)
	before := store.Load().Articles

	later := t0.Add(5 * time.Minute)
	r.now = func() time.Time { return later }
	res, err := r.Refresh(context.Background())

	require.NoError(t, err)
	assert.False(t, res.Replaced)
	assert.Equal(t, 0, res.Fetched)
	assert.Equal(t, before, store.Load().Articles)
	assert.Equal(t, later, store.Load().LastUpdated)
	assert.Equal(t, later.Add(5*time.Minute), store.Load().NextUpdate)
	assert.Len(t, archive.saved, 1, "empty cycle must not touch the archive")
}

func TestRefresh_ArchiveFailureDoesNotBreakCycle(t *testing.T) {
	collector := &stubCollector{batches: [][]domain.Article{{art("a1", "A", time.Minute)}}}
	r, store := newTestRefresher(collector, &memArchive{err: errors.New("db down")})

	res, err := r.Refresh(context.Background())

	require.NoError(t, err)
	assert.True(t, res.Replaced)
	assert.Len(t, store.Load().Articles, 1)
}

func TestRefresh_CoalescesConcurrentCalls(t *testing.T) {
	collector := &stubCollector{
		batches: [][]domain.Article{{art("a1", "A", time.Minute)}},
		gate:    make(chan struct{}),
	}
	r, _ := newTestRefresher(collector, nil)

	var wg sync.WaitGroup
	results := make([]RefreshResult, 3)
	for i := range results {
		wg.Add(1)
		go func() {
			defer wg.Done()
			res, err := r.Refresh(context.Background())
			assert.NoError(t, err)
			results[i] = res
		}()
	}
	require.Eventually(t, func() bool { return collector.calls.Load() == 1 }, time.Second, 5*time.Millisecond)
	// даем остальным вызовам время присоединиться к идущему циклу
	time.Sleep(50 * time.Millisecond)
	close(collector.gate)
	wg.Wait()

	assert.Equal(t, int32(1), collector.calls.Load())
	for _, res := range results {
		assert.Equal(t, 1, res.Fetched)
	}
}

func TestRefresh_CancelledContext(t *testing.T) {
	collector := &stubCollector{}
	r, _ := newTestRefresher(collector, nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := r.Refresh(ctx)

	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, int32(0), collector.calls.Load())
}

type hangingArchive struct {
	memArchive
}

func (h *hangingArchive) SaveArticles(ctx context.Context, articles []domain.Article) (int, error) {
	<-ctx.Done()
	return 0, ctx.Err()
}

func TestRefresh_ArchiveTimeoutBoundsCycle(t *testing.T) {
	collector := &stubCollector{batches: [][]domain.Article{{art("a1", "A", time.Minute)}}}
	r, store := newTestRefresher(collector, &hangingArchive{})
	r.archiveTimeout = 50 * time.Millisecond

	done := make(chan struct{})
	go func() {
		defer close(done)
		res, err := r.Refresh(context.Background())
		assert.NoError(t, err)
		assert.True(t, res.Replaced)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("refresh did not return while the archive hung")
	}
	assert.Len(t, store.Load().Articles, 1)
}
