// Package cache хранит текущий снимок распределенной ленты статей.
package cache

import (
	"sync/atomic"
	"time"

	"faithnews/internal/domain"
)

// Snapshot - неизменяемое состояние кэша после одного цикла обновления.
// Снимок нельзя менять после публикации: читатели получают его без копирования.
type Snapshot struct {
	Articles    []domain.Article
	LastUpdated time.Time
	NextUpdate  time.Time
}

// Empty сообщает, что в снимке нет статей.
func (s *Snapshot) Empty() bool {
	return s == nil || len(s.Articles) == 0
}

// Store хранит указатель на текущий снимок. Замена снимка атомарна:
// читатель видит либо старый, либо новый снимок целиком.
type Store struct {
	current atomic.Pointer[Snapshot]
}

// New создает пустой кэш. До первого Replace Load возвращает пустой снимок.
func New() *Store {
	s := &Store{}
	s.current.Store(&Snapshot{Articles: []domain.Article{}})
	return s
}

// Load возвращает текущий снимок.
func (s *Store) Load() *Snapshot {
	return s.current.Load()
}

// Replace публикует результат цикла обновления. Если цикл не дал ни одной статьи,
// прежние статьи сохраняются, а обновляются только отметки времени.
// Возвращает опубликованный снимок и признак того, что статьи были заменены.
func (s *Store) Replace(articles []domain.Article, updatedAt, nextUpdate time.Time) (*Snapshot, bool) {
	for {
		prev := s.current.Load()
		next := &Snapshot{
			Articles:    articles,
			LastUpdated: updatedAt,
			NextUpdate:  nextUpdate,
		}
		replaced := len(articles) > 0
		if !replaced {
			next.Articles = prev.Articles
		}
		if s.current.CompareAndSwap(prev, next) {
			return next, replaced
		}
	}
}
