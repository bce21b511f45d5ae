package domain

import "time"

// FeedSource описывает настроенную RSS/Atom-ленту с категорией контента.
// Список источников задаётся конфигурацией и не меняется во время работы.
type FeedSource struct {
	Name     string `json:"name" yaml:"name"`
	URL      string `json:"url" yaml:"url"`
	Category string `json:"category" yaml:"category"`
}

// Article представляет нормализованную статью из ленты.
// ID уникален только в пределах одного цикла обновления кэша.
type Article struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Link        string    `json:"link"`
	PubDate     time.Time `json:"pubDate"`
	Source      string    `json:"source"`
	Category    string    `json:"category"`
	ImageURL    string    `json:"imageUrl"`
	Author      string    `json:"author,omitempty"`
}

// UniqueSources возвращает имена источников в порядке первого появления.
func UniqueSources(articles []Article) []string {
	seen := make(map[string]struct{}, len(articles))
	sources := make([]string, 0)
	for _, a := range articles {
		if _, ok := seen[a.Source]; ok {
			continue
		}
		seen[a.Source] = struct{}{}
		sources = append(sources, a.Source)
	}
	return sources
}
