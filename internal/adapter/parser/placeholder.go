package parser

import (
	"math/rand/v2"
	"strings"
	"sync"
	"time"
)

// Rand - источник случайности для выбора заглушек.
// В тестах подменяется детерминированной реализацией.
type Rand interface {
	Float64() float64
	IntN(n int) int
}

const (
	churchThemedChance = 0.7
	curatedChance      = 0.3
)

var curatedImages = []string{
	"https://images.unsplash.com/photo-1507003211169-0a1dd7228f2d?w=800&h=400&fit=crop",
	"https://images.unsplash.com/photo-1522202176988-66273c2fd55f?w=800&h=400&fit=crop",
	"https://images.unsplash.com/photo-1511895426328-dc8714191300?w=800&h=400&fit=crop",
	"https://images.unsplash.com/photo-1506905925346-21bda4d32df4?w=800&h=400&fit=crop",
	"https://images.unsplash.com/photo-1516280440614-37939bbacd81?w=800&h=400&fit=crop",
	"https://images.unsplash.com/photo-1486406146926-c627a92ad1ab?w=800&h=400&fit=crop",
	"https://images.unsplash.com/photo-1557804506-669a67965ba0?w=800&h=400&fit=crop",
	"https://images.unsplash.com/photo-1576091160399-112ba8d25d1f?w=800&h=400&fit=crop",
	"https://images.unsplash.com/photo-1554224155-6726b3ff858f?w=800&h=400&fit=crop",
	"https://images.unsplash.com/photo-1542810634-71277d95dcbb?w=800&h=400&fit=crop",
	"https://images.unsplash.com/photo-1489599849927-2ee91cede3ba?w=800&h=400&fit=crop",
	"https://images.unsplash.com/photo-1582213782179-e0d53f98f2ca?w=800&h=400&fit=crop",
	"https://images.unsplash.com/photo-1493225457124-a3eb161ffa5f?w=800&h=400&fit=crop",
	"https://images.unsplash.com/photo-1449824913935-59a10b8d2000?w=800&h=400&fit=crop",
	"https://images.unsplash.com/photo-1504711434969-e33886168f5c?w=800&h=400&fit=crop",
}

const defaultPlaceholder = "https://images.unsplash.com/photo-1507003211169-0a1dd7228f2d?w=800&h=400&fit=crop"

var categoryPlaceholders = map[string]string{
	"church":            defaultPlaceholder,
	"ministry":          "/images/ministry-placeholder.png",
	"youth":             "https://images.unsplash.com/photo-1522202176988-66273c2fd55f?w=800&h=400&fit=crop",
	"family":            "https://images.unsplash.com/photo-1511895426328-dc8714191300?w=800&h=400&fit=crop",
	"missions":          "https://images.unsplash.com/photo-1506905925346-21bda4d32df4?w=800&h=400&fit=crop",
	"worship":           "https://images.unsplash.com/photo-1516280440614-37939bbacd81?w=800&h=400&fit=crop",
	"world":             "https://images.unsplash.com/photo-1486406146926-c627a92ad1ab?w=800&h=400&fit=crop",
	"us":                defaultPlaceholder,
	"politics":          "https://images.unsplash.com/photo-1557804506-669a67965ba0?w=800&h=400&fit=crop",
	"health":            "https://images.unsplash.com/photo-1576091160399-112ba8d25d1f?w=800&h=400&fit=crop",
	"finance":           "https://images.unsplash.com/photo-1554224155-6726b3ff858f?w=800&h=400&fit=crop",
	"israel":            "https://images.unsplash.com/photo-1542810634-71277d95dcbb?w=800&h=400&fit=crop",
	"entertainment":     "https://images.unsplash.com/photo-1489599849927-2ee91cede3ba?w=800&h=400&fit=crop",
	"faith":             defaultPlaceholder,
	"social-justice":    "https://images.unsplash.com/photo-1582213782179-e0d53f98f2ca?w=800&h=400&fit=crop",
	"music":             "https://images.unsplash.com/photo-1493225457124-a3eb161ffa5f?w=800&h=400&fit=crop",
	"catholic":          defaultPlaceholder,
	"regional":          "https://images.unsplash.com/photo-1449824913935-59a10b8d2000?w=800&h=400&fit=crop",
	"teaching":          defaultPlaceholder,
	"lifestyle":         "https://images.unsplash.com/photo-1511895426328-dc8714191300?w=800&h=400&fit=crop",
	"orthodox":          defaultPlaceholder,
	"news":              "https://images.unsplash.com/photo-1504711434969-e33886168f5c?w=800&h=400&fit=crop",
	"research":          defaultPlaceholder,
	"apologetics":       defaultPlaceholder,
	"pentecostal":       defaultPlaceholder,
	"methodist":         defaultPlaceholder,
	"episcopal":         defaultPlaceholder,
	"lutheran":          defaultPlaceholder,
	"ucc":               defaultPlaceholder,
	"adventist":         defaultPlaceholder,
	"theology":          defaultPlaceholder,
	"prayer":            defaultPlaceholder,
	"bible-study":       defaultPlaceholder,
	"orphan-care":       defaultPlaceholder,
	"culture":           defaultPlaceholder,
	"spiritual-warfare": defaultPlaceholder,
	"writing":           defaultPlaceholder,
	"default":           defaultPlaceholder,
}

var churchThemed = map[string]struct{}{
	"church": {}, "catholic": {}, "orthodox": {}, "methodist": {}, "episcopal": {},
	"lutheran": {}, "ucc": {}, "adventist": {}, "pentecostal": {}, "faith": {},
	"prayer": {}, "bible-study": {}, "theology": {}, "worship": {},
}

// KnownPlaceholderURLs возвращает все адреса, которые может выдать PlaceholderPicker.
func KnownPlaceholderURLs() []string {
	seen := make(map[string]struct{}, len(curatedImages)+len(categoryPlaceholders))
	urls := make([]string, 0, len(curatedImages)+len(categoryPlaceholders))
	add := func(u string) {
		if _, ok := seen[u]; !ok {
			seen[u] = struct{}{}
			urls = append(urls, u)
		}
	}
	for _, u := range curatedImages {
		add(u)
	}
	for _, u := range categoryPlaceholders {
		add(u)
	}
	return urls
}

// PlaceholderPicker подбирает картинку-заглушку для статьи без изображения.
// Результат намеренно случаен: для одной категории возможны разные адреса.
type PlaceholderPicker struct {
	rnd Rand
}

// NewPlaceholderPicker создает подборщик заглушек с источником случайности rnd.
// В тестах rnd подменяется детерминированной реализацией.
func NewPlaceholderPicker(rnd Rand) *PlaceholderPicker {
	return &PlaceholderPicker{rnd: rnd}
}

// Pick выбирает заглушку для категории.
// Для церковных категорий подборка фотографий выпадает с вероятностью 0.7,
// для остальных с вероятностью 0.3; иначе используется картинка категории.
func (p *PlaceholderPicker) Pick(category string) string {
	category = strings.ToLower(strings.TrimSpace(category))
	if _, ok := churchThemed[category]; ok && p.rnd.Float64() < churchThemedChance {
		return curatedImages[p.rnd.IntN(len(curatedImages))]
	}
	if p.rnd.Float64() < curatedChance {
		return curatedImages[p.rnd.IntN(len(curatedImages))]
	}
	if u, ok := categoryPlaceholders[category]; ok {
		return u
	}
	return categoryPlaceholders["default"]
}

// lockedRand делает *rand.Rand безопасным для одновременного использования
// из горутин загрузки лент.
type lockedRand struct {
	mu  sync.Mutex
	rnd *rand.Rand
}

// NewSeededRand создает потокобезопасный генератор. Нулевой seed заменяется текущим временем.
func NewSeededRand(seed int64) Rand {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &lockedRand{rnd: rand.New(rand.NewPCG(uint64(seed), uint64(seed)>>1))}
}

func (r *lockedRand) Float64() float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rnd.Float64()
}

func (r *lockedRand) IntN(n int) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rnd.IntN(n)
}
