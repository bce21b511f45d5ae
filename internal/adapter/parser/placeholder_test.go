package parser

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPlaceholderPicker_ChurchThemedPrefersCurated(t *testing.T) {
	p := NewPlaceholderPicker(stubRand{f: 0.5, i: 3})
	assert.Equal(t, curatedImages[3], p.Pick("Catholic"))
}

func TestPlaceholderPicker_OtherCategoryUsesMap(t *testing.T) {
	p := NewPlaceholderPicker(stubRand{f: 0.5, i: 3})
	assert.Equal(t, categoryPlaceholders["music"], p.Pick("music"))
}

func TestPlaceholderPicker_OtherCategoryCuratedChance(t *testing.T) {
	p := NewPlaceholderPicker(stubRand{f: 0.1, i: 14})
	assert.Equal(t, curatedImages[14], p.Pick("finance"))
}

func TestPlaceholderPicker_UnknownCategoryFallsBackToDefault(t *testing.T) {
	p := NewPlaceholderPicker(stubRand{f: 0.99})
	assert.Equal(t, defaultPlaceholder, p.Pick("astronomy"))
}

func TestPlaceholderPicker_AlwaysKnownURL(t *testing.T) {
	known := KnownPlaceholderURLs()
	p := NewPlaceholderPicker(NewSeededRand(42))
	categories := []string{"church", "worship", "youth", "ministry", "world", "unknown", ""}

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				assert.Contains(t, known, p.Pick(categories[j%len(categories)]))
			}
		}()
	}
	wg.Wait()
}

func TestKnownPlaceholderURLs_Unique(t *testing.T) {
	urls := KnownPlaceholderURLs()
	seen := map[string]struct{}{}
	for _, u := range urls {
		_, dup := seen[u]
		assert.False(t, dup, u)
		seen[u] = struct{}{}
	}
	assert.Contains(t, urls, categoryPlaceholders["ministry"])
	for _, u := range curatedImages {
		assert.Contains(t, urls, u)
	}
}

func TestNewSeededRand_Deterministic(t *testing.T) {
	a, b := NewSeededRand(7), NewSeededRand(7)
	for i := 0; i < 5; i++ {
		assert.Equal(t, a.IntN(1000), b.IntN(1000))
	}
}
