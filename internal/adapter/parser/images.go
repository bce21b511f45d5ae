package parser

import (
	"regexp"
	"strings"

	ext "github.com/mmcdole/gofeed/extensions"
)

// Порядок важен: первое совпадение побеждает.
var (
	imgSrcRe     = regexp.MustCompile(`(?i)<img[^>]+src=["']([^"'>]+)["']`)
	backgroundRe = regexp.MustCompile(`(?i)background-image:\s*url\(['"]?([^'")\s]+)['"]?\)`)
	dataSrcRe    = regexp.MustCompile(`(?i)<img[^>]+data-src=["']([^"'>]+)["']`)
	srcsetRe     = regexp.MustCompile(`(?i)<img[^>]+srcset=["']([^"'>]+)["']`)
)

// ExtractImageURL ищет в HTML-фрагменте первую ссылку на изображение:
// src тега img, CSS background-image, data-src для ленивой загрузки
// и первый URL из srcset. Возвращает пустую строку, если ничего не найдено.
func ExtractImageURL(content string) string {
	if content == "" {
		return ""
	}
	for _, re := range []*regexp.Regexp{imgSrcRe, backgroundRe, dataSrcRe} {
		if m := re.FindStringSubmatch(content); m != nil {
			return m[1]
		}
	}
	if m := srcsetRe.FindStringSubmatch(content); m != nil {
		first := strings.TrimSpace(strings.Split(m[1], ",")[0])
		if u := strings.Split(first, " ")[0]; u != "" {
			return u
		}
	}
	return ""
}

// mediaURL возвращает атрибут url первого элемента media:<name>.
func mediaURL(extensions ext.Extensions, name string) string {
	media, ok := extensions["media"]
	if !ok {
		return ""
	}
	for _, e := range media[name] {
		if u := strings.TrimSpace(e.Attrs["url"]); u != "" {
			return u
		}
	}
	return ""
}

func isImageType(mimeType string) bool {
	return strings.HasPrefix(strings.ToLower(strings.TrimSpace(mimeType)), "image/")
}
