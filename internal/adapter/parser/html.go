package parser

import (
	"regexp"
	"strings"
)

var (
	tagRe  = regexp.MustCompile(`<[^>]*>`)
	nbspRe = regexp.MustCompile(`&nbsp;`)
)

// StripHTML удаляет HTML-теги и заменяет &nbsp; пробелом.
// Это не санитайзер: остальные сущности и содержимое <script> не трогаются.
func StripHTML(s string) string {
	if s == "" {
		return ""
	}
	s = tagRe.ReplaceAllString(s, "")
	s = nbspRe.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}
