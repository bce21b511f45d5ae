package parser

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"time"

	"faithnews/internal/domain"

	"github.com/google/uuid"
	"github.com/mmcdole/gofeed"
	"github.com/mmcdole/gofeed/atom"
	"github.com/mmcdole/gofeed/rss"
)

const (
	// NoTitle подставляется, когда у элемента нет заголовка.
	// Элементы с таким заголовком отбрасываются, даже если он настоящий.
	NoTitle       = "No Title"
	NoDescription = "No description available"
	NoLink        = "#"
)

type itemKind int

const (
	kindRSS itemKind = iota + 1
	kindAtom
)

// rawItem - элемент ленты в исходном виде: либо RSS item, либо Atom entry.
// Разбор по формату происходит один раз, в normalize.
type rawItem struct {
	kind itemKind
	rss  *rss.Item
	atom *atom.Entry
}

// entry - элемент ленты, приведенный к общему виду до применения значений по умолчанию.
type entry struct {
	title       string
	description string
	summary     string
	content     string
	link        string
	id          string
	published   *time.Time
	rawDate     string
	author      string
	media       string
	thumbnail   string
	enclosure   string
}

// FeedParser разбирает тело RSS 2.0 или Atom ленты в список статей.
type FeedParser struct {
	log          *slog.Logger
	placeholders *PlaceholderPicker
	now          func() time.Time
}

// NewFeedParser создает парсер лент.
// placeholders подбирает картинку для статей, в которых изображение не найдено.
func NewFeedParser(log *slog.Logger, placeholders *PlaceholderPicker) *FeedParser {
	return &FeedParser{
		log:          log,
		placeholders: placeholders,
		now:          time.Now,
	}
}

// Parse определяет формат ленты и возвращает нормализованные статьи источника.
// Документ, не являющийся RSS или Atom, дает пустой список без ошибки;
// синтаксически битый XML возвращает ошибку.
func (p *FeedParser) Parse(ctx context.Context, source domain.FeedSource, body []byte) ([]domain.Article, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	log := p.log.With(slog.String("component", "parser"), slog.String("feed", source.Name))

	items, err := decode(body)
	if err != nil {
		return nil, fmt.Errorf("failed to parse feed %s: %w", source.Name, err)
	}
	if len(items) == 0 {
		log.Debug("Feed has no items")
		return []domain.Article{}, nil
	}

	fetchedAt := p.now()
	idPrefix := fmt.Sprintf("%s-%d", slugify(source.Name), fetchedAt.UnixMilli())
	articles := make([]domain.Article, 0, len(items))
	skipped := 0
	for _, item := range items {
		article, ok := p.toArticle(item.normalize(), source, fetchedAt)
		if !ok {
			skipped++
			continue
		}
		article.ID = idPrefix + "-" + uuid.NewString()
		articles = append(articles, article)
	}
	if skipped > 0 {
		log.Debug("Skipped items without title or link", slog.Int("skipped", skipped))
	}
	return articles, nil
}

// decode выбирает парсер по корневому элементу документа.
func decode(body []byte) ([]rawItem, error) {
	switch gofeed.DetectFeedType(bytes.NewReader(body)) {
	case gofeed.FeedTypeRSS:
		feed, err := (&rss.Parser{}).Parse(bytes.NewReader(body))
		if err != nil {
			return nil, err
		}
		items := make([]rawItem, 0, len(feed.Items))
		for _, it := range feed.Items {
			items = append(items, rawItem{kind: kindRSS, rss: it})
		}
		return items, nil
	case gofeed.FeedTypeAtom:
		feed, err := (&atom.Parser{}).Parse(bytes.NewReader(body))
		if err != nil {
			return nil, err
		}
		items := make([]rawItem, 0, len(feed.Entries))
		for _, e := range feed.Entries {
			items = append(items, rawItem{kind: kindAtom, atom: e})
		}
		return items, nil
	default:
		return nil, nil
	}
}

func (r rawItem) normalize() entry {
	switch r.kind {
	case kindRSS:
		return normalizeRSS(r.rss)
	case kindAtom:
		return normalizeAtom(r.atom)
	default:
		return entry{}
	}
}

func normalizeRSS(it *rss.Item) entry {
	e := entry{
		title:       it.Title,
		description: it.Description,
		content:     it.Content,
		link:        first(append([]string{it.Link}, it.Links...)...),
		published:   it.PubDateParsed,
		rawDate:     it.PubDate,
		author:      it.Author,
		media:       mediaURL(it.Extensions, "content"),
		thumbnail:   mediaURL(it.Extensions, "thumbnail"),
	}
	if dc := it.DublinCoreExt; dc != nil {
		if e.author == "" && len(dc.Creator) > 0 {
			e.author = first(dc.Creator...)
		}
		if e.rawDate == "" && len(dc.Date) > 0 {
			e.rawDate = first(dc.Date...)
		}
	}
	enclosures := it.Enclosures
	if len(enclosures) == 0 && it.Enclosure != nil {
		enclosures = []*rss.Enclosure{it.Enclosure}
	}
	for _, enc := range enclosures {
		if enc != nil && isImageType(enc.Type) && enc.URL != "" {
			e.enclosure = enc.URL
			break
		}
	}
	return e
}

func normalizeAtom(it *atom.Entry) entry {
	e := entry{
		title:     it.Title,
		summary:   it.Summary,
		id:        it.ID,
		published: it.PublishedParsed,
		rawDate:   first(it.Published, it.Updated),
		media:     mediaURL(it.Extensions, "content"),
		thumbnail: mediaURL(it.Extensions, "thumbnail"),
	}
	if e.published == nil {
		e.published = it.UpdatedParsed
	}
	if it.Content != nil {
		e.content = it.Content.Value
	}
	for _, a := range it.Authors {
		if a != nil && strings.TrimSpace(a.Name) != "" {
			e.author = a.Name
			break
		}
	}
	var alternate, fallback string
	for _, l := range it.Links {
		if l == nil || l.Href == "" {
			continue
		}
		switch l.Rel {
		case "", "alternate":
			if alternate == "" {
				alternate = l.Href
			}
		case "enclosure":
			if e.enclosure == "" && isImageType(l.Type) {
				e.enclosure = l.Href
			}
		}
		if fallback == "" {
			fallback = l.Href
		}
	}
	e.link = first(alternate, fallback)
	return e
}

// toArticle применяет значения по умолчанию и отбрасывает элементы без заголовка или ссылки.
func (p *FeedParser) toArticle(e entry, source domain.FeedSource, fetchedAt time.Time) (domain.Article, bool) {
	title := first(e.title, NoTitle)
	description := first(e.description, e.summary, e.content, NoDescription)
	link := first(e.link, e.id, NoLink)

	cleanTitle := StripHTML(title)
	if title == NoTitle || cleanTitle == "" || link == NoLink {
		return domain.Article{}, false
	}

	pubDate := fetchedAt
	if e.published != nil {
		pubDate = *e.published
	} else if t, err := parsePubDate(e.rawDate); err == nil {
		pubDate = t
	}

	imageURL := first(
		e.media,
		e.thumbnail,
		e.enclosure,
		ExtractImageURL(e.content),
		ExtractImageURL(description),
	)
	if imageURL == "" {
		imageURL = p.placeholders.Pick(source.Category)
	}

	return domain.Article{
		Title:       cleanTitle,
		Description: StripHTML(description),
		Link:        strings.TrimSpace(link),
		PubDate:     pubDate,
		Source:      source.Name,
		Category:    source.Category,
		ImageURL:    imageURL,
		Author:      StripHTML(e.author),
	}, true
}

// first возвращает первое непустое значение после обрезки пробелов.
func first(values ...string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}

var nonSlugRe = regexp.MustCompile(`[^a-z0-9]+`)

func slugify(name string) string {
	s := strings.Trim(nonSlugRe.ReplaceAllString(strings.ToLower(name), "-"), "-")
	if s == "" {
		return "feed"
	}
	return s
}

// parsePubDate разбирает дату, которую gofeed не смог распознать сам.
func parsePubDate(dateStr string) (time.Time, error) {
	dateStr = strings.TrimSpace(dateStr)
	if dateStr == "" {
		return time.Time{}, fmt.Errorf("empty date")
	}
	formats := []string{
		time.RFC1123Z,
		time.RFC1123,
		time.RFC822Z,
		time.RFC822,
		time.RFC3339,
		"Mon, 2 Jan 2006 15:04:05 -0700",
		"2006-01-02T15:04:05",
		"2006-01-02",
	}
	for _, format := range formats {
		if t, err := time.Parse(format, dateStr); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("could not parse date in any known format: %q", dateStr)
}
