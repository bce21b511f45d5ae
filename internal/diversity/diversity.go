// Package diversity переупорядочивает статьи так, чтобы первые страницы
// ленты содержали материалы как можно большего числа источников.
package diversity

import "faithnews/internal/domain"

const (
	// MinSources - сколько разных источников гарантированно попадает в начало выдачи.
	MinSources = 12
	// InitialWindow - размер окна в начале выдачи, для которого действует MinSources.
	InitialWindow = 24
	// MaxConsecutive - максимум статей одного источника подряд, пока есть альтернатива.
	MaxConsecutive = 2
)

// Distribute возвращает статьи в порядке, чередующем источники.
//
// Вход должен быть отсортирован по дате публикации по убыванию. Статьи одного
// источника выдаются в исходном относительном порядке. Источники перебираются
// в порядке первого появления, каждый шаг начинает перебор с первого источника.
// Если подряд может идти только один источник, ограничение MaxConsecutive
// сбрасывается. Результат детерминирован и имеет ту же длину, что и вход.
func Distribute(articles []domain.Article) []domain.Article {
	if len(articles) == 0 {
		return []domain.Article{}
	}
	d := newDistributor(articles)

	for _, src := range d.order[:min(MinSources, len(d.order))] {
		d.pop(src)
		d.counts[src] = 1
	}

	window := min(InitialWindow, len(articles))
	for len(d.out) < window && d.step() {
	}
	for d.step() {
	}
	return d.out
}

type distributor struct {
	order  []string
	queues map[string][]domain.Article
	counts map[string]int
	out    []domain.Article
}

func newDistributor(articles []domain.Article) *distributor {
	d := &distributor{
		order:  domain.UniqueSources(articles),
		queues: make(map[string][]domain.Article),
		counts: make(map[string]int),
		out:    make([]domain.Article, 0, len(articles)),
	}
	for _, a := range articles {
		d.queues[a.Source] = append(d.queues[a.Source], a)
	}
	return d
}

// step добавляет в выдачу одну статью и возвращает false, когда все очереди пусты.
func (d *distributor) step() bool {
	for _, src := range d.order {
		if len(d.queues[src]) > 0 && d.counts[src] < MaxConsecutive {
			d.take(src)
			return true
		}
	}
	// Остались только источники, упершиеся в лимит: сбрасываем счетчики.
	for src := range d.counts {
		d.counts[src] = 0
	}
	for _, src := range d.order {
		if len(d.queues[src]) > 0 {
			d.take(src)
			return true
		}
	}
	return false
}

func (d *distributor) pop(src string) {
	q := d.queues[src]
	d.out = append(d.out, q[0])
	d.queues[src] = q[1:]
}

// take выдает статью источника, продлевает его серию и обнуляет серии остальных источников.
func (d *distributor) take(src string) {
	d.pop(src)
	run := d.counts[src] + 1
	for other := range d.counts {
		d.counts[other] = 0
	}
	d.counts[src] = run
}
