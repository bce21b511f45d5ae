package diversity

import (
	"fmt"
	"sort"
	"testing"
	"time"

	"faithnews/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var base = time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)

// feed собирает входной список: counts задает число статей для каждого источника,
// статьи идут по убыванию даты, источники чередуются в порядке sources.
func feed(sources []string, counts map[string]int) []domain.Article {
	var out []domain.Article
	next := map[string]int{}
	for remaining := true; remaining; {
		remaining = false
		for _, src := range sources {
			if next[src] >= counts[src] {
				continue
			}
			next[src]++
			out = append(out, domain.Article{
				ID:      fmt.Sprintf("%s%d", src, next[src]),
				Source:  src,
				PubDate: base.Add(-time.Duration(len(out)) * time.Minute),
			})
			remaining = true
		}
	}
	return out
}

func ids(articles []domain.Article) []string {
	out := make([]string, len(articles))
	for i, a := range articles {
		out[i] = a.ID
	}
	return out
}

func distinctSources(articles []domain.Article) int {
	return len(domain.UniqueSources(articles))
}

// assertLongRunsOnlyAtTail проверяет, что серия из трех и более статей одного
// источника возможна только когда остальные источники уже исчерпаны.
func assertLongRunsOnlyAtTail(t *testing.T, out []domain.Article) {
	t.Helper()
	for i := 0; i+2 < len(out); i++ {
		src := out[i].Source
		if out[i+1].Source != src || out[i+2].Source != src {
			continue
		}
		for j := i + 1; j < len(out); j++ {
			require.Equal(t, src, out[j].Source,
				"run of %s at %d while other sources still pending (position %d)", src, i, j)
		}
		return
	}
}

func assertSameRelativeOrder(t *testing.T, in, out []domain.Article) {
	t.Helper()
	perSource := func(list []domain.Article) map[string][]string {
		m := map[string][]string{}
		for _, a := range list {
			m[a.Source] = append(m[a.Source], a.ID)
		}
		return m
	}
	assert.Equal(t, perSource(in), perSource(out))
}

func TestDistribute_Empty(t *testing.T) {
	out := Distribute(nil)
	assert.NotNil(t, out)
	assert.Empty(t, out)
}

func TestDistribute_Deterministic(t *testing.T) {
	sources := []string{"A", "B", "C", "D", "E"}
	in := feed(sources, map[string]int{"A": 7, "B": 3, "C": 5, "D": 1, "E": 4})

	assert.Equal(t, ids(Distribute(in)), ids(Distribute(in)))
}

func TestDistribute_Conservation(t *testing.T) {
	sources := []string{"A", "B", "C", "D", "E", "F", "G", "H", "I", "J", "K", "L", "M", "N"}
	counts := map[string]int{}
	for i, s := range sources {
		counts[s] = 1 + (i*7)%5
	}
	in := feed(sources, counts)

	out := Distribute(in)

	require.Len(t, out, len(in))
	got, want := ids(out), ids(in)
	sort.Strings(got)
	sort.Strings(want)
	assert.Equal(t, want, got)
	assertSameRelativeOrder(t, in, out)
}

func TestDistribute_DiversityWindow(t *testing.T) {
	var sources []string
	counts := map[string]int{}
	for i := 0; i < 20; i++ {
		s := fmt.Sprintf("S%02d", i)
		sources = append(sources, s)
		counts[s] = 3
	}
	// первые источники публикуют много, чтобы занять начало входного списка
	counts["S00"] = 30
	counts["S01"] = 30
	in := feed(sources, counts)

	out := Distribute(in)

	assert.GreaterOrEqual(t, distinctSources(out[:InitialWindow]), MinSources)
	for i := 0; i < MinSources; i++ {
		assert.Equal(t, sources[i], out[i].Source)
	}
}

func TestDistribute_FewerSourcesThanMinimum(t *testing.T) {
	sources := []string{"A", "B", "C"}
	in := feed(sources, map[string]int{"A": 10, "B": 10, "C": 10})

	out := Distribute(in)

	require.Len(t, out, 30)
	assert.Equal(t, []string{"A", "B", "C"}, domain.UniqueSources(out[:3]))
	assertLongRunsOnlyAtTail(t, out)
}

func TestDistribute_NoTripleWhileAlternativesExist(t *testing.T) {
	sources := []string{"A", "B", "C", "D"}
	in := feed(sources, map[string]int{"A": 6, "B": 6, "C": 6, "D": 9})

	out := Distribute(in)

	require.Len(t, out, len(in))
	assertLongRunsOnlyAtTail(t, out)
	// пока в очередях больше одного источника, подряд идут максимум два
	for i := 0; i+2 < 18; i++ {
		same := out[i].Source == out[i+1].Source && out[i+1].Source == out[i+2].Source
		assert.False(t, same, "triple at %d: %v", i, ids(out[i:i+3]))
	}
}

func TestDistribute_SingleSource(t *testing.T) {
	in := feed([]string{"X"}, map[string]int{"X": 9})

	out := Distribute(in)

	assert.Equal(t, ids(in), ids(out))
}

func TestDistribute_DominantSource(t *testing.T) {
	// 15 статей X и по одной у A..L: всего 27 статей от 13 источников.
	sources := []string{"X", "A", "B", "C", "D", "E", "F", "G", "H", "I", "J", "K", "L"}
	counts := map[string]int{"X": 15}
	for _, s := range sources[1:] {
		counts[s] = 1
	}
	in := feed(sources, counts)
	require.Len(t, in, 27)

	out := Distribute(in)

	require.Len(t, out, 27)
	window := out[:InitialWindow]
	assert.Equal(t, 13, distinctSources(window))
	assert.Equal(t, "X", out[0].Source)
	assert.Equal(t, []string{"X", "A", "B", "C", "D", "E", "F", "G", "H", "I", "J", "K"},
		sourcesOf(out[:MinSources]))
	assert.Contains(t, sourcesOf(window), "L")
	assertSameRelativeOrder(t, in, out)
	assertLongRunsOnlyAtTail(t, out)
}

func TestDistribute_ExampleFromFirstSeenOrder(t *testing.T) {
	sources := []string{"A", "B", "C", "D", "E", "F", "G", "H", "I", "J", "K", "L", "X"}
	counts := map[string]int{"X": 15}
	for _, s := range sources[:12] {
		counts[s] = 1
	}
	in := feed(sources, counts)

	out := Distribute(in)

	assert.Equal(t, sources[:12], sourcesOf(out[:12]))
	assert.Equal(t, 13, distinctSources(out[:InitialWindow]))
	for _, a := range out[12:] {
		assert.Equal(t, "X", a.Source)
	}
}

func sourcesOf(articles []domain.Article) []string {
	out := make([]string, len(articles))
	for i, a := range articles {
		out[i] = a.Source
	}
	return out
}

// seq строит статьи одного источника: src1..srcN.
func seq(src string, n int) []domain.Article {
	out := make([]domain.Article, n)
	for i := range out {
		out[i] = domain.Article{ID: fmt.Sprintf("%s%d", src, i+1), Source: src}
	}
	return out
}

func TestDistribute_ExactOrder(t *testing.T) {
	cases := []struct {
		name string
		in   []domain.Article
		want []string
	}{
		{
			name: "two equal sources",
			in:   append(seq("A", 3), seq("B", 3)...),
			want: []string{"A1", "B1", "A2", "B2", "A3", "B3"},
		},
		{
			name: "two sources of five",
			in:   append(seq("A", 5), seq("B", 5)...),
			want: []string{"A1", "B1", "A2", "B2", "A3", "A4", "B3", "A5", "B4", "B5"},
		},
		{
			name: "second source outlasts the first",
			in:   append(seq("A", 1), seq("B", 4)...),
			want: []string{"A1", "B1", "B2", "B3", "B4"},
		},
		{
			name: "cap reached with other queues empty",
			in:   append(append(seq("A", 4), seq("B", 1)...), seq("C", 1)...),
			want: []string{"A1", "B1", "C1", "A2", "A3", "A4"},
		},
		{
			name: "single source keeps order",
			in:   seq("A", 4),
			want: []string{"A1", "A2", "A3", "A4"},
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, ids(Distribute(tc.in)))
		})
	}
}

func TestDistribute_RunCappedAtTwoWhileOtherSourcePending(t *testing.T) {
	out := Distribute(append(seq("A", 5), seq("B", 5)...))

	for i := 0; i+2 < len(out); i++ {
		triple := out[i].Source == out[i+1].Source && out[i+1].Source == out[i+2].Source
		assert.False(t, triple, "triple at %d: %v", i, ids(out[i:i+3]))
	}
}
