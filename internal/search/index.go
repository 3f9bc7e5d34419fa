// Package search provides a small, deterministic, in-memory ranking of a
// user's cellar for free-text queries such as "barolo 2016" or "rose".
//
//   - No logging in the library (callers decide how/what to log)
//   - Accent- and case-insensitive tokenization (golang.org/x/text)
//   - Immutable after construction, safe for concurrent use
//   - Deterministic scoring and stable ordering for ties
//
// A wine matches when at least one query token appears in its name,
// producer, varietal, vintage, region, type or notes. Results are ranked by
// query coverage |Q ∩ W| / |Q|; ties are broken by Jaccard similarity
// |Q ∩ W| / |Q ∪ W| (tighter records first) and then by cellar order.
package search

import (
	"regexp"
	"sort"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/tbourn/go-cellar-backend/internal/domain"
)

// Result is a ranked wine id with its score in (0, 1].
type Result struct {
	ID    string  `json:"id"`
	Score float64 `json:"score"`
}

// Index is the minimal interface implemented by all search indices.
type Index interface {
	TopK(query string, k int) []Result
}

// ----------------------------------------------------------------------------
// Options

type Option func(*config)

type config struct {
	stopwords map[string]struct{}
	maxDocs   int
}

func defaultConfig() config {
	return config{}
}

// WithStopwords drops the given words from both documents and queries.
func WithStopwords(words []string) Option {
	return func(c *config) {
		m := make(map[string]struct{}, len(words))
		for _, w := range words {
			if w = fold(strings.TrimSpace(w)); w != "" {
				m[w] = struct{}{}
			}
		}
		if len(m) > 0 {
			c.stopwords = m
		}
	}
}

// WithMaxDocs caps how many wines are indexed.
func WithMaxDocs(n int) Option {
	return func(c *config) {
		if n > 0 {
			c.maxDocs = n
		}
	}
}

// ----------------------------------------------------------------------------
// Implementation

type doc struct {
	id     string
	tokens map[string]struct{}
}

type index struct {
	cfg  config
	docs []doc
}

// NewWineIndex indexes wines in the order given, which is also the final
// tie-breaker.
func NewWineIndex(wines []domain.Wine, opts ...Option) Index {
	cfg := defaultConfig()
	for _, o := range opts {
		o(&cfg)
	}
	docs := make([]doc, 0, len(wines))
	for _, w := range wines {
		toks := tokenize(wineText(w), cfg.stopwords)
		if len(toks) == 0 {
			continue
		}
		docs = append(docs, doc{id: w.ID, tokens: toks})
		if cfg.maxDocs > 0 && len(docs) >= cfg.maxDocs {
			break
		}
	}
	return &index{cfg: cfg, docs: docs}
}

func wineText(w domain.Wine) string {
	return strings.Join([]string{w.Name, w.Producer, w.Varietal, w.Vintage, w.Region, string(w.Type), w.Notes}, " ")
}

// TopK returns up to k best-matching wines. k <= 0 means 10.
func (i *index) TopK(q string, k int) []Result {
	if len(i.docs) == 0 || strings.TrimSpace(q) == "" {
		return nil
	}
	if k <= 0 {
		k = 10
	}
	qTokens := tokenize(q, i.cfg.stopwords)
	if len(qTokens) == 0 {
		return nil
	}
	qLen := len(qTokens)

	type scored struct {
		id       string
		coverage float64
		jaccard  float64
		pos      int
	}
	buf := make([]scored, 0, len(i.docs))
	for pos, d := range i.docs {
		over := overlap(qTokens, d.tokens)
		if over == 0 {
			continue
		}
		buf = append(buf, scored{
			id:       d.id,
			coverage: float64(over) / float64(qLen),
			jaccard:  float64(over) / float64(qLen+len(d.tokens)-over),
			pos:      pos,
		})
	}
	if len(buf) == 0 {
		return nil
	}

	sort.Slice(buf, func(a, b int) bool {
		if buf[a].coverage != buf[b].coverage {
			return buf[a].coverage > buf[b].coverage
		}
		if buf[a].jaccard != buf[b].jaccard {
			return buf[a].jaccard > buf[b].jaccard
		}
		return buf[a].pos < buf[b].pos
	})

	if k > len(buf) {
		k = len(buf)
	}
	out := make([]Result, k)
	for n := 0; n < k; n++ {
		out[n] = Result{ID: buf[n].id, Score: buf[n].coverage}
	}
	return out
}

// ----------------------------------------------------------------------------
// Helpers

var wordRE = regexp.MustCompile(`[\p{L}\p{N}]+`)

// fold lower-cases s and strips combining marks, so "Rosé" and "ROSE" share
// the token "rose".
func fold(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		out = s
	}
	return strings.ToLower(out)
}

func tokenize(s string, stop map[string]struct{}) map[string]struct{} {
	words := wordRE.FindAllString(fold(s), -1)
	if len(words) == 0 {
		return nil
	}
	out := make(map[string]struct{}, len(words))
	for _, w := range words {
		if stop != nil {
			if _, skip := stop[w]; skip {
				continue
			}
		}
		out[w] = struct{}{}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

func overlap(a, b map[string]struct{}) int {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	if len(a) > len(b) {
		a, b = b, a
	}
	n := 0
	for k := range a {
		if _, ok := b[k]; ok {
			n++
		}
	}
	return n
}
