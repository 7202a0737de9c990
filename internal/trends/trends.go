// Package trends implements the daily trending-keyword pipeline: a
// date-keyed cache in front of a "aggregate raw text, extract keywords with
// the model" run over the configured trend sources.
package trends

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/mindbloom-labs/research_agent/internal/llm"
	"github.com/mindbloom-labs/research_agent/internal/logger"
)

// SourceNames are the trend sources scanned on a cache miss, in scan order.
var SourceNames = []string{"google_trends", "reddit", "youtube", "tumblr"}

// interestSource is the one source whose rows carry a numeric interest
// figure worth thresholding.
const interestSource = "google_trends"

// cacheDay is evaluated in a fixed timezone so the cache key does not drift
// with the host clock.
const cacheTimezone = "Asia/Singapore"

const (
	defaultWindowDays    = 30
	defaultMinInterest   = 20
	defaultRawTextBudget = 10000

	recordDelimiter = "\n---\n"
)

// Entry is one raw trend row.
type Entry struct {
	Keyword  string
	Interest int
	PostedAt time.Time
}

// SourceReader fetches the raw rows of one trend source.
type SourceReader interface {
	ReadEntries(ctx context.Context, source string) ([]Entry, error)
}

// CacheStore is the date-keyed keyword cache. ReadEntry returns the stored
// comma-joined string for day, or "" when no entry exists.
type CacheStore interface {
	ReadEntry(ctx context.Context, day string) (string, error)
	WriteEntry(ctx context.Context, day string, keywords string) error
}

// Options tunes the pipeline. Zero values take the defaults.
type Options struct {
	WindowDays    int
	MinInterest   int
	RawTextBudget int
}

func (o Options) withDefaults() Options {
	if o.WindowDays <= 0 {
		o.WindowDays = defaultWindowDays
	}
	if o.MinInterest <= 0 {
		o.MinInterest = defaultMinInterest
	}
	if o.RawTextBudget <= 0 {
		o.RawTextBudget = defaultRawTextBudget
	}
	return o
}

// Pipeline produces the day's trending keywords.
type Pipeline struct {
	store  CacheStore
	reader SourceReader
	gen    llm.Generator
	opts   Options
	loc    *time.Location

	// now is swappable in tests.
	now func() time.Time
}

// NewPipeline wires the pipeline from its collaborators.
func NewPipeline(store CacheStore, reader SourceReader, gen llm.Generator, opts Options) *Pipeline {
	loc, err := time.LoadLocation(cacheTimezone)
	if err != nil {
		loc = time.UTC
	}
	return &Pipeline{
		store:  store,
		reader: reader,
		gen:    gen,
		opts:   opts.withDefaults(),
		loc:    loc,
		now:    time.Now,
	}
}

const trendsSystemPrompt = "You extract keyword lists. Reply with a single comma-separated line and nothing else. No prose, no numbering."

const trendsPromptTpl = `The following are raw trending posts and search terms collected over the last %d days. Extract the 10-15 most prominent keywords or themes.

Rules:
- comma-separated, single line
- lower-case
- no duplicates, no prose

Raw data:
%s`

// TrendingKeywords returns today's keyword list. It is total: any failure
// degrades to an empty list, which callers treat as "use a generic fallback
// set". On a cache hit neither the trend sources nor the model are touched.
func (p *Pipeline) TrendingKeywords(ctx context.Context) []string {
	day := p.today()

	cached, err := p.store.ReadEntry(ctx, day)
	if err != nil {
		logger.Log.Warnf("keyword cache read failed: %v", err)
	} else if cached != "" {
		logger.Log.Infof("keyword cache hit for %s", day)
		return splitKeywords(cached)
	}

	block := p.collectRawText(ctx)
	if block == "" {
		logger.Log.Warn("no usable trend data found, returning empty keyword list")
		return []string{}
	}
	if len(block) > p.opts.RawTextBudget {
		block = block[:p.opts.RawTextBudget]
	}

	reply, err := p.gen.Generate(ctx, trendsSystemPrompt, fmt.Sprintf(trendsPromptTpl, p.opts.WindowDays, block))
	if err != nil {
		logger.Log.Errorf("keyword extraction failed: %v", err)
		return []string{}
	}

	keywords := splitKeywords(reply)
	if len(keywords) == 0 {
		return []string{}
	}

	// Last-writer-wins upsert; the cached content is derived, so a racing
	// same-day writer is harmless.
	if err := p.store.WriteEntry(ctx, day, strings.Join(keywords, ",")); err != nil {
		logger.Log.Warnf("keyword cache write failed: %v", err)
	}

	return keywords
}

// collectRawText scans every configured source, keeps rows inside the
// window (and above the interest bar where that applies), and joins their
// text fields with explicit record delimiters. Per-source failures skip
// that source only.
func (p *Pipeline) collectRawText(ctx context.Context) string {
	cutoff := p.now().In(p.loc).AddDate(0, 0, -p.opts.WindowDays)

	var texts []string
	for _, source := range SourceNames {
		entries, err := p.reader.ReadEntries(ctx, source)
		if err != nil {
			logger.Log.Warnf("could not read trend source %q, skipping: %v", source, err)
			continue
		}

		for _, e := range entries {
			if e.Keyword == "" || e.PostedAt.Before(cutoff) {
				continue
			}
			if source == interestSource && e.Interest < p.opts.MinInterest {
				continue
			}
			texts = append(texts, e.Keyword)
		}
	}

	return strings.Join(texts, recordDelimiter)
}

// splitKeywords normalizes a comma-joined keyword string into a sorted,
// deduplicated, lower-cased list.
func splitKeywords(s string) []string {
	seen := make(map[string]bool)
	var keywords []string
	for _, part := range strings.Split(s, ",") {
		kw := strings.ToLower(strings.TrimSpace(part))
		if kw == "" || seen[kw] {
			continue
		}
		seen[kw] = true
		keywords = append(keywords, kw)
	}
	sort.Strings(keywords)
	if keywords == nil {
		return []string{}
	}
	return keywords
}

func (p *Pipeline) today() string {
	return p.now().In(p.loc).Format(time.DateOnly)
}
