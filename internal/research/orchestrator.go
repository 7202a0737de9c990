package research

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/mindbloom-labs/research_agent/internal/llm"
	"github.com/mindbloom-labs/research_agent/internal/logger"
	"github.com/mindbloom-labs/research_agent/internal/scraper"
	"github.com/mindbloom-labs/research_agent/internal/search"
)

// NoResearchSummary is returned when a run ends with zero accepted sources.
// It is a valid terminal state, not an error.
const NoResearchSummary = "No usable research found for this topic."

const (
	defaultTargetSources     = 3
	defaultMaxAttempts       = 5
	defaultResultsPerAttempt = 10
	defaultAcceptThreshold   = 3
	defaultSynthesisBudget   = 15000
)

// DefaultExcludedHosts lists hosts that either block automated retrieval or
// carry social content that pollutes research results.
var DefaultExcludedHosts = []string{
	"instagram.com",
	"facebook.com",
	"tiktok.com",
	"x.com",
	"twitter.com",
	"reddit.com",
	"pinterest.com",
	"linkedin.com",
}

// Options tunes the research loop. Zero values take the defaults above.
type Options struct {
	TargetSources     int
	MaxAttempts       int
	ResultsPerAttempt int
	AcceptThreshold   int
	SynthesisBudget   int
	ExcludedHosts     []string
}

func (o Options) withDefaults() Options {
	if o.TargetSources <= 0 {
		o.TargetSources = defaultTargetSources
	}
	if o.MaxAttempts <= 0 {
		o.MaxAttempts = defaultMaxAttempts
	}
	if o.ResultsPerAttempt <= 0 {
		o.ResultsPerAttempt = defaultResultsPerAttempt
	}
	if o.AcceptThreshold <= 0 {
		o.AcceptThreshold = defaultAcceptThreshold
	}
	if o.SynthesisBudget <= 0 {
		o.SynthesisBudget = defaultSynthesisBudget
	}
	if o.ExcludedHosts == nil {
		o.ExcludedHosts = DefaultExcludedHosts
	}
	return o
}

// Orchestrator drives the bounded search/extract/score loop and owns its
// termination policy.
type Orchestrator struct {
	searcher    search.Searcher
	extractor   scraper.Extractor
	scorer      *Scorer
	refiner     *Refiner
	synthesizer *Synthesizer
	opts        Options
}

// NewOrchestrator wires the research loop from its collaborators.
func NewOrchestrator(searcher search.Searcher, extractor scraper.Extractor, gen llm.Generator, opts Options) *Orchestrator {
	return &Orchestrator{
		searcher:    searcher,
		extractor:   extractor,
		scorer:      NewScorer(gen),
		refiner:     NewRefiner(gen),
		synthesizer: NewSynthesizer(gen),
		opts:        opts.withDefaults(),
	}
}

// audienceModifier maps an open audience tag onto a query modifier.
func audienceModifier(audience string) string {
	if strings.Contains(audience, "Youth") {
		return " for teens youth mental wellbeing"
	}
	return " for young adults mental wellbeing"
}

// Research runs the full loop for topic and returns the brief, the accepted
// source URLs and the structured run log. topic must be non-empty; the
// caller validates it. Research is total: expected failures are encoded in
// the result and log, never returned as errors.
func (o *Orchestrator) Research(ctx context.Context, topic, audience string) Result {
	sess := newSession(topic, audienceModifier(audience))
	currentQuery := topic + sess.audienceMod

	for len(sess.accepted) < o.opts.TargetSources && sess.attemptCount < o.opts.MaxAttempts {
		sess.attemptCount++
		sess.triedQueries = append(sess.triedQueries, currentQuery)
		logger.Log.Infof("research attempt %d/%d: %q", sess.attemptCount, o.opts.MaxAttempts, currentQuery)

		o.runAttempt(ctx, sess, currentQuery)

		if len(sess.accepted) >= o.opts.TargetSources || sess.attemptCount >= o.opts.MaxAttempts {
			break
		}

		currentQuery = o.refiner.Refine(ctx, topic, sess.triedQueries, len(sess.accepted))
		sess.logEvent(LogEntry{Query: currentQuery, Event: "refined"})
	}

	if len(sess.accepted) == 0 {
		logger.Log.Warnf("no sources accepted for topic %q after %d attempt(s)", topic, sess.attemptCount)
		return Result{
			Summary: NoResearchSummary,
			Sources: sess.visitedOrder,
			Log:     sess.log,
		}
	}

	combined := combineSources(sess.accepted, o.opts.SynthesisBudget)
	summary := o.synthesizer.Synthesize(ctx, combined, topic)

	return Result{
		Summary: summary,
		Sources: sess.acceptedURLs(),
		Log:     sess.log,
	}
}

// runAttempt performs one search and processes its results in order.
func (o *Orchestrator) runAttempt(ctx context.Context, sess *session, query string) {
	resp, err := o.searcher.Search(ctx, &search.Request{
		Query:      query,
		MaxResults: o.opts.ResultsPerAttempt,
	})
	if err != nil {
		// Quota exhaustion and other provider failures count as an empty
		// attempt; the loop decides whether to refine and retry.
		event := "search_failed"
		if errors.Is(err, search.ErrQuotaExhausted) {
			event = "search_quota"
		}
		logger.Log.Errorf("search failed for %q: %v", query, err)
		sess.logEvent(LogEntry{Query: query, Event: event, Detail: err.Error()})
		return
	}
	sess.logEvent(LogEntry{Query: query, Event: "searched", Detail: fmt.Sprintf("%d result(s)", len(resp.Results))})

	for _, item := range resp.Results {
		if len(sess.accepted) >= o.opts.TargetSources {
			break
		}

		if sess.seen(item.URL) {
			sess.logEvent(LogEntry{URL: item.URL, Event: "skipped_seen"})
			continue
		}

		if host, excluded := o.excludedHost(item.URL); excluded {
			logger.Log.Debugf("skipping excluded host %s", host)
			sess.logEvent(LogEntry{URL: item.URL, Event: "skipped_excluded", Detail: host})
			continue
		}

		content, err := o.extractor.Fetch(ctx, item.URL)
		if err != nil {
			// Expected and non-fatal; many pages simply refuse bots.
			logger.Log.Debugf("extraction failed for %s: %v", item.URL, err)
			sess.logEvent(LogEntry{URL: item.URL, Event: "extract_failed", Detail: err.Error()})
			continue
		}

		res := o.scorer.Score(ctx, content, sess.topic)
		sess.logEvent(LogEntry{URL: item.URL, Event: "scored", Detail: fmt.Sprintf("score=%d fallback=%t: %s", res.Score, res.Fallback, res.Rationale)})

		if res.Score >= o.opts.AcceptThreshold {
			sess.accepted = append(sess.accepted, Source{
				URL:       item.URL,
				Content:   content,
				Score:     res.Score,
				Rationale: res.Rationale,
			})
			logger.Log.Infof("accepted source (%d/%d, score %d): %s", len(sess.accepted), o.opts.TargetSources, res.Score, item.URL)
			sess.logEvent(LogEntry{URL: item.URL, Event: "accepted"})
		} else {
			sess.logEvent(LogEntry{URL: item.URL, Event: "rejected"})
		}
	}
}

// excludedHost reports whether rawURL's host is on the exclusion list.
// Matching is by suffix so subdomains are covered.
func (o *Orchestrator) excludedHost(rawURL string) (string, bool) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", false
	}
	host := strings.ToLower(u.Hostname())
	for _, excluded := range o.opts.ExcludedHosts {
		if host == excluded || strings.HasSuffix(host, "."+excluded) {
			return host, true
		}
	}
	return host, false
}

// combineSources builds the synthesis input: each source tagged with its URL
// and score, the whole block truncated to budget.
func combineSources(sources []Source, budget int) string {
	var sb strings.Builder
	for i, src := range sources {
		fmt.Fprintf(&sb, "--- Source %d (%s, score %d/%d) ---\n%s\n\n", i+1, src.URL, src.Score, MaxScore, src.Content)
	}
	combined := sb.String()
	if len(combined) > budget {
		combined = combined[:budget]
	}
	return combined
}
