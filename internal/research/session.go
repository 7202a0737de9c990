// Package research implements the quality-gated research loop: search,
// filter, extract, score, refine, and finally synthesize the accepted
// sources into one brief.
package research

// Source is one accepted document.
type Source struct {
	URL       string
	Content   string
	Score     int
	Rationale string
}

// LogEntry is one structured event from a research run, returned to the
// caller alongside the result for display or persistence.
type LogEntry struct {
	Attempt int
	Query   string
	URL     string
	Event   string // searched, skipped_seen, skipped_excluded, extract_failed, scored, accepted, rejected, refined, search_failed
	Detail  string
}

// Result is the caller-facing output of one research run.
type Result struct {
	Summary string
	Sources []string
	Log     []LogEntry
}

// session tracks the state of a single research run. It lives for one
// Research call and is discarded with it.
type session struct {
	topic        string
	audienceMod  string
	triedQueries []string
	seenURLs     map[string]bool
	accepted     []Source
	attemptCount int
	visitedOrder []string // every URL visited, in discovery order
	log          []LogEntry
}

func newSession(topic, audienceMod string) *session {
	return &session{
		topic:       topic,
		audienceMod: audienceMod,
		seenURLs:    make(map[string]bool),
	}
}

// seen marks url as visited and reports whether it had been visited before.
func (s *session) seen(url string) bool {
	if s.seenURLs[url] {
		return true
	}
	s.seenURLs[url] = true
	s.visitedOrder = append(s.visitedOrder, url)
	return false
}

func (s *session) logEvent(e LogEntry) {
	e.Attempt = s.attemptCount
	s.log = append(s.log, e)
}

func (s *session) acceptedURLs() []string {
	urls := make([]string, 0, len(s.accepted))
	for _, src := range s.accepted {
		urls = append(urls, src.URL)
	}
	return urls
}
