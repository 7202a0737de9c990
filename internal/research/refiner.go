package research

import (
	"context"
	"fmt"
	"strings"

	"github.com/mindbloom-labs/research_agent/internal/llm"
	"github.com/mindbloom-labs/research_agent/internal/logger"
)

// Refiner produces the next search query when an attempt falls short.
type Refiner struct {
	gen llm.Generator
}

// NewRefiner creates a query refiner backed by gen.
func NewRefiner(gen llm.Generator) *Refiner {
	return &Refiner{gen: gen}
}

const refinerSystemPrompt = "You are a search strategist. Reply with a single search query string and nothing else. No quotes, no explanation."

const refinerPromptTpl = `I am researching the topic: %s

These queries have already been tried and did not surface enough relevant material:
%s

So far %d relevant source(s) have been accepted. Propose ONE new search query, different in angle from all of the above, biased toward authoritative and educational sources (research articles, health organizations, universities).`

// Refine returns the next query to try. It is total: any failure falls back
// to a deterministic query derived from the topic.
func (r *Refiner) Refine(ctx context.Context, topic string, triedQueries []string, acceptedCount int) string {
	tried := "- " + strings.Join(triedQueries, "\n- ")

	reply, err := r.gen.Generate(ctx, refinerSystemPrompt, fmt.Sprintf(refinerPromptTpl, topic, tried, acceptedCount))
	if err != nil {
		logger.Log.Warnf("query refinement failed, using fallback query: %v", err)
		return fallbackQuery(topic)
	}

	query := strings.TrimSpace(reply)
	// Strip surrounding quotes and keep only the first line; some models
	// wrap the query or append commentary despite the instruction.
	if idx := strings.IndexByte(query, '\n'); idx >= 0 {
		query = strings.TrimSpace(query[:idx])
	}
	query = strings.Trim(query, `"'`)

	if query == "" {
		return fallbackQuery(topic)
	}
	return query
}

func fallbackQuery(topic string) string {
	return fmt.Sprintf("%s deep dive research", topic)
}
