package research

import (
	"context"
	"fmt"

	"github.com/mindbloom-labs/research_agent/internal/llm"
	"github.com/mindbloom-labs/research_agent/internal/logger"
)

// Synthesizer condenses the accepted sources into one research brief.
type Synthesizer struct {
	gen llm.Generator
}

// NewSynthesizer creates a synthesizer backed by gen.
func NewSynthesizer(gen llm.Generator) *Synthesizer {
	return &Synthesizer{gen: gen}
}

const synthSystemPrompt = "You are a careful research writer. Use ONLY the supplied source text. Do not invent facts, statistics or quotes."

const synthPromptTpl = `Synthesize the following web research into a coherent brief of 3-5 paragraphs on the topic below. Cover the key facts, findings and perspectives present in the sources. Plain prose, no headings, no bullet lists.

Topic: %s

Source material:
%s`

// Synthesize produces the research brief. sourcesText must already be
// truncated to the synthesis budget by the caller. A call failure yields a
// clearly labeled error summary rather than an empty string.
func (s *Synthesizer) Synthesize(ctx context.Context, sourcesText, topic string) string {
	reply, err := s.gen.Generate(ctx, synthSystemPrompt, fmt.Sprintf(synthPromptTpl, topic, sourcesText))
	if err != nil {
		logger.Log.Errorf("synthesis failed: %v", err)
		return fmt.Sprintf("[synthesis failed: %v] Raw research was collected but could not be summarized.", err)
	}
	return reply
}
