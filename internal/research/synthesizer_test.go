package research

import (
	"context"
	"fmt"
	"strings"
	"testing"
)

func TestSynthesizePassesSourcesAndTopic(t *testing.T) {
	gen := &mockGenerator{reply: "A multi-paragraph brief."}
	s := NewSynthesizer(gen)

	summary := s.Synthesize(context.Background(), "--- Source 1 ---\nsource text", "resilience")

	if summary != "A multi-paragraph brief." {
		t.Errorf("unexpected summary: %q", summary)
	}
	if !strings.Contains(gen.lastUser, "source text") {
		t.Error("prompt missing source text")
	}
	if !strings.Contains(gen.lastUser, "resilience") {
		t.Error("prompt missing topic")
	}
}

func TestSynthesizeLabelsFailure(t *testing.T) {
	gen := &mockGenerator{err: fmt.Errorf("timeout")}
	s := NewSynthesizer(gen)

	summary := s.Synthesize(context.Background(), "text", "topic")

	if !strings.HasPrefix(summary, "[synthesis failed:") {
		t.Errorf("failure summary not labeled: %q", summary)
	}
}
