package research

import (
	"context"
	"fmt"
	"strings"
	"testing"
)

func TestRefineReturnsNewQuery(t *testing.T) {
	gen := &mockGenerator{reply: `"teen anxiety coping strategies site:.edu"` + "\nIgnored commentary."}
	r := NewRefiner(gen)

	query := r.Refine(context.Background(), "anxiety", []string{"anxiety for teens"}, 1)

	if query != "teen anxiety coping strategies site:.edu" {
		t.Errorf("unexpected query: %q", query)
	}
}

func TestRefinePromptIncludesHistory(t *testing.T) {
	gen := &mockGenerator{reply: "new angle"}
	r := NewRefiner(gen)

	r.Refine(context.Background(), "burnout", []string{"burnout basics", "burnout recovery"}, 2)

	if !strings.Contains(gen.lastUser, "burnout basics") || !strings.Contains(gen.lastUser, "burnout recovery") {
		t.Errorf("prompt missing tried queries: %q", gen.lastUser)
	}
	if !strings.Contains(gen.lastUser, "2 relevant source(s)") {
		t.Errorf("prompt missing accepted count: %q", gen.lastUser)
	}
}

func TestRefineFallbackOnError(t *testing.T) {
	gen := &mockGenerator{err: fmt.Errorf("model unavailable")}
	r := NewRefiner(gen)

	query := r.Refine(context.Background(), "loneliness", []string{"loneliness"}, 0)

	if query != "loneliness deep dive research" {
		t.Errorf("fallback query = %q", query)
	}
}

func TestRefineFallbackOnEmptyReply(t *testing.T) {
	gen := &mockGenerator{reply: "  \n"}
	r := NewRefiner(gen)

	query := r.Refine(context.Background(), "loneliness", []string{"loneliness"}, 0)

	if query != "loneliness deep dive research" {
		t.Errorf("fallback query = %q", query)
	}
}
