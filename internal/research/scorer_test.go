package research

import (
	"context"
	"fmt"
	"strings"
	"testing"
)

// mockGenerator scripts Generate replies and counts calls.
type mockGenerator struct {
	reply string
	err   error
	calls int

	lastSystem string
	lastUser   string
}

func (m *mockGenerator) Generate(ctx context.Context, system, user string) (string, error) {
	m.calls++
	m.lastSystem = system
	m.lastUser = user
	return m.reply, m.err
}

func longContent() string {
	return strings.Repeat("mental health research content ", 20)
}

func TestScoreShortContentSkipsModel(t *testing.T) {
	gen := &mockGenerator{reply: "SCORE: 5\nRATIONALE: should never be used"}
	s := NewScorer(gen)

	res := s.Score(context.Background(), "too short", "sleep hygiene")

	if res.Score != 0 {
		t.Errorf("Score = %d, want 0", res.Score)
	}
	if res.Fallback {
		t.Error("short content must not be marked as fallback")
	}
	if gen.calls != 0 {
		t.Errorf("model called %d time(s) for short content, want 0", gen.calls)
	}
}

func TestScoreParsesReply(t *testing.T) {
	gen := &mockGenerator{reply: "SCORE: 4\nRATIONALE: Covers the topic with recent statistics."}
	s := NewScorer(gen)

	res := s.Score(context.Background(), longContent(), "sleep hygiene")

	if res.Score != 4 {
		t.Errorf("Score = %d, want 4", res.Score)
	}
	if res.Fallback {
		t.Error("parsed score must not be marked as fallback")
	}
	if res.Rationale != "Covers the topic with recent statistics." {
		t.Errorf("unexpected rationale: %q", res.Rationale)
	}
	if gen.calls != 1 {
		t.Errorf("model called %d time(s), want 1", gen.calls)
	}
}

func TestScoreClampsOutOfRange(t *testing.T) {
	cases := []struct {
		reply string
		want  int
	}{
		{"SCORE: 99\nRATIONALE: too enthusiastic", MaxScore},
		{"SCORE: -3\nRATIONALE: too harsh", 0},
		{"score: 2\nrationale: lower case works", 2},
		{"Here you go:\nSCORE: 5\nRATIONALE: with preamble", MaxScore},
	}

	for _, tc := range cases {
		gen := &mockGenerator{reply: tc.reply}
		res := NewScorer(gen).Score(context.Background(), longContent(), "topic")
		if res.Score != tc.want {
			t.Errorf("reply %q: Score = %d, want %d", tc.reply, res.Score, tc.want)
		}
		if res.Fallback {
			t.Errorf("reply %q: unexpected fallback", tc.reply)
		}
	}
}

func TestScoreFallbackOnCallFailure(t *testing.T) {
	gen := &mockGenerator{err: fmt.Errorf("connection refused")}
	res := NewScorer(gen).Score(context.Background(), longContent(), "topic")

	if !res.Fallback {
		t.Fatal("expected fallback result on transport error")
	}
	if res.Score != fallbackScore {
		t.Errorf("Score = %d, want %d", res.Score, fallbackScore)
	}
}

func TestScoreFallbackOnUnparseableReply(t *testing.T) {
	gen := &mockGenerator{reply: "I would rate this page quite highly."}
	res := NewScorer(gen).Score(context.Background(), longContent(), "topic")

	if !res.Fallback {
		t.Fatal("expected fallback result on unparseable reply")
	}
	if res.Score != fallbackScore {
		t.Errorf("Score = %d, want %d", res.Score, fallbackScore)
	}
}

func TestScoreCapsContentSentToModel(t *testing.T) {
	gen := &mockGenerator{reply: "SCORE: 3\nRATIONALE: fine"}
	huge := strings.Repeat("x", scorerContentCap*3)

	NewScorer(gen).Score(context.Background(), huge, "topic")

	if len(gen.lastUser) > scorerContentCap+len(scorerPromptTpl)+100 {
		t.Errorf("prompt length %d exceeds content cap by too much", len(gen.lastUser))
	}
}
