package research

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/mindbloom-labs/research_agent/internal/llm"
	"github.com/mindbloom-labs/research_agent/internal/logger"
)

const (
	// MaxScore is the top of the relevance scale. The acceptance threshold
	// lives in Options; both ends of the scale are fixed here.
	MaxScore = 5

	// minScorableLen is the shortest content worth a model call. Anything
	// below scores 0 without touching the model.
	minScorableLen = 100

	// scorerContentCap bounds the content prefix sent to the model.
	scorerContentCap = 4000

	// fallbackScore is assigned when scoring itself fails. It sits at the
	// acceptance bar so a scorer outage does not stall a whole run.
	fallbackScore = 3
)

// ScoreResult is the outcome of scoring one document. Fallback marks a
// degraded-mode score (transport or parse failure) so callers and tests can
// tell it apart from a genuine model verdict.
type ScoreResult struct {
	Score     int
	Rationale string
	Fallback  bool
}

// Scorer rates extracted content against a topic.
type Scorer struct {
	gen llm.Generator
}

// NewScorer creates a relevance scorer backed by gen.
func NewScorer(gen llm.Generator) *Scorer {
	return &Scorer{gen: gen}
}

const scorerSystemPrompt = "You are a strict research relevance rater. Reply with exactly two lines in the requested format and nothing else."

const scorerPromptTpl = `Rate how useful the following web page text is as research material for an article on the topic below.

Topic: %s

Reply with exactly two lines:
SCORE: <integer 0-%d>
RATIONALE: <one sentence>

Page text:
%s`

var (
	scoreRe     = regexp.MustCompile(`(?i)SCORE:\s*(-?\d+)`)
	rationaleRe = regexp.MustCompile(`(?i)RATIONALE:\s*(.+)`)
)

// Score rates content against topic on the 0..MaxScore scale. It never
// returns an error: failures degrade to the fallback score.
func (s *Scorer) Score(ctx context.Context, content, topic string) ScoreResult {
	if len(content) < minScorableLen {
		return ScoreResult{Score: 0, Rationale: "content too short or empty"}
	}

	if len(content) > scorerContentCap {
		content = content[:scorerContentCap]
	}

	reply, err := s.gen.Generate(ctx, scorerSystemPrompt, fmt.Sprintf(scorerPromptTpl, topic, MaxScore, content))
	if err != nil {
		logger.Log.Warnf("scoring call failed, using fallback score: %v", err)
		return ScoreResult{
			Score:     fallbackScore,
			Rationale: "scoring unavailable, accepted by fallback policy",
			Fallback:  true,
		}
	}

	score, rationale, ok := parseScoreReply(reply)
	if !ok {
		logger.Log.Warnf("unparseable score reply, using fallback score: %q", reply)
		return ScoreResult{
			Score:     fallbackScore,
			Rationale: "score reply unparseable, accepted by fallback policy",
			Fallback:  true,
		}
	}

	return ScoreResult{Score: score, Rationale: rationale}
}

// parseScoreReply extracts and clamps the score plus its rationale from a
// SCORE/RATIONALE formatted reply. ok is false when no score is found.
func parseScoreReply(reply string) (score int, rationale string, ok bool) {
	m := scoreRe.FindStringSubmatch(reply)
	if m == nil {
		return 0, "", false
	}

	n, err := strconv.Atoi(m[1])
	if err != nil {
		return 0, "", false
	}
	if n < 0 {
		n = 0
	}
	if n > MaxScore {
		n = MaxScore
	}

	rationale = "no rationale given"
	if rm := rationaleRe.FindStringSubmatch(reply); rm != nil {
		rationale = strings.TrimSpace(rm[1])
	}

	return n, rationale, true
}
