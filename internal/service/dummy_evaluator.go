package service

import (
	"context"
	"fmt"
	"hash/fnv"
	"math"

	"github.com/lshigami/Polemos/internal/catalog"
	"github.com/lshigami/Polemos/internal/model"
)

// DummyEvaluator produces deterministic scores derived from the submission
// text. It exists for offline development and tests: the same input always
// yields the same result, and longer arguments score somewhat higher.
type DummyEvaluator struct{}

func NewDummyEvaluator() *DummyEvaluator {
	return &DummyEvaluator{}
}

func (e *DummyEvaluator) EvaluateAnswer(ctx context.Context, question catalog.Question, sub Submission) (*EvaluationResult, error) {
	result := e.score(sub.Claim + "\n" + sub.Argument)
	result.ChallengeQuestion = fmt.Sprintf(
		"Suppose someone rejected your claim %q outright. What is the strongest single piece of evidence they could cite, and how would you respond?",
		truncate(sub.Claim, 120))
	result.ArgumentStructure = &model.ArgumentGraph{
		Nodes: []model.ArgumentNode{
			{ID: "p1", Type: "premise", Text: truncate(sub.Argument, 200)},
			{ID: "c1", Type: "conclusion", Text: truncate(sub.Claim, 200)},
		},
		Edges: []model.ArgumentEdge{{From: "p1", To: "c1", Type: "support"}},
	}
	return result, nil
}

func (e *DummyEvaluator) EvaluateChallenge(ctx context.Context, answer *model.Answer, response string) (*EvaluationResult, error) {
	return e.score(answer.Claim + "\n" + response), nil
}

func (e *DummyEvaluator) score(text string) *EvaluationResult {
	h := fnv.New64a()
	h.Write([]byte(text))
	seed := h.Sum64()

	// Spread the hash over the six dimensions, each in [4,10].
	dim := func(shift uint) float64 {
		v := (seed >> shift) % 61 // tenths above 4.0
		return 4.0 + float64(v)/10.0
	}
	lengthBonus := math.Min(float64(len(text))/900.0, 1.0)

	scores := model.RubricScores{
		Relevance:        clampScore(dim(0) + lengthBonus),
		LogicalStructure: clampScore(dim(8) + lengthBonus),
		Clarity:          clampScore(dim(16)),
		Depth:            clampScore(dim(24) + lengthBonus),
		Objectivity:      clampScore(dim(32)),
		Creativity:       clampScore(dim(40)),
	}
	return &EvaluationResult{
		Scores: scores,
		Explanations: map[string]string{
			"relevance":         "Offline evaluation: relevance estimated from submission shape.",
			"logical_structure": "Offline evaluation: structure estimated from submission shape.",
			"clarity":           "Offline evaluation: clarity estimated from submission shape.",
			"depth":             "Offline evaluation: depth estimated from submission length.",
			"objectivity":       "Offline evaluation: objectivity estimated from submission shape.",
			"creativity":        "Offline evaluation: creativity estimated from submission shape.",
		},
		TotalScore: scores.Mean(),
		Feedback:   "This response was scored by the offline evaluator. Configure an evaluation backend for real feedback.",
	}
}

func clampScore(v float64) float64 {
	if v < 1 {
		return 1
	}
	if v > 10 {
		return 10
	}
	return math.Round(v*10) / 10
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
