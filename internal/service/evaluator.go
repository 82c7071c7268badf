package service

import (
	"context"

	"github.com/lshigami/Polemos/internal/catalog"
	"github.com/lshigami/Polemos/internal/model"
)

// Submission carries the user's argumentative answer to one prompt.
type Submission struct {
	Claim           string
	Argument        string
	CounterArgument string
}

// EvaluationResult is the fixed-schema outcome of one evaluation pass.
type EvaluationResult struct {
	Scores       model.RubricScores
	Explanations map[string]string
	TotalScore   float64
	Feedback     string
	// ChallengeQuestion is the follow-up prompt generated on the initial
	// pass. Empty on the challenge pass itself.
	ChallengeQuestion string
	ArgumentStructure *model.ArgumentGraph
}

// Evaluator scores argument submissions along the six rubric dimensions.
// Implementations must not persist anything; a failed call surfaces as an
// error and leaves no trace.
type Evaluator interface {
	EvaluateAnswer(ctx context.Context, question catalog.Question, sub Submission) (*EvaluationResult, error)
	EvaluateChallenge(ctx context.Context, answer *model.Answer, response string) (*EvaluationResult, error)
}
