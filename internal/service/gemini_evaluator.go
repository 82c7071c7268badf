package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"github.com/lshigami/Polemos/config"
	"github.com/lshigami/Polemos/internal/catalog"
	"github.com/lshigami/Polemos/internal/model"
	"github.com/rs/zerolog/log"
	"google.golang.org/api/option"
)

// GeminiEvaluator scores submissions through the Gemini API. The response is
// requested as strict JSON matching geminiVerdict.
type GeminiEvaluator struct {
	client *genai.GenerativeModel
	cfg    *config.Config
}

func NewGeminiEvaluator(cfg *config.Config) (*GeminiEvaluator, error) {
	if cfg.GeminiApiKey == "" {
		log.Warn().Msg("GEMINI_API_KEY is not set. GeminiEvaluator will be non-functional.")
		return &GeminiEvaluator{cfg: cfg, client: nil}, nil
	}
	ctx := context.Background()
	client, err := genai.NewClient(ctx, option.WithAPIKey(cfg.GeminiApiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Gemini client: %w", err)
	}
	gm := client.GenerativeModel("gemini-1.5-flash")
	gm.ResponseMIMEType = "application/json"
	return &GeminiEvaluator{client: gm, cfg: cfg}, nil
}

// geminiVerdict is the JSON schema the model is instructed to return.
type geminiVerdict struct {
	Scores struct {
		Relevance        float64 `json:"relevance"`
		LogicalStructure float64 `json:"logical_structure"`
		Clarity          float64 `json:"clarity"`
		Depth            float64 `json:"depth"`
		Objectivity      float64 `json:"objectivity"`
		Creativity       float64 `json:"creativity"`
	} `json:"scores"`
	Explanations      map[string]string    `json:"explanations"`
	OverallFeedback   string               `json:"overall_feedback"`
	ChallengeQuestion string               `json:"challenge_question"`
	ArgumentStructure *model.ArgumentGraph `json:"argument_structure"`
}

const rubricInstruction = `Score each dimension from 1 to 10:
- relevance: how directly the response addresses the debate question
- logical_structure: whether the conclusion follows from the premises without fallacies
- clarity: precision and readability of the writing
- depth: engagement with underlying assumptions, evidence and implications
- objectivity: fair treatment of opposing views, absence of loaded rhetoric
- creativity: originality of the framing, examples or line of argument
`

const outputInstruction = `Respond with a single JSON object and nothing else, using exactly this shape:
{
  "scores": {"relevance": 0, "logical_structure": 0, "clarity": 0, "depth": 0, "objectivity": 0, "creativity": 0},
  "explanations": {"relevance": "...", "logical_structure": "...", "clarity": "...", "depth": "...", "objectivity": "...", "creativity": "..."},
  "overall_feedback": "...",
  "challenge_question": "...",
  "argument_structure": {"nodes": [{"id": "p1", "type": "premise", "text": "..."}, {"id": "c1", "type": "conclusion", "text": "..."}], "edges": [{"from": "p1", "to": "c1", "type": "support"}]}
}
`

func (s *GeminiEvaluator) EvaluateAnswer(ctx context.Context, question catalog.Question, sub Submission) (*EvaluationResult, error) {
	var b strings.Builder
	b.WriteString("You are an experienced debate coach and argumentation teacher.\n")
	b.WriteString("Evaluate the user's argumentative answer to the debate question below.\n\n")
	b.WriteString("Debate question:\n---\n")
	b.WriteString(question.Prompt)
	b.WriteString("\n---\n\n")
	b.WriteString("User's claim:\n---\n")
	b.WriteString(sub.Claim)
	b.WriteString("\n---\n\nUser's argument:\n---\n")
	b.WriteString(sub.Argument)
	b.WriteString("\n---\n")
	if sub.CounterArgument != "" {
		b.WriteString("\nCounterargument the user anticipates:\n---\n")
		b.WriteString(sub.CounterArgument)
		b.WriteString("\n---\n")
	}
	b.WriteString("\n")
	b.WriteString(rubricInstruction)
	b.WriteString(`
In "challenge_question", pose one probing follow-up question that attacks the weakest point of the user's argument.
In "argument_structure", extract the premises and the conclusion of the user's argument and connect each premise to what it supports.

`)
	b.WriteString(outputInstruction)

	return s.generate(ctx, b.String())
}

func (s *GeminiEvaluator) EvaluateChallenge(ctx context.Context, answer *model.Answer, response string) (*EvaluationResult, error) {
	var b strings.Builder
	b.WriteString("You are an experienced debate coach and argumentation teacher.\n")
	b.WriteString("The user previously argued the following position and was then given a challenge question. Evaluate their response to the challenge.\n\n")
	b.WriteString("Original debate question:\n---\n")
	b.WriteString(answer.QuestionText)
	b.WriteString("\n---\n\nUser's original claim:\n---\n")
	b.WriteString(answer.Claim)
	b.WriteString("\n---\n\nChallenge question:\n---\n")
	b.WriteString(answer.ChallengeQuestion)
	b.WriteString("\n---\n\nUser's response to the challenge:\n---\n")
	b.WriteString(response)
	b.WriteString("\n---\n\n")
	b.WriteString(rubricInstruction)
	b.WriteString(`
Leave "challenge_question" as an empty string and "argument_structure" as null; this is the final round.

`)
	b.WriteString(outputInstruction)

	result, err := s.generate(ctx, b.String())
	if err != nil {
		return nil, err
	}
	result.ChallengeQuestion = ""
	result.ArgumentStructure = nil
	return result, nil
}

func (s *GeminiEvaluator) generate(ctx context.Context, prompt string) (*EvaluationResult, error) {
	if s.client == nil {
		return nil, fmt.Errorf("%w: gemini client not initialized", ErrEvaluationFailed)
	}

	resp, err := s.client.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		log.Error().Err(err).Msg("Gemini API error during evaluation")
		return nil, fmt.Errorf("%w: %v", ErrEvaluationFailed, err)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		log.Warn().Msg("Gemini returned no candidates or parts in response")
		return nil, fmt.Errorf("%w: empty response", ErrEvaluationFailed)
	}

	var raw strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if txt, ok := part.(genai.Text); ok {
			raw.WriteString(string(txt))
		}
	}
	if raw.Len() == 0 {
		return nil, fmt.Errorf("%w: no text content", ErrEvaluationFailed)
	}

	return parseVerdict(raw.String())
}

// parseVerdict decodes the model output, tolerating markdown fences around
// the JSON body, and clamps every dimension into [1,10].
func parseVerdict(raw string) (*EvaluationResult, error) {
	cleaned := strings.TrimSpace(raw)
	cleaned = strings.TrimPrefix(cleaned, "```json")
	cleaned = strings.TrimPrefix(cleaned, "```")
	cleaned = strings.TrimSuffix(cleaned, "```")
	cleaned = strings.TrimSpace(cleaned)

	var verdict geminiVerdict
	if err := json.Unmarshal([]byte(cleaned), &verdict); err != nil {
		log.Warn().Err(err).Str("rawResponse", truncate(raw, 500)).Msg("Failed to parse evaluation JSON")
		return nil, fmt.Errorf("%w: malformed evaluation response: %v", ErrEvaluationFailed, err)
	}

	scores := model.RubricScores{
		Relevance:        clampScore(verdict.Scores.Relevance),
		LogicalStructure: clampScore(verdict.Scores.LogicalStructure),
		Clarity:          clampScore(verdict.Scores.Clarity),
		Depth:            clampScore(verdict.Scores.Depth),
		Objectivity:      clampScore(verdict.Scores.Objectivity),
		Creativity:       clampScore(verdict.Scores.Creativity),
	}
	return &EvaluationResult{
		Scores:            scores,
		Explanations:      verdict.Explanations,
		TotalScore:        scores.Mean(),
		Feedback:          verdict.OverallFeedback,
		ChallengeQuestion: verdict.ChallengeQuestion,
		ArgumentStructure: verdict.ArgumentStructure,
	}, nil
}
