package dto

// SubmitAnswerRequest carries one argumentative answer to a catalog question.
type SubmitAnswerRequest struct {
	QuestionSlug    string `json:"question_slug" binding:"required"`
	Claim           string `json:"claim" binding:"required"`
	Argument        string `json:"argument" binding:"required"`
	CounterArgument string `json:"counter_argument"`
	VoiceInput      bool   `json:"voice_input"`
}

// SubmitChallengeRequest answers the follow-up challenge question of an
// existing answer. One round per answer.
type SubmitChallengeRequest struct {
	Response string `json:"response" binding:"required"`
}

type SignupRequest struct {
	Email       string `json:"email" binding:"required,email"`
	Password    string `json:"password" binding:"required,min=8"`
	DisplayName string `json:"display_name"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// GoogleLoginRequest carries the OAuth authorization code from the client.
type GoogleLoginRequest struct {
	Code string `json:"code" binding:"required"`
}

type TranscriptionRequest struct {
	AudioURL string `json:"audio_url" binding:"required"`
	Language string `json:"language"`
}
