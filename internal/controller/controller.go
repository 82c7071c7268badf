package controller

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/lshigami/Polemos/internal/catalog"
	"github.com/lshigami/Polemos/internal/dto"
	"github.com/lshigami/Polemos/internal/service"
	"github.com/rs/zerolog/log"
)

// HeaderAnonymousID carries the client's anonymous identity between visits
// and into the merge workflow on login/signup.
const HeaderAnonymousID = "X-Anonymous-Id"

const ctxUserIDKey = "userID"

type Controller struct {
	authSvc          service.AuthService
	submissionSvc    service.SubmissionService
	profileSvc       service.ProfileService
	transcriptionSvc service.TranscriptionService
	catalog          *catalog.Catalog
}

func NewController(
	authSvc service.AuthService,
	submissionSvc service.SubmissionService,
	profileSvc service.ProfileService,
	transcriptionSvc service.TranscriptionService,
	cat *catalog.Catalog,
) *Controller {
	return &Controller{
		authSvc:          authSvc,
		submissionSvc:    submissionSvc,
		profileSvc:       profileSvc,
		transcriptionSvc: transcriptionSvc,
		catalog:          cat,
	}
}

func (ctrl *Controller) RegisterRoutes(router *gin.Engine) {
	apiV1 := router.Group("/api/v1")
	{
		auth := apiV1.Group("/auth")
		auth.POST("/signup", ctrl.SignupHandler)
		auth.POST("/login", ctrl.LoginHandler)
		auth.POST("/google", ctrl.GoogleLoginHandler)

		authed := apiV1.Group("")
		authed.Use(ctrl.Identify())
		{
			questions := authed.Group("/questions")
			questions.GET("/categories", ctrl.GetCategoriesHandler)
			questions.GET("/random", ctrl.GetRandomQuestionHandler)

			answers := authed.Group("/answers")
			answers.POST("", ctrl.SubmitAnswerHandler)
			answers.GET("", ctrl.GetHistoryHandler)
			answers.GET("/:id", ctrl.GetAnswerHandler)
			answers.POST("/:id/challenge", ctrl.SubmitChallengeHandler)

			authed.GET("/profile", ctrl.GetProfileHandler)
			authed.GET("/achievements", ctrl.GetAchievementsHandler)

			authed.POST("/speech/transcriptions", ctrl.TranscribeHandler)
		}
	}
}

// Identify resolves the request identity: a valid bearer token wins,
// otherwise the anonymous header is used (creating a fresh anonymous user on
// first contact). The resolved or created ID is echoed back in the header.
func (ctrl *Controller) Identify() gin.HandlerFunc {
	return func(c *gin.Context) {
		var id *uuid.UUID
		if header := c.GetHeader("Authorization"); strings.HasPrefix(header, "Bearer ") {
			parsed, err := ctrl.authSvc.ParseToken(strings.TrimPrefix(header, "Bearer "))
			if err != nil {
				c.AbortWithStatusJSON(http.StatusUnauthorized, dto.ErrorResponse{Error: "invalid or expired token"})
				return
			}
			id = &parsed
		} else if header := c.GetHeader(HeaderAnonymousID); header != "" {
			if parsed, err := uuid.Parse(header); err == nil {
				id = &parsed
			}
		}

		user, err := ctrl.authSvc.EnsureUser(id, c.FullPath(), c.Request.UserAgent())
		if err != nil {
			log.Error().Err(err).Msg("Failed to resolve request identity")
			c.AbortWithStatusJSON(http.StatusInternalServerError, dto.ErrorResponse{Error: "failed to resolve identity"})
			return
		}
		if user.Anonymous {
			c.Header(HeaderAnonymousID, user.ID.String())
		}
		c.Set(ctxUserIDKey, user.ID)
		c.Next()
	}
}

func currentUserID(c *gin.Context) uuid.UUID {
	return c.MustGet(ctxUserIDKey).(uuid.UUID)
}

// pendingIdentity extracts the anonymous identity accompanying an auth
// request, if any.
func pendingIdentity(c *gin.Context) *uuid.UUID {
	header := c.GetHeader(HeaderAnonymousID)
	if header == "" {
		return nil
	}
	id, err := uuid.Parse(header)
	if err != nil {
		return nil
	}
	return &id
}

func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrValidation):
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: err.Error()})
	case errors.Is(err, service.ErrNotFound):
		c.JSON(http.StatusNotFound, dto.ErrorResponse{Error: err.Error()})
	case errors.Is(err, service.ErrRateLimited), errors.Is(err, service.ErrTranscriptionQuota):
		zero := 0
		c.JSON(http.StatusTooManyRequests, dto.ErrorResponse{Error: err.Error(), Remaining: &zero})
	case errors.Is(err, service.ErrDuplicateSubmission), errors.Is(err, service.ErrChallengeConsumed):
		c.JSON(http.StatusConflict, dto.ErrorResponse{Error: err.Error()})
	case errors.Is(err, service.ErrChallengeUnavailable):
		c.JSON(http.StatusUnprocessableEntity, dto.ErrorResponse{Error: err.Error()})
	case errors.Is(err, service.ErrEvaluationFailed), errors.Is(err, service.ErrTranscriptionUnavailable):
		c.JSON(http.StatusBadGateway, dto.ErrorResponse{Error: err.Error()})
	case errors.Is(err, service.ErrInvalidCredentials):
		c.JSON(http.StatusUnauthorized, dto.ErrorResponse{Error: err.Error()})
	case errors.Is(err, service.ErrEmailTaken):
		c.JSON(http.StatusConflict, dto.ErrorResponse{Error: err.Error()})
	default:
		log.Error().Err(err).Msg("Unhandled service error")
		c.JSON(http.StatusInternalServerError, dto.ErrorResponse{Error: "internal server error"})
	}
}

// GetCategoriesHandler godoc
// @Summary List question categories
// @Tags questions
// @Produce json
// @Success 200 {object} dto.CategoriesResponse
// @Router /questions/categories [get]
func (ctrl *Controller) GetCategoriesHandler(c *gin.Context) {
	c.JSON(http.StatusOK, dto.CategoriesResponse{Categories: ctrl.catalog.Categories()})
}

// GetRandomQuestionHandler godoc
// @Summary Get a random unseen debate question
// @Tags questions
// @Produce json
// @Param category query string false "Restrict to one category"
// @Param exclude query string false "Comma-separated slugs to skip"
// @Success 200 {object} dto.QuestionResponse
// @Failure 404 {object} dto.ErrorResponse
// @Router /questions/random [get]
func (ctrl *Controller) GetRandomQuestionHandler(c *gin.Context) {
	var exclude []string
	if raw := c.Query("exclude"); raw != "" {
		exclude = strings.Split(raw, ",")
	}
	question, err := ctrl.submissionSvc.RandomQuestion(currentUserID(c), c.Query("category"), exclude)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, question)
}

// SubmitAnswerHandler godoc
// @Summary Submit an argumentative answer for evaluation
// @Tags answers
// @Accept json
// @Produce json
// @Param answer body dto.SubmitAnswerRequest true "Answer"
// @Success 201 {object} dto.SubmissionResultResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 409 {object} dto.ErrorResponse "Too similar to a prior answer"
// @Failure 429 {object} dto.ErrorResponse "Daily limit reached"
// @Failure 502 {object} dto.ErrorResponse "Evaluation backend failed"
// @Router /answers [post]
func (ctrl *Controller) SubmitAnswerHandler(c *gin.Context) {
	var req dto.SubmitAnswerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: err.Error()})
		return
	}
	result, err := ctrl.submissionSvc.SubmitAnswer(c.Request.Context(), currentUserID(c), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, result)
}

// SubmitChallengeHandler godoc
// @Summary Answer the challenge question of an existing answer
// @Tags answers
// @Accept json
// @Produce json
// @Param id path int true "Answer ID"
// @Param response body dto.SubmitChallengeRequest true "Challenge response"
// @Success 200 {object} dto.SubmissionResultResponse
// @Failure 404 {object} dto.ErrorResponse
// @Failure 409 {object} dto.ErrorResponse "Challenge already answered"
// @Failure 429 {object} dto.ErrorResponse "Daily limit reached"
// @Router /answers/{id}/challenge [post]
func (ctrl *Controller) SubmitChallengeHandler(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "invalid answer ID"})
		return
	}
	var req dto.SubmitChallengeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: err.Error()})
		return
	}
	result, err := ctrl.submissionSvc.SubmitChallenge(c.Request.Context(), currentUserID(c), uint(id), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// GetHistoryHandler godoc
// @Summary List the current user's answers
// @Tags answers
// @Produce json
// @Success 200 {array} dto.AnswerResponse
// @Router /answers [get]
func (ctrl *Controller) GetHistoryHandler(c *gin.Context) {
	answers, err := ctrl.submissionSvc.GetHistory(currentUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, answers)
}

// GetAnswerHandler godoc
// @Summary Get one answer with its evaluations
// @Tags answers
// @Produce json
// @Param id path int true "Answer ID"
// @Success 200 {object} dto.AnswerResponse
// @Failure 404 {object} dto.ErrorResponse
// @Router /answers/{id} [get]
func (ctrl *Controller) GetAnswerHandler(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "invalid answer ID"})
		return
	}
	answer, err := ctrl.submissionSvc.GetAnswer(currentUserID(c), uint(id))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, answer)
}

// GetProfileHandler godoc
// @Summary Get the current user's progression snapshot
// @Tags profile
// @Produce json
// @Success 200 {object} dto.ProfileResponse
// @Router /profile [get]
func (ctrl *Controller) GetProfileHandler(c *gin.Context) {
	profile, err := ctrl.profileSvc.GetProfile(currentUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, profile)
}

// GetAchievementsHandler godoc
// @Summary List all achievements in the catalog
// @Tags profile
// @Produce json
// @Success 200 {array} dto.AchievementResponse
// @Router /achievements [get]
func (ctrl *Controller) GetAchievementsHandler(c *gin.Context) {
	achievements, err := ctrl.profileSvc.ListAchievements()
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, achievements)
}

// TranscribeHandler godoc
// @Summary Transcribe a voice recording
// @Tags speech
// @Accept json
// @Produce json
// @Param request body dto.TranscriptionRequest true "Audio reference"
// @Success 200 {object} dto.TranscriptionResponse
// @Failure 429 {object} dto.ErrorResponse "Daily transcription limit reached"
// @Failure 502 {object} dto.ErrorResponse "Transcription backend unavailable"
// @Router /speech/transcriptions [post]
func (ctrl *Controller) TranscribeHandler(c *gin.Context) {
	var req dto.TranscriptionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: err.Error()})
		return
	}
	result, err := ctrl.transcriptionSvc.Transcribe(c.Request.Context(), currentUserID(c), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}
