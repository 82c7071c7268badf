package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/lshigami/Polemos/internal/dto"
	"github.com/lshigami/Polemos/internal/model"
)

// SignupHandler godoc
// @Summary Create an account
// @Description Registers an email/password account. Any anonymous identity in X-Anonymous-Id is merged into the new account.
// @Tags auth
// @Accept json
// @Produce json
// @Param signup body dto.SignupRequest true "Signup data"
// @Success 201 {object} dto.AuthResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 409 {object} dto.ErrorResponse "Email already registered"
// @Router /auth/signup [post]
func (ctrl *Controller) SignupHandler(c *gin.Context) {
	var req dto.SignupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: err.Error()})
		return
	}
	user, token, err := ctrl.authSvc.Signup(req.Email, req.Password, req.DisplayName, pendingIdentity(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, ctrl.authResponse(user, token))
}

// LoginHandler godoc
// @Summary Log in with email and password
// @Description Any anonymous identity in X-Anonymous-Id is merged into the account on success.
// @Tags auth
// @Accept json
// @Produce json
// @Param login body dto.LoginRequest true "Credentials"
// @Success 200 {object} dto.AuthResponse
// @Failure 401 {object} dto.ErrorResponse
// @Router /auth/login [post]
func (ctrl *Controller) LoginHandler(c *gin.Context) {
	var req dto.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: err.Error()})
		return
	}
	user, token, err := ctrl.authSvc.Login(req.Email, req.Password, pendingIdentity(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, ctrl.authResponse(user, token))
}

// GoogleLoginHandler godoc
// @Summary Log in with a Google OAuth authorization code
// @Description Any anonymous identity in X-Anonymous-Id is merged into the account on success.
// @Tags auth
// @Accept json
// @Produce json
// @Param login body dto.GoogleLoginRequest true "Authorization code"
// @Success 200 {object} dto.AuthResponse
// @Failure 401 {object} dto.ErrorResponse
// @Router /auth/google [post]
func (ctrl *Controller) GoogleLoginHandler(c *gin.Context) {
	var req dto.GoogleLoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: err.Error()})
		return
	}
	user, token, err := ctrl.authSvc.GoogleLogin(c.Request.Context(), req.Code, pendingIdentity(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, ctrl.authResponse(user, token))
}

func (ctrl *Controller) authResponse(user *model.User, token string) dto.AuthResponse {
	profile, err := ctrl.profileSvc.GetProfile(user.ID)
	if err != nil {
		// Token is valid even if the snapshot failed; return the bare user.
		profile = &dto.ProfileResponse{
			ID:          user.ID,
			Email:       user.Email,
			DisplayName: user.DisplayName,
			Tier:        user.Tier,
			XP:          user.XP,
		}
	}
	return dto.AuthResponse{Token: token, User: *profile}
}
