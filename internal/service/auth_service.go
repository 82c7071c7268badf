package service

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/lshigami/Polemos/config"
	"github.com/lshigami/Polemos/internal/model"
	"github.com/lshigami/Polemos/internal/repository"
	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

const googleUserInfoURL = "https://www.googleapis.com/oauth2/v2/userinfo"

// AuthService handles identity: anonymous first-visit users, signup,
// password login and the Google OAuth leg. Whenever an authenticated
// identity is established while a pending anonymous identity exists, the
// anonymous history is merged into the account.
type AuthService interface {
	// EnsureUser resolves an existing user or creates a fresh anonymous one,
	// recording a Visit either way.
	EnsureUser(id *uuid.UUID, path, userAgent string) (*model.User, error)
	Signup(email, password, displayName string, pending *uuid.UUID) (*model.User, string, error)
	Login(email, password string, pending *uuid.UUID) (*model.User, string, error)
	GoogleLogin(ctx context.Context, code string, pending *uuid.UUID) (*model.User, string, error)
	ParseToken(token string) (uuid.UUID, error)
}

type authService struct {
	userRepo  repository.UserRepository
	visitRepo repository.VisitRepository
	merge     MergeService
	cfg       *config.Config
	oauth     *oauth2.Config
}

func NewAuthService(
	userRepo repository.UserRepository,
	visitRepo repository.VisitRepository,
	merge MergeService,
	cfg *config.Config,
) AuthService {
	return &authService{
		userRepo:  userRepo,
		visitRepo: visitRepo,
		merge:     merge,
		cfg:       cfg,
		oauth: &oauth2.Config{
			ClientID:     cfg.Auth.GoogleClientID,
			ClientSecret: cfg.Auth.GoogleClientSecret,
			RedirectURL:  cfg.Auth.GoogleRedirectURL,
			Scopes:       []string{"openid", "email", "profile"},
			Endpoint:     google.Endpoint,
		},
	}
}

func (s *authService) EnsureUser(id *uuid.UUID, path, userAgent string) (*model.User, error) {
	var user *model.User
	if id != nil {
		if found, err := s.userRepo.FindByID(*id); err == nil {
			user = found
		}
	}
	if user == nil {
		user = &model.User{
			Anonymous:   true,
			Tier:        model.TierAnonymous,
			DisplayName: "Guest",
		}
		if err := s.userRepo.Create(user); err != nil {
			return nil, fmt.Errorf("failed to create anonymous user: %w", err)
		}
		log.Info().Str("userID", user.ID.String()).Msg("Anonymous user created on first visit")
	}

	if err := s.visitRepo.Create(&model.Visit{UserID: user.ID, Path: path, UserAgent: userAgent}); err != nil {
		log.Warn().Err(err).Msg("Failed to record visit")
	}
	return user, nil
}

func (s *authService) Signup(email, password, displayName string, pending *uuid.UUID) (*model.User, string, error) {
	if _, err := s.userRepo.FindByEmail(email); err == nil {
		return nil, "", ErrEmailTaken
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, "", fmt.Errorf("failed to hash password: %w", err)
	}
	hashStr := string(hash)
	if displayName == "" {
		displayName = email
	}
	user := &model.User{
		Email:        &email,
		PasswordHash: &hashStr,
		DisplayName:  displayName,
		Tier:         model.TierFree,
	}
	if err := s.userRepo.Create(user); err != nil {
		return nil, "", fmt.Errorf("failed to create user: %w", err)
	}

	return s.finishAuth(user, pending)
}

func (s *authService) Login(email, password string, pending *uuid.UUID) (*model.User, string, error) {
	user, err := s.userRepo.FindByEmail(email)
	if err != nil || user.PasswordHash == nil {
		return nil, "", ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(*user.PasswordHash), []byte(password)); err != nil {
		return nil, "", ErrInvalidCredentials
	}
	return s.finishAuth(user, pending)
}

type googleUserInfo struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
}

func (s *authService) GoogleLogin(ctx context.Context, code string, pending *uuid.UUID) (*model.User, string, error) {
	token, err := s.oauth.Exchange(ctx, code)
	if err != nil {
		return nil, "", fmt.Errorf("%w: oauth code exchange failed", ErrInvalidCredentials)
	}

	resp, err := s.oauth.Client(ctx, token).Get(googleUserInfoURL)
	if err != nil {
		return nil, "", fmt.Errorf("failed to fetch google profile: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, "", fmt.Errorf("failed to fetch google profile: status %d", resp.StatusCode)
	}
	var info googleUserInfo
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return nil, "", fmt.Errorf("failed to decode google profile: %w", err)
	}

	user, err := s.userRepo.FindByGoogleID(info.ID)
	if err != nil {
		// Link by email when the address already has a password account.
		if byEmail, emailErr := s.userRepo.FindByEmail(info.Email); emailErr == nil {
			user = byEmail
			user.GoogleID = &info.ID
			if err := s.userRepo.Update(user); err != nil {
				return nil, "", fmt.Errorf("failed to link google identity: %w", err)
			}
		} else {
			user = &model.User{
				Email:       &info.Email,
				GoogleID:    &info.ID,
				DisplayName: info.Name,
				Tier:        model.TierFree,
			}
			if err := s.userRepo.Create(user); err != nil {
				return nil, "", fmt.Errorf("failed to create user from google profile: %w", err)
			}
		}
	}
	return s.finishAuth(user, pending)
}

// finishAuth merges any pending anonymous identity and issues the token.
func (s *authService) finishAuth(user *model.User, pending *uuid.UUID) (*model.User, string, error) {
	if pending != nil {
		if err := s.merge.Merge(*pending, user.ID); err != nil {
			return nil, "", fmt.Errorf("account merge failed: %w", err)
		}
		// Reload: the merge may have rewritten XP.
		merged, err := s.userRepo.FindByID(user.ID)
		if err == nil {
			user = merged
		}
	}

	token, err := s.issueToken(user.ID)
	if err != nil {
		return nil, "", err
	}
	return user, token, nil
}

func (s *authService) issueToken(userID uuid.UUID) (string, error) {
	claims := jwt.RegisteredClaims{
		Subject:   userID.String(),
		IssuedAt:  jwt.NewNumericDate(time.Now()),
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Duration(s.cfg.Auth.TokenTTLHours) * time.Hour)),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(s.cfg.Auth.JWTSecret))
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

func (s *authService) ParseToken(tokenStr string) (uuid.UUID, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &jwt.RegisteredClaims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return []byte(s.cfg.Auth.JWTSecret), nil
	})
	if err != nil || !token.Valid {
		return uuid.Nil, ErrInvalidCredentials
	}
	claims, ok := token.Claims.(*jwt.RegisteredClaims)
	if !ok {
		return uuid.Nil, ErrInvalidCredentials
	}
	id, err := uuid.Parse(claims.Subject)
	if err != nil {
		return uuid.Nil, ErrInvalidCredentials
	}
	return id, nil
}
