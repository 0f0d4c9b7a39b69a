package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/noah-isme/lumina-api/internal/dto"
	"github.com/noah-isme/lumina-api/internal/models"
	"github.com/noah-isme/lumina-api/internal/repository"
)

// Auth error sentinels.
var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrAccountSuspended   = errors.New("account is suspended")
	ErrPasswordMismatch   = errors.New("current password is incorrect")
)

// AuthService handles login, logout and password changes.
type AuthService interface {
	Login(ctx context.Context, payload dto.LoginRequest) (dto.LoginResponse, error)
	Logout(ctx context.Context, actor ActivityActor)
	ChangePassword(ctx context.Context, actor ActivityActor, payload dto.ChangePasswordRequest) error
}

type authService struct {
	users     repository.UserRepository
	activity  ActivityRecorder
	validator *validator.Validate
	jwtSecret string
	tokenTTL  time.Duration
	logger    zerolog.Logger
}

// NewAuthService constructs the auth service.
func NewAuthService(users repository.UserRepository, activity ActivityRecorder, validate *validator.Validate, jwtSecret string, tokenTTL time.Duration, logger zerolog.Logger) AuthService {
	if tokenTTL <= 0 {
		tokenTTL = 12 * time.Hour
	}
	return &authService{
		users:     users,
		activity:  activity,
		validator: validate,
		jwtSecret: jwtSecret,
		tokenTTL:  tokenTTL,
		logger:    logger.With().Str("component", "auth_service").Logger(),
	}
}

func (s *authService) Login(ctx context.Context, payload dto.LoginRequest) (dto.LoginResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.LoginResponse{}, err
	}

	email := strings.ToLower(strings.TrimSpace(payload.Email))

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			// Unknown email: the failed login stays unattributed.
			s.activity.Record(ctx, ActivityEntry{
				Action: models.ActionLoginFailed,
				Detail: map[string]interface{}{"email": email, "reason": "unknown email"},
			})
			return dto.LoginResponse{}, ErrInvalidCredentials
		}
		return dto.LoginResponse{}, err
	}

	actor := ActivityActor{ID: user.ID, Email: user.Email, Role: user.Role}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(payload.Password)) != nil {
		s.activity.Record(ctx, ActivityEntry{
			Action: models.ActionLoginFailed,
			Detail: map[string]interface{}{"email": email, "reason": "wrong password"},
			Actor:  &actor,
		})
		return dto.LoginResponse{}, ErrInvalidCredentials
	}

	if user.Status != models.UserStatusActive {
		s.activity.Record(ctx, ActivityEntry{
			Action: models.ActionLoginFailed,
			Detail: map[string]interface{}{"email": email, "reason": "account suspended"},
			Actor:  &actor,
		})
		return dto.LoginResponse{}, ErrAccountSuspended
	}

	now := time.Now()
	user.LastLoginAt = &now
	if err := s.users.Update(ctx, &user); err != nil {
		s.logger.Warn().Err(err).Uint("user_id", user.ID).Msg("failed to update last login timestamp")
	}

	token, err := s.issueToken(user)
	if err != nil {
		return dto.LoginResponse{}, err
	}

	s.activity.Record(ctx, ActivityEntry{Action: models.ActionLogin, Actor: &actor})

	return dto.LoginResponse{Token: token, User: dto.NewAdminUserResponse(user)}, nil
}

func (s *authService) Logout(ctx context.Context, actor ActivityActor) {
	s.activity.Record(ctx, ActivityEntry{Action: models.ActionLogout, Actor: &actor})
}

func (s *authService) ChangePassword(ctx context.Context, actor ActivityActor, payload dto.ChangePasswordRequest) error {
	if err := s.validator.Struct(payload); err != nil {
		return err
	}

	user, err := s.users.GetByID(ctx, actor.ID)
	if err != nil {
		return err
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(payload.CurrentPassword)) != nil {
		return ErrPasswordMismatch
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(payload.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	user.PasswordHash = string(hash)
	if err := s.users.Update(ctx, &user); err != nil {
		return err
	}

	s.activity.Record(ctx, ActivityEntry{Action: models.ActionPasswordChange, Actor: &actor})

	return nil
}

func (s *authService) issueToken(user models.User) (string, error) {
	claims := jwt.MapClaims{
		"sub":   user.ID,
		"email": user.Email,
		"role":  user.Role,
		"exp":   time.Now().Add(s.tokenTTL).Unix(),
		"iat":   time.Now().Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.jwtSecret))
}
