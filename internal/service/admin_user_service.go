package service

import (
	"context"
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/noah-isme/lumina-api/internal/dto"
	"github.com/noah-isme/lumina-api/internal/models"
	"github.com/noah-isme/lumina-api/internal/repository"
)

// User service error sentinels.
var (
	ErrUserNotFound = errors.New("user not found")
	ErrEmailTaken   = errors.New("email already in use")
	ErrSelfDeletion = errors.New("cannot delete the account you are signed in with")
)

// AdminUserService exposes account management use cases.
type AdminUserService interface {
	List(ctx context.Context, req dto.AdminUserListRequest) (dto.AdminUserListResponse, error)
	Create(ctx context.Context, payload dto.AdminUserCreateRequest, actor ActivityActor) (dto.AdminUserResponse, error)
	Update(ctx context.Context, id uint, payload dto.AdminUserUpdateRequest, actor ActivityActor) (dto.AdminUserResponse, error)
	Delete(ctx context.Context, id uint, actor ActivityActor) error
}

type adminUserService struct {
	repo      repository.UserRepository
	activity  ActivityRecorder
	validator *validator.Validate
	logger    zerolog.Logger
}

// NewAdminUserService constructs the user admin service.
func NewAdminUserService(repo repository.UserRepository, activity ActivityRecorder, validate *validator.Validate, logger zerolog.Logger) AdminUserService {
	return &adminUserService{
		repo:      repo,
		activity:  activity,
		validator: validate,
		logger:    logger.With().Str("component", "admin_user_service").Logger(),
	}
}

func (s *adminUserService) List(ctx context.Context, req dto.AdminUserListRequest) (dto.AdminUserListResponse, error) {
	filter := repository.UserFilter{
		Search:   strings.TrimSpace(req.Search),
		Role:     strings.TrimSpace(req.Role),
		Status:   strings.TrimSpace(req.Status),
		Page:     normalizePage(req.Page),
		PageSize: clampPageSize(req.PageSize),
	}

	users, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return dto.AdminUserListResponse{}, err
	}

	items := make([]dto.AdminUserResponse, 0, len(users))
	for _, user := range users {
		items = append(items, dto.NewAdminUserResponse(user))
	}

	pagination := dto.PaginationMeta{
		Page:       filter.Page,
		PageSize:   filter.PageSize,
		TotalItems: total,
		TotalPages: calculateTotalPages(total, filter.PageSize),
	}

	return dto.AdminUserListResponse{Items: items, Pagination: pagination}, nil
}

func (s *adminUserService) Create(ctx context.Context, payload dto.AdminUserCreateRequest, actor ActivityActor) (dto.AdminUserResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.AdminUserResponse{}, err
	}

	email := strings.ToLower(strings.TrimSpace(payload.Email))
	if _, err := s.repo.GetByEmail(ctx, email); err == nil {
		return dto.AdminUserResponse{}, ErrEmailTaken
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return dto.AdminUserResponse{}, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(payload.Password), bcrypt.DefaultCost)
	if err != nil {
		return dto.AdminUserResponse{}, err
	}

	user := models.User{
		Name:         strings.TrimSpace(payload.Name),
		Email:        email,
		PasswordHash: string(hash),
		Role:         payload.Role,
		Status:       models.UserStatusActive,
	}

	if err := s.repo.Create(ctx, &user); err != nil {
		return dto.AdminUserResponse{}, err
	}

	s.recordActivity(ctx, actor, models.ActionUserCreate, user.Email)
	return dto.NewAdminUserResponse(user), nil
}

func (s *adminUserService) Update(ctx context.Context, id uint, payload dto.AdminUserUpdateRequest, actor ActivityActor) (dto.AdminUserResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.AdminUserResponse{}, err
	}

	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.AdminUserResponse{}, ErrUserNotFound
		}
		return dto.AdminUserResponse{}, err
	}

	if payload.Name != nil {
		user.Name = strings.TrimSpace(*payload.Name)
	}
	if payload.Email != nil {
		email := strings.ToLower(strings.TrimSpace(*payload.Email))
		if email != user.Email {
			if existing, err := s.repo.GetByEmail(ctx, email); err == nil && existing.ID != user.ID {
				return dto.AdminUserResponse{}, ErrEmailTaken
			} else if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
				return dto.AdminUserResponse{}, err
			}
		}
		user.Email = email
	}
	if payload.Role != nil {
		user.Role = *payload.Role
	}
	if payload.Status != nil {
		user.Status = *payload.Status
	}

	if err := s.repo.Update(ctx, &user); err != nil {
		return dto.AdminUserResponse{}, err
	}

	s.recordActivity(ctx, actor, models.ActionUserUpdate, user.Email)
	return dto.NewAdminUserResponse(user), nil
}

func (s *adminUserService) Delete(ctx context.Context, id uint, actor ActivityActor) error {
	if id == actor.ID {
		return ErrSelfDeletion
	}

	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrUserNotFound
		}
		return err
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrUserNotFound
		}
		return err
	}

	s.recordActivity(ctx, actor, models.ActionUserDelete, user.Email)
	return nil
}

func (s *adminUserService) recordActivity(ctx context.Context, actor ActivityActor, action models.ActionKind, email string) {
	s.activity.Record(ctx, ActivityEntry{
		Action: action,
		Detail: map[string]interface{}{"user_email": email},
		Actor:  &actor,
	})
}
