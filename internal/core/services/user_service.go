package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/SscSPs/btc_rate_service/internal/apperrors"
	"github.com/SscSPs/btc_rate_service/internal/core/domain"
	"github.com/SscSPs/btc_rate_service/internal/core/ports"
	portsrepo "github.com/SscSPs/btc_rate_service/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/btc_rate_service/internal/core/ports/services"
	"github.com/SscSPs/btc_rate_service/internal/dto"
	"github.com/SscSPs/btc_rate_service/internal/utils"
	"github.com/go-playground/validator/v10"
)

type userService struct {
	BaseService
	userRepo    portsrepo.UserRepositoryFacade
	cost        int
	minPassword int
	validate    *validator.Validate
	events      ports.EventPublisher
	now         func() time.Time
}

// UserServiceOption configures the user service
type UserServiceOption func(*userService)

// WithUserEventPublisher publishes users.created after each successful creation.
func WithUserEventPublisher(p ports.EventPublisher) UserServiceOption {
	return func(s *userService) {
		s.events = p
	}
}

// WithMinPasswordLength overrides the default minimum of one character.
func WithMinPasswordLength(n int) UserServiceOption {
	return func(s *userService) {
		if n > 0 {
			s.minPassword = n
		}
	}
}

// NewUserService creates a user service hashing passwords at the given bcrypt cost.
func NewUserService(userRepo portsrepo.UserRepositoryFacade, cost int, logger *slog.Logger, options ...UserServiceOption) portssvc.UserSvcFacade {
	s := &userService{
		BaseService: BaseService{Logger: logger},
		userRepo:    userRepo,
		cost:        cost,
		minPassword: 1,
		validate:    validator.New(),
		now:         time.Now,
	}
	for _, option := range options {
		option(s)
	}
	return s
}

var _ portssvc.UserSvcFacade = (*userService)(nil)

func (s *userService) CreateUser(ctx context.Context, req dto.CreateUserRequest) (*domain.User, error) {
	if missing := req.MissingKeys(); len(missing) > 0 {
		return nil, apperrors.NewAppError(http.StatusBadRequest, "missing "+strings.Join(missing, ", "), apperrors.ErrValidation)
	}
	email, password := *req.Email, *req.Password

	if err := s.validate.Var(email, "required,email"); err != nil {
		return nil, apperrors.NewAppError(http.StatusBadRequest, "Email is not valid.", apperrors.ErrValidation)
	}
	if len(password) < s.minPassword {
		return nil, apperrors.NewAppError(http.StatusBadRequest, fmt.Sprintf("Password must contain at least %d characters.", s.minPassword), apperrors.ErrValidation)
	}
	if len(password) > utils.MaxPasswordBytes {
		return nil, apperrors.NewAppError(http.StatusBadRequest, fmt.Sprintf("Password must not exceed %d bytes.", utils.MaxPasswordBytes), apperrors.ErrValidation)
	}

	hash, err := utils.HashPassword(password, s.cost)
	if err != nil {
		s.LogError(ctx, err, "Failed to hash password")
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := domain.User{
		Email:        email,
		PasswordHash: hash,
		CreatedAt:    s.now().UTC(),
	}
	if err := s.userRepo.SaveUser(ctx, user); err != nil {
		if errors.Is(err, apperrors.ErrDuplicate) {
			s.LogInfo(ctx, "User already exists")
			return nil, err
		}
		s.LogError(ctx, err, "Failed to save user")
		return nil, fmt.Errorf("%w: %w", apperrors.ErrStorageUnavailable, err)
	}

	if s.events != nil {
		if err := s.events.PublishUserCreated(ctx, domain.UserCreatedEvent{Email: user.Email, CreatedAt: user.CreatedAt}); err != nil {
			s.LogWarn(ctx, "Failed to publish user created event", slog.String("error", err.Error()))
		}
	}

	s.LogInfo(ctx, "User created")
	return &user, nil
}
