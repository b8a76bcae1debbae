package services

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"moviehub-backend/internal/apperrors"
	"moviehub-backend/internal/auth"
	"moviehub-backend/internal/config"
	"moviehub-backend/internal/models"
	"moviehub-backend/internal/repository"

	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
)

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[a-zA-Z]{2,}$`)

type UserService interface {
	Register(ctx context.Context, name, email, password string) (*models.User, string, error)
	Authenticate(ctx context.Context, email, password string) (*models.User, string, error)
	GetProfile(ctx context.Context, userID uint) (*models.User, error)
}

type userService struct {
	users  repository.UserRepository
	cfg    config.AuthConfig
	logger *logrus.Logger
}

func NewUserService(users repository.UserRepository, cfg config.AuthConfig, logger *logrus.Logger) UserService {
	return &userService{
		users:  users,
		cfg:    cfg,
		logger: logger,
	}
}

func (s *userService) Register(ctx context.Context, name, email, password string) (*models.User, string, error) {
	name = strings.TrimSpace(name)
	email = strings.ToLower(strings.TrimSpace(email))

	if name == "" {
		return nil, "", fmt.Errorf("%w: name is required", apperrors.ErrValidation)
	}
	if len(name) > 50 {
		return nil, "", fmt.Errorf("%w: name cannot exceed 50 characters", apperrors.ErrValidation)
	}
	if !emailPattern.MatchString(email) {
		return nil, "", fmt.Errorf("%w: invalid email address", apperrors.ErrValidation)
	}
	if len(password) < 6 {
		return nil, "", fmt.Errorf("%w: password must be at least 6 characters", apperrors.ErrValidation)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cfg.BcryptCost)
	if err != nil {
		return nil, "", fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{
		Name:     name,
		Email:    email,
		Password: string(hash),
		Role:     models.RoleUser,
	}

	if err := s.users.Create(ctx, user); err != nil {
		return nil, "", err
	}

	token, err := auth.GenerateToken(user.ID, user.Role, []byte(s.cfg.JWTSecret), s.cfg.TokenTTL)
	if err != nil {
		return nil, "", err
	}

	s.logger.WithField("user_id", user.ID).Info("User registered")
	return user, token, nil
}

func (s *userService) Authenticate(ctx context.Context, email, password string) (*models.User, string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return nil, "", apperrors.ErrInvalidCredentials
	}

	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		return nil, "", err
	}
	if user == nil {
		return nil, "", apperrors.ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return nil, "", apperrors.ErrInvalidCredentials
	}

	token, err := auth.GenerateToken(user.ID, user.Role, []byte(s.cfg.JWTSecret), s.cfg.TokenTTL)
	if err != nil {
		return nil, "", err
	}

	return user, token, nil
}

func (s *userService) GetProfile(ctx context.Context, userID uint) (*models.User, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	user.Password = ""
	return user, nil
}
