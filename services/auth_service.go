package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/ssched/scrimmage-api/models"
	"github.com/ssched/scrimmage-api/repositories"
	"golang.org/x/crypto/bcrypt"
)

type AuthService interface {
	// SignUp — публичная регистрация. Роль admin самоназначить нельзя.
	SignUp(ctx context.Context, input SignUpInput) (*models.User, error)
	// Login проверяет учётные данные; токен подписывает обработчик.
	Login(ctx context.Context, credentials models.Credentials) (*models.User, error)
}

type SignUpInput struct {
	Username  string         `json:"username"`
	Password  string         `json:"password"`
	FirstName string         `json:"firstname"`
	LastName  string         `json:"lastname"`
	Roles     models.RoleSet `json:"roles"`
}

type authService struct {
	userRepo repositories.UserRepository
}

func NewAuthService(userRepo repositories.UserRepository) AuthService {
	return &authService{
		userRepo: userRepo,
	}
}

func (s *authService) SignUp(ctx context.Context, input SignUpInput) (*models.User, error) {
	if input.Roles.Has(models.RoleAdmin) {
		return nil, ErrAdminRoleNotAllowed
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("ошибка хеширования пароля: %w", err)
	}

	user := &models.User{
		Username:     input.Username,
		PasswordHash: string(hashedPassword),
		FirstName:    input.FirstName,
		LastName:     input.LastName,
		Roles:        input.Roles,
		IsActive:     true,
	}

	// Никакой предварительной проверки существования имени: уникальный
	// индекс в хранилище закрывает гонку между проверкой и вставкой.
	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, repositories.ErrUserUsernameConflict) {
			return nil, ErrUsernameConflict
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	user.PasswordHash = ""
	return user, nil
}

func (s *authService) Login(ctx context.Context, credentials models.Credentials) (*models.User, error) {
	user, err := s.userRepo.GetByUsername(ctx, credentials.Username)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return nil, ErrAuthInvalidCredentials
		}
		return nil, fmt.Errorf("failed to find user by username: %w", err)
	}

	if !user.IsActive {
		return nil, ErrAuthInvalidCredentials
	}

	err = bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(credentials.Password))
	if err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return nil, ErrAuthInvalidCredentials
		}
		return nil, fmt.Errorf("failed to compare password hash: %w", err)
	}

	user.PasswordHash = ""
	return user, nil
}
