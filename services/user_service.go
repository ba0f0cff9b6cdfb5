package services

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/ssched/scrimmage-api/models"
	"github.com/ssched/scrimmage-api/repositories"
	"github.com/ssched/scrimmage-api/storage"
	"golang.org/x/crypto/bcrypt"
)

type UserService interface {
	// List возвращает пользователей, опционально отфильтрованных по
	// подстрочному совпадению со строкой ролей (чувствительно к регистру).
	List(ctx context.Context, roleFilter string) ([]models.User, error)
	GetByID(ctx context.Context, id int) (*models.User, error)
	// Update применяет частичный патч: отсутствующие поля не трогаются,
	// явно переданные перезаписываются, включая "ложные" значения.
	Update(ctx context.Context, caller Caller, id int, input UpdateUserInput) (*models.User, error)
	Delete(ctx context.Context, caller Caller, id int) error
	UpdateAvatar(ctx context.Context, caller Caller, id int, file io.Reader, contentType string) (*models.User, error)
}

type UpdateUserInput struct {
	Username  *string         `json:"username"`
	Password  *string         `json:"password"`
	FirstName *string         `json:"firstname"`
	LastName  *string         `json:"lastname"`
	Roles     *models.RoleSet `json:"roles"`
	IsActive  *bool           `json:"is_active"`
}

type userService struct {
	userRepo repositories.UserRepository
	uploader storage.FileUploader // nil, если хранилище файлов не настроено
}

func NewUserService(userRepo repositories.UserRepository, uploader storage.FileUploader) UserService {
	return &userService{
		userRepo: userRepo,
		uploader: uploader,
	}
}

func (s *userService) List(ctx context.Context, roleFilter string) ([]models.User, error) {
	users, err := s.userRepo.List(ctx, roleFilter)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	for i := range users {
		users[i].PasswordHash = ""
		s.decorateAvatarURL(&users[i])
	}
	return users, nil
}

func (s *userService) GetByID(ctx context.Context, id int) (*models.User, error) {
	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user %d: %w", id, err)
	}
	user.PasswordHash = ""
	s.decorateAvatarURL(user)
	return user, nil
}

func (s *userService) Update(ctx context.Context, caller Caller, id int, input UpdateUserInput) (*models.User, error) {
	if !CanManageUser(caller, id) {
		return nil, ErrOperationNotAllowed
	}

	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user %d: %w", id, err)
	}

	if input.Username != nil {
		user.Username = *input.Username
	}
	if input.Password != nil {
		hashedPassword, hashErr := bcrypt.GenerateFromPassword([]byte(*input.Password), bcrypt.DefaultCost)
		if hashErr != nil {
			return nil, fmt.Errorf("ошибка хеширования пароля: %w", hashErr)
		}
		user.PasswordHash = string(hashedPassword)
	}
	if input.FirstName != nil {
		user.FirstName = *input.FirstName
	}
	if input.LastName != nil {
		user.LastName = *input.LastName
	}
	if input.Roles != nil {
		user.Roles = *input.Roles
	}
	if input.IsActive != nil {
		user.IsActive = *input.IsActive
	}

	if err := s.userRepo.Update(ctx, user); err != nil {
		if errors.Is(err, repositories.ErrUserUsernameConflict) {
			return nil, ErrUsernameConflict
		}
		if errors.Is(err, repositories.ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to update user %d: %w", id, err)
	}

	user.PasswordHash = ""
	s.decorateAvatarURL(user)
	return user, nil
}

func (s *userService) Delete(ctx context.Context, caller Caller, id int) error {
	if !CanManageUser(caller, id) {
		return ErrOperationNotAllowed
	}

	if err := s.userRepo.Delete(ctx, id); err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return ErrUserNotFound
		}
		return fmt.Errorf("failed to delete user %d: %w", id, err)
	}
	return nil
}

func (s *userService) UpdateAvatar(ctx context.Context, caller Caller, id int, file io.Reader, contentType string) (*models.User, error) {
	// Аватар меняет только сам пользователь.
	if caller.ID != id {
		return nil, ErrOperationNotAllowed
	}
	if s.uploader == nil {
		return nil, ErrUploaderNotConfigured
	}

	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user %d: %w", id, err)
	}

	key := fmt.Sprintf("avatars/user_%d", id)
	if _, err := s.uploader.Upload(ctx, key, contentType, file); err != nil {
		return nil, fmt.Errorf("failed to upload avatar for user %d: %w", id, err)
	}

	user.AvatarKey = &key
	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to persist avatar key for user %d: %w", id, err)
	}

	user.PasswordHash = ""
	s.decorateAvatarURL(user)
	return user, nil
}

func (s *userService) decorateAvatarURL(user *models.User) {
	if s.uploader == nil || user.AvatarKey == nil {
		return
	}
	url := s.uploader.GetPublicURL(*user.AvatarKey)
	user.AvatarURL = &url
}
