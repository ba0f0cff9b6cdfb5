package services

import "errors"

// Общие ошибки сервисного слоя; обработчики превращают их в HTTP-статусы.
var (
	ErrNotFound = errors.New("requested resource not found")

	ErrUserNotFound      = errors.New("user not found")
	ErrScrimmageNotFound = errors.New("scrimmage not found")
	ErrInviteNotFound    = errors.New("invite not found")

	// Конфликты уникальности
	ErrUsernameConflict = errors.New("username is already taken")
	ErrInviteConflict   = errors.New("advisor is already invited to this scrimmage")

	// Валидация и бизнес-правила
	ErrAdminRoleNotAllowed    = errors.New("admin accounts cannot be self-provisioned")
	ErrPresenterRoleRequired  = errors.New("presenter list contains a user without the presenter role")
	ErrAdvisorRoleRequired    = errors.New("advisor list contains a user without the advisor role")
	ErrAdvisorLimitExceeded   = errors.New("advisor list exceeds the scrimmage advisor limit")
	ErrMaxAdvisorsInvalid     = errors.New("max_advisors must be a positive number")
	ErrInviteAlreadyResponded = errors.New("invite has already been responded to")

	// Аутентификация и авторизация
	ErrAuthInvalidCredentials = errors.New("invalid username or password")
	ErrOperationNotAllowed    = errors.New("operation not allowed for the current user")

	ErrUploaderNotConfigured = errors.New("file storage is not configured")
)
