package handlers

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/golang-jwt/jwt/v4"
	"github.com/ssched/scrimmage-api/middleware"
	"github.com/ssched/scrimmage-api/models"
	"github.com/ssched/scrimmage-api/services"
	"github.com/stretchr/testify/require"
)

const testJWTSecret = "handler-test-secret"

// bearerToken подписывает токен теми же claims, что выдаёт Login.
func bearerToken(t *testing.T, userID int, roles string) string {
	t.Helper()
	claims := jwt.MapClaims{
		"user_id": userID,
		"roles":   roles,
		"exp":     time.Now().Add(time.Hour).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(testJWTSecret))
	require.NoError(t, err)
	return "Bearer " + signed
}

// newProtectedRouter монтирует маршруты за аутентификацией, как в боевой конфигурации.
func newProtectedRouter(register func(r chi.Router)) *chi.Mux {
	router := chi.NewRouter()
	router.Group(func(r chi.Router) {
		r.Use(middleware.Authenticate([]byte(testJWTSecret)))
		register(r)
	})
	return router
}

// Фейковые сервисы на функциональных полях: тест подставляет только то,
// что собирается вызывать.

type fakeAuthService struct {
	loginFn  func(ctx context.Context, credentials models.Credentials) (*models.User, error)
	signUpFn func(ctx context.Context, input services.SignUpInput) (*models.User, error)
}

func (f *fakeAuthService) Login(ctx context.Context, credentials models.Credentials) (*models.User, error) {
	return f.loginFn(ctx, credentials)
}

func (f *fakeAuthService) SignUp(ctx context.Context, input services.SignUpInput) (*models.User, error) {
	return f.signUpFn(ctx, input)
}

type fakeUserService struct {
	listFn   func(ctx context.Context, roleFilter string) ([]models.User, error)
	getFn    func(ctx context.Context, id int) (*models.User, error)
	updateFn func(ctx context.Context, caller services.Caller, id int, input services.UpdateUserInput) (*models.User, error)
	deleteFn func(ctx context.Context, caller services.Caller, id int) error
	avatarFn func(ctx context.Context, caller services.Caller, id int, file io.Reader, contentType string) (*models.User, error)
}

func (f *fakeUserService) List(ctx context.Context, roleFilter string) ([]models.User, error) {
	return f.listFn(ctx, roleFilter)
}

func (f *fakeUserService) GetByID(ctx context.Context, id int) (*models.User, error) {
	return f.getFn(ctx, id)
}

func (f *fakeUserService) Update(ctx context.Context, caller services.Caller, id int, input services.UpdateUserInput) (*models.User, error) {
	return f.updateFn(ctx, caller, id, input)
}

func (f *fakeUserService) Delete(ctx context.Context, caller services.Caller, id int) error {
	return f.deleteFn(ctx, caller, id)
}

func (f *fakeUserService) UpdateAvatar(ctx context.Context, caller services.Caller, id int, file io.Reader, contentType string) (*models.User, error) {
	return f.avatarFn(ctx, caller, id, file, contentType)
}

type fakeScrimmageService struct {
	listFn   func(ctx context.Context, caller services.Caller, input services.ListScrimmagesInput) ([]*models.Scrimmage, error)
	createFn func(ctx context.Context, caller services.Caller, input services.CreateScrimmageInput) (*models.Scrimmage, error)
	getFn    func(ctx context.Context, id int) (*models.Scrimmage, error)
	updateFn func(ctx context.Context, caller services.Caller, id int, input services.UpdateScrimmageInput) (*models.Scrimmage, error)
	deleteFn func(ctx context.Context, caller services.Caller, id int) error
}

func (f *fakeScrimmageService) List(ctx context.Context, caller services.Caller, input services.ListScrimmagesInput) ([]*models.Scrimmage, error) {
	return f.listFn(ctx, caller, input)
}

func (f *fakeScrimmageService) Create(ctx context.Context, caller services.Caller, input services.CreateScrimmageInput) (*models.Scrimmage, error) {
	return f.createFn(ctx, caller, input)
}

func (f *fakeScrimmageService) GetByID(ctx context.Context, id int) (*models.Scrimmage, error) {
	return f.getFn(ctx, id)
}

func (f *fakeScrimmageService) Update(ctx context.Context, caller services.Caller, id int, input services.UpdateScrimmageInput) (*models.Scrimmage, error) {
	return f.updateFn(ctx, caller, id, input)
}

func (f *fakeScrimmageService) Delete(ctx context.Context, caller services.Caller, id int) error {
	return f.deleteFn(ctx, caller, id)
}

type fakeInviteService struct {
	createFn  func(ctx context.Context, caller services.Caller, input services.CreateInviteInput) (*models.ScrimmageInvite, error)
	getFn     func(ctx context.Context, id int) (*models.ScrimmageInvite, error)
	listFn    func(ctx context.Context, caller services.Caller, input services.ListInvitesInput) ([]*models.ScrimmageInvite, error)
	respondFn func(ctx context.Context, caller services.Caller, id int, accepted bool) (*models.ScrimmageInvite, error)
	deleteFn  func(ctx context.Context, caller services.Caller, id int) error
}

func (f *fakeInviteService) Create(ctx context.Context, caller services.Caller, input services.CreateInviteInput) (*models.ScrimmageInvite, error) {
	return f.createFn(ctx, caller, input)
}

func (f *fakeInviteService) GetByID(ctx context.Context, id int) (*models.ScrimmageInvite, error) {
	return f.getFn(ctx, id)
}

func (f *fakeInviteService) List(ctx context.Context, caller services.Caller, input services.ListInvitesInput) ([]*models.ScrimmageInvite, error) {
	return f.listFn(ctx, caller, input)
}

func (f *fakeInviteService) Respond(ctx context.Context, caller services.Caller, id int, accepted bool) (*models.ScrimmageInvite, error) {
	return f.respondFn(ctx, caller, id, accepted)
}

func (f *fakeInviteService) Delete(ctx context.Context, caller services.Caller, id int) error {
	return f.deleteFn(ctx, caller, id)
}
