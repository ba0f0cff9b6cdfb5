package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/ssched/scrimmage-api/models"
	"github.com/ssched/scrimmage-api/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserHandlerGetByID(t *testing.T) {
	t.Run("возвращает пользователя, хеш пароля не сериализуется", func(t *testing.T) {
		svc := &fakeUserService{
			getFn: func(_ context.Context, id int) (*models.User, error) {
				require.Equal(t, 7, id)
				return &models.User{
					ID:           7,
					Username:     "alice",
					PasswordHash: "leak-me-not",
					Roles:        models.RoleSet{models.RolePresenter},
					IsActive:     true,
				}, nil
			},
		}
		handler := NewUserHandler(svc)
		router := newProtectedRouter(func(r chi.Router) {
			r.Get("/Users/{id}", handler.GetByID)
		})

		req := httptest.NewRequest(http.MethodGet, "/Users/7", nil)
		req.Header.Set("Authorization", bearerToken(t, 7, "presenter"))
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		assert.NotContains(t, rec.Body.String(), "leak-me-not")

		var payload map[string]interface{}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &payload))
		assert.Equal(t, "alice", payload["username"])
	})

	t.Run("несуществующий id — 404", func(t *testing.T) {
		svc := &fakeUserService{
			getFn: func(context.Context, int) (*models.User, error) {
				return nil, services.ErrUserNotFound
			},
		}
		handler := NewUserHandler(svc)
		router := newProtectedRouter(func(r chi.Router) {
			r.Get("/Users/{id}", handler.GetByID)
		})

		req := httptest.NewRequest(http.MethodGet, "/Users/42", nil)
		req.Header.Set("Authorization", bearerToken(t, 7, "presenter"))
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("нечисловой id — 400", func(t *testing.T) {
		handler := NewUserHandler(&fakeUserService{})
		router := newProtectedRouter(func(r chi.Router) {
			r.Get("/Users/{id}", handler.GetByID)
		})

		req := httptest.NewRequest(http.MethodGet, "/Users/abc", nil)
		req.Header.Set("Authorization", bearerToken(t, 7, "presenter"))
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("без токена — 401", func(t *testing.T) {
		handler := NewUserHandler(&fakeUserService{})
		router := newProtectedRouter(func(r chi.Router) {
			r.Get("/Users/{id}", handler.GetByID)
		})

		req := httptest.NewRequest(http.MethodGet, "/Users/7", nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}

func TestUserHandlerUpdate(t *testing.T) {
	t.Run("патч уходит в сервис с личностью вызывающего", func(t *testing.T) {
		svc := &fakeUserService{
			updateFn: func(_ context.Context, caller services.Caller, id int, input services.UpdateUserInput) (*models.User, error) {
				assert.Equal(t, 7, caller.ID)
				assert.Equal(t, models.RoleSet{models.RolePresenter}, caller.Roles)
				assert.Equal(t, 7, id)
				require.NotNil(t, input.FirstName)
				assert.Equal(t, "Alice", *input.FirstName)
				assert.Nil(t, input.Username)
				return &models.User{ID: 7, Username: "alice", FirstName: "Alice"}, nil
			},
		}
		handler := NewUserHandler(svc)
		router := newProtectedRouter(func(r chi.Router) {
			r.Post("/Users/{id}", handler.Update)
		})

		req := httptest.NewRequest(http.MethodPost, "/Users/7", strings.NewReader(`{"firstname":"Alice"}`))
		req.Header.Set("Authorization", bearerToken(t, 7, "presenter"))
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("пустой патч — 400", func(t *testing.T) {
		handler := NewUserHandler(&fakeUserService{})
		router := newProtectedRouter(func(r chi.Router) {
			r.Post("/Users/{id}", handler.Update)
		})

		req := httptest.NewRequest(http.MethodPost, "/Users/7", strings.NewReader(`{}`))
		req.Header.Set("Authorization", bearerToken(t, 7, "presenter"))
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("отказ сервиса в доступе — 401", func(t *testing.T) {
		svc := &fakeUserService{
			updateFn: func(context.Context, services.Caller, int, services.UpdateUserInput) (*models.User, error) {
				return nil, services.ErrOperationNotAllowed
			},
		}
		handler := NewUserHandler(svc)
		router := newProtectedRouter(func(r chi.Router) {
			r.Post("/Users/{id}", handler.Update)
		})

		req := httptest.NewRequest(http.MethodPost, "/Users/1", strings.NewReader(`{"firstname":"X"}`))
		req.Header.Set("Authorization", bearerToken(t, 7, "presenter"))
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("переименование в занятое имя — 409", func(t *testing.T) {
		svc := &fakeUserService{
			updateFn: func(context.Context, services.Caller, int, services.UpdateUserInput) (*models.User, error) {
				return nil, services.ErrUsernameConflict
			},
		}
		handler := NewUserHandler(svc)
		router := newProtectedRouter(func(r chi.Router) {
			r.Post("/Users/{id}", handler.Update)
		})

		req := httptest.NewRequest(http.MethodPost, "/Users/7", strings.NewReader(`{"username":"bob"}`))
		req.Header.Set("Authorization", bearerToken(t, 7, "presenter"))
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusConflict, rec.Code)
	})
}

func TestUserHandlerDelete(t *testing.T) {
	t.Run("успешное удаление — 204 без тела", func(t *testing.T) {
		svc := &fakeUserService{
			deleteFn: func(_ context.Context, caller services.Caller, id int) error {
				assert.Equal(t, 7, caller.ID)
				assert.Equal(t, 7, id)
				return nil
			},
		}
		handler := NewUserHandler(svc)
		router := newProtectedRouter(func(r chi.Router) {
			r.Delete("/Users/{id}", handler.Delete)
		})

		req := httptest.NewRequest(http.MethodDelete, "/Users/7", nil)
		req.Header.Set("Authorization", bearerToken(t, 7, "presenter"))
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusNoContent, rec.Code)
		assert.Empty(t, rec.Body.String())
	})

	t.Run("несуществующий id — 404", func(t *testing.T) {
		svc := &fakeUserService{
			deleteFn: func(context.Context, services.Caller, int) error {
				return services.ErrUserNotFound
			},
		}
		handler := NewUserHandler(svc)
		router := newProtectedRouter(func(r chi.Router) {
			r.Delete("/Users/{id}", handler.Delete)
		})

		req := httptest.NewRequest(http.MethodDelete, "/Users/42", nil)
		req.Header.Set("Authorization", bearerToken(t, 7, "presenter"))
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestUserHandlerList(t *testing.T) {
	svc := &fakeUserService{
		listFn: func(_ context.Context, roleFilter string) ([]models.User, error) {
			assert.Equal(t, "advisor", roleFilter)
			return []models.User{
				{ID: 3, Username: "carol", Roles: models.RoleSet{models.RoleAdvisor}},
			}, nil
		},
	}
	handler := NewUserHandler(svc)
	router := newProtectedRouter(func(r chi.Router) {
		r.Get("/Users", handler.List)
	})

	req := httptest.NewRequest(http.MethodGet, "/Users?role=advisor", nil)
	req.Header.Set("Authorization", bearerToken(t, 7, "presenter"))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var users []map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &users))
	require.Len(t, users, 1)
	assert.Equal(t, "carol", users[0]["username"])
}
