package routes

import (
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/ssched/scrimmage-api/docs"
	"github.com/ssched/scrimmage-api/handlers"
	"github.com/ssched/scrimmage-api/middleware"
)

func SetupRoutes(
	router *chi.Mux,
	jwtSecret []byte,
	authHandler *handlers.AuthHandler,
	userHandler *handlers.UserHandler,
	scrimmageHandler *handlers.ScrimmageHandler,
	inviteHandler *handlers.InviteHandler,
	webSocketHandler *handlers.WebSocketHandler,
) {
	router.Use(chiMiddleware.RequestID)
	router.Use(chiMiddleware.RealIP)
	router.Use(chiMiddleware.Logger)
	router.Use(chiMiddleware.Recoverer)

	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	router.Get("/swagger/doc.json", docs.ServeOpenAPI)
	router.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
	))

	// Публичные маршруты: вход и регистрация.
	router.Post("/login", authHandler.Login)
	router.Post("/Users", authHandler.SignUp)

	// Всё остальное — только с токеном.
	router.Group(func(r chi.Router) {
		r.Use(middleware.Authenticate(jwtSecret))

		r.Get("/Users", userHandler.List)
		r.Get("/Users/{id}", userHandler.GetByID)
		r.Post("/Users/{id}", userHandler.Update)
		r.Delete("/Users/{id}", userHandler.Delete)
		r.Post("/Users/{id}/avatar", userHandler.UploadAvatar)

		r.Route("/Scrimmages", func(r chi.Router) {
			r.Get("/", scrimmageHandler.List)
			r.Post("/", scrimmageHandler.Create)
			r.Get("/{id}", scrimmageHandler.GetByID)
			r.Post("/{id}", scrimmageHandler.Update)
			r.Delete("/{id}", scrimmageHandler.Delete)
		})

		r.Route("/Invites", func(r chi.Router) {
			r.Get("/", inviteHandler.List)
			r.Post("/", inviteHandler.Create)
			r.Get("/{id}", inviteHandler.GetByID)
			r.Post("/{id}/respond", inviteHandler.Respond)
			r.Delete("/{id}", inviteHandler.Delete)
		})

		r.Get("/ws/scrimmages/{id}", webSocketHandler.ServeScrimmage)
	})
}
