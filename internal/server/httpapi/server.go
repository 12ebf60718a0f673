package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"gestortareas/internal/logging"
	"gestortareas/internal/server/config"
	"gestortareas/internal/server/recovery"
	"gestortareas/internal/server/tasks"
	"gestortareas/internal/server/users"
)

// Server bundles the services behind the REST API and knows how to route
// requests to them.
type Server struct {
	users     *users.Service
	recovery  *recovery.Service
	tasks     *tasks.Service
	jwtSecret []byte
	logger    logging.Logger
}

func NewServer(usersSvc *users.Service, recoverySvc *recovery.Service, tasksSvc *tasks.Service, cfg *config.Config, logger logging.Logger) *Server {
	return &Server{
		users:     usersSvc,
		recovery:  recoverySvc,
		tasks:     tasksSvc,
		jwtSecret: []byte(cfg.JWTSecret),
		logger:    logger,
	}
}

// Routes assembles the chi router for the whole API.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Recoverer)
	r.Use(s.requestLogger)

	r.Route("/api/v1", func(r chi.Router) {

		r.Route("/auth", func(r chi.Router) {
			r.Post("/registro", s.handleRegister)
			r.Post("/login", s.handleLogin)
			r.Post("/refresh", s.handleRefresh)
			r.Post("/logout", s.handleLogout)

			r.Group(func(r chi.Router) {
				r.Use(s.authenticator)
				r.Post("/logout-todo", s.handleLogoutAll)
			})
		})

		r.Route("/usuarios", func(r chi.Router) {
			r.Use(s.authenticator)
			r.Get("/mi-perfil", s.handleGetProfile)
			r.Put("/mi-perfil", s.handleUpdateProfile)
			r.Put("/cambiar-contrasena", s.handleChangePassword)
		})

		r.Route("/recuperacion", func(r chi.Router) {
			r.Post("/solicitar", s.handleRecoveryRequest)
			r.Get("/verificar/{token}", s.handleRecoveryVerify)
			r.Post("/restablecer", s.handleRecoveryReset)
		})

		r.Route("/tareas", func(r chi.Router) {
			r.Use(s.authenticator)
			r.Get("/", s.handleTaskList)
			r.Post("/", s.handleTaskCreate)
			r.Get("/{id}", s.handleTaskGet)
			r.Put("/{id}", s.handleTaskUpdate)
			r.Delete("/{id}", s.handleTaskDelete)
			r.Patch("/{id}/archivar", s.handleTaskToggleArchive)
		})
	})

	return r
}
