package api

import (
	"net/http"
	"strings"

	"cloud-drive/internal/models"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger"

	_ "cloud-drive/docs"
)

func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(MetricsMiddleware)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: s.config.CORS.AllowedOrigins,
		AllowedMethods: []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		ExposedHeaders: []string{"X-Request-ID"},
		MaxAge:         300,
	}))

	publicURL := strings.TrimRight(s.config.Server.PublicURL, "/")
	r.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL(publicURL+"/swagger/doc.json"),
	))

	r.Get("/ws", s.ServeWsHandler)
	r.Get("/health", s.HealthCheckHandler)
	r.Handle("/metrics", promhttp.Handler())
	r.Get("/public/{nodeId}", s.PublicDownloadHandler)

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/auth/login", s.LoginHandler)
		r.Post("/auth/refresh", s.RefreshTokenHandler)
		r.Post("/register", s.RegisterHandler)

		r.Group(func(r chi.Router) {
			r.Use(s.AuthMiddleware)

			r.Get("/me", s.GetCurrentUserHandler)
			r.Get("/me/storage", s.GetStorageUsageHandler)

			r.Get("/files", s.ListFilesHandler)
			r.Post("/files", s.CreateFileHandler)
			r.Post("/share", s.ShareFileHandler)

			r.Get("/sessions", s.ListSessionsHandler)
			r.Delete("/sessions/{sessionId}", s.DeleteSessionHandler)
			r.Post("/sessions/terminate_all", s.TerminateAllSessionsHandler)

			r.Route("/admin", func(r chi.Router) {
				r.Use(RequireRole(models.RoleAdmin))
				r.Get("/users", s.ListUsersHandler)
				r.Post("/users", s.CreateUserHandler)
				r.Get("/invitations", s.ListInvitationsHandler)
				r.Post("/invitations", s.CreateInvitationHandler)
			})
		})
	})

	return r
}
