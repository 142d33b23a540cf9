package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/quillhq/quill/pkg/health"
	"github.com/quillhq/quill/pkg/middleware"
)

// RouterDeps carries everything the router wires together.
type RouterDeps struct {
	Auth      *AuthHandler
	Documents *DocumentHandler
	Folders   *FolderHandler
	Resolver  UserResolver
	Service   string
	Log       *slog.Logger
}

// NewRouter builds the full HTTP surface: operational endpoints at the root,
// the API under /api/v1 with auth-gated groups.
func NewRouter(deps RouterDeps) http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.RealIP)
	r.Use(middleware.Recovery(deps.Log))
	r.Use(middleware.RequestLogging(deps.Log))
	r.Use(middleware.Tracing(deps.Service))
	r.Use(middleware.PrometheusMetrics(deps.Service))
	r.Use(CORS)

	r.Get("/health/live", health.LivenessHandler())
	r.Get("/health/ready", health.ReadinessHandler())
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(ContentTypeJSON)

		r.Route("/auth", func(r chi.Router) {
			r.Post("/signup", deps.Auth.Signup)
			r.Post("/signin", deps.Auth.Signin)
			r.Post("/refresh", deps.Auth.Refresh)

			r.Group(func(r chi.Router) {
				r.Use(RequireAuth(deps.Resolver, deps.Log))
				r.Post("/logout", deps.Auth.Logout)
				r.Post("/logout-all", deps.Auth.LogoutAll)
				r.Post("/change-password", deps.Auth.ChangePassword)
				r.Get("/me", deps.Auth.Me)
				r.Get("/sessions", deps.Auth.Sessions)
			})
		})

		r.Route("/documents", func(r chi.Router) {
			r.Use(RequireAuth(deps.Resolver, deps.Log))
			r.Post("/", deps.Documents.Create)
			r.Get("/", deps.Documents.List)
			r.Get("/stats", deps.Documents.Stats)

			r.Route("/folders", func(r chi.Router) {
				r.Post("/", deps.Folders.Create)
				r.Get("/", deps.Folders.List)
				r.Get("/{id}", deps.Folders.Get)
				r.Patch("/{id}", deps.Folders.Update)
				r.Delete("/{id}", deps.Folders.Delete)
			})

			r.Get("/{id}", deps.Documents.Get)
			r.Put("/{id}", deps.Documents.Update)
			r.Delete("/{id}", deps.Documents.Delete)
			r.Post("/{id}/restore", deps.Documents.Restore)
			r.Get("/{id}/versions", deps.Documents.ListVersions)
			r.Post("/{id}/versions/{version}/restore", deps.Documents.RestoreVersion)
		})
	})

	return r
}
