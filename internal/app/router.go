package app

import (
	"io/fs"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/cors"

	"github.com/odyssey-erp/odyssey-cms/internal/auth"
	"github.com/odyssey-erp/odyssey-cms/internal/content/posts"
	"github.com/odyssey-erp/odyssey-cms/internal/content/projects"
	"github.com/odyssey-erp/odyssey-cms/internal/content/properties"
	"github.com/odyssey-erp/odyssey-cms/internal/observability"
	"github.com/odyssey-erp/odyssey-cms/internal/shared"
	"github.com/odyssey-erp/odyssey-cms/internal/ui/drawer"
	"github.com/odyssey-erp/odyssey-cms/jobs"
	"github.com/odyssey-erp/odyssey-cms/web"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger            *slog.Logger
	Config            *Config
	SessionManager    *shared.SessionManager
	CSRFManager       *shared.CSRFManager
	AuthHandler       *auth.Handler
	PropertiesHandler *properties.Handler
	PostsHandler      *posts.Handler
	ProjectsHandler   *projects.Handler
	DrawerHandler     *drawer.Handler
	JobHandler        *jobs.Handler
	Metrics           *observability.Metrics
}

// NewRouter constructs the chi.Router with Odyssey defaults.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger:         params.Logger,
		Config:         params.Config,
		SessionManager: params.SessionManager,
		CSRFManager:    params.CSRFManager,
		Metrics:        params.Metrics,
	}) {
		r.Use(mw)
	}

	r.Use(chimw.Logger)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, auth.HomePath, http.StatusSeeOther)
	})

	if params.AuthHandler != nil {
		r.Route("/auth", params.AuthHandler.MountRoutes)
	}

	r.Route("/admin", func(r chi.Router) {
		r.Use(auth.RequireUser)
		r.Get("/", func(w http.ResponseWriter, r *http.Request) {
			http.Redirect(w, r, auth.HomePath, http.StatusSeeOther)
		})
		if params.PropertiesHandler != nil {
			r.Route("/properties", params.PropertiesHandler.MountRoutes)
		}
		if params.PostsHandler != nil {
			r.Route("/posts", params.PostsHandler.MountRoutes)
		}
		if params.ProjectsHandler != nil {
			r.Route("/projects", params.ProjectsHandler.MountRoutes)
		}
		if params.DrawerHandler != nil {
			r.Route("/ui/drawer", params.DrawerHandler.MountRoutes)
		}
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(apiCORS(params.Config))
		r.Use(auth.RequireAPIUser)
		if params.PropertiesHandler != nil {
			r.Route("/properties", params.PropertiesHandler.MountAPI)
		}
		if params.PostsHandler != nil {
			r.Route("/posts", params.PostsHandler.MountAPI)
		}
		if params.ProjectsHandler != nil {
			r.Route("/projects", params.ProjectsHandler.MountAPI)
		}
	})

	if params.JobHandler != nil {
		r.Route("/jobs", params.JobHandler.MountRoutes)
	}
	if params.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", params.Metrics.Handler())
	}

	staticFS, err := fs.Sub(web.Static, "static")
	if err != nil {
		params.Logger.Error("create static sub filesystem", slog.Any("error", err))
	} else {
		fileServer := http.StripPrefix("/static/", http.FileServer(http.FS(staticFS)))
		r.Handle("/static/*", staticCacheHandler(fileServer))
	}

	return r
}

// apiCORS lets the configured front-end origins read the JSON list endpoints
// with the admin session cookie. Without configured origins the API stays
// same-origin only.
func apiCORS(cfg *Config) func(http.Handler) http.Handler {
	if cfg == nil || len(cfg.CORSOrigins) == 0 {
		return func(next http.Handler) http.Handler { return next }
	}
	c := cors.New(cors.Options{
		AllowedOrigins:   cfg.CORSOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodHead},
		AllowedHeaders:   []string{"Accept", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           600,
	})
	return c.Handler
}

// staticCacheHandler wraps a file server with Cache-Control headers.
// Static assets are cached for 1 hour in browser.
func staticCacheHandler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Cache-Control", "public, max-age=3600")
		next.ServeHTTP(w, r)
	})
}
