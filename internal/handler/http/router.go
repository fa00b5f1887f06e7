package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httplog/v3"

	"github.com/cmlabs-hris/productivity-backend-go/internal/pkg/metrics"
)

type RouterConfig struct {
	AllowedOrigins []string
	// Logger receives one ECS-formatted line per request. Nil disables request logging.
	Logger *slog.Logger
}

func NewRouter(cfg RouterConfig, productivityHandler ProductivityHandler, roleHandler RoleHandler) *chi.Mux {
	r := chi.NewRouter()

	origins := cfg.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"http://localhost:3000"}
	}

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		ExposedHeaders: []string{"Link"},
		MaxAge:         300,
	}))

	if cfg.Logger != nil {
		r.Use(httplog.RequestLogger(cfg.Logger, &httplog.Options{
			Level:  slog.LevelInfo,
			Schema: httplog.SchemaECS,
		}))
	}

	r.Use(chiMiddleware.AllowContentType("application/json"))
	r.Use(chiMiddleware.CleanPath)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Heartbeat("/"))

	r.Method(http.MethodGet, "/metrics", metrics.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/productivity", func(r chi.Router) {
			r.Post("/batch", productivityHandler.RecalculateDay)
			r.Post("/backfill", productivityHandler.Backfill)

			r.Route("/employees/{employeeID}", func(r chi.Router) {
				r.Post("/recalculate", productivityHandler.RecalculateEmployee)
				r.Get("/scores/{date}", productivityHandler.GetScore)
			})
		})

		r.Route("/roles", func(r chi.Router) {
			r.Get("/", roleHandler.List)
			r.Post("/refresh", roleHandler.Refresh)
		})
	})
	return r
}
