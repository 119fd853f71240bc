package httpapi

import (
	"context"
	"net/http"
	"time"

	"valkiria-backend-go/internal/config"
	"valkiria-backend-go/internal/services"
	"valkiria-backend-go/internal/state"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// Connector opens a data source for a database URL entered at runtime.
type Connector func(ctx context.Context, databaseURL string) (state.DataSource, error)

type Server struct {
	Config  config.Config
	State   *state.Container
	Hub     *services.SnapshotHub
	Connect Connector
	Now     func() time.Time
}

func NewServer(cfg config.Config, container *state.Container, hub *services.SnapshotHub, connect Connector) *Server {
	return &Server{
		Config:  cfg,
		State:   container,
		Hub:     hub,
		Connect: connect,
		Now:     time.Now,
	}
}

func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(RequestLogger)
	if len(s.Config.CorsOrigins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins:   s.Config.CorsOrigins,
			AllowedMethods:   []string{"GET", "POST", "DELETE", "OPTIONS"},
			AllowedHeaders:   []string{"Accept", "Content-Type"},
			ExposedHeaders:   []string{"Content-Disposition"},
			AllowCredentials: false,
			MaxAge:           300,
		}))
	}

	r.Route("/api", func(api chi.Router) {
		if s.Config.RequestTimeout > 0 {
			api.Use(middleware.Timeout(time.Duration(s.Config.RequestTimeout) * time.Second))
		}
		api.Get("/health", s.Health)
		api.Post("/connection", s.ManualConnect)

		api.Group(func(data chi.Router) {
			data.Use(s.RequireConnection)
			data.Get("/state", s.GetState)
			data.Post("/refresh", s.RefreshState)
			data.Get("/config", s.GetConfig)
			data.Get("/entry/options", s.EntryOptions)
			data.Get("/analytics", s.Analytics)

			data.Route("/logs", func(logs chi.Router) {
				logs.Get("/", s.ListLogs)
				logs.Post("/", s.CreateLog)
				logs.Get("/export.csv", s.ExportCSV)
				logs.Get("/export.xlsx", s.ExportXLSX)
				logs.Delete("/{logId}", s.DeleteLog)
			})

			data.Route("/sedes", func(sedes chi.Router) {
				sedes.Get("/", s.ListSedes)
				sedes.Post("/", s.CreateSede)
				sedes.Delete("/{sedeId}", s.DeleteSede)
				sedes.Post("/{sedeId}/modelos", s.CreateModelo)
				sedes.Post("/{sedeId}/plataformas", s.CreatePlataforma)
			})
			data.Delete("/modelos/{modeloId}", s.DeleteModelo)
			data.Delete("/plataformas/{plataformaId}", s.DeletePlataforma)
		})
	})

	r.Get("/ws/state", s.StateSocket)
	return r
}
