package httpapi

import (
	"encoding/json"
	"net/http"

	"valkiria-backend-go/internal/entry"
	"valkiria-backend-go/internal/models"

	"github.com/go-chi/chi/v5"
)

type SedeDetail struct {
	models.Sede
	Modelos     []models.Modelo     `json:"modelos"`
	Plataformas []models.Plataforma `json:"plataformas"`
}

// ListSedes returns every sede with the modelos and plataformas under it.
func (s *Server) ListSedes(w http.ResponseWriter, r *http.Request) {
	cfg := s.State.Snapshot().Config
	items := make([]SedeDetail, 0, len(cfg.Sedes))
	for _, sede := range cfg.Sedes {
		items = append(items, SedeDetail{
			Sede:        sede,
			Modelos:     entry.ModelosFor(cfg, sede.ID),
			Plataformas: entry.PlataformasFor(cfg, sede.ID),
		})
	}
	WriteJSON(w, http.StatusOK, items)
}

func (s *Server) CreateSede(w http.ResponseWriter, r *http.Request) {
	s.createParent(w, r, models.KindSede, "")
}

func (s *Server) CreateModelo(w http.ResponseWriter, r *http.Request) {
	s.createParent(w, r, models.KindModelo, chi.URLParam(r, "sedeId"))
}

func (s *Server) CreatePlataforma(w http.ResponseWriter, r *http.Request) {
	s.createParent(w, r, models.KindPlataforma, chi.URLParam(r, "sedeId"))
}

func (s *Server) DeleteSede(w http.ResponseWriter, r *http.Request) {
	s.deleteParent(w, r, models.KindSede, chi.URLParam(r, "sedeId"))
}

func (s *Server) DeleteModelo(w http.ResponseWriter, r *http.Request) {
	s.deleteParent(w, r, models.KindModelo, chi.URLParam(r, "modeloId"))
}

func (s *Server) DeletePlataforma(w http.ResponseWriter, r *http.Request) {
	s.deleteParent(w, r, models.KindPlataforma, chi.URLParam(r, "plataformaId"))
}

func (s *Server) createParent(w http.ResponseWriter, r *http.Request, kind models.ParentKind, sedeID string) {
	var form entry.ParentForm
	if err := json.NewDecoder(r.Body).Decode(&form); err != nil {
		WriteError(w, http.StatusBadRequest, "Invalid payload")
		return
	}
	if kind.NeedsSede() {
		form.SedeID = sedeID
	}
	if err := form.Validate(kind); err != nil {
		writeServiceError(w, err)
		return
	}
	if err := s.State.AddParent(r.Context(), kind, form.Name, form.SedeID); err != nil {
		writeServiceError(w, err)
		return
	}
	WriteJSON(w, http.StatusCreated, s.State.Snapshot().Config)
}

func (s *Server) deleteParent(w http.ResponseWriter, r *http.Request, kind models.ParentKind, id string) {
	if err := s.State.RemoveParent(r.Context(), kind, id); err != nil {
		writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
