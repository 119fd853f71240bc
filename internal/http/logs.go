package httpapi

import (
	"bytes"
	"encoding/json"
	"net/http"

	"valkiria-backend-go/internal/analytics"
	"valkiria-backend-go/internal/entry"
	"valkiria-backend-go/internal/export"
	"valkiria-backend-go/internal/models"

	"github.com/go-chi/chi/v5"
)

type LogListResponse struct {
	Items  []models.AttendanceLog `json:"items"`
	Total  int                    `json:"total"`
	Filter analytics.Filter       `json:"filter"`
}

// parseFilter reads the filter query parameters and rejects dates that do
// not parse.
func parseFilter(r *http.Request) (analytics.Filter, error) {
	q := r.URL.Query()
	filter := analytics.Filter{
		Date:         q.Get("date"),
		DateFrom:     q.Get("dateFrom"),
		DateTo:       q.Get("dateTo"),
		SedeID:       q.Get("sedeId"),
		ModeloID:     q.Get("modeloId"),
		PlataformaID: q.Get("plataformaId"),
	}
	return filter, filter.Validate()
}

func (s *Server) filteredLogs(w http.ResponseWriter, r *http.Request) ([]models.AttendanceLog, analytics.Filter, bool) {
	filter, err := parseFilter(r)
	if err != nil {
		WriteError(w, http.StatusBadRequest, err.Error())
		return nil, filter, false
	}
	items, err := analytics.Apply(s.State.Snapshot().Logs, filter)
	if err != nil {
		WriteError(w, http.StatusBadRequest, err.Error())
		return nil, filter, false
	}
	return items, filter, true
}

func (s *Server) ListLogs(w http.ResponseWriter, r *http.Request) {
	items, filter, ok := s.filteredLogs(w, r)
	if !ok {
		return
	}
	WriteJSON(w, http.StatusOK, LogListResponse{Items: items, Total: len(items), Filter: filter})
}

func (s *Server) CreateLog(w http.ResponseWriter, r *http.Request) {
	var form entry.Form
	if err := json.NewDecoder(r.Body).Decode(&form); err != nil {
		WriteError(w, http.StatusBadRequest, "Invalid payload")
		return
	}
	if err := form.CheckAgainst(s.State.Snapshot().Config); err != nil {
		writeServiceError(w, err)
		return
	}
	if err := s.State.AddLog(r.Context(), form.NewLog()); err != nil {
		writeServiceError(w, err)
		return
	}
	WriteJSON(w, http.StatusCreated, s.State.Snapshot())
}

func (s *Server) DeleteLog(w http.ResponseWriter, r *http.Request) {
	if err := s.State.DeleteLog(r.Context(), chi.URLParam(r, "logId")); err != nil {
		writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) ExportCSV(w http.ResponseWriter, r *http.Request) {
	items, _, ok := s.filteredLogs(w, r)
	if !ok {
		return
	}
	var buf bytes.Buffer
	if err := export.WriteCSV(&buf, items); err != nil {
		WriteError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	writeAttachment(w, "text/csv; charset=utf-8", export.FileName(s.Now(), "csv"), buf.Bytes())
}

func (s *Server) ExportXLSX(w http.ResponseWriter, r *http.Request) {
	items, _, ok := s.filteredLogs(w, r)
	if !ok {
		return
	}
	var buf bytes.Buffer
	if err := export.WriteXLSX(&buf, items); err != nil {
		WriteError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	writeAttachment(w, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", export.FileName(s.Now(), "xlsx"), buf.Bytes())
}

func writeAttachment(w http.ResponseWriter, contentType, filename string, body []byte) {
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(body)
}

func (s *Server) EntryOptions(w http.ResponseWriter, r *http.Request) {
	sel := entry.Selection{SedeID: r.URL.Query().Get("sedeId")}
	WriteJSON(w, http.StatusOK, sel.Options(s.State.Snapshot().Config))
}

type AnalyticsResponse struct {
	Filter  analytics.Filter  `json:"filter"`
	Summary analytics.Summary `json:"summary"`
}

// Analytics summarises the cached logs. Without explicit bounds it covers the
// configured number of days up to today.
func (s *Server) Analytics(w http.ResponseWriter, r *http.Request) {
	filter, err := parseFilter(r)
	if err != nil {
		WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	if filter.Date == "" && filter.DateFrom == "" && filter.DateTo == "" {
		window := analytics.LastDays(s.Now(), s.Config.AnalyticsDefaultDays)
		filter.DateFrom, filter.DateTo = window.DateFrom, window.DateTo
	}
	items, err := analytics.Apply(s.State.Snapshot().Logs, filter)
	if err != nil {
		WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	WriteJSON(w, http.StatusOK, AnalyticsResponse{Filter: filter, Summary: analytics.Summarize(items)})
}
