package httpapi

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"valkiria-backend-go/internal/entry"
	"valkiria-backend-go/internal/services"
)

type ErrorResponse struct {
	Message string            `json:"message"`
	Kind    string            `json:"kind,omitempty"`
	Fields  map[string]string `json:"fields,omitempty"`
}

func WriteJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func WriteError(w http.ResponseWriter, status int, message string) {
	WriteJSON(w, status, ErrorResponse{Message: message})
}

// writeServiceError maps the error taxonomy onto HTTP responses, keeping the
// backend's message.
func writeServiceError(w http.ResponseWriter, err error) {
	var (
		validationErr entry.ValidationError
		serviceErr    services.ServiceError
		writeErr      services.WriteError
		fetchErr      services.FetchError
		configErr     services.ConfigurationError
	)
	switch {
	case errors.As(err, &validationErr):
		WriteJSON(w, http.StatusBadRequest, ErrorResponse{Message: validationErr.Error(), Kind: "validation", Fields: validationErr.Fields})
	case errors.As(err, &serviceErr):
		WriteError(w, serviceErr.Status, serviceErr.Message)
	case errors.As(err, &writeErr):
		WriteJSON(w, writeErr.Status, ErrorResponse{Message: writeErr.Message, Kind: "write"})
	case errors.As(err, &fetchErr):
		WriteJSON(w, http.StatusBadGateway, ErrorResponse{Message: fetchErr.Message, Kind: "fetch"})
	case errors.As(err, &configErr):
		WriteJSON(w, http.StatusServiceUnavailable, ErrorResponse{Message: configErr.Message, Kind: "configuration"})
	default:
		log.Printf("unhandled error: %v", err)
		WriteError(w, http.StatusInternalServerError, "Internal server error")
	}
}
