package services

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
)

type ServiceError struct {
	Status  int
	Message string
}

func (e ServiceError) Error() string {
	return e.Message
}

func ErrBadRequest(msg string) error {
	return ServiceError{Status: http.StatusBadRequest, Message: msg}
}

// ConfigurationError means the backend connection settings are missing or
// unusable. Nothing works until an operator reconfigures.
type ConfigurationError struct {
	Message string
}

func (e ConfigurationError) Error() string {
	return e.Message
}

// FetchError is a failed read. Callers keep their last good data.
type FetchError struct {
	Message string
	Err     error
}

func (e FetchError) Error() string {
	return e.Message
}

func (e FetchError) Unwrap() error {
	return e.Err
}

// WriteError is an insert or delete rejected by the backend.
type WriteError struct {
	Status  int
	Message string
	Err     error
}

func (e WriteError) Error() string {
	return e.Message
}

func (e WriteError) Unwrap() error {
	return e.Err
}

func WrapError(err error, msg string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", msg, err)
}

func newFetchError(err error, what string) error {
	return FetchError{Message: what + ": " + backendMessage(err), Err: err}
}

func newWriteError(err error, what string) error {
	status := http.StatusBadGateway
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch {
		case pgErr.Code == "23503", pgErr.Code == "23505":
			status = http.StatusConflict
		case pgErr.Code == "23502", pgErr.Code == "23514", strings.HasPrefix(pgErr.Code, "22"):
			status = http.StatusUnprocessableEntity
		}
	}
	return WriteError{Status: status, Message: what + ": " + backendMessage(err), Err: err}
}

// backendMessage keeps the human-readable part of a driver error.
func backendMessage(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		if pgErr.Detail != "" {
			return pgErr.Message + " (" + pgErr.Detail + ")"
		}
		return pgErr.Message
	}
	return err.Error()
}
