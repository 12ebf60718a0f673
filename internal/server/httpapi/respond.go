// Package httpapi exposes the REST surface of the task manager: auth and
// session endpoints, profile management, password recovery, and task CRUD,
// all under /api/v1.
package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"gestortareas/internal/common"
)

// FieldError reports one invalid request field.
type FieldError struct {
	Field   string `json:"campo"`
	Message string `json:"mensaje"`
}

// envelope is the uniform response body of every endpoint.
type envelope struct {
	OK      bool         `json:"ok"`
	Message string       `json:"message"`
	Data    any          `json:"data,omitempty"`
	Errors  []FieldError `json:"errors,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, body envelope) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func respondOK(w http.ResponseWriter, status int, message string, data any) {
	writeJSON(w, status, envelope{OK: true, Message: message, Data: data})
}

func respondError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, envelope{OK: false, Message: message})
}

func respondValidation(w http.ResponseWriter, errs []FieldError) {
	writeJSON(w, http.StatusBadRequest, envelope{
		OK:      false,
		Message: "Datos de entrada inválidos",
		Errors:  errs,
	})
}

// respondServiceError maps service sentinels onto HTTP statuses. Anything
// unrecognized becomes a generic 500 so internals never leak.
func (s *Server) respondServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, common.ErrorNotFound):
		respondError(w, http.StatusNotFound, "Recurso no encontrado")
	case errors.Is(err, common.ErrorUnauthorized),
		errors.Is(err, common.ErrInvalidToken),
		errors.Is(err, common.ErrTokenExpired),
		errors.Is(err, common.ErrRefreshTokenExpired):
		respondError(w, http.StatusUnauthorized, "No autorizado")
	case errors.Is(err, common.ErrEmailTaken):
		respondError(w, http.StatusConflict, "El email ya está registrado")
	case errors.Is(err, common.ErrUsernameTaken):
		respondError(w, http.StatusConflict, "El nombre de usuario ya está en uso")
	case errors.Is(err, common.ErrRecoveryTokenInvalid):
		respondError(w, http.StatusBadRequest, "Token de recuperación inválido")
	case errors.Is(err, common.ErrRecoveryTokenExpired):
		respondError(w, http.StatusBadRequest, "Token de recuperación expirado")
	default:
		s.logger.Error(r.Context(), "request failed", "method", r.Method, "path", r.URL.Path, "error", err)
		respondError(w, http.StatusInternalServerError, "Error interno del servidor")
	}
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		respondError(w, http.StatusBadRequest, "Cuerpo de la petición inválido")
		return false
	}
	return true
}
