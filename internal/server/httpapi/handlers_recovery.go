package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

type recoveryRequestBody struct {
	Email string `json:"email"`
}

type recoveryResetBody struct {
	Token       string `json:"token"`
	NewPassword string `json:"contrasena_nueva"`
}

// handleRecoveryRequest always answers with the same generic message, so
// the endpoint cannot be used to probe which emails have an account.
func (s *Server) handleRecoveryRequest(w http.ResponseWriter, r *http.Request) {
	var req recoveryRequestBody
	if !decodeJSON(w, r, &req) {
		return
	}
	if !validEmail(req.Email) {
		respondValidation(w, []FieldError{{"email", "debe ser un email válido"}})
		return
	}

	if err := s.recovery.RequestRecovery(r.Context(), req.Email); err != nil {
		s.respondServiceError(w, r, err)
		return
	}

	respondOK(w, http.StatusOK, "Si el email está registrado, recibirás un enlace de recuperación", nil)
}

func (s *Server) handleRecoveryVerify(w http.ResponseWriter, r *http.Request) {
	token := chi.URLParam(r, "token")

	email, err := s.recovery.VerifyToken(r.Context(), token)
	if err != nil {
		s.respondServiceError(w, r, err)
		return
	}

	respondOK(w, http.StatusOK, "Token válido", map[string]string{"email": email})
}

func (s *Server) handleRecoveryReset(w http.ResponseWriter, r *http.Request) {
	var req recoveryResetBody
	if !decodeJSON(w, r, &req) {
		return
	}

	var errs []FieldError
	if req.Token == "" {
		errs = append(errs, FieldError{"token", "es obligatorio"})
	}
	errs = append(errs, validateNewPassword(req.NewPassword)...)
	if errs != nil {
		respondValidation(w, errs)
		return
	}

	if err := s.recovery.ResetPassword(r.Context(), req.Token, req.NewPassword); err != nil {
		s.respondServiceError(w, r, err)
		return
	}

	respondOK(w, http.StatusOK, "Contraseña restablecida exitosamente", nil)
}
