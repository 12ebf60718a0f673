package httpapi

import (
	"net/http"

	"gestortareas/internal/server/users"
)

type updateProfileRequest struct {
	Username   *string `json:"nombre_usuario"`
	Email      *string `json:"email"`
	FirstNames *string `json:"nombres"`
	LastNames  *string `json:"apellidos"`
}

type changePasswordRequest struct {
	CurrentPassword string `json:"contrasena_actual"`
	NewPassword     string `json:"contrasena_nueva"`
}

func (s *Server) handleGetProfile(w http.ResponseWriter, r *http.Request) {
	user, err := s.users.GetProfile(r.Context(), userIDFromContext(r.Context()))
	if err != nil {
		s.respondServiceError(w, r, err)
		return
	}

	respondOK(w, http.StatusOK, "Perfil obtenido", map[string]*users.User{"usuario": user})
}

func (s *Server) handleUpdateProfile(w http.ResponseWriter, r *http.Request) {
	var req updateProfileRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if errs := validateUpdateProfile(req); errs != nil {
		respondValidation(w, errs)
		return
	}

	user, err := s.users.UpdateProfile(r.Context(), userIDFromContext(r.Context()), users.UpdateProfileParams{
		Username:   req.Username,
		Email:      req.Email,
		FirstNames: req.FirstNames,
		LastNames:  req.LastNames,
	})
	if err != nil {
		s.respondServiceError(w, r, err)
		return
	}

	respondOK(w, http.StatusOK, "Perfil actualizado", map[string]*users.User{"usuario": user})
}

func (s *Server) handleChangePassword(w http.ResponseWriter, r *http.Request) {
	var req changePasswordRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	var errs []FieldError
	if req.CurrentPassword == "" {
		errs = append(errs, FieldError{"contrasena_actual", "es obligatoria"})
	}
	errs = append(errs, validateNewPassword(req.NewPassword)...)
	if errs != nil {
		respondValidation(w, errs)
		return
	}

	err := s.users.ChangePassword(r.Context(), userIDFromContext(r.Context()), req.CurrentPassword, req.NewPassword)
	if err != nil {
		s.respondServiceError(w, r, err)
		return
	}

	respondOK(w, http.StatusOK, "Contraseña actualizada", nil)
}
