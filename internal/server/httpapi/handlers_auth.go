package httpapi

import (
	"net/http"

	"gestortareas/internal/server/users"
)

type registerRequest struct {
	Username   string `json:"nombre_usuario"`
	Email      string `json:"email"`
	Password   string `json:"contrasena"`
	FirstNames string `json:"nombres"`
	LastNames  string `json:"apellidos"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"contrasena"`
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

type sessionResponse struct {
	User         *users.User `json:"usuario"`
	AccessToken  string      `json:"access_token"`
	RefreshToken string      `json:"refresh_token"`
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if errs := validateRegister(req); errs != nil {
		respondValidation(w, errs)
		return
	}

	user, pair, err := s.users.Register(r.Context(), req.Username, req.Email, req.Password, req.FirstNames, req.LastNames)
	if err != nil {
		s.respondServiceError(w, r, err)
		return
	}

	respondOK(w, http.StatusCreated, "Usuario registrado exitosamente", sessionResponse{
		User:         user,
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
	})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if errs := validateLogin(req); errs != nil {
		respondValidation(w, errs)
		return
	}

	user, pair, err := s.users.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		s.respondServiceError(w, r, err)
		return
	}

	respondOK(w, http.StatusOK, "Inicio de sesión exitoso", sessionResponse{
		User:         user,
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
	})
}

func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	var req refreshRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.RefreshToken == "" {
		respondValidation(w, []FieldError{{"refresh_token", "es obligatorio"}})
		return
	}

	accessToken, err := s.users.RefreshAccessToken(r.Context(), req.RefreshToken)
	if err != nil {
		s.respondServiceError(w, r, err)
		return
	}

	respondOK(w, http.StatusOK, "Token renovado", map[string]string{
		"access_token": accessToken,
	})
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	var req refreshRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.RefreshToken == "" {
		respondValidation(w, []FieldError{{"refresh_token", "es obligatorio"}})
		return
	}

	if err := s.users.Logout(r.Context(), req.RefreshToken); err != nil {
		s.respondServiceError(w, r, err)
		return
	}

	respondOK(w, http.StatusOK, "Sesión cerrada", nil)
}

func (s *Server) handleLogoutAll(w http.ResponseWriter, r *http.Request) {
	if err := s.users.LogoutAll(r.Context(), userIDFromContext(r.Context())); err != nil {
		s.respondServiceError(w, r, err)
		return
	}

	respondOK(w, http.StatusOK, "Todas las sesiones cerradas", nil)
}
