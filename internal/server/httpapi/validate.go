package httpapi

import (
	"regexp"
	"unicode"

	"gestortareas/internal/server/tasks"
)

var (
	usernameRe = regexp.MustCompile(`^[A-Za-z0-9_]{3,50}$`)
	emailRe    = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)
)

const (
	passwordMinLength = 8
	nameMaxLength     = 50
)

func validEmail(email string) bool {
	return emailRe.MatchString(email)
}

// strongPassword enforces the registration-grade policy: length plus at
// least one uppercase, one lowercase, and one digit.
func strongPassword(password string) bool {
	if len(password) < passwordMinLength {
		return false
	}
	var upper, lower, digit bool
	for _, r := range password {
		switch {
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsLower(r):
			lower = true
		case unicode.IsDigit(r):
			digit = true
		}
	}
	return upper && lower && digit
}

func validateRegister(req registerRequest) []FieldError {
	var errs []FieldError
	if !usernameRe.MatchString(req.Username) {
		errs = append(errs, FieldError{"nombre_usuario", "debe tener entre 3 y 50 caracteres alfanuméricos o guion bajo"})
	}
	if !validEmail(req.Email) {
		errs = append(errs, FieldError{"email", "debe ser un email válido"})
	}
	if !strongPassword(req.Password) {
		errs = append(errs, FieldError{"contrasena", "debe tener al menos 8 caracteres, una mayúscula, una minúscula y un número"})
	}
	if len(req.FirstNames) > nameMaxLength {
		errs = append(errs, FieldError{"nombres", "no debe superar los 50 caracteres"})
	}
	if len(req.LastNames) > nameMaxLength {
		errs = append(errs, FieldError{"apellidos", "no debe superar los 50 caracteres"})
	}
	return errs
}

func validateLogin(req loginRequest) []FieldError {
	var errs []FieldError
	if req.Email == "" {
		errs = append(errs, FieldError{"email", "es obligatorio"})
	}
	if req.Password == "" {
		errs = append(errs, FieldError{"contrasena", "es obligatoria"})
	}
	return errs
}

func validateNewPassword(password string) []FieldError {
	if len(password) < passwordMinLength {
		return []FieldError{{"contrasena_nueva", "debe tener al menos 8 caracteres"}}
	}
	return nil
}

func validateUpdateProfile(req updateProfileRequest) []FieldError {
	var errs []FieldError
	if req.Username != nil && !usernameRe.MatchString(*req.Username) {
		errs = append(errs, FieldError{"nombre_usuario", "debe tener entre 3 y 50 caracteres alfanuméricos o guion bajo"})
	}
	if req.Email != nil && !validEmail(*req.Email) {
		errs = append(errs, FieldError{"email", "debe ser un email válido"})
	}
	if req.FirstNames != nil && len(*req.FirstNames) > nameMaxLength {
		errs = append(errs, FieldError{"nombres", "no debe superar los 50 caracteres"})
	}
	if req.LastNames != nil && len(*req.LastNames) > nameMaxLength {
		errs = append(errs, FieldError{"apellidos", "no debe superar los 50 caracteres"})
	}
	return errs
}

func validateTaskCreate(req taskCreateRequest) []FieldError {
	var errs []FieldError
	if req.Title == "" || len(req.Title) > 200 {
		errs = append(errs, FieldError{"titulo", "debe tener entre 1 y 200 caracteres"})
	}
	if req.Status != nil && !tasks.ValidStatus(*req.Status) {
		errs = append(errs, FieldError{"estado", "debe ser pendiente, en_progreso o completada"})
	}
	if req.Priority != nil && !tasks.ValidPriority(*req.Priority) {
		errs = append(errs, FieldError{"prioridad", "debe ser baja, media, alta o urgente"})
	}
	return errs
}

func validateTaskUpdate(req taskUpdateRequest) []FieldError {
	var errs []FieldError
	if req.Title != nil && (*req.Title == "" || len(*req.Title) > 200) {
		errs = append(errs, FieldError{"titulo", "debe tener entre 1 y 200 caracteres"})
	}
	if req.Status != nil && !tasks.ValidStatus(*req.Status) {
		errs = append(errs, FieldError{"estado", "debe ser pendiente, en_progreso o completada"})
	}
	if req.Priority != nil && !tasks.ValidPriority(*req.Priority) {
		errs = append(errs, FieldError{"prioridad", "debe ser baja, media, alta o urgente"})
	}
	return errs
}
