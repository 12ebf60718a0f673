package users

import "time"

// User is an account record. PasswordHash is excluded from JSON so no
// handler can leak the stored secret by marshalling a user.
type User struct {
	ID           string    `json:"id"`
	Username     string    `json:"nombre_usuario"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	FirstNames   string    `json:"nombres"`
	LastNames    string    `json:"apellidos"`
	IsActive     bool      `json:"esta_activo"`
	CreatedAt    time.Time `json:"fecha_creacion"`
	UpdatedAt    time.Time `json:"fecha_actualizacion"`
}
