package users

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgconn"

	"gestortareas/internal/common"
	"gestortareas/internal/dbx"
)

const userColumns = `id, nombre_usuario, email, contrasena, nombres, apellidos, esta_activo, fecha_creacion, fecha_actualizacion`

// SQLSTATE for unique_violation.
const uniqueViolationCode = "23505"

// mapUniqueViolation turns a unique-constraint violation on usuarios into
// the matching taxonomy error. The pre-checks in the service window-dress
// the common case; this catches the losing side of a concurrent insert.
func mapUniqueViolation(err error) error {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) || pgErr.Code != uniqueViolationCode {
		return nil
	}
	switch pgErr.ConstraintName {
	case "usuarios_email_key":
		return common.ErrEmailTaken
	case "usuarios_nombre_usuario_key":
		return common.ErrUsernameTaken
	}
	return nil
}

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func scanUser(row *sql.Row) (*User, error) {
	user := &User{}
	err := row.Scan(&user.ID, &user.Username, &user.Email, &user.PasswordHash,
		&user.FirstNames, &user.LastNames, &user.IsActive, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return user, nil
}

func (r *PostgresRepository) Create(ctx context.Context, user *User) (*User, error) {

	query :=
		`INSERT INTO usuarios (id, nombre_usuario, email, contrasena, nombres, apellidos, esta_activo)
         VALUES ($1, $2, $3, $4, $5, $6, $7)
		 RETURNING fecha_creacion, fecha_actualizacion
		 `

	err := r.db.QueryRowContext(ctx, query,
		user.ID, user.Username, user.Email, user.PasswordHash,
		user.FirstNames, user.LastNames, user.IsActive).
		Scan(&user.CreatedAt, &user.UpdatedAt)

	if err != nil {
		if mapped := mapUniqueViolation(err); mapped != nil {
			return nil, mapped
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return user, nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*User, error) {
	query := `SELECT ` + userColumns + ` FROM usuarios WHERE id = $1`
	return scanUser(r.db.QueryRowContext(ctx, query, id))
}

func (r *PostgresRepository) GetByEmail(ctx context.Context, email string) (*User, error) {
	query := `SELECT ` + userColumns + ` FROM usuarios WHERE email = $1`
	return scanUser(r.db.QueryRowContext(ctx, query, email))
}

func (r *PostgresRepository) GetByUsername(ctx context.Context, username string) (*User, error) {
	query := `SELECT ` + userColumns + ` FROM usuarios WHERE nombre_usuario = $1`
	return scanUser(r.db.QueryRowContext(ctx, query, username))
}

func (r *PostgresRepository) UpdateProfile(ctx context.Context, user *User) (*User, error) {
	query :=
		`UPDATE usuarios
		 SET nombre_usuario = $2, email = $3, nombres = $4, apellidos = $5, fecha_actualizacion = $6
		 WHERE id = $1
		 RETURNING fecha_actualizacion
		 `

	err := r.db.QueryRowContext(ctx, query,
		user.ID, user.Username, user.Email, user.FirstNames, user.LastNames, time.Now()).
		Scan(&user.UpdatedAt)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		if mapped := mapUniqueViolation(err); mapped != nil {
			return nil, mapped
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return user, nil
}

func (r *PostgresRepository) UpdatePassword(ctx context.Context, id string, passwordHash string) error {
	query :=
		`UPDATE usuarios
		 SET contrasena = $2, fecha_actualizacion = $3
		 WHERE id = $1
		 `

	_, err := r.db.ExecContext(ctx, query, id, passwordHash, time.Now())
	if err != nil {
		return fmt.Errorf("error performing sql request: %v", err)
	}

	return nil
}

func (r *PostgresRepository) Touch(ctx context.Context, id string) error {
	query :=
		`UPDATE usuarios
		 SET fecha_actualizacion = $2
		 WHERE id = $1
		 `

	_, err := r.db.ExecContext(ctx, query, id, time.Now())
	if err != nil {
		return fmt.Errorf("error performing sql request: %v", err)
	}

	return nil
}
