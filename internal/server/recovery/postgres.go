package recovery

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"gestortareas/internal/common"
	"gestortareas/internal/dbx"
)

// PostgresRepository holds a *sql.DB rather than a bare handle because
// CreateSuperseding needs its own transaction.
type PostgresRepository struct {
	db *sql.DB
}

func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) CreateSuperseding(ctx context.Context, t *Token) error {

	return dbx.WithTx(ctx, r.db, nil, func(ctx context.Context, tx dbx.DBTX) error {

		supersede :=
			`UPDATE tokens_recuperacion_contrasena
			 SET usado = TRUE
			 WHERE usuario_id = $1 AND usado = FALSE
			 `

		if _, err := tx.ExecContext(ctx, supersede, t.UserID); err != nil {
			return fmt.Errorf("error performing sql request: %v", err)
		}

		insert :=
			`INSERT INTO tokens_recuperacion_contrasena (id, usuario_id, token, fecha_expiracion, usado)
			 VALUES ($1, $2, $3, $4, FALSE)
			 `

		if _, err := tx.ExecContext(ctx, insert, t.ID, t.UserID, t.Token, t.Expires); err != nil {
			return fmt.Errorf("error performing sql request: %v", err)
		}

		return nil
	})
}

func (r *PostgresRepository) FindUnused(ctx context.Context, token string) (*Token, error) {
	query :=
		`SELECT id, usuario_id, token, fecha_expiracion, usado, fecha_creacion
		 FROM tokens_recuperacion_contrasena
		 WHERE token = $1 AND usado = FALSE
		 `

	t := &Token{}
	err := r.db.QueryRowContext(ctx, query, token).
		Scan(&t.ID, &t.UserID, &t.Token, &t.Expires, &t.Used, &t.CreatedAt)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return t, nil
}

func (r *PostgresRepository) MarkUsed(ctx context.Context, id string) error {
	query :=
		`UPDATE tokens_recuperacion_contrasena
		 SET usado = TRUE
		 WHERE id = $1
		 `

	_, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("error performing sql request: %v", err)
	}

	return nil
}
