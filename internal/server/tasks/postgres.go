package tasks

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"

	"gestortareas/internal/common"
	"gestortareas/internal/dbx"
)

const taskColumns = `id, usuario_id, titulo, descripcion, estado, prioridad,
	fecha_vencimiento, fecha_recordatorio, fecha_completada,
	numero_orden, esta_archivada, fecha_creacion, fecha_actualizacion`

// sortableColumns whitelists the columns a listing may be ordered by.
// Anything outside this map falls back to the default ordering.
var sortableColumns = map[string]string{
	"fecha_creacion":      "fecha_creacion",
	"fecha_actualizacion": "fecha_actualizacion",
	"fecha_vencimiento":   "fecha_vencimiento",
	"titulo":              "titulo",
	"prioridad":           "prioridad",
	"numero_orden":        "numero_orden",
}

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func scanTask(row *sql.Row) (*Task, error) {
	t := &Task{}
	err := row.Scan(&t.ID, &t.UserID, &t.Title, &t.Description, &t.Status, &t.Priority,
		&t.DueDate, &t.ReminderDate, &t.CompletedAt,
		&t.OrderNumber, &t.IsArchived, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return t, nil
}

func (r *PostgresRepository) Create(ctx context.Context, t *Task) (*Task, error) {

	query :=
		`INSERT INTO tareas (id, usuario_id, titulo, descripcion, estado, prioridad,
		     fecha_vencimiento, fecha_recordatorio, fecha_completada, numero_orden, esta_archivada)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		 RETURNING fecha_creacion, fecha_actualizacion
		 `

	err := r.db.QueryRowContext(ctx, query,
		t.ID, t.UserID, t.Title, t.Description, t.Status, t.Priority,
		t.DueDate, t.ReminderDate, t.CompletedAt, t.OrderNumber, t.IsArchived).
		Scan(&t.CreatedAt, &t.UpdatedAt)

	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return t, nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, userID, id string) (*Task, error) {
	query := `SELECT ` + taskColumns + `
		 FROM tareas
		 WHERE id = $1 AND usuario_id = $2 AND fecha_eliminacion IS NULL`
	return scanTask(r.db.QueryRowContext(ctx, query, id, userID))
}

func (r *PostgresRepository) List(ctx context.Context, userID string, filter ListFilter) ([]*Task, error) {

	builder := sq.Select("id", "usuario_id", "titulo", "descripcion", "estado", "prioridad",
		"fecha_vencimiento", "fecha_recordatorio", "fecha_completada",
		"numero_orden", "esta_archivada", "fecha_creacion", "fecha_actualizacion").
		From("tareas").
		Where(sq.Eq{"usuario_id": userID}).
		Where("fecha_eliminacion IS NULL").
		PlaceholderFormat(sq.Dollar)

	if filter.Status != nil {
		builder = builder.Where(sq.Eq{"estado": *filter.Status})
	}
	if filter.Priority != nil {
		builder = builder.Where(sq.Eq{"prioridad": *filter.Priority})
	}
	if filter.Archived != nil {
		builder = builder.Where(sq.Eq{"esta_archivada": *filter.Archived})
	}
	if filter.Search != nil && *filter.Search != "" {
		pattern := "%" + *filter.Search + "%"
		builder = builder.Where(sq.Or{
			sq.ILike{"titulo": pattern},
			sq.ILike{"descripcion": pattern},
		})
	}
	if filter.DueAfter != nil {
		builder = builder.Where(sq.GtOrEq{"fecha_vencimiento": *filter.DueAfter})
	}
	if filter.DueBefore != nil {
		builder = builder.Where(sq.LtOrEq{"fecha_vencimiento": *filter.DueBefore})
	}

	builder = builder.OrderBy(orderClauses(filter)...)

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("error building sql request: %v", err)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("error performing sql request: %v", err)
	}
	defer rows.Close()

	tasks := make([]*Task, 0)
	for rows.Next() {
		t := &Task{}
		err := rows.Scan(&t.ID, &t.UserID, &t.Title, &t.Description, &t.Status, &t.Priority,
			&t.DueDate, &t.ReminderDate, &t.CompletedAt,
			&t.OrderNumber, &t.IsArchived, &t.CreatedAt, &t.UpdatedAt)
		if err != nil {
			return nil, fmt.Errorf("error scanning row: %v", err)
		}
		tasks = append(tasks, t)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return tasks, nil
}

func orderClauses(filter ListFilter) []string {
	column, ok := sortableColumns[filter.SortBy]
	if !ok {
		return []string{"numero_orden ASC", "fecha_creacion DESC"}
	}

	direction := "ASC"
	if filter.SortOrder == "desc" {
		direction = "DESC"
	}

	return []string{column + " " + direction}
}

func (r *PostgresRepository) Update(ctx context.Context, t *Task) (*Task, error) {

	// COALESCE keeps an already-stamped completion timestamp intact even
	// if a caller passes a new one.
	query :=
		`UPDATE tareas
		 SET titulo = $3, descripcion = $4, estado = $5, prioridad = $6,
		     fecha_vencimiento = $7, fecha_recordatorio = $8,
		     fecha_completada = COALESCE(fecha_completada, $9),
		     numero_orden = $10, esta_archivada = $11, fecha_actualizacion = $12
		 WHERE id = $1 AND usuario_id = $2 AND fecha_eliminacion IS NULL
		 RETURNING fecha_completada, fecha_actualizacion
		 `

	err := r.db.QueryRowContext(ctx, query,
		t.ID, t.UserID, t.Title, t.Description, t.Status, t.Priority,
		t.DueDate, t.ReminderDate, t.CompletedAt,
		t.OrderNumber, t.IsArchived, time.Now()).
		Scan(&t.CompletedAt, &t.UpdatedAt)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return t, nil
}

func (r *PostgresRepository) SoftDelete(ctx context.Context, userID, id string) error {

	query :=
		`UPDATE tareas
		 SET fecha_eliminacion = $3, fecha_actualizacion = $3
		 WHERE id = $1 AND usuario_id = $2 AND fecha_eliminacion IS NULL
		 `

	result, err := r.db.ExecContext(ctx, query, id, userID, time.Now())
	if err != nil {
		return fmt.Errorf("error performing sql request: %v", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if affected == 0 {
		return common.ErrorNotFound
	}

	return nil
}
