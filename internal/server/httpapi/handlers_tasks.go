package httpapi

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"gestortareas/internal/server/tasks"
)

type taskCreateRequest struct {
	Title        string     `json:"titulo"`
	Description  string     `json:"descripcion"`
	Status       *string    `json:"estado"`
	Priority     *string    `json:"prioridad"`
	DueDate      *time.Time `json:"fecha_vencimiento"`
	ReminderDate *time.Time `json:"fecha_recordatorio"`
	OrderNumber  *int       `json:"numero_orden"`
}

type taskUpdateRequest struct {
	Title        *string    `json:"titulo"`
	Description  *string    `json:"descripcion"`
	Status       *string    `json:"estado"`
	Priority     *string    `json:"prioridad"`
	DueDate      *time.Time `json:"fecha_vencimiento"`
	ReminderDate *time.Time `json:"fecha_recordatorio"`
	OrderNumber  *int       `json:"numero_orden"`
	IsArchived   *bool      `json:"esta_archivada"`
}

type taskListResponse struct {
	Tasks []*tasks.Task `json:"tareas"`
	Total int           `json:"total"`
}

func (s *Server) handleTaskCreate(w http.ResponseWriter, r *http.Request) {
	var req taskCreateRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if errs := validateTaskCreate(req); errs != nil {
		respondValidation(w, errs)
		return
	}

	task, err := s.tasks.Create(r.Context(), userIDFromContext(r.Context()), tasks.CreateParams{
		Title:        req.Title,
		Description:  req.Description,
		Status:       req.Status,
		Priority:     req.Priority,
		DueDate:      req.DueDate,
		ReminderDate: req.ReminderDate,
		OrderNumber:  req.OrderNumber,
	})
	if err != nil {
		s.respondServiceError(w, r, err)
		return
	}

	respondOK(w, http.StatusCreated, "Tarea creada exitosamente", map[string]*tasks.Task{"tarea": task})
}

func (s *Server) handleTaskList(w http.ResponseWriter, r *http.Request) {
	filter, errs := parseListFilter(r)
	if errs != nil {
		respondValidation(w, errs)
		return
	}

	list, err := s.tasks.List(r.Context(), userIDFromContext(r.Context()), filter)
	if err != nil {
		s.respondServiceError(w, r, err)
		return
	}

	respondOK(w, http.StatusOK, "Tareas obtenidas", taskListResponse{Tasks: list, Total: len(list)})
}

// parseListFilter maps query parameters onto a ListFilter. A date range
// without an explicit sort orders by due date, mirroring how the agenda
// view consumes it.
func parseListFilter(r *http.Request) (tasks.ListFilter, []FieldError) {
	q := r.URL.Query()

	var filter tasks.ListFilter
	var errs []FieldError

	if v := q.Get("estado"); v != "" {
		if !tasks.ValidStatus(v) {
			errs = append(errs, FieldError{"estado", "debe ser pendiente, en_progreso o completada"})
		}
		filter.Status = &v
	}
	if v := q.Get("prioridad"); v != "" {
		if !tasks.ValidPriority(v) {
			errs = append(errs, FieldError{"prioridad", "debe ser baja, media, alta o urgente"})
		}
		filter.Priority = &v
	}
	if v := q.Get("esta_archivada"); v != "" {
		archived, err := strconv.ParseBool(v)
		if err != nil {
			errs = append(errs, FieldError{"esta_archivada", "debe ser true o false"})
		}
		filter.Archived = &archived
	}
	if v := q.Get("buscar"); v != "" {
		filter.Search = &v
	}
	if v := q.Get("fecha_inicio"); v != "" {
		t, err := parseDate(v)
		if err != nil {
			errs = append(errs, FieldError{"fecha_inicio", "debe ser una fecha válida"})
		}
		filter.DueAfter = &t
	}
	if v := q.Get("fecha_fin"); v != "" {
		t, err := parseDate(v)
		if err != nil {
			errs = append(errs, FieldError{"fecha_fin", "debe ser una fecha válida"})
		}
		filter.DueBefore = &t
	}

	filter.SortBy = q.Get("ordenar_por")
	filter.SortOrder = q.Get("orden")

	if filter.SortBy == "" && (filter.DueAfter != nil || filter.DueBefore != nil) {
		filter.SortBy = "fecha_vencimiento"
		filter.SortOrder = "asc"
	}

	return filter, errs
}

func parseDate(value string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02", value)
}

func (s *Server) handleTaskGet(w http.ResponseWriter, r *http.Request) {
	task, err := s.tasks.GetByID(r.Context(), userIDFromContext(r.Context()), chi.URLParam(r, "id"))
	if err != nil {
		s.respondServiceError(w, r, err)
		return
	}

	respondOK(w, http.StatusOK, "Tarea obtenida", map[string]*tasks.Task{"tarea": task})
}

func (s *Server) handleTaskUpdate(w http.ResponseWriter, r *http.Request) {
	var req taskUpdateRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if errs := validateTaskUpdate(req); errs != nil {
		respondValidation(w, errs)
		return
	}

	task, err := s.tasks.Update(r.Context(), userIDFromContext(r.Context()), chi.URLParam(r, "id"), tasks.UpdateParams{
		Title:        req.Title,
		Description:  req.Description,
		Status:       req.Status,
		Priority:     req.Priority,
		DueDate:      req.DueDate,
		ReminderDate: req.ReminderDate,
		OrderNumber:  req.OrderNumber,
		IsArchived:   req.IsArchived,
	})
	if err != nil {
		s.respondServiceError(w, r, err)
		return
	}

	respondOK(w, http.StatusOK, "Tarea actualizada", map[string]*tasks.Task{"tarea": task})
}

func (s *Server) handleTaskDelete(w http.ResponseWriter, r *http.Request) {
	err := s.tasks.Delete(r.Context(), userIDFromContext(r.Context()), chi.URLParam(r, "id"))
	if err != nil {
		s.respondServiceError(w, r, err)
		return
	}

	respondOK(w, http.StatusOK, "Tarea eliminada", nil)
}

func (s *Server) handleTaskToggleArchive(w http.ResponseWriter, r *http.Request) {
	task, err := s.tasks.ToggleArchive(r.Context(), userIDFromContext(r.Context()), chi.URLParam(r, "id"))
	if err != nil {
		s.respondServiceError(w, r, err)
		return
	}

	respondOK(w, http.StatusOK, "Tarea actualizada", map[string]*tasks.Task{"tarea": task})
}
