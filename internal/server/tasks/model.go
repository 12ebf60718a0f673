package tasks

import "time"

// Task states. A task starts in StatusPending and moves freely between
// states; its completion timestamp is stamped the first time it reaches
// StatusCompleted and never changes afterwards.
const (
	StatusPending    = "pendiente"
	StatusInProgress = "en_progreso"
	StatusCompleted  = "completada"
)

// Task priorities, ordered from least to most urgent.
const (
	PriorityLow    = "baja"
	PriorityMedium = "media"
	PriorityHigh   = "alta"
	PriorityUrgent = "urgente"
)

// ValidStatus reports whether s is one of the known task states.
func ValidStatus(s string) bool {
	return s == StatusPending || s == StatusInProgress || s == StatusCompleted
}

// ValidPriority reports whether p is one of the known priorities.
func ValidPriority(p string) bool {
	return p == PriorityLow || p == PriorityMedium || p == PriorityHigh || p == PriorityUrgent
}

// Task is a single to-do item owned by one user. Deleted tasks stay in
// storage with DeletedAt set and are invisible to every read path.
type Task struct {
	ID           string     `json:"id"`
	UserID       string     `json:"usuario_id"`
	Title        string     `json:"titulo"`
	Description  string     `json:"descripcion"`
	Status       string     `json:"estado"`
	Priority     string     `json:"prioridad"`
	DueDate      *time.Time `json:"fecha_vencimiento"`
	ReminderDate *time.Time `json:"fecha_recordatorio"`
	CompletedAt  *time.Time `json:"fecha_completada"`
	OrderNumber  int        `json:"numero_orden"`
	IsArchived   bool       `json:"esta_archivada"`
	CreatedAt    time.Time  `json:"fecha_creacion"`
	UpdatedAt    time.Time  `json:"fecha_actualizacion"`
	DeletedAt    *time.Time `json:"-"`
}
