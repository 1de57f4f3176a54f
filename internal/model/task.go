package model

import (
	"strings"
	"time"
)

// TaskStatus is the lifecycle state of a task as stored by the task service.
type TaskStatus string

const (
	TaskStatusPending    TaskStatus = "PENDENTE"
	TaskStatusInProgress TaskStatus = "EM_ANDAMENTO"
	TaskStatusDone       TaskStatus = "CONCLUIDA"
)

// TaskStatuses lists the statuses in the order they are offered to the user.
var TaskStatuses = []TaskStatus{
	TaskStatusPending,
	TaskStatusInProgress,
	TaskStatusDone,
}

// Label returns the display name of the status.
func (s TaskStatus) Label() string {
	switch s {
	case TaskStatusPending:
		return "Pending"
	case TaskStatusInProgress:
		return "In progress"
	case TaskStatusDone:
		return "Done"
	default:
		return string(s)
	}
}

// Task is a task record owned by a single user.
//
// ID is empty until the task service assigns one. Title and OwnerID are
// fixed after creation; the task editor does not allow changing them.
type Task struct {
	ID          string     `json:"id,omitempty"`
	Title       string     `json:"titulo"`
	Description string     `json:"descricao"`
	Status      TaskStatus `json:"status"`
	CreatedAt   string     `json:"dataCriacao"`
	OwnerID     string     `json:"usuarioId"`
}

// IsDone reports whether the task has been completed.
func (t Task) IsDone() bool {
	return t.Status == TaskStatusDone
}

// CreatedTime parses CreatedAt. It returns the zero time when the backend
// sent a value that is not RFC 3339.
func (t Task) CreatedTime() time.Time {
	ts, err := time.Parse(time.RFC3339, t.CreatedAt)
	if err != nil {
		return time.Time{}
	}
	return ts
}

// ValidateInput checks the fields a user must fill in before the task is
// sent to the backend.
func (t Task) ValidateInput() error {
	if strings.TrimSpace(t.Title) == "" {
		return &ValidationError{Field: "titulo", Message: "is required"}
	}
	if strings.TrimSpace(t.Description) == "" {
		return &ValidationError{Field: "descricao", Message: "is required"}
	}
	if strings.TrimSpace(t.OwnerID) == "" {
		return &ValidationError{Field: "usuarioId", Message: "is required"}
	}
	return nil
}

// Validate checks a task received from the task service.
func (t Task) Validate() error {
	if strings.TrimSpace(t.ID) == "" {
		return &ValidationError{Field: "task.id", Message: "is missing"}
	}
	return nil
}
