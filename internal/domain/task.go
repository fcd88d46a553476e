package domain

import (
	"errors"
	"strings"
	"time"
)

// TaskStatus is the progress state of a task.
type TaskStatus string

const (
	StatusPending   TaskStatus = "Pending"
	StatusCompleted TaskStatus = "Completed"
)

var (
	// ErrTitleRequired is returned when a task has no title.
	ErrTitleRequired = errors.New("title is required")
	// ErrDescriptionRequired is returned when a task has no description.
	ErrDescriptionRequired = errors.New("description is required")
	// ErrInvalidStatus is returned for a status other than Pending or Completed.
	ErrInvalidStatus = errors.New("status must be Pending or Completed")
)

// Task is a personal task as stored by the backend.
type Task struct {
	ID          string     `json:"_id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Status      TaskStatus `json:"status"`
	CreatedAt   time.Time  `json:"createdAt"`
}

// IsCompleted returns true if the task is done.
func (t *Task) IsCompleted() bool {
	return t.Status == StatusCompleted
}

// TaskInput is the editable part of a task sent on create and update.
type TaskInput struct {
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Status      TaskStatus `json:"status"`
}

// Normalize trims fields and defaults an empty status to Pending.
func (in TaskInput) Normalize() TaskInput {
	in.Title = strings.TrimSpace(in.Title)
	in.Description = strings.TrimSpace(in.Description)
	if in.Status == "" {
		in.Status = StatusPending
	}
	return in
}

// Validate checks the required fields of a task input.
func (in TaskInput) Validate() error {
	if strings.TrimSpace(in.Title) == "" {
		return ErrTitleRequired
	}
	if strings.TrimSpace(in.Description) == "" {
		return ErrDescriptionRequired
	}
	switch in.Status {
	case StatusPending, StatusCompleted:
		return nil
	default:
		return ErrInvalidStatus
	}
}

// Input returns the editable fields of t.
func (t *Task) Input() TaskInput {
	return TaskInput{Title: t.Title, Description: t.Description, Status: t.Status}
}

// TaskPage is one page of the task list.
type TaskPage struct {
	Tasks      []Task `json:"tasks"`
	TotalPages int    `json:"totalPages"`
}
