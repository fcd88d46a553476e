package client

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/ashureev/taskboard/internal/domain"
)

// DefaultPageSize is the number of tasks requested per page.
const DefaultPageSize = 10

// Fallback messages for task operations.
const (
	FetchTasksFailed = "Failed to fetch tasks"
	FetchTaskFailed  = "Failed to fetch task"
	SaveTaskFailed   = "Failed to save task"
	DeleteTaskFailed = "Failed to delete task"
)

// ListTasks returns one page of the caller's tasks.
func (c *Client) ListTasks(ctx context.Context, page, limit int) (*domain.TaskPage, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = DefaultPageSize
	}

	var result domain.TaskPage
	path := fmt.Sprintf("/api/tasks?page=%d&limit=%d", page, limit)
	if err := c.Do(ctx, http.MethodGet, path, nil, &result); err != nil {
		return nil, err
	}
	if result.TotalPages < 1 {
		result.TotalPages = 1
	}
	return &result, nil
}

// GetTask returns a single task.
func (c *Client) GetTask(ctx context.Context, id string) (*domain.Task, error) {
	var task domain.Task
	if err := c.Do(ctx, http.MethodGet, taskPath(id), nil, &task); err != nil {
		return nil, err
	}
	return &task, nil
}

// CreateTask validates in and creates a task from it.
func (c *Client) CreateTask(ctx context.Context, in domain.TaskInput) (*domain.Task, error) {
	in = in.Normalize()
	if err := in.Validate(); err != nil {
		return nil, err
	}

	var task domain.Task
	if err := c.Do(ctx, http.MethodPost, "/api/tasks", in, &task); err != nil {
		return nil, err
	}
	return &task, nil
}

// UpdateTask validates in and replaces the editable fields of task id.
func (c *Client) UpdateTask(ctx context.Context, id string, in domain.TaskInput) (*domain.Task, error) {
	in = in.Normalize()
	if err := in.Validate(); err != nil {
		return nil, err
	}

	var task domain.Task
	if err := c.Do(ctx, http.MethodPut, taskPath(id), in, &task); err != nil {
		return nil, err
	}
	return &task, nil
}

// DeleteTask removes task id.
func (c *Client) DeleteTask(ctx context.Context, id string) error {
	return c.Do(ctx, http.MethodDelete, taskPath(id), nil, nil)
}

// ClampPage keeps page within [1, totalPages].
func ClampPage(page, totalPages int) int {
	if totalPages < 1 {
		totalPages = 1
	}
	if page < 1 {
		return 1
	}
	if page > totalPages {
		return totalPages
	}
	return page
}

func taskPath(id string) string {
	return "/api/tasks/" + url.PathEscape(id)
}
