package api

import (
	"context"
	"fmt"
	"net/url"

	"github.com/nhle/taskapp/internal/model"
)

// Tasks is the client for the task service.
type Tasks struct {
	client *Client
}

// NewTasks returns a task service client. client should carry a
// TokenSource.
func NewTasks(client *Client) *Tasks {
	return &Tasks{client: client}
}

// List returns the tasks owned by ownerID. An empty ownerID lists every
// task the caller may see.
func (t *Tasks) List(ctx context.Context, ownerID string) (*model.Page[model.Task], error) {
	query := url.Values{"unPaged": {"false"}}
	if ownerID != "" {
		query.Set("usuarioId", ownerID)
	}

	var page model.Page[model.Task]
	if err := t.client.Get(ctx, "/tasks", query, &page); err != nil {
		return nil, fmt.Errorf("listing tasks: %w", err)
	}
	if err := model.ValidatePage(page); err != nil {
		return nil, fmt.Errorf("listing tasks: %w: %v", ErrMalformedResponse, err)
	}
	return &page, nil
}

// Create submits new tasks.
func (t *Tasks) Create(ctx context.Context, tasks ...model.Task) error {
	if err := t.client.Post(ctx, "/tasks", tasks, nil); err != nil {
		return fmt.Errorf("creating tasks: %w", err)
	}
	return nil
}

// Update submits full replacements of existing tasks.
func (t *Tasks) Update(ctx context.Context, tasks ...model.Task) error {
	if err := t.client.Put(ctx, "/tasks", tasks, nil); err != nil {
		return fmt.Errorf("updating tasks: %w", err)
	}
	return nil
}

// Delete removes tasks. The service identifies them by the records in the
// request body.
func (t *Tasks) Delete(ctx context.Context, tasks ...model.Task) error {
	if err := t.client.Delete(ctx, "/tasks", tasks, nil); err != nil {
		return fmt.Errorf("deleting tasks: %w", err)
	}
	return nil
}

// Complete marks task as done, leaving every other field as given.
func (t *Tasks) Complete(ctx context.Context, task model.Task) error {
	task.Status = model.TaskStatusDone
	return t.Update(ctx, task)
}
