package api

import (
	"context"
	"net/http"
	"net/url"
	"strings"

	"taskdesk/internal/model"
)

const (
	pathTasks      = "api/tasks"
	pathCreateTask = "api/task"
	pathTaskDetail = "api/tasks/detail/"
	pathTaskStatus = "api/tasks/status/"
)

// ListTasks returns every task in server order.
func (c *Client) ListTasks(ctx context.Context) ([]model.Task, error) {
	var env envelope[[]WireTask]
	if err := c.do(ctx, "list tasks", http.MethodGet, pathTasks, nil, &env); err != nil {
		return nil, err
	}
	out := make([]model.Task, 0, len(env.Data))
	for _, w := range env.Data {
		out = append(out, w.Task())
	}
	return out, nil
}

// CreateTask sends a new task and returns the server's record (with its assigned id).
func (c *Client) CreateTask(ctx context.Context, f model.Fields) (model.Task, error) {
	return c.write(ctx, "create task", http.MethodPost, pathCreateTask, newTaskBody(f))
}

func (c *Client) UpdateTask(ctx context.Context, id string, f model.Fields) (model.Task, error) {
	return c.write(ctx, "update task", http.MethodPut, pathTaskDetail+escapeID(id), newTaskBody(f))
}

// UpdateTaskStatus sends only the status flag.
func (c *Client) UpdateTaskStatus(ctx context.Context, id string, status model.Status) (model.Task, error) {
	return c.write(ctx, "update task status", http.MethodPut, pathTaskStatus+escapeID(id), statusBody{Status: status})
}

// DeleteTask removes a task. The response data is ignored.
func (c *Client) DeleteTask(ctx context.Context, id string) error {
	return c.do(ctx, "delete task", http.MethodDelete, pathTasks+"/"+escapeID(id), nil, nil)
}

// unwrapTask tolerates `data: null` (some backends return nothing useful on writes).
func unwrapTask(w *WireTask) model.Task {
	if w == nil {
		return model.Task{}
	}
	return w.Task()
}

func escapeID(id string) string {
	return url.PathEscape(strings.TrimSpace(id))
}
