package devserver

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"sort"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/nhle/taskapp/internal/model"
)

const defaultPageSize = 50

// ChangeEvent is the payload published to an owner's topic after a task
// write. Clients treat any message as a refresh signal and ignore it.
type ChangeEvent struct {
	TaskID string                   `json:"taskId"`
	Status model.NotificationStatus `json:"status"`
	At     string                   `json:"at"`
}

func (s *Server) mountTasks(g *gin.RouterGroup) {
	tasks := g.Group("/tasks", s.requireAuth())
	tasks.GET("", s.listTasks)
	tasks.POST("", s.createTasks)
	tasks.PUT("", s.updateTasks)
	tasks.DELETE("", s.deleteTasks)
}

func (s *Server) listTasks(c *gin.Context) {
	owner := c.Query("usuarioId")
	if owner == "" {
		owner = c.GetString(ctxUserID)
	}
	if !mayAccess(c, owner) {
		abort(c, http.StatusForbidden, "forbidden", "Cannot list tasks of another user")
		return
	}

	s.mu.RLock()
	var out []model.Task
	for _, t := range s.tasks {
		if t.OwnerID == owner {
			out = append(out, t)
		}
	}
	s.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt != out[j].CreatedAt {
			return out[i].CreatedAt > out[j].CreatedAt
		}
		return out[i].ID < out[j].ID
	})

	if c.Query("unPaged") == "true" {
		c.JSON(http.StatusOK, pageOf(out, 0))
		return
	}

	size := queryInt(c, "size", defaultPageSize)
	page := queryInt(c, "page", 0)
	result := pageOf(out, size)
	start := min(page*size, len(out))
	end := min(start+size, len(out))
	result.Records = result.Records[start:end]
	c.JSON(http.StatusOK, result)
}

func (s *Server) createTasks(c *gin.Context) {
	var in []model.Task
	if err := c.ShouldBindJSON(&in); err != nil {
		abort(c, http.StatusBadRequest, "invalid_request", "Expected an array of tasks")
		return
	}

	now := s.now().UTC().Format(time.RFC3339)
	for i := range in {
		if err := in[i].ValidateInput(); err != nil {
			abort(c, http.StatusBadRequest, "invalid_request", fmt.Sprintf("[%d] %v", i, err))
			return
		}
		if !s.userExists(in[i].OwnerID) {
			abort(c, http.StatusBadRequest, "invalid_request", fmt.Sprintf("[%d] unknown owner", i))
			return
		}
		in[i].ID = uuid.NewString()
		if in[i].Status == "" {
			in[i].Status = model.TaskStatusPending
		}
		if in[i].CreatedAt == "" {
			in[i].CreatedAt = now
		}
	}

	s.mu.Lock()
	for _, t := range in {
		s.tasks[t.ID] = t
		s.recordLocked(t, model.NotificationCreated, "Task created")
	}
	s.mu.Unlock()

	s.announce(c.Request.Context(), in, model.NotificationCreated)
	c.JSON(http.StatusCreated, in)
}

func (s *Server) updateTasks(c *gin.Context) {
	var in []model.Task
	if err := c.ShouldBindJSON(&in); err != nil {
		abort(c, http.StatusBadRequest, "invalid_request", "Expected an array of tasks")
		return
	}

	s.mu.Lock()
	for i, t := range in {
		prev, ok := s.tasks[t.ID]
		if !ok {
			s.mu.Unlock()
			abort(c, http.StatusNotFound, "not_found", fmt.Sprintf("[%d] task %q not found", i, t.ID))
			return
		}
		if !mayAccess(c, prev.OwnerID) {
			s.mu.Unlock()
			abort(c, http.StatusForbidden, "forbidden", fmt.Sprintf("[%d] task %q belongs to another user", i, t.ID))
			return
		}
	}

	statuses := make([]model.NotificationStatus, len(in))
	for i, t := range in {
		prev := s.tasks[t.ID]
		t.OwnerID = prev.OwnerID
		t.Title = prev.Title
		if t.CreatedAt == "" {
			t.CreatedAt = prev.CreatedAt
		}
		in[i] = t
		s.tasks[t.ID] = t

		statuses[i] = model.NotificationUpdated
		if t.IsDone() && !prev.IsDone() {
			statuses[i] = model.NotificationCompleted
		}
		s.recordLocked(t, statuses[i], "Task updated")
	}
	s.mu.Unlock()

	for i, t := range in {
		s.announce(c.Request.Context(), []model.Task{t}, statuses[i])
	}
	c.JSON(http.StatusOK, in)
}

func (s *Server) deleteTasks(c *gin.Context) {
	var in []model.Task
	if err := c.ShouldBindJSON(&in); err != nil {
		abort(c, http.StatusBadRequest, "invalid_request", "Expected an array of tasks")
		return
	}

	var removed []model.Task
	s.mu.Lock()
	for _, t := range in {
		prev, ok := s.tasks[t.ID]
		if !ok || !mayAccess(c, prev.OwnerID) {
			continue
		}
		delete(s.tasks, t.ID)
		removed = append(removed, prev)
	}
	s.mu.Unlock()

	s.announce(c.Request.Context(), removed, model.NotificationUpdated)
	c.Status(http.StatusNoContent)
}

// recordLocked stores a notification for t. s.mu must be held.
func (s *Server) recordLocked(t model.Task, status model.NotificationStatus, title string) {
	n := model.Notification{
		ID:         uuid.NewString(),
		TaskID:     t.ID,
		OwnerID:    t.OwnerID,
		Title:      title,
		Message:    t.Title,
		Status:     status,
		NotifiedAt: s.now().UTC().Format(time.RFC3339),
	}
	s.notifications[n.ID] = n
}

// announce publishes one change event per task to its owner's topic.
func (s *Server) announce(ctx context.Context, tasks []model.Task, status model.NotificationStatus) {
	if s.opts.Publisher == nil {
		return
	}
	for _, t := range tasks {
		payload, err := json.Marshal(ChangeEvent{
			TaskID: t.ID,
			Status: status,
			At:     s.now().UTC().Format(time.RFC3339),
		})
		if err != nil {
			continue
		}
		if err := s.opts.Publisher.Publish(context.WithoutCancel(ctx), s.opts.TopicFor(t.OwnerID), payload); err != nil {
			log.Printf("devserver: publishing change for task %s: %v", t.ID, err)
		}
	}
}

func (s *Server) userExists(id string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.accounts[id]
	return ok
}

func queryInt(c *gin.Context, key string, fallback int) int {
	v, err := strconv.Atoi(c.Query(key))
	if err != nil || v < 0 {
		return fallback
	}
	if key == "size" && v == 0 {
		return fallback
	}
	return v
}
