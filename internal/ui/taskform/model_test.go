package taskform

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/taskapp/internal/model"
)

var (
	ana = model.UserProfile{ID: "u1", Name: "Ana", Email: "ana@x.com"}
	bo  = model.UserProfile{ID: "u2", Name: "Bo", Email: "bo@x.com"}
)

func fixedNow() time.Time {
	return time.Date(2024, 5, 6, 7, 8, 9, 0, time.UTC)
}

func submit(t *testing.T, m Model) SubmitMsg {
	t.Helper()
	msg, ok := m.handleSubmit()().(SubmitMsg)
	require.True(t, ok)
	return msg
}

func TestCreateDefaults(t *testing.T) {
	m := New(80, 24)
	m.now = fixedNow
	m.StartCreate(ana, []model.UserProfile{bo})

	assert.True(t, m.Active())
	assert.Equal(t, []model.UserProfile{ana, bo}, m.users)
	assert.Equal(t, "u1", m.fb.ownerID)
	assert.Equal(t, model.TaskStatusPending, m.fb.status)

	m.fb.title = "  Write report "
	m.fb.description = "Q3"
	m.fb.ownerID = "u2"

	msg := submit(t, m)
	assert.False(t, msg.Editing)
	assert.Equal(t, model.Task{
		Title:       "Write report",
		Description: "Q3",
		Status:      model.TaskStatusPending,
		OwnerID:     "u2",
		CreatedAt:   "2024-05-06T07:08:09Z",
	}, msg.Task)
	assert.NoError(t, msg.Task.ValidateInput())
}

func TestEditKeepsImmutableFields(t *testing.T) {
	original := model.Task{
		ID: "t1", Title: "Write report", Description: "Q3",
		Status: model.TaskStatusPending, OwnerID: "u1", CreatedAt: "2024-01-01T00:00:00Z",
	}

	m := New(80, 24)
	m.now = fixedNow
	m.StartEdit(original, []model.UserProfile{ana, bo})

	m.fb.title = "changed"
	m.fb.ownerID = "u2"
	m.fb.description = "Q4"
	m.fb.status = model.TaskStatusInProgress

	msg := submit(t, m)
	assert.True(t, msg.Editing)
	assert.Equal(t, model.Task{
		ID: "t1", Title: "Write report", Description: "Q4",
		Status: model.TaskStatusInProgress, OwnerID: "u1", CreatedAt: "2024-01-01T00:00:00Z",
	}, msg.Task)
}

func TestUnknownStatusStaysSelectable(t *testing.T) {
	m := New(80, 24)
	m.StartEdit(model.Task{ID: "t1", Title: "A", Status: "ARQUIVADA", OwnerID: "u1"}, nil)
	assert.Equal(t, model.TaskStatus("ARQUIVADA"), m.fb.status)
	assert.False(t, knownStatus(m.fb.status))
}

func TestOwnerLabel(t *testing.T) {
	m := New(80, 24)
	m.users = []model.UserProfile{ana, {ID: "u3", Email: "c@x.com"}}

	assert.Equal(t, "Ana <ana@x.com>", m.ownerLabel("u1"))
	assert.Equal(t, "c@x.com", m.ownerLabel("u3"))
	assert.Equal(t, "u9", m.ownerLabel("u9"))
}
