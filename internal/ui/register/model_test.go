package register

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/taskapp/internal/model"
)

func TestSubmitValidRegistration(t *testing.T) {
	m := New(80, 24)
	m.Start()
	m.fb.name = " Caio "
	m.fb.email = "c@x.com"
	m.fb.role = model.RoleAdmin
	m.fb.password = "pw"
	m.fb.confirm = "pw"

	msg, ok := m.submit()().(SubmitMsg)
	require.True(t, ok)
	assert.Equal(t, model.RegisterRequest{
		Name: "Caio", Email: "c@x.com", Password: "pw", Role: model.RoleAdmin,
	}, msg.Request)
}

func TestSubmitPasswordMismatch(t *testing.T) {
	m := New(80, 24)
	m.Start()
	m.fb.name = "Caio"
	m.fb.email = "c@x.com"
	m.fb.password = "pw"
	m.fb.confirm = "other"

	err, ok := m.submit()().(error)
	require.True(t, ok)
	assert.True(t, model.IsValidationError(err))
}

func TestStartResetsFields(t *testing.T) {
	m := New(80, 24)
	m.fb.name = "old"
	m.Start()
	assert.Empty(t, m.fb.name)
	assert.Equal(t, model.RoleUser, m.fb.role)
}
