package model

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoginRequestValidate(t *testing.T) {
	assert.NoError(t, LoginRequest{Email: "a@b.com", Password: "x"}.Validate())
	assert.True(t, IsValidationError(LoginRequest{Email: " ", Password: "x"}.Validate()))
	assert.True(t, IsValidationError(LoginRequest{Email: "a@b.com"}.Validate()))
}

func TestRegisterRequestValidate(t *testing.T) {
	req := RegisterRequest{Name: "Ana", Email: "a@b.com", Password: "pw", Role: RoleUser}

	assert.NoError(t, req.Validate("pw"))

	err := req.Validate("other")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "do not match")

	req.Role = "ROOT"
	assert.True(t, IsValidationError(req.Validate("pw")))
}

func TestTaskValidateInput(t *testing.T) {
	task := Task{Title: "X", Description: "Y", OwnerID: "u1"}
	assert.NoError(t, task.ValidateInput())

	task.Description = "   "
	assert.True(t, IsValidationError(task.ValidateInput()))
}

func TestPageDecodesWireNames(t *testing.T) {
	body := `{"registros":[{"id":"t1","titulo":"X","descricao":"d","status":"PENDENTE","dataCriacao":"2024-05-01T10:00:00Z","usuarioId":"u1"}],"pagina":{"totalPaginas":1,"totalElementos":1}}`

	var page Page[Task]
	require.NoError(t, json.Unmarshal([]byte(body), &page))
	require.NoError(t, ValidatePage(page))
	require.Len(t, page.Records, 1)

	task := page.Records[0]
	assert.Equal(t, "t1", task.ID)
	assert.Equal(t, TaskStatusPending, task.Status)
	assert.Equal(t, 2024, task.CreatedTime().Year())
	assert.Equal(t, 1, page.Info.TotalElements)
}

func TestValidatePageReportsIndex(t *testing.T) {
	page := Page[NotificationDocument]{Records: []NotificationDocument{
		{Notification: Notification{ID: "n1"}},
		{Notification: Notification{}},
	}}

	err := ValidatePage(page)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "registros[1]")
}

func TestTaskOmitsEmptyID(t *testing.T) {
	data, err := json.Marshal(Task{Title: "X"})
	require.NoError(t, err)
	assert.NotContains(t, string(data), `"id"`)
}
