package help

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/nhle/taskapp/internal/keys"
)

func TestViewListsBindingsAndCommands(t *testing.T) {
	m := New(keys.DefaultKeyMap(), 200, 40)
	view := m.View()

	assert.Contains(t, view, "Keyboard Shortcuts")
	assert.Contains(t, view, "mark all read")
	assert.Contains(t, view, "notifications")
	assert.Contains(t, view, "logout")
}
