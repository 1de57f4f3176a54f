package cmd

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/nhle/taskapp/internal/devserver"
	"github.com/nhle/taskapp/internal/model"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// backend starts an in-memory backend and points the CLI at it through
// the environment. It returns the seeded user.
func backend(t *testing.T) (*devserver.Server, model.UserProfile) {
	t.Helper()

	srv := devserver.New(devserver.Options{PasswordCost: bcrypt.MinCost})
	hs := httptest.NewServer(srv.Handler())
	t.Cleanup(hs.Close)

	base := hs.URL + "/v1"
	t.Setenv("TASKAPP_BACKEND_IDENTITY_URL", base)
	t.Setenv("TASKAPP_BACKEND_TASK_URL", base)
	t.Setenv("TASKAPP_BACKEND_NOTIFICATION_URL", base)
	t.Setenv("TASKAPP_STORAGE_BACKEND", "sqlite")

	user, err := srv.AddUser(model.RegisterRequest{
		Name: "Ana", Email: "ana@x.com", Password: "secret", Role: model.RoleUser,
	})
	require.NoError(t, err)
	return srv, user
}

func TestLoginWhoamiLogout(t *testing.T) {
	home := t.TempDir()
	_, user := backend(t)

	_, _, err := executeCLI(t, home, "whoami")
	require.ErrorIs(t, err, errNotSignedIn)

	stdout, _, err := executeCLI(t, home, "login", "--email", "ana@x.com", "--password", "secret")
	require.NoError(t, err)
	assert.Contains(t, stdout, "Signed in as Ana <ana@x.com>")

	stdout, _, err = executeCLI(t, home, "whoami")
	require.NoError(t, err)
	assert.Contains(t, stdout, "Ana <ana@x.com>")
	assert.Contains(t, stdout, user.ID)
	assert.Contains(t, stdout, "token expires")

	stdout, _, err = executeCLI(t, home, "logout")
	require.NoError(t, err)
	assert.Contains(t, stdout, "Signed out")

	_, _, err = executeCLI(t, home, "whoami")
	require.ErrorIs(t, err, errNotSignedIn)
}

func TestIdentityCallsCarryNoBearer(t *testing.T) {
	home := t.TempDir()
	srv, _ := backend(t)

	var mu sync.Mutex
	var auths []string
	identity := srv.IdentityHandler()
	hs := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		auths = append(auths, r.Header.Get("Authorization"))
		mu.Unlock()
		identity.ServeHTTP(w, r)
	}))
	t.Cleanup(hs.Close)
	t.Setenv("TASKAPP_BACKEND_IDENTITY_URL", hs.URL+"/v1")

	_, _, err := executeCLI(t, home, "login", "--email", "ana@x.com", "--password", "secret")
	require.NoError(t, err)

	// A stored token must not leak into the next sign-in.
	_, _, err = executeCLI(t, home, "login", "--email", "ana@x.com", "--password", "secret")
	require.NoError(t, err)

	mu.Lock()
	defer mu.Unlock()
	require.NotEmpty(t, auths)
	for _, a := range auths {
		assert.Empty(t, a)
	}
}

func TestLoginWrongPassword(t *testing.T) {
	home := t.TempDir()
	backend(t)

	_, _, err := executeCLI(t, home, "login", "--email", "ana@x.com", "--password", "nope")
	require.Error(t, err)

	_, _, err = executeCLI(t, home, "whoami")
	require.ErrorIs(t, err, errNotSignedIn)
}

func TestTaskCommands(t *testing.T) {
	home := t.TempDir()
	backend(t)

	_, _, err := executeCLI(t, home, "login", "--email", "ana@x.com", "--password", "secret")
	require.NoError(t, err)

	stdout, _, err := executeCLI(t, home, "tasks")
	require.NoError(t, err)
	assert.Contains(t, stdout, "No tasks.")

	_, _, err = executeCLI(t, home, "tasks", "add", "--title", "Write report", "--description", "quarterly")
	require.NoError(t, err)

	stdout, _, err = executeCLI(t, home, "tasks")
	require.NoError(t, err)
	assert.Contains(t, stdout, "Write report")
	assert.Contains(t, stdout, "Pending")

	stdout, _, err = executeCLI(t, home, "notifications")
	require.NoError(t, err)
	assert.Contains(t, stdout, "Write report")

	stdout, _, err = executeCLI(t, home, "notifications", "read", "--all")
	require.NoError(t, err)
	assert.Contains(t, stdout, "Marked 1 notification(s) as read")

	stdout, _, err = executeCLI(t, home, "notifications")
	require.NoError(t, err)
	assert.Contains(t, stdout, "No unread notifications.")
}

func TestTaskCompleteUnknownID(t *testing.T) {
	home := t.TempDir()
	backend(t)

	_, _, err := executeCLI(t, home, "login", "--email", "ana@x.com", "--password", "secret")
	require.NoError(t, err)

	_, _, err = executeCLI(t, home, "tasks", "complete", "missing")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func TestNotificationsReadRequiresTarget(t *testing.T) {
	home := t.TempDir()
	backend(t)

	_, _, err := executeCLI(t, home, "notifications", "read")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--all")
}

func TestRegisterThenLogin(t *testing.T) {
	home := t.TempDir()
	backend(t)

	stdout, _, err := executeCLI(t, home,
		"register", "--name", "Bruno", "--email", "bruno@x.com", "--password", "pw", "--role", "admin")
	require.NoError(t, err)
	assert.Contains(t, stdout, "Registered Bruno <bruno@x.com>")

	_, _, err = executeCLI(t, home, "login", "--email", "bruno@x.com", "--password", "pw")
	require.NoError(t, err)

	stdout, _, err = executeCLI(t, home, "whoami")
	require.NoError(t, err)
	assert.Contains(t, stdout, "Administrator")
}

func TestConfigInit(t *testing.T) {
	home := t.TempDir()
	path := filepath.Join(home, "taskapp.yaml")

	stdout, _, err := executeCLI(t, home, "config", "init", "--config", path)
	require.NoError(t, err)
	assert.Contains(t, stdout, path)
	_, err = os.Stat(path)
	require.NoError(t, err)

	_, _, err = executeCLI(t, home, "config", "init", "--config", path)
	require.Error(t, err)

	_, _, err = executeCLI(t, home, "config", "init", "--config", path, "--force")
	require.NoError(t, err)

	stdout, _, err = executeCLI(t, home, "config", "show", "--config", path)
	require.NoError(t, err)
	assert.Contains(t, stdout, "notifications/{userId}")
}

func TestWatchPrintsRefreshes(t *testing.T) {
	home := t.TempDir()
	_, user := backend(t)

	mr := miniredis.RunT(t)
	t.Setenv("TASKAPP_BROKER_KIND", "redis")
	t.Setenv("TASKAPP_BROKER_URL", "redis://"+mr.Addr())

	_, _, err := executeCLI(t, home, "login", "--email", "ana@x.com", "--password", "secret")
	require.NoError(t, err)

	type result struct {
		stdout string
		err    error
	}
	done := make(chan result, 1)
	go func() {
		root := newRootCmd()
		stdout := &bytes.Buffer{}
		root.SetOut(stdout)
		root.SetErr(&bytes.Buffer{})
		root.SetArgs([]string{"watch", "--count", "1"})
		err := root.Execute()
		done <- result{stdout: stdout.String(), err: err}
	}()

	topic := "notifications/" + user.ID
	deadline := time.After(5 * time.Second)
	for {
		select {
		case r := <-done:
			require.NoError(t, r.err)
			assert.Contains(t, r.stdout, "refresh "+topic)
			return
		case <-deadline:
			t.Fatal("watch did not report a refresh")
		case <-time.After(20 * time.Millisecond):
			mr.Publish(topic, "{}")
		}
	}
}

func executeCLI(t *testing.T, home string, args ...string) (string, string, error) {
	t.Helper()
	t.Setenv("HOME", home)

	root := newRootCmd()
	stdout := &bytes.Buffer{}
	stderr := &bytes.Buffer{}
	root.SetOut(stdout)
	root.SetErr(stderr)
	root.SetArgs(args)

	err := root.Execute()
	return stdout.String(), stderr.String(), err
}
