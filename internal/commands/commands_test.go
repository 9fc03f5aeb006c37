package commands

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v3"

	"github.com/colonyops/graft/internal/core/config"
	"github.com/colonyops/graft/internal/core/git"
	"github.com/colonyops/graft/internal/core/ledger"
	"github.com/colonyops/graft/internal/data/stores"
	"github.com/colonyops/graft/internal/printer"
	"github.com/colonyops/graft/pkg/executil"
)

func TestDefaultPaths(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/tmp/xdg-config")
	t.Setenv("XDG_DATA_HOME", "/tmp/xdg-data")
	t.Setenv("XDG_STATE_HOME", "/tmp/xdg-state")

	assert.Equal(t, filepath.Join("/tmp/xdg-config", "graft", "config.yaml"), DefaultConfigPath())
	assert.Equal(t, filepath.Join("/tmp/xdg-data", "graft"), DefaultDataDir())
	assert.Equal(t, filepath.Join("/tmp/xdg-state", "graft", "graft.log"), DefaultLogFile())
}

func newTestApp(t *testing.T) (*App, *bytes.Buffer) {
	t.Helper()

	dataDir := t.TempDir()
	led, err := ledger.Open(context.Background(), stores.NewLedgerStore(dataDir), "default")
	require.NoError(t, err)

	var out bytes.Buffer
	return &App{
		Ledger:      led,
		Checkpoints: stores.NewCheckpointStore(dataDir),
		Printer:     printer.New(&out),
	}, &out
}

// run builds a fresh command tree per invocation; cli commands are not
// reusable across runs.
func run(ctx context.Context, app *App, args ...string) error {
	flags := &Flags{Config: &config.Config{}}
	root := &cli.Command{Name: "graft"}
	root = NewTodoCmd(flags, app).Register(root)
	root = NewContinueCmd(flags, app).Register(root)
	root = NewCheckpointCmd(flags, app).Register(root)
	return root.Run(ctx, append([]string{"graft"}, args...))
}

func TestTodoCommands(t *testing.T) {
	ctx := context.Background()
	app, out := newTestApp(t)

	require.NoError(t, run(ctx, app, "todo", "add", "wire the parser", "--priority", "high"))
	require.NoError(t, run(ctx, app, "todo", "add", "write tests"))

	todos := app.Ledger.Todos()
	require.Len(t, todos, 2)
	assert.Equal(t, ledger.PriorityHigh, todos[0].Priority)

	out.Reset()
	require.NoError(t, run(ctx, app, "todo", "next"))
	assert.Contains(t, out.String(), "wire the parser", "high priority scheduled first")

	id := todos[0].ID
	require.NoError(t, run(ctx, app, "todo", "start", id))
	require.NoError(t, run(ctx, app, "todo", "complete", id))

	got, err := app.Ledger.Get(id)
	require.NoError(t, err)
	assert.Equal(t, ledger.StatusCompleted, got.Status)

	// Terminal states reject further transitions.
	err = run(ctx, app, "todo", "skip", id)
	assert.ErrorIs(t, err, ledger.ErrTerminalState)

	err = run(ctx, app, "todo", "add", "rush job", "--priority", "urgent")
	assert.Error(t, err, "priorities outside low/medium/high are rejected")
	assert.Len(t, app.Ledger.Todos(), 2)
}

func TestContinueCommand(t *testing.T) {
	ctx := context.Background()
	app, out := newTestApp(t)

	t.Run("nothing to resume", func(t *testing.T) {
		require.NoError(t, run(ctx, app, "continue"))
	})

	t.Run("promotes next todo", func(t *testing.T) {
		_, err := app.Ledger.Add(ctx, ledger.Todo{Title: "resume me"})
		require.NoError(t, err)

		out.Reset()
		require.NoError(t, run(ctx, app, "continue"))
		assert.Contains(t, out.String(), "resume me")

		todos := app.Ledger.Todos()
		assert.Equal(t, ledger.StatusInProgress, todos[0].Status)
	})
}

func TestCheckpointCommands(t *testing.T) {
	ctx := context.Background()
	app, out := newTestApp(t)

	_, err := app.Ledger.Add(ctx, ledger.Todo{Title: "step"})
	require.NoError(t, err)

	require.NoError(t, run(ctx, app, "checkpoint", "create", "before refactor"))

	cps, err := app.Checkpoints.List(ctx)
	require.NoError(t, err)
	require.Len(t, cps, 1)
	assert.Equal(t, "before refactor", cps[0].Title)

	out.Reset()
	require.NoError(t, run(ctx, app, "checkpoint", "list"))
	assert.Contains(t, out.String(), cps[0].ID)

	require.NoError(t, run(ctx, app, "checkpoint", "list", "--json"))

	require.NoError(t, run(ctx, app, "checkpoint", "delete", cps[0].ID))
	err = run(ctx, app, "checkpoint", "delete", cps[0].ID)
	assert.ErrorIs(t, err, ledger.ErrNotFound)
}

func TestCheckpointRestore(t *testing.T) {
	ctx := context.Background()
	app, out := newTestApp(t)

	todo, err := app.Ledger.Add(ctx, ledger.Todo{Title: "first step"})
	require.NoError(t, err)
	require.NoError(t, run(ctx, app, "checkpoint", "create", "clean slate"))

	cps, err := app.Checkpoints.List(ctx)
	require.NoError(t, err)
	require.Len(t, cps, 1)

	// Mutate past the snapshot.
	require.NoError(t, app.Ledger.Complete(ctx, todo.ID))
	_, err = app.Ledger.Add(ctx, ledger.Todo{Title: "later step"})
	require.NoError(t, err)

	out.Reset()
	require.NoError(t, run(ctx, app, "checkpoint", "restore", cps[0].ID))

	got, err := app.Ledger.Get(todo.ID)
	require.NoError(t, err)
	assert.Equal(t, ledger.StatusPending, got.Status, "snapshot state wins")
	assert.Len(t, app.Ledger.Todos(), 1, "todos added after the snapshot are gone")

	err = run(ctx, app, "checkpoint", "restore", "nope")
	assert.ErrorIs(t, err, ledger.ErrNotFound)
}

func TestStatusCommandJSON(t *testing.T) {
	ctx := context.Background()
	app, _ := newTestApp(t)
	app.WorkDir = "/repo"
	app.Git = git.NewExecutor("git", &executil.RecordingExecutor{
		Outputs: map[string][]byte{
			"git rev-parse": []byte("true\n"),
			"git status":    []byte("## main...origin/main\n M a.go\n"),
		},
	})

	_, err := app.Ledger.Add(ctx, ledger.Todo{Title: "wire the login route"})
	require.NoError(t, err)

	var out bytes.Buffer
	flags := &Flags{Config: &config.Config{}}
	root := &cli.Command{Name: "graft", Writer: &out}
	root = NewStatusCmd(flags, app).Register(root)
	require.NoError(t, root.Run(ctx, []string{"graft", "status", "--json"}))

	assert.Contains(t, out.String(), `"branch": "main"`)
	assert.Contains(t, out.String(), `"clean": false`)
	assert.Contains(t, out.String(), "wire the login route")
}
