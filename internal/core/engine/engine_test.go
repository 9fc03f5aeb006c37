package engine

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/colonyops/graft/internal/core/approval"
	"github.com/colonyops/graft/internal/core/git"
	"github.com/colonyops/graft/internal/core/plan"
)

// fakeGit records calls and returns configured errors.
type fakeGit struct {
	branchErr error
	commitErr error
	pushErr   error

	branches []string
	staged   [][]string
	commits  []string
	pushes   int
}

func (f *fakeGit) IsRepo(ctx context.Context, dir string) bool { return true }

func (f *fakeGit) CurrentBranch(ctx context.Context, dir string) (string, error) {
	return "main", nil
}

func (f *fakeGit) CreateBranch(ctx context.Context, dir, branch string) error {
	if f.branchErr != nil {
		return f.branchErr
	}
	f.branches = append(f.branches, branch)
	return nil
}

func (f *fakeGit) Add(ctx context.Context, dir string, paths []string) error {
	f.staged = append(f.staged, paths)
	return nil
}

func (f *fakeGit) Commit(ctx context.Context, dir, message string) error {
	if f.commitErr != nil {
		return f.commitErr
	}
	f.commits = append(f.commits, message)
	return nil
}

func (f *fakeGit) Push(ctx context.Context, dir string) error {
	if f.pushErr != nil {
		return f.pushErr
	}
	f.pushes++
	return nil
}

func (f *fakeGit) Status(ctx context.Context, dir string) (git.Status, error) {
	return git.Status{Branch: "main", Clean: true}, nil
}

func approveAll() approval.DecideFunc {
	return func(plan.FileOperation, int, int) (approval.Decision, error) {
		return approval.DecisionApprove, nil
	}
}

func TestExecute_CreateAndModify(t *testing.T) {
	root := t.TempDir()
	existing := filepath.Join(root, "existing.go")
	require.NoError(t, os.WriteFile(existing, []byte("old"), 0o644))

	boundary := plan.NewBoundary(root, nil)
	g := &fakeGit{}
	e := New(boundary, g, Options{})

	p := plan.GenerationPlan{
		Feature:  "mixed",
		Strategy: plan.StrategyCurrentBranch,
		Operations: []plan.FileOperation{
			{Path: "existing.go", Kind: plan.OpModify, Content: "new"},
			{Path: filepath.Join("sub", "dir", "new.go"), Kind: plan.OpCreate, Content: "package sub"},
		},
	}

	result := e.Execute(context.Background(), p, approveAll())

	assert.Equal(t, []string{filepath.Join("sub", "dir", "new.go")}, result.FilesCreated)
	assert.Equal(t, []string{"existing.go"}, result.FilesModified)
	assert.Empty(t, result.Errors)
	assert.True(t, result.Success())

	got, err := os.ReadFile(existing)
	require.NoError(t, err)
	assert.Equal(t, "new", string(got))

	got, err = os.ReadFile(filepath.Join(root, "sub", "dir", "new.go"))
	require.NoError(t, err)
	assert.Equal(t, "package sub", string(got))
}

func TestExecute_FailureOnSecondOfThree(t *testing.T) {
	root := t.TempDir()
	// A plain file where op 2 wants a directory makes MkdirAll fail.
	require.NoError(t, os.WriteFile(filepath.Join(root, "blocker"), []byte(""), 0o644))

	boundary := plan.NewBoundary(root, nil)
	e := New(boundary, &fakeGit{}, Options{})

	p := plan.GenerationPlan{
		Feature:  "partial",
		Strategy: plan.StrategyCurrentBranch,
		Operations: []plan.FileOperation{
			{Path: "one.go", Kind: plan.OpCreate, Content: "1"},
			{Path: filepath.Join("blocker", "two.go"), Kind: plan.OpCreate, Content: "2"},
			{Path: "three.go", Kind: plan.OpCreate, Content: "3"},
		},
	}

	result := e.Execute(context.Background(), p, approveAll())

	assert.Equal(t, []string{"one.go", "three.go"}, result.FilesCreated)
	require.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0], "two.go")
	assert.False(t, result.Success())
}

func TestExecute_NewBranchStrategy(t *testing.T) {
	root := t.TempDir()
	boundary := plan.NewBoundary(root, nil)

	t.Run("branch created before writes", func(t *testing.T) {
		g := &fakeGit{}
		e := New(boundary, g, Options{})

		p := plan.GenerationPlan{
			Feature:    "feat",
			Strategy:   plan.StrategyNewBranch,
			BranchName: "graft/feat",
			Operations: []plan.FileOperation{{Path: "f.go", Kind: plan.OpCreate, Content: "x"}},
		}

		result := e.Execute(context.Background(), p, approveAll())

		assert.Equal(t, []string{"graft/feat"}, g.branches)
		assert.Equal(t, "graft/feat", result.BranchCreated)
		assert.True(t, result.Success())
	})

	t.Run("branch failure does not abort generation", func(t *testing.T) {
		g := &fakeGit{branchErr: errors.New("ref locked")}
		e := New(boundary, g, Options{})

		p := plan.GenerationPlan{
			Feature:    "feat2",
			Strategy:   plan.StrategyNewBranch,
			BranchName: "graft/feat2",
			Operations: []plan.FileOperation{{Path: "g.go", Kind: plan.OpCreate, Content: "x"}},
		}

		result := e.Execute(context.Background(), p, approveAll())

		assert.Empty(t, result.BranchCreated)
		assert.Equal(t, []string{"g.go"}, result.FilesCreated, "files still written")
		require.Len(t, result.Errors, 1)
		assert.Contains(t, result.Errors[0], "ref locked")
	})
}

func TestExecute_AutoCommit(t *testing.T) {
	opts := Options{
		AutoCommit:     true,
		CommitTemplate: "graft: {{ .Feature }} ({{ .FileCount }} files)",
	}

	t.Run("stages exactly touched files", func(t *testing.T) {
		root := t.TempDir()
		g := &fakeGit{}
		e := New(plan.NewBoundary(root, nil), g, opts)

		p := plan.GenerationPlan{
			Feature:  "login",
			Strategy: plan.StrategyCurrentBranch,
			Operations: []plan.FileOperation{
				{Path: "a.go", Kind: plan.OpCreate, Content: "a"},
				{Path: "b.go", Kind: plan.OpCreate, Content: "b"},
			},
		}

		skipSecond := func(op plan.FileOperation, index, total int) (approval.Decision, error) {
			if index == 1 {
				return approval.DecisionSkip, nil
			}
			return approval.DecisionApprove, nil
		}

		result := e.Execute(context.Background(), p, skipSecond)

		require.Len(t, g.staged, 1)
		assert.Equal(t, []string{"a.go"}, g.staged[0], "skipped files are not staged")
		require.Len(t, g.commits, 1)
		assert.Equal(t, "graft: login (1 files)", g.commits[0])
		assert.Equal(t, "graft: login (1 files)", result.CommitMessage)
	})

	t.Run("no commit when nothing touched", func(t *testing.T) {
		root := t.TempDir()
		g := &fakeGit{}
		e := New(plan.NewBoundary(root, nil), g, opts)

		p := plan.GenerationPlan{
			Feature:    "noop",
			Strategy:   plan.StrategyCurrentBranch,
			Operations: []plan.FileOperation{{Path: "a.go", Kind: plan.OpCreate, Content: "a"}},
		}

		skipAll := func(plan.FileOperation, int, int) (approval.Decision, error) {
			return approval.DecisionSkip, nil
		}

		result := e.Execute(context.Background(), p, skipAll)

		assert.Empty(t, g.commits)
		assert.Empty(t, result.CommitMessage)
		assert.True(t, result.Success())
	})

	t.Run("commit failure is non-fatal", func(t *testing.T) {
		root := t.TempDir()
		g := &fakeGit{commitErr: errors.New("hook rejected")}
		e := New(plan.NewBoundary(root, nil), g, opts)

		p := plan.GenerationPlan{
			Feature:    "feat",
			Strategy:   plan.StrategyCurrentBranch,
			Operations: []plan.FileOperation{{Path: "a.go", Kind: plan.OpCreate, Content: "a"}},
		}

		result := e.Execute(context.Background(), p, approveAll())

		assert.Equal(t, []string{"a.go"}, result.FilesCreated, "file application unaffected")
		require.Len(t, result.Errors, 1)
		assert.Contains(t, result.Errors[0], "hook rejected")
		assert.Empty(t, result.CommitMessage)
	})

	t.Run("auto push after commit", func(t *testing.T) {
		root := t.TempDir()
		g := &fakeGit{}
		pushOpts := opts
		pushOpts.AutoPush = true
		e := New(plan.NewBoundary(root, nil), g, pushOpts)

		p := plan.GenerationPlan{
			Feature:    "feat",
			Strategy:   plan.StrategyCurrentBranch,
			Operations: []plan.FileOperation{{Path: "a.go", Kind: plan.OpCreate, Content: "a"}},
		}

		result := e.Execute(context.Background(), p, approveAll())

		assert.Equal(t, 1, g.pushes)
		assert.True(t, result.Success())
	})
}

func TestExecute_DeleteOperation(t *testing.T) {
	root := t.TempDir()
	target := filepath.Join(root, "doomed.go")
	require.NoError(t, os.WriteFile(target, []byte("x"), 0o644))

	e := New(plan.NewBoundary(root, nil), &fakeGit{}, Options{})

	p := plan.GenerationPlan{
		Feature:    "cleanup",
		Strategy:   plan.StrategyCurrentBranch,
		Operations: []plan.FileOperation{{Path: "doomed.go", Kind: plan.OpDelete}},
	}

	result := e.Execute(context.Background(), p, approveAll())

	assert.True(t, result.Success())
	assert.NoFileExists(t, target)
}
