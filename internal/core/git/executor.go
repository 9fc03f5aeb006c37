package git

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/colonyops/graft/pkg/executil"
)

// Executor implements Git using the git command-line tool.
type Executor struct {
	gitPath string
	exec    executil.Executor
}

// NewExecutor creates a new git executor with the specified git binary path.
func NewExecutor(gitPath string, exec executil.Executor) *Executor {
	return &Executor{gitPath: gitPath, exec: exec}
}

func (e *Executor) IsRepo(ctx context.Context, dir string) bool {
	out, err := e.exec.RunDir(ctx, dir, e.gitPath, "rev-parse", "--is-inside-work-tree")
	return err == nil && strings.TrimSpace(string(out)) == "true"
}

func (e *Executor) CurrentBranch(ctx context.Context, dir string) (string, error) {
	out, err := e.exec.RunDir(ctx, dir, e.gitPath, "branch", "--show-current")
	if err != nil {
		return "", fmt.Errorf("git branch: %w", err)
	}

	branch := strings.TrimSpace(string(out))
	if branch != "" {
		return branch, nil
	}

	// Empty branch name means detached HEAD - get short commit SHA
	out, err = e.exec.RunDir(ctx, dir, e.gitPath, "rev-parse", "--short", "HEAD")
	if err != nil {
		return "", fmt.Errorf("git rev-parse: %w", err)
	}

	return strings.TrimSpace(string(out)), nil
}

func (e *Executor) CreateBranch(ctx context.Context, dir, branch string) error {
	// -B resets an existing branch of the same name to the current HEAD,
	// which keeps re-runs of a feature idempotent.
	if _, err := e.exec.RunDir(ctx, dir, e.gitPath, "checkout", "-B", branch); err != nil {
		return fmt.Errorf("checkout -B %s: %w", branch, err)
	}
	return nil
}

func (e *Executor) Add(ctx context.Context, dir string, paths []string) error {
	if len(paths) == 0 {
		return nil
	}
	args := append([]string{"add", "--"}, paths...)
	if _, err := e.exec.RunDir(ctx, dir, e.gitPath, args...); err != nil {
		return fmt.Errorf("git add: %w", err)
	}
	return nil
}

func (e *Executor) Commit(ctx context.Context, dir, message string) error {
	if _, err := e.exec.RunDir(ctx, dir, e.gitPath, "commit", "-m", message); err != nil {
		return fmt.Errorf("git commit: %w", err)
	}
	return nil
}

func (e *Executor) Push(ctx context.Context, dir string) error {
	if _, err := e.exec.RunDir(ctx, dir, e.gitPath, "push", "-u", "origin", "HEAD"); err != nil {
		return fmt.Errorf("git push: %w", err)
	}
	return nil
}

func (e *Executor) Status(ctx context.Context, dir string) (Status, error) {
	out, err := e.exec.RunDir(ctx, dir, e.gitPath, "status", "--porcelain=v1", "--branch")
	if err != nil {
		return Status{}, fmt.Errorf("git status: %w", err)
	}
	return parseStatus(string(out)), nil
}

// parseStatus parses `git status --porcelain=v1 --branch` output.
// Header examples:
//
//	## main...origin/main
//	## main...origin/main [ahead 2, behind 1]
//	## feature-x
//	## HEAD (no branch)
//	## No commits yet on main
func parseStatus(output string) Status {
	st := Status{Clean: true}

	lines := strings.Split(output, "\n")
	for i, line := range lines {
		if i == 0 && strings.HasPrefix(line, "## ") {
			parseBranchHeader(line[3:], &st)
			continue
		}
		if strings.TrimSpace(line) != "" {
			st.Clean = false
		}
	}

	return st
}

func parseBranchHeader(header string, st *Status) {
	// Trim the ahead/behind block first.
	if i := strings.Index(header, " ["); i != -1 {
		parseAheadBehind(header[i+2:len(header)-1], st)
		header = header[:i]
	}

	// Unborn branch: the repository has no commits yet.
	if branch, ok := strings.CutPrefix(header, "No commits yet on "); ok {
		st.Branch = branch
		return
	}

	if branch, _, found := strings.Cut(header, "..."); found {
		st.Branch = branch
		st.HasRemote = true
		return
	}

	st.Branch = strings.TrimSuffix(header, " (no branch)")
	if st.Branch != header {
		st.Branch = "HEAD"
	}
}

func parseAheadBehind(block string, st *Status) {
	for _, part := range strings.Split(block, ",") {
		fields := strings.Fields(strings.TrimSpace(part))
		if len(fields) != 2 {
			continue
		}
		n, err := strconv.Atoi(fields[1])
		if err != nil {
			continue
		}
		switch fields[0] {
		case "ahead":
			st.Ahead = n
		case "behind":
			st.Behind = n
		}
	}
}
