// Package git provides an abstraction for the version-control operations
// used during plan execution.
package git

import "context"

// Status summarizes the repository state.
type Status struct {
	// Branch is the current branch name, or short commit SHA when detached.
	Branch string `json:"branch"`
	// Clean is true if there are no uncommitted changes.
	Clean bool `json:"clean"`
	// Ahead and Behind count commits relative to the upstream branch.
	Ahead  int `json:"ahead"`
	Behind int `json:"behind"`
	// HasRemote is true when the current branch tracks an upstream.
	HasRemote bool `json:"has_remote"`
}

// Git defines the version-control operations graft depends on. Calls are
// synchronous; one invocation is outstanding at a time per plan execution.
type Git interface {
	// IsRepo reports whether dir is inside a git work tree.
	IsRepo(ctx context.Context, dir string) bool
	// CurrentBranch returns the current branch name, or short commit SHA
	// if in detached HEAD state.
	CurrentBranch(ctx context.Context, dir string) (string, error)
	// CreateBranch creates the branch if needed and switches to it.
	CreateBranch(ctx context.Context, dir, branch string) error
	// Add stages exactly the given paths.
	Add(ctx context.Context, dir string, paths []string) error
	// Commit records staged changes with the given message.
	Commit(ctx context.Context, dir, message string) error
	// Push publishes the current branch, setting upstream when absent.
	Push(ctx context.Context, dir string) error
	// Status returns a repository status summary.
	Status(ctx context.Context, dir string) (Status, error)
}
