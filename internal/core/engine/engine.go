// Package engine applies approved plan operations to the filesystem and
// coordinates branch and commit actions. Partial application is an
// accepted outcome: no rollback is performed, and every outcome is
// surfaced through the result's path lists.
package engine

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"

	"github.com/colonyops/graft/internal/core/approval"
	"github.com/colonyops/graft/internal/core/git"
	"github.com/colonyops/graft/internal/core/logging"
	"github.com/colonyops/graft/internal/core/plan"
	"github.com/colonyops/graft/pkg/tmpl"
)

// Options configure plan execution.
type Options struct {
	// AutoCommit stages exactly the touched files and commits after
	// application when at least one file was created or modified.
	AutoCommit bool
	// AutoPush pushes after a successful auto-commit.
	AutoPush bool
	// CommitTemplate renders the commit message from Feature, FileCount
	// and Files.
	CommitTemplate string
}

// Engine executes generation plans.
type Engine struct {
	boundary *plan.Boundary
	git      git.Git
	opts     Options
	log      zerolog.Logger
}

// New creates an Engine rooted at the boundary's project root.
func New(boundary *plan.Boundary, gitClient git.Git, opts Options) *Engine {
	return &Engine{
		boundary: boundary,
		git:      gitClient,
		opts:     opts,
		log:      logging.Component("engine"),
	}
}

// Execute applies the plan, driving the approval machine with the given
// decision capability. Branch and commit failures are recorded as errors
// but never abort file application.
func (e *Engine) Execute(ctx context.Context, p plan.GenerationPlan, decide approval.DecideFunc) plan.GenerationResult {
	var result plan.GenerationResult

	if p.Strategy == plan.StrategyNewBranch {
		if err := e.git.CreateBranch(ctx, e.boundary.Root(), p.BranchName); err != nil {
			// Writes proceed against whatever branch is active.
			e.log.Warn().Err(err).Str("branch", p.BranchName).Msg("branch creation failed; continuing on current branch")
			result.AddError(fmt.Sprintf("create branch %s: %v", p.BranchName, err))
		} else {
			result.BranchCreated = p.BranchName
		}
	}

	machine := approval.NewMachine(decide)
	machine.Run(p.Operations, e.applyFunc(), &result)

	if e.opts.AutoCommit && len(result.Touched()) > 0 {
		e.commit(ctx, p, &result)
	}

	return result
}

func (e *Engine) applyFunc() approval.ApplyFunc {
	return func(op plan.FileOperation) error {
		abs := e.boundary.Abs(op.Path)

		if op.Kind == plan.OpDelete {
			if err := os.Remove(abs); err != nil {
				return fmt.Errorf("remove: %w", err)
			}
			return nil
		}

		if err := os.MkdirAll(filepath.Dir(abs), 0o755); err != nil {
			return fmt.Errorf("create parent dir: %w", err)
		}
		if err := os.WriteFile(abs, []byte(op.Content), 0o644); err != nil {
			return fmt.Errorf("write: %w", err)
		}

		e.log.Debug().Str("path", op.Path).Str("kind", string(op.Kind)).Msg("applied operation")
		return nil
	}
}

func (e *Engine) commit(ctx context.Context, p plan.GenerationPlan, result *plan.GenerationResult) {
	touched := result.Touched()

	msg, err := tmpl.Render(e.opts.CommitTemplate, map[string]any{
		"Feature":   p.Feature,
		"FileCount": len(touched),
		"Files":     touched,
	})
	if err != nil {
		result.AddError(fmt.Sprintf("render commit message: %v", err))
		return
	}

	root := e.boundary.Root()
	if err := e.git.Add(ctx, root, touched); err != nil {
		result.AddError(fmt.Sprintf("stage files: %v", err))
		return
	}
	if err := e.git.Commit(ctx, root, msg); err != nil {
		result.AddError(fmt.Sprintf("commit: %v", err))
		return
	}
	result.CommitMessage = msg

	if e.opts.AutoPush {
		if err := e.git.Push(ctx, root); err != nil {
			result.AddError(fmt.Sprintf("push: %v", err))
		}
	}
}
