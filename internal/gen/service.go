package gen

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/colonyops/graft/internal/core/approval"
	"github.com/colonyops/graft/internal/core/config"
	"github.com/colonyops/graft/internal/core/engine"
	"github.com/colonyops/graft/internal/core/ledger"
	"github.com/colonyops/graft/internal/core/logging"
	"github.com/colonyops/graft/internal/core/parser"
	"github.com/colonyops/graft/internal/core/plan"
)

// Deps are the collaborators a Service needs. Ledger, Checkpoints, and
// Journal are optional; when nil the corresponding bookkeeping is
// skipped.
type Deps struct {
	Generator   Generator
	Parser      *parser.Parser
	Builder     *plan.Builder
	Engine      *engine.Engine
	Ledger      *ledger.Ledger
	Checkpoints ledger.CheckpointStore
	Journal     *UsageJournal
	Generation  config.GeneratorConfig
}

// RunOptions parameterize one generation run.
type RunOptions struct {
	Feature    string
	Prompt     string
	SessionID  string
	WorkingDir string
	// DryRun builds and records the plan without executing it.
	DryRun bool
	Decide approval.DecideFunc
}

// Outcome is the product of one run.
type Outcome struct {
	// Text is the raw generated text, kept for prose preview.
	Text string
	Plan plan.GenerationPlan
	// Executed is false for dry runs and for text yielding no
	// operations; Result is meaningful only when true.
	Executed bool
	Result   plan.GenerationResult
}

// Service runs the generation pipeline.
type Service struct {
	deps Deps
	log  zerolog.Logger
}

// NewService creates a Service.
func NewService(deps Deps) *Service {
	return &Service{deps: deps, log: logging.Component("gen")}
}

// Run executes the pipeline: generate text, parse it into operations,
// build a plan, execute it under the decision capability, and record
// todos, a checkpoint, and usage. Text with no recognizable operations
// yields an Outcome with an empty plan and Executed false, not an
// error.
func (s *Service) Run(ctx context.Context, opts RunOptions) (Outcome, error) {
	text, err := s.deps.Generator.Generate(ctx, s.deps.Generation.SystemPrompt, opts.Prompt)
	if err != nil {
		return Outcome{}, fmt.Errorf("generate: %w", err)
	}
	outcome := Outcome{Text: text}

	ops := s.deps.Parser.Parse(text)
	if len(ops) == 0 {
		s.log.Info().Str("feature", opts.Feature).Msg("text yielded no operations")
		s.recordUsage(opts, text)
		return outcome, nil
	}

	cost := EstimateCost(s.deps.Generation, s.deps.Generation.SystemPrompt+opts.Prompt, text)
	outcome.Plan = s.deps.Builder.Build(opts.Feature, ops, cost)

	todoByPath, err := s.recordTodos(ctx, outcome.Plan)
	if err != nil {
		// Ledger trouble must not block the plan itself.
		s.log.Warn().Err(err).Msg("recording plan todos failed")
	}

	if opts.DryRun {
		s.recordUsage(opts, text)
		return outcome, nil
	}

	outcome.Result = s.deps.Engine.Execute(ctx, outcome.Plan, opts.Decide)
	outcome.Executed = true

	s.settleTodos(ctx, todoByPath, outcome.Result)
	s.checkpoint(ctx, opts)
	s.recordUsage(opts, text)

	return outcome, nil
}

// recordTodos opens a group for the plan and adds one todo per
// operation, returning the todo id for each path.
func (s *Service) recordTodos(ctx context.Context, p plan.GenerationPlan) (map[string]string, error) {
	if s.deps.Ledger == nil {
		return nil, nil
	}

	if _, err := s.deps.Ledger.StartGroup(ctx, p.Feature); err != nil {
		return nil, err
	}

	byPath := make(map[string]string, len(p.Operations))
	for _, op := range p.Operations {
		title := op.Description
		if strings.TrimSpace(title) == "" {
			title = fmt.Sprintf("%s %s", op.Kind, op.Path)
		}
		todo, err := s.deps.Ledger.Add(ctx, ledger.Todo{
			Title:         title,
			TokenEstimate: EstimateTokens(op.Content),
			Tags:          []string{string(op.Kind)},
		})
		if err != nil {
			return byPath, err
		}
		byPath[op.Path] = todo.ID
	}
	return byPath, nil
}

// settleTodos transitions the plan's todos to match what actually
// happened. Errored operations stay pending for a later continue.
func (s *Service) settleTodos(ctx context.Context, todoByPath map[string]string, result plan.GenerationResult) {
	if s.deps.Ledger == nil || len(todoByPath) == 0 {
		return
	}

	settle := func(paths []string, status ledger.Status) {
		for _, path := range paths {
			id, ok := todoByPath[path]
			if !ok {
				continue
			}
			if err := s.deps.Ledger.Transition(ctx, id, status); err != nil {
				s.log.Warn().Err(err).Str("todo", id).Msg("settling todo failed")
			}
		}
	}

	settle(result.Touched(), ledger.StatusCompleted)
	settle(result.FilesSkipped, ledger.StatusSkipped)
}

func (s *Service) checkpoint(ctx context.Context, opts RunOptions) {
	if s.deps.Ledger == nil || s.deps.Checkpoints == nil {
		return
	}
	if _, err := s.deps.Ledger.Checkpoint(ctx, s.deps.Checkpoints, opts.Feature, opts.WorkingDir, "graft gen"); err != nil {
		s.log.Warn().Err(err).Msg("checkpoint after run failed")
	}
}

func (s *Service) recordUsage(opts RunOptions, text string) {
	if s.deps.Journal == nil {
		return
	}
	cost := EstimateCost(s.deps.Generation, s.deps.Generation.SystemPrompt+opts.Prompt, text)
	err := s.deps.Journal.Append(Usage{
		Timestamp:    time.Now(),
		SessionID:    opts.SessionID,
		Feature:      opts.Feature,
		InputTokens:  cost.InputTokens,
		OutputTokens: cost.OutputTokens,
		USD:          cost.USD,
	})
	if err != nil {
		s.log.Warn().Err(err).Msg("appending usage failed")
	}
}
