package commands

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v3"

	"github.com/colonyops/graft/internal/core/approval"
	"github.com/colonyops/graft/internal/core/plan"
	"github.com/colonyops/graft/internal/gen"
	"github.com/colonyops/graft/internal/printer"
	"github.com/colonyops/graft/pkg/sigflush"
)

// GenCmd implements the graft gen command.
type GenCmd struct {
	flags *Flags
	app   *App

	feature     string
	from        string
	autoApprove bool
	dryRun      bool
}

// NewGenCmd creates a new gen command.
func NewGenCmd(flags *Flags, app *App) *GenCmd {
	return &GenCmd{flags: flags, app: app}
}

// Register adds the gen command to the application.
func (cmd *GenCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:      "gen",
		Usage:     "Generate file changes from a prompt",
		UsageText: "graft gen [options] <prompt>",
		Description: `Runs the configured assistant with the prompt, parses the response
into file operations, and walks each one through approval before
writing it.

Use --from to skip the assistant and parse pre-generated text from a
file, or "-" for stdin.

Examples:
  graft gen "add a login handler"
  graft gen --feature "Add Login" --auto-approve "add a login handler"
  graft gen --from response.md --dry-run
  cat response.md | graft gen --from -`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "feature",
				Aliases:     []string{"f"},
				Usage:       "feature label for the plan (defaults to the prompt)",
				Destination: &cmd.feature,
			},
			&cli.StringFlag{
				Name:        "from",
				Usage:       "read pre-generated text from a file, or - for stdin",
				Destination: &cmd.from,
			},
			&cli.BoolFlag{
				Name:        "auto-approve",
				Aliases:     []string{"y"},
				Usage:       "apply every operation without prompting",
				Destination: &cmd.autoApprove,
			},
			&cli.BoolFlag{
				Name:        "dry-run",
				Aliases:     []string{"n"},
				Usage:       "build and preview the plan without writing files",
				Destination: &cmd.dryRun,
			},
		},
		Action: cmd.run,
	})

	return app
}

func (cmd *GenCmd) run(ctx context.Context, c *cli.Command) error {
	prompt := strings.TrimSpace(strings.Join(c.Args().Slice(), " "))
	if prompt == "" && cmd.from == "" {
		return fmt.Errorf("a prompt is required unless --from is given")
	}

	feature := cmd.feature
	if feature == "" {
		feature = prompt
	}
	if feature == "" {
		feature = "untitled"
	}

	if cmd.from == "" && strings.TrimSpace(cmd.flags.Config.Generator.Command) == "" {
		return fmt.Errorf("no generator command configured; set generator.command in %s or use --from", cmd.flags.ConfigPath)
	}

	service := cmd.app.Service
	if cmd.from != "" {
		deps := cmd.serviceDeps()
		deps.Generator = &gen.FileSource{Path: cmd.from}
		service = gen.NewService(deps)
	}

	// An interrupt flushes a checkpoint before exiting so the run can
	// be resumed with graft continue.
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	handler := sigflush.New(confirmInterrupt,
		func(err error) { log.Warn().Err(err).Msg("interrupt flush failed") },
		func() error {
			if cmd.app.Ledger == nil || cmd.app.Checkpoints == nil {
				return nil
			}
			_, err := cmd.app.Ledger.Checkpoint(ctx, cmd.app.Checkpoints, "interrupted: "+feature, cmd.app.WorkDir, "graft gen")
			return err
		},
	)
	handler.Watch(ctx, cancel)

	outcome, err := service.Run(ctx, gen.RunOptions{
		Feature:    feature,
		Prompt:     prompt,
		SessionID:  cmd.flags.Session,
		WorkingDir: cmd.app.WorkDir,
		DryRun:     cmd.dryRun,
		Decide:     cmd.decider(),
	})
	if err != nil {
		return err
	}

	if len(outcome.Plan.Operations) == 0 {
		fmt.Println("nothing to generate")
		return nil
	}

	if !outcome.Executed {
		cmd.app.Printer.PlanPreview(outcome.Plan, cmd.app.Parser.Prose(outcome.Text))
		return nil
	}

	cmd.app.Printer.Summary(outcome.Result)
	return nil
}

func (cmd *GenCmd) serviceDeps() gen.Deps {
	return gen.Deps{
		Parser:      cmd.app.Parser,
		Builder:     cmd.app.Builder,
		Engine:      cmd.app.Engine,
		Ledger:      cmd.app.Ledger,
		Checkpoints: cmd.app.Checkpoints,
		Journal:     cmd.app.Journal,
		Generation:  cmd.flags.Config.Generator,
	}
}

// decider picks the approval channel: auto for --auto-approve, an
// interactive select otherwise. The preview for each operation shows a
// content diff before asking.
func (cmd *GenCmd) decider() approval.DecideFunc {
	if cmd.autoApprove {
		return approval.AutoDecider()
	}

	return func(op plan.FileOperation, index, total int) (approval.Decision, error) {
		if d := printer.Diff(op); d != "" {
			fmt.Printf("\n%s\n", d)
		}

		var choice string
		err := huh.NewForm(huh.NewGroup(
			huh.NewSelect[string]().
				Title(fmt.Sprintf("[%d/%d] %s %s", index+1, total, op.Kind, op.Path)).
				Options(
					huh.NewOption("approve", string(approval.DecisionApprove)),
					huh.NewOption("skip", string(approval.DecisionSkip)),
					huh.NewOption("edit", string(approval.DecisionEdit)),
					huh.NewOption("approve all remaining", string(approval.DecisionAuto)),
				).
				Value(&choice),
		)).Run()
		if err != nil {
			return "", fmt.Errorf("decision prompt: %w", err)
		}
		return approval.Decision(choice), nil
	}
}

func confirmInterrupt() bool {
	var quit bool
	err := huh.NewConfirm().
		Title("Interrupt the run?").
		Description("Ledger state is flushed to a checkpoint before exiting.").
		Value(&quit).
		Run()
	if err != nil {
		return true
	}
	return quit
}
