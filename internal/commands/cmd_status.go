package commands

import (
	"context"
	"fmt"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/colonyops/graft/internal/core/git"
	"github.com/colonyops/graft/internal/core/ledger"
	"github.com/colonyops/graft/pkg/iojson"
)

// StatusCmd implements the graft status command.
type StatusCmd struct {
	flags *Flags
	app   *App

	json bool
}

// statusReport is the machine-readable shape of graft status --json.
// Repo is nil outside a git repository.
type statusReport struct {
	Repo   *git.Status        `json:"repo"`
	Groups []ledger.TodoGroup `json:"groups"`
}

// NewStatusCmd creates a new status command.
func NewStatusCmd(flags *Flags, app *App) *StatusCmd {
	return &StatusCmd{flags: flags, app: app}
}

// Register adds the status command to the application.
func (cmd *StatusCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:      "status",
		Usage:     "Show repository and ledger status",
		UsageText: "graft status [--json]",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:        "json",
				Usage:       "emit the report as JSON",
				Destination: &cmd.json,
			},
		},
		Action: cmd.run,
	})

	return app
}

func (cmd *StatusCmd) run(ctx context.Context, c *cli.Command) error {
	if cmd.json {
		return cmd.runJSON(ctx, c)
	}

	if !cmd.app.Git.IsRepo(ctx, cmd.app.WorkDir) {
		fmt.Println("not a git repository")
	} else {
		st, err := cmd.app.Git.Status(ctx, cmd.app.WorkDir)
		if err != nil {
			return fmt.Errorf("git status: %w", err)
		}
		cmd.app.Printer.GitStatus(st)
	}

	if groups := cmd.app.Ledger.Groups(); len(groups) > 0 {
		fmt.Println()
		cmd.app.Printer.Todos(groups)
	}
	return nil
}

func (cmd *StatusCmd) runJSON(ctx context.Context, c *cli.Command) error {
	report := statusReport{Groups: cmd.app.Ledger.Groups()}

	if cmd.app.Git.IsRepo(ctx, cmd.app.WorkDir) {
		st, err := cmd.app.Git.Status(ctx, cmd.app.WorkDir)
		if err != nil {
			// Errors stay machine-readable in JSON mode.
			return iojson.WriteError(fmt.Sprintf("git status: %s", err), nil)
		}
		report.Repo = &st
	}

	return iojson.WriteWith(c.Root().Writer, os.Stderr, report)
}
