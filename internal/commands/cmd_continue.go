package commands

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"
)

// ContinueCmd implements the graft continue command.
type ContinueCmd struct {
	flags *Flags
	app   *App
}

// NewContinueCmd creates a new continue command.
func NewContinueCmd(flags *Flags, app *App) *ContinueCmd {
	return &ContinueCmd{flags: flags, app: app}
}

// Register adds the continue command to the application.
func (cmd *ContinueCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:      "continue",
		Usage:     "Resume the session's current or next todo",
		UsageText: "graft continue",
		Description: `Resumes the in-progress todo if one exists; otherwise promotes the
next eligible pending todo to in progress and prints it.

Examples:
  graft continue
  graft --session feature-auth continue`,
		Action: cmd.run,
	})

	return app
}

func (cmd *ContinueCmd) run(ctx context.Context, c *cli.Command) error {
	todo, ok, err := cmd.app.Ledger.Continue(ctx)
	if err != nil {
		return fmt.Errorf("continue: %w", err)
	}
	if !ok {
		fmt.Println("nothing to resume")
		return nil
	}

	cmd.app.Printer.Todo(todo)
	return nil
}
