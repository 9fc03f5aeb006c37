package commands

import (
	"context"
	"fmt"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/colonyops/graft/internal/core/validate"
	"github.com/colonyops/graft/pkg/iojson"
)

// CheckpointCmd implements the graft checkpoint command group.
type CheckpointCmd struct {
	flags *Flags
	app   *App

	createTitle string
	listJSON    bool
}

// NewCheckpointCmd creates a new checkpoint command.
func NewCheckpointCmd(flags *Flags, app *App) *CheckpointCmd {
	return &CheckpointCmd{flags: flags, app: app}
}

// Register adds the checkpoint command to the application.
func (cmd *CheckpointCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:  "checkpoint",
		Usage: "Manage ledger checkpoints",
		Description: `Checkpoints are immutable snapshots of the session ledger. They are
created or deleted, never edited.

Examples:
  graft checkpoint create "before refactor"
  graft checkpoint list
  graft checkpoint restore 20260830-141502-x9k2
  graft checkpoint delete 20260830-141502-x9k2`,
		Commands: []*cli.Command{
			cmd.createCmd(),
			cmd.listCmd(),
			cmd.restoreCmd(),
			cmd.deleteCmd(),
		},
	})

	return app
}

func (cmd *CheckpointCmd) createCmd() *cli.Command {
	return &cli.Command{
		Name:      "create",
		Usage:     "Snapshot the current ledger state",
		UsageText: "graft checkpoint create <title>",
		Action: func(ctx context.Context, c *cli.Command) error {
			title := c.Args().First()
			if err := validate.TitleField("title", title); err != nil {
				return err
			}

			wd, _ := os.Getwd()
			cp, err := cmd.app.Ledger.Checkpoint(ctx, cmd.app.Checkpoints, title, wd, "graft checkpoint create")
			if err != nil {
				return fmt.Errorf("create checkpoint: %w", err)
			}

			fmt.Println(cp.ID)
			return nil
		},
	}
}

func (cmd *CheckpointCmd) listCmd() *cli.Command {
	return &cli.Command{
		Name:    "list",
		Aliases: []string{"ls"},
		Usage:   "List checkpoints, newest first",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:        "json",
				Usage:       "emit the checkpoint list as JSON",
				Destination: &cmd.listJSON,
			},
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			cps, err := cmd.app.Checkpoints.List(ctx)
			if err != nil {
				return fmt.Errorf("list checkpoints: %w", err)
			}
			if cmd.listJSON {
				return iojson.Write(cps)
			}
			if len(cps) == 0 {
				fmt.Println("no checkpoints")
				return nil
			}

			cmd.app.Printer.Checkpoints(cps)
			return nil
		},
	}
}

func (cmd *CheckpointCmd) restoreCmd() *cli.Command {
	return &cli.Command{
		Name:      "restore",
		Usage:     "Replace the ledger with a checkpoint's snapshot",
		UsageText: "graft checkpoint restore <id>",
		Description: `The session ledger is overwritten with the checkpoint's todos. Create
a checkpoint of the current state first if it is worth keeping.`,
		Action: func(ctx context.Context, c *cli.Command) error {
			id := c.Args().First()
			if id == "" {
				return fmt.Errorf("a checkpoint id is required")
			}

			cp, err := cmd.app.Checkpoints.Load(ctx, id)
			if err != nil {
				return fmt.Errorf("load checkpoint: %w", err)
			}
			if err := cmd.app.Ledger.Restore(ctx, cp); err != nil {
				return fmt.Errorf("restore checkpoint: %w", err)
			}

			cmd.app.Printer.Todos(cmd.app.Ledger.Groups())
			return nil
		},
	}
}

func (cmd *CheckpointCmd) deleteCmd() *cli.Command {
	return &cli.Command{
		Name:      "delete",
		Aliases:   []string{"rm"},
		Usage:     "Delete a checkpoint",
		UsageText: "graft checkpoint delete <id>",
		Description: `Deletion is irreversible.`,
		Action: func(ctx context.Context, c *cli.Command) error {
			id := c.Args().First()
			if id == "" {
				return fmt.Errorf("a checkpoint id is required")
			}
			if err := cmd.app.Checkpoints.Delete(ctx, id); err != nil {
				return fmt.Errorf("delete checkpoint: %w", err)
			}
			return nil
		},
	}
}
