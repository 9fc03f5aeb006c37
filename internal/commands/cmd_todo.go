package commands

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/colonyops/graft/internal/core/ledger"
	"github.com/colonyops/graft/internal/core/validate"
	"github.com/colonyops/graft/pkg/iojson"
)

// TodoCmd implements the graft todo command group.
type TodoCmd struct {
	flags *Flags
	app   *App

	// add flags
	addDescription string
	addPriority    string
	addDeps        []string
	addTags        []string

	// list flags
	listStatus string
	listJSON   bool
}

// NewTodoCmd creates a new todo command.
func NewTodoCmd(flags *Flags, app *App) *TodoCmd {
	return &TodoCmd{flags: flags, app: app}
}

// Register adds the todo command to the application.
func (cmd *TodoCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:  "todo",
		Usage: "Manage the session's task ledger",
		Description: `Todos track the logical steps of a generation session. Most are
created automatically, one per plan operation; add creates manual
steps.

Examples:
  graft todo list
  graft todo add "wire the login route" --priority high
  graft todo next
  graft todo complete <id>`,
		Commands: []*cli.Command{
			cmd.addCmd(),
			cmd.listCmd(),
			cmd.nextCmd(),
			cmd.startCmd(),
			cmd.transitionCmd("complete", "Mark a todo completed", ledger.StatusCompleted),
			cmd.transitionCmd("skip", "Mark a todo skipped", ledger.StatusSkipped),
			cmd.transitionCmd("block", "Mark a todo blocked", ledger.StatusBlocked),
		},
	})

	return app
}

func (cmd *TodoCmd) addCmd() *cli.Command {
	return &cli.Command{
		Name:      "add",
		Usage:     "Add a todo to the active group",
		UsageText: "graft todo add <title> [--priority low|medium|high] [--depends-on <id>]",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "description",
				Aliases:     []string{"d"},
				Usage:       "optional description",
				Destination: &cmd.addDescription,
			},
			&cli.StringFlag{
				Name:        "priority",
				Aliases:     []string{"p"},
				Usage:       "priority (low, medium, high)",
				Value:       string(ledger.PriorityMedium),
				Destination: &cmd.addPriority,
			},
			&cli.StringSliceFlag{
				Name:        "depends-on",
				Usage:       "todo ids that must complete first (repeatable)",
				Destination: &cmd.addDeps,
			},
			&cli.StringSliceFlag{
				Name:        "tag",
				Usage:       "free-form tags (repeatable)",
				Destination: &cmd.addTags,
			},
		},
		Action: cmd.runAdd,
	}
}

func (cmd *TodoCmd) listCmd() *cli.Command {
	return &cli.Command{
		Name:      "list",
		Aliases:   []string{"ls"},
		Usage:     "List todos grouped by plan",
		UsageText: "graft todo list [--status <status>] [--json]",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "status",
				Aliases:     []string{"s"},
				Usage:       "filter by status (pending, in_progress, completed, skipped, blocked)",
				Destination: &cmd.listStatus,
			},
			&cli.BoolFlag{
				Name:        "json",
				Usage:       "emit one JSON object per todo",
				Destination: &cmd.listJSON,
			},
		},
		Action: cmd.runList,
	}
}

func (cmd *TodoCmd) nextCmd() *cli.Command {
	return &cli.Command{
		Name:  "next",
		Usage: "Show the next eligible pending todo",
		Description: `Picks the highest-priority pending todo whose dependencies are all
completed. Ties go to the earliest-created todo.`,
		Action: cmd.runNext,
	}
}

func (cmd *TodoCmd) startCmd() *cli.Command {
	return &cli.Command{
		Name:      "start",
		Usage:     "Mark a todo in progress",
		UsageText: "graft todo start <id>",
		Action: func(ctx context.Context, c *cli.Command) error {
			id := c.Args().First()
			if id == "" {
				return fmt.Errorf("a todo id is required")
			}
			if err := cmd.app.Ledger.Start(ctx, id); err != nil {
				return err
			}
			return cmd.printTodo(id)
		},
	}
}

func (cmd *TodoCmd) transitionCmd(name, usage string, status ledger.Status) *cli.Command {
	return &cli.Command{
		Name:      name,
		Usage:     usage,
		UsageText: fmt.Sprintf("graft todo %s <id>", name),
		Action: func(ctx context.Context, c *cli.Command) error {
			id := c.Args().First()
			if id == "" {
				return fmt.Errorf("a todo id is required")
			}
			if err := cmd.app.Ledger.Transition(ctx, id, status); err != nil {
				return err
			}
			return cmd.printTodo(id)
		},
	}
}

func (cmd *TodoCmd) runAdd(ctx context.Context, c *cli.Command) error {
	title := c.Args().First()
	if err := validate.TitleField("title", title); err != nil {
		return err
	}

	todo, err := cmd.app.Ledger.Add(ctx, ledger.Todo{
		Title:       title,
		Description: cmd.addDescription,
		Priority:    ledger.Priority(cmd.addPriority),
		DependsOn:   cmd.addDeps,
		Tags:        cmd.addTags,
	})
	if err != nil {
		return fmt.Errorf("add todo: %w", err)
	}

	cmd.app.Printer.Todo(todo)
	return nil
}

func (cmd *TodoCmd) runList(ctx context.Context, c *cli.Command) error {
	groups := cmd.app.Ledger.Groups()

	if cmd.listStatus != "" {
		filtered := make([]ledger.TodoGroup, 0, len(groups))
		for _, g := range groups {
			var todos []ledger.Todo
			for _, t := range g.Todos {
				if t.Status == ledger.Status(cmd.listStatus) {
					todos = append(todos, t)
				}
			}
			if len(todos) > 0 {
				g.Todos = todos
				filtered = append(filtered, g)
			}
		}
		groups = filtered
	}

	if cmd.listJSON {
		var todos []ledger.Todo
		for _, g := range groups {
			todos = append(todos, g.Todos...)
		}
		return iojson.WriteLines(todos)
	}

	cmd.app.Printer.Todos(groups)
	return nil
}

func (cmd *TodoCmd) runNext(ctx context.Context, c *cli.Command) error {
	next, ok := cmd.app.Ledger.Next()
	if !ok {
		fmt.Println("no eligible todos")
		return nil
	}
	cmd.app.Printer.Todo(next)
	return nil
}

func (cmd *TodoCmd) printTodo(id string) error {
	todo, err := cmd.app.Ledger.Get(id)
	if err != nil {
		return err
	}
	cmd.app.Printer.Todo(todo)
	return nil
}
