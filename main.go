package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime/debug"

	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v3"

	"github.com/colonyops/graft/internal/commands"
	"github.com/colonyops/graft/internal/core/config"
	"github.com/colonyops/graft/internal/core/engine"
	"github.com/colonyops/graft/internal/core/git"
	"github.com/colonyops/graft/internal/core/ledger"
	"github.com/colonyops/graft/internal/core/parser"
	"github.com/colonyops/graft/internal/core/plan"
	"github.com/colonyops/graft/internal/core/validate"
	"github.com/colonyops/graft/internal/data/stores"
	"github.com/colonyops/graft/internal/gen"
	"github.com/colonyops/graft/internal/printer"
	"github.com/colonyops/graft/pkg/executil"
	"github.com/colonyops/graft/pkg/logutils"
)

var (
	// Build information. Populated at build-time via -ldflags flag.
	// When installed via `go install module@version`, build() populates
	// these from runtime/debug.BuildInfo instead.
	version = "dev"
	commit  = "HEAD"
	date    = "now"
)

func build() string {
	v, c, d := version, commit, date

	if v == "dev" {
		if info, ok := debug.ReadBuildInfo(); ok {
			if mv := info.Main.Version; mv != "" && mv != "(devel)" {
				v = mv
			}
			for _, s := range info.Settings {
				switch s.Key {
				case "vcs.revision":
					c = s.Value
				case "vcs.time":
					d = s.Value
				}
			}
		}
	}

	short := c
	if len(c) > 7 {
		short = c[:7]
	}

	return fmt.Sprintf("%s (%s) %s", v, short, d)
}

func main() {
	ctx := context.Background()

	var (
		logCloser func()
		graftApp  = &commands.App{}
	)

	flags := &commands.Flags{}

	app := &cli.Command{
		Name:      "graft",
		Usage:     "Turn assistant output into reviewed file changes",
		UsageText: "graft [global options] command [command options]",
		Description: `Graft runs a generative assistant, parses its response into file
operations, and walks each operation through approval before writing
it into the working tree, with branch and commit coordination and a
resumable task ledger alongside.`,
		Version: build(),
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "log-level",
				Usage:       "log level (debug, info, warn, error, fatal, panic)",
				Sources:     cli.EnvVars("GRAFT_LOG_LEVEL"),
				Value:       "info",
				Destination: &flags.LogLevel,
			},
			&cli.StringFlag{
				Name:        "log-file",
				Usage:       "path to log file (defaults to <data-dir>/graft.log)",
				Sources:     cli.EnvVars("GRAFT_LOG_FILE"),
				Destination: &flags.LogFile,
			},
			&cli.StringFlag{
				Name:        "config",
				Aliases:     []string{"c"},
				Usage:       "path to config file",
				Sources:     cli.EnvVars("GRAFT_CONFIG"),
				Value:       commands.DefaultConfigPath(),
				Destination: &flags.ConfigPath,
			},
			&cli.StringFlag{
				Name:        "data-dir",
				Usage:       "path to data directory",
				Sources:     cli.EnvVars("GRAFT_DATA_DIR"),
				Value:       commands.DefaultDataDir(),
				Destination: &flags.DataDir,
			},
			&cli.StringFlag{
				Name:        "session",
				Aliases:     []string{"s"},
				Usage:       "session id for ledger and checkpoints",
				Sources:     cli.EnvVars("GRAFT_SESSION"),
				Value:       "default",
				Destination: &flags.Session,
			},
		},
		Before: func(ctx context.Context, c *cli.Command) (context.Context, error) {
			if err := validate.SessionIDField("session", flags.Session); err != nil {
				return ctx, err
			}

			logFile := flags.LogFile
			if logFile == "" {
				logFile = filepath.Join(flags.DataDir, "graft.log")
			}

			logger, closer, err := logutils.New(flags.LogLevel, logFile)
			if err != nil {
				return ctx, fmt.Errorf("setup logger: %w", err)
			}
			log.Logger = logger
			logCloser = closer

			cfg, err := config.Load(flags.ConfigPath, flags.DataDir)
			if err != nil {
				return ctx, fmt.Errorf("load config: %w", err)
			}
			flags.Config = cfg

			workDir, err := os.Getwd()
			if err != nil {
				return ctx, fmt.Errorf("working directory: %w", err)
			}

			led, err := ledger.Open(ctx, stores.NewLedgerStore(cfg.DataDir), flags.Session)
			if err != nil {
				return ctx, fmt.Errorf("open ledger: %w", err)
			}

			var (
				exec     = &executil.RealExecutor{}
				gitExec  = git.NewExecutor(cfg.GitPath, exec)
				boundary = plan.NewBoundary(workDir, cfg.Safety.Protected)
				eng      = engine.New(boundary, gitExec, engine.Options{
					AutoCommit:     cfg.Git.AutoCommit,
					AutoPush:       cfg.Git.AutoPush,
					CommitTemplate: cfg.Git.CommitTemplate,
				})
				journal = gen.NewUsageJournal(cfg.DataDir)
				cps     = stores.NewCheckpointStore(cfg.DataDir)
				prs     = parser.New(boundary)
				builder = plan.NewBuilder(plan.BuilderOptions{
					BranchPerFeature: cfg.Git.BranchPerFeature,
					BranchPrefix:     cfg.Git.BranchPrefix,
				})
			)

			// Commands already hold a pointer to the pre-allocated App.
			*graftApp = commands.App{
				WorkDir:     workDir,
				Boundary:    boundary,
				Parser:      prs,
				Builder:     builder,
				Engine:      eng,
				Git:         gitExec,
				Ledger:      led,
				Checkpoints: cps,
				Journal:     journal,
				Printer:     printer.New(os.Stdout),
				Service: gen.NewService(gen.Deps{
					Generator:   gen.NewCommandGenerator(cfg.Generator.Command, workDir, exec),
					Parser:      prs,
					Builder:     builder,
					Engine:      eng,
					Ledger:      led,
					Checkpoints: cps,
					Journal:     journal,
					Generation:  cfg.Generator,
				}),
			}

			return ctx, nil
		},
		After: func(ctx context.Context, c *cli.Command) error {
			if logCloser != nil {
				logCloser()
			}
			return nil
		},
	}

	app = commands.NewGenCmd(flags, graftApp).Register(app)
	app = commands.NewContinueCmd(flags, graftApp).Register(app)
	app = commands.NewTodoCmd(flags, graftApp).Register(app)
	app = commands.NewCheckpointCmd(flags, graftApp).Register(app)
	app = commands.NewStatusCmd(flags, graftApp).Register(app)

	exitCode := 0
	if err := app.Run(ctx, os.Args); err != nil {
		fmt.Println()
		fmt.Println(err.Error())
		exitCode = 1
	}

	os.Exit(exitCode)
}
