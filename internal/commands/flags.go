package commands

import (
	"os"
	"path/filepath"
	"runtime"

	"github.com/colonyops/graft/internal/core/config"
	"github.com/colonyops/graft/internal/core/engine"
	"github.com/colonyops/graft/internal/core/git"
	"github.com/colonyops/graft/internal/core/ledger"
	"github.com/colonyops/graft/internal/core/parser"
	"github.com/colonyops/graft/internal/core/plan"
	"github.com/colonyops/graft/internal/gen"
	"github.com/colonyops/graft/internal/printer"
)

type Flags struct {
	LogLevel   string
	LogFile    string
	ConfigPath string
	DataDir    string
	Session    string

	// Config is loaded in the Before hook and available to all commands
	Config *config.Config
}

// App holds the wired collaborators every command works against. It is
// populated in main's Before hook; commands hold a pointer to the
// pre-allocated struct.
type App struct {
	WorkDir     string
	Boundary    *plan.Boundary
	Parser      *parser.Parser
	Builder     *plan.Builder
	Engine      *engine.Engine
	Git         git.Git
	Ledger      *ledger.Ledger
	Checkpoints ledger.CheckpointStore
	Journal     *gen.UsageJournal
	Service     *gen.Service
	Printer     *printer.Printer
}

// DefaultConfigPath returns the default config file path using XDG_CONFIG_HOME.
func DefaultConfigPath() string {
	configHome := os.Getenv("XDG_CONFIG_HOME")
	if configHome == "" {
		home, _ := os.UserHomeDir()
		configHome = filepath.Join(home, ".config")
	}
	return filepath.Join(configHome, "graft", "config.yaml")
}

// DefaultDataDir returns the default data directory using XDG_DATA_HOME.
func DefaultDataDir() string {
	dataHome := os.Getenv("XDG_DATA_HOME")
	if dataHome == "" {
		home, _ := os.UserHomeDir()
		dataHome = filepath.Join(home, ".local", "share")
	}
	return filepath.Join(dataHome, "graft")
}

// DefaultLogFile returns the default log file path using the system's state directory.
// On macOS: ~/Library/Logs/graft/graft.log
// On Linux: $XDG_STATE_HOME/graft/graft.log (defaults to ~/.local/state/graft/graft.log)
func DefaultLogFile() string {
	stateHome := os.Getenv("XDG_STATE_HOME")
	if stateHome != "" {
		return filepath.Join(stateHome, "graft", "graft.log")
	}

	home, _ := os.UserHomeDir()

	if runtime.GOOS == "darwin" {
		return filepath.Join(home, "Library", "Logs", "graft", "graft.log")
	}

	return filepath.Join(home, ".local", "state", "graft", "graft.log")
}
