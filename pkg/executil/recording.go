package executil

import (
	"context"
	"strings"
	"sync"
)

// RecordedCommand captures a command that was executed.
type RecordedCommand struct {
	Dir  string
	Cmd  string
	Args []string
}

// RecordingExecutor captures commands for testing.
// Configure Outputs and Errors maps to control return values. Keys match
// against "<cmd> <first-arg>" first (e.g. "git status"), then "<cmd>", so a
// single fake can answer different git subcommands differently.
type RecordingExecutor struct {
	mu       sync.Mutex
	Commands []RecordedCommand

	// Outputs maps command keys to their output.
	Outputs map[string][]byte

	// Errors maps command keys to their error.
	Errors map[string]error

	// ShOutputs maps shell command lines to stdout for RunShOut.
	ShOutputs map[string][]byte

	// ShErr is returned by every RunShOut call when set.
	ShErr error
}

// Run records the command and returns configured output/error.
func (e *RecordingExecutor) Run(ctx context.Context, cmd string, args ...string) ([]byte, error) {
	return e.record("", cmd, args...)
}

// RunDir records the command with directory and returns configured output/error.
func (e *RecordingExecutor) RunDir(ctx context.Context, dir, cmd string, args ...string) ([]byte, error) {
	return e.record(dir, cmd, args...)
}

// RunShOut records the shell command line and returns configured output.
func (e *RecordingExecutor) RunShOut(ctx context.Context, dir, cmdline string) ([]byte, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.Commands = append(e.Commands, RecordedCommand{Dir: dir, Cmd: "sh", Args: []string{"-c", cmdline}})

	if e.ShErr != nil {
		return nil, e.ShErr
	}
	if e.ShOutputs != nil {
		return e.ShOutputs[cmdline], nil
	}
	return nil, nil
}

func (e *RecordingExecutor) record(dir, cmd string, args ...string) ([]byte, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.Commands = append(e.Commands, RecordedCommand{
		Dir:  dir,
		Cmd:  cmd,
		Args: args,
	})

	key := cmd
	if len(args) > 0 {
		key = cmd + " " + args[0]
	}

	var out []byte
	var err error

	if e.Outputs != nil {
		if o, ok := e.Outputs[key]; ok {
			out = o
		} else {
			out = e.Outputs[cmd]
		}
	}
	if e.Errors != nil {
		if er, ok := e.Errors[key]; ok {
			err = er
		} else {
			err = e.Errors[cmd]
		}
	}

	return out, err
}

// Calls returns recorded commands whose key matches the given prefix,
// e.g. Calls("git commit").
func (e *RecordingExecutor) Calls(prefix string) []RecordedCommand {
	e.mu.Lock()
	defer e.mu.Unlock()

	var matched []RecordedCommand
	for _, rc := range e.Commands {
		key := rc.Cmd
		if len(rc.Args) > 0 {
			key = rc.Cmd + " " + strings.Join(rc.Args, " ")
		}
		if strings.HasPrefix(key, prefix) {
			matched = append(matched, rc)
		}
	}
	return matched
}

// Reset clears recorded commands.
func (e *RecordingExecutor) Reset() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.Commands = nil
}
