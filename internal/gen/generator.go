// Package gen orchestrates a generation run: prompt to generated text
// to parsed plan to executed result, with cost accounting and ledger
// bookkeeping alongside.
package gen

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/rs/zerolog"

	"github.com/colonyops/graft/internal/core/logging"
	"github.com/colonyops/graft/pkg/executil"
	"github.com/colonyops/graft/pkg/tmpl"
)

// Generator produces assistant text for a prompt pair. The returned
// text is untrusted input for the parser; implementations make no
// promise about its shape.
type Generator interface {
	Generate(ctx context.Context, systemPrompt, userPrompt string) (string, error)
}

// commandData is the template context for generator command lines.
type commandData struct {
	System string
	Prompt string
}

// CommandGenerator shells out to a configured assistant command. The
// command is a template rendered with System and Prompt fields; shq is
// available for quoting.
type CommandGenerator struct {
	command string
	dir     string
	exec    executil.Executor
	log     zerolog.Logger
}

// NewCommandGenerator creates a generator running the command template
// in dir.
func NewCommandGenerator(command, dir string, exec executil.Executor) *CommandGenerator {
	return &CommandGenerator{
		command: command,
		dir:     dir,
		exec:    exec,
		log:     logging.Component("generator"),
	}
}

// Generate renders the command template and runs it, returning stdout.
// No timeout is imposed here; a hanging assistant hangs the run.
func (g *CommandGenerator) Generate(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	cmdline, err := tmpl.Render(g.command, commandData{System: systemPrompt, Prompt: userPrompt})
	if err != nil {
		return "", fmt.Errorf("render generator command: %w", err)
	}

	g.log.Debug().Str("command", cmdline).Msg("running generator")

	out, err := g.exec.RunShOut(ctx, g.dir, cmdline)
	if err != nil {
		return "", fmt.Errorf("generator command failed: %w", err)
	}
	return string(out), nil
}

// FileSource returns pre-generated text from a file, or from Stdin when
// Path is "-". Prompts are ignored; the text was produced elsewhere.
type FileSource struct {
	Path  string
	Stdin io.Reader
}

// Generate implements Generator.
func (f *FileSource) Generate(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	if f.Path == "-" {
		in := f.Stdin
		if in == nil {
			in = os.Stdin
		}
		raw, err := io.ReadAll(in)
		if err != nil {
			return "", fmt.Errorf("read stdin: %w", err)
		}
		return string(raw), nil
	}

	raw, err := os.ReadFile(f.Path)
	if err != nil {
		return "", fmt.Errorf("read %s: %w", f.Path, err)
	}
	return string(raw), nil
}
