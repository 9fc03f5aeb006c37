// Package printer renders plans, results, and ledger state for the CLI.
package printer

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"

	"github.com/colonyops/graft/internal/core/git"
	"github.com/colonyops/graft/internal/core/ledger"
	"github.com/colonyops/graft/internal/core/plan"
	"github.com/colonyops/graft/internal/styles"
)

const fallbackWidth = 80

// Printer writes human-oriented output.
type Printer struct {
	out   io.Writer
	width int
}

// New creates a Printer. Width is taken from the terminal when out is
// one, otherwise a fixed fallback is used.
func New(out io.Writer) *Printer {
	width := fallbackWidth
	if f, ok := out.(*os.File); ok {
		if w, _, err := term.GetSize(int(f.Fd())); err == nil && w > 0 {
			width = w
		}
	}
	return &Printer{out: out, width: width}
}

// PlanPreview prints the assistant's prose as rendered markdown
// followed by the operation list and cost estimate.
func (p *Printer) PlanPreview(gp plan.GenerationPlan, prose string) {
	if trimmed := strings.TrimSpace(prose); trimmed != "" {
		p.markdown(trimmed)
		fmt.Fprintln(p.out)
	}

	fmt.Fprintln(p.out, styles.Title.Render(gp.Summary))
	for _, op := range gp.Operations {
		fmt.Fprintf(p.out, "  %s %s %s\n",
			kindBadge(op.Kind),
			op.Path,
			styles.Muted.Render(fmt.Sprintf("~%d lines", op.EstimatedLines)))
	}

	if gp.BranchName != "" {
		fmt.Fprintf(p.out, "  branch: %s\n", gp.BranchName)
	}
	fmt.Fprintln(p.out, styles.Muted.Render(fmt.Sprintf(
		"  est. cost: $%.4f (%d in / %d out tokens)",
		gp.Cost.USD, gp.Cost.InputTokens, gp.Cost.OutputTokens)))
}

// markdown renders text with glamour, falling back to the raw text when
// rendering fails.
func (p *Printer) markdown(text string) {
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(p.width),
	)
	if err == nil {
		if rendered, rerr := r.Render(text); rerr == nil {
			fmt.Fprint(p.out, rendered)
			return
		}
	}
	fmt.Fprintln(p.out, text)
}

// Summary prints the completion summary. Every list is enumerated even
// under partial failure; there is no silent success.
func (p *Printer) Summary(result plan.GenerationResult) {
	if result.Success() {
		fmt.Fprintln(p.out, styles.Success.Render("done"))
	} else {
		fmt.Fprintln(p.out, styles.Error.Render("done with errors"))
	}

	section := func(label string, style lipgloss.Style, paths []string) {
		for _, path := range paths {
			fmt.Fprintf(p.out, "  %s %s\n", style.Render(label), path)
		}
	}
	section("created", styles.Success, result.FilesCreated)
	section("modified", styles.Warning, result.FilesModified)
	section("skipped", styles.Muted, result.FilesSkipped)
	section("error", styles.Error, result.Errors)

	if result.BranchCreated != "" {
		fmt.Fprintf(p.out, "  branch: %s\n", result.BranchCreated)
	}
	if result.CommitMessage != "" {
		fmt.Fprintf(p.out, "  commit: %s\n", result.CommitMessage)
	}
}

// Todos prints ledger groups with per-todo status markers.
func (p *Printer) Todos(groups []ledger.TodoGroup) {
	for _, g := range groups {
		fmt.Fprintf(p.out, "%s %s\n",
			styles.Title.Render(g.Title),
			styles.Muted.Render(fmt.Sprintf("[%s]", g.Status())))
		for _, t := range g.Todos {
			fmt.Fprintf(p.out, "  %s %s %s\n",
				statusMarker(t.Status),
				t.Title,
				styles.Muted.Render(fmt.Sprintf("(%s, %s)", t.ID, t.Priority)))
		}
	}
}

// Todo prints a single todo, used by continue and todo next.
func (p *Printer) Todo(t ledger.Todo) {
	fmt.Fprintf(p.out, "%s %s %s\n",
		statusMarker(t.Status),
		t.Title,
		styles.Muted.Render(fmt.Sprintf("(%s, %s)", t.ID, t.Priority)))
	if t.Description != "" {
		fmt.Fprintf(p.out, "  %s\n", t.Description)
	}
}

// Checkpoints prints a checkpoint listing, newest first.
func (p *Printer) Checkpoints(cps []ledger.Checkpoint) {
	for _, cp := range cps {
		fmt.Fprintf(p.out, "%s  %s %s\n",
			cp.ID,
			cp.Title,
			styles.Muted.Render(cp.CreatedAt.Format("2006-01-02 15:04:05")))
	}
}

// GitStatus prints a repository status summary.
func (p *Printer) GitStatus(st git.Status) {
	state := styles.Success.Render("clean")
	if !st.Clean {
		state = styles.Warning.Render("dirty")
	}
	fmt.Fprintf(p.out, "branch %s (%s)\n", styles.Title.Render(st.Branch), state)

	if !st.HasRemote {
		fmt.Fprintln(p.out, styles.Muted.Render("  no remote tracking branch"))
		return
	}
	if st.Ahead > 0 || st.Behind > 0 {
		fmt.Fprintf(p.out, "  ahead %d, behind %d\n", st.Ahead, st.Behind)
	}
}

func kindBadge(kind plan.OpKind) string {
	switch kind {
	case plan.OpCreate:
		return styles.BadgeCreate.Render("create")
	case plan.OpModify:
		return styles.BadgeModify.Render("modify")
	case plan.OpDelete:
		return styles.BadgeDelete.Render("delete")
	}
	return string(kind)
}

func statusMarker(s ledger.Status) string {
	switch s {
	case ledger.StatusCompleted:
		return styles.Success.Render("✓")
	case ledger.StatusInProgress:
		return styles.Warning.Render("›")
	case ledger.StatusSkipped:
		return styles.Muted.Render("~")
	case ledger.StatusBlocked:
		return styles.Error.Render("!")
	}
	return "·"
}
