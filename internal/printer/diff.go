package printer

import (
	"fmt"
	"strings"

	"github.com/sergi/go-diff/diffmatchpatch"

	"github.com/colonyops/graft/internal/core/plan"
	"github.com/colonyops/graft/internal/styles"
)

const maxDiffBytes = 1 << 20

// Diff returns a line diff between the operation's prior and proposed
// content for display during approval. Create operations show every
// line as added; identical content yields an empty string.
func Diff(op plan.FileOperation) string {
	if op.PriorContent == op.Content {
		return ""
	}
	if len(op.PriorContent) > maxDiffBytes || len(op.Content) > maxDiffBytes {
		return styles.Muted.Render(fmt.Sprintf("%s: content too large to diff", op.Path))
	}

	dmp := diffmatchpatch.New()
	prior, proposed, lines := dmp.DiffLinesToChars(op.PriorContent, op.Content)
	diffs := dmp.DiffCharsToLines(dmp.DiffMain(prior, proposed, false), lines)

	var b strings.Builder
	b.WriteString(styles.Removed.Render("--- a/"+op.Path) + "\n")
	b.WriteString(styles.Added.Render("+++ b/"+op.Path) + "\n")

	for _, d := range diffs {
		for _, line := range splitLines(d.Text) {
			switch d.Type {
			case diffmatchpatch.DiffInsert:
				b.WriteString(styles.Added.Render("+"+line) + "\n")
			case diffmatchpatch.DiffDelete:
				b.WriteString(styles.Removed.Render("-"+line) + "\n")
			case diffmatchpatch.DiffEqual:
				b.WriteString(" " + line + "\n")
			}
		}
	}
	return b.String()
}

// splitLines splits diff text into lines without a trailing empty
// element for the final newline.
func splitLines(text string) []string {
	lines := strings.Split(text, "\n")
	if len(lines) > 0 && lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	return lines
}
