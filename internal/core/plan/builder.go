package plan

import (
	"fmt"
	"regexp"
	"strings"
)

// maxSlugLen caps derived branch name slugs.
const maxSlugLen = 40

var nonAlphanumeric = regexp.MustCompile(`[^a-z0-9]+`)

// Slugify converts a feature label to a branch-safe slug.
// "Add OAuth Login!" -> "add-oauth-login"
func Slugify(name string) string {
	s := strings.ToLower(strings.TrimSpace(name))
	s = nonAlphanumeric.ReplaceAllString(s, "-")
	s = strings.Trim(s, "-")
	if len(s) > maxSlugLen {
		s = strings.Trim(s[:maxSlugLen], "-")
	}
	return s
}

// BuilderOptions configure plan construction.
type BuilderOptions struct {
	// BranchPerFeature selects the new-branch strategy.
	BranchPerFeature bool
	// BranchPrefix is prepended to the slugified feature name.
	BranchPrefix string
}

// Builder assembles parsed operations plus metadata into an immutable
// GenerationPlan.
type Builder struct {
	opts BuilderOptions
}

// NewBuilder creates a Builder.
func NewBuilder(opts BuilderOptions) *Builder {
	return &Builder{opts: opts}
}

// Build constructs a plan. Strategy selection is a pure function of the
// configured flag; the summary is deterministic for identical inputs.
func (b *Builder) Build(feature string, ops []FileOperation, cost CostEstimate) GenerationPlan {
	p := GenerationPlan{
		Feature:    feature,
		Operations: ops,
		Cost:       cost,
		Strategy:   StrategyCurrentBranch,
		Summary:    Summarize(feature, ops),
	}

	if b.opts.BranchPerFeature {
		p.Strategy = StrategyNewBranch
		p.BranchName = b.opts.BranchPrefix + Slugify(feature)
	}

	return p
}

// Summarize renders the plan summary. Identical inputs always produce the
// identical string.
func Summarize(feature string, ops []FileOperation) string {
	var creates, modifies, deletes, lines int
	for _, op := range ops {
		switch op.Kind {
		case OpCreate:
			creates++
		case OpModify:
			modifies++
		case OpDelete:
			deletes++
		}
		lines += op.EstimatedLines
	}

	return fmt.Sprintf("%s: %d file(s) to create, %d to modify, %d to delete, ~%d lines",
		feature, creates, modifies, deletes, lines)
}
