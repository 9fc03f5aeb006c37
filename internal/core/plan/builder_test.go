package plan

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSlugify(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"simple", "Add Login", "add-login"},
		{"multiple spaces", "Add   OAuth   Login", "add-oauth-login"},
		{"special chars", "Feature: Add Login!", "feature-add-login"},
		{"already slug", "add-login", "add-login"},
		{"leading/trailing spaces", "  Add Login  ", "add-login"},
		{"numbers", "Fix issue 123", "fix-issue-123"},
		{"underscores", "my_feature_name", "my-feature-name"},
		{"empty after trim", "   ", ""},
		{"caps length", "a very long feature description that goes on and on forever", "a-very-long-feature-description-that-goe"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Slugify(tt.in)
			assert.Equal(t, tt.want, got)
			assert.LessOrEqual(t, len(got), maxSlugLen)
		})
	}
}

func TestBuilder_Build(t *testing.T) {
	ops := []FileOperation{
		{Path: "a.go", Kind: OpCreate, EstimatedLines: 10},
		{Path: "b.go", Kind: OpModify, EstimatedLines: 5},
	}

	t.Run("new branch strategy", func(t *testing.T) {
		b := NewBuilder(BuilderOptions{BranchPerFeature: true, BranchPrefix: "graft/"})
		p := b.Build("Add Login", ops, CostEstimate{OutputTokens: 100})

		assert.Equal(t, StrategyNewBranch, p.Strategy)
		assert.Equal(t, "graft/add-login", p.BranchName)
		assert.Equal(t, ops, p.Operations)
		assert.Equal(t, 100, p.Cost.OutputTokens)
	})

	t.Run("current branch strategy", func(t *testing.T) {
		b := NewBuilder(BuilderOptions{BranchPerFeature: false})
		p := b.Build("Add Login", ops, CostEstimate{})

		assert.Equal(t, StrategyCurrentBranch, p.Strategy)
		assert.Empty(t, p.BranchName, "branch name present iff new-branch strategy")
	})

	t.Run("operation order preserved", func(t *testing.T) {
		b := NewBuilder(BuilderOptions{})
		p := b.Build("x", ops, CostEstimate{})

		assert.Equal(t, "a.go", p.Operations[0].Path)
		assert.Equal(t, "b.go", p.Operations[1].Path)
	})
}

func TestSummarize_Deterministic(t *testing.T) {
	ops := []FileOperation{
		{Path: "a.go", Kind: OpCreate, EstimatedLines: 12},
		{Path: "b.go", Kind: OpModify, EstimatedLines: 3},
		{Path: "c.go", Kind: OpCreate, EstimatedLines: 7},
	}

	first := Summarize("Add Login", ops)
	for range 10 {
		assert.Equal(t, first, Summarize("Add Login", ops), "identical inputs must yield byte-identical summaries")
	}

	assert.Equal(t, "Add Login: 2 file(s) to create, 1 to modify, 0 to delete, ~22 lines", first)
}

func TestGenerationResult(t *testing.T) {
	t.Run("success with only skips", func(t *testing.T) {
		var r GenerationResult
		r.AddSkipped("a.go")
		assert.True(t, r.Success(), "skips alone do not fail a run")
	})

	t.Run("any error fails", func(t *testing.T) {
		var r GenerationResult
		r.AddCreated("a.go")
		r.AddError("write b.go: permission denied")
		assert.False(t, r.Success())
	})

	t.Run("touched preserves order", func(t *testing.T) {
		var r GenerationResult
		r.AddCreated("new.go")
		r.AddModified("old.go")
		assert.Equal(t, []string{"new.go", "old.go"}, r.Touched())
	})
}
