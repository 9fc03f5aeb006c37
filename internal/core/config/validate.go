package config

import (
	"fmt"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/hay-kot/criterio"

	"github.com/colonyops/graft/pkg/tmpl"
)

// Validate checks that the configuration is valid.
func (c *Config) Validate() error {
	return criterio.ValidateStruct(
		criterio.Run("git_path", c.GitPath, nonEmpty),
		criterio.Run("data_dir", c.DataDir, nonEmpty),
		criterio.Run("git.branch_prefix", c.Git.BranchPrefix, validBranchPrefix),
		criterio.Run("git.commit_template", c.Git.CommitTemplate, validCommitTemplate),
		c.validateProtectedGlobs(),
	)
}

func nonEmpty(s string) error {
	if s == "" {
		return fmt.Errorf("cannot be empty")
	}
	return nil
}

func validBranchPrefix(prefix string) error {
	for _, r := range prefix {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '-', r == '/', r == '.':
		default:
			return fmt.Errorf("contains invalid branch character %q", r)
		}
	}
	return nil
}

func validCommitTemplate(t string) error {
	_, err := tmpl.Render(t, commitTemplatePreviewData())
	if err != nil {
		return fmt.Errorf("invalid template: %w", err)
	}
	return nil
}

// commitTemplatePreviewData provides sample values so templates can be
// checked for undefined keys at load time rather than at commit time.
func commitTemplatePreviewData() map[string]any {
	return map[string]any{
		"Feature":   "sample feature",
		"FileCount": 1,
		"Files":     []string{"sample.go"},
	}
}

func (c *Config) validateProtectedGlobs() error {
	var errs criterio.FieldErrorsBuilder
	for i, pattern := range c.Safety.Protected {
		if !doublestar.ValidatePattern(pattern) {
			errs = errs.Append(fmt.Sprintf("safety.protected[%d]", i), fmt.Errorf("invalid glob pattern %q", pattern))
		}
	}
	return errs.ToError()
}
