// Package validate provides shared validation functions.
package validate

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/hay-kot/criterio"
)

var sessionIDRe = regexp.MustCompile(`^[a-z0-9][a-z0-9-]*$`)

// Title validates a todo or checkpoint title is non-empty after trimming
// whitespace.
func Title(title string) error {
	if strings.TrimSpace(title) == "" {
		return fmt.Errorf("title is required")
	}
	return nil
}

// TitleField returns a criterio validator for titles.
func TitleField(field, title string) error {
	return criterio.Run(field, title, Title)
}

// SessionID validates a session identifier: lowercase alphanumerics and
// hyphens, not starting with a hyphen.
func SessionID(id string) error {
	if strings.TrimSpace(id) == "" {
		return fmt.Errorf("session id is required")
	}
	if !sessionIDRe.MatchString(id) {
		return fmt.Errorf("session id must be lowercase alphanumerics and hyphens")
	}
	return nil
}

// SessionIDField returns a criterio validator for session ids.
func SessionIDField(field, id string) error {
	return criterio.Run(field, id, SessionID)
}

// OneOf validates that value is one of the allowed strings.
func OneOf(allowed ...string) func(string) error {
	return func(value string) error {
		for _, a := range allowed {
			if value == a {
				return nil
			}
		}
		return fmt.Errorf("must be one of: %s", strings.Join(allowed, ", "))
	}
}
