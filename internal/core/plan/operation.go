// Package plan defines the generation plan domain model: file operations
// extracted from assistant output, the immutable plan built from them, and
// the result aggregated during execution.
package plan

// OpKind classifies a file operation.
type OpKind string

const (
	OpCreate OpKind = "create"
	OpModify OpKind = "modify"
	// OpDelete is reserved for an explicit operation type. It is never
	// inferred from assistant text.
	OpDelete OpKind = "delete"
)

// FileOperation is one file mutation with its content and safety-checked
// relative path.
type FileOperation struct {
	// Path is relative to the project root. The safety boundary guarantees
	// it resolves inside the root before an operation enters a plan.
	Path    string `json:"path"`
	Kind    OpKind `json:"kind"`
	Content string `json:"content"`
	// PriorContent holds the on-disk content for modify operations,
	// kept for diff display during approval.
	PriorContent string `json:"prior_content,omitempty"`
	Description  string `json:"description,omitempty"`
	// EstimatedLines is for display only, not correctness.
	EstimatedLines int `json:"estimated_lines"`
}
