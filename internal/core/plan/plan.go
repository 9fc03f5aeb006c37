package plan

// BranchStrategy selects how execution coordinates with version control.
type BranchStrategy string

const (
	StrategyNewBranch     BranchStrategy = "new-branch"
	StrategyCurrentBranch BranchStrategy = "current-branch"
)

// CostEstimate prices a generation run. Estimates are heuristic and for
// display only.
type CostEstimate struct {
	InputTokens  int     `json:"input_tokens"`
	OutputTokens int     `json:"output_tokens"`
	USD          float64 `json:"usd"`
}

// GenerationPlan is an ordered, immutable set of file operations derived
// from generated text. Execution consumes it read-only; nothing mutates a
// plan after Build returns it.
type GenerationPlan struct {
	Feature    string          `json:"feature"`
	Operations []FileOperation `json:"operations"`
	Cost       CostEstimate    `json:"cost"`
	Strategy   BranchStrategy  `json:"strategy"`
	// BranchName is set iff Strategy is new-branch.
	BranchName string `json:"branch_name,omitempty"`
	Summary    string `json:"summary"`
}

// GenerationResult aggregates the outcome of one plan execution. It is
// built incrementally; partial application is an accepted outcome surfaced
// through the path lists rather than a transactional guarantee.
type GenerationResult struct {
	FilesCreated  []string `json:"files_created"`
	FilesModified []string `json:"files_modified"`
	FilesSkipped  []string `json:"files_skipped"`
	Errors        []string `json:"errors"`
	// BranchCreated is the branch name when a new branch was created.
	BranchCreated string `json:"branch_created,omitempty"`
	// CommitMessage is set when an auto-commit succeeded.
	CommitMessage string `json:"commit_message,omitempty"`
}

// AddCreated records a created file path.
func (r *GenerationResult) AddCreated(path string) {
	r.FilesCreated = append(r.FilesCreated, path)
}

// AddModified records a modified file path.
func (r *GenerationResult) AddModified(path string) {
	r.FilesModified = append(r.FilesModified, path)
}

// AddSkipped records a skipped file path.
func (r *GenerationResult) AddSkipped(path string) {
	r.FilesSkipped = append(r.FilesSkipped, path)
}

// AddError records an error message.
func (r *GenerationResult) AddError(msg string) {
	r.Errors = append(r.Errors, msg)
}

// Success reports whether execution completed without errors. Skipped
// operations alone do not fail a run.
func (r *GenerationResult) Success() bool {
	return len(r.Errors) == 0
}

// Touched returns all created and modified paths in application order.
func (r *GenerationResult) Touched() []string {
	touched := make([]string, 0, len(r.FilesCreated)+len(r.FilesModified))
	touched = append(touched, r.FilesCreated...)
	touched = append(touched, r.FilesModified...)
	return touched
}
