package gen

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/colonyops/graft/internal/core/config"
	"github.com/colonyops/graft/internal/core/plan"
)

// EstimateTokens approximates the token count of text. Four bytes per
// token is a display-grade heuristic, not a tokenizer.
func EstimateTokens(text string) int {
	return len(text) / 4
}

// EstimateCost prices a prompt/response pair using the configured
// per-1K rates.
func EstimateCost(cfg config.GeneratorConfig, promptText, responseText string) plan.CostEstimate {
	in := EstimateTokens(promptText)
	out := EstimateTokens(responseText)
	return plan.CostEstimate{
		InputTokens:  in,
		OutputTokens: out,
		USD:          float64(in)/1000*cfg.InputCostPer1K + float64(out)/1000*cfg.OutputCostPer1K,
	}
}

// Usage is one line of the usage journal.
type Usage struct {
	Timestamp    time.Time `json:"timestamp"`
	SessionID    string    `json:"session_id"`
	Feature      string    `json:"feature"`
	InputTokens  int       `json:"input_tokens"`
	OutputTokens int       `json:"output_tokens"`
	USD          float64   `json:"usd"`
}

// UsageJournal appends usage records to <data-dir>/usage.jsonl. Each
// Append is a single O_APPEND write, so interleaved writers stay
// line-intact.
type UsageJournal struct {
	path string
}

// NewUsageJournal creates a journal under the data directory.
func NewUsageJournal(dataDir string) *UsageJournal {
	return &UsageJournal{path: filepath.Join(dataDir, "usage.jsonl")}
}

// Append writes one usage record.
func (j *UsageJournal) Append(u Usage) error {
	if err := os.MkdirAll(filepath.Dir(j.path), 0o755); err != nil {
		return fmt.Errorf("create data dir: %w", err)
	}

	raw, err := json.Marshal(u)
	if err != nil {
		return fmt.Errorf("encode usage: %w", err)
	}

	f, err := os.OpenFile(j.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open usage journal: %w", err)
	}
	defer f.Close()

	if _, err := f.Write(append(raw, '\n')); err != nil {
		return fmt.Errorf("append usage: %w", err)
	}
	return nil
}
