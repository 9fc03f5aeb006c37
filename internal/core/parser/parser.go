// Package parser extracts structured file operations from unstructured
// assistant output. The input is untrusted and possibly malformed; text
// with no recognizable markers yields an empty result, not an error.
package parser

import (
	"os"
	"regexp"
	"strings"

	"github.com/rs/zerolog"

	"github.com/colonyops/graft/internal/core/logging"
	"github.com/colonyops/graft/internal/core/plan"
)

var (
	fenceRe = regexp.MustCompile("^```(.*)$")

	// markerPathRe pulls a path-like token out of a marker line such as
	// "#### `internal/api/server.go`" or "File: cmd/main.go".
	markerPathRe = regexp.MustCompile("`?\\*{0,2}([A-Za-z0-9_][A-Za-z0-9_./-]*(?:/[A-Za-z0-9_.-]+|\\.[A-Za-z0-9]{1,10}))\\*{0,2}`?\\s*$")

	// phraseRe matches the secondary "Create/Update/Modify <path>" fallback.
	phraseRe = regexp.MustCompile("(?i)\\b(create|update|modify)\\s+`?([A-Za-z0-9_][A-Za-z0-9_./-]*(?:/[A-Za-z0-9_.-]+|\\.[A-Za-z0-9]{1,10}))`?")
)

// Parser turns raw assistant text into a deduplicated, order-preserving
// sequence of file operations. Every candidate path passes through the
// safety boundary; rejected paths are logged and excluded.
type Parser struct {
	boundary *plan.Boundary
	log      zerolog.Logger
}

// New creates a Parser guarded by the given boundary.
func New(boundary *plan.Boundary) *Parser {
	return &Parser{
		boundary: boundary,
		log:      logging.Component("parser"),
	}
}

type block struct {
	path    string
	content string
}

// Parse extracts file operations from text. Order follows first appearance;
// a later block for the same path replaces the content (the assistant
// refined its answer). An empty slice means "nothing to generate".
func (p *Parser) Parse(text string) []plan.FileOperation {
	blocks := p.fencedBlocks(text)

	// Secondary fallback: explicit phrasing for paths not already captured.
	captured := make(map[string]bool, len(blocks))
	for _, b := range blocks {
		captured[b.path] = true
	}
	for _, m := range phraseRe.FindAllStringSubmatch(p.withoutFences(text), -1) {
		path := m[2]
		if captured[path] {
			continue
		}
		captured[path] = true
		blocks = append(blocks, block{path: path, content: ""})
	}

	ops := make([]plan.FileOperation, 0, len(blocks))
	seen := make(map[string]int, len(blocks))

	for _, b := range blocks {
		rel, err := p.boundary.Check(b.path)
		if err != nil {
			p.log.Warn().Err(err).Str("path", b.path).Msg("dropping unsafe path")
			continue
		}

		if i, ok := seen[rel]; ok {
			// Keep the original position, take the later content. A
			// content-free phrase match never clobbers a fenced block.
			if b.content != "" {
				ops[i] = p.buildOp(rel, b.content)
			}
			continue
		}

		seen[rel] = len(ops)
		ops = append(ops, p.buildOp(rel, b.content))
	}

	return ops
}

// Prose returns the text outside fenced regions, for rendering the
// assistant's explanation alongside a plan preview.
func (p *Parser) Prose(text string) string {
	return strings.TrimSpace(p.withoutFences(text))
}

func (p *Parser) buildOp(rel, content string) plan.FileOperation {
	op := plan.FileOperation{
		Path:           rel,
		Kind:           plan.OpCreate,
		Content:        content,
		EstimatedLines: countLines(content),
	}

	abs := p.boundary.Abs(rel)
	if info, err := os.Stat(abs); err == nil && !info.IsDir() {
		op.Kind = plan.OpModify
		if prior, err := os.ReadFile(abs); err == nil {
			op.PriorContent = string(prior)
		}
	}

	return op
}

// fencedBlocks scans for fenced code regions with a leading path marker,
// either in the fence info string or on the preceding non-blank line.
func (p *Parser) fencedBlocks(text string) []block {
	lines := strings.Split(text, "\n")

	var (
		blocks   []block
		inFence  bool
		path     string
		content  []string
		lastSeen string // last non-blank line outside a fence
	)

	for _, line := range lines {
		m := fenceRe.FindStringSubmatch(strings.TrimRight(line, " \t"))
		if m == nil {
			if inFence {
				content = append(content, line)
			} else if strings.TrimSpace(line) != "" {
				lastSeen = line
			}
			continue
		}

		if inFence {
			// Closing fence.
			if path != "" {
				blocks = append(blocks, block{path: path, content: strings.Join(content, "\n")})
			}
			inFence, path, content, lastSeen = false, "", nil, ""
			continue
		}

		inFence = true
		path = pathFromInfo(m[1])
		if path == "" {
			path = pathFromMarker(lastSeen)
		}
	}

	// An unterminated fence still counts; the assistant may have been cut off.
	if inFence && path != "" {
		blocks = append(blocks, block{path: path, content: strings.Join(content, "\n")})
	}

	return blocks
}

// withoutFences strips fenced regions so phrase matching never fires on
// code content.
func (p *Parser) withoutFences(text string) string {
	var (
		out     []string
		inFence bool
	)
	for _, line := range strings.Split(text, "\n") {
		if fenceRe.MatchString(strings.TrimRight(line, " \t")) {
			inFence = !inFence
			continue
		}
		if !inFence {
			out = append(out, line)
		}
	}
	return strings.Join(out, "\n")
}

// pathFromInfo extracts a path from a fence info string. Recognized forms:
// "go path=x/y.go", "go x/y.go", "x/y.go".
func pathFromInfo(info string) string {
	fields := strings.Fields(info)
	for i, f := range fields {
		for _, prefix := range []string{"path=", "file=", "filename=", "title="} {
			if rest, ok := strings.CutPrefix(f, prefix); ok {
				return strings.Trim(rest, "\"'")
			}
		}
		// A bare field that looks like a path; the first field is usually
		// the language, so it only counts when it contains a separator.
		if looksLikePath(f) && (i > 0 || strings.ContainsAny(f, "./")) {
			return f
		}
	}
	return ""
}

// pathFromMarker extracts a path from the non-blank line preceding a fence.
func pathFromMarker(line string) string {
	trimmed := strings.TrimSpace(line)
	if trimmed == "" {
		return ""
	}

	m := markerPathRe.FindStringSubmatch(trimmed)
	if m == nil {
		return ""
	}
	if !looksLikePath(m[1]) {
		return ""
	}
	return m[1]
}

// looksLikePath reports whether a token plausibly names a file: it has a
// directory separator or a short extension, and no spaces.
func looksLikePath(s string) bool {
	if s == "" || strings.ContainsAny(s, " \t") {
		return false
	}
	if strings.Contains(s, "/") {
		return true
	}
	dot := strings.LastIndex(s, ".")
	return dot > 0 && dot < len(s)-1 && len(s)-dot-1 <= 10
}

func countLines(s string) int {
	if s == "" {
		return 0
	}
	return strings.Count(s, "\n") + 1
}
