package chunker

import (
	"strings"

	"github.com/dshills/docquery-mcp/pkg/types"
)

const (
	// MaxTokensPerChunk is the target maximum token count per chunk.
	MaxTokensPerChunk = 1000

	// MinTokensPerChunk is the floor below which a section is merged
	// into its predecessor instead of standing alone.
	MinTokensPerChunk = 50

	// TokensPerChar is the heuristic for estimating tokens (chars/4).
	TokensPerChar = 4
)

// Chunker splits markdown documents into heading-bounded sections.
type Chunker struct{}

// New creates a new Chunker instance.
func New() *Chunker {
	return &Chunker{}
}

// section is an intermediate heading-bounded slice of a document.
type section struct {
	headingPath string
	lines       []string
	startLine   int // 1-based
}

// ChunkDocument splits a document into chunks at markdown heading
// boundaries. Sections smaller than MinTokensPerChunk are merged into
// the preceding section; sections larger than MaxTokensPerChunk are
// split at paragraph boundaries. Every chunk carries its heading path
// so retrieval hits keep their place in the document structure.
func (c *Chunker) ChunkDocument(doc types.Document) []*types.Chunk {
	lines := strings.Split(doc.Text, "\n")
	sections := splitSections(lines)
	sections = mergeSmallSections(sections)

	chunks := make([]*types.Chunk, 0, len(sections))
	for _, sec := range sections {
		chunks = append(chunks, c.sectionChunks(doc.ID, sec)...)
	}

	for i, chunk := range chunks {
		chunk.Ordinal = i
	}

	return chunks
}

// splitSections walks the document lines and starts a new section at
// every ATX heading outside a fenced code block. Content before the
// first heading forms its own section.
func splitSections(lines []string) []section {
	var sections []section
	current := section{startLine: 1}
	// headingStack[level-1] holds the most recent heading text per level.
	var headingStack [6]string
	inFence := false

	flush := func() {
		if hasContent(current.lines) {
			sections = append(sections, current)
		}
	}

	for i, line := range lines {
		trimmed := strings.TrimSpace(line)

		if strings.HasPrefix(trimmed, "```") || strings.HasPrefix(trimmed, "~~~") {
			inFence = !inFence
		}

		level, text := parseHeading(trimmed)
		if level > 0 && !inFence {
			flush()

			headingStack[level-1] = text
			for l := level; l < len(headingStack); l++ {
				headingStack[l] = ""
			}

			current = section{
				headingPath: joinHeadings(headingStack[:level]),
				startLine:   i + 1,
			}
		}

		current.lines = append(current.lines, line)
	}
	flush()

	return sections
}

// parseHeading returns the heading level (1-6) and text for an ATX
// heading line, or 0 for a non-heading line.
func parseHeading(trimmed string) (int, string) {
	level := 0
	for level < len(trimmed) && trimmed[level] == '#' {
		level++
	}
	if level == 0 || level > 6 {
		return 0, ""
	}
	rest := trimmed[level:]
	if rest != "" && !strings.HasPrefix(rest, " ") && !strings.HasPrefix(rest, "\t") {
		return 0, ""
	}
	return level, strings.TrimSpace(strings.TrimRight(strings.TrimSpace(rest), "#"))
}

// joinHeadings builds the breadcrumb, dropping empty intermediate levels.
func joinHeadings(stack []string) string {
	parts := make([]string, 0, len(stack))
	for _, h := range stack {
		if h != "" {
			parts = append(parts, h)
		}
	}
	return strings.Join(parts, " > ")
}

// mergeSmallSections folds sections below the token floor into their
// predecessor so the index is not polluted with near-empty entries.
func mergeSmallSections(sections []section) []section {
	if len(sections) == 0 {
		return sections
	}

	merged := []section{sections[0]}
	for _, sec := range sections[1:] {
		if estimateTokens(sec.lines) < MinTokensPerChunk {
			last := &merged[len(merged)-1]
			last.lines = append(last.lines, sec.lines...)
			continue
		}
		merged = append(merged, sec)
	}
	return merged
}

// sectionChunks turns one section into one or more chunks, splitting at
// paragraph boundaries when the section exceeds the token budget.
func (c *Chunker) sectionChunks(docID string, sec section) []*types.Chunk {
	if estimateTokens(sec.lines) <= MaxTokensPerChunk {
		chunk := newChunk(docID, sec.headingPath, sec.lines, sec.startLine)
		if chunk == nil {
			return nil
		}
		return []*types.Chunk{chunk}
	}

	var chunks []*types.Chunk
	var pending []string
	pendingStart := sec.startLine

	flush := func(nextStart int) {
		if chunk := newChunk(docID, sec.headingPath, pending, pendingStart); chunk != nil {
			chunks = append(chunks, chunk)
		}
		pending = nil
		pendingStart = nextStart
	}

	for i, line := range sec.lines {
		lineNo := sec.startLine + i
		// Split at blank lines once the budget is exceeded.
		if strings.TrimSpace(line) == "" && estimateTokens(pending) >= MaxTokensPerChunk {
			flush(lineNo + 1)
			continue
		}
		pending = append(pending, line)
	}
	flush(0)

	return chunks
}

// newChunk builds a validated chunk from section lines, or nil when the
// lines hold no content.
func newChunk(docID, headingPath string, lines []string, startLine int) *types.Chunk {
	if !hasContent(lines) {
		return nil
	}

	chunk := &types.Chunk{
		DocumentID:  docID,
		Content:     strings.TrimRight(strings.Join(lines, "\n"), "\n"),
		HeadingPath: headingPath,
		StartLine:   startLine,
		EndLine:     startLine + len(lines) - 1,
	}
	chunk.ComputeTokenCount()
	chunk.ComputeContentHash()
	return chunk
}

// hasContent reports whether any line holds non-whitespace text.
func hasContent(lines []string) bool {
	for _, line := range lines {
		if strings.TrimSpace(line) != "" {
			return true
		}
	}
	return false
}

// estimateTokens applies the chars/4 heuristic across lines.
func estimateTokens(lines []string) int {
	chars := 0
	for _, line := range lines {
		chars += len(line) + 1
	}
	return chars / TokensPerChar
}
