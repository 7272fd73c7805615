// Package assembler formats retrieved segments into a bounded prompt context
// for answer generation, tracking exactly which document parts were used.
package assembler

import (
	"fmt"
	"strings"

	"github.com/saorihq/saori/pkg/vector"
)

// DefaultMaxContextChars bounds the assembled context when no limit is
// configured.
const DefaultMaxContextChars = 12000

// Provenance records one segment's contribution to an assembled context.
// The same list, unmodified, is the test-mode introspection payload.
type Provenance struct {
	DocumentID   string  `json:"document_id"`
	SegmentIndex int     `json:"segment_index"`
	Score        float32 `json:"score"`
}

// Assembler builds prompt context from ranked retrieval results.
type Assembler struct {
	// MaxContextChars bounds the assembled context, delimiters included.
	// Zero means DefaultMaxContextChars.
	MaxContextChars int

	// DocumentName resolves a document ID to a display name for the
	// excerpt delimiters. When nil, the ID itself is shown.
	DocumentName func(id string) string
}

// Assemble greedily includes segments in ranked order until adding the next
// excerpt block would exceed the character budget. A segment is never
// truncated mid-span: one that does not fit is skipped and the next is
// tried. Returns the assembled context and the provenance of every segment
// actually included, in inclusion order.
func (a *Assembler) Assemble(results []vector.Result) (string, []Provenance) {
	budget := a.MaxContextChars
	if budget <= 0 {
		budget = DefaultMaxContextChars
	}

	var b strings.Builder
	used := make([]Provenance, 0, len(results))

	for _, res := range results {
		name := res.Segment.DocumentID
		if a.DocumentName != nil {
			if n := a.DocumentName(res.Segment.DocumentID); n != "" {
				name = n
			}
		}

		block := fmt.Sprintf("--- Begin excerpt %d (from %s) ---\n%s\n--- End excerpt %d ---\n",
			len(used)+1, name, res.Segment.Text, len(used)+1)

		if b.Len()+len(block) > budget {
			continue
		}

		b.WriteString(block)
		used = append(used, Provenance{
			DocumentID:   res.Segment.DocumentID,
			SegmentIndex: res.Segment.Index,
			Score:        res.Score,
		})
	}

	return b.String(), used
}
