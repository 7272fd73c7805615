// Package chunker splits document text into overlapping segments for
// embedding and retrieval. Splitting is a pure sliding-window pass over the
// text: the same input and configuration always yield the same segments.
package chunker

import (
	"errors"
	"fmt"

	"github.com/saorihq/saori/pkg/corpus"
)

const (
	// DefaultChunkSize is the default segment length in characters.
	DefaultChunkSize = 4000

	// DefaultOverlap is the default overlap between consecutive segments.
	DefaultOverlap = 400
)

// ErrConfig is returned for invalid chunking parameters.
var ErrConfig = errors.New("invalid chunker configuration")

// Chunker splits text into overlapping fixed-size segments.
type Chunker struct {
	chunkSize int
	overlap   int
}

// New creates a Chunker. Requires 0 <= overlap < chunkSize.
func New(chunkSize, overlap int) (*Chunker, error) {
	if chunkSize <= 0 {
		return nil, fmt.Errorf("%w: chunk size %d must be positive", ErrConfig, chunkSize)
	}
	if overlap < 0 || overlap >= chunkSize {
		return nil, fmt.Errorf("%w: overlap %d must satisfy 0 <= overlap < chunk size %d", ErrConfig, overlap, chunkSize)
	}
	return &Chunker{chunkSize: chunkSize, overlap: overlap}, nil
}

// Split segments a document's text into overlapping windows of chunkSize
// runes with stride chunkSize-overlap. Windows are measured in runes, not
// bytes, so a boundary never splits a multi-byte character and every
// segment is valid UTF-8. The final window is truncated to the remaining
// text, never padded and never dropped. Empty text yields no segments.
// Concatenating the segments with overlaps removed reconstructs the
// document text exactly.
func (c *Chunker) Split(doc corpus.Document) []corpus.Segment {
	runes := []rune(doc.Text)
	if len(runes) == 0 {
		return nil
	}

	stride := c.chunkSize - c.overlap

	var segments []corpus.Segment
	for start, index := 0, 0; start < len(runes); start, index = start+stride, index+1 {
		end := start + c.chunkSize
		if end > len(runes) {
			end = len(runes)
		}

		segments = append(segments, corpus.Segment{
			DocumentID: doc.ID,
			Index:      index,
			Start:      start,
			End:        end,
			Text:       string(runes[start:end]),
		})

		if end == len(runes) {
			break
		}
	}

	return segments
}

// ChunkSize returns the configured segment length.
func (c *Chunker) ChunkSize() int { return c.chunkSize }

// Overlap returns the configured overlap between consecutive segments.
func (c *Chunker) Overlap() int { return c.overlap }
