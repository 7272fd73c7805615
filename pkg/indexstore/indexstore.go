// Package indexstore persists vector index snapshots to disk so the corpus
// does not have to be re-embedded on every start. The file is self-describing:
// it carries the corpus fingerprint and embedding identity so the caller can
// decide whether the snapshot is still valid. The store itself never
// rebuilds; a stale fingerprint is the caller's signal to reprocess.
//
// Format (all integers little-endian, strings length-prefixed with uint32):
//
//	magic "SAORIDX1"
//	fingerprint string
//	embedder identity string
//	uint32 dimensions
//	uint32 segment count
//	per segment: document id string, uint32 index, uint32 start, uint32 end,
//	             text string, dimensions * float32 embedding
//
// Vectors round-trip bit-for-bit and text byte-for-byte.
package indexstore

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"

	"github.com/saorihq/saori/pkg/corpus"
	"github.com/saorihq/saori/pkg/vector"
)

var (
	// ErrNotFound is returned by Load when no snapshot exists at the path.
	ErrNotFound = errors.New("index snapshot not found")

	// ErrCorrupt is returned when the snapshot file cannot be decoded.
	// Callers treat the index as absent and rebuild.
	ErrCorrupt = errors.New("index snapshot corrupt")
)

var magic = [8]byte{'S', 'A', 'O', 'R', 'I', 'D', 'X', '1'}

const (
	// maxStringLen bounds length-prefixed strings so a corrupt length
	// cannot demand a multi-gigabyte allocation before decoding fails.
	maxStringLen = 64 << 20

	// maxDimensions bounds the per-segment vector width; real embedding
	// models sit well under this.
	maxDimensions = 1 << 16
)

// Snapshot is the persisted form of a vector index.
type Snapshot struct {
	Fingerprint string
	EmbedderID  string
	Dimensions  int
	Entries     []vector.Entry
}

// FromIndex captures a snapshot of a built index.
func FromIndex(ix vector.Index) *Snapshot {
	return &Snapshot{
		Fingerprint: ix.Fingerprint(),
		EmbedderID:  ix.EmbedderID(),
		Dimensions:  ix.Dimensions(),
		Entries:     ix.Entries(),
	}
}

// Save writes the snapshot to path atomically: it writes a temporary file in
// the same directory and renames it over the target, so a crash mid-write
// never leaves a truncated snapshot behind.
func Save(path string, snap *Snapshot) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating snapshot directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("creating temporary snapshot: %w", err)
	}
	defer os.Remove(tmp.Name())

	w := bufio.NewWriter(tmp)
	if err := encode(w, snap); err != nil {
		tmp.Close()
		return fmt.Errorf("encoding snapshot: %w", err)
	}
	if err := w.Flush(); err != nil {
		tmp.Close()
		return fmt.Errorf("flushing snapshot: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing temporary snapshot: %w", err)
	}

	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("replacing snapshot: %w", err)
	}
	return nil
}

// Load reads a snapshot from path. Returns ErrNotFound if the file does not
// exist and an error wrapping ErrCorrupt if it cannot be decoded.
func Load(path string) (*Snapshot, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("opening snapshot: %w", err)
	}
	defer f.Close()

	snap, err := decode(bufio.NewReader(f))
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrCorrupt, path, err)
	}
	return snap, nil
}

func encode(w io.Writer, snap *Snapshot) error {
	if _, err := w.Write(magic[:]); err != nil {
		return err
	}
	if err := writeString(w, snap.Fingerprint); err != nil {
		return err
	}
	if err := writeString(w, snap.EmbedderID); err != nil {
		return err
	}
	if err := writeUint32(w, uint32(snap.Dimensions)); err != nil {
		return err
	}
	if err := writeUint32(w, uint32(len(snap.Entries))); err != nil {
		return err
	}

	for i, e := range snap.Entries {
		if len(e.Embedding) != snap.Dimensions {
			return fmt.Errorf("entry %d has %d dimensions, want %d", i, len(e.Embedding), snap.Dimensions)
		}
		s := e.Segment
		if err := writeString(w, s.DocumentID); err != nil {
			return err
		}
		if err := writeUint32(w, uint32(s.Index)); err != nil {
			return err
		}
		if err := writeUint32(w, uint32(s.Start)); err != nil {
			return err
		}
		if err := writeUint32(w, uint32(s.End)); err != nil {
			return err
		}
		if err := writeString(w, s.Text); err != nil {
			return err
		}
		buf := make([]byte, len(e.Embedding)*4)
		for j, v := range e.Embedding {
			binary.LittleEndian.PutUint32(buf[j*4:], math.Float32bits(v))
		}
		if _, err := w.Write(buf); err != nil {
			return err
		}
	}
	return nil
}

func decode(r io.Reader) (*Snapshot, error) {
	var header [8]byte
	if _, err := io.ReadFull(r, header[:]); err != nil {
		return nil, fmt.Errorf("reading magic: %w", err)
	}
	if header != magic {
		return nil, fmt.Errorf("bad magic %q", header)
	}

	snap := &Snapshot{}
	var err error
	if snap.Fingerprint, err = readString(r); err != nil {
		return nil, fmt.Errorf("reading fingerprint: %w", err)
	}
	if snap.EmbedderID, err = readString(r); err != nil {
		return nil, fmt.Errorf("reading embedder identity: %w", err)
	}

	dims, err := readUint32(r)
	if err != nil {
		return nil, fmt.Errorf("reading dimensions: %w", err)
	}
	if dims > maxDimensions {
		return nil, fmt.Errorf("implausible dimensions %d", dims)
	}
	snap.Dimensions = int(dims)

	count, err := readUint32(r)
	if err != nil {
		return nil, fmt.Errorf("reading segment count: %w", err)
	}

	// Grow the slice as records decode rather than trusting a corrupt
	// count with a huge upfront allocation.
	snap.Entries = make([]vector.Entry, 0, int(min(count, 4096)))
	for i := uint32(0); i < count; i++ {
		var s corpus.Segment
		if s.DocumentID, err = readString(r); err != nil {
			return nil, fmt.Errorf("segment %d: reading document id: %w", i, err)
		}
		idx, err := readUint32(r)
		if err != nil {
			return nil, fmt.Errorf("segment %d: reading index: %w", i, err)
		}
		start, err := readUint32(r)
		if err != nil {
			return nil, fmt.Errorf("segment %d: reading span start: %w", i, err)
		}
		end, err := readUint32(r)
		if err != nil {
			return nil, fmt.Errorf("segment %d: reading span end: %w", i, err)
		}
		s.Index, s.Start, s.End = int(idx), int(start), int(end)
		if s.Text, err = readString(r); err != nil {
			return nil, fmt.Errorf("segment %d: reading text: %w", i, err)
		}

		buf := make([]byte, dims*4)
		if _, err := io.ReadFull(r, buf); err != nil {
			return nil, fmt.Errorf("segment %d: reading embedding: %w", i, err)
		}
		emb := make([]float32, dims)
		for j := range emb {
			emb[j] = math.Float32frombits(binary.LittleEndian.Uint32(buf[j*4:]))
		}

		snap.Entries = append(snap.Entries, vector.Entry{Segment: s, Embedding: emb})
	}

	var trailing [1]byte
	if _, err := io.ReadFull(r, trailing[:]); err != io.EOF {
		return nil, errors.New("trailing data after final segment")
	}

	return snap, nil
}

func writeUint32(w io.Writer, v uint32) error {
	var buf [4]byte
	binary.LittleEndian.PutUint32(buf[:], v)
	_, err := w.Write(buf[:])
	return err
}

func readUint32(r io.Reader) (uint32, error) {
	var buf [4]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(buf[:]), nil
}

func writeString(w io.Writer, s string) error {
	if err := writeUint32(w, uint32(len(s))); err != nil {
		return err
	}
	_, err := io.WriteString(w, s)
	return err
}

func readString(r io.Reader) (string, error) {
	n, err := readUint32(r)
	if err != nil {
		return "", err
	}
	if n > maxStringLen {
		return "", fmt.Errorf("implausible string length %d", n)
	}
	buf := make([]byte, n)
	if _, err := io.ReadFull(r, buf); err != nil {
		return "", err
	}
	return string(buf), nil
}
