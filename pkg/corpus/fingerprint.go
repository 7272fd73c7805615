package corpus

import (
	"crypto/sha256"
	"encoding/hex"
	"sort"
)

// Fingerprint summarizes the full corpus content plus the embedding service
// identity. It changes if and only if a document is added, removed, or
// replaced, or the embedding provider/model changes. A persisted index whose
// fingerprint differs from the live corpus fingerprint is stale and must not
// be queried.
func Fingerprint(docs []Document, embedderID string) string {
	ids := make([]string, len(docs))
	byID := make(map[string]Document, len(docs))
	for i, d := range docs {
		ids[i] = d.ID
		byID[d.ID] = d
	}
	// Order-independent: the same document set always hashes the same.
	sort.Strings(ids)

	h := sha256.New()
	h.Write([]byte(embedderID))
	for _, id := range ids {
		d := byID[id]
		h.Write([]byte{0})
		h.Write([]byte(d.ID))
		h.Write([]byte{0})
		h.Write([]byte(d.Text))
	}
	return hex.EncodeToString(h.Sum(nil))
}
