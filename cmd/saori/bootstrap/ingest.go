package bootstrap

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/saorihq/saori/pkg/engine"
)

// IngestDir loads every .txt and .md file under dir into the corpus,
// superseding documents with the same name. Returns the number of files
// ingested. The index is not rebuilt; callers reprocess when ready.
func IngestDir(ctx context.Context, eng *engine.Engine, dir string) (int, error) {
	names, err := ingestDir(ctx, eng, dir)
	return len(names), err
}

// SyncDir makes the corpus mirror dir: every .txt and .md file is ingested,
// and documents whose files are gone are removed from the store. Returns
// the counts of files ingested and documents pruned. The index is not
// rebuilt; callers reprocess when ready.
func SyncDir(ctx context.Context, eng *engine.Engine, dir string) (ingested, pruned int, err error) {
	names, err := ingestDir(ctx, eng, dir)
	if err != nil {
		return len(names), 0, err
	}

	docs, err := eng.Documents(ctx)
	if err != nil {
		return len(names), 0, fmt.Errorf("listing documents: %w", err)
	}
	for _, doc := range docs {
		if names[doc.Name] {
			continue
		}
		if err := eng.Remove(ctx, doc.ID); err != nil {
			return len(names), pruned, fmt.Errorf("pruning %s: %w", doc.Name, err)
		}
		pruned++
	}

	return len(names), pruned, nil
}

// ingestDir walks dir ingesting every supported file and returns the set of
// document names it loaded.
func ingestDir(ctx context.Context, eng *engine.Engine, dir string) (map[string]bool, error) {
	names := make(map[string]bool)

	err := filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		if !ingestable(path) {
			return nil
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("reading %s: %w", path, err)
		}

		name, err := filepath.Rel(dir, path)
		if err != nil {
			name = filepath.Base(path)
		}

		if _, err := eng.Ingest(ctx, name, string(data)); err != nil {
			return fmt.Errorf("ingesting %s: %w", path, err)
		}

		names[name] = true
		return nil
	})
	if err != nil {
		return names, err
	}

	return names, nil
}

// IngestFile loads a single .txt or .md file into the corpus.
func IngestFile(ctx context.Context, eng *engine.Engine, path string) error {
	if !ingestable(path) {
		return fmt.Errorf("unsupported file type: %s (want .txt or .md)", path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading %s: %w", path, err)
	}

	if _, err := eng.Ingest(ctx, filepath.Base(path), string(data)); err != nil {
		return fmt.Errorf("ingesting %s: %w", path, err)
	}

	return nil
}

func ingestable(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".txt", ".md":
		return true
	default:
		return false
	}
}
