package migration

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

// Migration statuses.
const (
	StatusPending = "pending"
	StatusDryRun  = "dry_run"
	StatusSuccess = "success"
	StatusFailed  = "failed"
)

// ManifestEntry records one promotion attempt, dry runs included. Entries
// are append-only and never modified after being written.
type ManifestEntry struct {
	MigrationID    string    `json:"migration_id"`
	CorrelationID  string    `json:"correlation_id"`
	SourcePromptID string    `json:"source_prompt_id"`
	TargetPromptID string    `json:"target_prompt_id"`
	SourceEnv      string    `json:"source_env"`
	TargetEnv      string    `json:"target_env"`
	SourceVersion  int       `json:"source_version"`
	TargetVersion  *int      `json:"target_version"` // nil until a real migration completes
	Operator       string    `json:"operator"`
	Timestamp      time.Time `json:"timestamp"`
	DryRun         bool      `json:"dry_run"`
	Status         string    `json:"status"`
}

// manifestDocument is the persisted shape of the migration manifest:
// an array in chronological append order.
type manifestDocument struct {
	Migrations []ManifestEntry `json:"migrations"`
}

// ManifestStore provides append-only operations for migration manifest
// entries, persisted in a JSON file independent of the record store.
type ManifestStore struct {
	path string
	mu   sync.Mutex
}

// NewManifestStore creates a ManifestStore over the given file path. The
// file does not need to exist yet; an empty manifest is returned until the
// first append.
func NewManifestStore(path string) (*ManifestStore, error) {
	for _, part := range strings.Split(filepath.Clean(path), string(filepath.Separator)) {
		if part == ".." {
			return nil, fmt.Errorf("manifest store: path %q contains path traversal", path)
		}
	}
	return &ManifestStore{path: path}, nil
}

// Append adds a new immutable entry to the manifest.
func (s *ManifestStore) Append(entry ManifestEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.load()
	if err != nil {
		return err
	}
	doc.Migrations = append(doc.Migrations, entry)
	return s.save(doc)
}

// List returns all manifest entries in chronological (insertion) order.
func (s *ManifestStore) List() ([]ManifestEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.load()
	if err != nil {
		return nil, err
	}
	return doc.Migrations, nil
}

// load reads the manifest document, treating a missing file as empty.
// Must be called with s.mu held.
func (s *ManifestStore) load() (*manifestDocument, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return &manifestDocument{}, nil
		}
		return nil, fmt.Errorf("manifest store: read %s: %w", s.path, err)
	}

	var doc manifestDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("manifest store: parse %s: %w", s.path, err)
	}
	return &doc, nil
}

// save writes the manifest atomically (temp file + rename).
// Must be called with s.mu held.
func (s *ManifestStore) save(doc *manifestDocument) error {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("manifest store: marshal: %w", err)
	}
	data = append(data, '\n')

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("manifest store: create dir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(s.path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("manifest store: create temp file: %w", err)
	}
	tmpName := tmp.Name()

	defer func() {
		if tmpName != "" {
			_ = os.Remove(tmpName)
		}
	}()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("manifest store: write temp file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("manifest store: sync temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("manifest store: close temp file: %w", err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		return fmt.Errorf("manifest store: rename temp file: %w", err)
	}
	tmpName = ""
	return nil
}
