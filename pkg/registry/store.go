package registry

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
)

// maxRegistryFileSize is the maximum allowed registry file size (8 MiB).
const maxRegistryFileSize = 8 << 20

// Store is the versioned record store. The whole registry lives in a single
// JSON document that is loaded fully into memory and rewritten atomically on
// every mutating call (read-load, compute, write-save).
//
// The model assumes a single writer. The mutex serializes calls within this
// process; concurrent multi-process use is unsupported and must be guarded
// externally if ever required.
type Store struct {
	cfg    Config
	path   string
	mu     sync.Mutex
	logger *zap.Logger
}

// NewStore creates a Store over cfg.RegistryFile, creating the data
// directory and an empty registry document if the file does not exist yet.
// cfg must have been validated (DefaultConfig and LoadConfig do this).
func NewStore(cfg Config, logger *zap.Logger) (*Store, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	path := cfg.RegistryFile
	if err := validateStorePath(path); err != nil {
		return nil, err
	}

	s := &Store{cfg: cfg, path: path, logger: logger}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("registry store: create data dir: %w", err)
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		if err := s.save(newRegistryDocument()); err != nil {
			return nil, err
		}
		logger.Info("initialized empty registry", zap.String("path", path))
	} else if err != nil {
		return nil, fmt.Errorf("registry store: stat %s: %w", path, err)
	}
	return s, nil
}

// Config returns the configuration the store was built with.
func (s *Store) Config() Config { return s.cfg }

// Path returns the registry file path managed by this store.
func (s *Store) Path() string { return s.path }

// validateStorePath rejects paths containing ".." traversal components.
func validateStorePath(path string) error {
	for _, part := range strings.Split(filepath.Clean(path), string(filepath.Separator)) {
		if part == ".." {
			return fmt.Errorf("registry store: path %q contains path traversal", path)
		}
	}
	return nil
}

// CreateRequest carries the inputs for Create. ModelParameters and Metadata
// are optional; nil ModelParameters falls back to the configured defaults.
type CreateRequest struct {
	Name               string
	Domain             string
	Source             string
	Environment        string
	SystemInstructions string
	Template           string
	ModelParameters    map[string]any
	Metadata           map[string]any
}

// Create validates the closed-set fields, derives the prompt ID and persists
// a new prompt at version 1. It fails with *ValidationError (listing every
// invalid field) or *AlreadyExistsError before any mutation.
func (s *Store) Create(req CreateRequest) (*Prompt, error) {
	if err := s.validate(req.Domain, req.Source, req.Environment); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	id := DeriveID(req.Source, req.Domain, req.Name, req.Environment)

	doc, err := s.load()
	if err != nil {
		return nil, err
	}
	if _, exists := doc.Prompts[id]; exists {
		return nil, &AlreadyExistsError{ID: id}
	}

	params := req.ModelParameters
	if params == nil {
		params = s.cfg.DefaultModelParams
	}
	metadata := req.Metadata
	if metadata == nil {
		metadata = map[string]any{}
	}

	now := time.Now().UTC()
	prompt := &Prompt{
		ID:              id,
		Name:            req.Name,
		Domain:          req.Domain,
		Source:          req.Source,
		Environment:     req.Environment,
		CurrentVersion:  InitialVersion,
		CreatedAt:       now,
		UpdatedAt:       now,
		ModelParameters: params,
		Metadata:        metadata,
		Versions: map[string]*PromptVersion{
			strconv.Itoa(InitialVersion): {
				Version:            InitialVersion,
				SystemInstructions: req.SystemInstructions,
				Template:           req.Template,
				CreatedAt:          now,
				CreatedBy:          s.cfg.Operator,
				ChangeNote:         "Initial version",
			},
		},
	}

	doc.Prompts[id] = prompt
	if err := s.save(doc); err != nil {
		return nil, err
	}

	s.logger.Info("prompt created",
		zap.String("prompt_id", id),
		zap.Int("version", InitialVersion),
		zap.String("environment", req.Environment))
	return prompt, nil
}

// Get retrieves a prompt by ID. The returned prompt embeds its full version
// map; use ActiveVersion for the content CurrentVersion points at.
func (s *Store) Get(id string) (*Prompt, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.load()
	if err != nil {
		return nil, err
	}
	prompt, ok := doc.Prompts[id]
	if !ok {
		return nil, &NotFoundError{ID: id}
	}
	return prompt, nil
}

// List returns every prompt satisfying all set filter fields, sorted by ID.
// Prompts from non-matching domains or environments are never included.
func (s *Store) List(f Filter) ([]*Prompt, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.load()
	if err != nil {
		return nil, err
	}

	results := make([]*Prompt, 0, len(doc.Prompts))
	for _, p := range doc.Prompts {
		if f.Matches(p) {
			results = append(results, p)
		}
	}
	sort.Slice(results, func(i, j int) bool { return results[i].ID < results[j].ID })
	return results, nil
}

// Update appends a new version with number CurrentVersion+1 and activates
// it. Existing versions are never edited. A non-nil params replaces the
// prompt's model parameters; an empty changeNote gets a default.
func (s *Store) Update(id, instructions, template, changeNote string, params map[string]any) (*Prompt, error) {
	if changeNote == "" {
		changeNote = "Updated version"
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.load()
	if err != nil {
		return nil, err
	}
	prompt, ok := doc.Prompts[id]
	if !ok {
		return nil, &NotFoundError{ID: id}
	}

	next := prompt.CurrentVersion + 1
	now := time.Now().UTC()
	prompt.Versions[strconv.Itoa(next)] = &PromptVersion{
		Version:            next,
		SystemInstructions: instructions,
		Template:           template,
		CreatedAt:          now,
		CreatedBy:          s.cfg.Operator,
		ChangeNote:         changeNote,
	}
	prompt.CurrentVersion = next
	prompt.UpdatedAt = now
	if params != nil {
		prompt.ModelParameters = params
	}

	if err := s.save(doc); err != nil {
		return nil, err
	}

	s.logger.Info("prompt updated",
		zap.String("prompt_id", id),
		zap.Int("version", next),
		zap.String("change_note", changeNote))
	return prompt, nil
}

// VersionHistory returns the full version history of a prompt, ascending by
// version number.
func (s *Store) VersionHistory(id string) ([]*PromptVersion, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.load()
	if err != nil {
		return nil, err
	}
	prompt, ok := doc.Prompts[id]
	if !ok {
		return nil, &NotFoundError{ID: id}
	}

	history := make([]*PromptVersion, 0, len(prompt.Versions))
	for _, v := range prompt.Versions {
		history = append(history, v)
	}
	sort.Slice(history, func(i, j int) bool { return history[i].Version < history[j].Version })
	return history, nil
}

// Rollback copies the content of targetVersion into a brand-new version
// numbered CurrentVersion+1 and activates it. The old version number is not
// restored as current: history stays monotonic and gap-free, always showing
// what happened and when.
func (s *Store) Rollback(id string, targetVersion int) (*Prompt, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.load()
	if err != nil {
		return nil, err
	}
	prompt, ok := doc.Prompts[id]
	if !ok {
		return nil, &NotFoundError{ID: id}
	}

	target, ok := prompt.Versions[strconv.Itoa(targetVersion)]
	if !ok {
		available := make([]int, 0, len(prompt.Versions))
		for _, v := range prompt.Versions {
			available = append(available, v.Version)
		}
		sort.Ints(available)
		return nil, &VersionNotFoundError{ID: id, Version: targetVersion, Available: available}
	}

	next := prompt.CurrentVersion + 1
	now := time.Now().UTC()
	prompt.Versions[strconv.Itoa(next)] = &PromptVersion{
		Version:            next,
		SystemInstructions: target.SystemInstructions,
		Template:           target.Template,
		CreatedAt:          now,
		CreatedBy:          s.cfg.Operator,
		ChangeNote:         fmt.Sprintf("Rollback to v%d", targetVersion),
	}
	prompt.CurrentVersion = next
	prompt.UpdatedAt = now

	if err := s.save(doc); err != nil {
		return nil, err
	}

	s.logger.Info("prompt rolled back",
		zap.String("prompt_id", id),
		zap.Int("target_version", targetVersion),
		zap.Int("new_version", next))
	return prompt, nil
}

// validate checks the closed-set fields, collecting every violation.
func (s *Store) validate(domain, source, env string) error {
	var violations []string
	if !s.cfg.ValidDomain(domain) {
		violations = append(violations, fmt.Sprintf("invalid domain %q; allowed: %v", domain, s.cfg.Domains))
	}
	if !s.cfg.ValidSource(source) {
		violations = append(violations, fmt.Sprintf("invalid source %q; allowed: %v", source, s.cfg.Sources))
	}
	if !s.cfg.ValidEnvironment(env) {
		violations = append(violations, fmt.Sprintf("invalid environment %q; allowed: %v", env, s.cfg.Environments))
	}
	if len(violations) > 0 {
		return &ValidationError{Violations: violations}
	}
	return nil
}

// load reads and parses the registry document. Must be called with s.mu held.
func (s *Store) load() (*registryDocument, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("registry store: read %s: %w", s.path, err)
	}
	if int64(len(data)) > maxRegistryFileSize {
		return nil, fmt.Errorf("registry store: %s exceeds maximum allowed size (8 MiB)", s.path)
	}

	var doc registryDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("registry store: parse %s: %w", s.path, err)
	}
	if doc.Prompts == nil {
		doc.Prompts = map[string]*Prompt{}
	}
	s.logger.Debug("registry loaded", zap.Int("prompts", len(doc.Prompts)))
	return &doc, nil
}

// save writes the registry document atomically: write to a temp file in the
// same directory, fsync, then rename over the target. Must be called with
// s.mu held (NewStore calls it before the store is shared).
func (s *Store) save(doc *registryDocument) error {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("registry store: marshal: %w", err)
	}
	data = append(data, '\n')

	if err := writeFileAtomic(s.path, data); err != nil {
		return fmt.Errorf("registry store: %w", err)
	}
	s.logger.Debug("registry saved", zap.Int("prompts", len(doc.Prompts)), zap.Int("bytes", len(data)))
	return nil
}

// writeFileAtomic writes data to path via a temp file + rename so readers
// never observe a partial document.
func writeFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()

	defer func() {
		if tmpName != "" {
			_ = os.Remove(tmpName)
		}
	}()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("sync temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("rename temp file: %w", err)
	}
	tmpName = "" // prevent deferred Remove
	return nil
}
