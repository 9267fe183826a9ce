package migration

import (
	"errors"
	"fmt"
	"maps"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/promptops/prompt-registry/pkg/registry"
)

// Engine promotes prompts across environments in the strict configured
// order. Each environment gets its own prompt entry with the environment
// suffix in the ID; promotion never overwrites, it creates a new prompt in
// the target environment or appends a version to an existing one, and every
// attempt is recorded in the migration manifest.
type Engine struct {
	store    *registry.Store
	manifest *ManifestStore
	cfg      registry.Config
	logger   *zap.Logger
}

// NewEngine creates a promotion engine over the given store and manifest.
// cfg should be the same configuration the store was built with.
func NewEngine(store *registry.Store, manifest *ManifestStore, cfg registry.Config, logger *zap.Logger) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{store: store, manifest: manifest, cfg: cfg, logger: logger}
}

// Migrate promotes the prompt identified by id (with or without an
// environment suffix) to the next environment in the promotion order and
// returns the manifest entry recorded for the attempt. Only one-hop
// promotion is performed per call; the source prompt is never mutated.
//
// With dryRun the registry is left untouched and the entry is recorded with
// status dry_run and a nil target version.
//
// The registry and the manifest are two independent files with no cross-file
// atomicity: a crash between the registry save and the manifest append can
// leave a promoted prompt with no manifest entry.
func (e *Engine) Migrate(id string, dryRun bool) (*ManifestEntry, error) {
	source, err := e.resolve(id)
	if err != nil {
		return nil, err
	}

	targetEnv, ok := e.cfg.NextEnvironment(source.Environment)
	if !ok {
		return nil, &registry.TerminalEnvironmentError{ID: source.ID, Environment: source.Environment}
	}

	baseID := registry.StripEnvironmentSuffix(source.ID, e.cfg.Environments)
	targetID := registry.WithEnvironment(baseID, targetEnv, e.cfg.Environments)
	content := source.ActiveVersion()

	now := time.Now().UTC()
	entry := ManifestEntry{
		MigrationID:    fmt.Sprintf("mig_%s_%s_to_%s_%s", baseID, source.Environment, targetEnv, now.Format("20060102150405")),
		CorrelationID:  uuid.New().String(),
		SourcePromptID: source.ID,
		TargetPromptID: targetID,
		SourceEnv:      source.Environment,
		TargetEnv:      targetEnv,
		SourceVersion:  source.CurrentVersion,
		Operator:       e.cfg.Operator,
		Timestamp:      now,
		DryRun:         dryRun,
		Status:         StatusPending,
	}

	e.logger.Info("migration started",
		zap.String("source_prompt_id", source.ID),
		zap.String("target_prompt_id", targetID),
		zap.String("source_env", source.Environment),
		zap.String("target_env", targetEnv),
		zap.Bool("dry_run", dryRun))

	if dryRun {
		entry.Status = StatusDryRun
		if err := e.manifest.Append(entry); err != nil {
			return nil, err
		}
		return &entry, nil
	}

	targetVersion, err := e.apply(source, content, targetID, targetEnv)
	if err != nil {
		entry.Status = StatusFailed
		if appendErr := e.manifest.Append(entry); appendErr != nil {
			e.logger.Error("failed to record failed migration", zap.Error(appendErr))
		}
		return nil, err
	}

	entry.TargetVersion = &targetVersion
	entry.Status = StatusSuccess
	if err := e.manifest.Append(entry); err != nil {
		return nil, err
	}

	e.logger.Info("migration completed",
		zap.String("migration_id", entry.MigrationID),
		zap.String("target_prompt_id", targetID),
		zap.Int("target_version", targetVersion))
	return &entry, nil
}

// Manifest returns the full migration history in chronological order.
func (e *Engine) Manifest() ([]ManifestEntry, error) {
	return e.manifest.List()
}

// resolve finds the source prompt. An exact ID match wins; otherwise every
// prompt whose stripped base ID matches the input's base ID is a candidate.
// Zero candidates fail with NotFoundError. More than one fails with
// ConflictError rather than silently picking the first match, since records
// from different domains or sources can share a base ID.
func (e *Engine) resolve(id string) (*registry.Prompt, error) {
	all, err := e.store.List(registry.Filter{})
	if err != nil {
		return nil, err
	}

	for _, p := range all {
		if p.ID == id {
			return p, nil
		}
	}

	base := registry.StripEnvironmentSuffix(id, e.cfg.Environments)
	var candidates []*registry.Prompt
	for _, p := range all {
		if registry.StripEnvironmentSuffix(p.ID, e.cfg.Environments) == base {
			candidates = append(candidates, p)
		}
	}

	switch len(candidates) {
	case 0:
		return nil, &registry.NotFoundError{ID: id}
	case 1:
		return candidates[0], nil
	default:
		ids := make([]string, len(candidates))
		for i, p := range candidates {
			ids[i] = p.ID
		}
		return nil, &registry.ConflictError{ID: id, Candidates: ids}
	}
}

// apply performs the real promotion: append a version to an existing target
// prompt, or create a fresh one in the target environment carrying over the
// source's model parameters and metadata plus promotion provenance.
func (e *Engine) apply(source *registry.Prompt, content *registry.PromptVersion, targetID, targetEnv string) (int, error) {
	existing, err := e.store.Get(targetID)
	if err != nil {
		var notFound *registry.NotFoundError
		if !errors.As(err, &notFound) {
			return 0, err
		}
	}
	if existing != nil {
		note := fmt.Sprintf("Promoted from %s v%d", source.Environment, source.CurrentVersion)
		updated, err := e.store.Update(targetID, content.SystemInstructions, content.Template, note, nil)
		if err != nil {
			return 0, err
		}
		return updated.CurrentVersion, nil
	}

	metadata := maps.Clone(source.Metadata)
	if metadata == nil {
		metadata = map[string]any{}
	}
	metadata["promoted_from"] = source.Environment
	metadata["promoted_from_version"] = source.CurrentVersion
	metadata["promoted_by"] = e.cfg.Operator

	created, err := e.store.Create(registry.CreateRequest{
		Name:               source.Name,
		Domain:             source.Domain,
		Source:             source.Source,
		Environment:        targetEnv,
		SystemInstructions: content.SystemInstructions,
		Template:           content.Template,
		ModelParameters:    maps.Clone(source.ModelParameters),
		Metadata:           metadata,
	})
	if err != nil {
		return 0, err
	}
	return created.CurrentVersion, nil
}
