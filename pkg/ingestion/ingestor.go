// Package ingestion seeds the prompt registry with canned content from the
// three supported source systems. Ingestors only ever call Store.Create and
// treat "already exists" as a skip, which keeps bulk ingestion idempotent.
package ingestion

import (
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/promptops/prompt-registry/pkg/registry"
)

// SeedPrompt is one prompt extracted from a source system, ready for
// Store.Create.
type SeedPrompt struct {
	Name               string
	Domain             string
	Source             string
	Environment        string
	SystemInstructions string
	Template           string
	ModelParameters    map[string]any
	Metadata           map[string]any
}

// Ingestor produces seed prompts for one source system.
type Ingestor interface {
	// Name identifies the source system (dfcx, adk, custom).
	Name() string
	// Prompts returns the seed prompts extracted from the source.
	Prompts() ([]SeedPrompt, error)
}

// Result summarizes one ingestor run.
type Result struct {
	Source   string
	Ingested []string // prompt IDs created
	Skipped  []string // prompt names that already existed
}

// Run feeds every prompt from the ingestor into the store. A prompt that
// already exists is skipped, not fatal; any other error aborts the run.
func Run(store *registry.Store, ing Ingestor, logger *zap.Logger) (*Result, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	prompts, err := ing.Prompts()
	if err != nil {
		return nil, fmt.Errorf("ingestor %s: %w", ing.Name(), err)
	}

	result := &Result{Source: ing.Name()}
	for _, p := range prompts {
		created, err := store.Create(registry.CreateRequest{
			Name:               p.Name,
			Domain:             p.Domain,
			Source:             p.Source,
			Environment:        p.Environment,
			SystemInstructions: p.SystemInstructions,
			Template:           p.Template,
			ModelParameters:    p.ModelParameters,
			Metadata:           p.Metadata,
		})
		if err != nil {
			var exists *registry.AlreadyExistsError
			if errors.As(err, &exists) {
				logger.Info("prompt already ingested, skipping",
					zap.String("source", ing.Name()),
					zap.String("name", p.Name))
				result.Skipped = append(result.Skipped, p.Name)
				continue
			}
			return nil, fmt.Errorf("ingestor %s: create %s: %w", ing.Name(), p.Name, err)
		}
		result.Ingested = append(result.Ingested, created.ID)
	}

	logger.Info("ingestion finished",
		zap.String("source", ing.Name()),
		zap.Int("ingested", len(result.Ingested)),
		zap.Int("skipped", len(result.Skipped)))
	return result, nil
}

// RunAll runs every ingestor in order and returns one result per source.
func RunAll(store *registry.Store, ingestors []Ingestor, logger *zap.Logger) ([]*Result, error) {
	results := make([]*Result, 0, len(ingestors))
	for _, ing := range ingestors {
		r, err := Run(store, ing, logger)
		if err != nil {
			return results, err
		}
		results = append(results, r)
	}
	return results, nil
}

// DefaultIngestors returns the ingestors for all three source systems.
func DefaultIngestors() []Ingestor {
	return []Ingestor{NewDFCXIngestor(), NewADKIngestor(), NewCustomIngestor()}
}
