package migration

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/promptops/prompt-registry/pkg/registry"
)

func newTestEngine(t *testing.T) (*Engine, *registry.Store) {
	t.Helper()
	cfg := registry.DefaultConfig()
	cfg.DataDir = t.TempDir()
	cfg.RegistryFile = ""
	cfg.ManifestFile = ""
	require.NoError(t, cfg.Validate())

	store, err := registry.NewStore(cfg, zap.NewNop())
	require.NoError(t, err)
	manifest, err := NewManifestStore(cfg.ManifestFile)
	require.NoError(t, err)
	return NewEngine(store, manifest, cfg, zap.NewNop()), store
}

func seedBillingPrompt(t *testing.T, store *registry.Store) *registry.Prompt {
	t.Helper()
	prompt, err := store.Create(registry.CreateRequest{
		Name:               "billing_payment_query",
		Domain:             "billing",
		Source:             "dfcx",
		Environment:        "dev",
		SystemInstructions: "You are a billing assistant.",
		Template:           "Query: {issue_type}",
		ModelParameters:    map[string]any{"model": "gemini-1.5-pro", "temperature": 0.3},
		Metadata:           map[string]any{"source_agent": "telecom-billing-agent-v2"},
	})
	require.NoError(t, err)
	return prompt
}

func TestEngine_Migrate_DryRun(t *testing.T) {
	engine, store := newTestEngine(t)
	source := seedBillingPrompt(t, store)

	before, err := os.ReadFile(store.Path())
	require.NoError(t, err)

	entry, err := engine.Migrate(source.ID, true)
	require.NoError(t, err)

	assert.Equal(t, StatusDryRun, entry.Status)
	assert.True(t, entry.DryRun)
	assert.Nil(t, entry.TargetVersion)
	assert.Equal(t, source.ID, entry.SourcePromptID)
	assert.Equal(t, "dfcx_billing_billing_payment_query_qa", entry.TargetPromptID)
	assert.Equal(t, "dev", entry.SourceEnv)
	assert.Equal(t, "qa", entry.TargetEnv)
	assert.Equal(t, 1, entry.SourceVersion)
	assert.NotEmpty(t, entry.CorrelationID)

	// The registry file is untouched, byte for byte.
	after, err := os.ReadFile(store.Path())
	require.NoError(t, err)
	assert.Equal(t, before, after)

	// No target prompt came into existence.
	_, err = store.Get(entry.TargetPromptID)
	var notFound *registry.NotFoundError
	require.ErrorAs(t, err, &notFound)

	// The dry run is still in the manifest.
	history, err := engine.Manifest()
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, entry.MigrationID, history[0].MigrationID)
}

func TestEngine_Migrate_CreatesTargetPrompt(t *testing.T) {
	engine, store := newTestEngine(t)
	source := seedBillingPrompt(t, store)

	entry, err := engine.Migrate(source.ID, false)
	require.NoError(t, err)

	assert.Equal(t, StatusSuccess, entry.Status)
	require.NotNil(t, entry.TargetVersion)
	assert.Equal(t, 1, *entry.TargetVersion)
	assert.Equal(t, "pawan.malik", entry.Operator)

	target, err := store.Get("dfcx_billing_billing_payment_query_qa")
	require.NoError(t, err)
	assert.Equal(t, "qa", target.Environment)
	assert.Equal(t, 1, target.CurrentVersion)
	assert.Equal(t, source.ActiveVersion().SystemInstructions, target.ActiveVersion().SystemInstructions)
	assert.Equal(t, source.ActiveVersion().Template, target.ActiveVersion().Template)

	// Provenance is carried in metadata alongside the source's own fields.
	assert.Equal(t, "telecom-billing-agent-v2", target.Metadata["source_agent"])
	assert.Equal(t, "dev", target.Metadata["promoted_from"])
	// Metadata numbers round-trip through JSON as float64.
	assert.EqualValues(t, 1, target.Metadata["promoted_from_version"])
	assert.Equal(t, "pawan.malik", target.Metadata["promoted_by"])

	// The source prompt is untouched.
	src, err := store.Get(source.ID)
	require.NoError(t, err)
	assert.Equal(t, "dev", src.Environment)
	assert.Equal(t, 1, src.CurrentVersion)
}

func TestEngine_Migrate_AppendsVersionToExistingTarget(t *testing.T) {
	engine, store := newTestEngine(t)
	source := seedBillingPrompt(t, store)

	_, err := engine.Migrate(source.ID, false)
	require.NoError(t, err)

	// Revise dev and promote again: the qa prompt gains a version instead of
	// being replaced.
	_, err = store.Update(source.ID, "v2 instructions", "v2 template", "Second pass", nil)
	require.NoError(t, err)

	entry, err := engine.Migrate(source.ID, false)
	require.NoError(t, err)
	require.NotNil(t, entry.TargetVersion)
	assert.Equal(t, 2, *entry.TargetVersion)
	assert.Equal(t, 2, entry.SourceVersion)

	target, err := store.Get("dfcx_billing_billing_payment_query_qa")
	require.NoError(t, err)
	assert.Equal(t, 2, target.CurrentVersion)
	assert.Equal(t, "v2 instructions", target.ActiveVersion().SystemInstructions)
	assert.Equal(t, "Promoted from dev v2", target.ActiveVersion().ChangeNote)

	history, err := store.VersionHistory(target.ID)
	require.NoError(t, err)
	require.Len(t, history, 2)
}

func TestEngine_Migrate_OneHopAtATime(t *testing.T) {
	engine, store := newTestEngine(t)
	source := seedBillingPrompt(t, store)

	// dev -> qa -> staging -> prod takes three calls.
	for _, wantEnv := range []string{"qa", "staging", "prod"} {
		entry, err := engine.Migrate(source.ID, false)
		require.NoError(t, err)
		assert.Equal(t, wantEnv, entry.TargetEnv)
		source, err = store.Get(entry.TargetPromptID)
		require.NoError(t, err)
	}

	prompts, err := store.List(registry.Filter{})
	require.NoError(t, err)
	assert.Len(t, prompts, 4)
}

func TestEngine_Migrate_TerminalEnvironment(t *testing.T) {
	engine, store := newTestEngine(t)

	prompt, err := store.Create(registry.CreateRequest{
		Name:        "billing_payment_query",
		Domain:      "billing",
		Source:      "dfcx",
		Environment: "prod",
	})
	require.NoError(t, err)

	_, err = engine.Migrate(prompt.ID, false)
	require.Error(t, err)

	var terminal *registry.TerminalEnvironmentError
	require.ErrorAs(t, err, &terminal)
	assert.Equal(t, "prod", terminal.Environment)

	// A failed precondition leaves no manifest entry behind.
	history, err := engine.Manifest()
	require.NoError(t, err)
	assert.Empty(t, history)
}

func TestEngine_Migrate_NotFound(t *testing.T) {
	engine, _ := newTestEngine(t)

	_, err := engine.Migrate("dfcx_billing_no_such_prompt_dev", false)
	var notFound *registry.NotFoundError
	require.ErrorAs(t, err, &notFound)
}

func TestEngine_Migrate_ResolvesBaseID(t *testing.T) {
	engine, store := newTestEngine(t)
	seedBillingPrompt(t, store)

	// A bare base ID resolves when exactly one prompt matches.
	entry, err := engine.Migrate("dfcx_billing_billing_payment_query", false)
	require.NoError(t, err)
	assert.Equal(t, "dfcx_billing_billing_payment_query_dev", entry.SourcePromptID)
	assert.Equal(t, "qa", entry.TargetEnv)
}

func TestEngine_Migrate_AmbiguousBaseID(t *testing.T) {
	engine, store := newTestEngine(t)
	source := seedBillingPrompt(t, store)

	// After promotion the base ID matches both the dev and the qa prompt.
	_, err := engine.Migrate(source.ID, false)
	require.NoError(t, err)

	_, err = engine.Migrate("dfcx_billing_billing_payment_query", false)
	require.Error(t, err)

	var conflict *registry.ConflictError
	require.ErrorAs(t, err, &conflict)
	assert.ElementsMatch(t, []string{
		"dfcx_billing_billing_payment_query_dev",
		"dfcx_billing_billing_payment_query_qa",
	}, conflict.Candidates)

	// An exact ID still resolves unambiguously.
	entry, err := engine.Migrate("dfcx_billing_billing_payment_query_qa", false)
	require.NoError(t, err)
	assert.Equal(t, "staging", entry.TargetEnv)
}

func TestEngine_Manifest_RecordsEveryAttempt(t *testing.T) {
	engine, store := newTestEngine(t)
	source := seedBillingPrompt(t, store)

	_, err := engine.Migrate(source.ID, true)
	require.NoError(t, err)
	_, err = engine.Migrate(source.ID, false)
	require.NoError(t, err)
	_, err = engine.Migrate("dfcx_billing_billing_payment_query_qa", true)
	require.NoError(t, err)

	history, err := engine.Manifest()
	require.NoError(t, err)
	require.Len(t, history, 3)

	assert.Equal(t, StatusDryRun, history[0].Status)
	assert.Equal(t, StatusSuccess, history[1].Status)
	assert.Equal(t, StatusDryRun, history[2].Status)
	assert.Equal(t, "qa", history[2].SourceEnv)
	assert.Equal(t, "staging", history[2].TargetEnv)

	for _, e := range history {
		assert.NotEmpty(t, e.MigrationID)
		assert.NotEmpty(t, e.CorrelationID)
		assert.False(t, e.Timestamp.IsZero())
	}
}

func TestEngine_FullLifecycle(t *testing.T) {
	engine, store := newTestEngine(t)
	source := seedBillingPrompt(t, store)
	v1Instructions := source.ActiveVersion().SystemInstructions

	_, err := store.Update(source.ID, "v2 instructions", "v2 template", "Second pass", nil)
	require.NoError(t, err)

	_, err = engine.Migrate(source.ID, true)
	require.NoError(t, err)
	_, err = engine.Migrate(source.ID, false)
	require.NoError(t, err)

	rolled, err := store.Rollback(source.ID, 1)
	require.NoError(t, err)

	// Rollback lands as a new dev version carrying the v1 content; the
	// promoted qa prompt holds what was promoted (v2).
	assert.Equal(t, 3, rolled.CurrentVersion)
	assert.Equal(t, v1Instructions, rolled.ActiveVersion().SystemInstructions)

	target, err := store.Get("dfcx_billing_billing_payment_query_qa")
	require.NoError(t, err)
	assert.Equal(t, "v2 instructions", target.ActiveVersion().SystemInstructions)

	history, err := engine.Manifest()
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, StatusDryRun, history[0].Status)
	assert.Equal(t, StatusSuccess, history[1].Status)
}
