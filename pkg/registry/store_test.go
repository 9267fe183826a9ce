package registry

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	cfg := DefaultConfig()
	cfg.DataDir = t.TempDir()
	cfg.RegistryFile = ""
	cfg.ManifestFile = ""
	require.NoError(t, cfg.Validate())

	store, err := NewStore(cfg, zap.NewNop())
	require.NoError(t, err)
	return store
}

func billingRequest() CreateRequest {
	return CreateRequest{
		Name:               "billing_payment_query",
		Domain:             "billing",
		Source:             "dfcx",
		Environment:        "dev",
		SystemInstructions: "You are a billing assistant.",
		Template:           "Query: {issue_type}",
		ModelParameters:    map[string]any{"model": "gemini-1.5-pro", "temperature": 0.3},
		Metadata:           map[string]any{"source_agent": "telecom-billing-agent-v2"},
	}
}

func TestStore_Create(t *testing.T) {
	store := newTestStore(t)

	prompt, err := store.Create(billingRequest())
	require.NoError(t, err)

	assert.Equal(t, "dfcx_billing_billing_payment_query_dev", prompt.ID)
	assert.Equal(t, 1, prompt.CurrentVersion)
	require.NotNil(t, prompt.ActiveVersion())
	assert.Equal(t, "Initial version", prompt.ActiveVersion().ChangeNote)
	assert.Equal(t, "You are a billing assistant.", prompt.ActiveVersion().SystemInstructions)
}

func TestStore_Create_DefaultModelParams(t *testing.T) {
	store := newTestStore(t)

	req := billingRequest()
	req.ModelParameters = nil
	prompt, err := store.Create(req)
	require.NoError(t, err)
	assert.Equal(t, "gemini-1.5-pro", prompt.ModelParameters["model"])
	assert.Equal(t, 0.7, prompt.ModelParameters["temperature"])
}

func TestStore_Create_AlreadyExists(t *testing.T) {
	store := newTestStore(t)

	_, err := store.Create(billingRequest())
	require.NoError(t, err)

	_, err = store.Create(billingRequest())
	require.Error(t, err)
	var exists *AlreadyExistsError
	require.ErrorAs(t, err, &exists)
	assert.Equal(t, "dfcx_billing_billing_payment_query_dev", exists.ID)
}

func TestStore_Create_ValidationListsEveryViolation(t *testing.T) {
	store := newTestStore(t)

	req := billingRequest()
	req.Domain = "marketing"
	req.Source = "homegrown"
	req.Environment = "sandbox"

	_, err := store.Create(req)
	require.Error(t, err)

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	require.Len(t, verr.Violations, 3)
	assert.Contains(t, err.Error(), `invalid domain "marketing"`)
	assert.Contains(t, err.Error(), `invalid source "homegrown"`)
	assert.Contains(t, err.Error(), `invalid environment "sandbox"`)

	// No mutation happened: registry is still empty.
	prompts, listErr := store.List(Filter{})
	require.NoError(t, listErr)
	assert.Empty(t, prompts)
}

func TestStore_Get_NotFound(t *testing.T) {
	store := newTestStore(t)

	_, err := store.Get("missing_id")
	var notFound *NotFoundError
	require.ErrorAs(t, err, &notFound)
	assert.Equal(t, "missing_id", notFound.ID)
}

func TestStore_List_Filters(t *testing.T) {
	store := newTestStore(t)

	_, err := store.Create(billingRequest())
	require.NoError(t, err)

	tech := billingRequest()
	tech.Name = "troubleshoot"
	tech.Domain = "tech_support"
	tech.Source = "adk"
	_, err = store.Create(tech)
	require.NoError(t, err)

	prodBilling := billingRequest()
	prodBilling.Environment = "prod"
	_, err = store.Create(prodBilling)
	require.NoError(t, err)

	// No cross-contamination between domains.
	billing, err := store.List(Filter{Domain: "billing"})
	require.NoError(t, err)
	require.Len(t, billing, 2)
	for _, p := range billing {
		assert.Equal(t, "billing", p.Domain)
	}

	// No cross-contamination between environments.
	dev, err := store.List(Filter{Environment: "dev"})
	require.NoError(t, err)
	require.Len(t, dev, 2)
	for _, p := range dev {
		assert.Equal(t, "dev", p.Environment)
	}

	// AND semantics.
	both, err := store.List(Filter{Domain: "billing", Environment: "prod"})
	require.NoError(t, err)
	require.Len(t, both, 1)
	assert.Equal(t, "prod", both[0].Environment)

	// Combination with no matches is empty, not an error.
	none, err := store.List(Filter{Domain: "tech_support", Environment: "prod"})
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestStore_Update_AppendsVersions(t *testing.T) {
	store := newTestStore(t)

	created, err := store.Create(billingRequest())
	require.NoError(t, err)
	firstContent := created.ActiveVersion().SystemInstructions

	updated, err := store.Update(created.ID, "v2 instructions", "v2 template", "Second pass", nil)
	require.NoError(t, err)
	assert.Equal(t, 2, updated.CurrentVersion)

	updated, err = store.Update(created.ID, "v3 instructions", "v3 template", "", nil)
	require.NoError(t, err)
	assert.Equal(t, 3, updated.CurrentVersion)
	assert.Equal(t, "Updated version", updated.ActiveVersion().ChangeNote)

	// History is contiguous from 1 and prior content is untouched.
	history, err := store.VersionHistory(created.ID)
	require.NoError(t, err)
	require.Len(t, history, 3)
	for i, v := range history {
		assert.Equal(t, i+1, v.Version)
	}
	assert.Equal(t, firstContent, history[0].SystemInstructions)
	assert.Equal(t, "v2 instructions", history[1].SystemInstructions)
}

func TestStore_Update_NotFound(t *testing.T) {
	store := newTestStore(t)

	_, err := store.Update("missing_id", "x", "y", "", nil)
	var notFound *NotFoundError
	require.ErrorAs(t, err, &notFound)
}

func TestStore_Update_ReplacesModelParams(t *testing.T) {
	store := newTestStore(t)

	created, err := store.Create(billingRequest())
	require.NoError(t, err)

	params := map[string]any{"model": "gemini-1.5-flash", "temperature": 0.9}
	updated, err := store.Update(created.ID, "x", "y", "tune", params)
	require.NoError(t, err)
	assert.Equal(t, "gemini-1.5-flash", updated.ModelParameters["model"])
}

func TestStore_Rollback(t *testing.T) {
	store := newTestStore(t)

	created, err := store.Create(billingRequest())
	require.NoError(t, err)
	v1 := created.ActiveVersion()

	_, err = store.Update(created.ID, "v2 instructions", "v2 template", "Second pass", nil)
	require.NoError(t, err)

	rolled, err := store.Rollback(created.ID, 1)
	require.NoError(t, err)

	// Rollback creates a new version; it does not reactivate the old number.
	assert.Equal(t, 3, rolled.CurrentVersion)
	active := rolled.ActiveVersion()
	assert.Equal(t, v1.SystemInstructions, active.SystemInstructions)
	assert.Equal(t, v1.Template, active.Template)
	assert.Equal(t, "Rollback to v1", active.ChangeNote)

	// v2 content is still intact.
	history, err := store.VersionHistory(created.ID)
	require.NoError(t, err)
	require.Len(t, history, 3)
	assert.Equal(t, "v2 instructions", history[1].SystemInstructions)
}

func TestStore_Rollback_VersionNotFound(t *testing.T) {
	store := newTestStore(t)

	created, err := store.Create(billingRequest())
	require.NoError(t, err)
	_, err = store.Update(created.ID, "v2", "v2", "", nil)
	require.NoError(t, err)

	_, err = store.Rollback(created.ID, 7)
	require.Error(t, err)

	var vErr *VersionNotFoundError
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, 7, vErr.Version)
	assert.Equal(t, []int{1, 2}, vErr.Available)
	assert.Contains(t, err.Error(), "available versions: [1 2]")
}

func TestStore_Rollback_NotFound(t *testing.T) {
	store := newTestStore(t)

	_, err := store.Rollback("missing_id", 1)
	var notFound *NotFoundError
	require.ErrorAs(t, err, &notFound)
}

func TestStore_PersistsAcrossInstances(t *testing.T) {
	store := newTestStore(t)

	created, err := store.Create(billingRequest())
	require.NoError(t, err)

	reopened, err := NewStore(store.Config(), zap.NewNop())
	require.NoError(t, err)

	got, err := reopened.Get(created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.ID, got.ID)
	assert.Equal(t, 1, got.CurrentVersion)
}

func TestStore_RejectsPathTraversal(t *testing.T) {
	cfg := DefaultConfig()
	cfg.DataDir = t.TempDir()
	cfg.RegistryFile = "../escape/registry.json"
	require.NoError(t, cfg.Validate())

	_, err := NewStore(cfg, zap.NewNop())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "path traversal")
}

func TestStore_InitializesEmptyDocument(t *testing.T) {
	store := newTestStore(t)

	data, err := os.ReadFile(store.Path())
	require.NoError(t, err)
	assert.JSONEq(t, `{"prompts": {}}`, string(data))
}
