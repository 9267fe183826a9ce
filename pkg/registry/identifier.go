package registry

import (
	"fmt"
	"strings"
)

// maxNameSlugLen bounds the name portion of a derived prompt ID.
const maxNameSlugLen = 30

// DeriveID builds a deterministic, human-readable prompt ID.
// Format: {source}_{domain}_{name_slug}_{environment}
// Example: dfcx_billing_payment_query_dev
// The environment segment is omitted only when env is empty, which happens
// transiently while deriving a base ID; persisted records always carry it.
func DeriveID(source, domain, name, env string) string {
	slug := strings.ReplaceAll(strings.ToLower(name), " ", "_")
	if r := []rune(slug); len(r) > maxNameSlugLen {
		slug = string(r[:maxNameSlugLen])
	}
	if env == "" {
		return fmt.Sprintf("%s_%s_%s", source, domain, slug)
	}
	return fmt.Sprintf("%s_%s_%s_%s", source, domain, slug, env)
}

// StripEnvironmentSuffix removes a trailing _<env> segment for any
// environment in the configured order. IDs without a recognized suffix are
// returned unchanged, which makes promotion tolerant of callers passing
// either a bare or environment-qualified ID.
func StripEnvironmentSuffix(id string, environments []string) string {
	for _, env := range environments {
		if strings.HasSuffix(id, "_"+env) {
			return id[:len(id)-len(env)-1]
		}
	}
	return id
}

// WithEnvironment appends an environment suffix to a prompt ID, stripping
// any existing suffix first so promotion never double-suffixes.
func WithEnvironment(id, env string, environments []string) string {
	return StripEnvironmentSuffix(id, environments) + "_" + env
}
