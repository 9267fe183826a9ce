package registry

import (
	"fmt"
	"strings"
)

// ValidationError reports every closed-set violation found during Create,
// not just the first.
type ValidationError struct {
	Violations []string
}

func (e *ValidationError) Error() string {
	return strings.Join(e.Violations, "\n")
}

// AlreadyExistsError is returned when Create is called for an ID that is
// already present in the registry.
type AlreadyExistsError struct {
	ID string
}

func (e *AlreadyExistsError) Error() string {
	return fmt.Sprintf("prompt %q already exists; use update to add a new version", e.ID)
}

// NotFoundError is returned when an operation references an unknown prompt ID.
type NotFoundError struct {
	ID string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("prompt %q not found in registry", e.ID)
}

// VersionNotFoundError is returned when a rollback target version does not
// exist. The message lists the available version numbers.
type VersionNotFoundError struct {
	ID        string
	Version   int
	Available []int
}

func (e *VersionNotFoundError) Error() string {
	return fmt.Sprintf("version %d not found for prompt %q; available versions: %v", e.Version, e.ID, e.Available)
}

// TerminalEnvironmentError is returned when promotion is attempted from the
// terminal environment.
type TerminalEnvironmentError struct {
	ID          string
	Environment string
}

func (e *TerminalEnvironmentError) Error() string {
	return fmt.Sprintf("prompt %q is already in %q; cannot promote further", e.ID, e.Environment)
}

// ConflictError is returned when a base prompt ID resolves to more than one
// record, so promotion cannot pick a source unambiguously.
type ConflictError struct {
	ID         string
	Candidates []string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("prompt ID %q matches multiple records: %v", e.ID, e.Candidates)
}
