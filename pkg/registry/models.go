package registry

import (
	"strconv"
	"time"
)

// PromptVersion is one immutable entry in a prompt's version history.
// Entries are never edited or removed once written.
type PromptVersion struct {
	Version            int       `json:"version"`
	SystemInstructions string    `json:"system_instructions"`
	Template           string    `json:"template"`
	CreatedAt          time.Time `json:"created_at"`
	CreatedBy          string    `json:"created_by"`
	ChangeNote         string    `json:"change_note"`
}

// Prompt is the unit of management. Its ID is derived deterministically from
// (source, domain, name, environment) and never changes after creation; the
// environment is fixed at creation and only "changes" by creating a new
// prompt in another environment during promotion.
type Prompt struct {
	ID              string                    `json:"prompt_id"`
	Name            string                    `json:"name"`
	Domain          string                    `json:"domain"`
	Source          string                    `json:"source"`
	Environment     string                    `json:"environment"`
	CurrentVersion  int                       `json:"current_version"`
	CreatedAt       time.Time                 `json:"created_at"`
	UpdatedAt       time.Time                 `json:"updated_at"`
	ModelParameters map[string]any            `json:"model_parameters"`
	Metadata        map[string]any            `json:"metadata"`
	Versions        map[string]*PromptVersion `json:"versions"`
}

// ActiveVersion returns the version entry CurrentVersion points at.
func (p *Prompt) ActiveVersion() *PromptVersion {
	return p.Versions[strconv.Itoa(p.CurrentVersion)]
}

// registryDocument is the persisted shape of the whole record store:
// a single mapping from prompt ID to prompt.
type registryDocument struct {
	Prompts map[string]*Prompt `json:"prompts"`
}

func newRegistryDocument() *registryDocument {
	return &registryDocument{Prompts: map[string]*Prompt{}}
}

// Filter selects prompts in List. Unset fields impose no constraint; set
// fields combine with AND semantics.
type Filter struct {
	Domain      string
	Environment string
	Source      string
}

// Matches reports whether p satisfies every set field of the filter.
func (f Filter) Matches(p *Prompt) bool {
	if f.Domain != "" && p.Domain != f.Domain {
		return false
	}
	if f.Environment != "" && p.Environment != f.Environment {
		return false
	}
	if f.Source != "" && p.Source != f.Source {
		return false
	}
	return true
}
