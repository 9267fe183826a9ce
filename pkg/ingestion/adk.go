package ingestion

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// adkAgentConfig mirrors the agent section of an ADK agent YAML file.
type adkAgentConfig struct {
	Agent struct {
		Name         string `yaml:"name"`
		Domain       string `yaml:"domain"`
		Environment  string `yaml:"environment"`
		SystemPrompt string `yaml:"system_prompt"`
		Template     string `yaml:"template"`
		Model        struct {
			Name            string  `yaml:"name"`
			Temperature     float64 `yaml:"temperature"`
			MaxOutputTokens int     `yaml:"max_output_tokens"`
			TopP            float64 `yaml:"top_p"`
			TopK            int     `yaml:"top_k"`
		} `yaml:"model"`
		Metadata map[string]any `yaml:"metadata"`
	} `yaml:"agent"`
}

// adkSampleConfigs holds the agent configs an ADK deployment would keep as
// YAML files alongside each agent.
var adkSampleConfigs = []string{`
agent:
  name: tech_support_troubleshoot
  domain: tech_support
  environment: dev
  system_prompt: |-
    You are a technical support specialist. Guide customers step by step through troubleshooting. Always confirm the issue is resolved before closing. Use simple, non-technical language unless the customer is technical. Log all steps taken for audit purposes.
  template: |-
    Customer reported issue: {issue_description}
    Device type: {device_type}
    OS version: {os_version}
    Previous troubleshooting attempts: {previous_steps}

    Provide a structured troubleshooting guide with numbered steps.
  model:
    name: gemini-1.5-pro
    temperature: 0.2
    max_output_tokens: 1024
    top_p: 0.9
    top_k: 40
  metadata:
    source_agent: adk-tech-support-v1
    config_file: agents/tech_support/agent.yaml
    adk_version: 1.2.0
    extracted_by: adk_ingestor
`}

// ADKIngestor simulates extraction of prompts from ADK (Agent Development
// Kit) agent configs. ADK agents store prompts in YAML config files; this
// ingestor parses those configs and normalizes them into seed prompts.
type ADKIngestor struct {
	configs []string
}

// NewADKIngestor creates an ADK ingestor over the sample agent configs.
func NewADKIngestor() *ADKIngestor {
	return &ADKIngestor{configs: adkSampleConfigs}
}

// Name returns the source system identifier.
func (i *ADKIngestor) Name() string { return "adk" }

// Prompts parses each agent YAML config into a seed prompt.
func (i *ADKIngestor) Prompts() ([]SeedPrompt, error) {
	prompts := make([]SeedPrompt, 0, len(i.configs))
	for idx, raw := range i.configs {
		var cfg adkAgentConfig
		if err := yaml.Unmarshal([]byte(raw), &cfg); err != nil {
			return nil, fmt.Errorf("parse adk agent config %d: %w", idx, err)
		}
		if cfg.Agent.Name == "" {
			return nil, fmt.Errorf("adk agent config %d: field 'name' is required", idx)
		}

		prompts = append(prompts, SeedPrompt{
			Name:               cfg.Agent.Name,
			Domain:             cfg.Agent.Domain,
			Source:             "adk",
			Environment:        cfg.Agent.Environment,
			SystemInstructions: cfg.Agent.SystemPrompt,
			Template:           cfg.Agent.Template,
			ModelParameters: map[string]any{
				"model":             cfg.Agent.Model.Name,
				"temperature":       cfg.Agent.Model.Temperature,
				"max_output_tokens": cfg.Agent.Model.MaxOutputTokens,
				"top_p":             cfg.Agent.Model.TopP,
				"top_k":             cfg.Agent.Model.TopK,
			},
			Metadata: cfg.Agent.Metadata,
		})
	}
	return prompts, nil
}
