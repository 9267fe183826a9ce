package registry

import (
	"fmt"
	"path/filepath"

	mapset "github.com/deckarep/golang-set/v2"
	"github.com/spf13/viper"
)

// Default closed enumerations and settings, mirroring the managed service
// being simulated. All of them can be overridden through a config file; the
// operator can additionally be overridden via the OPERATOR_NAME env var.
var (
	defaultEnvironments = []string{"dev", "qa", "staging", "prod"}

	defaultTransitions = map[string]string{
		"dev":     "qa",
		"qa":      "staging",
		"staging": "prod",
		"prod":    "", // terminal: no further promotion
	}

	defaultDomains = []string{"billing", "tech_support", "account_mgmt", "general", "shared"}

	defaultSources = []string{"dfcx", "adk", "custom"}

	defaultModelParams = map[string]any{
		"model":             "gemini-1.5-pro",
		"temperature":       0.7,
		"max_output_tokens": 1024,
		"top_p":             0.9,
		"top_k":             40,
	}
)

const (
	defaultOperator = "pawan.malik"
	defaultDataDir  = "data/prompts"

	// InitialVersion is the version number assigned to newly created prompts.
	InitialVersion = 1
)

// Config is the explicit, immutable configuration value passed to the Store
// and the promotion engine at construction. There is no ambient global
// state: two instances with different enumerations can coexist (e.g. in
// parallel tests).
type Config struct {
	// Environments is the ordered promotion sequence.
	Environments []string `mapstructure:"environments"`
	// Transitions maps each environment to its successor; the terminal
	// environment maps to "".
	Transitions map[string]string `mapstructure:"transitions"`
	// Domains and Sources are the closed sets prompts are validated against.
	Domains []string `mapstructure:"domains"`
	Sources []string `mapstructure:"sources"`

	// DefaultModelParams is applied to prompts created without explicit
	// model parameters.
	DefaultModelParams map[string]any `mapstructure:"default_model_params"`

	// Operator identifies who performs mutations, recorded in versions and
	// migration manifests.
	Operator string `mapstructure:"operator"`

	// DataDir holds the registry and manifest files. RegistryFile and
	// ManifestFile default to well-known names inside it.
	DataDir      string `mapstructure:"data_dir"`
	RegistryFile string `mapstructure:"registry_file"`
	ManifestFile string `mapstructure:"manifest_file"`

	domainSet mapset.Set[string]
	sourceSet mapset.Set[string]
	envSet    mapset.Set[string]
}

// DefaultConfig returns the built-in configuration, validated.
func DefaultConfig() Config {
	cfg := Config{
		Environments:       defaultEnvironments,
		Transitions:        defaultTransitions,
		Domains:            defaultDomains,
		Sources:            defaultSources,
		DefaultModelParams: defaultModelParams,
		Operator:           defaultOperator,
		DataDir:            defaultDataDir,
	}
	// Built-ins are known good; Validate only fills in derived state here.
	if err := cfg.Validate(); err != nil {
		panic(fmt.Sprintf("default config invalid: %v", err))
	}
	return cfg
}

// LoadConfig reads configuration via viper. path may be empty, in which case
// only defaults and env overrides apply. Supported file formats are whatever
// viper recognizes from the file extension (yaml, json, toml).
func LoadConfig(path string) (Config, error) {
	v := viper.New()
	v.SetDefault("environments", defaultEnvironments)
	v.SetDefault("transitions", defaultTransitions)
	v.SetDefault("domains", defaultDomains)
	v.SetDefault("sources", defaultSources)
	v.SetDefault("default_model_params", defaultModelParams)
	v.SetDefault("operator", defaultOperator)
	v.SetDefault("data_dir", defaultDataDir)

	if err := v.BindEnv("operator", "OPERATOR_NAME"); err != nil {
		return Config{}, fmt.Errorf("bind operator env: %w", err)
	}

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks the enumerations and transition table for consistency and
// builds the derived lookup sets. It must be called before the Config is
// handed to a Store or Engine; DefaultConfig and LoadConfig do so already.
func (c *Config) Validate() error {
	if len(c.Environments) == 0 {
		return fmt.Errorf("config: environments must not be empty")
	}
	if len(c.Domains) == 0 {
		return fmt.Errorf("config: domains must not be empty")
	}
	if len(c.Sources) == 0 {
		return fmt.Errorf("config: sources must not be empty")
	}

	c.envSet = mapset.NewSet(c.Environments...)
	c.domainSet = mapset.NewSet(c.Domains...)
	c.sourceSet = mapset.NewSet(c.Sources...)

	terminal := 0
	for _, env := range c.Environments {
		next, ok := c.Transitions[env]
		if !ok {
			return fmt.Errorf("config: environment %q has no transition entry", env)
		}
		if next == "" {
			terminal++
			continue
		}
		if !c.envSet.Contains(next) {
			return fmt.Errorf("config: transition %s -> %s targets unknown environment", env, next)
		}
	}
	if terminal == 0 {
		return fmt.Errorf("config: transition table has no terminal environment (promotion cycle)")
	}

	if c.DataDir == "" {
		c.DataDir = defaultDataDir
	}
	if c.RegistryFile == "" {
		c.RegistryFile = filepath.Join(c.DataDir, "prompt_registry.json")
	}
	if c.ManifestFile == "" {
		c.ManifestFile = filepath.Join(c.DataDir, "migration_manifest.json")
	}
	if c.Operator == "" {
		c.Operator = defaultOperator
	}
	if c.DefaultModelParams == nil {
		c.DefaultModelParams = defaultModelParams
	}
	return nil
}

// ValidDomain reports whether d is in the closed domain set.
func (c *Config) ValidDomain(d string) bool { return c.domainSet != nil && c.domainSet.Contains(d) }

// ValidSource reports whether s is in the closed source set.
func (c *Config) ValidSource(s string) bool { return c.sourceSet != nil && c.sourceSet.Contains(s) }

// ValidEnvironment reports whether e is in the environment enumeration.
func (c *Config) ValidEnvironment(e string) bool { return c.envSet != nil && c.envSet.Contains(e) }

// NextEnvironment returns the promotion successor of env. ok is false when
// env is terminal (or unknown).
func (c *Config) NextEnvironment(env string) (next string, ok bool) {
	next = c.Transitions[env]
	return next, next != ""
}
