package main

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/promptops/prompt-registry/pkg/migration"
	"github.com/promptops/prompt-registry/pkg/registry"
)

var (
	version = "dev"

	// Global flags
	cfgFile   string
	dataDir   string
	outputFmt string
	verbose   bool

	logger *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "promptctl",
	Short: "CLI for the local prompt registry",
	Long: `promptctl manages a local registry of versioned prompts.

Prompts are ingested from three source systems (dfcx, adk, custom), tagged
with a business domain and a deployment environment, and promoted through
the fixed environment order dev -> qa -> staging -> prod. Every change is a
new version; the full version and migration history is kept append-only.`,
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return initLogger()
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "Path to config file (yaml/json); defaults apply when unset")
	rootCmd.PersistentFlags().StringVar(&dataDir, "data-dir", "", "Directory for registry and manifest files (default data/prompts)")
	rootCmd.PersistentFlags().StringVarP(&outputFmt, "output", "o", "table", "Output format: table, json, yaml")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")

	rootCmd.AddCommand(ingestCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(getCmd)
	rootCmd.AddCommand(updateCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(rollbackCmd)
	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(manifestCmd)
	rootCmd.AddCommand(demoCmd)
}

func initLogger() error {
	cfg := zap.NewDevelopmentConfig()
	if verbose {
		cfg.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	} else {
		cfg.Level = zap.NewAtomicLevelAt(zap.WarnLevel)
	}
	l, err := cfg.Build()
	if err != nil {
		return err
	}
	logger = l
	return nil
}

// loadConfig resolves the effective configuration from the config file,
// environment and flags.
func loadConfig() (registry.Config, error) {
	cfg, err := registry.LoadConfig(cfgFile)
	if err != nil {
		return registry.Config{}, err
	}
	if dataDir != "" {
		cfg.DataDir = dataDir
		cfg.RegistryFile = ""
		cfg.ManifestFile = ""
		if err := cfg.Validate(); err != nil {
			return registry.Config{}, err
		}
	}
	return cfg, nil
}

// newStore builds the record store from the effective configuration.
func newStore() (*registry.Store, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	return registry.NewStore(cfg, logger)
}

// newEngine builds the promotion engine and its manifest store.
func newEngine() (*migration.Engine, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	store, err := registry.NewStore(cfg, logger)
	if err != nil {
		return nil, err
	}
	manifest, err := migration.NewManifestStore(cfg.ManifestFile)
	if err != nil {
		return nil, err
	}
	return migration.NewEngine(store, manifest, cfg, logger), nil
}
