package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/promptops/prompt-registry/pkg/migration"
)

var migrateDryRun bool

var migrateCmd = &cobra.Command{
	Use:   "migrate <prompt-id>",
	Short: "Promote a prompt to the next environment",
	Long: `Promote a prompt to the next environment in the fixed order
dev -> qa -> staging -> prod.

The prompt ID may be passed with or without its environment suffix. Only
one-hop promotion is performed per call; promoting across several
environments requires repeated calls. With --dry-run the registry is left
untouched and the attempt is recorded in the manifest as a dry run.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		engine, err := newEngine()
		if err != nil {
			return err
		}
		entry, err := engine.Migrate(args[0], migrateDryRun)
		if err != nil {
			return err
		}

		if outputFmt != "table" {
			return printOutput(entry)
		}
		printManifestEntry(entry)
		return nil
	},
}

var manifestCmd = &cobra.Command{
	Use:   "manifest",
	Short: "Show the full migration history",
	RunE: func(cmd *cobra.Command, args []string) error {
		engine, err := newEngine()
		if err != nil {
			return err
		}
		entries, err := engine.Manifest()
		if err != nil {
			return err
		}

		if outputFmt != "table" {
			return printOutput(entries)
		}

		if len(entries) == 0 {
			fmt.Println("No migrations recorded yet.")
			return nil
		}

		rows := make([][]string, 0, len(entries))
		for _, e := range entries {
			rows = append(rows, []string{
				e.SourcePromptID,
				fmt.Sprintf("%s -> %s", e.SourceEnv, e.TargetEnv),
				formatTargetVersion(e.TargetVersion),
				e.Status,
				e.Operator,
				e.Timestamp.Format("2006-01-02 15:04:05"),
			})
		}
		printTable([]string{"source prompt", "promotion", "target ver", "status", "operator", "timestamp"}, rows)
		fmt.Printf("\n%d migration(s)\n", len(entries))
		return nil
	},
}

func init() {
	migrateCmd.Flags().BoolVar(&migrateDryRun, "dry-run", false, "Simulate only; no registry changes")
}

func printManifestEntry(e *migration.ManifestEntry) {
	fmt.Printf("Migration ID:  %s\n", e.MigrationID)
	fmt.Printf("Source:        %s (%s v%d)\n", e.SourcePromptID, e.SourceEnv, e.SourceVersion)
	fmt.Printf("Target:        %s (%s %s)\n", e.TargetPromptID, e.TargetEnv, formatTargetVersion(e.TargetVersion))
	fmt.Printf("Operator:      %s\n", e.Operator)
	fmt.Printf("Timestamp:     %s\n", e.Timestamp.Format("2006-01-02 15:04:05"))
	fmt.Printf("Status:        %s\n", e.Status)
	if e.DryRun {
		fmt.Println("\nDry run: no changes were made to the registry.")
	}
}

func formatTargetVersion(v *int) string {
	if v == nil {
		return "-"
	}
	return fmt.Sprintf("v%d", *v)
}
