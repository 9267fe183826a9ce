package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/promptops/prompt-registry/pkg/ingestion"
	"github.com/promptops/prompt-registry/pkg/registry"
)

var demoCmd = &cobra.Command{
	Use:   "demo <prompt-id>",
	Short: "Run the full end-to-end walkthrough for a prompt",
	Long: `Exercise every registry capability in sequence: multi-source
ingestion, listing, dry-run and real promotion, versioning and rollback.
The prompt ID names the prompt the promotion and versioning steps use,
e.g. dfcx_billing_billing_payment_query_dev.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id := args[0]

		engine, err := newEngine()
		if err != nil {
			return err
		}
		store, err := newStore()
		if err != nil {
			return err
		}

		section("Multi-source ingestion (dfcx + adk + custom)")
		if _, err := ingestion.RunAll(store, ingestion.DefaultIngestors(), logger); err != nil {
			return err
		}
		if err := renderList(store, registry.Filter{}); err != nil {
			return err
		}

		section("Environment filter: dev")
		if err := renderList(store, registry.Filter{Environment: "dev"}); err != nil {
			return err
		}

		section("Dry-run promotion: " + id)
		entry, err := engine.Migrate(id, true)
		if err != nil {
			return err
		}
		printManifestEntry(entry)

		section("Actual promotion: " + id)
		entry, err = engine.Migrate(id, false)
		if err != nil {
			return err
		}
		printManifestEntry(entry)

		section("Automated version update")
		updated, err := store.Update(id,
			"[UPDATED DEMO] You are an upgraded assistant with enhanced capabilities.",
			"[UPDATED DEMO] Issue: {issue_type} | Account: {account_id}",
			"Automated version update for demo", nil)
		if err != nil {
			return err
		}
		fmt.Printf("Updated %s -> v%d\n", updated.ID, updated.CurrentVersion)

		section("Rollback to v1")
		rolled, err := store.Rollback(id, 1)
		if err != nil {
			return err
		}
		fmt.Printf("Rolled back %s to v1 content -> now active as v%d\n", rolled.ID, rolled.CurrentVersion)

		section("Final version history")
		history, err := store.VersionHistory(id)
		if err != nil {
			return err
		}
		rows := make([][]string, 0, len(history))
		for _, v := range history {
			rows = append(rows, []string{
				fmt.Sprintf("v%d", v.Version),
				truncate(v.ChangeNote, 40),
				v.CreatedBy,
				v.CreatedAt.Format("2006-01-02 15:04:05"),
			})
		}
		printTable([]string{"version", "change note", "author", "created at"}, rows)

		section("Demo complete")
		return nil
	},
}

func section(title string) {
	fmt.Printf("\n=== %s ===\n", title)
}
