package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/promptops/prompt-registry/pkg/ingestion"
)

var ingestCmd = &cobra.Command{
	Use:   "ingest",
	Short: "Ingest sample prompts from all source systems",
	Long: `Run the dfcx, adk and custom ingestors in sequence, seeding the
registry with their prompts. Prompts that already exist are skipped, so the
command is safe to run repeatedly.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := newStore()
		if err != nil {
			return err
		}

		results, err := ingestion.RunAll(store, ingestion.DefaultIngestors(), logger)
		if err != nil {
			return err
		}

		if outputFmt != "table" {
			return printOutput(results)
		}

		total := 0
		rows := make([][]string, 0, len(results))
		for _, r := range results {
			rows = append(rows, []string{
				r.Source,
				fmt.Sprintf("%d", len(r.Ingested)),
				fmt.Sprintf("%d", len(r.Skipped)),
			})
			total += len(r.Ingested)
		}
		printTable([]string{"source", "ingested", "skipped"}, rows)
		fmt.Printf("\nIngestion complete: %d prompt(s) ingested\n", total)
		return nil
	},
}
