package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

var historyCmd = &cobra.Command{
	Use:   "history <prompt-id>",
	Short: "Show the full version history of a prompt",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := newStore()
		if err != nil {
			return err
		}
		history, err := store.VersionHistory(args[0])
		if err != nil {
			return err
		}

		if outputFmt != "table" {
			return printOutput(history)
		}

		rows := make([][]string, 0, len(history))
		for _, v := range history {
			rows = append(rows, []string{
				fmt.Sprintf("v%d", v.Version),
				truncate(v.ChangeNote, 40),
				v.CreatedBy,
				v.CreatedAt.Format("2006-01-02 15:04:05"),
				truncate(v.SystemInstructions, 50),
			})
		}
		printTable([]string{"version", "change note", "author", "created at", "instructions"}, rows)

		prompt, err := store.Get(args[0])
		if err != nil {
			return err
		}
		fmt.Printf("\nActive version: v%d\n", prompt.CurrentVersion)
		return nil
	},
}

var rollbackCmd = &cobra.Command{
	Use:   "rollback <prompt-id> <version>",
	Short: "Roll back a prompt to a previous version's content",
	Long: `Roll back a prompt to a previous version.

The old content is copied into a brand-new version rather than reactivating
the old number, so the history stays monotonic and the audit trail is kept.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		target, err := strconv.Atoi(args[1])
		if err != nil {
			return fmt.Errorf("version must be a number, got %q", args[1])
		}

		store, err := newStore()
		if err != nil {
			return err
		}
		prompt, err := store.Rollback(args[0], target)
		if err != nil {
			return err
		}

		if outputFmt != "table" {
			return printOutput(prompt)
		}
		fmt.Printf("Rolled back %s to v%d content -> now active as v%d\n", prompt.ID, target, prompt.CurrentVersion)
		return nil
	},
}
