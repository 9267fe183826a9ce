package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var getCmd = &cobra.Command{
	Use:   "get <prompt-id>",
	Short: "Show a prompt with its active version content",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := newStore()
		if err != nil {
			return err
		}
		prompt, err := store.Get(args[0])
		if err != nil {
			return err
		}

		if outputFmt != "table" {
			return printOutput(prompt)
		}

		active := prompt.ActiveVersion()
		fmt.Printf("Prompt ID:    %s\n", prompt.ID)
		fmt.Printf("Name:         %s\n", prompt.Name)
		fmt.Printf("Domain:       %s\n", prompt.Domain)
		fmt.Printf("Source:       %s\n", prompt.Source)
		fmt.Printf("Environment:  %s\n", prompt.Environment)
		fmt.Printf("Version:      v%d (%d total)\n", prompt.CurrentVersion, len(prompt.Versions))
		fmt.Printf("Updated:      %s by %s\n", active.CreatedAt.Format("2006-01-02 15:04:05"), active.CreatedBy)
		fmt.Printf("Change note:  %s\n", active.ChangeNote)
		fmt.Printf("\nSystem instructions:\n%s\n", active.SystemInstructions)
		fmt.Printf("\nTemplate:\n%s\n", active.Template)
		return nil
	},
}

var (
	updateInstructions string
	updateTemplate     string
	updateNote         string
)

var updateCmd = &cobra.Command{
	Use:   "update <prompt-id>",
	Short: "Append a new version to an existing prompt",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := newStore()
		if err != nil {
			return err
		}
		prompt, err := store.Update(args[0], updateInstructions, updateTemplate, updateNote, nil)
		if err != nil {
			return err
		}

		if outputFmt != "table" {
			return printOutput(prompt)
		}
		fmt.Printf("Updated %s -> v%d\n", prompt.ID, prompt.CurrentVersion)
		return nil
	},
}

func init() {
	updateCmd.Flags().StringVar(&updateInstructions, "instructions", "", "New system instructions")
	updateCmd.Flags().StringVar(&updateTemplate, "template", "", "New prompt template")
	updateCmd.Flags().StringVar(&updateNote, "note", "", "Change note for the new version")
	_ = updateCmd.MarkFlagRequired("instructions")
	_ = updateCmd.MarkFlagRequired("template")
}
