// Package main provides promptctl, the CLI for the local prompt registry.
// It manages versioned prompts across business domains and source systems
// and promotes them through the dev -> qa -> staging -> prod lifecycle.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
)

func main() {
	// Optional .env for operator identity and the like; missing file is fine.
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
